package utils

import (
	"crypto/rand"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// ValidateStruct runs go-playground validation over a request DTO.
func ValidateStruct(v interface{}) error {
	return validate.Struct(v)
}

const idSuffixCharset = "abcdefghijklmnopqrstuvwxyz0123456789"

// randomSuffix returns a short lowercase alphanumeric string.
func randomSuffix(length int) string {
	buf := make([]byte, length)
	if _, err := rand.Read(buf); err != nil {
		// Fall back to a time-derived suffix; ids only need uniqueness, not secrecy.
		return fmt.Sprintf("%x", time.Now().UnixNano())[:length]
	}
	for i, b := range buf {
		buf[i] = idSuffixCharset[int(b)%len(idSuffixCharset)]
	}
	return string(buf)
}

// NewEntityID generates an id like "<prefix>-<millis>-<alnum>". Ids are always
// generated by the creator, never assigned by storage.
func NewEntityID(prefix string) string {
	return fmt.Sprintf("%s-%d-%s", prefix, time.Now().UnixMilli(), randomSuffix(5))
}

// NewTeacherID generates a teacher id ("t-<millis>-<alnum>").
func NewTeacherID() string {
	return NewEntityID("t")
}

// DefaultAvatarURL builds the fallback avatar image for a teacher without a
// photo, keyed by the (URL-encoded) display name.
func DefaultAvatarURL(name string) string {
	if strings.TrimSpace(name) == "" {
		name = "Teacher"
	}
	return "https://ui-avatars.com/api/?name=" + url.QueryEscape(name) + "&background=random"
}

// IsValidFileExtension checks if file extension is allowed
func IsValidFileExtension(filename string, allowedExtensions []string) bool {
	if filename == "" {
		return false
	}

	parts := strings.Split(filename, ".")
	if len(parts) < 2 {
		return false
	}

	ext := strings.ToLower(parts[len(parts)-1])

	for _, allowedExt := range allowedExtensions {
		if ext == strings.ToLower(allowedExt) {
			return true
		}
	}
	return false
}

// SanitizeString removes dangerous characters from string
func SanitizeString(input string) string {
	// Remove null bytes and control characters
	input = strings.ReplaceAll(input, "\x00", "")

	// Trim whitespace
	input = strings.TrimSpace(input)

	return input
}
