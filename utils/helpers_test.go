package utils

import (
	"regexp"
	"strings"
	"testing"
)

func TestNewTeacherIDFormat(t *testing.T) {
	pattern := regexp.MustCompile(`^t-\d+-[a-z0-9]{5}$`)
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := NewTeacherID()
		if !pattern.MatchString(id) {
			t.Fatalf("id %q does not match t-<millis>-<alnum>", id)
		}
		if seen[id] {
			t.Fatalf("duplicate id generated: %q", id)
		}
		seen[id] = true
	}
}

func TestNewEntityIDPrefix(t *testing.T) {
	for _, prefix := range []string{"g", "c", "m"} {
		id := NewEntityID(prefix)
		if !strings.HasPrefix(id, prefix+"-") {
			t.Fatalf("id %q missing prefix %q", id, prefix)
		}
	}
}

func TestDefaultAvatarURL(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "arabic name is url encoded",
			input: "أحمد",
			want:  "https://ui-avatars.com/api/?name=%D8%A3%D8%AD%D9%85%D8%AF&background=random",
		},
		{
			name:  "latin name",
			input: "John",
			want:  "https://ui-avatars.com/api/?name=John&background=random",
		},
		{
			name:  "empty name falls back",
			input: "",
			want:  "https://ui-avatars.com/api/?name=Teacher&background=random",
		},
		{
			name:  "whitespace only falls back",
			input: "   ",
			want:  "https://ui-avatars.com/api/?name=Teacher&background=random",
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			if got := DefaultAvatarURL(tc.input); got != tc.want {
				t.Fatalf("expected %q, got %q", tc.want, got)
			}
		})
	}
}

func TestIsValidFileExtension(t *testing.T) {
	allowed := []string{"jpg", "png", "webp"}

	if !IsValidFileExtension("photo.JPG", allowed) {
		t.Fatalf("extension check should be case insensitive")
	}
	if IsValidFileExtension("script.exe", allowed) {
		t.Fatalf("disallowed extension accepted")
	}
	if IsValidFileExtension("noextension", allowed) {
		t.Fatalf("filename without extension accepted")
	}
	if IsValidFileExtension("", allowed) {
		t.Fatalf("empty filename accepted")
	}
}

func TestSanitizeString(t *testing.T) {
	if got := SanitizeString("  hello\x00world  "); got != "helloworld" {
		t.Fatalf("unexpected sanitized value %q", got)
	}
}
