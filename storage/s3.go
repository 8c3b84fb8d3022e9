package storage

import (
	"bytes"
	"fmt"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"
	"time"

	"educators_academy_go/config"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/google/uuid"
)

// StorageService uploads teacher avatars and course media to S3 and returns
// public URLs that go straight into the collection records.
type StorageService struct {
	s3Client *s3.S3
	bucket   string
}

// NewStorageService creates a new storage service. It fails when the bucket
// is not configured so callers can run without an upload surface.
func NewStorageService() (*StorageService, error) {
	if config.AppConfig.S3BucketName == "" {
		return nil, fmt.Errorf("no S3 bucket configured")
	}

	sess, err := session.NewSession(&aws.Config{
		Region: aws.String(config.AppConfig.AWSRegion),
		Credentials: credentials.NewStaticCredentials(
			config.AppConfig.AWSAccessKeyID,
			config.AppConfig.AWSSecretAccessKey,
			"",
		),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %v", err)
	}

	return &StorageService{
		s3Client: s3.New(sess),
		bucket:   config.AppConfig.S3BucketName,
	}, nil
}

// UploadFile uploads a file under the given folder (avatars, thumbnails,
// media) and returns its public URL.
func (s *StorageService) UploadFile(file *multipart.FileHeader, folder string) (string, error) {
	src, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open file: %v", err)
	}
	defer src.Close()

	fileBytes, err := io.ReadAll(src)
	if err != nil {
		return "", fmt.Errorf("failed to read file: %v", err)
	}

	ext := s.getFileExtension(file.Filename)
	now := time.Now()
	randomID := uuid.New().String()[:16]
	filename := fmt.Sprintf("%s/%d/%02d/%02d/%s.%s",
		folder,
		now.Year(),
		now.Month(),
		now.Day(),
		randomID,
		ext,
	)

	_, err = s.s3Client.PutObject(&s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(filename),
		Body:        bytes.NewReader(fileBytes),
		ContentType: aws.String(s.getContentType(ext)),
		ACL:         aws.String("public-read"),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to S3: %v", err)
	}

	url := fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s",
		s.bucket,
		config.AppConfig.AWSRegion,
		filename,
	)
	return url, nil
}

// DeleteFile deletes a previously uploaded file by its public URL.
func (s *StorageService) DeleteFile(fileURL string) error {
	key := s.extractKeyFromURL(fileURL)
	if key == "" {
		return fmt.Errorf("invalid file URL")
	}

	_, err := s.s3Client.DeleteObject(&s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	return err
}

// getFileExtension extracts the lowercased extension without the dot.
func (s *StorageService) getFileExtension(filename string) string {
	ext := filepath.Ext(filename)
	if len(ext) > 1 {
		return strings.ToLower(ext[1:])
	}
	return ""
}

// getContentType returns the MIME type for the file extension
func (s *StorageService) getContentType(extension string) string {
	switch strings.ToLower(extension) {
	case "webp":
		return "image/webp"
	case "jpg", "jpeg":
		return "image/jpeg"
	case "png":
		return "image/png"
	case "gif":
		return "image/gif"
	case "mp4":
		return "video/mp4"
	case "pdf":
		return "application/pdf"
	default:
		return "application/octet-stream"
	}
}

// extractKeyFromURL extracts the S3 key from a full URL
func (s *StorageService) extractKeyFromURL(url string) string {
	parts := strings.Split(url, ".amazonaws.com/")
	if len(parts) != 2 {
		return ""
	}
	return parts[1]
}
