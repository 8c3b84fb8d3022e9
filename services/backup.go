package services

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"educators_academy_go/config"
	"educators_academy_go/database"
	"educators_academy_go/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/go-redis/redis/v8"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// BackupService snapshots the three collections into a ZIP archive on S3 on a
// cron schedule, and flushes cached activity logs into the database before
// their redis TTL drops them.
type BackupService struct {
	academy   *Academy
	awsConfig aws.Config
	cron      *cron.Cron
}

// NewBackupService creates the service. The AWS config load failing only
// disables the S3 upload, not the log flush.
func NewBackupService(academy *Academy) *BackupService {
	cfg, err := awscfg.LoadDefaultConfig(context.Background(), awscfg.WithRegion(config.AppConfig.AWSRegion))
	if err != nil {
		logrus.WithError(err).Warn("Failed to load AWS config; snapshot uploads disabled")
	}

	return &BackupService{
		academy:   academy,
		awsConfig: cfg,
		cron:      cron.New(),
	}
}

// Start registers the cron jobs and runs the scheduler in the background.
func (bs *BackupService) Start() error {
	if _, err := bs.cron.AddFunc(config.AppConfig.BackupSchedule, func() {
		if err := bs.SnapshotToS3(); err != nil {
			logrus.WithError(err).Warn("Scheduled snapshot backup failed")
		}
	}); err != nil {
		return fmt.Errorf("invalid backup schedule: %w", err)
	}

	// Hourly flush keeps cached logs from expiring out of redis unrecorded.
	if _, err := bs.cron.AddFunc("@hourly", func() {
		if err := bs.FlushCachedLogs(); err != nil {
			logrus.WithError(err).Debug("Log flush skipped")
		}
	}); err != nil {
		return err
	}

	bs.cron.Start()
	logrus.WithField("schedule", config.AppConfig.BackupSchedule).Info("Backup scheduler started")
	return nil
}

// Stop halts the scheduler.
func (bs *BackupService) Stop() {
	bs.cron.Stop()
}

// SnapshotToS3 writes the current collections as a ZIP archive to S3.
func (bs *BackupService) SnapshotToS3() error {
	if bs.awsConfig.Region == "" || config.AppConfig.S3BucketName == "" {
		return fmt.Errorf("AWS not configured")
	}

	snap := bs.academy.Snapshot()
	now := time.Now().UTC()

	buf := new(bytes.Buffer)
	zw := zip.NewWriter(buf)

	files := map[string]interface{}{
		"grades.json":   snap.Grades,
		"teachers.json": snap.Teachers,
		"courses.json":  snap.Courses,
		"metadata.json": map[string]interface{}{
			"created_at":     now,
			"grade_count":    len(snap.Grades),
			"teacher_count":  len(snap.Teachers),
			"course_count":   len(snap.Courses),
			"format_version": "1.0",
		},
	}
	for name, payload := range files {
		w, err := zw.Create(name)
		if err != nil {
			return fmt.Errorf("failed to create %s in archive: %v", name, err)
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(payload); err != nil {
			return fmt.Errorf("failed to encode %s: %v", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("failed to close archive: %v", err)
	}

	key := fmt.Sprintf("backups/%d/%02d/academy_%s.zip",
		now.Year(), now.Month(), now.Format("2006-01-02_150405"))

	s3Client := s3.NewFromConfig(bs.awsConfig)
	_, err := s3Client.PutObject(context.Background(), &s3.PutObjectInput{
		Bucket:      aws.String(config.AppConfig.S3BucketName),
		Key:         aws.String(key),
		Body:        bytes.NewReader(buf.Bytes()),
		ContentType: aws.String("application/zip"),
	})
	if err != nil {
		return fmt.Errorf("failed to upload snapshot to S3: %v", err)
	}

	logrus.WithField("key", key).Info("Snapshot backup uploaded")
	return nil
}

// FlushCachedLogs moves queued activity logs from redis into the database.
func (bs *BackupService) FlushCachedLogs() error {
	rc := database.GetRedisClient()
	if rc == nil {
		return fmt.Errorf("redis client not available")
	}
	if database.DB == nil {
		return fmt.Errorf("database not available")
	}

	ctx := context.Background()
	keys, err := rc.ZRangeByScore(ctx, "logs:queue", &redis.ZRangeBy{
		Min: "0",
		Max: fmt.Sprintf("%d", time.Now().Unix()),
	}).Result()
	if err != nil {
		return fmt.Errorf("failed to read log queue: %v", err)
	}

	var flushed int
	for _, key := range keys {
		data, err := rc.Get(ctx, key).Result()
		if err != nil {
			if err != redis.Nil {
				logrus.WithError(err).WithField("key", key).Error("Failed to read cached log")
			}
			rc.ZRem(ctx, "logs:queue", key)
			continue
		}

		var entry models.ActivityLog
		if err := json.Unmarshal([]byte(data), &entry); err != nil {
			logrus.WithError(err).WithField("key", key).Error("Failed to decode cached log")
			rc.ZRem(ctx, "logs:queue", key)
			continue
		}

		if err := database.DB.Create(&entry).Error; err != nil {
			logrus.WithError(err).Error("Failed to save cached log to database")
			continue
		}

		pipe := rc.Pipeline()
		pipe.Del(ctx, key)
		pipe.ZRem(ctx, "logs:queue", key)
		if _, err := pipe.Exec(ctx); err != nil {
			logrus.WithError(err).WithField("key", key).Error("Failed to remove flushed log from cache")
		}
		flushed++
	}

	if flushed > 0 {
		logrus.WithField("count", flushed).Info("Flushed cached activity logs to database")
	}
	return nil
}
