package store

import (
	"context"
	"educators_academy_go/database"
	"educators_academy_go/models"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Snapshot bundles the three top-level collections as loaded from storage.
type Snapshot struct {
	Grades   []models.GradeData `json:"grades"`
	Teachers []models.Teacher   `json:"teachers"`
	Courses  []models.Course    `json:"courses"`
}

// Gateway is the durable storage boundary. Saves replace the whole collection
// (last writer wins); there is no merging, versioning or conflict detection.
// Callers always hand over the complete, already-merged collection.
type Gateway interface {
	LoadData() (Snapshot, error)
	SaveGrades(grades []models.GradeData) error
	SaveTeachers(teachers []models.Teacher) error
	SaveCourses(courses []models.Course) error
}

const (
	cacheKeyGrades   = "academy:grades"
	cacheKeyTeachers = "academy:teachers"
	cacheKeyCourses  = "academy:courses"
	cacheTTL         = time.Hour
)

// GormStore implements Gateway over MySQL with a best-effort Redis cache in
// front of each collection. A nil Redis client degrades to DB-only.
type GormStore struct {
	db    *gorm.DB
	redis *redis.Client
}

// NewGormStore creates a store over the shared database connections.
func NewGormStore() *GormStore {
	return &GormStore{
		db:    database.GetDB(),
		redis: database.GetRedisClient(),
	}
}

// LoadData reads all three collections. A cold cache falls through to the
// database and repopulates; any cache error is only logged.
func (s *GormStore) LoadData() (Snapshot, error) {
	var snap Snapshot

	if err := s.loadCollection(cacheKeyGrades, &snap.Grades, &models.GradeData{}); err != nil {
		return Snapshot{}, fmt.Errorf("load grades: %w", err)
	}
	if err := s.loadCollection(cacheKeyTeachers, &snap.Teachers, &models.Teacher{}); err != nil {
		return Snapshot{}, fmt.Errorf("load teachers: %w", err)
	}
	if err := s.loadCollection(cacheKeyCourses, &snap.Courses, &models.Course{}); err != nil {
		return Snapshot{}, fmt.Errorf("load courses: %w", err)
	}

	return snap, nil
}

// SaveGrades replaces the entire grade collection.
func (s *GormStore) SaveGrades(grades []models.GradeData) error {
	if err := replaceAll(s.db, &models.GradeData{}, grades); err != nil {
		return fmt.Errorf("save grades: %w", err)
	}
	s.cacheSet(cacheKeyGrades, grades)
	return nil
}

// SaveTeachers replaces the entire teacher collection.
func (s *GormStore) SaveTeachers(teachers []models.Teacher) error {
	if err := replaceAll(s.db, &models.Teacher{}, teachers); err != nil {
		return fmt.Errorf("save teachers: %w", err)
	}
	s.cacheSet(cacheKeyTeachers, teachers)
	return nil
}

// SaveCourses replaces the entire course collection.
func (s *GormStore) SaveCourses(courses []models.Course) error {
	if err := replaceAll(s.db, &models.Course{}, courses); err != nil {
		return fmt.Errorf("save courses: %w", err)
	}
	s.cacheSet(cacheKeyCourses, courses)
	return nil
}

// replaceAll swaps a whole table's contents inside one transaction.
func replaceAll[T any](db *gorm.DB, model interface{}, rows []T) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(model).Error; err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}
		return tx.CreateInBatches(rows, 100).Error
	})
}

func (s *GormStore) loadCollection(cacheKey string, dst interface{}, model interface{}) error {
	if s.cacheGet(cacheKey, dst) {
		return nil
	}
	if err := s.db.Model(model).Find(dst).Error; err != nil {
		return err
	}
	s.cacheSet(cacheKey, dst)
	return nil
}

func (s *GormStore) cacheGet(key string, dst interface{}) bool {
	if s.redis == nil {
		return false
	}
	ctx := context.Background()
	data, err := s.redis.Get(ctx, key).Bytes()
	if err != nil {
		return false
	}
	if err := json.Unmarshal(data, dst); err != nil {
		logrus.WithError(err).WithField("key", key).Warn("Dropping unreadable cache entry")
		s.redis.Del(ctx, key)
		return false
	}
	return true
}

func (s *GormStore) cacheSet(key string, v interface{}) {
	if s.redis == nil {
		return
	}
	data, err := json.Marshal(v)
	if err != nil {
		logrus.WithError(err).WithField("key", key).Warn("Failed to marshal cache entry")
		return
	}
	if err := s.redis.Set(context.Background(), key, data, cacheTTL).Err(); err != nil {
		logrus.WithError(err).WithField("key", key).Warn("Failed to cache collection")
	}
}
