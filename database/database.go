package database

import (
	"context"
	"educators_academy_go/config"
	"educators_academy_go/models"
	"fmt"
	"log"
	"time"

	"github.com/go-redis/redis/v8"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB
var RedisClient *redis.Client

// Connect initializes the database and Redis connections
func Connect() {
	connectDatabase()
	connectRedis()
}

// connectDatabase initializes the database connection
func connectDatabase() {
	var err error
	dsn := config.AppConfig.GetDSN()

	// Configure GORM logger based on environment
	var gormLogger logger.Interface
	if config.AppConfig.AppEnv == "development" {
		gormLogger = logger.Default.LogMode(logger.Info)
	} else {
		gormLogger = logger.Default.LogMode(logger.Silent)
	}

	// Retry logic for transient tunnel issues
	var lastErr error
	for attempt := 1; attempt <= 8; attempt++ {
		DB, err = gorm.Open(mysql.Open(dsn), &gorm.Config{
			Logger: gormLogger,
		})
		if err == nil {
			break
		}
		lastErr = err
		log.Printf("Database connect attempt %d failed: %v", attempt, err)
		time.Sleep(time.Duration(attempt*attempt) * 300 * time.Millisecond)
	}
	if lastErr != nil && DB == nil {
		log.Fatal("Failed to connect to database after retries:", lastErr)
	}

	log.Println("Database connected successfully")

	// Configure connection pool
	sqlDB, err := DB.DB()
	if err != nil {
		log.Fatal("Failed to get database instance:", err)
	}

	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(50)
	sqlDB.SetConnMaxLifetime(55 * time.Minute)

	if !config.AppConfig.SkipMigrate {
		AutoMigrate()
	}
}

// AutoMigrate performs automatic database migration
func AutoMigrate() {
	err := DB.AutoMigrate(
		&models.GradeData{},
		&models.Teacher{},
		&models.Course{},
		&models.ActivityLog{},
	)

	if err != nil {
		log.Fatal("Auto migration failed:", err)
	}

	log.Println("Database migration completed successfully")
}

// connectRedis initializes Redis connection
func connectRedis() {
	RedisClient = redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", config.AppConfig.RedisHost, config.AppConfig.RedisPort),
		Password: config.AppConfig.RedisPassword,
		DB:       0, // use default DB
	})

	// Test Redis connection
	ctx := context.Background()
	_, err := RedisClient.Ping(ctx).Result()
	if err != nil {
		log.Printf("Redis connection failed: %v", err)
		log.Println("Continuing without Redis - collection cache disabled")
		RedisClient = nil
		return
	}

	log.Println("Redis connected successfully")
}

// GetRedisClient returns the Redis client instance
func GetRedisClient() *redis.Client {
	return RedisClient
}

// GetDB returns the database instance
func GetDB() *gorm.DB {
	return DB
}

// Close closes the database connection
func Close() {
	sqlDB, err := DB.DB()
	if err != nil {
		log.Println("Error getting database instance:", err)
		return
	}

	err = sqlDB.Close()
	if err != nil {
		log.Println("Error closing database connection:", err)
		return
	}

	log.Println("Database connection closed")
}
