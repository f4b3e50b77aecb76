package config

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/innovativedesigner773/sharecart/internal/models"
	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type Config struct {
	ServerPort    int
	LogLevel      string
	DatabaseURL   string
	JWTSecret     []byte
	PublicBaseURL string

	KafkaBrokers []string
	KafkaTopic   string

	PaidWindow      time.Duration
	ExpiredWindow   time.Duration
	AccessWindow    time.Duration
	AccessThreshold int64

	SweepInterval time.Duration
	PurgeInterval time.Duration
	RetainFor     time.Duration
}

func must(v string, name string) string {
	if v == "" {
		log.Fatalf("missing required env %s", name)
	}
	return v
}

func Load() *Config {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Notice: .env file not found: %v. Using system environment variables", err)
	}

	cfg := &Config{
		ServerPort:    EnvIntDefault("SERVER_PORT", 8080),
		LogLevel:      EnvDefault("LOG_LEVEL", "info"),
		DatabaseURL:   must(os.Getenv("DATABASE_URL"), "DATABASE_URL"),
		JWTSecret:     []byte(must(os.Getenv("JWT_HS256_SECRET"), "JWT_HS256_SECRET")),
		PublicBaseURL: EnvDefault("PUBLIC_BASE_URL", "http://localhost:8080"),

		KafkaBrokers: CSV(os.Getenv("KAFKA_BROKERS")),
		KafkaTopic:   EnvDefault("KAFKA_TOPIC", "sharecart_events"),

		PaidWindow:      time.Duration(EnvIntDefault("NOTIFY_PAID_WINDOW_HOURS", 24)) * time.Hour,
		ExpiredWindow:   time.Duration(EnvIntDefault("NOTIFY_EXPIRED_WINDOW_HOURS", 24)) * time.Hour,
		AccessWindow:    time.Duration(EnvIntDefault("NOTIFY_ACCESS_WINDOW_MINUTES", 60)) * time.Minute,
		AccessThreshold: int64(EnvIntDefault("NOTIFY_ACCESS_THRESHOLD", 5)),

		SweepInterval: time.Duration(EnvIntDefault("SWEEP_INTERVAL_SECONDS", 60)) * time.Second,
		PurgeInterval: time.Duration(EnvIntDefault("PURGE_INTERVAL_HOURS", 24)) * time.Hour,
		RetainFor:     time.Duration(EnvIntDefault("RETENTION_DAYS", 90)) * 24 * time.Hour,
	}
	return cfg
}

func configurePool(sqlDB *sql.DB) {
	const (
		maxOpenConns    = 20
		maxIdleConns    = 10
		connMaxLifetime = 30 * time.Minute
		connMaxIdleTime = 5 * time.Minute
	)

	sqlDB.SetMaxOpenConns(maxOpenConns)
	sqlDB.SetMaxIdleConns(maxIdleConns)
	sqlDB.SetConnMaxLifetime(connMaxLifetime)
	sqlDB.SetConnMaxIdleTime(connMaxIdleTime)
}

func InitDB(ctx context.Context, dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		PrepareStmt: true,
		NowFunc:     func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, fmt.Errorf("db connect: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("db handle: %w", err)
	}
	configurePool(sqlDB)

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(pingCtx); err != nil {
		return nil, fmt.Errorf("db ping: %w", err)
	}

	if err := db.AutoMigrate(&models.SharedCart{}); err != nil {
		return nil, fmt.Errorf("db migrate: %w", err)
	}

	return db, nil
}

func CSV(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func EnvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func EnvIntDefault(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
