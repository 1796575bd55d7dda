package database

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Options describes the PostgreSQL connection.
type Options struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
	// URL takes precedence over the individual fields when set.
	URL string
	// Debug enables SQL statement logging.
	Debug bool
}

func (o Options) DSN() string {
	if o.URL != "" {
		return o.URL
	}
	sslMode := o.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		o.Host, o.User, o.Password, o.Name, o.Port, sslMode,
	)
}

// Connect opens the gorm handle and configures the connection pool.
func Connect(opts Options) (*gorm.DB, error) {
	logLevel := logger.Warn
	if opts.Debug {
		logLevel = logger.Info
	}

	db, err := gorm.Open(postgres.Open(opts.DSN()), &gorm.Config{
		Logger:         logger.Default.LogMode(logLevel),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	return db, nil
}

// ConnectRedis returns nil when url is empty; Redis backed features are optional.
func ConnectRedis(ctx context.Context, url string) *redis.Client {
	if url == "" {
		log.Println("REDIS_URL not set, running without Redis")
		return nil
	}

	opt, err := redis.ParseURL(url)
	if err != nil {
		log.Printf("invalid REDIS_URL: %v", err)
		return nil
	}

	client := redis.NewClient(opt)
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		log.Printf("failed to connect to redis: %v", err)
		_ = client.Close()
		return nil
	}

	log.Println("Connected to Redis")
	return client
}
