package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"anoa.com/schoolhub/internal/bootstrap"
	"anoa.com/schoolhub/internal/config"
	"anoa.com/schoolhub/internal/server"
	"anoa.com/schoolhub/pkg/database"
	"anoa.com/schoolhub/pkg/logger"
	"github.com/gin-gonic/gin"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger.Init(cfg.RollbarToken, cfg.AppEnv)
	defer logger.Flush()

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.Connect(database.Options{
		Host:     cfg.DBHost,
		Port:     cfg.DBPort,
		User:     cfg.DBUser,
		Password: cfg.DBPass,
		Name:     cfg.DBName,
		SSLMode:  cfg.DBSSLMode,
		URL:      cfg.DatabaseURL,
		Debug:    cfg.IsDevelopment(),
	})
	if err != nil {
		log.Fatalf("%v", err)
	}

	if err := bootstrap.Migrate(db); err != nil {
		log.Fatalf("migration failed: %v", err)
	}
	if err := bootstrap.SeedRegistrationCodes(db); err != nil {
		log.Fatalf("failed to seed registration codes: %v", err)
	}
	if cfg.IsDevelopment() {
		if err := bootstrap.SeedAdminAccount(db); err != nil {
			log.Fatalf("failed to seed admin account: %v", err)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	redisClient := database.ConnectRedis(ctx, cfg.RedisURL)
	if redisClient != nil {
		defer redisClient.Close()
	}

	srv, err := server.NewServer(cfg, db, redisClient)
	if err != nil {
		log.Fatalf("failed to build server: %v", err)
	}

	if err := srv.Run(ctx, ":"+cfg.Port); err != nil {
		logger.Error("server exited with error", err, nil)
		logger.Flush()
		log.Fatalf("server exited with error: %v", err)
	}
}
