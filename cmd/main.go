package main

import (
	"context"
	"log"

	"github.com/atreidesdev/listopiaBackend/config"
	"github.com/atreidesdev/listopiaBackend/db"
	"github.com/atreidesdev/listopiaBackend/internal/auth/domain"
	authhandler "github.com/atreidesdev/listopiaBackend/internal/auth/handler"
	repo "github.com/atreidesdev/listopiaBackend/internal/auth/repository/postgres"
	authservice "github.com/atreidesdev/listopiaBackend/internal/auth/service"
	userhandler "github.com/atreidesdev/listopiaBackend/internal/user/handler"
	userservice "github.com/atreidesdev/listopiaBackend/internal/user/service"
	"github.com/atreidesdev/listopiaBackend/pkg/cache"
	"github.com/gofiber/fiber/v2"
)

func main() {
	cfg := config.Load()
	ctx := context.Background()

	if err := db.Migrate(cfg.DBURL); err != nil {
		log.Fatalf("failed to run migrations: %v", err)
	}

	dbPool, err := db.NewPostgresPool(ctx, cfg.DBURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer dbPool.Close()

	redis, err := cache.New(cfg.RedisURL)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer redis.Close()

	repository := repo.NewPostgresRepository(dbPool)
	tokenService := authservice.NewTokenService(cfg.JWTSecret, cfg.AccessExpiryMin, cfg.RefreshExpiryDays)
	tracker := authservice.NewAttemptTracker(repository)
	userService := authservice.NewUserService(repository, repository, tracker, tokenService)
	profileService := userservice.NewProfileService(repository, redis)

	authHandler := authhandler.NewAuthHandler(userService, tokenService)
	userHandler := userhandler.NewUserHandler(profileService)

	app := fiber.New()
	authhandler.RegisterRoutes(app, authHandler)
	userhandler.RegisterRoutes(app, userHandler,
		authHandler.RequireAuth(), authHandler.RequireRole(domain.RoleAdmin))

	log.Printf("listening on :%s", cfg.Port)
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}
