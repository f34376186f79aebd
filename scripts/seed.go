//go:build ignore

package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/hugh/teamboard/internal/auth"
	"github.com/hugh/teamboard/internal/database"
	"github.com/hugh/teamboard/internal/team"
	"github.com/hugh/teamboard/pkg/config"
	"github.com/hugh/teamboard/pkg/util"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger := util.NewLogger(cfg.Server.Env)

	db, err := database.Connect(&cfg.Database, logger)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	// Run migrations
	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("failed to run migrations: %v", err)
	}

	jwtService := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.Expiry())
	authService := auth.NewService(db, jwtService)
	teamService := team.NewService(db)

	email := os.Getenv("SEED_EMAIL")
	password := os.Getenv("SEED_PASSWORD")

	if email == "" {
		email = "admin@example.com"
	}
	if password == "" {
		password = "Admin123!"
	}

	resp, err := authService.Register(context.Background(), auth.RegisterInput{
		Email:     email,
		Password:  password,
		FirstName: "Seed",
		LastName:  "Admin",
	})
	if err != nil {
		if errors.Is(err, auth.ErrEmailTaken) {
			fmt.Printf("Seed user already exists: %s\n", email)
			return
		}
		log.Fatalf("failed to create seed user: %v", err)
	}

	detail, err := teamService.CreateTeam(context.Background(), "First Team", resp.User.ID)
	if err != nil {
		log.Fatalf("failed to create seed team: %v", err)
	}

	fmt.Printf("Seed user created successfully!\n")
	fmt.Printf("Email: %s\n", resp.User.Email)
	fmt.Printf("Team: %s (id %d)\n", detail.Name, detail.ID)
	fmt.Printf("Token: %s\n", resp.Token)
}
