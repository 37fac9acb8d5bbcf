package main

import (
	"context"
	"log"
	"os"

	"github.com/Baaaki/yamdb/internal/config"
	"github.com/Baaaki/yamdb/internal/database"
	"github.com/Baaaki/yamdb/internal/models"
	"github.com/Baaaki/yamdb/internal/repository"
)

// Creates the initial superuser. It then signs in through /auth/signup and
// /auth/token like everybody else.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	adminUsername := os.Getenv("ADMIN_USERNAME")
	adminEmail := os.Getenv("ADMIN_EMAIL")
	if adminUsername == "" || adminEmail == "" {
		log.Fatal("Missing environment variables: ADMIN_USERNAME, ADMIN_EMAIL")
	}

	ctx := context.Background()
	users := repository.NewUserRepository(db)

	existing, err := users.GetUserByEmail(ctx, adminEmail)
	if err != nil {
		log.Fatalf("Failed to look up admin: %v", err)
	}
	if existing != nil {
		log.Println("Admin user already exists:", existing.Username)
		return
	}

	admin := &models.User{
		Username:    adminUsername,
		Email:       adminEmail,
		Role:        models.RoleAdmin,
		IsSuperuser: true,
	}
	if err := users.CreateUser(ctx, admin); err != nil {
		log.Fatalf("Failed to create admin: %v", err)
	}

	log.Println("Admin user created")
	log.Println("   Username:", admin.Username)
	log.Println("   Email:", admin.Email)
}
