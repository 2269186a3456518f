package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/oksasatya/masjid-api/config"
	"github.com/oksasatya/masjid-api/internal/domain/entity"
	repo "github.com/oksasatya/masjid-api/internal/domain/repository"
	pginfra "github.com/oksasatya/masjid-api/internal/infrastructure/postgres"
	"github.com/oksasatya/masjid-api/pkg/helpers"
)

// seed creates an admin account, or promotes an existing account with the
// same email to admin.
func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	ctx := context.Background()

	email := entity.NormalizeEmail(os.Getenv("SEED_ADMIN_EMAIL"))
	password := os.Getenv("SEED_ADMIN_PASSWORD")
	name := os.Getenv("SEED_ADMIN_NAME")
	phone := os.Getenv("SEED_ADMIN_PHONE")
	if email == "" {
		log.Fatal("SEED_ADMIN_EMAIL is required")
	}
	if name == "" {
		name = "Administrator"
	}

	pool, err := pginfra.NewPool(ctx, cfg.PostgresDSN(), 2, 1, cfg.DBMaxConnLife)
	if err != nil {
		log.Fatalf("failed to connect to postgres: %v", err)
	}
	defer pool.Close()
	users := pginfra.NewUserRepository(pool)

	u, err := users.GetByEmail(ctx, email)
	switch {
	case err == nil:
		if u.Role == entity.RoleAdmin {
			fmt.Printf("user %s is already an admin\n", email)
			return
		}
		if err := users.SetRole(ctx, u.ID, u.Version, entity.RoleAdmin); err != nil {
			log.Fatalf("failed to promote %s: %v", email, err)
		}
		fmt.Printf("promoted %s to admin (id=%s)\n", email, u.ID)
	case errors.Is(err, repo.ErrNotFound):
		if len(password) < 8 || phone == "" {
			log.Fatal("SEED_ADMIN_PASSWORD (min 8 chars) and SEED_ADMIN_PHONE are required to create an admin")
		}
		hash, err := helpers.HashPassword(password)
		if err != nil {
			log.Fatalf("failed to hash password: %v", err)
		}
		u = &entity.User{
			UniqueID:     uuid.NewString(),
			FullName:     name,
			Email:        email,
			Phone:        phone,
			PasswordHash: hash,
			Role:         entity.RoleAdmin,
		}
		if err := users.Create(ctx, u); err != nil {
			log.Fatalf("failed to seed admin: %v", err)
		}
		fmt.Printf("seeded admin: id=%s email=%s name=%s\n", u.ID, email, name)
	default:
		log.Fatalf("failed to look up %s: %v", email, err)
	}
}
