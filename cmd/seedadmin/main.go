// Command seedadmin creates the initial admin account so a fresh deployment
// has someone who can log in and create the remaining users.
// Usage: go run ./cmd/seedadmin <email> <password> [full name]
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"mediaflow/internal/config"
	"mediaflow/internal/domain"
	"mediaflow/internal/repository/postgres"
	"mediaflow/internal/service"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	if len(os.Args) < 3 {
		fmt.Println("Usage: seedadmin <email> <password> [full name]")
		os.Exit(1)
	}
	email := os.Args[1]
	password := os.Args[2]
	fullName := "Administrator"
	if len(os.Args) > 3 {
		fullName = strings.Join(os.Args[3:], " ")
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	db, err := postgres.NewDB(&cfg.DB)
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer func() { _ = db.Close() }()

	userSvc := service.NewUserService(postgres.NewUserRepo(db))

	user, err := userSvc.Create(context.Background(), service.CreateUserInput{
		Email:    email,
		Password: password,
		FullName: fullName,
		Role:     domain.RoleAdmin,
	})
	if err != nil {
		return fmt.Errorf("creating admin user: %w", err)
	}

	fmt.Printf("created admin %s (%s)\n", user.Email, user.ID)
	return nil
}
