package main

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/pageza/foodgram/backend/config"
	"github.com/pageza/foodgram/backend/internal/database"
	"github.com/pageza/foodgram/backend/internal/logging"
	"github.com/pageza/foodgram/backend/internal/repository"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/types"
)

const password = "testpassword123"

var testUsers = []types.RegisterRequest{
	{Email: "john.doe@example.com", Username: "johndoe", FirstName: "John", LastName: "Doe"},
	{Email: "jane.smith@example.com", Username: "janesmith", FirstName: "Jane", LastName: "Smith"},
	{Email: "bob.wilson@example.com", Username: "bobwilson", FirstName: "Bob", LastName: "Wilson"},
	{Email: "alice.cooper@example.com", Username: "alicecooper", FirstName: "Alice", LastName: "Cooper"},
}

func main() {
	logging.Setup("info", true)

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	db, err := database.Open(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	if err := database.RunMigrations(db, "migrations"); err != nil {
		log.Fatal().Err(err).Msg("Failed to run migrations")
	}

	ctx := context.Background()
	users := repository.NewUserRepository(db)
	auth := service.NewAuthService(users, nil, cfg.JWTSecret)

	created := 0
	for _, req := range testUsers {
		exists, err := users.ExistsByEmail(ctx, req.Email)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to look up user")
		}
		if exists {
			log.Info().Str("email", req.Email).Msg("User already exists, skipping")
			continue
		}

		req.Password = password
		if _, err := auth.Register(ctx, &req); err != nil {
			var verr *service.ValidationError
			if errors.As(err, &verr) {
				log.Warn().Str("email", req.Email).Interface("errors", verr.Fields).Msg("User rejected")
				continue
			}
			log.Fatal().Err(err).Str("email", req.Email).Msg("Failed to create user")
		}
		created++
		log.Info().Str("email", req.Email).Str("username", req.Username).Msg("Created test user")
	}

	// everyone follows the first user so the subscriptions page has content
	first, err := users.GetByEmail(ctx, testUsers[0].Email)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load first test user")
	}
	for _, req := range testUsers[1:] {
		u, err := users.GetByEmail(ctx, req.Email)
		if err != nil {
			continue
		}
		if err := users.Subscribe(ctx, u.ID, first.ID); err != nil && !errors.Is(err, repository.ErrMembershipExists) {
			log.Warn().Err(err).Str("email", req.Email).Msg("Failed to subscribe")
		}
	}

	log.Info().Int("created", created).Str("password", password).Msg("Test users ready")
}
