package main

import (
	"context"
	"flag"
	"os"

	"github.com/rs/zerolog/log"

	"github.com/pageza/foodgram/backend/config"
	"github.com/pageza/foodgram/backend/internal/database"
	"github.com/pageza/foodgram/backend/internal/logging"
	"github.com/pageza/foodgram/backend/internal/repository"
	"github.com/pageza/foodgram/backend/internal/service"
)

func main() {
	path := flag.String("file", "data/ingredients.csv", "CSV file with name,unit rows")
	flag.Parse()

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

	f, err := os.Open(*path)
	if err != nil {
		log.Fatal().Err(err).Str("file", *path).Msg("Failed to open ingredients file")
	}
	defer f.Close()

	catalog := service.NewCatalogService(repository.NewCatalogRepository(db))
	result, err := catalog.ImportIngredients(context.Background(), f)
	if err != nil {
		log.Fatal().Err(err).Msg("Import failed")
	}

	log.Info().
		Int("created", result.Created).
		Int("existing", result.Existing).
		Int("skipped", result.Skipped).
		Msg("Ingredients loaded")
}
