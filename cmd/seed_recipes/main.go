package main

import (
	"context"
	"flag"
	"fmt"
	"strings"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/pageza/foodgram/backend/config"
	"github.com/pageza/foodgram/backend/internal/database"
	"github.com/pageza/foodgram/backend/internal/logging"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/repository"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/types"
)

// 1x1 PNG used as the image of every seeded recipe.
const placeholderImage = "data:image/png;base64,iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAYAAAAfFcSJAAAADUlEQVR42mP8z8BQDwAEhQGAhKmMIQAAAABJRU5ErkJggg=="

var seedTags = []string{"Breakfast", "Lunch", "Dinner", "Dessert", "Vegetarian"}

var units = []string{"g", "kg", "ml", "l", "pcs", "tbsp", "tsp", "cup"}

func main() {
	count := flag.Int("n", 25, "number of recipes to create")
	seed := flag.Int64("seed", 0, "gofakeit seed, 0 for random")
	flag.Parse()

	logging.Setup("info", true)
	gofakeit.Seed(*seed)

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
	recipes := repository.NewRecipeRepository(db)
	users := repository.NewUserRepository(db)
	catalog := repository.NewCatalogRepository(db)
	catalogService := service.NewCatalogService(catalog)
	recipeService := service.NewRecipeService(recipes, users, catalog, service.NewImageService(nil), nil)

	tagIDs := make([]uuid.UUID, 0, len(seedTags))
	for _, name := range seedTags {
		tag, err := catalogService.EnsureTag(ctx, name, strings.ToLower(name))
		if err != nil {
			log.Fatal().Err(err).Str("tag", name).Msg("Failed to create tag")
		}
		tagIDs = append(tagIDs, tag.ID)
	}

	ingredients := ensureIngredients(ctx, catalog, catalogService)
	authors, _, err := users.List(ctx, repository.Page{})
	if err != nil || len(authors) == 0 {
		log.Fatal().Err(err).Msg("No users to author recipes, run seed_test_users first")
	}

	created := 0
	for i := 0; i < *count; i++ {
		author := authors[gofakeit.Number(0, len(authors)-1)]
		req := fakeRecipe(tagIDs, ingredients)
		recipe, err := recipeService.Create(ctx, author.ID, req)
		if err != nil {
			log.Warn().Err(err).Str("name", req.Name).Msg("Failed to create recipe")
			continue
		}
		created++
		log.Info().Str("name", recipe.Name).Str("code", recipe.ShortCode).Msg("Created recipe")
	}
	log.Info().Int("created", created).Msg("Seeding finished")
}

// ensureIngredients tops the catalogue up with fake ingredients when it is
// nearly empty, for databases where load_ingredients was never run.
func ensureIngredients(ctx context.Context, catalog repository.CatalogRepository, catalogService *service.CatalogService) []models.Ingredient {
	existing, err := catalogService.ListIngredients(ctx, "")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to list ingredients")
	}
	for len(existing) < 20 {
		name := gofakeit.Fruit()
		if gofakeit.Bool() {
			name = gofakeit.Vegetable()
		}
		if _, err := catalog.EnsureIngredient(ctx, name, gofakeit.RandomString(units)); err != nil {
			log.Fatal().Err(err).Msg("Failed to create ingredient")
		}
		if existing, err = catalogService.ListIngredients(ctx, ""); err != nil {
			log.Fatal().Err(err).Msg("Failed to list ingredients")
		}
	}
	return existing
}

func fakeRecipe(tagIDs []uuid.UUID, ingredients []models.Ingredient) *types.RecipeRequest {
	gofakeit.ShuffleAnySlice(tagIDs)
	tags := append([]uuid.UUID(nil), tagIDs[:gofakeit.Number(1, 2)]...)

	picked := make(map[uuid.UUID]bool)
	var lines []types.IngredientAmount
	for len(lines) < gofakeit.Number(2, 6) {
		ing := ingredients[gofakeit.Number(0, len(ingredients)-1)]
		if picked[ing.ID] {
			continue
		}
		picked[ing.ID] = true
		lines = append(lines, types.IngredientAmount{ID: ing.ID, Amount: gofakeit.Number(1, 500)})
	}

	return &types.RecipeRequest{
		Name:        fmt.Sprintf("%s %s", gofakeit.AdjectiveDescriptive(), gofakeit.Dinner()),
		Text:        gofakeit.Paragraph(2, 3, 12, "\n"),
		Image:       placeholderImage,
		CookingTime: gofakeit.Number(models.MinCookingTime, 120),
		Tags:        tags,
		Ingredients: lines,
	}
}
