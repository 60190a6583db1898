package service_test

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/pageza/foodgram/backend/internal/cache"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/repository"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/testhelpers"
	"github.com/pageza/foodgram/backend/internal/types"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type testEnv struct {
	db      *gorm.DB
	redis   *miniredis.Miniredis
	recipes repository.RecipeRepository
	users   repository.UserRepository
	catalog repository.CatalogRepository
	links   *service.LinkService
	images  *service.ImageService
	author  *models.User
	flour   *models.Ingredient
	salt    *models.Ingredient
	sugar   *models.Ingredient
	tag     *models.Tag
}

func newTestEnv(t *testing.T) *testEnv {
	db := testhelpers.SetupSQLite(t)
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	recipes := repository.NewRecipeRepository(db)
	return &testEnv{
		db:      db,
		redis:   mr,
		recipes: recipes,
		users:   repository.NewUserRepository(db),
		catalog: repository.NewCatalogRepository(db),
		links:   service.NewLinkService(recipes, cache.New(client, "shortlink:"), "http://foodgram.test/"),
		images:  service.NewImageService(nil),
		author:  testhelpers.CreateUser(t, db),
		flour:   testhelpers.CreateIngredient(t, db, "Flour", "g"),
		salt:    testhelpers.CreateIngredient(t, db, "Salt", "g"),
		sugar:   testhelpers.CreateIngredient(t, db, "Sugar", "g"),
		tag:     testhelpers.CreateTag(t, db, "Breakfast"),
	}
}

func (e *testEnv) recipeService(opts ...service.RecipeOption) *service.RecipeService {
	return service.NewRecipeService(e.recipes, e.users, e.catalog, e.images, e.links, opts...)
}

const pixel = "data:image/png;base64,iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAYAAAAfFcSJAAAADUlEQVR42mP8z8BQDwAEhQGAhKmMIQAAAABJRU5ErkJggg=="

func (e *testEnv) request(lines ...types.IngredientAmount) *types.RecipeRequest {
	return &types.RecipeRequest{
		Name:        "Pancakes",
		Text:        "Mix and fry.",
		Image:       pixel,
		CookingTime: 15,
		Tags:        []uuid.UUID{e.tag.ID},
		Ingredients: lines,
	}
}

func (e *testEnv) countRecipes(t *testing.T) int64 {
	var n int64
	require.NoError(t, e.db.Model(&models.Recipe{}).Count(&n).Error)
	return n
}

func (e *testEnv) createRecipe(t *testing.T, svc *service.RecipeService, authorID uuid.UUID, lines ...types.IngredientAmount) *service.RecipeView {
	t.Helper()
	view, err := svc.Create(context.Background(), authorID, e.request(lines...))
	require.NoError(t, err)
	return view
}
