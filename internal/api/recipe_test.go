package api

import (
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/shortcode"
	"github.com/pageza/foodgram/backend/internal/testhelpers"
	"github.com/pageza/foodgram/backend/internal/types"
)

type recipeFixture struct {
	app    *testApp
	author *models.User
	token  string
	flour  *models.Ingredient
	salt   *models.Ingredient
	tag    *models.Tag
}

func newRecipeFixture(t *testing.T, createLimit int) *recipeFixture {
	app := newTestApp(t, createLimit)
	author := testhelpers.CreateUser(t, app.db)
	return &recipeFixture{
		app:    app,
		author: author,
		token:  app.token(t, author),
		flour:  testhelpers.CreateIngredient(t, app.db, "Flour", "g"),
		salt:   testhelpers.CreateIngredient(t, app.db, "Salt", "g"),
		tag:    testhelpers.CreateTag(t, app.db, "Breakfast"),
	}
}

func (f *recipeFixture) body(amounts ...int) map[string]interface{} {
	ingredients := []map[string]interface{}{}
	for i, a := range amounts {
		id := f.flour.ID
		if i == 1 {
			id = f.salt.ID
		}
		ingredients = append(ingredients, map[string]interface{}{"id": id, "amount": a})
	}
	return map[string]interface{}{
		"name":         "Pancakes",
		"text":         "Mix and fry.",
		"image":        pixel,
		"cooking_time": 20,
		"tags":         []uuid.UUID{f.tag.ID},
		"ingredients":  ingredients,
	}
}

func (f *recipeFixture) create(t *testing.T, amounts ...int) types.RecipeResponse {
	t.Helper()
	rr := f.app.do(t, http.MethodPost, "/api/recipes", f.body(amounts...), f.token)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	return decode[types.RecipeResponse](t, rr)
}

func TestCreateRecipe(t *testing.T) {
	f := newRecipeFixture(t, 10)

	recipe := f.create(t, 200, 5)
	assert.Equal(t, "Pancakes", recipe.Name)
	assert.Equal(t, f.author.ID, recipe.Author.ID)
	require.Len(t, recipe.Ingredients, 2)
	assert.Equal(t, "Flour", recipe.Ingredients[0].Name)
	assert.Equal(t, 200, recipe.Ingredients[0].Amount)
	assert.Equal(t, "g", recipe.Ingredients[0].MeasurementUnit)
	require.Len(t, recipe.Tags, 1)
	assert.Equal(t, "breakfast", recipe.Tags[0].Slug)
	assert.False(t, recipe.IsFavorited)

	var stored models.Recipe
	require.NoError(t, f.app.db.First(&stored, "id = ?", recipe.ID).Error)
	assert.True(t, shortcode.Valid(stored.ShortCode))
}

func TestCreateRecipeRejects(t *testing.T) {
	f := newRecipeFixture(t, 10)

	rr := f.app.do(t, http.MethodPost, "/api/recipes", f.body(1), "")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	body := f.body(0)
	body["cooking_time"] = 0
	body["tags"] = []uuid.UUID{}
	rr = f.app.do(t, http.MethodPost, "/api/recipes", body, f.token)
	require.Equal(t, http.StatusBadRequest, rr.Code)
	errs := decode[struct {
		Errors map[string][]string `json:"errors"`
	}](t, rr)
	assert.Contains(t, errs.Errors, "cooking_time")
	assert.Contains(t, errs.Errors, "tags")
	assert.Contains(t, errs.Errors, "ingredients")

	var n int64
	require.NoError(t, f.app.db.Model(&models.Recipe{}).Count(&n).Error)
	assert.Zero(t, n)

	rr = f.app.do(t, http.MethodPost, "/api/recipes", f.body(models.MaxAmount+1), f.token)
	require.Equal(t, http.StatusBadRequest, rr.Code)
	errs = decode[struct {
		Errors map[string][]string `json:"errors"`
	}](t, rr)
	assert.Equal(t, []string{"Amount must be between 1 and 32767."}, errs.Errors["ingredients"])
	require.NoError(t, f.app.db.Model(&models.Recipe{}).Count(&n).Error)
	assert.Zero(t, n)

	rr = f.app.do(t, http.MethodPost, "/api/recipes", "not an object", f.token)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestCreateRecipeRateLimited(t *testing.T) {
	f := newRecipeFixture(t, 2)
	f.create(t, 1)
	f.create(t, 1)

	rr := f.app.do(t, http.MethodPost, "/api/recipes", f.body(1), f.token)
	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
	assert.NotEmpty(t, rr.Header().Get("Retry-After"))
}

func TestShortLinkRoundTrip(t *testing.T) {
	f := newRecipeFixture(t, 10)
	recipe := f.create(t, 1)

	rr := f.app.do(t, http.MethodGet, fmt.Sprintf("/api/recipes/%s/get-link", recipe.ID), nil, "")
	require.Equal(t, http.StatusOK, rr.Code)
	link := decode[map[string]string](t, rr)["short-link"]
	require.True(t, strings.HasPrefix(link, "http://foodgram.test/s/"), link)
	require.True(t, strings.HasSuffix(link, "/"))

	path := strings.TrimPrefix(link, "http://foodgram.test")
	rr = f.app.do(t, http.MethodGet, path, nil, "")
	assert.Equal(t, http.StatusFound, rr.Code)
	assert.Equal(t, "/recipes/"+recipe.ID.String(), rr.Header().Get("Location"))

	rr = f.app.do(t, http.MethodGet, strings.TrimSuffix(path, "/"), nil, "")
	assert.Equal(t, http.StatusFound, rr.Code)

	for _, bad := range []string{"/s/zz9/", "/s/a_b/", "/s/toolong/"} {
		rr = f.app.do(t, http.MethodGet, bad, nil, "")
		assert.Equal(t, http.StatusNotFound, rr.Code, bad)
	}

	rr = f.app.do(t, http.MethodGet, fmt.Sprintf("/api/recipes/%s/get-link", uuid.New()), nil, "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestUpdateAndDeleteRecipe(t *testing.T) {
	f := newRecipeFixture(t, 10)
	recipe := f.create(t, 1)
	path := "/api/recipes/" + recipe.ID.String()

	other := testhelpers.CreateUser(t, f.app.db)
	otherToken := f.app.token(t, other)

	body := f.body(50)
	body["name"] = "Waffles"
	rr := f.app.do(t, http.MethodPatch, path, body, otherToken)
	assert.Equal(t, http.StatusForbidden, rr.Code)

	rr = f.app.do(t, http.MethodPatch, path, body, f.token)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	updated := decode[types.RecipeResponse](t, rr)
	assert.Equal(t, "Waffles", updated.Name)
	assert.Equal(t, 50, updated.Ingredients[0].Amount)

	assert.Equal(t, http.StatusForbidden, f.app.do(t, http.MethodDelete, path, nil, otherToken).Code)
	assert.Equal(t, http.StatusNoContent, f.app.do(t, http.MethodDelete, path, nil, f.token).Code)
	assert.Equal(t, http.StatusNotFound, f.app.do(t, http.MethodGet, path, nil, "").Code)
	assert.Equal(t, http.StatusNotFound, f.app.do(t, http.MethodGet, "/api/recipes/not-a-uuid", nil, "").Code)
}

func TestFavoriteAndCart(t *testing.T) {
	f := newRecipeFixture(t, 10)
	recipe := f.create(t, 200, 5)
	reader := testhelpers.CreateUser(t, f.app.db)
	token := f.app.token(t, reader)
	base := "/api/recipes/" + recipe.ID.String()

	rr := f.app.do(t, http.MethodPost, base+"/favorite", nil, token)
	require.Equal(t, http.StatusCreated, rr.Code)
	short := decode[types.RecipeShortResponse](t, rr)
	assert.Equal(t, recipe.ID, short.ID)
	assert.Equal(t, 20, short.CookingTime)

	assert.Equal(t, http.StatusBadRequest, f.app.do(t, http.MethodPost, base+"/favorite", nil, token).Code)
	assert.Equal(t, http.StatusBadRequest, f.app.do(t, http.MethodDelete, base+"/shopping_cart", nil, token).Code)
	assert.Equal(t, http.StatusCreated, f.app.do(t, http.MethodPost, base+"/shopping_cart", nil, token).Code)

	got := decode[types.RecipeResponse](t, f.app.do(t, http.MethodGet, base, nil, token))
	assert.True(t, got.IsFavorited)
	assert.True(t, got.IsInShoppingCart)

	assert.Equal(t, http.StatusNoContent, f.app.do(t, http.MethodDelete, base+"/favorite", nil, token).Code)
	got = decode[types.RecipeResponse](t, f.app.do(t, http.MethodGet, base, nil, token))
	assert.False(t, got.IsFavorited)
	assert.True(t, got.IsInShoppingCart)

	anon := decode[types.RecipeResponse](t, f.app.do(t, http.MethodGet, base, nil, ""))
	assert.False(t, anon.IsInShoppingCart)

	assert.Equal(t, http.StatusUnauthorized, f.app.do(t, http.MethodPost, base+"/favorite", nil, "").Code)
	assert.Equal(t, http.StatusNotFound, f.app.do(t, http.MethodPost, "/api/recipes/"+uuid.NewString()+"/favorite", nil, token).Code)
}

func TestDownloadShoppingCart(t *testing.T) {
	f := newRecipeFixture(t, 10)
	first := f.create(t, 200, 5)
	second := f.create(t, 100)

	for _, r := range []types.RecipeResponse{first, second} {
		rr := f.app.do(t, http.MethodPost, "/api/recipes/"+r.ID.String()+"/shopping_cart", nil, f.token)
		require.Equal(t, http.StatusCreated, rr.Code)
	}

	rr := f.app.do(t, http.MethodGet, "/api/recipes/download_shopping_cart", nil, f.token)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "text/plain", rr.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="shopping_list.txt"`, rr.Header().Get("Content-Disposition"))
	assert.Equal(t, "- Flour (g) — 300\n- Salt (g) — 5", rr.Body.String())

	rr = f.app.do(t, http.MethodGet, "/api/recipes/download_shopping_cart", nil, "")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestListRecipes(t *testing.T) {
	f := newRecipeFixture(t, 20)
	for i := 0; i < 8; i++ {
		f.create(t, i+1)
	}
	other := testhelpers.CreateUser(t, f.app.db)
	testhelpers.CreateRecipe(t, f.app.db, other, "zZ9", nil)

	page := decode[types.Page[types.RecipeResponse]](t, f.app.do(t, http.MethodGet, "/api/recipes", nil, ""))
	assert.Equal(t, int64(9), page.Count)
	assert.Len(t, page.Results, 6)
	require.NotNil(t, page.Next)
	assert.Equal(t, "http://example.com/api/recipes?page=2", *page.Next)
	assert.Nil(t, page.Previous)

	page = decode[types.Page[types.RecipeResponse]](t, f.app.do(t, http.MethodGet, "/api/recipes?page=2&limit=4", nil, ""))
	assert.Len(t, page.Results, 4)
	require.NotNil(t, page.Previous)
	assert.Equal(t, "http://example.com/api/recipes?limit=4", *page.Previous)

	rr := f.app.do(t, http.MethodGet, "/api/recipes?page=9", nil, "")
	assert.Equal(t, http.StatusNotFound, rr.Code)

	page = decode[types.Page[types.RecipeResponse]](t, f.app.do(t, http.MethodGet, "/api/recipes?author="+other.ID.String(), nil, ""))
	assert.Equal(t, int64(1), page.Count)

	page = decode[types.Page[types.RecipeResponse]](t, f.app.do(t, http.MethodGet, "/api/recipes?tags=breakfast&limit=100", nil, ""))
	assert.Equal(t, int64(8), page.Count)

	page = decode[types.Page[types.RecipeResponse]](t, f.app.do(t, http.MethodGet, "/api/recipes?is_favorited=1", nil, f.token))
	assert.Zero(t, page.Count)
	assert.NotNil(t, page.Results)

	rr = f.app.do(t, http.MethodGet, "/api/recipes?author=abc", nil, "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}
