package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/testhelpers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: db,
	}), &gorm.Config{})
	require.NoError(t, err)

	return gormDB, mock
}

func TestRecipeRepository_ExistsByShortCode(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewRecipeRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM "recipes" WHERE short_code = $1`)).
		WithArgs("aB3").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM "recipes" WHERE short_code = $1`)).
		WithArgs("zzz").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	taken, err := repo.ExistsByShortCode(context.Background(), "aB3")
	require.NoError(t, err)
	assert.True(t, taken)

	taken, err = repo.ExistsByShortCode(context.Background(), "zzz")
	require.NoError(t, err)
	assert.False(t, taken)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecipeRepository_ExistsByShortCodeError(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewRecipeRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM "recipes"`)).
		WillReturnError(errors.New("connection reset"))

	_, err := repo.ExistsByShortCode(context.Background(), "abc")
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

type fixture struct {
	db     *gorm.DB
	repo   RecipeRepository
	author *models.User
	flour  *models.Ingredient
	salt   *models.Ingredient
	sugar  *models.Ingredient
	tag    *models.Tag
}

func newFixture(t *testing.T) *fixture {
	db := testhelpers.SetupSQLite(t)
	return &fixture{
		db:     db,
		repo:   NewRecipeRepository(db),
		author: testhelpers.CreateUser(t, db),
		flour:  testhelpers.CreateIngredient(t, db, "Flour", "g"),
		salt:   testhelpers.CreateIngredient(t, db, "Salt", "g"),
		sugar:  testhelpers.CreateIngredient(t, db, "Sugar", "g"),
		tag:    testhelpers.CreateTag(t, db, "Breakfast"),
	}
}

func (f *fixture) recipe(code string, lines ...models.RecipeIngredient) *models.Recipe {
	return &models.Recipe{
		AuthorID:    f.author.ID,
		Name:        "Pancakes",
		Text:        "Mix and fry.",
		Image:       "https://img.example.com/p.png",
		CookingTime: 20,
		ShortCode:   code,
		Tags:        []models.Tag{*f.tag},
		Ingredients: lines,
	}
}

func TestRecipeRepository_CreateAndGet(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	r := f.recipe("abc",
		models.RecipeIngredient{IngredientID: f.salt.ID, Amount: 5},
		models.RecipeIngredient{IngredientID: f.flour.ID, Amount: 200},
	)
	require.NoError(t, f.repo.Create(ctx, r))

	got, err := f.repo.GetByID(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, "abc", got.ShortCode)
	assert.Equal(t, f.author.ID, got.Author.ID)
	require.Len(t, got.Tags, 1)
	assert.Equal(t, "breakfast", got.Tags[0].Slug)
	require.Len(t, got.Ingredients, 2)
	assert.Equal(t, "Salt", got.Ingredients[0].Ingredient.Name)
	assert.Equal(t, 200, got.Ingredients[1].Amount)

	exists, err := f.repo.ExistsByShortCode(ctx, "abc")
	require.NoError(t, err)
	assert.True(t, exists)

	byCode, err := f.repo.GetByShortCode(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, r.ID, byCode.ID)

	_, err = f.repo.GetByShortCode(ctx, "zzz")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = f.repo.GetByID(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRecipeRepository_CreateDuplicateShortCode(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.repo.Create(ctx, f.recipe("abc", models.RecipeIngredient{IngredientID: f.salt.ID, Amount: 1})))

	dup := f.recipe("abc", models.RecipeIngredient{IngredientID: f.salt.ID, Amount: 1})
	err := f.repo.Create(ctx, dup)
	assert.ErrorIs(t, err, ErrDuplicateShortCode)

	var count int64
	require.NoError(t, f.db.Model(&models.Recipe{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestRecipeRepository_CreateRollsBackOnBadIngredients(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	r := f.recipe("xyz",
		models.RecipeIngredient{IngredientID: f.salt.ID, Amount: 1},
		models.RecipeIngredient{IngredientID: f.salt.ID, Amount: 2},
	)
	err := f.repo.Create(ctx, r)
	require.Error(t, err)

	exists, err := f.repo.ExistsByShortCode(ctx, "xyz")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestRecipeRepository_UpdateReplacesIngredients(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	r := f.recipe("abc",
		models.RecipeIngredient{IngredientID: f.flour.ID, Amount: 200},
		models.RecipeIngredient{IngredientID: f.salt.ID, Amount: 5},
	)
	require.NoError(t, f.repo.Create(ctx, r))

	r.Name = "Crepes"
	r.Ingredients = []models.RecipeIngredient{{IngredientID: f.sugar.ID, Amount: 50}}
	r.Tags = nil
	require.NoError(t, f.repo.Update(ctx, r))

	got, err := f.repo.GetByID(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, "Crepes", got.Name)
	assert.Equal(t, "abc", got.ShortCode)
	assert.Empty(t, got.Tags)
	require.Len(t, got.Ingredients, 1)
	assert.Equal(t, "Sugar", got.Ingredients[0].Ingredient.Name)
}

func TestRecipeRepository_UpdateFailureKeepsOriginalIngredients(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	r := f.recipe("abc",
		models.RecipeIngredient{IngredientID: f.flour.ID, Amount: 200},
		models.RecipeIngredient{IngredientID: f.salt.ID, Amount: 5},
	)
	require.NoError(t, f.repo.Create(ctx, r))

	update := *r
	update.Name = "Broken"
	update.Ingredients = []models.RecipeIngredient{
		{IngredientID: f.sugar.ID, Amount: 10},
		{IngredientID: uuid.New(), Amount: 0},
	}
	require.Error(t, f.repo.Update(ctx, &update))

	got, err := f.repo.GetByID(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, "Pancakes", got.Name)
	require.Len(t, got.Ingredients, 2)
	assert.Equal(t, "Flour", got.Ingredients[0].Ingredient.Name)
	assert.Equal(t, 200, got.Ingredients[0].Amount)
	assert.Equal(t, "Salt", got.Ingredients[1].Ingredient.Name)
}

func TestRecipeRepository_UpdateMissing(t *testing.T) {
	f := newFixture(t)
	r := f.recipe("abc")
	r.ID = uuid.New()
	assert.ErrorIs(t, f.repo.Update(context.Background(), r), ErrNotFound)
}

func TestRecipeRepository_Delete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	r := f.recipe("abc", models.RecipeIngredient{IngredientID: f.flour.ID, Amount: 1})
	require.NoError(t, f.repo.Create(ctx, r))
	require.NoError(t, f.repo.AddMember(ctx, Favorites, f.author.ID, r.ID))

	require.NoError(t, f.repo.Delete(ctx, r.ID))
	_, err := f.repo.GetByID(ctx, r.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, f.repo.Delete(ctx, r.ID), ErrNotFound)
}

func TestRecipeRepository_Membership(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := testhelpers.CreateUser(t, f.db)

	r := f.recipe("abc", models.RecipeIngredient{IngredientID: f.flour.ID, Amount: 1})
	require.NoError(t, f.repo.Create(ctx, r))

	require.NoError(t, f.repo.AddMember(ctx, Favorites, user.ID, r.ID))
	assert.ErrorIs(t, f.repo.AddMember(ctx, Favorites, user.ID, r.ID), ErrMembershipExists)

	set, err := f.repo.MemberSet(ctx, Favorites, user.ID, []uuid.UUID{r.ID, uuid.New()})
	require.NoError(t, err)
	assert.Equal(t, map[uuid.UUID]bool{r.ID: true}, set)

	// the cart is a separate set
	inCart, err := f.repo.MemberSet(ctx, ShoppingCart, user.ID, []uuid.UUID{r.ID})
	require.NoError(t, err)
	assert.Empty(t, inCart)
	assert.ErrorIs(t, f.repo.RemoveMember(ctx, ShoppingCart, user.ID, r.ID), ErrMembershipMissing)

	require.NoError(t, f.repo.RemoveMember(ctx, Favorites, user.ID, r.ID))
	assert.ErrorIs(t, f.repo.RemoveMember(ctx, Favorites, user.ID, r.ID), ErrMembershipMissing)
}

func TestRecipeRepository_CartRecipesAndList(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := testhelpers.CreateUser(t, f.db)
	lunch := testhelpers.CreateTag(t, f.db, "Lunch")

	a := f.recipe("aaa", models.RecipeIngredient{IngredientID: f.flour.ID, Amount: 200}, models.RecipeIngredient{IngredientID: f.salt.ID, Amount: 5})
	b := f.recipe("bbb", models.RecipeIngredient{IngredientID: f.flour.ID, Amount: 300})
	b.Tags = []models.Tag{*lunch}
	c := f.recipe("ccc")
	for _, r := range []*models.Recipe{a, b, c} {
		require.NoError(t, f.repo.Create(ctx, r))
	}
	require.NoError(t, f.repo.AddMember(ctx, ShoppingCart, user.ID, a.ID))
	require.NoError(t, f.repo.AddMember(ctx, ShoppingCart, user.ID, b.ID))
	require.NoError(t, f.repo.AddMember(ctx, Favorites, user.ID, c.ID))

	cart, err := f.repo.CartRecipes(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, cart, 2)
	for _, r := range cart {
		for _, ri := range r.Ingredients {
			assert.NotEqual(t, uuid.Nil, ri.Ingredient.ID)
		}
	}

	all, total, err := f.repo.List(ctx, RecipeFilter{Page: Page{Limit: 2}})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, all, 2)

	tagged, total, err := f.repo.List(ctx, RecipeFilter{TagSlugs: []string{"lunch"}})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, b.ID, tagged[0].ID)

	favs, total, err := f.repo.List(ctx, RecipeFilter{FavoritedBy: user.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, c.ID, favs[0].ID)

	inCart, total, err := f.repo.List(ctx, RecipeFilter{InCartOf: user.ID, AuthorID: f.author.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, inCart, 2)

	counts, err := f.repo.CountByAuthor(ctx, []uuid.UUID{f.author.ID, user.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(3), counts[f.author.ID])
	assert.Zero(t, counts[user.ID])
}
