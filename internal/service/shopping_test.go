package service_test

import (
	"context"
	"testing"

	"github.com/pageza/foodgram/backend/internal/repository"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/testhelpers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShoppingService_DownloadList(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := testhelpers.CreateUser(t, env.db)

	first := testhelpers.CreateRecipe(t, env.db, env.author, "AAA", nil,
		testhelpers.Amount{Ingredient: env.flour, Amount: 200},
		testhelpers.Amount{Ingredient: env.salt, Amount: 5},
	)
	second := testhelpers.CreateRecipe(t, env.db, env.author, "BBB", nil,
		testhelpers.Amount{Ingredient: env.flour, Amount: 100},
	)
	favoriteOnly := testhelpers.CreateRecipe(t, env.db, env.author, "CCC", nil,
		testhelpers.Amount{Ingredient: env.sugar, Amount: 1},
	)

	require.NoError(t, env.recipes.AddMember(ctx, repository.ShoppingCart, user.ID, first.ID))
	require.NoError(t, env.recipes.AddMember(ctx, repository.ShoppingCart, user.ID, second.ID))
	require.NoError(t, env.recipes.AddMember(ctx, repository.Favorites, user.ID, favoriteOnly.ID))

	svc := service.NewShoppingService(env.recipes)
	body, err := svc.DownloadList(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "- Flour (g) — 300\n- Salt (g) — 5", body)

	again, err := svc.DownloadList(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, body, again)
}

func TestShoppingService_EmptyCart(t *testing.T) {
	env := newTestEnv(t)
	user := testhelpers.CreateUser(t, env.db)

	body, err := service.NewShoppingService(env.recipes).DownloadList(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Empty(t, body)
}
