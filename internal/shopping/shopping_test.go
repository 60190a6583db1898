package shopping

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ingredient(name, unit string) models.Ingredient {
	return models.Ingredient{ID: uuid.New(), Name: name, MeasurementUnit: unit}
}

func recipe(items ...models.RecipeIngredient) models.Recipe {
	return models.Recipe{ID: uuid.New(), Ingredients: items}
}

func line(ing models.Ingredient, amount int) models.RecipeIngredient {
	return models.RecipeIngredient{IngredientID: ing.ID, Ingredient: ing, Amount: amount}
}

func TestAggregate_MergesAndKeepsOrder(t *testing.T) {
	flour := ingredient("Flour", "g")
	salt := ingredient("Salt", "g")
	sugar := ingredient("Sugar", "g")

	a := recipe(line(flour, 200), line(salt, 5))
	b := recipe(line(flour, 300), line(sugar, 50))

	list, err := Aggregate(context.Background(), []models.Recipe{a, b})
	require.NoError(t, err)

	assert.Equal(t, []Item{
		{Key: "Flour (g)", Amount: 500},
		{Key: "Salt (g)", Amount: 5},
		{Key: "Sugar (g)", Amount: 50},
	}, list.Items())
	assert.Equal(t, "- Flour (g) — 500\n- Salt (g) — 5\n- Sugar (g) — 50", Render(list))
}

func TestAggregate_EmptyCart(t *testing.T) {
	list, err := Aggregate(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, 0, list.Len())
	assert.Equal(t, "", Render(list))
}

func TestAggregate_RecipeWithoutIngredients(t *testing.T) {
	salt := ingredient("Salt", "g")
	list, err := Aggregate(context.Background(), []models.Recipe{recipe(), recipe(line(salt, 2))})
	require.NoError(t, err)
	assert.Equal(t, []Item{{Key: "Salt (g)", Amount: 2}}, list.Items())
}

func TestAggregate_MergesDistinctIngredientRecordsByName(t *testing.T) {
	milk1 := ingredient("Milk", "ml")
	milk2 := ingredient("Milk", "ml")
	milkL := ingredient("Milk", "l")

	list, err := Aggregate(context.Background(), []models.Recipe{
		recipe(line(milk1, 100), line(milkL, 1)),
		recipe(line(milk2, 250)),
	})
	require.NoError(t, err)

	amount, ok := list.Amount("Milk (ml)")
	require.True(t, ok)
	assert.Equal(t, 350, amount)
	amount, ok = list.Amount("Milk (l)")
	require.True(t, ok)
	assert.Equal(t, 1, amount)
	assert.Equal(t, 2, list.Len())
}

func TestAggregate_OrderInsensitiveTotals(t *testing.T) {
	egg := ingredient("Egg", "pcs")
	oil := ingredient("Oil", "ml")
	recipes := []models.Recipe{
		recipe(line(egg, 2), line(oil, 10)),
		recipe(line(oil, 15)),
		recipe(line(egg, 3)),
	}
	reversed := []models.Recipe{recipes[2], recipes[1], recipes[0]}

	forward, err := Aggregate(context.Background(), recipes)
	require.NoError(t, err)
	backward, err := Aggregate(context.Background(), reversed)
	require.NoError(t, err)

	assert.ElementsMatch(t, forward.Items(), backward.Items())
}

func TestAggregate_Additive(t *testing.T) {
	egg := ingredient("Egg", "pcs")
	oil := ingredient("Oil", "ml")
	first := []models.Recipe{recipe(line(egg, 2), line(oil, 10))}
	second := []models.Recipe{recipe(line(oil, 5)), recipe(line(egg, 1))}

	a, err := Aggregate(context.Background(), first)
	require.NoError(t, err)
	b, err := Aggregate(context.Background(), second)
	require.NoError(t, err)
	both, err := Aggregate(context.Background(), append(append([]models.Recipe{}, first...), second...))
	require.NoError(t, err)

	a.Merge(b)
	assert.Equal(t, both.Items(), a.Items())
}

func TestRender_Idempotent(t *testing.T) {
	list := NewList()
	list.Add("Water (ml)", 300)
	list.Add("Tea (g)", 4)
	assert.Equal(t, Render(list), Render(list))
}

func TestAggregate_MissingIngredient(t *testing.T) {
	broken := recipe(models.RecipeIngredient{IngredientID: uuid.New(), Amount: 3})
	_, err := Aggregate(context.Background(), []models.Recipe{broken})
	assert.ErrorIs(t, err, ErrMissingIngredient)
}

func TestAggregate_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Aggregate(ctx, []models.Recipe{recipe()})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestItems_ReturnsCopy(t *testing.T) {
	list := NewList()
	list.Add("Rice (g)", 100)
	items := list.Items()
	items[0].Amount = 1
	amount, _ := list.Amount("Rice (g)")
	assert.Equal(t, 100, amount)
}
