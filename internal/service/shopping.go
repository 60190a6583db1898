package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/pageza/foodgram/backend/internal/metrics"
	"github.com/pageza/foodgram/backend/internal/repository"
	"github.com/pageza/foodgram/backend/internal/shopping"
	"github.com/rs/zerolog/log"
)

type ShoppingService struct {
	recipes repository.RecipeRepository
}

func NewShoppingService(recipes repository.RecipeRepository) *ShoppingService {
	return &ShoppingService{recipes: recipes}
}

// DownloadList renders the merged ingredient list of the user's cart.
func (s *ShoppingService) DownloadList(ctx context.Context, userID uuid.UUID) (string, error) {
	recipes, err := s.recipes.CartRecipes(ctx, userID)
	if err != nil {
		return "", err
	}
	list, err := shopping.Aggregate(ctx, recipes)
	if err != nil {
		return "", fmt.Errorf("aggregate shopping list: %w", err)
	}
	metrics.ShoppingListDownloads.Inc()
	log.Debug().
		Str("user_id", userID.String()).
		Int("recipes", len(recipes)).
		Int("lines", list.Len()).
		Msg("shopping list rendered")
	return shopping.Render(list), nil
}
