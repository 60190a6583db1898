package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/types"
	"github.com/stretchr/testify/mock"
)

// MockRecipeService is a mock implementation of the recipe service
type MockRecipeService struct {
	mock.Mock
}

var _ service.IRecipeService = (*MockRecipeService)(nil)

func (m *MockRecipeService) Create(ctx context.Context, authorID uuid.UUID, req *types.RecipeRequest) (*service.RecipeView, error) {
	args := m.Called(ctx, authorID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.RecipeView), args.Error(1)
}

func (m *MockRecipeService) Update(ctx context.Context, userID, recipeID uuid.UUID, req *types.RecipeRequest) (*service.RecipeView, error) {
	args := m.Called(ctx, userID, recipeID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.RecipeView), args.Error(1)
}

func (m *MockRecipeService) Delete(ctx context.Context, userID, recipeID uuid.UUID) error {
	args := m.Called(ctx, userID, recipeID)
	return args.Error(0)
}

func (m *MockRecipeService) Get(ctx context.Context, viewerID, recipeID uuid.UUID) (*service.RecipeView, error) {
	args := m.Called(ctx, viewerID, recipeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.RecipeView), args.Error(1)
}

func (m *MockRecipeService) List(ctx context.Context, viewerID uuid.UUID, params service.ListRecipesParams) ([]service.RecipeView, int64, error) {
	args := m.Called(ctx, viewerID, params)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]service.RecipeView), args.Get(1).(int64), args.Error(2)
}

func (m *MockRecipeService) AddFavorite(ctx context.Context, userID, recipeID uuid.UUID) (*models.Recipe, error) {
	return m.member(m.Called(ctx, userID, recipeID))
}

func (m *MockRecipeService) RemoveFavorite(ctx context.Context, userID, recipeID uuid.UUID) error {
	return m.Called(ctx, userID, recipeID).Error(0)
}

func (m *MockRecipeService) AddToCart(ctx context.Context, userID, recipeID uuid.UUID) (*models.Recipe, error) {
	return m.member(m.Called(ctx, userID, recipeID))
}

func (m *MockRecipeService) RemoveFromCart(ctx context.Context, userID, recipeID uuid.UUID) error {
	return m.Called(ctx, userID, recipeID).Error(0)
}

func (m *MockRecipeService) member(args mock.Arguments) (*models.Recipe, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Recipe), args.Error(1)
}

// MockShoppingService is a mock implementation of the shopping list service
type MockShoppingService struct {
	mock.Mock
}

var _ service.IShoppingService = (*MockShoppingService)(nil)

func (m *MockShoppingService) DownloadList(ctx context.Context, userID uuid.UUID) (string, error) {
	args := m.Called(ctx, userID)
	return args.String(0), args.Error(1)
}

// MockLinkService is a mock implementation of the short link service
type MockLinkService struct {
	mock.Mock
}

var _ service.ILinkService = (*MockLinkService)(nil)

func (m *MockLinkService) ShortLink(ctx context.Context, recipeID uuid.UUID) (string, error) {
	args := m.Called(ctx, recipeID)
	return args.String(0), args.Error(1)
}

func (m *MockLinkService) Resolve(ctx context.Context, code string) (uuid.UUID, error) {
	args := m.Called(ctx, code)
	return args.Get(0).(uuid.UUID), args.Error(1)
}
