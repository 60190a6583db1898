package service

import (
	"context"
	"io"

	"github.com/google/uuid"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/types"
)

// IRecipeService defines the interface for recipe operations
type IRecipeService interface {
	Create(ctx context.Context, authorID uuid.UUID, req *types.RecipeRequest) (*RecipeView, error)
	Update(ctx context.Context, userID, recipeID uuid.UUID, req *types.RecipeRequest) (*RecipeView, error)
	Delete(ctx context.Context, userID, recipeID uuid.UUID) error
	Get(ctx context.Context, viewerID, recipeID uuid.UUID) (*RecipeView, error)
	List(ctx context.Context, viewerID uuid.UUID, params ListRecipesParams) ([]RecipeView, int64, error)
	AddFavorite(ctx context.Context, userID, recipeID uuid.UUID) (*models.Recipe, error)
	RemoveFavorite(ctx context.Context, userID, recipeID uuid.UUID) error
	AddToCart(ctx context.Context, userID, recipeID uuid.UUID) (*models.Recipe, error)
	RemoveFromCart(ctx context.Context, userID, recipeID uuid.UUID) error
}

// IShoppingService renders the shopping list for a user's cart
type IShoppingService interface {
	DownloadList(ctx context.Context, userID uuid.UUID) (string, error)
}

// ILinkService issues and resolves short links
type ILinkService interface {
	ShortLink(ctx context.Context, recipeID uuid.UUID) (string, error)
	Resolve(ctx context.Context, code string) (uuid.UUID, error)
}

// IAuthService defines the interface for authentication operations
type IAuthService interface {
	Register(ctx context.Context, req *types.RegisterRequest) (*models.User, error)
	Login(ctx context.Context, email, password string) (string, error)
	Logout(ctx context.Context, claims *types.TokenClaims) error
	ValidateToken(ctx context.Context, token string) (*types.TokenClaims, error)
	SetPassword(ctx context.Context, userID uuid.UUID, current, next string) error
}

// IUserService defines the interface for user profile and subscription operations
type IUserService interface {
	Get(ctx context.Context, viewerID, userID uuid.UUID) (*UserView, error)
	List(ctx context.Context, viewerID uuid.UUID, limit, offset int) ([]UserView, int64, error)
	SetAvatar(ctx context.Context, userID uuid.UUID, data string) (string, error)
	DeleteAvatar(ctx context.Context, userID uuid.UUID) error
	Subscribe(ctx context.Context, userID, authorID uuid.UUID, recipesLimit int) (*SubscriptionView, error)
	Unsubscribe(ctx context.Context, userID, authorID uuid.UUID) error
	Subscriptions(ctx context.Context, userID uuid.UUID, limit, offset, recipesLimit int) ([]SubscriptionView, int64, error)
}

// ICatalogService serves tags and ingredients
type ICatalogService interface {
	ListTags(ctx context.Context) ([]models.Tag, error)
	GetTag(ctx context.Context, id uuid.UUID) (*models.Tag, error)
	ListIngredients(ctx context.Context, namePrefix string) ([]models.Ingredient, error)
	GetIngredient(ctx context.Context, id uuid.UUID) (*models.Ingredient, error)
	ImportIngredients(ctx context.Context, r io.Reader) (*ImportResult, error)
}

// IImageService stores uploaded images
type IImageService interface {
	Store(ctx context.Context, folder, value string) (string, error)
	Discard(ctx context.Context, ref string)
}

var (
	_ IRecipeService   = (*RecipeService)(nil)
	_ IShoppingService = (*ShoppingService)(nil)
	_ ILinkService     = (*LinkService)(nil)
	_ IAuthService     = (*AuthService)(nil)
	_ IUserService     = (*UserService)(nil)
	_ ICatalogService  = (*CatalogService)(nil)
	_ IImageService    = (*ImageService)(nil)
)
