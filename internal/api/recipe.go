package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/pageza/foodgram/backend/internal/middleware"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/shopping"
	"github.com/pageza/foodgram/backend/internal/types"
)

type RecipeHandler struct {
	recipeService   service.IRecipeService
	shoppingService service.IShoppingService
	linkService     service.ILinkService
	authService     middleware.TokenValidator
	createLimiter   *middleware.RateLimiter
	pageSize        int
}

func NewRecipeHandler(
	recipeService service.IRecipeService,
	shoppingService service.IShoppingService,
	linkService service.ILinkService,
	authService middleware.TokenValidator,
	createLimiter *middleware.RateLimiter,
	pageSize int,
) *RecipeHandler {
	return &RecipeHandler{
		recipeService:   recipeService,
		shoppingService: shoppingService,
		linkService:     linkService,
		authService:     authService,
		createLimiter:   createLimiter,
		pageSize:        pageSize,
	}
}

func (h *RecipeHandler) RegisterRoutes(router *gin.RouterGroup) {
	auth := middleware.AuthMiddleware(h.authService)
	optional := middleware.OptionalAuth(h.authService)

	recipes := router.Group("/recipes")
	{
		recipes.GET("", optional, h.ListRecipes)
		recipes.POST("", auth, h.createLimiter.RateLimitMiddleware(), h.CreateRecipe)
		recipes.GET("/download_shopping_cart", auth, h.DownloadShoppingCart)
		recipes.GET("/:id", optional, h.GetRecipe)
		recipes.PATCH("/:id", auth, h.UpdateRecipe)
		recipes.DELETE("/:id", auth, h.DeleteRecipe)
		recipes.GET("/:id/get-link", h.GetLink)
		recipes.POST("/:id/favorite", auth, h.FavoriteRecipe)
		recipes.DELETE("/:id/favorite", auth, h.UnfavoriteRecipe)
		recipes.POST("/:id/shopping_cart", auth, h.AddToCart)
		recipes.DELETE("/:id/shopping_cart", auth, h.RemoveFromCart)
	}
}

// ListRecipes supports ?author=, repeated ?tags=<slug>, ?is_favorited=1 and
// ?is_in_shopping_cart=1.
func (h *RecipeHandler) ListRecipes(c *gin.Context) {
	p := parsePagination(c, h.pageSize)
	params := service.ListRecipesParams{
		Tags:             c.QueryArray("tags"),
		IsFavorited:      queryFlag(c, "is_favorited"),
		IsInShoppingCart: queryFlag(c, "is_in_shopping_cart"),
		Limit:            p.Limit,
		Offset:           p.Offset(),
	}
	if author := c.Query("author"); author != "" {
		id, err := uuid.Parse(author)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"errors": map[string][]string{"author": {"Select a valid author."}}})
			return
		}
		params.AuthorID = id
	}

	recipes, total, err := h.recipeService.List(c.Request.Context(), middleware.UserID(c), params)
	if err != nil {
		respondError(c, err)
		return
	}
	respondPage(c, p, total, toRecipeResponses(recipes))
}

func (h *RecipeHandler) GetRecipe(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	recipe, err := h.recipeService.Get(c.Request.Context(), middleware.UserID(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toRecipeResponse(*recipe))
}

func (h *RecipeHandler) CreateRecipe(c *gin.Context) {
	var req types.RecipeRequest
	if !bindJSON(c, &req) {
		return
	}

	recipe, err := h.recipeService.Create(c.Request.Context(), middleware.UserID(c), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toRecipeResponse(*recipe))
}

func (h *RecipeHandler) UpdateRecipe(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req types.RecipeRequest
	if !bindJSON(c, &req) {
		return
	}

	recipe, err := h.recipeService.Update(c.Request.Context(), middleware.UserID(c), id, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toRecipeResponse(*recipe))
}

func (h *RecipeHandler) DeleteRecipe(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.recipeService.Delete(c.Request.Context(), middleware.UserID(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *RecipeHandler) GetLink(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	link, err := h.linkService.ShortLink(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, types.ShortLinkResponse{ShortLink: link})
}

func (h *RecipeHandler) FavoriteRecipe(c *gin.Context) {
	h.addMember(c, h.recipeService.AddFavorite)
}

func (h *RecipeHandler) UnfavoriteRecipe(c *gin.Context) {
	h.removeMember(c, h.recipeService.RemoveFavorite)
}

func (h *RecipeHandler) AddToCart(c *gin.Context) {
	h.addMember(c, h.recipeService.AddToCart)
}

func (h *RecipeHandler) RemoveFromCart(c *gin.Context) {
	h.removeMember(c, h.recipeService.RemoveFromCart)
}

func (h *RecipeHandler) addMember(c *gin.Context, add func(ctx context.Context, userID, recipeID uuid.UUID) (*models.Recipe, error)) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	recipe, err := add(c.Request.Context(), middleware.UserID(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toRecipeShort(*recipe))
}

func (h *RecipeHandler) removeMember(c *gin.Context, remove func(ctx context.Context, userID, recipeID uuid.UUID) error) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := remove(c.Request.Context(), middleware.UserID(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *RecipeHandler) DownloadShoppingCart(c *gin.Context) {
	body, err := h.shoppingService.DownloadList(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+shopping.Filename+`"`)
	c.Data(http.StatusOK, shopping.ContentType, []byte(body))
}

func queryFlag(c *gin.Context, name string) bool {
	switch c.Query(name) {
	case "1", "true", "True":
		return true
	default:
		return false
	}
}
