package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/pageza/foodgram/backend/internal/middleware"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/types"
)

type UserHandler struct {
	userService service.IUserService
	authService service.IAuthService
	pageSize    int
}

func NewUserHandler(userService service.IUserService, authService service.IAuthService, pageSize int) *UserHandler {
	return &UserHandler{
		userService: userService,
		authService: authService,
		pageSize:    pageSize,
	}
}

func (h *UserHandler) RegisterRoutes(router *gin.RouterGroup) {
	auth := middleware.AuthMiddleware(h.authService)
	optional := middleware.OptionalAuth(h.authService)

	users := router.Group("/users")
	{
		users.POST("", h.Register)
		users.GET("", optional, h.List)
		users.GET("/me", auth, h.Me)
		users.PUT("/me/avatar", auth, h.SetAvatar)
		users.DELETE("/me/avatar", auth, h.DeleteAvatar)
		users.POST("/set_password", auth, h.SetPassword)
		users.GET("/subscriptions", auth, h.Subscriptions)
		users.GET("/:id", optional, h.Get)
		users.POST("/:id/subscribe", auth, h.Subscribe)
		users.DELETE("/:id/subscribe", auth, h.Unsubscribe)
	}
}

func (h *UserHandler) Register(c *gin.Context) {
	var req types.RegisterRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.authService.Register(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toUserResponse(*user, false))
}

func (h *UserHandler) List(c *gin.Context) {
	p := parsePagination(c, h.pageSize)
	users, total, err := h.userService.List(c.Request.Context(), middleware.UserID(c), p.Limit, p.Offset())
	if err != nil {
		respondError(c, err)
		return
	}
	respondPage(c, p, total, toUserResponses(users))
}

func (h *UserHandler) Me(c *gin.Context) {
	userID := middleware.UserID(c)
	h.respondUser(c, userID, userID)
}

func (h *UserHandler) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	h.respondUser(c, middleware.UserID(c), id)
}

func (h *UserHandler) respondUser(c *gin.Context, viewerID, userID uuid.UUID) {
	user, err := h.userService.Get(c.Request.Context(), viewerID, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toUserResponse(user.User, user.IsSubscribed))
}

func (h *UserHandler) SetAvatar(c *gin.Context) {
	var req types.AvatarRequest
	if !bindJSON(c, &req) {
		return
	}

	url, err := h.userService.SetAvatar(c.Request.Context(), middleware.UserID(c), req.Avatar)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, types.AvatarResponse{Avatar: url})
}

func (h *UserHandler) DeleteAvatar(c *gin.Context) {
	if err := h.userService.DeleteAvatar(c.Request.Context(), middleware.UserID(c)); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *UserHandler) SetPassword(c *gin.Context) {
	var req types.SetPasswordRequest
	if !bindJSON(c, &req) {
		return
	}

	err := h.authService.SetPassword(c.Request.Context(), middleware.UserID(c), req.CurrentPassword, req.NewPassword)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *UserHandler) Subscriptions(c *gin.Context) {
	p := parsePagination(c, h.pageSize)
	subs, total, err := h.userService.Subscriptions(c.Request.Context(), middleware.UserID(c), p.Limit, p.Offset(), recipesLimit(c))
	if err != nil {
		respondError(c, err)
		return
	}

	results := make([]types.SubscriptionResponse, len(subs))
	for i, s := range subs {
		results[i] = toSubscriptionResponse(s)
	}
	respondPage(c, p, total, results)
}

func (h *UserHandler) Subscribe(c *gin.Context) {
	authorID, ok := pathID(c)
	if !ok {
		return
	}

	sub, err := h.userService.Subscribe(c.Request.Context(), middleware.UserID(c), authorID, recipesLimit(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toSubscriptionResponse(*sub))
}

func (h *UserHandler) Unsubscribe(c *gin.Context) {
	authorID, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.userService.Unsubscribe(c.Request.Context(), middleware.UserID(c), authorID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// recipesLimit reads ?recipes_limit=; anything but a positive number means
// no limit.
func recipesLimit(c *gin.Context) int {
	n, err := strconv.Atoi(c.Query("recipes_limit"))
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// pathID parses the :id segment and answers 404 itself when it is not a
// UUID.
func pathID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": service.ErrNotFound.Error()})
		return uuid.Nil, false
	}
	return id, true
}
