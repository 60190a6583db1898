package api

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/internal/cache"
	"github.com/pageza/foodgram/backend/internal/middleware"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/repository"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/testhelpers"
)

const pixel = "data:image/png;base64,iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAYAAAAfFcSJAAAADUlEQVR42mP8z8BQDwAEhQGAhKmMIQAAAABJRU5ErkJggg=="

type testApp struct {
	router *gin.Engine
	db     *gorm.DB
	redis  *miniredis.Miniredis
	auth   *service.AuthService
}

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestApp(t *testing.T, createLimit int) *testApp {
	t.Helper()
	db := testhelpers.SetupSQLite(t)
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	recipes := repository.NewRecipeRepository(db)
	users := repository.NewUserRepository(db)
	catalog := repository.NewCatalogRepository(db)
	images := service.NewImageService(nil)
	links := service.NewLinkService(recipes, cache.New(client, "shortlink:"), "http://foodgram.test")
	auth := service.NewAuthService(users, cache.New(client, "jwt:denylist:"), "test-secret")

	router := gin.New()
	router.Use(middleware.Recovery())
	RegisterRoutes(router, Dependencies{
		DB:              db,
		AuthService:     auth,
		UserService:     service.NewUserService(users, recipes, images),
		RecipeService:   service.NewRecipeService(recipes, users, catalog, images, links),
		ShoppingService: service.NewShoppingService(recipes),
		LinkService:     links,
		CatalogService:  service.NewCatalogService(catalog),
		CreateLimiter:   middleware.NewRecipeCreationRateLimiter(client, createLimit),
		PageSize:        6,
	})

	return &testApp{router: router, db: db, redis: mr, auth: auth}
}

func (a *testApp) token(t *testing.T, user *models.User) string {
	token, err := a.auth.GenerateToken(user)
	require.NoError(t, err)
	return token
}

func (a *testApp) do(t *testing.T, method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Token "+token)
	}
	rr := httptest.NewRecorder()
	a.router.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &v), rr.Body.String())
	return v
}
