package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pageza/foodgram/backend/internal/cache"
	"github.com/pageza/foodgram/backend/internal/metrics"
	"github.com/pageza/foodgram/backend/internal/repository"
	"github.com/pageza/foodgram/backend/internal/shortcode"
	"github.com/rs/zerolog/log"
)

const shortLinkTTL = 24 * time.Hour

// LinkService builds short links and resolves codes back to recipes.
// Codes never change, so cached entries only go away on recipe deletion.
type LinkService struct {
	recipes repository.RecipeRepository
	cache   *cache.Cache
	baseURL string
}

func NewLinkService(recipes repository.RecipeRepository, c *cache.Cache, baseURL string) *LinkService {
	return &LinkService{
		recipes: recipes,
		cache:   c,
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

func (s *LinkService) ShortLink(ctx context.Context, recipeID uuid.UUID) (string, error) {
	recipe, err := s.recipes.GetByID(ctx, recipeID)
	if err != nil {
		return "", mapRepoErr(err)
	}
	return s.baseURL + "/s/" + recipe.ShortCode + "/", nil
}

func (s *LinkService) Resolve(ctx context.Context, code string) (uuid.UUID, error) {
	if !shortcode.Valid(code) {
		metrics.ShortLinkResolutions.WithLabelValues("not_found").Inc()
		return uuid.Nil, ErrNotFound
	}

	if cached, ok, err := s.cache.Get(ctx, code); err != nil {
		log.Warn().Err(err).Str("code", code).Msg("short link cache read failed")
	} else if ok {
		if id, err := uuid.Parse(cached); err == nil {
			metrics.ShortLinkResolutions.WithLabelValues("cache_hit").Inc()
			return id, nil
		}
	}

	recipe, err := s.recipes.GetByShortCode(ctx, code)
	if err != nil {
		if err = mapRepoErr(err); err == ErrNotFound {
			metrics.ShortLinkResolutions.WithLabelValues("not_found").Inc()
		}
		return uuid.Nil, err
	}
	metrics.ShortLinkResolutions.WithLabelValues("db_hit").Inc()

	if err := s.cache.Set(ctx, code, recipe.ID.String(), shortLinkTTL); err != nil {
		log.Warn().Err(err).Str("code", code).Msg("short link cache write failed")
	}
	return recipe.ID, nil
}

// Forget drops a cached code.
func (s *LinkService) Forget(ctx context.Context, code string) {
	if err := s.cache.Delete(ctx, code); err != nil {
		log.Warn().Err(err).Str("code", code).Msg("short link cache delete failed")
	}
}
