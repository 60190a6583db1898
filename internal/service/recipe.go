package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/pageza/foodgram/backend/internal/metrics"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/repository"
	"github.com/pageza/foodgram/backend/internal/shortcode"
	"github.com/pageza/foodgram/backend/internal/types"
	"github.com/rs/zerolog/log"
)

// RecipeView is a recipe annotated with the viewer's memberships.
type RecipeView struct {
	models.Recipe
	IsFavorited      bool
	IsInShoppingCart bool
	AuthorSubscribed bool
}

// ListRecipesParams holds the recipe list filters. The membership filters
// are ignored for anonymous viewers.
type ListRecipesParams struct {
	AuthorID         uuid.UUID
	Tags             []string
	IsFavorited      bool
	IsInShoppingCart bool
	Limit            int
	Offset           int
}

type RecipeService struct {
	recipes repository.RecipeRepository
	users   repository.UserRepository
	catalog repository.CatalogRepository
	images  IImageService
	links   *LinkService
	codes   *shortcode.Generator
}

type RecipeOption func(*RecipeService)

// WithCodeGenerator replaces the default short code generator.
func WithCodeGenerator(g *shortcode.Generator) RecipeOption {
	return func(s *RecipeService) {
		s.codes = g
	}
}

func NewRecipeService(recipes repository.RecipeRepository, users repository.UserRepository, catalog repository.CatalogRepository, images IImageService, links *LinkService, opts ...RecipeOption) *RecipeService {
	s := &RecipeService{
		recipes: recipes,
		users:   users,
		catalog: catalog,
		images:  images,
		links:   links,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.codes == nil {
		s.codes = shortcode.NewGenerator(recipes.ExistsByShortCode)
	}
	return s
}

// Create validates the request, stores the image and persists the recipe
// under a freshly generated short code. The image is discarded again when
// the recipe is not persisted.
func (s *RecipeService) Create(ctx context.Context, authorID uuid.UUID, req *types.RecipeRequest) (*RecipeView, error) {
	tags, lines, err := s.validate(ctx, req, true)
	if err != nil {
		return nil, err
	}

	image, err := s.images.Store(ctx, "recipes", req.Image)
	if err != nil {
		return nil, err
	}

	var recipeID uuid.UUID
	code, err := s.codes.Assign(ctx, func(ctx context.Context, code string) error {
		recipe := &models.Recipe{
			AuthorID:    authorID,
			Name:        strings.TrimSpace(req.Name),
			Text:        req.Text,
			Image:       image,
			CookingTime: req.CookingTime,
			ShortCode:   code,
			Tags:        append([]models.Tag(nil), tags...),
			Ingredients: append([]models.RecipeIngredient(nil), lines...),
		}
		err := s.recipes.Create(ctx, recipe)
		if errors.Is(err, repository.ErrDuplicateShortCode) {
			log.Debug().Str("code", code).Msg("short code taken at write time, retrying")
			return shortcode.ErrCollision
		}
		if err != nil {
			return err
		}
		recipeID = recipe.ID
		return nil
	})
	if err != nil {
		s.images.Discard(ctx, image)
		if errors.Is(err, shortcode.ErrExhausted) {
			metrics.ShortCodeFailures.Inc()
			log.Error().Str("author_id", authorID.String()).Msg("short code space exhausted, recipe not created")
		}
		return nil, fmt.Errorf("create recipe: %w", err)
	}
	metrics.ShortCodesIssued.Inc()
	log.Info().Str("recipe_id", recipeID.String()).Str("code", code).Msg("recipe created")

	return s.Get(ctx, authorID, recipeID)
}

// Update replaces the recipe's fields, tags and ingredients. An empty image
// keeps the current one. The short code is left alone.
func (s *RecipeService) Update(ctx context.Context, userID, recipeID uuid.UUID, req *types.RecipeRequest) (*RecipeView, error) {
	existing, err := s.recipes.GetByID(ctx, recipeID)
	if err != nil {
		return nil, mapRepoErr(err)
	}
	if existing.AuthorID != userID {
		return nil, ErrForbidden
	}

	tags, lines, err := s.validate(ctx, req, false)
	if err != nil {
		return nil, err
	}

	image := existing.Image
	if req.Image != "" {
		if image, err = s.images.Store(ctx, "recipes", req.Image); err != nil {
			return nil, err
		}
	}

	recipe := &models.Recipe{
		ID:          existing.ID,
		AuthorID:    existing.AuthorID,
		Name:        strings.TrimSpace(req.Name),
		Text:        req.Text,
		Image:       image,
		CookingTime: req.CookingTime,
		ShortCode:   existing.ShortCode,
		Tags:        tags,
		Ingredients: lines,
	}
	if err := s.recipes.Update(ctx, recipe); err != nil {
		if image != existing.Image {
			s.images.Discard(ctx, image)
		}
		return nil, fmt.Errorf("update recipe: %w", mapRepoErr(err))
	}

	return s.Get(ctx, userID, recipeID)
}

func (s *RecipeService) Delete(ctx context.Context, userID, recipeID uuid.UUID) error {
	existing, err := s.recipes.GetByID(ctx, recipeID)
	if err != nil {
		return mapRepoErr(err)
	}
	if existing.AuthorID != userID {
		return ErrForbidden
	}
	if err := s.recipes.Delete(ctx, recipeID); err != nil {
		return mapRepoErr(err)
	}
	if s.links != nil {
		s.links.Forget(ctx, existing.ShortCode)
	}
	return nil
}

func (s *RecipeService) Get(ctx context.Context, viewerID, recipeID uuid.UUID) (*RecipeView, error) {
	recipe, err := s.recipes.GetByID(ctx, recipeID)
	if err != nil {
		return nil, mapRepoErr(err)
	}
	views, err := s.annotate(ctx, viewerID, []models.Recipe{*recipe})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

func (s *RecipeService) List(ctx context.Context, viewerID uuid.UUID, params ListRecipesParams) ([]RecipeView, int64, error) {
	filter := repository.RecipeFilter{
		AuthorID: params.AuthorID,
		TagSlugs: params.Tags,
		Page:     repository.Page{Limit: params.Limit, Offset: params.Offset},
	}
	if viewerID != uuid.Nil {
		if params.IsFavorited {
			filter.FavoritedBy = viewerID
		}
		if params.IsInShoppingCart {
			filter.InCartOf = viewerID
		}
	}

	recipes, total, err := s.recipes.List(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	views, err := s.annotate(ctx, viewerID, recipes)
	if err != nil {
		return nil, 0, err
	}
	return views, total, nil
}

// annotate looks up favorites and cart separately; the two sets are
// independent.
func (s *RecipeService) annotate(ctx context.Context, viewerID uuid.UUID, recipes []models.Recipe) ([]RecipeView, error) {
	ids := make([]uuid.UUID, len(recipes))
	authorIDs := make([]uuid.UUID, len(recipes))
	for i, r := range recipes {
		ids[i] = r.ID
		authorIDs[i] = r.AuthorID
	}
	favorited, err := s.recipes.MemberSet(ctx, repository.Favorites, viewerID, ids)
	if err != nil {
		return nil, err
	}
	inCart, err := s.recipes.MemberSet(ctx, repository.ShoppingCart, viewerID, ids)
	if err != nil {
		return nil, err
	}
	subscribed, err := s.users.SubscribedSet(ctx, viewerID, authorIDs)
	if err != nil {
		return nil, err
	}

	views := make([]RecipeView, len(recipes))
	for i, r := range recipes {
		views[i] = RecipeView{
			Recipe:           r,
			IsFavorited:      favorited[r.ID],
			IsInShoppingCart: inCart[r.ID],
			AuthorSubscribed: subscribed[r.AuthorID],
		}
	}
	return views, nil
}

func (s *RecipeService) AddFavorite(ctx context.Context, userID, recipeID uuid.UUID) (*models.Recipe, error) {
	return s.addMember(ctx, repository.Favorites, userID, recipeID, ErrAlreadyFavorited)
}

func (s *RecipeService) RemoveFavorite(ctx context.Context, userID, recipeID uuid.UUID) error {
	return s.removeMember(ctx, repository.Favorites, userID, recipeID, ErrNotFavorited)
}

func (s *RecipeService) AddToCart(ctx context.Context, userID, recipeID uuid.UUID) (*models.Recipe, error) {
	return s.addMember(ctx, repository.ShoppingCart, userID, recipeID, ErrAlreadyInCart)
}

func (s *RecipeService) RemoveFromCart(ctx context.Context, userID, recipeID uuid.UUID) error {
	return s.removeMember(ctx, repository.ShoppingCart, userID, recipeID, ErrNotInCart)
}

func (s *RecipeService) addMember(ctx context.Context, kind repository.MembershipKind, userID, recipeID uuid.UUID, dup error) (*models.Recipe, error) {
	recipe, err := s.recipes.GetByID(ctx, recipeID)
	if err != nil {
		return nil, mapRepoErr(err)
	}
	if err := s.recipes.AddMember(ctx, kind, userID, recipeID); err != nil {
		if errors.Is(err, repository.ErrMembershipExists) {
			return nil, dup
		}
		return nil, err
	}
	return recipe, nil
}

func (s *RecipeService) removeMember(ctx context.Context, kind repository.MembershipKind, userID, recipeID uuid.UUID, missing error) error {
	if _, err := s.recipes.GetByID(ctx, recipeID); err != nil {
		return mapRepoErr(err)
	}
	if err := s.recipes.RemoveMember(ctx, kind, userID, recipeID); err != nil {
		if errors.Is(err, repository.ErrMembershipMissing) {
			return missing
		}
		return err
	}
	return nil
}

// validate checks the whole request before anything is written and returns
// the resolved tags and ingredient rows.
func (s *RecipeService) validate(ctx context.Context, req *types.RecipeRequest, requireImage bool) ([]models.Tag, []models.RecipeIngredient, error) {
	verr := &ValidationError{}

	name := strings.TrimSpace(req.Name)
	switch {
	case name == "":
		verr.Add("name", "This field is required.")
	case utf8.RuneCountInString(name) > models.MaxNameLength:
		verr.Add("name", fmt.Sprintf("Ensure this field has no more than %d characters.", models.MaxNameLength))
	}
	if strings.TrimSpace(req.Text) == "" {
		verr.Add("text", "This field is required.")
	}
	if requireImage && req.Image == "" {
		verr.Add("image", "This field is required.")
	}
	if req.CookingTime < models.MinCookingTime || req.CookingTime > models.MaxCookingTime {
		verr.Add("cooking_time", fmt.Sprintf("Cooking time must be between %d and %d minutes.", models.MinCookingTime, models.MaxCookingTime))
	}

	var tags []models.Tag
	if len(req.Tags) == 0 {
		verr.Add("tags", "At least one tag is required.")
	} else if hasDuplicates(req.Tags) {
		verr.Add("tags", "Tags must not repeat.")
	} else {
		found, err := s.catalog.TagsByIDs(ctx, req.Tags)
		if err != nil {
			return nil, nil, err
		}
		if len(found) != len(req.Tags) {
			verr.Add("tags", "One or more tags do not exist.")
		}
		tags = found
	}

	var lines []models.RecipeIngredient
	ids := make([]uuid.UUID, len(req.Ingredients))
	badAmount := false
	for i, item := range req.Ingredients {
		ids[i] = item.ID
		badAmount = badAmount || item.Amount < models.MinAmount || item.Amount > models.MaxAmount
	}
	if badAmount {
		verr.Add("ingredients", fmt.Sprintf("Amount must be between %d and %d.", models.MinAmount, models.MaxAmount))
	}
	if len(req.Ingredients) == 0 {
		verr.Add("ingredients", "At least one ingredient is required.")
	} else if hasDuplicates(ids) {
		verr.Add("ingredients", "Ingredients must not repeat.")
	} else {
		found, err := s.catalog.IngredientsByIDs(ctx, ids)
		if err != nil {
			return nil, nil, err
		}
		if len(found) != len(ids) {
			verr.Add("ingredients", "One or more ingredients do not exist.")
		}
		for _, item := range req.Ingredients {
			lines = append(lines, models.RecipeIngredient{IngredientID: item.ID, Amount: item.Amount})
		}
	}

	if err := verr.err(); err != nil {
		return nil, nil, err
	}
	return tags, lines, nil
}

func hasDuplicates(ids []uuid.UUID) bool {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			return true
		}
		seen[id] = struct{}{}
	}
	return false
}

func mapRepoErr(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return ErrNotFound
	}
	return err
}
