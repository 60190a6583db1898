package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/repository"
)

// UserView is a user as seen by the viewer.
type UserView struct {
	models.User
	IsSubscribed bool
}

// SubscriptionView is a followed author with a preview of their recipes.
type SubscriptionView struct {
	UserView
	Recipes      []models.Recipe
	RecipesCount int64
}

type UserService struct {
	users   repository.UserRepository
	recipes repository.RecipeRepository
	images  IImageService
}

func NewUserService(users repository.UserRepository, recipes repository.RecipeRepository, images IImageService) *UserService {
	return &UserService{
		users:   users,
		recipes: recipes,
		images:  images,
	}
}

func (s *UserService) Get(ctx context.Context, viewerID, userID uuid.UUID) (*UserView, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, mapRepoErr(err)
	}
	views, err := s.annotate(ctx, viewerID, []models.User{*user})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

func (s *UserService) List(ctx context.Context, viewerID uuid.UUID, limit, offset int) ([]UserView, int64, error) {
	users, total, err := s.users.List(ctx, repository.Page{Limit: limit, Offset: offset})
	if err != nil {
		return nil, 0, err
	}
	views, err := s.annotate(ctx, viewerID, users)
	if err != nil {
		return nil, 0, err
	}
	return views, total, nil
}

func (s *UserService) annotate(ctx context.Context, viewerID uuid.UUID, users []models.User) ([]UserView, error) {
	ids := make([]uuid.UUID, len(users))
	for i, u := range users {
		ids[i] = u.ID
	}
	subscribed, err := s.users.SubscribedSet(ctx, viewerID, ids)
	if err != nil {
		return nil, err
	}
	views := make([]UserView, len(users))
	for i, u := range users {
		views[i] = UserView{User: u, IsSubscribed: subscribed[u.ID]}
	}
	return views, nil
}

func (s *UserService) SetAvatar(ctx context.Context, userID uuid.UUID, data string) (string, error) {
	url, err := s.images.Store(ctx, "avatars", data)
	if err != nil {
		return "", err
	}
	if err := s.users.UpdateAvatar(ctx, userID, url); err != nil {
		s.images.Discard(ctx, url)
		return "", mapRepoErr(err)
	}
	return url, nil
}

func (s *UserService) DeleteAvatar(ctx context.Context, userID uuid.UUID) error {
	return mapRepoErr(s.users.UpdateAvatar(ctx, userID, ""))
}

func (s *UserService) Subscribe(ctx context.Context, userID, authorID uuid.UUID, recipesLimit int) (*SubscriptionView, error) {
	if userID == authorID {
		return nil, ErrSelfSubscription
	}
	author, err := s.users.GetByID(ctx, authorID)
	if err != nil {
		return nil, mapRepoErr(err)
	}
	if err := s.users.Subscribe(ctx, userID, authorID); err != nil {
		if errors.Is(err, repository.ErrMembershipExists) {
			return nil, ErrAlreadySubscribed
		}
		return nil, err
	}

	views, err := s.withRecipes(ctx, []UserView{{User: *author, IsSubscribed: true}}, recipesLimit)
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

func (s *UserService) Unsubscribe(ctx context.Context, userID, authorID uuid.UUID) error {
	if _, err := s.users.GetByID(ctx, authorID); err != nil {
		return mapRepoErr(err)
	}
	if err := s.users.Unsubscribe(ctx, userID, authorID); err != nil {
		if errors.Is(err, repository.ErrMembershipMissing) {
			return ErrNotSubscribed
		}
		return err
	}
	return nil
}

func (s *UserService) Subscriptions(ctx context.Context, userID uuid.UUID, limit, offset, recipesLimit int) ([]SubscriptionView, int64, error) {
	authors, total, err := s.users.Subscriptions(ctx, userID, repository.Page{Limit: limit, Offset: offset})
	if err != nil {
		return nil, 0, err
	}
	views := make([]UserView, len(authors))
	for i, a := range authors {
		views[i] = UserView{User: a, IsSubscribed: true}
	}
	subs, err := s.withRecipes(ctx, views, recipesLimit)
	if err != nil {
		return nil, 0, err
	}
	return subs, total, nil
}

// withRecipes attaches up to recipesLimit recent recipes (all when <= 0)
// and the total recipe count of every author.
func (s *UserService) withRecipes(ctx context.Context, authors []UserView, recipesLimit int) ([]SubscriptionView, error) {
	ids := make([]uuid.UUID, len(authors))
	for i, a := range authors {
		ids[i] = a.ID
	}
	counts, err := s.recipes.CountByAuthor(ctx, ids)
	if err != nil {
		return nil, err
	}

	out := make([]SubscriptionView, len(authors))
	for i, a := range authors {
		recipes, err := s.recipes.ListByAuthor(ctx, a.ID, recipesLimit)
		if err != nil {
			return nil, err
		}
		out[i] = SubscriptionView{
			UserView:     a,
			Recipes:      recipes,
			RecipesCount: counts[a.ID],
		}
	}
	return out, nil
}
