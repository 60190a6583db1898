package repository

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/pageza/foodgram/backend/internal/models"
	"gorm.io/gorm"
)

// CatalogRepository serves the read-mostly tag and ingredient tables.
type CatalogRepository interface {
	ListTags(ctx context.Context) ([]models.Tag, error)
	GetTag(ctx context.Context, id uuid.UUID) (*models.Tag, error)
	TagsByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Tag, error)
	EnsureTag(ctx context.Context, name, slug string) (*models.Tag, error)

	ListIngredients(ctx context.Context, namePrefix string) ([]models.Ingredient, error)
	GetIngredient(ctx context.Context, id uuid.UUID) (*models.Ingredient, error)
	IngredientsByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Ingredient, error)
	EnsureIngredient(ctx context.Context, name, unit string) (created bool, err error)
}

type catalogRepository struct {
	db *gorm.DB
}

func NewCatalogRepository(db *gorm.DB) CatalogRepository {
	return &catalogRepository{db: db}
}

func (r *catalogRepository) ListTags(ctx context.Context) ([]models.Tag, error) {
	var tags []models.Tag
	if err := r.db.WithContext(ctx).Order("name").Find(&tags).Error; err != nil {
		return nil, err
	}
	return tags, nil
}

func (r *catalogRepository) GetTag(ctx context.Context, id uuid.UUID) (*models.Tag, error) {
	var tag models.Tag
	if err := r.db.WithContext(ctx).First(&tag, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &tag, nil
}

func (r *catalogRepository) TagsByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Tag, error) {
	var tags []models.Tag
	if len(ids) == 0 {
		return tags, nil
	}
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&tags).Error; err != nil {
		return nil, err
	}
	return tags, nil
}

func (r *catalogRepository) EnsureTag(ctx context.Context, name, slug string) (*models.Tag, error) {
	tag := models.Tag{Name: name, Slug: slug}
	if err := r.db.WithContext(ctx).Where(models.Tag{Slug: slug}).FirstOrCreate(&tag).Error; err != nil {
		return nil, err
	}
	return &tag, nil
}

// likeEscaper makes % and _ in user input match literally under ESCAPE '!'.
var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

// ListIngredients filters by a case-insensitive name prefix when one is given.
func (r *catalogRepository) ListIngredients(ctx context.Context, namePrefix string) ([]models.Ingredient, error) {
	q := r.db.WithContext(ctx).Order("name")
	if namePrefix != "" {
		q = q.Where("LOWER(name) LIKE ? ESCAPE '!'", likeEscaper.Replace(strings.ToLower(namePrefix))+"%")
	}
	var ingredients []models.Ingredient
	if err := q.Find(&ingredients).Error; err != nil {
		return nil, err
	}
	return ingredients, nil
}

func (r *catalogRepository) GetIngredient(ctx context.Context, id uuid.UUID) (*models.Ingredient, error) {
	var ingredient models.Ingredient
	if err := r.db.WithContext(ctx).First(&ingredient, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &ingredient, nil
}

func (r *catalogRepository) IngredientsByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Ingredient, error) {
	var ingredients []models.Ingredient
	if len(ids) == 0 {
		return ingredients, nil
	}
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&ingredients).Error; err != nil {
		return nil, err
	}
	return ingredients, nil
}

// EnsureIngredient creates the (name, unit) row unless an identical one exists.
func (r *catalogRepository) EnsureIngredient(ctx context.Context, name, unit string) (bool, error) {
	ingredient := models.Ingredient{Name: name, MeasurementUnit: unit}
	res := r.db.WithContext(ctx).
		Where(models.Ingredient{Name: name, MeasurementUnit: unit}).
		FirstOrCreate(&ingredient)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
