package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pageza/foodgram/backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// MembershipKind selects one of the per-user recipe sets.
type MembershipKind int

const (
	Favorites MembershipKind = iota
	ShoppingCart
)

func (k MembershipKind) table() string {
	switch k {
	case ShoppingCart:
		return models.ShoppingCartItem{}.TableName()
	default:
		return models.Favorite{}.TableName()
	}
}

func (k MembershipKind) String() string {
	if k == ShoppingCart {
		return "shopping_cart"
	}
	return "favorites"
}

// RecipeFilter narrows List. Zero values mean no filter.
type RecipeFilter struct {
	AuthorID    uuid.UUID
	TagSlugs    []string
	FavoritedBy uuid.UUID
	InCartOf    uuid.UUID
	Page        Page
}

type RecipeRepository interface {
	Create(ctx context.Context, recipe *models.Recipe) error
	Update(ctx context.Context, recipe *models.Recipe) error
	Delete(ctx context.Context, id uuid.UUID) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Recipe, error)
	GetByShortCode(ctx context.Context, code string) (*models.Recipe, error)
	ExistsByShortCode(ctx context.Context, code string) (bool, error)
	List(ctx context.Context, filter RecipeFilter) ([]models.Recipe, int64, error)
	ListByAuthor(ctx context.Context, authorID uuid.UUID, limit int) ([]models.Recipe, error)
	CountByAuthor(ctx context.Context, authorIDs []uuid.UUID) (map[uuid.UUID]int64, error)

	AddMember(ctx context.Context, kind MembershipKind, userID, recipeID uuid.UUID) error
	RemoveMember(ctx context.Context, kind MembershipKind, userID, recipeID uuid.UUID) error
	MemberSet(ctx context.Context, kind MembershipKind, userID uuid.UUID, recipeIDs []uuid.UUID) (map[uuid.UUID]bool, error)
	CartRecipes(ctx context.Context, userID uuid.UUID) ([]models.Recipe, error)
}

type recipeRepository struct {
	db *gorm.DB
}

func NewRecipeRepository(db *gorm.DB) RecipeRepository {
	return &recipeRepository{db: db}
}

func withDetails(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Author").
		Preload("Tags", func(db *gorm.DB) *gorm.DB { return db.Order("tags.name") }).
		Preload("Ingredients", func(db *gorm.DB) *gorm.DB { return db.Order("recipe_ingredients.position") }).
		Preload("Ingredients.Ingredient")
}

// Create inserts the recipe, its ingredient rows and tag links in one
// transaction. A short code clash is reported as ErrDuplicateShortCode.
func (r *recipeRepository) Create(ctx context.Context, recipe *models.Recipe) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(recipe).Error; err != nil {
			if isUniqueViolation(err) {
				return ErrDuplicateShortCode
			}
			return fmt.Errorf("create recipe: %w", err)
		}
		if err := replaceIngredients(tx, recipe); err != nil {
			return err
		}
		if tags := recipe.Tags; len(tags) > 0 {
			recipe.Tags = nil
			if err := tx.Model(recipe).Association("Tags").Append(tags); err != nil {
				return fmt.Errorf("link tags: %w", err)
			}
		}
		return nil
	})
}

// Update rewrites the editable fields and swaps the full ingredient and tag
// sets. The short code column is never written.
func (r *recipeRepository) Update(ctx context.Context, recipe *models.Recipe) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Recipe{}).Where("id = ?", recipe.ID).Updates(map[string]interface{}{
			"name":         recipe.Name,
			"text":         recipe.Text,
			"image":        recipe.Image,
			"cooking_time": recipe.CookingTime,
			"updated_at":   time.Now(),
		})
		if res.Error != nil {
			return fmt.Errorf("update recipe: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		if err := tx.Where("recipe_id = ?", recipe.ID).Delete(&models.RecipeIngredient{}).Error; err != nil {
			return fmt.Errorf("clear ingredients: %w", err)
		}
		if err := replaceIngredients(tx, recipe); err != nil {
			return err
		}
		if err := tx.Model(recipe).Association("Tags").Replace(recipe.Tags); err != nil {
			return fmt.Errorf("replace tags: %w", err)
		}
		return nil
	})
}

func replaceIngredients(tx *gorm.DB, recipe *models.Recipe) error {
	if len(recipe.Ingredients) == 0 {
		return nil
	}
	for i := range recipe.Ingredients {
		recipe.Ingredients[i].ID = uuid.Nil
		recipe.Ingredients[i].RecipeID = recipe.ID
		recipe.Ingredients[i].Position = i
	}
	if err := tx.Omit("Ingredient").Create(&recipe.Ingredients).Error; err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("insert ingredients: %w", ErrDuplicate)
		}
		return fmt.Errorf("insert ingredients: %w", err)
	}
	return nil
}

func (r *recipeRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, model := range []interface{}{&models.RecipeIngredient{}, &models.Favorite{}, &models.ShoppingCartItem{}} {
			if err := tx.Where("recipe_id = ?", id).Delete(model).Error; err != nil {
				return err
			}
		}
		if err := tx.Exec("DELETE FROM recipe_tags WHERE recipe_id = ?", id).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Recipe{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

func (r *recipeRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Recipe, error) {
	var recipe models.Recipe
	if err := withDetails(r.db.WithContext(ctx)).First(&recipe, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &recipe, nil
}

func (r *recipeRepository) GetByShortCode(ctx context.Context, code string) (*models.Recipe, error) {
	var recipe models.Recipe
	if err := r.db.WithContext(ctx).Select("id", "short_code").Where("short_code = ?", code).First(&recipe).Error; err != nil {
		return nil, notFound(err)
	}
	return &recipe, nil
}

func (r *recipeRepository) ExistsByShortCode(ctx context.Context, code string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Recipe{}).Where("short_code = ?", code).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *recipeRepository) List(ctx context.Context, filter RecipeFilter) ([]models.Recipe, int64, error) {
	db := r.db.WithContext(ctx)
	q := db.Model(&models.Recipe{})
	if filter.AuthorID != uuid.Nil {
		q = q.Where("recipes.author_id = ?", filter.AuthorID)
	}
	if len(filter.TagSlugs) > 0 {
		tagged := db.Table("recipe_tags").
			Select("recipe_tags.recipe_id").
			Joins("JOIN tags ON tags.id = recipe_tags.tag_id").
			Where("tags.slug IN ?", filter.TagSlugs)
		q = q.Where("recipes.id IN (?)", tagged)
	}
	if filter.FavoritedBy != uuid.Nil {
		q = q.Where("recipes.id IN (?)", db.Table(Favorites.table()).Select("recipe_id").Where("user_id = ?", filter.FavoritedBy))
	}
	if filter.InCartOf != uuid.Nil {
		q = q.Where("recipes.id IN (?)", db.Table(ShoppingCart.table()).Select("recipe_id").Where("user_id = ?", filter.InCartOf))
	}

	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count recipes: %w", err)
	}

	var recipes []models.Recipe
	err := withDetails(filter.Page.apply(q.Session(&gorm.Session{}))).
		Order("recipes.created_at DESC").
		Find(&recipes).Error
	if err != nil {
		return nil, 0, fmt.Errorf("list recipes: %w", err)
	}
	return recipes, total, nil
}

func (r *recipeRepository) ListByAuthor(ctx context.Context, authorID uuid.UUID, limit int) ([]models.Recipe, error) {
	var recipes []models.Recipe
	q := r.db.WithContext(ctx).Where("author_id = ?", authorID).Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&recipes).Error; err != nil {
		return nil, err
	}
	return recipes, nil
}

func (r *recipeRepository) CountByAuthor(ctx context.Context, authorIDs []uuid.UUID) (map[uuid.UUID]int64, error) {
	counts := make(map[uuid.UUID]int64, len(authorIDs))
	if len(authorIDs) == 0 {
		return counts, nil
	}
	var rows []struct {
		AuthorID uuid.UUID
		Total    int64
	}
	err := r.db.WithContext(ctx).Model(&models.Recipe{}).
		Select("author_id, COUNT(*) AS total").
		Where("author_id IN ?", authorIDs).
		Group("author_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		counts[row.AuthorID] = row.Total
	}
	return counts, nil
}

func (r *recipeRepository) AddMember(ctx context.Context, kind MembershipKind, userID, recipeID uuid.UUID) error {
	err := r.db.WithContext(ctx).Exec(
		"INSERT INTO "+kind.table()+" (user_id, recipe_id, created_at) VALUES (?, ?, CURRENT_TIMESTAMP)",
		userID, recipeID,
	).Error
	if isUniqueViolation(err) {
		return ErrMembershipExists
	}
	return err
}

func (r *recipeRepository) RemoveMember(ctx context.Context, kind MembershipKind, userID, recipeID uuid.UUID) error {
	res := r.db.WithContext(ctx).Exec(
		"DELETE FROM "+kind.table()+" WHERE user_id = ? AND recipe_id = ?",
		userID, recipeID,
	)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrMembershipMissing
	}
	return nil
}

func (r *recipeRepository) MemberSet(ctx context.Context, kind MembershipKind, userID uuid.UUID, recipeIDs []uuid.UUID) (map[uuid.UUID]bool, error) {
	set := make(map[uuid.UUID]bool, len(recipeIDs))
	if userID == uuid.Nil || len(recipeIDs) == 0 {
		return set, nil
	}
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).Table(kind.table()).
		Where("user_id = ? AND recipe_id IN ?", userID, recipeIDs).
		Pluck("recipe_id", &ids).Error
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		set[id] = true
	}
	return set, nil
}

// CartRecipes returns the user's cart, newest recipe first, with ingredient
// rows and their ingredients loaded.
func (r *recipeRepository) CartRecipes(ctx context.Context, userID uuid.UUID) ([]models.Recipe, error) {
	var recipes []models.Recipe
	err := r.db.WithContext(ctx).
		Preload("Ingredients", func(db *gorm.DB) *gorm.DB { return db.Order("recipe_ingredients.position") }).
		Preload("Ingredients.Ingredient").
		Where("recipes.id IN (?)", r.db.Table(ShoppingCart.table()).Select("recipe_id").Where("user_id = ?", userID)).
		Order("recipes.created_at DESC").
		Find(&recipes).Error
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}
	return recipes, nil
}
