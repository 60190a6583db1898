package testhelpers

import (
	"strings"
	"testing"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/pageza/foodgram/backend/internal/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Password is the plain text password of every fixture user.
const Password = "Sup3r-secret!"

var passwordHash string

func hashedPassword(t *testing.T) string {
	if passwordHash == "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(Password), bcrypt.MinCost)
		if err != nil {
			t.Fatalf("failed to hash password: %v", err)
		}
		passwordHash = string(hash)
	}
	return passwordHash
}

func CreateUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	user := &models.User{
		Email:        strings.ToLower(gofakeit.UUID()[:8] + "@" + gofakeit.DomainName()),
		Username:     "u" + strings.ReplaceAll(gofakeit.UUID(), "-", "")[:12],
		FirstName:    gofakeit.FirstName(),
		LastName:     gofakeit.LastName(),
		PasswordHash: hashedPassword(t),
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	return user
}

func CreateTag(t *testing.T, db *gorm.DB, name string) *models.Tag {
	t.Helper()
	tag := &models.Tag{Name: name, Slug: strings.ToLower(strings.ReplaceAll(name, " ", "-"))}
	if err := db.Create(tag).Error; err != nil {
		t.Fatalf("failed to create tag: %v", err)
	}
	return tag
}

func CreateIngredient(t *testing.T, db *gorm.DB, name, unit string) *models.Ingredient {
	t.Helper()
	ingredient := &models.Ingredient{Name: name, MeasurementUnit: unit}
	if err := db.Create(ingredient).Error; err != nil {
		t.Fatalf("failed to create ingredient: %v", err)
	}
	return ingredient
}

// Amount pairs an ingredient with a quantity for CreateRecipe.
type Amount struct {
	Ingredient *models.Ingredient
	Amount     int
}

// CreateRecipe inserts a recipe directly, bypassing short code generation.
func CreateRecipe(t *testing.T, db *gorm.DB, author *models.User, code string, tags []*models.Tag, amounts ...Amount) *models.Recipe {
	t.Helper()
	recipe := &models.Recipe{
		AuthorID:    author.ID,
		Name:        gofakeit.Dessert(),
		Text:        gofakeit.Paragraph(1, 2, 8, " "),
		Image:       "https://img.example.com/" + gofakeit.UUID() + ".png",
		CookingTime: gofakeit.Number(models.MinCookingTime, models.MaxCookingTime),
		ShortCode:   code,
	}
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Author", "Tags", "Ingredients").Create(recipe).Error; err != nil {
			return err
		}
		for i, a := range amounts {
			ri := models.RecipeIngredient{RecipeID: recipe.ID, IngredientID: a.Ingredient.ID, Amount: a.Amount, Position: i}
			if err := tx.Omit("Ingredient").Create(&ri).Error; err != nil {
				return err
			}
		}
		for _, tag := range tags {
			if err := tx.Exec("INSERT INTO recipe_tags (recipe_id, tag_id) VALUES (?, ?)", recipe.ID, tag.ID).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("failed to create recipe: %v", err)
	}
	return recipe
}
