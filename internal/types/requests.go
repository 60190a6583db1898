package types

import "github.com/google/uuid"

// IngredientAmount is one ingredient line of a recipe write request.
type IngredientAmount struct {
	ID     uuid.UUID `json:"id"`
	Amount int       `json:"amount"`
}

// RecipeRequest is the body of recipe create and update. Fields are checked
// by the recipe service so that every problem is reported at once.
type RecipeRequest struct {
	Name        string             `json:"name"`
	Text        string             `json:"text"`
	Image       string             `json:"image"`
	CookingTime int                `json:"cooking_time"`
	Tags        []uuid.UUID        `json:"tags"`
	Ingredients []IngredientAmount `json:"ingredients"`
}

type RegisterRequest struct {
	Email     string `json:"email" binding:"required,email,max=254"`
	Username  string `json:"username" binding:"required,max=150"`
	FirstName string `json:"first_name" binding:"required,max=150"`
	LastName  string `json:"last_name" binding:"required,max=150"`
	Password  string `json:"password" binding:"required,min=8"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type SetPasswordRequest struct {
	NewPassword     string `json:"new_password" binding:"required,min=8"`
	CurrentPassword string `json:"current_password" binding:"required"`
}

// AvatarRequest carries a base64 data URI.
type AvatarRequest struct {
	Avatar string `json:"avatar" binding:"required"`
}
