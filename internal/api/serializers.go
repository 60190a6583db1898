package api

import (
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/types"
)

func toUserResponse(u models.User, subscribed bool) types.UserResponse {
	resp := types.UserResponse{
		ID:           u.ID,
		Email:        u.Email,
		Username:     u.Username,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		IsSubscribed: subscribed,
	}
	if u.Avatar != "" {
		avatar := u.Avatar
		resp.Avatar = &avatar
	}
	return resp
}

func toUserResponses(views []service.UserView) []types.UserResponse {
	out := make([]types.UserResponse, len(views))
	for i, v := range views {
		out[i] = toUserResponse(v.User, v.IsSubscribed)
	}
	return out
}

func toTagResponse(t models.Tag) types.TagResponse {
	return types.TagResponse{ID: t.ID, Name: t.Name, Slug: t.Slug}
}

func toTagResponses(tags []models.Tag) []types.TagResponse {
	out := make([]types.TagResponse, len(tags))
	for i, t := range tags {
		out[i] = toTagResponse(t)
	}
	return out
}

func toIngredientResponse(i models.Ingredient) types.IngredientResponse {
	return types.IngredientResponse{ID: i.ID, Name: i.Name, MeasurementUnit: i.MeasurementUnit}
}

func toIngredientResponses(ingredients []models.Ingredient) []types.IngredientResponse {
	out := make([]types.IngredientResponse, len(ingredients))
	for i, ing := range ingredients {
		out[i] = toIngredientResponse(ing)
	}
	return out
}

func toRecipeResponse(v service.RecipeView) types.RecipeResponse {
	lines := make([]types.RecipeIngredientResponse, len(v.Ingredients))
	for i, ri := range v.Ingredients {
		lines[i] = types.RecipeIngredientResponse{
			IngredientResponse: toIngredientResponse(ri.Ingredient),
			Amount:             ri.Amount,
		}
	}
	return types.RecipeResponse{
		ID:               v.ID,
		Tags:             toTagResponses(v.Tags),
		Author:           toUserResponse(v.Author, v.AuthorSubscribed),
		Ingredients:      lines,
		IsFavorited:      v.IsFavorited,
		IsInShoppingCart: v.IsInShoppingCart,
		Name:             v.Name,
		Image:            v.Image,
		Text:             v.Text,
		CookingTime:      v.CookingTime,
	}
}

func toRecipeResponses(views []service.RecipeView) []types.RecipeResponse {
	out := make([]types.RecipeResponse, len(views))
	for i, v := range views {
		out[i] = toRecipeResponse(v)
	}
	return out
}

func toRecipeShort(r models.Recipe) types.RecipeShortResponse {
	return types.RecipeShortResponse{ID: r.ID, Name: r.Name, Image: r.Image, CookingTime: r.CookingTime}
}

func toSubscriptionResponse(v service.SubscriptionView) types.SubscriptionResponse {
	recipes := make([]types.RecipeShortResponse, len(v.Recipes))
	for i, r := range v.Recipes {
		recipes[i] = toRecipeShort(r)
	}
	return types.SubscriptionResponse{
		UserResponse: toUserResponse(v.User, v.IsSubscribed),
		Recipes:      recipes,
		RecipesCount: v.RecipesCount,
	}
}
