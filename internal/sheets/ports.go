package sheets

import (
	"context"
	"recipehub/internal/core"
)

// Ports for outbound adapters. Every backend stores recipes in the flat
// row layout of core.Recipe.Row.
type (
	RecipeWriter interface {
		// InsertRecipe stores a new recipe. It fails with core.ErrDuplicateTitle
		// when the title is already taken.
		InsertRecipe(ctx context.Context, r core.Recipe) (rowRef string, err error)
	}

	// RecipeLister returns a snapshot of every stored recipe.
	RecipeLister interface {
		ListRecipes(ctx context.Context) ([]core.Recipe, error)
	}

	RecipeDeleter interface {
		// DeleteRecipe removes the recipe titled title, or fails with
		// core.ErrRecipeNotFound.
		DeleteRecipe(ctx context.Context, title string) error
	}
)
