package services

import (
	"context"
	"fmt"

	"recipehub/internal/core"
	"recipehub/internal/log"
	"recipehub/internal/sheets"
)

// CatalogStore is everything the catalog needs from a backend.
type CatalogStore interface {
	sheets.RecipeLister
	sheets.RecipeWriter
	sheets.RecipeDeleter
}

// RecipeCatalog serves the browse and edit operations of the recipe book.
type RecipeCatalog struct {
	store  CatalogStore
	logger *log.StructuredLogger
}

func NewRecipeCatalog(store CatalogStore, logger *log.Logger) *RecipeCatalog {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &RecipeCatalog{store: store, logger: log.NewStructuredLogger(logger)}
}

// List returns the recipe snapshot.
func (c *RecipeCatalog) List(ctx context.Context) ([]core.Recipe, error) {
	recipes, err := c.store.ListRecipes(ctx)
	if err != nil {
		return nil, fmt.Errorf("list recipes: %w", err)
	}
	return recipes, nil
}

// Titles returns recipe titles in store order.
func (c *RecipeCatalog) Titles(ctx context.Context) ([]string, error) {
	recipes, err := c.List(ctx)
	if err != nil {
		return nil, err
	}
	titles := make([]string, len(recipes))
	for i, r := range recipes {
		titles[i] = r.Title
	}
	return titles, nil
}

// Get returns the recipe titled title with its non-blank ingredient lines.
func (c *RecipeCatalog) Get(ctx context.Context, title string) (core.Recipe, error) {
	recipes, err := c.List(ctx)
	if err != nil {
		return core.Recipe{}, err
	}
	r, ok := core.FindRecipe(recipes, title)
	if !ok {
		return core.Recipe{}, fmt.Errorf("get %q: %w", title, core.ErrRecipeNotFound)
	}
	r.Ingredients = r.IngredientLines()
	return r, nil
}

// Add composes a recipe from form rows, validates it and stores it. Rows
// without a name are dropped.
func (c *RecipeCatalog) Add(ctx context.Context, title, author string, rows []core.IngredientInput, instructions string) (core.Recipe, string, error) {
	r := core.NewRecipe(title, author, rows, instructions)
	if err := r.Validate(); err != nil {
		return core.Recipe{}, "", err
	}
	ref, err := c.store.InsertRecipe(ctx, r)
	if err != nil {
		return core.Recipe{}, "", fmt.Errorf("add recipe: %w", err)
	}
	c.logger.LogRecipeCreated(ctx, r.Title, r.Author, len(r.Ingredients), ref)
	return r, ref, nil
}

func (c *RecipeCatalog) Delete(ctx context.Context, title string) error {
	if err := c.store.DeleteRecipe(ctx, title); err != nil {
		return fmt.Errorf("delete recipe: %w", err)
	}
	c.logger.LogRecipeDeleted(ctx, title)
	return nil
}
