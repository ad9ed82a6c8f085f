package adapters

import (
	"context"

	"recipehub/internal/core"
	"recipehub/internal/services"
	"recipehub/internal/sheets"
)

// SQLiteAdapter exposes RecipeService through the sheets ports so the HTTP
// and CLI surfaces work unchanged on the SQLite + AMQP backend.
type SQLiteAdapter struct {
	service *services.RecipeService
}

const refPrefix = "sqlite:"

var (
	_ sheets.RecipeWriter  = (*SQLiteAdapter)(nil)
	_ sheets.RecipeLister  = (*SQLiteAdapter)(nil)
	_ sheets.RecipeDeleter = (*SQLiteAdapter)(nil)
)

func NewSQLiteAdapter(service *services.RecipeService) *SQLiteAdapter {
	return &SQLiteAdapter{service: service}
}

// InsertRecipe implements sheets.RecipeWriter. The row reference is
// "sqlite:<id>" for the local row; the sheet row is written later by the
// sync worker.
func (a *SQLiteAdapter) InsertRecipe(ctx context.Context, r core.Recipe) (string, error) {
	if err := r.Validate(); err != nil {
		return "", err
	}
	id, err := a.service.CreateRecipe(ctx, r)
	if err != nil {
		return "", err
	}
	return refPrefix + id, nil
}

func (a *SQLiteAdapter) ListRecipes(ctx context.Context) ([]core.Recipe, error) {
	return a.service.ListRecipes(ctx)
}

func (a *SQLiteAdapter) DeleteRecipe(ctx context.Context, title string) error {
	return a.service.DeleteRecipe(ctx, title)
}
