package cache

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	"recipehub/internal/core"
	applog "recipehub/internal/log"
	"recipehub/internal/sheets"
)

const snapshotKey = "recipes"

// Store is a full recipe backend.
type Store interface {
	sheets.RecipeLister
	sheets.RecipeWriter
	sheets.RecipeDeleter
}

// RecipeStore fronts a Store with a TTL'd snapshot of the recipe list.
// Concurrent misses share a single backend call, and every write through it
// drops the snapshot.
type RecipeStore struct {
	next     Store
	snapshot *LRUCache[[]core.Recipe]
	group    singleflight.Group
}

var (
	_ Store   = (*RecipeStore)(nil)
	_ Cleaner = (*RecipeStore)(nil)
)

func NewRecipeStore(next Store, ttl time.Duration) *RecipeStore {
	return &RecipeStore{next: next, snapshot: NewLRUCache[[]core.Recipe](1, ttl)}
}

// ListRecipes returns the cached snapshot, refreshing it on a miss. Callers
// receive their own copy.
func (s *RecipeStore) ListRecipes(ctx context.Context) ([]core.Recipe, error) {
	if recipes, ok := s.snapshot.Get(snapshotKey); ok {
		return cloneRecipes(recipes), nil
	}

	v, err, shared := s.group.Do(snapshotKey, func() (any, error) {
		recipes, err := s.next.ListRecipes(ctx)
		if err != nil {
			return nil, err
		}
		s.snapshot.Set(snapshotKey, recipes)
		return recipes, nil
	})
	if err != nil {
		return nil, err
	}
	if shared {
		slog.DebugContext(ctx, "Recipe refresh shared", applog.FieldComponent, applog.ComponentCache)
	}
	return cloneRecipes(v.([]core.Recipe)), nil
}

func (s *RecipeStore) InsertRecipe(ctx context.Context, r core.Recipe) (string, error) {
	defer s.Invalidate()
	return s.next.InsertRecipe(ctx, r)
}

func (s *RecipeStore) DeleteRecipe(ctx context.Context, title string) error {
	defer s.Invalidate()
	return s.next.DeleteRecipe(ctx, title)
}

// Invalidate drops the snapshot so the next list hits the backend.
func (s *RecipeStore) Invalidate() {
	s.snapshot.Delete(snapshotKey)
}

func (s *RecipeStore) CleanExpired() int {
	return s.snapshot.CleanExpired()
}

func cloneRecipes(in []core.Recipe) []core.Recipe {
	out := make([]core.Recipe, len(in))
	for i, r := range in {
		r.Ingredients = append([]string(nil), r.Ingredients...)
		out[i] = r
	}
	return out
}
