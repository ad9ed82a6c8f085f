package memory

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"recipehub/internal/core"
	ports "recipehub/internal/sheets"
)

// SeedFile is the file NewFromFiles reads recipes from: one recipe per line,
// cells separated by tabs in row layout, '#' starting a comment line.
const SeedFile = "seed_recipes.tsv"

var (
	_ ports.RecipeWriter  = (*Store)(nil)
	_ ports.RecipeLister  = (*Store)(nil)
	_ ports.RecipeDeleter = (*Store)(nil)
)

type Store struct {
	mu    sync.Mutex
	items []core.Recipe
	seq   int
}

// New returns a store holding recipes. Later duplicates of a title are dropped.
func New(recipes []core.Recipe) *Store {
	s := &Store{}
	for _, r := range recipes {
		if _, dup := core.FindRecipe(s.items, r.Title); dup || strings.TrimSpace(r.Title) == "" {
			continue
		}
		s.items = append(s.items, r)
	}
	return s
}

// NewFromFiles seeds a store from base/seed_recipes.tsv. A missing file
// yields an empty store.
func NewFromFiles(base string) *Store {
	return New(readRecipes(filepath.Join(base, SeedFile)))
}

// InsertRecipe stores the recipe and returns a synthetic row reference.
func (s *Store) InsertRecipe(_ context.Context, r core.Recipe) (string, error) {
	if err := r.Validate(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, dup := core.FindRecipe(s.items, r.Title); dup {
		return "", fmt.Errorf("insert %q: %w", r.Title, core.ErrDuplicateTitle)
	}
	// Stored in row form so the snapshot matches what a sheet would return.
	stored, _ := core.RecipeFromRow(r.Row())
	s.items = append(s.items, stored)
	s.seq++
	return fmt.Sprintf("mem:%d", s.seq), nil
}

// ListRecipes returns a copy of every recipe sorted by title.
func (s *Store) ListRecipes(_ context.Context) ([]core.Recipe, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Recipe, len(s.items))
	for i, r := range s.items {
		r.Ingredients = append([]string(nil), r.Ingredients...)
		out[i] = r
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Title < out[j].Title })
	return out, nil
}

func (s *Store) DeleteRecipe(_ context.Context, title string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, r := range s.items {
		if r.Title == title {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("delete %q: %w", title, core.ErrRecipeNotFound)
}

func readRecipes(path string) []core.Recipe {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()
	var out []core.Recipe
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := sc.Text()
		if strings.TrimSpace(line) == "" || strings.HasPrefix(strings.TrimSpace(line), "#") {
			continue
		}
		cells := strings.Split(line, "\t")
		if core.IsHeaderRow(cells) {
			continue
		}
		// Instructions may carry escaped newlines.
		if len(cells) > core.TotalColumns-2 {
			cells[core.TotalColumns-2] = strings.ReplaceAll(cells[core.TotalColumns-2], `\n`, "\n")
		}
		if r, ok := core.RecipeFromRow(cells); ok {
			out = append(out, r)
		}
	}
	return out
}
