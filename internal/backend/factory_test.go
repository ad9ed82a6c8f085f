package backend

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"recipehub/internal/cache"
	"recipehub/internal/config"
	"recipehub/internal/core"
	"recipehub/internal/sheets/memory"
)

func TestFromAppConfig(t *testing.T) {
	if _, err := FromAppConfig(nil); err == nil {
		t.Fatal("expected error for nil config")
	}
	if _, err := FromAppConfig(&config.Config{DataBackend: "mongo"}); err == nil {
		t.Fatal("expected error for unknown backend")
	}

	got, err := FromAppConfig(&config.Config{
		DataBackend:    "sqlite",
		SQLiteDBPath:   "db.sqlite",
		DataDir:        "seed",
		RecipeCacheTTL: time.Second,
	})
	if err != nil {
		t.Fatalf("FromAppConfig: %v", err)
	}
	if got.Type != SQLiteBackend || got.SQLiteDBPath != "db.sqlite" || got.DataDirectory != "seed" || got.CacheTTL != time.Second {
		t.Fatalf("unexpected backend config %+v", got)
	}
}

func TestConfigValidate(t *testing.T) {
	if err := (Config{Type: SQLiteBackend}).Validate(); err == nil {
		t.Fatal("sqlite without a path should fail")
	}
	if err := (Config{Type: MemoryBackend, CacheTTL: -1}).Validate(); err == nil {
		t.Fatal("negative TTL should fail")
	}
	if got := strings.Join(GetBackendTypeStrings(), ","); got != "sqlite,sheets,memory" {
		t.Fatalf("GetBackendTypeStrings = %q", got)
	}
}

func TestCreateMemoryBackend(t *testing.T) {
	dir := t.TempDir()
	seed := "Soup\tAnn\t1 Egg" + strings.Repeat("\t", 21) + "\n"
	if err := os.WriteFile(filepath.Join(dir, memory.SeedFile), []byte(seed), 0o644); err != nil {
		t.Fatalf("write seed: %v", err)
	}

	res, err := NewFactory(nil).CreateBackend(context.Background(), Config{Type: MemoryBackend, DataDirectory: dir})
	if err != nil {
		t.Fatalf("CreateBackend: %v", err)
	}
	if _, cached := res.Backend.(*cache.RecipeStore); cached {
		t.Fatal("cache should be off without a TTL")
	}
	recipes, err := res.Backend.ListRecipes(context.Background())
	if err != nil || len(recipes) != 1 || recipes[0].Title != "Soup" {
		t.Fatalf("unexpected seed recipes %+v, %v", recipes, err)
	}
	if err := res.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}

func TestCreateSQLiteBackendWithCache(t *testing.T) {
	ctx := context.Background()
	res, err := NewFactory(nil).CreateBackend(ctx, Config{
		Type:         SQLiteBackend,
		SQLiteDBPath: filepath.Join(t.TempDir(), "recipes.db"),
		CacheTTL:     time.Minute,
	})
	if err != nil {
		t.Fatalf("CreateBackend: %v", err)
	}
	defer res.Close()

	if _, cached := res.Backend.(*cache.RecipeStore); !cached {
		t.Fatalf("expected cached backend, got %T", res.Backend)
	}

	ref, err := res.Backend.InsertRecipe(ctx, core.Recipe{Title: "Stew", Author: "Cy", Ingredients: []string{"2 Cup(s) Beans"}})
	if err != nil || ref != "sqlite:1" {
		t.Fatalf("InsertRecipe = %q, %v", ref, err)
	}
	if _, err := res.Backend.InsertRecipe(ctx, core.Recipe{Title: "Stew", Author: "Di"}); !errors.Is(err, core.ErrDuplicateTitle) {
		t.Fatalf("expected ErrDuplicateTitle, got %v", err)
	}
	recipes, err := res.Backend.ListRecipes(ctx)
	if err != nil || len(recipes) != 1 || recipes[0].Ingredients[0] != "2 Cup(s) Beans" {
		t.Fatalf("unexpected recipes %+v, %v", recipes, err)
	}
	if err := res.Backend.DeleteRecipe(ctx, "Stew"); err != nil {
		t.Fatalf("DeleteRecipe: %v", err)
	}
	if recipes, _ := res.Backend.ListRecipes(ctx); len(recipes) != 0 {
		t.Fatalf("deleted recipe still listed: %+v", recipes)
	}
}

func TestCreateSheetsBackendNeedsSpreadsheet(t *testing.T) {
	t.Setenv("GOOGLE_SPREADSHEET_ID", "")
	if _, err := NewFactory(nil).CreateBackend(context.Background(), Config{Type: SheetsBackend}); err == nil {
		t.Fatal("expected error without a spreadsheet id")
	}
}
