package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"recipehub/internal/core"
	"recipehub/internal/sheets/memory"
)

func TestLRUCache_EvictionAndExpiry(t *testing.T) {
	c := NewLRUCache[int](2, time.Minute)
	now := time.Unix(1000, 0)
	c.now = func() time.Time { return now }

	c.Set("a", 1)
	c.Set("b", 2)
	if _, ok := c.Get("a"); !ok {
		t.Fatal("a should be present")
	}
	c.Set("c", 3) // evicts b, the least recently used
	if _, ok := c.Get("b"); ok {
		t.Fatal("b should have been evicted")
	}
	if c.Size() != 2 {
		t.Fatalf("size = %d, want 2", c.Size())
	}

	now = now.Add(time.Minute)
	if _, ok := c.Get("a"); ok {
		t.Fatal("a should have expired")
	}
	if n := c.CleanExpired(); n != 1 {
		t.Fatalf("CleanExpired removed %d, want 1", n)
	}
	if c.Size() != 0 {
		t.Fatalf("size = %d, want 0", c.Size())
	}
}

type countingStore struct {
	*memory.Store
	lists atomic.Int32
	gate  chan struct{}
	err   error
}

func (s *countingStore) ListRecipes(ctx context.Context) ([]core.Recipe, error) {
	s.lists.Add(1)
	if s.gate != nil {
		<-s.gate
	}
	if s.err != nil {
		return nil, s.err
	}
	return s.Store.ListRecipes(ctx)
}

func TestRecipeStore_CachesAndInvalidates(t *testing.T) {
	ctx := context.Background()
	backend := &countingStore{Store: memory.New([]core.Recipe{{Title: "Soup", Author: "Ann", Ingredients: []string{"1 Egg"}}})}
	s := NewRecipeStore(backend, time.Minute)

	first, err := s.ListRecipes(ctx)
	if err != nil {
		t.Fatalf("ListRecipes: %v", err)
	}
	first[0].Ingredients[0] = "mutated"
	second, _ := s.ListRecipes(ctx)
	if backend.lists.Load() != 1 {
		t.Fatalf("backend listed %d times, want 1", backend.lists.Load())
	}
	if second[0].Ingredients[0] != "1 Egg" {
		t.Fatal("caller mutation leaked into the snapshot")
	}

	if _, err := s.InsertRecipe(ctx, core.Recipe{Title: "Bread", Author: "Bo"}); err != nil {
		t.Fatalf("InsertRecipe: %v", err)
	}
	after, _ := s.ListRecipes(ctx)
	if len(after) != 2 || backend.lists.Load() != 2 {
		t.Fatalf("insert did not invalidate: %d recipes, %d lists", len(after), backend.lists.Load())
	}

	if err := s.DeleteRecipe(ctx, "Nope"); !errors.Is(err, core.ErrRecipeNotFound) {
		t.Fatalf("expected ErrRecipeNotFound, got %v", err)
	}
	if _, _ = s.ListRecipes(ctx); backend.lists.Load() != 3 {
		t.Fatalf("failed delete should still invalidate, lists = %d", backend.lists.Load())
	}
}

func TestRecipeStore_CollapsesConcurrentRefreshes(t *testing.T) {
	backend := &countingStore{Store: memory.New(nil), gate: make(chan struct{})}
	s := NewRecipeStore(backend, time.Minute)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := s.ListRecipes(context.Background()); err != nil {
				t.Errorf("ListRecipes: %v", err)
			}
		}()
	}
	// Let the callers pile up on the in-flight refresh.
	time.Sleep(50 * time.Millisecond)
	close(backend.gate)
	wg.Wait()

	if n := backend.lists.Load(); n > 2 {
		t.Fatalf("backend listed %d times for concurrent callers", n)
	}
}

func TestRecipeStore_ErrorsAreNotCached(t *testing.T) {
	backend := &countingStore{Store: memory.New(nil), err: errors.New("quota exceeded")}
	s := NewRecipeStore(backend, time.Minute)

	for i := 0; i < 2; i++ {
		if _, err := s.ListRecipes(context.Background()); err == nil {
			t.Fatal("expected backend error")
		}
	}
	if backend.lists.Load() != 2 {
		t.Fatalf("error was cached: %d lists", backend.lists.Load())
	}
}

func TestManager_CleanAll(t *testing.T) {
	c := NewLRUCache[string](4, time.Nanosecond)
	c.Set("k", "v")
	m := NewManager()
	m.Register(c)
	time.Sleep(time.Millisecond)
	if n := m.CleanAll(); n != 1 {
		t.Fatalf("CleanAll removed %d, want 1", n)
	}
	m.StartCleanup(time.Hour)
	m.Stop()
	m.Stop()
}
