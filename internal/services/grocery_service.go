package services

import (
	"context"
	"fmt"

	"recipehub/internal/core"
	"recipehub/internal/log"
	"recipehub/internal/sheets"
)

// GroceryService builds consolidated shopping lists from the current recipe
// snapshot.
type GroceryService struct {
	recipes sheets.RecipeLister
	logger  *log.StructuredLogger
}

func NewGroceryService(recipes sheets.RecipeLister, logger *log.Logger) *GroceryService {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &GroceryService{recipes: recipes, logger: log.NewStructuredLogger(logger)}
}

// Generate aggregates the selected recipes. Without any positive multiplier
// it fails with core.ErrEmptySelection before touching the store.
func (s *GroceryService) Generate(ctx context.Context, selections []core.Selection) (core.GroceryList, error) {
	if !core.HasSelection(selections) {
		return nil, core.ErrEmptySelection
	}
	snapshot, err := s.recipes.ListRecipes(ctx)
	if err != nil {
		return nil, fmt.Errorf("list recipes: %w", err)
	}
	list, err := core.Aggregate(selections, snapshot)
	if err != nil {
		return nil, err
	}
	s.logger.LogGroceryList(ctx, countSelected(selections), len(snapshot), len(list))
	return list, nil
}

func countSelected(selections []core.Selection) int {
	n := 0
	for _, s := range selections {
		if s.Multiplier > 0 {
			n++
		}
	}
	return n
}
