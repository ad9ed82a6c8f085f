package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"recipehub/internal/core"
)

type (
	// RecipeStore is the local store behind RecipeService.
	RecipeStore interface {
		InsertRecipe(ctx context.Context, r core.Recipe) (int64, error)
		ListRecipes(ctx context.Context) ([]core.Recipe, error)
		SoftDeleteRecipe(ctx context.Context, title string) (id, version int64, err error)
		Close() error
	}

	// SyncPublisher queues recipe changes for the sync worker.
	SyncPublisher interface {
		PublishRecipeSync(ctx context.Context, id, version int64, title string) error
		PublishRecipeDelete(ctx context.Context, id, version int64, title string) error
		Close() error
	}
)

// RecipeService orchestrates recipe writes across SQLite and AMQP. The local
// write is authoritative; a failed publish leaves the row pending for the
// worker's sweep.
type RecipeService struct {
	storage   RecipeStore
	publisher SyncPublisher
}

// NewRecipeService wires a store with an optional publisher (nil disables
// queueing).
func NewRecipeService(storage RecipeStore, publisher SyncPublisher) *RecipeService {
	return &RecipeService{storage: storage, publisher: publisher}
}

// CreateRecipe saves a recipe locally and publishes a sync message.
func (s *RecipeService) CreateRecipe(ctx context.Context, r core.Recipe) (string, error) {
	id, err := s.storage.InsertRecipe(ctx, r)
	if err != nil {
		return "", fmt.Errorf("save recipe: %w", err)
	}

	// Version 1 for a new row.
	if s.publisher == nil {
		slog.WarnContext(ctx, "AMQP client not available, skipping sync message", "id", id)
	} else if err := s.publisher.PublishRecipeSync(ctx, id, 1, r.Title); err != nil {
		slog.ErrorContext(ctx, "Failed to publish sync message", "id", id, "error", err)
	}
	return strconv.FormatInt(id, 10), nil
}

// DeleteRecipe soft deletes a recipe locally and publishes a delete message.
func (s *RecipeService) DeleteRecipe(ctx context.Context, title string) error {
	id, version, err := s.storage.SoftDeleteRecipe(ctx, title)
	if err != nil {
		return fmt.Errorf("soft delete recipe: %w", err)
	}

	if s.publisher == nil {
		slog.WarnContext(ctx, "AMQP client not available, skipping delete message", "id", id)
	} else if err := s.publisher.PublishRecipeDelete(ctx, id, version, title); err != nil {
		slog.ErrorContext(ctx, "Failed to publish delete message", "id", id, "error", err)
	}
	return nil
}

func (s *RecipeService) ListRecipes(ctx context.Context) ([]core.Recipe, error) {
	return s.storage.ListRecipes(ctx)
}

// Close closes both storage and AMQP connections
func (s *RecipeService) Close() error {
	var errs []error
	if s.storage != nil {
		if err := s.storage.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}
	if s.publisher != nil {
		if err := s.publisher.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("close recipe service: %w", err)
	}
	return nil
}
