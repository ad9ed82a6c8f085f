package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"recipehub/internal/amqp"
	"recipehub/internal/core"
	applog "recipehub/internal/log"
	"recipehub/internal/sheets"
	"recipehub/internal/storage"
)

// Store is the slice of the SQLite repository the worker needs.
type Store interface {
	GetRecipe(ctx context.Context, id int64) (*storage.StoredRecipe, error)
	GetRecipeByTitle(ctx context.Context, title string) (*storage.StoredRecipe, error)
	GetPendingSync(ctx context.Context, limit int) ([]storage.PendingSyncRecipe, error)
	MarkSynced(ctx context.Context, id, version int64) error
	MarkSyncError(ctx context.Context, id int64) error
}

// Sheet is the remote row store recipes are mirrored to.
type Sheet interface {
	sheets.RecipeWriter
	sheets.RecipeLister
	sheets.RecipeDeleter
}

// SyncWorker mirrors recipes from SQLite to Google Sheets.
type SyncWorker struct {
	storage   Store
	sheet     Sheet
	batchSize int
}

func NewSyncWorker(storage Store, sheet Sheet, batchSize int) *SyncWorker {
	if batchSize <= 0 {
		batchSize = 10
	}
	return &SyncWorker{storage: storage, sheet: sheet, batchSize: batchSize}
}

// HandleMessage applies a single queue message. Returning an error requeues
// the message.
func (w *SyncWorker) HandleMessage(ctx context.Context, msg *amqp.RecipeSyncMessage) error {
	slog.InfoContext(ctx, "Processing sync message",
		applog.FieldOperation, applog.OpSync,
		"id", msg.ID,
		"version", msg.Version,
		"op", msg.Op)

	stored, err := w.storage.GetRecipe(ctx, msg.ID)
	if err != nil {
		if errors.Is(err, core.ErrRecipeNotFound) {
			slog.WarnContext(ctx, "Recipe vanished before sync, dropping message", "id", msg.ID)
			return nil
		}
		return fmt.Errorf("get recipe from storage: %w", err)
	}

	// A newer local change has its own message; this one is superseded.
	if stored.Version > msg.Version {
		slog.DebugContext(ctx, "Skipping stale sync message",
			"id", msg.ID, "message_version", msg.Version, "stored_version", stored.Version)
		return nil
	}

	if msg.Op == amqp.OpDelete || stored.Deleted {
		title := msg.Title
		if title == "" {
			title = stored.Recipe.Title
		}
		return w.deleteFromSheet(ctx, stored.ID, stored.Version, title)
	}
	return w.syncToSheet(ctx, stored)
}

// ProcessPendingRecipes mirrors one batch of pending recipes. It is the
// backup path for lost queue messages.
func (w *SyncWorker) ProcessPendingRecipes(ctx context.Context) (int, error) {
	return w.processPending(ctx, w.batchSize)
}

// StartupSyncCheck drains a larger batch of pending recipes at worker start
// to recover from downtime.
func (w *SyncWorker) StartupSyncCheck(ctx context.Context) error {
	n, err := w.processPending(ctx, w.batchSize*5)
	if err != nil {
		return fmt.Errorf("startup sync check: %w", err)
	}
	if n == 0 {
		slog.InfoContext(ctx, "No pending recipes found on startup")
	}
	return nil
}

func (w *SyncWorker) processPending(ctx context.Context, limit int) (int, error) {
	pending, err := w.storage.GetPendingSync(ctx, limit)
	if err != nil {
		return 0, fmt.Errorf("get pending recipes: %w", err)
	}
	if len(pending) == 0 {
		return 0, nil
	}

	slog.InfoContext(ctx, "Processing pending recipes", "count", len(pending))

	synced, failed := 0, 0
	for _, p := range pending {
		if err := ctx.Err(); err != nil {
			return synced, err
		}

		var syncErr error
		if p.Deleted {
			syncErr = w.deleteFromSheet(ctx, p.ID, p.Version, p.Title)
		} else {
			stored, err := w.storage.GetRecipe(ctx, p.ID)
			if err != nil {
				syncErr = err
				w.markError(ctx, p.ID)
			} else {
				syncErr = w.syncToSheet(ctx, stored)
			}
		}
		if syncErr != nil {
			slog.ErrorContext(ctx, "Failed to sync recipe", "id", p.ID, "error", syncErr)
			failed++
			continue
		}
		synced++
	}

	slog.InfoContext(ctx, "Pending sync completed",
		applog.FieldOperation, applog.OpSync,
		"total", len(pending),
		"synced", synced,
		"errors", failed)
	return synced, nil
}

func (w *SyncWorker) syncToSheet(ctx context.Context, stored *storage.StoredRecipe) error {
	ref, err := w.sheet.InsertRecipe(ctx, stored.Recipe)
	if errors.Is(err, core.ErrDuplicateTitle) {
		ref, err = w.reconcile(ctx, stored.Recipe)
	}
	if err != nil {
		w.markError(ctx, stored.ID)
		return fmt.Errorf("insert into sheets: %w", err)
	}

	if err := w.storage.MarkSynced(ctx, stored.ID, stored.Version); err != nil {
		slog.ErrorContext(ctx, "Failed to mark as synced", "id", stored.ID, "error", err)
	}

	slog.InfoContext(ctx, "Successfully synced recipe",
		"id", stored.ID,
		"sheets_ref", ref,
		"recipe_title", stored.Recipe.Title,
		"ingredient_count", len(stored.Recipe.Ingredients))
	return nil
}

// reconcile handles an insert that hit a sheet row with the same title. A
// row with the same content is an earlier delivery of this recipe. Any other
// row is left over from a deleted recipe whose delete has not been applied
// yet, and is replaced.
func (w *SyncWorker) reconcile(ctx context.Context, local core.Recipe) (string, error) {
	remote, err := w.sheet.ListRecipes(ctx)
	if err != nil {
		return "", fmt.Errorf("read sheet rows: %w", err)
	}
	if existing, ok := core.FindRecipe(remote, local.Title); ok {
		if sameContent(existing, local) {
			return "existing", nil
		}
		slog.WarnContext(ctx, "Replacing stale sheet row", "recipe_title", local.Title)
		if err := w.sheet.DeleteRecipe(ctx, local.Title); err != nil && !errors.Is(err, core.ErrRecipeNotFound) {
			return "", fmt.Errorf("remove stale row: %w", err)
		}
	}
	return w.sheet.InsertRecipe(ctx, local)
}

func sameContent(a, b core.Recipe) bool {
	return a.Author == b.Author &&
		a.Instructions == b.Instructions &&
		slices.Equal(a.IngredientLines(), b.IngredientLines())
}

// deleteFromSheet removes the sheet row for a deleted recipe. When the title
// has since been reused locally the row belongs to the newer recipe, whose
// own upsert brings it up to date, so it is kept.
func (w *SyncWorker) deleteFromSheet(ctx context.Context, id, version int64, title string) error {
	current, err := w.storage.GetRecipeByTitle(ctx, title)
	switch {
	case err == nil && current.ID != id:
		slog.InfoContext(ctx, "Title reused locally, keeping sheet row",
			"id", id, "current_id", current.ID, "recipe_title", title)
	case err != nil && !errors.Is(err, core.ErrRecipeNotFound):
		w.markError(ctx, id)
		return fmt.Errorf("look up title owner: %w", err)
	default:
		if err := w.sheet.DeleteRecipe(ctx, title); err != nil && !errors.Is(err, core.ErrRecipeNotFound) {
			w.markError(ctx, id)
			return fmt.Errorf("delete from sheets: %w", err)
		}
	}

	if err := w.storage.MarkSynced(ctx, id, version); err != nil {
		slog.ErrorContext(ctx, "Failed to mark delete as synced", "id", id, "error", err)
	}
	slog.InfoContext(ctx, "Successfully deleted recipe from sheets", "id", id, "recipe_title", title)
	return nil
}

func (w *SyncWorker) markError(ctx context.Context, id int64) {
	if err := w.storage.MarkSyncError(ctx, id); err != nil {
		slog.ErrorContext(ctx, "Failed to mark sync error", "id", id, "error", err)
	}
}
