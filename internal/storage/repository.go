package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"recipehub/internal/core"
	applog "recipehub/internal/log"

	_ "modernc.org/sqlite"
)

// Sync states of a stored recipe.
const (
	SyncPending = "pending"
	SyncSynced  = "synced"
	SyncError   = "error"
)

// SQLiteRepository is the local recipe store. Every change bumps the row
// version and marks it pending until the sync worker mirrors it to Sheets.
type SQLiteRepository struct {
	db *sql.DB
}

type (
	// StoredRecipe is a recipe row with its bookkeeping columns.
	StoredRecipe struct {
		ID         int64
		Recipe     core.Recipe
		Version    int64
		SyncStatus string
		Deleted    bool
		CreatedAt  time.Time
	}

	// PendingSyncRecipe is the minimal data needed for sync queue messages.
	PendingSyncRecipe struct {
		ID        int64
		Title     string
		Version   int64
		Deleted   bool
		CreatedAt time.Time
	}
)

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	if _, err := RunMigrations(dbPath); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// InsertRecipe stores a new active recipe and its non-blank ingredient lines.
func (r *SQLiteRepository) InsertRecipe(ctx context.Context, rec core.Recipe) (int64, error) {
	if err := rec.Validate(); err != nil {
		return 0, err
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var exists int
	err = tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM recipes WHERE title = ? AND deleted_at IS NULL`, rec.Title).Scan(&exists)
	if err != nil {
		return 0, fmt.Errorf("check title: %w", err)
	}
	if exists > 0 {
		return 0, fmt.Errorf("insert %q: %w", rec.Title, core.ErrDuplicateTitle)
	}

	res, err := tx.ExecContext(ctx,
		`INSERT INTO recipes (title, author, instructions, date) VALUES (?, ?, ?, ?)`,
		rec.Title, rec.Author, rec.Instructions, rec.Date)
	if err != nil {
		return 0, fmt.Errorf("insert recipe: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("recipe id: %w", err)
	}
	for i, line := range rec.IngredientLines() {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO recipe_ingredients (recipe_id, position, line) VALUES (?, ?, ?)`,
			id, i+1, strings.TrimSpace(line)); err != nil {
			return 0, fmt.Errorf("insert ingredient %d: %w", i+1, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit recipe: %w", err)
	}

	slog.InfoContext(ctx, "Recipe saved to SQLite",
		applog.FieldComponent, applog.ComponentStorage,
		"id", id,
		"recipe_title", rec.Title,
		"ingredient_count", len(rec.IngredientLines()))
	return id, nil
}

// ListRecipes returns every active recipe ordered by title.
func (r *SQLiteRepository) ListRecipes(ctx context.Context) ([]core.Recipe, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, title, author, instructions, date
		FROM recipes
		WHERE deleted_at IS NULL
		ORDER BY title, id`)
	if err != nil {
		return nil, fmt.Errorf("list recipes: %w", err)
	}
	defer rows.Close()

	var (
		out   []core.Recipe
		index = map[int64]int{}
	)
	for rows.Next() {
		var (
			id  int64
			rec core.Recipe
		)
		if err := rows.Scan(&id, &rec.Title, &rec.Author, &rec.Instructions, &rec.Date); err != nil {
			return nil, fmt.Errorf("scan recipe: %w", err)
		}
		index[id] = len(out)
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list recipes: %w", err)
	}

	lines, err := r.db.QueryContext(ctx, `
		SELECT ri.recipe_id, ri.line
		FROM recipe_ingredients ri
		JOIN recipes r ON r.id = ri.recipe_id
		WHERE r.deleted_at IS NULL
		ORDER BY ri.recipe_id, ri.position`)
	if err != nil {
		return nil, fmt.Errorf("list ingredients: %w", err)
	}
	defer lines.Close()
	for lines.Next() {
		var (
			id   int64
			line string
		)
		if err := lines.Scan(&id, &line); err != nil {
			return nil, fmt.Errorf("scan ingredient: %w", err)
		}
		if i, ok := index[id]; ok {
			out[i].Ingredients = append(out[i].Ingredients, line)
		}
	}
	if err := lines.Err(); err != nil {
		return nil, fmt.Errorf("list ingredients: %w", err)
	}
	return out, nil
}

const selectStored = `
	SELECT id, title, author, instructions, date, version, sync_status,
		deleted_at IS NOT NULL, CAST(strftime('%s', created_at) AS INTEGER)
	FROM recipes`

// GetRecipe returns a recipe by id, deleted or not.
func (r *SQLiteRepository) GetRecipe(ctx context.Context, id int64) (*StoredRecipe, error) {
	return r.getStored(ctx, selectStored+` WHERE id = ?`, id)
}

// GetRecipeByTitle returns the active recipe titled title.
func (r *SQLiteRepository) GetRecipeByTitle(ctx context.Context, title string) (*StoredRecipe, error) {
	return r.getStored(ctx, selectStored+` WHERE title = ? AND deleted_at IS NULL`, title)
}

func (r *SQLiteRepository) getStored(ctx context.Context, query string, arg any) (*StoredRecipe, error) {
	var (
		s       StoredRecipe
		created int64
	)
	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&s.ID, &s.Recipe.Title, &s.Recipe.Author, &s.Recipe.Instructions, &s.Recipe.Date,
		&s.Version, &s.SyncStatus, &s.Deleted, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get recipe %v: %w", arg, core.ErrRecipeNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get recipe %v: %w", arg, err)
	}
	s.CreatedAt = time.Unix(created, 0).UTC()

	rows, err := r.db.QueryContext(ctx,
		`SELECT line FROM recipe_ingredients WHERE recipe_id = ? ORDER BY position`, s.ID)
	if err != nil {
		return nil, fmt.Errorf("get ingredients: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var line string
		if err := rows.Scan(&line); err != nil {
			return nil, fmt.Errorf("scan ingredient: %w", err)
		}
		s.Recipe.Ingredients = append(s.Recipe.Ingredients, line)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("get ingredients: %w", err)
	}
	return &s, nil
}

// SoftDeleteRecipe marks the active recipe titled title as deleted and
// returns its id and new version.
func (r *SQLiteRepository) SoftDeleteRecipe(ctx context.Context, title string) (int64, int64, error) {
	var id, version int64
	err := r.db.QueryRowContext(ctx, `
		UPDATE recipes
		SET deleted_at = CURRENT_TIMESTAMP,
			updated_at = CURRENT_TIMESTAMP,
			version = version + 1,
			sync_status = 'pending'
		WHERE title = ? AND deleted_at IS NULL
		RETURNING id, version`, title).Scan(&id, &version)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, 0, fmt.Errorf("delete %q: %w", title, core.ErrRecipeNotFound)
	}
	if err != nil {
		return 0, 0, fmt.Errorf("soft delete recipe: %w", err)
	}
	slog.InfoContext(ctx, "Recipe soft-deleted in SQLite", "id", id, "recipe_title", title, "version", version)
	return id, version, nil
}

// GetPendingSync returns up to limit recipes waiting to be mirrored, oldest
// change first.
func (r *SQLiteRepository) GetPendingSync(ctx context.Context, limit int) ([]PendingSyncRecipe, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, title, version, deleted_at IS NOT NULL, CAST(strftime('%s', created_at) AS INTEGER)
		FROM recipes
		WHERE sync_status = 'pending'
		ORDER BY updated_at, id
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("get pending sync recipes: %w", err)
	}
	defer rows.Close()

	var out []PendingSyncRecipe
	for rows.Next() {
		var (
			p       PendingSyncRecipe
			created int64
		)
		if err := rows.Scan(&p.ID, &p.Title, &p.Version, &p.Deleted, &created); err != nil {
			return nil, fmt.Errorf("scan pending recipe: %w", err)
		}
		p.CreatedAt = time.Unix(created, 0).UTC()
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("get pending sync recipes: %w", err)
	}
	return out, nil
}

// MarkSynced records a successful sync of the given version. A newer local
// change keeps the row pending.
func (r *SQLiteRepository) MarkSynced(ctx context.Context, id, version int64) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE recipes
		SET sync_status = 'synced', synced_at = CURRENT_TIMESTAMP
		WHERE id = ? AND version = ?`, id, version)
	if err != nil {
		return fmt.Errorf("mark recipe synced: %w", err)
	}
	slog.InfoContext(ctx, "Recipe marked as synced", "id", id, "version", version)
	return nil
}

// MarkSyncError marks a recipe as having failed to sync.
func (r *SQLiteRepository) MarkSyncError(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE recipes SET sync_status = 'error' WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("mark recipe sync error: %w", err)
	}
	slog.WarnContext(ctx, "Recipe marked with sync error", "id", id)
	return nil
}
