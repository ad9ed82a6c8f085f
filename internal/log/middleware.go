package log

import (
	"context"
	"log/slog"
	"net/http"
)

type contextKey string

const loggerContextKey contextKey = "logger"

// NewContext returns a copy of ctx carrying logger.
func NewContext(ctx context.Context, logger *Logger) context.Context {
	return context.WithValue(ctx, loggerContextKey, logger)
}

// FromContext extracts a logger from the context, falling back to the
// slog default.
func FromContext(ctx context.Context) *Logger {
	if logger, ok := ctx.Value(loggerContextKey).(*Logger); ok {
		return logger
	}
	return &Logger{Logger: slog.Default(), component: "unknown"}
}

// StructuredLogger provides structured logging methods with context awareness
type StructuredLogger struct {
	logger *Logger
}

func NewStructuredLogger(logger *Logger) *StructuredLogger {
	return &StructuredLogger{logger: logger}
}

// LogHTTPEnd logs a finished request at a level matching its status.
func (sl *StructuredLogger) LogHTTPEnd(ctx context.Context, r *http.Request, statusCode int, durationMs int64, clientIP string) {
	level := slog.LevelInfo
	if statusCode >= 500 {
		level = slog.LevelError
	} else if statusCode >= 400 {
		level = slog.LevelWarn
	}

	fields := NewFields().
		WithHTTPRequest(r.Method, r.URL.Path, r.URL.RawQuery, r.Header.Get("User-Agent")).
		WithHTTPResponse(statusCode, durationMs, statusCode < 400).
		WithClientIP(clientIP).
		WithComponent(ComponentHTTP)

	sl.logger.Logger.Log(ctx, level, "HTTP request completed", fields.ToSlice()...)
}

func (sl *StructuredLogger) LogRecipeCreated(ctx context.Context, title, author string, ingredients int, ref string) {
	fields := NewFields().
		WithRecipe(title, author, ingredients).
		WithOperation(OpCreate).
		ToSlice()
	fields = append(fields, FieldRowRef, ref)
	sl.logger.WithComponent(ComponentRecipes).InfoContext(ctx, "Recipe created", fields...)
}

func (sl *StructuredLogger) LogRecipeDeleted(ctx context.Context, title string) {
	sl.logger.WithComponent(ComponentRecipes).InfoContext(ctx, "Recipe deleted",
		FieldRecipeTitle, title, FieldOperation, OpDelete)
}

func (sl *StructuredLogger) LogGroceryList(ctx context.Context, selections, recipes, lines int) {
	fields := NewFields().
		WithGrocery(selections, recipes, lines).
		WithOperation(OpAggregate).
		ToSlice()
	sl.logger.WithComponent(ComponentGrocery).InfoContext(ctx, "Grocery list generated", fields...)
}

// LogError logs an error with structured context
func (sl *StructuredLogger) LogError(ctx context.Context, msg string, err error, component, operation string, fields LogFields) {
	if fields == nil {
		fields = NewFields()
	}
	all := fields.WithError(err).WithOperation(operation)
	sl.logger.WithComponent(component).ErrorContext(ctx, msg, all.ToSlice()...)
}
