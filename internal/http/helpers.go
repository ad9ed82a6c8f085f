package http

import (
	"errors"
	"net/http"
	"strings"

	"recipehub/internal/core"
	"recipehub/internal/services"
)

// sanitizeInput removes control characters other than tab, newline and
// carriage return, then trims surrounding whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}

// wantsText reports whether the client asked for plain text over JSON.
func wantsText(r *http.Request) bool {
	accept := r.Header.Get("Accept")
	return strings.Contains(accept, "text/plain") && !strings.Contains(accept, "application/json")
}

// errorResponse maps domain and input errors onto status codes. Anything
// unrecognised is a store failure.
func errorResponse(err error) *ResponseBuilder {
	switch {
	case errors.Is(err, core.ErrEmptySelection),
		errors.Is(err, core.ErrEmptyTitle),
		errors.Is(err, core.ErrEmptyAuthor),
		errors.Is(err, core.ErrTooManyIngredients),
		errors.Is(err, services.ErrInvalidSelection):
		return UnprocessableEntityError(err.Error())
	case errors.Is(err, core.ErrDuplicateTitle):
		return ConflictError(err.Error())
	case errors.Is(err, core.ErrRecipeNotFound):
		return NotFoundError(err.Error())
	case errors.Is(err, errBodyTooLarge):
		return ErrorResponse(http.StatusRequestEntityTooLarge, err.Error())
	case errors.Is(err, errBadBody):
		return BadRequestError(err.Error())
	default:
		return ErrorResponse(http.StatusBadGateway, "recipe store unavailable")
	}
}
