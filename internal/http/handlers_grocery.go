package http

import (
	"net/http"
	"sync/atomic"

	"recipehub/internal/core"
	"recipehub/internal/log"
)

type groceryLineJSON struct {
	Name     string `json:"name"`
	Quantity string `json:"quantity"`
	Unit     string `json:"unit"`
	Line     string `json:"line"`
}

// handleGroceryList aggregates the selected recipes. Plain-text clients get
// the aligned list as-is.
func (s *Server) handleGroceryList(w http.ResponseWriter, r *http.Request) {
	p := NewRequestBodyParser(r)
	if err := p.Parse(); err != nil {
		errorResponse(err).Write(w)
		return
	}
	selections, err := p.Selections()
	if err != nil {
		errorResponse(err).Write(w)
		return
	}

	list, err := s.grocery.Generate(r.Context(), selections)
	if err != nil {
		s.failed(w, r, "Grocery list failed", log.OpAggregate, err)
		return
	}
	atomic.AddInt64(&s.appMetrics.groceryLists, 1)

	if wantsText(r) {
		NewResponse().Text(list.Render()).Write(w)
		return
	}
	lines := make([]groceryLineJSON, len(list))
	for i, l := range list {
		lines[i] = groceryLineJSON{Name: l.Name, Quantity: l.Quantity, Unit: l.Unit, Line: l.String()}
	}
	NewResponse().JSON(map[string]any{"lines": lines, "text": list.Render()}).Write(w)
}

type parsedJSON struct {
	Line     string `json:"line"`
	Quantity string `json:"quantity"`
	Unit     string `json:"unit"`
	Name     string `json:"name"`
}

// handleParseIngredients splits free-text ingredient lines. Every line
// parses; unrecognised parts land in the name.
func (s *Server) handleParseIngredients(w http.ResponseWriter, r *http.Request) {
	p := NewRequestBodyParser(r)
	if err := p.Parse(); err != nil {
		errorResponse(err).Write(w)
		return
	}
	lines := append(p.Values("line"), p.Values("lines")...)
	if len(lines) == 0 {
		UnprocessableEntityError("no ingredient line given").Write(w)
		return
	}

	out := make([]parsedJSON, len(lines))
	for i, line := range lines {
		parsed := core.ParseIngredient(line)
		out[i] = parsedJSON{Line: line, Quantity: parsed.Quantity, Unit: parsed.Unit, Name: parsed.Name}
	}
	log.FromContext(r.Context()).DebugContext(r.Context(), "Ingredient lines parsed",
		log.FieldOperation, log.OpParse, log.FieldLineCount, len(out))
	NewResponse().JSON(map[string]any{"ingredients": out}).Write(w)
}
