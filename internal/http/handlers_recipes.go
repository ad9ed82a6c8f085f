package http

import (
	"net/http"
	"net/url"
	"strings"
	"sync/atomic"

	"recipehub/internal/core"
	"recipehub/internal/log"
)

type recipeJSON struct {
	Title        string   `json:"title"`
	Author       string   `json:"author"`
	Ingredients  []string `json:"ingredients"`
	Instructions string   `json:"instructions"`
}

func toRecipeJSON(r core.Recipe) recipeJSON {
	ingredients := r.IngredientLines()
	if ingredients == nil {
		ingredients = []string{}
	}
	return recipeJSON{Title: r.Title, Author: r.Author, Ingredients: ingredients, Instructions: r.Instructions}
}

// renderRecipe lays a recipe out for reading: author, ingredient bullets,
// then the instructions.
func renderRecipe(r core.Recipe) string {
	var b strings.Builder
	b.WriteString(r.Title + "\n")
	b.WriteString("by " + r.Author + "\n\n")
	for _, line := range r.IngredientLines() {
		b.WriteString("- " + line + "\n")
	}
	if r.Instructions != "" {
		b.WriteString("\n" + r.Instructions + "\n")
	}
	return b.String()
}

func (s *Server) failed(w http.ResponseWriter, r *http.Request, msg, operation string, err error) {
	resp := errorResponse(err)
	if resp.statusCode >= http.StatusInternalServerError {
		log.NewStructuredLogger(log.FromContext(r.Context())).
			LogError(r.Context(), msg, err, log.ComponentRecipes, operation, nil)
	}
	resp.Write(w)
}

func (s *Server) handleListRecipes(w http.ResponseWriter, r *http.Request) {
	titles, err := s.catalog.Titles(r.Context())
	if err != nil {
		s.failed(w, r, "List recipes failed", log.OpList, err)
		return
	}
	if wantsText(r) {
		NewResponse().Text(strings.Join(titles, "\n") + "\n").Write(w)
		return
	}
	if titles == nil {
		titles = []string{}
	}
	NewResponse().JSON(map[string]any{"titles": titles}).Write(w)
}

func (s *Server) handleGetRecipe(w http.ResponseWriter, r *http.Request) {
	recipe, err := s.catalog.Get(r.Context(), r.PathValue("title"))
	if err != nil {
		s.failed(w, r, "Get recipe failed", log.OpRead, err)
		return
	}
	if wantsText(r) {
		NewResponse().Text(renderRecipe(recipe)).Write(w)
		return
	}
	NewResponse().JSON(toRecipeJSON(recipe)).Write(w)
}

func (s *Server) handleCreateRecipe(w http.ResponseWriter, r *http.Request) {
	p := NewRequestBodyParser(r)
	if err := p.Parse(); err != nil {
		errorResponse(err).Write(w)
		return
	}
	rows, err := p.IngredientRows()
	if err != nil {
		errorResponse(err).Write(w)
		return
	}

	recipe, ref, err := s.catalog.Add(r.Context(), p.Get("title"), p.Get("author"), rows, p.Get("instructions"))
	if err != nil {
		s.failed(w, r, "Create recipe failed", log.OpCreate, err)
		return
	}
	atomic.AddInt64(&s.appMetrics.recipesCreated, 1)

	NewResponse().
		Status(http.StatusCreated).
		Header("Location", "/recipes/"+url.PathEscape(recipe.Title)).
		JSON(map[string]any{"ref": ref, "recipe": toRecipeJSON(recipe)}).
		Write(w)
}

func (s *Server) handleDeleteRecipe(w http.ResponseWriter, r *http.Request) {
	if err := s.catalog.Delete(r.Context(), r.PathValue("title")); err != nil {
		s.failed(w, r, "Delete recipe failed", log.OpDelete, err)
		return
	}
	atomic.AddInt64(&s.appMetrics.recipesDeleted, 1)
	w.WriteHeader(http.StatusNoContent)
}
