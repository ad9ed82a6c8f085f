package core

import (
	"errors"
	"fmt"
	"strings"
)

// MaxIngredients is the number of ingredient cells a recipe row carries.
const MaxIngredients = 20

// TotalColumns is the width of a recipe row:
// title, author, MaxIngredients ingredient cells, instructions, date.
const TotalColumns = 1 + 1 + MaxIngredients + 2

const (
	colTitle        = 0
	colAuthor       = 1
	colFirstIngr    = 2
	colInstructions = TotalColumns - 2
	colDate         = TotalColumns - 1
)

type (
	Recipe struct {
		Title        string
		Author       string // Submitter
		Ingredients  []string
		Instructions string
		Date         string
	}

	// IngredientInput is one quantity/unit/name row of a recipe form.
	IngredientInput struct {
		Quantity string
		Unit     string
		Name     string
	}
)

var (
	ErrEmptyTitle         = errors.New("empty recipe title")
	ErrEmptyAuthor        = errors.New("empty recipe author")
	ErrTooManyIngredients = fmt.Errorf("too many ingredients (max %d)", MaxIngredients)
	ErrDuplicateTitle     = errors.New("recipe title already exists")
	ErrRecipeNotFound     = errors.New("recipe not found")
)

func (r Recipe) Validate() error {
	if strings.TrimSpace(r.Title) == "" {
		return ErrEmptyTitle
	}
	if strings.TrimSpace(r.Author) == "" {
		return ErrEmptyAuthor
	}
	if len(r.IngredientLines()) > MaxIngredients {
		return ErrTooManyIngredients
	}
	return nil
}

// IngredientLines returns the non-blank ingredient lines in order.
func (r Recipe) IngredientLines() []string {
	out := make([]string, 0, len(r.Ingredients))
	for _, ing := range r.Ingredients {
		if strings.TrimSpace(ing) == "" {
			continue
		}
		out = append(out, ing)
	}
	return out
}

// Row encodes the recipe into the fixed-width row layout of the store.
// Ingredient lines past MaxIngredients are dropped.
func (r Recipe) Row() []string {
	row := make([]string, TotalColumns)
	row[colTitle] = r.Title
	row[colAuthor] = r.Author
	for i, ing := range r.IngredientLines() {
		if i >= MaxIngredients {
			break
		}
		row[colFirstIngr+i] = ing
	}
	row[colInstructions] = r.Instructions
	row[colDate] = r.Date
	return row
}

// RecipeFromRow decodes a store row. Short rows are padded; ok is false when
// the row has no title.
func RecipeFromRow(row []string) (Recipe, bool) {
	cell := func(i int) string {
		if i < 0 || i >= len(row) {
			return ""
		}
		return row[i]
	}
	title := strings.TrimSpace(cell(colTitle))
	if title == "" {
		return Recipe{}, false
	}
	r := Recipe{
		Title:        title,
		Author:       strings.TrimSpace(cell(colAuthor)),
		Instructions: cell(colInstructions),
		Date:         cell(colDate),
	}
	for i := 0; i < MaxIngredients; i++ {
		if ing := cell(colFirstIngr + i); strings.TrimSpace(ing) != "" {
			r.Ingredients = append(r.Ingredients, strings.TrimSpace(ing))
		}
	}
	return r, true
}

// IsHeaderRow reports whether row is the sheet's column header.
func IsHeaderRow(row []string) bool {
	if len(row) == 0 {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(row[0])) {
	case "title", "recipe title":
		return true
	}
	return false
}

// ComposeIngredientLine builds the stored line for one form row. It returns
// "" when the name is empty, in which case the row is not stored.
func ComposeIngredientLine(in IngredientInput) string {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return ""
	}
	parts := make([]string, 0, 3)
	for _, p := range []string{in.Quantity, in.Unit, name} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " ")
}

// NewRecipe assembles a recipe from form input, composing ingredient lines
// and skipping rows without a name.
func NewRecipe(title, author string, ingredients []IngredientInput, instructions string) Recipe {
	r := Recipe{
		Title:        strings.TrimSpace(title),
		Author:       strings.TrimSpace(author),
		Instructions: strings.TrimSpace(instructions),
	}
	for _, in := range ingredients {
		if line := ComposeIngredientLine(in); line != "" {
			r.Ingredients = append(r.Ingredients, line)
		}
	}
	return r
}

// FindRecipe returns the first recipe whose title equals title exactly.
func FindRecipe(recipes []Recipe, title string) (Recipe, bool) {
	for _, r := range recipes {
		if r.Title == title {
			return r, true
		}
	}
	return Recipe{}, false
}
