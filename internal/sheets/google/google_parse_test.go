package google

import (
	"testing"
)

func TestRowsToRecipes(t *testing.T) {
	values := [][]interface{}{
		{"Recipe Title", "Author", "Ingredient 1"},
		{"Chili", "Dee", "1 Lb(s) Beef", "", "2 Can Beans", "", "", "", "", "", "", "", "", "", "", "", "", "", "", "", "", "", "Simmer.", "2024-01-02", "extra"},
		{"", "nobody", "1 Egg"},
		{},
		{"  Toast ", "Cid", 2.0},
	}
	got := rowsToRecipes(values)
	if len(got) != 2 {
		t.Fatalf("got %d recipes, want 2: %+v", len(got), got)
	}
	chili := got[0]
	if chili.Title != "Chili" || chili.Author != "Dee" || chili.Instructions != "Simmer." || chili.Date != "2024-01-02" {
		t.Fatalf("unexpected chili: %+v", chili)
	}
	if len(chili.Ingredients) != 2 || chili.Ingredients[1] != "2 Can Beans" {
		t.Fatalf("unexpected chili ingredients: %q", chili.Ingredients)
	}
	// Non-string cells are rendered as text.
	if got[1].Title != "Toast" || len(got[1].Ingredients) != 1 || got[1].Ingredients[0] != "2" {
		t.Fatalf("unexpected toast: %+v", got[1])
	}
}

func TestRowsToRecipes_NoHeader(t *testing.T) {
	got := rowsToRecipes([][]interface{}{{"Soup", "Ann"}})
	if len(got) != 1 || got[0].Title != "Soup" {
		t.Fatalf("first row without header must be data: %+v", got)
	}
	if got := rowsToRecipes(nil); len(got) != 0 {
		t.Fatalf("expected no recipes, got %+v", got)
	}
}

func TestFindTitleRow(t *testing.T) {
	values := [][]interface{}{{"Title"}, {"Soup"}, {}, {" Stew "}, {"Soup"}}
	cases := map[string]int{"Soup": 1, "Stew": 3, "Title": -1, "Pie": -1}
	for title, want := range cases {
		if got := findTitleRow(values, title); got != want {
			t.Fatalf("findTitleRow(%q) = %d, want %d", title, got, want)
		}
	}
}

func TestColumnLetter(t *testing.T) {
	cases := map[int]string{1: "A", 2: "B", 24: "X", 26: "Z", 27: "AA", 52: "AZ", 703: "AAA"}
	for n, want := range cases {
		if got := columnLetter(n); got != want {
			t.Fatalf("columnLetter(%d) = %q, want %q", n, got, want)
		}
	}
	if lastColumn() != "X" {
		t.Fatalf("lastColumn() = %q, want X", lastColumn())
	}
}

func TestA1Range(t *testing.T) {
	cases := []struct{ sheet, cells, want string }{
		{"", "A:X", "A:X"},
		{"Recipes", "A:A", "'Recipes'!A:A"},
		{"Mom's Recipes", "A2:X2", "'Mom''s Recipes'!A2:X2"},
	}
	for _, tc := range cases {
		if got := a1Range(tc.sheet, tc.cells); got != tc.want {
			t.Fatalf("a1Range(%q, %q) = %q, want %q", tc.sheet, tc.cells, got, tc.want)
		}
	}
}
