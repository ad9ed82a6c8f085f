package core

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func breakfastRecipes() []Recipe {
	return []Recipe{
		{Title: "Pancakes", Author: "Ann", Ingredients: []string{"2 Cup(s) Flour", "1 Egg"}},
		{Title: "Waffles", Author: "Bob", Ingredients: []string{"1 Cup(s) Flour", "", "2 Egg"}},
	}
}

func TestAggregate_EndToEnd(t *testing.T) {
	got, err := Aggregate([]Selection{{"Pancakes", 2}, {"Waffles", 1}}, breakfastRecipes())
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	want := GroceryList{
		{Name: "Egg", Quantity: "4", Unit: ""},
		{Name: "Flour", Quantity: "5", Unit: "Cup(s)"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("grocery list mismatch (-want +got):\n%s", diff)
	}

	pad := strings.Repeat(" ", 7)
	wantText := "4" + pad + " Egg\n" + "5" + pad + "Cup(s) Flour\n"
	if text := got.Render(); text != wantText {
		t.Fatalf("Render() = %q, want %q", text, wantText)
	}
}

func TestAggregate_EmptySelection(t *testing.T) {
	for _, sels := range [][]Selection{nil, {}, {{"Pancakes", 0}, {"Waffles", 0}}} {
		got, err := Aggregate(sels, breakfastRecipes())
		if !errors.Is(err, ErrEmptySelection) {
			t.Fatalf("Aggregate(%v) err = %v, want ErrEmptySelection", sels, err)
		}
		if got != nil {
			t.Fatalf("Aggregate(%v) = %v, want no list", sels, got)
		}
	}
}

func TestAggregate_ThirdsAreExact(t *testing.T) {
	recipes := []Recipe{
		{Title: "A", Ingredients: []string{"1/3 Cup(s) Sugar"}},
		{Title: "B", Ingredients: []string{"1/3 Cup(s) Sugar"}},
		{Title: "C", Ingredients: []string{"1/3 Cup(s) Sugar"}},
	}
	got, err := Aggregate([]Selection{{"A", 1}, {"B", 1}, {"C", 1}}, recipes)
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	want := GroceryList{{Name: "Sugar", Quantity: "1", Unit: "Cup(s)"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
}

func TestAggregate_MixedNumbers(t *testing.T) {
	recipes := []Recipe{
		{Title: "Bread", Ingredients: []string{"1 1/2 Cup(s) Flour", "1/4 Tsp(s) Salt"}},
		{Title: "Rolls", Ingredients: []string{"1/4 Cup(s) Flour", "1/8 Tsp(s) Salt"}},
	}
	got, err := Aggregate([]Selection{{"Bread", 1}, {"Rolls", 1}}, recipes)
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	want := GroceryList{
		{Name: "Flour", Quantity: "1 3/4", Unit: "Cup(s)"},
		{Name: "Salt", Quantity: "3/8", Unit: "Tsp(s)"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
}

func TestAggregate_SuppressesNonPositiveTotals(t *testing.T) {
	recipes := []Recipe{
		{Title: "Plus", Ingredients: []string{"1 Cup(s) Milk", "abc Cup(s) Rice", "2 Egg"}},
		{Title: "Minus", Ingredients: []string{"-1 Cup(s) Milk", "-5 g Butter"}},
		{Title: "Skipped", Ingredients: []string{"9 Kg Potato"}},
	}
	got, err := Aggregate([]Selection{{"Plus", 1}, {"Minus", 1}, {"Skipped", 0}}, recipes)
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	want := GroceryList{{Name: "Egg", Quantity: "2", Unit: ""}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
}

func TestAggregate_Grouping(t *testing.T) {
	recipes := []Recipe{
		{Title: "One", Ingredients: []string{"2 Cup(s) Flour", "100 g Sugar"}},
		{Title: "Two", Ingredients: []string{"1 Cup(s)  flour ", "1 Cup(s) Sugar"}},
	}
	got, err := Aggregate([]Selection{{"One", 1}, {"Two", 1}}, recipes)
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	want := GroceryList{
		{Name: "Flour", Quantity: "3", Unit: "Cup(s)"},
		{Name: "Sugar", Quantity: "100", Unit: "g"},
		{Name: "Sugar", Quantity: "1", Unit: "Cup(s)"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
}

func TestAggregate_UnknownTitleSkipped(t *testing.T) {
	got, err := Aggregate([]Selection{{"Ghost Soup", 3}, {"Pancakes", 1}}, breakfastRecipes())
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	want := GroceryList{
		{Name: "Egg", Quantity: "1", Unit: ""},
		{Name: "Flour", Quantity: "2", Unit: "Cup(s)"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}

	// Only unknown titles: a selection was made, so the list is just empty.
	got, err = Aggregate([]Selection{{"Ghost Soup", 1}}, breakfastRecipes())
	if err != nil || len(got) != 0 {
		t.Fatalf("got %v, %v; want empty list and no error", got, err)
	}
}

func TestAggregate_SortedAndDeterministic(t *testing.T) {
	recipes := []Recipe{
		{Title: "Salad", Ingredients: []string{"2 cherry", "1 Banana", "3 apple", "1 Cup(s) zucchini"}},
	}
	sels := []Selection{{"Salad", 1}}
	first, err := Aggregate(sels, recipes)
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	var names []string
	for _, l := range first {
		names = append(names, l.Name)
	}
	if diff := cmp.Diff([]string{"Apple", "Banana", "Cherry", "Zucchini"}, names); diff != "" {
		t.Fatalf("order mismatch (-want +got):\n%s", diff)
	}
	for i := 0; i < 5; i++ {
		again, err := Aggregate(sels, recipes)
		if err != nil {
			t.Fatalf("Aggregate: %v", err)
		}
		if diff := cmp.Diff(first, again); diff != "" {
			t.Fatalf("run %d differs (-first +again):\n%s", i, diff)
		}
	}
}

func TestAggregate_DoesNotMutateInput(t *testing.T) {
	recipes := breakfastRecipes()
	if _, err := Aggregate([]Selection{{"Pancakes", 4}}, recipes); err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	if diff := cmp.Diff(breakfastRecipes(), recipes); diff != "" {
		t.Fatalf("input recipes changed:\n%s", diff)
	}
}

func TestOutputLine_ColumnAlignment(t *testing.T) {
	cases := []struct {
		line OutputLine
		want string
	}{
		{OutputLine{"Egg", "4", ""}, "4" + strings.Repeat(" ", 8) + "Egg"},
		{OutputLine{"Flour", "1 1/2", "Cup(s)"}, "1 1/2   Cup(s) Flour"},
		{OutputLine{"Salt", "12345678", "g"}, "12345678g Salt"},
		{OutputLine{"Rice", "123456 1/2", "Kg"}, "123456 1/2Kg Rice"},
	}
	for _, tc := range cases {
		if got := tc.line.String(); got != tc.want {
			t.Fatalf("String() = %q, want %q", got, tc.want)
		}
	}
	// Short quantities always start the unit in the same column.
	for _, l := range []OutputLine{{"A", "1", "g"}, {"B", "1/2", "g"}, {"C", "10 1/2", "g"}} {
		if s := l.String(); s[QuantityColumnWidth:] != "g "+l.Name {
			t.Fatalf("unit not at column %d in %q", QuantityColumnWidth, s)
		}
	}
}

func TestCapitalize(t *testing.T) {
	cases := map[string]string{
		"":            "",
		"flour":       "Flour",
		"brown sugar": "Brown sugar",
		"élan":        "Élan",
		"1% milk":     "1% milk",
	}
	for in, want := range cases {
		if got := Capitalize(in); got != want {
			t.Fatalf("Capitalize(%q) = %q, want %q", in, got, want)
		}
	}
}
