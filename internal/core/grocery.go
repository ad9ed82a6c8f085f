package core

import (
	"errors"
	"fmt"
	"math/big"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

// QuantityColumnWidth is the width the quantity is padded to in a rendered line.
const QuantityColumnWidth = 8

var ErrEmptySelection = errors.New("no recipe selected")

type (
	// Selection asks for Multiplier batches of the recipe titled Title.
	Selection struct {
		Title      string
		Multiplier int
	}

	// OutputLine is one consolidated grocery entry, ready to render.
	OutputLine struct {
		Name     string
		Quantity string
		Unit     string
	}

	// GroceryList is the ordered result of an aggregation.
	GroceryList []OutputLine
)

// String renders the line with the quantity left-aligned in a fixed column.
func (l OutputLine) String() string {
	return fmt.Sprintf("%-*s%s %s", QuantityColumnWidth, l.Quantity, l.Unit, l.Name)
}

// Render returns the list as newline-terminated lines.
func (g GroceryList) Render() string {
	var b strings.Builder
	for _, l := range g {
		b.WriteString(l.String())
		b.WriteByte('\n')
	}
	return b.String()
}

// HasSelection reports whether any selection asks for at least one batch.
func HasSelection(selections []Selection) bool {
	for _, s := range selections {
		if s.Multiplier > 0 {
			return true
		}
	}
	return false
}

type bucketKey struct {
	name string
	unit string
}

// Aggregate scales every selected recipe's ingredients by its multiplier and
// sums them per (normalized name, unit). The recipes slice is the snapshot to
// resolve titles against; titles missing from it are skipped. Totals that are
// not positive are left out and the rest are sorted by display name.
func Aggregate(selections []Selection, recipes []Recipe) (GroceryList, error) {
	if !HasSelection(selections) {
		return nil, ErrEmptySelection
	}

	totals := make(map[bucketKey]*big.Rat)
	var order []bucketKey

	for _, sel := range selections {
		if sel.Multiplier <= 0 {
			continue
		}
		recipe, ok := FindRecipe(recipes, sel.Title)
		if !ok {
			continue
		}
		mult := new(big.Rat).SetInt64(int64(sel.Multiplier))
		for _, line := range recipe.IngredientLines() {
			p := ParseIngredient(line)
			q := ParseQuantity(p.Quantity)
			q.Mul(q, mult)

			key := bucketKey{name: NormalizeName(p.Name), unit: p.Unit}
			total, seen := totals[key]
			if !seen {
				total = new(big.Rat)
				totals[key] = total
				order = append(order, key)
			}
			total.Add(total, q)
		}
	}

	out := make(GroceryList, 0, len(order))
	for _, key := range order {
		total := totals[key]
		if total.Sign() <= 0 {
			continue
		}
		out = append(out, OutputLine{
			Name:     Capitalize(key.name),
			Quantity: FormatQuantity(total),
			Unit:     DisplayUnit(key.unit),
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// NormalizeName is the grouping key of an ingredient name.
func NormalizeName(name string) string {
	return strings.TrimSpace(strings.ToLower(name))
}

// Capitalize upper-cases the first rune and leaves the rest untouched.
func Capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if size == 0 || r == utf8.RuneError {
		return s
	}
	return string(unicode.ToTitle(r)) + s[size:]
}
