package core

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// ParsedIngredient is an ingredient line split into its parts.
type ParsedIngredient struct {
	Quantity string
	Unit     string
	Name     string
}

// unitMatcher finds one vocabulary unit at word boundaries, with or without
// the plural marker.
type unitMatcher struct {
	unit string
	base string
}

var unitMatchers = func() []unitMatcher {
	ms := make([]unitMatcher, 0, len(unitSearchOrder))
	for _, u := range unitSearchOrder {
		ms = append(ms, unitMatcher{unit: u, base: unitBase(u)})
	}
	return ms
}()

// find returns the byte span of the first occurrence of the unit in s.
func (m unitMatcher) find(s string) (start, end int, ok bool) {
	n := len(m.base)
	for i := 0; i+n <= len(s); i++ {
		if !strings.EqualFold(s[i:i+n], m.base) || !boundaryBefore(s, i) {
			continue
		}
		j := i + n
		if j+len(PluralMarker) <= len(s) &&
			strings.EqualFold(s[j:j+len(PluralMarker)], PluralMarker) &&
			boundaryAfter(s, j+len(PluralMarker)) {
			return i, j + len(PluralMarker), true
		}
		if boundaryAfter(s, j) {
			return i, j, true
		}
	}
	return 0, 0, false
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

func boundaryBefore(s string, i int) bool {
	if i == 0 {
		return true
	}
	r, _ := utf8.DecodeLastRuneInString(s[:i])
	return !isWordRune(r)
}

func boundaryAfter(s string, j int) bool {
	if j >= len(s) {
		return true
	}
	r, _ := utf8.DecodeRuneInString(s[j:])
	return !isWordRune(r)
}

// ParseIngredient splits a free-form line such as "1 1/2 Cup(s) Flour" into
// quantity, unit and name. It never fails: lines without a recognized unit
// fall back to unit Each, with quantity "1" unless the first word is a bare
// number.
//
// A unit word inside the name (for example "Oz" in a product name) is taken
// as the unit when no higher-priority unit appears earlier in the search
// order.
func ParseIngredient(line string) ParsedIngredient {
	line = strings.TrimSpace(line)

	for _, m := range unitMatchers {
		start, end, ok := m.find(line)
		if !ok {
			continue
		}
		return ParsedIngredient{
			Quantity: strings.TrimSpace(line[:start]),
			Unit:     line[start:end],
			Name:     strings.TrimSpace(line[end:]),
		}
	}

	if i := strings.IndexFunc(line, unicode.IsSpace); i > 0 {
		first, rest := line[:i], strings.TrimSpace(line[i:])
		if looksNumeric(first) {
			return ParsedIngredient{Quantity: first, Unit: UnitEach, Name: rest}
		}
	}
	return ParsedIngredient{Quantity: "1", Unit: UnitEach, Name: line}
}

func looksNumeric(tok string) bool {
	if tok == "" {
		return false
	}
	for _, r := range tok {
		if (r < '0' || r > '9') && r != '.' && r != '/' && !unicode.IsSpace(r) {
			return false
		}
	}
	return true
}
