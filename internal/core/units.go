package core

import (
	"slices"
	"strings"
)

// PluralMarker is the optional suffix a unit may carry, as in "Cup(s)".
const PluralMarker = "(s)"

// UnitEach is the implicit unit of countable ingredients. It renders blank.
const UnitEach = "Each"

// MeasurementUnits is the closed unit vocabulary, in form display order.
var MeasurementUnits = []string{
	"Cup(s)", "Tsp(s)", "Tbsp(s)", "Oz", "Lb(s)", "g", "Kg",
	"mL", "L", UnitEach, "Pinch", "Dash",
}

// IsMeasurementUnit reports whether u names a vocabulary unit, ignoring case
// and the plural marker.
func IsMeasurementUnit(u string) bool {
	base := unitBase(strings.TrimSpace(u))
	if base == "" {
		return false
	}
	for _, m := range MeasurementUnits {
		if strings.EqualFold(unitBase(m), base) {
			return true
		}
	}
	return false
}

// DisplayUnit returns the unit as shown in a grocery list.
func DisplayUnit(unit string) string {
	if unit == UnitEach {
		return ""
	}
	return unit
}

func unitBase(u string) string {
	return strings.Replace(u, PluralMarker, "", 1)
}

// unitSearchOrder is the vocabulary sorted longest first, so "Tbsp(s)" is
// tried before "Tsp(s)". Ties keep vocabulary order.
var unitSearchOrder = func() []string {
	units := make([]string, 0, len(MeasurementUnits))
	for _, u := range MeasurementUnits {
		if strings.TrimSpace(u) != "" {
			units = append(units, u)
		}
	}
	slices.SortStableFunc(units, func(a, b string) int {
		return len(b) - len(a)
	})
	return units
}()
