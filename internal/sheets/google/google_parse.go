package google

import (
	"fmt"
	"strings"

	"recipehub/internal/core"
)

// rowsToRecipes converts a values matrix (as returned by the Sheets API)
// into recipes. A header in the first row and rows without a title are
// skipped. Cells past the layout width are ignored.
func rowsToRecipes(values [][]interface{}) []core.Recipe {
	out := make([]core.Recipe, 0, len(values))
	for i, row := range values {
		cols := toStrings(row)
		if i == 0 && core.IsHeaderRow(cols) {
			continue
		}
		r, ok := core.RecipeFromRow(cols)
		if !ok {
			continue
		}
		out = append(out, r)
	}
	return out
}

// findTitleRow returns the zero-based row index of the first data row whose
// title cell equals title, or -1.
func findTitleRow(values [][]interface{}, title string) int {
	title = strings.TrimSpace(title)
	for i, row := range values {
		if len(row) == 0 {
			continue
		}
		cols := toStrings(row)
		if i == 0 && core.IsHeaderRow(cols) {
			continue
		}
		if strings.TrimSpace(cols[0]) == title {
			return i
		}
	}
	return -1
}

// toStrings renders every cell as text; nil cells stay empty.
func toStrings(in []interface{}) []string {
	out := make([]string, len(in))
	for i, v := range in {
		if v == nil {
			continue
		}
		out[i] = fmt.Sprint(v)
	}
	return out
}

func toCells(row []string) []interface{} {
	out := make([]interface{}, len(row))
	for i, v := range row {
		out[i] = v
	}
	return out
}

// columnLetter converts a 1-based column number to its A1 letters.
func columnLetter(n int) string {
	var b []byte
	for n > 0 {
		n--
		b = append([]byte{byte('A' + n%26)}, b...)
		n /= 26
	}
	return string(b)
}

func lastColumn() string {
	return columnLetter(core.TotalColumns)
}

// a1Range qualifies cells with a quoted sheet title.
func a1Range(sheet, cells string) string {
	if sheet == "" {
		return cells
	}
	return "'" + strings.ReplaceAll(sheet, "'", "''") + "'!" + cells
}
