package services

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"recipehub/internal/core"
)

var ErrInvalidSelection = errors.New("invalid selection")

// ParseSelection reads "Title=N" into a selection. A bare title asks for one
// batch. The split is on the last '=', so titles may contain '=' as long as
// a count follows.
func ParseSelection(s string) (core.Selection, error) {
	s = strings.TrimSpace(s)
	title, count := s, ""
	if i := strings.LastIndexByte(s, '='); i >= 0 {
		title, count = strings.TrimSpace(s[:i]), strings.TrimSpace(s[i+1:])
	}
	if title == "" {
		return core.Selection{}, fmt.Errorf("%w: %q has no title", ErrInvalidSelection, s)
	}
	if count == "" {
		return core.Selection{Title: title, Multiplier: 1}, nil
	}
	n, err := strconv.Atoi(count)
	if err != nil || n < 0 {
		return core.Selection{}, fmt.Errorf("%w: %q needs a non-negative batch count", ErrInvalidSelection, s)
	}
	return core.Selection{Title: title, Multiplier: n}, nil
}

// ParseSelections parses every entry, stopping at the first bad one.
func ParseSelections(values []string) ([]core.Selection, error) {
	out := make([]core.Selection, 0, len(values))
	for _, v := range values {
		sel, err := ParseSelection(v)
		if err != nil {
			return nil, err
		}
		out = append(out, sel)
	}
	return out, nil
}
