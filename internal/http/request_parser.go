// Package http serves the recipe book and grocery list over HTTP.
//
// This file reads request bodies that arrive either as JSON or as
// form-encoded data and turns them into domain inputs.
package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"recipehub/internal/core"
	"recipehub/internal/services"
)

// maxBodyBytes bounds every request body the API reads.
const maxBodyBytes = 64 << 10

var (
	errBodyTooLarge = errors.New("request body too large")
	errBadBody      = errors.New("malformed request body")
)

// RequestBodyParser reads the body once and answers lookups from whichever
// encoding it turned out to be.
type RequestBodyParser struct {
	body        []byte
	contentType string
	jsonData    map[string]any
	formData    url.Values
	parsed      bool
	err         error
}

func NewRequestBodyParser(r *http.Request) *RequestBodyParser {
	p := &RequestBodyParser{contentType: r.Header.Get("Content-Type")}
	if r.Body == nil {
		return p
	}
	p.body, p.err = io.ReadAll(io.LimitReader(r.Body, maxBodyBytes+1))
	if p.err == nil && len(p.body) > maxBodyBytes {
		p.err = errBodyTooLarge
	}
	return p
}

// Parse decodes JSON when the body looks like an object and falls back to
// form encoding otherwise.
func (p *RequestBodyParser) Parse() error {
	if p.parsed {
		return p.err
	}
	p.parsed = true
	if p.err != nil {
		return p.err
	}

	body := strings.TrimSpace(string(p.body))
	if body == "" {
		p.formData = url.Values{}
		return nil
	}

	if body[0] == '{' || strings.HasPrefix(p.contentType, "application/json") {
		if err := json.Unmarshal([]byte(body), &p.jsonData); err != nil {
			p.err = fmt.Errorf("%w: %v", errBadBody, err)
			return p.err
		}
		return nil
	}

	p.formData, p.err = url.ParseQuery(body)
	if p.err != nil {
		p.err = fmt.Errorf("%w: %v", errBadBody, p.err)
	}
	return p.err
}

// Get returns a sanitized scalar value.
func (p *RequestBodyParser) Get(key string) string {
	if p.jsonData != nil {
		return sanitizeInput(stringValue(p.jsonData[key]))
	}
	if p.formData != nil {
		return sanitizeInput(p.formData.Get(key))
	}
	return ""
}

// Values returns every value under key. A JSON scalar counts as one value.
func (p *RequestBodyParser) Values(key string) []string {
	if p.jsonData != nil {
		switch v := p.jsonData[key].(type) {
		case nil:
			return nil
		case []any:
			out := make([]string, 0, len(v))
			for _, item := range v {
				out = append(out, sanitizeInput(stringValue(item)))
			}
			return out
		default:
			return []string{sanitizeInput(stringValue(v))}
		}
	}
	if p.formData == nil {
		return nil
	}
	out := make([]string, 0, len(p.formData[key]))
	for _, v := range p.formData[key] {
		out = append(out, sanitizeInput(v))
	}
	return out
}

func (p *RequestBodyParser) IsJSON() bool {
	return p.jsonData != nil
}

// IngredientRows returns the quantity/unit/name rows of a recipe form. JSON
// carries them as an "ingredients" array of objects; forms repeat the
// quantity, unit and name fields in step.
func (p *RequestBodyParser) IngredientRows() ([]core.IngredientInput, error) {
	if p.jsonData != nil {
		raw, ok := p.jsonData["ingredients"]
		if !ok || raw == nil {
			return nil, nil
		}
		items, ok := raw.([]any)
		if !ok {
			return nil, fmt.Errorf("%w: ingredients must be an array", errBadBody)
		}
		rows := make([]core.IngredientInput, 0, len(items))
		for i, item := range items {
			obj, ok := item.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("%w: ingredient %d must be an object", errBadBody, i+1)
			}
			rows = append(rows, core.IngredientInput{
				Quantity: sanitizeInput(stringValue(obj["quantity"])),
				Unit:     sanitizeInput(stringValue(obj["unit"])),
				Name:     sanitizeInput(stringValue(obj["name"])),
			})
		}
		return rows, nil
	}

	names := p.formData["name"]
	quantities := p.formData["quantity"]
	units := p.formData["unit"]
	rows := make([]core.IngredientInput, 0, len(names))
	for i, name := range names {
		rows = append(rows, core.IngredientInput{
			Quantity: sanitizeInput(at(quantities, i)),
			Unit:     sanitizeInput(at(units, i)),
			Name:     sanitizeInput(name),
		})
	}
	return rows, nil
}

// Selections returns the requested recipes and batch counts. JSON carries
// a "selections" array whose items are {"title", "multiplier"} objects or
// "Title=N" strings; forms repeat a "select" field of "Title=N".
func (p *RequestBodyParser) Selections() ([]core.Selection, error) {
	if p.jsonData == nil {
		return services.ParseSelections(p.Values("select"))
	}

	raw, ok := p.jsonData["selections"]
	if !ok || raw == nil {
		return nil, nil
	}
	items, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: selections must be an array", errBadBody)
	}
	out := make([]core.Selection, 0, len(items))
	for _, item := range items {
		switch v := item.(type) {
		case string:
			sel, err := services.ParseSelection(sanitizeInput(v))
			if err != nil {
				return nil, err
			}
			out = append(out, sel)
		case map[string]any:
			sel, err := selectionFromObject(v)
			if err != nil {
				return nil, err
			}
			out = append(out, sel)
		default:
			return nil, fmt.Errorf("%w: unsupported selection %v", services.ErrInvalidSelection, item)
		}
	}
	return out, nil
}

func selectionFromObject(obj map[string]any) (core.Selection, error) {
	title := sanitizeInput(stringValue(obj["title"]))
	if title == "" {
		return core.Selection{}, fmt.Errorf("%w: selection has no title", services.ErrInvalidSelection)
	}
	sel := core.Selection{Title: title, Multiplier: 1}
	raw, ok := obj["multiplier"]
	if !ok || raw == nil {
		return sel, nil
	}
	f, isNum := raw.(float64)
	if !isNum || f < 0 || f != math.Trunc(f) || f > math.MaxInt32 {
		return core.Selection{}, fmt.Errorf("%w: %q needs a non-negative batch count", services.ErrInvalidSelection, title)
	}
	sel.Multiplier = int(f)
	return sel, nil
}

func at(values []string, i int) string {
	if i < len(values) {
		return values[i]
	}
	return ""
}

func stringValue(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return ""
	}
}
