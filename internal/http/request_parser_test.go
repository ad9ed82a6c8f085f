package http

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"recipehub/internal/core"
	"recipehub/internal/services"
)

func newParser(t *testing.T, contentType, body string) *RequestBodyParser {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	return NewRequestBodyParser(req)
}

func TestRequestBodyParser_Scalars(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		body        string
		wantJSON    bool
	}{
		{"json", "application/json", `{"title":"  Soup\u0007 ","author":"Ann"}`, true},
		{"json sniffed", "", `{"title":"Soup","author":"Ann"}`, true},
		{"form", "application/x-www-form-urlencoded", "title=Soup&author=Ann", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newParser(t, tt.contentType, tt.body)
			if err := p.Parse(); err != nil {
				t.Fatalf("Parse: %v", err)
			}
			if p.IsJSON() != tt.wantJSON {
				t.Fatalf("IsJSON = %v", p.IsJSON())
			}
			if p.Get("title") != "Soup" || p.Get("author") != "Ann" || p.Get("missing") != "" {
				t.Fatalf("got title=%q author=%q", p.Get("title"), p.Get("author"))
			}
		})
	}
}

func TestRequestBodyParser_Errors(t *testing.T) {
	if err := newParser(t, "application/json", `{"title":`).Parse(); !errors.Is(err, errBadBody) {
		t.Fatalf("truncated JSON: %v", err)
	}
	big := "title=" + strings.Repeat("a", maxBodyBytes)
	if err := newParser(t, "application/x-www-form-urlencoded", big).Parse(); !errors.Is(err, errBodyTooLarge) {
		t.Fatalf("oversized body: %v", err)
	}
	p := newParser(t, "", "")
	if err := p.Parse(); err != nil || p.Get("title") != "" {
		t.Fatalf("empty body: err=%v", err)
	}
}

func TestRequestBodyParser_IngredientRows(t *testing.T) {
	want := []core.IngredientInput{
		{Quantity: "2", Unit: "Cup(s)", Name: "Flour"},
		{Quantity: "", Unit: "", Name: "Salt"},
	}

	p := newParser(t, "application/json",
		`{"ingredients":[{"quantity":2,"unit":"Cup(s)","name":"Flour"},{"name":"Salt"}]}`)
	if err := p.Parse(); err != nil {
		t.Fatal(err)
	}
	got, err := p.IngredientRows()
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("json rows (-want +got):\n%s", diff)
	}

	p = newParser(t, "application/x-www-form-urlencoded", "quantity=2&unit=Cup(s)&name=Flour&name=Salt")
	if err := p.Parse(); err != nil {
		t.Fatal(err)
	}
	got, _ = p.IngredientRows()
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("form rows (-want +got):\n%s", diff)
	}

	p = newParser(t, "application/json", `{"ingredients":"2 eggs"}`)
	_ = p.Parse()
	if _, err := p.IngredientRows(); !errors.Is(err, errBadBody) {
		t.Fatalf("non-array ingredients: %v", err)
	}
}

func TestRequestBodyParser_Selections(t *testing.T) {
	p := newParser(t, "application/json",
		`{"selections":[{"title":"Pancakes","multiplier":2},{"title":"Waffles"},"Crepes=0"]}`)
	if err := p.Parse(); err != nil {
		t.Fatal(err)
	}
	got, err := p.Selections()
	if err != nil {
		t.Fatal(err)
	}
	want := []core.Selection{
		{Title: "Pancakes", Multiplier: 2},
		{Title: "Waffles", Multiplier: 1},
		{Title: "Crepes", Multiplier: 0},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("selections (-want +got):\n%s", diff)
	}

	for _, body := range []string{
		`{"selections":[{"title":"Pancakes","multiplier":-1}]}`,
		`{"selections":[{"multiplier":1}]}`,
		`{"selections":[7]}`,
	} {
		p := newParser(t, "application/json", body)
		_ = p.Parse()
		if _, err := p.Selections(); !errors.Is(err, services.ErrInvalidSelection) {
			t.Fatalf("%s: expected ErrInvalidSelection, got %v", body, err)
		}
	}
}
