package google

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"

	"recipehub/internal/core"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

// fakeSheets emulates the subset of the Sheets REST API the client uses,
// backed by an in-memory grid.
type fakeSheets struct {
	mu       sync.Mutex
	sheetID  int64
	title    string
	rows     [][]string
	calls    []string
	failSort bool
	lastSort *gsheet.SortRangeRequest
	lastOpt  string
}

func (f *fakeSheets) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	path := strings.TrimPrefix(r.URL.Path, "/v4/spreadsheets/")
	switch {
	case strings.HasSuffix(path, ":batchUpdate") && r.Method == http.MethodPost:
		f.batchUpdate(w, r)
	case strings.Contains(path, "/values/") && r.Method == http.MethodGet:
		f.calls = append(f.calls, "get")
		_, rng, _ := strings.Cut(path, "/values/")
		f.writeValues(w, rng)
	case strings.Contains(path, "/values/") && r.Method == http.MethodPut:
		f.calls = append(f.calls, "update")
		f.lastOpt = r.URL.Query().Get("valueInputOption")
		var vr gsheet.ValueRange
		if err := json.NewDecoder(r.Body).Decode(&vr); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		row := make([]string, 0, len(vr.Values[0]))
		for _, v := range vr.Values[0] {
			s, _ := v.(string)
			row = append(row, s)
		}
		f.rows[1] = row
		_ = json.NewEncoder(w).Encode(map[string]any{"updatedRows": 1})
	case r.Method == http.MethodGet:
		f.calls = append(f.calls, "meta")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"sheets": []any{
				map[string]any{"properties": map[string]any{"sheetId": f.sheetID, "title": f.title}},
				map[string]any{"properties": map[string]any{"sheetId": 99, "title": "Archive"}},
			},
		})
	default:
		http.NotFound(w, r)
	}
}

func (f *fakeSheets) batchUpdate(w http.ResponseWriter, r *http.Request) {
	var req gsheet.BatchUpdateSpreadsheetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	for _, q := range req.Requests {
		switch {
		case q.SortRange != nil:
			f.calls = append(f.calls, "sort")
			if f.failSort {
				http.Error(w, `{"error":{"code":500,"message":"boom"}}`, http.StatusInternalServerError)
				return
			}
			f.lastSort = q.SortRange
			start := int(q.SortRange.Range.StartRowIndex)
			data := f.rows[start:]
			sort.SliceStable(data, func(i, j int) bool { return cell(data[i], 0) < cell(data[j], 0) })
		case q.InsertDimension != nil:
			f.calls = append(f.calls, "insert")
			at := int(q.InsertDimension.Range.StartIndex)
			f.rows = append(f.rows[:at], append([][]string{{}}, f.rows[at:]...)...)
		case q.DeleteDimension != nil:
			f.calls = append(f.calls, "delete")
			from, to := int(q.DeleteDimension.Range.StartIndex), int(q.DeleteDimension.Range.EndIndex)
			f.rows = append(f.rows[:from], f.rows[to:]...)
		}
	}
	_ = json.NewEncoder(w).Encode(map[string]any{"spreadsheetId": "sheet-1"})
}

func (f *fakeSheets) writeValues(w http.ResponseWriter, rng string) {
	firstColOnly := strings.HasSuffix(rng, "A:A")
	values := make([][]string, 0, len(f.rows))
	for _, row := range f.rows {
		if firstColOnly && len(row) > 1 {
			row = row[:1]
		}
		// The API drops trailing empty cells.
		for len(row) > 0 && row[len(row)-1] == "" {
			row = row[:len(row)-1]
		}
		values = append(values, row)
	}
	_ = json.NewEncoder(w).Encode(map[string]any{"range": rng, "values": values})
}

func cell(row []string, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}

func newTestClient(t *testing.T, f *fakeSheets, opts Options) *Client {
	t.Helper()
	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)
	svc, err := gsheet.NewService(context.Background(),
		goption.WithEndpoint(srv.URL+"/"),
		goption.WithHTTPClient(srv.Client()),
		goption.WithoutAuthentication())
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	if opts.SpreadsheetID == "" {
		opts.SpreadsheetID = "sheet-1"
	}
	c, err := New(svc, opts)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return c
}

func seededSheet() *fakeSheets {
	return &fakeSheets{
		sheetID: 7,
		title:   "Recipe Index",
		rows: [][]string{
			{"Title", "Author", "Ingredient 1"},
			{"Waffles", "Bob", "1 Cup(s) Flour", "2 Egg"},
			{},
			{"Pancakes", "Ann", "2 Cup(s) Flour", "1 Egg"},
		},
	}
}

func TestListRecipes_SortsThenReads(t *testing.T) {
	f := seededSheet()
	c := newTestClient(t, f, Options{SheetName: "Recipe Index", SortOnRefresh: true})

	got, err := c.ListRecipes(context.Background())
	if err != nil {
		t.Fatalf("ListRecipes: %v", err)
	}
	if len(got) != 2 || got[0].Title != "Pancakes" || got[1].Title != "Waffles" {
		t.Fatalf("unexpected recipes: %+v", got)
	}
	if got[0].Author != "Ann" || strings.Join(got[0].Ingredients, "|") != "2 Cup(s) Flour|1 Egg" {
		t.Fatalf("unexpected first recipe: %+v", got[0])
	}

	if f.lastSort == nil {
		t.Fatal("expected a sort request")
	}
	rng := f.lastSort.Range
	if rng.SheetId != 7 || rng.StartRowIndex != 1 || rng.EndColumnIndex != core.TotalColumns {
		t.Fatalf("sort range does not cover every data column: %+v", rng)
	}
	if want := "meta,sort,get"; strings.Join(f.calls, ",") != want {
		t.Fatalf("calls = %v, want %s", f.calls, want)
	}
}

func TestListRecipes_NoSortAndSortFailure(t *testing.T) {
	f := seededSheet()
	c := newTestClient(t, f, Options{SortOnRefresh: false})
	got, err := c.ListRecipes(context.Background())
	if err != nil {
		t.Fatalf("ListRecipes: %v", err)
	}
	if len(got) != 2 || got[0].Title != "Waffles" {
		t.Fatalf("expected sheet order without sort, got %+v", got)
	}
	for _, call := range f.calls {
		if call == "sort" {
			t.Fatalf("unexpected sort with SortOnRefresh=false: %v", f.calls)
		}
	}

	f = seededSheet()
	f.failSort = true
	c = newTestClient(t, f, Options{SortOnRefresh: true})
	got, err = c.ListRecipes(context.Background())
	if err != nil {
		t.Fatalf("a failed sort must not fail the listing: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("unexpected recipes: %+v", got)
	}
}

func TestInsertRecipe_WritesBelowHeader(t *testing.T) {
	f := seededSheet()
	c := newTestClient(t, f, Options{SheetName: "Recipe Index"})

	r := core.Recipe{Title: "Toast", Author: "Cid", Ingredients: []string{"2 Bread", "", "1 Tbsp(s) Butter"}, Instructions: "Toast it."}
	ref, err := c.InsertRecipe(context.Background(), r)
	if err != nil {
		t.Fatalf("InsertRecipe: %v", err)
	}
	if ref != "'Recipe Index'!A2:X2" {
		t.Fatalf("ref = %q", ref)
	}
	if f.lastOpt != "RAW" {
		t.Fatalf("valueInputOption = %q, want RAW", f.lastOpt)
	}
	row := f.rows[1]
	if len(row) != core.TotalColumns {
		t.Fatalf("written row has %d cells, want %d", len(row), core.TotalColumns)
	}
	if row[0] != "Toast" || row[2] != "2 Bread" || row[3] != "1 Tbsp(s) Butter" || row[core.TotalColumns-2] != "Toast it." {
		t.Fatalf("unexpected row: %q", row)
	}
	if f.rows[0][0] != "Title" || f.rows[2][0] != "Waffles" {
		t.Fatalf("existing rows not shifted down: %q", f.rows)
	}
}

func TestInsertRecipe_Rejects(t *testing.T) {
	f := seededSheet()
	c := newTestClient(t, f, Options{})

	_, err := c.InsertRecipe(context.Background(), core.Recipe{Title: "Pancakes", Author: "Zed"})
	if !errors.Is(err, core.ErrDuplicateTitle) {
		t.Fatalf("err = %v, want ErrDuplicateTitle", err)
	}
	_, err = c.InsertRecipe(context.Background(), core.Recipe{Title: "", Author: "Zed"})
	if !errors.Is(err, core.ErrEmptyTitle) {
		t.Fatalf("err = %v, want ErrEmptyTitle", err)
	}
	if len(f.rows) != 4 {
		t.Fatalf("rejected inserts changed the sheet: %q", f.rows)
	}
}

func TestDeleteRecipe(t *testing.T) {
	f := seededSheet()
	c := newTestClient(t, f, Options{})

	if err := c.DeleteRecipe(context.Background(), "Pancakes"); err != nil {
		t.Fatalf("DeleteRecipe: %v", err)
	}
	if len(f.rows) != 3 || f.rows[1][0] != "Waffles" {
		t.Fatalf("unexpected rows after delete: %q", f.rows)
	}
	if err := c.DeleteRecipe(context.Background(), "Pancakes"); !errors.Is(err, core.ErrRecipeNotFound) {
		t.Fatalf("err = %v, want ErrRecipeNotFound", err)
	}
	// The header is never a recipe.
	if err := c.DeleteRecipe(context.Background(), "Title"); !errors.Is(err, core.ErrRecipeNotFound) {
		t.Fatalf("err = %v, want ErrRecipeNotFound", err)
	}
}

func TestSheetResolution(t *testing.T) {
	f := seededSheet()
	c := newTestClient(t, f, Options{SheetName: "Missing"})
	if _, err := c.ListRecipes(context.Background()); err == nil || !strings.Contains(err.Error(), `"Missing"`) {
		t.Fatalf("expected unknown sheet error, got %v", err)
	}

	c = newTestClient(t, f, Options{})
	for i := 0; i < 3; i++ {
		if _, err := c.ListRecipes(context.Background()); err != nil {
			t.Fatalf("ListRecipes: %v", err)
		}
	}
	meta := 0
	for _, call := range f.calls {
		if call == "meta" {
			meta++
		}
	}
	// One lookup for the failing client, one for the second client.
	if meta != 2 {
		t.Fatalf("sheet metadata fetched %d times, want 2", meta)
	}
}

func TestNewFromEnv_MissingSpreadsheetID(t *testing.T) {
	t.Setenv("GOOGLE_SPREADSHEET_ID", "")

	_, err := NewFromEnv(context.Background())
	if err == nil {
		t.Fatal("expected error for missing GOOGLE_SPREADSHEET_ID")
	}
	if err.Error() != "missing GOOGLE_SPREADSHEET_ID" {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestNewFromEnv_InvalidOAuthClient(t *testing.T) {
	t.Setenv("GOOGLE_SPREADSHEET_ID", "test-id")
	t.Setenv("GOOGLE_OAUTH_CLIENT_JSON", `invalid-json`)
	t.Setenv("GOOGLE_OAUTH_TOKEN_JSON", `{"access_token":"test"}`)

	_, err := NewFromEnv(context.Background())
	if err == nil {
		t.Fatal("expected error with invalid JSON")
	}
	if !strings.Contains(err.Error(), "oauth config") {
		t.Errorf("expected oauth config error, got: %v", err)
	}
}

func TestNewFromEnv_MissingCredentials(t *testing.T) {
	t.Setenv("GOOGLE_SPREADSHEET_ID", "test-id")
	for _, k := range []string{
		"GOOGLE_OAUTH_CLIENT_JSON", "GOOGLE_OAUTH_CLIENT_FILE",
		"GOOGLE_SERVICE_ACCOUNT_JSON", "GOOGLE_SERVICE_ACCOUNT_FILE",
		"GOOGLE_APPLICATION_CREDENTIALS",
	} {
		t.Setenv(k, "")
	}
	_, err := NewFromEnv(context.Background())
	if err == nil || !strings.Contains(err.Error(), "missing credentials") {
		t.Fatalf("expected missing credentials error, got %v", err)
	}
}

func TestClientWithoutService(t *testing.T) {
	c := &Client{spreadsheetID: "test"}
	if _, err := c.ListRecipes(context.Background()); err == nil {
		t.Fatal("expected error from uninitialized service")
	}
	if err := c.DeleteRecipe(context.Background(), "x"); err == nil {
		t.Fatal("expected error from uninitialized service")
	}
}
