package google

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"recipehub/internal/core"
	ports "recipehub/internal/sheets"

	"golang.org/x/oauth2"
	goauth "golang.org/x/oauth2/google"
	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

// Client stores recipes in one sheet of a spreadsheet, one recipe per row,
// with a header in row 1.
type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	// Empty means the first sheet of the spreadsheet.
	sheetName     string
	sortOnRefresh bool

	mu        sync.Mutex
	sheet     *gsheet.SheetProperties
	resolving sync.Mutex
}

// Ensure interface conformance
var (
	_ ports.RecipeWriter  = (*Client)(nil)
	_ ports.RecipeLister  = (*Client)(nil)
	_ ports.RecipeDeleter = (*Client)(nil)
)

// Options configures a Client built around an existing Sheets service.
type Options struct {
	SpreadsheetID string
	SheetName     string
	SortOnRefresh bool
}

// New wraps svc. It performs no network calls.
func New(svc *gsheet.Service, opts Options) (*Client, error) {
	if strings.TrimSpace(opts.SpreadsheetID) == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}
	return &Client{
		svc:           svc,
		spreadsheetID: strings.TrimSpace(opts.SpreadsheetID),
		sheetName:     strings.TrimSpace(opts.SheetName),
		sortOnRefresh: opts.SortOnRefresh,
	}, nil
}

// NewFromEnv creates a Sheets client using environment variables.
// Required: GOOGLE_SPREADSHEET_ID
// Auth: GOOGLE_SERVICE_ACCOUNT_JSON / GOOGLE_SERVICE_ACCOUNT_FILE /
// GOOGLE_APPLICATION_CREDENTIALS, or an OAuth client (GOOGLE_OAUTH_CLIENT_JSON
// or GOOGLE_OAUTH_CLIENT_FILE) with a token (GOOGLE_OAUTH_TOKEN_JSON or
// GOOGLE_OAUTH_TOKEN_FILE) as produced by cmd/oauth-init.
// Optional: GOOGLE_SHEET_NAME (default: first sheet), SORT_ON_REFRESH
// (default true).
func NewFromEnv(ctx context.Context) (*Client, error) {
	spreadsheetID := strings.TrimSpace(os.Getenv("GOOGLE_SPREADSHEET_ID"))
	if spreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}

	svc, err := newSheetsService(ctx)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	sortOnRefresh := true
	switch strings.ToLower(strings.TrimSpace(os.Getenv("SORT_ON_REFRESH"))) {
	case "0", "false", "no", "off":
		sortOnRefresh = false
	}

	return New(svc, Options{
		SpreadsheetID: spreadsheetID,
		SheetName:     os.Getenv("GOOGLE_SHEET_NAME"),
		SortOnRefresh: sortOnRefresh,
	})
}

// newSheetsService picks OAuth user credentials when an OAuth client is
// configured and falls back to a service account otherwise.
func newSheetsService(ctx context.Context) (*gsheet.Service, error) {
	clientJSON, err := readSecret("GOOGLE_OAUTH_CLIENT_JSON", "GOOGLE_OAUTH_CLIENT_FILE")
	if err != nil {
		return nil, err
	}
	if len(clientJSON) > 0 {
		return newOAuthService(ctx, clientJSON)
	}

	credentialsJSON, err := readSecret("GOOGLE_SERVICE_ACCOUNT_JSON", "GOOGLE_SERVICE_ACCOUNT_FILE")
	if err != nil {
		return nil, err
	}
	if len(credentialsJSON) == 0 {
		if path := strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS")); path != "" {
			slog.InfoContext(ctx, "Reading credentials from GOOGLE_APPLICATION_CREDENTIALS", "path", path)
			if credentialsJSON, err = os.ReadFile(path); err != nil {
				return nil, fmt.Errorf("read service account file: %w", err)
			}
		}
	}
	if len(credentialsJSON) == 0 {
		return nil, errors.New("missing credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, GOOGLE_APPLICATION_CREDENTIALS or an OAuth client and token)")
	}

	slog.InfoContext(ctx, "Creating Google Sheets service with Service Account",
		"credentials_size", len(credentialsJSON),
		"scope", gsheet.SpreadsheetsScope)
	svc, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return svc, nil
}

func newOAuthService(ctx context.Context, clientJSON []byte) (*gsheet.Service, error) {
	cfg, err := goauth.ConfigFromJSON(clientJSON, gsheet.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("oauth config: %w", err)
	}
	tokenJSON, err := readSecret("GOOGLE_OAUTH_TOKEN_JSON", "GOOGLE_OAUTH_TOKEN_FILE")
	if err != nil {
		return nil, err
	}
	if len(tokenJSON) == 0 {
		return nil, errors.New("missing OAuth token (run oauth-init, then set GOOGLE_OAUTH_TOKEN_JSON or GOOGLE_OAUTH_TOKEN_FILE)")
	}
	var tok oauth2.Token
	if err := json.Unmarshal(tokenJSON, &tok); err != nil {
		return nil, fmt.Errorf("oauth token: %w", err)
	}

	// Token refreshes go through the pooled transport as well.
	ctx = context.WithValue(ctx, oauth2.HTTPClient, newHTTPClientWithPooling())
	slog.InfoContext(ctx, "Creating Google Sheets service with OAuth user credentials",
		"scope", gsheet.SpreadsheetsScope)
	svc, err := gsheet.NewService(ctx, goption.WithTokenSource(cfg.TokenSource(ctx, &tok)))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return svc, nil
}

// readSecret returns the inline value of jsonKey or the content of the file
// named by fileKey. Both unset yields nil.
func readSecret(jsonKey, fileKey string) ([]byte, error) {
	if v := strings.TrimSpace(os.Getenv(jsonKey)); v != "" {
		return []byte(v), nil
	}
	path := strings.TrimSpace(os.Getenv(fileKey))
	if path == "" {
		return nil, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", fileKey, err)
	}
	return b, nil
}

// newHTTPClientWithPooling creates an HTTP client for the Sheets API with
// connection pooling and bounded timeouts.
func newHTTPClientWithPooling() *http.Client {
	dialer := &net.Dialer{
		Timeout:   30 * time.Second,
		KeepAlive: 30 * time.Second,
	}
	transport := &http.Transport{
		DialContext:           dialer.DialContext,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   10,
		MaxConnsPerHost:       50,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 30 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		ForceAttemptHTTP2:     true,
	}
	return &http.Client{Transport: transport, Timeout: 60 * time.Second}
}

// sheetProperties resolves and memoizes the target sheet's id and title.
func (c *Client) sheetProperties(ctx context.Context) (*gsheet.SheetProperties, error) {
	c.mu.Lock()
	p := c.sheet
	c.mu.Unlock()
	if p != nil {
		return p, nil
	}

	c.resolving.Lock()
	defer c.resolving.Unlock()
	c.mu.Lock()
	p = c.sheet
	c.mu.Unlock()
	if p != nil {
		return p, nil
	}

	ss, err := c.svc.Spreadsheets.Get(c.spreadsheetID).
		Fields("sheets.properties(sheetId,title)").Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("get spreadsheet %s: %w", c.spreadsheetID, err)
	}
	p, err = pickSheet(ss.Sheets, c.sheetName)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	c.sheet = p
	c.mu.Unlock()
	return p, nil
}

func pickSheet(sheets []*gsheet.Sheet, name string) (*gsheet.SheetProperties, error) {
	for _, s := range sheets {
		if s == nil || s.Properties == nil {
			continue
		}
		if name == "" || s.Properties.Title == name {
			return s.Properties, nil
		}
	}
	if name == "" {
		return nil, errors.New("spreadsheet has no sheets")
	}
	return nil, fmt.Errorf("sheet %q not found", name)
}

// ListRecipes optionally sorts the data rows by title, then reads every row.
func (c *Client) ListRecipes(ctx context.Context) ([]core.Recipe, error) {
	if c.svc == nil {
		return nil, errors.New("sheets service not initialized")
	}
	props, err := c.sheetProperties(ctx)
	if err != nil {
		return nil, err
	}
	if c.sortOnRefresh {
		if err := c.sortByTitle(ctx, props); err != nil {
			// A failed sort still leaves the rows readable.
			slog.WarnContext(ctx, "Sort by title failed, reading unsorted rows",
				"sheet", props.Title, "error", err)
		}
	}
	values, err := c.readRows(ctx, props, "A:"+lastColumn())
	if err != nil {
		return nil, err
	}
	return rowsToRecipes(values), nil
}

func (c *Client) sortByTitle(ctx context.Context, props *gsheet.SheetProperties) error {
	req := &gsheet.BatchUpdateSpreadsheetRequest{Requests: []*gsheet.Request{{
		SortRange: &gsheet.SortRangeRequest{
			Range: &gsheet.GridRange{
				SheetId:          props.SheetId,
				StartRowIndex:    1,
				StartColumnIndex: 0,
				EndColumnIndex:   core.TotalColumns,
			},
			SortSpecs: []*gsheet.SortSpec{{DimensionIndex: 0, SortOrder: "ASCENDING"}},
		},
	}}}
	if _, err := c.svc.Spreadsheets.BatchUpdate(c.spreadsheetID, req).Context(ctx).Do(); err != nil {
		return fmt.Errorf("sort %s: %w", props.Title, err)
	}
	return nil
}

func (c *Client) readRows(ctx context.Context, props *gsheet.SheetProperties, cells string) ([][]interface{}, error) {
	rng := a1Range(props.Title, cells)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", rng, err)
	}
	return resp.Values, nil
}

// InsertRecipe inserts a blank row right below the header and writes the
// recipe into it verbatim.
func (c *Client) InsertRecipe(ctx context.Context, r core.Recipe) (string, error) {
	if err := r.Validate(); err != nil {
		return "", fmt.Errorf("validation failed: %w", err)
	}
	if c.svc == nil {
		return "", errors.New("sheets service not initialized")
	}
	props, err := c.sheetProperties(ctx)
	if err != nil {
		return "", err
	}

	titles, err := c.readRows(ctx, props, "A:A")
	if err != nil {
		return "", err
	}
	if findTitleRow(titles, r.Title) >= 0 {
		return "", fmt.Errorf("insert %q: %w", r.Title, core.ErrDuplicateTitle)
	}

	insert := &gsheet.BatchUpdateSpreadsheetRequest{Requests: []*gsheet.Request{{
		InsertDimension: &gsheet.InsertDimensionRequest{
			Range: &gsheet.DimensionRange{
				SheetId:    props.SheetId,
				Dimension:  "ROWS",
				StartIndex: 1,
				EndIndex:   2,
			},
		},
	}}}
	if _, err := c.svc.Spreadsheets.BatchUpdate(c.spreadsheetID, insert).Context(ctx).Do(); err != nil {
		return "", fmt.Errorf("insert row in %s: %w", props.Title, err)
	}

	rng := a1Range(props.Title, "A2:"+lastColumn()+"2")
	vr := &gsheet.ValueRange{Values: [][]interface{}{toCells(r.Row())}}
	if _, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, rng, vr).
		ValueInputOption("RAW").Context(ctx).Do(); err != nil {
		return "", fmt.Errorf("write %s: %w", rng, err)
	}
	return rng, nil
}

// DeleteRecipe removes the first data row whose title matches exactly.
func (c *Client) DeleteRecipe(ctx context.Context, title string) error {
	if c.svc == nil {
		return errors.New("sheets service not initialized")
	}
	props, err := c.sheetProperties(ctx)
	if err != nil {
		return err
	}
	titles, err := c.readRows(ctx, props, "A:A")
	if err != nil {
		return err
	}
	idx := findTitleRow(titles, title)
	if idx < 0 {
		return fmt.Errorf("delete %q: %w", title, core.ErrRecipeNotFound)
	}

	req := &gsheet.BatchUpdateSpreadsheetRequest{Requests: []*gsheet.Request{{
		DeleteDimension: &gsheet.DeleteDimensionRequest{
			Range: &gsheet.DimensionRange{
				SheetId:         props.SheetId,
				Dimension:       "ROWS",
				StartIndex:      int64(idx),
				EndIndex:        int64(idx) + 1,
				ForceSendFields: []string{"StartIndex"},
			},
		},
	}}}
	if _, err := c.svc.Spreadsheets.BatchUpdate(c.spreadsheetID, req).Context(ctx).Do(); err != nil {
		return fmt.Errorf("delete row %d in %s: %w", idx+1, props.Title, err)
	}
	return nil
}
