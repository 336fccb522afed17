package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"kassza/internal/core"
	ports "kassza/internal/sheets"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

// Client mirrors ledger rows into a Google spreadsheet. One row per
// transaction, keyed by the ID in column A:
//
//	A=ID, B=Date, C=Description, D=Amount, E=Currency, F=Category
type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
}

// Ensure interface conformance
var _ ports.LedgerWriter = (*Client)(nil)

// New creates a Sheets client using service account credentials from the
// environment.
// Required: GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or
// GOOGLE_APPLICATION_CREDENTIALS for auth.
func New(ctx context.Context, spreadsheetID, sheetName string) (*Client, error) {
	if strings.TrimSpace(spreadsheetID) == "" {
		return nil, errors.New("missing spreadsheet ID")
	}
	if strings.TrimSpace(sheetName) == "" {
		sheetName = "Ledger"
	}

	svc, err := newSheetsService(ctx)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	return &Client{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		sheetName:     sheetName,
	}, nil
}

func newSheetsService(ctx context.Context) (*gsheet.Service, error) {
	serviceAccountJSON := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"))
	serviceAccountFile := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))

	if serviceAccountJSON == "" && serviceAccountFile == "" {
		serviceAccountFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentialsJSON []byte
	var err error

	switch {
	case serviceAccountJSON != "":
		credentialsJSON = []byte(serviceAccountJSON)
	case serviceAccountFile != "":
		credentialsJSON, err = os.ReadFile(serviceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	return service, nil
}

// Upsert writes the transaction to its row, appending a new row when the ID
// is not in the sheet yet.
func (c *Client) Upsert(ctx context.Context, tr core.Transaction) (string, error) {
	if c.svc == nil {
		return "", errors.New("sheets service not initialized")
	}

	row, err := c.findRow(ctx, tr.ID)
	if err != nil {
		return "", err
	}
	if row == 0 {
		next, err := c.nextRow(ctx)
		if err != nil {
			return "", err
		}
		row = next
	}

	category := ""
	if tr.CategoryName != nil {
		category = *tr.CategoryName
	}

	rng := fmt.Sprintf("%s!A%d:F%d", c.sheetName, row, row)
	vr := &gsheet.ValueRange{Values: [][]any{{
		tr.ID, tr.Date, tr.Description, tr.Amount, string(tr.Currency), category,
	}}}

	_, err = c.svc.Spreadsheets.Values.Update(c.spreadsheetID, rng, vr).
		ValueInputOption("USER_ENTERED").Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("update %s: %w", rng, err)
	}

	slog.InfoContext(ctx, "Mirrored transaction to sheet",
		"id", tr.ID, "range", rng)

	return rng, nil
}

// Remove clears the row holding the transaction. A missing row is fine, the
// delete already happened or the row was never mirrored.
func (c *Client) Remove(ctx context.Context, id int64) error {
	if c.svc == nil {
		return errors.New("sheets service not initialized")
	}

	row, err := c.findRow(ctx, id)
	if err != nil {
		return err
	}
	if row == 0 {
		return nil
	}

	rng := fmt.Sprintf("%s!A%d:F%d", c.sheetName, row, row)
	_, err = c.svc.Spreadsheets.Values.Clear(c.spreadsheetID, rng, &gsheet.ClearValuesRequest{}).
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("clear %s: %w", rng, err)
	}

	return nil
}

// findRow returns the 1-based row holding the ID, or 0 when absent.
func (c *Client) findRow(ctx context.Context, id int64) (int, error) {
	rng := fmt.Sprintf("%s!A:A", c.sheetName)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("read %s: %w", rng, err)
	}

	want := strconv.FormatInt(id, 10)
	for i, row := range resp.Values {
		if len(row) == 0 {
			continue
		}
		if cell, ok := row[0].(string); ok && strings.TrimSpace(cell) == want {
			return i + 1, nil
		}
	}
	return 0, nil
}

func (c *Client) nextRow(ctx context.Context) (int, error) {
	rng := fmt.Sprintf("%s!A:A", c.sheetName)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("read %s: %w", rng, err)
	}
	return len(resp.Values) + 1, nil
}
