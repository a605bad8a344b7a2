// Package export writes dashboard snapshots to a Google Sheets spreadsheet
// for sharing outside the app.
package export

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"github.com/joshnel2/dnzdashboard/internal/core"
)

// Options configure the spreadsheet target and OAuth material. Client and
// token can each be given inline or as a file path; inline wins.
type Options struct {
	SpreadsheetID string
	SheetName     string
	ClientFile    string
	ClientJSON    string
	TokenFile     string
	TokenJSON     string
}

type Exporter struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
}

func NewExporter(ctx context.Context, opts Options) (*Exporter, error) {
	if opts.SpreadsheetID == "" {
		return nil, errors.New("missing spreadsheet ID")
	}
	sheetName := opts.SheetName
	if sheetName == "" {
		sheetName = "Dashboard"
	}

	clientJSON, err := readMaterial(opts.ClientJSON, opts.ClientFile)
	if err != nil {
		return nil, fmt.Errorf("load OAuth client: %w", err)
	}
	cfg, err := google.ConfigFromJSON(clientJSON, gsheet.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("parse OAuth client: %w", err)
	}

	tokenJSON, err := readMaterial(opts.TokenJSON, opts.TokenFile)
	if err != nil {
		return nil, fmt.Errorf("load OAuth token: %w", err)
	}
	var tok oauth2.Token
	if err := json.Unmarshal(tokenJSON, &tok); err != nil {
		return nil, fmt.Errorf("parse OAuth token: %w", err)
	}

	svc, err := gsheet.NewService(ctx, goption.WithHTTPClient(cfg.Client(ctx, &tok)))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	return &Exporter{
		svc:           svc,
		spreadsheetID: opts.SpreadsheetID,
		sheetName:     sheetName,
	}, nil
}

func readMaterial(inline, file string) ([]byte, error) {
	if inline != "" {
		return []byte(inline), nil
	}
	if file != "" {
		return os.ReadFile(file)
	}
	return nil, errors.New("neither inline JSON nor file path provided")
}

// Export replaces the target sheet's contents with the given snapshot.
func (e *Exporter) Export(ctx context.Context, data core.DashboardData, fetchedAt time.Time) error {
	if e.svc == nil {
		return errors.New("sheets service not initialized")
	}

	clearRange := fmt.Sprintf("%s!A:C", e.sheetName)
	if _, err := e.svc.Spreadsheets.Values.Clear(e.spreadsheetID, clearRange, &gsheet.ClearValuesRequest{}).
		Context(ctx).Do(); err != nil {
		return fmt.Errorf("clear sheet %s: %w", e.sheetName, err)
	}

	vr := &gsheet.ValueRange{Values: buildRows(data, fetchedAt)}
	writeRange := fmt.Sprintf("%s!A1", e.sheetName)
	if _, err := e.svc.Spreadsheets.Values.Update(e.spreadsheetID, writeRange, vr).
		ValueInputOption("USER_ENTERED").Context(ctx).Do(); err != nil {
		return fmt.Errorf("update sheet %s: %w", e.sheetName, err)
	}

	slog.InfoContext(ctx, "Dashboard exported to Google Sheets",
		"spreadsheet_id", e.spreadsheetID,
		"sheet", e.sheetName,
		"rows", len(vr.Values))
	return nil
}

// buildRows lays the snapshot out as one sheet: a header, the headline
// number, then each series as its own titled block.
func buildRows(data core.DashboardData, fetchedAt time.Time) [][]any {
	rows := [][]any{
		{"Dashboard", "Refreshed", fetchedAt.Format(time.RFC3339)},
		{},
		{"Monthly Deposits", data.MonthlyDeposits},
		{},
		{"Attorney", "Billable Hours"},
	}
	for _, a := range data.AttorneyBillableHours {
		rows = append(rows, []any{a.Name, a.Hours})
	}

	rows = append(rows, []any{}, []any{"Week", "Revenue"})
	for _, w := range data.WeeklyRevenue {
		rows = append(rows, []any{w.Week, w.Amount})
	}

	rows = append(rows, []any{}, []any{"Month", "Hours"})
	for _, m := range data.YTDTime {
		rows = append(rows, []any{m.Date, m.Hours})
	}

	rows = append(rows, []any{}, []any{"Month", "Revenue"})
	for _, m := range data.YTDRevenue {
		rows = append(rows, []any{m.Date, m.Amount})
	}

	return rows
}
