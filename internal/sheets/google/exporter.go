// Package google publishes course reports to a Google Sheets spreadsheet.
// Each course gets three tabs that are cleared and rewritten on every export.
package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"cuotas/internal/core"
	"cuotas/internal/export"
)

// ErrUnavailable is returned while the breaker is open.
var ErrUnavailable = errors.New("google sheets unavailable")

type Options struct {
	SpreadsheetID   string
	CredentialsJSON string
	CredentialsFile string
	// ClientOptions are appended after the credentials, mainly for tests.
	ClientOptions []goption.ClientOption
}

type Exporter struct {
	svc           *gsheet.Service
	spreadsheetID string
	breaker       *gobreaker.CircuitBreaker
}

func New(ctx context.Context, opts Options) (*Exporter, error) {
	id := strings.TrimSpace(opts.SpreadsheetID)
	if id == "" {
		return nil, errors.New("missing spreadsheet id")
	}

	svc, err := newSheetsService(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	return &Exporter{
		svc:           svc,
		spreadsheetID: id,
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        "google-sheets",
			MaxRequests: 1,
			Interval:    time.Minute,
			Timeout:     time.Minute,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 3
			},
		}),
	}, nil
}

// newSheetsService authenticates with service account credentials, inline
// JSON taking precedence over a file. Without either, the given client
// options must carry their own authentication.
func newSheetsService(ctx context.Context, opts Options) (*gsheet.Service, error) {
	var credentials []byte
	switch {
	case strings.TrimSpace(opts.CredentialsJSON) != "":
		credentials = []byte(opts.CredentialsJSON)
	case opts.CredentialsFile != "":
		b, err := os.ReadFile(opts.CredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		credentials = b
	case len(opts.ClientOptions) == 0:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON or GOOGLE_SERVICE_ACCOUNT_FILE)")
	}

	var clientOpts []goption.ClientOption
	if credentials != nil {
		clientOpts = append(clientOpts,
			goption.WithCredentialsJSON(credentials),
			goption.WithScopes(gsheet.SpreadsheetsScope))
	}
	clientOpts = append(clientOpts, opts.ClientOptions...)

	return gsheet.NewService(ctx, clientOpts...)
}

// Tabs returns the tab titles used for a course.
func Tabs(c core.Course) (payments, summary, trend string) {
	prefix := fmt.Sprintf("%s (%d)", c.DisplayName(), c.ID)
	return prefix + " - Pagos", prefix + " - Resumen", prefix + " - Tendencia"
}

// ExportCourse rewrites the course's payment, expense summary and trend tabs.
func (e *Exporter) ExportCourse(ctx context.Context, payments export.PaymentReport, expenses export.ExpenseReport) error {
	payTab, sumTab, trendTab := Tabs(payments.Course)
	tabs := map[string]export.Table{
		payTab:   export.PaymentTable(payments),
		sumTab:   export.ExpenseSummaryTable(expenses),
		trendTab: export.TrendTable(expenses),
	}

	_, err := e.breaker.Execute(func() (interface{}, error) {
		if err := e.ensureTabs(ctx, payTab, sumTab, trendTab); err != nil {
			return nil, err
		}
		for _, title := range []string{payTab, sumTab, trendTab} {
			if err := e.rewrite(ctx, title, tabs[title]); err != nil {
				return nil, err
			}
		}
		return nil, nil
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("export course %d: %w", payments.Course.ID, ErrUnavailable)
	}
	if err != nil {
		return fmt.Errorf("export course %d: %w", payments.Course.ID, err)
	}

	slog.InfoContext(ctx, "Course exported to Google Sheets",
		"course_id", payments.Course.ID,
		"spreadsheet_id", e.spreadsheetID,
		"students", len(payments.Rows))
	return nil
}

// ensureTabs adds any of the titles missing from the spreadsheet.
func (e *Exporter) ensureTabs(ctx context.Context, titles ...string) error {
	ss, err := e.svc.Spreadsheets.Get(e.spreadsheetID).Fields("sheets.properties.title").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("read spreadsheet: %w", err)
	}

	existing := make(map[string]bool, len(ss.Sheets))
	for _, s := range ss.Sheets {
		if s.Properties != nil {
			existing[s.Properties.Title] = true
		}
	}

	var requests []*gsheet.Request
	for _, t := range titles {
		if !existing[t] {
			requests = append(requests, &gsheet.Request{
				AddSheet: &gsheet.AddSheetRequest{Properties: &gsheet.SheetProperties{Title: t}},
			})
		}
	}
	if len(requests) == 0 {
		return nil
	}

	_, err = e.svc.Spreadsheets.BatchUpdate(e.spreadsheetID, &gsheet.BatchUpdateSpreadsheetRequest{Requests: requests}).
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("add tabs: %w", err)
	}
	return nil
}

func (e *Exporter) rewrite(ctx context.Context, title string, table export.Table) error {
	rng := quoteTab(title)
	if _, err := e.svc.Spreadsheets.Values.Clear(e.spreadsheetID, rng, &gsheet.ClearValuesRequest{}).Context(ctx).Do(); err != nil {
		return fmt.Errorf("clear %s: %w", title, err)
	}

	vr := &gsheet.ValueRange{Values: toValues(table)}
	_, err := e.svc.Spreadsheets.Values.Update(e.spreadsheetID, rng+"!A1", vr).
		ValueInputOption("USER_ENTERED").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("write %s: %w", title, err)
	}
	return nil
}

// quoteTab produces an A1 sheet reference, doubling embedded quotes.
func quoteTab(title string) string {
	return "'" + strings.ReplaceAll(title, "'", "''") + "'"
}

func toValues(t export.Table) [][]interface{} {
	out := make([][]interface{}, len(t))
	for i, row := range t {
		cells := make([]interface{}, len(row))
		for j, v := range row {
			cells[j] = v
		}
		out[i] = cells
	}
	return out
}
