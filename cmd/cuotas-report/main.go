// Command cuotas-report renders one course report to a file or stdout.
//
//	cuotas-report -course 3 -report students -filter pending -format csv
//	cuotas-report -course 3 -report expenses -format pdf -out gastos.pdf
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"cuotas/internal/cli"
	"cuotas/internal/core"
	"cuotas/internal/export"
	cuotaslog "cuotas/internal/log"
	"cuotas/internal/reconcile"
	"cuotas/internal/services"
)

type options struct {
	course int64
	report string
	format string
	filter string
	period string
	limit  string
	months int
	out    string
}

func main() {
	var opts options
	flag.Int64Var(&opts.course, "course", 0, "course id (required)")
	flag.StringVar(&opts.report, "report", "students", "report to render: students or expenses")
	flag.StringVar(&opts.format, "format", "xlsx", "output format: xlsx, csv or pdf (expenses only)")
	flag.StringVar(&opts.filter, "filter", "all", "students filter: all, up_to_date, pending, with_payments, without_payments")
	flag.StringVar(&opts.period, "period", "", "only payments of this period: first or second")
	flag.StringVar(&opts.limit, "limit", "", "amount expected from each student, replacing the goal")
	flag.IntVar(&opts.months, "months", 0, "expense trend window in months (default from TREND_MONTHS)")
	flag.StringVar(&opts.out, "out", "", "output file; a directory or empty uses the default file name, - writes to stdout")
	flag.Parse()

	_ = cli.LoadEnvFile()
	logger := cli.SetupLogger(cuotaslog.ComponentExport)

	if err := run(context.Background(), opts, logger); err != nil {
		fmt.Fprintln(os.Stderr, "cuotas-report:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, opts options, logger *cuotaslog.Logger) error {
	course := core.CourseID(opts.course)
	if err := course.Validate(); err != nil {
		return err
	}
	format, err := export.ParseFormat(opts.format)
	if err != nil {
		return err
	}

	cfg := cli.LoadAndValidateConfig(logger)
	ledger, err := cli.OpenBackend(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer ledger.Close()

	reports := services.NewReportService(ledger.Reader, services.ReportOptions{
		TrendMonths: cfg.TrendMonths,
		Logger:      logger.WithComponent(cuotaslog.ComponentReport),
	})

	var (
		name   string
		render func(io.Writer) error
	)
	switch opts.report {
	case "students":
		q, err := studentQuery(opts)
		if err != nil {
			return err
		}
		rep, err := reports.Students(ctx, course, q)
		if err != nil {
			return err
		}
		name = export.PaymentFileName(rep, format)
		render = func(w io.Writer) error { return export.WritePaymentReport(w, format, rep) }
	case "expenses":
		rep, err := reports.Expenses(ctx, course, opts.months)
		if err != nil {
			return err
		}
		name = export.ExpenseFileName(rep, format)
		render = func(w io.Writer) error { return export.WriteExpenseReport(w, format, rep) }
	default:
		return fmt.Errorf("unknown report %q: want students or expenses", opts.report)
	}

	if opts.out == "-" {
		return render(os.Stdout)
	}
	path := outputPath(opts.out, name)
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := render(f); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}

	reports.RecordExport(ctx, course, opts.report, format, opts.filter)
	logger.Info("Report written", "path", path, cuotaslog.FieldCourseID, opts.course, "generated_at", time.Now().Format(time.RFC3339))
	return nil
}

func studentQuery(opts options) (services.StudentQuery, error) {
	var q services.StudentQuery
	filter, err := reconcile.ParseExportFilter(opts.filter)
	if err != nil {
		return q, err
	}
	q.Filter = filter

	if opts.period != "" {
		q.Period = core.PaymentPeriod(opts.period)
		if !q.Period.IsValid() {
			return q, fmt.Errorf("%w: %q", core.ErrInvalidPeriod, opts.period)
		}
	}
	if opts.limit != "" {
		limit, err := core.ParseNonNegativeAmount(opts.limit)
		if err != nil {
			return q, err
		}
		q.Limit = limit
	}
	return q, nil
}

// outputPath places the default file name inside out when out is a
// directory or empty.
func outputPath(out, name string) string {
	if out == "" {
		return name
	}
	if st, err := os.Stat(out); err == nil && st.IsDir() {
		return filepath.Join(out, name)
	}
	return out
}
