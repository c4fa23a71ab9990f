// Package export writes the project's records as CSV files and a
// plain-text development report.
package export

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/hyperengineering/devtrack/internal/aggregate"
	"github.com/hyperengineering/devtrack/internal/types"
)

// Kind names an export.
type Kind string

const (
	KindExpenses Kind = "expenses"
	KindTime     Kind = "time"
	KindTasks    Kind = "tasks"
	KindReport   Kind = "report"
)

// Kinds lists every export in display order.
var Kinds = []Kind{KindExpenses, KindTime, KindTasks, KindReport}

// ParseKind maps a name (with or without its file extension) to a Kind.
func ParseKind(s string) (Kind, error) {
	name := strings.TrimSuffix(strings.TrimSuffix(strings.ToLower(s), ".csv"), ".txt")
	for _, k := range Kinds {
		if string(k) == name {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown export %q", s)
}

// Filename is the download name of the export.
func (k Kind) Filename() string {
	switch k {
	case KindTime:
		return "time-log.csv"
	case KindReport:
		return "dev-report.txt"
	default:
		return string(k) + ".csv"
	}
}

// ContentType is the MIME type of the export.
func (k Kind) ContentType() string {
	if k == KindReport {
		return "text/plain; charset=utf-8"
	}
	return "text/csv; charset=utf-8"
}

// DisplayDateLayout renders dates the en-GB way, e.g. "15 Jan 2024".
const DisplayDateLayout = "2 Jan 2006"

// FormatDate renders an ISO date for display. Unparseable input is
// returned unchanged.
func FormatDate(iso string) string {
	t, err := time.Parse("2006-01-02", iso)
	if err != nil {
		return iso
	}
	return t.Format(DisplayDateLayout)
}

func money(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func writeAll(w io.Writer, rows [][]string) error {
	cw := csv.NewWriter(w)
	if err := cw.WriteAll(rows); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}

// ExpensesCSV writes expenses in the order given.
func ExpensesCSV(w io.Writer, expenses []types.Expense) error {
	rows := [][]string{{"Date", "Category", "Description", "Amount"}}
	for _, e := range expenses {
		rows = append(rows, []string{FormatDate(e.Date), e.Category, e.Description, money(e.Amount)})
	}
	return writeAll(w, rows)
}

// TimeCSV writes time entries in the order given.
func TimeCSV(w io.Writer, entries []types.TimeEntry) error {
	rows := [][]string{{"Date", "Category", "Description", "Hours"}}
	for _, e := range entries {
		rows = append(rows, []string{FormatDate(e.Date), e.Category, e.Description, money(e.Hours)})
	}
	return writeAll(w, rows)
}

// TasksCSV writes tasks ordered by status name.
func TasksCSV(w io.Writer, tasks []types.Task) error {
	sorted := append([]types.Task(nil), tasks...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Status < sorted[j].Status
	})

	rows := [][]string{{"Status", "Title", "Category", "Priority", "Description"}}
	for _, t := range sorted {
		rows = append(rows, []string{string(t.Status), t.Title, t.Category, string(t.Priority), t.Description})
	}
	return writeAll(w, rows)
}

// ReportRecentExpenses is how many of the newest expenses the report lists.
const ReportRecentExpenses = 10

// ReportData is the content of the development report.
type ReportData struct {
	ProjectName    string
	Currency       string
	GeneratedAt    time.Time
	TotalHours     float64
	TotalSpent     float64
	TasksDone      int
	TasksTotal     int
	RecentExpenses []types.Expense
}

// Report writes the plain-text development report.
func Report(w io.Writer, d ReportData) error {
	banner := strings.Repeat("=", 60)
	rule := strings.Repeat("-", 60)

	var b strings.Builder
	fmt.Fprintln(&b, banner)
	fmt.Fprintf(&b, "%s - DEVELOPMENT REPORT\n", strings.ToUpper(d.ProjectName))
	fmt.Fprintf(&b, "Generated: %s\n", d.GeneratedAt.Format(DisplayDateLayout))
	fmt.Fprintln(&b, banner)
	fmt.Fprintln(&b)

	fmt.Fprintln(&b, "SUMMARY METRICS")
	fmt.Fprintln(&b, rule)
	fmt.Fprintf(&b, "Total Hours Invested: %.1f\n", d.TotalHours)
	fmt.Fprintf(&b, "Total Money Spent: %s%s\n", d.Currency, money(d.TotalSpent))
	fmt.Fprintf(&b, "Tasks Completed: %d / %d\n", d.TasksDone, d.TasksTotal)
	fmt.Fprintln(&b)

	fmt.Fprintf(&b, "RECENT EXPENSES (Last %d)\n", ReportRecentExpenses)
	fmt.Fprintln(&b, rule)
	for _, e := range d.RecentExpenses {
		fmt.Fprintf(&b, "%s | %s | %s%s | %s\n",
			FormatDate(e.Date), e.Category, d.Currency, money(e.Amount), e.Description)
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// Store defines the store operations exports read.
type Store interface {
	ListExpenses(ctx context.Context, opts types.ListOptions) ([]types.Expense, error)
	ListTimeEntries(ctx context.Context, opts types.ListOptions) ([]types.TimeEntry, error)
	ListTasks(ctx context.Context, opts types.ListOptions) ([]types.Task, error)
}

// Exporter loads records from a store and writes them out.
type Exporter struct {
	store       Store
	projectName string
	currency    string
	now         func() time.Time
}

// NewExporter creates an Exporter. The project name and currency symbol
// appear in the report.
func NewExporter(s Store, projectName, currency string) *Exporter {
	return &Exporter{store: s, projectName: projectName, currency: currency, now: time.Now}
}

// Write loads the records for kind and writes the export to w.
func (e *Exporter) Write(ctx context.Context, kind Kind, w io.Writer) error {
	all := types.ListOptions{}
	switch kind {
	case KindExpenses:
		expenses, err := e.store.ListExpenses(ctx, all)
		if err != nil {
			return fmt.Errorf("list expenses: %w", err)
		}
		return ExpensesCSV(w, expenses)
	case KindTime:
		entries, err := e.store.ListTimeEntries(ctx, all)
		if err != nil {
			return fmt.Errorf("list time entries: %w", err)
		}
		return TimeCSV(w, entries)
	case KindTasks:
		tasks, err := e.store.ListTasks(ctx, all)
		if err != nil {
			return fmt.Errorf("list tasks: %w", err)
		}
		return TasksCSV(w, tasks)
	case KindReport:
		data, err := e.reportData(ctx)
		if err != nil {
			return err
		}
		return Report(w, *data)
	default:
		return fmt.Errorf("unknown export %q", kind)
	}
}

func (e *Exporter) reportData(ctx context.Context) (*ReportData, error) {
	all := types.ListOptions{}
	entries, err := e.store.ListTimeEntries(ctx, all)
	if err != nil {
		return nil, fmt.Errorf("list time entries: %w", err)
	}
	expenses, err := e.store.ListExpenses(ctx, all)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	tasks, err := e.store.ListTasks(ctx, all)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}

	done := 0
	for _, t := range tasks {
		if t.Status == types.StatusDone {
			done++
		}
	}
	recent := expenses
	if len(recent) > ReportRecentExpenses {
		recent = recent[:ReportRecentExpenses]
	}

	return &ReportData{
		ProjectName:    e.projectName,
		Currency:       e.currency,
		GeneratedAt:    e.now(),
		TotalHours:     aggregate.Total(aggregate.FromTimeEntries(entries)),
		TotalSpent:     aggregate.Total(aggregate.FromExpenses(expenses)),
		TasksDone:      done,
		TasksTotal:     len(tasks),
		RecentExpenses: recent,
	}, nil
}
