// Package recurring turns monthly recurring-cost templates into expenses.
package recurring

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hyperengineering/devtrack/internal/store"
	"github.com/hyperengineering/devtrack/internal/types"
)

// Clock abstracts time retrieval so processing is deterministic in tests.
type Clock interface {
	Now() time.Time
}

// RealClock returns the actual current time.
type RealClock struct{}

func (RealClock) Now() time.Time { return time.Now() }

// Store defines the store operations the processor needs.
type Store interface {
	ListRecurringCosts(ctx context.Context) ([]types.RecurringCost, error)
	ProcessRecurringCost(ctx context.Context, id, period, date string, at time.Time) (*types.Expense, error)
}

// Processor books the expenses of recurring costs that are due this month.
type Processor struct {
	store Store
	clock Clock
}

// NewProcessor creates a Processor. A nil clock means the real clock.
func NewProcessor(s Store, clock Clock) *Processor {
	if clock == nil {
		clock = RealClock{}
	}
	return &Processor{store: s, clock: clock}
}

// Period returns the YYYY-MM month key of t.
func Period(t time.Time) string {
	return t.Format("2006-01")
}

// DueDay clamps dayOfMonth to the length of the given month, so a cost on
// the 31st falls on the 30th in April and the 28th or 29th in February.
func DueDay(dayOfMonth int, year int, month time.Month) int {
	last := time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
	if dayOfMonth > last {
		return last
	}
	if dayOfMonth < 1 {
		return 1
	}
	return dayOfMonth
}

// IsDue reports whether r should be booked for the month containing now.
func IsDue(r types.RecurringCost, now time.Time) bool {
	if !r.IsActive || r.ProcessedPeriod == Period(now) {
		return false
	}
	return DueDay(r.DayOfMonth, now.Year(), now.Month()) <= now.Day()
}

// Due lists the recurring costs that the next Process call would book.
func (p *Processor) Due(ctx context.Context) ([]types.RecurringCost, error) {
	costs, err := p.store.ListRecurringCosts(ctx)
	if err != nil {
		return nil, fmt.Errorf("list recurring costs: %w", err)
	}
	now := p.clock.Now()

	due := []types.RecurringCost{}
	for _, r := range costs {
		if IsDue(r, now) {
			due = append(due, r)
		}
	}
	return due, nil
}

// Process books one expense for every due cost. Each cost is claimed for
// the month atomically, so repeated or concurrent runs in the same month
// book nothing further. Failures on one cost do not stop the others.
func (p *Processor) Process(ctx context.Context) (*types.ProcessResult, error) {
	start := p.clock.Now()
	due, err := p.Due(ctx)
	if err != nil {
		return nil, err
	}

	period := Period(start)
	result := &types.ProcessResult{Expenses: []types.Expense{}}
	var errs []error

	for _, r := range due {
		day := DueDay(r.DayOfMonth, start.Year(), start.Month())
		date := time.Date(start.Year(), start.Month(), day, 0, 0, 0, 0, start.Location()).Format("2006-01-02")

		expense, err := p.store.ProcessRecurringCost(ctx, r.ID, period, date, start)
		if errors.Is(err, store.ErrAlreadyProcessed) || errors.Is(err, store.ErrNotFound) {
			continue
		}
		if err != nil {
			slog.Error("recurring cost failed",
				"component", "recurring",
				"action", "process_failed",
				"recurring_cost_id", r.ID,
				"error", err,
			)
			errs = append(errs, fmt.Errorf("process %s: %w", r.ID, err))
			continue
		}

		result.Processed++
		result.Expenses = append(result.Expenses, *expense)
	}

	slog.Info("recurring costs processed",
		"component", "recurring",
		"action", "process_complete",
		"period", period,
		"due", len(due),
		"processed", result.Processed,
	)

	return result, errors.Join(errs...)
}
