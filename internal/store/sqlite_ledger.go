package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/hyperengineering/devtrack/internal/types"
	"github.com/oklog/ulid/v2"
)

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

const expenseColumns = `id, date, category, amount, description, is_recurring,
	recurring_cost_id, from_planned, planned_expense_id, created_at`

// insertExpense writes an expense through db or an open transaction.
func insertExpense(ctx context.Context, db execer, in types.NewExpense, now time.Time) (*types.Expense, error) {
	e := types.Expense{
		ID:               ulid.Make().String(),
		Date:             in.Date,
		Category:         in.Category,
		Amount:           in.Amount,
		Description:      in.Description,
		IsRecurring:      in.IsRecurring,
		RecurringCostID:  in.RecurringCostID,
		FromPlanned:      in.FromPlanned,
		PlannedExpenseID: in.PlannedExpenseID,
		CreatedAt:        now.UTC(),
	}

	_, err := db.ExecContext(ctx, `INSERT INTO expenses (`+expenseColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.Date, e.Category, e.Amount, e.Description, e.IsRecurring,
		nullString(e.RecurringCostID), e.FromPlanned, nullString(e.PlannedExpenseID),
		formatTime(e.CreatedAt),
	)
	if err != nil {
		return nil, fmt.Errorf("insert expense: %w", err)
	}
	return &e, nil
}

func scanExpense(row scanner) (*types.Expense, error) {
	var e types.Expense
	var recurringID, plannedID sql.NullString
	var createdAt string
	err := row.Scan(&e.ID, &e.Date, &e.Category, &e.Amount, &e.Description, &e.IsRecurring,
		&recurringID, &e.FromPlanned, &plannedID, &createdAt)
	if err != nil {
		return nil, err
	}
	e.RecurringCostID = recurringID.String
	e.PlannedExpenseID = plannedID.String
	e.CreatedAt = parseTime(createdAt)
	return &e, nil
}

// CreateExpense stores a new expense.
func (s *SQLiteStore) CreateExpense(ctx context.Context, in types.NewExpense) (*types.Expense, error) {
	return insertExpense(ctx, s.db, in, time.Now())
}

// ListExpenses returns expenses newest first.
func (s *SQLiteStore) ListExpenses(ctx context.Context, opts types.ListOptions) ([]types.Expense, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+expenseColumns+` FROM expenses
		ORDER BY date DESC, created_at DESC, id DESC LIMIT ?`, limitArg(opts))
	if err != nil {
		return nil, fmt.Errorf("query expenses: %w", err)
	}
	defer rows.Close()

	expenses := []types.Expense{}
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		expenses = append(expenses, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate expenses: %w", err)
	}
	return expenses, nil
}

// CreateIncome stores a new income record.
func (s *SQLiteStore) CreateIncome(ctx context.Context, in types.NewIncome) (*types.Income, error) {
	income := types.Income{
		ID:          ulid.Make().String(),
		Date:        in.Date,
		Source:      in.Source,
		Amount:      in.Amount,
		Description: in.Description,
		CreatedAt:   time.Now().UTC(),
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO income (id, date, source, amount, description, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, income.ID, income.Date, income.Source, income.Amount, income.Description, formatTime(income.CreatedAt))
	if err != nil {
		return nil, fmt.Errorf("insert income: %w", err)
	}
	return &income, nil
}

// ListIncome returns income records newest first.
func (s *SQLiteStore) ListIncome(ctx context.Context, opts types.ListOptions) ([]types.Income, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, date, source, amount, description, created_at
		FROM income
		ORDER BY date DESC, created_at DESC, id DESC
		LIMIT ?
	`, limitArg(opts))
	if err != nil {
		return nil, fmt.Errorf("query income: %w", err)
	}
	defer rows.Close()

	income := []types.Income{}
	for rows.Next() {
		var in types.Income
		var createdAt string
		if err := rows.Scan(&in.ID, &in.Date, &in.Source, &in.Amount, &in.Description, &createdAt); err != nil {
			return nil, fmt.Errorf("scan income: %w", err)
		}
		in.CreatedAt = parseTime(createdAt)
		income = append(income, in)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate income: %w", err)
	}
	return income, nil
}

// CreateTimeEntry stores a new block of logged hours.
func (s *SQLiteStore) CreateTimeEntry(ctx context.Context, in types.NewTimeEntry) (*types.TimeEntry, error) {
	entry := types.TimeEntry{
		ID:          ulid.Make().String(),
		Date:        in.Date,
		Category:    in.Category,
		Hours:       in.Hours,
		Description: in.Description,
		CreatedAt:   time.Now().UTC(),
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO time_entries (id, date, category, hours, description, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, entry.ID, entry.Date, entry.Category, entry.Hours, entry.Description, formatTime(entry.CreatedAt))
	if err != nil {
		return nil, fmt.Errorf("insert time entry: %w", err)
	}
	return &entry, nil
}

// ListTimeEntries returns time entries newest first.
func (s *SQLiteStore) ListTimeEntries(ctx context.Context, opts types.ListOptions) ([]types.TimeEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, date, category, hours, description, created_at
		FROM time_entries
		ORDER BY date DESC, created_at DESC, id DESC
		LIMIT ?
	`, limitArg(opts))
	if err != nil {
		return nil, fmt.Errorf("query time entries: %w", err)
	}
	defer rows.Close()

	entries := []types.TimeEntry{}
	for rows.Next() {
		var e types.TimeEntry
		var createdAt string
		if err := rows.Scan(&e.ID, &e.Date, &e.Category, &e.Hours, &e.Description, &createdAt); err != nil {
			return nil, fmt.Errorf("scan time entry: %w", err)
		}
		e.CreatedAt = parseTime(createdAt)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate time entries: %w", err)
	}
	return entries, nil
}
