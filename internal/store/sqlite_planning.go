package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/hyperengineering/devtrack/internal/types"
	"github.com/oklog/ulid/v2"
)

const plannedColumns = `id, item, category, estimated_cost, priority, notes,
	is_purchased, purchased_at, created_at`

func scanPlanned(row scanner) (*types.PlannedExpense, error) {
	var p types.PlannedExpense
	var purchasedAt sql.NullString
	var createdAt string
	err := row.Scan(&p.ID, &p.Item, &p.Category, &p.EstimatedCost, &p.Priority, &p.Notes,
		&p.IsPurchased, &purchasedAt, &createdAt)
	if err != nil {
		return nil, err
	}
	p.PurchasedAt = parseNullTime(purchasedAt)
	p.CreatedAt = parseTime(createdAt)
	return &p, nil
}

// CreatePlannedExpense stores a purchase the project intends to make.
func (s *SQLiteStore) CreatePlannedExpense(ctx context.Context, in types.NewPlannedExpense) (*types.PlannedExpense, error) {
	p := types.PlannedExpense{
		ID:            ulid.Make().String(),
		Item:          in.Item,
		Category:      in.Category,
		EstimatedCost: in.EstimatedCost,
		Priority:      in.Priority,
		Notes:         in.Notes,
		CreatedAt:     time.Now().UTC(),
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO planned_expenses (id, item, category, estimated_cost, priority, notes, is_purchased, created_at)
		VALUES (?, ?, ?, ?, ?, ?, 0, ?)
	`, p.ID, p.Item, p.Category, p.EstimatedCost, p.Priority, p.Notes, formatTime(p.CreatedAt))
	if err != nil {
		return nil, fmt.Errorf("insert planned expense: %w", err)
	}
	return &p, nil
}

// ListPlannedExpenses returns planned purchases by priority (High, Medium,
// Low, then anything else), oldest first within a priority.
func (s *SQLiteStore) ListPlannedExpenses(ctx context.Context, includePurchased bool) ([]types.PlannedExpense, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+plannedColumns+` FROM planned_expenses
		WHERE ? OR is_purchased = 0
		ORDER BY CASE priority WHEN 'High' THEN 1 WHEN 'Medium' THEN 2 WHEN 'Low' THEN 3 ELSE 4 END,
			created_at ASC, id ASC`, includePurchased)
	if err != nil {
		return nil, fmt.Errorf("query planned expenses: %w", err)
	}
	defer rows.Close()

	planned := []types.PlannedExpense{}
	for rows.Next() {
		p, err := scanPlanned(rows)
		if err != nil {
			return nil, fmt.Errorf("scan planned expense: %w", err)
		}
		planned = append(planned, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate planned expenses: %w", err)
	}
	return planned, nil
}

// DeletePlannedExpense removes a planned purchase.
func (s *SQLiteStore) DeletePlannedExpense(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM planned_expenses WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete planned expense: %w", err)
	}
	return requireAffected(res)
}

// MarkPlannedPaid flips a planned purchase to purchased and records the
// matching expense in one transaction.
func (s *SQLiteStore) MarkPlannedPaid(ctx context.Context, id string, paidAt time.Time) (*types.Expense, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	p, err := scanPlanned(tx.QueryRowContext(ctx,
		`SELECT `+plannedColumns+` FROM planned_expenses WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load planned expense: %w", err)
	}

	res, err := tx.ExecContext(ctx, `
		UPDATE planned_expenses SET is_purchased = 1, purchased_at = ?
		WHERE id = ? AND is_purchased = 0
	`, formatTime(paidAt), id)
	if err != nil {
		return nil, fmt.Errorf("mark purchased: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return nil, fmt.Errorf("get rows affected: %w", err)
	} else if n == 0 {
		return nil, ErrAlreadyPurchased
	}

	expense, err := insertExpense(ctx, tx, types.NewExpense{
		Date:             paidAt.Format("2006-01-02"),
		Category:         p.Category,
		Amount:           p.EstimatedCost,
		Description:      p.Item,
		FromPlanned:      true,
		PlannedExpenseID: p.ID,
	}, paidAt)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}
	return expense, nil
}

const recurringColumns = `id, item, category, amount, day_of_month, is_active,
	last_processed, processed_period, created_at`

func scanRecurring(row scanner) (*types.RecurringCost, error) {
	var r types.RecurringCost
	var lastProcessed sql.NullString
	var createdAt string
	err := row.Scan(&r.ID, &r.Item, &r.Category, &r.Amount, &r.DayOfMonth, &r.IsActive,
		&lastProcessed, &r.ProcessedPeriod, &createdAt)
	if err != nil {
		return nil, err
	}
	r.LastProcessed = parseNullTime(lastProcessed)
	r.CreatedAt = parseTime(createdAt)
	return &r, nil
}

// CreateRecurringCost stores an active monthly cost template.
func (s *SQLiteStore) CreateRecurringCost(ctx context.Context, in types.NewRecurringCost) (*types.RecurringCost, error) {
	r := types.RecurringCost{
		ID:         ulid.Make().String(),
		Item:       in.Item,
		Category:   in.Category,
		Amount:     in.Amount,
		DayOfMonth: in.DayOfMonth,
		IsActive:   true,
		CreatedAt:  time.Now().UTC(),
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO recurring_costs (id, item, category, amount, day_of_month, is_active, created_at)
		VALUES (?, ?, ?, ?, ?, 1, ?)
	`, r.ID, r.Item, r.Category, r.Amount, r.DayOfMonth, formatTime(r.CreatedAt))
	if err != nil {
		return nil, fmt.Errorf("insert recurring cost: %w", err)
	}
	return &r, nil
}

// GetRecurringCost retrieves a recurring cost by ID.
func (s *SQLiteStore) GetRecurringCost(ctx context.Context, id string) (*types.RecurringCost, error) {
	r, err := scanRecurring(s.db.QueryRowContext(ctx,
		`SELECT `+recurringColumns+` FROM recurring_costs WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan recurring cost: %w", err)
	}
	return r, nil
}

// ListRecurringCosts returns every recurring cost, by day of month.
func (s *SQLiteStore) ListRecurringCosts(ctx context.Context) ([]types.RecurringCost, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+recurringColumns+` FROM recurring_costs
		ORDER BY day_of_month ASC, created_at ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("query recurring costs: %w", err)
	}
	defer rows.Close()

	costs := []types.RecurringCost{}
	for rows.Next() {
		r, err := scanRecurring(rows)
		if err != nil {
			return nil, fmt.Errorf("scan recurring cost: %w", err)
		}
		costs = append(costs, *r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate recurring costs: %w", err)
	}
	return costs, nil
}

// ToggleRecurringCost flips isActive and returns the updated cost.
func (s *SQLiteStore) ToggleRecurringCost(ctx context.Context, id string) (*types.RecurringCost, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE recurring_costs SET is_active = 1 - is_active WHERE id = ?`, id)
	if err != nil {
		return nil, fmt.Errorf("toggle recurring cost: %w", err)
	}
	if err := requireAffected(res); err != nil {
		return nil, err
	}
	return s.GetRecurringCost(ctx, id)
}

// DeleteRecurringCost removes a recurring cost. Expenses it already
// generated are kept.
func (s *SQLiteStore) DeleteRecurringCost(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM recurring_costs WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete recurring cost: %w", err)
	}
	return requireAffected(res)
}

// ProcessRecurringCost claims period (YYYY-MM) for an active cost and books
// its expense on date, atomically. A cost that is inactive or already
// claimed for period returns ErrAlreadyProcessed and writes nothing.
func (s *SQLiteStore) ProcessRecurringCost(ctx context.Context, id, period, date string, at time.Time) (*types.Expense, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		UPDATE recurring_costs SET processed_period = ?, last_processed = ?
		WHERE id = ? AND is_active = 1 AND processed_period <> ?
	`, period, formatTime(at), id, period)
	if err != nil {
		return nil, fmt.Errorf("claim period: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("get rows affected: %w", err)
	}

	r, err := scanRecurring(tx.QueryRowContext(ctx,
		`SELECT `+recurringColumns+` FROM recurring_costs WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load recurring cost: %w", err)
	}
	if n == 0 {
		return nil, ErrAlreadyProcessed
	}

	expense, err := insertExpense(ctx, tx, types.NewExpense{
		Date:            date,
		Category:        r.Category,
		Amount:          r.Amount,
		Description:     r.Item,
		IsRecurring:     true,
		RecurringCostID: r.ID,
	}, at)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}
	return expense, nil
}
