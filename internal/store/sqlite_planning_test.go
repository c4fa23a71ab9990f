package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hyperengineering/devtrack/internal/types"
)

func TestListPlannedExpenses_SortsByPriorityThenAge(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	inputs := []types.NewPlannedExpense{
		{Item: "low", EstimatedCost: 1, Priority: types.PriorityLow},
		{Item: "high-1", EstimatedCost: 1, Priority: types.PriorityHigh},
		{Item: "medium", EstimatedCost: 1, Priority: types.PriorityMedium},
		{Item: "high-2", EstimatedCost: 1, Priority: types.PriorityHigh},
	}
	for _, in := range inputs {
		if _, err := s.CreatePlannedExpense(ctx, in); err != nil {
			t.Fatalf("CreatePlannedExpense: %v", err)
		}
	}

	got, err := s.ListPlannedExpenses(ctx, false)
	if err != nil {
		t.Fatalf("ListPlannedExpenses: %v", err)
	}
	want := []string{"high-1", "high-2", "medium", "low"}
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i, item := range want {
		if got[i].Item != item {
			t.Errorf("got[%d].Item = %q, want %q", i, got[i].Item, item)
		}
	}
}

func TestMarkPlannedPaid_CreatesExactlyOneExpense(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	p, err := s.CreatePlannedExpense(ctx, types.NewPlannedExpense{
		Item: "Sound pack", Category: "Audio", EstimatedCost: 42.50, Priority: types.PriorityMedium,
	})
	if err != nil {
		t.Fatalf("CreatePlannedExpense: %v", err)
	}

	paidAt := time.Date(2024, 5, 17, 10, 0, 0, 0, time.UTC)
	e, err := s.MarkPlannedPaid(ctx, p.ID, paidAt)
	if err != nil {
		t.Fatalf("MarkPlannedPaid: %v", err)
	}
	if e.Amount != 42.50 || e.Description != "Sound pack" || e.Category != "Audio" {
		t.Errorf("expense = %+v", e)
	}
	if e.Date != "2024-05-17" {
		t.Errorf("Date = %q, want %q", e.Date, "2024-05-17")
	}
	if !e.FromPlanned || e.PlannedExpenseID != p.ID {
		t.Errorf("provenance = (%v, %q), want (true, %q)", e.FromPlanned, e.PlannedExpenseID, p.ID)
	}

	unpurchased, _ := s.ListPlannedExpenses(ctx, false)
	if len(unpurchased) != 0 {
		t.Errorf("purchased item still listed: %+v", unpurchased)
	}
	all, _ := s.ListPlannedExpenses(ctx, true)
	if len(all) != 1 || !all[0].IsPurchased || all[0].PurchasedAt == nil {
		t.Errorf("planned after payment = %+v", all)
	}

	expenses, _ := s.ListExpenses(ctx, types.ListOptions{})
	if len(expenses) != 1 {
		t.Errorf("len(expenses) = %d, want 1", len(expenses))
	}
}

func TestMarkPlannedPaid_Twice(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	p, _ := s.CreatePlannedExpense(ctx, types.NewPlannedExpense{Item: "x", EstimatedCost: 5, Priority: types.PriorityLow})
	if _, err := s.MarkPlannedPaid(ctx, p.ID, time.Now()); err != nil {
		t.Fatalf("first MarkPlannedPaid: %v", err)
	}
	_, err := s.MarkPlannedPaid(ctx, p.ID, time.Now())
	if !errors.Is(err, ErrAlreadyPurchased) {
		t.Errorf("second MarkPlannedPaid err = %v, want ErrAlreadyPurchased", err)
	}

	expenses, _ := s.ListExpenses(ctx, types.ListOptions{})
	if len(expenses) != 1 {
		t.Errorf("len(expenses) = %d, want 1", len(expenses))
	}
}

func TestMarkPlannedPaid_NotFound(t *testing.T) {
	s := newTestStore(t)
	_, err := s.MarkPlannedPaid(context.Background(), "01ARZ3NDEKTSV4RRFFQ69G5FAV", time.Now())
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestDeletePlannedExpense(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	p, _ := s.CreatePlannedExpense(ctx, types.NewPlannedExpense{Item: "x", EstimatedCost: 5, Priority: types.PriorityLow})
	if err := s.DeletePlannedExpense(ctx, p.ID); err != nil {
		t.Fatalf("DeletePlannedExpense: %v", err)
	}
	if err := s.DeletePlannedExpense(ctx, p.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second delete err = %v, want ErrNotFound", err)
	}
}

func TestToggleRecurringCost(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	r, _ := s.CreateRecurringCost(ctx, types.NewRecurringCost{Item: "Hosting", Amount: 5, DayOfMonth: 1})
	if !r.IsActive {
		t.Fatal("new recurring cost should be active")
	}

	toggled, err := s.ToggleRecurringCost(ctx, r.ID)
	if err != nil {
		t.Fatalf("ToggleRecurringCost: %v", err)
	}
	if toggled.IsActive {
		t.Error("IsActive = true after one toggle, want false")
	}

	toggled, _ = s.ToggleRecurringCost(ctx, r.ID)
	if !toggled.IsActive {
		t.Error("IsActive = false after two toggles, want true")
	}

	if _, err := s.ToggleRecurringCost(ctx, "01ARZ3NDEKTSV4RRFFQ69G5FAV"); !errors.Is(err, ErrNotFound) {
		t.Errorf("toggle unknown err = %v, want ErrNotFound", err)
	}
}

func TestProcessRecurringCost_ClaimsPeriodOnce(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	r, _ := s.CreateRecurringCost(ctx, types.NewRecurringCost{Item: "Hosting", Category: "Infra", Amount: 7.5, DayOfMonth: 3})
	at := time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC)

	e, err := s.ProcessRecurringCost(ctx, r.ID, "2024-06", "2024-06-03", at)
	if err != nil {
		t.Fatalf("ProcessRecurringCost: %v", err)
	}
	if !e.IsRecurring || e.RecurringCostID != r.ID || e.Amount != 7.5 || e.Date != "2024-06-03" || e.Description != "Hosting" {
		t.Errorf("expense = %+v", e)
	}

	_, err = s.ProcessRecurringCost(ctx, r.ID, "2024-06", "2024-06-03", at)
	if !errors.Is(err, ErrAlreadyProcessed) {
		t.Errorf("second run err = %v, want ErrAlreadyProcessed", err)
	}

	got, _ := s.GetRecurringCost(ctx, r.ID)
	if got.ProcessedPeriod != "2024-06" || got.LastProcessed == nil {
		t.Errorf("cost after processing = %+v", got)
	}

	// A new month can be claimed again.
	if _, err := s.ProcessRecurringCost(ctx, r.ID, "2024-07", "2024-07-03", at.AddDate(0, 1, 0)); err != nil {
		t.Errorf("next month: %v", err)
	}

	expenses, _ := s.ListExpenses(ctx, types.ListOptions{})
	if len(expenses) != 2 {
		t.Errorf("len(expenses) = %d, want 2", len(expenses))
	}
}

func TestProcessRecurringCost_SkipsInactive(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	r, _ := s.CreateRecurringCost(ctx, types.NewRecurringCost{Item: "Hosting", Amount: 5, DayOfMonth: 1})
	s.ToggleRecurringCost(ctx, r.ID)

	_, err := s.ProcessRecurringCost(ctx, r.ID, "2024-06", "2024-06-01", time.Now())
	if !errors.Is(err, ErrAlreadyProcessed) {
		t.Errorf("err = %v, want ErrAlreadyProcessed", err)
	}
	expenses, _ := s.ListExpenses(ctx, types.ListOptions{})
	if len(expenses) != 0 {
		t.Errorf("inactive cost created %d expenses", len(expenses))
	}
}

func TestDeleteRecurringCost_KeepsGeneratedExpenses(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	r, _ := s.CreateRecurringCost(ctx, types.NewRecurringCost{Item: "Hosting", Amount: 5, DayOfMonth: 1})
	s.ProcessRecurringCost(ctx, r.ID, "2024-06", "2024-06-01", time.Now())

	if err := s.DeleteRecurringCost(ctx, r.ID); err != nil {
		t.Fatalf("DeleteRecurringCost: %v", err)
	}
	if _, err := s.GetRecurringCost(ctx, r.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetRecurringCost after delete err = %v, want ErrNotFound", err)
	}
	expenses, _ := s.ListExpenses(ctx, types.ListOptions{})
	if len(expenses) != 1 {
		t.Errorf("len(expenses) = %d, want 1", len(expenses))
	}
}
