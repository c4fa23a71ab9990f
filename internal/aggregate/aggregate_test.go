package aggregate

import (
	"math"
	"testing"

	"github.com/hyperengineering/devtrack/internal/types"
)

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestCumulative_Example(t *testing.T) {
	entries := FromTimeEntries([]types.TimeEntry{
		{Date: "2024-01-03", Hours: 3},
		{Date: "2024-01-01", Hours: 2},
	})

	got := Cumulative(entries)
	want := []types.SeriesPoint{{Date: "2024-01-01", Value: 2}, {Date: "2024-01-03", Value: 5}}
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("got[%d] = %+v, want %+v", i, got[i], want[i])
		}
	}
	if total := Total(entries); total != 5 {
		t.Errorf("Total = %v, want 5", total)
	}
}

func TestCumulative_MergesSameDayAndIsMonotonic(t *testing.T) {
	entries := []Entry{
		{Date: "2024-02-01", Value: 1.5},
		{Date: "2024-01-15", Value: 4},
		{Date: "2024-02-01", Value: 2.5},
		{Date: "2023-12-31", Value: 0.25},
	}

	series := Cumulative(entries)
	if len(series) != 3 {
		t.Fatalf("len(series) = %d, want 3 distinct dates", len(series))
	}
	for i := 1; i < len(series); i++ {
		if series[i].Date <= series[i-1].Date {
			t.Errorf("dates not ascending at %d: %q after %q", i, series[i].Date, series[i-1].Date)
		}
		if series[i].Value < series[i-1].Value {
			t.Errorf("series decreased at %d", i)
		}
	}
	if last := series[len(series)-1].Value; !approx(last, Total(entries)) {
		t.Errorf("last value = %v, want total %v", last, Total(entries))
	}
}

func TestCumulative_Empty(t *testing.T) {
	got := Cumulative(nil)
	if got == nil || len(got) != 0 {
		t.Errorf("Cumulative(nil) = %#v, want empty slice", got)
	}
}

func TestByCategory_DefaultsAndSumsToTotal(t *testing.T) {
	entries := FromExpenses([]types.Expense{
		{Category: "Software", Amount: 10},
		{Category: "", Amount: 2.5},
		{Category: "Art", Amount: 7},
		{Category: "Software", Amount: 5},
	})

	got := ByCategory(entries)
	want := []types.CategoryTotal{
		{Category: "Art", Total: 7},
		{Category: "Other", Total: 2.5},
		{Category: "Software", Total: 15},
	}
	if len(got) != len(want) {
		t.Fatalf("ByCategory() = %+v, want %+v", got, want)
	}
	var sum float64
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("got[%d] = %+v, want %+v", i, got[i], want[i])
		}
		sum += got[i].Total
	}
	if !approx(sum, Total(entries)) {
		t.Errorf("category totals sum to %v, want %v", sum, Total(entries))
	}
}

func TestDaysActive_UnionOfDates(t *testing.T) {
	timeEntries := []types.TimeEntry{{Date: "2024-01-01"}, {Date: "2024-01-02"}, {Date: "2024-01-02"}}
	expenses := []types.Expense{{Date: "2024-01-02"}, {Date: "2024-01-05"}}

	if got := DaysActive(timeEntries, expenses); got != 3 {
		t.Errorf("DaysActive() = %d, want 3", got)
	}
	if got := DaysActive(nil, nil); got != 0 {
		t.Errorf("DaysActive(nil, nil) = %d, want 0", got)
	}
}

func TestAvgHoursPerWeek(t *testing.T) {
	tests := []struct {
		hours float64
		days  int
		want  float64
	}{
		{10, 0, 10},
		{10, 3, 10},
		{10, 7, 10},
		{28, 14, 14},
		{21, 21, 7},
	}
	for _, tt := range tests {
		if got := AvgHoursPerWeek(tt.hours, tt.days); !approx(got, tt.want) {
			t.Errorf("AvgHoursPerWeek(%v, %d) = %v, want %v", tt.hours, tt.days, got, tt.want)
		}
	}
}

func TestSummarize(t *testing.T) {
	m := Summarize(
		[]types.TimeEntry{{Date: "2024-01-01", Hours: 4}, {Date: "2024-01-08", Hours: 6}},
		[]types.Expense{{Date: "2024-01-01", Amount: 30}},
		[]types.Income{{Date: "2024-02-01", Amount: 50}},
	)

	want := types.Metrics{TotalHours: 10, TotalSpent: 30, TotalIncome: 50, Net: 20, DaysActive: 2, AvgHoursPerWeek: 10}
	if m != want {
		t.Errorf("Summarize() = %+v, want %+v", m, want)
	}
}

func TestRound2(t *testing.T) {
	if got := Round2(1.005 + 0.0001); got != 1.01 {
		t.Errorf("Round2 = %v, want 1.01", got)
	}
	if got := Round2(42.5); got != 42.5 {
		t.Errorf("Round2(42.5) = %v", got)
	}
}
