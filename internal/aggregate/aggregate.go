// Package aggregate computes totals, cumulative series and category
// breakdowns over logged hours and money.
package aggregate

import (
	"math"
	"sort"

	"github.com/hyperengineering/devtrack/internal/types"
)

// Entry is one dated, categorised quantity: hours or an amount of money.
type Entry struct {
	Date     string
	Category string
	Value    float64
}

// FromTimeEntries maps time entries to hour-valued entries.
func FromTimeEntries(entries []types.TimeEntry) []Entry {
	out := make([]Entry, len(entries))
	for i, e := range entries {
		out[i] = Entry{Date: e.Date, Category: e.Category, Value: e.Hours}
	}
	return out
}

// FromExpenses maps expenses to money-valued entries.
func FromExpenses(expenses []types.Expense) []Entry {
	out := make([]Entry, len(expenses))
	for i, e := range expenses {
		out[i] = Entry{Date: e.Date, Category: e.Category, Value: e.Amount}
	}
	return out
}

// FromIncome maps income records to money-valued entries keyed by source.
func FromIncome(income []types.Income) []Entry {
	out := make([]Entry, len(income))
	for i, in := range income {
		out[i] = Entry{Date: in.Date, Category: in.Source, Value: in.Amount}
	}
	return out
}

// Total sums every entry.
func Total(entries []Entry) float64 {
	var sum float64
	for _, e := range entries {
		sum += e.Value
	}
	return sum
}

// Cumulative returns one point per distinct date, in ascending date order,
// whose value is the running total up to and including that date.
func Cumulative(entries []Entry) []types.SeriesPoint {
	perDate := make(map[string]float64)
	for _, e := range entries {
		perDate[e.Date] += e.Value
	}

	dates := make([]string, 0, len(perDate))
	for d := range perDate {
		dates = append(dates, d)
	}
	// ISO dates sort chronologically as strings.
	sort.Strings(dates)

	series := make([]types.SeriesPoint, len(dates))
	var running float64
	for i, d := range dates {
		running += perDate[d]
		series[i] = types.SeriesPoint{Date: d, Value: running}
	}
	return series
}

// ByCategory totals entries per category, sorted by category name.
// Entries without a category count towards types.DefaultCategory.
func ByCategory(entries []Entry) []types.CategoryTotal {
	totals := make(map[string]float64)
	for _, e := range entries {
		cat := e.Category
		if cat == "" {
			cat = types.DefaultCategory
		}
		totals[cat] += e.Value
	}

	out := make([]types.CategoryTotal, 0, len(totals))
	for cat, total := range totals {
		out = append(out, types.CategoryTotal{Category: cat, Total: total})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Category < out[j].Category
	})
	return out
}

// DaysActive counts the distinct dates on which any time was logged or
// any money was spent.
func DaysActive(timeEntries []types.TimeEntry, expenses []types.Expense) int {
	days := make(map[string]struct{}, len(timeEntries)+len(expenses))
	for _, e := range timeEntries {
		days[e.Date] = struct{}{}
	}
	for _, e := range expenses {
		days[e.Date] = struct{}{}
	}
	return len(days)
}

// AvgHoursPerWeek spreads totalHours over the active weeks, counting at
// least one week.
func AvgHoursPerWeek(totalHours float64, daysActive int) float64 {
	weeks := math.Max(float64(daysActive)/7, 1)
	return totalHours / weeks
}

// Summarize builds the headline metrics.
func Summarize(timeEntries []types.TimeEntry, expenses []types.Expense, income []types.Income) types.Metrics {
	hours := Total(FromTimeEntries(timeEntries))
	spent := Total(FromExpenses(expenses))
	earned := Total(FromIncome(income))
	days := DaysActive(timeEntries, expenses)

	return types.Metrics{
		TotalHours:      hours,
		TotalSpent:      spent,
		TotalIncome:     earned,
		Net:             earned - spent,
		DaysActive:      days,
		AvgHoursPerWeek: AvgHoursPerWeek(hours, days),
	}
}

// BuildCharts builds the cumulative and per-category chart series.
func BuildCharts(timeEntries []types.TimeEntry, expenses []types.Expense) types.Charts {
	hours := FromTimeEntries(timeEntries)
	money := FromExpenses(expenses)
	return types.Charts{
		CumulativeHours:    Cumulative(hours),
		CumulativeSpending: Cumulative(money),
		HoursByCategory:    ByCategory(hours),
		SpendingByCategory: ByCategory(money),
	}
}

// Round2 rounds to two decimal places for display.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
