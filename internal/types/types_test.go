package types

import (
	"encoding/json"
	"testing"
)

func TestPriority_Rank(t *testing.T) {
	tests := []struct {
		priority Priority
		want     int
	}{
		{PriorityHigh, 1},
		{PriorityMedium, 2},
		{PriorityLow, 3},
		{Priority("Someday"), 4},
		{Priority(""), 4},
	}

	for _, tt := range tests {
		if got := tt.priority.Rank(); got != tt.want {
			t.Errorf("Priority(%q).Rank() = %d, want %d", tt.priority, got, tt.want)
		}
	}
}

func TestTaskStatus_BoardColumn(t *testing.T) {
	tests := []struct {
		status TaskStatus
		want   string
	}{
		{StatusToDo, "todo"},
		{StatusInProgress, "inprogress"},
		{StatusDone, "done"},
		{TaskStatus("  in progress "), "inprogress"},
		{TaskStatus("Blocked"), "blocked"},
	}

	for _, tt := range tests {
		if got := tt.status.BoardColumn(); got != tt.want {
			t.Errorf("TaskStatus(%q).BoardColumn() = %q, want %q", tt.status, got, tt.want)
		}
	}
}

func TestSettingsPatch_ApplyMergesOnlyPresentFields(t *testing.T) {
	current := GameInfoSettings{
		GameDescription:   "old game",
		WishlistURL:       "https://store.example/old",
		NewsletterEnabled: true,
	}

	var patch SettingsPatch
	if err := json.Unmarshal([]byte(`{"gameDescription":"new game","newsletterEnabled":false}`), &patch); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}

	patch.Apply(&current)

	if current.GameDescription != "new game" {
		t.Errorf("GameDescription = %q, want %q", current.GameDescription, "new game")
	}
	if current.WishlistURL != "https://store.example/old" {
		t.Errorf("WishlistURL = %q, want it untouched", current.WishlistURL)
	}
	if current.NewsletterEnabled {
		t.Error("NewsletterEnabled should be false after patch")
	}
}

func TestExpense_JSONUsesCamelCaseFields(t *testing.T) {
	e := Expense{
		ID:              "01JTEST000000000000000000",
		Date:            "2024-01-15",
		Category:        "Software",
		Amount:          12.5,
		IsRecurring:     true,
		RecurringCostID: "01JCOST000000000000000000",
	}

	data, err := json.Marshal(e)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}

	for _, field := range []string{"id", "date", "category", "amount", "description", "isRecurring", "recurringCostId", "createdAt"} {
		if _, ok := raw[field]; !ok {
			t.Errorf("missing field %q in %s", field, data)
		}
	}
	if _, ok := raw["plannedExpenseId"]; ok {
		t.Error("plannedExpenseId should be omitted when empty")
	}
}

func TestNewExpense_IgnoresProvenanceFieldsFromJSON(t *testing.T) {
	var in NewExpense
	body := `{"date":"2024-01-15","amount":3,"isRecurring":true,"recurringCostId":"x"}`
	if err := json.Unmarshal([]byte(body), &in); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if in.IsRecurring || in.RecurringCostID != "" {
		t.Errorf("provenance fields must not be settable from JSON: %+v", in)
	}
}
