package store

import (
	"context"
	"time"

	"github.com/hyperengineering/devtrack/internal/types"
)

// LedgerStore records money and time.
type LedgerStore interface {
	CreateExpense(ctx context.Context, e types.NewExpense) (*types.Expense, error)
	ListExpenses(ctx context.Context, opts types.ListOptions) ([]types.Expense, error)
	CreateIncome(ctx context.Context, in types.NewIncome) (*types.Income, error)
	ListIncome(ctx context.Context, opts types.ListOptions) ([]types.Income, error)
	CreateTimeEntry(ctx context.Context, e types.NewTimeEntry) (*types.TimeEntry, error)
	ListTimeEntries(ctx context.Context, opts types.ListOptions) ([]types.TimeEntry, error)
}

// PlanningStore holds planned purchases and recurring cost templates.
type PlanningStore interface {
	CreatePlannedExpense(ctx context.Context, p types.NewPlannedExpense) (*types.PlannedExpense, error)
	ListPlannedExpenses(ctx context.Context, includePurchased bool) ([]types.PlannedExpense, error)
	DeletePlannedExpense(ctx context.Context, id string) error
	MarkPlannedPaid(ctx context.Context, id string, paidAt time.Time) (*types.Expense, error)

	CreateRecurringCost(ctx context.Context, r types.NewRecurringCost) (*types.RecurringCost, error)
	GetRecurringCost(ctx context.Context, id string) (*types.RecurringCost, error)
	ListRecurringCosts(ctx context.Context) ([]types.RecurringCost, error)
	ToggleRecurringCost(ctx context.Context, id string) (*types.RecurringCost, error)
	DeleteRecurringCost(ctx context.Context, id string) error
	ProcessRecurringCost(ctx context.Context, id, period, date string, at time.Time) (*types.Expense, error)
}

// BoardStore holds the public progress content: tasks, screenshots,
// dev updates and vibe checks.
type BoardStore interface {
	CreateTask(ctx context.Context, t types.NewTask) (*types.Task, error)
	ListTasks(ctx context.Context, opts types.ListOptions) ([]types.Task, error)
	CreateScreenshot(ctx context.Context, s types.NewScreenshot) (*types.Screenshot, error)
	ListScreenshots(ctx context.Context, opts types.ListOptions) ([]types.Screenshot, error)
	CreateDevUpdate(ctx context.Context, u types.NewDevUpdate) (*types.DevUpdate, error)
	ListDevUpdates(ctx context.Context, opts types.ListOptions) ([]types.DevUpdate, error)
	CreateVibeCheck(ctx context.Context, v types.NewVibeCheck) (*types.VibeCheck, error)
	ListVibeChecks(ctx context.Context, opts types.ListOptions) ([]types.VibeCheck, error)
	LatestVibeCheck(ctx context.Context) (*types.VibeCheck, error)
}

// FlowStore holds the game-flow diagram.
type FlowStore interface {
	CreateFlowNode(ctx context.Context, n types.NewFlowNode) (*types.FlowNode, error)
	ListFlowNodes(ctx context.Context) ([]types.FlowNode, error)
	DeleteFlowNode(ctx context.Context, id string) error
	CreateFlowConnection(ctx context.Context, c types.NewFlowConnection) (*types.FlowConnection, error)
	ListFlowConnections(ctx context.Context) ([]types.FlowConnection, error)
}

// SettingsStore holds the singleton settings document.
type SettingsStore interface {
	GetSettings(ctx context.Context) (*types.GameInfoSettings, error)
	UpdateSettings(ctx context.Context, patch types.SettingsPatch) (*types.GameInfoSettings, error)
}

// AudienceStore records newsletter signups and contribution clicks.
type AudienceStore interface {
	AddSubscriber(ctx context.Context, email string) (*types.NewsletterSubscriber, error)
	ListSubscribers(ctx context.Context, opts types.ListOptions) ([]types.NewsletterSubscriber, error)
	RecordContributionClick(ctx context.Context, c types.NewContributionClick) (*types.ContributionClick, error)
	ListContributionClicks(ctx context.Context, opts types.ListOptions) ([]types.ContributionClick, error)
	SummarizeContributions(ctx context.Context) ([]types.ContributionSummary, error)
}

// Store defines the interface contract for all devtrack storage operations.
type Store interface {
	LedgerStore
	PlanningStore
	BoardStore
	FlowStore
	SettingsStore
	AudienceStore
	GetStats(ctx context.Context) (*types.StoreStats, error)
	Close() error
}
