// Package dashboard assembles the read-only views of the public page.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/hyperengineering/devtrack/internal/aggregate"
	"github.com/hyperengineering/devtrack/internal/store"
	"github.com/hyperengineering/devtrack/internal/types"
)

// Defaults shown when the settings document leaves a field empty.
const (
	DefaultGameDescription    = "An exciting adventure awaits..."
	DefaultProjectDescription = "Building something amazing..."
	youtubeEmbedPrefix        = "https://www.youtube.com/embed/videoseries?list="
)

// View sizes used by the public page.
const (
	RecentExpensesLimit = 10
	DefaultUpdatesLimit = 5
	ExcerptRunes        = 200
)

// Screenshot filters besides a category name.
const (
	FilterAll         = "all"
	FilterBeforeAfter = "before-after"
)

// Store defines the store operations the dashboard reads.
type Store interface {
	ListExpenses(ctx context.Context, opts types.ListOptions) ([]types.Expense, error)
	ListIncome(ctx context.Context, opts types.ListOptions) ([]types.Income, error)
	ListTimeEntries(ctx context.Context, opts types.ListOptions) ([]types.TimeEntry, error)
	ListPlannedExpenses(ctx context.Context, includePurchased bool) ([]types.PlannedExpense, error)
	ListTasks(ctx context.Context, opts types.ListOptions) ([]types.Task, error)
	ListScreenshots(ctx context.Context, opts types.ListOptions) ([]types.Screenshot, error)
	ListDevUpdates(ctx context.Context, opts types.ListOptions) ([]types.DevUpdate, error)
	LatestVibeCheck(ctx context.Context) (*types.VibeCheck, error)
	GetSettings(ctx context.Context) (*types.GameInfoSettings, error)
	ListFlowNodes(ctx context.Context) ([]types.FlowNode, error)
	ListFlowConnections(ctx context.Context) ([]types.FlowConnection, error)
}

// Service builds dashboard views from the store.
type Service struct {
	store           Store
	defaultLinkedIn string
}

// NewService creates a Service. defaultLinkedIn is used when the settings
// carry no LinkedIn URL.
func NewService(s Store, defaultLinkedIn string) *Service {
	return &Service{store: s, defaultLinkedIn: defaultLinkedIn}
}

var all = types.ListOptions{}

// Metrics returns the headline numbers.
func (s *Service) Metrics(ctx context.Context) (*types.Metrics, error) {
	timeEntries, expenses, err := s.loadActivity(ctx)
	if err != nil {
		return nil, err
	}
	income, err := s.store.ListIncome(ctx, all)
	if err != nil {
		return nil, fmt.Errorf("list income: %w", err)
	}
	m := aggregate.Summarize(timeEntries, expenses, income)
	return &m, nil
}

// Charts returns the cumulative and per-category series.
func (s *Service) Charts(ctx context.Context) (*types.Charts, error) {
	timeEntries, expenses, err := s.loadActivity(ctx)
	if err != nil {
		return nil, err
	}
	c := aggregate.BuildCharts(timeEntries, expenses)
	return &c, nil
}

func (s *Service) loadActivity(ctx context.Context) ([]types.TimeEntry, []types.Expense, error) {
	timeEntries, err := s.store.ListTimeEntries(ctx, all)
	if err != nil {
		return nil, nil, fmt.Errorf("list time entries: %w", err)
	}
	expenses, err := s.store.ListExpenses(ctx, all)
	if err != nil {
		return nil, nil, fmt.Errorf("list expenses: %w", err)
	}
	return timeEntries, expenses, nil
}

// GameInfo returns the public settings with fallbacks applied.
func (s *Service) GameInfo(ctx context.Context) (*types.GameInfo, error) {
	st, err := s.store.GetSettings(ctx)
	if err != nil {
		return nil, fmt.Errorf("get settings: %w", err)
	}

	info := &types.GameInfo{
		GameDescription:    orDefault(st.GameDescription, DefaultGameDescription),
		ProjectDescription: orDefault(st.ProjectDescription, DefaultProjectDescription),
		LinkedinURL:        orDefault(st.LinkedinURL, s.defaultLinkedIn),
		DiscordURL:         st.DiscordURL,
		WishlistURL:        st.WishlistURL,
		YoutubePlaylistID:  st.YoutubePlaylistID,
		NewsletterEnabled:  st.NewsletterEnabled,
	}
	if st.YoutubePlaylistID != "" {
		info.YoutubeEmbedURL = youtubeEmbedPrefix + url.QueryEscape(st.YoutubePlaylistID)
	}
	return info, nil
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}

// RecentExpenses returns the newest expenses.
func (s *Service) RecentExpenses(ctx context.Context) ([]types.Expense, error) {
	expenses, err := s.store.ListExpenses(ctx, types.ListOptions{Limit: RecentExpensesLimit})
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	return expenses, nil
}

// Budget compares money spent with purchases still planned.
func (s *Service) Budget(ctx context.Context) (*types.BudgetSummary, error) {
	expenses, err := s.store.ListExpenses(ctx, all)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	planned, err := s.store.ListPlannedExpenses(ctx, false)
	if err != nil {
		return nil, fmt.Errorf("list planned expenses: %w", err)
	}

	spent := aggregate.Total(aggregate.FromExpenses(expenses))
	var remaining float64
	for _, p := range planned {
		remaining += p.EstimatedCost
	}
	return &types.BudgetSummary{
		Spent:   spent,
		Planned: remaining,
		Total:   spent + remaining,
		Items:   planned,
	}, nil
}

// TaskBoard groups tasks into board columns. Tasks with an unrecognised
// status are left off the board.
func (s *Service) TaskBoard(ctx context.Context) (*types.TaskBoard, error) {
	tasks, err := s.store.ListTasks(ctx, all)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}

	board := &types.TaskBoard{Todo: []types.Task{}, InProgress: []types.Task{}, Done: []types.Task{}}
	for _, t := range tasks {
		switch t.Status.BoardColumn() {
		case types.StatusToDo.BoardColumn():
			board.Todo = append(board.Todo, t)
		case types.StatusInProgress.BoardColumn():
			board.InProgress = append(board.InProgress, t)
		case types.StatusDone.BoardColumn():
			board.Done = append(board.Done, t)
		}
	}
	return board, nil
}

// Screenshots returns the gallery filtered by "all" (or empty),
// "before-after", or a category name.
func (s *Service) Screenshots(ctx context.Context, filter string) ([]types.Screenshot, error) {
	shots, err := s.store.ListScreenshots(ctx, all)
	if err != nil {
		return nil, fmt.Errorf("list screenshots: %w", err)
	}

	filter = strings.TrimSpace(filter)
	if filter == "" || filter == FilterAll {
		return shots, nil
	}

	out := []types.Screenshot{}
	for _, sh := range shots {
		if (filter == FilterBeforeAfter && sh.IsBeforeAfter) || sh.Category == filter {
			out = append(out, sh)
		}
	}
	return out, nil
}

// Updates returns the newest dev updates with excerpts. limit <= 0 means
// DefaultUpdatesLimit.
func (s *Service) Updates(ctx context.Context, limit int) ([]types.UpdateCard, error) {
	if limit <= 0 {
		limit = DefaultUpdatesLimit
	}
	updates, err := s.store.ListDevUpdates(ctx, types.ListOptions{Limit: limit})
	if err != nil {
		return nil, fmt.Errorf("list dev updates: %w", err)
	}

	cards := make([]types.UpdateCard, len(updates))
	for i, u := range updates {
		cards[i] = types.UpdateCard{DevUpdate: u, Excerpt: Excerpt(u)}
	}
	return cards, nil
}

// Excerpt is the update's summary, or the start of its content.
func Excerpt(u types.DevUpdate) string {
	if u.Summary != "" {
		return u.Summary
	}
	runes := []rune(u.Content)
	if len(runes) > ExcerptRunes {
		runes = runes[:ExcerptRunes]
	}
	return string(runes) + "..."
}

// LatestVibeCheck returns the newest vibe check, or nil if there is none.
func (s *Service) LatestVibeCheck(ctx context.Context) (*types.VibeCheck, error) {
	v, err := s.store.LatestVibeCheck(ctx)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("latest vibe check: %w", err)
	}
	return v, nil
}

// Flow returns the full game-flow diagram.
func (s *Service) Flow(ctx context.Context) (*types.FlowDiagram, error) {
	nodes, err := s.store.ListFlowNodes(ctx)
	if err != nil {
		return nil, fmt.Errorf("list flow nodes: %w", err)
	}
	conns, err := s.store.ListFlowConnections(ctx)
	if err != nil {
		return nil, fmt.Errorf("list flow connections: %w", err)
	}
	return &types.FlowDiagram{Nodes: nodes, Connections: conns}, nil
}

// Dashboard returns everything the public page shows on first load.
func (s *Service) Dashboard(ctx context.Context) (*types.Dashboard, error) {
	var d types.Dashboard

	info, err := s.GameInfo(ctx)
	if err != nil {
		return nil, err
	}
	metrics, err := s.Metrics(ctx)
	if err != nil {
		return nil, err
	}
	charts, err := s.Charts(ctx)
	if err != nil {
		return nil, err
	}
	recent, err := s.RecentExpenses(ctx)
	if err != nil {
		return nil, err
	}
	budget, err := s.Budget(ctx)
	if err != nil {
		return nil, err
	}
	board, err := s.TaskBoard(ctx)
	if err != nil {
		return nil, err
	}
	updates, err := s.Updates(ctx, DefaultUpdatesLimit)
	if err != nil {
		return nil, err
	}
	vibe, err := s.LatestVibeCheck(ctx)
	if err != nil {
		return nil, err
	}

	d.GameInfo = *info
	d.Metrics = *metrics
	d.Charts = *charts
	d.RecentExpenses = recent
	d.Budget = *budget
	d.Tasks = *board
	d.Updates = updates
	d.VibeCheck = vibe
	return &d, nil
}
