package types

// HealthResponse represents the health check response
type HealthResponse struct {
	Status  string     `json:"status"`
	Version string     `json:"version"`
	Counts  StoreStats `json:"counts"`
}

// SeriesPoint is one point of a cumulative chart series.
type SeriesPoint struct {
	Date  string  `json:"date"`
	Value float64 `json:"value"`
}

// CategoryTotal is one slice of a category breakdown.
type CategoryTotal struct {
	Category string  `json:"category"`
	Total    float64 `json:"total"`
}

// Metrics are the headline numbers of the public dashboard.
type Metrics struct {
	TotalHours      float64 `json:"totalHours"`
	TotalSpent      float64 `json:"totalSpent"`
	TotalIncome     float64 `json:"totalIncome"`
	Net             float64 `json:"net"`
	DaysActive      int     `json:"daysActive"`
	AvgHoursPerWeek float64 `json:"avgHoursPerWeek"`
}

// Charts holds the series behind the dashboard charts.
type Charts struct {
	CumulativeHours    []SeriesPoint   `json:"cumulativeHours"`
	CumulativeSpending []SeriesPoint   `json:"cumulativeSpending"`
	HoursByCategory    []CategoryTotal `json:"hoursByCategory"`
	SpendingByCategory []CategoryTotal `json:"spendingByCategory"`
}

// GameInfo is the public view of the settings document, with fallbacks applied.
type GameInfo struct {
	GameDescription    string `json:"gameDescription"`
	ProjectDescription string `json:"projectDescription"`
	LinkedinURL        string `json:"linkedinUrl"`
	DiscordURL         string `json:"discordUrl,omitempty"`
	WishlistURL        string `json:"wishlistUrl,omitempty"`
	YoutubePlaylistID  string `json:"youtubePlaylistId,omitempty"`
	YoutubeEmbedURL    string `json:"youtubeEmbedUrl,omitempty"`
	NewsletterEnabled  bool   `json:"newsletterEnabled"`
}

// BudgetSummary compares money spent against money still planned.
type BudgetSummary struct {
	Spent   float64          `json:"spent"`
	Planned float64          `json:"planned"`
	Total   float64          `json:"total"`
	Items   []PlannedExpense `json:"items"`
}

// TaskBoard groups tasks by board column.
type TaskBoard struct {
	Todo       []Task `json:"todo"`
	InProgress []Task `json:"inProgress"`
	Done       []Task `json:"done"`
}

// UpdateCard is a dev update as shown on the public page.
type UpdateCard struct {
	DevUpdate
	Excerpt string `json:"excerpt"`
}

// FlowDiagram is the full node/edge set of the game-flow diagram.
type FlowDiagram struct {
	Nodes       []FlowNode       `json:"nodes"`
	Connections []FlowConnection `json:"connections"`
}

// Dashboard is everything the public page loads on first paint.
type Dashboard struct {
	GameInfo       GameInfo      `json:"gameInfo"`
	Metrics        Metrics       `json:"metrics"`
	Charts         Charts        `json:"charts"`
	RecentExpenses []Expense     `json:"recentExpenses"`
	Budget         BudgetSummary `json:"budget"`
	Tasks          TaskBoard     `json:"tasks"`
	Updates        []UpdateCard  `json:"updates"`
	VibeCheck      *VibeCheck    `json:"vibeCheck"`
}

// ProcessResult reports a recurring-cost processing run.
type ProcessResult struct {
	Processed int       `json:"processed"`
	Expenses  []Expense `json:"expenses"`
}

// NewsletterRequest is the public signup payload.
type NewsletterRequest struct {
	Email string `json:"email"`
}

// NewsletterResponse reports the outcome of a signup.
type NewsletterResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// ContributionSummary aggregates clicks per contribution item.
type ContributionSummary struct {
	ItemID   string  `json:"itemId"`
	ItemName string  `json:"itemName"`
	Clicks   int64   `json:"clicks"`
	Amount   float64 `json:"amount"`
}
