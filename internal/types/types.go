package types

import (
	"strings"
	"time"
)

// TaskStatus is the board column a task sits in.
type TaskStatus string

const (
	StatusToDo       TaskStatus = "To Do"
	StatusInProgress TaskStatus = "In Progress"
	StatusDone       TaskStatus = "Done"
)

// Priority ranks planned expenses and tasks.
type Priority string

const (
	PriorityHigh   Priority = "High"
	PriorityMedium Priority = "Medium"
	PriorityLow    Priority = "Low"
)

// priorityOrder maps priorities to their sort rank. Unknown priorities sort last.
var priorityOrder = map[Priority]int{
	PriorityHigh:   1,
	PriorityMedium: 2,
	PriorityLow:    3,
}

// Rank returns the sort rank of p (lower sorts first).
func (p Priority) Rank() int {
	if r, ok := priorityOrder[p]; ok {
		return r
	}
	return len(priorityOrder) + 1
}

// VibeStatus is the traffic-light mood of a vibe check.
type VibeStatus string

const (
	VibeGreen VibeStatus = "Green"
	VibeAmber VibeStatus = "Amber"
	VibeRed   VibeStatus = "Red"
)

// DefaultCategory is used wherever a record has no category.
const DefaultCategory = "Other"

// Expense is money spent on the project.
type Expense struct {
	ID               string    `json:"id"`
	Date             string    `json:"date"`
	Category         string    `json:"category"`
	Amount           float64   `json:"amount"`
	Description      string    `json:"description"`
	IsRecurring      bool      `json:"isRecurring,omitempty"`
	RecurringCostID  string    `json:"recurringCostId,omitempty"`
	FromPlanned      bool      `json:"fromPlanned,omitempty"`
	PlannedExpenseID string    `json:"plannedExpenseId,omitempty"`
	CreatedAt        time.Time `json:"createdAt"`
}

// NewExpense is the input for creating an expense (without generated fields).
type NewExpense struct {
	Date             string  `json:"date"`
	Category         string  `json:"category"`
	Amount           float64 `json:"amount"`
	Description      string  `json:"description"`
	IsRecurring      bool    `json:"-"`
	RecurringCostID  string  `json:"-"`
	FromPlanned      bool    `json:"-"`
	PlannedExpenseID string  `json:"-"`
}

// Income is money received by the project.
type Income struct {
	ID          string    `json:"id"`
	Date        string    `json:"date"`
	Source      string    `json:"source"`
	Amount      float64   `json:"amount"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
}

// NewIncome is the input for creating an income record.
type NewIncome struct {
	Date        string  `json:"date"`
	Source      string  `json:"source"`
	Amount      float64 `json:"amount"`
	Description string  `json:"description"`
}

// TimeEntry is a block of hours logged against the project.
type TimeEntry struct {
	ID          string    `json:"id"`
	Date        string    `json:"date"`
	Category    string    `json:"category"`
	Hours       float64   `json:"hours"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
}

// NewTimeEntry is the input for logging time.
type NewTimeEntry struct {
	Date        string  `json:"date"`
	Category    string  `json:"category"`
	Hours       float64 `json:"hours"`
	Description string  `json:"description"`
}

// PlannedExpense is a purchase the project intends to make.
type PlannedExpense struct {
	ID            string     `json:"id"`
	Item          string     `json:"item"`
	Category      string     `json:"category"`
	EstimatedCost float64    `json:"estimatedCost"`
	Priority      Priority   `json:"priority"`
	Notes         string     `json:"notes,omitempty"`
	IsPurchased   bool       `json:"isPurchased"`
	PurchasedAt   *time.Time `json:"purchasedAt,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
}

// NewPlannedExpense is the input for planning a purchase.
type NewPlannedExpense struct {
	Item          string   `json:"item"`
	Category      string   `json:"category"`
	EstimatedCost float64  `json:"estimatedCost"`
	Priority      Priority `json:"priority"`
	Notes         string   `json:"notes"`
}

// RecurringCost is a monthly template that spawns expenses when processed.
type RecurringCost struct {
	ID              string     `json:"id"`
	Item            string     `json:"item"`
	Category        string     `json:"category"`
	Amount          float64    `json:"amount"`
	DayOfMonth      int        `json:"dayOfMonth"`
	IsActive        bool       `json:"isActive"`
	LastProcessed   *time.Time `json:"lastProcessed"`
	ProcessedPeriod string     `json:"processedPeriod,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
}

// NewRecurringCost is the input for creating a recurring cost.
type NewRecurringCost struct {
	Item       string  `json:"item"`
	Category   string  `json:"category"`
	Amount     float64 `json:"amount"`
	DayOfMonth int     `json:"dayOfMonth"`
}

// Task is a unit of development work on the public board.
type Task struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Category    string     `json:"category"`
	Status      TaskStatus `json:"status"`
	Priority    Priority   `json:"priority"`
	CreatedAt   time.Time  `json:"createdAt"`
	CompletedAt *time.Time `json:"completedAt"`
}

// NewTask is the input for creating a task.
type NewTask struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Category    string     `json:"category"`
	Status      TaskStatus `json:"status"`
	Priority    Priority   `json:"priority"`
}

// BoardColumn normalizes a status the way the board groups it:
// lower-cased with spaces removed ("In Progress" -> "inprogress").
func (s TaskStatus) BoardColumn() string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(string(s))), " ", "")
}

// Screenshot is an uploaded image shown in the public gallery.
type Screenshot struct {
	ID            string    `json:"id"`
	ImageURL      string    `json:"imageUrl"`
	Filename      string    `json:"filename"`
	Title         string    `json:"title"`
	Description   string    `json:"description,omitempty"`
	Category      string    `json:"category"`
	Date          string    `json:"date"`
	IsBeforeAfter bool      `json:"isBeforeAfter"`
	CreatedAt     time.Time `json:"createdAt"`
}

// NewScreenshot is the input for recording an uploaded screenshot.
type NewScreenshot struct {
	ImageURL      string
	Filename      string
	Title         string
	Description   string
	Category      string
	Date          string
	IsBeforeAfter bool
}

// DevUpdate is a development blog post.
type DevUpdate struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Summary   string    `json:"summary,omitempty"`
	Content   string    `json:"content"`
	Date      string    `json:"date"`
	Tags      []string  `json:"tags"`
	CreatedAt time.Time `json:"createdAt"`
}

// NewDevUpdate is the input for posting an update.
type NewDevUpdate struct {
	Title   string   `json:"title"`
	Summary string   `json:"summary"`
	Content string   `json:"content"`
	Date    string   `json:"date"`
	Tags    []string `json:"tags"`
}

// FlowNode is a vertex of the game-flow diagram.
type FlowNode struct {
	ID        string    `json:"id"`
	Label     string    `json:"label"`
	Type      string    `json:"type"`
	X         float64   `json:"x"`
	Y         float64   `json:"y"`
	CreatedAt time.Time `json:"createdAt"`
}

// NewFlowNode is the input for creating a flow node.
type NewFlowNode struct {
	Label string  `json:"label"`
	Type  string  `json:"type"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
}

// FlowConnection is a directed, optionally labelled edge between two nodes.
type FlowConnection struct {
	ID        string    `json:"id"`
	From      string    `json:"from"`
	To        string    `json:"to"`
	Label     *string   `json:"label"`
	CreatedAt time.Time `json:"createdAt"`
}

// NewFlowConnection is the input for connecting two nodes.
type NewFlowConnection struct {
	From  string  `json:"from"`
	To    string  `json:"to"`
	Label *string `json:"label"`
}

// GameInfoSettings is the singleton settings document.
type GameInfoSettings struct {
	GameDescription    string     `json:"gameDescription"`
	ProjectDescription string     `json:"projectDescription"`
	YoutubePlaylistID  string     `json:"youtubePlaylistId"`
	LinkedinURL        string     `json:"linkedinUrl"`
	DiscordURL         string     `json:"discordUrl"`
	WishlistURL        string     `json:"wishlistUrl"`
	NewsletterEnabled  bool       `json:"newsletterEnabled"`
	UpdatedAt          *time.Time `json:"updatedAt,omitempty"`
}

// SettingsPatch carries an upsert-merge of the settings document.
// Nil fields are left untouched.
type SettingsPatch struct {
	GameDescription    *string `json:"gameDescription"`
	ProjectDescription *string `json:"projectDescription"`
	YoutubePlaylistID  *string `json:"youtubePlaylistId"`
	LinkedinURL        *string `json:"linkedinUrl"`
	DiscordURL         *string `json:"discordUrl"`
	WishlistURL        *string `json:"wishlistUrl"`
	NewsletterEnabled  *bool   `json:"newsletterEnabled"`
}

// Apply merges the non-nil fields of p into s.
func (p SettingsPatch) Apply(s *GameInfoSettings) {
	if p.GameDescription != nil {
		s.GameDescription = *p.GameDescription
	}
	if p.ProjectDescription != nil {
		s.ProjectDescription = *p.ProjectDescription
	}
	if p.YoutubePlaylistID != nil {
		s.YoutubePlaylistID = *p.YoutubePlaylistID
	}
	if p.LinkedinURL != nil {
		s.LinkedinURL = *p.LinkedinURL
	}
	if p.DiscordURL != nil {
		s.DiscordURL = *p.DiscordURL
	}
	if p.WishlistURL != nil {
		s.WishlistURL = *p.WishlistURL
	}
	if p.NewsletterEnabled != nil {
		s.NewsletterEnabled = *p.NewsletterEnabled
	}
}

// VibeCheck is a dated traffic-light mood note.
type VibeCheck struct {
	ID        string     `json:"id"`
	Date      string     `json:"date"`
	Status    VibeStatus `json:"status"`
	Notes     string     `json:"notes,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
}

// NewVibeCheck is the input for recording a vibe check.
type NewVibeCheck struct {
	Date   string     `json:"date"`
	Status VibeStatus `json:"status"`
	Notes  string     `json:"notes"`
}

// NewsletterSubscriber is an email on the mailing list.
type NewsletterSubscriber struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	SubscribedAt time.Time `json:"subscribedAt"`
	IsActive     bool      `json:"isActive"`
}

// ContributionClick is an analytics record of a contribute-button click.
type ContributionClick struct {
	ID        string    `json:"id"`
	ItemID    string    `json:"itemId"`
	ItemName  string    `json:"itemName"`
	Amount    float64   `json:"amount"`
	Timestamp time.Time `json:"timestamp"`
}

// NewContributionClick is the input for logging a click.
type NewContributionClick struct {
	ItemID   string  `json:"itemId"`
	ItemName string  `json:"itemName"`
	Amount   float64 `json:"amount"`
}

// ListOptions bounds list queries.
type ListOptions struct {
	Limit int
}

// StoreStats holds aggregate store statistics.
type StoreStats struct {
	Expenses    int64 `json:"expenses"`
	TimeEntries int64 `json:"timeEntries"`
	Tasks       int64 `json:"tasks"`
	FlowNodes   int64 `json:"flowNodes"`
	Subscribers int64 `json:"subscribers"`
}
