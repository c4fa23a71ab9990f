package validation

import (
	"fmt"

	"github.com/hyperengineering/devtrack/internal/types"
)

// Field length limits, in runes.
const (
	MaxShortText = 200
	MaxLongText  = 20000
	MaxTags      = 20
)

var (
	taskStatuses = []string{string(types.StatusToDo), string(types.StatusInProgress), string(types.StatusDone)}
	priorities   = []string{string(types.PriorityHigh), string(types.PriorityMedium), string(types.PriorityLow)}
	vibeStatuses = []string{string(types.VibeGreen), string(types.VibeAmber), string(types.VibeRed)}
)

// text runs the common string checks shared by every free-text field.
func text(c *Collector, field, value string, max int) {
	c.Add(ValidateUTF8(field, value))
	c.Add(ValidateNoNullBytes(field, value))
	c.Add(ValidateMaxLength(field, value, max))
}

// ValidateNewExpense checks an expense before it is stored.
func ValidateNewExpense(e types.NewExpense) []ValidationError {
	var c Collector
	c.Add(ValidateDate("date", e.Date))
	c.Add(ValidatePositive("amount", e.Amount))
	text(&c, "category", e.Category, MaxShortText)
	text(&c, "description", e.Description, MaxLongText)
	return c.Errors()
}

// ValidateNewIncome checks an income record before it is stored.
func ValidateNewIncome(in types.NewIncome) []ValidationError {
	var c Collector
	c.Add(ValidateDate("date", in.Date))
	c.Add(ValidatePositive("amount", in.Amount))
	c.Add(ValidateRequired("source", in.Source))
	text(&c, "source", in.Source, MaxShortText)
	text(&c, "description", in.Description, MaxLongText)
	return c.Errors()
}

// ValidateNewTimeEntry checks a time entry before it is stored.
func ValidateNewTimeEntry(e types.NewTimeEntry) []ValidationError {
	var c Collector
	c.Add(ValidateDate("date", e.Date))
	c.Add(ValidatePositive("hours", e.Hours))
	c.Add(ValidateRange("hours", e.Hours, 0, 24))
	text(&c, "category", e.Category, MaxShortText)
	text(&c, "description", e.Description, MaxLongText)
	return c.Errors()
}

// ValidateNewPlannedExpense checks a planned purchase before it is stored.
func ValidateNewPlannedExpense(p types.NewPlannedExpense) []ValidationError {
	var c Collector
	c.Add(ValidateRequired("item", p.Item))
	text(&c, "item", p.Item, MaxShortText)
	text(&c, "category", p.Category, MaxShortText)
	c.Add(ValidatePositive("estimatedCost", p.EstimatedCost))
	c.Add(ValidateEnum("priority", string(p.Priority), priorities))
	text(&c, "notes", p.Notes, MaxLongText)
	return c.Errors()
}

// ValidateNewRecurringCost checks a recurring cost template before it is stored.
func ValidateNewRecurringCost(r types.NewRecurringCost) []ValidationError {
	var c Collector
	c.Add(ValidateRequired("item", r.Item))
	text(&c, "item", r.Item, MaxShortText)
	text(&c, "category", r.Category, MaxShortText)
	c.Add(ValidatePositive("amount", r.Amount))
	if r.DayOfMonth < 1 || r.DayOfMonth > 31 {
		c.Add(&ValidationError{Field: "dayOfMonth", Message: "must be between 1 and 31"})
	}
	return c.Errors()
}

// ValidateNewTask checks a task before it is stored.
func ValidateNewTask(t types.NewTask) []ValidationError {
	var c Collector
	c.Add(ValidateRequired("title", t.Title))
	text(&c, "title", t.Title, MaxShortText)
	text(&c, "description", t.Description, MaxLongText)
	text(&c, "category", t.Category, MaxShortText)
	c.Add(ValidateEnum("status", string(t.Status), taskStatuses))
	c.Add(ValidateEnum("priority", string(t.Priority), priorities))
	return c.Errors()
}

// ValidateNewScreenshot checks screenshot metadata (the file is checked separately).
func ValidateNewScreenshot(s types.NewScreenshot) []ValidationError {
	var c Collector
	c.Add(ValidateRequired("title", s.Title))
	text(&c, "title", s.Title, MaxShortText)
	text(&c, "description", s.Description, MaxLongText)
	text(&c, "category", s.Category, MaxShortText)
	c.Add(ValidateDate("date", s.Date))
	return c.Errors()
}

// ValidateNewDevUpdate checks a dev update before it is stored.
func ValidateNewDevUpdate(u types.NewDevUpdate) []ValidationError {
	var c Collector
	c.Add(ValidateRequired("title", u.Title))
	text(&c, "title", u.Title, MaxShortText)
	text(&c, "summary", u.Summary, MaxLongText)
	c.Add(ValidateRequired("content", u.Content))
	text(&c, "content", u.Content, MaxLongText)
	c.Add(ValidateDate("date", u.Date))
	if len(u.Tags) > MaxTags {
		c.Add(&ValidationError{Field: "tags", Message: fmt.Sprintf("must not exceed %d tags", MaxTags)})
	}
	for i, tag := range u.Tags {
		text(&c, fmt.Sprintf("tags[%d]", i), tag, MaxShortText)
	}
	return c.Errors()
}

// ValidateNewFlowNode checks a flow node before it is stored.
func ValidateNewFlowNode(n types.NewFlowNode) []ValidationError {
	var c Collector
	c.Add(ValidateRequired("label", n.Label))
	text(&c, "label", n.Label, MaxShortText)
	text(&c, "type", n.Type, MaxShortText)
	c.Add(ValidateFinite("x", n.X))
	c.Add(ValidateFinite("y", n.Y))
	return c.Errors()
}

// ValidateNewFlowConnection checks a connection before it is stored.
// Whether the endpoints exist is the store's concern.
func ValidateNewFlowConnection(fc types.NewFlowConnection) []ValidationError {
	var c Collector
	c.Add(ValidateULID("from", fc.From))
	c.Add(ValidateULID("to", fc.To))
	if fc.Label != nil {
		text(&c, "label", *fc.Label, MaxShortText)
	}
	return c.Errors()
}

// ValidateNewVibeCheck checks a vibe check before it is stored.
func ValidateNewVibeCheck(v types.NewVibeCheck) []ValidationError {
	var c Collector
	c.Add(ValidateDate("date", v.Date))
	c.Add(ValidateEnum("status", string(v.Status), vibeStatuses))
	text(&c, "notes", v.Notes, MaxLongText)
	return c.Errors()
}

// ValidateSettingsPatch checks the string fields present in a settings merge.
func ValidateSettingsPatch(p types.SettingsPatch) []ValidationError {
	var c Collector
	fields := []struct {
		name  string
		value *string
		max   int
		link  bool
	}{
		{"gameDescription", p.GameDescription, MaxLongText, false},
		{"projectDescription", p.ProjectDescription, MaxLongText, false},
		{"youtubePlaylistId", p.YoutubePlaylistID, MaxShortText, false},
		{"linkedinUrl", p.LinkedinURL, MaxShortText, true},
		{"discordUrl", p.DiscordURL, MaxShortText, true},
		{"wishlistUrl", p.WishlistURL, MaxShortText, true},
	}
	for _, f := range fields {
		if f.value == nil {
			continue
		}
		text(&c, f.name, *f.value, f.max)
		// Served to visitors as links.
		if f.link {
			c.Add(ValidateHTTPURL(f.name, *f.value))
		}
	}
	return c.Errors()
}

// ValidateContributionClick checks a contribute-button click.
func ValidateContributionClick(cc types.NewContributionClick) []ValidationError {
	var c Collector
	c.Add(ValidateRequired("itemId", cc.ItemID))
	text(&c, "itemId", cc.ItemID, MaxShortText)
	text(&c, "itemName", cc.ItemName, MaxShortText)
	c.Add(ValidateFinite("amount", cc.Amount))
	c.Add(ValidateRange("amount", cc.Amount, 0, 1e9))
	return c.Errors()
}
