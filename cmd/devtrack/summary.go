package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/hyperengineering/devtrack/internal/dashboard"
	"github.com/hyperengineering/devtrack/internal/types"
)

var summaryJSONOutput bool

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Print headline project metrics",
	Args:  cobra.NoArgs,
	RunE:  runSummary,
}

func init() {
	summaryCmd.Flags().BoolVar(&summaryJSONOutput, "json", false, "Output in JSON format")
}

// projectSummary is the data behind the summary command.
type projectSummary struct {
	Project   string           `json:"project"`
	Metrics   types.Metrics    `json:"metrics"`
	Stats     types.StoreStats `json:"stats"`
	Todo      int              `json:"todo"`
	Doing     int              `json:"inProgress"`
	Done      int              `json:"done"`
	VibeCheck *types.VibeCheck `json:"vibeCheck"`
}

func runSummary(cmd *cobra.Command, args []string) error {
	s, cfg, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	ctx := cmd.Context()
	svc := dashboard.NewService(s, cfg.Project.DefaultLinkedInURL)

	metrics, err := svc.Metrics(ctx)
	if err != nil {
		return err
	}
	board, err := svc.TaskBoard(ctx)
	if err != nil {
		return err
	}
	vibe, err := svc.LatestVibeCheck(ctx)
	if err != nil {
		return err
	}
	stats, err := s.GetStats(ctx)
	if err != nil {
		return fmt.Errorf("get stats: %w", err)
	}

	sum := projectSummary{
		Project:   cfg.Project.Name,
		Metrics:   *metrics,
		Stats:     *stats,
		Todo:      len(board.Todo),
		Doing:     len(board.InProgress),
		Done:      len(board.Done),
		VibeCheck: vibe,
	}

	if summaryJSONOutput {
		return printJSON(cmd.OutOrStdout(), sum)
	}
	renderSummary(cmd.OutOrStdout(), sum, cfg.Project.Currency)
	return nil
}

var vibeColors = map[types.VibeStatus]lipgloss.Color{
	types.VibeGreen: lipgloss.Color("#22C55E"),
	types.VibeAmber: lipgloss.Color("#F59E0B"),
	types.VibeRed:   lipgloss.Color("#EF4444"),
}

// renderSummary writes a styled summary. Styles degrade to plain text when
// w is not a terminal.
func renderSummary(w io.Writer, s projectSummary, currency string) {
	r := lipgloss.NewRenderer(w)
	title := r.NewStyle().Bold(true).Foreground(lipgloss.Color("#8B5CF6"))
	label := r.NewStyle().Width(18).Foreground(lipgloss.Color("#9CA3AF"))
	value := r.NewStyle().Bold(true)

	row := func(name, v string) string {
		return "  " + label.Render(name) + value.Render(v)
	}

	net := currency + humanize.FormatFloat("#,###.##", s.Metrics.Net)
	if s.Metrics.Net < 0 {
		net = "-" + currency + humanize.FormatFloat("#,###.##", -s.Metrics.Net)
	}

	lines := []string{
		"",
		"  " + title.Render(strings.ToUpper(s.Project)),
		"",
		row("Hours invested", humanize.FormatFloat("#,###.#", s.Metrics.TotalHours)),
		row("Money spent", currency+humanize.FormatFloat("#,###.##", s.Metrics.TotalSpent)),
		row("Income", currency+humanize.FormatFloat("#,###.##", s.Metrics.TotalIncome)),
		row("Net", net),
		row("Days active", humanize.Comma(int64(s.Metrics.DaysActive))),
		row("Hours / week", fmt.Sprintf("%.1f", s.Metrics.AvgHoursPerWeek)),
		"",
		row("Tasks", fmt.Sprintf("%d to do, %d in progress, %d done", s.Todo, s.Doing, s.Done)),
		row("Expenses logged", humanize.Comma(s.Stats.Expenses)),
		row("Time entries", humanize.Comma(s.Stats.TimeEntries)),
		row("Subscribers", humanize.Comma(s.Stats.Subscribers)),
	}

	if s.VibeCheck != nil {
		vibe := r.NewStyle().Bold(true).Foreground(vibeColors[s.VibeCheck.Status])
		lines = append(lines, "", "  "+label.Render("Vibe")+
			vibe.Render(string(s.VibeCheck.Status))+"  "+s.VibeCheck.Date)
	}

	fmt.Fprintln(w, strings.Join(lines, "\n"))
	fmt.Fprintln(w)
}
