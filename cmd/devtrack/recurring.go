package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/hyperengineering/devtrack/internal/recurring"
)

var recurringJSONOutput bool

var recurringCmd = &cobra.Command{
	Use:   "recurring",
	Short: "Inspect and process recurring costs",
}

var recurringListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recurring costs",
	Args:  cobra.NoArgs,
	RunE:  runRecurringList,
}

var recurringProcessCmd = &cobra.Command{
	Use:   "process",
	Short: "Book this month's expense for every due recurring cost",
	Long: "Books one expense per active recurring cost whose day of month has arrived.\n" +
		"Running it again in the same month books nothing new.",
	Args: cobra.NoArgs,
	RunE: runRecurringProcess,
}

func init() {
	recurringCmd.PersistentFlags().BoolVar(&recurringJSONOutput, "json", false,
		"Output in JSON format")
	recurringCmd.AddCommand(recurringListCmd)
	recurringCmd.AddCommand(recurringProcessCmd)
}

func runRecurringList(cmd *cobra.Command, args []string) error {
	s, _, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	costs, err := s.ListRecurringCosts(cmd.Context())
	if err != nil {
		return fmt.Errorf("list recurring costs: %w", err)
	}

	if recurringJSONOutput {
		return printJSON(cmd.OutOrStdout(), map[string]any{
			"recurringCosts": costs,
			"total":          len(costs),
		})
	}

	if len(costs) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No recurring costs found.")
		return nil
	}

	now := recurring.RealClock{}.Now()
	w := newTabWriter(cmd.OutOrStdout())
	fmt.Fprintln(w, "ID\tITEM\tAMOUNT\tDAY\tACTIVE\tDUE\tLAST PROCESSED")
	for _, c := range costs {
		last := "never"
		if c.LastProcessed != nil {
			last = humanize.Time(*c.LastProcessed)
		}
		fmt.Fprintf(w, "%s\t%s\t%.2f\t%d\t%t\t%t\t%s\n",
			c.ID, c.Item, c.Amount, c.DayOfMonth, c.IsActive, recurring.IsDue(c, now), last)
	}
	return w.Flush()
}

func runRecurringProcess(cmd *cobra.Command, args []string) error {
	s, _, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	result, err := recurring.NewProcessor(s, recurring.RealClock{}).Process(cmd.Context())
	if err != nil {
		return fmt.Errorf("process recurring costs: %w", err)
	}

	if recurringJSONOutput {
		return printJSON(cmd.OutOrStdout(), result)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Processed %d recurring cost(s).\n", result.Processed)
	for _, e := range result.Expenses {
		fmt.Fprintf(cmd.OutOrStdout(), "  %s  %-24s %.2f\n", e.Date, e.Description, e.Amount)
	}
	return nil
}
