package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hyperengineering/devtrack/internal/export"
)

var exportOutput string

var exportCmd = &cobra.Command{
	Use:       "export <expenses|time|tasks|report>",
	Short:     "Export records as CSV or a plain-text report",
	Args:      cobra.ExactArgs(1),
	ValidArgs: kindNames(),
	RunE:      runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "",
		"Write to file instead of stdout")
}

func kindNames() []string {
	names := make([]string, len(export.Kinds))
	for i, k := range export.Kinds {
		names[i] = string(k)
	}
	return names
}

func runExport(cmd *cobra.Command, args []string) error {
	kind, err := export.ParseKind(args[0])
	if err != nil {
		return fmt.Errorf("%w (want one of %s)", err, strings.Join(kindNames(), ", "))
	}

	s, cfg, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	var out io.Writer = cmd.OutOrStdout()
	if exportOutput != "" {
		f, err := os.Create(exportOutput)
		if err != nil {
			return fmt.Errorf("create output file: %w", err)
		}
		defer f.Close()
		out = f
	}

	exporter := export.NewExporter(s, cfg.Project.Name, cfg.Project.Currency)
	if err := exporter.Write(cmd.Context(), kind, out); err != nil {
		return fmt.Errorf("export %s: %w", kind, err)
	}
	if exportOutput != "" {
		fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %s export to %s\n", kind, exportOutput)
	}
	return nil
}
