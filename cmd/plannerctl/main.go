// Command plannerctl inspects and exports the locally persisted
// finance state without running the web server.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/techcolloid1243/finance-planner/internal/cli"
	"github.com/techcolloid1243/finance-planner/internal/core"
	"github.com/techcolloid1243/finance-planner/internal/export"
	"github.com/techcolloid1243/finance-planner/internal/report"
	"github.com/techcolloid1243/finance-planner/internal/storage"
)

var dbPath string

func main() {
	cli.LoadEnvFile()

	root := &cobra.Command{
		Use:           "plannerctl",
		Short:         "Inspect and export locally stored finance data",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&dbPath, "db", "./data/finance-planner.db", "path to the SQLite database")

	root.AddCommand(newShowCmd(), newSummaryCmd(), newExportCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func loadState(ctx context.Context) (core.FinanceState, error) {
	local, err := storage.NewLocalStore(dbPath)
	if err != nil {
		return core.FinanceState{}, fmt.Errorf("open local store: %w", err)
	}
	defer local.Close()

	st, found, err := local.LoadState(ctx)
	if err != nil {
		return core.FinanceState{}, fmt.Errorf("load state: %w", err)
	}
	if !found {
		return core.DefaultState(), nil
	}
	return st, nil
}

func newShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the stored finance state as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := loadState(cmd.Context())
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(st)
		},
	}
}

func newSummaryCmd() *cobra.Command {
	var months int
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Print derived totals and projections",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := loadState(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Monthly income:          %s\n", core.FormatAmount(report.CombinedMonthlyIncome(st)))
			fmt.Fprintf(out, "Total savings:           %s\n", core.FormatAmount(report.CombinedTotalSavings(st)))
			fmt.Fprintf(out, "Planned monthly savings: %s\n", core.FormatAmount(report.TotalPlannedMonthlySavings(st)))
			fmt.Fprintf(out, "Planned monthly expenses:%s\n", core.FormatAmount(report.TotalPlannedMonthlyExpenses(st)))
			fmt.Fprintf(out, "Projected (%d months):   %s\n", months, core.FormatAmount(report.ProjectedSavingsOnly(st, months)))
			rows := report.ProjectionByType(st, months)
			if len(rows) > 0 {
				fmt.Fprintln(out, "\nProjection by type:")
				for _, r := range rows {
					fmt.Fprintf(out, "  %-12s current %s  monthly %s  projected %s\n",
						r.Type, core.FormatAmount(r.Current), core.FormatAmount(r.Monthly), core.FormatAmount(r.Projected))
				}
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&months, "months", 12, "projection horizon in months")
	return cmd
}

func newExportCmd() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the finance state to an xlsx workbook",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := loadState(cmd.Context())
			if err != nil {
				return err
			}
			if out == "" {
				out = export.Filename(time.Now())
			}
			f, err := os.Create(out)
			if err != nil {
				return fmt.Errorf("create %s: %w", out, err)
			}
			defer f.Close()
			if err := export.Write(st, f); err != nil {
				return fmt.Errorf("write workbook: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", out)
			return nil
		},
	}
	cmd.Flags().StringVar(&out, "out", "", "output file (default finance-planner-<date>.xlsx)")
	return cmd
}
