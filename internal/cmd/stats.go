package cmd

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/fieldworks/woms/internal/config"
	"github.com/fieldworks/woms/internal/core"
	"github.com/fieldworks/woms/internal/core/store"
	apperrors "github.com/fieldworks/woms/internal/errors"
	"github.com/fieldworks/woms/internal/scheduling"
)

var (
	statsTenant     string
	statsTechnician string
	statsStart      string
	statsEnd        string
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print schedule utilization statistics",
	Long: `Aggregate utilization over the stored schedules and print a table.
Filters mirror the /api/v1/schedules/stats endpoint.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		cfg, err := config.Load()
		if err != nil {
			return apperrors.WrapConfigInvalid(ctx, err, "failed to load configuration")
		}

		filter := store.ScheduleFilter{TechnicianID: statsTechnician}
		if statsStart != "" {
			if filter.StartDay, err = core.ParseDay(statsStart); err != nil {
				return apperrors.WrapInvalidInput(ctx, err, "invalid --start")
			}
		}
		if statsEnd != "" {
			if filter.EndDay, err = core.ParseDay(statsEnd); err != nil {
				return apperrors.WrapInvalidInput(ctx, err, "invalid --end")
			}
		}

		st, err := store.Open(ctx, cfg.Store)
		if err != nil {
			return apperrors.WrapDatabaseError(ctx, err, "failed to open store")
		}
		defer st.Close() // nolint:errcheck

		schedules, err := st.ListSchedules(ctx, statsTenant, filter)
		if err != nil {
			return apperrors.WrapDatabaseError(ctx, err, "failed to list schedules")
		}

		stats := scheduling.Summarize(schedules)

		t := table.NewWriter()
		t.SetStyle(table.StyleRounded)
		t.AppendHeader(table.Row{"Technician", "Date", "Available", "Scheduled", "Utilization", "Status"})
		for _, view := range stats.Schedules {
			t.AppendRow(table.Row{
				view.TechnicianID,
				view.Day,
				view.AvailableHours,
				view.ScheduledHours,
				fmt.Sprintf("%.0f%%", view.UtilizationPercentage),
				string(view.UtilizationStatus),
			})
		}
		t.AppendFooter(table.Row{
			fmt.Sprintf("%d schedules", stats.TotalSchedules),
			"",
			stats.TotalAvailableHours,
			stats.TotalScheduledHours,
			fmt.Sprintf("%.2f%% avg", stats.AverageUtilization),
			fmt.Sprintf("%d over / %d under", stats.OverallocatedCount, stats.UnderutilizedCount),
		})
		fmt.Println(t.Render())

		return nil
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
	statsCmd.Flags().StringVar(&statsTenant, "tenant", core.DefaultTenantID, "tenant to report on")
	statsCmd.Flags().StringVar(&statsTechnician, "technician", "", "filter by technician id")
	statsCmd.Flags().StringVar(&statsStart, "start", "", "start date (YYYY-MM-DD)")
	statsCmd.Flags().StringVar(&statsEnd, "end", "", "end date (YYYY-MM-DD)")
}
