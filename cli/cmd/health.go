package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Query service health summary",
	RunE: func(cmd *cobra.Command, args []string) error {
		health, err := newClient().GetHealthMetrics()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Service Health: %s\n", health.Status)
		fmt.Fprintf(out, "Uptime: %ds\n", health.Metrics.UptimeSeconds)
		fmt.Fprintf(out, "Reviews: %d\n", health.Metrics.ReviewCount)
		fmt.Fprintf(out, "Last Review: %s\n", health.Metrics.LastReviewDate)
		fmt.Fprintf(out, "Store Reachable: %v\n", health.Metrics.StoreReachable)
		fmt.Fprintf(out, "Limiter Reachable: %v\n", health.Metrics.LimiterReachable)
		fmt.Fprintf(out, "CPU Load: %.2f%%\n", health.Metrics.CPULoadPercent)
		fmt.Fprintf(out, "Memory Usage: %.2f MB\n", health.Metrics.MemoryMB)
		fmt.Fprintf(out, "Disk Free: %.2f MB\n", health.Metrics.DiskFreeMB)
		return nil
	},
}

var livenessCmd = &cobra.Command{
	Use:   "liveness",
	Short: "Check service liveness",
	RunE: func(cmd *cobra.Command, args []string) error {
		alive, err := newClient().GetLiveness()
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Liveness: %v\n", alive)
		return nil
	},
}

var readinessCmd = &cobra.Command{
	Use:   "readiness",
	Short: "Check service readiness",
	RunE: func(cmd *cobra.Command, args []string) error {
		ready, err := newClient().GetReadiness()
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Readiness: %v\n", ready)
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show service status",
	RunE: func(cmd *cobra.Command, args []string) error {
		status, err := newClient().GetStatus()
		if err != nil {
			return err
		}
		return printJSON(cmd, status)
	},
}

func init() {
	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(livenessCmd)
	rootCmd.AddCommand(readinessCmd)
	rootCmd.AddCommand(statusCmd)
}
