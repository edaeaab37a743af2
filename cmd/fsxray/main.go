// fsxray — FSx for NetApp ONTAP fleet analyzer.
//
// Ingests filesystem/volume/SVM metadata and CloudWatch I/O metrics and
// produces a per-filesystem, per-volume capacity/cost/efficiency report
// with actionable recommendations for operators reviewing storage fleets.
package main

import (
	"context"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/dmitriimaksimovdevelop/fsxray/internal/config"
	"github.com/dmitriimaksimovdevelop/fsxray/internal/output"
)

var (
	version = "0.1.0"
)

func main() {
	var verbose bool

	rootCmd := &cobra.Command{
		Use:   "fsxray",
		Short: "FSx for NetApp ONTAP fleet analyzer",
		Long: `fsxray — capacity, cost, and efficiency analysis for FSx ONTAP fleets.

Walks the first-generation ONTAP filesystems of a region, estimates
percentile throughput per volume from CloudWatch, computes slack and
deduplication efficiency, prices capacity against the AWS catalog, and
emits typed recommendations (resize, re-tier, enable dedup, ...).`,
		Version: version,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logrus.SetOutput(os.Stderr)
			if verbose {
				logrus.SetLevel(logrus.DebugLevel)
			} else {
				logrus.SetLevel(logrus.InfoLevel)
			}
		},
	}
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	// --- analyze command ---
	var analyzeOutput string

	analyzeCmd := &cobra.Command{
		Use:   "analyze",
		Short: "Run one fleet analysis and write the JSON report",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := configFromFlags(cmd)

			engine, err := newEngine(cfg)
			if err != nil {
				return err
			}

			report, err := engine.Run(context.Background())
			if err != nil {
				return err
			}
			return output.WriteJSON(report, analyzeOutput)
		},
	}
	addConfigFlags(analyzeCmd)
	analyzeCmd.Flags().StringVarP(&analyzeOutput, "output", "o", "-", "Output file path (- for stdout)")

	rootCmd.AddCommand(analyzeCmd, serveCmd(), mcpCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// addConfigFlags registers the shared analysis configuration flags.
// Defaults come from the environment so the flags only need to name what
// differs from the deployment config.
func addConfigFlags(cmd *cobra.Command) {
	defaults := config.FromEnv()
	cmd.Flags().String("region", defaults.Region, "AWS region to analyze")
	cmd.Flags().String("fsid", defaults.FSID, "Limit analysis to one filesystem id")
	cmd.Flags().Int("lookback-days", defaults.LookbackDays, "Percentile window in days")
	cmd.Flags().Int("period", defaults.PeriodSeconds, "Metric sampling period in seconds")
	cmd.Flags().Float64("percentile", defaults.Percentile, "Throughput percentile (0-100)")
	cmd.Flags().Int("top-vols", defaults.TopVolumes, "Analyze only the N largest volumes per filesystem (0 = all)")
	cmd.Flags().Int("workers", defaults.Workers, "Concurrent volume analyses per filesystem")
}

// configFromFlags builds the immutable invocation config from environment
// defaults plus flag overrides.
func configFromFlags(cmd *cobra.Command) config.Config {
	cfg := config.FromEnv()
	flags := cmd.Flags()
	cfg.Region, _ = flags.GetString("region")
	cfg.FSID, _ = flags.GetString("fsid")
	cfg.LookbackDays, _ = flags.GetInt("lookback-days")
	cfg.PeriodSeconds, _ = flags.GetInt("period")
	cfg.Percentile, _ = flags.GetFloat64("percentile")
	cfg.TopVolumes, _ = flags.GetInt("top-vols")
	cfg.Workers, _ = flags.GetInt("workers")
	return cfg
}
