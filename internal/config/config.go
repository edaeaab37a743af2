// Package config holds the immutable per-invocation configuration.
// A Config is built once from the environment (plus flag overrides) and
// passed explicitly into every component; nothing reads process-wide state
// after construction.
package config

import (
	"os"
	"strconv"
)

// Unit and window constants shared by the analyzers.
const (
	// BytesPerMiB is the divisor used to normalize raw byte sums into MB/s.
	BytesPerMiB = 1048576

	// BytesPerGiB is used for volume usage percentage computation.
	BytesPerGiB = 1 << 30

	// LongTermWindowDays is the fixed window for the long-term I/O baseline.
	LongTermWindowDays = 45

	// LongTermPeriodSeconds is the sampling granularity of the long-term window.
	LongTermPeriodSeconds = 300
)

// Config is the read-only configuration for one analysis invocation.
type Config struct {
	// Region is the AWS region whose FSx fleet is analyzed.
	Region string

	// FSID optionally limits the analysis to a single filesystem.
	// Empty means the whole fleet.
	FSID string

	// LookbackDays is the percentile window for throughput estimation.
	LookbackDays int

	// PeriodSeconds is the metric sampling period within the lookback window.
	PeriodSeconds int

	// Percentile is the throughput percentile (0-100).
	Percentile float64

	// TopVolumes limits analysis to the N largest volumes of each filesystem
	// by provisioned size. 0 analyzes every volume. Capacity aggregation
	// (provisioned/slack) always covers the full volume list.
	TopVolumes int

	// Workers bounds concurrent volume analyses per filesystem.
	Workers int

	// ColdIOThresholdMBs is the combined read+write rate below which a
	// volume is flagged as likely unused.
	ColdIOThresholdMBs float64

	// DefaultPriceGiBMonth is the USD per GiB-month fallback when the
	// pricing catalog is unavailable.
	DefaultPriceGiBMonth float64
}

// Default returns the baseline configuration.
func Default() Config {
	return Config{
		Region:               "eu-west-1",
		LookbackDays:         3,
		PeriodSeconds:        840,
		Percentile:           95,
		TopVolumes:           0,
		Workers:              4,
		ColdIOThresholdMBs:   0.01,
		DefaultPriceGiBMonth: 0.145,
	}
}

// FromEnv builds a Config from environment variables, falling back to
// Default for anything unset or unparsable.
func FromEnv() Config {
	cfg := Default()
	cfg.Region = envString("REGION", cfg.Region)
	cfg.FSID = envString("FSID", cfg.FSID)
	cfg.LookbackDays = envInt("LOOKBACK_DAYS", cfg.LookbackDays)
	cfg.PeriodSeconds = envInt("PERIOD", cfg.PeriodSeconds)
	cfg.Percentile = float64(envInt("PCTL", int(cfg.Percentile)))
	cfg.TopVolumes = envInt("TOP_VOLS", cfg.TopVolumes)
	cfg.Workers = envInt("WORKERS", cfg.Workers)
	return cfg
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
