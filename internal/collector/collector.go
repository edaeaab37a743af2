// Package collector defines the collaborator interfaces supplying metadata,
// time-series metrics, and pricing to the analysis engine, plus their AWS
// implementations. The engine only ever sees these interfaces; failures are
// surfaced as errors and handled at the call site.
package collector

import (
	"context"
	"time"

	"github.com/avast/retry-go/v4"

	"github.com/dmitriimaksimovdevelop/fsxray/internal/model"
)

// CloudWatch metric names for per-volume I/O.
const (
	MetricDataReadBytes  = "DataReadBytes"
	MetricDataWriteBytes = "DataWriteBytes"
)

// Inventory retrieves filesystem, volume, and SVM snapshots from the
// infrastructure control plane.
type Inventory interface {
	// FileSystems lists the ONTAP filesystems eligible for analysis.
	// A non-empty fsid limits the listing to that filesystem.
	FileSystems(ctx context.Context, fsid string) ([]model.FileSystemDescriptor, error)

	// Volumes lists the volumes of one filesystem.
	Volumes(ctx context.Context, fsid string) ([]model.VolumeDescriptor, error)

	// StorageVirtualMachines lists the SVMs of one filesystem.
	StorageVirtualMachines(ctx context.Context, fsid string) ([]model.StorageVirtualMachine, error)
}

// Metrics retrieves time-series metric samples from the monitoring API.
type Metrics interface {
	// ByteSumSeries returns the per-interval byte sums for one metric over
	// the configured lookback window, ordered by timestamp. Sparse samples
	// are simply absent, never zero-filled.
	ByteSumSeries(ctx context.Context, metric, fsid, volid string) ([]float64, error)

	// LongTermSeries returns the 45-day read/write byte sums at fixed
	// granularity, independent of the percentile window.
	LongTermSeries(ctx context.Context, fsid, volid string) (*model.LongTermSeries, error)
}

// Pricing resolves the unit storage price for a region.
type Pricing interface {
	// UnitPriceGiB returns the USD per GiB-month rate. Implementations
	// return a documented fallback rather than an error.
	UnitPriceGiB(ctx context.Context, region string) float64
}

// withRetry wraps a collaborator call with bounded, jittered backoff.
// Only transient failures are worth retrying; the attempt budget is small
// so a dead collaborator degrades the invocation quickly.
func withRetry(ctx context.Context, fn func() error) error {
	return retry.Do(fn,
		retry.Context(ctx),
		retry.Attempts(3),
		retry.Delay(200*time.Millisecond),
		retry.MaxJitter(150*time.Millisecond),
		retry.DelayType(retry.CombineDelay(retry.BackOffDelay, retry.RandomDelay)),
		retry.LastErrorOnly(true),
	)
}
