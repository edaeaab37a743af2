package analyzer

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/dmitriimaksimovdevelop/fsxray/internal/collector"
	"github.com/dmitriimaksimovdevelop/fsxray/internal/config"
	"github.com/dmitriimaksimovdevelop/fsxray/internal/model"
)

// timestampFormat matches the report envelope contract.
const timestampFormat = "2006-01-02T15:04:05Z"

// Engine orchestrates one analysis invocation: it walks the filesystem
// fleet in input order, fans volume analyses out over a bounded worker
// pool, and assembles the final report. No state survives an invocation.
type Engine struct {
	cfg       config.Config
	inventory collector.Inventory
	metrics   collector.Metrics
	pricing   collector.Pricing
	log       *logrus.Entry
	now       func() time.Time
}

// NewEngine wires an engine from its collaborators.
func NewEngine(cfg config.Config, inventory collector.Inventory, metrics collector.Metrics, pricing collector.Pricing, log *logrus.Entry) *Engine {
	return &Engine{
		cfg:       cfg,
		inventory: inventory,
		metrics:   metrics,
		pricing:   pricing,
		log:       log,
		now:       time.Now,
	}
}

// Run produces the full analysis report. Filesystem order follows the
// inventory; the timestamp is captured at assembly time. A filesystem
// whose analysis fails yields a failure marker without discarding
// siblings. The returned error is reserved for invocation cancellation.
func (e *Engine) Run(ctx context.Context) (*model.AnalysisReport, error) {
	filesystems, err := e.inventory.FileSystems(ctx, e.cfg.FSID)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		e.log.WithError(err).Error("fleet listing failed")
		return &model.AnalysisReport{
			Timestamp: e.now().UTC().Format(timestampFormat),
			Results:   []model.FilesystemReport{FleetFailureReport(err)},
		}, nil
	}

	results := make([]model.FilesystemReport, 0, len(filesystems))
	if len(filesystems) == 0 {
		results = append(results, EmptyFleetReport())
	}
	for _, fs := range filesystems {
		report, err := e.analyzeFilesystem(ctx, fs)
		if err != nil {
			e.log.WithError(err).WithField("fsid", fs.ID).Error("filesystem analysis failed")
			results = append(results, FailureReport(fs.ID, err))
			continue
		}
		results = append(results, report)
	}

	return &model.AnalysisReport{
		Timestamp: e.now().UTC().Format(timestampFormat),
		Results:   results,
	}, nil
}

// EstimateMonthlyCost returns the monthly storage cost for a capacity in
// the configured region.
func (e *Engine) EstimateMonthlyCost(ctx context.Context, sizeGiB int64) float64 {
	return e.pricing.UnitPriceGiB(ctx, e.cfg.Region) * float64(sizeGiB)
}

type volumeOutcome struct {
	report   model.VolumeReport
	logical  int64
	physical int64
}

func (e *Engine) analyzeFilesystem(ctx context.Context, fs model.FileSystemDescriptor) (model.FilesystemReport, error) {
	log := e.log.WithField("fsid", fs.ID)

	svms, err := e.inventory.StorageVirtualMachines(ctx, fs.ID)
	if err != nil {
		if ctx.Err() != nil {
			return model.FilesystemReport{}, err
		}
		// SVM names degrade to empty strings; the analysis proceeds.
		log.WithError(err).Error("SVM listing failed")
		svms = nil
	}

	volumes, err := e.inventory.Volumes(ctx, fs.ID)
	if err != nil {
		if ctx.Err() != nil {
			return model.FilesystemReport{}, err
		}
		log.WithError(err).Error("volume listing failed")
		volumes = nil
	}

	var allSizeMiB int64
	for _, vol := range volumes {
		allSizeMiB += vol.SizeMiB
	}

	unitPrice := e.pricing.UnitPriceGiB(ctx, e.cfg.Region)

	selected := e.selectVolumes(volumes)
	outcomes := make([]*volumeOutcome, len(selected))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workerLimit())
	for i, vol := range selected {
		g.Go(func() error {
			metrics, err := e.collectVolumeMetrics(gctx, fs.ID, vol.ID)
			if err != nil {
				if gctx.Err() != nil {
					return err
				}
				// Failed volumes are dropped from the report; siblings
				// continue unaffected.
				log.WithError(err).WithField("volume", vol.ID).Warn("dropping volume from report")
				return nil
			}
			outcomes[i] = &volumeOutcome{
				report:   AnalyzeVolume(e.cfg, vol, svms, metrics, unitPrice),
				logical:  vol.LogicalBytes,
				physical: vol.PhysicalBytes,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return model.FilesystemReport{}, err
	}

	// Merge by original index so output order is deterministic regardless
	// of worker scheduling.
	in := FilesystemInput{
		Descriptor:       fs,
		AllVolumeSizeMiB: allSizeMiB,
		Volumes:          make([]model.VolumeReport, 0, len(selected)),
		UnitPriceGiB:     unitPrice,
	}
	for _, outcome := range outcomes {
		if outcome == nil {
			continue
		}
		in.Volumes = append(in.Volumes, outcome.report)
		in.TotalLogicalBytes += outcome.logical
		in.TotalPhysicalBytes += outcome.physical
	}

	return AnalyzeFilesystem(e.cfg, in), nil
}

// selectVolumes applies the top-N-by-size limiter while preserving
// inventory order among the survivors. N=0 keeps everything.
func (e *Engine) selectVolumes(volumes []model.VolumeDescriptor) []model.VolumeDescriptor {
	if e.cfg.TopVolumes <= 0 || len(volumes) <= e.cfg.TopVolumes {
		return volumes
	}
	indices := make([]int, len(volumes))
	for i := range indices {
		indices[i] = i
	}
	sort.SliceStable(indices, func(a, b int) bool {
		return volumes[indices[a]].SizeMiB > volumes[indices[b]].SizeMiB
	})
	keep := make(map[int]bool, e.cfg.TopVolumes)
	for _, idx := range indices[:e.cfg.TopVolumes] {
		keep[idx] = true
	}
	selected := make([]model.VolumeDescriptor, 0, e.cfg.TopVolumes)
	for i, vol := range volumes {
		if keep[i] {
			selected = append(selected, vol)
		}
	}
	return selected
}

func (e *Engine) collectVolumeMetrics(ctx context.Context, fsid, volid string) (VolumeMetrics, error) {
	read, err := e.metrics.ByteSumSeries(ctx, collector.MetricDataReadBytes, fsid, volid)
	if err != nil {
		return VolumeMetrics{}, fmt.Errorf("read series: %w", err)
	}
	write, err := e.metrics.ByteSumSeries(ctx, collector.MetricDataWriteBytes, fsid, volid)
	if err != nil {
		return VolumeMetrics{}, fmt.Errorf("write series: %w", err)
	}

	longTerm, err := e.metrics.LongTermSeries(ctx, fsid, volid)
	if err != nil {
		if ctx.Err() != nil {
			return VolumeMetrics{}, err
		}
		// The long-term baseline is best-effort; it reports zeros when the
		// window is unavailable.
		e.log.WithError(err).WithFields(logrus.Fields{
			"fsid": fsid, "volume": volid,
		}).Warn("long-term window unavailable")
		longTerm = nil
	}

	return VolumeMetrics{ReadByteSums: read, WriteByteSums: write, LongTerm: longTerm}, nil
}

func (e *Engine) workerLimit() int {
	if e.cfg.Workers <= 0 {
		return 1
	}
	return e.cfg.Workers
}

// FleetFailureReport is the all-or-nothing degradation when the fleet
// listing itself fails; no per-filesystem results exist to preserve.
func FleetFailureReport(err error) model.FilesystemReport {
	return placeholderReport("N/A",
		model.Recommendation{Type: model.KindInfo, Message: "Analysis unavailable."},
		model.Recommendation{Type: model.KindCritical, Message: fmt.Sprintf("Error analyzing filesystems: %v", err)},
	)
}
