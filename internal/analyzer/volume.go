package analyzer

import (
	"fmt"

	"github.com/dmitriimaksimovdevelop/fsxray/internal/config"
	"github.com/dmitriimaksimovdevelop/fsxray/internal/model"
)

// smallVolumeGiB is the size below which a volume is flagged for
// consolidation.
const smallVolumeGiB = 10

// lowEfficiencyRatio is the ratio below which dedup/compression tuning is
// suggested.
const lowEfficiencyRatio = 1.5

// VolumeMetrics carries the raw time-series input for one volume.
type VolumeMetrics struct {
	ReadByteSums  []float64
	WriteByteSums []float64
	LongTerm      *model.LongTermSeries
}

// AnalyzeVolume composes one volume's full report record from its
// descriptor, metrics, and owning context. Pure computation: every
// collaborator value arrives resolved.
func AnalyzeVolume(cfg config.Config, vol model.VolumeDescriptor, svms []model.StorageVirtualMachine, metrics VolumeMetrics, unitPriceGiB float64) model.VolumeReport {
	sizeGiB := vol.SizeMiB / 1024

	svmName := ""
	for _, svm := range svms {
		if svm.ID == vol.SVMID {
			svmName = svm.Name
			break
		}
	}

	read := ThroughputPercentile(metrics.ReadByteSums, cfg.PeriodSeconds, cfg.Percentile)
	write := ThroughputPercentile(metrics.WriteByteSums, cfg.PeriodSeconds, cfg.Percentile)
	total := read + write

	ratio := EfficiencyRatio(vol.LogicalBytes, vol.PhysicalBytes)

	usagePct := 0.0
	if sizeGiB > 0 {
		usagePct = float64(vol.PhysicalBytes) / (float64(sizeGiB) * config.BytesPerGiB) * 100
	}

	return model.VolumeReport{
		ID:                  vol.ID,
		SVMID:               vol.SVMID,
		SVMName:             svmName,
		Path:                vol.JunctionPath,
		SizeGiB:             sizeGiB,
		TieringPolicy:       vol.TieringPolicy,
		Tags:                model.FilterTags(vol.Tags),
		ReadThroughputMBs:   read,
		WriteThroughputMBs:  write,
		TotalThroughputMBs:  total,
		EfficiencyRatio:     FormatRatio(ratio),
		UsagePercentage:     usagePct,
		MonthlyCostEstimate: unitPriceGiB * float64(sizeGiB),
		LongTermIO:          LongTermRates(metrics.LongTerm),
		Recommendations:     volumeRecommendations(cfg, sizeGiB, total, ratio),
	}
}

// volumeRecommendations evaluates the per-volume rules independently, in
// fixed order, and includes every one that applies. The first two findings
// each carry a trailing separator entry for report layout; the efficiency
// finding does not.
func volumeRecommendations(cfg config.Config, sizeGiB int64, totalMBs, ratio float64) []model.Recommendation {
	recs := []model.Recommendation{}

	if sizeGiB < smallVolumeGiB {
		recs = append(recs,
			model.Recommendation{
				Type:    model.KindInfo,
				Message: fmt.Sprintf("Volume is small (%d GiB). Consider consolidating or deleting if unused to reduce costs.", sizeGiB),
			},
			model.Recommendation{Type: model.KindSeparator},
		)
	}
	if totalMBs < cfg.ColdIOThresholdMBs {
		recs = append(recs,
			model.Recommendation{
				Type:    model.KindWarning,
				Message: fmt.Sprintf("Volume has low IO (%.2f MB/s). Consider reviewing lifecycle policies to archive or delete stale data.", totalMBs),
			},
			model.Recommendation{Type: model.KindSeparator},
		)
	}
	if ratio > 0 && ratio < lowEfficiencyRatio {
		recs = append(recs, model.Recommendation{
			Type:    model.KindInfo,
			Message: fmt.Sprintf("Storage efficiency ratio is low (%.2f). Consider enabling or tuning deduplication, compression, and compaction.", ratio),
		})
	}
	return recs
}
