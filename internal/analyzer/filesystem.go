package analyzer

import (
	"fmt"
	"math"

	"github.com/dmitriimaksimovdevelop/fsxray/internal/config"
	"github.com/dmitriimaksimovdevelop/fsxray/internal/model"
)

// Slack thresholds. The 5-80% band deliberately yields no slack
// recommendation.
const (
	slackHighPercent = 80
	slackLowPercent  = 5
)

// lowAggregateEfficiencyPercent triggers the filesystem-level efficiency
// suggestion.
const lowAggregateEfficiencyPercent = 20

// throughputTargetFloorMBs is the minimum suggested throughput capacity.
const throughputTargetFloorMBs = 128

// FilesystemInput is the resolved snapshot FilesystemAnalyze consumes.
type FilesystemInput struct {
	Descriptor model.FileSystemDescriptor

	// AllVolumeSizeMiB sums provisioned size over every volume of the
	// filesystem, including volumes dropped from analysis, so capacity and
	// slack stay truthful.
	AllVolumeSizeMiB int64

	// Volumes are the successfully analyzed volume reports, in inventory
	// order.
	Volumes []model.VolumeReport

	// TotalLogicalBytes/TotalPhysicalBytes sum the accounting of analyzed
	// volumes only.
	TotalLogicalBytes  int64
	TotalPhysicalBytes int64

	UnitPriceGiB float64
}

// AnalyzeFilesystem aggregates one filesystem's volume reports into its
// capacity/slack/throughput/efficiency record and recommendations.
//
// The filesystem throughput totals are sums of per-volume percentiles, not
// a true aggregate percentile over time-aligned combined I/O. That
// overstates the aggregate (per-volume peaks rarely coincide) but is kept
// for report compatibility.
func AnalyzeFilesystem(cfg config.Config, in FilesystemInput) model.FilesystemReport {
	fs := in.Descriptor

	var totalRead, totalWrite float64
	for _, vol := range in.Volumes {
		totalRead += vol.ReadThroughputMBs
		totalWrite += vol.WriteThroughputMBs
	}
	total := totalRead + totalWrite

	provisionedGiB := in.AllVolumeSizeMiB / 1024
	slackGiB := fs.CapacityGiB - provisionedGiB
	if slackGiB < 0 {
		slackGiB = 0
	}
	slackPct := 0
	if fs.CapacityGiB > 0 {
		slackPct = int(100 * slackGiB / fs.CapacityGiB)
	}

	effPct := EfficiencyPercentage(in.TotalLogicalBytes, in.TotalPhysicalBytes)
	encryption := EncryptionStatus(fs)

	return model.FilesystemReport{
		FSID:                        fs.ID,
		Generation:                  fs.Generation,
		State:                       fs.Lifecycle,
		DeploymentType:              fs.DeploymentType,
		StorageGiB:                  fs.CapacityGiB,
		ProvisionedGiB:              provisionedGiB,
		SlackGiB:                    slackGiB,
		SlackPercentage:             slackPct,
		ThroughputCapacity:          fs.ThroughputCapacity,
		TotalReadThroughput:         totalRead,
		TotalWriteThroughput:        totalWrite,
		TotalThroughput:             total,
		StorageEfficiency:           FormatEfficiencyPercentage(effPct),
		StorageEfficiencyPercentage: effPct,
		MonthlyCostEstimate:         in.UnitPriceGiB * float64(fs.CapacityGiB),
		EncryptionStatus:            encryption,
		Tags:                        model.FilterTags(fs.Tags),
		Volumes:                     in.Volumes,
		Recommendations:             filesystemRecommendations(fs, encryption, slackPct, total, effPct),
	}
}

// EncryptionStatus checks the descriptor's encryption key reference.
func EncryptionStatus(fs model.FileSystemDescriptor) model.Recommendation {
	if fs.KMSKeyID == "" {
		return model.Recommendation{
			Type:    model.KindWarning,
			Message: "File system is not encrypted. Review if encryption is required for compliance.",
		}
	}
	return model.Recommendation{
		Type:    model.KindInfo,
		Message: "File system is encrypted.",
	}
}

// filesystemRecommendations applies the filesystem rules in fixed order:
// encryption, slack (high XOR low), throughput demand, aggregate
// efficiency. The order is the report contract; do not sort by severity.
func filesystemRecommendations(fs model.FileSystemDescriptor, encryption model.Recommendation, slackPct int, totalMBs, effPct float64) []model.Recommendation {
	recs := []model.Recommendation{}

	if encryption.Type == model.KindWarning {
		recs = append(recs, encryption)
	}

	if slackPct > slackHighPercent {
		recs = append(recs, model.Recommendation{
			Type:    model.KindWarning,
			Message: fmt.Sprintf("Slack space is high (~%d%%). Consider resizing.", slackPct),
		})
	} else if slackPct < slackLowPercent {
		recs = append(recs, model.Recommendation{
			Type:    model.KindCritical,
			Message: fmt.Sprintf("Slack space is low (~%d%%). Consider increasing filesystem size.", slackPct),
		})
	}

	if totalMBs > fs.ThroughputCapacity {
		target := int(math.Ceil(totalMBs * 1.2))
		if target < throughputTargetFloorMBs {
			target = throughputTargetFloorMBs
		}
		recs = append(recs, model.Recommendation{
			Type: model.KindCritical,
			Message: fmt.Sprintf("Throughput demand (%.2f MB/s) exceeds capacity (%.0f MB/s). Consider increasing to ~%d MB/s.",
				totalMBs, fs.ThroughputCapacity, target),
		})
	}

	if effPct < lowAggregateEfficiencyPercent {
		recs = append(recs, model.Recommendation{
			Type:    model.KindInfo,
			Message: fmt.Sprintf("Storage efficiency is low (%.1f%%). Consider enabling features.", effPct),
		})
	}

	return recs
}

// EmptyFleetReport is the defined empty state when the control plane
// returns no filesystems. It is a placeholder, not an error.
func EmptyFleetReport() model.FilesystemReport {
	status := model.Recommendation{Type: model.KindInfo, Message: "No FSx filesystems found."}
	return placeholderReport("N/A", status, status)
}

// FailureReport is the typed failure marker for one filesystem whose
// analysis failed; sibling filesystems are unaffected.
func FailureReport(fsid string, err error) model.FilesystemReport {
	return placeholderReport(fsid,
		model.Recommendation{Type: model.KindInfo, Message: "Analysis unavailable."},
		model.Recommendation{Type: model.KindCritical, Message: fmt.Sprintf("Error analyzing filesystem: %v", err)},
	)
}

func placeholderReport(fsid string, encryption, finding model.Recommendation) model.FilesystemReport {
	return model.FilesystemReport{
		FSID:              fsid,
		Generation:        "N/A",
		State:             "N/A",
		DeploymentType:    "N/A",
		StorageEfficiency: notApplicable,
		EncryptionStatus:  encryption,
		Tags:              []model.Tag{},
		Volumes:           []model.VolumeReport{},
		Recommendations:   []model.Recommendation{finding},
	}
}
