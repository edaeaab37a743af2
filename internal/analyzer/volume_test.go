package analyzer

import (
	"testing"

	"github.com/dmitriimaksimovdevelop/fsxray/internal/config"
	"github.com/dmitriimaksimovdevelop/fsxray/internal/model"
)

func testVolume() model.VolumeDescriptor {
	return model.VolumeDescriptor{
		ID:            "fsvol-001",
		SVMID:         "svm-abc",
		JunctionPath:  "/data",
		SizeMiB:       100 * 1024, // 100 GiB
		TieringPolicy: "AUTO",
		LogicalBytes:  200 * config.BytesPerGiB,
		PhysicalBytes: 100 * config.BytesPerGiB,
	}
}

func busyMetrics() VolumeMetrics {
	// 840 MiB per 840s interval = 1 MB/s at every percentile.
	return VolumeMetrics{
		ReadByteSums:  []float64{840 * config.BytesPerMiB},
		WriteByteSums: []float64{840 * config.BytesPerMiB},
	}
}

func TestAnalyzeVolumeRecord(t *testing.T) {
	cfg := config.Default()
	svms := []model.StorageVirtualMachine{
		{ID: "svm-other", Name: "other"},
		{ID: "svm-abc", Name: "production"},
	}

	report := AnalyzeVolume(cfg, testVolume(), svms, busyMetrics(), 0.145)

	if report.SVMName != "production" {
		t.Errorf("SVMName = %q, want production", report.SVMName)
	}
	if report.SizeGiB != 100 {
		t.Errorf("SizeGiB = %d, want 100", report.SizeGiB)
	}
	if report.Path != "/data" {
		t.Errorf("Path = %q, want /data", report.Path)
	}
	if !almostEqual(report.ReadThroughputMBs, 1) || !almostEqual(report.WriteThroughputMBs, 1) {
		t.Errorf("throughput = %v/%v, want 1/1", report.ReadThroughputMBs, report.WriteThroughputMBs)
	}
	if !almostEqual(report.TotalThroughputMBs, 2) {
		t.Errorf("TotalThroughputMBs = %v, want 2", report.TotalThroughputMBs)
	}
	if report.EfficiencyRatio != "2.00" {
		t.Errorf("EfficiencyRatio = %q, want \"2.00\"", report.EfficiencyRatio)
	}
	// 100 GiB physical in a 100 GiB volume is fully used.
	if !almostEqual(report.UsagePercentage, 100) {
		t.Errorf("UsagePercentage = %v, want 100", report.UsagePercentage)
	}
	if !almostEqual(report.MonthlyCostEstimate, 14.5) {
		t.Errorf("MonthlyCostEstimate = %v, want 14.5", report.MonthlyCostEstimate)
	}
	if len(report.Recommendations) != 0 {
		t.Errorf("healthy volume produced recommendations: %+v", report.Recommendations)
	}
}

func TestAnalyzeVolumeUnknownSVM(t *testing.T) {
	report := AnalyzeVolume(config.Default(), testVolume(), nil, busyMetrics(), 0.145)
	if report.SVMName != "" {
		t.Errorf("SVMName = %q, want empty for unresolved SVM", report.SVMName)
	}
}

func TestAnalyzeVolumeFiltersIncompleteTags(t *testing.T) {
	vol := testVolume()
	vol.Tags = []model.Tag{
		{Key: "team", Value: "storage"},
		{Key: "orphan", Value: ""},
		{Key: "", Value: "dangling"},
	}
	report := AnalyzeVolume(config.Default(), vol, nil, busyMetrics(), 0.145)
	if len(report.Tags) != 1 || report.Tags[0].Key != "team" {
		t.Errorf("Tags = %+v, want only the complete tag", report.Tags)
	}
}

// ---------- recommendation rules ----------

func TestVolumeRecommendationOrder(t *testing.T) {
	// A tiny, idle, poorly deduplicated volume trips all three rules; the
	// rule order and the trailing separators are part of the report layout.
	cfg := config.Default()
	vol := testVolume()
	vol.SizeMiB = 4 * 1024                  // 4 GiB, below the small-volume floor
	vol.LogicalBytes = 11 * config.BytesPerGiB
	vol.PhysicalBytes = 10 * config.BytesPerGiB // ratio 1.1, below 1.5

	report := AnalyzeVolume(cfg, vol, nil, VolumeMetrics{}, 0.145)

	wantTypes := []string{
		model.KindInfo, model.KindSeparator, // small volume
		model.KindWarning, model.KindSeparator, // cold IO
		model.KindInfo, // low efficiency, no separator
	}
	if len(report.Recommendations) != len(wantTypes) {
		t.Fatalf("got %d recommendations, want %d: %+v",
			len(report.Recommendations), len(wantTypes), report.Recommendations)
	}
	for i, want := range wantTypes {
		if report.Recommendations[i].Type != want {
			t.Errorf("recommendation[%d].Type = %q, want %q", i, report.Recommendations[i].Type, want)
		}
	}

	if got := report.Recommendations[0].Message; got != "Volume is small (4 GiB). Consider consolidating or deleting if unused to reduce costs." {
		t.Errorf("small-volume message = %q", got)
	}
	if got := report.Recommendations[2].Message; got != "Volume has low IO (0.00 MB/s). Consider reviewing lifecycle policies to archive or delete stale data." {
		t.Errorf("cold-IO message = %q", got)
	}
	if got := report.Recommendations[4].Message; got != "Storage efficiency ratio is low (1.10). Consider enabling or tuning deduplication, compression, and compaction." {
		t.Errorf("efficiency message = %q", got)
	}
}

func TestVolumeRecommendationThresholdBoundaries(t *testing.T) {
	cfg := config.Default()

	tests := []struct {
		name    string
		sizeGiB int64
		totMBs  float64
		ratio   float64
		wantN   int
	}{
		{"exactly 10 GiB is not small", 10, 1, 2, 0},
		{"exactly at cold threshold is not cold", 1000, cfg.ColdIOThresholdMBs, 2, 0},
		{"exactly 1.5 ratio is not low", 1000, 1, 1.5, 0},
		{"unknown ratio never flags", 1000, 1, 0, 0},
		{"just under cold threshold flags", 1000, 0.009, 2, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recs := volumeRecommendations(cfg, tt.sizeGiB, tt.totMBs, tt.ratio)
			if len(recs) != tt.wantN {
				t.Errorf("got %d recommendations, want %d: %+v", len(recs), tt.wantN, recs)
			}
		})
	}
}

func TestAnalyzeVolumeSizeFloors(t *testing.T) {
	// Sub-GiB volumes floor to 0 GiB and report zero usage rather than a
	// division fault.
	vol := testVolume()
	vol.SizeMiB = 512
	report := AnalyzeVolume(config.Default(), vol, nil, busyMetrics(), 0.145)
	if report.SizeGiB != 0 {
		t.Errorf("SizeGiB = %d, want 0", report.SizeGiB)
	}
	if report.UsagePercentage != 0 {
		t.Errorf("UsagePercentage = %v, want 0", report.UsagePercentage)
	}
	if report.MonthlyCostEstimate != 0 {
		t.Errorf("MonthlyCostEstimate = %v, want 0", report.MonthlyCostEstimate)
	}
}
