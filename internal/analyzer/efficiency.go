package analyzer

import "fmt"

// efficiencyClampPercent guards against malformed storage accounting
// attributes: percentages above this render as "N/A".
const efficiencyClampPercent = 1000

// notApplicable is the rendered sentinel for efficiency values that cannot
// be computed.
const notApplicable = "N/A"

// EfficiencyRatio returns logical/physical bytes for one volume, the
// deduplication/compression gain. A zero physical count yields 0, which
// renders downstream as "not applicable" -- never a division fault.
func EfficiencyRatio(logicalBytes, physicalBytes int64) float64 {
	if physicalBytes <= 0 {
		return 0
	}
	return float64(logicalBytes) / float64(physicalBytes)
}

// EfficiencyPercentage returns the filesystem-level savings percentage over
// summed logical/physical bytes: (Σlogical − Σphysical) / Σlogical × 100.
// Zero summed logical bytes yields 0.
func EfficiencyPercentage(totalLogicalBytes, totalPhysicalBytes int64) float64 {
	if totalLogicalBytes <= 0 {
		return 0
	}
	return float64(totalLogicalBytes-totalPhysicalBytes) / float64(totalLogicalBytes) * 100
}

// FormatRatio renders a volume efficiency ratio with two-decimal precision,
// or "N/A" for the zero sentinel.
func FormatRatio(ratio float64) string {
	if ratio <= 0 {
		return notApplicable
	}
	return fmt.Sprintf("%.2f", ratio)
}

// FormatEfficiencyPercentage renders the filesystem savings percentage,
// clamping implausible values (corrupted or partially populated accounting)
// to "N/A". The numeric report field stays unclamped for parity.
func FormatEfficiencyPercentage(pct float64) string {
	if pct > efficiencyClampPercent {
		return notApplicable
	}
	return fmt.Sprintf("%.2f", pct)
}
