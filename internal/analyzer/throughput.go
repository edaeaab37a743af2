package analyzer

import (
	"github.com/dmitriimaksimovdevelop/fsxray/internal/config"
	"github.com/dmitriimaksimovdevelop/fsxray/internal/model"
)

// ThroughputPercentile normalizes raw per-interval byte sums into MB/s
// rates and returns the requested percentile. Missing samples are simply
// absent from the series, never substituted with zero; on sparse data the
// estimate therefore skews toward active intervals.
func ThroughputPercentile(byteSums []float64, periodSeconds int, percentile float64) float64 {
	if len(byteSums) == 0 || periodSeconds <= 0 {
		return 0
	}
	rates := make([]float64, len(byteSums))
	for i, b := range byteSums {
		rates[i] = (b / config.BytesPerMiB) / float64(periodSeconds)
	}
	return Percentile(rates, percentile)
}

// LongTermRates computes the 45-day average rate in bytes/s per direction,
// a stability baseline independent of the percentile window. A nil series
// (long-term data unavailable) yields zero for both directions.
func LongTermRates(series *model.LongTermSeries) model.LongTermIO {
	if series == nil {
		return model.LongTermIO{}
	}
	const windowSeconds = float64(config.LongTermWindowDays * 86400)
	return model.LongTermIO{
		Read45d:  sum(series.ReadBytes) / windowSeconds,
		Write45d: sum(series.WriteBytes) / windowSeconds,
	}
}

func sum(values []float64) float64 {
	var total float64
	for _, v := range values {
		total += v
	}
	return total
}
