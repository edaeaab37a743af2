package collector

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/cloudwatch"
	"github.com/aws/aws-sdk-go/service/cloudwatch/cloudwatchiface"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/dmitriimaksimovdevelop/fsxray/internal/config"
	"github.com/dmitriimaksimovdevelop/fsxray/internal/model"
)

const fsxNamespace = "AWS/FSx"

// Volume storage accounting metrics backing the efficiency calculation.
const (
	metricLogicalDataStored = "LogicalDataStored"
	metricStorageUsed       = "StorageUsed"
)

// cwRequestRate bounds GetMetricStatistics calls so a wide fleet does not
// trip the monitoring API's throttling.
const cwRequestRate = 10

// CloudWatchMetrics implements Metrics (and StorageAccounting) against the
// CloudWatch statistics API.
type CloudWatchMetrics struct {
	api     cloudwatchiface.CloudWatchAPI
	cfg     config.Config
	limiter *rate.Limiter
	log     *logrus.Entry
	now     func() time.Time
}

// NewCloudWatchMetrics creates a metrics client for one invocation.
func NewCloudWatchMetrics(api cloudwatchiface.CloudWatchAPI, cfg config.Config, log *logrus.Entry) *CloudWatchMetrics {
	return &CloudWatchMetrics{
		api:     api,
		cfg:     cfg,
		limiter: rate.NewLimiter(rate.Limit(cwRequestRate), cwRequestRate),
		log:     log,
		now:     time.Now,
	}
}

// ByteSumSeries returns the per-interval byte sums for one metric over the
// lookback window, ordered by timestamp. Gaps in the series stay absent.
func (m *CloudWatchMetrics) ByteSumSeries(ctx context.Context, metric, fsid, volid string) ([]float64, error) {
	if fsid == "" || volid == "" {
		return nil, nil
	}
	end := m.now().UTC()
	start := end.Add(-time.Duration(m.cfg.LookbackDays) * 24 * time.Hour)

	datapoints, err := m.get(ctx, metric, fsid, volid, start, end, int64(m.cfg.PeriodSeconds), cloudwatch.StatisticSum)
	if err != nil {
		return nil, err
	}

	series := make([]float64, 0, len(datapoints))
	for _, dp := range datapoints {
		series = append(series, aws.Float64Value(dp.Sum))
	}
	return series, nil
}

// LongTermSeries returns 45 days of read/write byte sums at fixed 5-minute
// granularity, independent of the percentile window.
func (m *CloudWatchMetrics) LongTermSeries(ctx context.Context, fsid, volid string) (*model.LongTermSeries, error) {
	end := m.now().UTC()
	start := end.Add(-config.LongTermWindowDays * 24 * time.Hour)

	series := &model.LongTermSeries{}
	for _, metric := range []string{MetricDataReadBytes, MetricDataWriteBytes} {
		datapoints, err := m.get(ctx, metric, fsid, volid, start, end, config.LongTermPeriodSeconds, cloudwatch.StatisticSum)
		if err != nil {
			return nil, fmt.Errorf("long-term %s for %s/%s: %w", metric, fsid, volid, err)
		}
		sums := make([]float64, 0, len(datapoints))
		for _, dp := range datapoints {
			sums = append(sums, aws.Float64Value(dp.Sum))
		}
		if metric == MetricDataReadBytes {
			series.ReadBytes = sums
		} else {
			series.WriteBytes = sums
		}
	}
	return series, nil
}

// VolumeStorageBytes returns the most recent logical and physical byte
// counts for a volume, read from the storage accounting metrics.
func (m *CloudWatchMetrics) VolumeStorageBytes(ctx context.Context, fsid, volid string) (int64, int64, error) {
	logical, err := m.latestAverage(ctx, metricLogicalDataStored, fsid, volid)
	if err != nil {
		return 0, 0, err
	}
	physical, err := m.latestAverage(ctx, metricStorageUsed, fsid, volid)
	if err != nil {
		return 0, 0, err
	}
	return int64(logical), int64(physical), nil
}

func (m *CloudWatchMetrics) latestAverage(ctx context.Context, metric, fsid, volid string) (float64, error) {
	end := m.now().UTC()
	start := end.Add(-time.Duration(m.cfg.LookbackDays) * 24 * time.Hour)

	datapoints, err := m.get(ctx, metric, fsid, volid, start, end, int64(m.cfg.PeriodSeconds), cloudwatch.StatisticAverage)
	if err != nil {
		return 0, err
	}
	if len(datapoints) == 0 {
		return 0, nil
	}
	return aws.Float64Value(datapoints[len(datapoints)-1].Average), nil
}

// get fetches datapoints for one metric/dimension pair, sorted by timestamp.
func (m *CloudWatchMetrics) get(ctx context.Context, metric, fsid, volid string, start, end time.Time, period int64, statistic string) ([]*cloudwatch.Datapoint, error) {
	if err := m.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	input := &cloudwatch.GetMetricStatisticsInput{
		Namespace:  aws.String(fsxNamespace),
		MetricName: aws.String(metric),
		Dimensions: []*cloudwatch.Dimension{
			{Name: aws.String("FileSystemId"), Value: aws.String(fsid)},
			{Name: aws.String("VolumeId"), Value: aws.String(volid)},
		},
		StartTime:  aws.Time(start),
		EndTime:    aws.Time(end),
		Period:     aws.Int64(period),
		Statistics: []*string{aws.String(statistic)},
	}

	var out *cloudwatch.GetMetricStatisticsOutput
	err := withRetry(ctx, func() error {
		var err error
		out, err = m.api.GetMetricStatisticsWithContext(ctx, input)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("get %s for %s/%s: %w", metric, fsid, volid, err)
	}

	datapoints := out.Datapoints
	sort.Slice(datapoints, func(i, j int) bool {
		return aws.TimeValue(datapoints[i].Timestamp).Before(aws.TimeValue(datapoints[j].Timestamp))
	})
	return datapoints, nil
}
