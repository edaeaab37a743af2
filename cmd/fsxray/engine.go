package main

import (
	"fmt"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/cloudwatch"
	"github.com/aws/aws-sdk-go/service/fsx"
	"github.com/aws/aws-sdk-go/service/pricing"
	"github.com/sirupsen/logrus"

	"github.com/dmitriimaksimovdevelop/fsxray/internal/analyzer"
	"github.com/dmitriimaksimovdevelop/fsxray/internal/collector"
	"github.com/dmitriimaksimovdevelop/fsxray/internal/config"
)

// newEngine wires the AWS SDK clients into collectors and builds the
// analysis engine for one region.
func newEngine(cfg config.Config) (*analyzer.Engine, error) {
	sess, err := session.NewSession(&aws.Config{
		Region: aws.String(cfg.Region),
	})
	if err != nil {
		return nil, fmt.Errorf("creating AWS session: %w", err)
	}

	metrics := collector.NewCloudWatchMetrics(cloudwatch.New(sess), cfg,
		logrus.WithField("component", "cloudwatch"))
	inventory := collector.NewFSxInventory(fsx.New(sess), metrics,
		logrus.WithField("component", "fsx"))
	// The pricing catalog only has endpoints in a handful of regions;
	// us-east-1 serves prices for all of them.
	catalog := collector.NewPricingCatalog(
		pricing.New(sess, aws.NewConfig().WithRegion("us-east-1")),
		cfg.DefaultPriceGiBMonth,
		logrus.WithField("component", "pricing"))

	return analyzer.NewEngine(cfg, inventory, metrics, catalog,
		logrus.WithField("component", "engine")), nil
}
