package collector

import (
	"context"
	"strconv"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/pricing"
	"github.com/aws/aws-sdk-go/service/pricing/pricingiface"
	"github.com/sirupsen/logrus"
)

// regionLocations maps region codes to the location names the pricing
// catalog indexes by.
var regionLocations = map[string]string{
	"eu-west-1":      "EU (Ireland)",
	"us-east-1":      "US East (N. Virginia)",
	"eu-central-1":   "EU (Frankfurt)",
	"ap-southeast-1": "Asia Pacific (Singapore)",
	"ap-southeast-2": "Asia Pacific (Sydney)",
	"ap-northeast-1": "Asia Pacific (Tokyo)",
}

// PricingCatalog implements Pricing against the AWS price list API.
// Lookups are cached per region for the lifetime of the client, which is
// one invocation.
type PricingCatalog struct {
	api      pricingiface.PricingAPI
	fallback float64
	log      *logrus.Entry

	mu    sync.Mutex
	cache map[string]float64
}

// NewPricingCatalog creates a pricing client. fallback is returned whenever
// the catalog is unavailable or carries no matching rate.
func NewPricingCatalog(api pricingiface.PricingAPI, fallback float64, log *logrus.Entry) *PricingCatalog {
	return &PricingCatalog{
		api:      api,
		fallback: fallback,
		log:      log,
		cache:    make(map[string]float64),
	}
}

// UnitPriceGiB returns the SSD general-purpose FSx storage rate in USD per
// GiB-month for a region. Failures never propagate; the fallback rate is
// returned instead.
func (p *PricingCatalog) UnitPriceGiB(ctx context.Context, region string) float64 {
	p.mu.Lock()
	if price, ok := p.cache[region]; ok {
		p.mu.Unlock()
		return price
	}
	p.mu.Unlock()

	location := regionLocations[region]
	if location == "" {
		location = region
	}

	input := &pricing.GetProductsInput{
		ServiceCode: aws.String("AmazonFSx"),
		Filters: []*pricing.Filter{
			{Type: aws.String(pricing.FilterTypeTermMatch), Field: aws.String("location"), Value: aws.String(location)},
			{Type: aws.String(pricing.FilterTypeTermMatch), Field: aws.String("storageType"), Value: aws.String("SSD")},
			{Type: aws.String(pricing.FilterTypeTermMatch), Field: aws.String("deploymentOption"), Value: aws.String("General Purpose")},
		},
	}

	var out *pricing.GetProductsOutput
	err := withRetry(ctx, func() error {
		var err error
		out, err = p.api.GetProductsWithContext(ctx, input)
		return err
	})
	if err != nil {
		p.log.WithError(err).WithField("region", region).Error("pricing lookup failed, using fallback rate")
		return p.fallback
	}

	price := p.fallback
	if found, ok := extractGiBMonthRate(out.PriceList); ok {
		price = found
	}

	p.mu.Lock()
	p.cache[region] = price
	p.mu.Unlock()
	return price
}

// extractGiBMonthRate walks the price list documents looking for the first
// on-demand dimension priced per GB-month.
func extractGiBMonthRate(priceList []aws.JSONValue) (float64, bool) {
	for _, product := range priceList {
		terms, ok := product["terms"].(map[string]interface{})
		if !ok {
			continue
		}
		onDemand, ok := terms["OnDemand"].(map[string]interface{})
		if !ok {
			continue
		}
		for _, rawRate := range onDemand {
			rate, ok := rawRate.(map[string]interface{})
			if !ok {
				continue
			}
			dimensions, ok := rate["priceDimensions"].(map[string]interface{})
			if !ok {
				continue
			}
			for _, rawDim := range dimensions {
				dim, ok := rawDim.(map[string]interface{})
				if !ok {
					continue
				}
				unit, _ := dim["unit"].(string)
				if !strings.Contains(unit, "GB-Mo") {
					continue
				}
				perUnit, ok := dim["pricePerUnit"].(map[string]interface{})
				if !ok {
					continue
				}
				usd, _ := perUnit["USD"].(string)
				price, err := strconv.ParseFloat(usd, 64)
				if err != nil {
					continue
				}
				return price, true
			}
		}
	}
	return 0, false
}
