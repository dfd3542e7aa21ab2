package service

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gitlab.com/paramountdax-exchange/affiliate_api/featureflags"
	"gitlab.com/paramountdax-exchange/affiliate_api/model"
	"gitlab.com/paramountdax-exchange/affiliate_api/monitor"
	"gitlab.com/paramountdax-exchange/affiliate_api/queries"
	"gitlab.com/paramountdax-exchange/affiliate_api/service/growth"
	"gitlab.com/paramountdax-exchange/affiliate_api/service/tiers"
)

// ResultState tells if a read returned real data or had to fall back
type ResultState int

const (
	ResultOk ResultState = iota
	// ResultEmpty when the source is reachable but holds no data yet
	ResultEmpty
	// ResultUnavailable when the source tables do not exist
	ResultUnavailable
)

func (s ResultState) String() string {
	switch s {
	case ResultEmpty:
		return "empty"
	case ResultUnavailable:
		return "unavailable"
	}
	return "ok"
}

// Result of a read with placeholder fallback. Demo is set when Data was generated.
type Result struct {
	State ResultState
	Data  interface{}
	Demo  bool
}

// resolve picks the returned data for the given state. Storage errors other
// than a missing table are returned as they are.
func resolve(section string, state ResultState, data interface{}, err error, demo func() interface{}) (Result, error) {
	if err != nil {
		if !queries.IsUndefinedTable(err) {
			return Result{}, err
		}
		state = ResultUnavailable
	}
	if state == ResultOk {
		return Result{State: state, Data: data}, nil
	}
	if !featureflags.IsEnabled(featureflags.DemoFallback) {
		if state == ResultUnavailable {
			return Result{}, err
		}
		return Result{State: state, Data: data}, nil
	}
	monitor.DemoResponsesTotal.WithLabelValues(section, state.String()).Inc()
	return Result{State: state, Data: demo(), Demo: true}, nil
}

func demoTotals(scale int64) model.PeriodTotals {
	return model.PeriodTotals{
		Sales:       decimal.NewFromInt(2450 * scale),
		Commissions: decimal.NewFromInt(245 * scale),
		Clicks:      1280 * scale,
		Conversions: 38 * scale,
	}
}

func growthOf(current, previous model.PeriodTotals) model.Growth {
	return model.Growth{
		Sales:       growth.Percent(current.Sales.InexactFloat64(), previous.Sales.InexactFloat64()),
		Commissions: growth.Percent(current.Commissions.InexactFloat64(), previous.Commissions.InexactFloat64()),
		Clicks:      growth.Percent(float64(current.Clicks), float64(previous.Clicks)),
		Conversions: growth.Percent(float64(current.Conversions), float64(previous.Conversions)),
	}
}

func demoDashboard(affiliate model.Affiliate, now time.Time) interface{} {
	current, previous := demoTotals(3), demoTotals(2)
	links := []model.AffiliateLinkWithStats{
		demoLink(affiliate.ID, "summer-sale", "https://shop.example.com/summer", 640, 21, 180, now),
		demoLink(affiliate.ID, "new-arrivals", "https://shop.example.com/new", 410, 11, 95, now),
		demoLink(affiliate.ID, "bundle-deals", "https://shop.example.com/bundles", 230, 6, 60, now),
	}
	commissions := make([]model.Commission, 0, 3)
	for i, sale := range []int64{120, 85, 240} {
		rate := decimal.NewFromInt(10)
		amount := decimal.NewFromInt(sale)
		commissions = append(commissions, model.Commission{
			ID:               uint64(i + 1),
			AffiliateID:      affiliate.ID,
			ProductName:      fmt.Sprintf("Sample product %d", i+1),
			OrderID:          fmt.Sprintf("DEMO-%04d", i+1),
			SaleAmount:       amount,
			CommissionRate:   rate,
			CommissionAmount: model.CommissionAmountFor(amount, rate),
			Status:           model.CommissionStatusApproved,
			CreatedAt:        now.Add(-time.Duration(i+1) * 24 * time.Hour),
		})
	}
	var clicks, conversions int64
	for _, l := range links {
		clicks += l.TotalClicks
		conversions += l.TotalConversions
	}
	return &model.Dashboard{
		Affiliate:        affiliate,
		TierProgress:     tiers.ProgressOrMax(affiliate.Tier, affiliate.TotalEarnings.InexactFloat64()),
		TotalClicks:      clicks,
		TotalConversions: conversions,
		ConversionRate:   model.Rate(growth.ConversionRate(conversions, clicks)),
		Earnings: model.EarningsBreakdown{
			Pending:  decimal.NewFromInt(85),
			Approved: decimal.NewFromInt(240),
			Paid:     decimal.NewFromInt(410),
		},
		Current:           current,
		Previous:          previous,
		Growth:            growthOf(current, previous),
		TopLinks:          links,
		RecentCommissions: commissions,
	}
}

func demoLink(affiliateID uint64, code, url string, clicks, conversions, earnings int64, now time.Time) model.AffiliateLinkWithStats {
	return model.AffiliateLinkWithStats{
		AffiliateLink: model.AffiliateLink{
			AffiliateID:      affiliateID,
			ShortCode:        code,
			OriginalURL:      url,
			Domain:           "example.com",
			Name:             code,
			Status:           model.LinkStatusActive,
			TotalClicks:      clicks,
			TotalConversions: conversions,
			TotalEarnings:    decimal.NewFromInt(earnings),
			CreatedAt:        now.AddDate(0, -1, 0),
		},
		ConversionRate: model.Rate(growth.ConversionRate(conversions, clicks)),
	}
}

func demoOverview(days int) interface{} {
	current, previous := demoTotals(10), demoTotals(8)
	return &model.PerformanceOverview{
		Days:             days,
		Current:          current,
		Previous:         previous,
		Growth:           growthOf(current, previous),
		ConversionRate:   model.Rate(growth.ConversionRate(current.Conversions, current.Clicks)),
		ActiveAffiliates: 42,
		ActiveLinks:      156,
	}
}

func demoTrends(days int, now time.Time) interface{} {
	points := make([]model.TrendPoint, 0, days)
	start := now.UTC().AddDate(0, 0, -days+1)
	for i := 0; i < days; i++ {
		clicks := int64(80 + (i*37)%60)
		conversions := int64(2 + (i*7)%5)
		sales := decimal.NewFromInt(conversions * 65)
		points = append(points, model.TrendPoint{
			Date:           start.AddDate(0, 0, i).Format("2006-01-02"),
			Sales:          sales,
			Commissions:    sales.Div(decimal.NewFromInt(10)).Round(2),
			Clicks:         clicks,
			Conversions:    conversions,
			ConversionRate: model.Rate(growth.ConversionRate(conversions, clicks)),
		})
	}
	return points
}
