package model

import (
	"math"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// Rate is a percent rendered with exactly 2 decimals
type Rate float64

func (r Rate) String() string {
	return strconv.FormatFloat(float64(r), 'f', 2, 64)
}

// MarshalJSON keeps the number type, 5 is written as 5.00
func (r Rate) MarshalJSON() ([]byte, error) {
	if math.IsNaN(float64(r)) || math.IsInf(float64(r), 0) {
		return []byte("0.00"), nil
	}
	return []byte(r.String()), nil
}

// PeriodTotals aggregates one time window
type PeriodTotals struct {
	Sales       decimal.Decimal `json:"sales"`
	Commissions decimal.Decimal `json:"commissions"`
	Clicks      int64           `json:"clicks"`
	Conversions int64           `json:"conversions"`
}

// Growth holds the growth percent of each metric between two windows
type Growth struct {
	Sales       float64 `json:"sales"`
	Commissions float64 `json:"commissions"`
	Clicks      float64 `json:"clicks"`
	Conversions float64 `json:"conversions"`
}

// EarningsBreakdown totals commissions per status
type EarningsBreakdown struct {
	Pending  decimal.Decimal `json:"pending"`
	Approved decimal.Decimal `json:"approved"`
	Paid     decimal.Decimal `json:"paid"`
}

// Dashboard is the per affiliate analytics rollup
type Dashboard struct {
	Affiliate         Affiliate                `json:"affiliate"`
	TierProgress      TierProgress             `json:"tier_progress"`
	TotalClicks       int64                    `json:"total_clicks"`
	TotalConversions  int64                    `json:"total_conversions"`
	ConversionRate    Rate                     `json:"conversion_rate"`
	Earnings          EarningsBreakdown        `json:"earnings"`
	Current           PeriodTotals             `json:"current_period"`
	Previous          PeriodTotals             `json:"previous_period"`
	Growth            Growth                   `json:"growth"`
	TopLinks          []AffiliateLinkWithStats `json:"top_links"`
	RecentCommissions []Commission             `json:"recent_commissions"`
}

// PerformanceOverview compares the current window with the previous one
type PerformanceOverview struct {
	Days             int          `json:"days"`
	Current          PeriodTotals `json:"current_period"`
	Previous         PeriodTotals `json:"previous_period"`
	Growth           Growth       `json:"growth"`
	ConversionRate   Rate         `json:"conversion_rate"`
	ActiveAffiliates int64        `json:"active_affiliates"`
	ActiveLinks      int64        `json:"active_links"`
}

// TrendPoint is one day of the trends series
type TrendPoint struct {
	Date           string          `json:"date"`
	Sales          decimal.Decimal `json:"sales"`
	Commissions    decimal.Decimal `json:"commissions"`
	Clicks         int64           `json:"clicks"`
	Conversions    int64           `json:"conversions"`
	ConversionRate Rate            `json:"conversion_rate"`
}

// AffiliatePerformance is one row of the affiliate ranking
type AffiliatePerformance struct {
	AffiliateID      uint64          `json:"affiliate_id"`
	Username         string          `json:"username"`
	Tier             Tier            `json:"tier"`
	TotalEarnings    decimal.Decimal `json:"total_earnings"`
	Clicks           int64           `json:"clicks"`
	Conversions      int64           `json:"conversions"`
	ConversionRate   Rate            `json:"conversion_rate"`
	PerformanceScore int             `json:"performance_score"`
}

// ProductPerformance groups commissions by product
type ProductPerformance struct {
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name"`
	Sales       decimal.Decimal `json:"sales"`
	Commissions decimal.Decimal `json:"commissions"`
	Conversions int64           `json:"conversions"`
	Affiliates  int64           `json:"affiliates"`
}

// FunnelStage is one stage of the conversion funnel
type FunnelStage struct {
	Stage string  `json:"stage"`
	Count int64   `json:"count"`
	Rate  Rate    `json:"rate"`
}

// RealTimeStats godoc
type RealTimeStats struct {
	ClicksLastHour      int64        `json:"clicks_last_hour"`
	ConversionsLastHour int64        `json:"conversions_last_hour"`
	ClicksLastDay       int64        `json:"clicks_last_day"`
	ConversionsLastDay  int64        `json:"conversions_last_day"`
	RecentCommissions   []Commission `json:"recent_commissions"`
	GeneratedAt         time.Time    `json:"generated_at"`
}

// SegmentPerformance is the conversion rate of a grouping (tier, country)
type SegmentPerformance struct {
	Segment        string          `json:"segment"`
	Affiliates     int64           `json:"affiliates,omitempty"`
	Clicks         int64           `json:"clicks"`
	Conversions    int64           `json:"conversions"`
	Earnings       decimal.Decimal `json:"earnings"`
	ConversionRate Rate            `json:"conversion_rate"`
}
