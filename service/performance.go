package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gitlab.com/paramountdax-exchange/affiliate_api/model"
	"gitlab.com/paramountdax-exchange/affiliate_api/service/growth"
	"golang.org/x/sync/errgroup"
)

const (
	maxPerformanceDays  = 365
	defaultRankingLimit = 10
	maxRankingLimit     = 100
	realTimeRecent      = 10
	dayLayout           = "2006-01-02"
)

// PerformanceActions lists the values accepted by the admin performance route
var PerformanceActions = []string{"overview", "trends", "affiliates", "products", "conversion-funnel", "real-time", "tiers", "geographic"}

func clampDays(days int) int {
	if days <= 0 {
		return 30
	}
	if days > maxPerformanceDays {
		return maxPerformanceDays
	}
	return days
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return defaultRankingLimit
	}
	if limit > maxRankingLimit {
		return maxRankingLimit
	}
	return limit
}

// PerformanceOverview compares the program totals of the last days with the window before
func (service *Service) PerformanceOverview(days int) (Result, error) {
	days = clampDays(days)
	overview, state, err := service.loadOverview(days)
	return resolve("overview", state, overview, err, func() interface{} { return demoOverview(days) })
}

func (service *Service) loadOverview(days int) (*model.PerformanceOverview, ResultState, error) {
	db := service.repo.ConnReader
	current, previous := growth.Windows(service.now(), days)
	overview := &model.PerformanceOverview{Days: days}

	wg, _ := errgroup.WithContext(context.Background())

	wg.Go(func() error {
		var err error
		overview.Current, err = periodTotals(db, 0, current)
		return err
	})

	wg.Go(func() error {
		var err error
		overview.Previous, err = periodTotals(db, 0, previous)
		return err
	})

	wg.Go(func() error {
		return db.Table("affiliates").Where("status = ?", model.AffiliateStatusActive).Count(&overview.ActiveAffiliates).Error
	})

	wg.Go(func() error {
		return db.Table("affiliate_links").Where("status = ?", model.LinkStatusActive).Count(&overview.ActiveLinks).Error
	})

	if err := wg.Wait(); err != nil {
		return nil, ResultOk, err
	}

	overview.Growth = growthOf(overview.Current, overview.Previous)
	overview.ConversionRate = model.Rate(growth.ConversionRate(overview.Current.Conversions, overview.Current.Clicks))

	if isZero(overview.Current) && isZero(overview.Previous) && overview.ActiveLinks == 0 {
		return overview, ResultEmpty, nil
	}
	return overview, ResultOk, nil
}

type dailyCommissions struct {
	Day         string
	Sales       decimal.Decimal
	Commissions decimal.Decimal
	Conversions int64
}

type dailyClicks struct {
	Day    string
	Clicks int64
}

// PerformanceTrends returns one point per day, days without activity included
func (service *Service) PerformanceTrends(days int) (Result, error) {
	days = clampDays(days)
	now := service.now()
	points, state, err := service.loadTrends(days, now)
	return resolve("trends", state, points, err, func() interface{} { return demoTrends(days, now) })
}

func (service *Service) loadTrends(days int, now time.Time) ([]model.TrendPoint, ResultState, error) {
	db := service.repo.ConnReader
	window := trendWindow(now, days)

	commissions := make([]dailyCommissions, 0)
	err := db.Table("commissions").
		Select("to_char(created_at AT TIME ZONE 'UTC', 'YYYY-MM-DD') as day, COALESCE(SUM(sale_amount), 0) as sales, COALESCE(SUM(commission_amount), 0) as commissions, COUNT(*) as conversions").
		Where("status <> ? AND created_at >= ? AND created_at < ?", model.CommissionStatusCancelled, window.From, window.To).
		Group("day").
		Scan(&commissions).Error
	if err != nil {
		return nil, ResultOk, err
	}

	clicks := make([]dailyClicks, 0)
	err = db.Table("link_clicks").
		Select("to_char(created_at AT TIME ZONE 'UTC', 'YYYY-MM-DD') as day, COUNT(*) as clicks").
		Where("created_at >= ? AND created_at < ?", window.From, window.To).
		Group("day").
		Scan(&clicks).Error
	if err != nil {
		return nil, ResultOk, err
	}

	points := fillTrend(window, commissions, clicks)
	if len(commissions) == 0 && len(clicks) == 0 {
		return points, ResultEmpty, nil
	}
	return points, ResultOk, nil
}

// trendWindow covers the given number of UTC calendar days, today included
func trendWindow(now time.Time, days int) growth.Window {
	today := now.UTC().Truncate(24 * time.Hour)
	return growth.Window{From: today.AddDate(0, 0, -days+1), To: today.AddDate(0, 0, 1)}
}

func fillTrend(window growth.Window, commissions []dailyCommissions, clicks []dailyClicks) []model.TrendPoint {
	byDay := make(map[string]*model.TrendPoint)
	points := make([]model.TrendPoint, 0)
	for day := window.From.UTC(); day.Before(window.To); day = day.AddDate(0, 0, 1) {
		points = append(points, model.TrendPoint{
			Date:        day.Format(dayLayout),
			Sales:       decimal.Zero,
			Commissions: decimal.Zero,
		})
	}
	for i := range points {
		byDay[points[i].Date] = &points[i]
	}
	for _, c := range commissions {
		if p, ok := byDay[c.Day]; ok {
			p.Sales = c.Sales
			p.Commissions = c.Commissions
			p.Conversions = c.Conversions
		}
	}
	for _, c := range clicks {
		if p, ok := byDay[c.Day]; ok {
			p.Clicks = c.Clicks
		}
	}
	for i := range points {
		points[i].ConversionRate = model.Rate(growth.ConversionRate(points[i].Conversions, points[i].Clicks))
	}
	return points
}

// TopAffiliates ranks the affiliates by performance score
func (service *Service) TopAffiliates(limit int) ([]model.AffiliatePerformance, error) {
	rows := make([]model.AffiliatePerformance, 0)
	err := service.repo.ConnReader.Table("affiliates a").
		Select(`a.id as affiliate_id, a.username, a.tier, a.total_earnings,
			COALESCE(SUM(l.total_clicks), 0) as clicks,
			COALESCE(SUM(l.total_conversions), 0) as conversions`).
		Joins("LEFT JOIN affiliate_links l ON l.affiliate_id = a.id").
		Where("a.status = ?", model.AffiliateStatusActive).
		Group("a.id, a.username, a.tier, a.total_earnings").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	for i := range rows {
		rows[i].ConversionRate = model.Rate(growth.ConversionRate(rows[i].Conversions, rows[i].Clicks))
		rows[i].PerformanceScore = growth.PerformanceScore(rows[i].TotalEarnings.InexactFloat64(), float64(rows[i].ConversionRate), rows[i].Clicks)
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].PerformanceScore == rows[j].PerformanceScore {
			return rows[i].TotalEarnings.GreaterThan(rows[j].TotalEarnings)
		}
		return rows[i].PerformanceScore > rows[j].PerformanceScore
	})

	limit = clampLimit(limit)
	if len(rows) > limit {
		rows = rows[:limit]
	}
	return rows, nil
}

// ProductPerformance groups the non cancelled commissions of the last days by product
func (service *Service) ProductPerformance(days, limit int) ([]model.ProductPerformance, error) {
	window, _ := growth.Windows(service.now(), clampDays(days))
	rows := make([]model.ProductPerformance, 0)
	err := service.repo.ConnReader.Table("commissions").
		Select(`COALESCE(product_id, '') as product_id, MAX(product_name) as product_name,
			COALESCE(SUM(sale_amount), 0) as sales, COALESCE(SUM(commission_amount), 0) as commissions,
			COUNT(*) as conversions, COUNT(DISTINCT affiliate_id) as affiliates`).
		Where("status <> ? AND created_at >= ? AND created_at < ?", model.CommissionStatusCancelled, window.From, window.To).
		Group("COALESCE(product_id, '')").
		Order("sales DESC").
		Limit(clampLimit(limit)).
		Scan(&rows).Error
	return rows, err
}

// ConversionFunnel counts clicks, conversions, approved and paid commissions of the last days.
// The rate of each stage is relative to the previous stage.
func (service *Service) ConversionFunnel(days int) ([]model.FunnelStage, error) {
	db := service.repo.ConnReader
	window, _ := growth.Windows(service.now(), clampDays(days))

	var clicks int64
	err := db.Table("link_clicks").
		Where("created_at >= ? AND created_at < ?", window.From, window.To).
		Count(&clicks).Error
	if err != nil {
		return nil, err
	}

	var conversions, approved, paid int64
	row := db.Table("commissions").
		Select(`COUNT(*),
			COUNT(*) FILTER (WHERE status IN (?, ?)),
			COUNT(*) FILTER (WHERE status = ?)`,
			model.CommissionStatusApproved, model.CommissionStatusPaid, model.CommissionStatusPaid).
		Where("status <> ? AND created_at >= ? AND created_at < ?", model.CommissionStatusCancelled, window.From, window.To).
		Row()
	if err := row.Scan(&conversions, &approved, &paid); err != nil {
		return nil, err
	}

	return funnel([]string{"clicks", "conversions", "approved", "paid"}, []int64{clicks, conversions, approved, paid}), nil
}

func funnel(names []string, counts []int64) []model.FunnelStage {
	stages := make([]model.FunnelStage, 0, len(names))
	for i, name := range names {
		stage := model.FunnelStage{Stage: name, Count: counts[i], Rate: 100}
		if i > 0 {
			stage.Rate = model.Rate(growth.ConversionRate(counts[i], counts[i-1]))
		}
		stages = append(stages, stage)
	}
	return stages
}

// RealTime returns the last hour and last day counters with the latest commissions
func (service *Service) RealTime() (*model.RealTimeStats, error) {
	db := service.repo.ConnReader
	now := service.now()
	hour, day := now.Add(-time.Hour), now.Add(-24*time.Hour)
	stats := &model.RealTimeStats{GeneratedAt: now, RecentCommissions: make([]model.Commission, 0)}

	row := db.Table("link_clicks").
		Select("COUNT(*) FILTER (WHERE created_at >= ?), COUNT(*)", hour).
		Where("created_at >= ?", day).
		Row()
	if err := row.Scan(&stats.ClicksLastHour, &stats.ClicksLastDay); err != nil {
		return nil, err
	}

	row = db.Table("commissions").
		Select("COUNT(*) FILTER (WHERE created_at >= ?), COUNT(*)", hour).
		Where("status <> ? AND created_at >= ?", model.CommissionStatusCancelled, day).
		Row()
	if err := row.Scan(&stats.ConversionsLastHour, &stats.ConversionsLastDay); err != nil {
		return nil, err
	}

	err := db.Order("created_at DESC").Limit(realTimeRecent).Find(&stats.RecentCommissions).Error
	return stats, err
}

// TierPerformance returns the conversion rate of each tier, tiers without affiliates included
func (service *Service) TierPerformance() ([]model.SegmentPerformance, error) {
	rows := make([]model.SegmentPerformance, 0)
	err := service.repo.ConnReader.Table("affiliates a").
		Select(`a.tier as segment, COUNT(DISTINCT a.id) as affiliates,
			COALESCE(SUM(l.total_clicks), 0) as clicks,
			COALESCE(SUM(l.total_conversions), 0) as conversions,
			COALESCE(SUM(l.total_earnings), 0) as earnings`).
		Joins("LEFT JOIN affiliate_links l ON l.affiliate_id = a.id").
		Where("a.status = ?", model.AffiliateStatusActive).
		Group("a.tier").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	bySegment := make(map[string]model.SegmentPerformance, len(rows))
	for _, r := range rows {
		bySegment[r.Segment] = r
	}
	result := make([]model.SegmentPerformance, 0, len(model.Tiers))
	for _, tier := range model.Tiers {
		segment, ok := bySegment[tier.String()]
		if !ok {
			segment = model.SegmentPerformance{Segment: tier.String(), Earnings: decimal.Zero}
		}
		segment.ConversionRate = model.Rate(growth.ConversionRate(segment.Conversions, segment.Clicks))
		result = append(result, segment)
	}
	return result, nil
}

type countryCount struct {
	Country string
	Count   int64
}

type countryEarnings struct {
	Country     string
	Conversions int64
	Earnings    decimal.Decimal
}

// GeographicPerformance returns clicks and conversions of the last days per country code.
// Rows without a country are grouped under "unknown".
func (service *Service) GeographicPerformance(days int) ([]model.SegmentPerformance, error) {
	db := service.repo.ConnReader
	window, _ := growth.Windows(service.now(), clampDays(days))

	clicks := make([]countryCount, 0)
	err := db.Table("link_clicks").
		Select("COALESCE(NULLIF(country, ''), 'unknown') as country, COUNT(*) as count").
		Where("created_at >= ? AND created_at < ?", window.From, window.To).
		Group("1").
		Scan(&clicks).Error
	if err != nil {
		return nil, err
	}

	conversions := make([]countryEarnings, 0)
	err = db.Table("commissions").
		Select("COALESCE(NULLIF(country, ''), 'unknown') as country, COUNT(*) as conversions, COALESCE(SUM(commission_amount), 0) as earnings").
		Where("status <> ? AND created_at >= ? AND created_at < ?", model.CommissionStatusCancelled, window.From, window.To).
		Group("1").
		Scan(&conversions).Error
	if err != nil {
		return nil, err
	}

	return mergeCountries(clicks, conversions), nil
}

func mergeCountries(clicks []countryCount, conversions []countryEarnings) []model.SegmentPerformance {
	byCountry := make(map[string]*model.SegmentPerformance)
	get := func(country string) *model.SegmentPerformance {
		country = strings.ToUpper(country)
		if country == "UNKNOWN" {
			country = "unknown"
		}
		s, ok := byCountry[country]
		if !ok {
			s = &model.SegmentPerformance{Segment: country, Earnings: decimal.Zero}
			byCountry[country] = s
		}
		return s
	}
	for _, c := range clicks {
		get(c.Country).Clicks += c.Count
	}
	for _, c := range conversions {
		s := get(c.Country)
		s.Conversions += c.Conversions
		s.Earnings = s.Earnings.Add(c.Earnings)
	}

	result := make([]model.SegmentPerformance, 0, len(byCountry))
	for _, s := range byCountry {
		s.ConversionRate = model.Rate(growth.ConversionRate(s.Conversions, s.Clicks))
		result = append(result, *s)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Clicks == result[j].Clicks {
			return result[i].Segment < result[j].Segment
		}
		return result[i].Clicks > result[j].Clicks
	})
	return result
}
