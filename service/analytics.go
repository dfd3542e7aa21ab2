package service

import (
	"github.com/shopspring/decimal"
	"gitlab.com/paramountdax-exchange/affiliate_api/model"
	"gitlab.com/paramountdax-exchange/affiliate_api/service/growth"
	"gitlab.com/paramountdax-exchange/affiliate_api/service/tiers"
	"gorm.io/gorm"
)

const (
	dashboardDays        = 30
	dashboardTopLinks    = 5
	dashboardRecentLimit = 10
)

// periodTotals aggregates commissions and clicks of one window. An affiliateID of
// zero aggregates the whole program.
func periodTotals(db *gorm.DB, affiliateID uint64, w growth.Window) (model.PeriodTotals, error) {
	totals := model.PeriodTotals{}

	q := db.Table("commissions").
		Select("COALESCE(SUM(sale_amount), 0), COALESCE(SUM(commission_amount), 0), COUNT(*)").
		Where("status <> ? AND created_at >= ? AND created_at < ?", model.CommissionStatusCancelled, w.From, w.To)
	if affiliateID != 0 {
		q = q.Where("affiliate_id = ?", affiliateID)
	}
	if err := q.Row().Scan(&totals.Sales, &totals.Commissions, &totals.Conversions); err != nil {
		return totals, err
	}

	q = db.Table("link_clicks").Where("created_at >= ? AND created_at < ?", w.From, w.To)
	if affiliateID != 0 {
		q = q.Where("affiliate_id = ?", affiliateID)
	}
	err := q.Count(&totals.Clicks).Error
	return totals, err
}

func isZero(t model.PeriodTotals) bool {
	return t.Sales.IsZero() && t.Commissions.IsZero() && t.Clicks == 0 && t.Conversions == 0
}

// Dashboard returns the analytics rollup of an affiliate. Affiliates without any
// link or commission get placeholder data flagged as demo.
func (service *Service) Dashboard(affiliateID uint64) (Result, error) {
	affiliate, err := service.GetAffiliateByID(affiliateID)
	if err != nil {
		return Result{}, err
	}
	demo := func() interface{} { return demoDashboard(*affiliate, service.now()) }

	dashboard, state, err := service.loadDashboard(affiliate)
	return resolve("dashboard", state, dashboard, err, demo)
}

func (service *Service) loadDashboard(affiliate *model.Affiliate) (*model.Dashboard, ResultState, error) {
	db := service.repo.ConnReader
	dashboard := &model.Dashboard{
		Affiliate:         *affiliate,
		TierProgress:      tiers.ProgressOrMax(affiliate.Tier, affiliate.TotalEarnings.InexactFloat64()),
		Earnings:          model.EarningsBreakdown{Pending: decimal.Zero, Approved: decimal.Zero, Paid: decimal.Zero},
		TopLinks:          make([]model.AffiliateLinkWithStats, 0),
		RecentCommissions: make([]model.Commission, 0),
	}

	var linkCount int64
	row := db.Table("affiliate_links").
		Select("COUNT(*), COALESCE(SUM(total_clicks), 0), COALESCE(SUM(total_conversions), 0)").
		Where("affiliate_id = ?", affiliate.ID).
		Row()
	if err := row.Scan(&linkCount, &dashboard.TotalClicks, &dashboard.TotalConversions); err != nil {
		return nil, ResultOk, err
	}
	dashboard.ConversionRate = model.Rate(growth.ConversionRate(dashboard.TotalConversions, dashboard.TotalClicks))

	totals := make([]commissionStatusTotal, 0)
	err := db.Table("commissions").
		Select("status, COALESCE(SUM(commission_amount), 0) as total, COUNT(*) as count").
		Where("affiliate_id = ?", affiliate.ID).
		Group("status").
		Scan(&totals).Error
	if err != nil {
		return nil, ResultOk, err
	}
	var commissionCount int64
	for _, t := range totals {
		commissionCount += t.Count
		switch t.Status {
		case model.CommissionStatusPending:
			dashboard.Earnings.Pending = t.Total
		case model.CommissionStatusApproved:
			dashboard.Earnings.Approved = t.Total
		case model.CommissionStatusPaid:
			dashboard.Earnings.Paid = t.Total
		}
	}
	if linkCount == 0 && commissionCount == 0 {
		return dashboard, ResultEmpty, nil
	}

	current, previous := growth.Windows(service.now(), dashboardDays)
	if dashboard.Current, err = periodTotals(db, affiliate.ID, current); err != nil {
		return nil, ResultOk, err
	}
	if dashboard.Previous, err = periodTotals(db, affiliate.ID, previous); err != nil {
		return nil, ResultOk, err
	}
	dashboard.Growth = growthOf(dashboard.Current, dashboard.Previous)

	links := make([]model.AffiliateLink, 0)
	err = db.Where("affiliate_id = ? AND status <> ?", affiliate.ID, model.LinkStatusInactive).
		Order("total_earnings DESC, total_clicks DESC").
		Limit(dashboardTopLinks).
		Find(&links).Error
	if err != nil {
		return nil, ResultOk, err
	}
	for _, link := range links {
		dashboard.TopLinks = append(dashboard.TopLinks, withStats(link))
	}

	err = db.Where("affiliate_id = ?", affiliate.ID).
		Order("created_at DESC").
		Limit(dashboardRecentLimit).
		Find(&dashboard.RecentCommissions).Error
	if err != nil {
		return nil, ResultOk, err
	}
	return dashboard, ResultOk, nil
}

type commissionStatusTotal struct {
	Status model.CommissionStatus
	Total  decimal.Decimal
	Count  int64
}
