package service

import (
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gitlab.com/paramountdax-exchange/affiliate_api/model"
	"gitlab.com/paramountdax-exchange/affiliate_api/monitor"
	"gitlab.com/paramountdax-exchange/affiliate_api/queries"
	"gitlab.com/paramountdax-exchange/affiliate_api/service/tiers"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ConversionInput is sent by the store when a tracked visitor buys
type ConversionInput struct {
	ShortCode   string          `json:"short_code" binding:"required"`
	OrderID     string          `json:"order_id" binding:"required"`
	SaleAmount  decimal.Decimal `json:"sale_amount"`
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name"`
	Country     string          `json:"country"`
}

// RecordConversion creates a pending commission for the owner of the link
func (service *Service) RecordConversion(in ConversionInput) (*model.Commission, error) {
	if !in.SaleAmount.IsPositive() {
		return nil, validation("sale_amount", "must be greater than zero")
	}
	orderID := strings.TrimSpace(in.OrderID)
	if orderID == "" {
		return nil, validation("order_id", "is required")
	}

	tx := service.repo.Conn.Begin()
	if tx.Error != nil {
		return nil, classify(tx.Error, "commission", "begin transaction")
	}
	link := model.AffiliateLink{}
	if err := tx.First(&link, "short_code = ? AND status = ?", strings.TrimSpace(in.ShortCode), model.LinkStatusActive).Error; err != nil {
		tx.Rollback()
		return nil, classify(err, "link", "load link")
	}
	affiliate := model.Affiliate{}
	if err := tx.First(&affiliate, "id = ?", link.AffiliateID).Error; err != nil {
		tx.Rollback()
		return nil, classify(err, "affiliate", "load affiliate")
	}
	if !affiliate.IsActive() {
		tx.Rollback()
		return nil, validation("short_code", "the link owner is not active")
	}

	rate := service.cfg.Commission.RateFor(affiliate.Tier.String())
	sale := in.SaleAmount.Round(2)
	commission := &model.Commission{
		AffiliateID:      affiliate.ID,
		LinkID:           &link.ID,
		ProductName:      strings.TrimSpace(in.ProductName),
		OrderID:          orderID,
		Country:          normalizeCountry(in.Country),
		SaleAmount:       sale,
		CommissionRate:   rate,
		CommissionAmount: model.CommissionAmountFor(sale, rate),
		Status:           model.CommissionStatusPending,
	}
	if productID := strings.TrimSpace(in.ProductID); productID != "" {
		commission.ProductID = &productID
	}
	if err := tx.Create(commission).Error; err != nil {
		tx.Rollback()
		if queries.IsUniqueViolation(err) {
			return nil, &ConflictError{Message: "Conversion already recorded for this order"}
		}
		return nil, classify(err, "commission", "create commission")
	}
	err := tx.Model(&model.AffiliateLink{}).Where("id = ?", link.ID).
		UpdateColumn("total_conversions", gorm.Expr("total_conversions + 1")).Error
	if err != nil {
		tx.Rollback()
		return nil, classify(err, "link", "count conversion")
	}
	if err := tx.Commit().Error; err != nil {
		return nil, classify(err, "commission", "commit commission")
	}

	monitor.CommissionsTotal.WithLabelValues(model.CommissionStatusPending.String()).Inc()
	service.publish(EventCommissionCreated, commission.ID, commission)
	return commission, nil
}

// UpdateCommissionStatus approves or cancels a commission. Approving credits the
// affiliate and the link earnings and upgrades the affiliate tier when reached.
func (service *Service) UpdateCommissionStatus(id uint64, status string) (*model.Commission, error) {
	newStatus := model.CommissionStatus(strings.ToLower(strings.TrimSpace(status)))
	if newStatus != model.CommissionStatusApproved && newStatus != model.CommissionStatusCancelled {
		return nil, &InvalidStatusError{Status: status}
	}

	tx := service.repo.Conn.Begin()
	if tx.Error != nil {
		return nil, classify(tx.Error, "commission", "begin transaction")
	}
	commission := model.Commission{}
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&commission, "id = ?", id).Error; err != nil {
		tx.Rollback()
		return nil, classify(err, "commission", "load commission")
	}

	var err error
	switch {
	case commission.Status == newStatus:
		tx.Rollback()
		return &commission, nil
	case commission.Status == model.CommissionStatusPaid || commission.PayoutID != nil:
		err = &ConflictError{Message: "Paid commissions cannot be changed"}
	case commission.Status == model.CommissionStatusCancelled:
		err = &ConflictError{Message: "Cancelled commissions cannot be changed"}
	case newStatus == model.CommissionStatusApproved:
		err = service.approveCommission(tx, &commission)
	default:
		err = service.cancelCommission(tx, &commission)
	}
	if err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, classify(err, "commission", "commit commission")
	}

	monitor.CommissionsTotal.WithLabelValues(commission.Status.String()).Inc()
	service.publish(EventCommissionUpdated, commission.ID, map[string]interface{}{"status": commission.Status})
	return &commission, nil
}

func (service *Service) approveCommission(tx *gorm.DB, commission *model.Commission) error {
	now := service.now()
	err := tx.Model(&model.Commission{}).Where("id = ?", commission.ID).
		Updates(map[string]interface{}{"status": model.CommissionStatusApproved, "approved_at": now}).Error
	if err != nil {
		return classify(err, "commission", "approve commission")
	}
	commission.Status = model.CommissionStatusApproved
	commission.ApprovedAt = &now

	affiliate := model.Affiliate{}
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&affiliate, "id = ?", commission.AffiliateID).Error; err != nil {
		return classify(err, "affiliate", "load affiliate")
	}
	earnings := affiliate.TotalEarnings.Add(commission.CommissionAmount)
	tier := tiers.Upgrade(affiliate.Tier, earnings.InexactFloat64())
	err = tx.Model(&model.Affiliate{}).Where("id = ?", affiliate.ID).
		Updates(map[string]interface{}{"total_earnings": earnings, "tier": tier}).Error
	if err != nil {
		return classify(err, "affiliate", "credit earnings")
	}
	if tier != affiliate.Tier {
		log.Info().Str("section", "commissions").Str("action", "tier_upgrade").
			Uint64("affiliate_id", affiliate.ID).
			Str("from", affiliate.Tier.String()).
			Str("to", tier.String()).
			Msg("Affiliate tier upgraded")
	}

	if commission.LinkID != nil {
		err = tx.Model(&model.AffiliateLink{}).Where("id = ?", *commission.LinkID).
			UpdateColumn("total_earnings", gorm.Expr("total_earnings + ?", commission.CommissionAmount)).Error
		if err != nil {
			return classify(err, "link", "credit link earnings")
		}
	}
	return nil
}

// cancelCommission cancels a pending or approved commission. Earnings credited on
// approval are taken back but the tier is never lowered.
func (service *Service) cancelCommission(tx *gorm.DB, commission *model.Commission) error {
	wasApproved := commission.Status == model.CommissionStatusApproved
	err := tx.Model(&model.Commission{}).Where("id = ?", commission.ID).
		Update("status", model.CommissionStatusCancelled).Error
	if err != nil {
		return classify(err, "commission", "cancel commission")
	}
	commission.Status = model.CommissionStatusCancelled
	if !wasApproved {
		return nil
	}

	err = tx.Model(&model.Affiliate{}).Where("id = ?", commission.AffiliateID).
		UpdateColumn("total_earnings", gorm.Expr("GREATEST(total_earnings - ?, 0)", commission.CommissionAmount)).Error
	if err != nil {
		return classify(err, "affiliate", "debit earnings")
	}
	if commission.LinkID != nil {
		err = tx.Model(&model.AffiliateLink{}).Where("id = ?", *commission.LinkID).
			UpdateColumn("total_earnings", gorm.Expr("GREATEST(total_earnings - ?, 0)", commission.CommissionAmount)).Error
		if err != nil {
			return classify(err, "link", "debit link earnings")
		}
	}
	return nil
}

// GetCommissions returns a page of commissions, newest first
func (service *Service) GetCommissions(filter queries.CommissionFilter, page, limit int) (*model.CommissionList, error) {
	commissions := make([]model.Commission, 0)
	var rowCount int64

	q := filter.Apply(service.repo.ConnReader.Model(&model.Commission{}))
	if err := q.Session(&gorm.Session{}).Count(&rowCount).Error; err != nil {
		return nil, classify(err, "commissions", "count commissions")
	}
	db := queries.Paginate(q.Session(&gorm.Session{}).Order("commissions.created_at DESC"), page, limit).Find(&commissions)
	if db.Error != nil {
		return nil, classify(db.Error, "commissions", "list commissions")
	}
	return &model.CommissionList{
		Commissions: commissions,
		Meta:        pagingMeta(page, limit, rowCount, "created_at DESC", filter.Map()),
	}, nil
}
