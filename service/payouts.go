package service

import (
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gitlab.com/paramountdax-exchange/affiliate_api/conv"
	"gitlab.com/paramountdax-exchange/affiliate_api/featureflags"
	"gitlab.com/paramountdax-exchange/affiliate_api/model"
	"gitlab.com/paramountdax-exchange/affiliate_api/monitor"
	"gitlab.com/paramountdax-exchange/affiliate_api/queries"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DefaultPaymentMethod is used when a payout run does not name one
const DefaultPaymentMethod = "manual"

// PendingPayouts groups the approved commissions by affiliate and returns the
// affiliates whose total reaches the threshold, largest total first
func (service *Service) PendingPayouts(threshold decimal.Decimal) ([]model.PendingPayout, error) {
	pending := make([]model.PendingPayout, 0)
	db := service.repo.ConnReaderAdmin.Table("commissions c").
		Select("c.affiliate_id, a.username, a.email, " +
			"SUM(c.commission_amount) as total_pending, " +
			"COUNT(c.id) as commission_count, " +
			"MIN(c.created_at) as oldest, " +
			"MAX(c.created_at) as newest").
		Joins("JOIN affiliates a ON a.id = c.affiliate_id").
		Where("c.status = ?", model.CommissionStatusApproved).
		Group("c.affiliate_id, a.username, a.email").
		Having("SUM(c.commission_amount) >= ?", threshold).
		Order("total_pending DESC").
		Scan(&pending)
	if db.Error != nil {
		return nil, classify(db.Error, "commissions", "pending payouts")
	}
	return pending, nil
}

// ProcessPayouts pays the approved commissions of every given affiliate. Each
// affiliate is processed in its own transaction so a failure only rolls back
// that affiliate and is reported in the failed list.
func (service *Service) ProcessPayouts(affiliateIDs []uint64, paymentMethod, notes string) (*model.PayoutBatch, error) {
	if len(affiliateIDs) == 0 {
		return nil, validation("affiliate_ids", "at least one affiliate is required")
	}
	paymentMethod = strings.TrimSpace(paymentMethod)
	if paymentMethod == "" {
		paymentMethod = DefaultPaymentMethod
	}

	batch := &model.PayoutBatch{
		Processed:   make([]model.ProcessedPayout, 0, len(affiliateIDs)),
		Failed:      make([]model.FailedPayout, 0),
		TotalAmount: decimal.Zero,
	}
	seen := make(map[uint64]bool, len(affiliateIDs))
	for _, id := range affiliateIDs {
		if seen[id] {
			continue
		}
		seen[id] = true

		processed, err := service.processAffiliatePayout(id, paymentMethod, notes)
		if err != nil {
			log.Error().Err(err).
				Str("section", "payouts").
				Str("action", "process").
				Uint64("affiliate_id", id).
				Msg("Unable to process payout")
			batch.Failed = append(batch.Failed, model.FailedPayout{AffiliateID: id, Error: "unable to process payout"})
			monitor.PayoutsTotal.WithLabelValues("error").Inc()
			continue
		}
		if processed == nil {
			continue
		}
		batch.Processed = append(batch.Processed, *processed)
		batch.TotalAmount = batch.TotalAmount.Add(processed.Amount)

		monitor.PayoutsTotal.WithLabelValues(model.PayoutStatusProcessing.String()).Inc()
		monitor.PayoutAmountTotal.Add(conv.ToFloat(processed.Amount))
		service.publish(EventPayoutCreated, processed.PayoutID, processed)
	}
	return batch, nil
}

// processAffiliatePayout returns nil when the affiliate has no approved commissions
func (service *Service) processAffiliatePayout(affiliateID uint64, paymentMethod, notes string) (*model.ProcessedPayout, error) {
	tx := service.repo.Conn.Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}

	// lock the approved commissions of the affiliate so concurrent runs cannot pay them twice
	commissions := make([]model.Commission, 0)
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("affiliate_id = ? AND status = ?", affiliateID, model.CommissionStatusApproved).
		Order("id").
		Find(&commissions).Error
	if err != nil {
		tx.Rollback()
		return nil, err
	}
	if len(commissions) == 0 {
		tx.Rollback()
		return nil, nil
	}

	ids := make([]uint64, 0, len(commissions))
	amount := decimal.Zero
	for _, c := range commissions {
		ids = append(ids, c.ID)
		amount = amount.Add(c.CommissionAmount)
	}

	payout := &model.Payout{
		AffiliateID:   affiliateID,
		Amount:        amount,
		Status:        model.PayoutStatusProcessing,
		PaymentMethod: paymentMethod,
		Notes:         notes,
	}
	if err := tx.Create(payout).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	db := tx.Model(&model.Commission{}).
		Where("id IN ?", ids).
		Updates(map[string]interface{}{"status": model.CommissionStatusPaid, "payout_id": payout.ID})
	if db.Error != nil {
		tx.Rollback()
		return nil, db.Error
	}
	if db.RowsAffected != int64(len(ids)) {
		tx.Rollback()
		return nil, &ConflictError{Message: "commissions changed while processing the payout"}
	}

	items := make([]model.PayoutItem, 0, len(commissions))
	for _, c := range commissions {
		items = append(items, model.PayoutItem{PayoutID: payout.ID, CommissionID: c.ID, Amount: c.CommissionAmount})
	}
	if err := tx.Create(&items).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	return &model.ProcessedPayout{
		AffiliateID:     affiliateID,
		PayoutID:        payout.ID,
		Amount:          amount,
		CommissionCount: len(commissions),
	}, nil
}

// BulkPayouts pays every affiliate whose approved total reaches the threshold
func (service *Service) BulkPayouts(threshold decimal.Decimal, paymentMethod, notes string) (*model.PayoutBatch, error) {
	if !featureflags.IsEnabled(featureflags.PayoutsBulk) {
		return nil, validation("action", "bulk payouts are disabled")
	}
	pending, err := service.PendingPayouts(threshold)
	if err != nil {
		return nil, err
	}
	if len(pending) == 0 {
		return &model.PayoutBatch{Processed: []model.ProcessedPayout{}, Failed: []model.FailedPayout{}, TotalAmount: decimal.Zero}, nil
	}
	ids := make([]uint64, 0, len(pending))
	for _, p := range pending {
		ids = append(ids, p.AffiliateID)
	}
	return service.ProcessPayouts(ids, paymentMethod, notes)
}

// UpdatePayoutStatus moves a payout to the given status. Failed and cancelled
// payouts hand their commissions back to approved in the same transaction.
func (service *Service) UpdatePayoutStatus(id uint64, status, transactionID, notes string) (*model.Payout, error) {
	newStatus := model.PayoutStatus(strings.ToLower(strings.TrimSpace(status)))
	if !newStatus.IsValid() {
		return nil, &InvalidStatusError{Status: status}
	}

	tx := service.repo.Conn.Begin()
	if tx.Error != nil {
		return nil, classify(tx.Error, "payout", "begin transaction")
	}
	payout := model.Payout{}
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&payout, "id = ?", id).Error; err != nil {
		tx.Rollback()
		return nil, classify(err, "payout", "load payout")
	}
	if payout.Status.RevertsCommissions() && payout.Status != newStatus {
		tx.Rollback()
		return nil, &ConflictError{Message: "payout was already " + payout.Status.String()}
	}

	changes := map[string]interface{}{"status": newStatus}
	if transactionID != "" {
		changes["transaction_id"] = transactionID
		payout.TransactionID = transactionID
	}
	if notes != "" {
		changes["notes"] = notes
		payout.Notes = notes
	}
	if newStatus == model.PayoutStatusCompleted && payout.ProcessedAt == nil {
		now := service.now()
		changes["processed_at"] = now
		payout.ProcessedAt = &now
	}
	if err := tx.Model(&model.Payout{}).Where("id = ?", id).Updates(changes).Error; err != nil {
		tx.Rollback()
		return nil, classify(err, "payout", "update payout")
	}

	if newStatus.RevertsCommissions() {
		db := tx.Model(&model.Commission{}).
			Where("payout_id = ?", id).
			Updates(map[string]interface{}{"status": model.CommissionStatusApproved, "payout_id": gorm.Expr("NULL")})
		if db.Error != nil {
			tx.Rollback()
			return nil, classify(db.Error, "commissions", "revert commissions")
		}
		log.Info().Str("section", "payouts").Str("action", "revert").
			Uint64("payout_id", id).
			Int64("commissions", db.RowsAffected).
			Msg("Commissions reverted to approved")
	}

	if err := tx.Commit().Error; err != nil {
		return nil, classify(err, "payout", "commit payout")
	}
	previous := payout.Status
	payout.Status = newStatus

	monitor.PayoutsTotal.WithLabelValues(newStatus.String()).Inc()
	service.publish(EventPayoutUpdated, payout.ID, map[string]interface{}{"from": previous, "to": newStatus})
	if previous != newStatus && newStatus != model.PayoutStatusProcessing {
		service.afterPayoutUpdate(&payout)
	}
	return &payout, nil
}

// afterPayoutUpdate emails the affiliate and archives the statement of completed payouts
func (service *Service) afterPayoutUpdate(payout *model.Payout) {
	affiliate, err := service.GetAffiliateByID(payout.AffiliateID)
	if err != nil {
		log.Error().Err(err).Str("section", "payouts").Uint64("payout_id", payout.ID).Msg("Unable to load payout affiliate")
		return
	}
	settings, err := service.GetAffiliateSettings(payout.AffiliateID)
	if err != nil {
		settings = nil
	}
	service.notifyPayout(affiliate, settings, payout)
	if payout.Status == model.PayoutStatusCompleted && service.uploader != nil {
		go service.archiveStatement(payout.ID)
	}
}

// PayoutHistory returns a page of payouts joined with their affiliate
func (service *Service) PayoutHistory(filter queries.PayoutFilter, page, limit int) (*model.PayoutList, error) {
	payouts := make([]model.PayoutWithAffiliate, 0)
	var rowCount int64

	q := filter.Apply(service.repo.ConnReaderAdmin.Table("payouts").
		Joins("JOIN affiliates ON affiliates.id = payouts.affiliate_id"))
	if err := q.Session(&gorm.Session{}).Select("count(*) as total").Row().Scan(&rowCount); err != nil {
		return nil, classify(err, "payouts", "count payouts")
	}
	db := queries.Paginate(q.Session(&gorm.Session{}).
		Select("payouts.*, affiliates.username, affiliates.email").
		Order("payouts.created_at DESC"), page, limit).
		Scan(&payouts)
	if db.Error != nil {
		return nil, classify(db.Error, "payouts", "list payouts")
	}
	return &model.PayoutList{
		Payouts: payouts,
		Meta:    pagingMeta(page, limit, rowCount, "created_at DESC", filter.Map()),
	}, nil
}

// GetPayoutSummary totals payouts per status and the approved commissions waiting for a payout
func (service *Service) GetPayoutSummary(threshold decimal.Decimal) (*model.PayoutSummary, error) {
	summary := &model.PayoutSummary{ByStatus: make([]model.PayoutStatusSummary, 0), MinPayoutThreshold: threshold}

	db := service.repo.ConnReaderAdmin.Table("payouts").
		Select("status, COUNT(*) as count, COALESCE(SUM(amount), 0) as total").
		Group("status").
		Order("status").
		Scan(&summary.ByStatus)
	if db.Error != nil {
		return nil, classify(db.Error, "payouts", "payout summary")
	}

	row := service.repo.ConnReaderAdmin.Table("commissions").
		Select("COALESCE(SUM(commission_amount), 0), COUNT(*), COUNT(DISTINCT affiliate_id)").
		Where("status = ?", model.CommissionStatusApproved).
		Row()
	if err := row.Scan(&summary.PendingAmount, &summary.PendingCommissions, &summary.PendingAffiliates); err != nil {
		return nil, classify(err, "commissions", "pending summary")
	}

	eligible, err := service.PendingPayouts(threshold)
	if err != nil {
		return nil, err
	}
	summary.EligibleAffiliates = len(eligible)
	return summary, nil
}

// GetPayout godoc
func (service *Service) GetPayout(id uint64) (*model.Payout, error) {
	payout := model.Payout{}
	if db := service.repo.ConnReaderAdmin.First(&payout, "id = ?", id); db.Error != nil {
		return nil, classify(db.Error, "payout", "load payout")
	}
	return &payout, nil
}
