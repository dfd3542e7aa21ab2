package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type PayoutStatus string

const (
	PayoutStatusProcessing PayoutStatus = "processing"
	PayoutStatusCompleted  PayoutStatus = "completed"
	PayoutStatusFailed     PayoutStatus = "failed"
	PayoutStatusCancelled  PayoutStatus = "cancelled"
)

func (s PayoutStatus) String() string {
	return string(s)
}

func (s PayoutStatus) IsValid() bool {
	switch s {
	case PayoutStatusProcessing,
		PayoutStatusCompleted,
		PayoutStatusFailed,
		PayoutStatusCancelled:
		return true
	}
	return false
}

// RevertsCommissions is true for the statuses that hand the commissions back to approved
func (s PayoutStatus) RevertsCommissions() bool {
	return s == PayoutStatusFailed || s == PayoutStatusCancelled
}

// Payout aggregates a set of approved commissions of one affiliate
type Payout struct {
	ID            uint64          `gorm:"primary_key" json:"id"`
	AffiliateID   uint64          `gorm:"not null" json:"affiliate_id"`
	Amount        decimal.Decimal `gorm:"type:numeric(20,2);not null" json:"amount"`
	Status        PayoutStatus    `gorm:"not null;default:processing" json:"status"`
	PaymentMethod string          `json:"payment_method"`
	TransactionID string          `json:"transaction_id"`
	Notes         string          `json:"notes"`
	StatementKey  string          `json:"statement_key,omitempty"`
	ProcessedAt   *time.Time      `json:"processed_at"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// PayoutItem links a payout with one of the commissions it paid
type PayoutItem struct {
	ID           uint64          `gorm:"primary_key" json:"id"`
	PayoutID     uint64          `gorm:"not null" json:"payout_id"`
	CommissionID uint64          `gorm:"not null" json:"commission_id"`
	Amount       decimal.Decimal `gorm:"type:numeric(20,2);not null" json:"amount"`
	CreatedAt    time.Time       `json:"created_at"`
}

// PayoutWithAffiliate is a payout row joined with the affiliate identity
type PayoutWithAffiliate struct {
	Payout
	Username string `json:"username"`
	Email    string `json:"email"`
}

// PayoutList paginated list
type PayoutList struct {
	Payouts []PayoutWithAffiliate `json:"payouts"`
	Meta    PagingMeta            `json:"meta"`
}

// PendingPayout is an affiliate whose approved commissions reached the threshold
type PendingPayout struct {
	AffiliateID     uint64          `json:"affiliate_id"`
	Username        string          `json:"username"`
	Email           string          `json:"email"`
	TotalPending    decimal.Decimal `json:"total_pending"`
	CommissionCount int64           `json:"commission_count"`
	Oldest          time.Time       `json:"oldest"`
	Newest          time.Time       `json:"newest"`
}

// ProcessedPayout is the result of paying one affiliate
type ProcessedPayout struct {
	AffiliateID     uint64          `json:"affiliate_id"`
	PayoutID        uint64          `json:"payout_id"`
	Amount          decimal.Decimal `json:"amount"`
	CommissionCount int             `json:"commission_count"`
}

// FailedPayout is an affiliate that could not be paid in a batch
type FailedPayout struct {
	AffiliateID uint64 `json:"affiliate_id"`
	Error       string `json:"error"`
}

// PayoutBatch is the response of a payout run
type PayoutBatch struct {
	Processed   []ProcessedPayout `json:"processed"`
	Failed      []FailedPayout    `json:"failed"`
	TotalAmount decimal.Decimal   `json:"total_amount"`
}

// PayoutStatusSummary totals per payout status
type PayoutStatusSummary struct {
	Status PayoutStatus    `json:"status"`
	Count  int64           `json:"count"`
	Total  decimal.Decimal `json:"total"`
}

// PayoutSummary godoc
type PayoutSummary struct {
	ByStatus           []PayoutStatusSummary `json:"by_status"`
	PendingAmount      decimal.Decimal       `json:"pending_amount"`
	PendingCommissions int64                 `json:"pending_commissions"`
	PendingAffiliates  int64                 `json:"pending_affiliates"`
	EligibleAffiliates int                   `json:"eligible_affiliates"`
	MinPayoutThreshold decimal.Decimal       `json:"min_payout_threshold"`
}
