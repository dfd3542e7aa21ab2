package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type CommissionStatus string

const (
	CommissionStatusPending   CommissionStatus = "pending"
	CommissionStatusApproved  CommissionStatus = "approved"
	CommissionStatusPaid      CommissionStatus = "paid"
	CommissionStatusCancelled CommissionStatus = "cancelled"
)

func (s CommissionStatus) String() string {
	return string(s)
}

func (s CommissionStatus) IsValid() bool {
	switch s {
	case CommissionStatusPending,
		CommissionStatusApproved,
		CommissionStatusPaid,
		CommissionStatusCancelled:
		return true
	}
	return false
}

// Commission is the credit owed to an affiliate for one attributed sale.
// PayoutID is set if and only if the status is paid.
type Commission struct {
	ID               uint64           `gorm:"primary_key" json:"id"`
	AffiliateID      uint64           `gorm:"not null" json:"affiliate_id"`
	LinkID           *uint64          `json:"link_id"`
	ProductID        *string          `json:"product_id"`
	ProductName      string           `json:"product_name"`
	OrderID          string           `gorm:"not null" json:"order_id"`
	Country          string           `json:"country"`
	SaleAmount       decimal.Decimal  `gorm:"type:numeric(20,2);not null" json:"sale_amount"`
	CommissionRate   decimal.Decimal  `gorm:"type:numeric(6,2);not null" json:"commission_rate"`
	CommissionAmount decimal.Decimal  `gorm:"type:numeric(20,2);not null" json:"commission_amount"`
	Status           CommissionStatus `gorm:"not null;default:pending" json:"status"`
	PayoutID         *uint64          `json:"payout_id"`
	ApprovedAt       *time.Time       `json:"approved_at"`
	CreatedAt        time.Time        `json:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at"`
}

// CommissionAmountFor computes sale * rate / 100 rounded to cents
func CommissionAmountFor(sale, rate decimal.Decimal) decimal.Decimal {
	return sale.Mul(rate).Div(decimal.NewFromInt(100)).Round(2)
}

// CommissionList paginated list
type CommissionList struct {
	Commissions []Commission `json:"commissions"`
	Meta        PagingMeta   `json:"meta"`
}
