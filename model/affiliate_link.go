package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type LinkStatus string

const (
	LinkStatusActive   LinkStatus = "active"
	LinkStatusPaused   LinkStatus = "paused"
	LinkStatusInactive LinkStatus = "inactive"
)

func (s LinkStatus) String() string {
	return string(s)
}

func (s LinkStatus) IsValid() bool {
	switch s {
	case LinkStatusActive, LinkStatusPaused, LinkStatusInactive:
		return true
	}
	return false
}

// AffiliateLink is a tracked link owned by one affiliate
type AffiliateLink struct {
	ID               uint64          `gorm:"primary_key" json:"id"`
	AffiliateID      uint64          `gorm:"not null" json:"affiliate_id"`
	ShortCode        string          `gorm:"unique;not null" json:"short_code"`
	OriginalURL      string          `gorm:"column:original_url;not null" json:"original_url"`
	Domain           string          `json:"domain"`
	Name             string          `json:"name"`
	Status           LinkStatus      `gorm:"not null;default:active" json:"status"`
	TotalClicks      int64           `gorm:"not null;default:0" json:"total_clicks"`
	TotalConversions int64           `gorm:"not null;default:0" json:"total_conversions"`
	TotalEarnings    decimal.Decimal `gorm:"type:numeric(20,2);not null;default:0" json:"total_earnings"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// AffiliateLinkWithStats adds the computed conversion rate
type AffiliateLinkWithStats struct {
	AffiliateLink
	ConversionRate Rate `json:"conversion_rate"`
}

// AffiliateLinkList paginated list
type AffiliateLinkList struct {
	Links []AffiliateLinkWithStats `json:"links"`
	Meta  PagingMeta               `json:"meta"`
}

// LinkClick is one tracked visit of a link
type LinkClick struct {
	ID          uint64    `gorm:"primary_key" json:"id"`
	LinkID      uint64    `gorm:"not null" json:"link_id"`
	AffiliateID uint64    `gorm:"not null" json:"affiliate_id"`
	IPHash      string    `gorm:"column:ip_hash" json:"-"`
	Country     string    `json:"country"`
	Device      string    `json:"device"`
	Browser     string    `json:"browser"`
	OS          string    `gorm:"column:os" json:"os"`
	Referrer    string    `json:"referrer"`
	CreatedAt   time.Time `json:"created_at"`
}
