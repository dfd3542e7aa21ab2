package model

/*
 * Copyright © 2018-2019 Around25 SRL <office@around25.com>
 *
 * Licensed under the Around25 Wallet License Agreement (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.around25.com/licenses/EXCHANGE_LICENSE
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 *
 * @author		Cosmin Harangus <cosmin@around25.com>
 * @copyright 2018-2019 Around25 SRL <office@around25.com>
 * @license 	EXCHANGE_LICENSE
 */

import (
	"time"

	"github.com/shopspring/decimal"
)

// AffiliateStatus defined the list of possible affiliate statuses
type AffiliateStatus string

const (
	// AffiliateStatusPending when the account exists but was not activated yet
	AffiliateStatusPending AffiliateStatus = "pending"
	// AffiliateStatusActive when the affiliate can use the platform
	AffiliateStatusActive AffiliateStatus = "active"
	// AffiliateStatusSuspended when the affiliate is blocked by an admin
	AffiliateStatusSuspended AffiliateStatus = "suspended"
	// AffiliateStatusInactive when the affiliate left the program
	AffiliateStatusInactive AffiliateStatus = "inactive"
)

func (s AffiliateStatus) String() string {
	return string(s)
}

func (s AffiliateStatus) IsValid() bool {
	switch s {
	case AffiliateStatusPending,
		AffiliateStatusActive,
		AffiliateStatusSuspended,
		AffiliateStatusInactive:
		return true
	}
	return false
}

// Role of an account. Admin access is granted only by role, never by tier.
type Role string

const (
	RoleAffiliate Role = "affiliate"
	RoleAdmin     Role = "admin"
)

func (r Role) String() string {
	return string(r)
}

func (r Role) IsValid() bool {
	return r == RoleAffiliate || r == RoleAdmin
}

// Affiliate structure
type Affiliate struct {
	ID            uint64          `gorm:"primary_key" json:"id"`
	Username      string          `gorm:"unique;not null" json:"username"`
	Email         string          `gorm:"unique;not null" json:"email"`
	Phone         *string         `gorm:"unique" json:"phone"`
	FullName      string          `json:"full_name"`
	Role          Role            `gorm:"not null;default:affiliate" json:"role"`
	Tier          Tier            `gorm:"not null;default:bronze" json:"tier"`
	Status        AffiliateStatus `gorm:"not null;default:pending" json:"status"`
	TotalEarnings decimal.Decimal `gorm:"type:numeric(20,2);not null;default:0" json:"total_earnings"`
	APIKeyPrefix  string          `gorm:"column:api_key_prefix;unique" json:"-"`
	APIKeyHash    string          `gorm:"column:api_key_hash" json:"-"`
	ApplicationID *uint64         `json:"application_id"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// IsActive godoc
func (a *Affiliate) IsActive() bool {
	return a.Status == AffiliateStatusActive
}

// IsAdmin godoc
func (a *Affiliate) IsAdmin() bool {
	return a.Role == RoleAdmin
}

// AffiliateSettings holds per affiliate preferences
type AffiliateSettings struct {
	ID              uint64          `gorm:"primary_key" json:"-"`
	AffiliateID     uint64          `gorm:"unique;not null" json:"affiliate_id"`
	PaymentMethod   string          `json:"payment_method"`
	PaymentDetails  string          `json:"payment_details"`
	PayoutThreshold decimal.Decimal `gorm:"type:numeric(20,2)" json:"payout_threshold"`
	Notifications   JSONMap         `gorm:"type:jsonb" json:"notifications"`
	Language        string          `json:"language"`
	Timezone        string          `json:"timezone"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

func (AffiliateSettings) TableName() string {
	return "affiliate_settings"
}

// NewAffiliateSettings creates the default settings row of a new affiliate
func NewAffiliateSettings(affiliateID uint64, threshold decimal.Decimal) *AffiliateSettings {
	return &AffiliateSettings{
		AffiliateID:     affiliateID,
		PaymentMethod:   "paypal",
		PayoutThreshold: threshold,
		Notifications: JSONMap{
			"email_commissions": true,
			"email_payouts":     true,
		},
		Language: "en",
		Timezone: "UTC",
	}
}

// AffiliateProfile is the affiliate with the computed tier progress
type AffiliateProfile struct {
	Affiliate
	Progress *TierProgress      `json:"tier_progress"`
	Settings *AffiliateSettings `json:"settings,omitempty"`
}

// TierProgress describes how far an affiliate is from the next tier
type TierProgress struct {
	ProgressPercent  float64 `json:"progress_percent"`
	NextTier         *Tier   `json:"next_tier"`
	RequiredEarnings float64 `json:"required_earnings"`
}

// AffiliateList paginated list
type AffiliateList struct {
	Affiliates []Affiliate `json:"affiliates"`
	Meta       PagingMeta  `json:"meta"`
}
