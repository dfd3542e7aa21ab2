package model

import (
	"time"

	"github.com/lib/pq"
)

type ApplicationStatus string

const (
	ApplicationStatusPending  ApplicationStatus = "pending"
	ApplicationStatusApproved ApplicationStatus = "approved"
	ApplicationStatusRejected ApplicationStatus = "rejected"
)

func (s ApplicationStatus) String() string {
	return string(s)
}

func (s ApplicationStatus) IsValid() bool {
	switch s {
	case ApplicationStatusPending, ApplicationStatusApproved, ApplicationStatusRejected:
		return true
	}
	return false
}

// Application is the intake form of a prospective affiliate
type Application struct {
	ID                        uint64            `gorm:"primary_key" json:"id"`
	Username                  string            `gorm:"not null" json:"username"`
	Email                     string            `gorm:"not null" json:"email"`
	Phone                     *string           `json:"phone"`
	FullName                  string            `json:"full_name"`
	Website                   string            `json:"website"`
	MarketingExperience       string            `json:"marketing_experience"`
	AudienceSize              int64             `json:"audience_size"`
	PrimaryPlatforms          pq.StringArray    `gorm:"type:text[]" json:"primary_platforms"`
	PreviousAffiliatePrograms pq.StringArray    `gorm:"type:text[]" json:"previous_affiliate_programs"`
	ExpectedMonthlySales      int64             `json:"expected_monthly_sales"`
	PromotionStrategy         string            `json:"promotion_strategy"`
	ApplicationScore          int               `gorm:"not null" json:"application_score"`
	Status                    ApplicationStatus `gorm:"not null;default:pending" json:"status"`
	ReviewNotes               string            `json:"review_notes"`
	ReviewedBy                string            `json:"reviewed_by"`
	ReviewedAt                *time.Time        `json:"reviewed_at"`
	AffiliateID               *uint64           `json:"affiliate_id"`
	CreatedAt                 time.Time         `json:"created_at"`
	UpdatedAt                 time.Time         `json:"updated_at"`
}

func (Application) TableName() string {
	return "affiliate_applications"
}

// ApplicationList paginated list
type ApplicationList struct {
	Applications []Application `json:"applications"`
	Meta         PagingMeta    `json:"meta"`
}

// ApplicationResult is returned to the applicant after submission
type ApplicationResult struct {
	ApplicationID    uint64            `json:"application_id"`
	Status           ApplicationStatus `json:"status"`
	ApplicationScore int               `json:"application_score"`
	AffiliateID      *uint64           `json:"affiliate_id,omitempty"`
	APIKey           string            `json:"api_key,omitempty"`
}
