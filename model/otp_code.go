package model

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

type OTPChannel string

const (
	OTPChannelEmail OTPChannel = "email"
	OTPChannelPhone OTPChannel = "phone"
)

// OTPCode is a one time login code, only the bcrypt hash is stored
type OTPCode struct {
	ID          uint64     `gorm:"primary_key" json:"id"`
	AffiliateID uint64     `gorm:"not null" json:"affiliate_id"`
	Channel     OTPChannel `gorm:"not null" json:"channel"`
	Destination string     `gorm:"not null" json:"destination"`
	CodeHash    string     `gorm:"not null" json:"-"`
	Attempts    int        `gorm:"not null;default:0" json:"attempts"`
	ExpiresAt   time.Time  `json:"expires_at"`
	UsedAt      *time.Time `json:"used_at"`
	CreatedAt   time.Time  `json:"created_at"`
}

// NewOTPCode hashes the given code for storage
func NewOTPCode(affiliateID uint64, channel OTPChannel, destination, code string, ttl time.Duration) (*OTPCode, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	return &OTPCode{
		AffiliateID: affiliateID,
		Channel:     channel,
		Destination: destination,
		CodeHash:    string(hash),
		ExpiresAt:   time.Now().Add(ttl),
	}, nil
}

// Matches compares the given code with the stored hash
func (otp *OTPCode) Matches(code string) bool {
	return bcrypt.CompareHashAndPassword([]byte(otp.CodeHash), []byte(code)) == nil
}

// IsUsable is true while the code is not used, not expired and has attempts left
func (otp *OTPCode) IsUsable(now time.Time, maxAttempts int) bool {
	return otp.UsedAt == nil && now.Before(otp.ExpiresAt) && otp.Attempts < maxAttempts
}
