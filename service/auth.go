package service

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"time"

	jwt "github.com/dgrijalva/jwt-go"
	"github.com/rs/zerolog/log"
	"gitlab.com/paramountdax-exchange/affiliate_api/model"
	"gitlab.com/paramountdax-exchange/affiliate_api/service/auth_service"
	"gorm.io/gorm"
)

const otpDigits = 6

// OTPRequest identifies the affiliate by email or phone
type OTPRequest struct {
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// OTPVerifyRequest godoc
type OTPVerifyRequest struct {
	OTPRequest
	Code string `json:"code" binding:"required"`
}

// AuthToken is returned after a successful login
type AuthToken struct {
	Token     string          `json:"token"`
	ExpiresIn int             `json:"expires_in"`
	Affiliate model.Affiliate `json:"affiliate"`
}

func generateOTP() (string, error) {
	max := big.NewInt(1000000)
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", otpDigits, n.Int64()), nil
}

func (req OTPRequest) destination() (model.OTPChannel, string, error) {
	if email := strings.ToLower(strings.TrimSpace(req.Email)); email != "" {
		return model.OTPChannelEmail, email, nil
	}
	if strings.TrimSpace(req.Phone) != "" {
		phone, err := normalizePhone(req.Phone)
		if err != nil {
			return "", "", err
		}
		return model.OTPChannelPhone, phone, nil
	}
	return "", "", validation("email", "email or phone is required")
}

func (service *Service) findAffiliateFor(channel model.OTPChannel, destination string) (*model.Affiliate, error) {
	affiliate := model.Affiliate{}
	column := "email"
	if channel == model.OTPChannelPhone {
		column = "phone"
	}
	db := service.repo.ConnReader.Where(column+" = ?", destination).First(&affiliate)
	if db.Error != nil {
		return nil, db.Error
	}
	return &affiliate, nil
}

func (service *Service) otpTTL() time.Duration {
	if service.cfg.OTP.TTLMinutes <= 0 {
		return 10 * time.Minute
	}
	return time.Duration(service.cfg.OTP.TTLMinutes) * time.Minute
}

func (service *Service) otpMaxAttempts() int {
	if service.cfg.OTP.MaxAttempts <= 0 {
		return 5
	}
	return service.cfg.OTP.MaxAttempts
}

// RequestOTP issues a login code for an active affiliate and sends it by email.
// Unknown or inactive destinations are ignored so the response does not reveal accounts.
func (service *Service) RequestOTP(req OTPRequest) error {
	channel, destination, err := req.destination()
	if err != nil {
		return err
	}

	affiliate, err := service.findAffiliateFor(channel, destination)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			log.Info().Str("section", "auth").Str("channel", string(channel)).Msg("OTP requested for an unknown destination")
			return nil
		}
		return classify(err, "affiliate", "load affiliate")
	}
	if !affiliate.IsActive() {
		return nil
	}

	code, err := generateOTP()
	if err != nil {
		return err
	}
	otp, err := model.NewOTPCode(affiliate.ID, channel, destination, code, service.otpTTL())
	if err != nil {
		return err
	}

	tx := service.repo.Conn.Begin()
	now := service.now()
	db := tx.Model(&model.OTPCode{}).
		Where("affiliate_id = ? AND used_at IS NULL", affiliate.ID).
		Update("used_at", now)
	if db.Error != nil {
		tx.Rollback()
		return classify(db.Error, "otp code", "invalidate otp codes")
	}
	if err := tx.Create(otp).Error; err != nil {
		tx.Rollback()
		return classify(err, "otp code", "create otp code")
	}
	if err := tx.Commit().Error; err != nil {
		return classify(err, "otp code", "commit otp code")
	}

	service.sendEmail(affiliate.Email, "en", EmailOTPCode, map[string]string{
		"username": affiliate.Username,
		"code":     code,
		"minutes":  fmt.Sprintf("%d", int(service.otpTTL().Minutes())),
	})
	return nil
}

// VerifyOTP checks the latest code of the affiliate and returns a signed token.
// A code is burned once it is used or the attempts are exhausted.
func (service *Service) VerifyOTP(req OTPVerifyRequest) (*AuthToken, error) {
	channel, destination, err := req.destination()
	if err != nil {
		return nil, err
	}
	invalid := &AuthError{Message: "Invalid or expired code"}

	affiliate, err := service.findAffiliateFor(channel, destination)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, invalid
		}
		return nil, classify(err, "affiliate", "load affiliate")
	}
	if !affiliate.IsActive() {
		return nil, &AuthError{Message: "Affiliate is not active"}
	}

	otp := model.OTPCode{}
	db := service.repo.Conn.
		Where("affiliate_id = ? AND used_at IS NULL", affiliate.ID).
		Order("id DESC").
		First(&otp)
	if db.Error != nil {
		if db.Error == gorm.ErrRecordNotFound {
			return nil, invalid
		}
		return nil, classify(db.Error, "otp code", "load otp code")
	}

	now := service.now()
	maxAttempts := service.otpMaxAttempts()
	if !otp.IsUsable(now, maxAttempts) {
		return nil, invalid
	}

	if !otp.Matches(strings.TrimSpace(req.Code)) {
		updates := map[string]interface{}{"attempts": otp.Attempts + 1}
		if otp.Attempts+1 >= maxAttempts {
			updates["used_at"] = now
		}
		if err := service.repo.Conn.Model(&otp).Updates(updates).Error; err != nil {
			return nil, classify(err, "otp code", "update otp code")
		}
		return nil, invalid
	}

	if err := service.repo.Conn.Model(&otp).Update("used_at", now).Error; err != nil {
		return nil, classify(err, "otp code", "update otp code")
	}

	ttl := service.cfg.Server.API.JWTTokenTTL
	token, err := auth_service.CreateToken(jwt.MapClaims{
		"sub":  affiliate.ID,
		"role": affiliate.Role.String(),
	}, service.cfg.Server.API.JWTTokenSecret, ttl)
	if err != nil {
		return nil, err
	}
	if ttl <= 0 {
		ttl = 86400
	}
	return &AuthToken{Token: token, ExpiresIn: ttl, Affiliate: *affiliate}, nil
}

// AuthenticateToken validates a bearer token and returns the affiliate it was issued to
func (service *Service) AuthenticateToken(token string) (*model.Affiliate, error) {
	claims, err := auth_service.ParseToken(token, service.cfg.Server.API.JWTTokenSecret)
	if err != nil {
		return nil, &AuthError{Message: "Invalid or expired token"}
	}
	id, ok := auth_service.SubjectID(claims)
	if !ok {
		return nil, &AuthError{Message: "Invalid or expired token"}
	}
	affiliate, err := service.GetAffiliateByID(id)
	if err != nil {
		if _, ok := err.(*NotFoundError); ok {
			return nil, &AuthError{Message: "Invalid or expired token"}
		}
		return nil, err
	}
	if !affiliate.IsActive() {
		return nil, &AuthError{Message: "Affiliate is not active"}
	}
	return affiliate, nil
}
