package service

import (
	"github.com/rs/zerolog/log"
	"gitlab.com/paramountdax-exchange/affiliate_api/conv"
	"gitlab.com/paramountdax-exchange/affiliate_api/model"
)

// Email template aliases configured under server.sendgrid.templates
const (
	EmailOTPCode             = "otp_code"
	EmailApplicationApproved = "application_approved"
	EmailApplicationRejected = "application_rejected"
	EmailPayoutCompleted     = "payout_completed"
	EmailPayoutFailed        = "payout_failed"
)

func (service *Service) sendEmail(email, language, template string, data map[string]string) {
	if email == "" {
		return
	}
	if language == "" {
		language = "en"
	}
	go func() {
		if err := service.sendgrid.SendEmail(email, language, template, data); err != nil {
			log.Error().Err(err).
				Str("section", "notifications").
				Str("template", template).
				Msg("Unable to send email")
		}
	}()
}

func (service *Service) notifyApplicationDecision(app *model.Application) {
	template := EmailApplicationRejected
	if app.Status == model.ApplicationStatusApproved {
		template = EmailApplicationApproved
	}
	service.sendEmail(app.Email, "en", template, map[string]string{
		"username": app.Username,
		"notes":    app.ReviewNotes,
	})
}

func (service *Service) notifyPayout(affiliate *model.Affiliate, settings *model.AffiliateSettings, payout *model.Payout) {
	language := "en"
	if settings != nil {
		if !settings.Notifications.Bool("email_payouts", true) {
			return
		}
		language = settings.Language
	}
	template := EmailPayoutCompleted
	if payout.Status.RevertsCommissions() {
		template = EmailPayoutFailed
	}
	service.sendEmail(affiliate.Email, language, template, map[string]string{
		"username":       affiliate.Username,
		"amount":         conv.FmtMoney(payout.Amount),
		"currency":       service.cfg.Commission.Currency,
		"transaction_id": payout.TransactionID,
		"status":         payout.Status.String(),
	})
}
