package crons

import (
	"time"

	"github.com/rs/zerolog/log"
	"gitlab.com/paramountdax-exchange/affiliate_api/queries"
)

// CronCleanupOTPCodes deletes the login codes that can no longer be used
func CronCleanupOTPCodes(repo *queries.Repo) {
	removed, err := repo.DeleteExpiredOTPCodes(time.Now())
	if err != nil {
		log.Error().Err(err).Str("section", "crons").Msg("Unable to cleanup otp codes")
		return
	}
	log.Debug().Str("section", "crons").Int64("removed", removed).Msg("Expired otp codes removed")
}
