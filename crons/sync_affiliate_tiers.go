package crons

import (
	"github.com/rs/zerolog/log"
	"gitlab.com/paramountdax-exchange/affiliate_api/queries"
	"gitlab.com/paramountdax-exchange/affiliate_api/service/tiers"
)

// CronSyncAffiliateTiers upgrades the affiliates whose earnings crossed a threshold.
// Tiers are never lowered.
func CronSyncAffiliateTiers(repo *queries.Repo) {
	logger := log.With().
		Str("section", "crons").
		Str("method", "CronSyncAffiliateTiers").
		Logger()

	rows, err := repo.GetAffiliateTiers()
	if err != nil {
		logger.Error().Err(err).Msg("Unable to load affiliate tiers")
		return
	}

	upgraded := 0
	for _, row := range rows {
		tier := tiers.Upgrade(row.Tier, row.TotalEarnings.InexactFloat64())
		if tier == row.Tier {
			continue
		}
		if err := repo.UpdateAffiliateTier(row.ID, tier); err != nil {
			logger.Error().Err(err).Uint64("affiliate_id", row.ID).Msg("Unable to update affiliate tier")
			continue
		}
		upgraded++
	}
	if upgraded > 0 {
		logger.Info().Int("upgraded", upgraded).Msg("Affiliate tiers synchronised")
	}
}
