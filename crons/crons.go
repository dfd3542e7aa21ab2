package crons

import (
	"github.com/robfig/cron"
	"github.com/rs/zerolog/log"
	"gitlab.com/paramountdax-exchange/affiliate_api/config"
	"gitlab.com/paramountdax-exchange/affiliate_api/queries"
)

var cronService *cron.Cron

// Start Initiate the crons based on the given configuration file
func Start(crons config.Crons, repo *queries.Repo) {
	cronService = cron.New()
	for id, schedule := range crons {
		callback := GetCronByID(id, repo)
		if err := cronService.AddFunc(schedule, callback); err != nil {
			log.Error().Err(err).Str("section", "crons").Str("cron", id).Str("schedule", schedule).Msg("Unable to schedule cron")
			continue
		}
		// call the jobs at least once at startup to init caching
		callback()
	}
	cronService.Start()
}

// GetCronByID get a function to execute based on the id
func GetCronByID(id string, repo *queries.Repo) func() {
	switch id {
	case "update_apikeys_cache":
		return func() {
			CronUpdateAPIKeysCache(repo)
		}
	case "sync_affiliate_tiers":
		return func() {
			CronSyncAffiliateTiers(repo)
		}
	case "cleanup_otp_codes":
		return func() {
			CronCleanupOTPCodes(repo)
		}
	}
	return (func() {})
}

// Close godoc
func Close() {
	if cronService != nil {
		cronService.Stop()
	}
}
