package crons

import (
	"github.com/rs/zerolog/log"
	cache "gitlab.com/paramountdax-exchange/affiliate_api/cache/apikey"
	"gitlab.com/paramountdax-exchange/affiliate_api/model"
	"gitlab.com/paramountdax-exchange/affiliate_api/queries"
)

// CronUpdateAPIKeysCache godoc
func CronUpdateAPIKeysCache(repo *queries.Repo) {
	apiKeys, err := repo.GetActiveAPIKeys()
	if err != nil {
		log.Debug().Err(err).Str("section", "crons").Msg("Unable to update cached api keys list")
		return
	}

	newAPIKeys := make(map[string]*model.APIKey)
	for _, key := range apiKeys {
		newAPIKeys[key.Prefix] = key
	}

	cache.SetAll(newAPIKeys)
}
