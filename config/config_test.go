package config

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	v := viper.New()
	setDefaults(v)

	cfg := LoadConfig(v)

	assert.Equal(t, 8080, cfg.Server.API.Port)
	assert.Equal(t, "30-M", cfg.Server.RateLimit.Public)
	assert.Equal(t, "50.00", cfg.Commission.Threshold().StringFixed(2))
	assert.Equal(t, 10, cfg.OTP.TTLMinutes)
	assert.Equal(t, 5, cfg.OTP.MaxAttempts)
	require.Contains(t, cfg.Crons, "update_apikeys_cache")
}

func TestCommissionRates(t *testing.T) {
	cfg := CommissionConfig{TierRates: map[string]float64{"gold": 10, "diamond": 20}}

	assert.Equal(t, "10", cfg.RateFor("gold").String())
	assert.Equal(t, "20", cfg.RateFor("DIAMOND").String())
	// unknown tiers fall back to the bronze rate
	assert.Equal(t, "5", cfg.RateFor("legend").String())
}

func TestContentQuota(t *testing.T) {
	cfg := ContentConfig{DailyQuota: map[string]int{"silver": 10, "diamond": 0}}

	assert.Equal(t, 10, cfg.QuotaFor("silver"))
	assert.Equal(t, 0, cfg.QuotaFor("diamond"))
	assert.Equal(t, 5, cfg.QuotaFor("bronze"))
}
