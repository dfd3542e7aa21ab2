package config

import (
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
	"gitlab.com/paramountdax-exchange/affiliate_api/featureflags"
	"gitlab.com/paramountdax-exchange/affiliate_api/lib/aws"
	"gitlab.com/paramountdax-exchange/affiliate_api/lib/sendgrid"
	"gitlab.com/paramountdax-exchange/affiliate_api/monitor"
	"gitlab.com/paramountdax-exchange/affiliate_api/net/kafka"
	"gitlab.com/paramountdax-exchange/affiliate_api/net/redis"
)

// Config structure
type Config struct {
	Server          ServerConfig
	DatabaseCluster DatabaseClusterConfig `mapstructure:"database_cluster"`
	Redis           redis.Config
	Kafka           kafka.Config        `mapstructure:"kafka"`
	Unleash         featureflags.Config `mapstructure:"unleash"`
	Crons           Crons               `mapstructure:"crons"`
	Commission      CommissionConfig    `mapstructure:"commission"`
	Content         ContentConfig       `mapstructure:"content"`
	OTP             OTPConfig           `mapstructure:"otp"`
	AWS             aws.Config          `mapstructure:"aws"`
}

type ServerConfig struct {
	Monitoring monitor.Config  `mapstructure:"monitoring"`
	API        APIConfig       `mapstructure:"api"`
	Admin      AdminConfig     `mapstructure:"admin"`
	Sendgrid   sendgrid.Config `mapstructure:"sendgrid"`
	RateLimit  RateLimitConfig `mapstructure:"rate_limit"`
}

type APIConfig struct {
	Port           int
	KeepAlive      bool `mapstructure:"keep_alive"`
	Domain         string
	JWTTokenSecret string `mapstructure:"jwt_token_secret"`
	JWTTokenTTL    int    `mapstructure:"jwt_token_ttl"`
	WebhookSecret  string `mapstructure:"webhook_secret"`
}

type AdminConfig struct {
	Domain     string
	AllowedIPs string `mapstructure:"allowed_ips"`
}

// RateLimitConfig uses the limiter formatted rate, ex: 10-M
type RateLimitConfig struct {
	Public string `mapstructure:"public"`
}

// Crons maps a cron id to its schedule
type Crons map[string]string

type DatabaseClusterConfig struct {
	Writer      DatabaseConfig `mapstructure:"writer"`
	Reader      DatabaseConfig `mapstructure:"reader"`
	ReaderAdmin DatabaseConfig `mapstructure:"reader_admin"`
}

type DatabaseConfig struct {
	Type            string // postgres
	Host            string
	Username        string
	Password        string
	Name            string
	SSLmode         string `mapstructure:"sslmode"`
	ApplicationName string `mapstructure:"application_name"`
	Port            int
	MaxOpenConns    int `mapstructure:"max_open_conns"`
	MaxIdleConns    int `mapstructure:"max_idle_conns"`
}

type CommissionConfig struct {
	Currency        string             `mapstructure:"currency"`
	TierRates       map[string]float64 `mapstructure:"tier_rates"`
	PayoutThreshold float64            `mapstructure:"payout_threshold"`
}

// RateFor returns the commission percent for the given tier
func (cfg CommissionConfig) RateFor(tier string) decimal.Decimal {
	if rate, ok := cfg.TierRates[strings.ToLower(tier)]; ok {
		return decimal.NewFromFloat(rate)
	}
	return decimal.NewFromFloat(defaultTierRates["bronze"])
}

// Threshold of the automatic payout eligibility
func (cfg CommissionConfig) Threshold() decimal.Decimal {
	return decimal.NewFromFloat(cfg.PayoutThreshold).Round(2)
}

type ContentConfig struct {
	// DailyQuota per tier, 0 means unlimited
	DailyQuota map[string]int `mapstructure:"daily_quota"`
}

// QuotaFor returns the daily generation quota of a tier, 0 for unlimited
func (cfg ContentConfig) QuotaFor(tier string) int {
	if quota, ok := cfg.DailyQuota[strings.ToLower(tier)]; ok {
		return quota
	}
	return defaultDailyQuota["bronze"]
}

type OTPConfig struct {
	TTLMinutes  int `mapstructure:"ttl_minutes"`
	MaxAttempts int `mapstructure:"max_attempts"`
}

var defaultTierRates = map[string]float64{
	"bronze":   5,
	"silver":   7.5,
	"gold":     10,
	"premium":  12.5,
	"platinum": 15,
	"diamond":  20,
}

var defaultDailyQuota = map[string]int{
	"bronze":   5,
	"silver":   10,
	"gold":     25,
	"premium":  50,
	"platinum": 100,
	"diamond":  0,
}

// LoadConfig godoc
func LoadConfig(viperConf *viper.Viper) Config {
	var config Config

	err := viperConf.Unmarshal(&config)
	if err != nil {
		log.Fatal().Err(err).Msg("Unable to decode config into struct")
	}
	return config
}

// OpenConfig godoc
func OpenConfig(file string) {
	// values from a local .env file are exposed to viper as environment variables
	_ = godotenv.Load()

	// Don't forget to read config either from cfgFile, from current directory or from home directory!
	if file != "" {
		// Use config file from the flag.
		viper.SetConfigFile(file)
	}

	viper.SetConfigType("yaml")
	viper.SetConfigName(".config")
	viper.AddConfigPath(".")                   // First try to load the config from the current directory
	viper.AddConfigPath("$HOME")               // Then try to load it from the HOME directory
	viper.AddConfigPath("/etc/affiliate_api/") // As a last resort try to load it from /etc/
	viper.SetEnvPrefix("CFG")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	setDefaultVariables()

	err := viper.ReadInConfig() // Find and read the config file
	if err != nil {             // Handle errors reading the config file
		log.Fatal().Err(err).Msg("Unable to read configuration file")
	}
}

func setDefaultVariables() {
	setDefaults(viper.GetViper())
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.api.port", 8080)
	v.SetDefault("server.api.keep_alive", true)
	v.SetDefault("server.api.jwt_token_ttl", 86400)
	v.SetDefault("server.rate_limit.public", "30-M")
	v.SetDefault("server.monitoring.enabled", true)
	v.SetDefault("server.monitoring.port", 2112)
	v.SetDefault("database_cluster.writer.type", "postgres")
	v.SetDefault("database_cluster.writer.sslmode", "disable")
	v.SetDefault("commission.currency", "USD")
	v.SetDefault("commission.payout_threshold", 50)
	v.SetDefault("commission.tier_rates", defaultTierRates)
	v.SetDefault("content.daily_quota", defaultDailyQuota)
	v.SetDefault("otp.ttl_minutes", 10)
	v.SetDefault("otp.max_attempts", 5)
	v.SetDefault("kafka.topic", "affiliate_events")
	v.SetDefault("crons", map[string]string{
		"update_apikeys_cache": "0 */1 * * * *",
		"sync_affiliate_tiers": "0 */15 * * * *",
		"cleanup_otp_codes":    "0 0 * * * *",
	})
}
