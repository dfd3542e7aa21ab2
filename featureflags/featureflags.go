// Package featureflags wraps the unleash client. Without an unleash url every
// flag resolves to its registered default.
package featureflags

import (
	"net/http"
	"sync"
	"time"

	"github.com/Unleash/unleash-client-go/v3"
	"github.com/rs/zerolog/log"
)

const (
	ApplicationsAutoApprove = "api.applications.auto_approve"
	PayoutsBulk             = "api.payouts.bulk"
	ContentGenerate         = "api.content.generate"
	DemoFallback            = "api.analytics.demo_fallback"
	EventsPublish           = "api.events.publish"
)

type Config struct {
	AppName         string `mapstructure:"app_name"`
	URL             string `mapstructure:"url"`
	InstanceID      string `mapstructure:"instance_id"`
	Token           string `mapstructure:"token"`
	RefreshInterval int    `mapstructure:"refresh_interval"`
}

var (
	lock     sync.RWMutex
	enabled  bool
	defaults = map[string]bool{
		ApplicationsAutoApprove: true,
		PayoutsBulk:             true,
		ContentGenerate:         true,
		DemoFallback:            true,
		EventsPublish:           true,
	}
)

// Initialize the unleash client when an url is configured
func Initialize(cfg Config) error {
	if cfg.URL == "" {
		log.Info().Str("lib", "unleash").Msg("Feature flags server not configured, using defaults")
		return nil
	}
	refresh := time.Duration(cfg.RefreshInterval) * time.Second
	if refresh <= 0 {
		refresh = 15 * time.Second
	}
	headers := http.Header{}
	if cfg.Token != "" {
		headers.Set("Authorization", cfg.Token)
	}
	err := unleash.Initialize(
		unleash.WithAppName(cfg.AppName),
		unleash.WithUrl(cfg.URL),
		unleash.WithInstanceId(cfg.InstanceID),
		unleash.WithRefreshInterval(refresh),
		unleash.WithCustomHeaders(headers),
		unleash.WithListener(&unleash.DebugListener{}),
	)
	if err != nil {
		return err
	}
	lock.Lock()
	enabled = true
	lock.Unlock()
	return nil
}

// IsEnabled resolves a flag, falling back to its default
func IsEnabled(feature string) bool {
	lock.RLock()
	def, remote := defaults[feature], enabled
	lock.RUnlock()
	if !remote {
		return def
	}
	return unleash.IsEnabled(feature, unleash.WithFallback(def))
}

// SetDefault overrides the value used when unleash is not configured
func SetDefault(feature string, value bool) {
	lock.Lock()
	defaults[feature] = value
	lock.Unlock()
}

// Close the unleash client
func Close() {
	lock.Lock()
	defer lock.Unlock()
	if enabled {
		_ = unleash.Close()
		enabled = false
	}
}
