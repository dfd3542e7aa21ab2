package actions

import (
	"reflect"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"
	"gitlab.com/paramountdax-exchange/affiliate_api/config"
	"gitlab.com/paramountdax-exchange/affiliate_api/service"
)

const defaultPublicRate = "30-M"

// Actions structure
type Actions struct {
	cfg     config.Config
	service *service.Service
	limiter *limiter.Limiter
}

// NewActions constructor
func NewActions(cfg config.Config, srv *service.Service) *Actions {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(jsonFieldName)
	}
	return &Actions{
		cfg:     cfg,
		service: srv,
		limiter: newLimiter(cfg.Server.RateLimit.Public),
	}
}

func newLimiter(formatted string) *limiter.Limiter {
	rate, err := limiter.NewRateFromFormatted(formatted)
	if err != nil {
		log.Warn().Err(err).Str("section", "actions").Str("rate", formatted).Msg("Invalid public rate limit, using the default")
		rate, _ = limiter.NewRateFromFormatted(defaultPublicRate)
	}
	return limiter.New(memory.NewStore(), rate)
}

// jsonFieldName reports the binding errors with the json name of the field
func jsonFieldName(field reflect.StructField) string {
	name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
	if name == "-" || name == "" {
		return field.Name
	}
	return name
}
