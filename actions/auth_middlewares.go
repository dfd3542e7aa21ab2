package actions

import (
	"crypto/subtle"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"gitlab.com/paramountdax-exchange/affiliate_api/model"
)

// Restrict affiliate access to the routes using either an api key or a login token
func (actions *Actions) Restrict() gin.HandlerFunc {
	return func(c *gin.Context) {
		log := getlog(c)
		token := strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
		apiKey := c.GetHeader("X-Api-Key")

		if token == "" && apiKey == "" {
			log.Warn().Str("section", "restrict").Msg("Missing token or api key")
			abortWithError(c, Unauthorized, "Unauthorized")
			return
		}

		switch {
		case apiKey != "":
			actions.restrictByAPIKey(c, apiKey, false)
		default:
			actions.restrictByToken(c, token, false)
		}
	}
}

// RestrictAdmin requires an admin key in X-Admin-Key, an admin api key or an admin login token
func (actions *Actions) RestrictAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		log := getlog(c)
		token := strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
		apiKey := c.GetHeader("X-Admin-Key")
		if apiKey == "" {
			apiKey = c.GetHeader("X-Api-Key")
		}

		if token == "" && apiKey == "" {
			log.Warn().Str("section", "restrict:admin").Msg("Missing admin key")
			abortWithError(c, Unauthorized, "Unauthorized")
			return
		}

		switch {
		case apiKey != "":
			actions.restrictByAPIKey(c, apiKey, true)
		default:
			actions.restrictByToken(c, token, true)
		}
	}
}

// Restrict access based on the given api key
func (actions *Actions) restrictByAPIKey(c *gin.Context, key string, admin bool) {
	log := getlog(c)
	apikey, err := actions.service.AuthenticateAffiliate(key)
	if err != nil {
		_ = c.Error(err)
		log.Warn().Err(err).Str("section", "restrict:api").Msg("Invalid api key received")
		abortWithError(c, Unauthorized, "Unauthorized")
		return
	}
	if admin && apikey.Role != model.RoleAdmin {
		log.Warn().Uint64("affiliate_id", apikey.AffiliateID).Str("section", "restrict:api").Msg("Invalid access to admin resource")
		abortWithError(c, Unauthorized, "Admin credentials required")
		return
	}

	c.Set("auth_affiliate_id", apikey.AffiliateID)
	c.Set("auth_role", apikey.Role.String())
	c.Set("auth_tier", apikey.Tier.String())
	c.Set("auth_is_api_key", true)
	c.Next()
}

// Restrict access based on the given login token
func (actions *Actions) restrictByToken(c *gin.Context, token string, admin bool) {
	log := getlog(c)
	affiliate, err := actions.service.AuthenticateToken(token)
	if err != nil {
		_ = c.Error(err)
		log.Warn().Err(err).Str("section", "restrict:token").Msg("Invalid token received")
		abortWithError(c, Unauthorized, "Unauthorized")
		return
	}
	if admin && !affiliate.IsAdmin() {
		log.Warn().Uint64("affiliate_id", affiliate.ID).Str("section", "restrict:token").Msg("Invalid access to admin resource")
		abortWithError(c, Unauthorized, "Admin credentials required")
		return
	}

	c.Set("auth_affiliate_id", affiliate.ID)
	c.Set("auth_role", affiliate.Role.String())
	c.Set("auth_tier", affiliate.Tier.String())
	c.Set("auth_affiliate", affiliate)
	c.Next()
}

// RequireWebhookSecret checks the shared secret of the store webhooks
func (actions *Actions) RequireWebhookSecret() gin.HandlerFunc {
	return func(c *gin.Context) {
		secret := actions.cfg.Server.API.WebhookSecret
		given := c.GetHeader("X-Webhook-Secret")
		if secret == "" || subtle.ConstantTimeCompare([]byte(secret), []byte(given)) != 1 {
			log := getlog(c)
			log.Warn().Str("section", "restrict:webhook").Msg("Invalid webhook secret")
			abortWithError(c, Unauthorized, "Unauthorized")
			return
		}
		c.Next()
	}
}

// RateLimit the public routes by client ip
func (actions *Actions) RateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, err := actions.limiter.Get(c.Request.Context(), c.ClientIP())
		if err != nil {
			log := getlog(c)
			log.Error().Err(err).Str("section", "rate_limit").Msg("Unable to check the rate limit")
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.FormatInt(ctx.Limit, 10))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(ctx.Remaining, 10))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(ctx.Reset, 10))

		if ctx.Reached {
			abortWithError(c, TooManyRequests, "Too many requests, please try again later")
			return
		}
		c.Next()
	}
}
