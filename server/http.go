package server

import (
	"fmt"
	"net/http"

	limit "github.com/bu/gin-access-limit"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"gitlab.com/paramountdax-exchange/affiliate_api/actions"
	"gitlab.com/paramountdax-exchange/affiliate_api/config"
	"gitlab.com/paramountdax-exchange/affiliate_api/httputils"
	"gitlab.com/paramountdax-exchange/affiliate_api/logger"
)

// NewRouter registers every route of the api
func NewRouter(cfg config.Config, a *actions.Actions) *gin.Engine {
	r := gin.New()
	r.HandleMethodNotAllowed = true

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowHeaders = []string{"Origin", "X-Requested-With", "Content-Length", "Content-Type", "Accept", "Authorization", "X-Api-Key", "X-Admin-Key"}
	corsConfig.AllowMethods = []string{"GET", "PUT", "POST", "DELETE", "OPTIONS"}
	corsConfig.ExposeHeaders = []string{"X-Request-Id", "X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"}

	r.Use(cors.New(corsConfig)) // Allow requests from anywhere
	r.Use(gin.Recovery())       // Recovery middleware recovers from any panics and writes a 500 if there was one.
	r.Use(logger.SetLogger())

	r.NoRoute(func(c *gin.Context) {
		c.JSON(actions.NotFound, httputils.RequestError{Error: "Resource not found"})
	})
	r.NoMethod(func(c *gin.Context) {
		c.JSON(actions.MethodNotAllowed, httputils.RequestError{Error: "Method not allowed"})
	})

	// public routes
	{
		r.GET("/ping", actions.Ping)
		r.GET("/r/:code", a.RedirectLink)

		r.POST("/applications", a.RateLimit(), a.SubmitApplication)
		r.POST("/track/conversion", a.RequireWebhookSecret(), a.TrackConversion)
	}

	auth := r.Group("/auth", a.RateLimit())
	{
		auth.POST("/otp", a.RequestOTP)
		auth.POST("/otp/verify", a.VerifyOTP)
	}

	// affiliate routes
	affiliate := r.Group("", a.Restrict())
	{
		affiliate.GET("/profile", a.GetProfile)
		affiliate.PUT("/profile/settings", a.UpdateSettings)
		affiliate.POST("/profile/api-key", a.RotateAPIKey)

		affiliate.GET("/links", a.GetLinks)
		affiliate.POST("/links", a.CreateLink)
		affiliate.PUT("/links", a.UpdateLink)
		affiliate.DELETE("/links", a.DeleteLink)

		affiliate.GET("/commissions", a.GetCommissions)
		affiliate.GET("/analytics/dashboard", a.Dashboard)
		affiliate.POST("/content/generate", a.GenerateContent)
	}

	admin := r.Group("/admin")
	{
		if cfg.Server.Admin.AllowedIPs != "" {
			limit.TrustedHeaderField = "X-Forwarded-For"
			admin.Use(limit.CIDR(cfg.Server.Admin.AllowedIPs))
		}
		admin.Use(a.RestrictAdmin())

		admin.GET("/applications", a.AdminGetApplications)
		admin.PUT("/applications", a.AdminReviewApplication)

		admin.GET("/affiliates", a.AdminGetAffiliates)
		admin.PUT("/affiliates", a.AdminUpdateAffiliate)
		admin.DELETE("/affiliates", a.AdminSuspendAffiliate)

		admin.GET("/commissions", a.AdminGetCommissions)
		admin.PUT("/commissions", a.AdminUpdateCommission)

		admin.GET("/payouts", a.AdminGetPayouts)
		admin.POST("/payouts", a.AdminCreatePayouts)
		admin.PUT("/payouts", a.AdminUpdatePayout)
		admin.GET("/payouts/statement", a.AdminPayoutStatement)

		admin.GET("/performance", a.Performance)
	}

	return r
}

// ListenToRequests serves the api until the http server is shut down
func (srv *server) ListenToRequests() {
	log.Info().Str("worker", "http_listen_to_requests").Str("action", "start").Msg("HTTP Listen to requests - started")
	defer log.Info().Str("worker", "http_listen_to_requests").Str("action", "stop").Msg("HTTP Listen to requests - stopped")

	port := srv.config.Server.API.Port
	if err := srv.HTTP.ListenAndServe(); err != nil {
		if err != http.ErrServerClosed {
			log.Error().Err(err).Str("section", "server").Str("action", "ListenToRequests").Msgf("Unable to listen %d port", port)
		}
	}
}

func newHTTPServer(cfg config.Config, handler http.Handler) *http.Server {
	httpServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.API.Port),
		Handler: handler,
	}
	httpServer.SetKeepAlivesEnabled(cfg.Server.API.KeepAlive)
	return httpServer
}
