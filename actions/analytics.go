package actions

import (
	"strings"

	"github.com/gin-gonic/gin"
	"gitlab.com/paramountdax-exchange/affiliate_api/service"
)

// Dashboard godoc
// swagger:route GET /analytics/dashboard analytics dashboard
// Get the dashboard
//
// Totals, growth against the previous 30 days, top links and recent commissions of the
// current affiliate. When nothing is recorded yet the response carries placeholder data
// and demo is set.
//
//	Security:
//	  ApiKey:
//
//	Responses:
//	  200: DashboardResp
func (actions *Actions) Dashboard(c *gin.Context) {
	affiliateID, _ := getAffiliateID(c)
	result, err := actions.service.Dashboard(affiliateID)
	if err != nil {
		renderError(c, err, "Unable to get dashboard")
		return
	}
	respondResult(c, result)
}

// Performance godoc
// swagger:route GET /admin/performance admin performance performance
// Get program performance
//
// The action query parameter selects the report: overview, trends, affiliates, products,
// conversion-funnel, real-time, tiers or geographic. days and limit narrow the window.
//
//	Security:
//	  AdminKey:
//
//	Responses:
//	  200: PerformanceResp
//	  400: RequestErrorResp
func (actions *Actions) Performance(c *gin.Context) {
	days := getQueryAsInt(c, "days", 30)
	limit := getQueryAsInt(c, "limit", 10)

	var (
		data interface{}
		err  error
	)
	switch c.Query("action") {
	case "overview", "":
		var result service.Result
		if result, err = actions.service.PerformanceOverview(days); err == nil {
			respondResult(c, result)
			return
		}
	case "trends":
		var result service.Result
		if result, err = actions.service.PerformanceTrends(days); err == nil {
			respondResult(c, result)
			return
		}
	case "affiliates":
		data, err = actions.service.TopAffiliates(limit)
	case "products":
		data, err = actions.service.ProductPerformance(days, limit)
	case "conversion-funnel":
		data, err = actions.service.ConversionFunnel(days)
	case "real-time":
		data, err = actions.service.RealTime()
	case "tiers":
		data, err = actions.service.TierPerformance()
	case "geographic":
		data, err = actions.service.GeographicPerformance(days)
	default:
		abortWithError(c, BadRequest, "Unknown action, expected one of "+strings.Join(service.PerformanceActions, ", "))
		return
	}
	if err != nil {
		renderError(c, err, "Unable to get performance")
		return
	}
	respond(c, OK, data)
}

// GenerateContent godoc
// swagger:route POST /content/generate content generate_content
// Generate promotional content
//
// Writes a post for one of the links of the affiliate. The number of generations per day
// depends on the tier, a quota of zero is unlimited.
//
//	Security:
//	  ApiKey:
//
//	Responses:
//	  201: GeneratedContent
//	  400: RequestErrorResp
//	  404: RequestErrorResp
//	  429: RequestErrorResp
func (actions *Actions) GenerateContent(c *gin.Context) {
	affiliateID, _ := getAffiliateID(c)
	in := service.ContentRequest{}
	if err := c.ShouldBindJSON(&in); err != nil {
		bindError(c, err)
		return
	}
	content, err := actions.service.GenerateContent(affiliateID, in)
	if err != nil {
		renderError(c, err, "Unable to generate content")
		return
	}
	respond(c, Created, content)
}
