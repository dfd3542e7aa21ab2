package actions

import (
	"strings"

	"github.com/gin-gonic/gin"
	"gitlab.com/paramountdax-exchange/affiliate_api/model"
	"gitlab.com/paramountdax-exchange/affiliate_api/queries"
	"gitlab.com/paramountdax-exchange/affiliate_api/service"
)

type commissionStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// TrackConversion godoc
// swagger:route POST /track/conversion tracking track_conversion
// Track a conversion
//
// Called by the store when a visitor of a tracked link completes an order.
// A second call with the same order id of the same affiliate is rejected.
//
//	Security:
//	  WebhookSecret:
//
//	Responses:
//	  201: Commission
//	  400: RequestErrorResp
//	  404: RequestErrorResp
//	  409: RequestErrorResp
func (actions *Actions) TrackConversion(c *gin.Context) {
	in := service.ConversionInput{}
	if err := c.ShouldBindJSON(&in); err != nil {
		bindError(c, err)
		return
	}
	if in.Country == "" {
		in.Country = c.GetHeader("CF-IPCountry")
	}
	commission, err := actions.service.RecordConversion(in)
	if err != nil {
		renderError(c, err, "Unable to track conversion")
		return
	}
	respond(c, Created, commission)
}

func commissionFilter(c *gin.Context) (queries.CommissionFilter, bool) {
	filter := queries.CommissionFilter{
		Status: model.CommissionStatus(strings.ToLower(c.Query("status"))),
	}
	if filter.Status != "" && !filter.Status.IsValid() {
		abortWithError(c, BadRequest, "Invalid status filter")
		return filter, false
	}
	filter.PayoutID, _ = getQueryAsUint64(c, "payout_id")
	return filter, true
}

// GetCommissions godoc
// swagger:route GET /commissions commissions get_commissions
// Get commissions
//
// Get the commissions of the current affiliate, newest first
//
//	Security:
//	  ApiKey:
//
//	Responses:
//	  200: CommissionList
func (actions *Actions) GetCommissions(c *gin.Context) {
	filter, ok := commissionFilter(c)
	if !ok {
		return
	}
	filter.AffiliateID, _ = getAffiliateID(c)
	page, limit := getPagination(c)
	data, err := actions.service.GetCommissions(filter, page, limit)
	if err != nil {
		renderError(c, err, "Unable to get commissions")
		return
	}
	respond(c, OK, data)
}

// AdminGetCommissions godoc
// swagger:route GET /admin/commissions admin commissions admin_get_commissions
// Get commissions
//
//	Security:
//	  AdminKey:
//
//	Responses:
//	  200: CommissionList
func (actions *Actions) AdminGetCommissions(c *gin.Context) {
	filter, ok := commissionFilter(c)
	if !ok {
		return
	}
	filter.AffiliateID, _ = getQueryAsUint64(c, "affiliate_id")
	page, limit := getPagination(c)
	data, err := actions.service.GetCommissions(filter, page, limit)
	if err != nil {
		renderError(c, err, "Unable to get commissions")
		return
	}
	respond(c, OK, data)
}

// AdminUpdateCommission godoc
// swagger:route PUT /admin/commissions admin commissions update_commission
// Approve or cancel a commission
//
// Approving credits the earnings of the affiliate and may upgrade its tier.
// Cancelling an approved commission debits them again.
//
//	Security:
//	  AdminKey:
//
//	Responses:
//	  200: Commission
//	  400: RequestErrorResp
//	  404: RequestErrorResp
//	  409: RequestErrorResp
func (actions *Actions) AdminUpdateCommission(c *gin.Context) {
	id, ok := requireID(c)
	if !ok {
		return
	}
	in := commissionStatusRequest{}
	if err := c.ShouldBindJSON(&in); err != nil {
		bindError(c, err)
		return
	}
	commission, err := actions.service.UpdateCommissionStatus(id, in.Status)
	if err != nil {
		renderError(c, err, "Unable to update commission")
		return
	}
	respond(c, OK, commission)
}
