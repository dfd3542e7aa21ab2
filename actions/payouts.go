package actions

import (
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gitlab.com/paramountdax-exchange/affiliate_api/model"
	"gitlab.com/paramountdax-exchange/affiliate_api/queries"
)

type processPayoutsRequest struct {
	AffiliateIDs  []uint64 `json:"affiliate_ids" binding:"required,min=1"`
	PaymentMethod string   `json:"payment_method"`
	Notes         string   `json:"notes"`
}

type bulkPayoutsRequest struct {
	MinAmount     *decimal.Decimal `json:"min_amount"`
	PaymentMethod string           `json:"payment_method"`
	Notes         string           `json:"notes"`
}

type payoutStatusRequest struct {
	Status        string `json:"status" binding:"required"`
	TransactionID string `json:"transaction_id"`
	Notes         string `json:"notes"`
}

// threshold reads ?min_amount= and falls back to the configured payout threshold
func (actions *Actions) threshold(c *gin.Context) (decimal.Decimal, bool) {
	raw := c.Query("min_amount")
	if raw == "" {
		return actions.cfg.Commission.Threshold(), true
	}
	value, err := decimal.NewFromString(raw)
	if err != nil || value.IsNegative() {
		abortWithError(c, BadRequest, "min_amount must be a positive number")
		return decimal.Zero, false
	}
	return value, true
}

// AdminGetPayouts godoc
// swagger:route GET /admin/payouts admin payouts get_payouts
// Get payouts
//
// action=pending lists the affiliates owed at least min_amount,
// action=history a page of payouts, action=summary the totals per status.
// Without action, ?id= returns one payout.
//
//	Security:
//	  AdminKey:
//
//	Responses:
//	  200: PayoutResp
func (actions *Actions) AdminGetPayouts(c *gin.Context) {
	switch c.Query("action") {
	case "pending":
		threshold, ok := actions.threshold(c)
		if !ok {
			return
		}
		pending, err := actions.service.PendingPayouts(threshold)
		if err != nil {
			renderError(c, err, "Unable to get pending payouts")
			return
		}
		respond(c, OK, pending)
	case "history":
		filter := queries.PayoutFilter{Status: model.PayoutStatus(strings.ToLower(c.Query("status")))}
		if filter.Status != "" && !filter.Status.IsValid() {
			abortWithError(c, BadRequest, "Invalid status filter")
			return
		}
		filter.AffiliateID, _ = getQueryAsUint64(c, "affiliate_id")
		page, limit := getPagination(c)
		history, err := actions.service.PayoutHistory(filter, page, limit)
		if err != nil {
			renderError(c, err, "Unable to get payout history")
			return
		}
		respond(c, OK, history)
	case "summary":
		threshold, ok := actions.threshold(c)
		if !ok {
			return
		}
		summary, err := actions.service.GetPayoutSummary(threshold)
		if err != nil {
			renderError(c, err, "Unable to get payout summary")
			return
		}
		respond(c, OK, summary)
	case "":
		id, ok := requireID(c)
		if !ok {
			return
		}
		payout, err := actions.service.GetPayout(id)
		if err != nil {
			renderError(c, err, "Unable to get payout")
			return
		}
		respond(c, OK, payout)
	default:
		abortWithError(c, BadRequest, "Unknown action, expected pending, history or summary")
	}
}

// AdminCreatePayouts godoc
// swagger:route POST /admin/payouts admin payouts create_payouts
// Create payouts
//
// action=process pays the given affiliates, action=bulk every affiliate owed at least min_amount.
// Each affiliate is paid in its own transaction, failures are listed in the response.
//
//	Security:
//	  AdminKey:
//
//	Responses:
//	  201: PayoutBatch
//	  400: RequestErrorResp
func (actions *Actions) AdminCreatePayouts(c *gin.Context) {
	switch c.Query("action") {
	case "process":
		in := processPayoutsRequest{}
		if err := c.ShouldBindJSON(&in); err != nil {
			bindError(c, err)
			return
		}
		batch, err := actions.service.ProcessPayouts(in.AffiliateIDs, in.PaymentMethod, in.Notes)
		if err != nil {
			renderError(c, err, "Unable to process payouts")
			return
		}
		respond(c, Created, batch)
	case "bulk":
		in := bulkPayoutsRequest{}
		if err := c.ShouldBindJSON(&in); err != nil {
			bindError(c, err)
			return
		}
		threshold := actions.cfg.Commission.Threshold()
		if in.MinAmount != nil {
			if in.MinAmount.IsNegative() {
				abortWithError(c, BadRequest, "min_amount must be a positive number")
				return
			}
			threshold = *in.MinAmount
		}
		batch, err := actions.service.BulkPayouts(threshold, in.PaymentMethod, in.Notes)
		if err != nil {
			renderError(c, err, "Unable to process bulk payouts")
			return
		}
		respond(c, Created, batch)
	default:
		abortWithError(c, BadRequest, "Unknown action, expected process or bulk")
	}
}

// AdminUpdatePayout godoc
// swagger:route PUT /admin/payouts admin payouts update_payout
// Update a payout status
//
// Failing or cancelling a payout releases its commissions back to approved.
//
//	Security:
//	  AdminKey:
//
//	Responses:
//	  200: Payout
//	  400: RequestErrorResp
//	  404: RequestErrorResp
//	  409: RequestErrorResp
func (actions *Actions) AdminUpdatePayout(c *gin.Context) {
	id, ok := requireID(c)
	if !ok {
		return
	}
	in := payoutStatusRequest{}
	if err := c.ShouldBindJSON(&in); err != nil {
		bindError(c, err)
		return
	}
	payout, err := actions.service.UpdatePayoutStatus(id, in.Status, in.TransactionID, in.Notes)
	if err != nil {
		renderError(c, err, "Unable to update payout")
		return
	}
	respond(c, OK, payout)
}

// AdminPayoutStatement godoc
// swagger:route GET /admin/payouts/statement admin payouts payout_statement
// Download a payout statement
//
//	Security:
//	  AdminKey:
//
//	Produces:
//	- application/pdf
//
//	Responses:
//	  200: File
func (actions *Actions) AdminPayoutStatement(c *gin.Context) {
	id, ok := requireID(c)
	if !ok {
		return
	}
	file, err := actions.service.PayoutStatement(id)
	if err != nil {
		renderError(c, err, "Unable to generate statement")
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=payout_%d.%s", id, file.Type))
	c.Data(OK, file.DataType, file.Data)
}
