package actions

import (
	"strings"

	"github.com/gin-gonic/gin"
	"gitlab.com/paramountdax-exchange/affiliate_api/model"
	"gitlab.com/paramountdax-exchange/affiliate_api/queries"
	"gitlab.com/paramountdax-exchange/affiliate_api/service"
)

// AdminGetAffiliates godoc
// swagger:route GET /admin/affiliates admin affiliates get_affiliates
// List affiliates
//
// With ?id= returns one affiliate with its tier progress, otherwise a filtered page.
//
//	Security:
//	  AdminKey:
//
//	Responses:
//	  200: AffiliateList
//	  404: RequestErrorResp
func (actions *Actions) AdminGetAffiliates(c *gin.Context) {
	if _, ok := c.GetQuery("id"); ok {
		id, ok := requireID(c)
		if !ok {
			return
		}
		profile, err := actions.service.GetAffiliateProfile(id)
		if err != nil {
			renderError(c, err, "Unable to get affiliate")
			return
		}
		respond(c, OK, profile)
		return
	}

	page, limit := getPagination(c)
	filter := queries.AffiliateFilter{
		Tier:   model.Tier(strings.ToLower(c.Query("tier"))),
		Status: model.AffiliateStatus(strings.ToLower(c.Query("status"))),
		Role:   model.Role(strings.ToLower(c.Query("role"))),
		Search: c.Query("search"),
	}
	if filter.Tier != "" && !filter.Tier.IsValid() {
		abortWithError(c, BadRequest, "Invalid tier filter")
		return
	}
	if filter.Status != "" && !filter.Status.IsValid() {
		abortWithError(c, BadRequest, "Invalid status filter")
		return
	}
	sort := queries.NewSort(c.Query("sort"), c.Query("order"), queries.AffiliateSortColumns, "created_at")

	data, err := actions.service.GetAffiliates(filter, sort, page, limit)
	if err != nil {
		renderError(c, err, "Unable to get affiliates")
		return
	}
	respond(c, OK, data)
}

// AdminUpdateAffiliate godoc
// swagger:route PUT /admin/affiliates admin affiliates update_affiliate
// Update an affiliate
//
// Change the tier, status, role or name of an affiliate.
//
//	Security:
//	  AdminKey:
//
//	Responses:
//	  200: Affiliate
//	  400: RequestErrorResp
//	  404: RequestErrorResp
func (actions *Actions) AdminUpdateAffiliate(c *gin.Context) {
	id, ok := requireID(c)
	if !ok {
		return
	}
	in := service.UpdateAffiliateInput{}
	if err := c.ShouldBindJSON(&in); err != nil {
		bindError(c, err)
		return
	}
	affiliate, err := actions.service.UpdateAffiliate(id, in)
	if err != nil {
		renderError(c, err, "Unable to update affiliate")
		return
	}
	respond(c, OK, affiliate)
}

// AdminSuspendAffiliate godoc
// swagger:route DELETE /admin/affiliates admin affiliates suspend_affiliate
// Suspend an affiliate
//
// Affiliates are never removed, only suspended.
//
//	Security:
//	  AdminKey:
//
//	Responses:
//	  200: Affiliate
//	  404: RequestErrorResp
func (actions *Actions) AdminSuspendAffiliate(c *gin.Context) {
	id, ok := requireID(c)
	if !ok {
		return
	}
	if adminID, _ := getAffiliateID(c); adminID == id {
		abortWithError(c, BadRequest, "Admins can not suspend themselves")
		return
	}
	affiliate, err := actions.service.SuspendAffiliate(id)
	if err != nil {
		renderError(c, err, "Unable to suspend affiliate")
		return
	}
	respond(c, OK, affiliate)
}
