package actions

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gitlab.com/paramountdax-exchange/affiliate_api/httputils"
	"gitlab.com/paramountdax-exchange/affiliate_api/model"
	"gitlab.com/paramountdax-exchange/affiliate_api/queries"
	"gitlab.com/paramountdax-exchange/affiliate_api/service"
)

// GetLinks godoc
// swagger:route GET /links links get_links
// Get links
//
// Get the tracked links of the current affiliate with their conversion rate
//
//	Security:
//	  ApiKey:
//
//	Responses:
//	  200: AffiliateLinkList
func (actions *Actions) GetLinks(c *gin.Context) {
	affiliateID, _ := getAffiliateID(c)
	page, limit := getPagination(c)
	filter := queries.LinkFilter{
		AffiliateID: affiliateID,
		Status:      model.LinkStatus(strings.ToLower(c.Query("status"))),
	}
	if filter.Status != "" && !filter.Status.IsValid() {
		abortWithError(c, BadRequest, "Invalid status filter")
		return
	}
	data, err := actions.service.GetLinks(filter, page, limit)
	if err != nil {
		renderError(c, err, "Unable to get links")
		return
	}
	respond(c, OK, data)
}

// CreateLink godoc
// swagger:route POST /links links create_link
// Create a link
//
// A short code is generated unless a custom one is given
//
//	Security:
//	  ApiKey:
//
//	Responses:
//	  201: AffiliateLinkWithStats
//	  400: RequestErrorResp
//	  409: RequestErrorResp
func (actions *Actions) CreateLink(c *gin.Context) {
	affiliateID, _ := getAffiliateID(c)
	in := service.CreateLinkInput{}
	if err := c.ShouldBindJSON(&in); err != nil {
		bindError(c, err)
		return
	}
	link, err := actions.service.CreateLink(affiliateID, in)
	if err != nil {
		renderError(c, err, "Unable to create link")
		return
	}
	respond(c, Created, link)
}

// UpdateLink godoc
// swagger:route PUT /links links update_link
// Update a link
//
//	Security:
//	  ApiKey:
//
//	Responses:
//	  200: AffiliateLinkWithStats
//	  400: RequestErrorResp
//	  404: RequestErrorResp
func (actions *Actions) UpdateLink(c *gin.Context) {
	affiliateID, _ := getAffiliateID(c)
	id, ok := requireID(c)
	if !ok {
		return
	}
	in := service.UpdateLinkInput{}
	if err := c.ShouldBindJSON(&in); err != nil {
		bindError(c, err)
		return
	}
	link, err := actions.service.UpdateLink(affiliateID, id, in)
	if err != nil {
		renderError(c, err, "Unable to update link")
		return
	}
	respond(c, OK, link)
}

// DeleteLink godoc
// swagger:route DELETE /links links delete_link
// Delete a link
//
// The link is deactivated, its clicks and commissions are kept
//
//	Security:
//	  ApiKey:
//
//	Responses:
//	  200: StringResp
//	  404: RequestErrorResp
func (actions *Actions) DeleteLink(c *gin.Context) {
	affiliateID, _ := getAffiliateID(c)
	id, ok := requireID(c)
	if !ok {
		return
	}
	if err := actions.service.DeleteLink(affiliateID, id); err != nil {
		renderError(c, err, "Unable to delete link")
		return
	}
	c.JSON(OK, httputils.Message("Link deleted", nil))
}

// RedirectLink records a click and sends the visitor to the target of the link
func (actions *Actions) RedirectLink(c *gin.Context) {
	in := service.ClickInput{
		IP:        c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
		Referrer:  c.Request.Referer(),
		Country:   c.GetHeader("CF-IPCountry"),
	}
	link, err := actions.service.TrackClick(c.Param("code"), in)
	if err != nil {
		renderError(c, err, "Unable to follow link")
		return
	}
	c.Redirect(http.StatusFound, link.OriginalURL)
}
