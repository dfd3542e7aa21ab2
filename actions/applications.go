package actions

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"gitlab.com/paramountdax-exchange/affiliate_api/model"
	"gitlab.com/paramountdax-exchange/affiliate_api/queries"
	"gitlab.com/paramountdax-exchange/affiliate_api/service"
)

// SubmitApplication godoc
// swagger:route POST /applications applications submit_application
// Submit an application
//
// Score and store an affiliate application. High scores are approved automatically
// and the api key of the new affiliate is returned once.
//
//	Consumes:
//	- application/json
//
//	Responses:
//	  201: ApplicationResult
//	  400: RequestErrorResp
//	  409: RequestErrorResp
func (actions *Actions) SubmitApplication(c *gin.Context) {
	in := service.ApplicationInput{}
	if err := c.ShouldBindJSON(&in); err != nil {
		bindError(c, err)
		return
	}
	result, err := actions.service.SubmitApplication(in)
	if err != nil {
		renderError(c, err, "Unable to submit application")
		return
	}
	respond(c, Created, result)
}

// AdminGetApplications godoc
// swagger:route GET /admin/applications admin applications get_applications
// List applications
//
// Filter by status, search and min_score. Order by created_at, score or status.
//
//	Security:
//	  AdminKey:
//
//	Responses:
//	  200: ApplicationList
func (actions *Actions) AdminGetApplications(c *gin.Context) {
	if _, ok := c.GetQuery("id"); ok {
		id, ok := requireID(c)
		if !ok {
			return
		}
		app, err := actions.service.GetApplication(id)
		if err != nil {
			renderError(c, err, "Unable to get application")
			return
		}
		respond(c, OK, app)
		return
	}

	page, limit := getPagination(c)
	filter := queries.ApplicationFilter{
		Status: model.ApplicationStatus(strings.ToLower(c.Query("status"))),
		Search: c.Query("search"),
	}
	if filter.Status != "" && !filter.Status.IsValid() {
		abortWithError(c, BadRequest, "Invalid status filter")
		return
	}
	if v := c.Query("min_score"); v != "" {
		score, err := strconv.Atoi(v)
		if err != nil {
			abortWithError(c, BadRequest, "min_score must be a number")
			return
		}
		filter.MinScore = &score
	}
	sort := queries.NewSort(c.Query("sort"), c.Query("order"), queries.ApplicationSortColumns, "created_at")

	data, err := actions.service.GetApplications(filter, sort, page, limit)
	if err != nil {
		renderError(c, err, "Unable to get applications")
		return
	}
	respond(c, OK, data)
}

// AdminReviewApplication godoc
// swagger:route PUT /admin/applications admin applications review_application
// Review an application
//
// Approve or reject the application with the given id. Approving with create_user
// creates the affiliate and returns its api key once.
//
//	Security:
//	  AdminKey:
//
//	Responses:
//	  200: ReviewResult
//	  400: RequestErrorResp
//	  404: RequestErrorResp
//	  409: RequestErrorResp
func (actions *Actions) AdminReviewApplication(c *gin.Context) {
	id, ok := requireID(c)
	if !ok {
		return
	}
	in := service.ReviewApplicationInput{}
	if err := c.ShouldBindJSON(&in); err != nil {
		bindError(c, err)
		return
	}
	adminID, _ := getAffiliateID(c)
	result, err := actions.service.ReviewApplication(id, "admin:"+strconv.FormatUint(adminID, 10), in)
	if err != nil {
		renderError(c, err, "Unable to review application")
		return
	}
	respond(c, OK, result)
}
