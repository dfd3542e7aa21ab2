package actions

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gitlab.com/paramountdax-exchange/affiliate_api/httputils"
	"gitlab.com/paramountdax-exchange/affiliate_api/logger"
	"gitlab.com/paramountdax-exchange/affiliate_api/service"
)

// Ping godoc
// swagger:route GET /ping misc ping
// Ping
//
// Ping the server
//
//	Produces:
//	- application/json
//
//	Responses:
//	  200: StringResp
func Ping(c *gin.Context) {
	c.JSON(OK, "pong")
}

func abortWithError(c *gin.Context, code int, message string) {
	l := getlog(c)
	l.Debug().Int("resp_code", code).Msg(message)
	c.AbortWithStatusJSON(code, httputils.RequestError{Error: message, Message: message})
}

// renderError maps the service errors to their status code
func renderError(c *gin.Context, err error, message string) {
	_ = c.Error(err)

	var validationErr *service.ValidationError
	var statusErr *service.InvalidStatusError
	var authErr *service.AuthError
	var notFoundErr *service.NotFoundError
	var conflictErr *service.ConflictError
	var rateErr *service.RateLimitError

	switch {
	case errors.As(err, &validationErr):
		c.AbortWithStatusJSON(BadRequest, httputils.RequestError{
			Error:   validationErr.Error(),
			Message: validationErr.Error(),
			Field:   validationErr.Field,
		})
	case errors.As(err, &statusErr):
		abortWithError(c, BadRequest, statusErr.Error())
	case errors.As(err, &authErr):
		abortWithError(c, Unauthorized, authErr.Error())
	case errors.As(err, &notFoundErr):
		abortWithError(c, NotFound, notFoundErr.Error())
	case errors.As(err, &conflictErr):
		abortWithError(c, Conflict, conflictErr.Error())
	case errors.As(err, &rateErr):
		abortWithError(c, TooManyRequests, rateErr.Error())
	default:
		l := getlog(c)
		l.Error().Err(err).Msg(message)
		abortWithError(c, ServerError, message)
	}
}

// bindError renders the binding errors of an input struct
func bindError(c *gin.Context, err error) {
	_ = c.Error(err)
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		field := verrs[0].Field()
		message := field + " failed on the " + verrs[0].Tag() + " rule"
		c.AbortWithStatusJSON(BadRequest, httputils.RequestError{
			Error:   message,
			Message: message,
			Field:   field,
		})
		return
	}
	abortWithError(c, BadRequest, "Invalid request body")
}

func getAffiliateID(c *gin.Context) (uint64, bool) {
	iAffiliateID, ok := c.Get("auth_affiliate_id")
	if !ok {
		return 0, false
	}
	return iAffiliateID.(uint64), true
}

func getRole(c *gin.Context) string {
	role, ok := c.Get("auth_role")
	if !ok {
		return ""
	}
	return role.(string)
}

func getlog(c *gin.Context) zerolog.Logger {
	return logger.GetLogger(c)
}

func getPagination(c *gin.Context) (int, int) {
	page := getQueryAsInt(c, "page", 1)
	limit := getQueryAsInt(c, "limit", 10)
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}
	return page, limit
}

func getQueryAsInt(c *gin.Context, name string, def int) int {
	val := c.Query(name)
	if val == "" {
		return def
	}
	param, err := strconv.Atoi(val)
	if err != nil {
		return def
	}
	return param
}

func getQueryAsUint64(c *gin.Context, name string) (uint64, bool) {
	val := c.Query(name)
	if val == "" {
		return 0, false
	}
	param, err := strconv.ParseUint(val, 10, 64)
	if err != nil || param == 0 {
		return 0, false
	}
	return param, true
}

// requireID reads the mandatory ?id= query parameter
func requireID(c *gin.Context) (uint64, bool) {
	id, ok := getQueryAsUint64(c, "id")
	if !ok {
		abortWithError(c, BadRequest, "A valid id query parameter is required")
		return 0, false
	}
	return id, true
}

func respond(c *gin.Context, code int, data interface{}) {
	c.JSON(code, httputils.OK(data))
}

func respondResult(c *gin.Context, result service.Result) {
	c.JSON(OK, httputils.Response{Success: true, Data: result.Data, Demo: result.Demo})
}
