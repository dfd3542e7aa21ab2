package actions

import (
	"github.com/gin-gonic/gin"
	"gitlab.com/paramountdax-exchange/affiliate_api/httputils"
	"gitlab.com/paramountdax-exchange/affiliate_api/service"
)

// RequestOTP godoc
// swagger:route POST /auth/otp auth request_otp
// Request a login code
//
// Sends a one time code to the email of the affiliate registered with the given email or
// phone. The response is the same whether an affiliate matched or not.
//
//	Responses:
//	  200: StringResp
//	  400: RequestErrorResp
func (actions *Actions) RequestOTP(c *gin.Context) {
	in := service.OTPRequest{}
	if err := c.ShouldBindJSON(&in); err != nil {
		bindError(c, err)
		return
	}
	if err := actions.service.RequestOTP(in); err != nil {
		renderError(c, err, "Unable to send login code")
		return
	}
	c.JSON(OK, httputils.Message("If the account exists a login code was sent", nil))
}

// VerifyOTP godoc
// swagger:route POST /auth/otp/verify auth verify_otp
// Verify a login code
//
// Exchanges a valid code for a bearer token
//
//	Responses:
//	  200: AuthToken
//	  400: RequestErrorResp
//	  401: RequestErrorResp
func (actions *Actions) VerifyOTP(c *gin.Context) {
	in := service.OTPVerifyRequest{}
	if err := c.ShouldBindJSON(&in); err != nil {
		bindError(c, err)
		return
	}
	token, err := actions.service.VerifyOTP(in)
	if err != nil {
		renderError(c, err, "Unable to verify login code")
		return
	}
	respond(c, OK, token)
}
