package actions

import (
	"github.com/gin-gonic/gin"
	"gitlab.com/paramountdax-exchange/affiliate_api/httputils"
	"gitlab.com/paramountdax-exchange/affiliate_api/service"
)

// GetProfile godoc
// swagger:route GET /profile profile get_profile
// Get profile
//
// Get the profile of the current affiliate with its tier progress and settings
//
//	Security:
//	  ApiKey:
//
//	Responses:
//	  200: AffiliateProfile
func (actions *Actions) GetProfile(c *gin.Context) {
	affiliateID, _ := getAffiliateID(c)
	profile, err := actions.service.GetAffiliateProfile(affiliateID)
	if err != nil {
		renderError(c, err, "Unable to get profile")
		return
	}
	respond(c, OK, profile)
}

// UpdateSettings godoc
// swagger:route PUT /profile/settings profile update_settings
// Update settings
//
//	Security:
//	  ApiKey:
//
//	Responses:
//	  200: AffiliateSettings
//	  400: RequestErrorResp
func (actions *Actions) UpdateSettings(c *gin.Context) {
	affiliateID, _ := getAffiliateID(c)
	in := service.UpdateSettingsInput{}
	if err := c.ShouldBindJSON(&in); err != nil {
		bindError(c, err)
		return
	}
	settings, err := actions.service.UpdateAffiliateSettings(affiliateID, in)
	if err != nil {
		renderError(c, err, "Unable to update settings")
		return
	}
	respond(c, OK, settings)
}

// RotateAPIKey godoc
// swagger:route POST /profile/api-key profile rotate_api_key
// Rotate the api key
//
// The previous key stops working immediately. The new key is only shown once.
//
//	Security:
//	  ApiKey:
//
//	Responses:
//	  201: StringResp
func (actions *Actions) RotateAPIKey(c *gin.Context) {
	affiliateID, _ := getAffiliateID(c)
	key, err := actions.service.RotateAPIKey(affiliateID)
	if err != nil {
		renderError(c, err, "Unable to rotate api key")
		return
	}
	c.JSON(Created, httputils.Message("Store this key now, it will not be shown again", map[string]string{"api_key": key}))
}
