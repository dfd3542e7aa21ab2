package service

import (
	"strings"

	"github.com/rs/zerolog/log"
	apiKeyCache "gitlab.com/paramountdax-exchange/affiliate_api/cache/apikey"
	"gitlab.com/paramountdax-exchange/affiliate_api/model"
	"gitlab.com/paramountdax-exchange/affiliate_api/queries"
	"gitlab.com/paramountdax-exchange/affiliate_api/service/tiers"
	"gorm.io/gorm"
)

// UpdateAffiliateInput carries the admin editable fields, nil fields are left unchanged
type UpdateAffiliateInput struct {
	Tier     *string `json:"tier"`
	Status   *string `json:"status"`
	Role     *string `json:"role"`
	FullName *string `json:"full_name"`
}

// UpdateSettingsInput carries the affiliate editable settings
type UpdateSettingsInput struct {
	PaymentMethod   *string                `json:"payment_method"`
	PaymentDetails  *string                `json:"payment_details"`
	PayoutThreshold *float64               `json:"payout_threshold"`
	Notifications   map[string]interface{} `json:"notifications"`
	Language        *string                `json:"language"`
	Timezone        *string                `json:"timezone"`
}

// GetAffiliateByID godoc
func (service *Service) GetAffiliateByID(id uint64) (*model.Affiliate, error) {
	affiliate := model.Affiliate{}
	db := service.repo.ConnReader.First(&affiliate, "id = ?", id)
	if db.Error != nil {
		return nil, classify(db.Error, "affiliate", "load affiliate")
	}
	return &affiliate, nil
}

// GetAffiliateProfile returns the affiliate with its tier progress and settings
func (service *Service) GetAffiliateProfile(id uint64) (*model.AffiliateProfile, error) {
	affiliate, err := service.GetAffiliateByID(id)
	if err != nil {
		return nil, err
	}
	progress := tiers.ProgressOrMax(affiliate.Tier, affiliate.TotalEarnings.InexactFloat64())
	profile := &model.AffiliateProfile{Affiliate: *affiliate, Progress: &progress}

	settings, err := service.GetAffiliateSettings(id)
	if err != nil {
		if _, ok := err.(*NotFoundError); !ok {
			return nil, err
		}
		settings = nil
	}
	profile.Settings = settings
	return profile, nil
}

// GetAffiliates returns a page of affiliates for the admin
func (service *Service) GetAffiliates(filter queries.AffiliateFilter, sort queries.Sort, page, limit int) (*model.AffiliateList, error) {
	affiliates := make([]model.Affiliate, 0)
	var rowCount int64

	q := filter.Apply(service.repo.ConnReaderAdmin.Table("affiliates"))
	dbc := q.Session(&gorm.Session{}).Select("count(*) as total").Row()
	if err := dbc.Scan(&rowCount); err != nil {
		return nil, classify(err, "affiliates", "count affiliates")
	}

	db := queries.Paginate(q.Session(&gorm.Session{}).Select("affiliates.*").Order(sort.String()), page, limit).Find(&affiliates)
	if db.Error != nil {
		return nil, classify(db.Error, "affiliates", "list affiliates")
	}
	return &model.AffiliateList{
		Affiliates: affiliates,
		Meta:       pagingMeta(page, limit, rowCount, sort.String(), filter.Map()),
	}, nil
}

// UpdateAffiliate applies the admin changes of an affiliate
func (service *Service) UpdateAffiliate(id uint64, in UpdateAffiliateInput) (*model.Affiliate, error) {
	affiliate, err := service.GetAffiliateByID(id)
	if err != nil {
		return nil, err
	}
	changes := map[string]interface{}{}
	if in.Tier != nil {
		tier := model.Tier(strings.ToLower(*in.Tier))
		if !tier.IsValid() {
			return nil, validation("tier", "unknown tier")
		}
		changes["tier"] = tier
		affiliate.Tier = tier
	}
	if in.Status != nil {
		status := model.AffiliateStatus(strings.ToLower(*in.Status))
		if !status.IsValid() {
			return nil, &InvalidStatusError{Status: *in.Status}
		}
		changes["status"] = status
		affiliate.Status = status
	}
	if in.Role != nil {
		role := model.Role(strings.ToLower(*in.Role))
		if !role.IsValid() {
			return nil, validation("role", "unknown role")
		}
		changes["role"] = role
		affiliate.Role = role
	}
	if in.FullName != nil {
		changes["full_name"] = strings.TrimSpace(*in.FullName)
		affiliate.FullName = strings.TrimSpace(*in.FullName)
	}
	if len(changes) == 0 {
		return nil, validation("", "nothing to update")
	}
	changes["updated_at"] = service.now()

	db := service.repo.Conn.Model(&model.Affiliate{}).Where("id = ?", id).Updates(changes)
	if db.Error != nil {
		return nil, classify(db.Error, "affiliate", "update affiliate")
	}
	// drop the cached credential so the next request sees the new role and status
	apiKeyCache.Remove(affiliate.APIKeyPrefix)
	service.publish(EventAffiliateUpdated, affiliate.ID, changes)
	return affiliate, nil
}

// SuspendAffiliate is the soft delete of an affiliate
func (service *Service) SuspendAffiliate(id uint64) (*model.Affiliate, error) {
	status := model.AffiliateStatusSuspended.String()
	return service.UpdateAffiliate(id, UpdateAffiliateInput{Status: &status})
}

// GetAffiliateSettings godoc
func (service *Service) GetAffiliateSettings(affiliateID uint64) (*model.AffiliateSettings, error) {
	settings := model.AffiliateSettings{}
	db := service.repo.ConnReader.First(&settings, "affiliate_id = ?", affiliateID)
	if db.Error != nil {
		return nil, classify(db.Error, "settings", "load settings")
	}
	return &settings, nil
}

// UpdateAffiliateSettings updates the settings of the affiliate, creating the row when missing
func (service *Service) UpdateAffiliateSettings(affiliateID uint64, in UpdateSettingsInput) (*model.AffiliateSettings, error) {
	settings, err := service.GetAffiliateSettings(affiliateID)
	if err != nil {
		if _, ok := err.(*NotFoundError); !ok {
			return nil, err
		}
		settings = model.NewAffiliateSettings(affiliateID, service.cfg.Commission.Threshold())
	}
	if in.PaymentMethod != nil {
		method := strings.ToLower(strings.TrimSpace(*in.PaymentMethod))
		if method == "" {
			return nil, validation("payment_method", "cannot be empty")
		}
		settings.PaymentMethod = method
	}
	if in.PaymentDetails != nil {
		settings.PaymentDetails = strings.TrimSpace(*in.PaymentDetails)
	}
	if in.PayoutThreshold != nil {
		if *in.PayoutThreshold < service.cfg.Commission.PayoutThreshold {
			return nil, validation("payout_threshold", "is lower than the program minimum")
		}
		settings.PayoutThreshold = decimalFromFloat(*in.PayoutThreshold)
	}
	for key, value := range in.Notifications {
		if _, ok := value.(bool); !ok {
			return nil, validation("notifications", key+" must be a boolean")
		}
		if settings.Notifications == nil {
			settings.Notifications = model.JSONMap{}
		}
		settings.Notifications[key] = value
	}
	if in.Language != nil {
		settings.Language = strings.ToLower(strings.TrimSpace(*in.Language))
	}
	if in.Timezone != nil {
		settings.Timezone = strings.TrimSpace(*in.Timezone)
	}

	if err := service.repo.Update(settings); err != nil {
		return nil, classify(err, "settings", "update settings")
	}
	return settings, nil
}

// createAffiliate inserts a new active bronze affiliate and its default settings
// using the given transaction. The plain api key is returned once.
func (service *Service) createAffiliate(tx *gorm.DB, app *model.Application) (*model.Affiliate, string, error) {
	plain, prefix, hash := model.NewAPIKey()
	affiliate := &model.Affiliate{
		Username:      app.Username,
		Email:         app.Email,
		Phone:         app.Phone,
		FullName:      app.FullName,
		Role:          model.RoleAffiliate,
		Tier:          model.TierBronze,
		Status:        model.AffiliateStatusActive,
		APIKeyPrefix:  prefix,
		APIKeyHash:    hash,
		ApplicationID: &app.ID,
	}
	if err := tx.Create(affiliate).Error; err != nil {
		log.Error().Err(err).Str("section", "affiliates").Str("action", "create").Msg("Unable to create affiliate")
		return nil, "", classify(err, "affiliate", "create affiliate")
	}
	settings := model.NewAffiliateSettings(affiliate.ID, service.cfg.Commission.Threshold())
	if err := tx.Create(settings).Error; err != nil {
		log.Error().Err(err).Str("section", "affiliates").Str("action", "create_settings").Msg("Unable to create affiliate settings")
		return nil, "", classify(err, "settings", "create settings")
	}
	return affiliate, plain, nil
}
