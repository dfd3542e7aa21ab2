package service

import (
	"strings"

	"github.com/rs/zerolog/log"
	"gitlab.com/paramountdax-exchange/affiliate_api/featureflags"
	"gitlab.com/paramountdax-exchange/affiliate_api/model"
	"gitlab.com/paramountdax-exchange/affiliate_api/monitor"
	"gitlab.com/paramountdax-exchange/affiliate_api/queries"
	"gitlab.com/paramountdax-exchange/affiliate_api/service/scoring"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ApplicationInput is the public application form
type ApplicationInput struct {
	Username                  string   `json:"username" binding:"required,min=3,max=64"`
	Email                     string   `json:"email" binding:"required,email"`
	Phone                     string   `json:"phone"`
	FullName                  string   `json:"full_name" binding:"required"`
	Website                   string   `json:"website"`
	MarketingExperience       string   `json:"marketing_experience"`
	AudienceSize              int64    `json:"audience_size" binding:"min=0"`
	PrimaryPlatforms          []string `json:"primary_platforms"`
	PreviousAffiliatePrograms []string `json:"previous_affiliate_programs"`
	ExpectedMonthlySales      int64    `json:"expected_monthly_sales" binding:"min=0"`
	PromotionStrategy         string   `json:"promotion_strategy"`
}

// ReviewApplicationInput is the admin decision on an application
type ReviewApplicationInput struct {
	Status     string `json:"status" binding:"required"`
	Notes      string `json:"notes"`
	CreateUser bool   `json:"create_user"`
}

// ReviewResult godoc
type ReviewResult struct {
	Application *model.Application `json:"application"`
	Affiliate   *model.Affiliate   `json:"affiliate,omitempty"`
	APIKey      string             `json:"api_key,omitempty"`
}

func cleanList(values []string) []string {
	out := make([]string, 0, len(values))
	seen := map[string]bool{}
	for _, v := range values {
		v = strings.TrimSpace(v)
		key := strings.ToLower(v)
		if v == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, v)
	}
	return out
}

func (in ApplicationInput) toModel() (*model.Application, error) {
	app := &model.Application{
		Username:                  strings.TrimSpace(in.Username),
		Email:                     strings.ToLower(strings.TrimSpace(in.Email)),
		FullName:                  strings.TrimSpace(in.FullName),
		Website:                   strings.TrimSpace(in.Website),
		MarketingExperience:       strings.TrimSpace(in.MarketingExperience),
		AudienceSize:              in.AudienceSize,
		PrimaryPlatforms:          cleanList(in.PrimaryPlatforms),
		PreviousAffiliatePrograms: cleanList(in.PreviousAffiliatePrograms),
		ExpectedMonthlySales:      in.ExpectedMonthlySales,
		PromotionStrategy:         strings.TrimSpace(in.PromotionStrategy),
		Status:                    model.ApplicationStatusPending,
	}
	if app.Username == "" {
		return nil, validation("username", "is required")
	}
	if app.AudienceSize < 0 || app.ExpectedMonthlySales < 0 {
		return nil, validation("", "audience_size and expected_monthly_sales cannot be negative")
	}
	if in.Phone != "" {
		phone, err := normalizePhone(in.Phone)
		if err != nil {
			return nil, err
		}
		app.Phone = &phone
	}
	return app, nil
}

// scoringInput uses the lists as submitted, the cleaned lists are only stored
func (in ApplicationInput) scoringInput() scoring.Input {
	return scoring.Input{
		MarketingExperience:       in.MarketingExperience,
		AudienceSize:              in.AudienceSize,
		PrimaryPlatforms:          in.PrimaryPlatforms,
		PreviousAffiliatePrograms: in.PreviousAffiliatePrograms,
		ExpectedMonthlySales:      in.ExpectedMonthlySales,
	}
}

// checkDuplicates rejects an application when the identity is already used
func (service *Service) checkDuplicates(tx *gorm.DB, app *model.Application) error {
	var count int64
	db := tx.Model(&model.Application{}).
		Where("(LOWER(email) = ? OR LOWER(username) = LOWER(?)) AND status IN ?", app.Email, app.Username,
			[]model.ApplicationStatus{model.ApplicationStatusPending, model.ApplicationStatusApproved}).
		Count(&count)
	if db.Error != nil {
		return classify(db.Error, "application", "check applications")
	}
	if count > 0 {
		return &ConflictError{Message: "An application with this email or username already exists"}
	}
	db = tx.Model(&model.Affiliate{}).
		Where("LOWER(email) = ? OR LOWER(username) = LOWER(?)", app.Email, app.Username).
		Count(&count)
	if db.Error != nil {
		return classify(db.Error, "affiliate", "check affiliates")
	}
	if count > 0 {
		return &ConflictError{Message: "An affiliate with this email or username already exists"}
	}
	return nil
}

// SubmitApplication scores and stores an application. When the score reaches the
// auto approve threshold the application, the affiliate and its settings are
// created in one transaction.
func (service *Service) SubmitApplication(in ApplicationInput) (*model.ApplicationResult, error) {
	app, err := in.toModel()
	if err != nil {
		return nil, err
	}
	app.ApplicationScore = scoring.Score(in.scoringInput())
	autoApprove := scoring.AutoApprove(app.ApplicationScore) && featureflags.IsEnabled(featureflags.ApplicationsAutoApprove)

	var affiliate *model.Affiliate
	var plainKey string

	tx := service.repo.Conn.Begin()
	if tx.Error != nil {
		return nil, classify(tx.Error, "application", "begin transaction")
	}
	if err := service.checkDuplicates(tx, app); err != nil {
		tx.Rollback()
		return nil, err
	}
	if autoApprove {
		now := service.now()
		app.Status = model.ApplicationStatusApproved
		app.ReviewedBy = "system"
		app.ReviewNotes = "Auto-approved"
		app.ReviewedAt = &now
	}
	if err := tx.Create(app).Error; err != nil {
		tx.Rollback()
		return nil, classify(err, "application", "create application")
	}
	if autoApprove {
		affiliate, plainKey, err = service.createAffiliate(tx, app)
		if err != nil {
			tx.Rollback()
			return nil, err
		}
		app.AffiliateID = &affiliate.ID
		if err := tx.Model(app).Update("affiliate_id", affiliate.ID).Error; err != nil {
			tx.Rollback()
			return nil, classify(err, "application", "link affiliate")
		}
	}
	if err := tx.Commit().Error; err != nil {
		return nil, classify(err, "application", "commit application")
	}

	monitor.ApplicationsTotal.WithLabelValues(app.Status.String()).Inc()
	log.Info().Str("section", "applications").Str("action", "submit").
		Uint64("application_id", app.ID).
		Int("score", app.ApplicationScore).
		Str("status", app.Status.String()).
		Msg("Application submitted")

	service.publish(EventApplicationSubmitted, app.ID, map[string]interface{}{
		"status": app.Status, "score": app.ApplicationScore,
	})
	result := &model.ApplicationResult{
		ApplicationID:    app.ID,
		Status:           app.Status,
		ApplicationScore: app.ApplicationScore,
	}
	if affiliate != nil {
		result.AffiliateID = &affiliate.ID
		result.APIKey = plainKey
		service.publish(EventAffiliateCreated, affiliate.ID, map[string]interface{}{"application_id": app.ID})
		service.notifyApplicationDecision(app)
	}
	return result, nil
}

// GetApplications returns a page of applications for the admin
func (service *Service) GetApplications(filter queries.ApplicationFilter, sort queries.Sort, page, limit int) (*model.ApplicationList, error) {
	apps := make([]model.Application, 0)
	var rowCount int64

	q := filter.Apply(service.repo.ConnReaderAdmin.Table("affiliate_applications"))
	if err := q.Session(&gorm.Session{}).Select("count(*) as total").Row().Scan(&rowCount); err != nil {
		return nil, classify(err, "applications", "count applications")
	}
	db := queries.Paginate(q.Session(&gorm.Session{}).Select("affiliate_applications.*").Order(sort.String()), page, limit).Find(&apps)
	if db.Error != nil {
		return nil, classify(db.Error, "applications", "list applications")
	}
	return &model.ApplicationList{
		Applications: apps,
		Meta:         pagingMeta(page, limit, rowCount, sort.String(), filter.Map()),
	}, nil
}

// GetApplication godoc
func (service *Service) GetApplication(id uint64) (*model.Application, error) {
	app := model.Application{}
	if db := service.repo.ConnReaderAdmin.First(&app, "id = ?", id); db.Error != nil {
		return nil, classify(db.Error, "application", "load application")
	}
	return &app, nil
}

// ReviewApplication approves or rejects an application. Approving with
// CreateUser creates exactly one affiliate linked to the application.
func (service *Service) ReviewApplication(id uint64, reviewer string, in ReviewApplicationInput) (*ReviewResult, error) {
	status := model.ApplicationStatus(strings.ToLower(in.Status))
	if status != model.ApplicationStatusApproved && status != model.ApplicationStatusRejected {
		return nil, &InvalidStatusError{Status: in.Status}
	}

	tx := service.repo.Conn.Begin()
	if tx.Error != nil {
		return nil, classify(tx.Error, "application", "begin transaction")
	}
	app := model.Application{}
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&app, "id = ?", id).Error; err != nil {
		tx.Rollback()
		return nil, classify(err, "application", "load application")
	}

	result := &ReviewResult{Application: &app}
	if status == model.ApplicationStatusApproved && in.CreateUser {
		if app.AffiliateID != nil {
			tx.Rollback()
			return nil, &ConflictError{Message: "An affiliate is already linked to this application"}
		}
		affiliate, plain, err := service.createAffiliate(tx, &app)
		if err != nil {
			tx.Rollback()
			return nil, err
		}
		app.AffiliateID = &affiliate.ID
		result.Affiliate = affiliate
		result.APIKey = plain
	}

	now := service.now()
	app.Status = status
	app.ReviewNotes = strings.TrimSpace(in.Notes)
	app.ReviewedBy = reviewer
	app.ReviewedAt = &now
	err := tx.Model(&app).Updates(map[string]interface{}{
		"status":       app.Status,
		"review_notes": app.ReviewNotes,
		"reviewed_by":  app.ReviewedBy,
		"reviewed_at":  app.ReviewedAt,
		"affiliate_id": app.AffiliateID,
	}).Error
	if err != nil {
		tx.Rollback()
		return nil, classify(err, "application", "review application")
	}
	if err := tx.Commit().Error; err != nil {
		return nil, classify(err, "application", "commit review")
	}

	monitor.ApplicationsTotal.WithLabelValues(app.Status.String()).Inc()
	service.publish(EventApplicationReviewed, app.ID, map[string]interface{}{"status": app.Status, "reviewed_by": reviewer})
	if result.Affiliate != nil {
		service.publish(EventAffiliateCreated, result.Affiliate.ID, map[string]interface{}{"application_id": app.ID})
	}
	service.notifyApplicationDecision(&app)
	return result, nil
}
