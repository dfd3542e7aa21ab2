package queries

import (
	"strings"

	"gitlab.com/paramountdax-exchange/affiliate_api/model"
	"gorm.io/gorm"
)

// Sort is a validated order by clause. Columns are only taken from a whitelist
// so user input never reaches the query text.
type Sort struct {
	Column string
	Desc   bool
}

// NewSort picks the column from the allowed map, falling back to the default column
func NewSort(column, order string, allowed map[string]string, def string) Sort {
	col, ok := allowed[strings.ToLower(column)]
	if !ok {
		col = allowed[def]
	}
	return Sort{Column: col, Desc: !strings.EqualFold(order, "asc")}
}

func (s Sort) String() string {
	if s.Desc {
		return s.Column + " DESC"
	}
	return s.Column + " ASC"
}

// Paginate applies limit and offset for the given 1 based page
func Paginate(db *gorm.DB, page, limit int) *gorm.DB {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	return db.Limit(limit).Offset((page - 1) * limit)
}

func likePattern(search string) string {
	search = strings.NewReplacer("%", "\\%", "_", "\\_").Replace(strings.TrimSpace(search))
	return "%" + strings.ToLower(search) + "%"
}

// AffiliateSortColumns allowed for the admin affiliates list
var AffiliateSortColumns = map[string]string{
	"created_at":     "affiliates.created_at",
	"total_earnings": "affiliates.total_earnings",
	"username":       "affiliates.username",
	"tier":           "affiliates.tier",
	"status":         "affiliates.status",
}

type AffiliateFilter struct {
	Tier   model.Tier
	Status model.AffiliateStatus
	Role   model.Role
	Search string
}

func (f AffiliateFilter) Apply(db *gorm.DB) *gorm.DB {
	if f.Tier != "" {
		db = db.Where("affiliates.tier = ?", f.Tier)
	}
	if f.Status != "" {
		db = db.Where("affiliates.status = ?", f.Status)
	}
	if f.Role != "" {
		db = db.Where("affiliates.role = ?", f.Role)
	}
	if f.Search != "" {
		pattern := likePattern(f.Search)
		db = db.Where("(LOWER(affiliates.username) LIKE ? OR LOWER(affiliates.email) LIKE ? OR LOWER(affiliates.full_name) LIKE ?)", pattern, pattern, pattern)
	}
	return db
}

func (f AffiliateFilter) Map() map[string]interface{} {
	return map[string]interface{}{"tier": f.Tier, "status": f.Status, "role": f.Role, "search": f.Search}
}

// ApplicationSortColumns allowed for the admin applications list
var ApplicationSortColumns = map[string]string{
	"created_at":        "affiliate_applications.created_at",
	"application_score": "affiliate_applications.application_score",
	"score":             "affiliate_applications.application_score",
	"status":            "affiliate_applications.status",
}

type ApplicationFilter struct {
	Status   model.ApplicationStatus
	Search   string
	MinScore *int
}

func (f ApplicationFilter) Apply(db *gorm.DB) *gorm.DB {
	if f.Status != "" {
		db = db.Where("affiliate_applications.status = ?", f.Status)
	}
	if f.MinScore != nil {
		db = db.Where("affiliate_applications.application_score >= ?", *f.MinScore)
	}
	if f.Search != "" {
		pattern := likePattern(f.Search)
		db = db.Where("(LOWER(affiliate_applications.username) LIKE ? OR LOWER(affiliate_applications.email) LIKE ?)", pattern, pattern)
	}
	return db
}

func (f ApplicationFilter) Map() map[string]interface{} {
	m := map[string]interface{}{"status": f.Status, "search": f.Search}
	if f.MinScore != nil {
		m["min_score"] = *f.MinScore
	}
	return m
}

type PayoutFilter struct {
	Status      model.PayoutStatus
	AffiliateID uint64
}

func (f PayoutFilter) Apply(db *gorm.DB) *gorm.DB {
	if f.Status != "" {
		db = db.Where("payouts.status = ?", f.Status)
	}
	if f.AffiliateID != 0 {
		db = db.Where("payouts.affiliate_id = ?", f.AffiliateID)
	}
	return db
}

func (f PayoutFilter) Map() map[string]interface{} {
	return map[string]interface{}{"status": f.Status, "affiliate_id": f.AffiliateID}
}

type CommissionFilter struct {
	Status      model.CommissionStatus
	AffiliateID uint64
	PayoutID    uint64
}

func (f CommissionFilter) Apply(db *gorm.DB) *gorm.DB {
	if f.Status != "" {
		db = db.Where("commissions.status = ?", f.Status)
	}
	if f.AffiliateID != 0 {
		db = db.Where("commissions.affiliate_id = ?", f.AffiliateID)
	}
	if f.PayoutID != 0 {
		db = db.Where("commissions.payout_id = ?", f.PayoutID)
	}
	return db
}

func (f CommissionFilter) Map() map[string]interface{} {
	return map[string]interface{}{"status": f.Status, "affiliate_id": f.AffiliateID, "payout_id": f.PayoutID}
}

type LinkFilter struct {
	AffiliateID uint64
	Status      model.LinkStatus
}

func (f LinkFilter) Apply(db *gorm.DB) *gorm.DB {
	db = db.Where("affiliate_links.affiliate_id = ?", f.AffiliateID)
	if f.Status != "" {
		db = db.Where("affiliate_links.status = ?", f.Status)
	} else {
		db = db.Where("affiliate_links.status <> ?", model.LinkStatusInactive)
	}
	return db
}

func (f LinkFilter) Map() map[string]interface{} {
	return map[string]interface{}{"status": f.Status}
}
