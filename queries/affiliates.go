package queries

import (
	"github.com/shopspring/decimal"
	"gitlab.com/paramountdax-exchange/affiliate_api/model"
)

// AffiliateTier is the minimal projection used to resync tiers
type AffiliateTier struct {
	ID            uint64
	Tier          model.Tier
	TotalEarnings decimal.Decimal
}

// GetAffiliateTiers returns the tier and earnings of every non suspended affiliate
func (repo *Repo) GetAffiliateTiers() ([]AffiliateTier, error) {
	rows := make([]AffiliateTier, 0)
	db := repo.ConnReader.Table("affiliates").
		Select("id, tier, total_earnings").
		Where("status <> ?", model.AffiliateStatusSuspended).
		Order("id ASC").
		Scan(&rows)
	return rows, db.Error
}

// UpdateAffiliateTier sets the tier of one affiliate
func (repo *Repo) UpdateAffiliateTier(id uint64, tier model.Tier) error {
	return repo.Conn.Model(&model.Affiliate{}).
		Where("id = ?", id).
		Update("tier", tier).Error
}
