package queries

import (
	"gitlab.com/paramountdax-exchange/affiliate_api/model"
)

// GetAPIKeyByPrefix loads the credential of the affiliate owning the key prefix
func (repo *Repo) GetAPIKeyByPrefix(prefix string) (*model.APIKey, error) {
	key := model.APIKey{}
	db := repo.ConnReader.Table("affiliates").
		Select("id, api_key_prefix, api_key_hash, role, status, tier").
		Where("api_key_prefix = ?", prefix).
		Take(&key)
	if db.Error != nil {
		return nil, db.Error
	}
	return &key, nil
}

// GetActiveAPIKeys returns the credentials of every active affiliate
func (repo *Repo) GetActiveAPIKeys() ([]*model.APIKey, error) {
	keys := make([]*model.APIKey, 0)
	db := repo.ConnReader.Table("affiliates").
		Select("id, api_key_prefix, api_key_hash, role, status, tier").
		Where("status = ? AND api_key_prefix IS NOT NULL AND api_key_prefix <> ''", model.AffiliateStatusActive).
		Find(&keys)
	return keys, db.Error
}
