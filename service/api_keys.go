package service

import (
	apiKeyCache "gitlab.com/paramountdax-exchange/affiliate_api/cache/apikey"
	"gitlab.com/paramountdax-exchange/affiliate_api/model"
	"gitlab.com/paramountdax-exchange/affiliate_api/queries"
)

var errInvalidKey = &AuthError{Message: "Invalid API key"}

// GetAPIKeyByToken resolves the credential of an api key
func (service *Service) GetAPIKeyByToken(token string) (*model.APIKey, error) {
	prefix := model.APIKeyPrefix(token)
	if len(prefix) != model.APIKeyPrefixLength {
		return nil, errInvalidKey
	}
	key, decoded, found, isDecoded := apiKeyCache.Get(prefix)

	// if it's decoded and it matches simply return the key
	if found && isDecoded && decoded == token {
		return key, nil
	}

	// if found and decoded but it does not match then return an error
	if found && isDecoded {
		return nil, errInvalidKey
	}

	// if found but it's not decoded check if it's valid and if it is update the cache with the token
	if found && key.ValidateKey(token) {
		_ = apiKeyCache.SetDecoded(prefix, token)
		return key, nil
	}
	if found {
		return nil, errInvalidKey
	}

	// if not found in the cache follow the normal route and load it from db
	key, err := service.repo.GetAPIKeyByPrefix(prefix)
	if err != nil {
		if queries.IsNotFound(err) {
			return nil, errInvalidKey
		}
		return nil, classify(err, "api key", "load api key")
	}
	if !key.ValidateKey(token) {
		return nil, errInvalidKey
	}
	return key, nil
}

// AuthenticateAffiliate checks the key and the status of its owner
func (service *Service) AuthenticateAffiliate(token string) (*model.APIKey, error) {
	key, err := service.GetAPIKeyByToken(token)
	if err != nil {
		return nil, err
	}
	if key.Status != model.AffiliateStatusActive {
		return nil, &AuthError{Message: "Affiliate account is not active"}
	}
	return key, nil
}

// RotateAPIKey replaces the key of the affiliate and returns the new plain value
func (service *Service) RotateAPIKey(affiliateID uint64) (string, error) {
	affiliate, err := service.GetAffiliateByID(affiliateID)
	if err != nil {
		return "", err
	}
	plain, prefix, hash := model.NewAPIKey()
	db := service.repo.Conn.Model(&model.Affiliate{}).
		Where("id = ?", affiliateID).
		Updates(map[string]interface{}{"api_key_prefix": prefix, "api_key_hash": hash, "updated_at": service.now()})
	if db.Error != nil {
		return "", classify(db.Error, "api key", "rotate api key")
	}
	apiKeyCache.Remove(affiliate.APIKeyPrefix)
	return plain, nil
}
