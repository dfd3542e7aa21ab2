package queries

import (
	"time"

	"gitlab.com/paramountdax-exchange/affiliate_api/model"
)

// DeleteExpiredOTPCodes removes the codes that expired or were used before the given time
func (repo *Repo) DeleteExpiredOTPCodes(before time.Time) (int64, error) {
	db := repo.Conn.
		Where("expires_at < ? OR used_at < ?", before, before).
		Delete(&model.OTPCode{})
	return db.RowsAffected, db.Error
}
