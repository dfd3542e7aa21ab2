package crons

import (
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/rs/zerolog/log"
	. "github.com/smartystreets/goconvey/convey"
	cache "gitlab.com/paramountdax-exchange/affiliate_api/cache/apikey"
	"gitlab.com/paramountdax-exchange/affiliate_api/queries"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func setupRepo() (*queries.Repo, sqlmock.Sqlmock) {
	logger := log.With().Str("test", "crons").Str("method", "setupRepo").Logger()
	db, mock, err := sqlmock.New()
	if err != nil {
		logger.Fatal().Msgf("can't create sqlmock: %s", err)
	}

	dialector := postgres.New(postgres.Config{
		DSN:                  "postgres-mock",
		DriverName:           "postgres",
		Conn:                 db,
		PreferSimpleProtocol: true,
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{SkipDefaultTransaction: true})
	if err != nil {
		logger.Fatal().Msgf("can't open gorm connection: %s", err)
	}

	return &queries.Repo{
		Conn:            gormDB,
		ConnReader:      gormDB,
		ConnReaderAdmin: gormDB,
	}, mock
}

func TestCronSyncAffiliateTiers(t *testing.T) {
	Convey("it should upgrade only the affiliates whose earnings crossed a threshold", t, func() {
		repo, mock := setupRepo()

		mock.ExpectQuery(`SELECT id, tier, total_earnings FROM "affiliates"`).
			WillReturnRows(sqlmock.NewRows([]string{"id", "tier", "total_earnings"}).
				AddRow(1, "bronze", "600.00").
				AddRow(2, "gold", "100.00").
				AddRow(3, "silver", "900.00"))
		mock.ExpectExec(`UPDATE "affiliates" SET "tier"`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		CronSyncAffiliateTiers(repo)

		So(mock.ExpectationsWereMet(), ShouldBeNil)
	})

	Convey("it should stop when the affiliates can not be loaded", t, func() {
		repo, mock := setupRepo()

		mock.ExpectQuery(`SELECT id, tier, total_earnings FROM "affiliates"`).
			WillReturnError(errors.New("connection refused"))

		CronSyncAffiliateTiers(repo)

		So(mock.ExpectationsWereMet(), ShouldBeNil)
	})
}

func TestCronUpdateAPIKeysCache(t *testing.T) {
	Convey("it should replace the cached keys with the active ones", t, func() {
		repo, mock := setupRepo()

		mock.ExpectQuery(`SELECT id, api_key_prefix, api_key_hash, role, status, tier FROM "affiliates"`).
			WillReturnRows(sqlmock.NewRows([]string{"id", "api_key_prefix", "api_key_hash", "role", "status", "tier"}).
				AddRow(1, "abcdefg", "hash-1", "affiliate", "active", "bronze").
				AddRow(2, "hijklmn", "hash-2", "admin", "active", "gold"))

		CronUpdateAPIKeysCache(repo)

		So(mock.ExpectationsWereMet(), ShouldBeNil)
		So(cache.Len(), ShouldEqual, 2)

		key, _, found, _ := cache.Get("hijklmn")
		So(found, ShouldBeTrue)
		So(key.AffiliateID, ShouldEqual, 2)
	})
}

func TestCronCleanupOTPCodes(t *testing.T) {
	Convey("it should delete expired and used codes", t, func() {
		repo, mock := setupRepo()

		mock.ExpectExec(`DELETE FROM "otp_codes"`).
			WillReturnResult(sqlmock.NewResult(0, 3))

		CronCleanupOTPCodes(repo)

		So(mock.ExpectationsWereMet(), ShouldBeNil)
	})
}

func TestGetCronByID(t *testing.T) {
	Convey("it should return a noop for unknown ids", t, func() {
		repo, _ := setupRepo()
		So(GetCronByID("unknown", repo), ShouldNotBeNil)
		So(func() { GetCronByID("unknown", repo)() }, ShouldNotPanic)
	})
}
