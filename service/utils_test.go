package service

import (
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/rs/zerolog/log"
	"gitlab.com/paramountdax-exchange/affiliate_api/config"
	"gitlab.com/paramountdax-exchange/affiliate_api/queries"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var testNow = time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)

func setupDB() (*gorm.DB, sqlmock.Sqlmock) {
	logger := log.With().Str("test", "service").Str("method", "setupDB").Logger()
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

	return gormDB, mock
}

func setupRepo() (*queries.Repo, sqlmock.Sqlmock) {
	db, mock := setupDB()
	return &queries.Repo{
		Conn:            db,
		ConnReader:      db,
		ConnReaderAdmin: db,
	}, mock
}

func testConfig() config.Config {
	cfg := config.Config{}
	cfg.Commission.PayoutThreshold = 50
	cfg.Commission.TierRates = map[string]float64{"bronze": 5, "silver": 7.5, "gold": 10}
	cfg.Content.DailyQuota = map[string]int{"bronze": 2, "diamond": 0}
	cfg.OTP.TTLMinutes = 10
	cfg.OTP.MaxAttempts = 5
	cfg.Server.API.JWTTokenSecret = "secret"
	cfg.Server.API.JWTTokenTTL = 3600
	cfg.Server.API.Domain = "https://go.example.com"
	return cfg
}

func setupService() (*Service, sqlmock.Sqlmock) {
	repo, mock := setupRepo()
	return NewService(testConfig(), repo, WithClock(func() time.Time { return testNow })), mock
}

var affiliateColumns = []string{"id", "username", "email", "role", "tier", "status", "total_earnings"}
