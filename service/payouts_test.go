package service

import (
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	. "github.com/smartystreets/goconvey/convey"
	"gitlab.com/paramountdax-exchange/affiliate_api/featureflags"
	"gitlab.com/paramountdax-exchange/affiliate_api/model"
)

func TestPendingPayouts(t *testing.T) {
	Convey("Given an affiliate with 45.00 and 60.00 approved", t, func() {
		service, mock := setupService()

		mock.ExpectQuery(`SELECT c.affiliate_id, a.username, a.email, SUM\(c.commission_amount\) as total_pending`).
			WillReturnRows(sqlmock.NewRows([]string{"affiliate_id", "username", "email", "total_pending", "commission_count", "oldest", "newest"}).
				AddRow(7, "jane", "jane@example.com", "105.00", 2, testNow.AddDate(0, 0, -10), testNow.AddDate(0, 0, -1)))

		Convey("the affiliate should be listed with a total of 105.00", func() {
			pending, err := service.PendingPayouts(decimal.NewFromInt(50))
			So(err, ShouldBeNil)
			So(pending, ShouldHaveLength, 1)
			So(pending[0].AffiliateID, ShouldEqual, 7)
			So(pending[0].TotalPending.StringFixed(2), ShouldEqual, "105.00")
			So(pending[0].CommissionCount, ShouldEqual, 2)
			So(mock.ExpectationsWereMet(), ShouldBeNil)
		})
	})
}

func TestProcessPayouts(t *testing.T) {
	Convey("Given an affiliate with two approved commissions", t, func() {
		service, mock := setupService()

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT \* FROM "commissions" WHERE .* FOR UPDATE`).
			WillReturnRows(sqlmock.NewRows([]string{"id", "affiliate_id", "order_id", "commission_amount", "status"}).
				AddRow(1, 7, "A-1", "45.00", "approved").
				AddRow(2, 7, "A-2", "60.00", "approved"))
		mock.ExpectQuery(`INSERT INTO "payouts"`).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(11))
		mock.ExpectExec(`UPDATE "commissions" SET`).
			WillReturnResult(sqlmock.NewResult(0, 2))
		mock.ExpectQuery(`INSERT INTO "payout_items"`).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1).AddRow(2))
		mock.ExpectCommit()

		Convey("one payout of 105.00 should be created and the ids deduplicated", func() {
			batch, err := service.ProcessPayouts([]uint64{7, 7}, "", "march run")
			So(err, ShouldBeNil)
			So(batch.Processed, ShouldHaveLength, 1)
			So(batch.Failed, ShouldHaveLength, 0)
			So(batch.Processed[0].PayoutID, ShouldEqual, 11)
			So(batch.Processed[0].CommissionCount, ShouldEqual, 2)
			So(batch.Processed[0].Amount.StringFixed(2), ShouldEqual, "105.00")
			So(batch.TotalAmount.StringFixed(2), ShouldEqual, "105.00")
			So(mock.ExpectationsWereMet(), ShouldBeNil)
		})
	})

	Convey("Given an affiliate without approved commissions", t, func() {
		service, mock := setupService()

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT \* FROM "commissions"`).
			WillReturnRows(sqlmock.NewRows([]string{"id", "affiliate_id", "commission_amount", "status"}))
		mock.ExpectRollback()

		Convey("no payout should be created", func() {
			batch, err := service.ProcessPayouts([]uint64{3}, "paypal", "")
			So(err, ShouldBeNil)
			So(batch.Processed, ShouldHaveLength, 0)
			So(batch.Failed, ShouldHaveLength, 0)
			So(batch.TotalAmount.IsZero(), ShouldBeTrue)
			So(mock.ExpectationsWereMet(), ShouldBeNil)
		})
	})

	Convey("Given commissions that changed while paying", t, func() {
		service, mock := setupService()

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT \* FROM "commissions"`).
			WillReturnRows(sqlmock.NewRows([]string{"id", "affiliate_id", "commission_amount", "status"}).
				AddRow(1, 7, "45.00", "approved").
				AddRow(2, 7, "60.00", "approved"))
		mock.ExpectQuery(`INSERT INTO "payouts"`).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(12))
		mock.ExpectExec(`UPDATE "commissions" SET`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectRollback()

		Convey("the affiliate should be reported as failed", func() {
			batch, err := service.ProcessPayouts([]uint64{7}, "", "")
			So(err, ShouldBeNil)
			So(batch.Processed, ShouldHaveLength, 0)
			So(batch.Failed, ShouldHaveLength, 1)
			So(batch.Failed[0].AffiliateID, ShouldEqual, 7)
			So(mock.ExpectationsWereMet(), ShouldBeNil)
		})
	})

	Convey("An empty list is rejected", t, func() {
		service, _ := setupService()
		_, err := service.ProcessPayouts(nil, "", "")
		So(err, ShouldHaveSameTypeAs, &ValidationError{})
	})
}

func TestBulkPayoutsDisabled(t *testing.T) {
	Convey("Bulk payouts return a validation error when the flag is off", t, func() {
		featureflags.SetDefault(featureflags.PayoutsBulk, false)
		defer featureflags.SetDefault(featureflags.PayoutsBulk, true)

		service, _ := setupService()
		_, err := service.BulkPayouts(decimal.NewFromInt(50), "", "")
		So(err, ShouldHaveSameTypeAs, &ValidationError{})
	})
}

func TestUpdatePayoutStatus(t *testing.T) {
	payoutColumns := []string{"id", "affiliate_id", "amount", "status", "payment_method"}

	Convey("Marking a processing payout as failed", t, func() {
		service, mock := setupService()

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT \* FROM "payouts" WHERE id = \$1 .*FOR UPDATE`).
			WillReturnRows(sqlmock.NewRows(payoutColumns).AddRow(11, 7, "105.00", "processing", "manual"))
		mock.ExpectExec(`UPDATE "payouts" SET`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`UPDATE "commissions" SET "payout_id"=NULL,"status"=\$1`).
			WillReturnResult(sqlmock.NewResult(0, 2))
		mock.ExpectCommit()
		mock.ExpectQuery(`SELECT \* FROM "affiliates"`).
			WillReturnRows(sqlmock.NewRows(affiliateColumns).AddRow(7, "jane", "jane@example.com", "affiliate", "bronze", "active", "0"))
		mock.ExpectQuery(`SELECT \* FROM "affiliate_settings"`).
			WillReturnRows(sqlmock.NewRows([]string{"id", "affiliate_id", "language", "notifications"}).
				AddRow(1, 7, "en", `{"email_payouts": false}`))

		Convey("should hand the commissions back to approved", func() {
			payout, err := service.UpdatePayoutStatus(11, "FAILED", "", "bank rejected")
			So(err, ShouldBeNil)
			So(payout.Status, ShouldEqual, model.PayoutStatusFailed)
			So(payout.Notes, ShouldEqual, "bank rejected")
			So(mock.ExpectationsWereMet(), ShouldBeNil)
		})
	})

	Convey("Completing a payout sets the processed time", t, func() {
		service, mock := setupService()

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT \* FROM "payouts"`).
			WillReturnRows(sqlmock.NewRows(payoutColumns).AddRow(11, 7, "105.00", "processing", "manual"))
		mock.ExpectExec(`UPDATE "payouts" SET`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()
		mock.ExpectQuery(`SELECT \* FROM "affiliates"`).
			WillReturnRows(sqlmock.NewRows(affiliateColumns).AddRow(7, "jane", "jane@example.com", "affiliate", "bronze", "active", "0"))
		mock.ExpectQuery(`SELECT \* FROM "affiliate_settings"`).
			WillReturnError(errors.New("record not found"))

		payout, err := service.UpdatePayoutStatus(11, "completed", "TX-1", "")
		So(err, ShouldBeNil)
		So(payout.Status, ShouldEqual, model.PayoutStatusCompleted)
		So(payout.TransactionID, ShouldEqual, "TX-1")
		So(payout.ProcessedAt, ShouldNotBeNil)
		So(payout.ProcessedAt.Equal(testNow), ShouldBeTrue)
		So(mock.ExpectationsWereMet(), ShouldBeNil)
	})

	Convey("A failed payout can not be completed", t, func() {
		service, mock := setupService()

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT \* FROM "payouts"`).
			WillReturnRows(sqlmock.NewRows(payoutColumns).AddRow(11, 7, "105.00", "failed", "manual"))
		mock.ExpectRollback()

		_, err := service.UpdatePayoutStatus(11, "completed", "", "")
		So(err, ShouldHaveSameTypeAs, &ConflictError{})
		So(mock.ExpectationsWereMet(), ShouldBeNil)
	})

	Convey("An unknown status is rejected before touching the storage", t, func() {
		service, mock := setupService()

		_, err := service.UpdatePayoutStatus(11, "paid", "", "")
		So(err, ShouldHaveSameTypeAs, &InvalidStatusError{})
		So(mock.ExpectationsWereMet(), ShouldBeNil)
	})

	Convey("A missing payout is reported as not found", t, func() {
		service, mock := setupService()

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT \* FROM "payouts"`).
			WillReturnRows(sqlmock.NewRows(payoutColumns))
		mock.ExpectRollback()

		_, err := service.UpdatePayoutStatus(99, "completed", "", "")
		So(err, ShouldHaveSameTypeAs, &NotFoundError{})
		So(mock.ExpectationsWereMet(), ShouldBeNil)
	})
}
