package service

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgconn"
	"github.com/shopspring/decimal"
	. "github.com/smartystreets/goconvey/convey"
	"gitlab.com/paramountdax-exchange/affiliate_api/model"
)

var commissionColumns = []string{"id", "affiliate_id", "link_id", "order_id", "sale_amount", "commission_rate", "commission_amount", "status", "payout_id"}

func expectConversionLookups(mock sqlmock.Sqlmock, affiliateStatus string) {
	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "affiliate_links" WHERE short_code = \$1 AND status = \$2`).
		WithArgs("abc", "active").
		WillReturnRows(sqlmock.NewRows(linkColumns).
			AddRow(3, 7, "abc", "https://store.example.com", "example.com", "Store", "active", 10, 1, "0"))
	mock.ExpectQuery(`SELECT \* FROM "affiliates" WHERE id = \$1`).
		WithArgs(7).
		WillReturnRows(sqlmock.NewRows(affiliateColumns).AddRow(7, "jane", "jane@example.com", "affiliate", "silver", affiliateStatus, "600.00"))
}

func TestRecordConversion(t *testing.T) {
	Convey("Given a conversion on the link of a silver affiliate", t, func() {
		service, mock := setupService()
		in := ConversionInput{ShortCode: "abc", OrderID: "ORD-1", SaleAmount: decimal.NewFromInt(200), Country: "Germany"}

		Convey("a pending commission of 7.5% should be created", func() {
			expectConversionLookups(mock, "active")
			mock.ExpectQuery(`INSERT INTO "commissions"`).
				WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(40))
			mock.ExpectExec(`UPDATE "affiliate_links" SET "total_conversions"=total_conversions \+ 1 WHERE id = \$1`).
				WithArgs(3).
				WillReturnResult(sqlmock.NewResult(0, 1))
			mock.ExpectCommit()

			commission, err := service.RecordConversion(in)
			So(err, ShouldBeNil)
			So(commission.ID, ShouldEqual, 40)
			So(commission.AffiliateID, ShouldEqual, 7)
			So(*commission.LinkID, ShouldEqual, 3)
			So(commission.Status, ShouldEqual, model.CommissionStatusPending)
			So(commission.CommissionRate.String(), ShouldEqual, "7.5")
			So(commission.CommissionAmount.StringFixed(2), ShouldEqual, "15.00")
			So(commission.Country, ShouldEqual, "DE")
			So(commission.ProductID, ShouldBeNil)
			So(mock.ExpectationsWereMet(), ShouldBeNil)
		})

		Convey("a second conversion for the same order should conflict", func() {
			expectConversionLookups(mock, "active")
			mock.ExpectQuery(`INSERT INTO "commissions"`).
				WillReturnError(&pgconn.PgError{Code: "23505"})
			mock.ExpectRollback()

			_, err := service.RecordConversion(in)
			So(err, ShouldHaveSameTypeAs, &ConflictError{})
			So(mock.ExpectationsWereMet(), ShouldBeNil)
		})

		Convey("a suspended owner should not earn commissions", func() {
			expectConversionLookups(mock, "suspended")
			mock.ExpectRollback()

			_, err := service.RecordConversion(in)
			So(err, ShouldHaveSameTypeAs, &ValidationError{})
			So(mock.ExpectationsWereMet(), ShouldBeNil)
		})

		Convey("a sale without amount should be rejected", func() {
			in.SaleAmount = decimal.Zero
			_, err := service.RecordConversion(in)
			So(err, ShouldHaveSameTypeAs, &ValidationError{})
			So(err.(*ValidationError).Field, ShouldEqual, "sale_amount")
		})
	})
}

func TestUpdateCommissionStatus(t *testing.T) {
	Convey("Given a pending commission of 15.00", t, func() {
		service, mock := setupService()
		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT \* FROM "commissions" WHERE id = \$1 .* FOR UPDATE`).
			WithArgs(40).
			WillReturnRows(sqlmock.NewRows(commissionColumns).AddRow(40, 7, 3, "ORD-1", "200.00", "7.5", "15.00", "pending", nil))

		Convey("approving it should credit the affiliate and upgrade the tier", func() {
			mock.ExpectExec(`UPDATE "commissions" SET "approved_at"=\$1,"status"=\$2`).
				WillReturnResult(sqlmock.NewResult(0, 1))
			mock.ExpectQuery(`SELECT \* FROM "affiliates" WHERE id = \$1 .* FOR UPDATE`).
				WithArgs(7).
				WillReturnRows(sqlmock.NewRows(affiliateColumns).AddRow(7, "jane", "jane@example.com", "affiliate", "silver", "active", "1490.00"))
			mock.ExpectExec(`UPDATE "affiliates" SET "tier"=\$1,"total_earnings"=\$2`).
				WithArgs("gold", sqlmock.AnyArg(), sqlmock.AnyArg(), 7).
				WillReturnResult(sqlmock.NewResult(0, 1))
			mock.ExpectExec(`UPDATE "affiliate_links" SET "total_earnings"=total_earnings \+ \$1 WHERE id = \$2`).
				WillReturnResult(sqlmock.NewResult(0, 1))
			mock.ExpectCommit()

			commission, err := service.UpdateCommissionStatus(40, "Approved")
			So(err, ShouldBeNil)
			So(commission.Status, ShouldEqual, model.CommissionStatusApproved)
			So(*commission.ApprovedAt, ShouldEqual, testNow)
			So(mock.ExpectationsWereMet(), ShouldBeNil)
		})

		Convey("cancelling it should not touch the earnings", func() {
			mock.ExpectExec(`UPDATE "commissions" SET "status"=\$1`).
				WillReturnResult(sqlmock.NewResult(0, 1))
			mock.ExpectCommit()

			commission, err := service.UpdateCommissionStatus(40, "cancelled")
			So(err, ShouldBeNil)
			So(commission.Status, ShouldEqual, model.CommissionStatusCancelled)
			So(mock.ExpectationsWereMet(), ShouldBeNil)
		})
	})

	Convey("Given an approved commission", t, func() {
		service, mock := setupService()
		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT \* FROM "commissions"`).
			WillReturnRows(sqlmock.NewRows(commissionColumns).AddRow(41, 7, 3, "ORD-2", "100.00", "5", "5.00", "approved", nil))

		Convey("cancelling it should debit the affiliate and the link", func() {
			mock.ExpectExec(`UPDATE "commissions" SET "status"=\$1`).
				WillReturnResult(sqlmock.NewResult(0, 1))
			mock.ExpectExec(`UPDATE "affiliates" SET "total_earnings"=GREATEST\(total_earnings - \$1, 0\) WHERE id = \$2`).
				WillReturnResult(sqlmock.NewResult(0, 1))
			mock.ExpectExec(`UPDATE "affiliate_links" SET "total_earnings"=GREATEST\(total_earnings - \$1, 0\) WHERE id = \$2`).
				WillReturnResult(sqlmock.NewResult(0, 1))
			mock.ExpectCommit()

			commission, err := service.UpdateCommissionStatus(41, "cancelled")
			So(err, ShouldBeNil)
			So(commission.Status, ShouldEqual, model.CommissionStatusCancelled)
			So(mock.ExpectationsWereMet(), ShouldBeNil)
		})

		Convey("approving it again should change nothing", func() {
			mock.ExpectRollback()

			commission, err := service.UpdateCommissionStatus(41, "approved")
			So(err, ShouldBeNil)
			So(commission.Status, ShouldEqual, model.CommissionStatusApproved)
			So(mock.ExpectationsWereMet(), ShouldBeNil)
		})
	})

	Convey("Given a paid commission", t, func() {
		service, mock := setupService()
		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT \* FROM "commissions"`).
			WillReturnRows(sqlmock.NewRows(commissionColumns).AddRow(42, 7, 3, "ORD-3", "100.00", "5", "5.00", "paid", 11))
		mock.ExpectRollback()

		Convey("it can not be cancelled", func() {
			_, err := service.UpdateCommissionStatus(42, "cancelled")
			So(err, ShouldHaveSameTypeAs, &ConflictError{})
			So(mock.ExpectationsWereMet(), ShouldBeNil)
		})
	})

	Convey("Given an unknown target status", t, func() {
		service, _ := setupService()

		Convey("it should be rejected before touching the database", func() {
			_, err := service.UpdateCommissionStatus(40, "paid")
			So(err, ShouldHaveSameTypeAs, &InvalidStatusError{})
		})
	})
}
