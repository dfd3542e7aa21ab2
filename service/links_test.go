package service

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgconn"
	. "github.com/smartystreets/goconvey/convey"
	"gitlab.com/paramountdax-exchange/affiliate_api/model"
	"gitlab.com/paramountdax-exchange/affiliate_api/queries"
)

var linkColumns = []string{"id", "affiliate_id", "short_code", "original_url", "domain", "name", "status", "total_clicks", "total_conversions", "total_earnings"}

func TestParseTargetURL(t *testing.T) {
	Convey("Given link targets", t, func() {
		Convey("the registrable domain should be extracted", func() {
			target, domain, err := parseTargetURL(" https://shop.example.co.uk/p?id=1 ")
			So(err, ShouldBeNil)
			So(target, ShouldEqual, "https://shop.example.co.uk/p?id=1")
			So(domain, ShouldEqual, "example.co.uk")
		})
		Convey("relative and non http urls should be rejected", func() {
			for _, raw := range []string{"", "/products/1", "ftp://files.example.com/a", "https://"} {
				_, _, err := parseTargetURL(raw)
				So(err, ShouldHaveSameTypeAs, &ValidationError{})
			}
		})
	})
}

func TestCreateLink(t *testing.T) {
	Convey("Given a custom short code", t, func() {
		service, mock := setupService()

		Convey("the link should be stored with it", func() {
			mock.ExpectQuery(`INSERT INTO "affiliate_links"`).
				WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(5))

			link, err := service.CreateLink(7, CreateLinkInput{URL: "https://store.example.com/boots", ShortCode: "spring-boots"})
			So(err, ShouldBeNil)
			So(link.ID, ShouldEqual, 5)
			So(link.ShortCode, ShouldEqual, "spring-boots")
			So(link.Name, ShouldEqual, "example.com")
			So(link.Status, ShouldEqual, model.LinkStatusActive)
			So(link.ConversionRate, ShouldEqual, 0)
			So(mock.ExpectationsWereMet(), ShouldBeNil)
		})

		Convey("a taken code should be reported as a conflict", func() {
			mock.ExpectQuery(`INSERT INTO "affiliate_links"`).
				WillReturnError(&pgconn.PgError{Code: "23505"})

			_, err := service.CreateLink(7, CreateLinkInput{URL: "https://store.example.com", ShortCode: "taken"})
			So(err, ShouldHaveSameTypeAs, &ConflictError{})
			So(mock.ExpectationsWereMet(), ShouldBeNil)
		})

		Convey("an invalid code should be rejected", func() {
			_, err := service.CreateLink(7, CreateLinkInput{URL: "https://store.example.com", ShortCode: "a b"})
			So(err, ShouldHaveSameTypeAs, &ValidationError{})
			So(err.(*ValidationError).Field, ShouldEqual, "short_code")
		})
	})

	Convey("Given no short code", t, func() {
		service, mock := setupService()
		mock.ExpectQuery(`INSERT INTO "affiliate_links"`).
			WillReturnError(&pgconn.PgError{Code: "23505"})
		mock.ExpectQuery(`INSERT INTO "affiliate_links"`).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(6))

		Convey("a new code should be generated after a collision", func() {
			link, err := service.CreateLink(7, CreateLinkInput{URL: "https://store.example.com", Name: " Spring sale "})
			So(err, ShouldBeNil)
			So(link.ID, ShouldEqual, 6)
			So(link.ShortCode, ShouldHaveLength, shortCodeLength)
			So(link.Name, ShouldEqual, "Spring sale")
			So(mock.ExpectationsWereMet(), ShouldBeNil)
		})
	})
}

func TestUpdateLink(t *testing.T) {
	Convey("Given a link of the affiliate", t, func() {
		service, mock := setupService()
		mock.ExpectQuery(`SELECT \* FROM "affiliate_links" WHERE id = \$1 AND affiliate_id = \$2`).
			WithArgs(3, 7).
			WillReturnRows(sqlmock.NewRows(linkColumns).
				AddRow(3, 7, "abc", "https://store.example.com", "example.com", "Store", "active", 10, 2, "12.50"))

		Convey("renaming it should only update the name", func() {
			name := "Boots"
			mock.ExpectExec(`UPDATE "affiliate_links" SET "name"=\$1,"updated_at"=\$2 WHERE id = \$3 AND affiliate_id = \$4`).
				WillReturnResult(sqlmock.NewResult(0, 1))

			link, err := service.UpdateLink(7, 3, UpdateLinkInput{Name: &name})
			So(err, ShouldBeNil)
			So(link.Name, ShouldEqual, "Boots")
			So(link.ConversionRate, ShouldEqual, 20)
			So(mock.ExpectationsWereMet(), ShouldBeNil)
		})

		Convey("it can not be set inactive by an update", func() {
			status := "inactive"
			_, err := service.UpdateLink(7, 3, UpdateLinkInput{Status: &status})
			So(err, ShouldHaveSameTypeAs, &InvalidStatusError{})
		})

		Convey("an empty update should be rejected", func() {
			_, err := service.UpdateLink(7, 3, UpdateLinkInput{})
			So(err, ShouldHaveSameTypeAs, &ValidationError{})
		})
	})

	Convey("Given a link of another affiliate", t, func() {
		service, mock := setupService()
		mock.ExpectQuery(`SELECT \* FROM "affiliate_links"`).
			WillReturnRows(sqlmock.NewRows(linkColumns))

		Convey("it should not be found", func() {
			name := "Boots"
			_, err := service.UpdateLink(8, 3, UpdateLinkInput{Name: &name})
			So(err, ShouldHaveSameTypeAs, &NotFoundError{})
		})
	})
}

func TestDeleteLink(t *testing.T) {
	Convey("Given a link to delete", t, func() {
		service, mock := setupService()

		Convey("an active link should be marked inactive", func() {
			mock.ExpectExec(`UPDATE "affiliate_links" SET "status"=\$1`).
				WillReturnResult(sqlmock.NewResult(0, 1))
			So(service.DeleteLink(7, 3), ShouldBeNil)
			So(mock.ExpectationsWereMet(), ShouldBeNil)
		})

		Convey("an unknown or already deleted link should not be found", func() {
			mock.ExpectExec(`UPDATE "affiliate_links" SET "status"=\$1`).
				WillReturnResult(sqlmock.NewResult(0, 0))
			So(service.DeleteLink(7, 3), ShouldHaveSameTypeAs, &NotFoundError{})
		})
	})
}

func TestGetLinks(t *testing.T) {
	Convey("Given an affiliate with links", t, func() {
		service, mock := setupService()
		mock.ExpectQuery(`SELECT count\(\*\) FROM "affiliate_links" WHERE affiliate_links.affiliate_id = \$1 AND affiliate_links.status <> \$2`).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
		mock.ExpectQuery(`SELECT \* FROM "affiliate_links" WHERE .* ORDER BY affiliate_links.created_at DESC LIMIT 10`).
			WillReturnRows(sqlmock.NewRows(linkColumns).
				AddRow(3, 7, "abc", "https://store.example.com", "example.com", "Store", "active", 4, 1, "5.00"))

		Convey("deleted links should be hidden and the rates computed", func() {
			list, err := service.GetLinks(queries.LinkFilter{AffiliateID: 7}, 1, 10)
			So(err, ShouldBeNil)
			So(list.Meta.Count, ShouldEqual, 1)
			So(list.Links, ShouldHaveLength, 1)
			So(list.Links[0].ConversionRate, ShouldEqual, 25)
			So(mock.ExpectationsWereMet(), ShouldBeNil)
		})
	})
}

func TestTrackClick(t *testing.T) {
	Convey("Given an active link", t, func() {
		service, mock := setupService()
		mock.ExpectQuery(`SELECT \* FROM "affiliate_links" WHERE short_code = \$1 AND status = \$2`).
			WithArgs("abc", "active").
			WillReturnRows(sqlmock.NewRows(linkColumns).
				AddRow(3, 7, "abc", "https://store.example.com/boots", "example.com", "Store", "active", 4, 1, "5.00"))
		mock.ExpectBegin()
		mock.ExpectQuery(`INSERT INTO "link_clicks"`).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(100))
		mock.ExpectExec(`UPDATE "affiliate_links" SET "total_clicks"=total_clicks \+ 1 WHERE id = \$1`).
			WithArgs(3).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		Convey("the click should be stored and counted", func() {
			link, err := service.TrackClick("abc", ClickInput{IP: "203.0.113.9", Country: "Germany"})
			So(err, ShouldBeNil)
			So(link.OriginalURL, ShouldEqual, "https://store.example.com/boots")
			So(link.TotalClicks, ShouldEqual, 5)
			So(mock.ExpectationsWereMet(), ShouldBeNil)
		})
	})

	Convey("Given an unknown code", t, func() {
		service, mock := setupService()
		mock.ExpectQuery(`SELECT \* FROM "affiliate_links"`).
			WillReturnRows(sqlmock.NewRows(linkColumns))

		Convey("the link should not be found", func() {
			_, err := service.TrackClick("nope", ClickInput{})
			So(err, ShouldHaveSameTypeAs, &NotFoundError{})
		})
	})
}

func TestClickHelpers(t *testing.T) {
	Convey("Given visitor details", t, func() {
		Convey("countries should be normalized to their code", func() {
			So(normalizeCountry("Germany"), ShouldEqual, "DE")
			So(normalizeCountry(""), ShouldEqual, "")
			So(normalizeCountry("Atlantis"), ShouldEqual, "")
		})
		Convey("an empty user agent should fall back to the defaults", func() {
			info := parseUserAgent("")
			So(info.Device, ShouldEqual, "desktop")
			So(info.Browser, ShouldEqual, "unknown")
		})
	})
}
