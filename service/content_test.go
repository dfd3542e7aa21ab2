package service

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	. "github.com/smartystreets/goconvey/convey"
	"gitlab.com/paramountdax-exchange/affiliate_api/featureflags"
)

var contentLinkColumns = []string{"id", "affiliate_id", "short_code", "original_url", "name", "status"}

func expectContentLookups(mock sqlmock.Sqlmock, tier string) {
	mock.ExpectQuery(`SELECT \* FROM "affiliates"`).
		WillReturnRows(sqlmock.NewRows(affiliateColumns).AddRow(7, "jane", "jane@example.com", "affiliate", tier, "active", "0"))
	mock.ExpectQuery(`SELECT \* FROM "affiliate_links"`).
		WillReturnRows(sqlmock.NewRows(contentLinkColumns).AddRow(3, 7, "spring24", "https://shop.example.com/spring", "Spring sale", "active"))
}

func TestTemplateGenerator(t *testing.T) {
	Convey("The template generator renders the link into the copy", t, func() {
		text, err := TemplateGenerator{}.Generate(context.Background(), ContentPrompt{
			Platform: "twitter",
			Tone:     "excited",
			Name:     "Spring sale",
			URL:      "https://go.example.com/r/spring24",
		})
		So(err, ShouldBeNil)
		So(text, ShouldContainSubstring, "Spring sale")
		So(text, ShouldContainSubstring, "https://go.example.com/r/spring24")
	})

	Convey("Unknown platforms are rejected", t, func() {
		_, err := TemplateGenerator{}.Generate(context.Background(), ContentPrompt{Platform: "fax", Tone: "casual"})
		So(err, ShouldHaveSameTypeAs, &ValidationError{})
	})
}

func TestGenerateContent(t *testing.T) {
	Convey("Given a bronze affiliate with a daily quota of 2", t, func() {
		service, mock := setupService()

		Convey("the third generation of the day should be rate limited", func() {
			for i := 1; i <= 2; i++ {
				expectContentLookups(mock, "bronze")
				content, err := service.GenerateContent(7, ContentRequest{LinkID: 3, Platform: "Blog", Tone: "professional"})
				So(err, ShouldBeNil)
				So(content.Used, ShouldEqual, i)
				So(content.Quota, ShouldEqual, 2)
				So(content.LinkURL, ShouldEqual, "https://go.example.com/r/spring24")
			}

			expectContentLookups(mock, "bronze")
			_, err := service.GenerateContent(7, ContentRequest{LinkID: 3})
			So(err, ShouldHaveSameTypeAs, &RateLimitError{})
			So(mock.ExpectationsWereMet(), ShouldBeNil)
		})
	})

	Convey("Given a diamond affiliate", t, func() {
		service, mock := setupService()

		Convey("the quota should be unlimited", func() {
			for i := 0; i < 5; i++ {
				expectContentLookups(mock, "diamond")
				_, err := service.GenerateContent(7, ContentRequest{LinkID: 3})
				So(err, ShouldBeNil)
			}
			So(mock.ExpectationsWereMet(), ShouldBeNil)
		})
	})

	Convey("An unsupported tone is rejected before any query", t, func() {
		service, mock := setupService()
		_, err := service.GenerateContent(7, ContentRequest{LinkID: 3, Tone: "angry"})
		So(err, ShouldHaveSameTypeAs, &ValidationError{})
		So(mock.ExpectationsWereMet(), ShouldBeNil)
	})

	Convey("Generation can be switched off", t, func() {
		featureflags.SetDefault(featureflags.ContentGenerate, false)
		defer featureflags.SetDefault(featureflags.ContentGenerate, true)

		service, _ := setupService()
		_, err := service.GenerateContent(7, ContentRequest{LinkID: 3})
		So(err, ShouldHaveSameTypeAs, &ValidationError{})
	})
}

func TestQuotaKey(t *testing.T) {
	Convey("The quota key is per affiliate and UTC day", t, func() {
		So(quotaKey(7, testNow), ShouldEqual, "content:7:2024-03-15")
		So(endOfDay(testNow).Format("2006-01-02 15:04"), ShouldEqual, "2024-03-16 00:00")
	})
}
