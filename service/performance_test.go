package service

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	. "github.com/smartystreets/goconvey/convey"
)

func TestTrendWindow(t *testing.T) {
	Convey("The trend window covers whole UTC days, today included", t, func() {
		w := trendWindow(testNow, 7)
		So(w.From, ShouldEqual, time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC))
		So(w.To, ShouldEqual, time.Date(2024, 3, 16, 0, 0, 0, 0, time.UTC))
	})
}

func TestFillTrend(t *testing.T) {
	Convey("Days without activity are filled with zeros", t, func() {
		w := trendWindow(testNow, 3)
		points := fillTrend(w,
			[]dailyCommissions{{Day: "2024-03-14", Sales: decimal.NewFromInt(200), Commissions: decimal.NewFromInt(20), Conversions: 2}},
			[]dailyClicks{{Day: "2024-03-14", Clicks: 40}, {Day: "2024-03-15", Clicks: 10}},
		)
		So(points, ShouldHaveLength, 3)
		So(points[0].Date, ShouldEqual, "2024-03-13")
		So(points[0].Clicks, ShouldEqual, 0)
		So(points[0].Sales.IsZero(), ShouldBeTrue)
		So(points[1].Conversions, ShouldEqual, 2)
		So(points[1].ConversionRate, ShouldEqual, 5)
		So(points[2].Clicks, ShouldEqual, 10)
		So(points[2].ConversionRate, ShouldEqual, 0)
	})
}

func TestFunnel(t *testing.T) {
	Convey("Each stage rate is relative to the previous stage", t, func() {
		stages := funnel([]string{"clicks", "conversions", "approved", "paid"}, []int64{1000, 50, 40, 0})
		So(stages, ShouldHaveLength, 4)
		So(stages[0].Rate, ShouldEqual, 100)
		So(stages[1].Rate, ShouldEqual, 5)
		So(stages[2].Rate, ShouldEqual, 80)
		So(stages[3].Rate, ShouldEqual, 0)
	})
}

func TestMergeCountries(t *testing.T) {
	Convey("Clicks and conversions are merged per country", t, func() {
		segments := mergeCountries(
			[]countryCount{{Country: "us", Count: 100}, {Country: "unknown", Count: 5}, {Country: "DE", Count: 30}},
			[]countryEarnings{{Country: "US", Conversions: 4, Earnings: decimal.NewFromInt(40)}, {Country: "FR", Conversions: 1, Earnings: decimal.NewFromInt(8)}},
		)
		So(segments, ShouldHaveLength, 4)
		So(segments[0].Segment, ShouldEqual, "US")
		So(segments[0].Clicks, ShouldEqual, 100)
		So(segments[0].Conversions, ShouldEqual, 4)
		So(segments[0].ConversionRate, ShouldEqual, 4)
		So(segments[1].Segment, ShouldEqual, "DE")
		So(segments[2].Segment, ShouldEqual, "unknown")
		So(segments[3].Segment, ShouldEqual, "FR")
		So(segments[3].ConversionRate, ShouldEqual, 0)
	})
}

func TestClamp(t *testing.T) {
	Convey("Days and limits are clamped", t, func() {
		So(clampDays(0), ShouldEqual, 30)
		So(clampDays(1000), ShouldEqual, maxPerformanceDays)
		So(clampDays(7), ShouldEqual, 7)
		So(clampLimit(-1), ShouldEqual, defaultRankingLimit)
		So(clampLimit(500), ShouldEqual, maxRankingLimit)
	})
}
