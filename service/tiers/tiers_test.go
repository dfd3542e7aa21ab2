package tiers

import (
	"math"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
	"gitlab.com/paramountdax-exchange/affiliate_api/model"
)

func TestProgress(t *testing.T) {
	Convey("Given a gold affiliate with 3000 earned", t, func() {
		progress, err := Progress(model.TierGold, 3000)

		Convey("the progress to premium should be computed from the gold range", func() {
			So(err, ShouldBeNil)
			So(progress.ProgressPercent, ShouldEqual, 42.86)
			So(progress.NextTier, ShouldNotBeNil)
			So(*progress.NextTier, ShouldEqual, model.TierPremium)
			So(progress.RequiredEarnings, ShouldEqual, 2000.00)
		})
	})

	Convey("Given a diamond affiliate", t, func() {
		progress, err := Progress(model.TierDiamond, 1000000)

		Convey("the tier should be maxed out", func() {
			So(err, ShouldBeNil)
			So(progress.ProgressPercent, ShouldEqual, 100)
			So(progress.NextTier, ShouldBeNil)
			So(progress.RequiredEarnings, ShouldEqual, 0)
		})
	})

	Convey("Given an unknown tier label", t, func() {
		progress, err := Progress(model.Tier("legend"), 10)

		Convey("it should signal the error and fall back to a maxed progress", func() {
			So(err, ShouldNotBeNil)
			_, ok := err.(*UnknownTierError)
			So(ok, ShouldBeTrue)
			So(progress.ProgressPercent, ShouldEqual, 100)
			So(progress.NextTier, ShouldBeNil)
			So(ProgressOrMax(model.Tier("legend"), 10), ShouldResemble, progress)
		})
	})

	Convey("Given earnings outside of the tier range", t, func() {
		Convey("progress should be clamped between 0 and 100", func() {
			below, _ := Progress(model.TierSilver, 100)
			above, _ := Progress(model.TierSilver, 9000)
			So(below.ProgressPercent, ShouldEqual, 0)
			So(above.ProgressPercent, ShouldEqual, 100)
			So(above.RequiredEarnings, ShouldEqual, 0)
		})
	})
}

func TestProgressBounds(t *testing.T) {
	Convey("For every tier with a finite maximum", t, func() {
		for _, threshold := range Thresholds {
			if math.IsInf(threshold.Max, 1) {
				continue
			}
			atMin, err := Progress(threshold.Tier, threshold.Min)
			So(err, ShouldBeNil)
			So(atMin.ProgressPercent, ShouldEqual, 0)

			nearMax, err := Progress(threshold.Tier, threshold.Max-0.001)
			So(err, ShouldBeNil)
			So(nearMax.ProgressPercent, ShouldBeGreaterThan, 99.99)
			So(nearMax.ProgressPercent, ShouldBeLessThanOrEqualTo, 100)
		}
	})
}

func TestForEarnings(t *testing.T) {
	Convey("Every earnings value should map to exactly one tier", t, func() {
		So(ForEarnings(0), ShouldEqual, model.TierBronze)
		So(ForEarnings(499.99), ShouldEqual, model.TierBronze)
		So(ForEarnings(500), ShouldEqual, model.TierSilver)
		So(ForEarnings(1500), ShouldEqual, model.TierGold)
		So(ForEarnings(4999.99), ShouldEqual, model.TierGold)
		So(ForEarnings(5000), ShouldEqual, model.TierPremium)
		So(ForEarnings(15000), ShouldEqual, model.TierPlatinum)
		So(ForEarnings(50000), ShouldEqual, model.TierDiamond)
		So(ForEarnings(1e12), ShouldEqual, model.TierDiamond)
		So(ForEarnings(-5), ShouldEqual, model.TierBronze)

		for e := 0.0; e < 60000; e += 250 {
			matches := 0
			for _, threshold := range Thresholds {
				if e >= threshold.Min && e < threshold.Max {
					matches++
				}
			}
			So(matches, ShouldEqual, 1)
		}
	})

	Convey("The threshold table should be contiguous and ordered like the tier list", t, func() {
		So(len(Thresholds), ShouldEqual, len(model.Tiers))
		for i := range Thresholds {
			So(Thresholds[i].Tier, ShouldEqual, model.Tiers[i])
			if i > 0 {
				So(Thresholds[i].Min, ShouldEqual, Thresholds[i-1].Max)
			}
		}
	})
}

func TestUpgrade(t *testing.T) {
	Convey("Upgrade should never lower a tier", t, func() {
		So(Upgrade(model.TierBronze, 600), ShouldEqual, model.TierSilver)
		So(Upgrade(model.TierGold, 600), ShouldEqual, model.TierGold)
		So(Upgrade(model.TierSilver, 50000), ShouldEqual, model.TierDiamond)
	})
}
