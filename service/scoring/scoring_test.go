package scoring

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestScore(t *testing.T) {
	Convey("Given an application with the best value in every component", t, func() {
		in := Input{
			MarketingExperience:       "expert",
			AudienceSize:              150000,
			PrimaryPlatforms:          []string{"a", "b", "c", "d"},
			PreviousAffiliatePrograms: []string{"a", "b", "c"},
			ExpectedMonthlySales:      20000,
		}

		Convey("the score should be 30+25+20+15+10 and be auto approved", func() {
			score := Score(in)
			So(score, ShouldEqual, 100)
			So(AutoApprove(score), ShouldBeTrue)
		})
	})

	Convey("Given an empty application", t, func() {
		Convey("the score should be zero and need a manual review", func() {
			score := Score(Input{})
			So(score, ShouldEqual, 0)
			So(AutoApprove(score), ShouldBeFalse)
		})
	})

	Convey("Given a mid level application", t, func() {
		in := Input{
			MarketingExperience:       "Intermediate marketer, 2-5 years on social",
			AudienceSize:              12000,
			PrimaryPlatforms:          []string{"instagram", "tiktok"},
			PreviousAffiliatePrograms: []string{"amazon"},
			ExpectedMonthlySales:      1500,
		}

		Convey("each component should use its own band", func() {
			So(Score(in), ShouldEqual, 20+15+10+5+5)
			So(AutoApprove(Score(in)), ShouldBeFalse)
		})
	})

	Convey("The auto approve threshold is inclusive", t, func() {
		So(AutoApprove(69), ShouldBeFalse)
		So(AutoApprove(70), ShouldBeTrue)
	})
}

func TestScoreBounds(t *testing.T) {
	Convey("For a grid of inputs the score should stay inside 0..100", t, func() {
		experiences := []string{"", "beginner", "1-2 years", "INTERMEDIATE", "Professional", "5+ years", "none"}
		sizes := []int64{-10, 0, 99, 100, 1000, 10000, 50000, 100000, 1 << 40}
		lists := [][]string{nil, {"a"}, {"a", "b"}, {"a", "b", "c"}, {"a", "b", "c", "d", "e", "f"}}

		for _, exp := range experiences {
			for _, size := range sizes {
				for _, list := range lists {
					score := Score(Input{
						MarketingExperience:       exp,
						AudienceSize:              size,
						PrimaryPlatforms:          list,
						PreviousAffiliatePrograms: list,
						ExpectedMonthlySales:      size,
					})
					So(score, ShouldBeBetweenOrEqual, 0, 100)
					So(AutoApprove(score), ShouldEqual, score >= 70)
				}
			}
		}
	})
}

func TestExperiencePoints(t *testing.T) {
	Convey("Experience keywords should match case insensitively, highest level first", t, func() {
		So(ExperiencePoints("EXPERT"), ShouldEqual, 30)
		So(ExperiencePoints("I have 5+ years"), ShouldEqual, 30)
		So(ExperiencePoints("intermediate"), ShouldEqual, 20)
		So(ExperiencePoints("2-5 years"), ShouldEqual, 20)
		So(ExperiencePoints("Beginner"), ShouldEqual, 10)
		So(ExperiencePoints("1-2 years"), ShouldEqual, 10)
		So(ExperiencePoints("a beginner turned expert"), ShouldEqual, 30)
		So(ExperiencePoints("hobbyist"), ShouldEqual, 0)
	})
}
