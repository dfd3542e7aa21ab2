// Package scoring rates affiliate applications on a 0-100 scale.
package scoring

import "strings"

// AutoApproveThreshold is the minimum score approved without a manual review
const AutoApproveThreshold = 70

// MaxScore of an application
const MaxScore = 100

// Input is the part of an application that is scored
type Input struct {
	MarketingExperience       string
	AudienceSize              int64
	PrimaryPlatforms          []string
	PreviousAffiliatePrograms []string
	ExpectedMonthlySales      int64
}

type band struct {
	min    int64
	points int
}

var audienceBands = []band{
	{min: 100000, points: 25},
	{min: 50000, points: 20},
	{min: 10000, points: 15},
	{min: 1000, points: 10},
	{min: 100, points: 5},
}

var platformBands = []band{
	{min: 4, points: 20},
	{min: 3, points: 15},
	{min: 2, points: 10},
	{min: 1, points: 5},
}

var programBands = []band{
	{min: 3, points: 15},
	{min: 2, points: 10},
	{min: 1, points: 5},
}

var salesBands = []band{
	{min: 10000, points: 10},
	{min: 5000, points: 8},
	{min: 1000, points: 5},
	{min: 100, points: 3},
}

var experienceLevels = []struct {
	keywords []string
	points   int
}{
	{keywords: []string{"expert", "professional", "5+ years"}, points: 30},
	{keywords: []string{"intermediate", "2-5 years"}, points: 20},
	{keywords: []string{"beginner", "1-2 years"}, points: 10},
}

// Score sums the independently capped components of the application
func Score(in Input) int {
	score := ExperiencePoints(in.MarketingExperience) +
		pointsFor(in.AudienceSize, audienceBands) +
		pointsFor(int64(len(in.PrimaryPlatforms)), platformBands) +
		pointsFor(int64(len(in.PreviousAffiliatePrograms)), programBands) +
		pointsFor(in.ExpectedMonthlySales, salesBands)

	// the component caps add up to exactly MaxScore so this never triggers
	if score > MaxScore {
		score = MaxScore
	}
	if score < 0 {
		score = 0
	}
	return score
}

// AutoApprove decides if the score is high enough to skip the manual review
func AutoApprove(score int) bool {
	return score >= AutoApproveThreshold
}

// ExperiencePoints matches the free text experience against the known levels, case insensitive
func ExperiencePoints(experience string) int {
	text := strings.ToLower(experience)
	for _, level := range experienceLevels {
		for _, keyword := range level.keywords {
			if strings.Contains(text, keyword) {
				return level.points
			}
		}
	}
	return 0
}

func pointsFor(value int64, bands []band) int {
	for _, b := range bands {
		if value >= b.min {
			return b.points
		}
	}
	return 0
}
