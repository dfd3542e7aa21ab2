// Package tiers maps cumulative earnings to tiers and computes progress to the next one.
package tiers

import (
	"fmt"
	"math"

	"gitlab.com/paramountdax-exchange/affiliate_api/model"
)

// Threshold is the [Min, Max) earnings range of a tier. Max is +Inf for the last tier.
type Threshold struct {
	Tier model.Tier
	Min  float64
	Max  float64
}

// Thresholds must stay contiguous and ascending, in the same order as model.Tiers
var Thresholds = []Threshold{
	{Tier: model.TierBronze, Min: 0, Max: 500},
	{Tier: model.TierSilver, Min: 500, Max: 1500},
	{Tier: model.TierGold, Min: 1500, Max: 5000},
	{Tier: model.TierPremium, Min: 5000, Max: 15000},
	{Tier: model.TierPlatinum, Min: 15000, Max: 50000},
	{Tier: model.TierDiamond, Min: 50000, Max: math.Inf(1)},
}

// UnknownTierError is returned for labels outside the threshold table
type UnknownTierError struct {
	Tier model.Tier
}

func (e *UnknownTierError) Error() string {
	return fmt.Sprintf("tiers: unknown tier %q", string(e.Tier))
}

// Lookup returns the threshold of the given tier
func Lookup(tier model.Tier) (Threshold, bool) {
	rank := tier.Rank()
	if rank < 0 || rank >= len(Thresholds) {
		return Threshold{}, false
	}
	return Thresholds[rank], true
}

// ForEarnings maps earnings to the single tier whose range contains them
func ForEarnings(earnings float64) model.Tier {
	for i := len(Thresholds) - 1; i >= 0; i-- {
		if earnings >= Thresholds[i].Min {
			return Thresholds[i].Tier
		}
	}
	return model.TierBronze
}

// Progress computes how far the given earnings are inside the range of the tier
func Progress(tier model.Tier, totalEarnings float64) (model.TierProgress, error) {
	threshold, ok := Lookup(tier)
	if !ok {
		return maxed(), &UnknownTierError{Tier: tier}
	}
	if math.IsInf(threshold.Max, 1) {
		return maxed(), nil
	}

	progress := (totalEarnings - threshold.Min) / (threshold.Max - threshold.Min) * 100
	progress = math.Max(0, math.Min(100, progress))

	var next *model.Tier
	if rank := tier.Rank(); rank+1 < len(Thresholds) {
		nextTier := Thresholds[rank+1].Tier
		next = &nextTier
	}

	return model.TierProgress{
		ProgressPercent:  round2(progress),
		NextTier:         next,
		RequiredEarnings: round2(math.Max(0, threshold.Max-totalEarnings)),
	}, nil
}

// ProgressOrMax treats unknown tiers as already maxed out
func ProgressOrMax(tier model.Tier, totalEarnings float64) model.TierProgress {
	progress, _ := Progress(tier, totalEarnings)
	return progress
}

// Upgrade returns the higher of the current tier and the tier earned by the given earnings.
// Tiers never go down automatically, admins can still set them by hand.
func Upgrade(current model.Tier, totalEarnings float64) model.Tier {
	earned := ForEarnings(totalEarnings)
	if earned.Rank() > current.Rank() {
		return earned
	}
	return current
}

func maxed() model.TierProgress {
	return model.TierProgress{ProgressPercent: 100}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
