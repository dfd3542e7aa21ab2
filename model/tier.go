package model

// Tier is the earnings based rank of an affiliate
type Tier string

const (
	TierBronze   Tier = "bronze"
	TierSilver   Tier = "silver"
	TierGold     Tier = "gold"
	TierPremium  Tier = "premium"
	TierPlatinum Tier = "platinum"
	TierDiamond  Tier = "diamond"
)

// Tiers in ascending order
var Tiers = []Tier{TierBronze, TierSilver, TierGold, TierPremium, TierPlatinum, TierDiamond}

func (t Tier) String() string {
	return string(t)
}

// IsValid checks the tier against the known labels
func (t Tier) IsValid() bool {
	return t.Rank() >= 0
}

// Rank returns the position of the tier in the ascending order or -1 for unknown tiers
func (t Tier) Rank() int {
	for i, tier := range Tiers {
		if tier == t {
			return i
		}
	}
	return -1
}
