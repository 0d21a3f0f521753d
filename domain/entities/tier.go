package entities

import (
	"fmt"
	"strings"
)

// Tier is a guild subscription level
type Tier string

const (
	TierFree    Tier = "free"
	TierBasic   Tier = "basic"
	TierPremium Tier = "premium"
	TierElite   Tier = "elite"
)

// TierPolicy holds the economy rules attached to a tier
type TierPolicy struct {
	RefillAmount      int64 // Coins granted per refill window
	WinReward         int64 // Coins credited to the first correct guesser
	Unlimited         bool  // Guesses cost nothing and balances are not touched
	LeaderboardAccess bool
	AdminLog          bool // New veils are mirrored to the admin log channel
}

var tierPolicies = map[Tier]TierPolicy{
	TierFree: {
		RefillAmount: 100,
	},
	TierBasic: {
		RefillAmount: 250,
		WinReward:    10,
	},
	TierPremium: {
		RefillAmount:      1000,
		WinReward:         15,
		LeaderboardAccess: true,
	},
	TierElite: {
		Unlimited:         true,
		LeaderboardAccess: true,
		AdminLog:          true,
	},
}

// AllTiers lists tiers from lowest to highest
var AllTiers = []Tier{TierFree, TierBasic, TierPremium, TierElite}

// ParseTier converts a string into a Tier
func ParseTier(s string) (Tier, error) {
	t := Tier(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := tierPolicies[t]; !ok {
		return "", fmt.Errorf("unknown tier %q", s)
	}
	return t, nil
}

// IsValid reports whether the tier is known
func (t Tier) IsValid() bool {
	_, ok := tierPolicies[t]
	return ok
}

// Policy returns the tier's economy rules. Unknown tiers fall back to free.
func (t Tier) Policy() TierPolicy {
	if p, ok := tierPolicies[t]; ok {
		return p
	}
	return tierPolicies[TierFree]
}

// DisplayName returns the capitalized tier name
func (t Tier) DisplayName() string {
	if t == "" {
		return ""
	}
	return strings.ToUpper(string(t[:1])) + string(t[1:])
}

// CoinPack is a purchasable bundle of coins
type CoinPack struct {
	Coins      int64
	PriceCents int64
}

// CoinPacks lists the packs offered in the store
var CoinPacks = []CoinPack{
	{Coins: 100, PriceCents: 100},
	{Coins: 250, PriceCents: 200},
	{Coins: 500, PriceCents: 300},
	{Coins: 1000, PriceCents: 500},
}

// FindCoinPack returns the pack with the given coin amount
func FindCoinPack(coins int64) (CoinPack, bool) {
	for _, p := range CoinPacks {
		if p.Coins == coins {
			return p, true
		}
	}
	return CoinPack{}, false
}
