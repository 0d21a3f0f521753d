package entities

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTier(t *testing.T) {
	tests := []struct {
		input   string
		want    Tier
		wantErr bool
	}{
		{input: "free", want: TierFree},
		{input: " Premium ", want: TierPremium},
		{input: "ELITE", want: TierElite},
		{input: "gold", wantErr: true},
		{input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseTier(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTierPolicy(t *testing.T) {
	assert.Equal(t, int64(100), TierFree.Policy().RefillAmount)
	assert.Equal(t, int64(0), TierFree.Policy().WinReward)
	assert.Equal(t, int64(250), TierBasic.Policy().RefillAmount)
	assert.Equal(t, int64(10), TierBasic.Policy().WinReward)
	assert.Equal(t, int64(1000), TierPremium.Policy().RefillAmount)
	assert.Equal(t, int64(15), TierPremium.Policy().WinReward)
	assert.True(t, TierPremium.Policy().LeaderboardAccess)

	elite := TierElite.Policy()
	assert.True(t, elite.Unlimited)
	assert.True(t, elite.AdminLog)

	// Unknown tiers behave like free
	assert.Equal(t, TierFree.Policy(), Tier("bogus").Policy())
	assert.False(t, Tier("bogus").IsValid())
}

func TestTierDisplayName(t *testing.T) {
	assert.Equal(t, "Premium", TierPremium.DisplayName())
	assert.Equal(t, "", Tier("").DisplayName())
}

func TestFindCoinPack(t *testing.T) {
	pack, ok := FindCoinPack(500)
	require.True(t, ok)
	assert.Equal(t, int64(300), pack.PriceCents)

	_, ok = FindCoinPack(123)
	assert.False(t, ok)
}
