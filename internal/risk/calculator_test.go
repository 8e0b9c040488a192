package risk

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestStopLossPercent(t *testing.T) {
	tests := []struct {
		name  string
		entry string
		stop  string
		want  string
	}{
		{"ten percent below entry", "100", "90", "0.1"},
		{"stop at entry", "100", "100", "0"},
		{"stop above entry", "100", "110", "0"},
		{"zero entry", "0", "0", "0"},
		{"negative stop", "100", "-5", "0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := StopLossPercent(d(tt.entry), d(tt.stop))
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestStopLossAmount(t *testing.T) {
	assert.Equal(t, "500", StopLossAmount(d("100"), d("95"), 100).String())
	assert.Equal(t, "0", StopLossAmount(d("100"), d("105"), 100).String())
	assert.Equal(t, "0", StopLossAmount(d("100"), d("95"), -1).String())
}

func TestPositionShares(t *testing.T) {
	tests := []struct {
		name        string
		accountSize string
		sizePercent string
		entry       string
		want        int64
	}{
		{"quarter of account", "10000", "0.25", "50", 50},
		{"rounds to nearest share", "10000", "0.1", "30", 33},
		{"size over one rejected", "10000", "1.5", "50", 0},
		{"zero entry", "10000", "0.25", "0", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PositionShares(d(tt.accountSize), d(tt.sizePercent), d(tt.entry)))
		})
	}
}

func TestPositionSizePercent(t *testing.T) {
	// Risking 1% of the account with a 5% stop allows a 20% allocation.
	assert.Equal(t, "0.2", PositionSizePercent(d("0.01"), d("0.05")).String())
	assert.Equal(t, "0", PositionSizePercent(d("0.01"), d("0")).String())
	assert.Equal(t, "0", PositionSizePercent(d("2"), d("0.05")).String())
}

func TestProfitPercent(t *testing.T) {
	assert.Equal(t, "0.2", ProfitPercent(d("120"), d("100")).String())
	assert.Equal(t, "-0.1", ProfitPercent(d("90"), d("100")).String())
	assert.Equal(t, "0", ProfitPercent(d("120"), d("0")).String())
}

func TestProfitPercentFromRisk(t *testing.T) {
	// A 3R target on a 5% stop implies a 15% move.
	assert.Equal(t, "0.15", ProfitPercentFromRisk(d("3"), d("0.05")).String())
}

func TestRewardPercent(t *testing.T) {
	assert.Equal(t, "0.03", RewardPercent(d("0.15"), d("0.2")).String())
	assert.Equal(t, "0", RewardPercent(d("1.5"), d("0.2")).String())
}

func TestRewardPercentFromRisk(t *testing.T) {
	assert.Equal(t, "0.03", RewardPercentFromRisk(d("0.01"), d("3")).String())
	assert.Equal(t, "0", RewardPercentFromRisk(d("1.5"), d("3")).String())
}

func TestRewardToRisk(t *testing.T) {
	assert.Equal(t, "3", RewardToRisk(d("0.01"), d("0.03")).String())
	assert.Equal(t, "0", RewardToRisk(d("0"), d("0.03")).String())
}

func TestCoverPrice(t *testing.T) {
	assert.Equal(t, "115", CoverPrice(d("100"), d("0.15")).String())
	assert.Equal(t, "100", CoverPrice(d("100"), d("0")).String())
	assert.Equal(t, "0", CoverPrice(d("-1"), d("0.15")).String())
}
