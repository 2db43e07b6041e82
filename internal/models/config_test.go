package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStrategyRulesPresets(t *testing.T) {
	rules, err := StrategyRules("default")
	require.NoError(t, err)
	assert.Equal(t, 999.0, rules.CouponThreshold, "default preset has no reachable coupon")
	assert.False(t, rules.FreeDelivery)

	rules, err = StrategyRules("aggressive")
	require.NoError(t, err)
	assert.Equal(t, 15.0, rules.CouponThreshold)
	assert.Equal(t, 5.0, rules.CouponAmount)

	rules, err = StrategyRules("free_delivery")
	require.NoError(t, err)
	assert.True(t, rules.FreeDelivery)
	assert.True(t, rules.DeliveryCouponsEnabled)
	assert.Equal(t, 999.0, rules.CouponThreshold)

	rules, err = StrategyRules("double_bonus")
	require.NoError(t, err)
	assert.True(t, rules.FreeDelivery)
	assert.False(t, rules.DeliveryCouponsEnabled)
	assert.Equal(t, 25.0, rules.CouponThreshold)
}

func TestStrategyRulesUnknownName(t *testing.T) {
	_, err := StrategyRules("blitz")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown marketing strategy "blitz"`)
	// the error lists the valid choices
	assert.Contains(t, err.Error(), "aggressive")
	assert.Contains(t, err.Error(), "premium")
}

func TestSampleCountFromMode(t *testing.T) {
	cases := map[string]int{
		"test":      5,
		"demo":      20,
		"half":      50,
		"full":      100,
		"benchmark": 200,
		"mass":      1000,
	}
	for mode, size := range cases {
		cfg := &Config{Mode: mode}
		n, err := cfg.SampleCount()
		require.NoError(t, err, "mode %s", mode)
		assert.Equal(t, size, n, "mode %s", mode)
	}
}

func TestSampleCountOverride(t *testing.T) {
	cfg := &Config{Mode: "test", SampleSize: 37}
	n, err := cfg.SampleCount()
	require.NoError(t, err)
	assert.Equal(t, 37, n, "explicit sample size beats the mode")
}

func TestSampleCountUnknownMode(t *testing.T) {
	cfg := &Config{Mode: "gigantic"}
	_, err := cfg.SampleCount()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown simulation mode")
}

func TestDefaultMapOverlayIsConsistent(t *testing.T) {
	assert.Len(t, DefaultMapOverlay, 16)

	seen := make(map[string]bool)
	for _, setup := range DefaultMapOverlay {
		assert.False(t, seen[setup.ID], "duplicate shop id %s", setup.ID)
		seen[setup.ID] = true
		_, ok := BrandDisplayNames[setup.BrandID]
		assert.True(t, ok, "shop %s references unknown brand %s", setup.ID, setup.BrandID)
	}
}
