package pricing

import (
	"testing"
	"time"

	"github.com/smallbiznis/branchdesk/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testTiers = []config.DiscountTier{
	{MinMonths: 12, Rate: 0.90},
	{MinMonths: 6, Rate: 0.95},
}

func TestPriceExpiredPlanNoProration(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	current := &CurrentPlan{
		PricePerMonth: 100000,
		EndDate:       now.Add(-24 * time.Hour),
	}

	got := price(now, current, 100000, 3, testTiers)

	assert.Equal(t, int64(300000), got.Total)
	assert.Equal(t, int64(300000), got.Base)
	assert.Equal(t, 0, got.RemainingDays)
	assert.Equal(t, int64(0), got.Credit)
	assert.Equal(t, float64(1), got.DiscountRate)
}

func TestPriceNilPlanNoProration(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	got := price(now, nil, 250000, 2, testTiers)

	assert.Equal(t, int64(500000), got.Total)
	assert.Equal(t, 0, got.RemainingDays)
}

func TestPriceProratedUpgrade(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	current := &CurrentPlan{
		PricePerMonth: 100000,
		EndDate:       now.Add(15 * 24 * time.Hour),
	}

	got := price(now, current, 200000, 1, testTiers)

	// base 200000, credit 50000, cost of remaining 100000, delta 50000
	assert.Equal(t, 15, got.RemainingDays)
	assert.Equal(t, int64(200000), got.Base)
	assert.Equal(t, int64(50000), got.Credit)
	assert.Equal(t, int64(100000), got.CostOfRemaining)
	assert.Equal(t, int64(50000), got.UpgradeDelta)
	assert.Equal(t, int64(250000), got.Total)
}

func TestPriceProratedUpgradeYearlyDiscount(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	current := &CurrentPlan{
		PricePerMonth: 100000,
		EndDate:       now.Add(15 * 24 * time.Hour),
	}

	got := price(now, current, 200000, 12, testTiers)

	// (2400000 + 50000) * 0.90
	assert.Equal(t, 0.90, got.DiscountRate)
	assert.Equal(t, int64(2205000), got.Total)
}

func TestPriceDiscountTiers(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		months int
		want   int64
	}{
		{1, 100000},
		{5, 500000},
		{6, 570000},   // 600000 * 0.95
		{11, 1045000}, // 1100000 * 0.95
		{12, 1080000}, // 1200000 * 0.90
	}
	for _, tc := range cases {
		got := price(now, nil, 100000, tc.months, testTiers)
		assert.Equal(t, tc.want, got.Total, "period_months=%d", tc.months)
	}
}

func TestPriceDeterministic(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	current := &CurrentPlan{
		PricePerMonth: 123457,
		EndDate:       now.Add(17 * 24 * time.Hour),
	}

	first := price(now, current, 765431, 7, testTiers)
	for i := 0; i < 100; i++ {
		assert.Equal(t, first, price(now, current, 765431, 7, testTiers))
	}
}

func TestPriceRemainingDaysRoundsUp(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	current := &CurrentPlan{
		PricePerMonth: 30000,
		EndDate:       now.Add(36 * time.Hour),
	}

	got := price(now, current, 60000, 1, testTiers)

	// 1.5 days of remaining time bills as 2 whole days.
	assert.Equal(t, 2, got.RemainingDays)
	// base 60000 + (2000-1000)*2
	assert.Equal(t, int64(62000), got.Total)
}

func TestRoundHalfAwayFromZero(t *testing.T) {
	assert.Equal(t, int64(3), round(2.5))
	assert.Equal(t, int64(2), round(2.4))
	assert.Equal(t, int64(-3), round(-2.5))
	assert.Equal(t, int64(-2), round(-2.4))
	assert.Equal(t, int64(0), round(0))
}

func TestCalculatorUsesConfiguredTiers(t *testing.T) {
	holder, err := config.NewPricingConfigHolder()
	require.NoError(t, err)

	calc := NewCalculator(holder)
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	got := calc.Price(now, nil, 100000, 12)
	assert.Equal(t, int64(1080000), got.Total)
}
