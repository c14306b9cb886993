// Package pricing computes the amount payable for a membership upgrade.
// Proration uses a fixed 30-day month rather than calendar months; the
// dashboard has always billed that way and invoices reference it.
package pricing

import (
	"math"
	"time"

	"github.com/smallbiznis/branchdesk/internal/config"
)

const daysPerMonth = 30

// CurrentPlan describes the plan being upgraded away from. A nil plan
// means the branch has no membership worth crediting.
type CurrentPlan struct {
	PricePerMonth int64
	EndDate       time.Time
}

// Breakdown itemizes an upgrade price. All amounts are minor currency
// units. Total is rounded half away from zero; the itemized lines are
// rounded independently for display and may not sum to Total exactly.
type Breakdown struct {
	Base            int64   `json:"base"`
	RemainingDays   int     `json:"remaining_days"`
	Credit          int64   `json:"credit"`
	CostOfRemaining int64   `json:"cost_of_remaining"`
	UpgradeDelta    int64   `json:"upgrade_delta"`
	DiscountRate    float64 `json:"discount_rate"`
	Total           int64   `json:"total"`
}

// Calculator prices upgrades using the discount tiers currently loaded
// from configuration.
type Calculator struct {
	holder *config.PricingConfigHolder
}

func NewCalculator(holder *config.PricingConfigHolder) *Calculator {
	return &Calculator{holder: holder}
}

// Price computes the upgrade cost from current to a target level priced
// at targetPricePerMonth for periodMonths.
func (c *Calculator) Price(now time.Time, current *CurrentPlan, targetPricePerMonth int64, periodMonths int) Breakdown {
	return price(now, current, targetPricePerMonth, periodMonths, c.holder.Get().DiscountTiers)
}

// price is the pure core. Tiers must be sorted by MinMonths descending,
// which the config loader enforces.
func price(now time.Time, current *CurrentPlan, targetPricePerMonth int64, periodMonths int, tiers []config.DiscountTier) Breakdown {
	base := float64(targetPricePerMonth) * float64(periodMonths)

	breakdown := Breakdown{
		Base:         round(base),
		DiscountRate: 1,
	}

	total := base

	// An expired or absent plan earns no credit and pays the full base.
	if current != nil && current.EndDate.After(now) {
		remainingDays := int(math.Ceil(current.EndDate.Sub(now).Hours() / 24))
		if remainingDays > 0 {
			currentDaily := float64(current.PricePerMonth) / daysPerMonth
			targetDaily := float64(targetPricePerMonth) / daysPerMonth

			credit := currentDaily * float64(remainingDays)
			costOfRemaining := targetDaily * float64(remainingDays)
			delta := costOfRemaining - credit

			breakdown.RemainingDays = remainingDays
			breakdown.Credit = round(credit)
			breakdown.CostOfRemaining = round(costOfRemaining)
			breakdown.UpgradeDelta = round(delta)

			total += delta
		}
	}

	for _, tier := range tiers {
		if periodMonths >= tier.MinMonths {
			breakdown.DiscountRate = tier.Rate
			total *= tier.Rate
			break
		}
	}

	breakdown.Total = round(total)
	return breakdown
}

// round implements round half away from zero.
func round(value float64) int64 {
	if value >= 0 {
		return int64(math.Floor(value + 0.5))
	}
	return int64(math.Ceil(value - 0.5))
}
