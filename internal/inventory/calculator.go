// Package inventory derives supply metrics from ledger balances and usage.
package inventory

import (
	"github.com/andresuchdata/kitchenops/internal/config"
	"github.com/andresuchdata/kitchenops/internal/domain"
)

// Policy is the status classification policy.
type Policy struct {
	CriticalDays            float64
	ReorderSoonDays         float64
	CriticalReorderFraction float64
	UsageWindowDays         int
}

func PolicyFromConfig(cfg config.InventoryConfig) Policy {
	return Policy{
		CriticalDays:            cfg.CriticalDays,
		ReorderSoonDays:         cfg.ReorderSoonDays,
		CriticalReorderFraction: cfg.CriticalReorderFraction,
		UsageWindowDays:         cfg.UsageWindowDays,
	}
}

// SupplyMetrics is what the calculator derives for one ingredient.
type SupplyMetrics struct {
	AvgDailyUsage float64
	DaysOfSupply  *float64
	Status        domain.InventoryStatus
}

type Calculator struct {
	policy Policy
}

func NewCalculator(policy Policy) *Calculator {
	if policy.UsageWindowDays <= 0 {
		policy.UsageWindowDays = 28
	}
	return &Calculator{policy: policy}
}

// AverageDailyUsage averages the consumption days that fall in the trailing
// window ending at the most recent consumption day. usage must be sorted by
// date ascending.
func (c *Calculator) AverageDailyUsage(usage []domain.DailyUsage) float64 {
	if len(usage) == 0 {
		return 0
	}
	latest := usage[len(usage)-1].BusinessDate
	cutoff := latest.AddDays(-(c.policy.UsageWindowDays - 1))

	var total float64
	var days int
	for _, u := range usage {
		if u.BusinessDate.Before(cutoff) {
			continue
		}
		total += u.Qty
		days++
	}
	if days == 0 {
		return 0
	}
	return total / float64(days)
}

// Calculate classifies an ingredient. Order matters: unknown, critical,
// reorder_soon, ok.
func (c *Calculator) Calculate(qtyOnHand, reorderPoint float64, leadTimeDays int, usage []domain.DailyUsage) SupplyMetrics {
	avg := c.AverageDailyUsage(usage)
	if avg <= 0 {
		return SupplyMetrics{Status: domain.InventoryUnknown}
	}

	days := qtyOnHand / avg
	metrics := SupplyMetrics{AvgDailyUsage: avg, DaysOfSupply: &days}

	reorderSoonDays := c.policy.ReorderSoonDays
	if lead := float64(leadTimeDays); lead > reorderSoonDays {
		reorderSoonDays = lead
	}

	switch {
	case days <= c.policy.CriticalDays || (reorderPoint > 0 && qtyOnHand <= reorderPoint*c.policy.CriticalReorderFraction):
		metrics.Status = domain.InventoryCritical
	case days <= reorderSoonDays || (reorderPoint > 0 && qtyOnHand <= reorderPoint):
		metrics.Status = domain.InventoryReorderSoon
	default:
		metrics.Status = domain.InventoryOK
	}
	return metrics
}
