package domain

import "github.com/shopspring/decimal"

// CostBasis tracks the weighted-average cost state of a single mint. It is
// always derived by folding the ledger and never persisted.
//
// Every acquisition blends into one running average; a disposal draws against
// the current blended average, not against any particular earlier purchase.
type CostBasis struct {
	Mint          string
	TotalAcquired decimal.Decimal
	TotalDisposed decimal.Decimal
	RemainingCost decimal.Decimal
	RealizedPnL   decimal.Decimal

	// OverDisposals counts disposals that drew more than the tracked
	// remaining quantity. Tokens acquired outside the ledger make this
	// legitimate, but a growing count on a mint usually means missing
	// trades; RemainingCost goes negative in that case and is not clamped.
	OverDisposals int
}

// NewCostBasis returns a zero-valued accumulator for the mint.
func NewCostBasis(mint string) *CostBasis {
	return &CostBasis{
		Mint:          mint,
		TotalAcquired: decimal.Zero,
		TotalDisposed: decimal.Zero,
		RemainingCost: decimal.Zero,
		RealizedPnL:   decimal.Zero,
	}
}

// RemainingQty is the ledger-implied quantity still held.
func (c *CostBasis) RemainingQty() decimal.Decimal {
	return c.TotalAcquired.Sub(c.TotalDisposed)
}

// AvgCost is the blended USD cost per unit of the remaining position,
// zero when nothing remains.
func (c *CostBasis) AvgCost() decimal.Decimal {
	qty := c.RemainingQty()
	if qty.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	return c.RemainingCost.Div(qty)
}

// Acquire books qty units bought for usdValue. Always additive, regardless
// of prior position.
func (c *CostBasis) Acquire(qty, usdValue decimal.Decimal) {
	c.TotalAcquired = c.TotalAcquired.Add(qty)
	c.RemainingCost = c.RemainingCost.Add(usdValue)
}

// Dispose books qty units sold for usdProceeds against the blended average.
//
// When nothing tracked remains (never acquired, or already fully disposed)
// the full proceeds realize with zero cost. A disposal exceeding the tracked
// remainder is allowed: the ratio exceeds 1 and RemainingCost goes negative.
func (c *CostBasis) Dispose(qty, usdProceeds decimal.Decimal) {
	remaining := c.RemainingQty()

	if remaining.GreaterThan(decimal.Zero) && qty.GreaterThan(decimal.Zero) {
		ratio := qty.Div(remaining)
		costRemoved := c.RemainingCost.Mul(ratio)
		c.RealizedPnL = c.RealizedPnL.Add(usdProceeds.Sub(costRemoved))
		c.RemainingCost = c.RemainingCost.Sub(costRemoved)
		c.TotalDisposed = c.TotalDisposed.Add(qty)
		if qty.GreaterThan(remaining) {
			c.OverDisposals++
		}
		return
	}

	c.RealizedPnL = c.RealizedPnL.Add(usdProceeds)
	c.TotalDisposed = c.TotalDisposed.Add(qty)
	if qty.GreaterThan(decimal.Zero) {
		c.OverDisposals++
	}
}
