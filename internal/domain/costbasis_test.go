package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func dec(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return d
}

func TestCostBasisAcquireBlends(t *testing.T) {
	cb := NewCostBasis("TOK")

	cb.Acquire(dec(t, "10"), dec(t, "1000"))
	cb.Acquire(dec(t, "5"), dec(t, "1000"))

	require.True(t, cb.TotalAcquired.Equal(dec(t, "15")), "acquired %s", cb.TotalAcquired)
	require.True(t, cb.RemainingCost.Equal(dec(t, "2000")), "cost %s", cb.RemainingCost)

	// blended: 2000 / 15
	want := dec(t, "2000").Div(dec(t, "15"))
	require.True(t, cb.AvgCost().Equal(want), "avg cost %s", cb.AvgCost())
}

func TestCostBasisDisposeAgainstAverage(t *testing.T) {
	cb := NewCostBasis("TOK")
	cb.Acquire(dec(t, "10"), dec(t, "1000"))
	cb.Acquire(dec(t, "5"), dec(t, "1000"))

	cb.Dispose(dec(t, "10"), dec(t, "1500"))

	costRemoved := dec(t, "2000").Mul(dec(t, "10").Div(dec(t, "15")))
	require.True(t, cb.RealizedPnL.Equal(dec(t, "1500").Sub(costRemoved)), "realized %s", cb.RealizedPnL)
	require.True(t, cb.RemainingCost.Equal(dec(t, "2000").Sub(costRemoved)), "remaining %s", cb.RemainingCost)
	require.True(t, cb.RemainingQty().Equal(dec(t, "5")))
	require.Zero(t, cb.OverDisposals)

	// sanity against the known figures
	require.True(t, cb.RealizedPnL.Sub(dec(t, "166.6666666666667")).Abs().LessThan(dec(t, "0.001")))
	require.True(t, cb.RemainingCost.Sub(dec(t, "666.6666666666667")).Abs().LessThan(dec(t, "0.001")))
}

func TestCostBasisBreakEven(t *testing.T) {
	cb := NewCostBasis("TOK")
	cb.Acquire(dec(t, "10"), dec(t, "100"))
	cb.Dispose(dec(t, "10"), dec(t, "100"))

	require.True(t, cb.RealizedPnL.IsZero(), "realized %s", cb.RealizedPnL)
	require.True(t, cb.RemainingCost.IsZero(), "remaining %s", cb.RemainingCost)
	require.True(t, cb.RemainingQty().IsZero())
}

func TestCostBasisDisposeNothingTracked(t *testing.T) {
	t.Run("never acquired", func(t *testing.T) {
		cb := NewCostBasis("TOK")
		cb.Dispose(dec(t, "3"), dec(t, "42"))

		require.True(t, cb.RealizedPnL.Equal(dec(t, "42")))
		require.True(t, cb.RemainingCost.IsZero())
		require.True(t, cb.TotalDisposed.Equal(dec(t, "3")))
		require.Equal(t, 1, cb.OverDisposals)
	})

	t.Run("already fully disposed", func(t *testing.T) {
		cb := NewCostBasis("TOK")
		cb.Acquire(dec(t, "5"), dec(t, "50"))
		cb.Dispose(dec(t, "5"), dec(t, "60"))
		cb.Dispose(dec(t, "2"), dec(t, "20"))

		// second disposal hits the zero-cost branch
		require.True(t, cb.RealizedPnL.Equal(dec(t, "30")), "realized %s", cb.RealizedPnL)
		require.True(t, cb.RemainingCost.IsZero())
		require.Equal(t, 1, cb.OverDisposals)
	})
}

func TestCostBasisOverDisposalGoesNegative(t *testing.T) {
	cb := NewCostBasis("TOK")
	cb.Acquire(dec(t, "10"), dec(t, "100"))

	// tokens entered the position outside the ledger: ratio exceeds 1
	cb.Dispose(dec(t, "20"), dec(t, "300"))

	require.True(t, cb.RemainingCost.Equal(dec(t, "-100")), "remaining %s", cb.RemainingCost)
	require.True(t, cb.RealizedPnL.Equal(dec(t, "100")), "realized %s", cb.RealizedPnL)
	require.Equal(t, 1, cb.OverDisposals)
	require.True(t, cb.AvgCost().IsZero(), "no remaining quantity, avg cost must be zero")
}
