// Package accounting folds a wallet's trade ledger into per-mint
// weighted-average cost state and combines it with live balances and prices
// into a profit/loss snapshot.
package accounting

import (
	"context"
	"sort"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/vadiminshakov/solpnl/internal/domain"
)

// Ledger supplies a wallet's trade records in execution-time order.
type Ledger interface {
	FindByWallet(ctx context.Context, walletID string, f domain.TradeFilter) ([]*domain.TradeRecord, error)
}

// PriceSource supplies batch USD quotes; mints without a known price are
// simply absent from the result.
type PriceSource interface {
	GetPrices(ctx context.Context, mints []string) ([]domain.PriceQuote, error)
}

// BalanceReader supplies live on-chain holdings of an address.
type BalanceReader interface {
	GetTokenBalances(ctx context.Context, address string) (*domain.WalletBalances, error)
}

var hundred = decimal.NewFromInt(100)

// Engine is the cost-basis accounting engine. The fold is deterministic and
// single-threaded per wallet; only collaborator fetches run concurrently.
type Engine struct {
	ledger   Ledger
	prices   PriceSource
	balances BalanceReader
	l        *zap.Logger
}

// NewEngine creates an accounting engine over the given collaborators.
func NewEngine(l *zap.Logger, ledger Ledger, prices PriceSource, balances BalanceReader) *Engine {
	return &Engine{ledger: ledger, prices: prices, balances: balances, l: l}
}

// FoldCostBasis folds the records into per-mint cost state using the
// weighted-average method.
//
// Records missing a USD valuation on either side are skipped entirely:
// neither cost nor proceeds can be attributed for them. The rest are
// processed in execution-time order, ties broken by ledger order; each
// record updates two independent accumulators, the output mint's
// acquisition side and the input mint's disposal side.
func (e *Engine) FoldCostBasis(records []*domain.TradeRecord) map[string]*domain.CostBasis {
	valued := make([]*domain.TradeRecord, 0, len(records))
	for _, rec := range records {
		if rec.Valued() {
			valued = append(valued, rec)
		}
	}

	sort.SliceStable(valued, func(i, j int) bool {
		return valued[i].ExecutedAt.Before(valued[j].ExecutedAt)
	})

	costByMint := make(map[string]*domain.CostBasis)
	basis := func(mint string) *domain.CostBasis {
		cb, ok := costByMint[mint]
		if !ok {
			cb = domain.NewCostBasis(mint)
			costByMint[mint] = cb
		}
		return cb
	}

	for _, rec := range valued {
		basis(rec.OutputMint).Acquire(rec.OutputAmount, rec.OutputUSDValue.Decimal)

		disposed := basis(rec.InputMint)
		before := disposed.OverDisposals
		disposed.Dispose(rec.InputAmount, rec.InputUSDValue.Decimal)
		if disposed.OverDisposals > before {
			e.l.Warn("disposal exceeds tracked position, tokens entered outside the ledger?",
				zap.String("mint", rec.InputMint),
				zap.String("trade_id", rec.ID),
				zap.String("remaining_cost", disposed.RemainingCost.String()))
		}
	}

	return costByMint
}

// ComputeSnapshot combines cost state with live balances and prices.
//
// A mint held live but absent from costByMint is untracked: zero cost and
// PnL, but its value still counts toward the portfolio total. Unrealized PnL
// is computed against the absolute remaining cost basis rather than
// avgCost*balance, since the live balance can diverge from the
// ledger-implied quantity. Unknown prices default to zero.
func (e *Engine) ComputeSnapshot(walletID string, costByMint map[string]*domain.CostBasis,
	balances, prices map[string]decimal.Decimal) *domain.PortfolioSnapshot {

	snap := &domain.PortfolioSnapshot{
		WalletID:                  walletID,
		AsOf:                      time.Now(),
		TotalValue:                decimal.Zero,
		TotalCost:                 decimal.Zero,
		TotalUnrealizedPnL:        decimal.Zero,
		TotalUnrealizedPnLPercent: decimal.Zero,
		TotalRealizedPnL:          decimal.Zero,
	}

	mints := make([]string, 0, len(balances))
	for mint := range balances {
		mints = append(mints, mint)
	}
	sort.Strings(mints)

	for _, mint := range mints {
		balance := balances[mint]
		price := prices[mint]
		value := balance.Mul(price)

		row := domain.TokenPnL{
			Mint:                 mint,
			Balance:              balance,
			Price:                price,
			Value:                value,
			AvgCost:              decimal.Zero,
			CostBasis:            decimal.Zero,
			UnrealizedPnL:        decimal.Zero,
			UnrealizedPnLPercent: decimal.Zero,
			RealizedPnL:          decimal.Zero,
		}

		cb, tracked := costByMint[mint]
		if !tracked {
			snap.UntrackedMints = append(snap.UntrackedMints, mint)
			snap.TotalValue = snap.TotalValue.Add(value)
			snap.Tokens = append(snap.Tokens, row)
			continue
		}

		row.Tracked = true
		row.AvgCost = cb.AvgCost()
		row.CostBasis = cb.RemainingCost
		row.UnrealizedPnL = value.Sub(cb.RemainingCost)
		if cb.RemainingCost.GreaterThan(decimal.Zero) {
			row.UnrealizedPnLPercent = row.UnrealizedPnL.Div(cb.RemainingCost).Mul(hundred)
		}
		row.RealizedPnL = cb.RealizedPnL

		snap.TotalValue = snap.TotalValue.Add(value)
		snap.TotalCost = snap.TotalCost.Add(cb.RemainingCost)
		snap.TotalUnrealizedPnL = snap.TotalUnrealizedPnL.Add(row.UnrealizedPnL)
		snap.TotalRealizedPnL = snap.TotalRealizedPnL.Add(cb.RealizedPnL)
		snap.Tokens = append(snap.Tokens, row)
	}

	// fully exited positions contribute their realized PnL to the aggregate
	// only when positive; dropped losses are logged, not silently restored
	closed := make([]string, 0)
	for mint := range costByMint {
		if _, live := balances[mint]; !live {
			closed = append(closed, mint)
		}
	}
	sort.Strings(closed)
	for _, mint := range closed {
		pnl := costByMint[mint].RealizedPnL
		if pnl.GreaterThan(decimal.Zero) {
			snap.TotalRealizedPnL = snap.TotalRealizedPnL.Add(pnl)
		} else if pnl.LessThan(decimal.Zero) {
			e.l.Warn("closed position loss excluded from portfolio realized pnl",
				zap.String("mint", mint),
				zap.String("realized_pnl", pnl.String()))
		}
	}

	if snap.TotalCost.GreaterThan(decimal.Zero) {
		snap.TotalUnrealizedPnLPercent = snap.TotalUnrealizedPnL.Div(snap.TotalCost).Mul(hundred)
	}

	return snap
}

// Snapshot produces the wallet's point-in-time PnL view: ledger and live
// balances are fetched concurrently, prices are batch-fetched for the live
// mint set, then the fold and snapshot computation run.
//
// A price fetch failure degrades to zero prices rather than failing the
// snapshot; ledger and balance failures are fatal since nothing meaningful
// can be computed without them.
func (e *Engine) Snapshot(ctx context.Context, walletID, walletAddress string) (*domain.PortfolioSnapshot, error) {
	var (
		records  []*domain.TradeRecord
		holdings *domain.WalletBalances
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		records, err = e.ledger.FindByWallet(gctx, walletID, domain.TradeFilter{})
		return errors.Wrap(err, "load ledger")
	})
	g.Go(func() error {
		var err error
		holdings, err = e.balances.GetTokenBalances(gctx, walletAddress)
		return errors.Wrap(err, "load balances")
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	balanceMap := holdings.AsMap()
	mints := make([]string, 0, len(balanceMap))
	for mint := range balanceMap {
		mints = append(mints, mint)
	}
	sort.Strings(mints)

	priceMap := make(map[string]decimal.Decimal, len(mints))
	quotes, err := e.prices.GetPrices(ctx, mints)
	if err != nil {
		e.l.Warn("price fetch failed, snapshot values default to zero", zap.Error(err))
	}
	for _, q := range quotes {
		priceMap[q.Mint] = q.USDPrice
	}

	costByMint := e.FoldCostBasis(records)

	return e.ComputeSnapshot(walletID, costByMint, balanceMap, priceMap), nil
}
