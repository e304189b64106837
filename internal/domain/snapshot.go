package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TokenPnL is one mint's row in a portfolio snapshot.
//
// Untracked mints (held live but absent from the ledger) carry zero cost and
// PnL fields; their value still counts toward the portfolio total.
type TokenPnL struct {
	Mint                 string          `json:"mint"`
	Balance              decimal.Decimal `json:"balance"`
	Price                decimal.Decimal `json:"price"`
	Value                decimal.Decimal `json:"value"`
	AvgCost              decimal.Decimal `json:"avg_cost"`
	CostBasis            decimal.Decimal `json:"cost_basis"`
	UnrealizedPnL        decimal.Decimal `json:"unrealized_pnl"`
	UnrealizedPnLPercent decimal.Decimal `json:"unrealized_pnl_percent"`
	RealizedPnL          decimal.Decimal `json:"realized_pnl"`
	Tracked              bool            `json:"tracked"`
}

// PortfolioSnapshot is a best-effort point-in-time PnL view of one wallet:
// live balances and prices combined with the ledger-derived cost state.
type PortfolioSnapshot struct {
	WalletID       string     `json:"wallet_id"`
	AsOf           time.Time  `json:"as_of"`
	Tokens         []TokenPnL `json:"tokens"`
	UntrackedMints []string   `json:"untracked_mints,omitempty"`

	TotalValue                decimal.Decimal `json:"total_value"`
	TotalCost                 decimal.Decimal `json:"total_cost"`
	TotalUnrealizedPnL        decimal.Decimal `json:"total_unrealized_pnl"`
	TotalUnrealizedPnLPercent decimal.Decimal `json:"total_unrealized_pnl_percent"`
	TotalRealizedPnL          decimal.Decimal `json:"total_realized_pnl"`
}

// SnapshotRecord bundles a stored snapshot with the log index it came from.
type SnapshotRecord struct {
	Index    uint64
	Snapshot PortfolioSnapshot
}
