package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TradeKind discriminates how a ledger entry was produced.
type TradeKind string

const (
	// TradeKindSwap is a swap executed directly by the operator.
	TradeKindSwap TradeKind = "swap"
	// TradeKindLimitFill is a limit order discovered as filled during reconciliation.
	TradeKindLimitFill TradeKind = "limit_fill"
)

// TradeRecord is one economic event in a wallet's ledger: input tokens left
// the wallet, output tokens entered it. Records are immutable after insert.
//
// Two records sharing a non-empty Signature are the same economic event; the
// ledger store treats insertion as idempotent on that key.
type TradeRecord struct {
	ID           string          `json:"id"`
	WalletID     string          `json:"wallet_id"`
	InputMint    string          `json:"input_mint"`
	OutputMint   string          `json:"output_mint"`
	InputAmount  decimal.Decimal `json:"input_amount"`
	OutputAmount decimal.Decimal `json:"output_amount"`
	Kind         TradeKind       `json:"kind"`
	Signature    string          `json:"signature,omitempty"`
	ExecutedAt   time.Time       `json:"executed_at"`

	// USD valuations captured at recording time, never recomputed later.
	// Either side may be absent when pricing was unavailable at execution.
	InputUSDPrice  decimal.NullDecimal `json:"input_usd_price,omitempty"`
	OutputUSDPrice decimal.NullDecimal `json:"output_usd_price,omitempty"`
	InputUSDValue  decimal.NullDecimal `json:"input_usd_value,omitempty"`
	OutputUSDValue decimal.NullDecimal `json:"output_usd_value,omitempty"`
}

// Valued reports whether both legs carry a cached USD valuation. Records
// without full valuation are invisible to cost-basis accounting.
func (t *TradeRecord) Valued() bool {
	return t.InputUSDValue.Valid && t.OutputUSDValue.Valid
}

// TradeFilter narrows ledger queries. Zero values mean "no constraint".
type TradeFilter struct {
	Mint   string
	Kind   TradeKind
	Limit  int
	Offset int
}
