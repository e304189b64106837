package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// NativeMint is the wrapped SOL mint; native lamport balances are reported
// under it so one price covers both.
const NativeMint = "So11111111111111111111111111111111111111112"

// PriceQuote is one mint's USD price as reported by the price collaborator.
type PriceQuote struct {
	Mint     string
	USDPrice decimal.Decimal
	AsOf     time.Time
}

// TokenBalance is one token account balance in ui units.
type TokenBalance struct {
	Mint     string
	Amount   decimal.Decimal
	Decimals int
}

// WalletBalances is the chain-reported holdings of one address.
type WalletBalances struct {
	NativeSOL decimal.Decimal
	Tokens    []TokenBalance
}

// AsMap flattens balances into mint -> ui amount, folding the native SOL
// balance under NativeMint. Duplicate token accounts for one mint sum.
func (w *WalletBalances) AsMap() map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal, len(w.Tokens)+1)
	for _, t := range w.Tokens {
		out[t.Mint] = out[t.Mint].Add(t.Amount)
	}
	if w.NativeSOL.GreaterThan(decimal.Zero) {
		out[NativeMint] = out[NativeMint].Add(w.NativeSOL)
	}
	return out
}

// OrderStatus is the state of a limit order as reported by the order book.
type OrderStatus string

const (
	OrderStatusOpen      OrderStatus = "open"
	OrderStatusFilled    OrderStatus = "filled"
	OrderStatusCancelled OrderStatus = "cancelled"
	OrderStatusExpired   OrderStatus = "expired"
)

// LimitOrder is one order from the order-book collaborator. Amounts are raw
// base units; unit-decimal conversion is the caller's responsibility.
type LimitOrder struct {
	InputMint      string
	OutputMint     string
	RawInAmount    string
	RawOutAmount   string
	InputDecimals  int
	OutputDecimals int
	Status         OrderStatus
	Signature      string // settlement signature, set once filled
	FilledAt       time.Time
}
