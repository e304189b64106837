// Package recorder creates trade ledger entries for executed swaps and
// discovered limit-order fills.
package recorder

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/vadiminshakov/solpnl/internal/domain"
)

// Ledger is the trade store the recorder writes to.
type Ledger interface {
	Insert(ctx context.Context, t *domain.TradeRecord) (*domain.TradeRecord, bool, error)
	FindBySignature(ctx context.Context, sig string) (*domain.TradeRecord, error)
}

// PriceSource supplies batch USD quotes for execution-time valuation.
type PriceSource interface {
	GetPrices(ctx context.Context, mints []string) ([]domain.PriceQuote, error)
}

// TradeParams describes one trade to record. Amounts are decimal strings;
// malformed amounts are a contract violation and fail hard.
type TradeParams struct {
	WalletID     string
	InputMint    string
	OutputMint   string
	InputAmount  string
	OutputAmount string
	Signature    string
	ExecutedAt   time.Time
}

// Recorder writes ledger entries with best-effort USD valuation captured at
// recording time. Pricing failure never blocks recording.
type Recorder struct {
	ledger Ledger
	prices PriceSource
	l      *zap.Logger
}

// New creates a Recorder.
func New(l *zap.Logger, ledger Ledger, prices PriceSource) *Recorder {
	return &Recorder{ledger: ledger, prices: prices, l: l}
}

// RecordSwap inserts a new entry for a swap. Swaps are recorded exactly once
// at execution time by the caller, so no dedup applies.
func (r *Recorder) RecordSwap(ctx context.Context, p TradeParams) (*domain.TradeRecord, error) {
	rec, err := r.buildRecord(p, domain.TradeKindSwap)
	if err != nil {
		return nil, err
	}
	r.resolveValuation(ctx, rec)

	stored, _, err := r.ledger.Insert(ctx, rec)
	if err != nil {
		return nil, errors.Wrap(err, "record swap")
	}
	return stored, nil
}

// RecordLimitFill inserts an entry for a filled limit order, idempotent on
// the settlement signature. Fills are discovered by polling and may be
// observed repeatedly; a known signature returns the existing entry without
// re-querying prices, and created is false.
func (r *Recorder) RecordLimitFill(ctx context.Context, p TradeParams) (*domain.TradeRecord, bool, error) {
	if p.Signature == "" {
		return nil, false, errors.New("limit fill requires a settlement signature")
	}

	existing, err := r.ledger.FindBySignature(ctx, p.Signature)
	if err != nil {
		return nil, false, errors.Wrap(err, "look up fill signature")
	}
	if existing != nil {
		return existing, false, nil
	}

	rec, err := r.buildRecord(p, domain.TradeKindLimitFill)
	if err != nil {
		return nil, false, err
	}
	r.resolveValuation(ctx, rec)

	stored, created, err := r.ledger.Insert(ctx, rec)
	if err != nil {
		return nil, false, errors.Wrap(err, "record limit fill")
	}
	return stored, created, nil
}

func (r *Recorder) buildRecord(p TradeParams, kind domain.TradeKind) (*domain.TradeRecord, error) {
	inAmount, err := decimal.NewFromString(p.InputAmount)
	if err != nil {
		return nil, errors.Wrapf(err, "malformed input amount %q", p.InputAmount)
	}
	outAmount, err := decimal.NewFromString(p.OutputAmount)
	if err != nil {
		return nil, errors.Wrapf(err, "malformed output amount %q", p.OutputAmount)
	}

	executedAt := p.ExecutedAt
	if executedAt.IsZero() {
		executedAt = time.Now()
	}

	return &domain.TradeRecord{
		ID:           uuid.New().String(),
		WalletID:     p.WalletID,
		InputMint:    p.InputMint,
		OutputMint:   p.OutputMint,
		InputAmount:  inAmount,
		OutputAmount: outAmount,
		Kind:         kind,
		Signature:    p.Signature,
		ExecutedAt:   executedAt,
	}, nil
}

// resolveValuation captures the USD price and value of both legs. A missing
// quote leaves that side unvalued; stablecoins on the allow-list fall back
// to an implicit $1.00.
func (r *Recorder) resolveValuation(ctx context.Context, rec *domain.TradeRecord) {
	quoteByMint := make(map[string]decimal.Decimal, 2)

	quotes, err := r.prices.GetPrices(ctx, []string{rec.InputMint, rec.OutputMint})
	if err != nil {
		r.l.Warn("price lookup failed, recording without full valuation",
			zap.Error(err), zap.String("trade_id", rec.ID))
	}
	for _, q := range quotes {
		quoteByMint[q.Mint] = q.USDPrice
	}

	if price, ok := resolvePrice(quoteByMint, rec.InputMint); ok {
		rec.InputUSDPrice = decimal.NullDecimal{Decimal: price, Valid: true}
		rec.InputUSDValue = decimal.NullDecimal{Decimal: rec.InputAmount.Mul(price), Valid: true}
	}
	if price, ok := resolvePrice(quoteByMint, rec.OutputMint); ok {
		rec.OutputUSDPrice = decimal.NullDecimal{Decimal: price, Valid: true}
		rec.OutputUSDValue = decimal.NullDecimal{Decimal: rec.OutputAmount.Mul(price), Valid: true}
	}
}

func resolvePrice(quotes map[string]decimal.Decimal, mint string) (decimal.Decimal, bool) {
	if price, ok := quotes[mint]; ok {
		return price, true
	}
	if domain.IsStablecoin(mint) {
		return domain.StablecoinPrice, true
	}
	return decimal.Decimal{}, false
}
