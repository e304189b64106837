// Package reconciler polls the order-book collaborator for newly filled
// limit orders and feeds them into the trade ledger.
package reconciler

import (
	"context"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/vadiminshakov/solpnl/internal/domain"
	"github.com/vadiminshakov/solpnl/internal/services/recorder"
)

// OrderBook supplies an address's limit-order history.
type OrderBook interface {
	GetOrderHistory(ctx context.Context, address string) ([]domain.LimitOrder, error)
}

// TradeRecorder records discovered fills, idempotent on signature.
type TradeRecorder interface {
	RecordLimitFill(ctx context.Context, p recorder.TradeParams) (*domain.TradeRecord, bool, error)
}

// Reconciler is a best-effort, repeatable background sync: any failure is
// logged and treated as "no data this round", never raised.
type Reconciler struct {
	orders   OrderBook
	recorder TradeRecorder
	l        *zap.Logger
}

// New creates a Reconciler.
func New(l *zap.Logger, orders OrderBook, rec TradeRecorder) *Reconciler {
	return &Reconciler{orders: orders, recorder: rec, l: l}
}

// SyncFilledOrders records every order whose status is exactly "filled" and
// returns how many ledger entries were newly created. Orders already in the
// ledger (dedup hits) are not counted; cancelled and expired orders are
// dropped. Raw order amounts are converted to ui units with the mint
// decimals carried on the order.
func (r *Reconciler) SyncFilledOrders(ctx context.Context, walletID, walletAddress string) int {
	orders, err := r.orders.GetOrderHistory(ctx, walletAddress)
	if err != nil {
		r.l.Warn("order history unavailable, skipping reconciliation",
			zap.Error(err), zap.String("wallet", walletAddress))
		return 0
	}

	created := 0
	for _, o := range orders {
		if o.Status != domain.OrderStatusFilled {
			continue
		}

		inAmount, err := rawToUI(o.RawInAmount, o.InputDecimals)
		if err != nil {
			r.l.Error("skipping fill with malformed input amount",
				zap.Error(err), zap.String("signature", o.Signature))
			continue
		}
		outAmount, err := rawToUI(o.RawOutAmount, o.OutputDecimals)
		if err != nil {
			r.l.Error("skipping fill with malformed output amount",
				zap.Error(err), zap.String("signature", o.Signature))
			continue
		}

		_, isNew, err := r.recorder.RecordLimitFill(ctx, recorder.TradeParams{
			WalletID:     walletID,
			InputMint:    o.InputMint,
			OutputMint:   o.OutputMint,
			InputAmount:  inAmount.String(),
			OutputAmount: outAmount.String(),
			Signature:    o.Signature,
			ExecutedAt:   o.FilledAt,
		})
		if err != nil {
			r.l.Error("failed to record limit fill",
				zap.Error(err), zap.String("signature", o.Signature))
			continue
		}
		if isNew {
			created++
		}
	}

	if created > 0 {
		r.l.Info("reconciled filled limit orders",
			zap.Int("new_trades", created), zap.String("wallet", walletAddress))
	}
	return created
}

func rawToUI(raw string, decimals int) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Decimal{}, err
	}
	return d.Shift(int32(-decimals)), nil
}
