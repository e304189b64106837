package trades

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/vadiminshakov/solpnl/internal/domain"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func testRecord(id, wallet, sig string, executedAt time.Time) *domain.TradeRecord {
	return &domain.TradeRecord{
		ID:           id,
		WalletID:     wallet,
		InputMint:    "MINT_IN",
		OutputMint:   "MINT_OUT",
		InputAmount:  decimal.RequireFromString("100.5"),
		OutputAmount: decimal.RequireFromString("3.25"),
		Kind:         domain.TradeKindSwap,
		Signature:    sig,
		ExecutedAt:   executedAt,
		InputUSDValue: decimal.NullDecimal{
			Decimal: decimal.RequireFromString("100.5"), Valid: true,
		},
	}
}

func TestInsertAndFindByWallet(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	rec := testRecord("t1", "w1", "", time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC))
	stored, created, err := store.Insert(ctx, rec)
	require.NoError(t, err)
	require.True(t, created)
	require.Equal(t, "t1", stored.ID)

	got, err := store.FindByWallet(ctx, "w1", domain.TradeFilter{})
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, "t1", got[0].ID)
	require.True(t, got[0].InputAmount.Equal(decimal.RequireFromString("100.5")))
	require.True(t, got[0].InputUSDValue.Valid)
	require.True(t, got[0].InputUSDValue.Decimal.Equal(decimal.RequireFromString("100.5")))
	require.False(t, got[0].OutputUSDValue.Valid, "absent valuation must stay absent")
	require.Equal(t, domain.TradeKindSwap, got[0].Kind)
}

func TestInsertIdempotentOnSignature(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	at := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	_, created, err := store.Insert(ctx, testRecord("t1", "w1", "sig-1", at))
	require.NoError(t, err)
	require.True(t, created)

	// same settlement signature, different id: same economic event
	stored, created, err := store.Insert(ctx, testRecord("t2", "w1", "sig-1", at))
	require.NoError(t, err)
	require.False(t, created)
	require.Equal(t, "t1", stored.ID, "the original record must win")

	n, err := store.CountByWallet(ctx, "w1", domain.TradeFilter{})
	require.NoError(t, err)
	require.Equal(t, 1, n)
}

func TestInsertEmptySignaturesDoNotCollide(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	at := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	_, created, err := store.Insert(ctx, testRecord("t1", "w1", "", at))
	require.NoError(t, err)
	require.True(t, created)

	_, created, err = store.Insert(ctx, testRecord("t2", "w1", "", at))
	require.NoError(t, err)
	require.True(t, created, "records without signature are always distinct events")

	n, err := store.CountByWallet(ctx, "w1", domain.TradeFilter{})
	require.NoError(t, err)
	require.Equal(t, 2, n)
}

func TestFindBySignature(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, _, err := store.Insert(ctx, testRecord("t1", "w1", "sig-1", time.Now().UTC()))
	require.NoError(t, err)

	got, err := store.FindBySignature(ctx, "sig-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, "t1", got.ID)

	missing, err := store.FindBySignature(ctx, "sig-unknown")
	require.NoError(t, err)
	require.Nil(t, missing)

	empty, err := store.FindBySignature(ctx, "")
	require.NoError(t, err)
	require.Nil(t, empty)
}

func TestFindByWalletOrderAndTies(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	base := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	// inserted out of chronological order, plus two sharing a timestamp
	for _, rec := range []*domain.TradeRecord{
		testRecord("t3", "w1", "", base.Add(2*time.Hour)),
		testRecord("t1", "w1", "", base),
		testRecord("tie-a", "w1", "", base.Add(time.Hour)),
		testRecord("tie-b", "w1", "", base.Add(time.Hour)),
	} {
		_, _, err := store.Insert(ctx, rec)
		require.NoError(t, err)
	}

	got, err := store.FindByWallet(ctx, "w1", domain.TradeFilter{})
	require.NoError(t, err)
	require.Len(t, got, 4)

	ids := []string{got[0].ID, got[1].ID, got[2].ID, got[3].ID}
	require.Equal(t, []string{"t1", "tie-a", "tie-b", "t3"}, ids,
		"time ascending, ties in insertion order")
}

func TestFindByWalletFilters(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	base := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

	swap := testRecord("t1", "w1", "", base)
	fill := testRecord("t2", "w1", "sig-1", base.Add(time.Hour))
	fill.Kind = domain.TradeKindLimitFill
	fill.InputMint = "OTHER_IN"
	other := testRecord("t3", "w2", "", base)

	for _, rec := range []*domain.TradeRecord{swap, fill, other} {
		_, _, err := store.Insert(ctx, rec)
		require.NoError(t, err)
	}

	byKind, err := store.FindByWallet(ctx, "w1", domain.TradeFilter{Kind: domain.TradeKindLimitFill})
	require.NoError(t, err)
	require.Len(t, byKind, 1)
	require.Equal(t, "t2", byKind[0].ID)

	// mint filter matches either side
	byMint, err := store.FindByWallet(ctx, "w1", domain.TradeFilter{Mint: "MINT_OUT"})
	require.NoError(t, err)
	require.Len(t, byMint, 2)

	byInputMint, err := store.FindByWallet(ctx, "w1", domain.TradeFilter{Mint: "OTHER_IN"})
	require.NoError(t, err)
	require.Len(t, byInputMint, 1)

	limited, err := store.FindByWallet(ctx, "w1", domain.TradeFilter{Limit: 1, Offset: 1})
	require.NoError(t, err)
	require.Len(t, limited, 1)
	require.Equal(t, "t2", limited[0].ID)

	n, err := store.CountByWallet(ctx, "w1", domain.TradeFilter{Kind: domain.TradeKindSwap})
	require.NoError(t, err)
	require.Equal(t, 1, n)
}

func TestFindByWalletEmpty(t *testing.T) {
	store := newTestStore(t)

	got, err := store.FindByWallet(context.Background(), "nobody", domain.TradeFilter{})
	require.NoError(t, err)
	require.Empty(t, got)

	n, err := store.CountByWallet(context.Background(), "nobody", domain.TradeFilter{})
	require.NoError(t, err)
	require.Zero(t, n)
}
