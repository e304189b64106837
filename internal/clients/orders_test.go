package clients

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/vadiminshakov/solpnl/internal/domain"
)

func TestGetOrderHistory(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/trigger/v1/orderHistory", r.URL.Path)
		require.Equal(t, "wallet-addr", r.URL.Query().Get("user"))
		w.Write([]byte(`{"orders":[
			{"inputMint":"MINT_IN","outputMint":"MINT_OUT",
			 "rawMakingAmount":"100000000","rawTakingAmount":"5000000000",
			 "inputMintDecimals":6,"outputMintDecimals":9,
			 "status":"Completed","fillTx":"sig-1","updatedAt":"2025-06-01T12:00:00Z"},
			{"inputMint":"MINT_IN","outputMint":"MINT_OUT",
			 "rawMakingAmount":"1","rawTakingAmount":"2",
			 "inputMintDecimals":6,"outputMintDecimals":9,
			 "status":"Cancelled"},
			{"inputMint":"MINT_IN","outputMint":"MINT_OUT",
			 "rawMakingAmount":"1","rawTakingAmount":"2",
			 "inputMintDecimals":6,"outputMintDecimals":9,
			 "status":"Open"}
		]}`))
	}))
	defer srv.Close()

	c := NewOrderClient(srv.URL, time.Second)

	orders, err := c.GetOrderHistory(context.Background(), "wallet-addr")
	require.NoError(t, err)
	require.Len(t, orders, 3)

	filled := orders[0]
	require.Equal(t, domain.OrderStatusFilled, filled.Status)
	require.Equal(t, "sig-1", filled.Signature)
	require.Equal(t, "100000000", filled.RawInAmount)
	require.Equal(t, 6, filled.InputDecimals)
	require.Equal(t, 9, filled.OutputDecimals)
	require.Equal(t, time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC), filled.FilledAt)

	require.Equal(t, domain.OrderStatusCancelled, orders[1].Status)
	require.Equal(t, domain.OrderStatusOpen, orders[2].Status)
}

func TestMapOrderStatus(t *testing.T) {
	tests := []struct {
		raw  string
		want domain.OrderStatus
	}{
		{raw: "Filled", want: domain.OrderStatusFilled},
		{raw: "completed", want: domain.OrderStatusFilled},
		{raw: "Cancelled", want: domain.OrderStatusCancelled},
		{raw: "canceled", want: domain.OrderStatusCancelled},
		{raw: "Expired", want: domain.OrderStatusExpired},
		{raw: "Open", want: domain.OrderStatusOpen},
		{raw: "whatever", want: domain.OrderStatusOpen},
	}

	for _, tc := range tests {
		require.Equal(t, tc.want, mapOrderStatus(tc.raw), "status %q", tc.raw)
	}
}
