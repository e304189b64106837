package clients

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/vadiminshakov/solpnl/internal/domain"
	"github.com/vadiminshakov/solpnl/pkg/retrier"
)

// OrderClient fetches limit-order history from a Jupiter-compatible trigger
// API. Amounts come back in raw base units; callers convert with the mint
// decimals also carried on each order.
type OrderClient struct {
	baseURL    string
	httpClient *http.Client
	retrier    *retrier.Retrier
}

// NewOrderClient creates an order-book client for the given API base URL.
func NewOrderClient(baseURL string, timeout time.Duration) *OrderClient {
	return &OrderClient{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: newHTTPClient(timeout),
		retrier:    retrier.New(),
	}
}

type orderHistoryResponse struct {
	Orders []orderEntry `json:"orders"`
}

type orderEntry struct {
	InputMint          string `json:"inputMint"`
	OutputMint         string `json:"outputMint"`
	RawMakingAmount    string `json:"rawMakingAmount"`
	RawTakingAmount    string `json:"rawTakingAmount"`
	InputMintDecimals  int    `json:"inputMintDecimals"`
	OutputMintDecimals int    `json:"outputMintDecimals"`
	Status             string `json:"status"`
	FillTx             string `json:"fillTx"`
	UpdatedAt          string `json:"updatedAt"`
}

// GetOrderHistory returns the address's limit orders, terminal and open.
func (c *OrderClient) GetOrderHistory(ctx context.Context, address string) ([]domain.LimitOrder, error) {
	endpoint := c.baseURL + "/trigger/v1/orderHistory?user=" + url.QueryEscape(address)

	var resp orderHistoryResponse
	if err := doJSON(ctx, c.httpClient, c.retrier, http.MethodGet, endpoint, nil, &resp); err != nil {
		return nil, errors.Wrap(err, "fetch order history")
	}

	orders := make([]domain.LimitOrder, 0, len(resp.Orders))
	for _, o := range resp.Orders {
		order := domain.LimitOrder{
			InputMint:      o.InputMint,
			OutputMint:     o.OutputMint,
			RawInAmount:    o.RawMakingAmount,
			RawOutAmount:   o.RawTakingAmount,
			InputDecimals:  o.InputMintDecimals,
			OutputDecimals: o.OutputMintDecimals,
			Status:         mapOrderStatus(o.Status),
			Signature:      o.FillTx,
		}
		if ts, err := time.Parse(time.RFC3339, o.UpdatedAt); err == nil {
			order.FilledAt = ts
		}
		orders = append(orders, order)
	}
	return orders, nil
}

func mapOrderStatus(s string) domain.OrderStatus {
	switch strings.ToLower(s) {
	case "filled", "completed":
		return domain.OrderStatusFilled
	case "cancelled", "canceled":
		return domain.OrderStatusCancelled
	case "expired":
		return domain.OrderStatusExpired
	default:
		return domain.OrderStatusOpen
	}
}
