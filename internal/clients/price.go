package clients

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/vadiminshakov/solpnl/internal/domain"
	"github.com/vadiminshakov/solpnl/pkg/retrier"
)

// PriceClient fetches batch USD quotes from a Jupiter-compatible price API.
// Mints unknown to the API are simply absent from the result, never
// zero-filled.
type PriceClient struct {
	baseURL    string
	httpClient *http.Client
	retrier    *retrier.Retrier
}

// NewPriceClient creates a price client for the given API base URL.
func NewPriceClient(baseURL string, timeout time.Duration) *PriceClient {
	return &PriceClient{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: newHTTPClient(timeout),
		retrier:    retrier.New(),
	}
}

type priceResponse struct {
	Data map[string]*priceEntry `json:"data"`
}

type priceEntry struct {
	ID    string `json:"id"`
	Price string `json:"price"`
}

// GetPrices returns USD quotes for the requested mints. Mints the API has no
// quote for (or returns an unparsable price for) are omitted.
func (c *PriceClient) GetPrices(ctx context.Context, mints []string) ([]domain.PriceQuote, error) {
	if len(mints) == 0 {
		return nil, nil
	}

	endpoint := c.baseURL + "/price/v2?ids=" + url.QueryEscape(strings.Join(mints, ","))

	var resp priceResponse
	if err := doJSON(ctx, c.httpClient, c.retrier, http.MethodGet, endpoint, nil, &resp); err != nil {
		return nil, errors.Wrap(err, "fetch prices")
	}

	asOf := time.Now()
	quotes := make([]domain.PriceQuote, 0, len(resp.Data))
	for mint, entry := range resp.Data {
		if entry == nil || entry.Price == "" {
			continue
		}
		price, err := decimal.NewFromString(entry.Price)
		if err != nil {
			continue
		}
		quotes = append(quotes, domain.PriceQuote{Mint: mint, USDPrice: price, AsOf: asOf})
	}
	return quotes, nil
}
