package clients

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/vadiminshakov/solpnl/internal/domain"
	"github.com/vadiminshakov/solpnl/pkg/retrier"
)

const (
	tokenProgramID  = "TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA"
	lamportDecimals = 9
)

// RPCClient reads token balances from a Solana JSON-RPC node.
type RPCClient struct {
	endpoint   string
	httpClient *http.Client
	retrier    *retrier.Retrier
}

// NewRPCClient creates a chain balance reader for the given RPC endpoint.
func NewRPCClient(endpoint string, timeout time.Duration) *RPCClient {
	return &RPCClient{
		endpoint:   strings.TrimSuffix(endpoint, "/"),
		httpClient: newHTTPClient(timeout),
		retrier:    retrier.New(),
	}
}

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      int    `json:"id"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
}

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *rpcError       `json:"error"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type tokenAccountsResult struct {
	Value []struct {
		Account struct {
			Data struct {
				Parsed struct {
					Info struct {
						Mint        string `json:"mint"`
						TokenAmount struct {
							UIAmountString string `json:"uiAmountString"`
							Decimals       int    `json:"decimals"`
						} `json:"tokenAmount"`
					} `json:"info"`
				} `json:"parsed"`
			} `json:"data"`
		} `json:"account"`
	} `json:"value"`
}

type balanceResult struct {
	Value uint64 `json:"value"`
}

// GetTokenBalances returns the address's SPL token balances plus its native
// SOL balance.
func (c *RPCClient) GetTokenBalances(ctx context.Context, address string) (*domain.WalletBalances, error) {
	accounts := tokenAccountsResult{}
	err := c.call(ctx, "getTokenAccountsByOwner", []any{
		address,
		map[string]string{"programId": tokenProgramID},
		map[string]string{"encoding": "jsonParsed"},
	}, &accounts)
	if err != nil {
		return nil, errors.Wrap(err, "get token accounts")
	}

	lamports := balanceResult{}
	if err := c.call(ctx, "getBalance", []any{address}, &lamports); err != nil {
		return nil, errors.Wrap(err, "get native balance")
	}

	balances := &domain.WalletBalances{
		NativeSOL: decimal.NewFromUint64(lamports.Value).Shift(-lamportDecimals),
	}
	for _, acc := range accounts.Value {
		info := acc.Account.Data.Parsed.Info
		if info.Mint == "" || info.TokenAmount.UIAmountString == "" {
			continue
		}
		amount, err := decimal.NewFromString(info.TokenAmount.UIAmountString)
		if err != nil {
			return nil, errors.Wrapf(err, "malformed balance for mint %s", info.Mint)
		}
		if amount.IsZero() {
			continue
		}
		balances.Tokens = append(balances.Tokens, domain.TokenBalance{
			Mint:     info.Mint,
			Amount:   amount,
			Decimals: info.TokenAmount.Decimals,
		})
	}
	return balances, nil
}

func (c *RPCClient) call(ctx context.Context, method string, params []any, out any) error {
	req := rpcRequest{JSONRPC: "2.0", ID: 1, Method: method, Params: params}

	var resp rpcResponse
	if err := doJSON(ctx, c.httpClient, c.retrier, http.MethodPost, c.endpoint, req, &resp); err != nil {
		return err
	}
	if resp.Error != nil {
		return errors.Errorf("rpc %s: %s (code %d)", method, resp.Error.Message, resp.Error.Code)
	}
	if err := json.Unmarshal(resp.Result, out); err != nil {
		return errors.Wrapf(err, "decode %s result", method)
	}
	return nil
}
