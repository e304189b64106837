// Command solpnl tracks realized and unrealized profit/loss on a Solana
// wallet's token holdings from a private ledger of executed swaps and filled
// limit orders.
//
// Usage:
//
//	solpnl snapshot --wallet <address>
//	solpnl sync --wallet <address>
//	solpnl record-swap --in-mint ... --out-mint ... --in-amount ... --out-amount ...
//	solpnl trades
//	solpnl history
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/vadiminshakov/solpnl/config"
	"github.com/vadiminshakov/solpnl/internal/clients"
	"github.com/vadiminshakov/solpnl/internal/domain"
	"github.com/vadiminshakov/solpnl/internal/render"
	"github.com/vadiminshakov/solpnl/internal/services/accounting"
	"github.com/vadiminshakov/solpnl/internal/services/reconciler"
	"github.com/vadiminshakov/solpnl/internal/services/recorder"
	"github.com/vadiminshakov/solpnl/internal/storage/snapshots"
	"github.com/vadiminshakov/solpnl/internal/storage/trades"
)

type rootOptions struct {
	configPath    string
	dbPath        string
	walletID      string
	walletAddress string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "solpnl",
		Short:         "Cost-basis PnL tracking for a Solana wallet's swap ledger",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "path to yaml config")
	cmd.PersistentFlags().StringVar(&opts.dbPath, "db", "", "trade ledger sqlite database (overrides config)")
	cmd.PersistentFlags().StringVar(&opts.walletAddress, "wallet", "", "wallet address (overrides config)")
	cmd.PersistentFlags().StringVar(&opts.walletID, "wallet-id", "", "ledger wallet id, defaults to the wallet address")

	cmd.AddCommand(
		newSnapshotCmd(opts),
		newSyncCmd(opts),
		newRecordSwapCmd(opts),
		newTradesCmd(opts),
		newHistoryCmd(opts),
	)

	return cmd
}

// app bundles configuration, logging, storage, and the wired services.
type app struct {
	cfg    *config.Config
	logger *zap.Logger
	store  *trades.SQLiteStore

	engine     *accounting.Engine
	recorder   *recorder.Recorder
	reconciler *reconciler.Reconciler
}

func newApp(opts *rootOptions) (*app, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, err
	}
	if opts.dbPath != "" {
		cfg.DBPath = opts.dbPath
	}
	if opts.walletAddress != "" {
		cfg.WalletAddress = opts.walletAddress
	}
	if opts.walletID != "" {
		cfg.WalletID = opts.walletID
	}
	if cfg.WalletID == "" {
		cfg.WalletID = cfg.WalletAddress
	}

	logger, err := zap.NewProduction()
	if err != nil {
		return nil, errors.Wrap(err, "init logger")
	}

	store, err := trades.NewSQLite(cfg.DBPath)
	if err != nil {
		logger.Sync()
		return nil, err
	}

	priceClient := clients.NewPriceClient(cfg.PriceAPIURL, cfg.RequestTimeout)
	orderClient := clients.NewOrderClient(cfg.OrderAPIURL, cfg.RequestTimeout)
	rpcClient := clients.NewRPCClient(cfg.RPCURL, cfg.RequestTimeout)

	rec := recorder.New(logger, store, priceClient)

	return &app{
		cfg:        cfg,
		logger:     logger,
		store:      store,
		engine:     accounting.NewEngine(logger, store, priceClient, rpcClient),
		recorder:   rec,
		reconciler: reconciler.New(logger, orderClient, rec),
	}, nil
}

func (a *app) Close() {
	a.store.Close()
	a.logger.Sync()
}

func (a *app) requireWallet() error {
	if a.cfg.WalletAddress == "" {
		return errors.New("wallet address is required (--wallet or wallet_address in config)")
	}
	return nil
}

func newSnapshotCmd(opts *rootOptions) *cobra.Command {
	var noHistory bool

	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Compute and print the wallet's PnL snapshot",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(opts)
			if err != nil {
				return err
			}
			defer a.Close()
			if err := a.requireWallet(); err != nil {
				return err
			}

			snap, err := a.engine.Snapshot(cmd.Context(), a.cfg.WalletID, a.cfg.WalletAddress)
			if err != nil {
				return err
			}

			fmt.Print(render.Snapshot(snap))

			if !noHistory {
				history, err := snapshots.NewWALStore(a.cfg.SnapshotDir)
				if err != nil {
					return err
				}
				defer history.Close()
				if err := history.Save(*snap); err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&noHistory, "no-history", false, "do not append the snapshot to the history log")
	return cmd
}

func newSyncCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Reconcile filled limit orders into the trade ledger",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(opts)
			if err != nil {
				return err
			}
			defer a.Close()
			if err := a.requireWallet(); err != nil {
				return err
			}

			n := a.reconciler.SyncFilledOrders(cmd.Context(), a.cfg.WalletID, a.cfg.WalletAddress)
			fmt.Printf("recorded %d new limit fill(s)\n", n)
			return nil
		},
	}
}

func newRecordSwapCmd(opts *rootOptions) *cobra.Command {
	var (
		inMint, outMint     string
		inAmount, outAmount string
		signature           string
		executedAt          string
	)

	cmd := &cobra.Command{
		Use:   "record-swap",
		Short: "Record an executed swap in the trade ledger",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(opts)
			if err != nil {
				return err
			}
			defer a.Close()

			params := recorder.TradeParams{
				WalletID:     a.cfg.WalletID,
				InputMint:    inMint,
				OutputMint:   outMint,
				InputAmount:  inAmount,
				OutputAmount: outAmount,
				Signature:    signature,
			}
			if executedAt != "" {
				ts, err := time.Parse(time.RFC3339, executedAt)
				if err != nil {
					return errors.Wrap(err, "parse --at")
				}
				params.ExecutedAt = ts
			}

			rec, err := a.recorder.RecordSwap(cmd.Context(), params)
			if err != nil {
				return err
			}
			fmt.Printf("recorded swap %s\n", rec.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&inMint, "in-mint", "", "input token mint")
	cmd.Flags().StringVar(&outMint, "out-mint", "", "output token mint")
	cmd.Flags().StringVar(&inAmount, "in-amount", "", "input amount (ui units, decimal string)")
	cmd.Flags().StringVar(&outAmount, "out-amount", "", "output amount (ui units, decimal string)")
	cmd.Flags().StringVar(&signature, "signature", "", "settlement signature (optional)")
	cmd.Flags().StringVar(&executedAt, "at", "", "execution time, RFC3339 (defaults to now)")
	cmd.MarkFlagRequired("in-mint")
	cmd.MarkFlagRequired("out-mint")
	cmd.MarkFlagRequired("in-amount")
	cmd.MarkFlagRequired("out-amount")

	return cmd
}

func newTradesCmd(opts *rootOptions) *cobra.Command {
	var (
		mint   string
		kind   string
		limit  int
		offset int
	)

	cmd := &cobra.Command{
		Use:   "trades",
		Short: "List the wallet's trade ledger",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(opts)
			if err != nil {
				return err
			}
			defer a.Close()

			filter := domain.TradeFilter{
				Mint:   mint,
				Kind:   domain.TradeKind(kind),
				Limit:  limit,
				Offset: offset,
			}

			records, err := a.store.FindByWallet(cmd.Context(), a.cfg.WalletID, filter)
			if err != nil {
				return err
			}
			total, err := a.store.CountByWallet(cmd.Context(), a.cfg.WalletID, filter)
			if err != nil {
				return err
			}

			fmt.Print(render.Trades(records))
			fmt.Printf("\n%d of %d trade(s)\n", len(records), total)
			return nil
		},
	}

	cmd.Flags().StringVar(&mint, "mint", "", "filter by mint on either side")
	cmd.Flags().StringVar(&kind, "kind", "", "filter by kind: swap|limit_fill")
	cmd.Flags().IntVar(&limit, "limit", 50, "max records to list")
	cmd.Flags().IntVar(&offset, "offset", 0, "records to skip")

	return cmd
}

func newHistoryCmd(opts *rootOptions) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List stored snapshot totals",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(opts)
			if err != nil {
				return err
			}
			defer a.Close()

			history, err := snapshots.NewWALStore(a.cfg.SnapshotDir)
			if err != nil {
				return err
			}
			defer history.Close()

			records, err := history.History(a.cfg.WalletID, limit)
			if err != nil {
				return err
			}
			fmt.Print(render.History(records))
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "max snapshots to list")
	return cmd
}
