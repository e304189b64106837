// Package render turns snapshots and ledger listings into terminal output.
package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/vadiminshakov/solpnl/internal/domain"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#848484", Dark: "#626262"})
	profitStyle = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#43BF6D", Dark: "#73F59F"})
	lossStyle   = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#D94F70", Dark: "#F25D94"})
)

// Snapshot renders a portfolio snapshot as an aligned table with portfolio
// totals underneath.
func Snapshot(snap *domain.PortfolioSnapshot) string {
	var b strings.Builder

	b.WriteString(headerStyle.Render(fmt.Sprintf("Portfolio %s — %s", snap.WalletID, snap.AsOf.Format("2006-01-02 15:04:05"))))
	b.WriteString("\n\n")

	b.WriteString(fmt.Sprintf("%-14s %16s %14s %16s %14s %16s %9s\n",
		"MINT", "BALANCE", "PRICE", "VALUE", "AVG COST", "UNREALIZED", "PNL %"))

	for _, row := range snap.Tokens {
		line := fmt.Sprintf("%-14s %16s %14s %16s %14s %16s %8s%%",
			shortMint(row.Mint),
			row.Balance.StringFixed(6),
			money(row.Price),
			money(row.Value),
			money(row.AvgCost),
			money(row.UnrealizedPnL),
			row.UnrealizedPnLPercent.StringFixed(2))

		if !row.Tracked {
			b.WriteString(mutedStyle.Render(line + "  (untracked)"))
		} else {
			b.WriteString(pnlStyle(row.UnrealizedPnL).Render(line))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("Total value:      %s\n", money(snap.TotalValue)))
	b.WriteString(fmt.Sprintf("Total cost:       %s\n", money(snap.TotalCost)))
	b.WriteString("Unrealized PnL:   " +
		pnlStyle(snap.TotalUnrealizedPnL).Render(fmt.Sprintf("%s (%s%%)", money(snap.TotalUnrealizedPnL), snap.TotalUnrealizedPnLPercent.StringFixed(2))) + "\n")
	b.WriteString("Realized PnL:     " +
		pnlStyle(snap.TotalRealizedPnL).Render(money(snap.TotalRealizedPnL)) + "\n")

	if len(snap.UntrackedMints) > 0 {
		b.WriteString(mutedStyle.Render(fmt.Sprintf("Untracked mints:  %s", strings.Join(snap.UntrackedMints, ", "))))
		b.WriteString("\n")
	}

	return b.String()
}

// Trades renders ledger records in execution order.
func Trades(records []*domain.TradeRecord) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("%-20s %-10s %-14s %16s %-14s %16s\n",
		"EXECUTED", "KIND", "IN", "AMOUNT", "OUT", "AMOUNT"))
	for _, t := range records {
		b.WriteString(fmt.Sprintf("%-20s %-10s %-14s %16s %-14s %16s\n",
			t.ExecutedAt.Format("2006-01-02 15:04:05"),
			string(t.Kind),
			shortMint(t.InputMint),
			t.InputAmount.StringFixed(6),
			shortMint(t.OutputMint),
			t.OutputAmount.StringFixed(6)))
	}
	return b.String()
}

// History renders stored snapshot totals, one line per run.
func History(records []domain.SnapshotRecord) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("%-20s %16s %16s %16s %16s\n",
		"AS OF", "VALUE", "COST", "UNREALIZED", "REALIZED"))
	for _, r := range records {
		s := r.Snapshot
		b.WriteString(fmt.Sprintf("%-20s %16s %16s %16s %16s\n",
			s.AsOf.Format("2006-01-02 15:04:05"),
			money(s.TotalValue),
			money(s.TotalCost),
			money(s.TotalUnrealizedPnL),
			money(s.TotalRealizedPnL)))
	}
	return b.String()
}

func pnlStyle(v decimal.Decimal) lipgloss.Style {
	if v.LessThan(decimal.Zero) {
		return lossStyle
	}
	return profitStyle
}

func money(v decimal.Decimal) string {
	return "$" + v.StringFixed(2)
}

func shortMint(mint string) string {
	if len(mint) <= 12 {
		return mint
	}
	return mint[:4] + "…" + mint[len(mint)-4:]
}
