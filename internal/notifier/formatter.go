package notifier

import (
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"CoinFlip/internal/model"
)

// FormatLamports renders an amount as grouped lamports plus its SOL value.
func FormatLamports(lamports uint64) string {
	sol := float64(lamports) / float64(model.LamportsPerSOL)
	grouped := humanize.BigComma(new(big.Int).SetUint64(lamports))
	return fmt.Sprintf("%s lamports (%s SOL)", grouped, humanize.FormatFloat("#,###.####", sol))
}

// FormatSettlement formats one settled bet.
func FormatSettlement(s *model.Settlement) string {
	var b strings.Builder

	verdict := "❌ <b>Player lost!</b>"
	if s.Won {
		verdict = "🎉 <b>Player won!</b>"
	}
	b.WriteString(fmt.Sprintf("🪙 <b>Coin flip</b> | %s\n\n", time.Now().Format("2006-01-02 15:04")))
	b.WriteString(fmt.Sprintf("Bettor: %s\n", shortAddress(s.Bettor)))
	b.WriteString(fmt.Sprintf("Call: %s | Result: %s\n", s.Side, s.Result))
	b.WriteString(fmt.Sprintf("Wager: %s\n", FormatLamports(s.Amount)))
	if s.Won {
		b.WriteString(fmt.Sprintf("Payout: %s\n", FormatLamports(s.Payout)))
	}
	b.WriteString(verdict + "\n\n")
	b.WriteString(fmt.Sprintf("Escrow totals: %d bets, %s wagered\n", s.TotalBets, FormatLamports(s.TotalAmountWagered)))
	return b.String()
}

// FormatEscrowStatus formats the current state of an escrow account.
func FormatEscrowStatus(addr model.Address, state model.EscrowState, balance uint64) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("📦 <b>Escrow %s</b>\n\n", shortAddress(addr)))
	b.WriteString(fmt.Sprintf("Initialized: %v\n", state.IsInitialized))
	b.WriteString(fmt.Sprintf("Balance: %s\n", FormatLamports(balance)))
	b.WriteString(fmt.Sprintf("Total bets: %d\n", state.TotalBets))
	b.WriteString(fmt.Sprintf("Total wagered: %s\n", FormatLamports(state.TotalAmountWagered)))
	return b.String()
}

func shortAddress(a model.Address) string {
	s := string(a)
	if len(s) <= 12 {
		return s
	}
	return s[:6] + "…" + s[len(s)-6:]
}
