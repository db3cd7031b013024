package reporting

import (
	"fmt"
	"strings"
	"time"
)

// RenderMarkdown renders an activity report as Markdown.
func RenderMarkdown(r *ActivityReport) string {
	var sb strings.Builder

	sb.WriteString("# Token Activity Report\n\n")
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", r.GeneratedAt.Format(time.RFC3339)))
	sb.WriteString(fmt.Sprintf("Window: %s | Tracked wallets: %d | Events: %d\n\n",
		r.Window, r.WalletCount, r.EventCount))

	sb.WriteString("## Activity Summary\n\n")
	sb.WriteString("| Metric | Value |\n")
	sb.WriteString("|--------|-------|\n")
	sb.WriteString(fmt.Sprintf("| Buys | %d |\n", r.BuyCount))
	sb.WriteString(fmt.Sprintf("| Sells | %d |\n", r.SellCount))
	sb.WriteString(fmt.Sprintf("| Buy Volume | %.2f |\n", r.BuyVolume))
	sb.WriteString(fmt.Sprintf("| Sell Volume | %.2f |\n", r.SellVolume))
	sb.WriteString("\n")

	if len(r.VenueBreakdown) > 0 {
		sb.WriteString("## Venues\n\n")
		sb.WriteString("| Venue | Events | Volume |\n")
		sb.WriteString("|-------|--------|--------|\n")
		for _, v := range r.VenueBreakdown {
			sb.WriteString(fmt.Sprintf("| %s | %d | %.2f |\n", v.Venue, v.Events, v.Volume))
		}
		sb.WriteString("\n")
	}

	if len(r.TopWallets) > 0 {
		sb.WriteString("## Top Wallets\n\n")
		sb.WriteString("| Rank | Address | Token Amount | Balance | Events |\n")
		sb.WriteString("|------|---------|--------------|---------|--------|\n")
		for _, w := range r.TopWallets {
			sb.WriteString(fmt.Sprintf("| %d | %s | %.2f | %.4f | %d |\n",
				w.Rank, w.Address, w.TokenAmount, w.Balance, w.Events))
		}
		sb.WriteString("\n")
	}

	return sb.String()
}
