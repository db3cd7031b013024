package reporting

import "time"

// ActivityReport summarizes tracked wallets and their recent activity.
type ActivityReport struct {
	GeneratedAt time.Time
	Window      time.Duration

	WalletCount int
	EventCount  int
	BuyCount    int
	SellCount   int
	BuyVolume   float64
	SellVolume  float64

	// TopWallets lists tracked wallets by rank.
	TopWallets []WalletRow
	// VenueBreakdown counts events per venue, sorted by count descending.
	VenueBreakdown []VenueRow
}

// WalletRow is one ranked wallet in the report.
type WalletRow struct {
	Rank        int     `json:"rank"`
	Address     string  `json:"address"`
	TokenAmount float64 `json:"tokenAmount"`
	Balance     float64 `json:"balance"`
	Events      int     `json:"events"`
}

// VenueRow is one venue's share of the activity window.
type VenueRow struct {
	Venue  string  `json:"venue"`
	Events int     `json:"events"`
	Volume float64 `json:"volume"`
}
