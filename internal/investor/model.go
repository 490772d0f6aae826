package investor

import "time"

// Investor represents an investor account in the system.
// WalletBalance is mutated only by the distribution engine and the
// deposit/withdrawal flows; TotalReturns only ever grows, and only by profit.
type Investor struct {
	ID            int64     `json:"id"`
	Username      string    `json:"username"`
	Email         string    `json:"email"`
	Language      string    `json:"language"` // notification language, e.g. "en", "ar"
	WalletBalance float64   `json:"wallet_balance"`
	TotalReturns  float64   `json:"total_returns"`
	CreatedAt     time.Time `json:"created_at"`
}
