package investment

import "time"

// Investment is one capital commitment by one investor into one deal.
// Amount is immutable once created. An investor may hold several
// investments in the same deal; distribution groups them per investor.
type Investment struct {
	ID         int64     `json:"id"`
	DealID     int64     `json:"deal_id"`
	InvestorID int64     `json:"investor_id"`
	Amount     float64   `json:"amount"`
	CreatedAt  time.Time `json:"created_at"`
}

// Stake is an investor's total committed capital in a deal,
// summed across all of their investment rows.
type Stake struct {
	InvestorID int64   `json:"investor_id"`
	Username   string  `json:"username"`
	Language   string  `json:"language"`
	Invested   float64 `json:"invested"`
}
