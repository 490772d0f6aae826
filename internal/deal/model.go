package deal

import "time"

// DealStatus represents the lifecycle state of a deal
type DealStatus string

const (
	DealStatusActive    DealStatus = "ACTIVE"
	DealStatusFunded    DealStatus = "FUNDED"
	DealStatusCompleted DealStatus = "COMPLETED"
)

// Deal represents a fundraising opportunity investors commit capital to.
// It is marked COMPLETED only after a FINAL distribution is approved.
type Deal struct {
	ID          int64      `json:"id"`
	PartnerID   int64      `json:"partner_id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	FundingGoal float64    `json:"funding_goal"`
	Status      DealStatus `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
}

// FundingStats aggregates investment activity for a deal
type FundingStats struct {
	DealID           int64   `json:"deal_id"`
	TotalInvested    float64 `json:"total_invested"`
	InvestorCount    int     `json:"investor_count"`
	InvestmentCount  int     `json:"investment_count"`
	RemainingCapital float64 `json:"remaining_capital"` // distributable capital left
}
