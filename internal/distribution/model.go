package distribution

import "time"

// RequestStatus represents the review state of a distribution request
type RequestStatus string

const (
	RequestStatusPending  RequestStatus = "PENDING"
	RequestStatusApproved RequestStatus = "APPROVED"
	RequestStatusRejected RequestStatus = "REJECTED"
)

// Request is a partner's proposal to return capital/profit to the investors
// of one deal. An admin may edit the numeric fields at approval time; the
// edited values are persisted back onto the request for audit. Exactly one
// outcome per request: the PENDING to APPROVED/REJECTED transition is a
// conditional update.
type Request struct {
	ID                      int64         `json:"id"`
	DealID                  int64         `json:"deal_id"`
	PartnerID               int64         `json:"partner_id"`
	DistributionType        string        `json:"distribution_type"` // PARTIAL | FINAL
	TotalAmount             float64       `json:"total_amount"`
	EstimatedGainPercent    float64       `json:"estimated_gain_percent"`
	EstimatedClosingPercent float64       `json:"estimated_closing_percent"`
	EstimatedProfit         float64       `json:"estimated_profit"`
	EstimatedReturnCapital  float64       `json:"estimated_return_capital"`
	CommissionPercent       float64       `json:"commission_percent"`
	CommissionAmount        float64       `json:"commission_amount"`
	ReservePercent          float64       `json:"reserve_percent"`
	ReserveAmount           float64       `json:"reserve_amount"`
	IsLoss                  bool          `json:"is_loss"`
	Description             string        `json:"description"`
	Status                  RequestStatus `json:"status"`
	ReviewedBy              *int64        `json:"reviewed_by,omitempty"`
	ReviewedAt              *time.Time    `json:"reviewed_at,omitempty"`
	CreatedAt               time.Time     `json:"created_at"`

	// Populated via JOIN
	DealTitle string `json:"deal_title,omitempty"`
}

// Record is the audit trail of one approved round: one row per investor,
// aggregating that investor's investments in the deal.
type Record struct {
	ID            int64     `json:"id"`
	RequestID     int64     `json:"request_id"`
	DealID        int64     `json:"deal_id"`
	InvestorID    int64     `json:"investor_id"`
	Amount        float64   `json:"amount"`         // capital + profit
	CapitalAmount float64   `json:"capital_amount"` // capital portion
	ProfitAmount  float64   `json:"profit_amount"`  // profit portion
	ProfitRate    float64   `json:"profit_rate"`    // profit over invested, percent
	SharePercent  float64   `json:"share_percent"`  // investor's share of the deal
	Period        string    `json:"period"`         // PARTIAL | FINAL
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
}
