package transaction

import "time"

// Type classifies a ledger entry
type Type string

const (
	TypeDeposit            Type = "DEPOSIT"
	TypeWithdrawal         Type = "WITHDRAWAL"
	TypeInvestment         Type = "INVESTMENT"
	TypeReturn             Type = "RETURN"
	TypeProfitDistribution Type = "PROFIT_DISTRIBUTION"
)

// Status represents the settlement state of a ledger entry. Entries created
// by the distribution engine are COMPLETED immediately; PENDING/FAILED exist
// for the deposit and withdrawal flows.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusCompleted Status = "COMPLETED"
	StatusFailed    Status = "FAILED"
)

// Transaction is an immutable ledger entry. Amount, type, description and
// reference never change after creation; only status may transition.
type Transaction struct {
	ID          int64     `json:"id"`
	InvestorID  int64     `json:"investor_id"`
	DealID      *int64    `json:"deal_id,omitempty"`
	Type        Type      `json:"type"`
	Amount      float64   `json:"amount"`
	Status      Status    `json:"status"`
	Description string    `json:"description"`
	Reference   string    `json:"reference"`
	CreatedAt   time.Time `json:"created_at"`
}

// Entry is the input for creating a ledger row
type Entry struct {
	InvestorID  int64
	DealID      *int64
	Type        Type
	Amount      float64
	Status      Status
	Description string
	Reference   string
}
