package notification

import "time"

// Type classifies a notification
type Type string

const (
	TypeProfitDistribution  Type = "PROFIT_DISTRIBUTION"
	TypeCapitalReturn       Type = "CAPITAL_RETURN"
	TypeDistributionOutcome Type = "DISTRIBUTION_OUTCOME"
	TypeInvestment          Type = "INVESTMENT"
)

// Notification represents an in-app notification
type Notification struct {
	ID          int64             `json:"id"`
	RecipientID int64             `json:"recipient_id"`
	Title       string            `json:"title"`
	Message     string            `json:"message"`
	Type        Type              `json:"type"`
	Metadata    map[string]string `json:"metadata,omitempty"`
	IsRead      bool              `json:"is_read"`
	CreatedAt   time.Time         `json:"created_at"`
}
