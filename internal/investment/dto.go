package investment

// InvestRequest represents the request to commit capital to a deal
type InvestRequest struct {
	Amount float64 `json:"amount" validate:"required,gt=0"`
}

// InvestmentResponse represents the response for an investment
type InvestmentResponse struct {
	ID         int64   `json:"id"`
	DealID     int64   `json:"deal_id"`
	InvestorID int64   `json:"investor_id"`
	Amount     float64 `json:"amount"`
	Reference  string  `json:"reference"`
	CreatedAt  string  `json:"created_at"`
}
