package distribution

// SubmitRequest is the partner's distribution proposal
type SubmitRequest struct {
	DealID                  int64   `json:"dealId" validate:"required"`
	EstimatedGainPercent    float64 `json:"estimatedGainPercent" validate:"gte=0,lte=100"`
	EstimatedClosingPercent float64 `json:"estimatedClosingPercent" validate:"gte=0,lte=100"`
	TotalAmount             float64 `json:"totalAmount" validate:"required,gt=0"`
	DistributionType        string  `json:"distributionType" validate:"required,oneof=PARTIAL FINAL"`
	Description             string  `json:"description" validate:"max=500"`
}

// SubmitResponse summarizes the created request
type SubmitResponse struct {
	RequestID              int64   `json:"requestId"`
	TotalAmount            float64 `json:"totalAmount"`
	EstimatedProfit        float64 `json:"estimatedProfit"`
	EstimatedReturnCapital float64 `json:"estimatedReturnCapital"`
	DistributionType       string  `json:"distributionType"`
	InvestorCount          int     `json:"investorCount"`
}

// InvestorOverride is an admin-supplied per-investor amount pair for one
// round, used verbatim instead of the proportional computation. It is how a
// FINAL round nets out capital already advanced by PARTIAL rounds.
type InvestorOverride struct {
	InvestorID    int64   `json:"investorId"`
	CapitalAmount float64 `json:"capitalAmount"`
	ProfitAmount  float64 `json:"profitAmount"`
}

// ApproveRequest carries the admin's optional edits to a pending request.
// Field names follow the public API contract; sahemInvest* is the platform
// commission.
type ApproveRequest struct {
	TotalAmount             *float64           `json:"totalAmount,omitempty"`
	EstimatedProfit         *float64           `json:"estimatedProfit,omitempty"`
	EstimatedGainPercent    *float64           `json:"estimatedGainPercent,omitempty"`
	EstimatedClosingPercent *float64           `json:"estimatedClosingPercent,omitempty"`
	EstimatedReturnCapital  *float64           `json:"estimatedReturnCapital,omitempty"`
	CommissionPercent       *float64           `json:"sahemInvestPercent,omitempty"`
	CommissionAmount        *float64           `json:"sahemInvestAmount,omitempty"`
	ReservePercent          *float64           `json:"reservedGainPercent,omitempty"`
	ReserveAmount           *float64           `json:"reservedAmount,omitempty"`
	IsLoss                  *bool              `json:"isLoss,omitempty"`
	InvestorDistributions   []InvestorOverride `json:"investorDistributions,omitempty"`
}

// Summary is the numeric outcome of an approved round
type Summary struct {
	TotalProfit       float64 `json:"totalProfit"`
	TotalAmount       float64 `json:"totalAmount"`
	InvestorPool      float64 `json:"investorPool"` // profit pool after commission
	CapitalPool       float64 `json:"capitalPool"`  // aggregate capital returned
	CommissionAmount  float64 `json:"commissionAmount"`
	ReserveAmount     float64 `json:"reserveAmount"`
	CommissionPercent float64 `json:"commissionPercent"`
	ReservePercent    float64 `json:"reservePercent"`
	InvestorCount     int     `json:"investorCount"`
	InvestmentCount   int     `json:"investmentCount"`
	DistributionType  string  `json:"distributionType"`
	IsLoss            bool    `json:"isLoss"`
	GainPercent       float64 `json:"gainPercent"`
	ClosingPercent    float64 `json:"closingPercent"`
}

// ApproveResponse is the result of an approval
type ApproveResponse struct {
	Message string   `json:"message"`
	Summary *Summary `json:"summary"`
}

// RequestResponse represents a request with its records once approved
type RequestResponse struct {
	*Request
	Records []*Record `json:"records,omitempty"`
}
