package investor

// WalletResponse represents the wallet summary for an investor
type WalletResponse struct {
	InvestorID    int64   `json:"investor_id"`
	WalletBalance float64 `json:"wallet_balance"`
	TotalReturns  float64 `json:"total_returns"`
}

// InvestorResponse represents the public view of an investor
type InvestorResponse struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	Language  string `json:"language"`
	CreatedAt string `json:"created_at"`
}

// ToResponse converts an Investor model to an InvestorResponse DTO
func (i *Investor) ToResponse() *InvestorResponse {
	return &InvestorResponse{
		ID:        i.ID,
		Username:  i.Username,
		Email:     i.Email,
		Language:  i.Language,
		CreatedAt: i.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
}

// ToWalletResponse converts an Investor model to a WalletResponse DTO
func (i *Investor) ToWalletResponse() *WalletResponse {
	return &WalletResponse{
		InvestorID:    i.ID,
		WalletBalance: i.WalletBalance,
		TotalReturns:  i.TotalReturns,
	}
}
