package deal

// DealResponse represents the response for a deal
type DealResponse struct {
	ID          int64         `json:"id"`
	PartnerID   int64         `json:"partner_id"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	FundingGoal float64       `json:"funding_goal"`
	Status      DealStatus    `json:"status"`
	CreatedAt   string        `json:"created_at"`
	Stats       *FundingStats `json:"stats,omitempty"`
}

// ToResponse converts a Deal model to a DealResponse DTO
func (d *Deal) ToResponse() *DealResponse {
	return &DealResponse{
		ID:          d.ID,
		PartnerID:   d.PartnerID,
		Title:       d.Title,
		Description: d.Description,
		FundingGoal: d.FundingGoal,
		Status:      d.Status,
		CreatedAt:   d.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
}
