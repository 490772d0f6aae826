package allocate

// =============================================================================
// FINAL ROUND AT A LOSS
// No commission, no reserve. Whatever remains is returned to investors as a
// partial capital recovery; the shortfall against invested capital is the
// loss and is not separately booked.
// =============================================================================

// FinalLossStrategy implements the Strategy interface for closing at a loss
type FinalLossStrategy struct{}

// Scenario returns the scenario identifier
func (s *FinalLossStrategy) Scenario() Scenario {
	return ScenarioFinalLoss
}

// Validate checks the terms for a loss round
func (s *FinalLossStrategy) Validate(terms Terms, stakes []Stake) error {
	return validateStakes(terms, stakes)
}

// Plan computes a loss round: the entire total amount goes back as capital
func (s *FinalLossStrategy) Plan(terms Terms, stakes []Stake, overrides map[int64]Override) (*Plan, error) {
	if err := s.Validate(terms, stakes); err != nil {
		return nil, err
	}

	capitalPool := Round2(terms.TotalAmount)

	return &Plan{
		Scenario:      ScenarioFinalLoss,
		TotalAmount:   terms.TotalAmount,
		TotalInvested: totalInvested(stakes),
		CapitalPool:   capitalPool,
		ProfitPool:    0,
		Allocations:   allocateProportional(capitalPool, 0, stakes, overrides),
	}, nil
}
