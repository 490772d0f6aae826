package allocate

// =============================================================================
// FINAL ROUND WITH PROFIT
// Commission is deducted from profit only, never from capital. No reserve
// applies; reserves exist only to smooth PARTIAL rounds. What is left of the
// profit after commission is the investor profit pool; the capital pool is
// the round's estimated capital-return amount.
// =============================================================================

// FinalProfitStrategy implements the Strategy interface for profitable closings
type FinalProfitStrategy struct{}

// Scenario returns the scenario identifier
func (s *FinalProfitStrategy) Scenario() Scenario {
	return ScenarioFinalProfit
}

// Validate checks the terms for a profit round
func (s *FinalProfitStrategy) Validate(terms Terms, stakes []Stake) error {
	if err := validateStakes(terms, stakes); err != nil {
		return err
	}
	if terms.CommissionPercent < 0 || terms.CommissionPercent > 100 {
		return ErrPercentOutOfRange
	}
	if terms.ReturnCapital < 0 {
		return ErrNegativeReturnCapital
	}
	if profitCommissionFor(terms) > Round2(terms.EstimatedProfit) {
		return ErrCommissionExceedsGain
	}
	return nil
}

// Plan computes a profit round: the profit pool is the estimated profit
// minus commission, split proportionally; the capital pool is the round's
// capital-return amount.
func (s *FinalProfitStrategy) Plan(terms Terms, stakes []Stake, overrides map[int64]Override) (*Plan, error) {
	if err := s.Validate(terms, stakes); err != nil {
		return nil, err
	}

	commission := profitCommissionFor(terms)
	profitPool := Round2(terms.EstimatedProfit - commission)
	capitalPool := Round2(terms.ReturnCapital)

	return &Plan{
		Scenario:          ScenarioFinalProfit,
		TotalAmount:       terms.TotalAmount,
		TotalInvested:     totalInvested(stakes),
		CapitalPool:       capitalPool,
		ProfitPool:        profitPool,
		CommissionAmount:  commission,
		CommissionPercent: terms.CommissionPercent,
		Allocations:       allocateProportional(capitalPool, profitPool, stakes, overrides),
	}, nil
}

// profitCommissionFor resolves the platform's cut out of profit:
// an explicit amount wins over the percent.
func profitCommissionFor(terms Terms) float64 {
	if terms.CommissionAmount > 0 {
		return Round2(terms.CommissionAmount)
	}
	return Round2(terms.EstimatedProfit * terms.CommissionPercent / 100)
}
