package allocate

// =============================================================================
// PARTIAL ROUND
// Interim round: after the reserve and commission carve-outs, everything is
// capital recovery. No profit is recognized regardless of the round's sign;
// profit recognition is deferred to the FINAL round.
// =============================================================================

// PartialStrategy implements the Strategy interface for interim rounds
type PartialStrategy struct{}

// Scenario returns the scenario identifier
func (s *PartialStrategy) Scenario() Scenario {
	return ScenarioPartial
}

// Validate checks the terms for a partial round
func (s *PartialStrategy) Validate(terms Terms, stakes []Stake) error {
	if err := validateStakes(terms, stakes); err != nil {
		return err
	}
	if terms.CommissionPercent < 0 || terms.CommissionPercent > 100 ||
		terms.ReservePercent < 0 || terms.ReservePercent > 100 {
		return ErrPercentOutOfRange
	}
	if terms.CommissionAmount < 0 || terms.ReserveAmount < 0 {
		return ErrNegativeReturnCapital
	}
	if commissionFor(terms)+reserveFor(terms) > terms.TotalAmount {
		return ErrDeductionsExceedTotal
	}
	return nil
}

// Plan computes a partial round: net = total − reserve − commission, all of
// it returned as capital, zero profit.
func (s *PartialStrategy) Plan(terms Terms, stakes []Stake, overrides map[int64]Override) (*Plan, error) {
	if err := s.Validate(terms, stakes); err != nil {
		return nil, err
	}

	commission := commissionFor(terms)
	reserve := reserveFor(terms)
	capitalPool := Round2(terms.TotalAmount - reserve - commission)

	return &Plan{
		Scenario:          ScenarioPartial,
		TotalAmount:       terms.TotalAmount,
		TotalInvested:     totalInvested(stakes),
		CapitalPool:       capitalPool,
		ProfitPool:        0,
		CommissionAmount:  commission,
		ReserveAmount:     reserve,
		CommissionPercent: terms.CommissionPercent,
		ReservePercent:    terms.ReservePercent,
		Allocations:       allocateProportional(capitalPool, 0, stakes, overrides),
	}, nil
}

// commissionFor resolves the commission carve-out for a partial round:
// an explicit amount wins, otherwise the percent applies to the gross total.
func commissionFor(terms Terms) float64 {
	if terms.CommissionAmount > 0 {
		return Round2(terms.CommissionAmount)
	}
	return Round2(terms.TotalAmount * terms.CommissionPercent / 100)
}

// reserveFor resolves the reserve carve-out the same way
func reserveFor(terms Terms) float64 {
	if terms.ReserveAmount > 0 {
		return Round2(terms.ReserveAmount)
	}
	return Round2(terms.TotalAmount * terms.ReservePercent / 100)
}
