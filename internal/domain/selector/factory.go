package selector

type Policy string

const (
	PolicyAuto       Policy = "auto"
	PolicyPair       Policy = "pair"
	PolicyClicks     Policy = "clicks"
	PolicyExpression Policy = "expression"
)

type Factory struct {
	strategies map[Policy]Strategy
}

// NewFactory registers the built-in strategies and, when formula is not
// empty, an expression strategy.
func NewFactory(formula string) (*Factory, error) {
	f := &Factory{
		strategies: map[Policy]Strategy{
			PolicyAuto:   &AutoStrategy{},
			PolicyPair:   &PairStrategy{},
			PolicyClicks: &ClickCountStrategy{},
		},
	}
	if formula != "" {
		expr, err := NewExpressionStrategy(formula)
		if err != nil {
			return nil, err
		}
		f.strategies[PolicyExpression] = expr
	}
	return f, nil
}

func (f *Factory) GetStrategy(policy Policy) Strategy {
	if s, ok := f.strategies[policy]; ok {
		return s
	}
	return f.strategies[PolicyAuto]
}
