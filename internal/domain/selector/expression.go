package selector

import (
	"errors"
	"fmt"

	"github.com/Knetic/govaluate"
)

var ErrInvalidExpression = errors.New("selector: invalid expression")

// ExpressionStrategy evaluates a user formula over clicks, long and count,
// e.g. "long ? count - 1 : clicks - 1".
type ExpressionStrategy struct {
	expr *govaluate.EvaluableExpression
}

func NewExpressionStrategy(formula string) (*ExpressionStrategy, error) {
	expr, err := govaluate.NewEvaluableExpression(formula)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrInvalidExpression, formula, err)
	}
	return &ExpressionStrategy{expr: expr}, nil
}

func (s *ExpressionStrategy) Select(p Press, count int) (int, bool) {
	if count <= 0 {
		return 0, false
	}
	parameters := map[string]interface{}{
		"clicks": float64(p.Clicks),
		"long":   p.Long,
		"count":  float64(count),
	}
	result, err := s.expr.Evaluate(parameters)
	if err != nil {
		return 0, false
	}

	val, ok := result.(float64)
	if !ok {
		return 0, false
	}
	idx := int(val)
	if float64(idx) != val || idx < 0 || idx >= count {
		return 0, false
	}
	return idx, true
}

func (s *ExpressionStrategy) Name() string { return string(PolicyExpression) }
