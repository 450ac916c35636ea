package l2_service

import (
	"fmt"
	"math"
	"strategysim/internal/domain"

	"github.com/maja42/goval"
)

// ObjectiveService scores a run from an expression over the metric names,
// e.g. "sharpeRatio - 2 * maxDrawdown"
type ObjectiveService interface {
	Evaluate(expression string, metrics domain.Metrics) (float64, error)
	Validate(expression string) error
}

type objectiveServiceHandler struct{}

func NewObjectiveService() ObjectiveService {
	return objectiveServiceHandler{}
}

func constructObjectiveFunctions() map[string]goval.ExpressionFunction {
	return map[string]goval.ExpressionFunction{
		"abs": func(args ...interface{}) (interface{}, error) {
			if len(args) != 1 {
				return 0, fmt.Errorf("abs needs 1 arg, got %d", len(args))
			}
			v, err := toFloat(args[0])
			if err != nil {
				return 0, err
			}
			return math.Abs(v), nil
		},
		"min": func(args ...interface{}) (interface{}, error) {
			if len(args) < 1 {
				return 0, fmt.Errorf("min needs at least 1 arg")
			}
			out := math.Inf(1)
			for _, a := range args {
				v, err := toFloat(a)
				if err != nil {
					return 0, err
				}
				out = math.Min(out, v)
			}
			return out, nil
		},
		"max": func(args ...interface{}) (interface{}, error) {
			if len(args) < 1 {
				return 0, fmt.Errorf("max needs at least 1 arg")
			}
			out := math.Inf(-1)
			for _, a := range args {
				v, err := toFloat(a)
				if err != nil {
					return 0, err
				}
				out = math.Max(out, v)
			}
			return out, nil
		},
	}
}

func (h objectiveServiceHandler) Evaluate(expression string, metrics domain.Metrics) (float64, error) {
	variables := map[string]interface{}{}
	for name, v := range metrics.ToMap() {
		variables[string(name)] = v
	}

	eval := goval.NewEvaluator()
	result, err := eval.Evaluate(expression, variables, constructObjectiveFunctions())
	if err != nil {
		return 0, fmt.Errorf("failed to evaluate objective %q: %w", expression, err)
	}

	out, err := toFloat(result)
	if err != nil {
		return 0, fmt.Errorf("objective %q: %w", expression, err)
	}
	if math.IsNaN(out) || math.IsInf(out, 0) {
		return 0, nil
	}
	return out, nil
}

// Validate runs the expression against zeroed metrics to catch syntax
// errors and unknown variables before a batch starts
func (h objectiveServiceHandler) Validate(expression string) error {
	_, err := h.Evaluate(expression, domain.Metrics{})
	return err
}

func toFloat(v interface{}) (float64, error) {
	switch t := v.(type) {
	case float64:
		return t, nil
	case int:
		return float64(t), nil
	case bool:
		if t {
			return 1, nil
		}
		return 0, nil
	}
	return 0, fmt.Errorf("expected a number, got %T", v)
}
