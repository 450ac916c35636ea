package domain

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidParameter = errors.New("invalid parameter")
	ErrMalformedRange   = errors.New("malformed parameter range")
	ErrInvalidObjective = errors.New("invalid objective")
)

// InvalidParameterError fails one simulation, never a whole batch
type InvalidParameterError struct {
	Category  Category
	Parameter string
	Value     float64
	Reason    string
}

func NewInvalidParameterError(category Category, param string, value float64, reason string) InvalidParameterError {
	return InvalidParameterError{
		Category:  category,
		Parameter: param,
		Value:     value,
		Reason:    reason,
	}
}

func (e InvalidParameterError) Error() string {
	if e.Parameter == "" {
		return fmt.Sprintf("invalid parameter: %s: %s", e.Category, e.Reason)
	}
	return fmt.Sprintf("invalid parameter: %s.%s=%g: %s", e.Category, e.Parameter, e.Value, e.Reason)
}

func (e InvalidParameterError) Is(target error) bool {
	return target == ErrInvalidParameter
}
