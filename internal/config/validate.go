package config

import (
	"fmt"
	"sort"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks field constraints and the cross-field rules tags cannot express.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if c.WeightContact+c.WeightNegotiation+c.WeightPayment <= 0 {
		return fmt.Errorf("%w: blend weights must sum to a positive value", ErrInvalidConfig)
	}
	if !sort.Float64sAreSorted(c.BalanceBands) {
		return fmt.Errorf("%w: balance_bands must be ascending", ErrInvalidConfig)
	}
	for i := 1; i < len(c.BalanceBands); i++ {
		if c.BalanceBands[i] == c.BalanceBands[i-1] {
			return fmt.Errorf("%w: balance_bands contains duplicate threshold %v", ErrInvalidConfig, c.BalanceBands[i])
		}
	}
	return nil
}
