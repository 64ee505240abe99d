package password

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// DefaultCost is the bcrypt work factor used unless overridden.
const DefaultCost = 10

// Config is the single configuration surface for this package.
type Config struct {
	Cost int
}

// DefaultConfig returns the production baseline.
func DefaultConfig() Config {
	return Config{Cost: DefaultCost}
}

// Validate checks that Cost is within bcrypt's accepted range.
func (c Config) Validate() error {
	if c.Cost < bcrypt.MinCost || c.Cost > bcrypt.MaxCost {
		return fmt.Errorf("%w: %d not in [%d..%d]", ErrInvalidCost, c.Cost, bcrypt.MinCost, bcrypt.MaxCost)
	}
	return nil
}
