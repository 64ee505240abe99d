package password

import (
	"errors"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	if got := DefaultConfig().Cost; got != 10 {
		t.Fatalf("default cost=%d want 10", got)
	}
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}

func TestConfigValidate_OutOfRange(t *testing.T) {
	for _, cost := range []int{0, 3, 32, 99} {
		err := Config{Cost: cost}.Validate()
		if !errors.Is(err, ErrInvalidCost) {
			t.Fatalf("cost=%d: err=%v want ErrInvalidCost", cost, err)
		}
	}
}
