package rtconfig

import (
	"sync"

	"github.com/go-playground/validator/v10"
)

// validatorInstance follows the teacher's internal/config/validator.go
// shape: a package-level *validator.Validate built once via sync.Once
// and reused across every call.

var (
	validatorOnce sync.Once
	validateInst  *validator.Validate
)

func validatorInstance() *validator.Validate {
	validatorOnce.Do(func() {
		validateInst = validator.New()
	})
	return validateInst
}

// Validate checks cfg against its struct tags, returning the
// validator's error unwrapped (rtconfig has no cross-field invariants
// beyond the tags themselves).
func Validate(cfg *Config) error {
	return validatorInstance().Struct(cfg)
}
