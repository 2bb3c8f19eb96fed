package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// ParseEnv fills target from process environment variables declared
// through `env` struct tags. Variables that are unset fall back to the
// field's envDefault value.
func ParseEnv(target any) error {
	err := env.Parse(target)
	if err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}
