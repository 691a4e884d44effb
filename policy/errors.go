package policy

import (
	"errors"
	"fmt"
)

// ErrInvalidPolicyConfig is returned when no grouping decision is possible under a configuration
var ErrInvalidPolicyConfig = errors.New("invalid policy config")

// ConfigError describes which setting made a configuration unusable
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid policy config: %s: %s", e.Field, e.Message)
}

func (e *ConfigError) Is(target error) bool {
	return target == ErrInvalidPolicyConfig
}
