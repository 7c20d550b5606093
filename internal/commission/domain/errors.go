package domain

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidAmount        = errors.New("invalid_amount")
	ErrInvalidConfiguration = errors.New("invalid_configuration")
)

// ConfigurationError describes a tier table that failed its load-time checks.
type ConfigurationError struct {
	Tier   string
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	if e.Tier == "" {
		return fmt.Sprintf("commission configuration: %s", e.Reason)
	}
	if e.Field == "" {
		return fmt.Sprintf("commission configuration: tier %q: %s", e.Tier, e.Reason)
	}
	return fmt.Sprintf("commission configuration: tier %q: %s %s", e.Tier, e.Field, e.Reason)
}

func (e *ConfigurationError) Is(target error) bool {
	return target == ErrInvalidConfiguration
}
