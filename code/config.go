package code

import (
	"fmt"
	"strings"
	"time"
)

// DefaultLanguage is the script language used when none is configured.
const DefaultLanguage = "lua"

// Config holds the configuration for a code executor.
type Config struct {
	// Engine is the pluggable script interpreter.
	// Required.
	Engine Engine

	// Store provides the datasets scripts see and receives promotions.
	// Required.
	Store Store

	// DefaultTimeout is the default execution timeout when not specified
	// in RunParams. If zero, no default timeout is applied.
	DefaultTimeout time.Duration

	// DefaultLanguage is passed to the engine in ExecuteParams.
	// Defaults to "lua" if empty.
	DefaultLanguage string

	// MaxOutputBytes bounds each captured output stream. Zero means
	// unbounded.
	MaxOutputBytes int

	// Logger is an optional logger for observability.
	Logger Logger
}

// Validate checks that all required fields are set and limits are sane.
// Returns ErrConfiguration on failure.
func (c *Config) Validate() error {
	var missing []string

	if c.Engine == nil {
		missing = append(missing, "Engine")
	}
	if c.Store == nil {
		missing = append(missing, "Store")
	}

	if len(missing) > 0 {
		return fmt.Errorf("%w: missing required fields: %s",
			ErrConfiguration, strings.Join(missing, ", "))
	}
	if c.DefaultTimeout < 0 {
		return fmt.Errorf("%w: negative DefaultTimeout %v", ErrConfiguration, c.DefaultTimeout)
	}
	if c.MaxOutputBytes < 0 {
		return fmt.Errorf("%w: negative MaxOutputBytes %d", ErrConfiguration, c.MaxOutputBytes)
	}
	return nil
}

// applyDefaults sets default values for optional fields.
func (c *Config) applyDefaults() {
	if c.DefaultLanguage == "" {
		c.DefaultLanguage = DefaultLanguage
	}
}
