package exec

import (
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/jonwraymond/dataexec/code"
	"github.com/jonwraymond/dataexec/session"
)

// Default configuration values.
const (
	DefaultTimeout        = 30 * time.Second
	DefaultMaxOutputBytes = 64 * 1024
)

// Errors returned by Options validation.
var (
	ErrEngineRequired   = errors.New("exec: Engine is required")
	ErrNegativeTimeout  = errors.New("exec: DefaultTimeout must not be negative")
	ErrNegativeMaxBytes = errors.New("exec: MaxOutputBytes must not be negative")
)

// Options configures an Exec instance.
type Options struct {
	// Engine runs scripts.
	// Required.
	Engine code.Engine

	// Session holds the datasets and audit log.
	// Default: a new empty session.
	Session *session.Session

	// DataDir is the directory relative CSV paths are resolved against.
	// Default: the process working directory.
	DataDir string

	// DefaultTimeout bounds each script run.
	// Default: 30s
	DefaultTimeout time.Duration

	// MaxOutputBytes bounds each captured output stream.
	// Default: 64 KiB
	MaxOutputBytes int

	// Logger receives load, run and promote events.
	// Default: disabled
	Logger *zerolog.Logger
}

// validate checks that required fields are set.
func (o *Options) validate() error {
	if o.Engine == nil {
		return ErrEngineRequired
	}
	if o.DefaultTimeout < 0 {
		return ErrNegativeTimeout
	}
	if o.MaxOutputBytes < 0 {
		return ErrNegativeMaxBytes
	}
	return nil
}

// applyDefaults sets default values for unset optional fields.
func (o *Options) applyDefaults() {
	if o.Session == nil {
		o.Session = session.New()
	}
	if o.DefaultTimeout == 0 {
		o.DefaultTimeout = DefaultTimeout
	}
	if o.MaxOutputBytes == 0 {
		o.MaxOutputBytes = DefaultMaxOutputBytes
	}
	if o.Logger == nil {
		nop := zerolog.Nop()
		o.Logger = &nop
	}
}
