package model

import (
	"errors"
	"fmt"
)

// Kind classifies run errors
type Kind int

const (
	// KindSetup covers transport, serializer or worker launch failures before the run starts
	KindSetup Kind = iota + 1
	// KindTransport covers a read or write failing mid-run; handled by the worker itself
	KindTransport
	// KindConfiguration covers invalid run parameters, found at startup
	KindConfiguration
	// KindOutput covers a result sink that could not be written
	KindOutput
	// KindCancelled covers a run interrupted before production finished
	KindCancelled
)

// String returns the string representation of the kind
func (k Kind) String() string {
	switch k {
	case KindSetup:
		return "setup"
	case KindTransport:
		return "transport"
	case KindConfiguration:
		return "configuration"
	case KindOutput:
		return "output"
	case KindCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *Kind) UnmarshalText(text []byte) error {
	for c := KindSetup; c <= KindCancelled; c++ {
		if c.String() == string(text) {
			*k = c
			return nil
		}
	}
	return fmt.Errorf("unknown error kind %q", text)
}

// Error is a classified run error
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

// NewError wraps err with a kind and the failing operation
func NewError(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s error in %s: %v", e.Kind, e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsKind reports whether any error in err's chain is a run error of the given kind
func IsKind(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

// Process exit codes
const (
	ExitOK            = 0
	ExitSetup         = 1
	ExitConfiguration = 2
	ExitOutput        = 3
	ExitCancelled     = 130
)

// ExitCode maps a run error to the process exit status. Unclassified errors
// count as setup failures.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case IsKind(err, KindConfiguration):
		return ExitConfiguration
	case IsKind(err, KindOutput):
		return ExitOutput
	case IsKind(err, KindCancelled):
		return ExitCancelled
	default:
		return ExitSetup
	}
}
