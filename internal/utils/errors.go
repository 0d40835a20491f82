package utils

import (
	"errors"
	"fmt"
)

// Kind classifies an AppError so transports can pick a status code.
type Kind int

const (
	// KindUnknown is the zero value; treated as a server error.
	KindUnknown Kind = iota
	// KindInference marks a model call that failed or returned malformed output.
	KindInference
	// KindStartup marks a failure that must stop the process before it serves traffic.
	KindStartup
)

func (k Kind) String() string {
	switch k {
	case KindInference:
		return "inference"
	case KindStartup:
		return "startup"
	default:
		return "unknown"
	}
}

// AppError wraps an operation, human-facing message, and underlying error.
type AppError struct {
	Kind Kind
	Op   string
	Msg  string
	Err  error
}

func (e *AppError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Op, e.Msg)
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Msg, e.Err)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError constructs an AppError of unknown kind.
func NewAppError(op, msg string, err error) error {
	return &AppError{Op: op, Msg: msg, Err: err}
}

// NewInferenceError constructs an AppError of KindInference.
func NewInferenceError(op, msg string, err error) error {
	return &AppError{Kind: KindInference, Op: op, Msg: msg, Err: err}
}

// NewStartupError constructs an AppError of KindStartup.
func NewStartupError(op, msg string, err error) error {
	return &AppError{Kind: KindStartup, Op: op, Msg: msg, Err: err}
}

// KindOf returns the kind of the outermost AppError in err's chain.
func KindOf(err error) Kind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindUnknown
}

// IsInference reports whether err carries an inference failure.
func IsInference(err error) bool { return KindOf(err) == KindInference }

// IsStartup reports whether err carries a startup failure.
func IsStartup(err error) bool { return KindOf(err) == KindStartup }
