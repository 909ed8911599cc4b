package apperror

import (
	"errors"
	"fmt"
)

// Kind classifies a failure so callers can decide between aborting a turn,
// degrading to a fallback, or mapping to a transport status.
type Kind string

const (
	KindNotFound        Kind = "NOT_FOUND"
	KindUpstream        Kind = "UPSTREAM"
	KindMalformedOutput Kind = "MALFORMED_OUTPUT"
	KindConfiguration   Kind = "CONFIGURATION"
	KindValidation      Kind = "VALIDATION"
	KindInternal        Kind = "INTERNAL"
)

type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error with the same Kind, so errors.Is(err, ErrNotFound) works
// regardless of message.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Message == "" && t.Err == nil && t.Kind == e.Kind
}

// Sentinels for errors.Is comparisons.
var (
	ErrNotFound        = &Error{Kind: KindNotFound}
	ErrUpstream        = &Error{Kind: KindUpstream}
	ErrMalformedOutput = &Error{Kind: KindMalformedOutput}
	ErrConfiguration   = &Error{Kind: KindConfiguration}
	ErrValidation      = &Error{Kind: KindValidation}
)

func New(kind Kind, message string) error {
	return &Error{Kind: kind, Message: message}
}

func Wrap(kind Kind, message string, err error) error {
	return &Error{Kind: kind, Message: message, Err: err}
}

func NotFound(format string, args ...interface{}) error {
	return New(KindNotFound, fmt.Sprintf(format, args...))
}

func Validation(format string, args ...interface{}) error {
	return New(KindValidation, fmt.Sprintf(format, args...))
}

func Configuration(format string, args ...interface{}) error {
	return New(KindConfiguration, fmt.Sprintf(format, args...))
}

func Upstream(message string, err error) error {
	return Wrap(KindUpstream, message, err)
}

func Malformed(message string, err error) error {
	return Wrap(KindMalformedOutput, message, err)
}

// KindOf returns the kind of the outermost *Error in the chain, or KindInternal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// HasKind reports whether err already carries a classification.
func HasKind(err error) bool {
	var e *Error
	return errors.As(err, &e)
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsUpstream(err error) bool {
	return errors.Is(err, ErrUpstream)
}

func IsMalformedOutput(err error) bool {
	return errors.Is(err, ErrMalformedOutput)
}
