package faults

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUnknownKind   = errors.New("unknown figure kind")
	ErrMissingBin    = errors.New("missing bin element")
	ErrValidation    = errors.New("validation error")
	ErrConfiguration = errors.New("configuration error")
	ErrInFlight      = errors.New("figure already in flight")
	ErrHalted        = errors.New("runner halted")
)

// Kind is a short classification string used in structured logs.
type Kind string

const (
	KindUnknownKind   Kind = "unknown_kind"
	KindMissingBin    Kind = "missing_bin"
	KindValidation    Kind = "validation"
	KindConfiguration Kind = "configuration"
	KindInFlight      Kind = "in_flight"
	KindHalted        Kind = "halted"
	KindInternal      Kind = "internal"
)

// Error carries stage context alongside a marker and optional cause.
type Error struct {
	Marker    error
	Stage     string
	Operation string
	Message   string
	Hint      string
	Cause     error
}

func (e *Error) Error() string {
	detail := buildDetail(e.Stage, e.Operation, e.Message)
	if e.Cause != nil {
		return fmt.Sprintf("%v: %s: %v", e.Marker, detail, e.Cause)
	}
	return fmt.Sprintf("%v: %s", e.Marker, detail)
}

// Unwrap exposes both the marker and the cause to errors.Is / errors.As.
func (e *Error) Unwrap() []error {
	out := make([]error, 0, 2)
	if e.Marker != nil {
		out = append(out, e.Marker)
	}
	if e.Cause != nil {
		out = append(out, e.Cause)
	}
	return out
}

// ErrorKind reports the classification of the marker.
func (e *Error) ErrorKind() string { return string(kindOf(e.Marker)) }

// Wrap builds an error tagged with marker and the stage context. A nil marker
// is treated as an internal failure.
func Wrap(marker error, stage, operation, message string, err error) error {
	if marker == nil {
		marker = errors.New("internal error")
	}
	return &Error{
		Marker:    marker,
		Stage:     strings.TrimSpace(stage),
		Operation: strings.TrimSpace(operation),
		Message:   strings.TrimSpace(message),
		Hint:      hintFor(marker),
		Cause:     err,
	}
}

// ErrorDetails is the flattened view of an error used for logging.
type ErrorDetails struct {
	Kind      Kind
	Stage     string
	Operation string
	Message   string
	Hint      string
	Cause     error
}

// Details extracts logging fields from err. Errors not produced by Wrap are
// reported as internal with their own message.
func Details(err error) ErrorDetails {
	if err == nil {
		return ErrorDetails{}
	}
	var wrapped *Error
	if errors.As(err, &wrapped) {
		return ErrorDetails{
			Kind:      kindOf(wrapped.Marker),
			Stage:     wrapped.Stage,
			Operation: wrapped.Operation,
			Message:   wrapped.Message,
			Hint:      wrapped.Hint,
			Cause:     wrapped.Cause,
		}
	}
	return ErrorDetails{Kind: kindOf(err), Message: err.Error(), Hint: hintFor(err)}
}

func kindOf(err error) Kind {
	switch {
	case errors.Is(err, ErrUnknownKind):
		return KindUnknownKind
	case errors.Is(err, ErrMissingBin):
		return KindMissingBin
	case errors.Is(err, ErrValidation):
		return KindValidation
	case errors.Is(err, ErrConfiguration):
		return KindConfiguration
	case errors.Is(err, ErrInFlight):
		return KindInFlight
	case errors.Is(err, ErrHalted):
		return KindHalted
	default:
		return KindInternal
	}
}

func hintFor(err error) string {
	switch kindOf(err) {
	case KindUnknownKind:
		return "only square, circle and triangle figures can be sorted"
	case KindMissingBin:
		return "add a [layout.bins.<kind>] entry for this figure kind"
	case KindConfiguration:
		return "check the sortline configuration file"
	case KindHalted:
		return "restart the line; halted runs do not retry"
	default:
		return ""
	}
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "sorting failure"
	}
	return strings.Join(parts, ": ")
}
