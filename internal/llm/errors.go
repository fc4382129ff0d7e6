package llm

import (
	"errors"
)

// ErrorKind tags where along the audit pipeline a failure happened.
type ErrorKind string

const (
	KindConfig            ErrorKind = "CONFIG_ERROR"
	KindTransport         ErrorKind = "TRANSPORT_ERROR"
	KindAuth              ErrorKind = "AUTH_ERROR"
	KindQuota             ErrorKind = "QUOTA_EXCEEDED"
	KindMalformedResponse ErrorKind = "MALFORMED_RESPONSE"
	KindValidation        ErrorKind = "VALIDATION_ERROR"
	KindInvalidInput      ErrorKind = "INVALID_INPUT"
)

// Error is a typed audit failure. Msg keeps the provider text verbatim so
// callers can display it for diagnostics.
type Error struct {
	Kind ErrorKind
	Msg  string
	Err  error
}

// NewError builds an *Error.
func NewError(kind ErrorKind, msg string, err error) *Error {
	return &Error{Kind: kind, Msg: msg, Err: err}
}

func (e *Error) Error() string {
	switch {
	case e.Msg != "" && e.Err != nil:
		return e.Msg + ": " + e.Err.Error()
	case e.Msg != "":
		return e.Msg
	case e.Err != nil:
		return string(e.Kind) + ": " + e.Err.Error()
	default:
		return string(e.Kind)
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) (ErrorKind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return "", false
}
