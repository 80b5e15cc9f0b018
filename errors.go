package cobalt

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorKind identifies one of the flat resolution failure categories exposed
// to callers. The string values are stable identifiers, not display text.
type ErrorKind string

const (
	ErrKindCouldntFetch            ErrorKind = "ErrorCouldntFetch"
	ErrKindEmptyDownload           ErrorKind = "ErrorEmptyDownload"
	ErrKindUnsupported             ErrorKind = "ErrorUnsupported"
	ErrKindCantConnectToServiceAPI ErrorKind = "ErrorCantConnectToServiceAPI"
	ErrKindYTUnavailable           ErrorKind = "ErrorYTUnavailable"
	ErrKindLiveVideo               ErrorKind = "ErrorLiveVideo"
	ErrKindYTTryOtherCodec         ErrorKind = "ErrorYTTryOtherCodec"
	ErrKindLengthLimit             ErrorKind = "ErrorLengthLimit"
)

// A ResolutionError is the only error type a resolver surfaces to its caller.
// Critical marks a failure that reflects the identifier itself being invalid
// upstream; the caller should not retry with an alternate strategy.
type ResolutionError struct {
	Kind     ErrorKind
	Critical bool
	Params   []any
}

func (e *ResolutionError) Error() string {
	if len(e.Params) == 0 {
		return string(e.Kind)
	}
	params := make([]string, len(e.Params))
	for i, p := range e.Params {
		params[i] = fmt.Sprint(p)
	}
	return fmt.Sprintf("%s(%s)", e.Kind, strings.Join(params, ", "))
}

// Is makes errors.Is(err, &ResolutionError{Kind: ...}) match on Kind alone.
func (e *ResolutionError) Is(target error) bool {
	var other *ResolutionError
	if !errors.As(target, &other) {
		return false
	}
	return e.Kind == other.Kind
}

func NewError(kind ErrorKind) *ResolutionError {
	return &ResolutionError{Kind: kind}
}

func NewCriticalError(kind ErrorKind) *ResolutionError {
	return &ResolutionError{Kind: kind, Critical: true}
}

func NewErrorWithParams(kind ErrorKind, params ...any) *ResolutionError {
	return &ResolutionError{Kind: kind, Params: params}
}

// AsResolutionError unwraps err into a *ResolutionError if there is one.
func AsResolutionError(err error) (*ResolutionError, bool) {
	var re *ResolutionError
	if errors.As(err, &re) {
		return re, true
	}
	return nil, false
}
