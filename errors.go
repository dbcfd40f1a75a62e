package reactor

import (
	"errors"
	"fmt"
)

// Namespace prefixes every sentinel error message, mirroring the
// teacher library's convention of a single namespace constant.
const Namespace = "reactor"

var (
	ErrAlreadySettled          = errors.New(Namespace + ": promise is already settled")
	ErrNextAlreadySet          = errors.New(Namespace + ": executor already has a next link")
	ErrAlreadySubscribed       = errors.New(Namespace + ": publisher already has a subscription")
	ErrRequireScheduledExecutor = errors.New(Namespace + ": operation requires a ScheduledExecutor")
)

// Kind classifies a RuntimeError without introducing a distinct Go type
// per taxonomy entry (ContractViolation, InvalidCollaborator, Timeout).
type Kind int

const (
	KindContractViolation Kind = iota
	KindInvalidCollaborator
	KindTimeout
)

func (k Kind) String() string {
	switch k {
	case KindContractViolation:
		return "contract violation"
	case KindInvalidCollaborator:
		return "invalid collaborator"
	case KindTimeout:
		return "timeout"
	default:
		return "unknown"
	}
}

// RuntimeError wraps a cause with a Kind and an optional hint. It is the
// concrete error type behind every ContractViolation, InvalidCollaborator,
// and Timeout described by the error taxonomy; NotFound stays a plain 0
// return and never reaches this type.
type RuntimeError struct {
	Kind  Kind
	cause error
	hint  string
}

func newRuntimeError(kind Kind, cause error, hint string) *RuntimeError {
	return &RuntimeError{Kind: kind, cause: cause, hint: hint}
}

func (e *RuntimeError) Error() string { return e.cause.Error() }

func (e *RuntimeError) Unwrap() error { return e.cause }

// Hint returns the human-readable hint attached to the error, if any.
func (e *RuntimeError) Hint() (string, bool) {
	if e.hint == "" {
		return "", false
	}
	return e.hint, true
}

// Format renders the error; %+v appends the hint, mirroring the
// teacher's taskTaggedError.Format.
func (e *RuntimeError) Format(s fmt.State, verb rune) {
	switch verb {
	case 'v':
		if s.Flag('+') {
			if e.hint != "" {
				_, _ = fmt.Fprintf(s, "%s (hint: %s)", e.Error(), e.hint)
				return
			}
			_, _ = fmt.Fprint(s, e.Error())
			return
		}
		fallthrough
	case 's':
		_, _ = fmt.Fprint(s, e.Error())
	case 'q':
		_, _ = fmt.Fprintf(s, "%q", e.Error())
	}
}

// ExtractHint returns the hint carried by err, if err wraps a RuntimeError.
func ExtractHint(err error) (string, bool) {
	var re *RuntimeError
	if errors.As(err, &re) {
		return re.Hint()
	}
	return "", false
}

func errAlreadySettled() error {
	return newRuntimeError(KindContractViolation, ErrAlreadySettled, "check IsInProgress before resolving or rejecting")
}

func errNextAlreadySet() error {
	return newRuntimeError(KindContractViolation, ErrNextAlreadySet, "call SetNext only once per executor")
}

func errAlreadySubscribed() error {
	return newRuntimeError(KindContractViolation, ErrAlreadySubscribed, "this Publisher supports a single subscription")
}

func errRequireScheduledExecutor() error {
	return newRuntimeError(
		KindInvalidCollaborator, ErrRequireScheduledExecutor, "pass a *ScheduledExecutor to Delay/Timeout",
	)
}

// NewTimeoutError builds the rejection reason delivered by Promise.Timeout
// when its timer elapses before the underlying promise settles.
func NewTimeoutError(delay int64) error {
	return newRuntimeError(
		KindTimeout,
		fmt.Errorf("%s: timeout after %d", Namespace, delay),
		"increase the delay or resolve the underlying promise sooner",
	)
}

func toError(v any) error {
	if v == nil {
		return nil
	}
	if err, ok := v.(error); ok {
		return err
	}
	return fmt.Errorf("%v", v)
}
