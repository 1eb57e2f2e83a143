// Package verrors defines the typed error taxonomy shared by the rule
// evaluator and the verification orchestrator.
package verrors

import "fmt"

// Kind is one of the fatal error categories a verification run can end in.
type Kind string

const (
	Signature        Kind = "signature"
	Authorization    Kind = "authorization"
	Expired          Kind = "expired"
	Threshold        Kind = "threshold"
	RuleFormat       Kind = "rule_format"
	RuleVerification Kind = "rule_verification"
	BadReturn        Kind = "bad_return"
	Recursion        Kind = "recursion"
	IO               Kind = "io"
)

// Error is a fatal verification failure. Subject names the rule, step or
// inspection that triggered it so the failure can be reported precisely.
type Error struct {
	Kind    Kind
	Subject string
	Msg     string
	Cause   error
}

func (e *Error) Error() string {
	if e.Subject == "" {
		return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
	}
	return fmt.Sprintf("%s: %s: %s", e.Kind, e.Subject, e.Msg)
}

func (e *Error) Unwrap() error { return e.Cause }

// New builds an Error with no wrapped cause.
func New(kind Kind, subject, msg string) *Error {
	return &Error{Kind: kind, Subject: subject, Msg: msg}
}

// Newf builds an Error with a formatted message.
func Newf(kind Kind, subject, format string, args ...any) *Error {
	return &Error{Kind: kind, Subject: subject, Msg: fmt.Sprintf(format, args...)}
}

// Wrap builds an Error around a lower-level cause.
func Wrap(kind Kind, subject string, cause error) *Error {
	msg := ""
	if cause != nil {
		msg = cause.Error()
	}
	return &Error{Kind: kind, Subject: subject, Msg: msg, Cause: cause}
}

// Is reports whether err is a verification Error of the given kind.
func Is(err error, kind Kind) bool {
	var e *Error
	if as(err, &e) {
		return e.Kind == kind
	}
	return false
}

func as(err error, target **Error) bool {
	for err != nil {
		if e, ok := err.(*Error); ok {
			*target = e
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}
