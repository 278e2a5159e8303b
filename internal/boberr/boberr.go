// Package boberr classifies every failure the bot can surface into one of
// four kinds, so the command layer can decide who a message is for and how
// loudly to log it.
package boberr

import (
	"errors"
	"fmt"
)

type Kind int

const (
	// KindUser is the caller's mistake: unknown preset, not connected to
	// voice, missing argument. Reported verbatim, never logged as a failure.
	KindUser Kind = iota
	// KindAdmin is a guild misconfiguration, like a missing command channel.
	KindAdmin
	// KindPlatform covers Discord or store failures.
	KindPlatform
	// KindInternal marks a violated invariant: a bug.
	KindInternal
)

func (k Kind) String() string {
	switch k {
	case KindUser:
		return "user"
	case KindAdmin:
		return "admin"
	case KindPlatform:
		return "platform"
	default:
		return "internal"
	}
}

// Emoji returns the marker replies of this kind are prefixed with.
func (k Kind) Emoji() string {
	switch k {
	case KindUser:
		return "⚠️"
	case KindAdmin:
		return "⛔️"
	case KindPlatform:
		return "\U0001f310"
	default:
		return "\U0001f41b"
	}
}

type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

// New creates a classified error with no underlying cause.
func New(kind Kind, msg string) error {
	return &Error{Kind: kind, Msg: msg}
}

// Wrap annotates err with a kind and a message. A nil err returns nil.
func Wrap(kind Kind, err error, msg string) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Msg: msg, Err: err}
}

func User(format string, args ...any) error {
	return &Error{Kind: KindUser, Msg: fmt.Sprintf(format, args...)}
}

func Admin(format string, args ...any) error {
	return &Error{Kind: KindAdmin, Msg: fmt.Sprintf(format, args...)}
}

// KindOf reports the classification of err. Unclassified errors are bugs
// by definition and come back as KindInternal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Message returns the user-facing text for err: the outermost classified
// message, or a generic notice for unclassified errors.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Msg
	}
	return "Something went wrong."
}
