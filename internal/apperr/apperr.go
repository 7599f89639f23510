// Package apperr defines the error categories reported to the user.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies an error for user reporting.
type Kind int

const (
	KindValidation Kind = iota // Precondition not met, nothing was done
	KindParse                  // Input container could not be decoded
	KindSchema                 // CSV lacks the expected layout
	KindIO                     // Filesystem read or write failed
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindParse:
		return "parse"
	case KindSchema:
		return "schema"
	case KindIO:
		return "io"
	default:
		return "unknown"
	}
}

// Error is a categorized error. Op and Path are optional context.
type Error struct {
	Kind Kind
	Op   string
	Path string
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	msg := e.Msg
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	} else if e.Err != nil {
		msg = msg + ": " + e.Err.Error()
	}
	switch {
	case e.Op != "" && e.Path != "":
		return fmt.Sprintf("%s %s: %s", e.Op, e.Path, msg)
	case e.Op != "":
		return fmt.Sprintf("%s: %s", e.Op, msg)
	case e.Path != "":
		return fmt.Sprintf("%s: %s", e.Path, msg)
	default:
		return msg
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Sentinel validation errors checked before any work begins.
var (
	ErrNoFilesSelected = Validation("no files selected")
	ErrNoDestination   = Validation("no destination")
	ErrBusy            = Validation("another action is still running")
)

// Validation returns a validation error with the given message.
func Validation(msg string) error {
	return &Error{Kind: KindValidation, Msg: msg}
}

// Parse wraps a decoding failure of the file at path.
func Parse(op, path string, err error) error {
	return &Error{Kind: KindParse, Op: op, Path: path, Err: err}
}

// Schema reports a CSV that does not have the expected columns or values.
func Schema(path, msg string) error {
	return &Error{Kind: KindSchema, Path: path, Msg: msg}
}

// IO wraps a filesystem failure.
func IO(op, path string, err error) error {
	return &Error{Kind: KindIO, Op: op, Path: path, Err: err}
}

// Is reports whether err, or any error it wraps, has the given kind.
func Is(err error, kind Kind) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Kind == kind
}

// KindOf returns the kind of err and whether it was categorized at all.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if !errors.As(err, &e) {
		return 0, false
	}
	return e.Kind, true
}
