package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound is returned when an id does not name a live record.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateKey is returned by stores when an id already exists.
	ErrDuplicateKey = errors.New("duplicate key")

	ErrInvalidBlock        = errors.New("invalid timed block")
	ErrInvalidDomain       = errors.New("invalid domain")
	ErrUnsupportedListKind = errors.New("unsupported list kind")

	// ErrInProgress is returned when another caller is already acting on the record.
	ErrInProgress = errors.New("operation in progress")

	// ErrCommandFailed matches any *CommandError.
	ErrCommandFailed = errors.New("external command failed")

	// ErrPersistence matches any *PersistenceError.
	ErrPersistence = errors.New("persistence failure")
)

// CommandError reports a non-zero exit from the filter binary. The raw
// output is kept for diagnostics.
type CommandError struct {
	Args     []string
	ExitCode int
	Stdout   string
	Stderr   string
}

func (e *CommandError) Error() string {
	detail := e.Stderr
	if detail == "" {
		detail = e.Stdout
	}
	return fmt.Sprintf("command %q exited with %d: %s", strings.Join(e.Args, " "), e.ExitCode, detail)
}

func (e *CommandError) Is(target error) bool { return target == ErrCommandFailed }

// PersistenceError wraps a storage failure with the operation that hit it.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

func (e *PersistenceError) Is(target error) bool { return target == ErrPersistence }

// Persistence wraps err as a *PersistenceError, passing nil and
// ErrNotFound/ErrDuplicateKey through untouched.
func Persistence(op string, err error) error {
	if err == nil || errors.Is(err, ErrNotFound) || errors.Is(err, ErrDuplicateKey) {
		return err
	}
	return &PersistenceError{Op: op, Err: err}
}
