package resizer

import (
	"errors"
	"fmt"
)

// Kind classifies resize failures.
type Kind int

const (
	KindUnexpected Kind = iota
	KindNotFound
	KindPermission
	KindInvalidImage
	KindMissingDependency
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "file-not-found"
	case KindPermission:
		return "permission-denied"
	case KindInvalidImage:
		return "invalid-image-format"
	case KindMissingDependency:
		return "missing-dependency"
	default:
		return "unexpected-failure"
	}
}

// Error is returned by Resize and Probe. Path is the file the failure relates to.
type Error struct {
	Kind Kind
	Path string
	Err  error
}

func (e *Error) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", e.Kind, e.Path, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf reports the Kind of err, or KindUnexpected if err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnexpected
}

func newError(kind Kind, path string, err error) *Error {
	return &Error{Kind: kind, Path: path, Err: err}
}
