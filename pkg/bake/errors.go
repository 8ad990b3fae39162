package bake

import (
	"fmt"

	"github.com/pkg/errors"
)

// Error classes. Match with errors.Is.
var (
	ErrImport            = errors.New("import failure")
	ErrInvalidArgument   = errors.New("invalid argument")
	ErrMissingTexture    = errors.New("missing texture file")
	ErrIO                = errors.New("i/o failure")
	ErrUnresolvedChannel = errors.New("unresolved texture channel")
)

// Error is a classified bake failure.
type Error struct {
	Kind error  // One of the Err* classes above
	Op   string // What was being done
	Path string // File involved, if any
	Err  error  // Underlying cause
}

func (e *Error) Error() string {
	msg := e.Kind.Error()
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Path != "" {
		msg = fmt.Sprintf("%s %s", msg, e.Path)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error { return e.Err }

// Is matches the error's class.
func (e *Error) Is(target error) bool { return target == e.Kind }

func ioError(op, path string, err error) error {
	return &Error{Kind: ErrIO, Op: op, Path: path, Err: err}
}

// ImportError classifies an importer failure.
func ImportError(path string, err error) error {
	return &Error{Kind: ErrImport, Op: "import", Path: path, Err: err}
}

// ArgumentError classifies a bad caller input.
func ArgumentError(msg string) error {
	return &Error{Kind: ErrInvalidArgument, Err: errors.New(msg)}
}
