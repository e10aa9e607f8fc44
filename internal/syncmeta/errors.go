package syncmeta

import (
	"errors"
	"fmt"
)

// Error categories. Callers branch with errors.Is(err, ErrWrite) and so on;
// the underlying cause stays reachable through errors.Unwrap.
var (
	ErrSchema = errors.New("schema error")
	ErrWrite  = errors.New("write error")
	ErrRead   = errors.New("read error")
	ErrScan   = errors.New("scan error")
)

// Error is a categorized failure of a store or scanner operation.
type Error struct {
	Kind error  // One of ErrSchema, ErrWrite, ErrRead, ErrScan
	Op   string // Operation that failed, e.g. "insert"
	Err  error  // Underlying cause
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %v", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %v: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is this error's category.
func (e *Error) Is(target error) bool {
	return target == e.Kind
}

// SchemaError wraps err as a schema failure of op.
func SchemaError(op string, err error) error {
	return &Error{Kind: ErrSchema, Op: op, Err: err}
}

// WriteError wraps err as a write failure of op.
func WriteError(op string, err error) error {
	return &Error{Kind: ErrWrite, Op: op, Err: err}
}

// ReadError wraps err as a read failure of op.
func ReadError(op string, err error) error {
	return &Error{Kind: ErrRead, Op: op, Err: err}
}

// ScanError wraps err as a scan failure of op.
func ScanError(op string, err error) error {
	return &Error{Kind: ErrScan, Op: op, Err: err}
}
