package policy

import (
	"fmt"

	"github.com/five82/haarview/internal/notify"
)

// Operation names a user-facing action.
type Operation string

const (
	OpUpload     Operation = "upload"
	OpVisualize  Operation = "visualize"
	OpDownload   Operation = "download"
	OpDecompress Operation = "decompress"
	OpSave       Operation = "save"
)

// Failure is the normalized reason a request did not succeed.
type Failure struct {
	Kind   notify.Kind
	Op     Operation
	Reason string
	Err    error
}

func (f *Failure) Error() string {
	if f.Err != nil {
		return fmt.Sprintf("%s %s: %s: %v", f.Op, f.Kind, f.Reason, f.Err)
	}
	return fmt.Sprintf("%s %s: %s", f.Op, f.Kind, f.Reason)
}

func (f *Failure) Unwrap() error { return f.Err }

// Outcome is the tagged result of a remote call: either Value is usable or
// Failure explains why not.
type Outcome[T any] struct {
	Value   T
	Failure *Failure
}

// Success wraps a usable payload.
func Success[T any](v T) Outcome[T] {
	return Outcome[T]{Value: v}
}

// Fail wraps a failure.
func Fail[T any](f *Failure) Outcome[T] {
	return Outcome[T]{Failure: f}
}

// OK reports whether the outcome carries a payload.
func (o Outcome[T]) OK() bool {
	return o.Failure == nil
}

// Reason returns the failure reason, or "" on success.
func (o Outcome[T]) Reason() string {
	if o.Failure == nil {
		return ""
	}
	return o.Failure.Reason
}
