// Package macerr implements the error taxonomy shared by every detection
// package. Each Kind names one of the fatal conditions a model, cluster, or
// package load can run into; callers test for a Kind with Is, which walks
// the Unwrap chain.
package macerr

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind identifies the category of a detection error.
type Kind string

// The error kinds named by the detection pipeline's error taxonomy.
const (
	ModelInconsistency      Kind = "model_inconsistency"
	MissingProfile          Kind = "missing_profile"
	MixedReplicon           Kind = "mixed_replicon"
	ClusterModelMismatch    Kind = "cluster_model_mismatch"
	InvalidLoner            Kind = "invalid_loner"
	InvalidMultiSystem      Kind = "invalid_multi_system"
	IncompatibleCounterpart Kind = "incompatible_counterpart"
	ExternalSearchFailure   Kind = "external_search_failure"
	PackageError            Kind = "package_error"
	DataLimit               Kind = "data_limit"
)

// Error is a Kind-tagged error carrying the operation that failed and,
// where relevant, the fully-qualified model name it failed against.
type Error struct {
	Kind  Kind
	Op    string
	Model string
	Err   error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Op, e.Kind)
	if e.Model != "" {
		msg = fmt.Sprintf("%s (model %s)", msg, e.Model)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// New builds a Kind-tagged error with a stack trace attached, the way the
// rest of the codebase attaches one via pkg/errors at the point of failure.
func New(kind Kind, op, model string, msg string) error {
	return &Error{Kind: kind, Op: op, Model: model, Err: errors.New(msg)}
}

// Wrap attaches kind/op/model context to an underlying error.
func Wrap(kind Kind, op, model string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Op: op, Model: model, Err: errors.WithStack(err)}
}

// Is reports whether err (or anything it wraps) carries the given Kind.
func Is(err error, kind Kind) bool {
	var e *Error
	for err != nil {
		if as, ok := err.(*Error); ok {
			e = as
			if e.Kind == kind {
				return true
			}
			err = e.Err
			continue
		}
		type unwrapper interface{ Unwrap() error }
		u, ok := err.(unwrapper)
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}
