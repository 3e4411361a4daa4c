package apperrors

import (
	"context"
	"errors"
	"strings"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindPermission
	KindIndexMissing
	KindTransient
	KindNotFound
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindPermission:
		return "permission"
	case KindIndexMissing:
		return "index_missing"
	case KindTransient:
		return "transient"
	case KindNotFound:
		return "not_found"
	default:
		return "internal"
	}
}

// Error is the taxonomy every repository maps backend failures into before
// they reach handler code. Handlers never inspect vendor-specific codes.
type Error struct {
	Kind Kind
	Op   string
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Op)
	b.WriteString(": ")
	b.WriteString(e.Kind.String())
	if e.Msg != "" {
		b.WriteString(": ")
		b.WriteString(e.Msg)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

func New(kind Kind, op, msg string) *Error {
	return &Error{Kind: kind, Op: op, Msg: msg}
}

func Validation(op, msg string) *Error {
	return &Error{Kind: KindValidation, Op: op, Msg: msg}
}

func Permission(op, msg string) *Error {
	return &Error{Kind: KindPermission, Op: op, Msg: msg}
}

func NotFound(op, msg string) *Error {
	return &Error{Kind: KindNotFound, Op: op, Msg: msg}
}

func Wrap(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// FromFirestore maps a Firestore SDK failure into the taxonomy. A
// FailedPrecondition mentioning an index means a required compound index has
// not been built yet; operators need to tell that apart from a real
// authorization bug.
func FromFirestore(op string, err error) error {
	if err == nil {
		return nil
	}
	var appErr *Error
	if errors.As(err, &appErr) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return Wrap(KindTransient, op, err)
	}
	switch status.Code(err) {
	case codes.PermissionDenied, codes.Unauthenticated:
		return Wrap(KindPermission, op, err)
	case codes.NotFound:
		return Wrap(KindNotFound, op, err)
	case codes.FailedPrecondition:
		if strings.Contains(strings.ToLower(err.Error()), "index") {
			return Wrap(KindIndexMissing, op, err)
		}
		return Wrap(KindInternal, op, err)
	case codes.Unavailable, codes.DeadlineExceeded, codes.ResourceExhausted, codes.Aborted:
		return Wrap(KindTransient, op, err)
	default:
		return Wrap(KindInternal, op, err)
	}
}

func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

func IsKind(err error, kind Kind) bool {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind == kind
	}
	return false
}

// Retryable reports whether the caller may retry with backoff. Permission
// rejections and missing indexes never qualify: retrying will not change the
// outcome and risks masking a real bug.
func Retryable(err error) bool {
	return IsKind(err, KindTransient)
}
