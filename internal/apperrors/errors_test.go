package apperrors

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestFromFirestoreMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"permission_denied", status.Error(codes.PermissionDenied, "Missing or insufficient permissions"), KindPermission},
		{"unauthenticated", status.Error(codes.Unauthenticated, "expired token"), KindPermission},
		{"not_found", status.Error(codes.NotFound, "no such document"), KindNotFound},
		{"missing_index", status.Error(codes.FailedPrecondition, "The query requires an index"), KindIndexMissing},
		{"precondition_other", status.Error(codes.FailedPrecondition, "document changed"), KindInternal},
		{"unavailable", status.Error(codes.Unavailable, "transport closing"), KindTransient},
		{"deadline", status.Error(codes.DeadlineExceeded, "context deadline exceeded"), KindTransient},
		{"exhausted", status.Error(codes.ResourceExhausted, "quota"), KindTransient},
		{"aborted", status.Error(codes.Aborted, "too much contention"), KindTransient},
		{"unknown", errors.New("boom"), KindInternal},
		{"ctx_deadline", context.DeadlineExceeded, KindTransient},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FromFirestore("op", tt.err)
			require.Error(t, got)
			assert.Equal(t, tt.want, KindOf(got))
		})
	}
}

func TestFromFirestoreNil(t *testing.T) {
	assert.NoError(t, FromFirestore("op", nil))
}

func TestFromFirestorePassesThroughTaxonomy(t *testing.T) {
	orig := Validation("review.create", "rating out of range")
	got := FromFirestore("review.create", orig)

	var appErr *Error
	require.ErrorAs(t, got, &appErr)
	assert.Equal(t, KindValidation, appErr.Kind)
	assert.Same(t, orig, appErr)
}

func TestRetryablePolicy(t *testing.T) {
	assert.True(t, Retryable(Wrap(KindTransient, "op", errors.New("timeout"))))

	assert.False(t, Retryable(Permission("op", "denied")))
	assert.False(t, Retryable(Wrap(KindIndexMissing, "op", errors.New("index required"))))
	assert.False(t, Retryable(Validation("op", "bad input")))
	assert.False(t, Retryable(NotFound("op", "gone")))
	assert.False(t, Retryable(errors.New("plain")))
	assert.False(t, Retryable(nil))
}

func TestErrorStringAndUnwrap(t *testing.T) {
	cause := errors.New("socket closed")
	err := Wrap(KindTransient, "chat.send", cause)

	assert.Contains(t, err.Error(), "chat.send")
	assert.Contains(t, err.Error(), "transient")
	assert.ErrorIs(t, err, cause)
}

func TestIsKind(t *testing.T) {
	err := NotFound("review.get", "deleted")

	assert.True(t, IsKind(err, KindNotFound))
	assert.False(t, IsKind(err, KindPermission))
	assert.False(t, IsKind(errors.New("plain"), KindNotFound))
}
