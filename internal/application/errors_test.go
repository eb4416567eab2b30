package application

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestValidationError_Error(t *testing.T) {
	t.Parallel()

	var err *ValidationError
	if err.Error() != "" {
		t.Fatalf("expected empty string for nil error, got %q", err.Error())
	}

	empty := &ValidationError{}
	if got := empty.Error(); got != "validation failed" {
		t.Fatalf("expected generic message for empty error, got %q", got)
	}

	withFields := &ValidationError{FieldErrors: map[string]string{"user_phone": "bad", "password": "bad"}}
	if got := withFields.Error(); got != "validation failed: password, user_phone" {
		t.Fatalf("expected sorted field list, got %q", got)
	}
}

func TestValidationError_HasErrors(t *testing.T) {
	t.Parallel()

	if (&ValidationError{}).HasErrors() {
		t.Fatalf("expected HasErrors to report false for empty error")
	}
	if !(&ValidationError{FieldErrors: map[string]string{"field": "bad"}}).HasErrors() {
		t.Fatalf("expected HasErrors to report true when fields are present")
	}
}

func TestValidationError_AddAndMerge(t *testing.T) {
	t.Parallel()

	base := &ValidationError{}
	base.add("first", "value")
	base.add("first", "ignored")
	if got := base.FieldErrors["first"]; got != "value" {
		t.Fatalf("expected first message to win, got %q", got)
	}

	other := &ValidationError{FieldErrors: map[string]string{"second": "another"}}
	base.merge(other)
	if got := base.FieldErrors["second"]; got != "another" {
		t.Fatalf("expected merge to copy field, got %q", got)
	}

	base.merge(nil)
	if len(base.FieldErrors) != 2 {
		t.Fatalf("expected merge with nil to leave fields unchanged")
	}
}

func TestErrorKind(t *testing.T) {
	t.Parallel()

	cases := []struct {
		err  error
		want string
	}{
		{nil, ""},
		{ErrNotFound, "not_found"},
		{fmt.Errorf("wrapped: %w", ErrReservationConflict), "conflict"},
		{ErrDuplicateSubmission, "duplicate_submission"},
		{context.Canceled, "canceled"},
		{&ValidationError{FieldErrors: map[string]string{"a": "b"}}, "validation"},
		{errors.New("boom"), "unexpected"},
	}
	for _, tc := range cases {
		if got := ErrorKind(tc.err); got != tc.want {
			t.Fatalf("ErrorKind(%v) = %q, want %q", tc.err, got, tc.want)
		}
	}
}

func TestReservationConflictMessage(t *testing.T) {
	t.Parallel()

	if ErrReservationConflict.Error() != "reservation already exists in that slot" {
		t.Fatalf("unexpected conflict message %q", ErrReservationConflict.Error())
	}
}
