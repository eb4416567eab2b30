package application

import (
	"errors"
	"testing"
	"time"

	"github.com/example/room-booking/internal/testfixtures"
)

func TestSubmissionGuard(t *testing.T) {
	t.Run("token is single use once consumed", func(t *testing.T) {
		tokens := testfixtures.NewFormTokens("form")
		guard := NewSubmissionGuard(time.Minute, nil, tokens.Next)

		token := guard.Issue()
		if token != "form-1" {
			t.Fatalf("expected deterministic token, got %q", token)
		}

		release, err := guard.Begin(token)
		if err != nil {
			t.Fatalf("Begin: %v", err)
		}
		if _, err := guard.Begin(token); !errors.Is(err, ErrDuplicateSubmission) {
			t.Fatalf("expected in-flight token to be rejected, got %v", err)
		}
		release(true)

		if _, err := guard.Begin(token); !errors.Is(err, ErrDuplicateSubmission) {
			t.Fatalf("expected consumed token to be rejected, got %v", err)
		}
	})

	t.Run("failed submission can be retried", func(t *testing.T) {
		guard := NewSubmissionGuard(time.Minute, nil, nil)
		token := guard.Issue()

		release, err := guard.Begin(token)
		if err != nil {
			t.Fatalf("Begin: %v", err)
		}
		release(false)
		release(true) // no effect after the first call

		if _, err := guard.Begin(token); err != nil {
			t.Fatalf("expected retry to be allowed, got %v", err)
		}
	})

	t.Run("unknown and expired tokens are rejected", func(t *testing.T) {
		clock := testfixtures.NewClock(time.Time{})
		guard := NewSubmissionGuard(time.Minute, clock.NowFunc(), nil)

		if _, err := guard.Begin("never-issued"); !errors.Is(err, ErrDuplicateSubmission) {
			t.Fatalf("expected unknown token to be rejected, got %v", err)
		}

		token := guard.Issue()
		clock.Advance(2 * time.Minute)
		if _, err := guard.Begin(token); !errors.Is(err, ErrDuplicateSubmission) {
			t.Fatalf("expected expired token to be rejected, got %v", err)
		}
	})
}
