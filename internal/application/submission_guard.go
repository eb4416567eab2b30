package application

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

const defaultSubmissionTokenTTL = 30 * time.Minute

// SubmissionGuard hands out one-time form tokens so a form instance submits
// at most once, even when the submit button is pressed repeatedly.
type SubmissionGuard struct {
	mu       sync.Mutex
	now      func() time.Time
	newToken func() string
	ttl      time.Duration
	issued   map[string]time.Time
	inFlight map[string]struct{}
}

// NewSubmissionGuard returns a guard whose tokens expire after ttl. A nil
// newToken uses random UUIDs.
func NewSubmissionGuard(ttl time.Duration, now func() time.Time, newToken func() string) *SubmissionGuard {
	if ttl <= 0 {
		ttl = defaultSubmissionTokenTTL
	}
	if now == nil {
		now = time.Now
	}
	if newToken == nil {
		newToken = func() string { return uuid.NewString() }
	}
	return &SubmissionGuard{
		now:      now,
		newToken: newToken,
		ttl:      ttl,
		issued:   make(map[string]time.Time),
		inFlight: make(map[string]struct{}),
	}
}

// Issue returns a fresh token for a rendered form.
func (g *SubmissionGuard) Issue() string {
	token := g.newToken()
	g.mu.Lock()
	defer g.mu.Unlock()
	g.pruneLocked()
	g.issued[token] = g.now().Add(g.ttl)
	return token
}

// Begin claims token for one submission. It fails with ErrDuplicateSubmission
// when the token is unknown, expired, already consumed or in flight. The
// returned function releases the claim: pass true once the submission has
// succeeded so the token cannot be reused, false to allow a retry.
func (g *SubmissionGuard) Begin(token string) (func(consumed bool), error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, busy := g.inFlight[token]; busy {
		return nil, ErrDuplicateSubmission
	}
	expiresAt, ok := g.issued[token]
	if !ok || g.now().After(expiresAt) {
		delete(g.issued, token)
		return nil, ErrDuplicateSubmission
	}

	g.inFlight[token] = struct{}{}
	var once sync.Once
	return func(consumed bool) {
		once.Do(func() {
			g.mu.Lock()
			defer g.mu.Unlock()
			delete(g.inFlight, token)
			if consumed {
				delete(g.issued, token)
			}
		})
	}, nil
}

func (g *SubmissionGuard) pruneLocked() {
	now := g.now()
	for token, expiresAt := range g.issued {
		if _, busy := g.inFlight[token]; busy {
			continue
		}
		if now.After(expiresAt) {
			delete(g.issued, token)
		}
	}
}
