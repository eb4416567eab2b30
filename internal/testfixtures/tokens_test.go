package testfixtures

import (
	"sync"
	"testing"
)

func TestFormTokens(t *testing.T) {
	tokens := NewFormTokens("")
	if got := tokens.Next(); got != "form-1" {
		t.Fatalf("expected form-1, got %q", got)
	}

	var wg sync.WaitGroup
	seen := sync.Map{}
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, dup := seen.LoadOrStore(tokens.Next(), true); dup {
				t.Error("duplicate token issued")
			}
		}()
	}
	wg.Wait()

	if tokens.Issued() != 21 {
		t.Fatalf("expected 21 tokens issued, got %d", tokens.Issued())
	}
}
