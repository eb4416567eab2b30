package testfixtures

import (
	"strconv"
	"sync"
)

// FormTokens yields predictable form tokens ("form-1", "form-2", ...) for
// submission guard tests.
type FormTokens struct {
	mu     sync.Mutex
	prefix string
	issued int
}

func NewFormTokens(prefix string) *FormTokens {
	if prefix == "" {
		prefix = "form"
	}
	return &FormTokens{prefix: prefix}
}

func (f *FormTokens) Next() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.issued++
	return f.prefix + "-" + strconv.Itoa(f.issued)
}

// Issued reports how many tokens were handed out.
func (f *FormTokens) Issued() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.issued
}
