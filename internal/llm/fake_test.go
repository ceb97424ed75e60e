package llm

import (
	"context"
	"sync"
)

// fakeCompleter replays a canned answer and records prompts.
type fakeCompleter struct {
	mu      sync.Mutex
	answer  string
	err     error
	prompts []string
}

func (f *fakeCompleter) Complete(_ context.Context, prompt string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prompts = append(f.prompts, prompt)
	return f.answer, f.err
}
