package talkshow

import (
	"context"
	"errors"
	"sync"

	"github.com/liamcoop/talky/llm"
)

var errProviderDown = errors.New("provider unreachable")

// fakeModel answers JSON prompts with correct and text prompts with generate.
type fakeModel struct {
	mu       sync.Mutex
	prompts  []llm.Prompt
	correct  func() (string, error)
	generate func() (string, error)
}

func (m *fakeModel) Complete(_ context.Context, p llm.Prompt) (string, error) {
	m.mu.Lock()
	m.prompts = append(m.prompts, p)
	m.mu.Unlock()

	if p.Format == llm.FormatJSON {
		if m.correct == nil {
			return "", errProviderDown
		}
		return m.correct()
	}
	if m.generate == nil {
		return "", errProviderDown
	}
	return m.generate()
}

func reply(s string) func() (string, error) {
	return func() (string, error) { return s, nil }
}

func fail(err error) func() (string, error) {
	return func() (string, error) { return "", err }
}
