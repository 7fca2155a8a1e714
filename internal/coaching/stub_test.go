package coaching

import (
	"context"
	"strings"
	"sync"

	"github.com/jonathan/resume-enhancer/internal/llm"
)

// stubLLM answers prompts from canned rules. The first rule whose substring
// occurs in the prompt wins.
type stubLLM struct {
	mu      sync.Mutex
	rules   []stubRule
	err     error
	prompts []string
	schemas []string
}

type stubRule struct {
	contains string
	reply    string
}

func (s *stubLLM) on(contains, reply string) *stubLLM {
	s.rules = append(s.rules, stubRule{contains: contains, reply: reply})
	return s
}

func (s *stubLLM) answer(prompt string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prompts = append(s.prompts, prompt)
	if s.err != nil {
		return "", s.err
	}
	for _, r := range s.rules {
		if strings.Contains(prompt, r.contains) {
			return r.reply, nil
		}
	}
	return "", nil
}

func (s *stubLLM) GenerateContent(_ context.Context, prompt string, _ llm.ModelTier) (string, error) {
	return s.answer(prompt)
}

func (s *stubLLM) GenerateJSON(_ context.Context, prompt string, _ llm.ModelTier) (string, error) {
	return s.answer(prompt)
}

func (s *stubLLM) GenerateStructured(_ context.Context, prompt, schema string, _ llm.ModelTier) (string, error) {
	s.mu.Lock()
	s.schemas = append(s.schemas, schema)
	s.mu.Unlock()
	return s.answer(prompt)
}

func (s *stubLLM) GetModel(llm.ModelTier) string { return "stub" }

func (s *stubLLM) Close() error { return nil }

func (s *stubLLM) sent() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.prompts...)
}
