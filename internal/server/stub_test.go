package server

import (
	"context"
	"strings"
	"sync"

	"github.com/jonathan/resume-enhancer/internal/llm"
	"github.com/jonathan/resume-enhancer/internal/rendering"
	"github.com/jonathan/resume-enhancer/internal/types"
)

// stubLLM answers prompts from canned rules. The first rule whose substring
// occurs in the prompt wins.
type stubLLM struct {
	mu      sync.Mutex
	rules   []stubRule
	err     error
	prompts []string
}

type stubRule struct {
	contains string
	reply    string
}

func (s *stubLLM) on(contains, reply string) *stubLLM {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rules = append(s.rules, stubRule{contains: contains, reply: reply})
	return s
}

func (s *stubLLM) fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
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

func (s *stubLLM) GenerateStructured(_ context.Context, prompt, _ string, _ llm.ModelTier) (string, error) {
	return s.answer(prompt)
}

func (s *stubLLM) GetModel(llm.ModelTier) string { return "stub" }

func (s *stubLLM) Close() error { return nil }

func (s *stubLLM) sent() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.prompts...)
}

// stubPrinter records the last render request
type stubPrinter struct {
	mu       sync.Mutex
	sections types.SectionMap
	opts     rendering.Options
	err      error
}

func (p *stubPrinter) RenderResume(_ context.Context, m types.SectionMap, opts rendering.Options) ([]byte, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sections = m
	p.opts = opts
	if p.err != nil {
		return nil, p.err
	}
	return []byte("%PDF-1.4 stub"), nil
}

// stubTranscriber returns a fixed transcript or error
type stubTranscriber struct {
	transcript string
	err        error
	mimeType   string
}

func (t *stubTranscriber) Transcribe(_ context.Context, _ []byte, mimeType string) (string, error) {
	t.mimeType = mimeType
	return t.transcript, t.err
}
