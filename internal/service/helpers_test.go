package service

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"care-advisor/internal/catalog"
	"care-advisor/internal/models"
	"care-advisor/pkg/config"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testCatalogPath = "../../configs/catalog.yaml"

func loadTestCatalog(t *testing.T) *catalog.Store {
	t.Helper()
	store, err := catalog.Load(testCatalogPath)
	require.NoError(t, err)
	return store
}

func testMatcherConfig() config.MatcherConfig {
	return config.MatcherConfig{FuzzyThreshold: 85, FuzzyBonus: 1, FuzzyMinLength: 4}
}

func testArbiterConfig() config.ArbiterConfig {
	return config.ArbiterConfig{AcceptanceThreshold: 1, SoloThreshold: 2}
}

func proposalJSON(t *testing.T, product string, feature any) string {
	t.Helper()
	data, err := json.Marshal(map[string]any{
		"product":      product,
		"feature":      feature,
		"how_it_works": "The selected features work together to resolve the issue.",
		"benefits":     []string{"Saves staff time.", "Improves patient experience."},
	})
	require.NoError(t, err)
	return string(data)
}

type fakeReply struct {
	text string
	err  error
}

// fakeCompleter replays replies in order and repeats the last one.
type fakeCompleter struct {
	mu      sync.Mutex
	replies []fakeReply
	delay   time.Duration
	calls   int
	prompts []string
}

func newFakeCompleter(replies ...fakeReply) *fakeCompleter {
	return &fakeCompleter{replies: replies}
}

func (f *fakeCompleter) Complete(ctx context.Context, prompt string) (*Completion, error) {
	f.mu.Lock()
	reply := f.replies[min(f.calls, len(f.replies)-1)]
	f.calls++
	f.prompts = append(f.prompts, prompt)
	f.mu.Unlock()

	if f.delay > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(f.delay):
		}
	}

	if reply.err != nil {
		return nil, reply.err
	}
	return &Completion{Text: reply.text, PromptTokens: 120, CompletionTokens: 45}, nil
}

func (f *fakeCompleter) Close() error { return nil }

func (f *fakeCompleter) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeProposer struct {
	mu       sync.Mutex
	solution *AdvisorySolution
	err      error
	panicMsg string
	queries  []string
}

func (f *fakeProposer) Propose(_ context.Context, query string) (*AdvisorySolution, error) {
	f.mu.Lock()
	f.queries = append(f.queries, query)
	f.mu.Unlock()

	if f.panicMsg != "" {
		panic(f.panicMsg)
	}
	return f.solution, f.err
}

type fakeSink struct {
	mu      sync.Mutex
	entries []*models.AdvisoryLog
	err     error
	delay   time.Duration
	panics  bool
}

func (s *fakeSink) Insert(ctx context.Context, entry *models.AdvisoryLog) error {
	if s.panics {
		panic("sink exploded")
	}
	if s.delay > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(s.delay):
		}
	}
	if s.err != nil {
		return s.err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *entry
	s.entries = append(s.entries, &copied)
	return nil
}

func (s *fakeSink) Entries() []*models.AdvisoryLog {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*models.AdvisoryLog(nil), s.entries...)
}

func testAuditLogger(sink AuditSink) *AuditLogger {
	return NewAuditLogger(sink, config.AuditConfig{
		WaitTimeout:  250 * time.Millisecond,
		WriteTimeout: time.Second,
	}, nil, zap.NewNop())
}
