package remote

import (
	"context"
	"errors"
	"sync"
	"testing"

	"agentic-reasoning-be/pkg/llm"
	"agentic-reasoning-be/pkg/reasoning"
	"agentic-reasoning-be/pkg/reasoning/local"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProvider struct {
	mu      sync.Mutex
	reply   string
	err     error
	prompts []string
}

func (f *fakeProvider) Name() string { return "fake" }

func (f *fakeProvider) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	return f.Generate(ctx, history[len(history)-1].Content, options...)
}

func (f *fakeProvider) Generate(_ context.Context, prompt string, _ ...llm.Option) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prompts = append(f.prompts, prompt)
	return f.reply, f.err
}

func (f *fakeProvider) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.prompts)
}

func newEngine(t *testing.T, p *fakeProvider) *Engine {
	t.Helper()
	base, err := local.New()
	require.NoError(t, err)
	e, err := New(p, base, Options{})
	require.NoError(t, err)
	return e
}

func TestNewRejectsMissingParts(t *testing.T) {
	base, _ := local.New()
	_, err := New(nil, base, Options{})
	assert.Error(t, err)
	_, err = New(&fakeProvider{}, nil, Options{})
	assert.Error(t, err)
}

func TestArithmeticStaysLocal(t *testing.T) {
	p := &fakeProvider{reply: "should not be used"}
	e := newEngine(t, p)

	res, err := e.Solve(context.Background(), "What is 12 * 7?", "problem_1")
	require.NoError(t, err)
	assert.Equal(t, "84", res.FinalAnswer)
	assert.Zero(t, p.calls())
	assert.Len(t, e.Traces(), len(res.Traces))
}

func TestStructuredModelAnswer(t *testing.T) {
	p := &fakeProvider{reply: "```json\n{\"reasoning_steps\":[\"All men are mortal\",\"Socrates is a man\"],\"final_answer\":\"Yes\"}\n```"}
	e := newEngine(t, p)

	res, err := e.Solve(context.Background(), "Is Socrates mortal?", "problem_2")
	require.NoError(t, err)
	assert.Equal(t, "Yes", res.FinalAnswer)
	assert.True(t, res.Success)
	assert.True(t, res.VerificationPassed)
	assert.Equal(t, []string{"All men are mortal", "Socrates is a man"}, res.ReasoningSteps)
	require.Len(t, res.Subproblems, 1)
	assert.Equal(t, reasoning.ToolLanguageModel, *res.Subproblems[0].Tool)
	assert.Equal(t, 1, p.calls())
	assert.Contains(t, p.prompts[0], "Is Socrates mortal?")
}

func TestUnstructuredModelAnswer(t *testing.T) {
	p := &fakeProvider{reply: "Socrates is mortal."}
	e := newEngine(t, p)

	res, err := e.Solve(context.Background(), "Is Socrates mortal?", "problem_3")
	require.NoError(t, err)
	assert.Equal(t, "Socrates is mortal.", res.FinalAnswer)
	assert.False(t, res.VerificationPassed)
	assert.Len(t, res.ReasoningSteps, 3)
	assert.Equal(t, 0.6, res.OverallConfidence)
}

func TestProviderFailureFallsBackToLocal(t *testing.T) {
	p := &fakeProvider{err: errors.New("quota exceeded")}
	e := newEngine(t, p)

	res, err := e.Solve(context.Background(), "Is Socrates mortal?", "problem_4")
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, "Unable to determine an answer", res.FinalAnswer)

	var sawFallback bool
	for _, tr := range e.Traces() {
		if tr.ProblemID == "problem_4" && tr.ToolUsed == nil && tr.Confidence == 0.5 {
			sawFallback = true
		}
	}
	assert.True(t, sawFallback)
}

func TestPerformanceStats(t *testing.T) {
	p := &fakeProvider{reply: `{"reasoning_steps":["a"],"final_answer":"b"}`}
	e := newEngine(t, p)

	_, _ = e.Solve(context.Background(), "1 + 1", "p1")
	_, _ = e.Solve(context.Background(), "Why is the sky blue?", "p2")

	stats := e.PerformanceStats()
	assert.Equal(t, 2, stats["total_problems"])
	assert.Equal(t, "remote:fake", stats["engine"])
	assert.Equal(t, true, stats["hybrid"])
}

func TestParseResponse(t *testing.T) {
	answer, steps, ok := parseResponse(`{"reasoning_steps":[],"final_answer":" 42 "}`)
	assert.True(t, ok)
	assert.Equal(t, "42", answer)
	assert.Empty(t, steps)

	_, _, ok = parseResponse(`{"final_answer":"42"}`)
	assert.False(t, ok)
}
