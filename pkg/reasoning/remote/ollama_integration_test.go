//go:build integration

package remote

import (
	"context"
	"net/http"
	"os"
	"testing"
	"time"

	"agentic-reasoning-be/pkg/llm/ollama"
	"agentic-reasoning-be/pkg/reasoning/local"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Run with: go test -tags integration ./pkg/reasoning/remote/ (needs a local Ollama)

func ollamaURL() string {
	if url := os.Getenv("OLLAMA_BASE_URL"); url != "" {
		return url
	}
	return "http://localhost:11434"
}

func ollamaModel() string {
	if model := os.Getenv("OLLAMA_MODEL"); model != "" {
		return model
	}
	return "gemma:2b"
}

func requireOllama(t *testing.T) {
	t.Helper()
	client := &http.Client{Timeout: 5 * time.Second}
	res, err := client.Get(ollamaURL())
	if err != nil {
		t.Skipf("Ollama not running at %s: %v", ollamaURL(), err)
	}
	res.Body.Close()
}

func TestOllamaLogicProblem(t *testing.T) {
	requireOllama(t)

	base, err := local.New()
	require.NoError(t, err)
	engine, err := New(ollama.NewOllamaProvider(ollamaURL(), ollamaModel(), 2*time.Minute), base, Options{Timeout: 2 * time.Minute})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	defer cancel()

	res, err := engine.Solve(ctx, "If all cats are animals and Tom is a cat, is Tom an animal?", "live_1")
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.NotEmpty(t, res.FinalAnswer)
	t.Logf("answer: %s (confidence %.2f)", res.FinalAnswer, res.OverallConfidence)
}
