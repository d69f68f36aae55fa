package factory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAvailableAndCredential(t *testing.T) {
	assert.True(t, Available("gemini"))
	assert.True(t, Available("ollama"))
	assert.False(t, Available("huggingface"))
	assert.Equal(t, []string{"gemini", "ollama"}, Providers())

	assert.False(t, HasCredential(Settings{Provider: "gemini"}))
	assert.True(t, HasCredential(Settings{Provider: "gemini", APIKey: "k"}))
	assert.True(t, HasCredential(Settings{Provider: "ollama", BaseURL: "http://localhost:11434"}))
	assert.False(t, HasCredential(Settings{Provider: "unknown", APIKey: "k"}))
}

func TestNewLLMProvider(t *testing.T) {
	_, err := NewLLMProvider(context.Background(), Settings{Provider: "unknown"})
	assert.Error(t, err)

	_, err = NewLLMProvider(context.Background(), Settings{Provider: "gemini"})
	assert.Error(t, err)

	p, err := NewLLMProvider(context.Background(), Settings{Provider: "ollama", BaseURL: "http://localhost:11434", Model: "gemini-1.5-flash"})
	require.NoError(t, err)
	assert.Equal(t, "ollama", p.Name())
}
