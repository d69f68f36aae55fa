package factory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"agentic-reasoning-be/pkg/llm"
	"agentic-reasoning-be/pkg/llm/gemini"
	"agentic-reasoning-be/pkg/llm/ollama"
)

// Settings is everything a provider constructor may need.
type Settings struct {
	Provider string
	Model    string
	APIKey   string
	BaseURL  string
	Timeout  time.Duration
}

type constructor struct {
	// credential returns the value that must be non-empty for the provider to be usable
	credential func(Settings) string
	build      func(ctx context.Context, s Settings) (llm.LLMProvider, error)
}

var constructors = map[string]constructor{
	"gemini": {
		credential: func(s Settings) string { return s.APIKey },
		build: func(ctx context.Context, s Settings) (llm.LLMProvider, error) {
			return gemini.NewGeminiProvider(ctx, s.APIKey, s.Model)
		},
	},
	"ollama": {
		credential: func(s Settings) string { return s.BaseURL },
		build: func(ctx context.Context, s Settings) (llm.LLMProvider, error) {
			model := s.Model
			if model == "" || model == gemini.DefaultModel {
				model = "llama3"
			}
			return ollama.NewOllamaProvider(s.BaseURL, model, s.Timeout), nil
		},
	},
}

// Available reports whether providerType is compiled into this binary.
func Available(providerType string) bool {
	_, ok := constructors[providerType]
	return ok
}

// HasCredential reports whether the settings carry what providerType needs to authenticate.
func HasCredential(s Settings) bool {
	c, ok := constructors[s.Provider]
	return ok && c.credential(s) != ""
}

func Providers() []string {
	names := make([]string, 0, len(constructors))
	for name := range constructors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func NewLLMProvider(ctx context.Context, s Settings) (llm.LLMProvider, error) {
	c, ok := constructors[s.Provider]
	if !ok {
		return nil, fmt.Errorf("unsupported LLM provider: %s", s.Provider)
	}
	if c.credential(s) == "" {
		return nil, fmt.Errorf("LLM provider %s: missing credential", s.Provider)
	}
	return c.build(ctx, s)
}
