// Package factory decides which reasoning backend is live and builds it,
// demoting to the local engine whenever the remote one cannot be used.
package factory

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"agentic-reasoning-be/internal/config"
	"agentic-reasoning-be/internal/pkg/logger"
	"agentic-reasoning-be/internal/pkg/metrics"
	"agentic-reasoning-be/pkg/llm"
	llmfactory "agentic-reasoning-be/pkg/llm/factory"
	"agentic-reasoning-be/pkg/reasoning"
	"agentic-reasoning-be/pkg/reasoning/local"
	"agentic-reasoning-be/pkg/reasoning/remote"
)

const logModule = "BackendResolver"

type Mode string

const (
	ModeLocal  Mode = "local"
	ModeRemote Mode = "remote"
)

type Preference int

const (
	PreferenceUnset Preference = iota
	PreferenceForceOn
	PreferenceForceOff
)

func (p Preference) String() string {
	switch p {
	case PreferenceForceOn:
		return "force_on"
	case PreferenceForceOff:
		return "force_off"
	default:
		return "unset"
	}
}

// ErrFatalConstruction means the local engine itself could not be built. No
// fallback remains after it.
var ErrFatalConstruction = errors.New("local reasoning engine construction failed")

// ParsePreference reads a USE_GEMINI style value.
func ParsePreference(raw string, set bool) Preference {
	if !set {
		return PreferenceUnset
	}
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "true", "yes", "on":
		return PreferenceForceOn
	default:
		return PreferenceForceOff
	}
}

// Configuration is the per-request view of the backend environment.
type Configuration struct {
	Preference Preference
	Settings   llmfactory.Settings
}

func ConfigurationFromEnv(env config.BackendEnv, rc config.ReasoningConfig) Configuration {
	return Configuration{
		Preference: ParsePreference(env.UseGemini, env.UseGeminiSet),
		Settings: llmfactory.Settings{
			Provider: env.Provider,
			Model:    env.Model,
			APIKey:   env.GoogleAPIKey,
			BaseURL:  env.OllamaURL,
			Timeout:  rc.RemoteTimeout,
		},
	}
}

func (c Configuration) HasCredential() bool {
	return llmfactory.HasCredential(c.Settings)
}

func (c Configuration) DesiredMode() Mode {
	switch c.Preference {
	case PreferenceForceOn:
		return ModeRemote
	case PreferenceForceOff:
		return ModeLocal
	}
	if c.credentialConfigured() {
		return ModeRemote
	}
	return ModeLocal
}

// credentialConfigured looks only at what the environment carries. Whether the
// named provider exists or can use that credential is for the fallback chain
// to decide and log.
func (c Configuration) credentialConfigured() bool {
	return c.Settings.APIKey != "" || c.Settings.BaseURL != ""
}

// fingerprint changes whenever a rebuild could produce a different engine.
func (c Configuration) fingerprint() string {
	return fmt.Sprintf("%s|%t|%s|%s", c.DesiredMode(), c.HasCredential(), c.Settings.Provider, c.Settings.Model)
}

// Builders are the construction steps of the fallback chain. Tests swap them.
type Builders struct {
	RemoteAvailable func(provider string) bool
	NewLocal        func() (*local.Engine, error)
	NewProvider     func(ctx context.Context, s llmfactory.Settings) (llm.LLMProvider, error)
	NewRemote       func(p llm.LLMProvider, base *local.Engine) (reasoning.Engine, error)
}

func DefaultBuilders(rc config.ReasoningConfig) Builders {
	return Builders{
		RemoteAvailable: llmfactory.Available,
		NewLocal:        local.New,
		NewProvider:     llmfactory.NewLLMProvider,
		NewRemote: func(p llm.LLMProvider, base *local.Engine) (reasoning.Engine, error) {
			return remote.New(p, base, remote.Options{
				RequestsPerSecond: rc.RemoteRateLimit,
				Timeout:           rc.RemoteTimeout,
			})
		},
	}
}

type activeBackend struct {
	mode        Mode
	engine      reasoning.Engine
	fingerprint string
}

// Status is what /api/status reports.
type Status struct {
	ActiveMode    Mode   `json:"active_mode"`
	DesiredMode   Mode   `json:"desired_mode"`
	Engine        string `json:"engine"`
	Constructions int    `json:"constructions"`
}

type Resolver struct {
	mu            sync.Mutex
	load          func() Configuration
	builders      Builders
	log           logger.ILogger
	active        *activeBackend
	constructions int
}

// NewResolver takes a configuration source that is consulted on every Resolve.
func NewResolver(load func() Configuration, builders Builders, log logger.ILogger) *Resolver {
	return &Resolver{load: load, builders: builders, log: log}
}

// Resolve returns the live engine, building it when the configuration changed
// since the last call. The returned mode is the one achieved, which may differ
// from the desired mode after a fallback.
func (r *Resolver) Resolve(ctx context.Context) (reasoning.Engine, Mode, error) {
	cfg := r.load()
	fp := cfg.fingerprint()

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.active != nil && r.active.fingerprint == fp {
		return r.active.engine, r.active.mode, nil
	}

	engine, mode, err := r.build(ctx, cfg)
	if err != nil {
		return nil, "", err
	}

	r.constructions++
	metrics.RecordConstruction(string(mode))
	r.active = &activeBackend{mode: mode, engine: engine, fingerprint: fp}

	r.log.Info(logModule, "Reasoning backend ready", map[string]interface{}{
		"desired_mode": cfg.DesiredMode(),
		"active_mode":  mode,
		"engine":       engine.Name(),
		"preference":   cfg.Preference.String(),
	})
	return engine, mode, nil
}

func (r *Resolver) build(ctx context.Context, cfg Configuration) (reasoning.Engine, Mode, error) {
	wantRemote := cfg.DesiredMode() == ModeRemote
	if wantRemote {
		switch {
		case !r.builders.RemoteAvailable(cfg.Settings.Provider):
			r.fallback("provider_unavailable", fmt.Errorf("provider %q is not registered", cfg.Settings.Provider))
			wantRemote = false
		case !cfg.HasCredential():
			r.fallback("missing_credential", fmt.Errorf("no credential for provider %q", cfg.Settings.Provider))
			wantRemote = false
		}
	}

	base, err := r.builders.NewLocal()
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrFatalConstruction, err)
	}
	if !wantRemote {
		return base, ModeLocal, nil
	}

	provider, err := r.builders.NewProvider(ctx, cfg.Settings)
	if err != nil {
		r.fallback("construction_failed", err)
		return base, ModeLocal, nil
	}
	engine, err := r.builders.NewRemote(provider, base)
	if err != nil {
		r.fallback("construction_failed", err)
		return base, ModeLocal, nil
	}
	return engine, ModeRemote, nil
}

func (r *Resolver) fallback(reason string, cause error) {
	metrics.RecordFallback(reason)
	r.log.Warn(logModule, "Remote backend unavailable, falling back to local engine", map[string]interface{}{
		"reason": reason,
		"error":  cause.Error(),
	})
}

func (r *Resolver) Status() Status {
	cfg := r.load()

	r.mu.Lock()
	defer r.mu.Unlock()

	st := Status{DesiredMode: cfg.DesiredMode(), Constructions: r.constructions}
	if r.active != nil {
		st.ActiveMode = r.active.mode
		st.Engine = r.active.engine.Name()
	}
	return st
}
