package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadBackend(t *testing.T) {
	t.Run("unset preference", func(t *testing.T) {
		unsetEnv(t, "USE_GEMINI")
		t.Setenv("GOOGLE_API_KEY", "")
		t.Setenv("GEMINI_API_KEY", "")
		t.Setenv("REMOTE_LLM_PROVIDER", " Gemini ")

		env := LoadBackend()
		assert.False(t, env.UseGeminiSet)
		assert.Equal(t, "gemini", env.Provider)
		assert.Empty(t, env.GoogleAPIKey)
	})

	t.Run("explicit preference and fallback key", func(t *testing.T) {
		t.Setenv("USE_GEMINI", "yes")
		t.Setenv("GOOGLE_API_KEY", "")
		t.Setenv("GEMINI_API_KEY", "secret")

		env := LoadBackend()
		assert.True(t, env.UseGeminiSet)
		assert.Equal(t, "yes", env.UseGemini)
		assert.Equal(t, "secret", env.GoogleAPIKey)
	})
}

func TestEnvHelpers(t *testing.T) {
	t.Setenv("TEST_INT", "12")
	t.Setenv("TEST_BAD_INT", "twelve")
	t.Setenv("TEST_DURATION", "90s")
	t.Setenv("TEST_FLOAT", "0.5")

	assert.Equal(t, 12, getEnvAsInt("TEST_INT", 1))
	assert.Equal(t, 1, getEnvAsInt("TEST_BAD_INT", 1))
	assert.Equal(t, 90*time.Second, getEnvAsDuration("TEST_DURATION", time.Second))
	assert.Equal(t, time.Second, getEnvAsDuration("TEST_MISSING_DURATION", time.Second))
	assert.Equal(t, 0.5, getEnvAsFloat("TEST_FLOAT", 2))
}

func unsetEnv(t *testing.T, key string) {
	t.Helper()
	old, ok := os.LookupEnv(key)
	_ = os.Unsetenv(key)
	t.Cleanup(func() {
		if ok {
			_ = os.Setenv(key, old)
		}
	})
}
