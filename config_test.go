package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testAppConfig() *AppConfig {
	return &AppConfig{
		DefaultModel: "fast",
		Models: map[string]ModelConfig{
			"fast":  {Provider: "openai", Model: "gpt-4o-mini"},
			"smart": {Provider: "anthropic", Model: "claude-sonnet-4-0", MaxTokens: 8192},
		},
		Groups: map[string][]string{
			"all": {"fast", "smart"},
		},
		SystemPrompts: map[string]string{
			"reviewer": "You are a meticulous code reviewer.",
		},
	}
}

func TestResolveModelsNamed(t *testing.T) {
	cfg := testAppConfig()

	models, err := cfg.ResolveModels([]string{"smart"}, "")
	require.NoError(t, err)
	require.Len(t, models, 1)
	assert.Equal(t, "smart", models[0].Name)
	assert.Equal(t, "anthropic", models[0].Config.Provider)
	assert.Equal(t, 8192, models[0].Config.MaxTokens)
}

func TestResolveModelsInlineSpec(t *testing.T) {
	cfg := testAppConfig()

	models, err := cfg.ResolveModels([]string{"google/gemini-2.5-flash"}, "")
	require.NoError(t, err)
	require.Len(t, models, 1)
	assert.Equal(t, "google", models[0].Config.Provider)
	assert.Equal(t, "gemini-2.5-flash", models[0].Config.Model)
}

func TestResolveModelsGroup(t *testing.T) {
	cfg := testAppConfig()

	models, err := cfg.ResolveModels(nil, "all")
	require.NoError(t, err)
	require.Len(t, models, 2)
	assert.Equal(t, "fast", models[0].Name)
	assert.Equal(t, "smart", models[1].Name)
}

func TestResolveModelsDefaultFallback(t *testing.T) {
	cfg := testAppConfig()

	models, err := cfg.ResolveModels(nil, "")
	require.NoError(t, err)
	require.Len(t, models, 1)
	assert.Equal(t, "fast", models[0].Name)
}

func TestResolveModelsErrors(t *testing.T) {
	cfg := testAppConfig()

	_, err := cfg.ResolveModels([]string{"nonexistent"}, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown model")

	_, err = cfg.ResolveModels(nil, "nonexistent")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown model group")

	cfg.DefaultModel = ""
	_, err = cfg.ResolveModels(nil, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no model selected")
}

func TestResolveModelsErrorExitCode(t *testing.T) {
	cfg := testAppConfig()

	_, err := cfg.ResolveModels([]string{"nonexistent"}, "")
	var cerr *cliError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, exitConfig, cerr.ExitCode())
}

func TestResolveSystemPrompt(t *testing.T) {
	cfg := testAppConfig()

	assert.Equal(t, "You are a meticulous code reviewer.", cfg.ResolveSystemPrompt("reviewer"))
	assert.Equal(t, "Answer in French.", cfg.ResolveSystemPrompt("Answer in French."))
}
