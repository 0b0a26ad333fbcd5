package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// ModelConfig is one named model entry in the user's config file.
type ModelConfig struct {
	Provider    string  `mapstructure:"provider"`
	Model       string  `mapstructure:"model"`
	BaseURL     string  `mapstructure:"base_url"`
	APIKeyEnv   string  `mapstructure:"api_key_env"`
	MaxTokens   int     `mapstructure:"max_tokens"`
	Temperature float64 `mapstructure:"temperature"`
}

// AppConfig mirrors config.toml: named models, provider groups, and named
// system prompts.
type AppConfig struct {
	DefaultModel  string                 `mapstructure:"default_model"`
	Models        map[string]ModelConfig `mapstructure:"models"`
	Groups        map[string][]string    `mapstructure:"groups"`
	SystemPrompts map[string]string      `mapstructure:"system_prompts"`
}

// SelectedModel pairs a display name with its resolved provider config.
type SelectedModel struct {
	Name   string
	Config ModelConfig
}

func loadAppConfig() (*AppConfig, error) {
	var cfg AppConfig
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, &cliError{code: exitConfig, msg: "invalid configuration", cause: err}
	}
	return &cfg, nil
}

// ResolveModels expands -m names and a -g group into concrete model
// configs. Names may be config entries or inline "provider/model-id"
// specs; group members must be config entries or inline specs themselves.
func (c *AppConfig) ResolveModels(names []string, group string) ([]SelectedModel, error) {
	if group != "" {
		members, ok := c.Groups[group]
		if !ok {
			return nil, &cliError{code: exitConfig, msg: fmt.Sprintf("unknown model group %q", group)}
		}
		names = append(append([]string{}, names...), members...)
	}
	if len(names) == 0 {
		if c.DefaultModel == "" {
			return nil, &cliError{code: exitConfig, msg: "no model selected: use -m/-g or set default_model"}
		}
		names = []string{c.DefaultModel}
	}

	selected := make([]SelectedModel, 0, len(names))
	for _, name := range names {
		if mc, ok := c.Models[name]; ok {
			selected = append(selected, SelectedModel{Name: name, Config: mc})
			continue
		}
		provider, model, ok := strings.Cut(name, "/")
		if !ok || provider == "" || model == "" {
			return nil, &cliError{code: exitConfig,
				msg: fmt.Sprintf("unknown model %q: not in config and not a provider/model spec", name)}
		}
		selected = append(selected, SelectedModel{Name: name, Config: ModelConfig{Provider: provider, Model: model}})
	}
	return selected, nil
}

// ResolveSystemPrompt treats the -s value as a named config prompt when
// one matches, and as literal prompt text otherwise.
func (c *AppConfig) ResolveSystemPrompt(value string) string {
	if p, ok := c.SystemPrompts[value]; ok {
		return p
	}
	return value
}

// initConfig reads .env, the config file, and PARLEY_* env vars.
func initConfig() {
	_ = godotenv.Load() // .env is optional

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		viper.AddConfigPath(filepath.Join(home, ".config", "parley"))
		viper.AddConfigPath(".")
		viper.SetConfigName("config")
		viper.SetConfigType("toml")
	}

	viper.SetEnvPrefix("PARLEY")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			fmt.Fprintf(os.Stderr, "Error reading config file: %v\n", err)
		}
	}
}
