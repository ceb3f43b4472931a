package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Service struct {
	URL    string `mapstructure:"url"`
	Model  string `mapstructure:"model"`
	APIKey string `mapstructure:"api_key"`
}

type Services struct {
	Transcription Service `mapstructure:"transcription"`
	LLM           Service `mapstructure:"llm"`
}

type Analysis struct {
	StageTimeout int `mapstructure:"stage_timeout"` // seconds per external call
}

type Root struct {
	Pipeline struct {
		Name    string `mapstructure:"name"`
		Version string `mapstructure:"version"`
		LogLvl  string `mapstructure:"log_level"`
	} `mapstructure:"pipeline"`
	Owner    string   `mapstructure:"owner"`
	Services Services `mapstructure:"services"`
	Analysis Analysis `mapstructure:"analysis"`
	Paths    struct {
		Uploads string `mapstructure:"uploads"`
		Outputs string `mapstructure:"outputs"`
		DB      string `mapstructure:"db"`
	} `mapstructure:"paths"`
}

// Load reads config/<CONFIG_ENV>/config.yaml (default dev) and applies
// SAGE_-prefixed environment overrides, e.g. SAGE_SERVICES_LLM_API_KEY.
func Load() (*Root, error) {
	env := os.Getenv("CONFIG_ENV")
	if env == "" {
		env = "dev"
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(filepath.Join("config", env))
	v.AddConfigPath(".")

	v.SetEnvPrefix("SAGE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("pipeline.name", "sage")
	v.SetDefault("pipeline.log_level", "info")
	v.SetDefault("owner", "default")
	v.SetDefault("services.transcription.url", "https://api.openai.com/v1")
	v.SetDefault("services.transcription.model", "gpt-4o-transcribe-diarize")
	v.SetDefault("services.llm.url", "https://api.openai.com/v1")
	v.SetDefault("services.llm.model", "gpt-4o")
	v.SetDefault("analysis.stage_timeout", 120)
	v.SetDefault("paths.uploads", "uploaded_audio")
	v.SetDefault("paths.outputs", "outputs")
	v.SetDefault("paths.db", "sage.db")

	if err := v.ReadInConfig(); err != nil {
		// the config file is optional; defaults plus env are enough to run
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("config: read: %w", err)
		}
	}

	var cfg Root
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	// the two services usually share one key
	if cfg.Services.Transcription.APIKey == "" {
		cfg.Services.Transcription.APIKey = cfg.Services.LLM.APIKey
	}
	return &cfg, nil
}

// StageTimeout is the per-call deadline for external services.
func (r *Root) StageTimeout() time.Duration {
	return time.Duration(r.Analysis.StageTimeout) * time.Second
}
