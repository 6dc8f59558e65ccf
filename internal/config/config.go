package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/nguyentantai21042004/voice-note/internal/models"
)

// Transcription profiles of the engine's /transcribe contract.
const (
	ProfileLocal = "local"
	ProfileGCP   = "gcp"
)

// LLM endpoint variants.
const (
	EndpointLocal  = "local"
	EndpointHosted = "hosted"
)

type Config struct {
	Engine        EngineConfig        `yaml:"engine"`
	Transcription TranscriptionConfig `yaml:"transcription"`
	LLM           LLMConfig           `yaml:"llm"`
	Intake        IntakeConfig        `yaml:"intake"`
	Pipeline      PipelineConfig      `yaml:"pipeline"`
	Paths         PathsConfig         `yaml:"paths"`
	Logging       LoggingConfig       `yaml:"logging"`
	Performance   PerformanceConfig   `yaml:"performance"`
}

type EngineConfig struct {
	BaseURL string `yaml:"base_url"`
	// TimeoutSeconds bounds one engine call. 0 means no client-side timeout.
	TimeoutSeconds int `yaml:"timeout_seconds"`
}

type TranscriptionConfig struct {
	Profile         string `yaml:"profile"`
	ModelSize       string `yaml:"model_size"`
	Language        string `yaml:"language"`
	CredentialsFile string `yaml:"credentials_file"`
}

type LLMConfig struct {
	Endpoint  string `yaml:"endpoint"`
	BaseURL   string `yaml:"base_url"`
	Model     string `yaml:"model"`
	APIKeyEnv string `yaml:"api_key_env"`
}

type IntakeConfig struct {
	Extensions []string `yaml:"extensions"`
}

type PipelineConfig struct {
	Refine bool `yaml:"refine"`
}

type PathsConfig struct {
	Input    string `yaml:"input"`
	Output   string `yaml:"output"`
	Archived string `yaml:"archived"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type PerformanceConfig struct {
	MaxConcurrent int `yaml:"max_concurrent"`
}

func (c *Config) Validate() error {
	if c.Engine.BaseURL == "" {
		c.Engine.BaseURL = "http://127.0.0.1:8000"
	}
	if c.Engine.TimeoutSeconds < 0 {
		return fmt.Errorf("engine.timeout_seconds must not be negative")
	}

	if c.Transcription.Profile == "" {
		c.Transcription.Profile = ProfileLocal
	}
	if c.Transcription.Profile != ProfileLocal && c.Transcription.Profile != ProfileGCP {
		return fmt.Errorf("transcription.profile must be %q or %q", ProfileLocal, ProfileGCP)
	}
	if c.Transcription.ModelSize == "" {
		c.Transcription.ModelSize = string(models.ModelBase)
	}
	if _, err := models.ParseModelSize(c.Transcription.ModelSize); err != nil {
		return fmt.Errorf("transcription.model_size: %w", err)
	}
	if c.Transcription.Language == "" {
		c.Transcription.Language = models.LanguageAuto
	}

	if c.LLM.Endpoint == "" {
		c.LLM.Endpoint = EndpointLocal
	}
	switch c.LLM.Endpoint {
	case EndpointLocal:
		if c.LLM.BaseURL == "" {
			c.LLM.BaseURL = "http://localhost:11434/v1"
		}
	case EndpointHosted:
		if c.LLM.APIKeyEnv == "" {
			return fmt.Errorf("llm.api_key_env is required for hosted endpoint")
		}
	default:
		return fmt.Errorf("llm.endpoint must be %q or %q", EndpointLocal, EndpointHosted)
	}
	if c.LLM.Model == "" {
		c.LLM.Model = "gemma2:2b"
	}

	if c.Paths.Input == "" {
		c.Paths.Input = "data/input"
	}
	if c.Paths.Output == "" {
		c.Paths.Output = "data/output"
	}
	if c.Paths.Archived == "" {
		c.Paths.Archived = "data/archived"
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Performance.MaxConcurrent == 0 {
		c.Performance.MaxConcurrent = 1
	}

	return nil
}

// TranscriptionSettings returns the value object handed to the transcription step.
func (c *Config) TranscriptionSettings() models.TranscriptionConfig {
	size, _ := models.ParseModelSize(c.Transcription.ModelSize)
	return models.TranscriptionConfig{
		ModelSize: size,
		Language:  c.Transcription.Language,
	}
}

// LLMSettings builds the LLM connection. The hosted API key is read from the
// environment variable named by llm.api_key_env and only lives in memory.
func (c *Config) LLMSettings() (models.LLMConfig, error) {
	cfg := models.LLMConfig{Model: c.LLM.Model}

	switch c.LLM.Endpoint {
	case EndpointHosted:
		key := strings.TrimSpace(os.Getenv(c.LLM.APIKeyEnv))
		if key == "" {
			return models.LLMConfig{}, fmt.Errorf("environment variable %s is empty", c.LLM.APIKeyEnv)
		}
		cfg.Endpoint = models.HostedEndpoint{BaseURL: c.LLM.BaseURL, Key: key}
	default:
		cfg.Endpoint = models.LocalEndpoint{BaseURL: c.LLM.BaseURL}
	}

	return cfg, nil
}
