package config

import (
	"fmt"

	"github.com/caarlos0/env/v10"
)

// LLMConfig holds the completion provider settings. These come from
// the environment rather than flags so the API key stays out of
// process listings.
type LLMConfig struct {
	APIKey  string `env:"LLM_API_KEY,required,notEmpty"`
	BaseURL string `env:"LLM_BASE_URL" envDefault:"https://api.openai.com/v1"`
	Model   string `env:"LLM_MODEL" envDefault:"gpt-4o-mini"`
}

type Config struct {
	ServerAddr     string
	DatabaseDSN    string
	MigrationsURL  string
	AllowedOrigins []string
	LLM            LLMConfig
}

func NewConfig(serverAddr, databaseDSN, migrationsURL string, allowedOrigins []string) (*Config, error) {
	if serverAddr == "" {
		return nil, fmt.Errorf("server address cannot be empty")
	}
	if databaseDSN == "" {
		return nil, fmt.Errorf("database DSN cannot be empty")
	}
	if migrationsURL == "" {
		return nil, fmt.Errorf("migrations URL cannot be empty")
	}

	var llmCfg LLMConfig
	if err := env.Parse(&llmCfg); err != nil {
		return nil, fmt.Errorf("parse llm config: %w", err)
	}

	return &Config{
		ServerAddr:     serverAddr,
		DatabaseDSN:    databaseDSN,
		MigrationsURL:  migrationsURL,
		AllowedOrigins: allowedOrigins,
		LLM:            llmCfg,
	}, nil
}
