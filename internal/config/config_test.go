package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewConfig(t *testing.T) {
	var (
		addr       = "localhost:8080"
		dsn        = "host=localhost user=postgres password=postgres dbname=postgres sslmode=disable"
		migrations = "file://migrations"
		orig       = []string{"http://localhost:3000"}
	)

	tcases := []struct {
		name       string
		addr       string
		dsn        string
		migrations string
		orig       []string
		apiKey     string
		err        bool
	}{
		{
			name:       "valid config",
			addr:       addr,
			dsn:        dsn,
			migrations: migrations,
			orig:       orig,
			apiKey:     "test-key",
			err:        false,
		},
		{
			name:       "empty address",
			addr:       "",
			dsn:        dsn,
			migrations: migrations,
			orig:       orig,
			apiKey:     "test-key",
			err:        true,
		},
		{
			name:       "empty DSN",
			addr:       addr,
			dsn:        "",
			migrations: migrations,
			orig:       orig,
			apiKey:     "test-key",
			err:        true,
		},
		{
			name:       "empty migrations URL",
			addr:       addr,
			dsn:        dsn,
			migrations: "",
			orig:       orig,
			apiKey:     "test-key",
			err:        true,
		},
		{
			name:       "missing LLM API key",
			addr:       addr,
			dsn:        dsn,
			migrations: migrations,
			orig:       orig,
			apiKey:     "",
			err:        true,
		},
	}

	for _, tc := range tcases {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv("LLM_API_KEY", tc.apiKey)

			config, err := NewConfig(tc.addr, tc.dsn, tc.migrations, tc.orig)
			if tc.err {
				assert.Error(t, err, "expected error for config: %s", tc.name)
				return
			}
			assert.NoError(t, err, "expected no error for config: %s", tc.name)

			assert.Equal(t, tc.addr, config.ServerAddr, "expected server address to match")
			assert.Equal(t, tc.dsn, config.DatabaseDSN, "expected database DSN to match")
			assert.Equal(t, tc.migrations, config.MigrationsURL, "expected migrations URL to match")
			assert.Equal(t, tc.orig, config.AllowedOrigins, "expected allowed origins to match")
			assert.Equal(t, tc.apiKey, config.LLM.APIKey, "expected API key from environment")
			assert.Equal(t, "https://api.openai.com/v1", config.LLM.BaseURL, "expected default base URL")
			assert.NotEmpty(t, config.LLM.Model, "expected default model")
		})
	}
}

func TestNewConfig_LLMOverrides(t *testing.T) {
	t.Setenv("LLM_API_KEY", "test-key")
	t.Setenv("LLM_BASE_URL", "http://localhost:9999/v1")
	t.Setenv("LLM_MODEL", "test-model")

	config, err := NewConfig("localhost:8080", "dsn", "file://migrations", nil)
	assert.NoError(t, err)
	assert.Equal(t, "http://localhost:9999/v1", config.LLM.BaseURL)
	assert.Equal(t, "test-model", config.LLM.Model)
}
