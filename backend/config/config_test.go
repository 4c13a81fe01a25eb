package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfigReadsEnvironment(t *testing.T) {
	t.Setenv("DB_NAME", "aicademy_test")
	t.Setenv("JWT_SECRET", "testsecret")
	t.Setenv("OPENAI_MODEL", "gpt-4o-mini")
	t.Setenv("GENERATION_TIMEOUT", "10")

	cfg, err := LoadConfig()
	assert.NoError(t, err)
	assert.Equal(t, "aicademy_test", cfg.DBName)
	assert.Equal(t, "testsecret", cfg.JWTSecret)
	assert.Equal(t, "gpt-4o-mini", cfg.OpenAIModel)
	assert.Equal(t, 10, cfg.GenerationTimeout)
}

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("GENERATION_TIMEOUT", "not-a-number")

	cfg, err := LoadConfig()
	assert.NoError(t, err)
	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, "https://api.openai.com/v1", cfg.OpenAIBaseURL)
	// Непарсящийся таймаут откатывается к значению по умолчанию.
	assert.Equal(t, 45, cfg.GenerationTimeout)
}
