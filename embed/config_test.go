package embed

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultConfig(t *testing.T) {
	c := DefaultConfig()
	assert.NoError(t, c.Validate())
	assert.Equal(t, "http://localhost:11434/v1", c.Host)
	assert.Equal(t, "embeddinggemma", c.Model)
}

func TestConfigOptions(t *testing.T) {
	c := DefaultConfig(
		WithHost("https://api.example.com/v1"),
		WithModel("text-embedding-3-small"),
	)
	assert.Equal(t, "https://api.example.com/v1", c.Host)
	assert.Equal(t, "text-embedding-3-small", c.Model)
	assert.NoError(t, c.Validate())
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr error
	}{
		{"empty host", Config{Model: "m"}, ErrEmptyHost},
		{"bad scheme", Config{Host: "ftp://host", Model: "m"}, ErrInvalidHost},
		{"empty model", Config{Host: "http://host"}, ErrEmptyModel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.config.Validate(), tt.wantErr)
		})
	}
}
