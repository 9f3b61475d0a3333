package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClient(t *testing.T) {
	tests := []struct {
		name     string
		config   Config
		wantType any
		wantErr  bool
	}{
		{name: "default is ollama", config: Config{}, wantType: &ollamaClient{}},
		{name: "ollama", config: Config{Provider: "Ollama"}, wantType: &ollamaClient{}},
		{name: "openai", config: Config{Provider: "openai", APIKey: "k"}, wantType: &openAIClient{}},
		{name: "anthropic", config: Config{Provider: "anthropic", APIKey: "k"}, wantType: &anthropicClient{}},
		{name: "openai without key", config: Config{Provider: "openai"}, wantErr: true},
		{name: "unknown", config: Config{Provider: "bard"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := NewClient(tt.config)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.IsType(t, tt.wantType, client)
		})
	}
}
