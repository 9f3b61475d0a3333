package main

import (
	"fmt"

	"github.com/Veraticus/retail-insights/internal/common"
	"github.com/Veraticus/retail-insights/internal/config"
	"github.com/Veraticus/retail-insights/internal/llm"
)

// createLLMClient creates an LLM client for the configured provider.
func createLLMClient(cfg *config.Config) (llm.Client, error) {
	clientCfg := cfg.LLMClientConfig()

	if clientCfg.APIKey == "" {
		switch cfg.LLM.Provider {
		case llm.ProviderOpenAI:
			return nil, common.NewUserError("OpenAI API key not found in config or OPENAI_API_KEY environment variable", common.ErrMissingConfig)
		case llm.ProviderAnthropic:
			return nil, common.NewUserError("Anthropic API key not found in config or ANTHROPIC_API_KEY environment variable", common.ErrMissingConfig)
		}
	}

	client, err := llm.NewClient(clientCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create LLM client: %w", err)
	}
	return client, nil
}
