package models

import "github.com/frankx-ai/frankx/pkg/config"

const defaultModelID = "openai/gpt-4o-mini"

// defaultCatalog is the compiled-in model catalog, used when no catalog
// file is configured.
var defaultCatalog = []Descriptor{
	{
		ID:            "openai/gpt-4o-mini",
		Name:          "GPT-4o mini",
		Provider:      config.ProviderOpenAI,
		ContextWindow: 128000,
		CostPer1K:     0.00038,
		Tags:          []string{"chat", "cheap", "fast"},
		Description:   "Default workhorse for conversational traffic.",
	},
	{
		ID:            "openai/gpt-4o",
		Name:          "GPT-4o",
		Provider:      config.ProviderOpenAI,
		ContextWindow: 128000,
		CostPer1K:     0.0075,
		Tags:          []string{"chat", "reasoning", "vision"},
		Description:   "Stronger generalist for complex asks.",
	},
	{
		ID:            "anthropic/claude-sonnet-4",
		Name:          "Claude Sonnet 4",
		Provider:      config.ProviderAnthropic,
		ContextWindow: 200000,
		CostPer1K:     0.009,
		Tags:          []string{"chat", "reasoning", "writing", "longform"},
		Description:   "Long-context writing and strategy work.",
	},
	{
		ID:            "anthropic/claude-haiku-3-5",
		Name:          "Claude Haiku 3.5",
		Provider:      config.ProviderAnthropic,
		ContextWindow: 200000,
		CostPer1K:     0.0024,
		Tags:          []string{"chat", "cheap", "fast"},
		Description:   "Low-latency option for short exchanges.",
	},
	{
		ID:            "openrouter/meta-llama/llama-3.1-70b-instruct",
		Name:          "Llama 3.1 70B Instruct",
		Provider:      config.ProviderOpenRouter,
		ContextWindow: 131072,
		CostPer1K:     0.0009,
		Tags:          []string{"chat", "open-weights"},
		Description:   "Open-weights fallback routed through OpenRouter.",
	},
	{
		ID:            "openrouter/mistralai/mistral-large",
		Name:          "Mistral Large",
		Provider:      config.ProviderOpenRouter,
		ContextWindow: 128000,
		CostPer1K:     0.006,
		Tags:          []string{"chat", "coding"},
		Description:   "Coding-leaning alternative via OpenRouter.",
	},
}
