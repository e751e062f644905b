// Package ai provides factory functions for creating AI service adapters.
package ai

import (
	"fmt"

	ollamaembed "github.com/custodia-labs/corpus-cli/internal/adapters/driven/embedding/ollama"
	openaiembed "github.com/custodia-labs/corpus-cli/internal/adapters/driven/embedding/openai"
	ollamallm "github.com/custodia-labs/corpus-cli/internal/adapters/driven/llm/ollama"
	openaillm "github.com/custodia-labs/corpus-cli/internal/adapters/driven/llm/openai"
	openaitranscribe "github.com/custodia-labs/corpus-cli/internal/adapters/driven/transcription/openai"
	"github.com/custodia-labs/corpus-cli/internal/core/domain"
	"github.com/custodia-labs/corpus-cli/internal/core/ports/driven"
)

// CreateEmbeddingService creates the appropriate embedding service
// based on settings. Returns nil if the provider is not configured.
func CreateEmbeddingService(settings domain.ProviderSettings, requestsPerSecond float64) (driven.EmbeddingService, error) {
	if !settings.IsConfigured() {
		return nil, nil
	}

	switch settings.Provider {
	case domain.AIProviderOllama:
		return ollamaembed.NewEmbeddingService(ollamaembed.Config{
			BaseURL:    settings.BaseURL,
			Model:      settings.Model,
			Timeout:    settings.Timeout,
			Dimensions: settings.Dimensions,
		}), nil

	case domain.AIProviderOpenAI:
		return openaiembed.NewEmbeddingService(openaiembed.Config{
			APIKey:            settings.APIKey,
			BaseURL:           settings.BaseURL,
			Model:             settings.Model,
			Timeout:           settings.Timeout,
			Dimensions:        settings.Dimensions,
			RequestsPerSecond: requestsPerSecond,
		})

	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", settings.Provider)
	}
}

// CreateLLMService creates the appropriate LLM service based on
// settings. Returns nil if the provider is not configured.
func CreateLLMService(settings domain.ProviderSettings) (driven.LLMService, error) {
	if !settings.IsConfigured() {
		return nil, nil
	}

	switch settings.Provider {
	case domain.AIProviderOllama:
		return ollamallm.NewLLMService(ollamallm.Config{
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
			Timeout: settings.Timeout,
		}), nil

	case domain.AIProviderOpenAI:
		return openaillm.NewLLMService(openaillm.Config{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
			Timeout: settings.Timeout,
		})

	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", settings.Provider)
	}
}

// CreateTranscriber creates the appropriate transcription service based
// on settings. Returns nil if the provider is not configured; only
// OpenAI offers hosted transcription.
func CreateTranscriber(settings domain.ProviderSettings) (driven.Transcriber, error) {
	if !settings.IsConfigured() {
		return nil, nil
	}

	switch settings.Provider {
	case domain.AIProviderOpenAI:
		return openaitranscribe.NewTranscriber(openaitranscribe.Config{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
			Timeout: settings.Timeout,
		})

	case domain.AIProviderOllama:
		return nil, fmt.Errorf("ollama does not offer transcription, use openai")

	default:
		return nil, fmt.Errorf("unsupported transcription provider: %s", settings.Provider)
	}
}
