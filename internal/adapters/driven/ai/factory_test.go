package ai

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/corpus-cli/internal/core/domain"
)

func TestCreateEmbeddingService_Unconfigured(t *testing.T) {
	svc, err := CreateEmbeddingService(domain.ProviderSettings{}, 5)

	require.NoError(t, err)
	assert.Nil(t, svc)
}

func TestCreateEmbeddingService_OllamaUsesConfiguredDimensions(t *testing.T) {
	svc, err := CreateEmbeddingService(domain.ProviderSettings{
		Provider:   domain.AIProviderOllama,
		Model:      "mxbai-embed-large",
		BaseURL:    "http://localhost:11434",
		Timeout:    30 * time.Second,
		Dimensions: 1024,
	}, 5)

	require.NoError(t, err)
	require.NotNil(t, svc)
	assert.Equal(t, 1024, svc.Dimensions())
	assert.Equal(t, "mxbai-embed-large", svc.ModelName())
}

func TestCreateEmbeddingService_OllamaDefaultDimensions(t *testing.T) {
	svc, err := CreateEmbeddingService(domain.ProviderSettings{
		Provider: domain.AIProviderOllama,
		Model:    "nomic-embed-text",
	}, 5)

	require.NoError(t, err)
	require.NotNil(t, svc)
	assert.Equal(t, 768, svc.Dimensions())
}

func TestCreateTranscriber_OllamaUnsupported(t *testing.T) {
	_, err := CreateTranscriber(domain.ProviderSettings{
		Provider: domain.AIProviderOllama,
		Model:    "whisper",
	})

	assert.Error(t, err)
}
