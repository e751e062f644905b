package domain

import "time"

const unknownDescription = "Unknown"

// AIProvider identifies an AI service provider for embeddings, LLM or
// transcription.
type AIProvider string

// Available AI providers.
const (
	// AIProviderOllama is a local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is the OpenAI cloud API.
	AIProviderOpenAI AIProvider = "openai"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	return p == AIProviderOllama || p == AIProviderOpenAI
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	default:
		return unknownDescription
	}
}

// ChunkerSettings holds chunking configuration.
type ChunkerSettings struct {
	// Size is the maximum chunk size in bytes.
	Size int

	// Overlap is how many trailing bytes each chunk repeats from its
	// predecessor.
	Overlap int

	// MinSize is the minimum viable chunk size; a smaller trailing chunk
	// merges into its predecessor.
	MinSize int

	// Tolerance is how far before the hard limit the chunker looks for a
	// section or sentence boundary.
	Tolerance int
}

// RetrievalSettings holds retrieval behaviour configuration.
type RetrievalSettings struct {
	// DefaultK is the result count used when the caller asks for none.
	DefaultK int

	// MaxK caps the caller-requested result count to bound prompt size.
	MaxK int

	// Metric selects the vector similarity metric.
	Metric SimilarityMetric

	// RerankBoost scales the lexical-overlap boost added during rerank.
	// Zero disables reranking.
	RerankBoost float64
}

// GenerationSettings holds answer generation configuration.
type GenerationSettings struct {
	// MaxAttempts bounds generation retries (total attempts, not retries).
	MaxAttempts int

	// ContextBudget is the maximum characters of chunk text in a prompt.
	ContextBudget int

	// MaxTokens limits the generated completion length.
	MaxTokens int

	// Temperature controls sampling randomness.
	Temperature float64

	// Timeout is the per-request generation timeout.
	Timeout time.Duration
}

// ProviderSettings holds connection settings for one AI service.
type ProviderSettings struct {
	// Provider selects the service implementation.
	Provider AIProvider

	// Model is the model name.
	Model string

	// BaseURL is the API endpoint (used for Ollama and compatible APIs).
	BaseURL string

	// APIKey is the API key (for OpenAI).
	APIKey string

	// Timeout is the per-request timeout.
	Timeout time.Duration

	// Dimensions overrides the embedding vector size for models whose
	// dimensionality the adapter cannot infer. Zero means the adapter's
	// model default. Only meaningful for embedding providers.
	Dimensions int
}

// IsConfigured returns true if the provider is usable.
func (s ProviderSettings) IsConfigured() bool {
	if !s.Provider.IsValid() {
		return false
	}
	if s.Provider.RequiresAPIKey() && s.APIKey == "" {
		return false
	}
	return true
}

// ExtractionSettings holds extraction pool and external tool configuration.
type ExtractionSettings struct {
	// Workers is the number of concurrent extraction slots.
	Workers int

	// QueueDepth is how many extractions may wait for a slot before new
	// ingestion requests are rejected as overloaded.
	QueueDepth int

	// Timeout is the per-call budget for each external extraction step.
	Timeout time.Duration

	// FFmpegPath locates the ffmpeg binary.
	FFmpegPath string

	// Language is an optional transcription language hint.
	Language string
}

// Settings holds all application settings. Every pipeline knob lives
// here with a default; nothing is a hard-coded constant.
type Settings struct {
	// DataDir is the root directory for local state.
	DataDir string

	// Chunker holds chunking settings.
	Chunker ChunkerSettings

	// Retrieval holds retrieval settings.
	Retrieval RetrievalSettings

	// Generation holds generation settings.
	Generation GenerationSettings

	// Embedding holds embedding provider settings.
	Embedding ProviderSettings

	// LLM holds generation provider settings.
	LLM ProviderSettings

	// Transcription holds transcription provider settings.
	Transcription ProviderSettings

	// Extraction holds extraction pool settings.
	Extraction ExtractionSettings

	// EmbedRequestsPerSecond rate-limits embedding API calls.
	EmbedRequestsPerSecond float64
}

// DefaultSettings returns settings with sensible defaults.
// AI providers are left unconfigured; users set them up in config.toml.
func DefaultSettings() Settings {
	return Settings{
		Chunker: ChunkerSettings{
			Size:      1000,
			Overlap:   100,
			MinSize:   200,
			Tolerance: 200,
		},
		Retrieval: RetrievalSettings{
			DefaultK:    5,
			MaxK:        20,
			Metric:      MetricCosine,
			RerankBoost: 0.1,
		},
		Generation: GenerationSettings{
			MaxAttempts:   3,
			ContextBudget: 6000,
			MaxTokens:     1024,
			Temperature:   0.2,
			Timeout:       120 * time.Second,
		},
		Embedding: ProviderSettings{
			Timeout: 60 * time.Second,
		},
		LLM: ProviderSettings{
			Timeout: 120 * time.Second,
		},
		Transcription: ProviderSettings{
			Timeout: 300 * time.Second,
		},
		Extraction: ExtractionSettings{
			Workers:    4,
			QueueDepth: 16,
			Timeout:    120 * time.Second,
			FFmpegPath: "ffmpeg",
		},
		EmbedRequestsPerSecond: 5.0,
	}
}
