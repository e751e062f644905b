// Package file loads and persists application settings as a TOML file
// in the corpus config directory.
package file

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/custodia-labs/corpus-cli/internal/core/domain"
)

// fileSettings is the on-disk TOML layout. Durations are written as
// strings ("120s") so the file stays hand-editable.
type fileSettings struct {
	DataDir                string  `toml:"data_dir,omitempty"`
	EmbedRequestsPerSecond float64 `toml:"embed_requests_per_second,omitempty"`

	Chunker struct {
		Size      int `toml:"size,omitempty"`
		Overlap   int `toml:"overlap,omitempty"`
		MinSize   int `toml:"min_size,omitempty"`
		Tolerance int `toml:"tolerance,omitempty"`
	} `toml:"chunker"`

	Retrieval struct {
		DefaultK    int     `toml:"default_k,omitempty"`
		MaxK        int     `toml:"max_k,omitempty"`
		Metric      string  `toml:"metric,omitempty"`
		RerankBoost float64 `toml:"rerank_boost,omitempty"`
	} `toml:"retrieval"`

	Generation struct {
		MaxAttempts   int     `toml:"max_attempts,omitempty"`
		ContextBudget int     `toml:"context_budget,omitempty"`
		MaxTokens     int     `toml:"max_tokens,omitempty"`
		Temperature   float64 `toml:"temperature,omitempty"`
		Timeout       string  `toml:"timeout,omitempty"`
	} `toml:"generation"`

	Embedding     providerSection `toml:"embedding"`
	LLM           providerSection `toml:"llm"`
	Transcription providerSection `toml:"transcription"`

	Extraction struct {
		Workers    int    `toml:"workers,omitempty"`
		QueueDepth int    `toml:"queue_depth,omitempty"`
		Timeout    string `toml:"timeout,omitempty"`
		FFmpegPath string `toml:"ffmpeg_path,omitempty"`
		Language   string `toml:"language,omitempty"`
	} `toml:"extraction"`
}

// providerSection is the TOML layout of one AI provider.
type providerSection struct {
	Provider   string `toml:"provider,omitempty"`
	Model      string `toml:"model,omitempty"`
	BaseURL    string `toml:"base_url,omitempty"`
	APIKey     string `toml:"api_key,omitempty"`
	Timeout    string `toml:"timeout,omitempty"`
	Dimensions int    `toml:"dimensions,omitempty"`
}

// SettingsStore reads and writes settings at a fixed path.
type SettingsStore struct {
	filePath string
}

// NewSettingsStore creates a settings store. If configDir is empty,
// defaults to ~/.corpus.
func NewSettingsStore(configDir string) (*SettingsStore, error) {
	if configDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		configDir = filepath.Join(home, ".corpus")
	}

	// Ensure directory exists
	if err := os.MkdirAll(configDir, 0700); err != nil {
		return nil, err
	}

	return &SettingsStore{
		filePath: filepath.Join(configDir, "config.toml"),
	}, nil
}

// Path returns the configuration file path.
func (s *SettingsStore) Path() string {
	return s.filePath
}

// Load reads settings from disk, layered over defaults. A missing file
// yields the defaults.
func (s *SettingsStore) Load() (domain.Settings, error) {
	settings := domain.DefaultSettings()

	data, err := os.ReadFile(s.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return settings, nil
		}
		return settings, fmt.Errorf("reading config: %w", err)
	}

	var fs fileSettings
	if err := toml.Unmarshal(data, &fs); err != nil {
		return settings, fmt.Errorf("parsing config: %w", err)
	}

	applyFileSettings(&settings, &fs)
	return settings, nil
}

// Save persists settings to disk with restricted permissions.
func (s *SettingsStore) Save(settings domain.Settings) error {
	fs := toFileSettings(settings)

	data, err := toml.Marshal(fs)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}

	return os.WriteFile(s.filePath, data, 0600)
}

// applyFileSettings overlays non-zero file values onto settings.
//
//nolint:gocyclo // Field-by-field overlay is flat and mechanical
func applyFileSettings(settings *domain.Settings, fs *fileSettings) {
	if fs.DataDir != "" {
		settings.DataDir = fs.DataDir
	}
	if fs.EmbedRequestsPerSecond > 0 {
		settings.EmbedRequestsPerSecond = fs.EmbedRequestsPerSecond
	}

	if fs.Chunker.Size > 0 {
		settings.Chunker.Size = fs.Chunker.Size
	}
	if fs.Chunker.Overlap > 0 {
		settings.Chunker.Overlap = fs.Chunker.Overlap
	}
	if fs.Chunker.MinSize > 0 {
		settings.Chunker.MinSize = fs.Chunker.MinSize
	}
	if fs.Chunker.Tolerance > 0 {
		settings.Chunker.Tolerance = fs.Chunker.Tolerance
	}

	if fs.Retrieval.DefaultK > 0 {
		settings.Retrieval.DefaultK = fs.Retrieval.DefaultK
	}
	if fs.Retrieval.MaxK > 0 {
		settings.Retrieval.MaxK = fs.Retrieval.MaxK
	}
	if metric := domain.SimilarityMetric(fs.Retrieval.Metric); metric.IsValid() {
		settings.Retrieval.Metric = metric
	}
	if fs.Retrieval.RerankBoost > 0 {
		settings.Retrieval.RerankBoost = fs.Retrieval.RerankBoost
	}

	if fs.Generation.MaxAttempts > 0 {
		settings.Generation.MaxAttempts = fs.Generation.MaxAttempts
	}
	if fs.Generation.ContextBudget > 0 {
		settings.Generation.ContextBudget = fs.Generation.ContextBudget
	}
	if fs.Generation.MaxTokens > 0 {
		settings.Generation.MaxTokens = fs.Generation.MaxTokens
	}
	if fs.Generation.Temperature > 0 {
		settings.Generation.Temperature = fs.Generation.Temperature
	}
	if d := parseDuration(fs.Generation.Timeout); d > 0 {
		settings.Generation.Timeout = d
	}

	applyProvider(&settings.Embedding, fs.Embedding)
	applyProvider(&settings.LLM, fs.LLM)
	applyProvider(&settings.Transcription, fs.Transcription)

	if fs.Extraction.Workers > 0 {
		settings.Extraction.Workers = fs.Extraction.Workers
	}
	if fs.Extraction.QueueDepth > 0 {
		settings.Extraction.QueueDepth = fs.Extraction.QueueDepth
	}
	if d := parseDuration(fs.Extraction.Timeout); d > 0 {
		settings.Extraction.Timeout = d
	}
	if fs.Extraction.FFmpegPath != "" {
		settings.Extraction.FFmpegPath = fs.Extraction.FFmpegPath
	}
	if fs.Extraction.Language != "" {
		settings.Extraction.Language = fs.Extraction.Language
	}
}

func applyProvider(target *domain.ProviderSettings, section providerSection) {
	if section.Provider != "" {
		target.Provider = domain.AIProvider(section.Provider)
	}
	if section.Model != "" {
		target.Model = section.Model
	}
	if section.BaseURL != "" {
		target.BaseURL = section.BaseURL
	}
	if section.APIKey != "" {
		target.APIKey = section.APIKey
	}
	if d := parseDuration(section.Timeout); d > 0 {
		target.Timeout = d
	}
	if section.Dimensions > 0 {
		target.Dimensions = section.Dimensions
	}
}

func toFileSettings(settings domain.Settings) fileSettings {
	var fs fileSettings
	fs.DataDir = settings.DataDir
	fs.EmbedRequestsPerSecond = settings.EmbedRequestsPerSecond

	fs.Chunker.Size = settings.Chunker.Size
	fs.Chunker.Overlap = settings.Chunker.Overlap
	fs.Chunker.MinSize = settings.Chunker.MinSize
	fs.Chunker.Tolerance = settings.Chunker.Tolerance

	fs.Retrieval.DefaultK = settings.Retrieval.DefaultK
	fs.Retrieval.MaxK = settings.Retrieval.MaxK
	fs.Retrieval.Metric = settings.Retrieval.Metric.String()
	fs.Retrieval.RerankBoost = settings.Retrieval.RerankBoost

	fs.Generation.MaxAttempts = settings.Generation.MaxAttempts
	fs.Generation.ContextBudget = settings.Generation.ContextBudget
	fs.Generation.MaxTokens = settings.Generation.MaxTokens
	fs.Generation.Temperature = settings.Generation.Temperature
	fs.Generation.Timeout = settings.Generation.Timeout.String()

	fs.Embedding = toProviderSection(settings.Embedding)
	fs.LLM = toProviderSection(settings.LLM)
	fs.Transcription = toProviderSection(settings.Transcription)

	fs.Extraction.Workers = settings.Extraction.Workers
	fs.Extraction.QueueDepth = settings.Extraction.QueueDepth
	fs.Extraction.Timeout = settings.Extraction.Timeout.String()
	fs.Extraction.FFmpegPath = settings.Extraction.FFmpegPath
	fs.Extraction.Language = settings.Extraction.Language

	return fs
}

func toProviderSection(p domain.ProviderSettings) providerSection {
	section := providerSection{
		Provider:   p.Provider.String(),
		Model:      p.Model,
		BaseURL:    p.BaseURL,
		APIKey:     p.APIKey,
		Dimensions: p.Dimensions,
	}
	if p.Timeout > 0 {
		section.Timeout = p.Timeout.String()
	}
	return section
}

func parseDuration(s string) time.Duration {
	if s == "" {
		return 0
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0
	}
	return d
}
