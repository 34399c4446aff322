package config

import (
	"errors"
	"fmt"

	"github.com/baotran/ragchat-be/types"

	"github.com/spf13/viper"
)

type EmbeddingConfig struct {
	Provider    string `mapstructure:"provider"`
	Model       string `mapstructure:"model"`
	BaseURL     string `mapstructure:"base_url"`
	APIKey      string `mapstructure:"api_key"`
	Dimension   int    `mapstructure:"dimension"`
	TimeoutSecs int    `mapstructure:"timeout_secs"`
}

type GenerationConfig struct {
	Provider    string `mapstructure:"provider"`
	Model       string `mapstructure:"model"`
	BaseURL     string `mapstructure:"base_url"`
	APIKey      string `mapstructure:"api_key"`
	TimeoutSecs int    `mapstructure:"timeout_secs"`
}

type WeaviateConfig struct {
	Host   string `mapstructure:"host"`
	APIKey string `mapstructure:"api_key"`
}

type VectorIndexConfig struct {
	Backend  string         `mapstructure:"backend"`
	Path     string         `mapstructure:"path"`
	Weaviate WeaviateConfig `mapstructure:"weaviate"`
}

type IngestConfig struct {
	CorpusDir string   `mapstructure:"corpus_dir"`
	Includes  []string `mapstructure:"includes"`
	Excludes  []string `mapstructure:"excludes"`
	ChunkSize int      `mapstructure:"chunk_size"`
	Overlap   int      `mapstructure:"overlap"`
}

type QueryConfig struct {
	TopK            int     `mapstructure:"top_k"`
	ContextSize     int     `mapstructure:"context_size"`
	MaxContextChars int     `mapstructure:"max_context_chars"`
	MMRLambda       float64 `mapstructure:"mmr_lambda"`
}

type Config struct {
	Port          string            `mapstructure:"port"`
	MongoURI      string            `mapstructure:"mongo_uri"`
	MongoDatabase string            `mapstructure:"mongo_database"`
	Embedding     EmbeddingConfig   `mapstructure:"embedding"`
	Generation    GenerationConfig  `mapstructure:"generation"`
	VectorIndex   VectorIndexConfig `mapstructure:"vector_index"`
	Ingest        IngestConfig      `mapstructure:"ingest"`
	Query         QueryConfig       `mapstructure:"query"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", "8888")
	v.SetDefault("mongo_database", "ragchat")

	v.SetDefault("embedding.provider", "openai")
	v.SetDefault("embedding.model", "text-embedding-3-small")
	v.SetDefault("embedding.dimension", 1536)
	v.SetDefault("embedding.timeout_secs", 30)

	v.SetDefault("generation.provider", "openai")
	v.SetDefault("generation.model", "gpt-4o-mini")
	v.SetDefault("generation.timeout_secs", 30)

	v.SetDefault("vector_index.backend", "bolt")
	v.SetDefault("vector_index.path", "data/index.db")

	v.SetDefault("ingest.corpus_dir", "data/corpus")
	v.SetDefault("ingest.chunk_size", types.DefaultChunkerConfig.ChunkSize)
	v.SetDefault("ingest.overlap", types.DefaultChunkerConfig.Overlap)

	v.SetDefault("query.top_k", 6)
	v.SetDefault("query.context_size", 3)
	v.SetDefault("query.max_context_chars", 4000)
	v.SetDefault("query.mmr_lambda", 0.7)
}

// Load reads the config file if present and overlays environment variables.
// API keys come from the environment only.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	_ = v.BindEnv("mongo_uri", "MONGODB_URI")
	_ = v.BindEnv("embedding.api_key", "OPENAI_API_KEY")
	_ = v.BindEnv("generation.api_key", "OPENAI_API_KEY")
	_ = v.BindEnv("vector_index.weaviate.api_key", "WEAVIATE_APIKEY")
	if v.GetString("embedding.provider") == "gemini" {
		_ = v.BindEnv("embedding.api_key", "GOOGLE_API_KEY")
	}
	if v.GetString("generation.provider") == "gemini" {
		_ = v.BindEnv("generation.api_key", "GOOGLE_API_KEY")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &cfg, nil
}
