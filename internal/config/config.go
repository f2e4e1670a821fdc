package config

import (
	"errors"
	"os"

	"gopkg.in/yaml.v3"
)

// CorpusConfig selects and configures the corpus source.
type CorpusConfig struct {
	Source   string   `yaml:"source"`
	Dataset  string   `yaml:"dataset"`
	Config   string   `yaml:"config"`
	Split    string   `yaml:"split"`
	PageSize int      `yaml:"page_size"`
	BaseURL  string   `yaml:"base_url"`
	Paths    []string `yaml:"paths"`
	DSN      string   `yaml:"dsn"`
	Table    string   `yaml:"table"`
	Column   string   `yaml:"text_column"`
	Debug    bool     `yaml:"debug"`
}

// PassageConfig controls passage acceptance.
type PassageConfig struct {
	MinChars int  `yaml:"min_chars"`
	MaxChars int  `yaml:"max_chars"`
	Dedup    bool `yaml:"dedup"`
}

// EmbedderConfig configures the embedding model client.
type EmbedderConfig struct {
	Provider  string `yaml:"provider"`
	BaseURL   string `yaml:"base_url"`
	Model     string `yaml:"model"`
	APIKey    string `yaml:"api_key"`
	BatchSize int    `yaml:"batch_size"`
	Dimension int    `yaml:"dimension"`
}

// OutputConfig names the artifact files.
type OutputConfig struct {
	Dir            string `yaml:"dir"`
	PassagesFile   string `yaml:"passages_file"`
	IDsFile        string `yaml:"ids_file"`
	EmbeddingsFile string `yaml:"embeddings_file"`
	QueryFile      string `yaml:"query_file"`
}

// ExportConfig configures the model export path.
type ExportConfig struct {
	HubBaseURL string `yaml:"hub_base_url"`
	ModelRepo  string `yaml:"model_repo"`
	OutputFile string `yaml:"output_file"`
}

type Config struct {
	Corpus   CorpusConfig   `yaml:"corpus"`
	Passage  PassageConfig  `yaml:"passage"`
	Limit    int            `yaml:"limit"`
	Embedder EmbedderConfig `yaml:"embedder"`
	Output   OutputConfig   `yaml:"output"`
	Export   ExportConfig   `yaml:"export"`
}

// LoadConfig reads the config from path. A missing file yields defaults so
// the query and export tools work without any configuration on disk.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			cfg := &Config{}
			applyDefaults(cfg)
			return cfg, nil
		}
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	applyDefaults(&cfg)
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Corpus.Source == "" {
		cfg.Corpus.Source = "huggingface"
	}
	if cfg.Corpus.Dataset == "" {
		cfg.Corpus.Dataset = "openwebtext"
	}
	if cfg.Corpus.Split == "" {
		cfg.Corpus.Split = "train"
	}
	if cfg.Corpus.PageSize == 0 {
		cfg.Corpus.PageSize = 100
	}
	if cfg.Corpus.BaseURL == "" {
		cfg.Corpus.BaseURL = "https://datasets-server.huggingface.co"
	}
	if cfg.Corpus.Table == "" {
		cfg.Corpus.Table = "documents"
	}
	if cfg.Corpus.Column == "" {
		cfg.Corpus.Column = "content"
	}
	if cfg.Passage.MinChars == 0 {
		cfg.Passage.MinChars = 40
	}
	if cfg.Limit == 0 {
		cfg.Limit = 200000
	}
	if cfg.Embedder.Provider == "" {
		cfg.Embedder.Provider = "ollama"
	}
	if cfg.Embedder.BaseURL == "" && cfg.Embedder.Provider == "ollama" {
		cfg.Embedder.BaseURL = "http://localhost:11434"
	}
	if cfg.Embedder.Model == "" {
		cfg.Embedder.Model = "all-minilm"
	}
	if cfg.Embedder.BatchSize == 0 {
		cfg.Embedder.BatchSize = 128
	}
	if cfg.Output.Dir == "" {
		cfg.Output.Dir = "."
	}
	if cfg.Output.PassagesFile == "" {
		cfg.Output.PassagesFile = "passages.txt"
	}
	if cfg.Output.IDsFile == "" {
		cfg.Output.IDsFile = "ids.bin"
	}
	if cfg.Output.EmbeddingsFile == "" {
		cfg.Output.EmbeddingsFile = "embeddings.bin"
	}
	if cfg.Output.QueryFile == "" {
		cfg.Output.QueryFile = "query.bin"
	}
	if cfg.Export.HubBaseURL == "" {
		cfg.Export.HubBaseURL = "https://huggingface.co"
	}
	if cfg.Export.ModelRepo == "" {
		cfg.Export.ModelRepo = "sentence-transformers/all-MiniLM-L6-v2"
	}
	if cfg.Export.OutputFile == "" {
		cfg.Export.OutputFile = "sbert.onnx"
	}
}
