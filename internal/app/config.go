package app

import (
	"errors"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

type Config struct {
	BaseURL           string   `yaml:"base_url"`
	RequestTimeoutSec int      `yaml:"request_timeout_seconds"`
	AllowedExtensions []string `yaml:"allowed_extensions"`
	DataDir           string   `yaml:"data_dir"`
	LogFile           string   `yaml:"log_file"`
}

func DefaultConfig() Config {
	dataDir := defaultDataDir()
	return Config{
		BaseURL:           "http://localhost:8000",
		RequestTimeoutSec: 60,
		AllowedExtensions: []string{".pdf", ".doc", ".docx", ".txt", ".md"},
		DataDir:           dataDir,
		LogFile:           filepath.Join(dataDir, "docchat.log"),
	}
}

func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "http://localhost:8000"
	}
	if cfg.RequestTimeoutSec <= 0 {
		cfg.RequestTimeoutSec = 60
	}
	if len(cfg.AllowedExtensions) == 0 {
		cfg.AllowedExtensions = []string{".pdf", ".doc", ".docx", ".txt", ".md"}
	}
	if cfg.DataDir == "" {
		cfg.DataDir = defaultDataDir()
	}
	if cfg.LogFile == "" {
		cfg.LogFile = filepath.Join(cfg.DataDir, "docchat.log")
	}
	return cfg, nil
}

func SaveConfig(cfg Config, path string) error {
	if path == "" {
		return errors.New("no path provided for config")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func DefaultConfigPath() string {
	base, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(base, "docchat", "config.yml")
}

// CredentialPath is where the sqlite credential store lives.
func (c Config) CredentialPath() string {
	return filepath.Join(c.DataDir, "credentials.db")
}

func defaultDataDir() string {
	base, err := os.UserConfigDir()
	if err != nil {
		return "."
	}
	return filepath.Join(base, "docchat")
}
