package config

import (
	"os"
	"time"
)

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Storage.DatabasePath == "" {
		cfg.Storage.DatabasePath = "/usr/local/var/asistan/data/asistan.db"
	}
	if cfg.LLM.Provider == "" {
		cfg.LLM.Provider = "genai"
	}
	if cfg.LLM.Model == "" {
		switch cfg.LLM.Provider {
		case "ollama":
			cfg.LLM.Model = "llama3.1"
		default:
			cfg.LLM.Model = "gemini-2.0-flash"
		}
	}
	if cfg.LLM.APIKey == "" {
		cfg.LLM.APIKey = os.Getenv("GEMINI_API_KEY")
	}
	if cfg.LLM.APIKey == "" {
		cfg.LLM.APIKey = os.Getenv("GOOGLE_API_KEY")
	}
	if cfg.LLM.BaseURL == "" && cfg.LLM.Provider == "ollama" {
		cfg.LLM.BaseURL = "http://localhost:11434"
	}
	if cfg.LLM.Timeout == 0 {
		cfg.LLM.Timeout = 60 * time.Second
	}
	if cfg.Redis.StateTTL == 0 {
		cfg.Redis.StateTTL = 24 * time.Hour
	}
	if cfg.Resolver.DetailCap == 0 {
		cfg.Resolver.DetailCap = 5
	}
	if cfg.Resolver.ClinicListCap == 0 {
		cfg.Resolver.ClinicListCap = 10
	}
	if cfg.Resolver.ListCap == 0 {
		cfg.Resolver.ListCap = 15
	}
	if cfg.Resolver.DefaultWindowDays == 0 {
		cfg.Resolver.DefaultWindowDays = 7
	}
	if cfg.Assistant.Name == "" {
		cfg.Assistant.Name = "Asistan"
	}
	if cfg.Assistant.CompanyName == "" {
		cfg.Assistant.CompanyName = "şirketimiz"
	}
}

// Default returns a config with all defaults applied.
func Default() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}
