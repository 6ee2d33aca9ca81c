package config

import (
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"time"
)

// Config is the top-level configuration structure.
type Config struct {
	Server     ServerConfig     `json:"server"`
	Being      BeingConfig      `json:"being"`
	Activities ActivitiesConfig `json:"activities"`
	Providers  []ProviderConfig `json:"providers"`
	Skills     SkillsConfig     `json:"skills"`
	Journal    JournalConfig    `json:"journal"`
	Pulse      PulseConfig      `json:"pulse"`
	Recall     RecallConfig     `json:"recall"`
	Gateway    GatewayConfig    `json:"gateway"`
}

type ServerConfig struct {
	Port     int    `json:"port"`
	LogLevel string `json:"log_level"`
}

// BeingConfig tunes the being's metabolism and cycle cadence.
type BeingConfig struct {
	Name            string  `json:"name"`
	MaxEnergy       float64 `json:"max_energy"`
	StartEnergy     float64 `json:"start_energy"`
	RegenPerMinute  float64 `json:"regen_per_minute"`
	TickSeconds     int     `json:"tick_seconds"`
	TickSpeed       float64 `json:"tick_speed"`
	RunTimeoutSecs  int     `json:"run_timeout_seconds"`
	WarmStartLimit  int     `json:"warm_start_limit"`
	DefaultResearch string  `json:"default_research_topic"`
}

// TickInterval returns the configured pulse interval.
func (b BeingConfig) TickInterval() time.Duration {
	if b.TickSeconds <= 0 {
		return 60 * time.Second
	}
	return time.Duration(b.TickSeconds) * time.Second
}

// RunTimeout returns the per-activity execution deadline.
func (b BeingConfig) RunTimeout() time.Duration {
	if b.RunTimeoutSecs <= 0 {
		return 120 * time.Second
	}
	return time.Duration(b.RunTimeoutSecs) * time.Second
}

// ActivitiesConfig enables or disables individual activities by name.
// An empty map means every registered activity is enabled.
type ActivitiesConfig struct {
	Disabled []string `json:"disabled,omitempty"`
}

// Enabled reports whether the named activity should be registered.
func (a ActivitiesConfig) Enabled(name string) bool {
	for _, d := range a.Disabled {
		if d == name {
			return false
		}
	}
	return true
}

type ProviderConfig struct {
	ID       string   `json:"id"`
	Type     string   `json:"type"`
	Name     string   `json:"name"`
	Endpoint string   `json:"endpoint"`
	APIKey   string   `json:"api_key"`
	Models   []string `json:"models,omitempty"`
}

type SkillsConfig struct {
	Tavily  TavilyConfig  `json:"tavily"`
	Arxiv   ArxivConfig   `json:"arxiv"`
	Scraper ScraperConfig `json:"scraper"`
	Images  ImagesConfig  `json:"images"`
}

type TavilyConfig struct {
	APIKey   string `json:"api_key"`
	Endpoint string `json:"endpoint"`
}

type ArxivConfig struct {
	Endpoint string `json:"endpoint"`
}

type ScraperConfig struct {
	Sources []ScrapeSource `json:"sources"`
}

// ScrapeSource names a site plus the selector its headlines live under.
type ScrapeSource struct {
	Name     string `json:"name"`
	URL      string `json:"url"`
	Selector string `json:"selector"`
	Limit    int    `json:"limit"`
}

type ImagesConfig struct {
	APIKey   string `json:"api_key"`
	Endpoint string `json:"endpoint"`
	Model    string `json:"model"`
	Size     string `json:"size"`
}

type JournalConfig struct {
	DSN string `json:"dsn"`
}

type PulseConfig struct {
	RedisURL string `json:"redis_url"`
	Stream   string `json:"stream"`
}

type RecallConfig struct {
	Qdrant    QdrantConfig    `json:"qdrant"`
	Embedding EmbeddingConfig `json:"embedding"`
}

type QdrantConfig struct {
	Host       string `json:"host"`
	Port       int    `json:"port"`
	Collection string `json:"collection"`
}

type EmbeddingConfig struct {
	Provider  string `json:"provider"`
	Endpoint  string `json:"endpoint"`
	Model     string `json:"model"`
	APIKey    string `json:"api_key"`
	Dimension int    `json:"dimension"`
}

type GatewayConfig struct {
	Slack   SlackGatewayConfig   `json:"slack"`
	Discord DiscordGatewayConfig `json:"discord"`
}

type SlackGatewayConfig struct {
	Enabled  bool   `json:"enabled"`
	BotToken string `json:"bot_token"`
	AppToken string `json:"app_token"`
	Channel  string `json:"channel"`
}

type DiscordGatewayConfig struct {
	Enabled   bool   `json:"enabled"`
	BotToken  string `json:"bot_token"`
	ChannelID string `json:"channel_id"`
}

// envVarRe matches ${VAR} and ${VAR:default} patterns.
var envVarRe = regexp.MustCompile(`\$\{(\w+)(?::([^}]*))?\}`)

// Load reads a JSON config file and substitutes environment variable references.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	// Substitute ${VAR} and ${VAR:default} with environment values.
	resolved := envVarRe.ReplaceAllStringFunc(string(data), func(match string) string {
		parts := envVarRe.FindStringSubmatch(match)
		name := parts[1]
		defaultVal := parts[2]
		if v := os.Getenv(name); v != "" {
			return v
		}
		return defaultVal
	})

	var cfg Config
	if err := json.Unmarshal([]byte(resolved), &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return &cfg, nil
}
