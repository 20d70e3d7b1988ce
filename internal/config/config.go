// Package config handles assistant configuration from an optional YAML
// file overlaid by environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all runtime settings.
type Config struct {
	HTTPAddr string `yaml:"http_addr"`

	// Capture pipeline
	CaptureInterval    time.Duration `yaml:"capture_interval"`
	TranscriptCapacity int           `yaml:"transcript_capacity"`
	MaxTranscriptChars int           `yaml:"max_transcript_chars"`
	TranscriptWindow   time.Duration `yaml:"transcript_window"`
	DegradedThreshold  int           `yaml:"degraded_threshold"`
	MaxHashDistance    int           `yaml:"max_hash_distance"`

	// OCR engine
	TesseractBinary  string        `yaml:"tesseract_binary"`
	OCRLanguages     []string      `yaml:"ocr_languages"`
	ExtractTimeout   time.Duration `yaml:"extract_timeout"`
	OCRMaxImageWidth int           `yaml:"ocr_max_image_width"`

	// LLM
	APIKey       string  `yaml:"api_key"`
	LLMBaseURL   string  `yaml:"llm_base_url"`
	Model        string  `yaml:"model"`
	Temperature  float64 `yaml:"temperature"`
	TopP         float64 `yaml:"top_p"`
	MaxTokens    int     `yaml:"max_tokens"`
	SystemPrompt string  `yaml:"system_prompt"`

	// Conversation memory
	MaxContextMessages int `yaml:"max_context_messages"`

	// Web search
	WebSearchBaseURL    string `yaml:"web_search_base_url"`
	WebSearchMaxResults int    `yaml:"web_search_max_results"`
	WebSearchSafesearch string `yaml:"web_search_safesearch"`
	WebSearchTimelimit  string `yaml:"web_search_timelimit"`

	// Hotkeys
	HotkeysEnabled bool `yaml:"hotkeys_enabled"`
}

// Default returns the baseline configuration.
func Default() *Config {
	return &Config{
		HTTPAddr:            ":8000",
		CaptureInterval:     750 * time.Millisecond,
		TranscriptCapacity:  200,
		MaxTranscriptChars:  3000,
		TranscriptWindow:    25 * time.Second,
		DegradedThreshold:   5,
		MaxHashDistance:     3,
		TesseractBinary:     "tesseract",
		OCRLanguages:        []string{"eng"},
		ExtractTimeout:      10 * time.Second,
		OCRMaxImageWidth:    2048,
		LLMBaseURL:          "https://api.cerebras.ai/v1",
		Model:               "llama3.1-8b",
		Temperature:         0.2,
		TopP:                0.9,
		MaxTokens:           2000,
		SystemPrompt:        "You are a helpful personal assistant. Be concise and helpful.",
		MaxContextMessages:  10,
		WebSearchBaseURL:    "https://api.duckduckgo.com",
		WebSearchMaxResults: 5,
		WebSearchSafesearch: "moderate",
		WebSearchTimelimit:  "y",
		HotkeysEnabled:      true,
	}
}

// Load builds a config from defaults, an optional YAML file (ASSISTANT_CONFIG
// or the given path), and environment variable overrides, in that order.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv("ASSISTANT_CONFIG")
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %q: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %q: %w", path, err)
		}
	}

	cfg.applyEnv()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.HTTPAddr = getEnv("HTTP_ADDR", c.HTTPAddr)
	c.CaptureInterval = getEnvSeconds("CAPTURE_INTERVAL", c.CaptureInterval)
	c.TranscriptCapacity = getEnvInt("MAX_OCR_HISTORY", c.TranscriptCapacity)
	c.MaxTranscriptChars = getEnvInt("MAX_TRANSCRIPT_CHARS", c.MaxTranscriptChars)
	c.TranscriptWindow = getEnvSeconds("TRANSCRIPT_WINDOW", c.TranscriptWindow)
	c.DegradedThreshold = getEnvInt("DEGRADED_THRESHOLD", c.DegradedThreshold)
	c.MaxHashDistance = getEnvInt("MAX_HASH_DISTANCE", c.MaxHashDistance)
	c.TesseractBinary = getEnv("TESSERACT_BINARY", c.TesseractBinary)
	c.OCRLanguages = getEnvList("OCR_LANGUAGES", c.OCRLanguages)
	c.ExtractTimeout = getEnvSeconds("OCR_TIMEOUT", c.ExtractTimeout)
	c.APIKey = getEnv("CEREBRAS_API_KEY", c.APIKey)
	c.LLMBaseURL = getEnv("LLM_BASE_URL", c.LLMBaseURL)
	c.Model = getEnv("ASSISTANT_MODEL", c.Model)
	c.Temperature = getEnvFloat("ASSISTANT_TEMPERATURE", c.Temperature)
	c.TopP = getEnvFloat("ASSISTANT_TOP_P", c.TopP)
	c.MaxTokens = getEnvInt("ASSISTANT_MAX_TOKENS", c.MaxTokens)
	c.SystemPrompt = getEnv("ASSISTANT_SYSTEM_PROMPT", c.SystemPrompt)
	c.MaxContextMessages = getEnvInt("ASSISTANT_MAX_CONTEXT_MESSAGES", c.MaxContextMessages)
	c.WebSearchBaseURL = getEnv("WEB_SEARCH_BASE_URL", c.WebSearchBaseURL)
	c.WebSearchMaxResults = getEnvInt("WEB_SEARCH_MAX_RESULTS", c.WebSearchMaxResults)
	c.WebSearchSafesearch = getEnv("WEB_SEARCH_SAFESEARCH", c.WebSearchSafesearch)
	c.WebSearchTimelimit = getEnv("WEB_SEARCH_TIMELIMIT", c.WebSearchTimelimit)
	c.HotkeysEnabled = getEnvBool("HOTKEYS_ENABLED", c.HotkeysEnabled)
}

func (c *Config) validate() error {
	if c.CaptureInterval <= 0 {
		return fmt.Errorf("capture interval must be positive, got %s", c.CaptureInterval)
	}
	if c.TranscriptCapacity <= 0 {
		return fmt.Errorf("transcript capacity must be positive, got %d", c.TranscriptCapacity)
	}
	if c.ExtractTimeout <= 0 {
		return fmt.Errorf("extract timeout must be positive, got %s", c.ExtractTimeout)
	}
	return nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func getEnvFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		return v == "true" || v == "1"
	}
	return def
}

// getEnvSeconds parses a float number of seconds (CAPTURE_INTERVAL=0.75).
func getEnvSeconds(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 {
			return time.Duration(f * float64(time.Second))
		}
	}
	return def
}

func getEnvList(key string, def []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if t := strings.TrimSpace(p); t != "" {
				result = append(result, t)
			}
		}
		if len(result) > 0 {
			return result
		}
	}
	return def
}
