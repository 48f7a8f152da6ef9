// Package config provides configuration management for the Wingman gateway.
// It covers the HTTP server, the two generation providers (Groq and Gemini),
// chat pipeline behavior, and logging preferences.
package config

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the complete server configuration.
// It combines server settings, provider credentials and models, chat pipeline
// behavior, and logging preferences into a single structure.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Providers ProvidersConfig `yaml:"providers"`
	Chat      ChatConfig      `yaml:"chat"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// ServerConfig holds server-specific configuration for the HTTP server.
// It defines timeouts, limits, and operational parameters.
type ServerConfig struct {
	// Port specifies the HTTP server port (default: 8080)
	Port int `yaml:"port"`

	// ReadTimeout is the maximum duration for reading the entire request,
	// including the body (default: 30s)
	ReadTimeout time.Duration `yaml:"read_timeout"`

	// WriteTimeout is the maximum duration before timing out writes of the
	// response (default: 45s)
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// MaxHeaderBytes controls the maximum number of bytes the server will
	// read parsing the request header's keys and values (default: 1MB)
	MaxHeaderBytes int `yaml:"max_header_bytes"`

	// MaxUploadBytes caps the size of an image attachment (default: 10MB)
	MaxUploadBytes int64 `yaml:"max_upload_bytes"`

	// ShutdownTimeout specifies how long to wait for the server to shutdown
	// gracefully before forcing termination (default: 30s)
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// ProvidersConfig holds credentials and model identifiers for the two
// generation providers. Both API keys must be present at startup; a missing
// key is a fatal startup error, not a per-request error.
type ProvidersConfig struct {
	Groq   GroqConfig   `yaml:"groq"`
	Gemini GeminiConfig `yaml:"gemini"`
}

// GroqConfig configures the Groq text-generation provider.
type GroqConfig struct {
	// APIKey authenticates against the Groq API.
	// Use ${GROQ_API_KEY} in the config file to pull it from the environment.
	APIKey string `yaml:"api_key"`

	// Model is the Groq model identifier (default: llama-3.3-70b-versatile)
	Model string `yaml:"model"`
}

// GeminiConfig configures the Gemini provider, which serves both text
// generation and vision extraction.
type GeminiConfig struct {
	// APIKey authenticates against the Gemini API.
	// Use ${GEMINI_API_KEY} in the config file to pull it from the environment.
	APIKey string `yaml:"api_key"`

	// Model is the text-generation model (default: gemini-2.0-flash-lite)
	Model string `yaml:"model"`

	// VisionModel is the model used for screenshot context extraction
	// (default: gemini-2.0-flash-lite)
	VisionModel string `yaml:"vision_model"`
}

// ChatConfig controls the chat pipeline's behavior.
type ChatConfig struct {
	// FallbackPolicy selects what happens when a generation provider fails:
	//   - "propagate": surface the provider error to the caller (default)
	//   - "canned": substitute a mode-specific static sentence
	// The two policies existed side by side in earlier versions of this
	// service; the knob makes the choice explicit.
	FallbackPolicy string `yaml:"fallback_policy"`

	// GenerationTimeout bounds a single text-generation call (default: 30s)
	GenerationTimeout time.Duration `yaml:"generation_timeout"`

	// VisionTimeout bounds a single vision-extraction call (default: 20s)
	VisionTimeout time.Duration `yaml:"vision_timeout"`

	// MaxPromptTokens caps the token count of a composed prompt before it is
	// sent to a provider (default: 8192)
	MaxPromptTokens int `yaml:"max_prompt_tokens"`

	// MaxOutputTokens caps the length of generated replies (default: 1024)
	MaxOutputTokens int `yaml:"max_output_tokens"`
}

// FallbackPolicy values for ChatConfig.FallbackPolicy.
const (
	FallbackPropagate = "propagate"
	FallbackCanned    = "canned"
)

// LoggingConfig holds logging-specific configuration.
type LoggingConfig struct {
	// Level sets logging verbosity: debug, info, warn, error
	Level string `yaml:"level"`

	// Format specifies log output format: json or text
	Format string `yaml:"format"`
}

// DefaultConfig returns a configuration with production defaults. API keys
// are left empty and are expected to come from the config file or the
// GROQ_API_KEY / GEMINI_API_KEY environment variables.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    45 * time.Second,
			MaxHeaderBytes:  1 << 20,
			MaxUploadBytes:  10 << 20,
			ShutdownTimeout: 30 * time.Second,
		},
		Providers: ProvidersConfig{
			Groq: GroqConfig{
				Model: "llama-3.3-70b-versatile",
			},
			Gemini: GeminiConfig{
				Model:       "gemini-2.0-flash-lite",
				VisionModel: "gemini-2.0-flash-lite",
			},
		},
		Chat: ChatConfig{
			FallbackPolicy:    FallbackPropagate,
			GenerationTimeout: 30 * time.Second,
			VisionTimeout:     20 * time.Second,
			MaxPromptTokens:   8192,
			MaxOutputTokens:   1024,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// LoadFile loads configuration from a YAML file
func LoadFile(filename string) (*Config, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("open config file: %w", err)
	}
	defer f.Close()

	return Load(f)
}

// expandEnvVars resolves environment variable references in configuration
// strings. It supports standard ${VAR} substitution and the ${VAR:-default}
// default-value syntax, and recursively resolves nested references.
func expandEnvVars(s string) string {
	result := os.Expand(s, func(key string) string {
		if i := strings.Index(key, ":-"); i >= 0 {
			envKey := key[:i]
			defaultValue := key[i+2:]
			if val := os.Getenv(envKey); val != "" {
				return val
			}
			return defaultValue
		}
		return os.Getenv(key)
	})

	// Resolve nested references until the string stops changing.
	prev := ""
	for prev != result {
		prev = result
		result = os.Expand(result, os.Getenv)
	}

	return result
}

// Load loads configuration from an io.Reader
func Load(r io.Reader) (*Config, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	expanded := expandEnvVars(string(data))

	// Start with defaults, decode YAML on top.
	config := DefaultConfig()
	dec := yaml.NewDecoder(strings.NewReader(expanded))
	if err := dec.Decode(config); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	// API keys may also come straight from the environment when the config
	// file omits them entirely.
	if config.Providers.Groq.APIKey == "" {
		config.Providers.Groq.APIKey = os.Getenv("GROQ_API_KEY")
	}
	if config.Providers.Gemini.APIKey == "" {
		config.Providers.Gemini.APIKey = os.Getenv("GEMINI_API_KEY")
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return config, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	// Server validation
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Server.Port)
	}
	if c.Server.ReadTimeout < 0 {
		return fmt.Errorf("negative read timeout: %v", c.Server.ReadTimeout)
	}
	if c.Server.WriteTimeout < 0 {
		return fmt.Errorf("negative write timeout: %v", c.Server.WriteTimeout)
	}
	if c.Server.MaxHeaderBytes < 0 {
		return fmt.Errorf("negative max header bytes: %d", c.Server.MaxHeaderBytes)
	}
	if c.Server.MaxUploadBytes < 0 {
		return fmt.Errorf("negative max upload bytes: %d", c.Server.MaxUploadBytes)
	}
	if c.Server.ShutdownTimeout < 0 {
		return fmt.Errorf("negative shutdown timeout: %v", c.Server.ShutdownTimeout)
	}

	// Provider validation
	if c.Providers.Groq.Model == "" {
		return fmt.Errorf("empty groq model")
	}
	if c.Providers.Gemini.Model == "" {
		return fmt.Errorf("empty gemini model")
	}
	if c.Providers.Gemini.VisionModel == "" {
		return fmt.Errorf("empty gemini vision model")
	}

	// Chat validation
	switch c.Chat.FallbackPolicy {
	case FallbackPropagate, FallbackCanned:
		// Valid policies
	default:
		return fmt.Errorf("invalid fallback policy: %s", c.Chat.FallbackPolicy)
	}
	if c.Chat.GenerationTimeout <= 0 {
		return fmt.Errorf("generation timeout must be positive: %v", c.Chat.GenerationTimeout)
	}
	if c.Chat.VisionTimeout <= 0 {
		return fmt.Errorf("vision timeout must be positive: %v", c.Chat.VisionTimeout)
	}
	if c.Chat.MaxPromptTokens <= 0 {
		return fmt.Errorf("max prompt tokens must be positive: %d", c.Chat.MaxPromptTokens)
	}
	if c.Chat.MaxOutputTokens <= 0 {
		return fmt.Errorf("max output tokens must be positive: %d", c.Chat.MaxOutputTokens)
	}

	// Logging validation
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
		// Valid levels
	default:
		return fmt.Errorf("invalid log level: %s", c.Logging.Level)
	}

	switch c.Logging.Format {
	case "json", "text":
		// Valid formats
	default:
		return fmt.Errorf("invalid log format: %s", c.Logging.Format)
	}

	return nil
}
