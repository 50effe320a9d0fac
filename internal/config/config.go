package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
	"golang.org/x/text/language"
)

// Config holds all reelsubs configuration.
//
// Values are layered: defaults, then the optional TOML file, then
// environment variables (a .env file in the working directory is loaded
// first), then functional options.
//
// Environment Variables:
//   - REMOTION_AWS_ACCESS_KEY_ID / AWS_ACCESS_KEY_ID
//   - REMOTION_AWS_SECRET_ACCESS_KEY / AWS_SECRET_ACCESS_KEY
//   - REMOTION_AWS_REGION / AWS_REGION (default: eu-north-1)
//   - REMOTION_S3_BUCKET_NAME: bucket used as the remote namespace
//   - WHISPER_LAMBDA_FUNCTION_NAME (default: whisper-subtitle-generator)
//   - REELSUBS_PROVIDER: lambda, http, openai or gemini (default: lambda)
//   - REELSUBS_TRANSCRIPT_API_URL: base URL for the http provider
//   - REELSUBS_LANGUAGE: language hint (default: en)
//   - REELSUBS_MODEL: model override for openai/gemini
//   - OPENAI_API_KEY / GEMINI_API_KEY
//   - REELSUBS_LOCAL_DIR: local tier root (default: public)
//   - REELSUBS_FORMAT: artifact format, json or vtt (default: json)
//   - REELSUBS_GENERATE_TIMEOUT: generation ceiling, Go duration (default: 5m)
//   - REELSUBS_MAX_CUE_SECONDS: split generated cues longer than this (0 disables)
//   - REELSUBS_CHUNK_SECONDS: chunk length for openai/gemini uploads (default: 600, 0 disables)
//   - REELSUBS_CONCURRENCY: chunks transcribed in parallel (default: 3)
//   - REELSUBS_FPS: render frame rate (default: 30)
//   - REELSUBS_STYLE: plain or karaoke (default: plain)
type Config struct {
	AWS        AWSConfig        `toml:"aws"`
	Transcribe TranscribeConfig `toml:"transcribe"`
	Storage    StorageConfig    `toml:"storage"`
	Render     RenderConfig     `toml:"render"`
}

// AWSConfig holds credentials and the S3/Lambda targets.
type AWSConfig struct {
	Region          string `toml:"region"`
	AccessKeyID     string `toml:"access_key_id"`
	SecretAccessKey string `toml:"secret_access_key"`
	Bucket          string `toml:"bucket"`
	PublicRead      bool   `toml:"public_read"`
}

// TranscribeConfig selects and tunes the generation collaborator.
type TranscribeConfig struct {
	Provider        string  `toml:"provider"`
	FunctionName    string  `toml:"function_name"`
	APIURL          string  `toml:"api_url"`
	APIKey          string  `toml:"api_key"`
	Model           string  `toml:"model"`
	Language        string  `toml:"language"`
	TimeoutSeconds  int     `toml:"timeout_seconds"`
	MaxCueSeconds   float64 `toml:"max_cue_seconds"`
	AudioKeyPrefix  string  `toml:"audio_key_prefix"`
	UploadLocalFile bool    `toml:"upload_local_file"`
	ChunkSeconds    int     `toml:"chunk_seconds"`
	Concurrency     int     `toml:"concurrency"`
}

// GenerateTimeout is the ceiling for one generation call.
func (t TranscribeConfig) GenerateTimeout() time.Duration {
	return time.Duration(t.TimeoutSeconds) * time.Second
}

// StorageConfig holds the local tier root and artifact format.
type StorageConfig struct {
	LocalDir string `toml:"local_dir"`
	Format   string `toml:"format"`
}

// RenderConfig holds defaults for frame rendering.
type RenderConfig struct {
	FPS   float64 `toml:"fps"`
	Style string  `toml:"style"`
}

// Option is a function type for configuring Config
type Option func(*Config)

// WithBucket overrides the remote namespace.
func WithBucket(bucket string) Option {
	return func(c *Config) {
		if bucket != "" {
			c.AWS.Bucket = bucket
		}
	}
}

// WithProvider overrides the transcription provider.
func WithProvider(provider string) Option {
	return func(c *Config) {
		if provider != "" {
			c.Transcribe.Provider = provider
		}
	}
}

// WithLanguage overrides the language hint.
func WithLanguage(lang string) Option {
	return func(c *Config) {
		if lang != "" {
			c.Transcribe.Language = lang
		}
	}
}

// WithLocalDir overrides the local tier root.
func WithLocalDir(dir string) Option {
	return func(c *Config) {
		if dir != "" {
			c.Storage.LocalDir = dir
		}
	}
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		AWS: AWSConfig{
			Region: "eu-north-1",
		},
		Transcribe: TranscribeConfig{
			Provider:        ProviderLambda,
			FunctionName:    "whisper-subtitle-generator",
			APIURL:          "http://localhost:8000",
			Language:        "en",
			TimeoutSeconds:  300,
			MaxCueSeconds:   0,
			AudioKeyPrefix:  "audio/",
			UploadLocalFile: true,
			ChunkSeconds:    600,
			Concurrency:     3,
		},
		Storage: StorageConfig{
			LocalDir: "public",
			Format:   "json",
		},
		Render: RenderConfig{
			FPS:   30,
			Style: "plain",
		},
	}
}

const (
	ProviderLambda = "lambda"
	ProviderHTTP   = "http"
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

// Load builds the configuration. path may be empty; a missing file at an
// explicit path is an error.
func Load(path string, opts ...Option) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	cfg.applyEnv()

	for _, opt := range opts {
		opt(cfg)
	}

	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.AWS.AccessKeyID = getEnvString(c.AWS.AccessKeyID, "REMOTION_AWS_ACCESS_KEY_ID", "AWS_ACCESS_KEY_ID")
	c.AWS.SecretAccessKey = getEnvString(c.AWS.SecretAccessKey, "REMOTION_AWS_SECRET_ACCESS_KEY", "AWS_SECRET_ACCESS_KEY")
	c.AWS.Region = getEnvString(c.AWS.Region, "REMOTION_AWS_REGION", "AWS_REGION")
	c.AWS.Bucket = getEnvString(c.AWS.Bucket, "REMOTION_S3_BUCKET_NAME", "REELSUBS_BUCKET")
	c.AWS.PublicRead = getEnvBool(c.AWS.PublicRead, "REELSUBS_PUBLIC_READ")

	c.Transcribe.Provider = getEnvString(c.Transcribe.Provider, "REELSUBS_PROVIDER")
	c.Transcribe.FunctionName = getEnvString(c.Transcribe.FunctionName, "WHISPER_LAMBDA_FUNCTION_NAME")
	c.Transcribe.APIURL = getEnvString(c.Transcribe.APIURL, "REELSUBS_TRANSCRIPT_API_URL")
	c.Transcribe.Model = getEnvString(c.Transcribe.Model, "REELSUBS_MODEL")
	c.Transcribe.Language = getEnvString(c.Transcribe.Language, "REELSUBS_LANGUAGE")
	if d := getEnvDuration(c.Transcribe.GenerateTimeout(), "REELSUBS_GENERATE_TIMEOUT"); d > 0 {
		c.Transcribe.TimeoutSeconds = int(d.Round(time.Second) / time.Second)
	}
	c.Transcribe.MaxCueSeconds = getEnvFloat(c.Transcribe.MaxCueSeconds, "REELSUBS_MAX_CUE_SECONDS")
	c.Transcribe.ChunkSeconds = getEnvInt(c.Transcribe.ChunkSeconds, "REELSUBS_CHUNK_SECONDS")
	c.Transcribe.Concurrency = getEnvInt(c.Transcribe.Concurrency, "REELSUBS_CONCURRENCY")

	c.Storage.LocalDir = getEnvString(c.Storage.LocalDir, "REELSUBS_LOCAL_DIR")
	c.Storage.Format = getEnvString(c.Storage.Format, "REELSUBS_FORMAT")

	c.Render.FPS = getEnvFloat(c.Render.FPS, "REELSUBS_FPS")
	c.Render.Style = getEnvString(c.Render.Style, "REELSUBS_STYLE")
}

func (c *Config) normalize() error {
	c.Transcribe.Provider = strings.ToLower(strings.TrimSpace(c.Transcribe.Provider))
	c.Storage.Format = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(c.Storage.Format), "."))
	c.Render.Style = strings.ToLower(strings.TrimSpace(c.Render.Style))
	c.Transcribe.APIURL = strings.TrimRight(strings.TrimSpace(c.Transcribe.APIURL), "/")

	// provider keys are resolved after options so --provider picks the right one
	switch c.Transcribe.Provider {
	case ProviderOpenAI:
		c.Transcribe.APIKey = getEnvString(c.Transcribe.APIKey, "OPENAI_API_KEY")
	case ProviderGemini:
		c.Transcribe.APIKey = getEnvString(c.Transcribe.APIKey, "GEMINI_API_KEY")
	case ProviderHTTP:
		c.Transcribe.APIKey = getEnvString(c.Transcribe.APIKey, "REELSUBS_TRANSCRIPT_API_KEY")
	}

	lang, err := NormalizeLanguage(c.Transcribe.Language)
	if err != nil {
		return err
	}
	c.Transcribe.Language = lang
	return nil
}

// NormalizeLanguage canonicalises a language hint ("EN", "en-us") to its
// BCP 47 form. "" and "auto" pass through.
func NormalizeLanguage(hint string) (string, error) {
	hint = strings.TrimSpace(hint)
	if hint == "" || strings.EqualFold(hint, "auto") {
		return strings.ToLower(hint), nil
	}
	tag, err := language.Parse(hint)
	if err != nil {
		return "", fmt.Errorf("invalid language %q: %w", hint, err)
	}
	return tag.String(), nil
}

func (c *Config) validate() error {
	switch c.Transcribe.Provider {
	case ProviderLambda, ProviderHTTP, ProviderOpenAI, ProviderGemini:
	default:
		return fmt.Errorf("unsupported provider %q: use lambda, http, openai or gemini", c.Transcribe.Provider)
	}
	switch c.Storage.Format {
	case "json", "vtt":
	default:
		return fmt.Errorf("unsupported artifact format %q: use json or vtt", c.Storage.Format)
	}
	switch c.Render.Style {
	case "plain", "karaoke":
	default:
		return fmt.Errorf("unsupported style %q: use plain or karaoke", c.Render.Style)
	}
	if c.Transcribe.TimeoutSeconds <= 0 {
		return fmt.Errorf("generate timeout must be positive, got %ds", c.Transcribe.TimeoutSeconds)
	}
	if c.Render.FPS <= 0 {
		return fmt.Errorf("fps must be positive, got %v", c.Render.FPS)
	}
	if c.Transcribe.MaxCueSeconds < 0 {
		return fmt.Errorf("max cue seconds must not be negative, got %v", c.Transcribe.MaxCueSeconds)
	}
	if c.Transcribe.ChunkSeconds < 0 {
		return fmt.Errorf("chunk seconds must not be negative, got %d", c.Transcribe.ChunkSeconds)
	}
	if c.Transcribe.Concurrency < 1 {
		return fmt.Errorf("concurrency must be at least 1, got %d", c.Transcribe.Concurrency)
	}
	if c.Storage.LocalDir == "" {
		return errors.New("local dir is required")
	}
	return nil
}

// getEnvString returns the first non-empty variable among keys, or current.
func getEnvString(current string, keys ...string) string {
	for _, key := range keys {
		if value := strings.TrimSpace(os.Getenv(key)); value != "" {
			return value
		}
	}
	return current
}

func getEnvFloat(current float64, key string) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return current
}

func getEnvInt(current int, key string) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return current
}

func getEnvBool(current bool, key string) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return current
}

func getEnvDuration(current time.Duration, key string) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return current
}
