package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/dgallion1/inkwell/internal/excerpt"
	"github.com/dgallion1/inkwell/internal/headings"
	"github.com/dgallion1/inkwell/internal/parser"
	"github.com/dgallion1/inkwell/internal/permalink"
	"github.com/dgallion1/inkwell/internal/post"
)

type Config struct {
	Port string

	// Auth
	APIKey string

	// Storage
	DataDir    string
	GCInterval time.Duration

	// Permalinks
	PermalinkFormat string
	PermalinkPrefix string
	PermalinkFile   string

	// Table of contents
	TOCMinLevel int
	TOCMaxLevel int
	TOCMaxDepth int

	// Excerpts
	ExcerptWords   int
	WordsPerMinute int

	// Worker pool
	WorkerCount  int
	MaxQueueSize int

	// Upload limits
	MaxUploadBytes int64

	// Job state
	JobTTL time.Duration

	// PDF
	PDFFallbackPdftotext bool
}

func Load() Config {
	cfg := Config{
		Port: envOr("PORT", "8090"),

		APIKey: os.Getenv("INKWELL_API_KEY"),

		DataDir:    envOr("DATA_DIR", "./data"),
		GCInterval: envDuration("GC_INTERVAL", 10*time.Minute),

		PermalinkFormat: envOr("PERMALINK_FORMAT", permalink.WithPrefix),
		PermalinkPrefix: envOr("PERMALINK_PREFIX", "blog"),
		PermalinkFile:   os.Getenv("PERMALINK_FILE"),

		TOCMinLevel: envInt("TOC_MIN_LEVEL", 2),
		TOCMaxLevel: envInt("TOC_MAX_LEVEL", 4),
		TOCMaxDepth: envInt("TOC_MAX_DEPTH", 3),

		ExcerptWords:   envInt("EXCERPT_WORDS", 55),
		WordsPerMinute: envInt("WORDS_PER_MINUTE", 220),

		WorkerCount:  envInt("WORKER_COUNT", 2),
		MaxQueueSize: envInt("MAX_QUEUE_SIZE", 50),

		MaxUploadBytes: envInt64("MAX_UPLOAD_BYTES", 20971520), // 20MB

		JobTTL: envDuration("JOB_TTL", 1*time.Hour),

		PDFFallbackPdftotext: envBool("PDF_FALLBACK_PDFTOTEXT", true),
	}

	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 2
	}
	if cfg.MaxQueueSize <= 0 {
		cfg.MaxQueueSize = 50
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 20971520
	}
	if cfg.JobTTL <= 0 {
		cfg.JobTTL = 1 * time.Hour
	}
	if cfg.ExcerptWords <= 0 {
		cfg.ExcerptWords = 55
	}
	if cfg.WordsPerMinute <= 0 {
		cfg.WordsPerMinute = 220
	}

	return cfg
}

func (c Config) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("INKWELL_API_KEY is required")
	}
	if c.TOCMinLevel < 1 || c.TOCMinLevel > 6 || c.TOCMaxLevel < 1 || c.TOCMaxLevel > 6 {
		return fmt.Errorf("TOC_MIN_LEVEL and TOC_MAX_LEVEL must be between 1 and 6")
	}
	if c.TOCMinLevel > c.TOCMaxLevel {
		return fmt.Errorf("TOC_MIN_LEVEL (%d) exceeds TOC_MAX_LEVEL (%d)", c.TOCMinLevel, c.TOCMaxLevel)
	}
	reg, err := c.Permalinks()
	if err != nil {
		return err
	}
	f, err := reg.Lookup(c.PermalinkFormat)
	if err != nil {
		return fmt.Errorf("PERMALINK_FORMAT: %w", err)
	}
	if f.HasPrefix() && c.PermalinkPrefix == "" {
		return fmt.Errorf("PERMALINK_PREFIX is required by format %q", f.Name)
	}
	return nil
}

// Permalinks returns the built-in formats plus those in PermalinkFile.
func (c Config) Permalinks() (*permalink.Registry, error) {
	if c.PermalinkFile == "" {
		return permalink.NewRegistry(), nil
	}
	custom, err := permalink.LoadFile(c.PermalinkFile)
	if err != nil {
		return nil, err
	}
	return permalink.NewRegistry(custom...), nil
}

// PostOptions returns the derivation settings applied to every post.
func (c Config) PostOptions() post.Options {
	return post.Options{
		Headings: headings.Options{
			MinLevel: c.TOCMinLevel,
			MaxLevel: c.TOCMaxLevel,
			MaxDepth: c.TOCMaxDepth,
		},
		Excerpt: excerpt.Config{
			Words:          c.ExcerptWords,
			WordsPerMinute: c.WordsPerMinute,
		},
	}
}

// ParserOptions returns the import parser settings.
func (c Config) ParserOptions() parser.Options {
	return parser.Options{PDFFallbackPdftotext: c.PDFFallbackPdftotext}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
