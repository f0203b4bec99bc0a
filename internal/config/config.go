package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds all runtime settings. Defaults reproduce the classic
// one-shot behavior: read simple.pdf, write Audio.mp3, English, normal
// speed. Environment variables override defaults; CLI flags override
// both.
type Config struct {
	// One-shot conversion.
	InputPath  string `env:"DOCVOICE_INPUT" envDefault:"simple.pdf"`
	OutputPath string `env:"DOCVOICE_OUTPUT" envDefault:"Audio.mp3"`
	Language   string `env:"DOCVOICE_LANG" envDefault:"en"`
	Slow       bool   `env:"DOCVOICE_SLOW" envDefault:"false"`

	// Speech backend.
	TTSEndpoint string        `env:"DOCVOICE_TTS_ENDPOINT" envDefault:"https://translate.google.com/translate_tts"`
	TTSTimeout  time.Duration `env:"DOCVOICE_TTS_TIMEOUT" envDefault:"30s"`
	ChunkLimit  int           `env:"DOCVOICE_CHUNK_LIMIT" envDefault:"100"`
	MaxRetries  int           `env:"DOCVOICE_MAX_RETRIES" envDefault:"3"`

	// Serve mode.
	Port               string        `env:"PORT" envDefault:"8091"`
	APIKey             string        `env:"DOCVOICE_API_KEY"`
	WorkerCount        int           `env:"WORKER_COUNT" envDefault:"2"`
	MaxQueueSize       int           `env:"MAX_QUEUE_SIZE" envDefault:"50"`
	MaxConcurrentSynth int           `env:"MAX_CONCURRENT_SYNTH" envDefault:"4"`
	MaxUploadBytes     int64         `env:"MAX_UPLOAD_BYTES" envDefault:"52428800"` // 50MB
	JobTTL             time.Duration `env:"JOB_TTL" envDefault:"1h"`
	AudioDir           string        `env:"DOCVOICE_AUDIO_DIR" envDefault:"audio"`
}

// Load reads configuration from the environment, falling back to the
// struct defaults.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}

	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 2
	}
	if cfg.MaxQueueSize <= 0 {
		cfg.MaxQueueSize = 50
	}
	if cfg.MaxConcurrentSynth <= 0 {
		cfg.MaxConcurrentSynth = 4
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 52428800
	}
	if cfg.ChunkLimit <= 0 {
		cfg.ChunkLimit = 100
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.JobTTL <= 0 {
		cfg.JobTTL = time.Hour
	}

	return cfg, nil
}

// ValidateServe checks settings that only the HTTP service requires.
func (c Config) ValidateServe() error {
	if c.APIKey == "" {
		return fmt.Errorf("DOCVOICE_API_KEY is required in serve mode")
	}
	return nil
}
