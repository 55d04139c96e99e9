package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Telephony     TelephonyConfig     `yaml:"telephony"`
	Transcription TranscriptionConfig `yaml:"transcription"`
	Storage       StorageConfig       `yaml:"storage"`
	RabbitMQ      RabbitMQConfig      `yaml:"rabbitmq"`
	Sync          SyncConfig          `yaml:"sync"`
	LogLevel      string              `yaml:"log_level"`
}

type TelephonyConfig struct {
	BaseURL    string        `yaml:"base_url"`
	AccountSID string        `yaml:"account_sid"`
	APIKey     string        `yaml:"api_key"`
	APIToken   string        `yaml:"api_token"`
	Timeout    time.Duration `yaml:"timeout"`
}

type TranscriptionConfig struct {
	Provider     string        `yaml:"provider"` // "assemblyai" or "deepgram"
	APIKey       string        `yaml:"api_key"`
	BaseURL      string        `yaml:"base_url"` // override for tests; empty uses the vendor default
	Language     string        `yaml:"language"`
	Diarize      bool          `yaml:"diarize"`
	Punctuate    bool          `yaml:"punctuate"`
	Model        string        `yaml:"model"` // deepgram only
	PollInterval time.Duration `yaml:"poll_interval"`
	PollTimeout  time.Duration `yaml:"poll_timeout"`
}

type StorageConfig struct {
	RecordingsDir     string `yaml:"recordings_dir"`
	TranscriptionsDir string `yaml:"transcriptions_dir"`
	LedgerPath        string `yaml:"ledger_path"` // empty disables the ledger
	LabelStyle        string `yaml:"label_style"` // "speaker" or "person"
}

type RabbitMQConfig struct {
	URL        string `yaml:"url"` // empty disables publishing
	Exchange   string `yaml:"exchange"`
	RoutingKey string `yaml:"routing_key"`
	QueueName  string `yaml:"queue_name"`
}

type SyncConfig struct {
	Hours        int           `yaml:"hours"`
	Continuous   bool          `yaml:"continuous"`
	Interval     time.Duration `yaml:"interval"`
	CycleTimeout time.Duration `yaml:"cycle_timeout"`
}

// Lookback is the trailing window calls are fetched and selected from.
func (s SyncConfig) Lookback() time.Duration {
	return time.Duration(s.Hours) * time.Hour
}

func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg.setDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) setDefaults() {
	if c.Telephony.BaseURL == "" {
		c.Telephony.BaseURL = "https://api.exotel.com"
	}
	if c.Telephony.Timeout == 0 {
		c.Telephony.Timeout = 30 * time.Second
	}
	if c.Transcription.Provider == "" {
		c.Transcription.Provider = "assemblyai"
	}
	if c.Transcription.Language == "" {
		c.Transcription.Language = "en"
	}
	if c.Transcription.Model == "" {
		c.Transcription.Model = "nova-2"
	}
	if c.Transcription.PollInterval == 0 {
		c.Transcription.PollInterval = 5 * time.Second
	}
	if c.Transcription.PollTimeout == 0 {
		c.Transcription.PollTimeout = 5 * time.Minute
	}
	if c.Storage.RecordingsDir == "" {
		c.Storage.RecordingsDir = "recordings"
	}
	if c.Storage.TranscriptionsDir == "" {
		c.Storage.TranscriptionsDir = "transcriptions"
	}
	if c.Storage.LabelStyle == "" {
		c.Storage.LabelStyle = "speaker"
	}
	if c.RabbitMQ.Exchange == "" {
		c.RabbitMQ.Exchange = "call_transcriber"
	}
	if c.RabbitMQ.RoutingKey == "" {
		c.RabbitMQ.RoutingKey = "transcripts"
	}
	if c.RabbitMQ.QueueName == "" {
		c.RabbitMQ.QueueName = "call_transcripts"
	}
	if c.Sync.Hours == 0 {
		c.Sync.Hours = 24
	}
	if c.Sync.Interval == 0 {
		c.Sync.Interval = 5 * time.Minute
	}
	if c.Sync.CycleTimeout == 0 {
		c.Sync.CycleTimeout = 10 * time.Minute
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

// Validate checks the fields the process cannot start without.
func (c *Config) Validate() error {
	if c.Telephony.AccountSID == "" {
		return fmt.Errorf("telephony.account_sid is required")
	}
	if c.Telephony.APIKey == "" || c.Telephony.APIToken == "" {
		return fmt.Errorf("telephony.api_key and telephony.api_token are required")
	}
	if c.Transcription.APIKey == "" {
		return fmt.Errorf("transcription.api_key is required")
	}
	switch c.Transcription.Provider {
	case "assemblyai", "deepgram":
	default:
		return fmt.Errorf("unknown transcription.provider %q", c.Transcription.Provider)
	}
	switch c.Storage.LabelStyle {
	case "speaker", "person":
	default:
		return fmt.Errorf("unknown storage.label_style %q", c.Storage.LabelStyle)
	}
	if c.Sync.Hours < 1 {
		return fmt.Errorf("sync.hours must be at least 1")
	}
	return nil
}
