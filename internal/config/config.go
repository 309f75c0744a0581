package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"

	StoreDriverRedis  = "redis"
	StoreDriverFile   = "file"
	StoreDriverMemory = "memory"

	EnvRedisURL = "W1R3_REDIS_URL"
	EnvSaveDir  = "W1R3_SAVE_DIR"
	EnvListen   = "W1R3_LISTEN"
	EnvLogLevel = "W1R3_LOG_LEVEL"

	EnvMirrorBucket    = "W1R3_MIRROR_BUCKET"
	EnvMirrorAccessKey = "W1R3_MIRROR_ACCESS_KEY_ID"
	EnvMirrorSecretKey = "W1R3_MIRROR_SECRET_ACCESS_KEY"

	defaultListen       = ":8080"
	defaultTag          = "w1r3catcher"
	defaultStoreKey     = "w1r3catcher"
	defaultStorePath    = "w1r3catcher.settings.yml"
	defaultRedisURL     = "redis://localhost:6379/0"
	defaultSaveDir      = "w1r3catcher"
	defaultTimeout      = 30 * time.Second
	defaultUserAgent    = "w1r3catcher/0.2"
	defaultQueueSize    = 64
	defaultMirrorTries  = 3
	defaultDomain       = "w1r3.net"
	defaultLoggingValue = "on"
)

type LogLevel string

type StoreConfig struct {
	Driver   string `yaml:"driver"`
	RedisURL string `yaml:"redis_url"`
	Key      string `yaml:"key"`  // Redis hash holding the settings
	Path     string `yaml:"path"` // YAML file for the file driver
}

type DownloadConfig struct {
	SaveDir   string        `yaml:"save_dir"`
	Timeout   time.Duration `yaml:"timeout"`
	UserAgent string        `yaml:"user_agent"`
	MaxSize   int64         `yaml:"max_size"` // 0 means unlimited
	Rate      float64       `yaml:"rate"`     // fetches per second, 0 means unlimited
}

// MirrorConfig enables copying stored files to an S3 bucket when Bucket is set.
type MirrorConfig struct {
	Bucket          string        `yaml:"bucket"`
	Prefix          string        `yaml:"prefix"`
	Region          string        `yaml:"region"`
	Endpoint        string        `yaml:"endpoint"` // S3-compatible endpoint, e.g. minio
	AccessKeyID     string        `yaml:"access_key_id"`
	SecretAccessKey string        `yaml:"secret_access_key"`
	Timeout         time.Duration `yaml:"timeout"`
	MaxRetries      int           `yaml:"max_retries"`
}

func (m *MirrorConfig) Enabled() bool {
	return m.Bucket != ""
}

type PipelineConfig struct {
	QueueSize int `yaml:"queue_size"`
}

type DefaultsConfig struct {
	Domains []string `yaml:"domains"`
	Logging string   `yaml:"logging"`
}

type Config struct {
	Listen   string         `yaml:"listen"`
	LogLevel LogLevel       `yaml:"log_level"`
	Tag      string         `yaml:"tag"`
	Store    StoreConfig    `yaml:"store"`
	Download DownloadConfig `yaml:"download"`
	Mirror   MirrorConfig   `yaml:"mirror"`
	Pipeline PipelineConfig `yaml:"pipeline"`
	Defaults DefaultsConfig `yaml:"defaults"`
}

func (c *Config) SetDefaults() {
	if c.Listen == "" {
		c.Listen = defaultListen
	}

	if c.LogLevel == "" {
		c.LogLevel = LogLevelInfo
	}

	if c.Tag == "" {
		c.Tag = defaultTag
	}

	if c.Store.Driver == "" {
		c.Store.Driver = StoreDriverFile
	}

	if c.Store.Key == "" {
		c.Store.Key = defaultStoreKey
	}

	if c.Store.Path == "" {
		c.Store.Path = defaultStorePath
	}

	if c.Store.RedisURL == "" {
		c.Store.RedisURL = defaultRedisURL
	}

	if c.Download.SaveDir == "" {
		c.Download.SaveDir = defaultSaveDir
	}

	if c.Download.Timeout <= 0 {
		c.Download.Timeout = defaultTimeout
	}

	if c.Download.UserAgent == "" {
		c.Download.UserAgent = defaultUserAgent
	}

	if c.Mirror.Timeout <= 0 {
		c.Mirror.Timeout = defaultTimeout
	}

	if c.Mirror.MaxRetries <= 0 {
		c.Mirror.MaxRetries = defaultMirrorTries
	}

	if c.Pipeline.QueueSize <= 0 {
		c.Pipeline.QueueSize = defaultQueueSize
	}

	if len(c.Defaults.Domains) == 0 {
		c.Defaults.Domains = []string{defaultDomain}
	}

	if c.Defaults.Logging == "" {
		c.Defaults.Logging = defaultLoggingValue
	}
}

func (c *Config) applyEnv() {
	if v, ok := os.LookupEnv(EnvRedisURL); ok && v != "" {
		c.Store.RedisURL = v
	}

	if v, ok := os.LookupEnv(EnvSaveDir); ok && v != "" {
		c.Download.SaveDir = v
	}

	if v, ok := os.LookupEnv(EnvListen); ok && v != "" {
		c.Listen = v
	}

	if v, ok := os.LookupEnv(EnvLogLevel); ok && v != "" {
		c.LogLevel = LogLevel(strings.ToLower(v))
	}

	if v, ok := os.LookupEnv(EnvMirrorBucket); ok && v != "" {
		c.Mirror.Bucket = v
	}

	if v, ok := os.LookupEnv(EnvMirrorAccessKey); ok && v != "" {
		c.Mirror.AccessKeyID = v
	}

	if v, ok := os.LookupEnv(EnvMirrorSecretKey); ok && v != "" {
		c.Mirror.SecretAccessKey = v
	}
}

func (c *Config) Validate() error {
	switch c.LogLevel {
	case LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError:
	default:
		return fmt.Errorf("unknown log level: %s", c.LogLevel)
	}

	switch c.Store.Driver {
	case StoreDriverRedis, StoreDriverFile, StoreDriverMemory:
	default:
		return fmt.Errorf("unknown store driver: %s", c.Store.Driver)
	}

	if c.Download.MaxSize < 0 {
		return fmt.Errorf("download max_size cannot be negative")
	}

	if c.Download.Rate < 0 {
		return fmt.Errorf("download rate cannot be negative")
	}

	if (c.Mirror.AccessKeyID == "") != (c.Mirror.SecretAccessKey == "") {
		return fmt.Errorf("mirror access_key_id and secret_access_key must be set together")
	}

	return nil
}

// Load reads .env (if any) and the YAML config file, then applies
// environment overrides and defaults.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read config file %s: %w", path, err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("cannot parse config file %s: %w", path, err)
	}

	cfg.applyEnv()
	cfg.SetDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func MustLoad(path string) *Config {
	cfg, err := Load(path)
	if err != nil {
		panic(err)
	}

	return cfg
}
