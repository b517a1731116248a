package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	SourceRemote = "remote"
	SourceMongo  = "mongo"
	SourceMemory = "memory"
)

// Config aggregates application settings. Environment variables win over an
// optional config.yaml, which wins over defaults.
type Config struct {
	Env             string
	LogLevel        string
	HTTPAddr        string
	ShutdownTimeout time.Duration
	CORSOrigins     []string
	Timezone        string

	BookingSource    string
	RemoteAPIURL     string
	RemoteTimeout    time.Duration
	RemoteRatePerSec float64
	RemoteBurst      int

	MongoURI string
	MongoDB  string

	SeedFile string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	CacheTTL      time.Duration

	KafkaBrokers     []string
	KafkaTopicPrefix string
	KafkaGroupID     string

	S3Endpoint       string
	S3PublicEndpoint string
	S3AccessKey      string
	S3SecretKey      string
	S3Bucket         string
	S3UseSSL         bool

	DefaultPageSize   int
	FetchBatchSize    int
	EnrichConcurrency int
}

var defaults = map[string]any{
	"APP_ENV":             "dev",
	"LOG_LEVEL":           "info",
	"HTTP_ADDR":           ":8080",
	"SHUTDOWN_TIMEOUT":    "10s",
	"CORS_ORIGINS":        "http://localhost:4200",
	"TZ_NAME":             "",
	"BOOKING_SOURCE":      SourceRemote,
	"REMOTE_API_URL":      "http://localhost:8081/api",
	"REMOTE_TIMEOUT":      "5s",
	"REMOTE_RATE_PER_SEC": "20",
	"REMOTE_BURST":        "10",
	"MONGO_URI":           "",
	"MONGO_DB":            "bookings",
	"SEED_FILE":           "",
	"REDIS_ADDR":          "",
	"REDIS_PASSWORD":      "",
	"REDIS_DB":            "0",
	"CACHE_TTL":           "5m",
	"KAFKA_BROKERS":       "",
	"KAFKA_TOPIC_PREFIX":  "",
	"KAFKA_GROUP_ID":      "bookingengine",
	"S3_ENDPOINT":         "",
	"S3_PUBLIC_ENDPOINT":  "",
	"S3_ACCESS_KEY":       "minioadmin",
	"S3_SECRET_KEY":       "minioadmin",
	"S3_BUCKET":           "accommodation-photos",
	"S3_USE_SSL":          "false",
	"DEFAULT_PAGE_SIZE":   "10",
	"FETCH_BATCH_SIZE":    "200",
	"ENRICH_CONCURRENCY":  "8",
}

// Load reads config.yaml from CONFIG_FILE, ./ or ./config when present, then
// the environment.
func Load() (Config, error) {
	v := viper.New()
	if file := os.Getenv("CONFIG_FILE"); file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if os.Getenv("CONFIG_FILE") != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	}
	return LoadFrom(v)
}

// LoadFrom builds a Config from an already prepared viper instance.
func LoadFrom(v *viper.Viper) (Config, error) {
	v.AutomaticEnv()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	cfg := Config{
		Env:              getString(v, "APP_ENV"),
		LogLevel:         getString(v, "LOG_LEVEL"),
		HTTPAddr:         getString(v, "HTTP_ADDR"),
		CORSOrigins:      splitList(getString(v, "CORS_ORIGINS")),
		Timezone:         getString(v, "TZ_NAME"),
		BookingSource:    strings.ToLower(getString(v, "BOOKING_SOURCE")),
		RemoteAPIURL:     strings.TrimRight(getString(v, "REMOTE_API_URL"), "/"),
		MongoURI:         getString(v, "MONGO_URI"),
		MongoDB:          getString(v, "MONGO_DB"),
		SeedFile:         getString(v, "SEED_FILE"),
		RedisAddr:        getString(v, "REDIS_ADDR"),
		RedisPassword:    getString(v, "REDIS_PASSWORD"),
		KafkaBrokers:     splitList(getString(v, "KAFKA_BROKERS")),
		KafkaTopicPrefix: getString(v, "KAFKA_TOPIC_PREFIX"),
		KafkaGroupID:     getString(v, "KAFKA_GROUP_ID"),
		S3Endpoint:       getString(v, "S3_ENDPOINT"),
		S3PublicEndpoint: getString(v, "S3_PUBLIC_ENDPOINT"),
		S3AccessKey:      getString(v, "S3_ACCESS_KEY"),
		S3SecretKey:      getString(v, "S3_SECRET_KEY"),
		S3Bucket:         getString(v, "S3_BUCKET"),
	}

	var err error
	if cfg.ShutdownTimeout, err = parseDuration(v, "SHUTDOWN_TIMEOUT"); err != nil {
		return Config{}, err
	}
	if cfg.RemoteTimeout, err = parseDuration(v, "REMOTE_TIMEOUT"); err != nil {
		return Config{}, err
	}
	if cfg.CacheTTL, err = parseDuration(v, "CACHE_TTL"); err != nil {
		return Config{}, err
	}
	if cfg.RemoteRatePerSec, err = parseFloat(v, "REMOTE_RATE_PER_SEC"); err != nil {
		return Config{}, err
	}
	if cfg.RemoteBurst, err = parseInt(v, "REMOTE_BURST"); err != nil {
		return Config{}, err
	}
	if cfg.RedisDB, err = parseInt(v, "REDIS_DB"); err != nil {
		return Config{}, err
	}
	if cfg.DefaultPageSize, err = parseInt(v, "DEFAULT_PAGE_SIZE"); err != nil {
		return Config{}, err
	}
	if cfg.FetchBatchSize, err = parseInt(v, "FETCH_BATCH_SIZE"); err != nil {
		return Config{}, err
	}
	if cfg.EnrichConcurrency, err = parseInt(v, "ENRICH_CONCURRENCY"); err != nil {
		return Config{}, err
	}
	if cfg.S3UseSSL, err = parseBool(v, "S3_USE_SSL"); err != nil {
		return Config{}, err
	}
	if cfg.S3PublicEndpoint == "" {
		cfg.S3PublicEndpoint = cfg.S3Endpoint
	}

	switch cfg.BookingSource {
	case SourceRemote:
		if cfg.RemoteAPIURL == "" {
			return Config{}, fmt.Errorf("REMOTE_API_URL is required when BOOKING_SOURCE=%s", SourceRemote)
		}
	case SourceMongo:
		if cfg.MongoURI == "" {
			return Config{}, fmt.Errorf("MONGO_URI is required when BOOKING_SOURCE=%s", SourceMongo)
		}
	case SourceMemory:
	default:
		return Config{}, fmt.Errorf("invalid BOOKING_SOURCE %q", cfg.BookingSource)
	}
	if cfg.DefaultPageSize <= 0 {
		return Config{}, fmt.Errorf("DEFAULT_PAGE_SIZE must be positive, got %d", cfg.DefaultPageSize)
	}
	return cfg, nil
}

// Location resolves Timezone; empty means the process default.
func (c Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid TZ_NAME %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// Topic applies the configured prefix to a topic name.
func (c Config) Topic(name string) string {
	if c.KafkaTopicPrefix == "" {
		return name
	}
	return c.KafkaTopicPrefix + "." + name
}

func getString(v *viper.Viper, key string) string {
	return strings.TrimSpace(v.GetString(key))
}

func parseDuration(v *viper.Viper, key string) (time.Duration, error) {
	raw := getString(v, key)
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s duration: %w", key, err)
	}
	return d, nil
}

func parseInt(v *viper.Viper, key string) (int, error) {
	raw := getString(v, key)
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s integer: %q", key, raw)
	}
	return n, nil
}

func parseFloat(v *viper.Viper, key string) (float64, error) {
	raw := getString(v, key)
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s number: %q", key, raw)
	}
	return f, nil
}

func parseBool(v *viper.Viper, key string) (bool, error) {
	raw := getString(v, key)
	switch strings.ToLower(raw) {
	case "1", "t", "true", "yes", "y", "on":
		return true, nil
	case "0", "f", "false", "no", "n", "off":
		return false, nil
	default:
		return false, fmt.Errorf("invalid %s boolean: %q", key, raw)
	}
}

func splitList(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
