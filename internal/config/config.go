package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

type Config struct {
	Port                   string
	DatabaseURL            string
	StoreDriver            string
	TokenSecret            string
	TokenTTL               time.Duration
	RateLimitPerMinute     int
	RateLimitBurst         int
	UserRateLimitPerMinute int
	UserRateLimitBurst     int
	LogLevel               string
	LogFormat              string
	OTLPEndpoint           string
	OTLPInsecure           bool
	TraceSampleRatio       float64
	// TrustedProxies lists the CIDRs or addresses whose X-Forwarded-For
	// header is believed when keying the per-IP rate limit.
	TrustedProxies []string
}

// Load reads configuration from the environment, falling back to an
// optional ticketdesk.yaml in the working directory or /etc/ticketdesk.
func Load() (Config, error) {
	v := viper.New()
	v.SetConfigName("ticketdesk")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("/etc/ticketdesk")
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	}
	return fromViper(v)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", "8080")
	v.SetDefault("db_dsn", "")
	v.SetDefault("store_driver", DriverPostgres)
	v.SetDefault("token_secret", "")
	v.SetDefault("token_ttl", 20*time.Minute)
	v.SetDefault("rate_limit_per_min", 120)
	v.SetDefault("rate_limit_burst", 30)
	v.SetDefault("user_rate_limit_per_min", 300)
	v.SetDefault("user_rate_limit_burst", 60)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")
	v.SetDefault("otel_exporter_otlp_endpoint", "")
	v.SetDefault("otel_exporter_otlp_insecure", false)
	v.SetDefault("otel_trace_sample_ratio", 1.0)
	v.SetDefault("trusted_proxies", []string{})
}

func fromViper(v *viper.Viper) (Config, error) {
	cfg := Config{
		Port:                   v.GetString("port"),
		DatabaseURL:            v.GetString("db_dsn"),
		StoreDriver:            strings.ToLower(strings.TrimSpace(v.GetString("store_driver"))),
		TokenSecret:            v.GetString("token_secret"),
		TokenTTL:               v.GetDuration("token_ttl"),
		RateLimitPerMinute:     v.GetInt("rate_limit_per_min"),
		RateLimitBurst:         v.GetInt("rate_limit_burst"),
		UserRateLimitPerMinute: v.GetInt("user_rate_limit_per_min"),
		UserRateLimitBurst:     v.GetInt("user_rate_limit_burst"),
		LogLevel:               v.GetString("log_level"),
		LogFormat:              v.GetString("log_format"),
		OTLPEndpoint:           v.GetString("otel_exporter_otlp_endpoint"),
		OTLPInsecure:           v.GetBool("otel_exporter_otlp_insecure"),
		TraceSampleRatio:       v.GetFloat64("otel_trace_sample_ratio"),
		TrustedProxies:         splitList(v.GetStringSlice("trusted_proxies")),
	}
	if cfg.StoreDriver != DriverPostgres && cfg.StoreDriver != DriverMemory {
		return Config{}, fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver)
	}
	if cfg.TraceSampleRatio < 0 || cfg.TraceSampleRatio > 1 {
		return Config{}, fmt.Errorf("OTEL_TRACE_SAMPLE_RATIO must be within [0, 1], got %v", cfg.TraceSampleRatio)
	}
	if cfg.TokenTTL <= 0 {
		return Config{}, fmt.Errorf("TOKEN_TTL must be positive, got %s", cfg.TokenTTL)
	}
	return cfg, nil
}

// splitList accepts both a YAML list and a comma or space separated env value.
func splitList(values []string) []string {
	var out []string
	for _, value := range values {
		out = append(out, strings.FieldsFunc(value, func(r rune) bool {
			return r == ',' || r == ' '
		})...)
	}
	return out
}

// ValidateServe checks what `serve` needs beyond Load.
func (c Config) ValidateServe() error {
	if c.TokenSecret == "" {
		return errors.New("TOKEN_SECRET is required")
	}
	if c.StoreDriver == DriverPostgres && c.DatabaseURL == "" {
		return errors.New("DB_DSN is required for the postgres store")
	}
	return nil
}
