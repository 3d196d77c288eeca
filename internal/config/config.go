// Package config loads service settings from an optional file and ONDC_*
// environment variables.
package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

type Config struct {
	HTTP     HTTP     `mapstructure:"http"`
	Log      Log      `mapstructure:"log"`
	RefData  RefData  `mapstructure:"refdata"`
	Sequence Sequence `mapstructure:"sequence"`
	Redis    Redis    `mapstructure:"redis"`
	Anchor   Anchor   `mapstructure:"anchor"`
	Kafka    Kafka    `mapstructure:"kafka"`
	Bloom    Bloom    `mapstructure:"bloom"`
	Reports  Reports  `mapstructure:"reports"`
	FanOut   FanOut   `mapstructure:"fanout"`
}

type HTTP struct {
	Addr string `mapstructure:"addr" validate:"required"`
}

type Log struct {
	Level      string `mapstructure:"level" validate:"oneof=debug info warn error"`
	Format     string `mapstructure:"format" validate:"oneof=json console"`
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb" validate:"gte=1"`
	MaxBackups int    `mapstructure:"max_backups" validate:"gte=0"`
	MaxAgeDays int    `mapstructure:"max_age_days" validate:"gte=0"`
}

type RefData struct {
	Dir                 string `mapstructure:"dir" validate:"required"`
	DomainCacheSize     int    `mapstructure:"domain_cache_size" validate:"gte=1"`
	MissingDomainPolicy string `mapstructure:"missing_domain_policy" validate:"oneof=soft strict"`
}

type Sequence struct {
	Backend       string `mapstructure:"backend" validate:"oneof=file redis dynamodb memory"`
	Dir           string `mapstructure:"dir" validate:"required_if=Backend file"`
	RedisKey      string `mapstructure:"redis_key"`
	DynamoDBTable string `mapstructure:"dynamodb_table" validate:"required_if=Backend dynamodb"`
	MaxRetries    int    `mapstructure:"max_retries" validate:"gte=1"`
}

type Redis struct {
	Addr string `mapstructure:"addr" validate:"required"`
}

type Anchor struct {
	Source   string `mapstructure:"source" validate:"oneof=file redis"`
	File     string `mapstructure:"file" validate:"required_if=Source file"`
	RedisKey string `mapstructure:"redis_key"`
}

type Kafka struct {
	Enabled      bool   `mapstructure:"enabled"`
	Broker       string `mapstructure:"broker" validate:"required_if=Enabled true"`
	RequestTopic string `mapstructure:"request_topic" validate:"required_if=Enabled true"`
	ResultTopic  string `mapstructure:"result_topic"`
	GroupID      string `mapstructure:"group_id" validate:"required_if=Enabled true"`
}

type Bloom struct {
	Enabled   bool    `mapstructure:"enabled"`
	Key       string  `mapstructure:"key"`
	ErrorRate float64 `mapstructure:"error_rate" validate:"gt=0,lt=1"`
	Capacity  int64   `mapstructure:"capacity" validate:"gte=1"`
}

type Reports struct {
	Dir string `mapstructure:"dir"`
}

type FanOut struct {
	Limit int `mapstructure:"limit" validate:"gte=1"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("http.addr", ":8080")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("log.file", "")
	v.SetDefault("log.max_size_mb", 100)
	v.SetDefault("log.max_backups", 5)
	v.SetDefault("log.max_age_days", 28)

	v.SetDefault("refdata.dir", "./refdata")
	v.SetDefault("refdata.domain_cache_size", 128)
	v.SetDefault("refdata.missing_domain_policy", "soft")

	v.SetDefault("sequence.backend", "file")
	v.SetDefault("sequence.dir", "./data/sequence")
	v.SetDefault("sequence.redis_key", "ondc:seq")
	v.SetDefault("sequence.dynamodb_table", "")
	v.SetDefault("sequence.max_retries", 5)

	v.SetDefault("redis.addr", "redis:6379")

	v.SetDefault("anchor.source", "file")
	v.SetDefault("anchor.file", "./data/on_confirm.json")
	v.SetDefault("anchor.redis_key", "ondc:on_confirm")

	v.SetDefault("kafka.enabled", false)
	v.SetDefault("kafka.broker", "kafka:9092")
	v.SetDefault("kafka.request_topic", "ondc.validation.requests")
	v.SetDefault("kafka.result_topic", "ondc.validation.reports")
	v.SetDefault("kafka.group_id", "ondc-conformance")

	v.SetDefault("bloom.enabled", false)
	v.SetDefault("bloom.key", "ondc:messages")
	v.SetDefault("bloom.error_rate", 0.001)
	v.SetDefault("bloom.capacity", 1_000_000)

	v.SetDefault("reports.dir", "./data/reports")
	v.SetDefault("fanout.limit", 16)
}

// Load reads path when it is not empty, then overlays ONDC_* variables
// (ONDC_SEQUENCE_BACKEND for sequence.backend) and validates the result.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix("ONDC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: decode: %w", err)
	}
	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

var validate = validator.New()

// Validate checks the struct tags of cfg.
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}
