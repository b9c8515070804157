/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

// Package config loads memstore configuration from a YAML file, an
// optional .env file and MEMSTORE_* environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/suparena/memstore/errors"
)

// Backend names.
const (
	BackendMemory   = "memory"
	BackendRedis    = "redis"
	BackendDynamoDB = "dynamodb"
)

// Config selects and configures the backing engine.
type Config struct {
	Backend  string         `yaml:"backend"`
	LogLevel string         `yaml:"logLevel"`
	Redis    RedisConfig    `yaml:"redis"`
	DynamoDB DynamoDBConfig `yaml:"dynamodb"`
}

// RedisConfig configures the redis engine.
type RedisConfig struct {
	Addr         string        `yaml:"addr"`
	Password     string        `yaml:"password"`
	DB           int           `yaml:"db"`
	Prefix       string        `yaml:"prefix"`
	QueryTimeout time.Duration `yaml:"queryTimeout"`
	PageSize     int32         `yaml:"pageSize"`
}

// DynamoDBConfig configures the DynamoDB engine. Credentials fall back to
// the default AWS chain when AccessKeyID is empty.
type DynamoDBConfig struct {
	TableName       string        `yaml:"tableName"`
	Region          string        `yaml:"region"`
	Endpoint        string        `yaml:"endpoint"`
	AccessKeyID     string        `yaml:"accessKeyId"`
	SecretAccessKey string        `yaml:"secretAccessKey"`
	ConsistentRead  bool          `yaml:"consistentRead"`
	PageSize        int32         `yaml:"pageSize"`
	MaxRetries      int           `yaml:"maxRetries"`
	RetryBackoff    time.Duration `yaml:"retryBackoff"`
}

// Default returns the configuration used when nothing is set: the memory
// engine at info level.
func Default() *Config {
	return &Config{
		Backend:  BackendMemory,
		LogLevel: "info",
		Redis: RedisConfig{
			Addr:         "localhost:6379",
			Prefix:       "memstore",
			QueryTimeout: 5 * time.Second,
			PageSize:     100,
		},
		DynamoDB: DynamoDBConfig{
			PageSize:     100,
			MaxRetries:   3,
			RetryBackoff: time.Second,
		},
	}
}

// Load builds a configuration from defaults, the YAML file at path (if
// path is not empty), envFiles loaded into the environment (missing files
// are ignored) and MEMSTORE_* variables, then validates it.
func Load(path string, envFiles ...string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	}

	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to load %s: %w", f, err)
		}
	}
	if err := cfg.applyEnvironment(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// applyEnvironment overlays environment variables on the configuration.
func (c *Config) applyEnvironment() error {
	str := func(name string, dst *string) {
		if val := os.Getenv(name); val != "" {
			*dst = val
		}
	}
	str("MEMSTORE_BACKEND", &c.Backend)
	str("MEMSTORE_LOG_LEVEL", &c.LogLevel)

	str("MEMSTORE_REDIS_ADDR", &c.Redis.Addr)
	str("MEMSTORE_REDIS_PASSWORD", &c.Redis.Password)
	str("MEMSTORE_REDIS_PREFIX", &c.Redis.Prefix)
	if val := os.Getenv("MEMSTORE_REDIS_DB"); val != "" {
		db, err := strconv.Atoi(val)
		if err != nil {
			return errors.NewValidationError("MEMSTORE_REDIS_DB", fmt.Sprintf("not an integer: %q", val))
		}
		c.Redis.DB = db
	}
	if val := os.Getenv("MEMSTORE_REDIS_QUERY_TIMEOUT"); val != "" {
		d, err := time.ParseDuration(val)
		if err != nil {
			return errors.NewValidationError("MEMSTORE_REDIS_QUERY_TIMEOUT", err.Error())
		}
		c.Redis.QueryTimeout = d
	}

	str("MEMSTORE_DDB_TABLE_NAME", &c.DynamoDB.TableName)
	str("AWS_REGION", &c.DynamoDB.Region)
	str("MEMSTORE_DDB_REGION", &c.DynamoDB.Region)
	str("MEMSTORE_DDB_ENDPOINT", &c.DynamoDB.Endpoint)
	str("AWS_ACCESS_KEY_ID", &c.DynamoDB.AccessKeyID)
	str("AWS_SECRET_ACCESS_KEY", &c.DynamoDB.SecretAccessKey)
	if val := os.Getenv("MEMSTORE_DDB_CONSISTENT_READ"); val != "" {
		b, err := strconv.ParseBool(val)
		if err != nil {
			return errors.NewValidationError("MEMSTORE_DDB_CONSISTENT_READ", fmt.Sprintf("not a boolean: %q", val))
		}
		c.DynamoDB.ConsistentRead = b
	}
	return nil
}

// Validate checks that the selected backend is fully configured.
func (c *Config) Validate() error {
	if _, err := zap.ParseAtomicLevel(c.LogLevel); err != nil {
		return errors.NewValidationError("logLevel", err.Error())
	}

	switch c.Backend {
	case BackendMemory:
	case BackendRedis:
		if c.Redis.Addr == "" {
			return errors.NewValidationError("redis.addr", "required for the redis backend")
		}
		if c.Redis.QueryTimeout <= 0 {
			return errors.NewValidationError("redis.queryTimeout", "must be positive")
		}
	case BackendDynamoDB:
		if c.DynamoDB.TableName == "" {
			return errors.NewValidationError("dynamodb.tableName", "required for the dynamodb backend")
		}
		if c.DynamoDB.Region == "" {
			return errors.NewValidationError("dynamodb.region", "required for the dynamodb backend")
		}
		if c.DynamoDB.MaxRetries < 0 {
			return errors.NewValidationError("dynamodb.maxRetries", "must not be negative")
		}
	default:
		return errors.NewValidationError("backend", fmt.Sprintf("unknown backend %q", c.Backend))
	}
	return nil
}

// NewLogger returns a production zap logger at the configured level.
func (c *Config) NewLogger() (*zap.Logger, error) {
	level, err := zap.ParseAtomicLevel(c.LogLevel)
	if err != nil {
		return nil, errors.NewValidationError("logLevel", err.Error())
	}
	zc := zap.NewProductionConfig()
	zc.Level = level
	return zc.Build()
}
