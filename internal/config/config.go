// Package config loads application configuration with the usual layering:
// built-in defaults, then config.yaml, then .env, then process environment
// variables prefixed with STOREKEEPER_.
package config

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const envPrefix = "STOREKEEPER_"

// Config holds application configuration values.
type Config struct {
	DataDir string     `koanf:"datadir"`
	Log     LogConfig  `koanf:"log"`
	Auth    AuthConfig `koanf:"auth"`
}

type LogConfig struct {
	Level  string `koanf:"level"`
	Pretty bool   `koanf:"pretty"`
}

// AuthConfig carries the login credential and the session token settings.
// PasswordHash is a bcrypt hash; when empty, Password is hashed at startup.
type AuthConfig struct {
	Password     string        `koanf:"password"`
	PasswordHash string        `koanf:"passwordhash"`
	TokenSecret  string        `koanf:"tokensecret"`
	TokenTTL     time.Duration `koanf:"tokenttl"`
}

func defaults() map[string]any {
	return map[string]any{
		"datadir":          "data",
		"log.level":        "info",
		"log.pretty":       true,
		"auth.password":    "admin",
		"auth.tokensecret": "dev_secret",
		"auth.tokenttl":    "24h",
	}
}

// Load assembles the configuration from all layers and validates it.
func Load() (Config, error) {
	var cfg Config
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return cfg, fmt.Errorf("error loading defaults: %w", err)
	}

	if err := k.Load(file.Provider("config.yaml"), yaml.Parser()); err != nil {
		if !os.IsNotExist(err) {
			log.Printf("WARN: error loading config.yaml: %v", err)
		}
	}

	envTransformer := func(key string) string {
		key = strings.ToLower(key)
		key = strings.TrimPrefix(key, strings.ToLower(envPrefix))
		return strings.ReplaceAll(key, "_", ".")
	}
	if envFileMap, err := godotenv.Read(".env"); err == nil {
		envMap := make(map[string]any)
		for key, value := range envFileMap {
			envMap[envTransformer(key)] = value
		}
		if err := k.Load(confmap.Provider(envMap, "."), nil); err != nil {
			log.Printf("WARN: error loading .env config: %v", err)
		}
	} else if !os.IsNotExist(err) {
		log.Printf("WARN: error reading .env file: %v", err)
	}

	if err := k.Load(env.Provider(envPrefix, ".", envTransformer), nil); err != nil {
		log.Printf("WARN: error loading system env vars: %v", err)
	}

	if err := k.Unmarshal("", &cfg); err != nil {
		return cfg, fmt.Errorf("error unmarshalling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("data directory is not configured")
	}
	if c.Auth.Password == "" && c.Auth.PasswordHash == "" {
		return fmt.Errorf("neither auth password nor password hash is configured")
	}
	if c.Auth.TokenSecret == "" {
		return fmt.Errorf("auth token secret is not configured")
	}
	if c.Auth.TokenTTL <= 0 {
		return fmt.Errorf("auth token TTL must be greater than zero")
	}
	return nil
}
