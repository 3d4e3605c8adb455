// Package config loads service settings from the environment, an optional
// .env file and a yaml house rules file.
package config

import (
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/jason-s-yu/cabo/engine"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// Environment variable names.
const (
	EnvRulesFile       = "CABO_RULES_FILE"
	EnvDatabaseURL     = "DATABASE_URL"
	EnvRedisAddr       = "REDIS_ADDR"
	EnvDecisionTimeout = "CABO_DECISION_TIMEOUT"
	EnvMetricsAddr     = "CABO_METRICS_ADDR"
	EnvLogLevel        = "LOG_LEVEL"
)

// Config is the resolved service configuration.
type Config struct {
	RulesFile       string
	DatabaseURL     string
	RedisAddr       string
	DecisionTimeout time.Duration
	MetricsAddr     string
	LogLevel        logrus.Level
	Rules           engine.HouseRules
}

// Load reads envFiles (missing files are skipped) and resolves the config.
// Variables already present in the process environment win over the files.
func Load(envFiles ...string) (Config, error) {
	fromFiles := map[string]string{}
	for _, f := range envFiles {
		vals, err := godotenv.Read(f)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return Config{}, errors.Wrapf(err, "error reading env file [%s]", f)
		}
		for k, v := range vals {
			fromFiles[k] = v
		}
	}
	return FromEnv(func(key string) string {
		if v, ok := os.LookupEnv(key); ok {
			return v
		}
		return fromFiles[key]
	})
}

// FromEnv resolves the config through getenv.
func FromEnv(getenv func(string) string) (Config, error) {
	cfg := Config{
		RulesFile:       strings.TrimSpace(getenv(EnvRulesFile)),
		DatabaseURL:     strings.TrimSpace(getenv(EnvDatabaseURL)),
		RedisAddr:       strings.TrimSpace(getenv(EnvRedisAddr)),
		MetricsAddr:     strings.TrimSpace(getenv(EnvMetricsAddr)),
		DecisionTimeout: engine.DefaultDecisionTimeout,
		LogLevel:        logrus.InfoLevel,
		Rules:           engine.DefaultHouseRules(),
	}

	if v := strings.TrimSpace(getenv(EnvDecisionTimeout)); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, errors.Wrapf(err, "%s", EnvDecisionTimeout)
		}
		if d <= 0 {
			return Config{}, errors.Errorf("%s must be positive, got %s", EnvDecisionTimeout, d)
		}
		cfg.DecisionTimeout = d
	}

	if v := strings.TrimSpace(getenv(EnvLogLevel)); v != "" {
		lvl, err := logrus.ParseLevel(v)
		if err != nil {
			return Config{}, errors.Wrapf(err, "%s", EnvLogLevel)
		}
		cfg.LogLevel = lvl
	}

	if cfg.RulesFile != "" {
		rules, err := LoadRules(cfg.RulesFile)
		if err != nil {
			return Config{}, err
		}
		cfg.Rules = rules
	}
	return cfg, nil
}

// LoadRules reads a yaml house rules file. Keys left out keep their defaults.
func LoadRules(path string) (engine.HouseRules, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return engine.HouseRules{}, errors.Wrapf(err, "error reading house rules [%s]", path)
	}
	rules, err := ParseRules(data)
	if err != nil {
		return engine.HouseRules{}, errors.Wrapf(err, "house rules [%s]", path)
	}
	return rules, nil
}

// ParseRules decodes yaml over DefaultHouseRules and validates the result.
func ParseRules(data []byte) (engine.HouseRules, error) {
	rules := engine.DefaultHouseRules()
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return engine.HouseRules{}, errors.Wrap(err, "error parsing yaml")
	}
	if err := rules.Validate(); err != nil {
		return engine.HouseRules{}, err
	}
	return rules, nil
}

// NewLogger returns a text logger at cfg.LogLevel.
func (cfg Config) NewLogger() *logrus.Logger {
	l := logrus.New()
	l.SetLevel(cfg.LogLevel)
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	return l
}
