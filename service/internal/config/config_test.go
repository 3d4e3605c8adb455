package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jason-s-yu/cabo/engine"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envMap(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestFromEnvDefaults(t *testing.T) {
	cfg, err := FromEnv(envMap(nil))
	require.NoError(t, err)
	assert.Equal(t, engine.DefaultHouseRules(), cfg.Rules)
	assert.Equal(t, engine.DefaultDecisionTimeout, cfg.DecisionTimeout)
	assert.Equal(t, logrus.InfoLevel, cfg.LogLevel)
	assert.Empty(t, cfg.DatabaseURL)
	assert.Empty(t, cfg.RedisAddr)
	assert.Empty(t, cfg.MetricsAddr)
}

func TestFromEnvValues(t *testing.T) {
	cfg, err := FromEnv(envMap(map[string]string{
		EnvRulesFile:       filepath.Join("testdata", "rules.yaml"),
		EnvDatabaseURL:     "postgres://cabo@localhost/cabo",
		EnvRedisAddr:       " localhost:6379 ",
		EnvDecisionTimeout: "250ms",
		EnvMetricsAddr:     ":9100",
		EnvLogLevel:        "debug",
	}))
	require.NoError(t, err)
	assert.Equal(t, "localhost:6379", cfg.RedisAddr)
	assert.Equal(t, 250*time.Millisecond, cfg.DecisionTimeout)
	assert.Equal(t, ":9100", cfg.MetricsAddr)
	assert.Equal(t, logrus.DebugLevel, cfg.LogLevel)
	assert.Equal(t, engine.HouseRules{
		StartingSeat:     1,
		FalseCaboPenalty: 10,
		TieBreak:         engine.TieFavorCaller,
	}, cfg.Rules)
	assert.Equal(t, logrus.DebugLevel, cfg.NewLogger().GetLevel())
}

func TestFromEnvErrors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"bad timeout", map[string]string{EnvDecisionTimeout: "soon"}},
		{"zero timeout", map[string]string{EnvDecisionTimeout: "0s"}},
		{"bad level", map[string]string{EnvLogLevel: "loud"}},
		{"missing rules file", map[string]string{EnvRulesFile: filepath.Join("testdata", "nope.yaml")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromEnv(envMap(tt.env))
			assert.Error(t, err)
		})
	}
}

func TestParseRules(t *testing.T) {
	rules, err := ParseRules([]byte("false_cabo_penalty: 3\n"))
	require.NoError(t, err)
	want := engine.DefaultHouseRules()
	want.FalseCaboPenalty = 3
	assert.Equal(t, want, rules)

	_, err = ParseRules([]byte("tie_break: coin_flip\n"))
	assert.Error(t, err)

	_, err = ParseRules([]byte("starting_seat: 2\n"))
	assert.Error(t, err)

	_, err = ParseRules([]byte("starting_seat: [\n"))
	assert.Error(t, err)
}

func TestLoadEnvFile(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("CABO_TEST_ONLY_KEY=from-file\n"+EnvDecisionTimeout+"=2s\n"), 0o600))

	if _, set := os.LookupEnv(EnvDecisionTimeout); set {
		t.Skipf("%s set in the environment", EnvDecisionTimeout)
	}
	cfg, err := Load(filepath.Join(dir, "missing.env"), envFile)
	require.NoError(t, err)
	assert.Equal(t, 2*time.Second, cfg.DecisionTimeout)
	_, leaked := os.LookupEnv("CABO_TEST_ONLY_KEY")
	assert.False(t, leaked, "Load must not modify the process environment")
}
