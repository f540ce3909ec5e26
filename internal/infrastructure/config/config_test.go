package config

import (
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "app:\n  environment: test\n")

	cfg, err := Load(path)

	require.NoError(t, err)
	assert.Equal(t, "mealplan", cfg.App.Name)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, []string{"Desayuno", "Almuerzo", "Merienda", "Cena"}, cfg.Planning.DefaultSlots)
	assert.Equal(t, 10*time.Minute, cfg.Cache.RecipeTTL)
	assert.False(t, cfg.IsProduction())
}

func TestLoad_FileAndEnvironment(t *testing.T) {
	path := writeConfig(t, t.TempDir(), `
app:
  log_level: debug
planning:
  default_slots: ["Desayuno", "Cena"]
  extra_allergens:
    kiwi: ["kiwi", "actinidia"]
server:
  port: 9000
`)
	t.Setenv("MEALPLAN_SERVER_PORT", "9100")

	cfg, err := Load(path)

	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.App.LogLevel)
	assert.Equal(t, 9100, cfg.Server.Port)
	assert.Equal(t, []string{"Desayuno", "Cena"}, cfg.Planning.DefaultSlots)
	assert.Equal(t, []string{"kiwi", "actinidia"}, cfg.Planning.ExtraAllergens["kiwi"])
}

func TestLoad_Invalid(t *testing.T) {
	cases := map[string]string{
		"bad driver":        "database:\n  driver: oracle\n",
		"postgres w/o host": "database:\n  driver: postgres\n  host: \"\"\n",
		"bad log level":     "app:\n  log_level: loud\n",
		"blank slot":        "planning:\n  default_slots: [\"Desayuno\", \"\"]\n",
		"tracing w/o url":   "monitoring:\n  enable_tracing: true\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeConfig(t, t.TempDir(), body))
			assert.Error(t, err)
		})
	}
}

func TestConfig_OnChange(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "app:\n  log_level: info\n")
	cfg, err := Load(path)
	require.NoError(t, err)

	var level atomic.Value
	level.Store(cfg.App.LogLevel)
	require.True(t, cfg.OnChange(func(next *Config) {
		level.Store(next.App.LogLevel)
	}, nil))

	writeConfig(t, dir, "app:\n  log_level: debug\n")

	assert.Eventually(t, func() bool {
		return level.Load() == "debug"
	}, 5*time.Second, 50*time.Millisecond)
}

func TestConfig_GetDSN(t *testing.T) {
	cfg := &Config{Database: DatabaseConfig{
		Host:     "db.internal",
		Port:     5433,
		Database: "mealplan",
		Username: "planner",
		Password: "secret",
		SSLMode:  "require",
	}}

	assert.Equal(t, "host=db.internal port=5433 user=planner password=secret dbname=mealplan sslmode=require", cfg.GetDSN())
	assert.Contains(t, cfg.Database.DSN("replica-1"), "host=replica-1 ")
}
