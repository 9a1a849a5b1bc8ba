package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_FileAndDefaults(t *testing.T) {
	// Arrange
	path := writeConfig(t, `
server:
  mode: debug
database:
  host: localhost
  user: app
  dbname: practice
jwt:
  secret: s3cret
leaderboard:
  accuracy_min_attempts: 10
  cache_ttl: 30s
`)

	// Act
	cfg, err := Load(path)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 10, cfg.Leaderboard.AccuracyMinAttempts)
	assert.Equal(t, 1, cfg.Leaderboard.ExamMinAttempts)
	assert.Equal(t, 30*time.Second, cfg.Leaderboard.CacheTTL)
	assert.Equal(t, 3, cfg.Gamification.TxMaxRetries)
	assert.Equal(t, "gamification:user:", cfg.Gamification.EventsChannelPrefix)

	loc, err := cfg.Gamification.Location()
	require.NoError(t, err)
	assert.Equal(t, time.UTC, loc)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, `
server:
  mode: debug
database:
  host: localhost
  user: app
  dbname: practice
jwt:
  secret: from-file
`)
	t.Setenv("JWT_SECRET", "from-env")
	t.Setenv("LEADERBOARD_EXAM_MIN_ATTEMPTS", "5")

	cfg, err := Load(path)

	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.JWT.Secret)
	assert.Equal(t, 5, cfg.Leaderboard.ExamMinAttempts)
}

func TestLoad_MissingRequired(t *testing.T) {
	path := writeConfig(t, `
server:
  mode: debug
database:
  host: localhost
`)

	_, err := Load(path)

	assert.Error(t, err)
}

func TestValidate_BadTimezone(t *testing.T) {
	cfg := &Config{
		Server:       ServerConfig{Mode: "debug"},
		Database:     DatabaseConfig{Host: "h", User: "u", DBName: "d"},
		JWT:          JWTConfig{Secret: "x"},
		Gamification: GamificationConfig{Timezone: "Mars/Olympus_Mons"},
		Leaderboard:  LeaderboardConfig{DefaultLimit: 10, MaxLimit: 100, AccuracyMinAttempts: 1, ExamMinAttempts: 1},
	}

	assert.Error(t, cfg.Validate())

	cfg.Gamification.Timezone = ""
	assert.NoError(t, cfg.Validate())
}
