package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("REDIS_ADDR", "")
	t.Setenv("REMINDER_CRON", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, "http://localhost:9090/api", cfg.Remote.URL)
	assert.Equal(t, "0 0 * * * *", cfg.Reminders.Cron)
	assert.Equal(t, 3, cfg.Reminders.DeadlineDays)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("REMOTE_TIMEOUT", "5s")
	t.Setenv("AUTH_DISABLED", "true")
	t.Setenv("TELEGRAM_RATE_PER_SEC", "0.5")
	t.Setenv("REDIS_DB", "not-a-number")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, cfg.Remote.Timeout)
	assert.True(t, cfg.Firebase.AuthDisabled)
	assert.Equal(t, 0.5, cfg.Telegram.RatePerSec)
	assert.Equal(t, 0, cfg.Redis.DB)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Server:   ServerConfig{Port: "8080", ProjectServer: true},
			Database: DatabaseConfig{Host: "db"},
			Redis:    RedisConfig{Addr: "redis:6379"},
			App:      AppConfig{LogFormat: "json"},
		}
	}
	require.NoError(t, valid().Validate())

	c := valid()
	c.Database.Host = ""
	assert.Error(t, c.Validate())
	c.Server.ProjectServer = false
	assert.NoError(t, c.Validate())

	c = valid()
	c.Redis.Addr = ""
	assert.Error(t, c.Validate())

	c = valid()
	c.App.LogFormat = "xml"
	assert.Error(t, c.Validate())
}
