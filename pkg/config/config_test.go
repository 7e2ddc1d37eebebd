package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func TestFromViperDefaults(t *testing.T) {
	v := viper.New()
	setDefaults(v)

	cfg := fromViper(v)
	assert.Equal(t, EnvDevelopment, cfg.Env)
	assert.Equal(t, "/api/v1", cfg.APIPrefix)
	assert.Equal(t, 30, cfg.Schedule.SlotInterval)
	assert.Equal(t, 10*time.Minute, cfg.Cache.FinanceTTL)
	assert.Equal(t, 10, cfg.RateLimit.LoginPerMinute)
	assert.Equal(t, []string{"/health", "/ready", "/metrics"}, cfg.Log.SkipPaths)
	assert.Nil(t, cfg.CORS.AllowedOrigins)
}

func TestFromViperOverrides(t *testing.T) {
	v := viper.New()
	setDefaults(v)
	v.Set("SCHEDULE_SLOT_INTERVAL", 0)
	v.Set("ALLOWED_ORIGINS", "https://a.example, ,https://b.example")
	v.Set("JWT_EXPIRATION", "not-a-duration")
	v.Set("FINANCE_CACHE_TTL", "90s")

	cfg := fromViper(v)
	assert.Equal(t, 30, cfg.Schedule.SlotInterval)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, 24*time.Hour, cfg.JWT.Expiration)
	assert.Equal(t, 90*time.Second, cfg.Cache.FinanceTTL)
}
