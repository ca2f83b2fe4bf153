package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNew_Defaults(t *testing.T) {
	for _, key := range []string{"PORT", "GEO_VALIDATION_MODE", "GEO_GEOMETRY_DELAY", "GEMINI_KEYS", "REDIS_DB"} {
		t.Setenv(key, "")
	}

	cfg := New()

	assert.Equal(t, "8085", cfg.Port)
	assert.Equal(t, "random", cfg.WizardCfg.GeoMode)
	assert.Equal(t, 1500*time.Millisecond, cfg.WizardCfg.GeometryDelay)
	assert.Equal(t, 2*time.Second, cfg.WizardCfg.SatelliteDelay)
	assert.Equal(t, 0, cfg.RedisCfg.DB)
	assert.Empty(t, cfg.GeminiAPICfg.APIKeys)
}

func TestNew_FromEnvironment(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("GEO_VALIDATION_MODE", "geometry")
	t.Setenv("GEO_GEOMETRY_DELAY", "250ms")
	t.Setenv("GEO_SATELLITE_DELAY", "not-a-duration")
	t.Setenv("GEO_WORKERS", "8")
	t.Setenv("REDIS_DB", "x")
	t.Setenv("GEMINI_KEYS", " key-a, ,key-b ")

	cfg := New()

	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, "geometry", cfg.WizardCfg.GeoMode)
	assert.Equal(t, 250*time.Millisecond, cfg.WizardCfg.GeometryDelay)
	assert.Equal(t, 2*time.Second, cfg.WizardCfg.SatelliteDelay)
	assert.Equal(t, 8, cfg.WizardCfg.GeoWorkers)
	assert.Equal(t, 0, cfg.RedisCfg.DB)
	assert.Equal(t, []string{"key-a", "key-b"}, cfg.GeminiAPICfg.APIKeys)
}
