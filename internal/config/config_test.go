package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"filewise/internal/config"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "filewise_db", cfg.DB.Name)
	assert.Equal(t, "http://localhost:8090", cfg.Classifier.Primary.Endpoint)
	assert.Nil(t, cfg.Classifier.SecondaryConfig())
	assert.InDelta(t, 0.75, cfg.Classifier.RefineThreshold, 1e-9)
	assert.Equal(t, 120*time.Second, cfg.Bulk.CallTimeout())
	assert.Equal(t, "filewise:batch-progress", cfg.Redis.Channel)
	assert.Empty(t, cfg.Redis.Addr)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("FILEWISE_CLASSIFIER_SECONDARY_ENDPOINT", "https://backup.example.com/")
	t.Setenv("FILEWISE_CLASSIFIER_SECONDARY_API_KEY", "sk-backup")
	t.Setenv("FILEWISE_BULK_CALL_TIMEOUT_SECS", "30")
	t.Setenv("FILEWISE_CORS_ALLOWED_ORIGINS", "https://app.example.com, ,https://admin.example.com")

	cfg, err := config.Load()
	require.NoError(t, err)

	secondary := cfg.Classifier.SecondaryConfig()
	require.NotNil(t, secondary)
	assert.Equal(t, "https://backup.example.com", secondary.Endpoint)
	assert.Equal(t, "sk-backup", secondary.APIKey)
	assert.Equal(t, 30*time.Second, cfg.Bulk.CallTimeout())
	assert.Equal(t, []string{"https://app.example.com", "https://admin.example.com"}, cfg.CORS.AllowedOrigins)
}

func TestLoad_PortFallback(t *testing.T) {
	t.Setenv("PORT", "9000")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, ":9000", cfg.Server.Port)
}

func TestLoad_MissingPrimaryClassifier(t *testing.T) {
	t.Setenv("FILEWISE_CLASSIFIER_PRIMARY_ENDPOINT", " ")

	_, err := config.Load()
	assert.Error(t, err)
}

func TestBulkConfig_CallTimeout_NonPositive(t *testing.T) {
	b := config.BulkConfig{CallTimeoutSecs: 0}
	assert.Equal(t, 120*time.Second, b.CallTimeout())
}

func TestDBConfig_DSN(t *testing.T) {
	d := config.DBConfig{User: "u", Password: "p", Host: "h", Port: 5432, Name: "n", SSLMode: "disable"}
	assert.Equal(t, "postgres://u:p@h:5432/n?sslmode=disable", d.DSN())
}
