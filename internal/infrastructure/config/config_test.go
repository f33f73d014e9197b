package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadAppliesDefaultsWithNoEnvironment(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "localhost", cfg.Server.Host)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "v1.0", cfg.API.Version)
	assert.True(t, cfg.Metrics.Enabled)
}

func TestLoadHonoursEnvironmentOverrides(t *testing.T) {
	t.Setenv("SERVER_HOST", "0.0.0.0")
	t.Setenv("SERVER_PORT", "9999")
	t.Setenv("METRICS_ENABLED", "false")

	cfg := Load()

	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, "9999", cfg.Server.Port)
	assert.False(t, cfg.Metrics.Enabled)
}

func TestServerConfigAddress(t *testing.T) {
	sc := ServerConfig{Host: "127.0.0.1", Port: "8080"}
	assert.Equal(t, "127.0.0.1:8080", sc.Address())
}

func TestNewDefaultIntegrationConfigIsValid(t *testing.T) {
	ic := NewDefaultIntegrationConfig()
	require.NoError(t, ic.Validate())
}

func TestIntegrationConfigValidateRejectsMissingLayerDimensions(t *testing.T) {
	ic := NewDefaultIntegrationConfig()
	ic.Application.Layer.ColumnDimensions = nil

	require.Error(t, ic.Validate())
}

func TestIntegrationConfigValidateRejectsBadPort(t *testing.T) {
	ic := NewDefaultIntegrationConfig()
	ic.Server.Port = 0

	require.Error(t, ic.Validate())
}

func TestIntegrationConfigValidateRejectsMissingSections(t *testing.T) {
	ic := NewDefaultIntegrationConfig()
	ic.Performance = nil

	require.Error(t, ic.Validate())
}

func TestIntegrationServerConfigAddress(t *testing.T) {
	sc := &IntegrationServerConfig{Host: "10.0.0.1", Port: 9090}
	assert.Equal(t, "10.0.0.1:9090", sc.Address())
}
