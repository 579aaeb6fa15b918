package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OCAP2/auvplanner/internal/estimator"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte(content), 0644))
	return dir
}

func TestLoad_WithValidConfigFile(t *testing.T) {
	t.Cleanup(viper.Reset)

	dir := writeConfig(t, `{
		"logLevel": "debug",
		"server": { "address": "127.0.0.1:9000" },
		"influx": { "enabled": true, "host": "10.0.0.1" }
	}`)

	err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "debug", viper.GetString("logLevel"))
	assert.Equal(t, "127.0.0.1:9000", viper.GetString("server.address"))
	assert.Equal(t, true, viper.GetBool("influx.enabled"))
	assert.Equal(t, "10.0.0.1", viper.GetString("influx.host"))
}

func TestLoad_DefaultValues(t *testing.T) {
	t.Cleanup(viper.Reset)

	require.NoError(t, Load(writeConfig(t, `{}`)))

	assert.Equal(t, "info", viper.GetString("logLevel"))
	assert.Equal(t, "./auvlogs", viper.GetString("logsDir"))
	assert.Equal(t, ":8080", viper.GetString("server.address"))
	assert.Equal(t, 256, viper.GetInt("cache.size"))
	assert.Equal(t, false, viper.GetBool("influx.enabled"))
	assert.Equal(t, "auv-metrics", viper.GetString("influx.org"))
	assert.Equal(t, false, viper.GetBool("graylog.enabled"))
	assert.Equal(t, "localhost:12201", viper.GetString("graylog.address"))
	assert.Equal(t, false, viper.GetBool("otel.enabled"))
	assert.Equal(t, "auvplanner", viper.GetString("otel.serviceName"))
	assert.Equal(t, 1025.0, viper.GetFloat64("physics.seawaterDensity"))
}

func TestLoad_MissingFile(t *testing.T) {
	t.Cleanup(viper.Reset)

	err := Load("/nonexistent/path")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error reading config file")

	// defaults still apply
	assert.Equal(t, ":8080", GetServerConfig().Address)
}

func TestGetString(t *testing.T) {
	t.Cleanup(viper.Reset)
	viper.Set("testKey", "testValue")
	assert.Equal(t, "testValue", GetString("testKey"))
}

func TestGetInt(t *testing.T) {
	t.Cleanup(viper.Reset)
	viper.Set("testInt", 42)
	assert.Equal(t, 42, GetInt("testInt"))
}

func TestGetBool(t *testing.T) {
	t.Cleanup(viper.Reset)
	viper.Set("testBool", true)
	assert.Equal(t, true, GetBool("testBool"))
}

func TestGetPhysicsParams_Defaults(t *testing.T) {
	t.Cleanup(viper.Reset)
	require.NoError(t, Load(writeConfig(t, `{}`)))

	p, err := GetPhysicsParams()
	require.NoError(t, err)
	assert.Equal(t, estimator.DefaultParams(), p)
}

func TestGetPhysicsParams_Override(t *testing.T) {
	t.Cleanup(viper.Reset)
	require.NoError(t, Load(writeConfig(t, `{
		"physics": { "dragCoefficient": 0.8, "verticalSpeed": 0.25 }
	}`)))

	p, err := GetPhysicsParams()
	require.NoError(t, err)

	want := estimator.DefaultParams()
	want.DragCoefficient = 0.8
	want.VerticalSpeed = 0.25
	assert.Equal(t, want, p)
}

func TestGetPhysicsParams_Invalid(t *testing.T) {
	t.Cleanup(viper.Reset)
	require.NoError(t, Load(writeConfig(t, `{
		"physics": { "propulsionEfficiency": 0 }
	}`)))

	_, err := GetPhysicsParams()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "propulsionEfficiency")
}

func TestGetServerConfig(t *testing.T) {
	t.Cleanup(viper.Reset)
	require.NoError(t, Load(writeConfig(t, `{ "server": { "shutdownTimeout": "30s" } }`)))

	sc := GetServerConfig()
	assert.Equal(t, ":8080", sc.Address)
	assert.Equal(t, 30*time.Second, sc.ShutdownTimeout)
}

func TestGetInfluxConfig(t *testing.T) {
	t.Cleanup(viper.Reset)
	require.NoError(t, Load(writeConfig(t, `{
		"influx": { "protocol": "https", "host": "influx.local", "port": "443", "bucket": "perf" }
	}`)))

	ic := GetInfluxConfig()
	assert.Equal(t, false, ic.Enabled)
	assert.Equal(t, "https://influx.local:443", ic.URL)
	assert.Equal(t, "auv-metrics", ic.Org)
	assert.Equal(t, "perf", ic.Bucket)
}

func TestGetOTelConfig_Defaults(t *testing.T) {
	t.Cleanup(viper.Reset)
	require.NoError(t, Load(writeConfig(t, `{}`)))

	cfg := GetOTelConfig()
	assert.Equal(t, false, cfg.Enabled)
	assert.Equal(t, "auvplanner", cfg.ServiceName)
	assert.Equal(t, 5*time.Second, cfg.BatchTimeout)
	assert.Equal(t, "", cfg.Endpoint)
	assert.Equal(t, true, cfg.Insecure)
}

func TestGetOTelConfig_Override(t *testing.T) {
	t.Cleanup(viper.Reset)
	require.NoError(t, Load(writeConfig(t, `{
		"otel": {
			"enabled": true,
			"serviceName": "my-service",
			"batchTimeout": "30s",
			"endpoint": "localhost:4317",
			"insecure": false
		}
	}`)))

	oc := GetOTelConfig()
	assert.Equal(t, true, oc.Enabled)
	assert.Equal(t, "my-service", oc.ServiceName)
	assert.Equal(t, 30*time.Second, oc.BatchTimeout)
	assert.Equal(t, "localhost:4317", oc.Endpoint)
	assert.Equal(t, false, oc.Insecure)
}

func TestGetLogConfig(t *testing.T) {
	t.Cleanup(viper.Reset)
	require.NoError(t, Load(writeConfig(t, `{ "graylog": { "enabled": true } }`)))

	lc := GetLogConfig()
	assert.Equal(t, "info", lc.Level)
	assert.Equal(t, "./auvlogs", lc.Dir)
	assert.Equal(t, 20, lc.MaxSizeMB)
	assert.Equal(t, true, lc.GraylogEnabled)
	assert.Equal(t, "localhost:12201", lc.GraylogAddress)
}
