package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/OCAP2/auvplanner/internal/estimator"
)

// FileName is the config file looked up in the config directory.
const FileName = "auvplanner.cfg.json"

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Address         string
	ShutdownTimeout time.Duration
}

// InfluxConfig holds InfluxDB publisher settings
type InfluxConfig struct {
	Enabled    bool
	URL        string
	Token      string
	Org        string
	Bucket     string
	BackupPath string
}

// OTelConfig holds OpenTelemetry settings
type OTelConfig struct {
	Enabled      bool
	ServiceName  string
	BatchTimeout time.Duration
	Endpoint     string
	Insecure     bool
}

// LogConfig holds log output settings
type LogConfig struct {
	Level          string
	Dir            string
	MaxSizeMB      int
	MaxBackups     int
	GraylogEnabled bool
	GraylogAddress string
}

// SetDefaults registers default values for every key.
func SetDefaults() {
	viper.SetDefault("logLevel", "info")
	viper.SetDefault("logsDir", "./auvlogs")
	viper.SetDefault("logMaxSizeMB", 20)
	viper.SetDefault("logMaxBackups", 5)

	viper.SetDefault("server.address", ":8080")
	viper.SetDefault("server.shutdownTimeout", "10s")

	viper.SetDefault("cache.size", 256)

	p := estimator.DefaultParams()
	viper.SetDefault("physics.seawaterDensity", p.SeawaterDensity)
	viper.SetDefault("physics.dragCoefficient", p.DragCoefficient)
	viper.SetDefault("physics.frontalArea", p.FrontalArea)
	viper.SetDefault("physics.propulsionEfficiency", p.PropulsionEfficiency)
	viper.SetDefault("physics.verticalDragCoefficient", p.VerticalDragCoeff)
	viper.SetDefault("physics.verticalFrontalArea", p.VerticalFrontalArea)
	viper.SetDefault("physics.gravity", p.Gravity)
	viper.SetDefault("physics.verticalSpeed", p.VerticalSpeed)
	viper.SetDefault("physics.earthRadius", p.EarthRadius)
	viper.SetDefault("physics.metersPerDegreeLon", p.MetersPerDegreeLon)
	viper.SetDefault("physics.metersPerDegreeLat", p.MetersPerDegreeLat)

	viper.SetDefault("influx.enabled", false)
	viper.SetDefault("influx.host", "localhost")
	viper.SetDefault("influx.port", "8086")
	viper.SetDefault("influx.protocol", "http")
	viper.SetDefault("influx.token", "supersecrettoken")
	viper.SetDefault("influx.org", "auv-metrics")
	viper.SetDefault("influx.bucket", "planner_performance")
	viper.SetDefault("influx.backupPath", "./auvlogs/influx_backup.log.gz")

	viper.SetDefault("graylog.enabled", false)
	viper.SetDefault("graylog.address", "localhost:12201")

	viper.SetDefault("otel.enabled", false)
	viper.SetDefault("otel.serviceName", "auvplanner")
	viper.SetDefault("otel.batchTimeout", "5s")
	viper.SetDefault("otel.endpoint", "")
	viper.SetDefault("otel.insecure", true)
}

// Load reads configuration from JSON file and sets default values.
// configDir is the directory containing the config file.
// Defaults stay in effect when the file is missing.
func Load(configDir string) error {
	SetDefaults()

	viper.SetConfigName(FileName)
	viper.AddConfigPath(configDir)
	viper.SetConfigType("json")

	err := viper.ReadInConfig()
	if err != nil {
		return fmt.Errorf("error reading config file: %w", err)
	}

	return nil
}

// GetString returns a string config value.
func GetString(key string) string {
	return viper.GetString(key)
}

// GetInt returns an int config value.
func GetInt(key string) int {
	return viper.GetInt(key)
}

// GetBool returns a bool config value.
func GetBool(key string) bool {
	return viper.GetBool(key)
}

// GetPhysicsParams returns the estimator constants, defaults overlaid with the physics section.
func GetPhysicsParams() (estimator.Params, error) {
	p := estimator.DefaultParams()
	if err := viper.UnmarshalKey("physics", &p); err != nil {
		return estimator.Params{}, fmt.Errorf("error decoding physics config: %w", err)
	}
	if err := p.Validate(); err != nil {
		return estimator.Params{}, err
	}
	return p, nil
}

// GetServerConfig returns the HTTP server settings.
func GetServerConfig() ServerConfig {
	return ServerConfig{
		Address:         viper.GetString("server.address"),
		ShutdownTimeout: viper.GetDuration("server.shutdownTimeout"),
	}
}

// GetInfluxConfig returns the InfluxDB settings.
func GetInfluxConfig() InfluxConfig {
	return InfluxConfig{
		Enabled: viper.GetBool("influx.enabled"),
		URL: fmt.Sprintf(
			"%s://%s:%s",
			viper.GetString("influx.protocol"),
			viper.GetString("influx.host"),
			viper.GetString("influx.port"),
		),
		Token:      viper.GetString("influx.token"),
		Org:        viper.GetString("influx.org"),
		Bucket:     viper.GetString("influx.bucket"),
		BackupPath: viper.GetString("influx.backupPath"),
	}
}

// GetOTelConfig returns the OpenTelemetry settings.
func GetOTelConfig() OTelConfig {
	return OTelConfig{
		Enabled:      viper.GetBool("otel.enabled"),
		ServiceName:  viper.GetString("otel.serviceName"),
		BatchTimeout: viper.GetDuration("otel.batchTimeout"),
		Endpoint:     viper.GetString("otel.endpoint"),
		Insecure:     viper.GetBool("otel.insecure"),
	}
}

// GetLogConfig returns the logging settings.
func GetLogConfig() LogConfig {
	return LogConfig{
		Level:          viper.GetString("logLevel"),
		Dir:            viper.GetString("logsDir"),
		MaxSizeMB:      viper.GetInt("logMaxSizeMB"),
		MaxBackups:     viper.GetInt("logMaxBackups"),
		GraylogEnabled: viper.GetBool("graylog.enabled"),
		GraylogAddress: viper.GetString("graylog.address"),
	}
}

// GetCacheSize returns the number of estimates kept in the result cache.
func GetCacheSize() int {
	return viper.GetInt("cache.size")
}
