// internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config represents the application configuration
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Security  SecurityConfig  `mapstructure:"security"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
	Digitizer DigitizerConfig `mapstructure:"digitizer"`
	Simulator SimulatorConfig `mapstructure:"simulator"`
	Discovery DiscoveryConfig `mapstructure:"discovery"`
	App       AppConfig       `mapstructure:"app"`
}

// ServerConfig represents HTTP server configuration
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
	TLS          TLSConfig     `mapstructure:"tls"`
}

// TLSConfig represents TLS configuration
type TLSConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	CertFile string `mapstructure:"cert_file"`
	KeyFile  string `mapstructure:"key_file"`
}

// DatabaseConfig represents database configuration. With Enabled false
// capture records are kept in memory.
type DatabaseConfig struct {
	Enabled        bool          `mapstructure:"enabled"`
	Host           string        `mapstructure:"host"`
	Port           int           `mapstructure:"port"`
	User           string        `mapstructure:"user"`
	Password       string        `mapstructure:"password"`
	DBName         string        `mapstructure:"dbname"`
	SSLMode        string        `mapstructure:"sslmode"`
	MaxOpenConns   int           `mapstructure:"max_open_conns"`
	MaxIdleConns   int           `mapstructure:"max_idle_conns"`
	MaxLifetime    time.Duration `mapstructure:"max_lifetime"`
	MigrationsPath string        `mapstructure:"migrations_path"`
	Retention      time.Duration `mapstructure:"retention"`
}

// SecurityConfig represents security configuration
type SecurityConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// LoggingConfig represents logging configuration
type LoggingConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	Output     string `mapstructure:"output"`
	MaxSize    int    `mapstructure:"max_size"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"`
	Compress   bool   `mapstructure:"compress"`
}

// MetricsConfig represents the Prometheus endpoint
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// DigitizerConfig represents the instrument and its power-on settings
type DigitizerConfig struct {
	Driver           string        `mapstructure:"driver"`
	Serial           string        `mapstructure:"serial"`
	AutoOpen         bool          `mapstructure:"auto_open"`
	PollInterval     time.Duration `mapstructure:"poll_interval"`
	WaitTimeout      time.Duration `mapstructure:"wait_timeout"`
	OperationTimeout time.Duration `mapstructure:"operation_timeout"`
	Output           string        `mapstructure:"output"`

	Vertical   VerticalDefaults   `mapstructure:"vertical"`
	Horizontal HorizontalDefaults `mapstructure:"horizontal"`
	Trigger    TriggerDefaults    `mapstructure:"trigger"`
}

// VerticalDefaults are applied when the session is created
type VerticalDefaults struct {
	Range     string  `mapstructure:"range"`
	Offset    float64 `mapstructure:"offset"`
	Bandwidth string  `mapstructure:"bandwidth"`
}

// HorizontalDefaults are applied when the session is created
type HorizontalDefaults struct {
	SampleRateGHz float64 `mapstructure:"sample_rate_ghz"`
	Samples       int     `mapstructure:"samples"`
	Segments      int     `mapstructure:"segments"`
}

// TriggerDefaults are applied when the session is created
type TriggerDefaults struct {
	Delay float64 `mapstructure:"delay"`
}

// SimulatorConfig tunes the simulator backend
type SimulatorConfig struct {
	Variant        string        `mapstructure:"variant"`
	Serial         string        `mapstructure:"serial"`
	CaptureLatency time.Duration `mapstructure:"capture_latency"`
	Amplitude      float64       `mapstructure:"amplitude"`
	Noise          float64       `mapstructure:"noise"`
	Seed           int64         `mapstructure:"seed"`
}

// DiscoveryConfig represents USB discovery settings
type DiscoveryConfig struct {
	USBTimeout time.Duration `mapstructure:"usb_timeout"`
}

// AppConfig represents application metadata
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
	Debug       bool   `mapstructure:"debug"`
}

// Load loads configuration from file and environment variables. An empty
// path searches the default locations; a missing file leaves the defaults.
func Load(path string) (*Config, error) {
	v := viper.New()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("./internal/config")
	}

	// Environment variable support
	v.SetEnvPrefix("DIGITIZER_SERVICE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", "8086")
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "60s")
	v.SetDefault("server.idle_timeout", "120s")
	v.SetDefault("server.tls.enabled", false)

	// Database defaults
	v.SetDefault("database.enabled", false)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "postgres")
	v.SetDefault("database.dbname", "digitizer_service")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.max_idle_conns", 2)
	v.SetDefault("database.max_lifetime", "5m")
	v.SetDefault("database.migrations_path", "migrations")
	v.SetDefault("database.retention", "720h")

	// Security defaults
	v.SetDefault("security.allowed_origins", []string{"*"})

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.output", "stdout")
	v.SetDefault("logging.max_size", 100)
	v.SetDefault("logging.max_backups", 3)
	v.SetDefault("logging.max_age", 28)
	v.SetDefault("logging.compress", true)

	// Metrics defaults
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")

	// Digitizer defaults
	v.SetDefault("digitizer.driver", "simulator")
	v.SetDefault("digitizer.serial", "")
	v.SetDefault("digitizer.auto_open", false)
	v.SetDefault("digitizer.poll_interval", "1ms")
	v.SetDefault("digitizer.wait_timeout", "10s")
	v.SetDefault("digitizer.operation_timeout", "30s")
	v.SetDefault("digitizer.output", "result.bin")
	v.SetDefault("digitizer.vertical.range", "200mV")
	v.SetDefault("digitizer.vertical.offset", 0.0)
	v.SetDefault("digitizer.vertical.bandwidth", "full")
	v.SetDefault("digitizer.horizontal.sample_rate_ghz", 2.0)
	v.SetDefault("digitizer.horizontal.samples", 10000)
	v.SetDefault("digitizer.horizontal.segments", 20)
	v.SetDefault("digitizer.trigger.delay", 0.0)

	// Simulator defaults
	v.SetDefault("simulator.variant", "6404D")
	v.SetDefault("simulator.serial", "SIM00/0001")
	v.SetDefault("simulator.capture_latency", "5ms")
	v.SetDefault("simulator.amplitude", 150.0)
	v.SetDefault("simulator.noise", 40.0)
	v.SetDefault("simulator.seed", 1)

	// Discovery defaults
	v.SetDefault("discovery.usb_timeout", "5s")

	// App defaults
	v.SetDefault("app.name", "digitizer-service")
	v.SetDefault("app.version", "1.0.0")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.debug", false)
}

// validate validates the configuration
func validate(config *Config) error {
	if config.Server.Host == "" {
		return fmt.Errorf("server.host is required")
	}
	if config.Server.Port == "" {
		return fmt.Errorf("server.port is required")
	}
	if config.Database.Enabled && config.Database.Host == "" {
		return fmt.Errorf("database.host is required when the database is enabled")
	}
	if config.Digitizer.Driver == "" {
		return fmt.Errorf("digitizer.driver is required")
	}
	if config.Digitizer.PollInterval <= 0 {
		return fmt.Errorf("digitizer.poll_interval must be positive")
	}
	if config.Digitizer.WaitTimeout <= 0 {
		return fmt.Errorf("digitizer.wait_timeout must be positive")
	}

	// Validate environment
	validEnvs := []string{"development", "staging", "production", "test"}
	if !contains(validEnvs, config.App.Environment) {
		return fmt.Errorf("app.environment must be one of: %v", validEnvs)
	}

	// Validate logging level
	validLevels := []string{"debug", "info", "warn", "error", "fatal"}
	if !contains(validLevels, config.Logging.Level) {
		return fmt.Errorf("logging.level must be one of: %v", validLevels)
	}

	return nil
}

func contains(values []string, v string) bool {
	for _, s := range values {
		if s == v {
			return true
		}
	}
	return false
}

// GetDatabaseDSN returns the database connection string
func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host, c.Database.Port, c.Database.User,
		c.Database.Password, c.Database.DBName, c.Database.SSLMode)
}

// GetServerAddr returns the server address
func (c *Config) GetServerAddr() string {
	return fmt.Sprintf("%s:%s", c.Server.Host, c.Server.Port)
}

// IsProduction checks if the environment is production
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// IsDevelopment checks if the environment is development
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// IsDebugEnabled checks if debug mode is enabled
func (c *Config) IsDebugEnabled() bool {
	return c.App.Debug || c.IsDevelopment()
}

// DriverOptions returns the construction options for the configured backend
func (c *Config) DriverOptions() map[string]interface{} {
	return map[string]interface{}{
		"variant":         c.Simulator.Variant,
		"serial":          c.Simulator.Serial,
		"capture_latency": c.Simulator.CaptureLatency,
		"amplitude":       c.Simulator.Amplitude,
		"noise":           c.Simulator.Noise,
		"seed":            int(c.Simulator.Seed),
	}
}
