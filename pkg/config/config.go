package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	// Required fields
	JWTSecretKey string `mapstructure:"jwt_secret_key"`

	// Database settings
	DBDriver string `mapstructure:"db_driver"` // "sqlite" or "mysql"
	DBDSN    string `mapstructure:"db_dsn"`

	// Optional API settings
	APIHost string `mapstructure:"api_host"`
	APIPort int    `mapstructure:"api_port"`

	// Optional SSL settings
	SSLCert string `mapstructure:"ssl_cert"`
	SSLKey  string `mapstructure:"ssl_key"`

	// Optional CORS settings
	CORSOrigins []string `mapstructure:"cors_origins"`

	// Optional logging settings
	LogFile   string `mapstructure:"log_file"`
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"` // "json" or "console"

	// Optional JWT settings
	JWTAlgorithm string `mapstructure:"jwt_algorithm"`

	// Server listing pagination
	DefaultPageSize    int    `mapstructure:"default_page_size"`
	MaxPageSize        int    `mapstructure:"max_page_size"`
	PageSizeQueryParam string `mapstructure:"page_size_query_param"`

	ConfigPath string `mapstructure:"-"`
}

const (
	DefaultConfigPath         = "/etc/serverlist/config.yml"
	DefaultEnvFile            = ".env"
	DefaultDBDriver           = "sqlite"
	DefaultDBDSN              = "/var/lib/serverlist/db.sqlite3"
	DefaultAPIHost            = "0.0.0.0"
	DefaultAPIPort            = 8000
	DefaultLogLevel           = "info"
	DefaultLogFormat          = "json"
	DefaultJWTAlgorithm       = "HS256"
	DefaultPageSize           = 10
	DefaultMaxPageSize        = 100
	DefaultPageSizeQueryParam = "page_size"

	EnvPrefix = "SERVERLIST"
)

var defaults = map[string]interface{}{
	"jwt_secret_key":        "",
	"db_driver":             DefaultDBDriver,
	"db_dsn":                DefaultDBDSN,
	"api_host":              DefaultAPIHost,
	"api_port":              DefaultAPIPort,
	"ssl_cert":              "",
	"ssl_key":               "",
	"cors_origins":          []string{},
	"log_file":              "",
	"log_level":             DefaultLogLevel,
	"log_format":            DefaultLogFormat,
	"jwt_algorithm":         DefaultJWTAlgorithm,
	"default_page_size":     DefaultPageSize,
	"max_page_size":         DefaultMaxPageSize,
	"page_size_query_param": DefaultPageSizeQueryParam,
}

// Load reads configuration from the YAML file at configPath, then applies
// SERVERLIST_* environment overrides. A .env file in the working directory
// is loaded into the environment first when present. When configPath is
// empty the default path is used and may be absent.
func Load(configPath string) (*Config, error) {
	if err := godotenv.Load(DefaultEnvFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load %s: %w", DefaultEnvFile, err)
	}

	optional := configPath == ""
	if optional {
		configPath = DefaultConfigPath
	}

	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")

	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if !optional || !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.ConfigPath = configPath

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.JWTSecretKey == "" {
		return fmt.Errorf("jwt_secret_key is required")
	}

	if c.DBDriver != "sqlite" && c.DBDriver != "mysql" {
		return fmt.Errorf("db_driver must be 'sqlite' or 'mysql'")
	}

	if c.DBDSN == "" {
		return fmt.Errorf("db_dsn is required")
	}

	switch c.JWTAlgorithm {
	case "HS256", "HS384", "HS512":
	default:
		return fmt.Errorf("jwt_algorithm must be one of HS256, HS384, HS512")
	}

	if c.DefaultPageSize < 0 {
		return fmt.Errorf("default_page_size must not be negative")
	}

	if c.MaxPageSize > 0 && c.DefaultPageSize > c.MaxPageSize {
		return fmt.Errorf("default_page_size (%d) exceeds max_page_size (%d)", c.DefaultPageSize, c.MaxPageSize)
	}

	// Validate SSL config if provided
	if c.SSLCert != "" || c.SSLKey != "" {
		if c.SSLCert == "" || c.SSLKey == "" {
			return fmt.Errorf("both ssl_cert and ssl_key must be provided")
		}
		if _, err := os.Stat(c.SSLCert); os.IsNotExist(err) {
			return fmt.Errorf("ssl_cert file does not exist: %s", c.SSLCert)
		}
		if _, err := os.Stat(c.SSLKey); os.IsNotExist(err) {
			return fmt.Errorf("ssl_key file does not exist: %s", c.SSLKey)
		}
	}

	return nil
}

func (c *Config) IsDevMode() bool {
	return os.Getenv(EnvPrefix+"_DEV_MODE") == "1"
}
