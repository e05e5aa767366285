package config

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Backend   BackendConfig   `mapstructure:"backend"`
	Logger    LoggerConfig    `mapstructure:"logger"`
	Quotation QuotationConfig `mapstructure:"quotation"`
	Intake    IntakeConfig    `mapstructure:"intake"`
	Export    ExportConfig    `mapstructure:"export"`
	Inventory InventoryConfig `mapstructure:"inventory"`
}

type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

type BackendConfig struct {
	Provider    string        `mapstructure:"provider"`
	Origin      string        `mapstructure:"origin"`
	Timeout     time.Duration `mapstructure:"timeout"`
	MockLatency time.Duration `mapstructure:"mock_latency"`
}

type LoggerConfig struct {
	Level             string `mapstructure:"level"`
	Encoding          string `mapstructure:"encoding"`
	DisableCaller     bool   `mapstructure:"disable_caller"`
	DisableStacktrace bool   `mapstructure:"disable_stacktrace"`
	File              string `mapstructure:"file"`
}

type QuotationConfig struct {
	TaxRate float64 `mapstructure:"tax_rate"`
	Prefix  string  `mapstructure:"prefix"`
}

type IntakeConfig struct {
	SuccessDelay time.Duration `mapstructure:"success_delay"`
}

type ExportConfig struct {
	Dir string `mapstructure:"dir"`
}

type InventoryConfig struct {
	NodeID int64 `mapstructure:"node_id"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("backend.provider", "http")
	v.SetDefault("backend.origin", "http://localhost:8000")
	v.SetDefault("backend.timeout", time.Duration(0))
	v.SetDefault("backend.mock_latency", 300*time.Millisecond)
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.encoding", "console")
	v.SetDefault("logger.disable_caller", false)
	v.SetDefault("logger.disable_stacktrace", true)
	v.SetDefault("logger.file", "")
	v.SetDefault("quotation.tax_rate", 0.18)
	v.SetDefault("quotation.prefix", "QT")
	v.SetDefault("intake.success_delay", time.Second)
	v.SetDefault("export.dir", ".")
	v.SetDefault("inventory.node_id", 1)
}

// LoadConfig loads configuration from an optional config.yaml and
// environment variables
func LoadConfig() (*Config, error) {
	return LoadConfigFrom("")
}

// LoadConfigFrom loads configuration from path, or searches the usual
// locations when path is empty
func LoadConfigFrom(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		// Set config file locations
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./")
		v.AddConfigPath("./deploy/")
		v.AddConfigPath("$HOME/.quotedesk/")
		v.AddConfigPath("/etc/quotedesk/")
	}

	// Enable environment variable override with QUOTEDESK_ prefix
	v.SetEnvPrefix("QUOTEDESK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// Validate rejects values the rest of the program cannot work with
func (c *Config) Validate() error {
	switch c.Backend.Provider {
	case "http", "mock":
	default:
		return fmt.Errorf("unsupported backend provider: %s", c.Backend.Provider)
	}
	if c.Quotation.TaxRate <= 0 || math.IsInf(c.Quotation.TaxRate, 0) || math.IsNaN(c.Quotation.TaxRate) {
		return fmt.Errorf("quotation.tax_rate must be a positive number, got %v", c.Quotation.TaxRate)
	}
	if c.Intake.SuccessDelay < 0 {
		return fmt.Errorf("intake.success_delay must not be negative, got %v", c.Intake.SuccessDelay)
	}
	if c.Inventory.NodeID < 0 || c.Inventory.NodeID > 1023 {
		return fmt.Errorf("inventory.node_id must be between 0 and 1023, got %d", c.Inventory.NodeID)
	}
	return nil
}
