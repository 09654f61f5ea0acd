package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/everyplants/compartment-rules/internal/convert"
	"github.com/everyplants/compartment-rules/internal/rules"
)

// Config holds the full application configuration.
type Config struct {
	Sheet   SheetConfig   `yaml:"sheet" mapstructure:"sheet"`
	Catalog CatalogConfig `yaml:"catalog" mapstructure:"catalog"`
	Output  OutputConfig  `yaml:"output" mapstructure:"output"`
	Store   StoreConfig   `yaml:"store" mapstructure:"store"`
	Log     LogConfig     `yaml:"log" mapstructure:"log"`
}

// SheetConfig describes the compartment sheet layout.
type SheetConfig struct {
	Path              string `yaml:"path" mapstructure:"path"`
	Name              string `yaml:"name" mapstructure:"name"`
	MaxRowScan        int    `yaml:"max_row_scan" mapstructure:"max_row_scan"`
	EmptyRowThreshold int    `yaml:"empty_row_threshold" mapstructure:"empty_row_threshold"`
	CompartmentStarts []int  `yaml:"compartment_starts" mapstructure:"compartment_starts"`
	DetectHeaders     bool   `yaml:"detect_headers" mapstructure:"detect_headers"`
	HeaderPrefix      string `yaml:"header_prefix" mapstructure:"header_prefix"`
}

// CatalogConfig points at the packaging and shipping unit catalog. An empty
// path uses the catalog built into the binary.
type CatalogConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// OutputConfig configures the generated SQL script.
type OutputConfig struct {
	Path   string `yaml:"path" mapstructure:"path"`
	Schema string `yaml:"schema" mapstructure:"schema"`
	Table  string `yaml:"table" mapstructure:"table"`
}

// StoreConfig configures the database written by apply.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	MaxAttempts int    `yaml:"max_attempts" mapstructure:"max_attempts"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// QualifiedTable returns schema.table, or just table without a schema.
func (o OutputConfig) QualifiedTable() string {
	if o.Schema == "" {
		return o.Table
	}
	return o.Schema + "." + o.Table
}

// ConvertOptions translates the sheet settings for the converter.
func (s SheetConfig) ConvertOptions() convert.Options {
	return convert.Options{
		Starts:        s.CompartmentStarts,
		DetectHeaders: s.DetectHeaders,
		HeaderPrefix:  s.HeaderPrefix,
		Parse: rules.Options{
			MaxRow:            s.MaxRowScan,
			EmptyRowThreshold: s.EmptyRowThreshold,
		},
	}
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("COMPRULES")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("sheet.name", "Compartimenten")
	v.SetDefault("sheet.max_row_scan", rules.DefaultMaxRow)
	v.SetDefault("sheet.empty_row_threshold", rules.DefaultEmptyRowThreshold)
	v.SetDefault("sheet.compartment_starts", convert.DefaultStarts())
	v.SetDefault("sheet.detect_headers", false)
	v.SetDefault("sheet.header_prefix", convert.DefaultHeaderPrefix)
	v.SetDefault("catalog.path", "")
	v.SetDefault("output.path", "compartment_rules.sql")
	v.SetDefault("output.schema", "batchmaker")
	v.SetDefault("output.table", "compartment_rules")
	v.SetDefault("store.driver", "postgres")
	v.SetDefault("store.max_attempts", 3)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate rejects settings the parser cannot work with.
func (c *Config) Validate() error {
	if c.Sheet.MaxRowScan < 2 {
		return eris.Errorf("config: sheet.max_row_scan must be at least 2, got %d", c.Sheet.MaxRowScan)
	}
	if c.Sheet.EmptyRowThreshold < 0 {
		return eris.Errorf("config: sheet.empty_row_threshold must not be negative, got %d", c.Sheet.EmptyRowThreshold)
	}
	if !c.Sheet.DetectHeaders && len(c.Sheet.CompartmentStarts) == 0 {
		return eris.New("config: sheet.compartment_starts is empty and detect_headers is off")
	}
	for _, col := range c.Sheet.CompartmentStarts {
		if col < 1 {
			return eris.Errorf("config: sheet.compartment_starts has invalid column %d", col)
		}
	}
	if c.Output.Table == "" {
		return eris.New("config: output.table is required")
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
