package config

import (
	"fmt"
	"math"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Input    InputConfig    `yaml:"input" mapstructure:"input"`
	Cluster  ClusterConfig  `yaml:"cluster" mapstructure:"cluster"`
	Features FeaturesConfig `yaml:"features" mapstructure:"features"`
	Selector SelectorConfig `yaml:"selector" mapstructure:"selector"`
	Output   OutputConfig   `yaml:"output" mapstructure:"output"`
	Log      LogConfig      `yaml:"log" mapstructure:"log"`
}

// InputConfig points at the gym and store point sets.
type InputConfig struct {
	GymsPath   string `yaml:"gyms_path" mapstructure:"gyms_path"`
	StoresPath string `yaml:"stores_path" mapstructure:"stores_path"`
}

// ClusterConfig configures density clustering of gyms.
type ClusterConfig struct {
	RadiusKm  float64 `yaml:"radius_km" mapstructure:"radius_km"`
	MinPoints int     `yaml:"min_points" mapstructure:"min_points"`
}

// FeaturesConfig configures per-cluster feature extraction.
type FeaturesConfig struct {
	StoreRadiusKm float64 `yaml:"store_radius_km" mapstructure:"store_radius_km"`
	DenseRadiusKm float64 `yaml:"dense_radius_km" mapstructure:"dense_radius_km"`
	Workers       int     `yaml:"workers" mapstructure:"workers"`
}

// SelectorConfig configures the recommendation selector.
type SelectorConfig struct {
	MaxLatitude float64 `yaml:"max_latitude" mapstructure:"max_latitude"`
}

// OutputConfig configures report rendering.
type OutputConfig struct {
	Format string `yaml:"format" mapstructure:"format"`
	Dir    string `yaml:"dir" mapstructure:"dir"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("gymzone")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("GYMZONE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("input.gyms_path", "clean_gym_locations.csv")
	v.SetDefault("input.stores_path", "clean_supplement_store_locations.csv")
	v.SetDefault("cluster.radius_km", 4.5)
	v.SetDefault("cluster.min_points", 3)
	v.SetDefault("features.store_radius_km", 3.0)
	v.SetDefault("features.dense_radius_km", 3.0)
	v.SetDefault("features.workers", 4)
	v.SetDefault("selector.max_latitude", 30.6)
	v.SetDefault("output.format", "table")
	v.SetDefault("output.dir", ".")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

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

	return &cfg, nil
}

// validFormats lists the report formats understood by the recommend command.
var validFormats = map[string]bool{
	"table":   true,
	"csv":     true,
	"json":    true,
	"yaml":    true,
	"xlsx":    true,
	"geojson": true,
}

// Validate checks that the configuration is internally consistent.
func (c *Config) Validate() error {
	var errs []string

	if c.Cluster.RadiusKm <= 0 {
		errs = append(errs, "cluster.radius_km must be > 0")
	}
	if c.Cluster.MinPoints < 1 {
		errs = append(errs, "cluster.min_points must be >= 1")
	}
	if c.Features.StoreRadiusKm <= 0 {
		errs = append(errs, "features.store_radius_km must be > 0")
	}
	if c.Features.DenseRadiusKm <= 0 {
		errs = append(errs, "features.dense_radius_km must be > 0")
	}
	if c.Features.Workers < 1 || c.Features.Workers > 64 {
		errs = append(errs, "features.workers must be between 1 and 64")
	}
	if math.IsNaN(c.Selector.MaxLatitude) || c.Selector.MaxLatitude < -90 || c.Selector.MaxLatitude > 90 {
		errs = append(errs, fmt.Sprintf("selector.max_latitude must be finite and within [-90, 90], got %g", c.Selector.MaxLatitude))
	}
	if !validFormats[c.Output.Format] {
		errs = append(errs, fmt.Sprintf("output.format %q is not supported", c.Output.Format))
	}

	if len(errs) > 0 {
		return eris.Errorf("config: validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

// InitLogger installs the global zap logger. Logs always go to stderr so
// report output on stdout stays machine readable.
func InitLogger(cfg LogConfig) error {
	zcfg, err := loggerConfig(cfg)
	if err != nil {
		return err
	}
	logger, err := zcfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)
	return nil
}

func loggerConfig(cfg LogConfig) (zap.Config, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return zap.Config{}, eris.Wrapf(err, "config: log level %q", cfg.Level)
	}

	zcfg := zap.NewProductionConfig()
	if cfg.Format == "console" {
		zcfg = zap.NewDevelopmentConfig()
		zcfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		zcfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		zcfg.InitialFields = map[string]any{"app": "gymzone"}
	}
	zcfg.Level = zap.NewAtomicLevelAt(level)
	zcfg.OutputPaths = []string{"stderr"}
	zcfg.ErrorOutputPaths = []string{"stderr"}
	return zcfg, nil
}
