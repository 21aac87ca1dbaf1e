// Package config loads the converter configuration from defaults, an optional TOML file, an
// optional .env file and VISDRONE2COCO_* environment variables, in that order of precedence
// (later wins). Command line flags are applied on top by the caller.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

// EnvPrefix prefixes all environment variables read by Load.
const EnvPrefix = "VISDRONE2COCO_"

// Config is the converter configuration.
type Config struct {
	Source      string         `toml:"source" validate:"required"`
	Destination string         `toml:"destination" validate:"required"`
	ImageExt    string         `toml:"image_ext" validate:"required,startswith=."`
	Lenient     bool           `toml:"lenient"`      // Skip malformed lines instead of failing.
	KeepIgnored bool           `toml:"keep_ignored"` // Fail on "ignored regions" lines.
	Indent      bool           `toml:"indent"`
	Logging     LoggingConfig  `toml:"logging"`
	Resize      ResizeConfig   `toml:"resize"`
	TFRecord    TFRecordConfig `toml:"tfrecord"`
}

// LoggingConfig configures the logger.
type LoggingConfig struct {
	Level string `toml:"level" validate:"oneof=trace debug info warn error"`
}

// ResizeConfig configures the optional image resizing. Zero sides disable it.
type ResizeConfig struct {
	Longer             int    `toml:"longer" validate:"min=0"`
	Shorter            int    `toml:"shorter" validate:"min=0"`
	DownsamplingFilter string `toml:"downsample_filter" validate:"oneof=nearest box linear gaussian lanczos"`
	UpsamplingFilter   string `toml:"upsample_filter" validate:"oneof=nearest box linear gaussian lanczos"`
	JPEGQuality        int    `toml:"jpeg_quality" validate:"min=1,max=100"`
}

// TFRecordConfig configures the optional TFRecord output. An empty Path disables it.
type TFRecordConfig struct {
	Path         string `toml:"path"`
	LabelMapPath string `toml:"label_map"`
	NumShards    int    `toml:"num_shards" validate:"min=1"`
}

// Default returns a configuration with default values and no paths.
func Default() *Config {
	return &Config{
		ImageExt: ".jpg",
		Logging:  LoggingConfig{Level: "info"},
		Resize: ResizeConfig{
			DownsamplingFilter: "box",
			UpsamplingFilter:   "linear",
			JPEGQuality:        90,
		},
		TFRecord: TFRecordConfig{NumShards: 1},
	}
}

// Load returns the default configuration overridden by the TOML file at tomlPath and the
// environment. Values from the .env file at envPath are added to the process environment first,
// without replacing variables that are already set. Empty paths are skipped; so are missing files
// at envPath.
func Load(tomlPath, envPath string) (*Config, error) {
	cfg := Default()

	if tomlPath != "" {
		data, err := os.ReadFile(tomlPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %q: %w", tomlPath, err)
		}
	}

	if envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			if err := godotenv.Load(envPath); err != nil {
				return nil, fmt.Errorf("failed to load env file %q: %w", envPath, err)
			}
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyEnv overrides fields with the VISDRONE2COCO_* environment variables that are set.
func (c *Config) applyEnv() error {
	strs := map[string]*string{
		"SOURCE":             &c.Source,
		"DESTINATION":        &c.Destination,
		"IMAGE_EXT":          &c.ImageExt,
		"LOG_LEVEL":          &c.Logging.Level,
		"DOWNSAMPLE_FILTER":  &c.Resize.DownsamplingFilter,
		"UPSAMPLE_FILTER":    &c.Resize.UpsamplingFilter,
		"TFRECORD":           &c.TFRecord.Path,
		"TFRECORD_LABEL_MAP": &c.TFRecord.LabelMapPath,
	}
	for k, p := range strs {
		if v, ok := os.LookupEnv(EnvPrefix + k); ok {
			*p = v
		}
	}

	ints := map[string]*int{
		"RESIZE_LONGER":  &c.Resize.Longer,
		"RESIZE_SHORTER": &c.Resize.Shorter,
		"JPEG_QUALITY":   &c.Resize.JPEGQuality,
		"NUM_SHARDS":     &c.TFRecord.NumShards,
	}
	for k, p := range ints {
		if v, ok := os.LookupEnv(EnvPrefix + k); ok {
			i, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("invalid value for %s%s: %w", EnvPrefix, k, err)
			}
			*p = i
		}
	}

	bools := map[string]*bool{
		"LENIENT":      &c.Lenient,
		"KEEP_IGNORED": &c.KeepIgnored,
		"INDENT":       &c.Indent,
	}
	for k, p := range bools {
		if v, ok := os.LookupEnv(EnvPrefix + k); ok {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("invalid value for %s%s: %w", EnvPrefix, k, err)
			}
			*p = b
		}
	}

	return nil
}

// Normalize cleans the paths and adds a missing dot to ImageExt.
func (c *Config) Normalize() {
	if c.Source != "" {
		c.Source = filepath.Clean(c.Source)
	}
	if c.Destination != "" {
		c.Destination = filepath.Clean(c.Destination)
	}
	if c.ImageExt != "" && !strings.HasPrefix(c.ImageExt, ".") {
		c.ImageExt = "." + c.ImageExt
	}
	c.Logging.Level = strings.ToLower(c.Logging.Level)
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if c.Source == c.Destination {
		return fmt.Errorf("invalid configuration: the source and destination paths cannot be identical")
	}
	if c.TFRecord.Path != "" && c.TFRecord.Path == c.TFRecord.LabelMapPath {
		return fmt.Errorf("invalid configuration: the TFRecord and label map paths cannot be identical")
	}
	return nil
}
