package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, ".jpg", cfg.ImageExt)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, 90, cfg.Resize.JPEGQuality)
	assert.Equal(t, 1, cfg.TFRecord.NumShards)
	assert.False(t, cfg.Lenient)

	// Paths are required.
	assert.Error(t, cfg.Validate())
}

func TestLoadTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
source = "/data/VisDrone2019-DET-train"
destination = "/data/coco"
lenient = true

[logging]
level = "debug"

[resize]
longer = 1333

[tfrecord]
path = "/data/train.record"
num_shards = 4
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := Load(path, "")
	require.NoError(t, err)
	assert.Equal(t, "/data/VisDrone2019-DET-train", cfg.Source)
	assert.Equal(t, "/data/coco", cfg.Destination)
	assert.True(t, cfg.Lenient)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, 1333, cfg.Resize.Longer)
	assert.Equal(t, "box", cfg.Resize.DownsamplingFilter) // Default kept.
	assert.Equal(t, 4, cfg.TFRecord.NumShards)
	assert.NoError(t, cfg.Validate())
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"), "")
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.toml")
	require.NoError(t, os.WriteFile(path, []byte("source = "), 0644))
	_, err = Load(path, "")
	assert.Error(t, err)

	t.Setenv(EnvPrefix+"NUM_SHARDS", "many")
	_, err = Load("", "")
	assert.Error(t, err)
}

func TestLoadEnv(t *testing.T) {
	envPath := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(envPath,
		[]byte("VISDRONE2COCO_SOURCE=/from/env\nVISDRONE2COCO_INDENT=true\n"), 0644))

	t.Setenv(EnvPrefix+"DESTINATION", "/from/process")
	t.Setenv(EnvPrefix+"SOURCE", "/from/process/source")
	t.Setenv(EnvPrefix+"JPEG_QUALITY", "75")
	// Registers a cleanup for the variable that the .env file sets.
	t.Setenv(EnvPrefix+"INDENT", "")
	require.NoError(t, os.Unsetenv(EnvPrefix+"INDENT"))

	cfg, err := Load("", envPath)
	require.NoError(t, err)
	// Variables already set in the process win over the .env file.
	assert.Equal(t, "/from/process/source", cfg.Source)
	assert.Equal(t, "/from/process", cfg.Destination)
	assert.Equal(t, 75, cfg.Resize.JPEGQuality)
	assert.True(t, cfg.Indent)

	// A missing .env file is not an error.
	_, err = Load("", filepath.Join(t.TempDir(), ".env"))
	assert.NoError(t, err)
}

func TestNormalizeAndValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(c *Config)
		wantErr bool
	}{
		{"valid", func(c *Config) {}, false},
		{"extension without dot", func(c *Config) { c.ImageExt = "png" }, false},
		{"upper case level", func(c *Config) { c.Logging.Level = "WARN" }, false},
		{"identical paths", func(c *Config) { c.Destination = c.Source + "/" }, true},
		{"unknown level", func(c *Config) { c.Logging.Level = "verbose" }, true},
		{"unknown filter", func(c *Config) { c.Resize.UpsamplingFilter = "bicubic" }, true},
		{"jpeg quality", func(c *Config) { c.Resize.JPEGQuality = 0 }, true},
		{"negative resize", func(c *Config) { c.Resize.Shorter = -1 }, true},
		{"no shards", func(c *Config) { c.TFRecord.NumShards = 0 }, true},
		{"label map is record", func(c *Config) {
			c.TFRecord.Path = "out.record"
			c.TFRecord.LabelMapPath = "out.record"
		}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			cfg.Source = "/data/src"
			cfg.Destination = "/data/dst"
			tt.modify(cfg)
			cfg.Normalize()

			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
