package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/spf13/viper"

	"github.com/aliskhannn/image-resizer/internal/resizer"
)

// Config holds the main configuration for the application.
type Config struct {
	Image   Image   `mapstructure:"image"`
	Encode  Encode  `mapstructure:"encode"`
	Storage Storage `mapstructure:"storage"`
}

// Image holds the input/output file names and the target resolution.
type Image struct {
	Input  string `mapstructure:"input"`  // source image, relative to the working directory
	Output string `mapstructure:"output"` // resized image, relative to the working directory
	Width  int    `mapstructure:"width"`
	Height int    `mapstructure:"height"`
}

// Encode holds encoder settings for the resized image.
type Encode struct {
	Quality  int  `mapstructure:"quality"`  // JPEG quality, 1-100
	Optimize bool `mapstructure:"optimize"` // smaller output at the same quality where the codec allows it
}

// Storage holds configuration for the optional S3-compatible upload of the result.
type Storage struct {
	Enabled    bool   `mapstructure:"enabled"`
	Endpoint   string `mapstructure:"endpoint"`
	AccessKey  string `mapstructure:"access_key"`
	SecretKey  string `mapstructure:"secret_key"`
	BucketName string `mapstructure:"bucket_name"`
	UseSSL     bool   `mapstructure:"use_ssl"`
}

// Target returns the configured resolution.
func (c *Config) Target() resizer.Size {
	return resizer.Size{Width: c.Image.Width, Height: c.Image.Height}
}

// Validate checks values viper cannot check for us.
func (c *Config) Validate() error {
	if c.Image.Input == "" || c.Image.Output == "" {
		return errors.New("input and output file names must be set")
	}
	if c.Image.Width <= 0 || c.Image.Height <= 0 {
		return fmt.Errorf("invalid target resolution %dx%d", c.Image.Width, c.Image.Height)
	}
	if c.Encode.Quality < 1 || c.Encode.Quality > 100 {
		return fmt.Errorf("invalid quality %d: must be within 1-100", c.Encode.Quality)
	}
	if c.Storage.Enabled && (c.Storage.Endpoint == "" || c.Storage.BucketName == "") {
		return errors.New("storage is enabled but endpoint or bucket_name is empty")
	}

	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("image.input", "fons.jpg")
	v.SetDefault("image.output", "fons_1920x1080.jpg")
	v.SetDefault("image.width", resizer.DefaultSize.Width)
	v.SetDefault("image.height", resizer.DefaultSize.Height)

	v.SetDefault("encode.quality", resizer.DefaultQuality)
	v.SetDefault("encode.optimize", true)

	// Every key needs a default, or AutomaticEnv never looks it up.
	v.SetDefault("storage.enabled", false)
	v.SetDefault("storage.endpoint", "")
	v.SetDefault("storage.bucket_name", "images")
	v.SetDefault("storage.use_ssl", false)
}

// bindEnv binds storage credentials to their conventional environment variables.
func bindEnv(v *viper.Viper) error {
	bindings := map[string]string{
		"storage.access_key": "MINIO_ACCESS_KEY",
		"storage.secret_key": "MINIO_SECRET_KEY",
	}

	for key, env := range bindings {
		if err := v.BindEnv(key, env); err != nil {
			return fmt.Errorf("bind env %s: %w", env, err)
		}
	}

	return nil
}

// Load builds the configuration from defaults, the optional YAML file at path
// and RESIZER_* environment variables. A missing file is not an error.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("resizer")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := bindEnv(v); err != nil {
		return nil, err
	}

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			v.SetConfigFile(path)
			v.SetConfigType("yaml")
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("read config: %w", err)
			}
		} else if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("stat config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}
