// Package config loads runtime configuration from lectionary.yaml,
// LECTIONARY_* environment variables and command-line overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/FocuswithJustin/JuniperLectionary/core/errors"
	"github.com/FocuswithJustin/JuniperLectionary/core/normalize"
	"github.com/FocuswithJustin/JuniperLectionary/core/versification"
	"github.com/FocuswithJustin/JuniperLectionary/internal/logging"
)

// EnvPrefix is prepended to every environment key ("LECTIONARY_LOG_LEVEL").
const EnvPrefix = "LECTIONARY"

// LogConfig selects the slog handler.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// OutputConfig controls where the lectionary document is written.
type OutputConfig struct {
	Path     string `mapstructure:"path"`
	Compress bool   `mapstructure:"compress"`
	Digest   bool   `mapstructure:"digest"`
}

// StoreConfig locates the optional SQLite database.
type StoreConfig struct {
	Path string `mapstructure:"path"`
}

// ServerConfig holds HTTP API settings.
type ServerConfig struct {
	Port           int      `mapstructure:"port"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`

	// APIKey enables X-API-Key authentication when set.
	APIKey string `mapstructure:"api_key"`
}

// Config holds all runtime configuration.
type Config struct {
	Translation string            `mapstructure:"translation"`
	Catalogue   string            `mapstructure:"catalogue"`
	Workers     int               `mapstructure:"workers"`
	Log         LogConfig         `mapstructure:"log"`
	Normalize   normalize.Options `mapstructure:"normalize"`
	Output      OutputConfig      `mapstructure:"output"`
	Store       StoreConfig       `mapstructure:"store"`
	Server      ServerConfig      `mapstructure:"server"`

	// File is the config file that was read, empty when none was found.
	File string `mapstructure:"-"`
}

func setDefaults(v *viper.Viper) {
	n := normalize.DefaultOptions()

	v.SetDefault("translation", string(versification.NAB))
	v.SetDefault("catalogue", "")
	v.SetDefault("workers", 0)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("normalize.keep_plus", n.KeepPlus)
	v.SetDefault("normalize.complete_book", n.CompleteBook)
	v.SetDefault("normalize.handle_cf", n.HandleCf)
	v.SetDefault("normalize.handle_optional", n.HandleOptional)
	v.SetDefault("normalize.empty_for_no_reference", n.EmptyForNoReference)
	v.SetDefault("normalize.validate_verses", n.ValidateVerses)
	v.SetDefault("output.path", "lectionary.json")
	v.SetDefault("output.compress", false)
	v.SetDefault("output.digest", false)
	v.SetDefault("store.path", "")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.allowed_origins", []string{})
	v.SetDefault("server.api_key", "")
}

// Load reads configuration. With an empty path it searches "." and
// ~/.config/lectionary for lectionary.yaml and tolerates its absence; an
// explicit path must exist.
func Load(path string) (Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("lectionary")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "lectionary"))
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return Config{}, errors.Wrapf(err, "reading config %s", path)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, errors.Wrap(err, "decoding config")
	}
	cfg.File = v.ConfigFileUsed()
	logging.Debug("config loaded", "file", cfg.File)
	return cfg, cfg.Validate()
}

// Validate checks values that would otherwise fail later.
func (c Config) Validate() error {
	if _, err := versification.New(versification.TranslationID(c.Translation)); err != nil {
		return err
	}
	if c.Workers < 0 {
		return errors.NewValidation("workers", fmt.Sprintf("must not be negative, got %d", c.Workers))
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return err
	}
	if _, err := logging.ParseFormat(c.Log.Format); err != nil {
		return err
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return errors.NewValidation("server.port", fmt.Sprintf("out of range: %d", c.Server.Port))
	}
	if k := c.Server.APIKey; k != "" && len(k) < 16 {
		return errors.NewValidation("server.api_key", "must be at least 16 characters")
	}
	return nil
}

// Table returns the boundary table of the configured translation.
func (c Config) Table() (*versification.Table, error) {
	return versification.New(versification.TranslationID(c.Translation))
}
