// Package config loads waexif settings from defaults, an optional TOML file,
// WAEXIF_* environment variables and command-line flags, in increasing priority.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/acm19/waexif/internal/pics"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	// FileName is the configuration file name without extension.
	FileName = "waexif"
	// EnvPrefix prefixes every environment variable read by Load.
	EnvPrefix = "WAEXIF"
)

// ErrUnknownEngine is returned when the configured EXIF engine does not exist.
var ErrUnknownEngine = errors.New("unknown EXIF engine")

// ArchiveConfig holds the S3 destination for run logs.
type ArchiveConfig struct {
	Bucket string `mapstructure:"bucket"`
	Prefix string `mapstructure:"prefix"`
}

// Config holds the settings of a run.
type Config struct {
	Recursive bool          `mapstructure:"recursive"`
	Mod       bool          `mapstructure:"mod"`
	DryRun    bool          `mapstructure:"dry_run"`
	Verify    bool          `mapstructure:"verify"`
	Engine    string        `mapstructure:"engine"`
	Location  string        `mapstructure:"location"`
	Console   bool          `mapstructure:"console"`
	Archive   ArchiveConfig `mapstructure:"archive"`
}

// flagKeys maps command-line flag names to configuration keys.
var flagKeys = map[string]string{
	"recursive":      "recursive",
	"mod":            "mod",
	"dry-run":        "dry_run",
	"verify":         "verify",
	"engine":         "engine",
	"location":       "location",
	"archive-bucket": "archive.bucket",
	"archive-prefix": "archive.prefix",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("recursive", false)
	v.SetDefault("mod", false)
	v.SetDefault("dry_run", false)
	v.SetDefault("verify", false)
	v.SetDefault("engine", pics.EngineNative)
	v.SetDefault("location", "Local")
	v.SetDefault("console", true)
	v.SetDefault("archive.bucket", "")
	v.SetDefault("archive.prefix", "")
}

// RegisterFlags defines the command-line flags Load understands.
func RegisterFlags(flags *pflag.FlagSet) {
	flags.BoolP("recursive", "r", false, "Recursively process media in subdirectories")
	flags.BoolP("mod", "m", false, "Also set file modification time of images to the capture date")
	flags.Bool("dry-run", false, "Report what would change without modifying any file")
	flags.Bool("verify", false, "Read DateTimeOriginal back after writing it")
	flags.String("engine", pics.EngineNative, "EXIF engine: native or exiftool")
	flags.String("location", "Local", "Time zone of the timestamps in file names (IANA name)")
	flags.String("archive-bucket", "", "S3 bucket to upload the run log to")
	flags.String("archive-prefix", "", "Key prefix for archived run logs")
}

// Dir returns the directory searched for waexif.toml.
func Dir() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to find user config dir: %w", err)
	}
	return filepath.Join(configDir, FileName), nil
}

// Load reads the configuration. flags may be nil.
func Load(flags *pflag.FlagSet) (*Config, error) {
	dir, err := Dir()
	if err != nil {
		// No config directory means no config file, defaults still apply
		dir = ""
	}
	return load(flags, dir)
}

func load(flags *pflag.FlagSet, dir string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if dir != "" {
		v.SetConfigName(FileName)
		v.SetConfigType("toml")
		v.AddConfigPath(dir)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config: %w", err)
			}
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if flags != nil {
		for name, key := range flagKeys {
			flag := flags.Lookup(name)
			if flag == nil {
				continue
			}
			if err := v.BindPFlag(key, flag); err != nil {
				return nil, fmt.Errorf("failed to bind flag %s: %w", name, err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the engine and the time zone.
func (c *Config) Validate() error {
	switch c.Engine {
	case pics.EngineNative, pics.EngineExiftool:
	default:
		return fmt.Errorf("%w: %q (expected %s or %s)", ErrUnknownEngine, c.Engine, pics.EngineNative, pics.EngineExiftool)
	}
	if _, err := c.TimeLocation(); err != nil {
		return err
	}
	return nil
}

// TimeLocation resolves Location, where "" and "Local" mean the system time zone.
func (c *Config) TimeLocation() (*time.Location, error) {
	if c.Location == "" || c.Location == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Location)
	if err != nil {
		return nil, fmt.Errorf("invalid location %q: %w", c.Location, err)
	}
	return loc, nil
}

// RestoreOptions converts the configuration into options for a restore run.
func (c *Config) RestoreOptions() (pics.RestoreOptions, error) {
	loc, err := c.TimeLocation()
	if err != nil {
		return pics.RestoreOptions{}, err
	}
	opts := pics.DefaultRestoreOptions()
	opts.Recursive = c.Recursive
	opts.SetModTime = c.Mod
	opts.DryRun = c.DryRun
	opts.Verify = c.Verify
	opts.Location = loc
	return opts, nil
}
