// Package config loads antani's TOML configuration through viper.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/spf13/viper"

	"github.com/jask/antani/internal/volume"
)

// EnvPrefix prefixes every environment override, e.g. ANTANI_LOG_LEVEL.
const EnvPrefix = "ANTANI"

// ErrInvalid reports a configuration that fails validation.
var ErrInvalid = errors.New("invalid configuration")

// Config holds application configuration.
type Config struct {
	Volumes  []VolumeConfig `mapstructure:"volumes" toml:"volumes"`
	Picker   PickerConfig   `mapstructure:"picker" toml:"picker"`
	Transfer TransferConfig `mapstructure:"transfer" toml:"transfer"`
	Log      LogConfig      `mapstructure:"log" toml:"log"`
}

// VolumeConfig maps a volume name to a host directory.
type VolumeConfig struct {
	Name string `mapstructure:"name" toml:"name"`
	Root string `mapstructure:"root" toml:"root"`
}

// PickerConfig holds directory picker limits.
type PickerConfig struct {
	VisibleRows int `mapstructure:"visible_rows" toml:"visible_rows"`
	MaxDepth    int `mapstructure:"max_depth" toml:"max_depth"`
	MaxDirs     int `mapstructure:"max_dirs" toml:"max_dirs"`
	MaxFiles    int `mapstructure:"max_files" toml:"max_files"`
}

// TransferConfig holds copy settings.
type TransferConfig struct {
	ChunkSize int `mapstructure:"chunk_size" toml:"chunk_size"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `mapstructure:"level" toml:"level"`
	File  string `mapstructure:"file" toml:"file"`
}

// Default returns the built-in configuration: two volumes under the user
// data directory.
func Default() Config {
	data := dataDir()
	return Config{
		Volumes: []VolumeConfig{
			{Name: "slc", Root: filepath.Join(data, "slc")},
			{Name: "sdmc", Root: filepath.Join(data, "sdmc")},
		},
		Picker:   PickerConfig{VisibleRows: 20, MaxDepth: 100, MaxDirs: 255, MaxFiles: 255},
		Transfer: TransferConfig{ChunkSize: 512},
		Log:      LogConfig{Level: "info", File: filepath.Join(stateDir(), "antani.log")},
	}
}

// Path returns the config file location: $ANTANI_CONFIG when set,
// otherwise config.toml in the user config directory.
func Path() string {
	if p := os.Getenv(EnvPrefix + "_CONFIG"); p != "" {
		return p
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = filepath.Join(os.Getenv("HOME"), ".config")
	}
	return filepath.Join(dir, "antani", "config.toml")
}

// Load reads configuration from Path() and the environment.
func Load() (Config, error) {
	return LoadFile(Path())
}

// LoadFile reads configuration from path, which may be missing, and the
// environment. Env var overrides use prefix ANTANI_.
func LoadFile(path string) (Config, error) {
	v := viper.New()

	def := Default()
	vols := make([]map[string]any, 0, len(def.Volumes))
	for _, vc := range def.Volumes {
		vols = append(vols, map[string]any{"name": vc.Name, "root": vc.Root})
	}
	v.SetDefault("volumes", vols)
	v.SetDefault("picker.visible_rows", def.Picker.VisibleRows)
	v.SetDefault("picker.max_depth", def.Picker.MaxDepth)
	v.SetDefault("picker.max_dirs", def.Picker.MaxDirs)
	v.SetDefault("picker.max_files", def.Picker.MaxFiles)
	v.SetDefault("transfer.chunk_size", def.Transfer.ChunkSize)
	v.SetDefault("log.level", def.Log.Level)
	v.SetDefault("log.file", def.Log.File)

	v.SetConfigType("toml")
	v.SetConfigFile(path)

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	for i := range c.Volumes {
		c.Volumes[i].Root = expandHome(c.Volumes[i].Root)
	}
	c.Log.File = expandHome(c.Log.File)
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate checks sizes and volume names.
func (c Config) Validate() error {
	if len(c.Volumes) == 0 {
		return fmt.Errorf("%w: no volumes configured", ErrInvalid)
	}
	seen := make(map[string]bool, len(c.Volumes))
	for i, vc := range c.Volumes {
		switch {
		case vc.Name == "":
			return fmt.Errorf("%w: volumes[%d]: name is required", ErrInvalid, i)
		case strings.ContainsAny(vc.Name, ":/"):
			return fmt.Errorf("%w: volumes[%d] %q: name must not contain ':' or '/'", ErrInvalid, i, vc.Name)
		case vc.Root == "":
			return fmt.Errorf("%w: volumes[%d] %q: root is required", ErrInvalid, i, vc.Name)
		case seen[vc.Name]:
			return fmt.Errorf("%w: volume %q defined twice", ErrInvalid, vc.Name)
		}
		seen[vc.Name] = true
	}
	roots := make([]string, len(c.Volumes))
	for i, vc := range c.Volumes {
		abs, err := filepath.Abs(vc.Root)
		if err != nil {
			return fmt.Errorf("%w: volume %q root: %v", ErrInvalid, vc.Name, err)
		}
		for j := range i {
			if volume.Overlaps(abs, roots[j]) {
				return fmt.Errorf("%w: volumes %q and %q share host directory %s", ErrInvalid, c.Volumes[j].Name, vc.Name, abs)
			}
		}
		roots[i] = abs
	}

	checks := []struct {
		key string
		val int
		min int
	}{
		{"picker.visible_rows", c.Picker.VisibleRows, 1},
		{"picker.max_depth", c.Picker.MaxDepth, 1},
		// the directory bucket also holds ".." and "."
		{"picker.max_dirs", c.Picker.MaxDirs, 2},
		{"picker.max_files", c.Picker.MaxFiles, 1},
		{"transfer.chunk_size", c.Transfer.ChunkSize, 1},
	}
	for _, ch := range checks {
		if ch.val < ch.min {
			return fmt.Errorf("%w: %s must be at least %d, got %d", ErrInvalid, ch.key, ch.min, ch.val)
		}
	}
	return nil
}

const defaultHeader = `# antani configuration
#
# Each [[volumes]] block exposes a host directory as "<name>:/".
# Every key can be overridden from the environment, e.g.
# ANTANI_LOG_LEVEL=debug or ANTANI_PICKER_VISIBLE_ROWS=30.

`

// WriteDefault writes the default configuration to path unless a file is
// already there. It reports whether a file was written.
func WriteDefault(path string) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		return false, nil
	} else if !os.IsNotExist(err) {
		return false, fmt.Errorf("stat config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return false, fmt.Errorf("create config dir: %w", err)
	}

	var buf bytes.Buffer
	buf.WriteString(defaultHeader)
	if err := toml.NewEncoder(&buf).Encode(Default()); err != nil {
		return false, fmt.Errorf("encode config: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return false, fmt.Errorf("write config: %w", err)
	}
	return true, nil
}

func dataDir() string {
	if d := os.Getenv("XDG_DATA_HOME"); d != "" {
		return filepath.Join(d, "antani")
	}
	return filepath.Join(os.Getenv("HOME"), ".local", "share", "antani")
}

func stateDir() string {
	if d := os.Getenv("XDG_STATE_HOME"); d != "" {
		return filepath.Join(d, "antani")
	}
	return filepath.Join(os.Getenv("HOME"), ".local", "state", "antani")
}

func expandHome(p string) string {
	if p == "~" || strings.HasPrefix(p, "~/") {
		return filepath.Join(os.Getenv("HOME"), strings.TrimPrefix(p, "~"))
	}
	return p
}
