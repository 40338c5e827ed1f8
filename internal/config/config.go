package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

// ErrConfigLoad marks a config file that exists but could not be read or parsed.
var ErrConfigLoad = errors.New("config load failed")

const (
	StorageJSONL = "jsonl"
	StorageBolt  = "bolt"

	DefaultKeyCmd        = "ctrl+n"
	DefaultAutosaveDelay = 800 * time.Millisecond
)

// Settings is what the editor asks the persistence service for at startup.
type Settings struct {
	OpenSame bool   `json:"openSame"`
	KeyCmd   string `json:"keyCmd"`
}

func DefaultSettings() Settings {
	return Settings{OpenSame: false, KeyCmd: DefaultKeyCmd}
}

type Config struct {
	File          string // config file in use, or where Save will write
	NotesPath     string
	Storage       string
	OpenSame      bool
	KeyCmd        string
	CaptureCmd    string
	SocketPath    string
	AutosaveDelay time.Duration
	LogFile       string
}

func (c *Config) Settings() Settings {
	return Settings{OpenSame: c.OpenSame, KeyCmd: c.KeyCmd}
}

// Default returns the configuration used when no file or env override exists.
func Default() *Config {
	return &Config{
		File:          filepath.Join(xdgConfig(), "floaty", "config.yaml"),
		NotesPath:     filepath.Join(xdgData(), "floaty", "notes.jsonl"),
		Storage:       StorageJSONL,
		KeyCmd:        DefaultKeyCmd,
		SocketPath:    defaultSocketPath(),
		AutosaveDelay: DefaultAutosaveDelay,
		LogFile:       filepath.Join(xdgState(), "floaty", "floaty.log"),
	}
}

// Load reads config.{yaml,json,toml} from $XDG_CONFIG_HOME/floaty, or path when
// non-empty, with FLOATY_* env overrides. A missing file is not an error.
func Load(path string) (*Config, error) {
	def := Default()
	v := newViper(def)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(filepath.Join(xdgConfig(), "floaty"))
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !(path != "" && errors.Is(err, os.ErrNotExist)) {
			return def, fmt.Errorf("%w: %v", ErrConfigLoad, err)
		}
	}

	cfg := &Config{
		File:          def.File,
		NotesPath:     expand(v.GetString("notes_path")),
		Storage:       strings.ToLower(strings.TrimSpace(v.GetString("storage"))),
		OpenSame:      v.GetBool("open_same"),
		KeyCmd:        strings.TrimSpace(v.GetString("key_cmd")),
		CaptureCmd:    v.GetString("capture_cmd"),
		SocketPath:    expand(v.GetString("socket_path")),
		AutosaveDelay: v.GetDuration("autosave_delay"),
		LogFile:       expand(v.GetString("log_file")),
	}
	if used := v.ConfigFileUsed(); used != "" {
		cfg.File = used
	}
	if cfg.KeyCmd == "" {
		cfg.KeyCmd = DefaultKeyCmd
	}
	if cfg.AutosaveDelay <= 0 {
		cfg.AutosaveDelay = DefaultAutosaveDelay
	}
	switch cfg.Storage {
	case StorageJSONL, StorageBolt:
	default:
		return def, fmt.Errorf("%w: unknown storage %q", ErrConfigLoad, cfg.Storage)
	}
	if cfg.NotesPath == "" {
		cfg.NotesPath = def.NotesPath
		if cfg.Storage == StorageBolt {
			cfg.NotesPath = filepath.Join(filepath.Dir(def.NotesPath), "notes.db")
		}
	}
	return cfg, nil
}

// Save writes cfg back to cfg.File.
func Save(cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(cfg.File), 0o755); err != nil {
		return err
	}
	v := viper.New()
	v.Set("notes_path", cfg.NotesPath)
	v.Set("storage", cfg.Storage)
	v.Set("open_same", cfg.OpenSame)
	v.Set("key_cmd", cfg.KeyCmd)
	v.Set("capture_cmd", cfg.CaptureCmd)
	v.Set("socket_path", cfg.SocketPath)
	v.Set("autosave_delay", cfg.AutosaveDelay.String())
	v.Set("log_file", cfg.LogFile)
	return v.WriteConfigAs(cfg.File)
}

func newViper(def *Config) *viper.Viper {
	v := viper.New()
	v.SetDefault("storage", def.Storage)
	v.SetDefault("open_same", def.OpenSame)
	v.SetDefault("key_cmd", def.KeyCmd)
	v.SetDefault("capture_cmd", def.CaptureCmd)
	v.SetDefault("socket_path", def.SocketPath)
	v.SetDefault("autosave_delay", def.AutosaveDelay)
	v.SetDefault("log_file", def.LogFile)
	v.SetEnvPrefix("FLOATY")
	v.AutomaticEnv()
	return v
}

func expand(p string) string {
	if out, err := homedir.Expand(p); err == nil {
		return out
	}
	return p
}

func home() string {
	h, err := homedir.Dir()
	if err != nil {
		return "."
	}
	return h
}

func xdgConfig() string {
	if d := os.Getenv("XDG_CONFIG_HOME"); d != "" {
		return d
	}
	return filepath.Join(home(), ".config")
}

func xdgData() string {
	if d := os.Getenv("XDG_DATA_HOME"); d != "" {
		return d
	}
	return filepath.Join(home(), ".local", "share")
}

func xdgState() string {
	if d := os.Getenv("XDG_STATE_HOME"); d != "" {
		return d
	}
	return filepath.Join(home(), ".local", "state")
}

func defaultSocketPath() string {
	if d := os.Getenv("XDG_RUNTIME_DIR"); d != "" {
		return filepath.Join(d, "floaty.sock")
	}
	return filepath.Join(os.TempDir(), fmt.Sprintf("floaty-%d.sock", os.Getuid()))
}
