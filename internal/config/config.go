package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

const (
	DefaultConfigFileName = "config.toml"
	DefaultLogFileName    = "todo.log"
	DefaultPageSize       = 10
	DefaultCheckInterval  = "1m"

	// ConfigEnv overrides the config file location.
	ConfigEnv = "TODO_CONFIG"
)

var (
	ErrInvalidPageSize = errors.New("page_size must be at least 1")
	ErrInvalidInterval = errors.New("check_interval must be a positive duration")
	ErrInvalidTheme    = errors.New("unknown theme")
)

type Keymap struct {
	Quit         string `toml:"quit"`
	Add          string `toml:"add"`
	Up           string `toml:"up"`
	Down         string `toml:"down"`
	NextColumn   string `toml:"next_column"`
	PrevColumn   string `toml:"prev_column"`
	NextPage     string `toml:"next_page"`
	PrevPage     string `toml:"prev_page"`
	MoveUp       string `toml:"move_up"`
	MoveDown     string `toml:"move_down"`
	Toggle       string `toml:"toggle"`
	Delete       string `toml:"delete"`
	Detail       string `toml:"detail"`
	Confirm      string `toml:"confirm"`
	Cancel       string `toml:"cancel"`
	Edit         string `toml:"edit"`
	PriorityUp   string `toml:"priority_up"`
	PriorityDown string `toml:"priority_down"`
	DueForward   string `toml:"due_forward"`
	DueBack      string `toml:"due_back"`
}

type Config struct {
	PageSize      int    `toml:"page_size"`
	CheckInterval string `toml:"check_interval"`
	DefaultView   string `toml:"default_view"`
	Theme         string `toml:"theme"`
	LogLevel      string `toml:"log_level"`
	LogFormat     string `toml:"log_format"`
	LogFile       string `toml:"log_file"`
	Keys          Keymap `toml:"keys"`
}

// Themes maps theme names to the accent colour of the board.
var Themes = map[string]string{
	"gray":   "250",
	"green":  "42",
	"red":    "160",
	"purple": "135",
}

// ResolveConfigPath returns $TODO_CONFIG, else config.toml under the user
// config dir, else config.toml in the working directory.
func ResolveConfigPath() string {
	if p := strings.TrimSpace(os.Getenv(ConfigEnv)); p != "" {
		return p
	}
	dir, err := os.UserConfigDir()
	if err != nil || dir == "" {
		return DefaultConfigFileName
	}
	return filepath.Join(dir, "taskboard", DefaultConfigFileName)
}

func LoadOrCreate(path string) (Config, error) {
	cfg := Default()
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := write(path, cfg); err != nil {
			return cfg, err
		}
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}
	cfg.fillDefaults()
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func write(path string, cfg Config) error {
	data, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0o644)
}

// Interval parses CheckInterval.
func (c Config) Interval() (time.Duration, error) {
	d, err := time.ParseDuration(c.CheckInterval)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidInterval, c.CheckInterval)
	}
	return d, nil
}

// Accent returns the colour for the configured theme.
func (c Config) Accent() string {
	if v, ok := Themes[strings.ToLower(c.Theme)]; ok {
		return v
	}
	return Themes["gray"]
}

func (c Config) Validate() error {
	if c.PageSize < 1 {
		return ErrInvalidPageSize
	}
	if _, err := c.Interval(); err != nil {
		return err
	}
	if _, ok := Themes[strings.ToLower(c.Theme)]; !ok {
		return fmt.Errorf("%w: %q", ErrInvalidTheme, c.Theme)
	}
	return nil
}

// fillDefaults restores values left blank in a partial config file.
func (c *Config) fillDefaults() {
	def := Default()
	if c.PageSize == 0 {
		c.PageSize = def.PageSize
	}
	if c.CheckInterval == "" {
		c.CheckInterval = def.CheckInterval
	}
	if c.DefaultView == "" {
		c.DefaultView = def.DefaultView
	}
	if c.Theme == "" {
		c.Theme = def.Theme
	}
	if c.LogLevel == "" {
		c.LogLevel = def.LogLevel
	}
	if c.LogFormat == "" {
		c.LogFormat = def.LogFormat
	}
	if c.LogFile == "" {
		c.LogFile = def.LogFile
	}
	c.Keys.fillDefaults(def.Keys)
}

func (k *Keymap) fillDefaults(def Keymap) {
	fields := []struct {
		dst *string
		def string
	}{
		{&k.Quit, def.Quit}, {&k.Add, def.Add}, {&k.Up, def.Up}, {&k.Down, def.Down},
		{&k.NextColumn, def.NextColumn}, {&k.PrevColumn, def.PrevColumn},
		{&k.NextPage, def.NextPage}, {&k.PrevPage, def.PrevPage},
		{&k.MoveUp, def.MoveUp}, {&k.MoveDown, def.MoveDown},
		{&k.Toggle, def.Toggle}, {&k.Delete, def.Delete}, {&k.Detail, def.Detail},
		{&k.Confirm, def.Confirm}, {&k.Cancel, def.Cancel}, {&k.Edit, def.Edit},
		{&k.PriorityUp, def.PriorityUp}, {&k.PriorityDown, def.PriorityDown},
		{&k.DueForward, def.DueForward}, {&k.DueBack, def.DueBack},
	}
	for _, f := range fields {
		if *f.dst == "" {
			*f.dst = f.def
		}
	}
}

func Default() Config {
	return Config{
		PageSize:      DefaultPageSize,
		CheckInterval: DefaultCheckInterval,
		DefaultView:   "today",
		Theme:         "gray",
		LogLevel:      "info",
		LogFormat:     "text",
		LogFile:       DefaultLogFileName,
		Keys: Keymap{
			Quit:         "q",
			Add:          "a",
			Up:           "k",
			Down:         "j",
			NextColumn:   "l",
			PrevColumn:   "h",
			NextPage:     "n",
			PrevPage:     "p",
			MoveUp:       "K",
			MoveDown:     "J",
			Toggle:       " ",
			Delete:       "d",
			Detail:       "enter",
			Confirm:      "enter",
			Cancel:       "esc",
			Edit:         "e",
			PriorityUp:   "+",
			PriorityDown: "-",
			DueForward:   "]",
			DueBack:      "[",
		},
	}
}
