package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

const (
	BackendREST        = "rest"
	BackendGoogleTasks = "googletasks"

	plannerDirName = "daily-planner"
)

// PlannerConfig - настройки терминального клиента, ~/.config/daily-planner/config.toml
type PlannerConfig struct {
	Backend BackendConfig `toml:"backend"`
	UI      UIConfig      `toml:"ui"`
	Log     LogConfig     `toml:"log"`
}

type BackendConfig struct {
	Type    string        `toml:"type"`
	URL     string        `toml:"url"`
	Timeout time.Duration `toml:"timeout"`
	Retries uint64        `toml:"retries"`

	// каталог с oauth_client.json и token.json
	GoogleDir string `toml:"google_dir"`
	ListID    string `toml:"list_id"`
}

type UIConfig struct {
	RefreshInterval time.Duration `toml:"refresh_interval"`
	Timezone        string        `toml:"timezone"`
}

type LogConfig struct {
	Path        string `toml:"path"`
	Development bool   `toml:"development"`
}

func PlannerDir() string {
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, ".config", plannerDirName)
}

func DefaultPlannerPath() string {
	return filepath.Join(PlannerDir(), "config.toml")
}

func DefaultPlanner() *PlannerConfig {
	dir := PlannerDir()
	return &PlannerConfig{
		Backend: BackendConfig{
			Type:      BackendREST,
			URL:       "http://localhost:8080",
			Timeout:   10 * time.Second,
			Retries:   3,
			GoogleDir: dir,
			ListID:    "@default",
		},
		UI: UIConfig{
			RefreshInterval: time.Minute,
		},
		Log: LogConfig{
			Path: filepath.Join(dir, "planner.log"),
		},
	}
}

// LoadPlanner читает TOML поверх значений по умолчанию; файла может не быть
func LoadPlanner(path string) (*PlannerConfig, error) {
	if path == "" {
		path = DefaultPlannerPath()
	}

	cfg := DefaultPlanner()

	data, err := os.ReadFile(expandPath(path))
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("чтение %s: %w", path, err)
	}

	if _, err := toml.Decode(string(data), cfg); err != nil {
		return nil, fmt.Errorf("ошибка парсинга %s: %w", path, err)
	}

	cfg.Backend.GoogleDir = expandPath(cfg.Backend.GoogleDir)
	cfg.Log.Path = expandPath(cfg.Log.Path)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *PlannerConfig) Validate() error {
	switch c.Backend.Type {
	case BackendREST:
		if c.Backend.URL == "" {
			return errors.New("для rest нужен backend.url")
		}
	case BackendGoogleTasks:
		if c.Backend.GoogleDir == "" {
			return errors.New("для googletasks нужен backend.google_dir")
		}
	default:
		return fmt.Errorf("неизвестный бэкенд %q", c.Backend.Type)
	}
	if c.UI.RefreshInterval < 0 {
		return fmt.Errorf("refresh_interval не может быть отрицательным: %s", c.UI.RefreshInterval)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// Location - часовой пояс планировщика, по умолчанию системный
func (c *PlannerConfig) Location() (*time.Location, error) {
	if c.UI.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.UI.Timezone)
	if err != nil {
		return nil, fmt.Errorf("неизвестный часовой пояс %q: %w", c.UI.Timezone, err)
	}
	return loc, nil
}

// SaveTo записывает конфиг, создавая каталог
func (c *PlannerConfig) SaveTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("создание каталога конфига: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("создание файла конфига: %w", err)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(c); err != nil {
		return fmt.Errorf("запись конфига: %w", err)
	}
	return nil
}

func expandPath(path string) string {
	if len(path) > 0 && path[0] == '~' {
		homeDir, _ := os.UserHomeDir()
		return filepath.Join(homeDir, path[1:])
	}
	return path
}
