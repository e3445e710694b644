package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const envPrefix = "PLANNER"

type Config struct {
	Server     ServerConfig     `mapstructure:"server" yaml:"server"`
	Database   DatabaseConfig   `mapstructure:"database" yaml:"database"`
	Logging    LoggingConfig    `mapstructure:"logging" yaml:"logging"`
	Repository RepositoryConfig `mapstructure:"repository" yaml:"repository"`

	// --print-config: напечатать итоговый конфиг и выйти
	PrintConfig bool `mapstructure:"-" yaml:"-"`
}

type ServerConfig struct {
	Host            string        `mapstructure:"host" yaml:"host"`
	Port            string        `mapstructure:"port" yaml:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout" yaml:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout" yaml:"write_timeout"`
	RequestTimeout  time.Duration `mapstructure:"request_timeout" yaml:"request_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
	RateLimit       int           `mapstructure:"rate_limit" yaml:"rate_limit"`
	CORSOrigins     []string      `mapstructure:"cors_origins" yaml:"cors_origins"`
}

type DatabaseConfig struct {
	URL            string        `mapstructure:"url" yaml:"url"`
	MaxConnections int32         `mapstructure:"max_connections" yaml:"max_connections"`
	MinConnections int32         `mapstructure:"min_connections" yaml:"min_connections"`
	IdleTimeout    time.Duration `mapstructure:"idle_timeout" yaml:"idle_timeout"`
	SQLitePath     string        `mapstructure:"sqlite_path" yaml:"sqlite_path"`
}

type LoggingConfig struct {
	Development bool `mapstructure:"development" yaml:"development"`
}

type RepositoryConfig struct {
	Type string `mapstructure:"type" yaml:"type"` // "inmemory", "postgres" или "sqlite"
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "")
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.read_timeout", 10*time.Second)
	v.SetDefault("server.write_timeout", 10*time.Second)
	v.SetDefault("server.request_timeout", 30*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("server.rate_limit", 100)
	v.SetDefault("server.cors_origins", []string{"*"})

	v.SetDefault("database.url", "")
	v.SetDefault("database.max_connections", 10)
	v.SetDefault("database.min_connections", 2)
	v.SetDefault("database.idle_timeout", 5*time.Minute)
	v.SetDefault("database.sqlite_path", "planner.db")

	v.SetDefault("logging.development", true)

	v.SetDefault("repository.type", "inmemory")
}

// Load собирает конфиг: значения по умолчанию, config.yml, переменные PLANNER_*, флаги.
// Отсутствующий файл конфига не ошибка.
func Load(args []string) (*Config, error) {
	flags := pflag.NewFlagSet("api", pflag.ContinueOnError)
	configPath := flags.String("config", "config.yml", "путь к config.yml")
	flags.String("port", "", "порт HTTP сервера")
	flags.String("repository", "", "хранилище: inmemory, postgres или sqlite")
	flags.String("database-url", "", "строка подключения PostgreSQL")
	printConfig := flags.Bool("print-config", false, "напечатать итоговый конфиг и выйти")

	if err := flags.Parse(args); err != nil {
		return nil, fmt.Errorf("разбор флагов: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(*configPath)
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for key, flag := range map[string]string{
		"server.port":     "port",
		"repository.type": "repository",
		"database.url":    "database-url",
	} {
		if err := v.BindPFlag(key, flags.Lookup(flag)); err != nil {
			return nil, fmt.Errorf("привязка флага %s: %w", flag, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("ошибка парсинга %s: %w", *configPath, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("разбор конфига: %w", err)
	}
	cfg.PrintConfig = *printConfig

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	switch c.Repository.Type {
	case "inmemory", "sqlite":
	case "postgres":
		if c.Database.URL == "" {
			return errors.New("для postgres нужен database.url")
		}
	default:
		return fmt.Errorf("неизвестный тип хранилища %q", c.Repository.Type)
	}
	if c.Server.Port == "" {
		return errors.New("порт сервера не задан")
	}
	if c.Server.RateLimit <= 0 {
		return fmt.Errorf("rate_limit должен быть положительным, получено %d", c.Server.RateLimit)
	}
	return nil
}

func (c *Config) GetServerAddr() string {
	return fmt.Sprintf("%s:%s", c.Server.Host, c.Server.Port)
}

// PrintYAML печатает итоговый конфиг в формате config.yml
func (c *Config) PrintYAML(w io.Writer) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(c); err != nil {
		return fmt.Errorf("печать конфига: %w", err)
	}
	return encoder.Close()
}
