package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override, e.g. LAUNCHDASH_HTTP_PORT.
const EnvPrefix = "LAUNCHDASH"

// Default values for the server configuration.
const (
	DefaultHTTPPort     = 8051
	DefaultLogLevel     = "info"
	DefaultDatasetPath  = "spacex_launch_dash.csv"
	DefaultSliderMin    = 0
	DefaultSliderMax    = 10000
	DefaultSliderStep   = 1000
	DefaultWSPingPeriod = 54 * time.Second
	DefaultWSPongWait   = 60 * time.Second
)

// Config holds the configuration parsed from the `server:` section of
// config.yaml.
type Config struct {
	Server ServerConfig `yaml:"server"`
}

// ServerConfig holds all server-side settings.
type ServerConfig struct {
	// HTTPPort is the port the dashboard API and WebSocket listen on (default 8051).
	HTTPPort int `yaml:"http_port" split_words:"true" validate:"min=1,max=65535"`

	// LogLevel is one of: debug | info | warn | error. Applied live on reload.
	LogLevel string `yaml:"log_level" split_words:"true" validate:"oneof=debug info warn error"`

	// UIDir, when set, serves pre-built UI static files from this directory.
	UIDir string `yaml:"ui_dir" split_words:"true"`

	// Dataset locates and describes the launch table.
	Dataset DatasetConfig `yaml:"dataset"`

	// Slider bounds the payload range control.
	Slider SliderConfig `yaml:"slider"`

	// WS tunes the WebSocket session keepalive.
	WS WSConfig `yaml:"ws"`
}

// DatasetConfig describes the source table.
type DatasetConfig struct {
	// Path is the CSV, TSV or XLSX file loaded at startup.
	Path string `yaml:"path" validate:"required"`

	// Delimiter overrides the field separator for delimited files.
	Delimiter string `yaml:"delimiter"`

	// Columns maps canonical fields to header names. Empty entries keep the defaults.
	Columns ColumnsConfig `yaml:"columns"`
}

// ColumnsConfig names the source header for each canonical field.
type ColumnsConfig struct {
	Site    string `yaml:"site"`
	Payload string `yaml:"payload"`
	Class   string `yaml:"class"`
	Booster string `yaml:"booster"`
}

// SliderConfig bounds the payload range slider.
type SliderConfig struct {
	Min  float64 `yaml:"min" validate:"gte=0"`
	Max  float64 `yaml:"max" validate:"gtfield=Min"`
	Step float64 `yaml:"step" validate:"gt=0"`
}

// WSConfig tunes WebSocket keepalive. PingPeriod must be shorter than PongWait.
type WSConfig struct {
	PingPeriod time.Duration `yaml:"ping_period" split_words:"true" validate:"gt=0"`
	PongWait   time.Duration `yaml:"pong_wait" split_words:"true" validate:"gtfield=PingPeriod"`
}

// DelimiterRune returns the configured delimiter, or 0 to use the file
// type's default.
func (d DatasetConfig) DelimiterRune() rune {
	if d.Delimiter == "" {
		return 0
	}
	if d.Delimiter == `\t` {
		return '\t'
	}
	r, _ := utf8.DecodeRuneInString(d.Delimiter)
	return r
}

// SlogLevel converts LogLevel to a slog.Level. Unknown values map to Info.
func (s ServerConfig) SlogLevel() slog.Level {
	switch strings.ToLower(s.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Load builds the configuration in layers: defaults, then the YAML file at
// path (skipped when path is empty), then a .env file beside it, then
// LAUNCHDASH_* environment variables. The result is validated.
func Load(path string) (*Config, error) {
	cfg := defaults()

	envDir := "."
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("server config: read %q: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("server config: parse yaml: %w", err)
		}
		envDir = filepath.Dir(path)
	}

	// godotenv never overrides variables already set in the process.
	if err := godotenv.Load(filepath.Join(envDir, ".env")); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("server config: read .env: %w", err)
	}
	if err := envconfig.Process(EnvPrefix, &cfg.Server); err != nil {
		return nil, fmt.Errorf("server config: environment: %w", err)
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("server config: %w", err)
	}
	return cfg, nil
}

// defaults returns a Config pre-populated with default values.
func defaults() *Config {
	return &Config{
		Server: ServerConfig{
			HTTPPort: DefaultHTTPPort,
			LogLevel: DefaultLogLevel,
			Dataset: DatasetConfig{
				Path: DefaultDatasetPath,
			},
			Slider: SliderConfig{
				Min:  DefaultSliderMin,
				Max:  DefaultSliderMax,
				Step: DefaultSliderStep,
			},
			WS: WSConfig{
				PingPeriod: DefaultWSPingPeriod,
				PongWait:   DefaultWSPongWait,
			},
		},
	}
}

var structValidator = validator.New(validator.WithRequiredStructEnabled())

// validate checks structural constraints on the parsed configuration.
func validate(cfg *Config) error {
	cfg.Server.LogLevel = strings.ToLower(cfg.Server.LogLevel)

	if err := structValidator.Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("%s: value %v fails %q", yamlPath(fe.Namespace()), fe.Value(), constraint(fe))
		}
		return err
	}

	if utf8.RuneCountInString(cfg.Server.Dataset.Delimiter) > 1 && cfg.Server.Dataset.Delimiter != `\t` {
		return fmt.Errorf("server.dataset.delimiter %q must be a single character", cfg.Server.Dataset.Delimiter)
	}
	return nil
}

func constraint(fe validator.FieldError) string {
	if fe.Param() == "" {
		return fe.Tag()
	}
	return fe.Tag() + "=" + fe.Param()
}

// yamlPath turns a validator namespace ("Config.Server.HTTPPort") into the
// YAML key path users write ("server.http_port").
func yamlPath(ns string) string {
	parts := strings.Split(ns, ".")
	if len(parts) > 0 && parts[0] == "Config" {
		parts = parts[1:]
	}
	for i, p := range parts {
		if k, ok := yamlKeys[p]; ok {
			parts[i] = k
		} else {
			parts[i] = strings.ToLower(p)
		}
	}
	return strings.Join(parts, ".")
}

var yamlKeys = map[string]string{
	"HTTPPort":   "http_port",
	"LogLevel":   "log_level",
	"UIDir":      "ui_dir",
	"PingPeriod": "ping_period",
	"PongWait":   "pong_wait",
}
