package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Project struct {
		Root string `yaml:"root" validate:"required"`
		// Inputs are extra files or directories, such as JSON doclet dumps.
		Inputs []string `yaml:"inputs"`
		Ignore []string `yaml:"ignore"`
		Jobs   int      `yaml:"jobs" validate:"gte=1,lte=256"`
	} `yaml:"project"`
	Resolve struct {
		InheritUndocumented bool `yaml:"inherit_undocumented"`
		MaxDiagnostics      int  `yaml:"max_diagnostics" validate:"gte=0"`
	} `yaml:"resolve"`
	Output struct {
		Dump     string `yaml:"dump"`     // JSON dump of the resolved collection
		Database string `yaml:"database"` // SQLite run history
		Metrics  string `yaml:"metrics"`  // Prometheus textfile
	} `yaml:"output"`
	Log struct {
		Level  string `yaml:"level" validate:"oneof=debug info warn error"`
		Format string `yaml:"format" validate:"oneof=text json"`
	} `yaml:"log"`
}

var validate = validator.New()

// Default returns the configuration used when no file is present.
func Default() *Config {
	var cfg Config
	cfg.Project.Root = "."
	cfg.Project.Jobs = 4
	cfg.Resolve.MaxDiagnostics = 1000
	cfg.Log.Level = "info"
	cfg.Log.Format = "text"
	return &cfg
}

// LoadConfig reads path on top of the defaults. A missing file is not an
// error.
func LoadConfig(path string) (*Config, error) {
	// 1. Load .env if exists
	_ = godotenv.Load()

	cfg := Default()

	// 2. Load YAML config
	if path != "" {
		file, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, err
		default:
			if err := yaml.Unmarshal(file, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse %s: %w", path, err)
			}
		}
	}

	// 3. Override with Environment Variables if present
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if root := os.Getenv("DOCLINK_ROOT"); root != "" {
		c.Project.Root = root
	}
	if jobs := os.Getenv("DOCLINK_JOBS"); jobs != "" {
		n, err := strconv.Atoi(jobs)
		if err != nil {
			return fmt.Errorf("DOCLINK_JOBS: %w", err)
		}
		c.Project.Jobs = n
	}
	if v := os.Getenv("DOCLINK_INHERIT_UNDOCUMENTED"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("DOCLINK_INHERIT_UNDOCUMENTED: %w", err)
		}
		c.Resolve.InheritUndocumented = b
	}
	if dump := os.Getenv("DOCLINK_DUMP"); dump != "" {
		c.Output.Dump = dump
	}
	if db := os.Getenv("DOCLINK_DATABASE"); db != "" {
		c.Output.Database = db
	}
	if level := os.Getenv("DOCLINK_LOG_LEVEL"); level != "" {
		c.Log.Level = strings.ToLower(level)
	}
	return nil
}

// Validate checks field constraints.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// NewLogger builds the logger described by the Log section.
func (c *Config) NewLogger(w io.Writer) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Log.Level)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if c.Log.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
