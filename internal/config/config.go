// Package config loads application settings from the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"

	"github.com/skilltrack/skilltrack/internal/llm"
)

// EnvPrefix prefixes every environment variable read by skilltrack.
const EnvPrefix = "SKILLTRACK_"

// Grading modes.
const (
	GradingExact    = "exact"
	GradingAssisted = "assisted"
)

// Config holds the application settings.
type Config struct {
	// DBPath overrides the default database location.
	DBPath string

	Env      string `validate:"oneof=development production"`
	LogLevel string `validate:"oneof=debug info warn error"`
	LogFile  string

	// Grading selects the answer verifier: exact matching, or exact
	// matching with an LLM fallback for free-text answers.
	Grading string `validate:"oneof=exact assisted"`

	LLM llm.Config `validate:"-"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Env:      "development",
		LogLevel: "info",
		Grading:  GradingExact,
		LLM:      llm.DefaultConfig(),
	}
}

// LoadDotEnv loads a .env file into the process environment without
// overriding variables that are already set. A missing file is not an error.
func LoadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("loading %s: %w", path, err)
	}
	return nil
}

// FromEnv builds a Config from SKILLTRACK_* environment variables, falling
// back to defaults for unset values.
func FromEnv() Config {
	cfg := DefaultConfig()

	if v := os.Getenv(EnvPrefix + "DB"); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv(EnvPrefix + "ENV"); v != "" {
		cfg.Env = strings.ToLower(v)
	}
	if v := os.Getenv(EnvPrefix + "LOG_LEVEL"); v != "" {
		cfg.LogLevel = strings.ToLower(v)
	}
	if v := os.Getenv(EnvPrefix + "LOG_FILE"); v != "" {
		cfg.LogFile = v
	}
	if v := os.Getenv(EnvPrefix + "GRADING"); v != "" {
		cfg.Grading = strings.ToLower(v)
	}
	cfg.LLM = llm.ConfigFromEnv()

	return cfg
}

// Validate checks field values and, in assisted grading mode, the LLM
// provider settings.
func (c Config) Validate() error {
	err := validator.New().Struct(c)
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		msg := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			msg = append(msg, fmt.Sprintf("%s%s must be one of (%s), got %q",
				EnvPrefix, envName(fe.Field()), fe.Param(), fe.Value()))
		}
		return errors.New(strings.Join(msg, "; "))
	}
	if err != nil {
		return fmt.Errorf("validating config: %w", err)
	}

	if c.Grading == GradingAssisted {
		if err := c.LLM.Validate(); err != nil {
			return fmt.Errorf("assisted grading: %w", err)
		}
	}
	return nil
}

func envName(field string) string {
	switch field {
	case "LogLevel":
		return "LOG_LEVEL"
	default:
		return strings.ToUpper(field)
	}
}
