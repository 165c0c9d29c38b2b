package envconfig

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

var validate = validator.New()

// LoadDotEnv reads KEY=VALUE pairs from the given files (default ".env") into the process
// environment. Missing files are ignored; variables already set win over file values.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, file := range files {
		if err := godotenv.Load(file); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("load %s: %w", file, err)
		}
	}
	return nil
}

// Get returns the value of the requested environment variable or the supplied fallback when empty.
func Get(name string, fallback string) string {
	if value, ok := os.LookupEnv(name); ok && value != "" {
		return value
	}
	return fallback
}

// GetBool parses a boolean environment variable, returning fallback when unset or unparsable.
func GetBool(name string, fallback bool) bool {
	value, err := strconv.ParseBool(Get(name, ""))
	if err != nil {
		return fallback
	}
	return value
}

// GetFloat parses a float environment variable, returning fallback when unset or unparsable.
func GetFloat(name string, fallback float64) float64 {
	value, err := strconv.ParseFloat(Get(name, ""), 64)
	if err != nil {
		return fallback
	}
	return value
}

// GetInt parses an integer environment variable, returning fallback when unset or unparsable.
func GetInt(name string, fallback int) int {
	value, err := strconv.Atoi(Get(name, ""))
	if err != nil {
		return fallback
	}
	return value
}

// GetList splits a comma separated variable, dropping blank items.
func GetList(name string) []string {
	raw := Get(name, "")
	if raw == "" {
		return nil
	}
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// Validate validates a struct using validator tags.
func Validate(v any) error {
	return validate.Struct(v)
}
