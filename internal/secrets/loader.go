// Package secrets resolves credentials such as the Gemini API key.
package secrets

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Origin names where a resolved secret came from. It is safe to log.
type Origin string

const (
	OriginFile  Origin = "file"
	OriginValue Origin = "config"
	OriginEnv   Origin = "env"
)

// Source lists the places a secret may be configured.
type Source struct {
	// Name is used in error messages, e.g. "gemini api key".
	Name string
	// Value is an inline secret from the configuration file or environment binding.
	Value string
	// File points to a file holding the secret. A leading ~ is the home directory.
	File string
	// Env is consulted last.
	Env string
}

// Load resolves the secret with precedence File, Value, Env. The secret is trimmed.
func Load(src Source) (string, error) {
	secret, _, err := Resolve(src)
	return secret, err
}

// Resolve is Load that also reports the origin of the secret.
func Resolve(src Source) (string, Origin, error) {
	name := strings.TrimSpace(src.Name)
	if name == "" {
		name = "secret"
	}

	if file := strings.TrimSpace(src.File); file != "" {
		path, err := expandHome(file)
		if err != nil {
			return "", "", fmt.Errorf("resolving %s file %q: %w", name, file, err)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return "", "", fmt.Errorf("reading %s from file %q: %w", name, file, err)
		}
		secret := strings.TrimSpace(string(data))
		if secret == "" {
			return "", "", fmt.Errorf("%s file %q is empty", name, file)
		}
		return secret, OriginFile, nil
	}

	if secret := strings.TrimSpace(src.Value); secret != "" {
		return secret, OriginValue, nil
	}

	env := strings.TrimSpace(src.Env)
	if env == "" {
		return "", "", fmt.Errorf("%s is not configured", name)
	}
	secret := strings.TrimSpace(os.Getenv(env))
	if secret == "" {
		return "", "", fmt.Errorf("%s is not configured (%s is empty)", name, env)
	}
	return secret, OriginEnv, nil
}

func expandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}
