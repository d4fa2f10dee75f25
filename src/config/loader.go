package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// EnvConfigPath names the variable consulted when no --config flag is given
const EnvConfigPath = "SMELL_BOT_CONFIG"

// ${NAME} or ${NAME:-fallback}
var envRef = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(?::-([^}]*))?\}`)

// Loader reads a YAML config on top of DefaultConfig
type Loader struct {
	envFiles []string
}

// NewLoader creates a loader. envFiles are dotenv files applied before the
// YAML is expanded; ".env" is used when none are given. Missing files are
// skipped and variables already present in the environment are kept.
func NewLoader(envFiles ...string) *Loader {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	return &Loader{envFiles: envFiles}
}

// Load resolves, expands, decodes and validates the configuration.
// References in the YAML take the forms
//   - ${NAME}            value of NAME, empty when unset
//   - ${NAME:-fallback}  value of NAME, fallback when unset
//
// Keys absent from the file keep their defaults.
func (l *Loader) Load(configPath string) (*Config, error) {
	if err := l.applyEnvFiles(); err != nil {
		return nil, err
	}

	cfg := DefaultConfig()
	path, err := l.locate(configPath)
	if err != nil {
		return nil, err
	}
	if path == "" {
		return cfg, cfg.Validate()
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal([]byte(expandEnv(string(raw))), cfg); err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config file %s: %w", path, err)
	}
	return cfg, nil
}

func (l *Loader) applyEnvFiles() error {
	for _, f := range l.envFiles {
		if _, err := os.Stat(f); errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return fmt.Errorf("loading env file %s: %w", f, err)
		}
	}
	return nil
}

// locate returns the explicit path, then $SMELL_BOT_CONFIG, then the first
// existing well-known location. An empty result means run on defaults.
func (l *Loader) locate(explicit string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}
	if p := os.Getenv(EnvConfigPath); p != "" {
		if _, err := os.Stat(p); err != nil {
			return "", fmt.Errorf("%s points at an unusable file: %w", EnvConfigPath, err)
		}
		return p, nil
	}

	candidates := []string{"config.yaml", filepath.Join("config", "config.yaml")}
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, ".smell-bot", "config.yaml"))
	}
	for _, c := range candidates {
		if info, err := os.Stat(c); err == nil && !info.IsDir() {
			return c, nil
		}
	}
	return "", nil
}

func expandEnv(input string) string {
	return envRef.ReplaceAllStringFunc(input, func(ref string) string {
		m := envRef.FindStringSubmatch(ref)
		if v, ok := os.LookupEnv(m[1]); ok {
			return v
		}
		return m[2]
	})
}
