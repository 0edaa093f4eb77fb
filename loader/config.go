package loader

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config configures file-backed factories and the Watcher.
type Config struct {
	// Root is the directory keys are resolved against.
	Root string `yaml:"root"`

	// Extensions limits which files may be loaded, e.g. [".png", ".yaml"].
	// Matching is case-insensitive. Empty allows every file.
	Extensions []string `yaml:"extensions"`

	// Debounce is how long the Watcher waits for more changes before
	// forgetting keys. Zero forgets on every event.
	// Default: 100ms
	Debounce time.Duration `yaml:"debounce"`
}

// DefaultConfig returns a Config for root with default settings.
func DefaultConfig(root string) Config {
	return Config{
		Root:     root,
		Debounce: 100 * time.Millisecond,
	}
}

// LoadConfig reads a YAML config file. Unset fields keep their defaults.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("loader: read config: %w", err)
	}

	cfg := DefaultConfig("")
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("loader: parse config %s: %w", path, err)
	}
	if cfg.Root != "" && !filepath.IsAbs(cfg.Root) {
		// Relative roots are relative to the config file.
		cfg.Root = filepath.Join(filepath.Dir(path), cfg.Root)
	}
	return cfg, cfg.Validate()
}

// Validate checks the configuration without touching the filesystem.
func (c Config) Validate() error {
	if c.Root == "" {
		return ErrNoRoot
	}
	if c.Debounce < 0 {
		return ErrInvalidDebounce
	}
	return nil
}

// checkRoot verifies that Root exists and is a directory.
func (c Config) checkRoot() error {
	info, err := os.Stat(c.Root)
	if err != nil {
		return fmt.Errorf("loader: stat root: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s", ErrRootNotDir, c.Root)
	}
	return nil
}

func (c Config) allows(name string) bool {
	if len(c.Extensions) == 0 {
		return true
	}
	ext := strings.ToLower(filepath.Ext(name))
	return slices.ContainsFunc(c.Extensions, func(allowed string) bool {
		allowed = strings.ToLower(allowed)
		if !strings.HasPrefix(allowed, ".") {
			allowed = "." + allowed
		}
		return allowed == ext
	})
}

// resolve maps a key to a file path under Root.
func (c Config) resolve(key string) (string, error) {
	rel := filepath.FromSlash(key)
	if !filepath.IsLocal(rel) {
		return "", fmt.Errorf("%w: %q", ErrOutsideRoot, key)
	}
	if !c.allows(rel) {
		return "", fmt.Errorf("%w: %q", ErrExtension, key)
	}
	return filepath.Join(c.Root, rel), nil
}

// keyFor maps a path under Root back to its key.
func (c Config) keyFor(path string) (string, bool) {
	rel, err := filepath.Rel(c.Root, path)
	if err != nil || rel == "." || !filepath.IsLocal(rel) {
		return "", false
	}
	return filepath.ToSlash(rel), true
}
