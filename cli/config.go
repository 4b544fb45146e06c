package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml"

	"github.com/JamesCliffordSpratt/macros-sub001/store"
)

// DefaultConfigName is looked up in the working directory when no explicit
// config path is given.
const DefaultConfigName = "macros.toml"

// Config holds the file-backed settings. Command-line flags override any
// value set here.
type Config struct {
	// Vault is the root directory of the markdown documents.
	Vault string `toml:"vault"`

	// Foods is the directory of food record notes, relative to the vault
	// root unless absolute.
	Foods string `toml:"foods"`

	// BlockKeyword is the fence info string marking ledger blocks.
	BlockKeyword string `toml:"block_keyword"`

	// CaseSensitive applies to rename matching by default.
	CaseSensitive bool `toml:"case_sensitive"`

	// Listen is the web server bind address.
	Listen string `toml:"listen"`

	// Meals maps meal template names to their item lines.
	Meals map[string][]string `toml:"meals"`
}

// DefaultConfig returns the settings used when no config file exists.
func DefaultConfig() Config {
	return Config{
		Vault:        ".",
		Foods:        "foods",
		BlockKeyword: store.DefaultBlockKeyword,
		Listen:       "127.0.0.1:8080",
	}
}

// LoadConfig reads the TOML config at path. An empty path falls back to
// the default name in the current directory, and a missing file yields the
// defaults without error.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	explicit := path != ""
	if !explicit {
		path = DefaultConfigName
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return cfg, nil
}

// FoodsDir resolves the food record directory against the vault root.
func (c Config) FoodsDir() string {
	if filepath.IsAbs(c.Foods) {
		return c.Foods
	}
	return filepath.Join(c.Vault, c.Foods)
}
