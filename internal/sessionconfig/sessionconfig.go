// Package sessionconfig loads optional session defaults (spec SPEC_FULL.md
// §4.8/§6 "Persisted state"): a prompt string, a history file path, and an
// optional bag-snapshot path. `damasc repl` is its only caller and uses the
// prompt and history path; no command reads the bag-snapshot path. It is
// grounded on the `github.com/knadh/koanf/v2` + `.../providers/file` +
// `.../parsers/yaml` composition the pack's holomush repo depends on
// (its go.mod lists the same three modules for exactly this purpose,
// though no checked-in holomush source exercises them); this package is
// Damasc's own use of that composition.
package sessionconfig

import (
	"os"
	"path/filepath"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config holds the session defaults a REPL front-end may load before
// starting (spec SPEC_FULL.md §6 "koanf-loaded session config
// additionally persists prompt string and default history path").
type Config struct {
	Prompt      string `koanf:"prompt"`
	HistoryFile string `koanf:"history_file"`
	BagSnapshot string `koanf:"bag_snapshot"`
}

// Default returns the built-in session defaults used when no config file
// is present.
func Default() Config {
	return Config{
		Prompt:      "damasc> ",
		HistoryFile: defaultHistoryPath(),
	}
}

func defaultHistoryPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".damasc_history"
	}
	return filepath.Join(home, ".damasc_history")
}

// Load reads a YAML config file at path, merging it over Default(). A
// missing file is not an error: it simply yields the defaults, since
// session config is optional (spec SPEC_FULL.md "optional session
// defaults").
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	k := koanf.New(".")
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return Config{}, err
	}
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
