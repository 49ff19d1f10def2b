package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Practice  PracticeConfig  `toml:"practice"`
	Generator GeneratorConfig `toml:"generator"`
	Store     StoreConfig     `toml:"store"`
}

// PracticeConfig maps practice-related settings.
type PracticeConfig struct {
	Lang          *string `toml:"lang"`
	WordList      *string `toml:"wordlist"`
	WeakTop       *int    `toml:"weak-top"`
	MaxWordLength *int    `toml:"max-word-length"`
}

// GeneratorConfig maps exercise generator settings.
type GeneratorConfig struct {
	Method *string `toml:"method"`
	Words  *int    `toml:"words"`
	Chars  *int    `toml:"chars"`
	Text   *string `toml:"text"`
}

// StoreConfig maps persistence settings.
type StoreConfig struct {
	Backend *string `toml:"backend"`
	Path    *string `toml:"path"`
	Pretty  *bool   `toml:"pretty"`
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return FileConfig{}, fmt.Errorf("unknown config key %q", undecoded[0].String())
	}
	return cfg, nil
}

// Template returns a commented config file listing every key with its
// default value.
func Template(d Defaults) string {
	return fmt.Sprintf(`# speedtype configuration
# Uncomment a value to enable it. CLI flags override config values.

[practice]
# lang = %q           # Bundled or user word list language
# wordlist = ""          # Path to a word list, one word per line
# weak-top = %d          # Weak characters highlighted while typing (0 = off)
# max-word-length = 0    # Skip dictionary words longer than this (0 = no limit)

[generator]
# method = %q       # "words" or "chars"
# words = %d            # Words per exercise (%d-%d)
# chars = %d           # Characters per exercise (%d-%d)
# text = ""              # Fixed practice text, used when longer than 16 characters

[store]
# backend = %q       # "file" or "sqlite"
# path = ""              # Save location (default under $XDG_DATA_HOME/speedtype)
# pretty = false         # Indent the JSON save file
`,
		d.Lang,
		d.WeakTop,
		d.Method,
		d.Words, d.MinWords, d.MaxWords,
		d.Chars, d.MinChars, d.MaxChars,
		d.Backend,
	)
}

// Defaults are the values shown in Template.
type Defaults struct {
	Lang     string
	WeakTop  int
	Method   string
	Words    int
	MinWords int
	MaxWords int
	Chars    int
	MinChars int
	MaxChars int
	Backend  string
}
