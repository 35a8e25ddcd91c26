package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/reliverse/reliverse/internal/defs"
)

// SettingsPrefix is the environment variable prefix for CLI settings.
const SettingsPrefix = "reliverse"

// DefaultExampleURL is where .env.example is fetched from when a project
// has none.
const DefaultExampleURL = "https://raw.githubusercontent.com/blefnk/relivator-nextjs-template/main/.env.example"

// Settings are the CLI's own knobs, read from RELIVERSE_* variables.
// Command-line flags take precedence over these.
type Settings struct {
	SkipPrompts  bool          `split_words:"true"`
	MaskInput    bool          `split_words:"true" default:"true"`
	ExampleURL   string        `split_words:"true"`
	LogLevel     string        `split_words:"true" default:"info"`
	NoColor      bool          `split_words:"true"`
	HomeDir      string        `split_words:"true"`
	OpenBrowser  bool          `split_words:"true" default:"true"`
	FetchTimeout time.Duration `split_words:"true" default:"15s"`
}

// LoadSettings reads Settings from the environment and fills derived
// defaults (example URL, home directory).
func LoadSettings() (*Settings, error) {
	var s Settings
	if err := envconfig.Process(SettingsPrefix, &s); err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}

	if s.ExampleURL == "" {
		s.ExampleURL = DefaultExampleURL
	}
	if s.HomeDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home directory: %w", err)
		}
		s.HomeDir = filepath.Join(home, defs.HomeDirName)
	}
	if os.Getenv("NO_COLOR") != "" {
		s.NoColor = true
	}
	return &s, nil
}
