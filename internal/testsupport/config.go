package testsupport

import (
	"path/filepath"
	"testing"

	"pearl/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.DataDir = filepath.Join(base, "data")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Workspace.GroupName = "Test Group"

	for _, opt := range opts {
		opt(&cfg)
	}

	return &cfg
}

// WithDefaultActor sets the default acting user on the test config.
func WithDefaultActor(userID string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Workspace.DefaultActor = userID
	}
}
