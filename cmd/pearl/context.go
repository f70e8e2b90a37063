package main

import (
	"errors"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"

	"pearl/internal/config"
	"pearl/internal/logging"
	"pearl/internal/store"
	"pearl/internal/tracker"
)

type commandContext struct {
	configFlag *string
	actorFlag  *string

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag, actorFlag *string) *commandContext {
	return &commandContext{
		configFlag: configFlag,
		actorFlag:  actorFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) configValue() *config.Config {
	cfg, _ := c.ensureConfig()
	return cfg
}

// actorID resolves the acting user: the --as flag wins, the configured
// default actor is the fallback.
func (c *commandContext) actorID() (string, error) {
	if c.actorFlag != nil {
		if actor := strings.TrimSpace(*c.actorFlag); actor != "" {
			return actor, nil
		}
	}
	cfg, err := c.ensureConfig()
	if err != nil {
		return "", err
	}
	if cfg.Workspace.DefaultActor != "" {
		return cfg.Workspace.DefaultActor, nil
	}
	return "", errors.New("no acting user: pass --as <user-id> or set workspace.default_actor in the config")
}

// withStore opens the workspace store for the duration of one command and
// releases the lock when the command returns, so back-to-back invocations do
// not contend for the workspace.
func (c *commandContext) withStore(fn func(*store.Store) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	st, err := store.Open(cfg)
	if err != nil {
		return err
	}
	defer st.Close()
	return fn(st)
}

func (c *commandContext) withService(fn func(*tracker.Service) error) error {
	return c.withStore(func(st *store.Store) error {
		logger, err := c.commandLogger()
		if err != nil {
			return err
		}
		return fn(tracker.New(st, logger))
	})
}

// commandLogger logs to the workspace log file only; command output on
// stdout stays reserved for the rendered results.
func (c *commandContext) commandLogger() (*slog.Logger, error) {
	cfg := c.configValue()
	if cfg == nil || cfg.Paths.LogDir == "" {
		return logging.NewNop(), nil
	}
	return logging.New(logging.Options{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		OutputPaths: []string{filepath.Join(cfg.Paths.LogDir, "pearl.log")},
	})
}
