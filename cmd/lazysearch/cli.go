package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rebeliceyang/lazysearch/internal/config"
	"github.com/rebeliceyang/lazysearch/internal/credentials"
	"github.com/rebeliceyang/lazysearch/internal/discovery"
	"github.com/rebeliceyang/lazysearch/internal/history"
	"github.com/rebeliceyang/lazysearch/internal/logging"
	"github.com/rebeliceyang/lazysearch/internal/models"
	"github.com/rebeliceyang/lazysearch/internal/saved"
	"github.com/rebeliceyang/lazysearch/internal/search"
	"go.uber.org/zap"
)

// cli holds state shared by every command
type cli struct {
	cfgFile  string
	dataDir  string
	logLevel string

	cfg     *config.Config
	logger  *zap.Logger
	history *history.Store
}

func (c *cli) setup() error {
	var err error
	if c.cfgFile != "" {
		c.cfg, err = config.LoadFile(c.cfgFile)
	} else {
		c.cfg, err = config.Load()
	}
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if c.logLevel != "" {
		c.cfg.Logging.Level = c.logLevel
	}

	if c.dataDir == "" {
		if c.dataDir, err = config.GetConfigPath(); err != nil {
			return fmt.Errorf("failed to resolve config directory: %w", err)
		}
	}
	if err := os.MkdirAll(c.dataDir, 0755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	logFile := c.cfg.Logging.File
	if logFile == "" {
		logFile = filepath.Join(c.dataDir, "lazysearch.log")
	}
	c.logger, err = logging.New(c.cfg.Logging.Level, logFile, map[string]any{"app": "lazysearch"})
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	return nil
}

func (c *cli) close() {
	if c.history != nil {
		_ = c.history.Close()
	}
	if c.logger != nil {
		_ = c.logger.Sync()
	}
}

func (c *cli) savedManager() (*saved.Manager, error) {
	return saved.NewManager(c.dataDir)
}

// openHistory returns nil without error when history is disabled
func (c *cli) openHistory() (*history.Store, error) {
	if !c.cfg.History.Enabled {
		return nil, nil
	}
	if c.history != nil {
		return c.history, nil
	}

	path := c.cfg.History.Path
	if path == "" {
		path = filepath.Join(c.dataDir, "history.db")
	}
	store, err := history.NewStore(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open history: %w", err)
	}
	c.history = store
	return store, nil
}

// record stores a validation in history, logging rather than failing
func (c *cli) record(expr, source string, result models.ValidationResult) {
	store, err := c.openHistory()
	if err != nil {
		c.logger.Warn("failed to open history", zap.Error(err))
		return
	}
	if store == nil {
		return
	}
	if err := store.Add(history.NewEntry(expr, c.cfg.Search.IndexName, source, result)); err != nil {
		c.logger.Warn("failed to record history", zap.Error(err))
		return
	}
	if err := store.Prune(c.cfg.History.MaxEntries); err != nil {
		c.logger.Warn("failed to prune history", zap.Error(err))
	}
}

func (c *cli) keyStore() (*credentials.KeyStore, error) {
	return credentials.NewKeyStore(c.dataDir)
}

// lazyKeys opens the keyring only when a key is actually looked up
type lazyKeys struct {
	c *cli
}

func (k lazyKeys) Get(host string) (string, error) {
	ks, err := k.c.keyStore()
	if err != nil {
		return "", err
	}
	return ks.Get(host)
}

// resolveService merges config, environment, .env and keyring settings
func (c *cli) resolveService() models.ServiceConfig {
	return discovery.NewDiscoverer(lazyKeys{c}, c.logger).Resolve(c.cfg.ServiceConfig())
}

func (c *cli) searchClient() (*search.Client, error) {
	return search.NewClient(c.resolveService(),
		search.WithLogger(c.logger),
		search.WithTimeout(c.cfg.RequestTimeout()),
	)
}
