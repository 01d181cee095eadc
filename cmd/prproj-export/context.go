package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/mattn/go-isatty"

	"github.com/heimdex/prproj-export/internal/catalog"
	"github.com/heimdex/prproj-export/internal/config"
	"github.com/heimdex/prproj-export/internal/convert"
	"github.com/heimdex/prproj-export/internal/db"
	"github.com/heimdex/prproj-export/internal/logging"
)

type commandContext struct {
	configFlag   *string
	logLevelFlag *string

	configOnce sync.Once
	config     *config.EnvConfig
	configErr  error

	dbMu     sync.Mutex
	database *db.DB
	repo     *catalog.SQLiteRepository
}

func newCommandContext(configFlag, logLevelFlag *string) *commandContext {
	return &commandContext{
		configFlag:   configFlag,
		logLevelFlag: logLevelFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.EnvConfig, error) {
	c.configOnce.Do(func() {
		path := os.Getenv(config.EnvConfigFile)
		if c.configFlag != nil && strings.TrimSpace(*c.configFlag) != "" {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, err := config.Load(path)
		if err != nil {
			c.configErr = fmt.Errorf("load config: %w", err)
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) logLevel() string {
	if c.logLevelFlag != nil && *c.logLevelFlag != "" {
		return *c.logLevelFlag
	}
	if c.config != nil {
		return c.config.LogLevel()
	}
	return config.DefaultLogLevel
}

// logger writes text logs to w, keeping stdout free for exported rows.
func (c *commandContext) logger(w io.Writer) *slog.Logger {
	return logging.NewCLILogger(c.logLevel(), w)
}

// catalogRepo opens the history database on first use.
func (c *commandContext) catalogRepo(logger *slog.Logger) (*catalog.SQLiteRepository, error) {
	c.dbMu.Lock()
	defer c.dbMu.Unlock()
	if c.repo != nil {
		return c.repo, nil
	}
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(cfg.DataDir(), 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	database, err := db.New(cfg.DBPath(), logger)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	c.database = database
	c.repo = catalog.NewRepository(database.Conn())
	return c.repo, nil
}

func (c *commandContext) converter(logger *slog.Logger, cache bool) (*convert.Converter, *catalog.Service, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, nil, err
	}
	repo, err := c.catalogRepo(logger)
	if err != nil {
		return nil, nil, err
	}
	svc := catalog.NewService(repo, logger)
	conv := convert.New(convert.Config{
		Catalog:    svc,
		Logger:     logger,
		DefaultFPS: cfg.FPS(),
		Cache:      cache && cfg.CacheEnabled(),
	})
	return conv, svc, nil
}

func (c *commandContext) close() error {
	c.dbMu.Lock()
	defer c.dbMu.Unlock()
	if c.database == nil {
		return nil
	}
	err := c.database.Close()
	c.database, c.repo = nil, nil
	return err
}

func isTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
