package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/pflag"

	"github.com/nikbrunner/bars/internal/barstore"
	"github.com/nikbrunner/bars/internal/logging"
	"github.com/nikbrunner/bars/internal/state"
	"github.com/nikbrunner/bars/internal/storage"
	"github.com/nikbrunner/bars/internal/switcher"
)

// commonFlags are accepted by every subcommand.
type commonFlags struct {
	configPath string
	logLevel   string
}

// newFlagSet returns a flag set for a subcommand with the common flags bound.
func newFlagSet(name string, common *commonFlags) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ExitOnError)
	fs.StringVar(&common.configPath, "config", "", "config file path")
	fs.StringVar(&common.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage of bars %s:\n", name)
		fs.PrintDefaults()
	}
	return fs
}

// app bundles everything a subcommand needs.
type app struct {
	cfg      *storage.Config
	storage  storage.Storage
	store    *barstore.Store
	state    switcher.WorkspaceState
	logger   zerolog.Logger
	closeLog func() error
}

// openApp loads config and opens storage, state and logging.
func openApp(common commonFlags) (*app, error) {
	configPath := common.configPath
	if configPath == "" {
		var err error
		configPath, err = storage.DefaultConfigFilePath()
		if err != nil {
			return nil, fmt.Errorf("config path: %w", err)
		}
	}

	cfg, err := storage.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}
	if common.logLevel != "" {
		cfg.LogLevel = common.logLevel
	}

	logger, closeLog, err := logging.New(logging.Params{Level: cfg.LogLevel, File: cfg.LogFile})
	if err != nil {
		return nil, err
	}

	stg, err := storage.OpenStorage(cfg)
	if err != nil {
		closeLog()
		return nil, fmt.Errorf("open storage: %w", err)
	}

	var ws switcher.WorkspaceState
	if kv, ok := stg.(state.KV); ok {
		ws = state.NewDB(kv)
	} else {
		ws = state.NewFile(cfg.StatePath)
	}

	logger.Debug().Str("config", configPath).Str("backend", cfg.Backend).Str("store", cfg.StorePath).Msg("opened")

	return &app{
		cfg:     cfg,
		storage: stg,
		store: barstore.New(barstore.Params{
			Storage:        stg,
			ToolbarName:    cfg.ToolbarName,
			DirectoryName:  cfg.DirectoryName,
			DefaultBarName: cfg.DefaultBarName,
		}),
		state:    ws,
		logger:   logger,
		closeLog: closeLog,
	}, nil
}

// mustOpenApp is openApp for commands that cannot continue without it.
func mustOpenApp(common commonFlags) *app {
	a, err := openApp(common)
	if err != nil {
		fail("starting", err)
	}
	return a
}

// orchestrator builds the switcher over the app's store and state.
func (a *app) orchestrator() *switcher.Orchestrator {
	return switcher.New(switcher.Params{
		Store:             a.store,
		State:             a.state,
		Debounce:          a.cfg.Debounce(),
		IdlePoll:          a.cfg.IdlePoll(),
		WorkspaceTracking: a.cfg.TracksWorkspaces(),
		Logger:            a.logger,
	})
}

// withLogger returns ctx carrying the app logger for the store and checker.
func (a *app) withLogger(ctx context.Context) context.Context {
	return logging.WithContext(ctx, a.logger)
}

func (a *app) Close() {
	if err := a.storage.Close(); err != nil {
		a.logger.Warn().Err(err).Msg("close storage")
	}
	_ = a.closeLog()
}
