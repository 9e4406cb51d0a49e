package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/urfave/cli/v2"

	ckanadapter "github.com/ericfisherdev/threadpanel/internal/adapter/driven/ckan"
	sqliteadapter "github.com/ericfisherdev/threadpanel/internal/adapter/driven/sqlite"
	"github.com/ericfisherdev/threadpanel/internal/application"
	"github.com/ericfisherdev/threadpanel/internal/config"
	"github.com/ericfisherdev/threadpanel/internal/domain/model"
	"github.com/ericfisherdev/threadpanel/internal/domain/port/driven"
)

// defaultTUILog is where the interactive page logs when log.file is unset;
// the terminal belongs to the screen.
const defaultTUILog = "threadpanel.log"

// app holds the adapters and services shared by every command.
type app struct {
	cfg     *config.Config
	db      *sqliteadapter.DB
	client  *ckanadapter.Client
	flash   *application.FlashService
	threads *application.ThreadService
	changes *application.ChangeBroker
	logger  *slog.Logger
	logFile io.Closer
}

// open loads configuration and wires the adapters. interactive selects
// file logging.
func open(c *cli.Context, interactive bool) (*app, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, err
	}

	logger, logFile, err := newLogger(cfg, interactive)
	if err != nil {
		return nil, err
	}
	slog.SetDefault(logger)
	slog.Info("config loaded",
		"portal_url", cfg.Portal.URL,
		"subject_id", cfg.Thread.SubjectID,
		"subject_type", cfg.Thread.SubjectType,
		"ajax_reload", cfg.Thread.AjaxReload,
		"db_path", cfg.Store.DBPath,
	)

	db, err := sqliteadapter.NewDB(c.Context, cfg.Store.DBPath)
	if err != nil {
		closeQuietly(logFile)
		return nil, err
	}
	if err := sqliteadapter.RunMigrations(db.Writer); err != nil {
		_ = db.Close()
		closeQuietly(logFile)
		return nil, err
	}
	slog.Info("database ready", "path", cfg.Store.DBPath)

	client := ckanadapter.NewClient(cfg.Portal.URL, cfg.Portal.APIToken, cfg.Portal.Timeout)
	query := driven.ThreadQuery{
		IncludeComments: true,
		IncludeAuthor:   true,
		CombineComments: true,
		NewestFirst:     cfg.Thread.NewestFirst,
		InitMissing:     true,
	}

	return &app{
		cfg:     cfg,
		db:      db,
		client:  client,
		flash:   application.NewFlashService(sqliteadapter.NewFlashRelayRepo(db), logger),
		threads: application.NewThreadService(client, query, logger),
		changes: application.NewChangeBroker(16),
		logger:  logger,
		logFile: logFile,
	}, nil
}

func (a *app) thread() model.Thread {
	return model.Thread{Subject: a.cfg.Subject(), AjaxReload: a.cfg.Thread.AjaxReload}
}

// controller builds a controller for page with the given add-comment forms.
func (a *app) controller(page driven.Page, forms *application.FormToggler) *application.ThreadController {
	return application.NewThreadController(a.thread(), a.client, page, a.flash, a.changes, forms, a.logger)
}

func (a *app) Close() {
	a.changes.Close()
	if err := a.db.Close(); err != nil {
		slog.Error("error closing database", "error", err)
	}
	closeQuietly(a.logFile)
}

func newLogger(cfg *config.Config, interactive bool) (*slog.Logger, io.Closer, error) {
	level, err := cfg.LogLevel()
	if err != nil {
		return nil, nil, err
	}

	path := cfg.Log.File
	if path == "" && interactive {
		path = defaultTUILog
	}
	if path == "" {
		return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})), nil, nil
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, nil, fmt.Errorf("opening log file %s: %w", path, err)
	}
	return slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: level})), f, nil
}

func closeQuietly(c io.Closer) {
	if c != nil {
		_ = c.Close()
	}
}

// withApp runs fn with a wired app and closes it afterwards.
func withApp(interactive bool, fn func(ctx context.Context, a *app, c *cli.Context) error) cli.ActionFunc {
	return func(c *cli.Context) error {
		a, err := open(c, interactive)
		if err != nil {
			return err
		}
		defer a.Close()
		return fn(c.Context, a, c)
	}
}
