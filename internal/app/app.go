package app

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/vancomm/minefield/internal/config"
	"github.com/vancomm/minefield/internal/database"
	"github.com/vancomm/minefield/internal/handlers"
	"github.com/vancomm/minefield/internal/repository"
	"github.com/vancomm/minefield/internal/session"
)

const shutdownTimeout = 30 * time.Second

type App struct {
	log        *logrus.Logger
	cfg        *config.App
	game       *config.Game
	ws         *config.WebSocket
	store      *session.Store
	migrations fs.FS

	// Set only when a database is configured.
	db      *pgxpool.Pool
	records handlers.RecordStore
	players handlers.PlayerStore
	cookies *config.Cookies
}

func New(log *logrus.Logger, migrations fs.FS) (*App, error) {
	game, err := config.NewGame()
	if err != nil {
		return nil, err
	}
	ws, err := config.NewWebSocket()
	if err != nil {
		return nil, err
	}
	return &App{
		log:        log,
		cfg:        config.NewApp(),
		game:       game,
		ws:         ws,
		store:      session.NewStore(log.WithField("component", "store")),
		migrations: migrations,
	}, nil
}

// enableAccounts turns on registration, login and records.
func (a *App) enableAccounts(
	players handlers.PlayerStore,
	records handlers.RecordStore,
	cookies *config.Cookies,
) {
	a.players = players
	a.records = records
	a.cookies = cookies
}

func (a *App) connect(ctx context.Context) error {
	dbConfig, err := config.NewDatabase()
	if err != nil {
		a.log.WithError(err).Warn("no database configured, accounts and records are disabled")
		return nil
	}

	jwt, err := config.NewJWT()
	if err != nil {
		return err
	}
	cookies, err := config.NewCookies(jwt)
	if err != nil {
		return err
	}

	db, migrator, err := database.ConnectAndMigrate(ctx, dbConfig, a.migrations)
	if err != nil {
		return fmt.Errorf("unable to connect to db: %w", err)
	}
	if version, dirty, err := migrator.Version(); err == nil {
		a.log.WithFields(logrus.Fields{
			"version": version, "dirty": dirty,
		}).Info("database migrated")
	}
	migrator.Close()
	a.db = db

	queries := repository.New(db)
	a.enableAccounts(queries, queries, cookies)
	return nil
}

func (a *App) Start(ctx context.Context) error {
	if err := a.connect(ctx); err != nil {
		return err
	}
	if a.db != nil {
		defer a.db.Close()
	}

	server := &http.Server{
		Addr:    a.cfg.Addr,
		Handler: a.Handler(),
		BaseContext: func(l net.Listener) context.Context {
			return ctx
		},
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.log.WithField("addr", a.cfg.Addr).Info("server listening")
		err := server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	})
	g.Go(func() error {
		<-gCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	g.Go(func() error {
		return a.store.RunSweeper(gCtx, a.game.SweepInterval, a.game.SessionTTL)
	})

	return g.Wait()
}
