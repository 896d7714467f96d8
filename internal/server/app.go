// Package server assembles the storeauth server: it opens the credential
// database, builds the crypto primitives and the AuthService, and runs the
// gRPC endpoint until a shutdown signal arrives.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dmitrijs2005/storeauth/internal/cryptox"
	"github.com/dmitrijs2005/storeauth/internal/logging"
	"github.com/dmitrijs2005/storeauth/internal/server/auth"
	"github.com/dmitrijs2005/storeauth/internal/server/config"
	"github.com/dmitrijs2005/storeauth/internal/server/credentials"
	"github.com/dmitrijs2005/storeauth/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/storeauth/internal/server/services"
	_ "github.com/jackc/pgx/v5/stdlib"

	gs "github.com/dmitrijs2005/storeauth/internal/server/grpc"
)

const dbPingTimeout = 5 * time.Second

type App struct {
	config      *config.Config
	logger      logging.Logger
	db          *sql.DB
	authService *services.AuthService
}

func NewApp(c *config.Config) (*App, error) {
	logger := logging.NewJSONLogger(os.Stdout, c.LogLevel)
	warnDefaultSecrets(logger, c)

	db, err := openDB(c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	svc, err := newAuthService(c, credentials.NewSQLStore(db, repomanager.NewPostgresRepositoryManager()), logger)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	return &App{config: c, logger: logger, db: db, authService: svc}, nil
}

func warnDefaultSecrets(logger logging.Logger, c *config.Config) {
	for _, name := range c.DefaultSecrets() {
		logger.Warn(context.Background(), "development default in use, override before production", "setting", name)
	}
}

func openDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), dbPingTimeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db ping error: %w", err)
	}
	return db, nil
}

func newAuthService(c *config.Config, store credentials.Store, logger logging.Logger) (*services.AuthService, error) {
	hasher, err := cryptox.NewHasher(c.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hasher init error: %w", err)
	}
	cipher, err := cryptox.NewSecretCipher(c.EncryptionKey)
	if err != nil {
		return nil, fmt.Errorf("cipher init error: %w", err)
	}
	fp, err := cryptox.NewFingerprinter([]byte(c.SecretKey))
	if err != nil {
		return nil, fmt.Errorf("fingerprinter init error: %w", err)
	}
	signer, err := auth.NewSigner([]byte(c.SecretKey), nil)
	if err != nil {
		return nil, fmt.Errorf("signer init error: %w", err)
	}

	return services.NewAuthService(services.Deps{
		Store:         store,
		Hasher:        hasher,
		Cipher:        cipher,
		Fingerprinter: fp,
		Signer:        signer,
		Lockout: services.LockoutPolicy{
			MaxFailedAttempts: c.MaxFailedAttempts,
			LockoutDuration:   c.LockoutDuration,
		},
		Lifetimes: services.TokenLifetimes{
			Access:  c.AccessTokenValidityDuration,
			Refresh: c.RefreshTokenValidityDuration,
			Pending: c.PendingTokenValidityDuration,
		},
		MfaIssuer: c.MfaIssuer,
		Logger:    logger,
	}), nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := gs.NewGRPCServer(app.config.EndpointAddrGRPC, app.logger, app.authService, app.config.Throttle)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// Run serves until ctx is cancelled or a termination signal arrives.
func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startGRPCServer(ctx, cancelFunc)
	}()

	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "db close error", "error", err.Error())
	}
	app.logger.Info(ctx, "Stopped")
}
