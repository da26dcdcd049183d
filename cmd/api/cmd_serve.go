package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"orchid-shop/internal/auth"
	"orchid-shop/internal/client"
	"orchid-shop/internal/lock"
	"orchid-shop/internal/metrics"
	"orchid-shop/internal/server"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const shutdownTimeout = 30 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Migrate, seed roles and start the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
		defer stop()

		a, err := boot()
		if err != nil {
			return err
		}
		defer a.close()

		if err := client.Migrate(a.db); err != nil {
			return err
		}
		if err := a.seed(ctx, false); err != nil {
			return fmt.Errorf("seed: %w", err)
		}

		rdb, err := client.InitRedisClient(ctx, a.cfg.Redis)
		if err != nil {
			return err
		}
		var locker lock.Locker
		if rdb != nil {
			defer rdb.Close()
			locker = lock.NewRedisLocker(rdb, lock.WithLogger(a.log.Named("lock")))
			a.log.Info("pending-order locks use redis", zap.String("addr", a.cfg.Redis.Addr))
		} else {
			locker = lock.NewMemoryLocker()
		}

		tokens := auth.NewTokenIssuer(a.cfg.JWT.Secret, a.cfg.JWT.Expiration)
		m := metrics.New()
		svc := server.NewServices(a.db, locker, client.NewMomoClient(a.cfg.Momo), tokens, m, a.log)

		srv := server.NewServer(a.cfg, a.log, tokens, m, svc)

		errCh := make(chan error, 1)
		go func() {
			if err := srv.Start(a.cfg.ListenAddr()); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
			close(errCh)
		}()

		select {
		case err := <-errCh:
			if err != nil {
				return fmt.Errorf("http server: %w", err)
			}
			return nil
		case <-ctx.Done():
		}

		a.log.Info("signal received, starting graceful shutdown")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http server shutdown: %w", err)
		}
		return nil
	},
}
