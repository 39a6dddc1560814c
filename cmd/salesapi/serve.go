package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	"github.com/tbourn/go-sales-api/internal/config"
	"github.com/tbourn/go-sales-api/internal/events"
	httpapi "github.com/tbourn/go-sales-api/internal/http"
	"github.com/tbourn/go-sales-api/internal/observability"
	"github.com/tbourn/go-sales-api/internal/services"
)

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "run the HTTP API until SIGINT/SIGTERM",
		Action: func(c *cli.Context) error {
			ctx, stop := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, configFrom(c))
		},
	}
}

// serve wires tracing, storage, messaging and the router, then blocks until
// ctx is cancelled and the server has drained.
func serve(ctx context.Context, cfg config.Config) error {
	shutdownOTel, err := observability.SetupOTel(ctx, cfg.OTEL, version)
	if err != nil {
		return fmt.Errorf("setup tracing: %w", err)
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := shutdownOTel(sctx); err != nil {
			log.Warn().Err(err).Msg("tracer shutdown")
		}
	}()

	db, closeDB, err := openDB(cfg.Database, cfg.OTEL.Enabled)
	if err != nil {
		return err
	}
	defer closeDB()

	pub, closePub, err := newPublisher(cfg.AMQP)
	if err != nil {
		return err
	}
	defer closePub()

	purger, err := startPurger(cfg.PurgeSchedule, &services.SaleService{DB: db})
	if err != nil {
		return err
	}
	defer purger.stop()

	gin.SetMode(cfg.GinMode)
	r := gin.New()
	httpapi.RegisterRoutes(r, db, pub, cfg)

	srv := &http.Server{
		Addr:              net.JoinHostPort("", cfg.Port),
		Handler:           r,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Str("version", version).Msg("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return <-errCh
}

// newPublisher returns the AMQP publisher when a broker URL is configured and
// a no-op publisher otherwise, along with its close function.
func newPublisher(cfg config.AMQPConfig) (events.Publisher, func(), error) {
	if cfg.URL == "" {
		return events.NopPublisher{}, func() {}, nil
	}
	p, err := events.NewAMQPPublisher(cfg.URL, cfg.Queue)
	if err != nil {
		return nil, nil, fmt.Errorf("connect amqp: %w", err)
	}
	log.Info().Str("queue", cfg.Queue).Msg("publishing sale events")
	return p, func() {
		if err := p.Close(); err != nil {
			log.Warn().Err(err).Msg("amqp close")
		}
	}, nil
}
