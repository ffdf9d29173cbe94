package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lovaraju987/seven-nights-stay-sub000/internal/app"
	"github.com/lovaraju987/seven-nights-stay-sub000/internal/auth"
	"github.com/lovaraju987/seven-nights-stay-sub000/internal/cache"
	"github.com/lovaraju987/seven-nights-stay-sub000/internal/clock"
	"github.com/lovaraju987/seven-nights-stay-sub000/internal/config"
	"github.com/lovaraju987/seven-nights-stay-sub000/internal/events"
	"github.com/lovaraju987/seven-nights-stay-sub000/internal/objectstore"
	"github.com/lovaraju987/seven-nights-stay-sub000/internal/scheduler"
	"github.com/lovaraju987/seven-nights-stay-sub000/internal/storage/postgres"
	transporthttp "github.com/lovaraju987/seven-nights-stay-sub000/internal/transport/http"
	"github.com/lovaraju987/seven-nights-stay-sub000/migrations"
	"github.com/spf13/pflag"
)

func main() {
	configPath := pflag.StringP("config", "c", "", "path to a YAML config file (default $SNS_CONFIG)")
	addr := pflag.String("addr", "", "listen address, overrides config and PORT")
	logLevel := pflag.String("log-level", "", "log level: debug, info, warn, error")
	pflag.Parse()

	bootLogger := slog.New(slog.NewJSONHandler(os.Stderr, nil))
	config.LoadDotEnv(bootLogger)

	cfg, err := config.Load(*configPath, os.LookupEnv, bootLogger)
	if err != nil {
		bootLogger.Error("load config", "error", err)
		os.Exit(1)
	}
	if *addr != "" {
		cfg.HTTP.Addr = *addr
	}
	if *logLevel != "" {
		cfg.Log.Level = *logLevel
	}
	level, err := cfg.LogLevel()
	if err != nil {
		bootLogger.Error("invalid log level", "error", err)
		os.Exit(1)
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, logger *slog.Logger) error {
	startupCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	poolCfg, err := pgxpool.ParseConfig(cfg.Database.URL)
	if err != nil {
		return fmt.Errorf("parse database url: %w", err)
	}
	if cfg.Database.MaxConns > 0 {
		poolCfg.MaxConns = cfg.Database.MaxConns
	}
	pool, err := pgxpool.NewWithConfig(startupCtx, poolCfg)
	if err != nil {
		return fmt.Errorf("connect to db: %w", err)
	}
	defer pool.Close()

	if err := pool.Ping(startupCtx); err != nil {
		return fmt.Errorf("db ping: %w", err)
	}
	applied, err := migrations.Apply(startupCtx, pool)
	if err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	if len(applied) > 0 {
		logger.Info("applied migrations", "names", applied)
	}

	verifier, err := auth.NewVerifier(cfg.Auth.JWTSecret, auth.WithIssuer(cfg.Auth.Issuer))
	if err != nil {
		return err
	}

	rootCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	hub := events.NewHub(logger)
	hubDone := make(chan struct{})
	go func() {
		hub.Run(rootCtx)
		close(hubDone)
	}()

	clk := clock.NewSystem()
	publisher := events.NewBroadcaster(hub, clk.Now, logger)

	listingRepo := postgres.NewListingRepository(pool)
	listingOpts := []app.ListingServiceOption{
		app.WithListingEvents(publisher),
		app.WithListingLogger(logger),
	}
	searchOpts := []app.SearchServiceOption{app.WithSearchLogger(logger)}
	bookingOpts := []app.ReservationServiceOption{
		app.WithBookingEvents(publisher),
		app.WithBookingLogger(logger),
	}

	if searchCache := connectSearchCache(startupCtx, cfg, logger); searchCache != nil {
		listingOpts = append(listingOpts, app.WithSearchInvalidator(searchCache))
		searchOpts = append(searchOpts, app.WithSearchCache(searchCache))
		bookingOpts = append(bookingOpts, app.WithBookingSearchInvalidator(searchCache))
	}
	if cfg.ObjectStore.Endpoint != "" {
		store, err := objectstore.New(cfg.ObjectStore.Endpoint, cfg.ObjectStore.Bucket, cfg.ObjectStore.Secret)
		if err != nil {
			return fmt.Errorf("object store: %w", err)
		}
		listingOpts = append(listingOpts, app.WithObjectStore(store))
	}

	listingSvc := app.NewListingService(listingRepo, clk, listingOpts...)
	inventorySvc := app.NewInventoryService(postgres.NewInventoryRepository(pool))
	reservationSvc := app.NewReservationService(postgres.NewBookingRepository(pool), listingRepo, inventorySvc, clk, bookingOpts...)
	subscriptionSvc := app.NewSubscriptionService(postgres.NewSubscriptionRepository(pool), app.PlanCatalog(cfg.Subscriptions.Plans), clk,
		app.WithGracePeriod(cfg.Subscriptions.GracePeriod),
		app.WithListingSuspender(listingSvc),
		app.WithSubscriptionEvents(publisher),
		app.WithSubscriptionLogger(logger),
	)

	services := transporthttp.Services{
		Listings:      listingSvc,
		Inventory:     inventorySvc,
		Reservations:  reservationSvc,
		Search:        app.NewSearchService(postgres.NewSearchRepository(pool), searchOpts...),
		Wishlist:      app.NewWishlistService(postgres.NewWishlistRepository(pool), listingRepo, clk),
		Subscriptions: subscriptionSvc,
		Complaints:    app.NewComplaintService(postgres.NewComplaintRepository(pool), listingRepo, clk, app.WithComplaintEvents(publisher)),
		Profiles:      app.NewProfileService(postgres.NewProfileRepository(pool), clk),
	}

	sweep, err := scheduler.NewSubscriptionSweep(subscriptionSvc, cfg.Subscriptions.SweepSchedule, logger)
	if err != nil {
		return fmt.Errorf("subscription sweep: %w", err)
	}
	sweep.Start()

	server := &http.Server{
		Addr: cfg.HTTP.Addr,
		Handler: transporthttp.NewRouter(services, transporthttp.RouterConfig{
			Verifier:    verifier,
			CORSOrigins: cfg.HTTP.CORSOrigins,
			Hub:         hub,
			Logger:      logger,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("api listening", "addr", cfg.HTTP.Addr)

	srvErr := make(chan error, 1)
	go func() {
		srvErr <- server.ListenAndServe()
	}()

	var serveErr error
	select {
	case err := <-srvErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr = fmt.Errorf("server error: %w", err)
		}
	case <-rootCtx.Done():
		logger.Info("shutdown signal received, stopping server")
	}
	stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server shutdown error", "error", err)
	}
	sweep.Stop(shutdownCtx)
	<-hubDone
	logger.Info("server stopped")
	return serveErr
}

// connectSearchCache returns nil when Redis is not configured or not
// reachable; search then reads through to Postgres.
func connectSearchCache(ctx context.Context, cfg config.Config, logger *slog.Logger) *cache.SearchCache {
	if cfg.Redis.URL == "" {
		logger.Info("search cache disabled")
		return nil
	}
	client, err := cache.NewClient(cfg.Redis.URL)
	if err != nil {
		logger.Warn("search cache disabled", "error", err)
		return nil
	}
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("search cache disabled, redis unreachable", "error", err)
		_ = client.Close()
		return nil
	}
	return cache.NewSearchCache(client, cache.WithTTL(cfg.Redis.CacheTTL))
}
