package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"google.golang.org/grpc"

	"hrms.org/internal/auth"
	"hrms.org/internal/config"
	"hrms.org/internal/httpapi"
	"hrms.org/internal/obs"
	"hrms.org/internal/records"
	"hrms.org/internal/store"
)

var (
	version = "0.1.0"
	commit  = "dev"
)

func main() {
	if err := run(); err != nil {
		obs.Logger().Fatal("hrms-api exited", "err", err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := obs.Configure(cfg.LogLevel, cfg.LogJSON); err != nil {
		return err
	}
	obs.Init()
	obs.InitBuildInfo(version, commit)
	log := obs.Logger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	openCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	backend, err := store.Open(openCtx, cfg)
	cancel()
	if err != nil {
		return err
	}
	defer func() {
		if err := backend.Close(context.Background()); err != nil {
			log.Warn("close store", "err", err)
		}
	}()

	hasher, err := auth.NewHasher(auth.WithScheme(auth.Scheme(cfg.PasswordScheme)), auth.WithBcryptCost(cfg.BcryptCost))
	if err != nil {
		return err
	}
	ttl, err := cfg.TokenTTLDuration()
	if err != nil {
		return err
	}
	tokens, err := auth.NewTokenService(cfg.AuthSecret, auth.WithTokenTTL(ttl))
	if err != nil {
		return err
	}
	authSvc, err := auth.NewService(backend, hasher, tokens)
	if err != nil {
		return err
	}

	api, err := httpapi.New(httpapi.Deps{
		Auth:          authSvc,
		Authenticator: auth.NewAuthenticator(tokens, backend, auth.WithRoleMatch(cfg.EnforceRoleMatch)),
		Records:       records.NewService(backend, backend),
		Ready:         backend,
	},
		httpapi.WithVersion(version),
		httpapi.WithCORSOrigins(cfg.AllowedOrigins()),
		httpapi.WithMaxBodyBytes(cfg.MaxBodyBytes),
		httpapi.WithMaxUploadBytes(cfg.MaxUploadBytes),
	)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           api.Handler(),
		ReadTimeout:       30 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	httpLis, grpcLis, err := listen(cfg.HTTPAddr, cfg.GRPCHealthAddr)
	if err != nil {
		return err
	}

	errCh := make(chan error, 2)
	go func() {
		log.Info("starting hrms-api", "version", version, "addr", srv.Addr, "store", cfg.StoreDriver)
		if err := srv.Serve(httpLis); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	var grpcSrv *grpc.Server
	if grpcLis != nil {
		grpcSrv = grpc.NewServer()
		health := httpapi.NewHealthService(backend)
		health.Register(grpcSrv)
		go health.Run(ctx, 10*time.Second)
		go func() {
			log.Info("starting grpc health", "addr", cfg.GRPCHealthAddr)
			if err := grpcSrv.Serve(grpcLis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
				errCh <- err
			}
		}()
	}

	var failed error
	select {
	case <-ctx.Done():
		log.Info("shutting down")
	case failed = <-errCh:
		log.Error("server failed", "err", failed)
		stop()
	}

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	if grpcSrv != nil {
		grpcSrv.GracefulStop()
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn("http shutdown", "err", err)
	}
	log.Info("stopped")
	return failed
}

// listen binds the HTTP listener and, when grpcAddr is set, the gRPC one.
// Nothing stays bound on error.
func listen(httpAddr, grpcAddr string) (httpLis, grpcLis net.Listener, err error) {
	httpLis, err = net.Listen("tcp", httpAddr)
	if err != nil {
		return nil, nil, fmt.Errorf("listen http %s: %w", httpAddr, err)
	}
	if grpcAddr == "" {
		return httpLis, nil, nil
	}
	grpcLis, err = net.Listen("tcp", grpcAddr)
	if err != nil {
		_ = httpLis.Close()
		return nil, nil, fmt.Errorf("listen grpc %s: %w", grpcAddr, err)
	}
	return httpLis, grpcLis, nil
}
