package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/efreitasn/stockbroker/internal/broker"
	"github.com/efreitasn/stockbroker/internal/config"
	"github.com/efreitasn/stockbroker/internal/domain"
	"github.com/efreitasn/stockbroker/internal/engine"
	"github.com/efreitasn/stockbroker/internal/fanout"
	"github.com/efreitasn/stockbroker/internal/feed"
	"github.com/efreitasn/stockbroker/internal/handler"
	"github.com/efreitasn/stockbroker/internal/logger"
	"github.com/efreitasn/stockbroker/internal/store"
	"github.com/efreitasn/stockbroker/internal/transport"
)

func main() {
	configPath := flag.String("config", "", "Path to config.yaml")
	healthcheck := flag.Bool("healthcheck", false, "Run health check against running server")
	flag.Parse()

	// Handle -healthcheck flag: HTTP GET to the configured addr, exit 0/1.
	if *healthcheck {
		cfg, err := config.Load(*configPath)
		if err != nil {
			os.Exit(1)
		}
		resp, err := http.Get(fmt.Sprintf("http://localhost%s/healthz", cfg.HTTP.Addr))
		if err != nil || resp.StatusCode != http.StatusOK {
			os.Exit(1)
		}
		os.Exit(0)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Shared state: account & inventory store plus the tick history.
	st := store.NewStore()
	for _, s := range cfg.Stocks {
		price, err := domain.ParseAmount(s.Price)
		if err != nil {
			log.Error("invalid catalog entry", zap.String("symbol", s.Symbol), zap.Error(err))
			os.Exit(1)
		}
		st.AddStock(s.Symbol, s.Total, price)
	}
	history := store.NewHistoryStore(cfg.Feed.HistoryDepth)

	// Messaging substrate and fan-out, one topic per listed symbol.
	hub := transport.NewHub(cfg.Broker.QueueBuffer)
	fo := fanout.New(hub, st.Symbols(), log)
	eng := engine.New(st, fo, log)

	brk, err := broker.New(hub, st, fo, eng, cfg.Broker.RegistrationQueue, log)
	if err != nil {
		log.Error("failed to create broker", zap.Error(err))
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	brk.Start(ctx)

	// The price feed runs once through its source, independently of
	// client request handling. A missing file just means static prices.
	if cfg.Feed.File != "" {
		pf := feed.New(st, history, fo, cfg.Feed.Interval, log)
		go func() {
			if err := pf.RunFile(ctx, cfg.Feed.File); err != nil && err != context.Canceled {
				log.Warn("price feed stopped", zap.Error(err))
			}
		}()
	}

	router := handler.NewRouter(eng, history, log)
	srv := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      router,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	go func() {
		log.Info("http server starting", zap.String("addr", cfg.HTTP.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("http server error", zap.Error(err))
			os.Exit(1)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	log.Info("shutdown signal received", zap.String("signal", sig.String()))

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("http server shutdown error", zap.Error(err))
	}

	cancel()
	brk.Stop()
	hub.Close()
	log.Info("broker process stopped")
}
