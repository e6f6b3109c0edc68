// cmd/server/main.go
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jason-s-yu/pinaki/internal/auth"
	"github.com/jason-s-yu/pinaki/internal/bot"
	"github.com/jason-s-yu/pinaki/internal/cache"
	"github.com/jason-s-yu/pinaki/internal/config"
	"github.com/jason-s-yu/pinaki/internal/game"
	"github.com/jason-s-yu/pinaki/internal/handlers"
	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"
)

func main() {
	cfg := config.Load()

	logger := logrus.New()
	logger.SetLevel(cfg.LogLevel)
	if cfg.Production() {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
	// the engine logs through the standard logger
	logrus.SetLevel(cfg.LogLevel)
	logrus.SetFormatter(logger.Formatter)

	if cfg.TicketKeyFiles() {
		if err := auth.InitFromPath(cfg.TicketPrivateKey, cfg.TicketPublicKey, cfg.TicketTTL); err != nil {
			logger.Fatalf("failed to load seat ticket keys: %v", err)
		}
		logger.Infof("Seat tickets signed with key from %s", cfg.TicketPrivateKey)
	} else {
		if cfg.TicketPrivateKey != "" || cfg.TicketPublicKey != "" {
			logger.Warn("TICKET_PRIVATE_KEY and TICKET_PUBLIC_KEY must both be set; generating an ephemeral key")
		}
		if err := auth.Init(cfg.TicketTTL); err != nil {
			logger.Fatalf("failed to initialize seat tickets: %v", err)
		}
	}

	if _, err := bot.New(cfg.BotStrategy, 0); err != nil {
		logger.Fatalf("invalid BOT_STRATEGY: %v", err)
	}
	store := game.NewRoomStore()
	store.Defaults = cfg.Rules
	store.NewStrategy = func() game.Strategy {
		s, _ := bot.New(cfg.BotStrategy, time.Now().UnixNano())
		return s
	}

	var pub cache.Publisher = cache.NopPublisher{}
	if cfg.RedisAddr != "" {
		rp, err := cache.ConnectRedis(cfg.RedisAddr, cfg.RedisDB)
		if err != nil {
			logger.Fatalf("%v", err)
		}
		logger.Infof("Publishing room events to Redis at %s", cfg.RedisAddr)
		pub = rp
	}

	rs := handlers.NewRoomServer(store, logger, pub)
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: handlers.NewRouter(rs, cfg.AllowedOrigins),
	}

	go func() {
		logger.Infof("Running on %s (%s)", srv.Addr, cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("server exited: %v", err)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Warnf("shutdown: %v", err)
	}
	if err := rs.Close(); err != nil {
		logger.Warnf("closing publisher: %v", err)
	}
	logger.Info("Server stopped.")
}
