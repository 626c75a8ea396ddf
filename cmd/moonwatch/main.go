package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"moonwatch/internal/application/port"
	"moonwatch/internal/application/usecase/alert"
	"moonwatch/internal/infrastructure/config"
	"moonwatch/internal/infrastructure/exchange"
	"moonwatch/internal/infrastructure/logger"
	"moonwatch/internal/infrastructure/notify"
	"moonwatch/internal/infrastructure/storage/sqlite"
	"moonwatch/internal/interfaces/httpapi"
)

func main() {
	_ = godotenv.Load()
	logger.Setup("info")

	configPath := flag.String("config", "configs/config.toml", "path to config.toml")
	flag.Parse()

	cfg := loadConfig(*configPath)
	logger.Setup(cfg.App.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	registry := alert.NewRegistry()

	var repo port.Repository = alert.NewNoopRepo()
	if cfg.Storage.Enabled {
		r, err := sqlite.New(cfg.Storage.Path)
		if err != nil {
			log.Fatal().Err(err).Str("path", cfg.Storage.Path).Msg("open trigger journal failed")
		}
		repo = r
	}
	defer repo.Close()

	notifier := buildNotifier(ctx, cfg)

	var feeds []port.PriceFeed
	for _, name := range cfg.EnabledExchanges() {
		factory, ok := exchange.Get(name)
		if !ok {
			log.Warn().Str("exchange", name).Msg("no adapter registered, skipping")
			continue
		}
		ex := cfg.Exchanges[name]
		adapter := factory(exchange.Endpoints{WsURL: ex.WsURL, APIURL: ex.APIURL})
		feeds = append(feeds, exchange.NewConnector(adapter))
	}
	if len(feeds) == 0 {
		log.Fatal().Msg("no exchange feeds enabled")
	}

	svc := alert.NewService(alert.ServiceDeps{
		Feeds:    feeds,
		Registry: registry,
		Notifier: notifier,
		Repo:     repo,
		Title:    cfg.Notify.Title,
	})

	api := httpapi.New(cfg.App.HTTPAddr, registry)
	go func() {
		log.Info().Str("addr", cfg.App.HTTPAddr).Msg("registration api listening")
		if err := api.Start(); err != nil {
			log.Error().Err(err).Msg("http server exited")
		}
	}()

	log.Info().Int("feeds", len(feeds)).Msg("moonwatch started")

	if err := svc.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Error().Err(err).Msg("alert service exited")
	}

	shCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = api.Shutdown(shCtx)
	log.Info().Msg("shutdown complete")
}

func loadConfig(path string) *config.Config {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		log.Warn().Str("config", path).Msg("config file not found, using defaults")
		return config.Default()
	}
	cfg, err := config.Load(path)
	if err != nil {
		log.Fatal().Err(err).Str("config", path).Msg("load config failed")
	}
	return cfg
}

func buildNotifier(ctx context.Context, cfg *config.Config) port.Notifier {
	if cfg.Notify.CredentialsFile == "" {
		log.Warn().Msg("notify.credentials_file not set, push delivery disabled")
		return notify.NewLog()
	}
	n, err := notify.NewFCM(ctx, cfg.Notify.CredentialsFile, cfg.Notify.ProjectID)
	if err != nil {
		log.Fatal().Err(err).Msg("init fcm notifier failed")
	}
	return n
}
