package app

import (
	"context"
	"errors"
	"net"
	"net/http"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.uber.org/fx"

	"github.com/you/tg-stickers/internal/config"
	"github.com/you/tg-stickers/internal/media"
	"github.com/you/tg-stickers/internal/metrics"
	"github.com/you/tg-stickers/internal/packs"
	"github.com/you/tg-stickers/internal/registry"
	"github.com/you/tg-stickers/internal/telegram"
)

func provideBotAPI(cfg *config.Config, log zerolog.Logger) (*tgbotapi.BotAPI, error) {
	api, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return nil, err
	}
	api.Debug = false
	log.Info().Str("username", api.Self.UserName).Msg("bot authorized")
	return api, nil
}

func provideTelegram(api *tgbotapi.BotAPI, cfg *config.Config, log zerolog.Logger) *telegram.Client {
	return telegram.NewClient(api, cfg.Media.DownloadTimeout, log)
}

func provideTranscoder(cfg *config.Config, log zerolog.Logger) (*media.Transcoder, error) {
	return media.NewTranscoder(cfg.Media.ScratchDir, cfg.Media.FFmpegBin, log)
}

func provideRegistry(lc fx.Lifecycle, cfg *config.Config, log zerolog.Logger) (registry.Store, error) {
	log = log.With().Str("registry", cfg.Registry.Backend).Logger()
	switch cfg.Registry.Backend {
	case config.BackendRedis:
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		lc.Append(fx.StopHook(rdb.Close))
		return registry.NewRedisStore(rdb, cfg.Registry.RedisKey, log), nil
	case config.BackendPostgres:
		db, err := registry.OpenPostgres(cfg.Registry.PostgresDSN)
		if err != nil {
			return nil, err
		}
		log.Info().Msg("database connected and migrations completed")
		lc.Append(fx.Hook{
			OnStop: func(context.Context) error {
				sqlDB, err := db.DB()
				if err != nil {
					return err
				}
				return sqlDB.Close()
			},
		})
		return registry.NewPostgresStore(db, log), nil
	default:
		return registry.NewFileStore(cfg.Registry.File, log), nil
	}
}

func providePrometheus() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

func provideMetrics(reg *prometheus.Registry) *metrics.Metrics {
	return metrics.New(reg)
}

func provideOrchestrator(
	store registry.Store,
	tg *telegram.Client,
	tc *media.Transcoder,
	m *metrics.Metrics,
	cfg *config.Config,
	log zerolog.Logger,
) *packs.Orchestrator {
	return packs.NewOrchestrator(store, tg, tc, tg, m, packs.Options{
		BotName:    tg.BotName(),
		Emoji:      cfg.Media.DefaultEmoji,
		ScratchDir: tc.ScratchDir(),
	}, log)
}

func registerHealthServer(lc fx.Lifecycle, reg *prometheus.Registry, cfg *config.Config, log zerolog.Logger) {
	srv := metrics.NewServer(cfg.HTTP.Addr, reg)
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			ln, err := net.Listen("tcp", srv.Addr)
			if err != nil {
				return err
			}
			go func() {
				if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Error().Err(err).Msg("health server stopped")
				}
			}()
			log.Info().Str("addr", srv.Addr).Msg("health and metrics listening")
			return nil
		},
		OnStop: srv.Shutdown,
	})
}
