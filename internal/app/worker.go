package app

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
	"go.uber.org/fx"

	"github.com/you/tg-stickers/internal/config"
	"github.com/you/tg-stickers/internal/packs"
	"github.com/you/tg-stickers/internal/worker"
)

func provideAsynqServer(cfg *config.Config, log zerolog.Logger) *asynq.Server {
	return asynq.NewServer(cfg.RedisOpt(), asynq.Config{
		Concurrency: cfg.Worker.Concurrency,
		Queues:      map[string]int{cfg.Worker.Queue: 1},
		Logger:      asynqLogger{log.With().Str("component", "asynq").Logger()},
	})
}

func provideWorkerHandler(orch *packs.Orchestrator, api *tgbotapi.BotAPI, log zerolog.Logger) *worker.Handler {
	return worker.NewHandler(orch, api, log)
}

func registerWorker(lc fx.Lifecycle, srv *asynq.Server, h *worker.Handler, cfg *config.Config, log zerolog.Logger) {
	mux := asynq.NewServeMux()
	h.Register(mux)

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			if err := srv.Start(mux); err != nil {
				return err
			}
			log.Info().Int("concurrency", cfg.Worker.Concurrency).Str("queue", cfg.Worker.Queue).Msg("worker started")
			return nil
		},
		OnStop: func(context.Context) error {
			srv.Shutdown()
			return nil
		},
	})
}

// asynqLogger routes asynq's own logging into zerolog.
type asynqLogger struct {
	log zerolog.Logger
}

func (l asynqLogger) Debug(args ...interface{}) { l.log.Debug().Msg(fmt.Sprint(args...)) }
func (l asynqLogger) Info(args ...interface{})  { l.log.Info().Msg(fmt.Sprint(args...)) }
func (l asynqLogger) Warn(args ...interface{})  { l.log.Warn().Msg(fmt.Sprint(args...)) }
func (l asynqLogger) Error(args ...interface{}) { l.log.Error().Msg(fmt.Sprint(args...)) }
func (l asynqLogger) Fatal(args ...interface{}) { l.log.Fatal().Msg(fmt.Sprint(args...)) }
