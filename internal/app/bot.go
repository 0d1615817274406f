package app

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
	"go.uber.org/fx"

	"github.com/you/tg-stickers/internal/bot"
	"github.com/you/tg-stickers/internal/config"
	"github.com/you/tg-stickers/internal/flow"
	"github.com/you/tg-stickers/internal/metrics"
	"github.com/you/tg-stickers/internal/packs"
	"github.com/you/tg-stickers/internal/telegram"
)

const pollTimeout = 30

func provideAsynqClient(lc fx.Lifecycle, cfg *config.Config) *asynq.Client {
	c := asynq.NewClient(cfg.RedisOpt())
	lc.Append(fx.StopHook(c.Close))
	return c
}

func provideBotHandler(
	api *tgbotapi.BotAPI,
	orch *packs.Orchestrator,
	queue *asynq.Client,
	tg *telegram.Client,
	flows *flow.Flows,
	m *metrics.Metrics,
	cfg *config.Config,
	log zerolog.Logger,
) *bot.Handler {
	return bot.NewHandler(api, orch, queue, tg, flows, m, cfg.Worker.Queue, log)
}

func registerPolling(lc fx.Lifecycle, api *tgbotapi.BotAPI, h *bot.Handler, log zerolog.Logger) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			u := tgbotapi.NewUpdate(0)
			u.Timeout = pollTimeout
			updates := api.GetUpdatesChan(u)
			go func() {
				defer close(done)
				h.Run(ctx, updates)
			}()
			log.Info().Msg("polling for updates")
			return nil
		},
		OnStop: func(stopCtx context.Context) error {
			api.StopReceivingUpdates()
			cancel()
			select {
			case <-done:
				return nil
			case <-stopCtx.Done():
				return stopCtx.Err()
			}
		},
	})
}
