// Package app wires the bot and worker processes with fx.
package app

import (
	"github.com/rs/zerolog"
	"go.uber.org/fx"

	"github.com/you/tg-stickers/internal/config"
	"github.com/you/tg-stickers/internal/flow"
	"github.com/you/tg-stickers/internal/logx"
)

// Bot polls Telegram, runs creation flows and enqueues add-sticker tasks.
func Bot() fx.Option {
	return fx.Options(
		core("bot"),
		fx.Provide(
			flow.NewFlows,
			provideAsynqClient,
			provideBotHandler,
		),
		fx.Invoke(registerPolling),
	)
}

// Worker executes add-sticker tasks from the queue.
func Worker() fx.Option {
	return fx.Options(
		core("worker"),
		fx.Provide(
			provideAsynqServer,
			provideWorkerHandler,
		),
		fx.Invoke(registerWorker),
	)
}

// core is shared by both processes.
func core(service string) fx.Option {
	return fx.Options(
		fx.Provide(
			config.Load,
			func(cfg *config.Config) zerolog.Logger { return logx.Setup(cfg.Log, service) },
			provideBotAPI,
			provideTelegram,
			provideTranscoder,
			provideRegistry,
			providePrometheus,
			provideMetrics,
			provideOrchestrator,
		),
		fx.Invoke(registerHealthServer),
	)
}
