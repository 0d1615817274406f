// Package worker executes queued add-sticker tasks.
package worker

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"

	"github.com/you/tg-stickers/internal/jobs"
	"github.com/you/tg-stickers/internal/logx"
	"github.com/you/tg-stickers/internal/media"
	"github.com/you/tg-stickers/internal/packs"
)

const textStickerAdded = "Sticker added! ✅\n"

type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

type Appender interface {
	AppendToPack(ctx context.Context, ownerID int64, src media.Source) (string, error)
}

type Handler struct {
	packs Appender
	send  Sender
	log   zerolog.Logger
}

func NewHandler(p Appender, send Sender, log zerolog.Logger) *Handler {
	return &Handler{packs: p, send: send, log: log.With().Str("component", "worker").Logger()}
}

func (h *Handler) Register(mux *asynq.ServeMux) {
	mux.HandleFunc(jobs.TaskAddSticker, h.ProcessAddSticker)
}

// ProcessAddSticker appends the payload media to the user's pack and edits
// the status message with the outcome. Pack failures are reported to the
// user, not returned, so the task is never retried.
func (h *Handler) ProcessAddSticker(ctx context.Context, t *asynq.Task) error {
	p, err := jobs.ParseAddSticker(t)
	if err != nil {
		return fmt.Errorf("decode %s payload: %v: %w", jobs.TaskAddSticker, err, asynq.SkipRetry)
	}
	log := logx.FromCtx(logx.WithUser(ctx, p.UserID, "add_sticker"), h.log)
	log.Info().Str("kind", string(p.Media.Kind)).Msg("add sticker started")

	name, err := h.packs.AppendToPack(ctx, p.UserID, p.Media)
	text := textStickerAdded + packs.Link(name)
	if err != nil {
		text = packs.UserMessage(err)
	}
	h.report(log, p, text)
	return nil
}

func (h *Handler) report(log zerolog.Logger, p jobs.AddStickerPayload, text string) {
	var c tgbotapi.Chattable = tgbotapi.NewEditMessageText(p.ChatID, p.StatusMessageID, text)
	if p.StatusMessageID == 0 {
		c = tgbotapi.NewMessage(p.ChatID, text)
	}
	if _, err := h.send.Send(c); err != nil {
		log.Warn().Err(err).Int64("chat_id", p.ChatID).Msg("report failed")
	}
}
