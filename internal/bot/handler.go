// Package bot routes incoming Telegram updates to the creation flow, the
// pack orchestrator and the add-sticker queue.
package bot

import (
	"context"
	"errors"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"

	"github.com/you/tg-stickers/internal/flow"
	"github.com/you/tg-stickers/internal/jobs"
	"github.com/you/tg-stickers/internal/logx"
	"github.com/you/tg-stickers/internal/media"
	"github.com/you/tg-stickers/internal/metrics"
	"github.com/you/tg-stickers/internal/packs"
	"github.com/you/tg-stickers/internal/telegram"
)

type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Packs is the part of the orchestrator the bot calls directly.
type Packs interface {
	CreatePack(ctx context.Context, ownerID int64, title string, src media.Source) (string, error)
	BindPack(ctx context.Context, ownerID int64, link string) (string, error)
}

type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// Resolver refines sticker kinds before they are queued.
type Resolver interface {
	Resolve(ctx context.Context, src media.Source) (media.Source, error)
}

type Handler struct {
	send     Sender
	packs    Packs
	queue    Enqueuer
	resolver Resolver
	flows    *flow.Flows
	metrics  *metrics.Metrics
	// asynq queue for add-sticker tasks
	queueName string
	log       zerolog.Logger
}

func NewHandler(
	send Sender,
	p Packs,
	queue Enqueuer,
	resolver Resolver,
	flows *flow.Flows,
	m *metrics.Metrics,
	queueName string,
	log zerolog.Logger,
) *Handler {
	return &Handler{
		send:      send,
		packs:     p,
		queue:     queue,
		resolver:  resolver,
		flows:     flows,
		metrics:   m,
		queueName: queueName,
		log:       log.With().Str("component", "bot").Logger(),
	}
}

func (h *Handler) HandleUpdate(ctx context.Context, upd tgbotapi.Update) {
	m := upd.Message
	if m == nil || m.From == nil || m.Chat == nil {
		return
	}
	ctx = logx.WithUser(ctx, m.From.ID, "message")
	log := logx.FromCtx(ctx, h.log)
	log.Info().Int64("chat_id", m.Chat.ID).Str("command", m.Command()).Msg("message received")

	if m.IsCommand() {
		h.onCommand(ctx, m)
		return
	}

	switch h.flows.Active(m.From.ID) {
	case flow.AwaitingTitle:
		h.onTitle(m)
	case flow.AwaitingMedia:
		h.onFlowMedia(ctx, m)
	case flow.Idle:
		// plain messages outside a flow are ignored
	}
}

func (h *Handler) onCommand(ctx context.Context, m *tgbotapi.Message) {
	uid, chatID := m.From.ID, m.Chat.ID
	switch m.Command() {
	case "start", "help":
		h.reply(chatID, textHelp)
	case "newstickerpack":
		h.flows.For(uid).Start()
		h.reply(chatID, textAskTitle)
	case "cancel":
		if h.flows.For(uid).Cancel() {
			h.reply(chatID, textCancelled)
			return
		}
		h.reply(chatID, textNothingToCancel)
	case "setstickerpack":
		link := strings.TrimSpace(m.CommandArguments())
		if link == "" {
			h.reply(chatID, textSetUsage)
			return
		}
		name, err := h.packs.BindPack(ctx, uid, link)
		if err != nil {
			h.reply(chatID, packs.UserMessage(err))
			return
		}
		h.reply(chatID, textPackBound+packs.Link(name))
	case "addsticker":
		h.onAddSticker(ctx, m)
	default:
		h.reply(chatID, textUnknownCommand)
	}
}

func (h *Handler) onTitle(m *tgbotapi.Message) {
	err := h.flows.For(m.From.ID).SubmitTitle(m.Text)
	switch {
	case err == nil:
		h.reply(m.Chat.ID, textAskMedia)
	case errors.Is(err, flow.ErrTitleTooLong):
		h.reply(m.Chat.ID, textTitleTooLong)
	case errors.Is(err, flow.ErrTitleEmpty):
		h.reply(m.Chat.ID, textTitleEmpty)
	default:
		// flow was cancelled or restarted meanwhile
		h.log.Debug().Err(err).Int64("uid", m.From.ID).Msg("title dropped")
	}
}

func (h *Handler) onFlowMedia(ctx context.Context, m *tgbotapi.Message) {
	uid, chatID := m.From.ID, m.Chat.ID
	src, ok := telegram.Classify(m)
	if !ok || !flowKind(src.Kind) {
		h.reply(chatID, textMediaExpected)
		return
	}

	statusID := h.reply(chatID, textProcessing)
	var result string
	err := h.flows.For(uid).SubmitMedia(ctx, src, func(ctx context.Context, title string, src media.Source) error {
		name, err := h.packs.CreatePack(ctx, uid, title, src)
		switch {
		case err == nil:
			result = textPackCreated + packs.Link(name)
		case errors.Is(err, packs.ErrBindingNotSaved):
			// the pack exists; the user only has to bind it
			result = packs.MsgBindNotSaved + packs.Link(name)
			return nil
		}
		return err
	})
	switch {
	case errors.Is(err, flow.ErrBusy):
		result = textBusy
	case errors.Is(err, flow.ErrNotAwaitingMedia):
		result = textCancelled
	case err != nil:
		result = packs.UserMessage(err)
	}
	h.edit(chatID, statusID, result)
}

// flowKind reports whether k may start a new pack.
func flowKind(k media.Kind) bool {
	switch k {
	case media.KindPhoto, media.KindAnimation, media.KindVideo:
		return true
	default:
		return false
	}
}

func (h *Handler) onAddSticker(ctx context.Context, m *tgbotapi.Message) {
	uid, chatID := m.From.ID, m.Chat.ID
	src, ok := telegram.Classify(m.ReplyToMessage)
	if !ok {
		h.reply(chatID, textReplyToMedia)
		return
	}
	if src.Kind == media.KindStickerAnimated {
		h.reply(chatID, packs.MsgUnsupported)
		return
	}
	src, err := h.resolver.Resolve(ctx, src)
	if err != nil {
		h.log.Warn().Err(err).Int64("uid", uid).Msg("resolve sticker failed")
		h.reply(chatID, packs.MsgGeneric)
		return
	}
	if !src.Kind.Supported() {
		h.reply(chatID, packs.MsgUnsupported)
		return
	}

	statusID := h.reply(chatID, textProcessing)
	task, err := jobs.NewAddStickerTask(jobs.AddStickerPayload{
		ChatID:          chatID,
		UserID:          uid,
		StatusMessageID: statusID,
		Media:           src,
	})
	if err == nil {
		_, err = h.queue.EnqueueContext(ctx, task, asynq.MaxRetry(0), asynq.Queue(h.queueName))
	}
	h.metrics.ObserveEnqueue(jobs.TaskAddSticker, err)
	if err != nil {
		h.log.Error().Err(err).Int64("uid", uid).Msg("asynq enqueue sticker:add failed")
		h.edit(chatID, statusID, textQueueDown)
		return
	}
	h.log.Info().Int64("uid", uid).Str("kind", string(src.Kind)).Msg("add sticker queued")
}

// reply sends text and returns the new message id, 0 if sending failed.
func (h *Handler) reply(chatID int64, text string) int {
	sent, err := h.send.Send(tgbotapi.NewMessage(chatID, text))
	if err != nil {
		h.log.Warn().Err(err).Int64("chat_id", chatID).Msg("send failed")
		return 0
	}
	return sent.MessageID
}

// edit replaces the status message, or sends a new one when there is none.
func (h *Handler) edit(chatID int64, messageID int, text string) {
	if messageID == 0 {
		h.reply(chatID, text)
		return
	}
	if _, err := h.send.Send(tgbotapi.NewEditMessageText(chatID, messageID, text)); err != nil {
		h.log.Warn().Err(err).Int64("chat_id", chatID).Msg("edit failed")
	}
}
