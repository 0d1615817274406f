package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/you/tg-stickers/internal/flow"
	"github.com/you/tg-stickers/internal/jobs"
	"github.com/you/tg-stickers/internal/media"
	"github.com/you/tg-stickers/internal/metrics"
	"github.com/you/tg-stickers/internal/packs"
)

const (
	userID = int64(42)
	chatID = int64(4200)
)

type sent struct {
	edit      bool
	messageID int
	text      string
}

type mockSender struct {
	mu     sync.Mutex
	out    []sent
	nextID int
}

func (s *mockSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch v := c.(type) {
	case tgbotapi.MessageConfig:
		s.nextID++
		s.out = append(s.out, sent{messageID: s.nextID, text: v.Text})
		return tgbotapi.Message{MessageID: s.nextID}, nil
	case tgbotapi.EditMessageTextConfig:
		s.out = append(s.out, sent{edit: true, messageID: v.MessageID, text: v.Text})
		return tgbotapi.Message{MessageID: v.MessageID}, nil
	}
	return tgbotapi.Message{}, fmt.Errorf("unexpected %T", c)
}

func (s *mockSender) last() sent {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.out) == 0 {
		return sent{}
	}
	return s.out[len(s.out)-1]
}

type mockPacks struct {
	CreateFn func(ctx context.Context, ownerID int64, title string, src media.Source) (string, error)
	BindFn   func(ctx context.Context, ownerID int64, link string) (string, error)
}

func (p *mockPacks) CreatePack(ctx context.Context, ownerID int64, title string, src media.Source) (string, error) {
	return p.CreateFn(ctx, ownerID, title, src)
}

func (p *mockPacks) BindPack(ctx context.Context, ownerID int64, link string) (string, error) {
	return p.BindFn(ctx, ownerID, link)
}

type mockQueue struct {
	tasks []*asynq.Task
	opts  [][]asynq.Option
	err   error
}

func (q *mockQueue) EnqueueContext(_ context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	if q.err != nil {
		return nil, q.err
	}
	q.tasks = append(q.tasks, task)
	q.opts = append(q.opts, opts)
	return &asynq.TaskInfo{ID: "t1", Queue: "stickers"}, nil
}

type resolverFunc func(ctx context.Context, src media.Source) (media.Source, error)

func (f resolverFunc) Resolve(ctx context.Context, src media.Source) (media.Source, error) {
	return f(ctx, src)
}

type fixture struct {
	h       *Handler
	send    *mockSender
	packs   *mockPacks
	queue   *mockQueue
	flows   *flow.Flows
	metrics *metrics.Metrics
}

func newFixture() *fixture {
	f := &fixture{
		send:    &mockSender{},
		packs:   &mockPacks{},
		queue:   &mockQueue{},
		flows:   flow.NewFlows(),
		metrics: metrics.New(prometheus.NewRegistry()),
	}
	identity := resolverFunc(func(_ context.Context, src media.Source) (media.Source, error) { return src, nil })
	f.h = NewHandler(f.send, f.packs, f.queue, identity, f.flows, f.metrics, "stickers", zerolog.Nop())
	return f
}

func message(text string) *tgbotapi.Message {
	m := &tgbotapi.Message{
		MessageID: 1,
		From:      &tgbotapi.User{ID: userID},
		Chat:      &tgbotapi.Chat{ID: chatID},
		Text:      text,
	}
	if strings.HasPrefix(text, "/") {
		cmd := strings.SplitN(text, " ", 2)[0]
		m.Entities = []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: len(cmd)}}
	}
	return m
}

func photoMessage() *tgbotapi.Message {
	m := message("")
	m.Photo = []tgbotapi.PhotoSize{{FileID: "small"}, {FileID: "large"}}
	return m
}

func (f *fixture) handle(m *tgbotapi.Message) {
	f.h.HandleUpdate(context.Background(), tgbotapi.Update{Message: m})
}

func TestHelp(t *testing.T) {
	f := newFixture()
	f.handle(message("/start"))
	assert.Equal(t, textHelp, f.send.last().text)
	f.handle(message("/help"))
	assert.Equal(t, textHelp, f.send.last().text)
}

func TestUnknownCommand(t *testing.T) {
	f := newFixture()
	f.handle(message("/foo"))
	assert.Equal(t, textUnknownCommand, f.send.last().text)
}

func TestCreationFlowHappyPath(t *testing.T) {
	f := newFixture()
	var gotTitle string
	var gotSrc media.Source
	f.packs.CreateFn = func(_ context.Context, owner int64, title string, src media.Source) (string, error) {
		assert.Equal(t, userID, owner)
		gotTitle, gotSrc = title, src
		return "u42_a1b2_by_MyStickerBot", nil
	}

	f.handle(message("/newstickerpack"))
	assert.Equal(t, textAskTitle, f.send.last().text)

	f.handle(message("Kucing Lucu"))
	assert.Equal(t, textAskMedia, f.send.last().text)
	assert.Equal(t, flow.AwaitingMedia, f.flows.Active(userID))

	f.handle(photoMessage())
	assert.Equal(t, "Kucing Lucu", gotTitle)
	assert.Equal(t, media.Source{Kind: media.KindPhoto, FileID: "large"}, gotSrc)

	last := f.send.last()
	assert.True(t, last.edit, "status message is edited")
	assert.Equal(t, textPackCreated+"https://t.me/addstickers/u42_a1b2_by_MyStickerBot", last.text)
	assert.Equal(t, flow.Idle, f.flows.Active(userID))
}

func TestCreationFlowTitleTooLong(t *testing.T) {
	f := newFixture()
	f.handle(message("/newstickerpack"))
	f.handle(message(strings.Repeat("a", 65)))
	assert.Equal(t, textTitleTooLong, f.send.last().text)
	assert.Equal(t, flow.AwaitingTitle, f.flows.Active(userID))
}

func TestCreationFlowRejectsNonMedia(t *testing.T) {
	f := newFixture()
	f.handle(message("/newstickerpack"))
	f.handle(message("Cats"))

	f.handle(message("not a photo"))
	assert.Equal(t, textMediaExpected, f.send.last().text)

	sticker := message("")
	sticker.Sticker = &tgbotapi.Sticker{FileID: "s"}
	f.handle(sticker)
	assert.Equal(t, textMediaExpected, f.send.last().text)
	assert.Equal(t, flow.AwaitingMedia, f.flows.Active(userID))
}

func TestCreationFlowFailureKeepsTitle(t *testing.T) {
	f := newFixture()
	calls := 0
	f.packs.CreateFn = func(_ context.Context, _ int64, title string, _ media.Source) (string, error) {
		calls++
		assert.Equal(t, "Cats", title)
		if calls == 1 {
			return "", &media.TranscodeError{Kind: media.KindPhoto, Msg: "decode"}
		}
		return "cats_by_bot", nil
	}

	f.handle(message("/newstickerpack"))
	f.handle(message("Cats"))
	f.handle(photoMessage())
	assert.Equal(t, packs.MsgTranscode, f.send.last().text)
	assert.Equal(t, flow.AwaitingMedia, f.flows.Active(userID))

	f.handle(photoMessage())
	assert.Equal(t, 2, calls)
	assert.Equal(t, flow.Idle, f.flows.Active(userID))
}

func TestCreationFlowBindingNotSaved(t *testing.T) {
	f := newFixture()
	f.packs.CreateFn = func(context.Context, int64, string, media.Source) (string, error) {
		return "cats_by_bot", fmt.Errorf("%w: disk full", packs.ErrBindingNotSaved)
	}

	f.handle(message("/newstickerpack"))
	f.handle(message("Cats"))
	f.handle(photoMessage())
	assert.Equal(t, packs.MsgBindNotSaved+"https://t.me/addstickers/cats_by_bot", f.send.last().text)
	assert.Equal(t, flow.Idle, f.flows.Active(userID))
}

func TestCancel(t *testing.T) {
	f := newFixture()
	f.handle(message("/cancel"))
	assert.Equal(t, textNothingToCancel, f.send.last().text)

	f.handle(message("/newstickerpack"))
	f.handle(message("/cancel"))
	assert.Equal(t, textCancelled, f.send.last().text)
	assert.Equal(t, flow.Idle, f.flows.Active(userID))

	// text after cancel is not taken as a title
	n := len(f.send.out)
	f.handle(message("Cats"))
	assert.Len(t, f.send.out, n)
}

func TestSetStickerPack(t *testing.T) {
	f := newFixture()
	f.packs.BindFn = func(_ context.Context, _ int64, link string) (string, error) {
		if link == "https://t.me/addstickers/" {
			return "", packs.ErrInvalidBindLink
		}
		return "foo_bar", nil
	}

	f.handle(message("/setstickerpack"))
	assert.Equal(t, textSetUsage, f.send.last().text)

	f.handle(message("/setstickerpack https://t.me/addstickers/foo_bar"))
	assert.Equal(t, textPackBound+"https://t.me/addstickers/foo_bar", f.send.last().text)

	f.handle(message("/setstickerpack https://t.me/addstickers/"))
	assert.Equal(t, packs.MsgInvalidLink, f.send.last().text)
}

func TestAddStickerEnqueues(t *testing.T) {
	f := newFixture()
	m := message("/addsticker")
	m.ReplyToMessage = &tgbotapi.Message{Video: &tgbotapi.Video{FileID: "vid"}}

	f.handle(m)

	require.Len(t, f.queue.tasks, 1)
	task := f.queue.tasks[0]
	assert.Equal(t, jobs.TaskAddSticker, task.Type())
	p, err := jobs.ParseAddSticker(task)
	require.NoError(t, err)
	assert.Equal(t, userID, p.UserID)
	assert.Equal(t, chatID, p.ChatID)
	assert.Equal(t, media.Source{Kind: media.KindVideo, FileID: "vid"}, p.Media)
	assert.Equal(t, f.send.last().messageID, p.StatusMessageID)
	assert.Equal(t, textProcessing, f.send.last().text)

	opts := map[asynq.OptionType]any{}
	for _, o := range f.queue.opts[0] {
		opts[o.Type()] = o.Value()
	}
	assert.Equal(t, 0, opts[asynq.MaxRetryOpt])
	assert.Equal(t, "stickers", opts[asynq.QueueOpt])
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.QueueEnqueued.WithLabelValues(jobs.TaskAddSticker, "ok")))
}

func TestAddStickerResolvesVideoSticker(t *testing.T) {
	f := newFixture()
	f.h.resolver = resolverFunc(func(_ context.Context, src media.Source) (media.Source, error) {
		src.Kind = media.KindStickerVideo
		return src, nil
	})
	m := message("/addsticker")
	m.ReplyToMessage = &tgbotapi.Message{Sticker: &tgbotapi.Sticker{FileID: "webm"}}

	f.handle(m)

	require.Len(t, f.queue.tasks, 1)
	p, err := jobs.ParseAddSticker(f.queue.tasks[0])
	require.NoError(t, err)
	assert.Equal(t, media.KindStickerVideo, p.Media.Kind)
}

func TestAddStickerRejections(t *testing.T) {
	f := newFixture()

	f.handle(message("/addsticker"))
	assert.Equal(t, textReplyToMedia, f.send.last().text)

	m := message("/addsticker")
	m.ReplyToMessage = &tgbotapi.Message{Sticker: &tgbotapi.Sticker{FileID: "tgs", IsAnimated: true}}
	f.handle(m)
	assert.Equal(t, packs.MsgUnsupported, f.send.last().text)

	assert.Empty(t, f.queue.tasks)
}

func TestAddStickerQueueDown(t *testing.T) {
	f := newFixture()
	f.queue.err = errors.New("redis: connection refused")
	m := message("/addsticker")
	m.ReplyToMessage = photoMessage()

	f.handle(m)

	last := f.send.last()
	assert.True(t, last.edit)
	assert.Equal(t, textQueueDown, last.text)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.QueueEnqueued.WithLabelValues(jobs.TaskAddSticker, "error")))
}

func TestRunHandlesUpdatesConcurrently(t *testing.T) {
	f := newFixture()
	updates := make(chan tgbotapi.Update, 3)
	for i := 0; i < 3; i++ {
		updates <- tgbotapi.Update{UpdateID: i, Message: message("/help")}
	}
	close(updates)

	f.h.Run(context.Background(), updates)
	assert.Len(t, f.send.out, 3)
}

func TestIgnoresMessagesWithoutSender(t *testing.T) {
	f := newFixture()
	f.handle(&tgbotapi.Message{Text: "/help"})
	f.h.HandleUpdate(context.Background(), tgbotapi.Update{})
	assert.Empty(t, f.send.out)
}
