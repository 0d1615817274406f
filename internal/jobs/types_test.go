package jobs

import (
	"testing"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/you/tg-stickers/internal/media"
)

func TestAddStickerTask(t *testing.T) {
	p := AddStickerPayload{
		ChatID:          10,
		UserID:          20,
		StatusMessageID: 30,
		Media:           media.Source{Kind: media.KindStickerVideo, FileID: "f"},
	}
	task, err := NewAddStickerTask(p)
	require.NoError(t, err)
	assert.Equal(t, TaskAddSticker, task.Type())
	assert.JSONEq(t,
		`{"chat_id":10,"user_id":20,"status_message_id":30,"media":{"kind":"sticker_video","file_id":"f"}}`,
		string(task.Payload()))

	got, err := ParseAddSticker(task)
	require.NoError(t, err)
	assert.Equal(t, p, got)
}

func TestParseAddStickerBadPayload(t *testing.T) {
	_, err := ParseAddSticker(asynq.NewTask(TaskAddSticker, []byte("{")))
	require.Error(t, err)
}
