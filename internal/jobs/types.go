package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"

	"github.com/you/tg-stickers/internal/media"
)

const (
	TaskAddSticker = "sticker:add"
)

type AddStickerPayload struct {
	ChatID          int64        `json:"chat_id"`
	UserID          int64        `json:"user_id"`
	StatusMessageID int          `json:"status_message_id"` // "Processing…" message edited with the result
	Media           media.Source `json:"media"`
}

func NewAddStickerTask(p AddStickerPayload) (*asynq.Task, error) {
	b, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskAddSticker, b), nil
}

func ParseAddSticker(t *asynq.Task) (AddStickerPayload, error) {
	var p AddStickerPayload
	err := json.Unmarshal(t.Payload(), &p)
	return p, err
}
