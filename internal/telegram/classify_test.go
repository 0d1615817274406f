package telegram

import (
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"

	"github.com/you/tg-stickers/internal/media"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		msg  *tgbotapi.Message
		want media.Source
		ok   bool
	}{
		{
			name: "photo picks largest size",
			msg:  &tgbotapi.Message{Photo: []tgbotapi.PhotoSize{{FileID: "small"}, {FileID: "big"}}},
			want: media.Source{Kind: media.KindPhoto, FileID: "big"},
			ok:   true,
		},
		{
			name: "animation",
			msg:  &tgbotapi.Message{Animation: &tgbotapi.Animation{FileID: "a"}},
			want: media.Source{Kind: media.KindAnimation, FileID: "a"},
			ok:   true,
		},
		{
			name: "video",
			msg:  &tgbotapi.Message{Video: &tgbotapi.Video{FileID: "v"}},
			want: media.Source{Kind: media.KindVideo, FileID: "v"},
			ok:   true,
		},
		{
			name: "static sticker",
			msg:  &tgbotapi.Message{Sticker: &tgbotapi.Sticker{FileID: "s"}},
			want: media.Source{Kind: media.KindStickerStatic, FileID: "s"},
			ok:   true,
		},
		{
			name: "animated sticker",
			msg:  &tgbotapi.Message{Sticker: &tgbotapi.Sticker{FileID: "tgs", IsAnimated: true}},
			want: media.Source{Kind: media.KindStickerAnimated, FileID: "tgs"},
			ok:   true,
		},
		{
			name: "gif document",
			msg:  &tgbotapi.Message{Document: &tgbotapi.Document{FileID: "g", MimeType: "image/gif"}},
			want: media.Source{Kind: media.KindAnimation, FileID: "g"},
			ok:   true,
		},
		{
			name: "image document",
			msg:  &tgbotapi.Message{Document: &tgbotapi.Document{FileID: "i", MimeType: "image/webp"}},
			want: media.Source{Kind: media.KindPhoto, FileID: "i"},
			ok:   true,
		},
		{
			name: "video document",
			msg:  &tgbotapi.Message{Document: &tgbotapi.Document{FileID: "d", MimeType: "video/mp4"}},
			want: media.Source{Kind: media.KindVideo, FileID: "d"},
			ok:   true,
		},
		{
			name: "pdf",
			msg:  &tgbotapi.Message{Document: &tgbotapi.Document{FileID: "p", MimeType: "application/pdf"}},
		},
		{
			name: "text",
			msg:  &tgbotapi.Message{Text: "hello"},
		},
		{
			name: "nil",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Classify(tt.msg)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestStickerKindFromPath(t *testing.T) {
	assert.Equal(t, media.KindStickerVideo, StickerKindFromPath("stickers/file_1.webm"))
	assert.Equal(t, media.KindStickerAnimated, StickerKindFromPath("stickers/file_2.TGS"))
	assert.Equal(t, media.KindStickerStatic, StickerKindFromPath("stickers/file_3.webp"))
	assert.Equal(t, media.KindStickerStatic, StickerKindFromPath(""))
}
