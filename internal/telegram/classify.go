package telegram

import (
	"path"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/you/tg-stickers/internal/media"
)

// Classify extracts the media attachment of m. Video stickers come back as
// KindStickerStatic until Resolve looks at the file.
func Classify(m *tgbotapi.Message) (media.Source, bool) {
	if m == nil {
		return media.Source{}, false
	}
	switch {
	case len(m.Photo) > 0:
		// last size is the largest
		return media.Source{Kind: media.KindPhoto, FileID: m.Photo[len(m.Photo)-1].FileID}, true
	case m.Animation != nil:
		return media.Source{Kind: media.KindAnimation, FileID: m.Animation.FileID}, true
	case m.Video != nil:
		return media.Source{Kind: media.KindVideo, FileID: m.Video.FileID}, true
	case m.Sticker != nil:
		kind := media.KindStickerStatic
		if m.Sticker.IsAnimated {
			kind = media.KindStickerAnimated
		}
		return media.Source{Kind: kind, FileID: m.Sticker.FileID}, true
	case m.Document != nil:
		mime := strings.ToLower(m.Document.MimeType)
		switch {
		case mime == "image/gif":
			return media.Source{Kind: media.KindAnimation, FileID: m.Document.FileID}, true
		case strings.HasPrefix(mime, "image/"):
			return media.Source{Kind: media.KindPhoto, FileID: m.Document.FileID}, true
		case strings.HasPrefix(mime, "video/"):
			return media.Source{Kind: media.KindVideo, FileID: m.Document.FileID}, true
		}
	}
	return media.Source{}, false
}

// StickerKindFromPath maps a sticker file path to its kind.
func StickerKindFromPath(p string) media.Kind {
	switch strings.ToLower(path.Ext(p)) {
	case ".webm":
		return media.KindStickerVideo
	case ".tgs":
		return media.KindStickerAnimated
	default:
		return media.KindStickerStatic
	}
}
