package packs

import (
	"errors"

	"github.com/you/tg-stickers/internal/media"
)

// User-facing texts.
const (
	MsgGeneric      = "Oops, something went wrong. Make sure you are the owner of this pack."
	MsgUnsupported  = "Sorry, animated (.TGS) stickers can't be re-added by the bot."
	MsgTranscode    = "Failed to process the media. Try another file."
	MsgNoActivePack = "You have no active sticker pack yet. Create one with /newstickerpack or bind an existing one with /setstickerpack."
	MsgInvalidLink  = "That link doesn't look valid.\nExample: /setstickerpack https://t.me/addstickers/your_pack_name"
	MsgPackNotFound = "Sticker pack not found. Set it again with /setstickerpack."
	MsgPackFull     = "The sticker pack is full (120 static or 50 video stickers)."
	MsgOwnership    = "The platform refused the change (internal error or you are not the owner of this pack)."
	MsgNameTaken    = "That pack name is already taken. Please send the media again."
	MsgBindNotSaved = "The pack was created but could not be set as active. Bind it with /setstickerpack "
)

// UserMessage converts any orchestrator error to the text shown to the user.
func UserMessage(err error) string {
	var pe *PlatformError
	var te *media.TranscodeError
	switch {
	case errors.Is(err, media.ErrUnsupportedKind):
		return MsgUnsupported
	case errors.Is(err, ErrNoActivePack):
		return MsgNoActivePack
	case errors.Is(err, ErrInvalidBindLink):
		return MsgInvalidLink
	case errors.As(err, &te):
		return MsgTranscode
	case errors.As(err, &pe):
		switch pe.Reason {
		case ReasonPackNotFound:
			return MsgPackNotFound
		case ReasonPackFull:
			return MsgPackFull
		case ReasonOwnership:
			return MsgOwnership
		case ReasonNameTaken:
			return MsgNameTaken
		}
		return MsgGeneric
	default:
		return MsgGeneric
	}
}
