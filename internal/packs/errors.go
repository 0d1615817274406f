package packs

import (
	"errors"
	"fmt"
	"strings"

	"github.com/you/tg-stickers/internal/media"
)

var (
	// ErrNoActivePack means the user has no registry binding.
	ErrNoActivePack = errors.New("no active sticker pack")

	// ErrInvalidBindLink means the bind link has no usable pack name.
	ErrInvalidBindLink = errors.New("invalid sticker pack link")

	// ErrBindingNotSaved means the pack exists on the platform but the
	// registry write failed.
	ErrBindingNotSaved = errors.New("pack created but binding not saved")
)

// Reason sub-classifies a platform rejection.
type Reason string

const (
	ReasonPackNotFound Reason = "pack_not_found"
	ReasonPackFull     Reason = "pack_full"
	ReasonOwnership    Reason = "ownership"
	ReasonNameTaken    Reason = "name_taken"
	ReasonUnknown      Reason = "unknown"
)

// PlatformError is a structured failure from the sticker-pack API.
type PlatformError struct {
	Reason      Reason
	Description string
}

func (e *PlatformError) Error() string {
	return fmt.Sprintf("platform rejected (%s): %s", e.Reason, e.Description)
}

// ClassifyPlatformError maps an API error description to a Reason.
func ClassifyPlatformError(desc string) Reason {
	d := strings.ToUpper(desc)
	switch {
	case strings.Contains(d, "STICKERSET_INVALID"), strings.Contains(d, "STICKERSET_NOT_FOUND"):
		return ReasonPackNotFound
	case strings.Contains(d, "STICKERS_TOO_MUCH"), strings.Contains(d, "STICKERSET_FULL"):
		return ReasonPackFull
	case strings.Contains(d, "USER_IS_BOT"), strings.Contains(d, "PEER_ID_INVALID"),
		strings.Contains(d, "STICKERSET_OWNER"), strings.Contains(d, "NOT ENOUGH RIGHTS"):
		return ReasonOwnership
	case strings.Contains(d, "STICKERSET_NAME_OCCUPIED"), strings.Contains(d, "SHORTNAME_OCCUPY_FAILED"):
		return ReasonNameTaken
	default:
		return ReasonUnknown
	}
}

// Outcome is a short label for err, used for metrics and logs.
func Outcome(err error) string {
	var pe *PlatformError
	var te *media.TranscodeError
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, media.ErrUnsupportedKind):
		return "unsupported"
	case errors.Is(err, ErrNoActivePack):
		return "no_active_pack"
	case errors.Is(err, ErrInvalidBindLink):
		return "invalid_link"
	case errors.Is(err, ErrBindingNotSaved):
		return "binding_not_saved"
	case errors.As(err, &te):
		return "transcode_failed"
	case errors.As(err, &pe):
		return string(pe.Reason)
	default:
		return "error"
	}
}
