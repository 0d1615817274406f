// Package media converts user media into sticker-compliant artifacts.
package media

import (
	"path/filepath"

	"github.com/oklog/ulid/v2"
)

// Size is the sticker edge length in pixels.
const Size = 512

// Kind classifies an incoming attachment.
type Kind string

const (
	KindPhoto           Kind = "photo"
	KindAnimation       Kind = "animation" // GIF-like
	KindVideo           Kind = "video"
	KindStickerStatic   Kind = "sticker_static"
	KindStickerVideo    Kind = "sticker_video"
	KindStickerAnimated Kind = "sticker_animated" // vector (.tgs), never transcoded
)

// Format is the sticker format tag expected by the platform.
type Format string

const (
	FormatStatic Format = "static"
	FormatVideo  Format = "video"
)

// Source is an attachment reference plus its classification.
type Source struct {
	Kind   Kind   `json:"kind"`
	FileID string `json:"file_id"`
}

// Artifact is a transcoded sticker on scratch storage. The caller owns Path
// and must remove it.
type Artifact struct {
	Path   string
	Format Format
}

// Supported reports whether the transcoder accepts k.
func (k Kind) Supported() bool {
	_, ok := k.format()
	return ok
}

func (k Kind) format() (Format, bool) {
	switch k {
	case KindPhoto, KindStickerStatic:
		return FormatStatic, true
	case KindAnimation, KindVideo, KindStickerVideo:
		return FormatVideo, true
	case KindStickerAnimated:
		return "", false
	default:
		return "", false
	}
}

// ScratchPath returns a collision-free file path inside dir.
func ScratchPath(dir, ext string) string {
	return filepath.Join(dir, ulid.Make().String()+ext)
}
