package media

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/rs/zerolog"
	_ "golang.org/x/image/webp"

	"github.com/you/tg-stickers/internal/logx"
)

// VideoFilter scales into 512x512, normalizes to 30 fps and pads with fully
// transparent borders. Output compatibility depends on it; do not edit.
const VideoFilter = "scale='min(512,iw)':'min(512,ih)':force_original_aspect_ratio=decrease,fps=30,pad=512:512:-1:-1:color=black@0.0"

// MaxVideoSeconds is the duration limit for video stickers.
const MaxVideoSeconds = 3

const stderrTail = 400

// VideoArgs is the ffmpeg argument template for video stickers.
func VideoArgs(src, out string) []string {
	return []string{
		"-i", src,
		"-t", fmt.Sprint(MaxVideoSeconds),
		"-vf", VideoFilter,
		"-c:v", "libvpx-vp9",
		"-pix_fmt", "yuva420p",
		"-an",
		"-y", out,
	}
}

// FitLongEdge scales (w, h) so the longer edge becomes Size while keeping the
// aspect ratio. The shorter edge is truncated and never drops below 1.
func FitLongEdge(w, h int) (int, int) {
	if w > h {
		return Size, max(1, Size*h/w)
	}
	return max(1, Size*w/h), Size
}

type Transcoder struct {
	scratchDir string
	ffmpeg     string
	log        zerolog.Logger
}

// NewTranscoder creates the scratch directory if needed.
func NewTranscoder(scratchDir, ffmpegBin string, log zerolog.Logger) (*Transcoder, error) {
	if err := os.MkdirAll(scratchDir, 0o755); err != nil {
		return nil, fmt.Errorf("create scratch dir: %w", err)
	}
	if ffmpegBin == "" {
		ffmpegBin = "ffmpeg"
	}
	return &Transcoder{
		scratchDir: scratchDir,
		ffmpeg:     ffmpegBin,
		log:        log.With().Str("component", "transcoder").Logger(),
	}, nil
}

func (t *Transcoder) ScratchDir() string { return t.scratchDir }

// Transcode converts the file at src according to kind. On success the
// returned artifact lives in the scratch directory.
func (t *Transcoder) Transcode(ctx context.Context, src string, kind Kind) (*Artifact, error) {
	switch kind {
	case KindPhoto, KindStickerStatic:
		return t.raster(src, kind)
	case KindAnimation, KindVideo, KindStickerVideo:
		return t.video(ctx, src, kind)
	case KindStickerAnimated:
		return nil, ErrUnsupportedKind
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedKind, kind)
	}
}

func (t *Transcoder) raster(src string, kind Kind) (*Artifact, error) {
	img, err := imaging.Open(src)
	if err != nil {
		return nil, &TranscodeError{Kind: kind, Msg: "decode image", Err: err}
	}

	b := img.Bounds()
	w, h := FitLongEdge(b.Dx(), b.Dy())
	resized := imaging.Resize(img, w, h, imaging.Lanczos)

	out := ScratchPath(t.scratchDir, ".png")
	if err := imaging.Save(resized, out); err != nil {
		removeQuiet(out)
		return nil, &TranscodeError{Kind: kind, Msg: "encode png", Err: err}
	}

	t.log.Debug().
		Int("src_w", b.Dx()).Int("src_h", b.Dy()).
		Int("w", w).Int("h", h).
		Str("out", out).
		Msg("raster sticker ready")

	return &Artifact{Path: out, Format: FormatStatic}, nil
}

func (t *Transcoder) video(ctx context.Context, src string, kind Kind) (*Artifact, error) {
	out := ScratchPath(t.scratchDir, ".webm")

	var tail bytes.Buffer
	pr, pw := io.Pipe()
	lw := logx.NewLineWriter(t.log, map[string]string{"proc": "ffmpeg"}, zerolog.DebugLevel)
	done := make(chan struct{})
	go func() {
		lw.Pipe(pr)
		_, _ = io.Copy(io.Discard, pr)
		close(done)
	}()

	cmd := exec.CommandContext(ctx, t.ffmpeg, VideoArgs(src, out)...)
	cmd.Stderr = io.MultiWriter(pw, &tail)
	err := cmd.Run()
	_ = pw.Close()
	<-done

	if err != nil {
		removeQuiet(out)
		t.log.Error().Err(err).Str("stderr", lastBytes(tail.String(), stderrTail)).Msg("ffmpeg failed")
		return nil, &TranscodeError{Kind: kind, Msg: "ffmpeg: " + lastBytes(tail.String(), stderrTail), Err: err}
	}

	t.log.Debug().Str("out", out).Msg("video sticker ready")
	return &Artifact{Path: out, Format: FormatVideo}, nil
}

func lastBytes(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) > n {
		s = s[len(s)-n:]
	}
	return s
}

// removeQuiet discards a partial output; a missing file is fine.
func removeQuiet(path string) { _ = os.Remove(path) }
