// Package packs creates sticker packs and appends stickers to the pack a
// user has bound.
package packs

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/you/tg-stickers/internal/logx"
	"github.com/you/tg-stickers/internal/media"
	"github.com/you/tg-stickers/internal/metrics"
	"github.com/you/tg-stickers/internal/registry"
)

// Sticker is one artifact ready for upload.
type Sticker struct {
	Path   string
	Format media.Format
	Emoji  string
}

// Fetcher downloads an attachment into dst.
type Fetcher interface {
	Fetch(ctx context.Context, fileID, dst string) error
}

type Transcoder interface {
	Transcode(ctx context.Context, src string, kind media.Kind) (*media.Artifact, error)
}

// Platform is the sticker-pack capability of the chat platform. Rejections
// are returned as *PlatformError.
type Platform interface {
	CreateStickerSet(ctx context.Context, ownerID int64, name, title string, st Sticker) error
	AddStickerToSet(ctx context.Context, ownerID int64, name string, st Sticker) error
}

type Options struct {
	BotName    string
	Emoji      string
	ScratchDir string
}

type Orchestrator struct {
	registry   registry.Store
	fetcher    Fetcher
	transcoder Transcoder
	platform   Platform
	metrics    *metrics.Metrics
	opts       Options
	log        zerolog.Logger

	// suffix is swapped in tests
	suffix func() string
}

func NewOrchestrator(
	reg registry.Store,
	fetcher Fetcher,
	transcoder Transcoder,
	platform Platform,
	m *metrics.Metrics,
	opts Options,
	log zerolog.Logger,
) *Orchestrator {
	if opts.Emoji == "" {
		opts.Emoji = "🙂"
	}
	return &Orchestrator{
		registry:   reg,
		fetcher:    fetcher,
		transcoder: transcoder,
		platform:   platform,
		metrics:    m,
		opts:       opts,
		log:        log.With().Str("component", "orchestrator").Logger(),
		suffix:     RandomSuffix,
	}
}

// CreatePack makes a new pack with src as its first sticker and binds it to
// the owner. The binding is written only after the platform accepted the pack.
func (o *Orchestrator) CreatePack(ctx context.Context, ownerID int64, title string, src media.Source) (name string, err error) {
	log := logx.FromCtx(logx.WithUser(ctx, ownerID, "create_pack"), o.log)
	defer func() { o.finish(log, "create", err) }()

	st, cleanup, err := o.prepare(ctx, src)
	defer cleanup()
	if err != nil {
		return "", err
	}

	name = PackName(ownerID, o.suffix(), o.opts.BotName)
	if err := o.platform.CreateStickerSet(ctx, ownerID, name, title, st); err != nil {
		return "", err
	}

	if err := o.registry.Set(ctx, registry.UserKey(ownerID), name); err != nil {
		log.Error().Err(err).Str("pack", name).Msg("pack created but binding failed")
		return name, fmt.Errorf("%w: %v", ErrBindingNotSaved, err)
	}
	return name, nil
}

// AppendToPack adds src to the owner's bound pack and returns its name.
func (o *Orchestrator) AppendToPack(ctx context.Context, ownerID int64, src media.Source) (name string, err error) {
	log := logx.FromCtx(logx.WithUser(ctx, ownerID, "append"), o.log)
	defer func() { o.finish(log, "append", err) }()

	name, ok := o.registry.Get(ctx, registry.UserKey(ownerID))
	if !ok {
		return "", ErrNoActivePack
	}

	st, cleanup, err := o.prepare(ctx, src)
	defer cleanup()
	if err != nil {
		return "", err
	}

	if err := o.platform.AddStickerToSet(ctx, ownerID, name, st); err != nil {
		return "", err
	}
	return name, nil
}

// BindPack makes the pack named in link the owner's active pack.
// Ownership is not verified here; the platform reports it on the next append.
func (o *Orchestrator) BindPack(ctx context.Context, ownerID int64, link string) (name string, err error) {
	log := logx.FromCtx(logx.WithUser(ctx, ownerID, "bind"), o.log)
	defer func() { o.finish(log, "bind", err) }()

	name, err = ParseBindLink(link)
	if err != nil {
		return "", err
	}
	if err := o.registry.Set(ctx, registry.UserKey(ownerID), name); err != nil {
		return "", err
	}
	return name, nil
}

// prepare fetches and transcodes src. cleanup is always non-nil and removes
// every scratch file created, whatever the outcome.
func (o *Orchestrator) prepare(ctx context.Context, src media.Source) (Sticker, func(), error) {
	var files []string
	cleanup := func() {
		for _, f := range files {
			if err := os.Remove(f); err != nil && !os.IsNotExist(err) {
				o.log.Warn().Err(err).Str("path", f).Msg("scratch cleanup failed")
			}
		}
	}

	if !src.Kind.Supported() {
		return Sticker{}, cleanup, fmt.Errorf("%w: %s", media.ErrUnsupportedKind, src.Kind)
	}

	srcPath := media.ScratchPath(o.opts.ScratchDir, "")
	files = append(files, srcPath)
	if err := o.fetcher.Fetch(ctx, src.FileID, srcPath); err != nil {
		return Sticker{}, cleanup, fmt.Errorf("fetch %s: %w", src.Kind, err)
	}

	start := time.Now()
	art, err := o.transcoder.Transcode(ctx, srcPath, src.Kind)
	if err != nil {
		o.metrics.ObserveTranscode(string(src.Kind), "", 0, err)
		return Sticker{}, cleanup, err
	}
	files = append(files, art.Path)
	o.metrics.ObserveTranscode(string(src.Kind), string(art.Format), time.Since(start), nil)

	return Sticker{Path: art.Path, Format: art.Format, Emoji: o.opts.Emoji}, cleanup, nil
}

func (o *Orchestrator) finish(log zerolog.Logger, op string, err error) {
	outcome := Outcome(err)
	o.metrics.ObservePackOp(op, outcome)
	if err != nil {
		log.Warn().Err(err).Str("outcome", outcome).Msg(op + " failed")
		return
	}
	log.Info().Msg(op + " done")
}
