package main

import (
	"context"
	"fmt"
	"os"

	"github.com/you/tg-stickers/internal/logx"
	"github.com/you/tg-stickers/internal/media"
)

func main() {
	if len(os.Args) < 3 {
		fmt.Println("Usage: go run ./cmd/localtest <input> <photo|animation|video|sticker_static|sticker_video>")
		return
	}
	in := os.Args[1]
	kind := media.Kind(os.Args[2])

	log := logx.Setup(logx.Config{Level: "debug", Format: "console"}, "localtest")
	tc, err := media.NewTranscoder("./out", "ffmpeg", log)
	if err != nil {
		log.Fatal().Err(err).Msg("transcoder")
	}

	art, err := tc.Transcode(context.Background(), in, kind)
	if err != nil {
		log.Error().Err(err).Msg("transcode failed")
		os.Exit(1)
	}
	fmt.Println("Generated:", art.Path, "("+string(art.Format)+")")
}
