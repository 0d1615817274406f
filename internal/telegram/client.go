// Package telegram adapts the Bot API client to the sticker-pack operations
// the rest of the bot needs.
package telegram

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"github.com/you/tg-stickers/internal/media"
	"github.com/you/tg-stickers/internal/packs"
)

// attach:// reference of the uploaded sticker file
const stickerField = "sticker"

type inputSticker struct {
	Sticker   string   `json:"sticker"`
	Format    string   `json:"format"`
	EmojiList []string `json:"emoji_list"`
}

// Client implements packs.Platform and packs.Fetcher on top of tgbotapi.
type Client struct {
	api  *tgbotapi.BotAPI
	http *http.Client
	log  zerolog.Logger
}

func NewClient(api *tgbotapi.BotAPI, downloadTimeout time.Duration, log zerolog.Logger) *Client {
	return &Client{
		api:  api,
		http: &http.Client{Timeout: downloadTimeout},
		log:  log.With().Str("component", "telegram").Logger(),
	}
}

// BotName is the bot's username, used in pack names.
func (c *Client) BotName() string { return c.api.Self.UserName }

// Fetch downloads the attachment with fileID into dst.
func (c *Client) Fetch(ctx context.Context, fileID, dst string) error {
	url, err := c.api.GetFileDirectURL(fileID)
	if err != nil {
		return fmt.Errorf("get file url: %w", err)
	}
	return c.download(ctx, url, dst)
}

func (c *Client) download(ctx context.Context, url, dst string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("download: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download: unexpected status %s", resp.Status)
	}

	f, err := os.Create(dst)
	if err != nil {
		return err
	}
	n, err := io.Copy(f, resp.Body)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("download: %w", err)
	}
	c.log.Debug().Int64("bytes", n).Str("path", dst).Msg("downloaded")
	return nil
}

// Resolve refines a sticker source. Messages only say whether a sticker is
// vector-animated, so video stickers are told apart by their file extension.
func (c *Client) Resolve(ctx context.Context, src media.Source) (media.Source, error) {
	if src.Kind != media.KindStickerStatic {
		return src, nil
	}
	if err := ctx.Err(); err != nil {
		return src, err
	}
	f, err := c.api.GetFile(tgbotapi.FileConfig{FileID: src.FileID})
	if err != nil {
		return src, fmt.Errorf("get file: %w", err)
	}
	src.Kind = StickerKindFromPath(f.FilePath)
	return src, nil
}

func (c *Client) CreateStickerSet(ctx context.Context, ownerID int64, name, title string, st packs.Sticker) error {
	params := tgbotapi.Params{}
	params.AddNonZero64("user_id", ownerID)
	params["name"] = name
	params["title"] = title
	if err := params.AddInterface("stickers", []inputSticker{newInputSticker(st)}); err != nil {
		return err
	}
	return c.upload(ctx, "createNewStickerSet", params, st.Path)
}

func (c *Client) AddStickerToSet(ctx context.Context, ownerID int64, name string, st packs.Sticker) error {
	params := tgbotapi.Params{}
	params.AddNonZero64("user_id", ownerID)
	params["name"] = name
	if err := params.AddInterface("sticker", newInputSticker(st)); err != nil {
		return err
	}
	return c.upload(ctx, "addStickerToSet", params, st.Path)
}

func (c *Client) upload(ctx context.Context, endpoint string, params tgbotapi.Params, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	files := []tgbotapi.RequestFile{{Name: stickerField, Data: tgbotapi.FilePath(path)}}
	if _, err := c.api.UploadFiles(endpoint, params, files); err != nil {
		return platformError(err)
	}
	return nil
}

func newInputSticker(st packs.Sticker) inputSticker {
	return inputSticker{
		Sticker:   "attach://" + stickerField,
		Format:    string(st.Format),
		EmojiList: []string{st.Emoji},
	}
}

// platformError turns an API rejection into *packs.PlatformError. Transport
// errors are returned unchanged.
func platformError(err error) error {
	var apiErr *tgbotapi.Error
	if errors.As(err, &apiErr) {
		return &packs.PlatformError{
			Reason:      packs.ClassifyPlatformError(apiErr.Message),
			Description: apiErr.Message,
		}
	}
	return err
}
