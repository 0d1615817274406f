package bot

import (
	"context"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Run handles every update in its own goroutine until updates is closed or
// ctx is done, then waits for in-flight handlers.
func (h *Handler) Run(ctx context.Context, updates <-chan tgbotapi.Update) {
	var wg sync.WaitGroup
	defer wg.Wait()
	for {
		select {
		case <-ctx.Done():
			return
		case upd, ok := <-updates:
			if !ok {
				return
			}
			wg.Add(1)
			go func() {
				defer wg.Done()
				defer func() {
					if r := recover(); r != nil {
						h.log.Error().Interface("panic", r).Int("update_id", upd.UpdateID).Msg("handler panic")
					}
				}()
				h.HandleUpdate(ctx, upd)
			}()
		}
	}
}
