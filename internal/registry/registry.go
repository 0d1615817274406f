// Package registry keeps the active sticker pack of every user.
package registry

import (
	"context"
	"strconv"
)

// Store maps a user to the pack they currently add stickers to.
//
// Get never fails the caller: an unreadable backend reads as "no binding",
// which the user can always fix by binding or creating a pack again.
type Store interface {
	Get(ctx context.Context, userID string) (packName string, ok bool)
	Set(ctx context.Context, userID, packName string) error
}

// UserKey stringifies a numeric platform id.
func UserKey(id int64) string {
	return strconv.FormatInt(id, 10)
}
