package packs

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// LinkPrefix is the public address of a sticker pack.
const LinkPrefix = "https://t.me/addstickers/"

var packNameRe = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]{0,63}$`)

// PackName derives a new pack identifier from the owner, a random suffix and
// the bot username. The platform requires names to end in "_by_<bot>".
func PackName(ownerID int64, suffix, botName string) string {
	return fmt.Sprintf("u%d_%s_by_%s", ownerID, suffix, botName)
}

// RandomSuffix returns 4 random hex characters. Collisions are not checked;
// a taken name surfaces as ReasonNameTaken.
func RandomSuffix() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:4]
}

// Link returns the public address of the pack.
func Link(name string) string {
	return LinkPrefix + name
}

// ParseBindLink extracts the pack name from a t.me/addstickers link. A bare
// pack name is accepted as well.
func ParseBindLink(link string) (string, error) {
	link = strings.TrimSpace(link)
	if link == "" {
		return "", ErrInvalidBindLink
	}
	u, err := url.Parse(link)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidBindLink, err)
	}

	segs := strings.Split(u.Path, "/")
	name := strings.TrimSpace(segs[len(segs)-1])
	if name == "" || !packNameRe.MatchString(name) {
		return "", ErrInvalidBindLink
	}
	return name, nil
}
