// Package flow tracks the per-user conversation that creates a new sticker
// pack: ask for a title, then for the first media item.
package flow

import (
	"context"
	"errors"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/you/tg-stickers/internal/media"
)

// MaxTitleLen is the longest accepted pack title, in characters.
const MaxTitleLen = 64

type State int

const (
	Idle State = iota
	AwaitingTitle
	AwaitingMedia
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case AwaitingTitle:
		return "awaiting_title"
	case AwaitingMedia:
		return "awaiting_media"
	default:
		return "unknown"
	}
}

var (
	ErrTitleTooLong     = errors.New("title longer than 64 characters")
	ErrTitleEmpty       = errors.New("title is empty")
	ErrNotAwaitingTitle = errors.New("not waiting for a title")
	ErrNotAwaitingMedia = errors.New("not waiting for media")
	// ErrBusy means a pack creation for this user is still running.
	ErrBusy = errors.New("pack creation already in progress")
)

// Pending is the in-progress creation attempt.
type Pending struct {
	Title string
}

// CreateFunc creates the pack. It runs without the flow lock held.
type CreateFunc func(ctx context.Context, title string, src media.Source) error

// Flow is the creation state of one user. Safe for concurrent use.
type Flow struct {
	mu      sync.Mutex
	state   State
	pending *Pending
	busy    bool
	// gen changes on every Start and Cancel so a create call that returns
	// after either of them leaves the new state alone.
	gen uint64
}

// Start begins a new attempt, discarding any previous one.
func (f *Flow) Start() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gen++
	f.state = AwaitingTitle
	f.pending = &Pending{}
	f.busy = false
}

// SubmitTitle stores the title and moves on to AwaitingMedia. Rejected titles
// leave the state unchanged.
func (f *Flow) SubmitTitle(text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state != AwaitingTitle {
		return ErrNotAwaitingTitle
	}
	title := strings.TrimSpace(text)
	if title == "" {
		return ErrTitleEmpty
	}
	if utf8.RuneCountInString(title) > MaxTitleLen {
		return ErrTitleTooLong
	}
	f.pending.Title = title
	f.state = AwaitingMedia
	return nil
}

// SubmitMedia runs create with the stored title. On success the flow returns
// to Idle; on failure it stays in AwaitingMedia with the title kept so the
// user can send another file.
func (f *Flow) SubmitMedia(ctx context.Context, src media.Source, create CreateFunc) error {
	f.mu.Lock()
	if f.state != AwaitingMedia {
		f.mu.Unlock()
		return ErrNotAwaitingMedia
	}
	if f.busy {
		f.mu.Unlock()
		return ErrBusy
	}
	f.busy = true
	gen := f.gen
	title := f.pending.Title
	f.mu.Unlock()

	err := create(ctx, title, src)

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.gen != gen {
		return err
	}
	f.busy = false
	if err == nil {
		f.state = Idle
		f.pending = nil
	}
	return err
}

// Cancel drops any attempt and reports whether one was active.
func (f *Flow) Cancel() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	active := f.state != Idle
	f.gen++
	f.state = Idle
	f.pending = nil
	f.busy = false
	return active
}

func (f *Flow) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Pending returns a copy of the current attempt, nil when Idle.
func (f *Flow) Pending() *Pending {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.pending == nil {
		return nil
	}
	p := *f.pending
	return &p
}

// Flows holds one Flow per user id.
type Flows struct {
	mu    sync.Mutex
	users map[int64]*Flow
}

func NewFlows() *Flows {
	return &Flows{users: make(map[int64]*Flow)}
}

// For returns the user's flow, creating an idle one on first use.
func (fs *Flows) For(userID int64) *Flow {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	f, ok := fs.users[userID]
	if !ok {
		f = &Flow{}
		fs.users[userID] = f
	}
	return f
}

// Active reports the user's state without allocating a flow.
func (fs *Flows) Active(userID int64) State {
	fs.mu.Lock()
	f, ok := fs.users[userID]
	fs.mu.Unlock()
	if !ok {
		return Idle
	}
	return f.State()
}
