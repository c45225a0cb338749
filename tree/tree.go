// Package tree keeps the per-channel and per-folder unread counters the
// presentation layer displays. The counters are a derived cache: every
// mutation has an incremental update here, and Rebuild reconstructs the whole
// thing from the store when in doubt.
package tree

import (
	"sync"

	"readnext/db"

	"github.com/samber/lo"
)

type Tree struct {
	mu sync.RWMutex

	// channel title -> unread count
	channels map[string]int64
	// channel title -> folder title ("" for unfiled channels)
	membership map[string]string
	// folder title -> unread count
	folders map[string]int64
}

func New() *Tree {
	return &Tree{
		channels:   make(map[string]int64),
		membership: make(map[string]string),
		folders:    make(map[string]int64),
	}
}

// Rebuild replaces the cached counters with the store's current state.
func (t *Tree) Rebuild(store *db.Store) error {
	channels, err := store.Channels()
	if err != nil {
		return err
	}
	folders, err := store.Folders()
	if err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	t.channels = make(map[string]int64, len(channels))
	t.membership = make(map[string]string, len(channels))
	t.folders = make(map[string]int64, len(folders))

	for _, folder := range folders {
		t.folders[folder.Title] = 0
	}
	for _, channel := range channels {
		t.channels[channel.Title] = channel.Unread
		t.membership[channel.Title] = channel.FolderTitle
		if channel.FolderTitle != "" {
			t.folders[channel.FolderTitle] += channel.Unread
		}
	}

	return nil
}

// OnIngest bumps a channel counter (and its folder) by the number of newly
// inserted items.
func (t *Tree) OnIngest(channel string, inserted int) {
	if inserted <= 0 {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	t.channels[channel] += int64(inserted)
	if folder := t.membership[channel]; folder != "" {
		t.folders[folder] += int64(inserted)
	}
}

// OnRead decrements a channel counter by one, never below zero.
func (t *Tree) OnRead(channel string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.channels[channel] > 0 {
		t.channels[channel]--
		if folder := t.membership[channel]; folder != "" && t.folders[folder] > 0 {
			t.folders[folder]--
		}
	}
}

// OnMarkAllRead zeroes every counter.
func (t *Tree) OnMarkAllRead() {
	t.mu.Lock()
	defer t.mu.Unlock()

	for channel := range t.channels {
		t.channels[channel] = 0
	}
	for folder := range t.folders {
		t.folders[folder] = 0
	}
}

// OnMove transfers a channel's unread count from its old folder to the new
// one.
func (t *Tree) OnMove(channel, folder string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	count := t.channels[channel]
	if old := t.membership[channel]; old != "" {
		t.folders[old] -= count
		if t.folders[old] < 0 {
			t.folders[old] = 0
		}
	}
	t.membership[channel] = folder
	if folder != "" {
		t.folders[folder] += count
	}
}

// ChannelCount returns the cached unread count of a channel.
func (t *Tree) ChannelCount(channel string) int64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.channels[channel]
}

// FolderCount returns the cached unread count of a folder.
func (t *Tree) FolderCount(folder string) int64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.folders[folder]
}

// Snapshot returns copies of both counter maps for rendering.
func (t *Tree) Snapshot() (channels map[string]int64, folders map[string]int64) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return lo.Assign(map[string]int64{}, t.channels), lo.Assign(map[string]int64{}, t.folders)
}
