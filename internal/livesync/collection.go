// Package livesync keeps an in-memory copy of a live document query.
//
// A Collection owns one subscription at a time. Every change the store
// reports replaces the whole decoded slice; callers never see a partial
// merge. Optimistic edits go through Mutate and are overwritten by the next
// delivery from the store.
package livesync

import (
	"context"
	"log/slog"
	"sync"

	"github.com/dukerupert/sharearecipe/internal/docstore"
)

// Decoder turns one stored document into T. Returning false drops the
// document from the collection.
type Decoder[T any] func(docstore.Snapshot) (T, bool)

// Expander turns one stored document into any number of items, such as the
// comment thread embedded in a recipe.
type Expander[T any] func(docstore.Snapshot) []T

// Collection mirrors the result of one live query. Each delivery replaces
// the items wholesale; local changes made with Mutate last until the next one.
type Collection[T any] struct {
	// lifecycle serializes Start and Stop so only one subscription exists.
	lifecycle sync.Mutex

	mu       sync.Mutex
	items    []T
	sub      *docstore.Subscription
	pumpDone chan struct{}
	watchers map[chan []T]struct{}

	logger *slog.Logger
}

// New returns an empty, stopped Collection.
func New[T any](logger *slog.Logger) *Collection[T] {
	return &Collection[T]{
		watchers: make(map[chan []T]struct{}),
		logger:   logger,
	}
}

// Start subscribes to q, replacing any subscription already running. The
// previous subscription is fully stopped before the new one is opened, so
// results of an old query are never delivered after Start returns.
func (c *Collection[T]) Start(ctx context.Context, store docstore.Store, q docstore.Query, decode Decoder[T]) error {
	return c.StartExpand(ctx, store, q, func(s docstore.Snapshot) []T {
		if v, ok := decode(s); ok {
			return []T{v}
		}
		return nil
	})
}

// StartExpand is Start for queries whose documents each yield many items.
func (c *Collection[T]) StartExpand(ctx context.Context, store docstore.Store, q docstore.Query, expand Expander[T]) error {
	c.lifecycle.Lock()
	defer c.lifecycle.Unlock()

	c.stopLocked()

	sub, err := store.Listen(ctx, q)
	if err != nil {
		return err
	}

	done := make(chan struct{})
	c.mu.Lock()
	c.sub = sub
	c.pumpDone = done
	c.mu.Unlock()

	go c.pump(sub, expand, done)
	c.logger.Debug("live collection started", "collection", q.Collection, "document", q.DocumentID)
	return nil
}

// Stop releases the current subscription, if any. Items keeps its last
// value.
func (c *Collection[T]) Stop() {
	c.lifecycle.Lock()
	defer c.lifecycle.Unlock()
	c.stopLocked()
}

func (c *Collection[T]) stopLocked() {
	c.mu.Lock()
	sub, done := c.sub, c.pumpDone
	c.sub, c.pumpDone = nil, nil
	c.mu.Unlock()

	if sub == nil {
		return
	}
	sub.Close()
	<-done
}

func (c *Collection[T]) pump(sub *docstore.Subscription, expand Expander[T], done chan struct{}) {
	defer close(done)
	for snaps := range sub.Updates() {
		items := make([]T, 0, len(snaps))
		for _, s := range snaps {
			items = append(items, expand(s)...)
		}
		c.replace(items)
	}
}

func (c *Collection[T]) replace(items []T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = items
	c.notifyLocked()
}

// notifyLocked hands each watcher the latest items, dropping any value it
// has not read yet.
func (c *Collection[T]) notifyLocked() {
	for ch := range c.watchers {
		select {
		case <-ch:
		default:
		}
		ch <- c.copyLocked()
	}
}

func (c *Collection[T]) copyLocked() []T {
	out := make([]T, len(c.items))
	copy(out, c.items)
	return out
}

// Items returns a copy of the current collection.
func (c *Collection[T]) Items() []T {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.copyLocked()
}

// Mutate applies an optimistic local change. fn receives a copy it may
// modify and returns the new collection.
func (c *Collection[T]) Mutate(fn func([]T) []T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = fn(c.copyLocked())
	c.notifyLocked()
}

// Watch returns a channel that receives the whole collection after every
// replacement, starting with the current one. Slow readers only miss
// intermediate values. The returned func stops the watch.
func (c *Collection[T]) Watch() (<-chan []T, func()) {
	ch := make(chan []T, 1)
	c.mu.Lock()
	c.watchers[ch] = struct{}{}
	ch <- c.copyLocked()
	c.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			c.mu.Lock()
			delete(c.watchers, ch)
			c.mu.Unlock()
		})
	}
}

// Running reports whether a subscription is active.
func (c *Collection[T]) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sub != nil
}
