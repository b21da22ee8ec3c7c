package docstore

import (
	"context"
	"sync"
)

// Change identifies a written document.
type Change struct {
	Collection string `json:"collection"`
	ID         string `json:"id"`
}

// Notifier fans document changes out to listeners of a collection.
//
// Delivery is coalescing: each subscription holds at most one pending change
// and further changes are dropped while one is pending. A listener that
// re-reads the collection after taking a change therefore always observes
// every write that was published before it.
type Notifier interface {
	Publish(ctx context.Context, c Change) error
	Subscribe(ctx context.Context, collection string) (<-chan Change, func(), error)
}

type localSubscriber struct {
	collection string
	ch         chan Change
}

// LocalNotifier is an in-process Notifier.
type LocalNotifier struct {
	mu   sync.RWMutex
	subs map[*localSubscriber]struct{}
}

// NewLocalNotifier returns a notifier for a single process.
func NewLocalNotifier() *LocalNotifier {
	return &LocalNotifier{subs: make(map[*localSubscriber]struct{})}
}

func (n *LocalNotifier) Publish(_ context.Context, c Change) error {
	n.mu.RLock()
	defer n.mu.RUnlock()

	for s := range n.subs {
		if s.collection != c.Collection {
			continue
		}
		select {
		case s.ch <- c:
		default:
			// a change is already pending for this subscriber
		}
	}
	return nil
}

// Subscribe registers for changes to collection. The returned func
// unregisters and closes the channel; it is safe to call more than once.
// The subscription also ends when ctx is done.
func (n *LocalNotifier) Subscribe(ctx context.Context, collection string) (<-chan Change, func(), error) {
	s := &localSubscriber{collection: collection, ch: make(chan Change, 1)}

	n.mu.Lock()
	n.subs[s] = struct{}{}
	n.mu.Unlock()

	var once sync.Once
	unsubscribe := func() {
		once.Do(func() {
			n.mu.Lock()
			delete(n.subs, s)
			close(s.ch)
			n.mu.Unlock()
		})
	}

	go func() {
		<-ctx.Done()
		unsubscribe()
	}()

	return s.ch, unsubscribe, nil
}

// SubscriberCount returns the number of live subscriptions.
func (n *LocalNotifier) SubscriberCount() int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return len(n.subs)
}
