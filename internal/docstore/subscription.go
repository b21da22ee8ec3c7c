package docstore

import (
	"context"
	"reflect"
)

// Subscription is a live query. Updates delivers the full result set; only
// the latest unread result is kept.
type Subscription struct {
	updates chan []Snapshot
	cancel  context.CancelFunc
	done    chan struct{}
}

func (s *Subscription) Updates() <-chan []Snapshot {
	return s.updates
}

// Done is closed once the subscription has released its resources.
func (s *Subscription) Done() <-chan struct{} {
	return s.done
}

// Close cancels the subscription and waits for it to stop.
func (s *Subscription) Close() {
	s.cancel()
	<-s.done
}

// replace drops any unread result and queues snaps in its place. Only the
// subscription goroutine sends, so the second send never blocks.
func (s *Subscription) replace(snaps []Snapshot) {
	select {
	case <-s.updates:
	default:
	}
	s.updates <- snaps
}

type queryFunc func(ctx context.Context, q Query) ([]Snapshot, error)

// listen runs q once and again after every change notification, skipping
// results identical to the last one delivered.
func listen(ctx context.Context, n Notifier, q Query, query queryFunc, onError func(error)) (*Subscription, error) {
	if err := q.validate(); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(ctx)
	changes, unsubscribe, err := n.Subscribe(ctx, q.Collection)
	if err != nil {
		cancel()
		return nil, err
	}

	sub := &Subscription{
		updates: make(chan []Snapshot, 1),
		cancel:  cancel,
		done:    make(chan struct{}),
	}

	go func() {
		defer close(sub.done)
		defer close(sub.updates)
		defer unsubscribe()

		var last []Snapshot
		delivered := false
		deliver := func() {
			snaps, err := query(ctx, q)
			if err != nil {
				if ctx.Err() == nil {
					onError(err)
				}
				return
			}
			if delivered && reflect.DeepEqual(snaps, last) {
				return
			}
			last, delivered = snaps, true
			sub.replace(cloneSnapshots(snaps))
		}

		deliver()
		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-changes:
				if !ok {
					return
				}
				deliver()
			}
		}
	}()

	return sub, nil
}

func cloneSnapshots(snaps []Snapshot) []Snapshot {
	out := make([]Snapshot, len(snaps))
	for i, s := range snaps {
		data, _ := cloneValue(s.Data).(map[string]any)
		out[i] = Snapshot{ID: s.ID, Data: data}
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = cloneValue(e)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = cloneValue(e)
		}
		return out
	default:
		return v
	}
}
