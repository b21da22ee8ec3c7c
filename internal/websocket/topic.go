package websocket

import (
	"context"
	"sync"

	"github.com/dukerupert/sharearecipe/internal/livesync"
)

// Topic opens a live view for one listen request. uid is the caller and id
// the optional document the topic is scoped to.
type Topic func(ctx context.Context, uid, id string) (*Stream, error)

// Stream carries full-collection values until stopped. Only the latest
// unread value is kept.
type Stream struct {
	updates  chan any
	stop     chan struct{}
	finished chan struct{}
	once     sync.Once
	release  func()
}

func (s *Stream) Updates() <-chan any {
	return s.updates
}

// Stop ends the stream and releases what it watches.
func (s *Stream) Stop() {
	s.once.Do(func() {
		close(s.stop)
		<-s.finished
		if s.release != nil {
			s.release()
		}
	})
}

// Watch streams every replacement of coll. release runs after the stream
// stops, typically coll.Stop for collections owned by the stream.
func Watch[T any](coll *livesync.Collection[T], release func()) *Stream {
	ch, unwatch := coll.Watch()
	s := &Stream{
		updates:  make(chan any, 1),
		stop:     make(chan struct{}),
		finished: make(chan struct{}),
		release: func() {
			unwatch()
			if release != nil {
				release()
			}
		},
	}

	go func() {
		defer close(s.finished)
		for {
			select {
			case <-s.stop:
				return
			case items := <-ch:
				select {
				case <-s.updates:
				default:
				}
				s.updates <- items
			}
		}
	}()
	return s
}
