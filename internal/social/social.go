// Package social holds the recipe feed, comment threads, user profiles and
// grocery lists. Each service owns its local state and talks to the
// document store; local optimistic changes are not rolled back when a
// remote write fails; the next live delivery resyncs them.
package social

import (
	"errors"
	"time"
)

var (
	ErrEmptyComment = errors.New("comment cannot be empty")
	ErrNotAuthor    = errors.New("only the author can change this recipe")
	ErrNotOwner     = errors.New("grocery list belongs to another user")
	ErrMissingTitle = errors.New("title is required")
)

// Clock returns the current time; services default to time.Now.
type Clock func() time.Time

func utcNow(now Clock) time.Time {
	return now().UTC()
}
