// Package reconcile computes new membership sets for votes, saves and
// follows. Functions here are pure: they never touch storage and never
// modify their inputs.
package reconcile

import "slices"

// VoteState is a user's vote on one recipe.
type VoteState int

const (
	Neutral VoteState = iota
	Upvoted
	Downvoted
)

func (s VoteState) String() string {
	switch s {
	case Upvoted:
		return "upvoted"
	case Downvoted:
		return "downvoted"
	default:
		return "neutral"
	}
}

// Vote applies a toggle-style vote by uid. Voting the same way twice returns
// to Neutral; voting the other way switches sides. The result never lists uid
// in both sets.
func Vote(upvoters, downvoters []string, uid string, upvote bool) (up, down []string) {
	up = without(upvoters, uid)
	down = without(downvoters, uid)

	if upvote {
		if !slices.Contains(upvoters, uid) {
			up = append(up, uid)
		}
	} else {
		if !slices.Contains(downvoters, uid) {
			down = append(down, uid)
		}
	}
	return up, down
}

// StateOf reports how uid currently votes.
func StateOf(upvoters, downvoters []string, uid string) VoteState {
	switch {
	case slices.Contains(upvoters, uid):
		return Upvoted
	case slices.Contains(downvoters, uid):
		return Downvoted
	default:
		return Neutral
	}
}

// Score is |upvoters| - |downvoters|.
func Score(upvoters, downvoters []string) int {
	return len(upvoters) - len(downvoters)
}

// ToggleMember adds uid to set if absent, or removes it if present. The
// returned bool is true when uid is a member afterwards.
func ToggleMember(set []string, uid string) ([]string, bool) {
	if slices.Contains(set, uid) {
		return without(set, uid), false
	}
	out := slices.Clone(set)
	return append(out, uid), true
}

// without returns a copy of set with every occurrence of uid removed. The
// result is never nil so it encodes as an empty array.
func without(set []string, uid string) []string {
	out := make([]string, 0, len(set))
	for _, v := range set {
		if v != uid {
			out = append(out, v)
		}
	}
	return out
}
