package reconcile

import "slices"

// FollowResult holds both sides of a follow toggle.
type FollowResult struct {
	SelfFollowing   []string
	TargetFollowers []string
	// Following is the relationship after the toggle.
	Following bool
}

// Follow toggles selfID following targetID. The decision is taken from
// selfFollowing alone; targetFollowers is brought into line with it. There is
// no guard against selfID == targetID.
func Follow(selfFollowing, targetFollowers []string, selfID, targetID string) FollowResult {
	if slices.Contains(selfFollowing, targetID) {
		return FollowResult{
			SelfFollowing:   without(selfFollowing, targetID),
			TargetFollowers: without(targetFollowers, selfID),
			Following:       false,
		}
	}
	return FollowResult{
		SelfFollowing:   union(selfFollowing, targetID),
		TargetFollowers: union(targetFollowers, selfID),
		Following:       true,
	}
}

func union(set []string, uid string) []string {
	out := slices.Clone(set)
	if out == nil {
		out = []string{}
	}
	if !slices.Contains(out, uid) {
		out = append(out, uid)
	}
	return out
}
