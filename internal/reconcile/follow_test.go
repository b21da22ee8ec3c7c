package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFollowFromNeutral(t *testing.T) {
	res := Follow(nil, nil, "A", "B")

	assert.True(t, res.Following)
	assert.Equal(t, []string{"B"}, res.SelfFollowing)
	assert.Equal(t, []string{"A"}, res.TargetFollowers)
}

func TestFollowTwiceRestores(t *testing.T) {
	first := Follow(nil, nil, "A", "B")
	second := Follow(first.SelfFollowing, first.TargetFollowers, "A", "B")

	assert.False(t, second.Following)
	assert.Empty(t, second.SelfFollowing)
	assert.Empty(t, second.TargetFollowers)
	assert.NotNil(t, second.SelfFollowing)
	assert.NotNil(t, second.TargetFollowers)
}

func TestFollowKeepsOtherRelationships(t *testing.T) {
	res := Follow([]string{"C"}, []string{"D"}, "A", "B")
	assert.Equal(t, []string{"C", "B"}, res.SelfFollowing)
	assert.Equal(t, []string{"D", "A"}, res.TargetFollowers)

	res = Follow(res.SelfFollowing, res.TargetFollowers, "A", "B")
	assert.Equal(t, []string{"C"}, res.SelfFollowing)
	assert.Equal(t, []string{"D"}, res.TargetFollowers)
}

func TestFollowDecidesFromSelfSide(t *testing.T) {
	// target already lists A as follower but A does not follow B:
	// the toggle follows and does not duplicate A.
	res := Follow(nil, []string{"A"}, "A", "B")
	assert.True(t, res.Following)
	assert.Equal(t, []string{"A"}, res.TargetFollowers)

	// A follows B but the target side lost A: unfollow still cleans both.
	res = Follow([]string{"B"}, nil, "A", "B")
	assert.False(t, res.Following)
	assert.Empty(t, res.TargetFollowers)
}

func TestFollowSelfIsNotGuarded(t *testing.T) {
	res := Follow(nil, nil, "A", "A")
	assert.True(t, res.Following)
	assert.Equal(t, []string{"A"}, res.SelfFollowing)
	assert.Equal(t, []string{"A"}, res.TargetFollowers)
}
