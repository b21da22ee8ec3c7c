package model

import (
	"slices"
	"time"
)

type UserProfile struct {
	UID                string    `json:"uid"`
	DisplayName        string    `json:"displayName"`
	Username           *string   `json:"username"`
	Email              string    `json:"email"`
	ProfileImageBase64 *string   `json:"profileImageBase64"`
	Birthday           *string   `json:"birthday"`
	Bio                *string   `json:"bio"`
	Location           *string   `json:"location"`
	Followers          []string  `json:"followers"`
	Following          []string  `json:"following"`
	CreatedAt          time.Time `json:"createdAt"`
}

func (p *UserProfile) IsFollowing(uid string) bool {
	return slices.Contains(p.Following, uid)
}

func (p *UserProfile) IsFollowedBy(uid string) bool {
	return slices.Contains(p.Followers, uid)
}
