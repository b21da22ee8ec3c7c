package document

import (
	"github.com/dukerupert/sharearecipe/internal/docstore"
	"github.com/dukerupert/sharearecipe/internal/model"
)

// DecodeUserProfile builds a profile from a users document. Blank optional
// fields decode to nil; uid falls back to the document id.
func DecodeUserProfile(snap docstore.Snapshot, now Clock) (model.UserProfile, bool) {
	d := snap.Data
	if d == nil {
		return model.UserProfile{}, false
	}
	return model.UserProfile{
		UID:                stringField(d, "uid", snap.ID),
		DisplayName:        stringField(d, "displayName", ""),
		Username:           optionalString(d, "username"),
		Email:              stringField(d, "email", ""),
		ProfileImageBase64: optionalString(d, "profileImageBase64"),
		Birthday:           optionalString(d, "birthday"),
		Bio:                optionalString(d, "bio"),
		Location:           optionalString(d, "location"),
		Followers:          stringsField(d, "followers"),
		Following:          stringsField(d, "following"),
		CreatedAt:          timeField(d, "createdAt", now),
	}, true
}

func EncodeUserProfile(p model.UserProfile) map[string]any {
	doc := map[string]any{
		"uid":         p.UID,
		"displayName": p.DisplayName,
		"email":       p.Email,
		"followers":   nonNil(p.Followers),
		"following":   nonNil(p.Following),
		"createdAt":   p.CreatedAt,
	}
	optional := map[string]*string{
		"username":           p.Username,
		"profileImageBase64": p.ProfileImageBase64,
		"birthday":           p.Birthday,
		"bio":                p.Bio,
		"location":           p.Location,
	}
	for k, v := range optional {
		if v != nil {
			doc[k] = *v
		}
	}
	return doc
}
