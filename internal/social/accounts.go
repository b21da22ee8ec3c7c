package social

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/dukerupert/sharearecipe/internal/docstore"
	"github.com/dukerupert/sharearecipe/internal/document"
	"github.com/dukerupert/sharearecipe/internal/livesync"
	"github.com/dukerupert/sharearecipe/internal/model"
	"github.com/dukerupert/sharearecipe/internal/reconcile"
)

// ProfileInput is the editable part of a profile. Nil or blank optional
// fields are removed from the stored document.
type ProfileInput struct {
	DisplayName        string  `json:"displayName"`
	Username           *string `json:"username"`
	ProfileImageBase64 *string `json:"profileImageBase64"`
	Birthday           *string `json:"birthday"`
	Bio                *string `json:"bio"`
	Location           *string `json:"location"`
}

// Accounts manages user profiles and the follow graph. Fetched profiles are
// cached; the cache is refreshed by every fetch.
type Accounts struct {
	store  docstore.Store
	now    Clock
	logger *slog.Logger

	mu    sync.Mutex
	cache map[string]model.UserProfile
}

// NewAccounts returns an Accounts service backed by store.
func NewAccounts(store docstore.Store, logger *slog.Logger) *Accounts {
	return &Accounts{
		store:  store,
		now:    time.Now,
		logger: logger,
		cache:  make(map[string]model.UserProfile),
	}
}

// Username derives a handle from a display name: lowercase, no spaces.
func Username(displayName string) string {
	return strings.ToLower(strings.Join(strings.Fields(displayName), ""))
}

// CreateProfile writes the profile document for a newly registered uid.
func (a *Accounts) CreateProfile(ctx context.Context, uid, email, displayName string) (model.UserProfile, error) {
	displayName = strings.TrimSpace(displayName)
	if displayName == "" {
		displayName, _, _ = strings.Cut(email, "@")
	}
	p := model.UserProfile{
		UID:         uid,
		DisplayName: displayName,
		Email:       email,
		Followers:   []string{},
		Following:   []string{},
		CreatedAt:   utcNow(a.now),
	}
	if u := Username(displayName); u != "" {
		p.Username = &u
	}
	if err := a.store.Set(ctx, document.UsersCollection, uid, document.EncodeUserProfile(p)); err != nil {
		return model.UserProfile{}, fmt.Errorf("create profile: %w", err)
	}
	a.remember(p)
	return p, nil
}

func (a *Accounts) remember(p model.UserProfile) {
	a.mu.Lock()
	a.cache[p.UID] = p
	a.mu.Unlock()
}

// Cached returns the last fetched profile for uid.
func (a *Accounts) Cached(uid string) (model.UserProfile, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	p, ok := a.cache[uid]
	return p, ok
}

// FetchProfile reads a profile from the store and refreshes the cache.
func (a *Accounts) FetchProfile(ctx context.Context, uid string) (model.UserProfile, error) {
	snap, err := a.store.Get(ctx, document.UsersCollection, uid)
	if err != nil {
		return model.UserProfile{}, fmt.Errorf("fetch profile %s: %w", uid, err)
	}
	p, ok := document.DecodeUserProfile(snap, document.Clock(a.now))
	if !ok {
		return model.UserProfile{}, fmt.Errorf("fetch profile %s: %w", uid, docstore.ErrNotFound)
	}
	a.remember(p)
	return p, nil
}

// Listen returns a live, started view of uid's profile. It holds one item
// while the profile exists. The caller must Stop it.
func (a *Accounts) Listen(ctx context.Context, uid string) (*livesync.Collection[model.UserProfile], error) {
	coll := livesync.New[model.UserProfile](a.logger)
	decode := func(s docstore.Snapshot) (model.UserProfile, bool) {
		return document.DecodeUserProfile(s, document.Clock(a.now))
	}
	if err := coll.Start(ctx, a.store, docstore.Doc(document.UsersCollection, uid), decode); err != nil {
		return nil, fmt.Errorf("listen profile: %w", err)
	}
	return coll, nil
}

// UpdateProfile rewrites the editable fields of uid's profile.
func (a *Accounts) UpdateProfile(ctx context.Context, uid string, in ProfileInput) (model.UserProfile, error) {
	fields := map[string]any{}
	if name := strings.TrimSpace(in.DisplayName); name != "" {
		fields["displayName"] = name
	}
	if in.Username != nil {
		u := Username(*in.Username)
		in.Username = &u
	}
	optional := map[string]*string{
		"username":           in.Username,
		"profileImageBase64": in.ProfileImageBase64,
		"birthday":           in.Birthday,
		"bio":                in.Bio,
		"location":           in.Location,
	}
	for key, v := range optional {
		if v == nil || strings.TrimSpace(*v) == "" {
			fields[key] = docstore.DeleteField()
			continue
		}
		fields[key] = strings.TrimSpace(*v)
	}

	if err := a.store.Update(ctx, document.UsersCollection, uid, fields); err != nil {
		return model.UserProfile{}, fmt.Errorf("update profile: %w", err)
	}
	return a.FetchProfile(ctx, uid)
}

// ToggleFollow makes selfID follow targetID, or unfollow if selfID already
// follows. The two profile writes are independent: if the second fails the
// graph stays one-sided until the next toggle. The self profile is always
// re-fetched afterwards and returned.
func (a *Accounts) ToggleFollow(ctx context.Context, selfID, targetID string) (model.UserProfile, error) {
	self, err := a.FetchProfile(ctx, selfID)
	if err != nil {
		return model.UserProfile{}, err
	}
	target, err := a.FetchProfile(ctx, targetID)
	if err != nil {
		return model.UserProfile{}, err
	}

	res := reconcile.Follow(self.Following, target.Followers, selfID, targetID)
	self.Following = res.SelfFollowing
	a.remember(self)

	writeErr := a.writeFollow(ctx, selfID, targetID, res.Following)
	if writeErr != nil {
		a.logger.Warn("follow write failed", "self", selfID, "target", targetID, "error", writeErr)
	}

	fresh, err := a.FetchProfile(ctx, selfID)
	if writeErr != nil {
		return fresh, writeErr
	}
	return fresh, err
}

func (a *Accounts) writeFollow(ctx context.Context, selfID, targetID string, follow bool) error {
	op := docstore.ArrayRemove
	if follow {
		op = docstore.ArrayUnion
	}
	if err := a.store.Update(ctx, document.UsersCollection, selfID, map[string]any{"following": op(targetID)}); err != nil {
		return fmt.Errorf("update following: %w", err)
	}
	if err := a.store.Update(ctx, document.UsersCollection, targetID, map[string]any{"followers": op(selfID)}); err != nil {
		return fmt.Errorf("update followers: %w", err)
	}
	return nil
}

// Followers resolves uid's followers to profiles. Missing profiles are
// skipped.
func (a *Accounts) Followers(ctx context.Context, uid string) ([]model.UserProfile, error) {
	p, err := a.FetchProfile(ctx, uid)
	if err != nil {
		return nil, err
	}
	return a.resolve(ctx, p.Followers)
}

// Following resolves the profiles uid follows. Missing profiles are skipped.
func (a *Accounts) Following(ctx context.Context, uid string) ([]model.UserProfile, error) {
	p, err := a.FetchProfile(ctx, uid)
	if err != nil {
		return nil, err
	}
	return a.resolve(ctx, p.Following)
}

func (a *Accounts) resolve(ctx context.Context, uids []string) ([]model.UserProfile, error) {
	out := []model.UserProfile{}
	for _, uid := range uids {
		snap, err := a.store.Get(ctx, document.UsersCollection, uid)
		if errors.Is(err, docstore.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("resolve profile %s: %w", uid, err)
		}
		if p, ok := document.DecodeUserProfile(snap, document.Clock(a.now)); ok {
			out = append(out, p)
		}
	}
	return out, nil
}

// Search matches display names and usernames case-insensitively. Blank
// text matches nobody.
func (a *Accounts) Search(ctx context.Context, text string) ([]model.UserProfile, error) {
	text = strings.ToLower(strings.TrimSpace(text))
	out := []model.UserProfile{}
	if text == "" {
		return out, nil
	}
	snaps, err := a.store.Query(ctx, docstore.Collection(document.UsersCollection).Order("displayName", false))
	if err != nil {
		return nil, fmt.Errorf("search users: %w", err)
	}
	for _, s := range snaps {
		p, ok := document.DecodeUserProfile(s, document.Clock(a.now))
		if !ok {
			continue
		}
		username := ""
		if p.Username != nil {
			username = *p.Username
		}
		if strings.Contains(strings.ToLower(p.DisplayName), text) || strings.Contains(strings.ToLower(username), text) {
			out = append(out, p)
		}
	}
	return out, nil
}
