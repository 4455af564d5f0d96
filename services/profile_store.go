package services

import (
	"context"
	"sync"

	"pingou_server/models"
)

// profileFetcher is the single read the store needs from the profile service.
type profileFetcher interface {
	GetUserProfile(ctx context.Context, userID string) (*models.UserProfile, error)
}

// ProfileStore caches each signed-in user's own profile for the lifetime
// of their session: fetched once after sign-in, replaced by the edit-save
// flow, dropped on sign-out. One writer per entry at a time; reads see
// either the cached value or nothing.
type ProfileStore struct {
	Profiles profileFetcher

	mu       sync.Mutex
	sessions map[string]*models.UserProfile
	loading  map[string]chan struct{}
}

func NewProfileStore(profiles profileFetcher) *ProfileStore {
	return &ProfileStore{
		Profiles: profiles,
		sessions: make(map[string]*models.UserProfile),
		loading:  make(map[string]chan struct{}),
	}
}

// Load fetches and caches the profile for userID. Subsequent calls within
// the same session return the cached value without touching storage.
// Concurrent loads for the same user share one fetch; the lock is not
// held across the fetch, so a slow load never blocks other sessions.
func (ps *ProfileStore) Load(ctx context.Context, userID string) (*models.UserProfile, error) {
	for {
		ps.mu.Lock()
		if cached, ok := ps.sessions[userID]; ok {
			copied := *cached
			ps.mu.Unlock()
			return &copied, nil
		}
		if wait, ok := ps.loading[userID]; ok {
			ps.mu.Unlock()
			select {
			case <-wait:
			case <-ctx.Done():
				return nil, ctx.Err()
			}
			continue
		}
		wait := make(chan struct{})
		ps.loading[userID] = wait
		ps.mu.Unlock()

		profile, err := ps.Profiles.GetUserProfile(ctx, userID)

		ps.mu.Lock()
		delete(ps.loading, userID)
		close(wait)
		if err != nil {
			ps.mu.Unlock()
			return nil, err
		}
		ps.sessions[userID] = profile
		copied := *profile
		ps.mu.Unlock()
		return &copied, nil
	}
}

// Get returns the cached profile for userID, if the session has one.
func (ps *ProfileStore) Get(userID string) (*models.UserProfile, bool) {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	cached, ok := ps.sessions[userID]
	if !ok {
		return nil, false
	}
	copied := *cached
	return &copied, true
}

// Set replaces the cached profile after a successful edit-save.
func (ps *ProfileStore) Set(profile models.UserProfile) {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	ps.sessions[profile.UserID] = &profile
}

// Invalidate drops the cached profile on sign-out.
func (ps *ProfileStore) Invalidate(userID string) {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	delete(ps.sessions, userID)
}
