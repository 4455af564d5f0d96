package realtime

import (
	"context"
	"log"
	"sync"

	"pingou_server/models"
)

// ConnectionSource is the slice of the connection repository a sync
// session reads from.
type ConnectionSource interface {
	ListConnectionsFor(ctx context.Context, userID string) ([]models.UserProfile, error)
	GetProfile(ctx context.Context, userID string) (*models.UserProfile, error)
}

// Emitter receives list updates destined for one client session.
type Emitter interface {
	ConnectionAdded(profile models.UserProfile)
	ConnectionsRefreshed(profiles []models.UserProfile)
}

// State of a sync session.
type State int

const (
	StateUninitialized State = iota
	StateLoading
	StateReady
)

// Sync maintains the live connection list for one authenticated session.
// It owns the list exclusively: an initial full fetch brings it to Ready,
// after which broker events append counterpart profiles incrementally.
// Any failure while resolving an increment falls back to a full refetch,
// which is authoritative and superset-safe. Events observed while the
// initial fetch is still in flight are queued and re-applied afterwards;
// the append is idempotent so the overlap is harmless.
type Sync struct {
	userID string
	source ConnectionSource
	broker *Broker
	emit   Emitter

	mu       sync.Mutex
	state    State
	profiles []models.UserProfile
	present  map[string]bool

	sub       *Subscription
	cancel    context.CancelFunc
	stop      chan struct{}
	stopOnce  sync.Once
	done      chan struct{}
	started   bool
}

func NewSync(userID string, source ConnectionSource, broker *Broker, emitter Emitter) *Sync {
	return &Sync{
		userID:  userID,
		source:  source,
		broker:  broker,
		emit:    emitter,
		present: make(map[string]bool),
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
}

// Start subscribes to the broker and kicks off the initial full fetch.
// It returns immediately; updates are delivered through the Emitter.
func (s *Sync) Start(ctx context.Context) {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return
	}
	s.started = true
	s.state = StateLoading
	s.mu.Unlock()

	ctx, s.cancel = context.WithCancel(ctx)
	s.sub = s.broker.Subscribe()
	go s.run(ctx)
}

type fetchResult struct {
	profiles []models.UserProfile
	err      error
}

func (s *Sync) run(ctx context.Context) {
	defer close(s.done)

	// The full fetch and the event channel run concurrently; events that
	// arrive first are queued, not lost.
	fetched := make(chan fetchResult, 1)
	go func() {
		profiles, err := s.source.ListConnectionsFor(ctx, s.userID)
		fetched <- fetchResult{profiles, err}
	}()

	var pending []ConnectionEvent
	for loading := true; loading; {
		select {
		case <-s.stop:
			return
		case res := <-fetched:
			if res.err != nil {
				// A failed fetch must not be broadcast as an empty
				// authoritative list. Go Ready without emitting; the
				// next event or lag signal triggers the fallback refetch.
				log.Printf("realtime: initial connection fetch failed for %s: %v", s.userID, res.err)
				s.mu.Lock()
				s.state = StateReady
				s.mu.Unlock()
			} else {
				s.applyRefresh(res.profiles)
			}
			loading = false
		case event := <-s.sub.C:
			if event.Involves(s.userID) {
				pending = append(pending, event)
			}
		case <-s.sub.Lagged:
			// The in-flight full fetch already covers anything missed.
		}
	}

	for _, event := range pending {
		select {
		case <-s.stop:
			return
		default:
		}
		s.applyEvent(ctx, event)
	}

	for {
		select {
		case <-s.stop:
			return
		case event := <-s.sub.C:
			if event.Involves(s.userID) {
				s.applyEvent(ctx, event)
			}
		case <-s.sub.Lagged:
			s.refetch(ctx)
		}
	}
}

// applyEvent resolves the counterpart profile and appends it to the list.
// Appending an already-present counterpart is a no-op; any resolution
// error triggers the fallback refetch instead of dropping the event.
func (s *Sync) applyEvent(ctx context.Context, event ConnectionEvent) {
	counterpart := event.Counterpart(s.userID)
	if counterpart == "" || counterpart == s.userID {
		return
	}

	s.mu.Lock()
	known := s.present[counterpart]
	s.mu.Unlock()
	if known {
		return
	}

	profile, err := s.source.GetProfile(ctx, counterpart)
	if err != nil {
		log.Printf("realtime: failed to resolve new connection %s for %s, refetching: %v", counterpart, s.userID, err)
		s.refetch(ctx)
		return
	}

	s.mu.Lock()
	if s.present[counterpart] {
		s.mu.Unlock()
		return
	}
	s.present[counterpart] = true
	s.profiles = append(s.profiles, *profile)
	s.mu.Unlock()

	s.emit.ConnectionAdded(*profile)
}

// refetch replaces the list with a fresh full fetch. On failure the
// previous list is kept; a later event will retry.
func (s *Sync) refetch(ctx context.Context) {
	profiles, err := s.source.ListConnectionsFor(ctx, s.userID)
	if err != nil {
		log.Printf("realtime: fallback refetch failed for %s: %v", s.userID, err)
		return
	}
	s.applyRefresh(profiles)
}

func (s *Sync) applyRefresh(profiles []models.UserProfile) {
	s.mu.Lock()
	s.profiles = profiles
	s.present = make(map[string]bool, len(profiles))
	for _, p := range profiles {
		s.present[p.UserID] = true
	}
	s.state = StateReady
	s.mu.Unlock()

	s.emit.ConnectionsRefreshed(profiles)
}

// Snapshot returns a copy of the current connection list.
func (s *Sync) Snapshot() []models.UserProfile {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.UserProfile, len(s.profiles))
	copy(out, s.profiles)
	return out
}

// State reports where the session is in its lifecycle.
func (s *Sync) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Close tears the session down. Once it returns no further Emitter calls
// are made and the list is discarded.
func (s *Sync) Close() {
	s.mu.Lock()
	if !s.started {
		s.state = StateUninitialized
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()

	s.sub.Cancel()
	s.stopOnce.Do(func() { close(s.stop) })
	s.cancel()
	<-s.done

	s.mu.Lock()
	s.state = StateUninitialized
	s.profiles = nil
	s.present = make(map[string]bool)
	s.mu.Unlock()
}
