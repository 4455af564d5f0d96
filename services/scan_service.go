package services

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"pingou_server/models"
)

// DefaultScanCooldown is the re-arm delay: after a scan finishes, the same
// user's next scan is accepted only once this much time has passed. It
// keeps a QR code held in front of the camera from being processed again
// frame after frame.
const DefaultScanCooldown = 2 * time.Second

// ScanResult is the outcome of one accepted scan. Profile is the
// counterpart to show on the success screen; nil means no success screen
// (self-scan, or the connection stands but the counterpart profile is
// unavailable). Seq tags the scan so a caller juggling overlapping
// requests can discard a late arrival that no longer belongs to the
// current scan.
type ScanResult struct {
	Profile *models.UserProfile
	Created bool
	Seq     uint64
}

// ScanService turns one decoded QR payload into at most one new
// connection. One scan per user is in flight at a time; everything else
// within the cooldown window is rejected with models.ErrScanCooldown.
type ScanService struct {
	Connections *ConnectionService
	Cooldown    time.Duration

	mu       sync.Mutex
	inFlight map[string]bool
	rearmAt  map[string]time.Time
	seq      map[string]uint64
}

func NewScanService(connections *ConnectionService) *ScanService {
	return &ScanService{
		Connections: connections,
		Cooldown:    DefaultScanCooldown,
		inFlight:    make(map[string]bool),
		rearmAt:     make(map[string]time.Time),
		seq:         make(map[string]uint64),
	}
}

// HandleScan processes a decoded QR payload for the current user.
//
// A payload equal to the user's own id is ignored silently. Otherwise the
// connection row is inserted (a duplicate pair counts as success) and the
// counterpart profile is fetched for the success screen. Transport
// failures on the insert surface before any profile read happens.
func (ss *ScanService) HandleScan(ctx context.Context, currentUserID, payload string) (*ScanResult, error) {
	if currentUserID == "" {
		return nil, models.ErrNotAuthenticated
	}

	seq, err := ss.arm(currentUserID)
	if err != nil {
		return nil, err
	}
	defer ss.rearm(currentUserID)

	// Self-scan: no insert, no profile, no error.
	if payload == currentUserID {
		return &ScanResult{Seq: seq}, nil
	}

	created, err := ss.Connections.CreateConnection(ctx, currentUserID, payload)
	if err != nil {
		return nil, err
	}
	if !created {
		log.Printf("Scan by %s: connection with %s already exists", currentUserID, payload)
	}

	profile, err := ss.Connections.GetProfile(ctx, payload)
	if errors.Is(err, models.ErrProfileNotFound) {
		// Soft failure: the connection stands, the success screen is skipped.
		log.Printf("Scan by %s: counterpart %s has no profile", currentUserID, payload)
		return &ScanResult{Created: created, Seq: seq}, nil
	}
	if err != nil {
		return nil, err
	}

	return &ScanResult{Profile: profile, Created: created, Seq: seq}, nil
}

// IsCurrent reports whether seq still identifies the user's latest
// accepted scan. A late response carrying a stale sequence must not flip
// the visible result.
func (ss *ScanService) IsCurrent(userID string, seq uint64) bool {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	return ss.seq[userID] == seq
}

// arm accepts the scan if the user has no scan in flight and the cooldown
// from the previous one has elapsed.
func (ss *ScanService) arm(userID string) (uint64, error) {
	ss.mu.Lock()
	defer ss.mu.Unlock()

	if ss.inFlight[userID] || time.Now().Before(ss.rearmAt[userID]) {
		return 0, models.ErrScanCooldown
	}
	ss.inFlight[userID] = true
	ss.seq[userID]++
	return ss.seq[userID], nil
}

// rearm starts the cooldown. It runs on success and failure alike; the
// cause of a failure does not change the re-arm behavior.
func (ss *ScanService) rearm(userID string) {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	ss.inFlight[userID] = false
	ss.rearmAt[userID] = time.Now().Add(ss.Cooldown)
}
