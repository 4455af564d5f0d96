package models

import "errors"

// Sentinel errors shared across services and controllers. Anything not
// matched by errors.Is against these is a transport failure and keeps its
// wrapped cause.
var (
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrProfileNotFound  = errors.New("profile not found")
	ErrProfileExists    = errors.New("profile already exists")
	ErrSelfConnection   = errors.New("cannot connect with yourself")
	ErrScanCooldown     = errors.New("scanner is cooling down")
)
