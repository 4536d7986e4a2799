package dto

import (
	"errors"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
)

var (
	ErrMissingLockFields   = errors.New("tableId, userId, and duration are required")
	ErrInvalidDuration     = errors.New("duration must be a positive number of seconds")
	ErrMissingUnlockFields = errors.New("tableId and userId are required")
)

type LockRequest struct {
	TableID  string  `json:"tableId"`
	UserID   string  `json:"userId"`
	Duration float64 `json:"duration"`
}

// LockFromEchoContext binds and normalizes a lock request from Echo.
func LockFromEchoContext(ctx echo.Context) (LockRequest, error) {
	var req LockRequest
	if err := ctx.Bind(&req); err != nil {
		return LockRequest{}, err
	}
	req.normalize()
	return req, nil
}

// Validate checks required fields and that the duration is positive.
func (r *LockRequest) Validate() error {
	if r.TableID == "" || r.UserID == "" {
		return ErrMissingLockFields
	}
	if r.Duration <= 0 {
		return ErrInvalidDuration
	}
	return nil
}

// TTL converts the requested duration in seconds to a time.Duration.
func (r *LockRequest) TTL() time.Duration {
	return time.Duration(r.Duration * float64(time.Second))
}

// normalize trims whitespace from the identifier fields.
func (r *LockRequest) normalize() {
	r.TableID = strings.TrimSpace(r.TableID)
	r.UserID = strings.TrimSpace(r.UserID)
}

type UnlockRequest struct {
	TableID string `json:"tableId"`
	UserID  string `json:"userId"`
}

// UnlockFromEchoContext binds and normalizes an unlock request from Echo.
func UnlockFromEchoContext(ctx echo.Context) (UnlockRequest, error) {
	var req UnlockRequest
	if err := ctx.Bind(&req); err != nil {
		return UnlockRequest{}, err
	}
	req.normalize()
	return req, nil
}

// Validate checks required fields.
func (r *UnlockRequest) Validate() error {
	if r.TableID == "" || r.UserID == "" {
		return ErrMissingUnlockFields
	}
	return nil
}

// normalize trims whitespace from the identifier fields.
func (r *UnlockRequest) normalize() {
	r.TableID = strings.TrimSpace(r.TableID)
	r.UserID = strings.TrimSpace(r.UserID)
}

// ActiveLock is one entry in the active-locks listing.
type ActiveLock struct {
	UserID        string `json:"userId"`
	Expiry        string `json:"expiry"`
	TimeRemaining int64  `json:"timeRemaining"`
}
