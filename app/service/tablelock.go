package service

import (
	"errors"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/vibast-solutions/ms-go-tablelocks/app/metrics"
	"github.com/vibast-solutions/ms-go-tablelocks/app/store"
)

// TableLockService wraps the lock store with logging and metrics. Store
// errors pass through untranslated so the transport layer can map them.
type TableLockService struct {
	store   *store.LockStore
	logger  logrus.FieldLogger
	metrics metrics.Metrics
}

// NewTableLockService builds the table lock service with dependencies.
func NewTableLockService(lockStore *store.LockStore, logger logrus.FieldLogger, m metrics.Metrics) *TableLockService {
	return &TableLockService{store: lockStore, logger: logger, metrics: m}
}

// Lock attempts to acquire an exclusive hold on a table.
func (s *TableLockService) Lock(tableID, userID string, ttl time.Duration) error {
	err := s.store.Acquire(tableID, userID, ttl)

	fields := logrus.Fields{"table": tableID, "user": userID, "ttl": ttl.String()}
	switch {
	case err == nil:
		s.metrics.IncLockRequests(metrics.ResultAcquired)
		s.logger.WithFields(fields).Info("table locked")
	case errors.Is(err, store.ErrAlreadyLocked):
		s.metrics.IncLockRequests(metrics.ResultConflict)
		s.logger.WithFields(fields).Warn("lock conflict")
	default:
		s.logger.WithFields(fields).WithError(err).Error("lock failed")
	}
	return err
}

// Unlock releases a hold if userID owns it.
func (s *TableLockService) Unlock(tableID, userID string) error {
	err := s.store.Release(tableID, userID)

	fields := logrus.Fields{"table": tableID, "user": userID}
	switch {
	case err == nil:
		s.metrics.IncUnlockRequests(metrics.ResultReleased)
		s.logger.WithFields(fields).Info("table unlocked")
	case errors.Is(err, store.ErrNotLocked):
		s.metrics.IncUnlockRequests(metrics.ResultNotFound)
		s.logger.WithFields(fields).Warn("unlock of unheld table")
	case errors.Is(err, store.ErrNotOwner):
		s.metrics.IncUnlockRequests(metrics.ResultDenied)
		s.logger.WithFields(fields).Warn("unlock denied")
	default:
		s.logger.WithFields(fields).WithError(err).Error("unlock failed")
	}
	return err
}

// Status reports whether a table currently has a live lock.
func (s *TableLockService) Status(tableID string) bool {
	return s.store.IsLocked(tableID)
}

// ActiveLocks returns a snapshot of all live locks.
func (s *TableLockService) ActiveLocks() map[string]store.Lock {
	return s.store.ActiveLocks()
}
