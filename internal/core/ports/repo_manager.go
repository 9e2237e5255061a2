package ports

import (
	"github.com/vulpemventures/seedcheck/internal/core/domain"
)

type SessionEventHandler func(event domain.SessionEvent)
type BackupEventHandler func(event domain.BackupEvent)

// RepoManager is the abstraction for any kind of service intended to manage
// domain repositories implementations of the same concrete type.
type RepoManager interface {
	// ValidationSessionRepository returns the validation session repository.
	ValidationSessionRepository() domain.ValidationSessionRepository
	// BackupRepository returns the backup repository.
	BackupRepository() domain.BackupRepository

	// RegisterHandlerForSessionEvent registers an handler function, executed
	// whenever the given event type occurs.
	RegisterHandlerForSessionEvent(
		eventType domain.SessionEventType, handler SessionEventHandler,
	)
	// RegisterHandlerForBackupEvent registers an handler function, executed
	// whenever the given event type occurs.
	RegisterHandlerForBackupEvent(
		eventType domain.BackupEventType, handler BackupEventHandler,
	)

	// Reset brings all the repos to their initial state by deleting any persisted data.
	Reset()

	// Close closes the connection with all concrete repositories
	// implementations.
	Close()
}
