package domain

import (
	"context"
	"fmt"
)

const (
	BackupVerified BackupEventType = iota
	BackupAttemptFailed
)

var (
	// ErrBackupNotFound is returned by any repository implementation when
	// the requested backup doesn't exist.
	ErrBackupNotFound = fmt.Errorf("backup not found")

	backupTypeString = map[BackupEventType]string{
		BackupVerified:      "BackupVerified",
		BackupAttemptFailed: "BackupAttemptFailed",
	}
)

type BackupEventType int

func (t BackupEventType) String() string {
	return backupTypeString[t]
}

// BackupEvent holds info about an event occured within the repository.
type BackupEvent struct {
	EventType   BackupEventType
	Fingerprint string
	Attempts    uint32
}

// BackupRepository is the abstraction for any kind of database intended to
// persist the verification status of recovery phrases.
type BackupRepository interface {
	// AddBackup stores a new backup if not yet existing.
	AddBackup(ctx context.Context, backup *Backup) error
	// GetBackup returns the backup with the given fingerprint, if existing.
	GetBackup(ctx context.Context, fingerprint string) (*Backup, error)
	// ListBackups returns all stored backups.
	ListBackups(ctx context.Context) ([]*Backup, error)
	// UpdateBackup allows to make multiple changes to the backup in a
	// transactional way.
	UpdateBackup(
		ctx context.Context, fingerprint string,
		updateFn func(b *Backup) (*Backup, error),
	) error
	// RecordAttempt registers the result of a complete validation session for
	// the given phrase, creating its backup if not yet existing.
	// Generates a BackupVerified or BackupAttemptFailed event if successfull.
	RecordAttempt(
		ctx context.Context, phrase RecoveryPhrase, valid bool,
	) (*Backup, error)
	// GetEventChannel returns the channel of BackupEvents.
	GetEventChannel() chan BackupEvent
}
