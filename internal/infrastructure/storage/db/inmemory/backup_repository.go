package inmemory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	log "github.com/sirupsen/logrus"
	"github.com/vulpemventures/seedcheck/internal/core/domain"
)

var (
	ErrBackupAlreadyExisting = fmt.Errorf("backup already existing")
	ErrBackupNotFound        = domain.ErrBackupNotFound
)

type backupInmemoryStore struct {
	backups map[string]*domain.Backup
	lock    *sync.RWMutex
}

type backupRepository struct {
	store            *backupInmemoryStore
	chEvents         chan domain.BackupEvent
	externalChEvents chan domain.BackupEvent
	chLock           *sync.Mutex
	done             chan struct{}
	closeOnce        *sync.Once

	log func(format string, a ...interface{})
}

func newBackupRepository() *backupRepository {
	logFn := func(format string, a ...interface{}) {
		format = fmt.Sprintf("backup repository: %s", format)
		log.Debugf(format, a...)
	}
	return &backupRepository{
		store: &backupInmemoryStore{
			backups: make(map[string]*domain.Backup),
			lock:    &sync.RWMutex{},
		},
		chEvents:         make(chan domain.BackupEvent, 10),
		externalChEvents: make(chan domain.BackupEvent, 10),
		chLock:           &sync.Mutex{},
		done:             make(chan struct{}),
		closeOnce:        &sync.Once{},
		log:              logFn,
	}
}

func (r *backupRepository) AddBackup(
	ctx context.Context, backup *domain.Backup,
) error {
	if err := backup.Validate(); err != nil {
		return err
	}

	r.store.lock.Lock()
	defer r.store.lock.Unlock()

	if _, ok := r.store.backups[backup.Fingerprint]; ok {
		return ErrBackupAlreadyExisting
	}

	b := *backup
	r.store.backups[backup.Fingerprint] = &b
	return nil
}

func (r *backupRepository) GetBackup(
	ctx context.Context, fingerprint string,
) (*domain.Backup, error) {
	r.store.lock.RLock()
	defer r.store.lock.RUnlock()

	backup, ok := r.store.backups[fingerprint]
	if !ok {
		return nil, ErrBackupNotFound
	}
	b := *backup
	return &b, nil
}

func (r *backupRepository) ListBackups(
	ctx context.Context,
) ([]*domain.Backup, error) {
	r.store.lock.RLock()
	defer r.store.lock.RUnlock()

	backups := make([]*domain.Backup, 0, len(r.store.backups))
	for _, backup := range r.store.backups {
		b := *backup
		backups = append(backups, &b)
	}
	sort.SliceStable(backups, func(i, j int) bool {
		if backups[i].CreatedAt == backups[j].CreatedAt {
			return backups[i].Fingerprint < backups[j].Fingerprint
		}
		return backups[i].CreatedAt < backups[j].CreatedAt
	})
	return backups, nil
}

func (r *backupRepository) UpdateBackup(
	ctx context.Context, fingerprint string,
	updateFn func(b *domain.Backup) (*domain.Backup, error),
) error {
	r.store.lock.Lock()
	defer r.store.lock.Unlock()

	backup, ok := r.store.backups[fingerprint]
	if !ok {
		return ErrBackupNotFound
	}

	b := *backup
	updatedBackup, err := updateFn(&b)
	if err != nil {
		return err
	}
	if err := updatedBackup.Validate(); err != nil {
		return err
	}

	r.store.backups[fingerprint] = updatedBackup
	return nil
}

func (r *backupRepository) RecordAttempt(
	ctx context.Context, phrase domain.RecoveryPhrase, valid bool,
) (*domain.Backup, error) {
	r.store.lock.Lock()
	defer r.store.lock.Unlock()

	fingerprint := phrase.Fingerprint()
	backup, ok := r.store.backups[fingerprint]
	if !ok {
		newBackup, err := domain.NewBackup(phrase)
		if err != nil {
			return nil, err
		}
		backup = newBackup
	}

	b := *backup
	b.RecordAttempt(valid)
	r.store.backups[fingerprint] = &b

	go r.publishEvent(eventForBackup(&b, valid))

	result := b
	return &result, nil
}

func (r *backupRepository) GetEventChannel() chan domain.BackupEvent {
	return r.externalChEvents
}

func (r *backupRepository) publishEvent(event domain.BackupEvent) {
	r.chLock.Lock()
	defer r.chLock.Unlock()

	select {
	case <-r.done:
		return
	default:
	}

	r.log("publish event %s for backup %s", event.EventType, event.Fingerprint)
	select {
	case r.chEvents <- event:
	case <-r.done:
		return
	}

	// send over channel without blocking in case nobody is listening.
	select {
	case r.externalChEvents <- event:
	default:
	}
}

func (r *backupRepository) reset() {
	r.store.lock.Lock()
	defer r.store.lock.Unlock()

	r.store.backups = make(map[string]*domain.Backup)
}

func (r *backupRepository) close() {
	r.closeOnce.Do(func() {
		close(r.done)

		r.chLock.Lock()
		defer r.chLock.Unlock()

		close(r.chEvents)
		close(r.externalChEvents)
	})
}

func eventForBackup(b *domain.Backup, valid bool) domain.BackupEvent {
	eventType := domain.BackupVerified
	if !valid {
		eventType = domain.BackupAttemptFailed
	}
	return domain.BackupEvent{
		EventType:   eventType,
		Fingerprint: b.Fingerprint,
		Attempts:    b.Attempts,
	}
}
