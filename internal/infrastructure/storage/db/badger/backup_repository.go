package dbbadger

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/dgraph-io/badger/v4"
	log "github.com/sirupsen/logrus"
	"github.com/timshannon/badgerhold/v4"
	"github.com/vulpemventures/seedcheck/internal/core/domain"
)

const maxTxRetries = 5

var (
	ErrBackupAlreadyExisting = fmt.Errorf("backup already existing")
	ErrBackupNotFound        = domain.ErrBackupNotFound
)

type backupRepository struct {
	store            *badgerhold.Store
	chEvents         chan domain.BackupEvent
	externalChEvents chan domain.BackupEvent
	chLock           *sync.Mutex
	done             chan struct{}
	closeOnce        *sync.Once

	log func(format string, a ...interface{})
}

func NewBackupRepository(store *badgerhold.Store) domain.BackupRepository {
	return newBackupRepository(store)
}

func newBackupRepository(store *badgerhold.Store) *backupRepository {
	logFn := func(format string, a ...interface{}) {
		format = fmt.Sprintf("backup repository: %s", format)
		log.Debugf(format, a...)
	}
	return &backupRepository{
		store:            store,
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
	return r.insertBackup(ctx, backup)
}

func (r *backupRepository) GetBackup(
	ctx context.Context, fingerprint string,
) (*domain.Backup, error) {
	return r.getBackup(ctx, fingerprint)
}

func (r *backupRepository) ListBackups(
	ctx context.Context,
) ([]*domain.Backup, error) {
	var backups []domain.Backup
	query := badgerhold.Where("WordCount").Gt(0).SortBy("CreatedAt", "Fingerprint")

	var err error
	if ctx.Value("tx") != nil {
		tx := ctx.Value("tx").(*badger.Txn)
		err = r.store.TxFind(tx, &backups, query)
	} else {
		err = r.store.Find(&backups, query)
	}
	if err != nil {
		return nil, err
	}

	res := make([]*domain.Backup, 0, len(backups))
	for i := range backups {
		b := backups[i]
		res = append(res, &b)
	}
	return res, nil
}

func (r *backupRepository) UpdateBackup(
	ctx context.Context, fingerprint string,
	updateFn func(b *domain.Backup) (*domain.Backup, error),
) error {
	backup, err := r.getBackup(ctx, fingerprint)
	if err != nil {
		return err
	}

	updatedBackup, err := updateFn(backup)
	if err != nil {
		return err
	}
	if err := updatedBackup.Validate(); err != nil {
		return err
	}

	return r.updateBackup(ctx, updatedBackup)
}

// RecordAttempt reads and writes the backup within the same badger
// transaction, retrying in case of conflicts with concurrent writers.
func (r *backupRepository) RecordAttempt(
	ctx context.Context, phrase domain.RecoveryPhrase, valid bool,
) (*domain.Backup, error) {
	fingerprint := phrase.Fingerprint()

	var backup *domain.Backup
	var err error
	for i := 0; i < maxTxRetries; i++ {
		err = r.store.Badger().Update(func(tx *badger.Txn) error {
			txCtx := context.WithValue(ctx, "tx", tx)

			b, err := r.getBackup(txCtx, fingerprint)
			if err != nil {
				if !errors.Is(err, ErrBackupNotFound) {
					return err
				}
				b, err = domain.NewBackup(phrase)
				if err != nil {
					return err
				}
				b.RecordAttempt(valid)
				backup = b
				return r.insertBackup(txCtx, b)
			}

			b.RecordAttempt(valid)
			backup = b
			return r.updateBackup(txCtx, b)
		})
		if !errors.Is(err, badger.ErrConflict) {
			break
		}
		r.log("conflict while recording attempt for %s, retrying", fingerprint)
	}
	if err != nil {
		return nil, err
	}

	go r.publishEvent(eventForBackup(backup, valid))

	return backup, nil
}

func (r *backupRepository) GetEventChannel() chan domain.BackupEvent {
	return r.externalChEvents
}

func (r *backupRepository) insertBackup(
	ctx context.Context, backup *domain.Backup,
) error {
	var err error
	if ctx.Value("tx") != nil {
		tx := ctx.Value("tx").(*badger.Txn)
		err = r.store.TxInsert(tx, backup.Fingerprint, *backup)
	} else {
		err = r.store.Insert(backup.Fingerprint, *backup)
	}
	if err != nil {
		if err == badgerhold.ErrKeyExists {
			return ErrBackupAlreadyExisting
		}
		return err
	}
	return nil
}

func (r *backupRepository) getBackup(
	ctx context.Context, fingerprint string,
) (*domain.Backup, error) {
	var err error
	var backup domain.Backup

	if ctx.Value("tx") != nil {
		tx := ctx.Value("tx").(*badger.Txn)
		err = r.store.TxGet(tx, fingerprint, &backup)
	} else {
		err = r.store.Get(fingerprint, &backup)
	}
	if err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, ErrBackupNotFound
		}
		return nil, err
	}

	return &backup, nil
}

func (r *backupRepository) updateBackup(
	ctx context.Context, backup *domain.Backup,
) error {
	if ctx.Value("tx") != nil {
		tx := ctx.Value("tx").(*badger.Txn)
		return r.store.TxUpdate(tx, backup.Fingerprint, *backup)
	}
	return r.store.Update(backup.Fingerprint, *backup)
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
	if err := r.store.Badger().DropAll(); err != nil {
		r.log("failed to drop backups: %s", err)
	}
}

func (r *backupRepository) close() {
	r.closeOnce.Do(func() {
		close(r.done)

		r.chLock.Lock()
		defer r.chLock.Unlock()

		r.store.Close()
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
