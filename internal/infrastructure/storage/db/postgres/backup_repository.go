package postgresdb

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
	log "github.com/sirupsen/logrus"
	"github.com/vulpemventures/seedcheck/internal/core/domain"
)

const (
	//uniqueViolation is a postgres error code for unique constraint violation
	uniqueViolation = "23505"

	backupColumns = `fingerprint, word_count, verified, attempts, failed_attempts,
		created_at, last_attempt_at, verified_at`

	insertBackupQuery = `INSERT INTO backup (` + backupColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	selectBackupQuery = `SELECT ` + backupColumns + ` FROM backup
		WHERE fingerprint = $1`
	selectBackupForUpdateQuery = selectBackupQuery + ` FOR UPDATE`
	selectAllBackupsQuery      = `SELECT ` + backupColumns + ` FROM backup
		ORDER BY created_at, fingerprint`
	updateBackupQuery = `UPDATE backup SET word_count = $2, verified = $3,
		attempts = $4, failed_attempts = $5, created_at = $6,
		last_attempt_at = $7, verified_at = $8
		WHERE fingerprint = $1`
	truncateBackupsQuery = `TRUNCATE TABLE backup`
)

var (
	ErrBackupAlreadyExisting = errors.New("backup already existing")
	ErrBackupNotFound        = domain.ErrBackupNotFound
)

type querier interface {
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

type backupRepositoryPg struct {
	pgxPool          *pgxpool.Pool
	chLock           *sync.Mutex
	chEvents         chan domain.BackupEvent
	externalChEvents chan domain.BackupEvent
	done             chan struct{}
	closeOnce        *sync.Once

	log func(format string, a ...interface{})
}

func NewBackupRepositoryPgImpl(pgxPool *pgxpool.Pool) domain.BackupRepository {
	return newBackupRepositoryPg(pgxPool)
}

func newBackupRepositoryPg(pgxPool *pgxpool.Pool) *backupRepositoryPg {
	logFn := func(format string, a ...interface{}) {
		format = fmt.Sprintf("backup repository: %s", format)
		log.Debugf(format, a...)
	}
	return &backupRepositoryPg{
		pgxPool:          pgxPool,
		chLock:           &sync.Mutex{},
		chEvents:         make(chan domain.BackupEvent, 10),
		externalChEvents: make(chan domain.BackupEvent, 10),
		done:             make(chan struct{}),
		closeOnce:        &sync.Once{},
		log:              logFn,
	}
}

func (b *backupRepositoryPg) AddBackup(
	ctx context.Context, backup *domain.Backup,
) error {
	if err := backup.Validate(); err != nil {
		return err
	}
	return insertBackup(ctx, b.pgxPool, backup)
}

func (b *backupRepositoryPg) GetBackup(
	ctx context.Context, fingerprint string,
) (*domain.Backup, error) {
	return getBackup(ctx, b.pgxPool, selectBackupQuery, fingerprint)
}

func (b *backupRepositoryPg) ListBackups(
	ctx context.Context,
) ([]*domain.Backup, error) {
	rows, err := b.pgxPool.Query(ctx, selectAllBackupsQuery)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	backups := make([]*domain.Backup, 0)
	for rows.Next() {
		backup, err := scanBackup(rows)
		if err != nil {
			return nil, err
		}
		backups = append(backups, backup)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return backups, nil
}

func (b *backupRepositoryPg) UpdateBackup(
	ctx context.Context, fingerprint string,
	updateFn func(b *domain.Backup) (*domain.Backup, error),
) error {
	return b.withTx(ctx, func(tx pgx.Tx) error {
		backup, err := getBackup(ctx, tx, selectBackupForUpdateQuery, fingerprint)
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

		return updateBackup(ctx, tx, updatedBackup)
	})
}

func (b *backupRepositoryPg) RecordAttempt(
	ctx context.Context, phrase domain.RecoveryPhrase, valid bool,
) (*domain.Backup, error) {
	fingerprint := phrase.Fingerprint()

	var backup *domain.Backup
	if err := b.withTx(ctx, func(tx pgx.Tx) error {
		bk, err := getBackup(ctx, tx, selectBackupForUpdateQuery, fingerprint)
		if err != nil {
			if !errors.Is(err, ErrBackupNotFound) {
				return err
			}
			bk, err = domain.NewBackup(phrase)
			if err != nil {
				return err
			}
			bk.RecordAttempt(valid)
			backup = bk
			return insertBackup(ctx, tx, bk)
		}

		bk.RecordAttempt(valid)
		backup = bk
		return updateBackup(ctx, tx, bk)
	}); err != nil {
		return nil, err
	}

	go b.publishEvent(eventForBackup(backup, valid))

	return backup, nil
}

func (b *backupRepositoryPg) GetEventChannel() chan domain.BackupEvent {
	return b.externalChEvents
}

func (b *backupRepositoryPg) withTx(
	ctx context.Context, fn func(tx pgx.Tx) error,
) error {
	tx, err := b.pgxPool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
			b.log("failed to rollback tx: %s", err)
		}
	}()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (b *backupRepositoryPg) publishEvent(event domain.BackupEvent) {
	b.chLock.Lock()
	defer b.chLock.Unlock()

	select {
	case <-b.done:
		return
	default:
	}

	b.log("publish event %s for backup %s", event.EventType, event.Fingerprint)
	select {
	case b.chEvents <- event:
	case <-b.done:
		return
	}

	// send over channel without blocking in case nobody is listening.
	select {
	case b.externalChEvents <- event:
	default:
	}
}

func (b *backupRepositoryPg) reset() {
	if _, err := b.pgxPool.Exec(context.Background(), truncateBackupsQuery); err != nil {
		b.log("failed to truncate backups: %s", err)
	}
}

func (b *backupRepositoryPg) close() {
	b.closeOnce.Do(func() {
		close(b.done)

		b.chLock.Lock()
		defer b.chLock.Unlock()

		close(b.chEvents)
		close(b.externalChEvents)
	})
}

func insertBackup(ctx context.Context, q querier, backup *domain.Backup) error {
	if _, err := q.Exec(
		ctx, insertBackupQuery,
		backup.Fingerprint, backup.WordCount, backup.Verified,
		int64(backup.Attempts), int64(backup.FailedAttempts),
		backup.CreatedAt, backup.LastAttemptAt, backup.VerifiedAt,
	); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return ErrBackupAlreadyExisting
		}
		return err
	}
	return nil
}

func updateBackup(ctx context.Context, q querier, backup *domain.Backup) error {
	_, err := q.Exec(
		ctx, updateBackupQuery,
		backup.Fingerprint, backup.WordCount, backup.Verified,
		int64(backup.Attempts), int64(backup.FailedAttempts),
		backup.CreatedAt, backup.LastAttemptAt, backup.VerifiedAt,
	)
	return err
}

func getBackup(
	ctx context.Context, q querier, query, fingerprint string,
) (*domain.Backup, error) {
	backup, err := scanBackup(q.QueryRow(ctx, query, fingerprint))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrBackupNotFound
		}
		return nil, err
	}
	return backup, nil
}

func scanBackup(row pgx.Row) (*domain.Backup, error) {
	var (
		backup                   domain.Backup
		attempts, failedAttempts int64
	)
	if err := row.Scan(
		&backup.Fingerprint, &backup.WordCount, &backup.Verified,
		&attempts, &failedAttempts,
		&backup.CreatedAt, &backup.LastAttemptAt, &backup.VerifiedAt,
	); err != nil {
		return nil, err
	}
	backup.Attempts = uint32(attempts)
	backup.FailedAttempts = uint32(failedAttempts)
	return &backup, nil
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
