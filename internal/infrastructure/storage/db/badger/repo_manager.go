package dbbadger

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"
	log "github.com/sirupsen/logrus"
	"github.com/timshannon/badgerhold/v4"
	"github.com/vulpemventures/seedcheck/internal/core/domain"
	"github.com/vulpemventures/seedcheck/internal/core/ports"
	"github.com/vulpemventures/seedcheck/internal/infrastructure/storage/db/handlers"
	"github.com/vulpemventures/seedcheck/internal/infrastructure/storage/db/inmemory"
)

// repoManager holds the badgerhold store of backups and the in-memory store
// of validation sessions in a single data structure.
type repoManager struct {
	sessionRepository inmemory.SessionRepository
	backupRepository  *backupRepository

	handlers *handlers.Registry
}

// NewRepoManager is the factory for creating a new badger implementation
// of the ports.RepoManager interface.
// It takes care of creating the db files on disk (or in-memory if no baseDbDir
// is provided - to be used only for testing purposes), and opening and closing
// the connection to them.
// Validation sessions are never written to disk.
func NewRepoManager(baseDbDir string, logger badger.Logger) (ports.RepoManager, error) {
	var backupDir string
	if len(baseDbDir) > 0 {
		backupDir = filepath.Join(baseDbDir, "backups")
	}

	backupDb, err := createDb(backupDir, logger)
	if err != nil {
		return nil, fmt.Errorf("opening backup db: %w", err)
	}

	rm := &repoManager{
		sessionRepository: inmemory.NewValidationSessionRepository(),
		backupRepository:  newBackupRepository(backupDb),
		handlers:          handlers.NewRegistry(),
	}

	go rm.handlers.DispatchSessionEvents(rm.sessionRepository.Events())
	go rm.handlers.DispatchBackupEvents(rm.backupRepository.chEvents)

	return rm, nil
}

func (rm *repoManager) ValidationSessionRepository() domain.ValidationSessionRepository {
	return rm.sessionRepository
}

func (rm *repoManager) BackupRepository() domain.BackupRepository {
	return rm.backupRepository
}

func (rm *repoManager) RegisterHandlerForSessionEvent(
	eventType domain.SessionEventType, handler ports.SessionEventHandler,
) {
	rm.handlers.AddSessionHandler(eventType, handler)
}

func (rm *repoManager) RegisterHandlerForBackupEvent(
	eventType domain.BackupEventType, handler ports.BackupEventHandler,
) {
	rm.handlers.AddBackupHandler(eventType, handler)
}

func (rm *repoManager) Reset() {
	rm.sessionRepository.Reset()
	rm.backupRepository.reset()
}

func (rm *repoManager) Close() {
	rm.sessionRepository.Close()
	rm.backupRepository.close()
}

func createDb(dbDir string, logger badger.Logger) (*badgerhold.Store, error) {
	isInMemory := len(dbDir) <= 0

	opts := badger.DefaultOptions(dbDir)
	opts.Logger = logger

	if isInMemory {
		opts.InMemory = true
	} else {
		opts.Compression = options.ZSTD
	}

	db, err := badgerhold.Open(badgerhold.Options{
		Encoder:          badgerhold.DefaultEncode,
		Decoder:          badgerhold.DefaultDecode,
		SequenceBandwith: 100,
		Options:          opts,
	})
	if err != nil {
		return nil, err
	}

	if !isInMemory {
		ticker := time.NewTicker(30 * time.Minute)

		go func() {
			for range ticker.C {
				if db.Badger().IsClosed() {
					ticker.Stop()
					return
				}
				if err := db.Badger().RunValueLogGC(0.5); err != nil && err != badger.ErrNoRewrite {
					log.Warnf("garbage collector: %s", err)
				}
			}
		}()
	}

	return db, nil
}
