package postgresdb

import (
	"context"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/vulpemventures/seedcheck/internal/core/domain"
	"github.com/vulpemventures/seedcheck/internal/core/ports"
	"github.com/vulpemventures/seedcheck/internal/infrastructure/storage/db/handlers"
	"github.com/vulpemventures/seedcheck/internal/infrastructure/storage/db/inmemory"

	_ "github.com/golang-migrate/migrate/v4/source/file"
)

const (
	postgresDriver             = "pgx"
	insecureDataSourceTemplate = "postgresql://%s:%s@%s:%d/%s?sslmode=disable"
)

type DbConfig struct {
	DbUser             string
	DbPassword         string
	DbHost             string
	DbPort             int
	DbName             string
	MigrationSourceURL string
}

type repoManager struct {
	pgxPool *pgxpool.Pool

	sessionRepository inmemory.SessionRepository
	backupRepository  *backupRepositoryPg

	handlers *handlers.Registry
}

// NewRepoManager connects to the postgres db and applies any pending
// migration before returning.
// Validation sessions are never written to the db.
func NewRepoManager(dbConfig DbConfig) (ports.RepoManager, error) {
	dataSource := insecureDataSourceStr(dbConfig)

	pgxPool, err := connect(dataSource)
	if err != nil {
		return nil, fmt.Errorf("connecting to db: %w", err)
	}

	if err = migrateDb(dataSource, dbConfig.MigrationSourceURL); err != nil {
		pgxPool.Close()
		return nil, fmt.Errorf("migrating db: %w", err)
	}

	rm := &repoManager{
		pgxPool:           pgxPool,
		sessionRepository: inmemory.NewValidationSessionRepository(),
		backupRepository:  newBackupRepositoryPg(pgxPool),
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

	rm.pgxPool.Close()
}

func connect(dataSource string) (*pgxpool.Pool, error) {
	return pgxpool.Connect(context.Background(), dataSource)
}

func migrateDb(dataSource, migrationSourceUrl string) error {
	pg := postgres.Postgres{}

	d, err := pg.Open(dataSource)
	if err != nil {
		return err
	}

	m, err := migrate.NewWithDatabaseInstance(
		migrationSourceUrl,
		postgresDriver,
		d,
	)
	if err != nil {
		return err
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return err
	}

	return nil
}

// insecureDataSourceStr converts database configuration params to connection string
func insecureDataSourceStr(dbConfig DbConfig) string {
	return fmt.Sprintf(
		insecureDataSourceTemplate,
		dbConfig.DbUser,
		dbConfig.DbPassword,
		dbConfig.DbHost,
		dbConfig.DbPort,
		dbConfig.DbName,
	)
}
