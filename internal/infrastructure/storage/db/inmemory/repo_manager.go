package inmemory

import (
	"github.com/vulpemventures/seedcheck/internal/core/domain"
	"github.com/vulpemventures/seedcheck/internal/core/ports"
	"github.com/vulpemventures/seedcheck/internal/infrastructure/storage/db/handlers"
)

type repoManager struct {
	sessionRepository *sessionRepository
	backupRepository  *backupRepository

	handlers *handlers.Registry
}

func NewRepoManager() ports.RepoManager {
	rm := &repoManager{
		sessionRepository: newSessionRepository(),
		backupRepository:  newBackupRepository(),
		handlers:          handlers.NewRegistry(),
	}

	go rm.handlers.DispatchSessionEvents(rm.sessionRepository.chEvents)
	go rm.handlers.DispatchBackupEvents(rm.backupRepository.chEvents)

	return rm
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
	rm.sessionRepository.reset()
	rm.backupRepository.reset()
}

func (rm *repoManager) Close() {
	rm.sessionRepository.close()
	rm.backupRepository.close()
}
