package handlers

import (
	"sync"

	"github.com/vulpemventures/seedcheck/internal/core/domain"
	"github.com/vulpemventures/seedcheck/internal/core/ports"
)

// Registry is a util type to prevent race conditions when registering or
// retrieving handlers for repository events. It's shared by every repo
// manager implementation.
type Registry struct {
	sessionHandlers map[domain.SessionEventType][]ports.SessionEventHandler
	backupHandlers  map[domain.BackupEventType][]ports.BackupEventHandler
	lock            *sync.RWMutex
}

func NewRegistry() *Registry {
	return &Registry{
		sessionHandlers: make(map[domain.SessionEventType][]ports.SessionEventHandler),
		backupHandlers:  make(map[domain.BackupEventType][]ports.BackupEventHandler),
		lock:            &sync.RWMutex{},
	}
}

func (r *Registry) AddSessionHandler(
	eventType domain.SessionEventType, handler ports.SessionEventHandler,
) {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.sessionHandlers[eventType] = append(r.sessionHandlers[eventType], handler)
}

func (r *Registry) AddBackupHandler(
	eventType domain.BackupEventType, handler ports.BackupEventHandler,
) {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.backupHandlers[eventType] = append(r.backupHandlers[eventType], handler)
}

// DispatchSessionEvents runs the registered handlers for every event received
// from the channel, until it gets closed.
func (r *Registry) DispatchSessionEvents(chEvents <-chan domain.SessionEvent) {
	for event := range chEvents {
		r.lock.RLock()
		handlers := r.sessionHandlers[event.EventType]
		r.lock.RUnlock()

		for i := range handlers {
			handler := handlers[i]
			go handler(event)
		}
	}
}

// DispatchBackupEvents runs the registered handlers for every event received
// from the channel, until it gets closed.
func (r *Registry) DispatchBackupEvents(chEvents <-chan domain.BackupEvent) {
	for event := range chEvents {
		r.lock.RLock()
		handlers := r.backupHandlers[event.EventType]
		r.lock.RUnlock()

		for i := range handlers {
			handler := handlers[i]
			go handler(event)
		}
	}
}
