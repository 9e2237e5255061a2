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
	ErrSessionAlreadyExisting = fmt.Errorf("session already existing")
	ErrSessionNotFound        = domain.ErrSessionNotFound
)

type sessionInmemoryStore struct {
	sessions map[string]*domain.ValidationSession
	lock     *sync.RWMutex
}

// sessionRepository keeps sessions in memory only since they carry the
// plaintext phrase. It's used by every repo manager implementation.
type sessionRepository struct {
	store            *sessionInmemoryStore
	chEvents         chan domain.SessionEvent
	externalChEvents chan domain.SessionEvent
	chLock           *sync.Mutex
	done             chan struct{}
	closeOnce        *sync.Once

	log func(format string, a ...interface{})
}

// SessionRepository is the in-memory ValidationSessionRepository shared by
// all repo managers, exposing the hooks they need to dispatch events and
// release resources.
type SessionRepository interface {
	domain.ValidationSessionRepository
	Events() <-chan domain.SessionEvent
	Reset()
	Close()
}

func NewValidationSessionRepository() SessionRepository {
	return newSessionRepository()
}

func newSessionRepository() *sessionRepository {
	logFn := func(format string, a ...interface{}) {
		format = fmt.Sprintf("session repository: %s", format)
		log.Debugf(format, a...)
	}
	return &sessionRepository{
		store: &sessionInmemoryStore{
			sessions: make(map[string]*domain.ValidationSession),
			lock:     &sync.RWMutex{},
		},
		chEvents:         make(chan domain.SessionEvent, 10),
		externalChEvents: make(chan domain.SessionEvent, 10),
		chLock:           &sync.Mutex{},
		done:             make(chan struct{}),
		closeOnce:        &sync.Once{},
		log:              logFn,
	}
}

func (r *sessionRepository) AddSession(
	ctx context.Context, session *domain.ValidationSession,
) error {
	r.store.lock.Lock()
	defer r.store.lock.Unlock()

	if _, ok := r.store.sessions[session.ID]; ok {
		return ErrSessionAlreadyExisting
	}

	r.store.sessions[session.ID] = session.Clone()

	go r.publishEvents(eventForSession(domain.SessionStarted, session, -1))

	return nil
}

func (r *sessionRepository) GetSession(
	ctx context.Context, id string,
) (*domain.ValidationSession, error) {
	r.store.lock.RLock()
	defer r.store.lock.RUnlock()

	session, ok := r.store.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return session.Clone(), nil
}

func (r *sessionRepository) GetAllSessions(
	ctx context.Context,
) ([]*domain.ValidationSession, error) {
	r.store.lock.RLock()
	defer r.store.lock.RUnlock()

	sessions := make([]*domain.ValidationSession, 0, len(r.store.sessions))
	for _, s := range r.store.sessions {
		sessions = append(sessions, s.Clone())
	}
	sort.SliceStable(sessions, func(i, j int) bool {
		return sessions[i].CreatedAt < sessions[j].CreatedAt
	})
	return sessions, nil
}

func (r *sessionRepository) UpdateSession(
	ctx context.Context, id string,
	updateFn func(s *domain.ValidationSession) (*domain.ValidationSession, error),
) error {
	_, err := r.updateSession(id, updateFn)
	return err
}

func (r *sessionRepository) PlaceWord(
	ctx context.Context, id string, chip domain.Chip, group int,
) (*domain.ValidationSession, error) {
	session, err := r.updateSession(
		id, func(s *domain.ValidationSession) (*domain.ValidationSession, error) {
			if err := s.Place(chip, group); err != nil {
				return nil, err
			}
			return s, nil
		},
	)
	if err != nil {
		return nil, err
	}

	events := []domain.SessionEvent{
		eventForSession(domain.SessionWordPlaced, session, group),
	}
	if session.Step() == domain.StepComplete {
		events = append(
			events, eventForSession(domain.SessionCompleted, session, group),
		)
	}
	go r.publishEvents(events...)

	return session, nil
}

func (r *sessionRepository) UnplaceWord(
	ctx context.Context, id string, group int,
) (*domain.ValidationSession, error) {
	session, err := r.updateSession(
		id, func(s *domain.ValidationSession) (*domain.ValidationSession, error) {
			if err := s.Unplace(group); err != nil {
				return nil, err
			}
			return s, nil
		},
	)
	if err != nil {
		return nil, err
	}

	go r.publishEvents(eventForSession(domain.SessionWordUnplaced, session, group))

	return session, nil
}

func (r *sessionRepository) ResetSession(
	ctx context.Context, id string, random domain.RandomSource,
) (*domain.ValidationSession, error) {
	session, err := r.updateSession(
		id, func(s *domain.ValidationSession) (*domain.ValidationSession, error) {
			if err := s.Reset(random); err != nil {
				return nil, err
			}
			return s, nil
		},
	)
	if err != nil {
		return nil, err
	}

	go r.publishEvents(eventForSession(domain.SessionReset, session, -1))

	return session, nil
}

func (r *sessionRepository) DeleteSession(ctx context.Context, id string) error {
	r.store.lock.Lock()
	defer r.store.lock.Unlock()

	session, ok := r.store.sessions[id]
	if !ok {
		return ErrSessionNotFound
	}
	delete(r.store.sessions, id)

	go r.publishEvents(eventForSession(domain.SessionDeleted, session, -1))

	return nil
}

func (r *sessionRepository) GetEventChannel() chan domain.SessionEvent {
	return r.externalChEvents
}

func (r *sessionRepository) Events() <-chan domain.SessionEvent {
	return r.chEvents
}

func (r *sessionRepository) Reset() {
	r.reset()
}

func (r *sessionRepository) Close() {
	r.close()
}

func (r *sessionRepository) updateSession(
	id string,
	updateFn func(s *domain.ValidationSession) (*domain.ValidationSession, error),
) (*domain.ValidationSession, error) {
	r.store.lock.Lock()
	defer r.store.lock.Unlock()

	session, ok := r.store.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}

	updatedSession, err := updateFn(session.Clone())
	if err != nil {
		return nil, err
	}

	r.store.sessions[id] = updatedSession
	return updatedSession.Clone(), nil
}

func (r *sessionRepository) publishEvents(events ...domain.SessionEvent) {
	r.chLock.Lock()
	defer r.chLock.Unlock()

	select {
	case <-r.done:
		return
	default:
	}

	for _, event := range events {
		r.log("publish event %s for session %s", event.EventType, event.SessionID)
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
}

func (r *sessionRepository) reset() {
	r.store.lock.Lock()
	defer r.store.lock.Unlock()

	r.store.sessions = make(map[string]*domain.ValidationSession)
}

func (r *sessionRepository) close() {
	r.closeOnce.Do(func() {
		close(r.done)

		r.chLock.Lock()
		defer r.chLock.Unlock()

		close(r.chEvents)
		close(r.externalChEvents)
	})
}

func eventForSession(
	eventType domain.SessionEventType, s *domain.ValidationSession, group int,
) domain.SessionEvent {
	return domain.SessionEvent{
		EventType:  eventType,
		SessionID:  s.ID,
		GroupIndex: group,
		Step:       s.Step(),
		Outcome:    s.Outcome(),
		Attempt:    s.Attempt,
	}
}
