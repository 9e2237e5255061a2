package domain

import (
	"context"
	"fmt"
)

const (
	SessionStarted SessionEventType = iota
	SessionWordPlaced
	SessionWordUnplaced
	SessionCompleted
	SessionReset
	SessionDeleted
)

var (
	// ErrSessionNotFound is returned by any repository implementation when
	// the requested session doesn't exist.
	ErrSessionNotFound = fmt.Errorf("session not found")

	sessionTypeString = map[SessionEventType]string{
		SessionStarted:      "SessionStarted",
		SessionWordPlaced:   "SessionWordPlaced",
		SessionWordUnplaced: "SessionWordUnplaced",
		SessionCompleted:    "SessionCompleted",
		SessionReset:        "SessionReset",
		SessionDeleted:      "SessionDeleted",
	}
)

type SessionEventType int

func (t SessionEventType) String() string {
	return sessionTypeString[t]
}

// SessionEvent holds info about an event occured within the repository.
// It never carries the words of the phrase.
type SessionEvent struct {
	EventType  SessionEventType
	SessionID  string
	GroupIndex int
	Step       ValidationStep
	Outcome    ValidationOutcome
	Attempt    uint32
}

// ValidationSessionRepository is the abstraction for any kind of store
// intended to keep the ongoing validation sessions.
type ValidationSessionRepository interface {
	// AddSession stores a new session if not yet existing.
	// Generates a SessionStarted event if successfull.
	AddSession(ctx context.Context, session *ValidationSession) error
	// GetSession returns a copy of the session with the given id, if existing.
	GetSession(ctx context.Context, id string) (*ValidationSession, error)
	// GetAllSessions returns a copy of every stored session.
	GetAllSessions(ctx context.Context) ([]*ValidationSession, error)
	// UpdateSession allows to make multiple changes to the session in a
	// transactional way.
	UpdateSession(
		ctx context.Context, id string,
		updateFn func(s *ValidationSession) (*ValidationSession, error),
	) error
	// PlaceWord places the chip into the given group of the session.
	// Generates a SessionWordPlaced event if successfull, followed by a
	// SessionCompleted one if the session is now complete.
	PlaceWord(
		ctx context.Context, id string, chip Chip, group int,
	) (*ValidationSession, error)
	// UnplaceWord removes the word placed into the given group of the session.
	// Generates a SessionWordUnplaced event if successfull.
	UnplaceWord(
		ctx context.Context, id string, group int,
	) (*ValidationSession, error)
	// ResetSession draws new missing words for the session.
	// Generates a SessionReset event if successfull.
	ResetSession(
		ctx context.Context, id string, random RandomSource,
	) (*ValidationSession, error)
	// DeleteSession removes the session with the given id.
	// Generates a SessionDeleted event if successfull.
	DeleteSession(ctx context.Context, id string) error
	// GetEventChannel returns the channel of SessionEvents.
	GetEventChannel() chan SessionEvent
}
