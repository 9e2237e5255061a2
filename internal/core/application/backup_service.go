package application

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"github.com/vulpemventures/seedcheck/internal/core/domain"
	"github.com/vulpemventures/seedcheck/internal/core/ports"
	"github.com/vulpemventures/seedcheck/pkg/mnemonic"
)

const (
	maxJanitorInterval = time.Minute
	minJanitorInterval = time.Second
)

var (
	ErrMissingMnemonic       = fmt.Errorf("missing mnemonic")
	ErrInvalidMnemonic       = fmt.Errorf("invalid mnemonic")
	ErrServiceAlreadyStarted = fmt.Errorf("service already started")
)

// BackupService is responsible for operations related to the verification of
// a recovery phrase backup:
//   - Generate a new random mnemonic of the configured length.
//   - Start a validation session for a mnemonic, or for the one kept by the
//     mnemonic store.
//   - Place words into, or remove them from, the blanks of a session.
//   - Reset a session to make a new attempt, or abandon it.
//   - Get the verification status of a mnemonic, or of all known ones.
//
// Whenever a session becomes complete, its outcome is recorded in the backup
// repository. Sessions not updated for longer than the configured ttl are
// dropped by a background janitor.
type BackupService struct {
	repoManager   ports.RepoManager
	randomFactory ports.RandomSourceFactory
	phraseLength  int
	groupSize     int
	sessionTTL    time.Duration

	quitCh chan struct{}
	lock   *sync.Mutex

	log  func(format string, a ...interface{})
	warn func(err error, format string, a ...interface{})
}

func NewBackupService(
	repoManager ports.RepoManager, randomFactory ports.RandomSourceFactory,
	phraseLength, groupSize int, sessionTTL time.Duration,
) *BackupService {
	logFn := func(format string, a ...interface{}) {
		format = fmt.Sprintf("backup service: %s", format)
		log.Debugf(format, a...)
	}
	warnFn := func(err error, format string, a ...interface{}) {
		format = fmt.Sprintf("backup service: %s", format)
		log.WithError(err).Warnf(format, a...)
	}
	return &BackupService{
		repoManager:   repoManager,
		randomFactory: randomFactory,
		phraseLength:  phraseLength,
		groupSize:     groupSize,
		sessionTTL:    sessionTTL,
		lock:          &sync.Mutex{},
		log:           logFn,
		warn:          warnFn,
	}
}

// Start runs the janitor that periodically drops expired sessions.
func (bs *BackupService) Start() error {
	bs.lock.Lock()
	defer bs.lock.Unlock()

	if bs.quitCh != nil {
		return ErrServiceAlreadyStarted
	}
	bs.quitCh = make(chan struct{})

	interval := bs.sessionTTL / 2
	if interval > maxJanitorInterval {
		interval = maxJanitorInterval
	}
	if interval < minJanitorInterval {
		interval = minJanitorInterval
	}

	go bs.runJanitor(interval, bs.quitCh)
	return nil
}

func (bs *BackupService) Stop() {
	bs.lock.Lock()
	defer bs.lock.Unlock()

	if bs.quitCh == nil {
		return
	}
	close(bs.quitCh)
	bs.quitCh = nil
}

func (bs *BackupService) GenSeed(ctx context.Context) ([]string, error) {
	entropySize, err := mnemonic.EntropySizeForWordCount(bs.phraseLength)
	if err != nil {
		return nil, err
	}
	words, err := mnemonic.NewMnemonic(mnemonic.NewMnemonicArgs{
		EntropySize: entropySize,
	})
	if err != nil {
		return nil, err
	}

	domain.MnemonicStore.Set(domain.RecoveryPhrase(words).String())
	return words, nil
}

// StartValidation creates a new session for the given mnemonic. If none is
// given, the one kept by the mnemonic store is used instead.
func (bs *BackupService) StartValidation(
	ctx context.Context, words []string,
) (*SessionInfo, error) {
	if len(words) <= 0 {
		if !domain.MnemonicStore.IsSet() {
			return nil, ErrMissingMnemonic
		}
		words = domain.MnemonicStore.Get()
	}

	phrase, err := bs.parsePhrase(words)
	if err != nil {
		return nil, err
	}

	session, err := domain.NewValidationSession(domain.NewValidationSessionArgs{
		ID:        uuid.New().String(),
		Phrase:    phrase,
		GroupSize: bs.groupSize,
		Random:    bs.randomFactory.NewRandomSource(phrase, 0),
	})
	if err != nil {
		return nil, err
	}

	if err := bs.repoManager.ValidationSessionRepository().AddSession(
		ctx, session,
	); err != nil {
		return nil, err
	}

	sessionsStarted.Inc()
	sessionsActive.Inc()
	bs.log("started session %s", session.ID)

	return newSessionInfo(session), nil
}

func (bs *BackupService) GetSession(
	ctx context.Context, id string,
) (*SessionInfo, error) {
	session, err := bs.repoManager.ValidationSessionRepository().GetSession(ctx, id)
	if err != nil {
		return nil, err
	}
	return newSessionInfo(session), nil
}

// PlaceWord puts the chip identified by position and word into the blank of
// the given group. When this completes the session, the outcome is recorded
// for the backup of the phrase.
func (bs *BackupService) PlaceWord(
	ctx context.Context, id string, position int, word string, group int,
) (*SessionInfo, error) {
	chip := domain.Chip{Position: position, Word: word}
	session, err := bs.repoManager.ValidationSessionRepository().PlaceWord(
		ctx, id, chip, group,
	)
	if err != nil {
		return nil, err
	}

	if session.Step() == domain.StepComplete {
		bs.recordOutcome(ctx, session)
	}

	return newSessionInfo(session), nil
}

func (bs *BackupService) UnplaceWord(
	ctx context.Context, id string, group int,
) (*SessionInfo, error) {
	session, err := bs.repoManager.ValidationSessionRepository().UnplaceWord(
		ctx, id, group,
	)
	if err != nil {
		return nil, err
	}
	return newSessionInfo(session), nil
}

// ResetSession withholds a new set of words and clears all the placements.
// Every attempt draws from a different random source.
func (bs *BackupService) ResetSession(
	ctx context.Context, id string,
) (*SessionInfo, error) {
	repo := bs.repoManager.ValidationSessionRepository()
	session, err := repo.GetSession(ctx, id)
	if err != nil {
		return nil, err
	}

	random := bs.randomFactory.NewRandomSource(session.Phrase, session.Attempt+1)
	session, err = repo.ResetSession(ctx, id, random)
	if err != nil {
		return nil, err
	}

	sessionsReset.Inc()
	bs.log("reset session %s, attempt %d", id, session.Attempt)

	return newSessionInfo(session), nil
}

func (bs *BackupService) AbandonSession(ctx context.Context, id string) error {
	if err := bs.repoManager.ValidationSessionRepository().DeleteSession(
		ctx, id,
	); err != nil {
		return err
	}

	sessionsActive.Dec()
	bs.log("abandoned session %s", id)
	return nil
}

// GetBackupStatus returns whether the given mnemonic has ever been verified.
// A mnemonic never checked before is reported as not verified.
func (bs *BackupService) GetBackupStatus(
	ctx context.Context, words []string,
) (*BackupStatus, error) {
	if len(words) <= 0 {
		if !domain.MnemonicStore.IsSet() {
			return nil, ErrMissingMnemonic
		}
		words = domain.MnemonicStore.Get()
	}

	phrase, err := bs.parsePhrase(words)
	if err != nil {
		return nil, err
	}

	fingerprint := phrase.Fingerprint()
	backup, err := bs.repoManager.BackupRepository().GetBackup(ctx, fingerprint)
	if err != nil {
		if errors.Is(err, domain.ErrBackupNotFound) {
			return &BackupStatus{Fingerprint: fingerprint}, nil
		}
		return nil, err
	}

	info := BackupInfo(*backup)
	return &BackupStatus{
		Fingerprint: fingerprint,
		Verified:    backup.Verified,
		Backup:      &info,
	}, nil
}

func (bs *BackupService) ListBackups(ctx context.Context) ([]BackupInfo, error) {
	backups, err := bs.repoManager.BackupRepository().ListBackups(ctx)
	if err != nil {
		return nil, err
	}

	list := make([]BackupInfo, 0, len(backups))
	for _, b := range backups {
		list = append(list, BackupInfo(*b))
	}
	return list, nil
}

// PruneSessions drops the sessions not updated for longer than the ttl and
// returns how many were dropped.
func (bs *BackupService) PruneSessions(ctx context.Context) (int, error) {
	repo := bs.repoManager.ValidationSessionRepository()
	sessions, err := repo.GetAllSessions(ctx)
	if err != nil {
		return 0, err
	}

	count := 0
	for _, s := range sessions {
		if time.Since(time.Unix(s.UpdatedAt, 0)) <= bs.sessionTTL {
			continue
		}
		if err := repo.DeleteSession(ctx, s.ID); err != nil {
			if !errors.Is(err, domain.ErrSessionNotFound) {
				return count, err
			}
			continue
		}
		sessionsActive.Dec()
		count++
	}
	return count, nil
}

func (bs *BackupService) RegisterHandlerForSessionEvent(
	eventType domain.SessionEventType, handler ports.SessionEventHandler,
) {
	bs.repoManager.RegisterHandlerForSessionEvent(eventType, handler)
}

func (bs *BackupService) RegisterHandlerForBackupEvent(
	eventType domain.BackupEventType, handler ports.BackupEventHandler,
) {
	bs.repoManager.RegisterHandlerForBackupEvent(eventType, handler)
}

func (bs *BackupService) parsePhrase(words []string) (domain.RecoveryPhrase, error) {
	if err := mnemonic.ValidateMnemonic(words, bs.phraseLength); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidMnemonic, err)
	}
	return domain.NewRecoveryPhrase(words)
}

func (bs *BackupService) recordOutcome(
	ctx context.Context, session *domain.ValidationSession,
) {
	valid := session.IsValid()
	sessionsCompleted.WithLabelValues(session.Outcome().String()).Inc()

	backup, err := bs.repoManager.BackupRepository().RecordAttempt(
		ctx, session.Phrase, valid,
	)
	if err != nil {
		bs.warn(err, "failed to record outcome of session %s", session.ID)
		return
	}
	bs.log(
		"session %s completed, valid: %t, backup attempts: %d",
		session.ID, valid, backup.Attempts,
	)
}

func (bs *BackupService) runJanitor(interval time.Duration, quitCh chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-quitCh:
			return
		case <-ticker.C:
			count, err := bs.PruneSessions(context.Background())
			if err != nil {
				bs.warn(err, "failed to prune expired sessions")
				continue
			}
			if count > 0 {
				bs.log("dropped %d expired sessions", count)
			}
		}
	}
}
