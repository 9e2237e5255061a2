package application_test

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/vulpemventures/seedcheck/internal/core/application"
	"github.com/vulpemventures/seedcheck/internal/core/domain"
	"github.com/vulpemventures/seedcheck/internal/infrastructure/storage/db/inmemory"
)

var (
	ctx          = context.Background()
	phraseLength = 24
	groupSize    = 3
	sessionTTL   = 30 * time.Minute
)

func TestMain(m *testing.M) {
	domain.MnemonicStore = newInMemoryMnemonicStore()

	os.Exit(m.Run())
}

func TestBackupService(t *testing.T) {
	testGenSeed(t)

	testStartValidation(t)

	testSuccessfulValidation(t)

	testFailedValidation(t)

	testResetAndAbandon(t)

	testPruneSessions(t)
}

func newTestService(
	t *testing.T, ttl time.Duration,
) (*application.BackupService, *mockRandomSourceFactory) {
	t.Helper()

	repoManager := inmemory.NewRepoManager()
	t.Cleanup(repoManager.Close)

	randomFactory := &mockRandomSourceFactory{}
	randomFactory.On("NewRandomSource", mock.Anything, uint32(0)).
		Return(fixedIndexRandom{0})
	randomFactory.On("NewRandomSource", mock.Anything, mock.Anything).
		Return(fixedIndexRandom{groupSize - 1})

	svc := application.NewBackupService(
		repoManager, randomFactory, phraseLength, groupSize, ttl,
	)
	return svc, randomFactory
}

func testGenSeed(t *testing.T) {
	t.Run("gen_seed", func(t *testing.T) {
		domain.MnemonicStore.Unset()
		svc, _ := newTestService(t, sessionTTL)

		mnemonic, err := svc.GenSeed(ctx)
		require.NoError(t, err)
		require.Len(t, mnemonic, phraseLength)
		require.True(t, domain.MnemonicStore.IsSet())
		require.Equal(t, mnemonic, domain.MnemonicStore.Get())

		otherMnemonic, err := svc.GenSeed(ctx)
		require.NoError(t, err)
		require.NotEqual(t, mnemonic, otherMnemonic)
	})
}

func testStartValidation(t *testing.T) {
	t.Run("start_validation", func(t *testing.T) {
		svc, randomFactory := newTestService(t, sessionTTL)

		t.Run("invalid", func(t *testing.T) {
			domain.MnemonicStore.Unset()

			session, err := svc.StartValidation(ctx, nil)
			require.ErrorIs(t, err, application.ErrMissingMnemonic)
			require.Nil(t, session)

			mnemonic, err := svc.GenSeed(ctx)
			require.NoError(t, err)

			tests := []struct {
				name     string
				mnemonic []string
			}{
				{"too_short", mnemonic[:12]},
				{"unknown_word", append(append([]string{}, mnemonic[:23]...), "notaword")},
				{"bad_checksum", strings.Fields(strings.Repeat("abandon ", phraseLength))},
			}
			for _, tt := range tests {
				tt := tt
				t.Run(tt.name, func(t *testing.T) {
					session, err := svc.StartValidation(ctx, tt.mnemonic)
					require.ErrorIs(t, err, application.ErrInvalidMnemonic)
					require.Nil(t, session)
				})
			}
		})

		t.Run("valid", func(t *testing.T) {
			mnemonic, err := svc.GenSeed(ctx)
			require.NoError(t, err)

			session, err := svc.StartValidation(ctx, nil)
			require.NoError(t, err)
			require.NotNil(t, session)
			require.NotEmpty(t, session.ID)
			require.Equal(t, domain.StepInitial.String(), session.Step)
			require.Equal(t, domain.OutcomeNone.String(), session.Outcome)
			require.Zero(t, session.Attempt)
			require.Len(t, session.Groups, phraseLength/groupSize)
			require.Len(t, session.Chips, phraseLength/groupSize)

			for i, group := range session.Groups {
				require.False(t, group.Completed)
				require.Len(t, group.Slots, groupSize)
				require.Equal(t, domain.SlotEmpty.String(), group.Slots[0].Kind)
				require.Equal(t, i*groupSize+1, group.Slots[0].Position)
				for j, slot := range group.Slots[1:] {
					require.Equal(t, domain.SlotOrdered.String(), slot.Kind)
					require.Equal(t, mnemonic[i*groupSize+j+1], slot.Word)
				}
			}

			randomFactory.AssertCalled(t, "NewRandomSource", mock.Anything, uint32(0))

			got, err := svc.GetSession(ctx, session.ID)
			require.NoError(t, err)
			require.Equal(t, session.Chips, got.Chips)

			got, err = svc.GetSession(ctx, "unknown")
			require.ErrorIs(t, err, domain.ErrSessionNotFound)
			require.Nil(t, got)
		})
	})
}

func testSuccessfulValidation(t *testing.T) {
	t.Run("successful_validation", func(t *testing.T) {
		svc, _ := newTestService(t, sessionTTL)

		chEvents := make(chan domain.BackupEvent, 1)
		svc.RegisterHandlerForBackupEvent(
			domain.BackupVerified, func(event domain.BackupEvent) {
				chEvents <- event
			},
		)

		mnemonic, err := svc.GenSeed(ctx)
		require.NoError(t, err)

		status, err := svc.GetBackupStatus(ctx, mnemonic)
		require.NoError(t, err)
		require.False(t, status.Verified)
		require.Nil(t, status.Backup)

		session, err := svc.StartValidation(ctx, mnemonic)
		require.NoError(t, err)

		chips := session.Chips
		for i, chip := range chips {
			session, err = svc.PlaceWord(
				ctx, session.ID, chip.Position, chip.Word, chip.Position/groupSize,
			)
			require.NoError(t, err)
			require.Len(t, session.Chips, len(chips)-i-1)
		}
		require.Equal(t, domain.StepComplete.String(), session.Step)
		require.Equal(t, domain.OutcomeSuccess.String(), session.Outcome)
		for _, group := range session.Groups {
			require.True(t, group.Completed)
			require.Equal(t, domain.SlotUnassigned.String(), group.Slots[0].Kind)
		}

		select {
		case event := <-chEvents:
			require.Equal(t, status.Fingerprint, event.Fingerprint)
		case <-time.After(2 * time.Second):
			t.Fatal("timeout waiting for backup verified event")
		}

		status, err = svc.GetBackupStatus(ctx, mnemonic)
		require.NoError(t, err)
		require.True(t, status.Verified)
		require.NotNil(t, status.Backup)
		require.Equal(t, uint32(1), status.Backup.Attempts)

		backups, err := svc.ListBackups(ctx)
		require.NoError(t, err)
		require.Len(t, backups, 1)
	})
}

func testFailedValidation(t *testing.T) {
	t.Run("failed_validation", func(t *testing.T) {
		svc, _ := newTestService(t, sessionTTL)

		mnemonic, err := svc.GenSeed(ctx)
		require.NoError(t, err)

		session, err := svc.StartValidation(ctx, mnemonic)
		require.NoError(t, err)

		chips := session.Chips
		first, second := -1, -1
		for i := range chips {
			for j := i + 1; j < len(chips); j++ {
				if chips[i].Word != chips[j].Word {
					first, second = i, j
					break
				}
			}
			if first >= 0 {
				break
			}
		}
		require.GreaterOrEqual(t, first, 0)

		groupOf := func(i int) int {
			group := chips[i].Position / groupSize
			switch i {
			case first:
				group = chips[second].Position / groupSize
			case second:
				group = chips[first].Position / groupSize
			}
			return group
		}

		for i, chip := range chips {
			session, err = svc.PlaceWord(
				ctx, session.ID, chip.Position, chip.Word, groupOf(i),
			)
			require.NoError(t, err)
		}
		require.Equal(t, domain.StepComplete.String(), session.Step)
		require.Equal(t, domain.OutcomeFailure.String(), session.Outcome)

		status, err := svc.GetBackupStatus(ctx, mnemonic)
		require.NoError(t, err)
		require.False(t, status.Verified)
		require.NotNil(t, status.Backup)
		require.Equal(t, uint32(1), status.Backup.FailedAttempts)

		t.Run("unplace_and_fix", func(t *testing.T) {
			sessionID := session.ID
			group := chips[first].Position / groupSize
			otherGroup := chips[second].Position / groupSize

			session, err := svc.UnplaceWord(ctx, sessionID, group)
			require.NoError(t, err)
			require.Equal(t, domain.StepIncomplete.String(), session.Step)
			session, err = svc.UnplaceWord(ctx, sessionID, otherGroup)
			require.NoError(t, err)
			require.Len(t, session.Chips, 2)

			session, err = svc.UnplaceWord(ctx, sessionID, group)
			require.ErrorIs(t, err, domain.ErrGroupNotCompleted)
			require.Nil(t, session)

			_, err = svc.PlaceWord(
				ctx, sessionID, chips[first].Position, chips[first].Word, -1,
			)
			require.ErrorIs(t, err, domain.ErrInvalidGroup)

			for _, i := range []int{first, second} {
				session, err = svc.PlaceWord(
					ctx, sessionID, chips[i].Position, chips[i].Word,
					chips[i].Position/groupSize,
				)
				require.NoError(t, err)
			}
			require.Equal(t, domain.OutcomeSuccess.String(), session.Outcome)

			status, err := svc.GetBackupStatus(ctx, mnemonic)
			require.NoError(t, err)
			require.True(t, status.Verified)
			require.Equal(t, uint32(2), status.Backup.Attempts)
			require.Equal(t, uint32(1), status.Backup.FailedAttempts)
		})
	})
}

func testResetAndAbandon(t *testing.T) {
	t.Run("reset_and_abandon", func(t *testing.T) {
		svc, randomFactory := newTestService(t, sessionTTL)

		mnemonic, err := svc.GenSeed(ctx)
		require.NoError(t, err)

		session, err := svc.StartValidation(ctx, mnemonic)
		require.NoError(t, err)
		sessionID := session.ID

		chip := session.Chips[0]
		session, err = svc.PlaceWord(
			ctx, session.ID, chip.Position, chip.Word, chip.Position/groupSize,
		)
		require.NoError(t, err)
		require.Equal(t, domain.StepIncomplete.String(), session.Step)

		session, err = svc.PlaceWord(
			ctx, sessionID, chip.Position, chip.Word, chip.Position/groupSize,
		)
		require.ErrorIs(t, err, domain.ErrUnknownChip)
		require.Nil(t, session)

		session, err = svc.ResetSession(ctx, sessionID)
		require.NoError(t, err)
		require.Equal(t, domain.StepInitial.String(), session.Step)
		require.Equal(t, uint32(1), session.Attempt)
		require.Len(t, session.Chips, phraseLength/groupSize)
		for _, group := range session.Groups {
			require.Equal(t, domain.SlotEmpty.String(), group.Slots[groupSize-1].Kind)
		}
		randomFactory.AssertCalled(t, "NewRandomSource", mock.Anything, uint32(1))

		err = svc.AbandonSession(ctx, session.ID)
		require.NoError(t, err)

		err = svc.AbandonSession(ctx, session.ID)
		require.ErrorIs(t, err, domain.ErrSessionNotFound)

		session, err = svc.GetSession(ctx, session.ID)
		require.ErrorIs(t, err, domain.ErrSessionNotFound)
		require.Nil(t, session)
	})
}

func testPruneSessions(t *testing.T) {
	t.Run("prune_sessions", func(t *testing.T) {
		svc, _ := newTestService(t, time.Second)

		mnemonic, err := svc.GenSeed(ctx)
		require.NoError(t, err)

		session, err := svc.StartValidation(ctx, mnemonic)
		require.NoError(t, err)

		count, err := svc.PruneSessions(ctx)
		require.NoError(t, err)
		require.Zero(t, count)

		time.Sleep(2100 * time.Millisecond)

		count, err = svc.PruneSessions(ctx)
		require.NoError(t, err)
		require.Equal(t, 1, count)

		_, err = svc.GetSession(ctx, session.ID)
		require.ErrorIs(t, err, domain.ErrSessionNotFound)

		t.Run("janitor", func(t *testing.T) {
			session, err := svc.StartValidation(ctx, mnemonic)
			require.NoError(t, err)

			require.NoError(t, svc.Start())
			require.ErrorIs(t, svc.Start(), application.ErrServiceAlreadyStarted)
			defer svc.Stop()

			require.Eventually(t, func() bool {
				_, err := svc.GetSession(ctx, session.ID)
				return err != nil
			}, 5*time.Second, 100*time.Millisecond)
		})
	})
}
