package domain_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vulpemventures/seedcheck/internal/core/domain"
)

func TestBackup(t *testing.T) {
	t.Run("record attempts", func(t *testing.T) {
		t.Parallel()

		b, err := domain.NewBackup(mnemonic)
		require.NoError(t, err)
		require.NoError(t, b.Validate())
		require.Equal(t, domain.RecoveryPhrase(mnemonic).Fingerprint(), b.Fingerprint)
		require.Equal(t, len(mnemonic), b.WordCount)
		require.False(t, b.Verified)

		b.RecordAttempt(false)
		require.False(t, b.Verified)
		require.Equal(t, uint32(1), b.Attempts)
		require.Equal(t, uint32(1), b.FailedAttempts)
		require.Zero(t, b.VerifiedAt)

		b.RecordAttempt(true)
		require.True(t, b.Verified)
		require.NotZero(t, b.VerifiedAt)
		verifiedAt := b.VerifiedAt

		b.RecordAttempt(false)
		require.True(t, b.Verified)
		require.Equal(t, verifiedAt, b.VerifiedAt)
		require.Equal(t, uint32(3), b.Attempts)
		require.Equal(t, uint32(2), b.FailedAttempts)
	})

	t.Run("invalid", func(t *testing.T) {
		t.Parallel()

		b, err := domain.NewBackup(nil)
		require.Nil(t, b)
		require.EqualError(t, err, domain.ErrPhraseMissingWords.Error())

		require.EqualError(
			t, (&domain.Backup{WordCount: 24}).Validate(),
			domain.ErrBackupMissingFingerprint.Error(),
		)
		require.EqualError(
			t, (&domain.Backup{Fingerprint: "ff"}).Validate(),
			domain.ErrBackupMissingWordCount.Error(),
		)
	})
}
