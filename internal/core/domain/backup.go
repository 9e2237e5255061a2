package domain

import (
	"fmt"
	"time"
)

var (
	ErrBackupMissingFingerprint = fmt.Errorf("missing backup fingerprint")
	ErrBackupMissingWordCount   = fmt.Errorf("missing backup word count")
)

// Backup keeps track of the verification attempts made for a recovery phrase.
// The phrase is referenced by its fingerprint only.
type Backup struct {
	Fingerprint    string
	WordCount      int
	Verified       bool
	Attempts       uint32
	FailedAttempts uint32
	CreatedAt      int64
	LastAttemptAt  int64
	VerifiedAt     int64
}

// NewBackup returns a new, not yet verified, Backup for the given phrase.
func NewBackup(phrase RecoveryPhrase) (*Backup, error) {
	if len(phrase) <= 0 {
		return nil, ErrPhraseMissingWords
	}
	return &Backup{
		Fingerprint: phrase.Fingerprint(),
		WordCount:   len(phrase),
		CreatedAt:   time.Now().Unix(),
	}, nil
}

// RecordAttempt registers the result of a complete validation session. Once
// verified, a backup stays verified even if later attempts fail.
func (b *Backup) RecordAttempt(valid bool) {
	now := time.Now().Unix()
	b.Attempts++
	b.LastAttemptAt = now
	if !valid {
		b.FailedAttempts++
		return
	}
	if !b.Verified {
		b.Verified = true
		b.VerifiedAt = now
	}
}

// Validate returns an error if the backup misses any mandatory field.
func (b *Backup) Validate() error {
	if len(b.Fingerprint) <= 0 {
		return ErrBackupMissingFingerprint
	}
	if b.WordCount <= 0 {
		return ErrBackupMissingWordCount
	}
	return nil
}
