package domain

import (
	"encoding/hex"
	"fmt"
	"strings"
	"unicode"

	"github.com/zeebo/blake3"
)

const (
	// DefaultPhraseLength is the number of words of the mnemonic generated
	// for a new wallet.
	DefaultPhraseLength = 24
	// DefaultWordGroupSize is the number of contiguous words shown together
	// while verifying a backup. One word per group is withheld.
	DefaultWordGroupSize = 3

	fingerprintContext = "seedcheck recovery phrase fingerprint v1"
)

var (
	ErrPhraseMissingWords   = fmt.Errorf("missing recovery phrase words")
	ErrPhraseInvalidWord    = fmt.Errorf("recovery phrase words must be non-empty lowercase tokens")
	ErrInvalidPhraseLength  = fmt.Errorf("recovery phrase length must be a multiple of the word group size")
	ErrInvalidWordGroupSize = fmt.Errorf("word group size must be greater than zero")
)

// RecoveryPhrase is the ordered list of words encoding a wallet's master
// seed. Wordlist membership is not checked here, that's up to the mnemonic
// service.
type RecoveryPhrase []string

// NewRecoveryPhrase makes sure the given words are non-empty lowercase tokens
// and returns them as a RecoveryPhrase.
func NewRecoveryPhrase(words []string) (RecoveryPhrase, error) {
	if len(words) <= 0 {
		return nil, ErrPhraseMissingWords
	}
	phrase := make(RecoveryPhrase, 0, len(words))
	for _, w := range words {
		if !isLowercaseToken(w) {
			return nil, ErrPhraseInvalidWord
		}
		phrase = append(phrase, w)
	}
	return phrase, nil
}

// Chunk is a contiguous slice of the phrase. StartIndex is the absolute
// position of the first word.
type Chunk struct {
	StartIndex int
	Words      []string
}

// Position returns the absolute position in the phrase of the i-th word of
// the chunk.
func (c Chunk) Position(i int) int {
	return c.StartIndex + i
}

// Chunks splits the phrase into groups of groupSize words.
func (p RecoveryPhrase) Chunks(groupSize int) ([]Chunk, error) {
	if groupSize <= 0 {
		return nil, ErrInvalidWordGroupSize
	}
	if len(p) == 0 || len(p)%groupSize != 0 {
		return nil, ErrInvalidPhraseLength
	}

	chunks := make([]Chunk, 0, len(p)/groupSize)
	for i := 0; i < len(p); i += groupSize {
		chunks = append(chunks, Chunk{
			StartIndex: i,
			Words:      p[i : i+groupSize],
		})
	}
	return chunks, nil
}

// Fingerprint returns a hex encoded blake3 digest identifying the phrase
// without revealing it.
func (p RecoveryPhrase) Fingerprint() string {
	h := blake3.New()
	h.Write([]byte(fingerprintContext))
	h.Write([]byte(p.String()))
	return hex.EncodeToString(h.Sum(nil))
}

func (p RecoveryPhrase) String() string {
	return strings.Join(p, " ")
}

func isLowercaseToken(word string) bool {
	if len(word) <= 0 {
		return false
	}
	for _, r := range word {
		if !unicode.IsLower(r) {
			return false
		}
	}
	return true
}
