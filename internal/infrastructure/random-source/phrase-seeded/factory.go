package phrase_seeded

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	mathrand "math/rand"

	"github.com/vulpemventures/seedcheck/internal/core/domain"
	"github.com/vulpemventures/seedcheck/internal/core/ports"
	"github.com/zeebo/blake3"
)

const (
	saltSize   = 32
	seedDomain = "seedcheck validation session seed v1"
)

var (
	ErrInvalidSaltSize = fmt.Errorf("salt must be exactly %d bytes", saltSize)
)

type randomSourceFactory struct {
	salt []byte
}

// NewRandomSourceFactory returns a factory seeding math/rand generators from
// the blake3 digest of salt, phrase and attempt. A random salt is generated
// if none is given.
func NewRandomSourceFactory(salt []byte) (ports.RandomSourceFactory, error) {
	if len(salt) <= 0 {
		salt = make([]byte, saltSize)
		if _, err := rand.Read(salt); err != nil {
			return nil, fmt.Errorf("generating salt: %w", err)
		}
	}
	if len(salt) != saltSize {
		return nil, ErrInvalidSaltSize
	}
	return &randomSourceFactory{append([]byte{}, salt...)}, nil
}

func (f *randomSourceFactory) NewRandomSource(
	phrase domain.RecoveryPhrase, attempt uint32,
) domain.RandomSource {
	return mathrand.New(mathrand.NewSource(f.seed(phrase, attempt)))
}

func (f *randomSourceFactory) seed(
	phrase domain.RecoveryPhrase, attempt uint32,
) int64 {
	attemptBytes := make([]byte, 4)
	binary.BigEndian.PutUint32(attemptBytes, attempt)

	h := blake3.New()
	h.Write([]byte(seedDomain))
	h.Write(f.salt)
	h.Write([]byte(phrase.String()))
	h.Write(attemptBytes)
	digest := h.Sum(nil)

	return int64(binary.LittleEndian.Uint64(digest[:8]))
}
