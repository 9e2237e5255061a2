package ports

import "github.com/vulpemventures/seedcheck/internal/core/domain"

// RandomSourceFactory is the abstraction for any kind of service intended to
// provide the source of randomness for a validation session. The same phrase
// and attempt are expected to always yield the same draw.
type RandomSourceFactory interface {
	NewRandomSource(
		phrase domain.RecoveryPhrase, attempt uint32,
	) domain.RandomSource
}
