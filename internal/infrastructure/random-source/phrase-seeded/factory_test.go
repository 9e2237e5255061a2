package phrase_seeded_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vulpemventures/seedcheck/internal/core/domain"
	phrase_seeded "github.com/vulpemventures/seedcheck/internal/infrastructure/random-source/phrase-seeded"
)

var (
	phrase = domain.RecoveryPhrase{
		"leave", "dice", "fine", "decrease", "dune", "ribbon", "ocean", "earn",
		"lunar", "account", "silver", "admit", "cheap", "fringe", "disorder", "trade",
		"because", "trade", "steak", "clock", "grace", "video", "jacket", "equal",
	}
	salt = bytes.Repeat([]byte{1}, 32)
)

func TestRandomSourceFactory(t *testing.T) {
	t.Run("deterministic", func(t *testing.T) {
		t.Parallel()

		factory, err := phrase_seeded.NewRandomSourceFactory(salt)
		require.NoError(t, err)

		require.Equal(
			t, draw(factory.NewRandomSource(phrase, 0)),
			draw(factory.NewRandomSource(phrase, 0)),
		)
		require.NotEqual(
			t, draw(factory.NewRandomSource(phrase, 0)),
			draw(factory.NewRandomSource(phrase, 1)),
		)
	})

	t.Run("salted", func(t *testing.T) {
		t.Parallel()

		factory, err := phrase_seeded.NewRandomSourceFactory(salt)
		require.NoError(t, err)
		otherFactory, err := phrase_seeded.NewRandomSourceFactory(nil)
		require.NoError(t, err)

		require.NotEqual(
			t, draw(factory.NewRandomSource(phrase, 0)),
			draw(otherFactory.NewRandomSource(phrase, 0)),
		)
	})

	t.Run("invalid", func(t *testing.T) {
		t.Parallel()

		factory, err := phrase_seeded.NewRandomSourceFactory([]byte{1, 2, 3})
		require.Nil(t, factory)
		require.EqualError(t, err, phrase_seeded.ErrInvalidSaltSize.Error())
	})
}

func draw(r domain.RandomSource) []int {
	out := make([]int, 0, 32)
	for i := 0; i < 32; i++ {
		out = append(out, r.Intn(1000))
	}
	return out
}
