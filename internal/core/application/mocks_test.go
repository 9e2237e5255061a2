package application_test

import (
	"strings"
	"sync"

	"github.com/stretchr/testify/mock"
	"github.com/vulpemventures/seedcheck/internal/core/domain"
)

// MnemonicStore
type inMemoryMnemonicStore struct {
	mnemonic []string
	lock     *sync.RWMutex
}

func newInMemoryMnemonicStore() domain.IMnemonicStore {
	return &inMemoryMnemonicStore{
		lock: &sync.RWMutex{},
	}
}

func (s *inMemoryMnemonicStore) Set(mnemonic string) {
	s.lock.Lock()
	defer s.lock.Unlock()

	s.mnemonic = strings.Split(mnemonic, " ")
}

func (s *inMemoryMnemonicStore) Unset() {
	s.lock.Lock()
	defer s.lock.Unlock()

	s.mnemonic = nil
}

func (s *inMemoryMnemonicStore) IsSet() bool {
	s.lock.RLock()
	defer s.lock.RUnlock()

	return len(s.mnemonic) > 0
}

func (s *inMemoryMnemonicStore) Get() []string {
	s.lock.RLock()
	defer s.lock.RUnlock()

	return s.mnemonic
}

// ports.RandomSourceFactory
type mockRandomSourceFactory struct {
	mock.Mock
}

func (m *mockRandomSourceFactory) NewRandomSource(
	phrase domain.RecoveryPhrase, attempt uint32,
) domain.RandomSource {
	args := m.Called(phrase, attempt)
	return args.Get(0).(domain.RandomSource)
}

// domain.RandomSource withholding always the word at the given index of each
// group and never shuffling.
type fixedIndexRandom struct {
	index int
}

func (r fixedIndexRandom) Intn(n int) int {
	if r.index >= n {
		return n - 1
	}
	return r.index
}

func (r fixedIndexRandom) Shuffle(n int, swap func(i, j int)) {}
