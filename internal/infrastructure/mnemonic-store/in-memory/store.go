package mnemonic_store

import (
	"strings"

	"github.com/vulpemventures/seedcheck/internal/config"
)

// The plaintext mnemonic lives in the config under this key, meaning it can
// also be provided with the SEEDCHECK_MNEMONIC env var.
const mnemonicKey = "MNEMONIC"

// MnemonicInMemoryStore keeps the phrase of the wallet whose backup is being
// verified. It never touches the disk.
type MnemonicInMemoryStore struct{}

func NewInMemoryMnemonicStore() *MnemonicInMemoryStore {
	return &MnemonicInMemoryStore{}
}

func (s *MnemonicInMemoryStore) Set(mnemonic string) {
	config.Set(mnemonicKey, strings.Join(strings.Fields(mnemonic), " "))
}

func (s *MnemonicInMemoryStore) Unset() {
	config.Unset(mnemonicKey)
}

func (s *MnemonicInMemoryStore) IsSet() bool {
	return len(strings.TrimSpace(config.GetString(mnemonicKey))) > 0
}

func (s *MnemonicInMemoryStore) Get() []string {
	if !s.IsSet() {
		return nil
	}
	return strings.Fields(config.GetString(mnemonicKey))
}
