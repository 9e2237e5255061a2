package mnemonic

import (
	"fmt"
	"strings"

	"github.com/tyler-smith/go-bip39"
)

const (
	defaultEntropySize = 256
)

var (
	ErrInvalidEntropySize = fmt.Errorf(
		"entropy size must be a multiple of 32 in the range [128,256]",
	)
	ErrMissingMnemonic  = fmt.Errorf("missing mnemonic")
	ErrInvalidWordCount = fmt.Errorf("mnemonic must be made of 12, 15, 18, 21 or 24 words")
	ErrUnexpectedLength = fmt.Errorf("unexpected mnemonic length")
	ErrUnknownWord      = fmt.Errorf("mnemonic contains a word not in the wordlist")
	ErrInvalidChecksum  = fmt.Errorf("mnemonic checksum is invalid")

	entropySizeByWordCount = map[int]uint32{
		12: 128, 15: 160, 18: 192, 21: 224, 24: 256,
	}
)

type NewMnemonicArgs struct {
	EntropySize uint32
}

func (a NewMnemonicArgs) validate() error {
	if a.EntropySize > 0 {
		if a.EntropySize < 128 || a.EntropySize > 256 || a.EntropySize%32 != 0 {
			return ErrInvalidEntropySize
		}
	}
	return nil
}

// NewMnemonic returns a new mnemonic as a list of words:
//   - EntropySize: 256 -> 24-words mnemonic.
//   - EntropySize: 128 -> 12-words mnemonic.
func NewMnemonic(args NewMnemonicArgs) ([]string, error) {
	if err := args.validate(); err != nil {
		return nil, err
	}
	if args.EntropySize == 0 {
		args.EntropySize = defaultEntropySize
	}

	entropy, err := bip39.NewEntropy(int(args.EntropySize))
	if err != nil {
		return nil, err
	}
	mnemonic, err := bip39.NewMnemonic(entropy)
	if err != nil {
		return nil, err
	}
	return strings.Split(mnemonic, " "), nil
}

// ValidateMnemonic makes sure the given words are a valid BIP-39 mnemonic of
// the english wordlist. If wordCount is not zero, the mnemonic must be made
// of exactly that number of words.
func ValidateMnemonic(words []string, wordCount int) error {
	if len(words) <= 0 {
		return ErrMissingMnemonic
	}
	if _, ok := entropySizeByWordCount[len(words)]; !ok {
		return ErrInvalidWordCount
	}
	if wordCount > 0 && len(words) != wordCount {
		return fmt.Errorf(
			"%w: got %d words, expected %d", ErrUnexpectedLength, len(words), wordCount,
		)
	}
	for i, w := range words {
		if _, ok := bip39.GetWordIndex(w); !ok {
			return fmt.Errorf("%w: word #%d", ErrUnknownWord, i+1)
		}
	}
	if !bip39.IsMnemonicValid(strings.Join(words, " ")) {
		return ErrInvalidChecksum
	}
	return nil
}

// EntropySizeForWordCount returns the entropy size in bits producing a
// mnemonic of the given number of words.
func EntropySizeForWordCount(wordCount int) (uint32, error) {
	size, ok := entropySizeByWordCount[wordCount]
	if !ok {
		return 0, ErrInvalidWordCount
	}
	return size, nil
}

// ParseMnemonic splits a space separated mnemonic into its words, lowering
// and trimming them.
func ParseMnemonic(mnemonic string) []string {
	return strings.Fields(strings.ToLower(strings.TrimSpace(mnemonic)))
}
