package domain

// IMnemonicStore defines the methods a store storing a mnemonic in plaintext
// must implement to either set, unset or get it.
type IMnemonicStore interface {
	Set(mnemonic string)
	Unset()
	IsSet() bool
	Get() []string
}

// RandomSource is the source of randomness used to pick the withheld words of
// a validation session and to shuffle them. *math/rand.Rand satisfies it.
type RandomSource interface {
	Intn(n int) int
	Shuffle(n int, swap func(i, j int))
}

var MnemonicStore IMnemonicStore
