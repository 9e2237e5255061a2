package db_test

// RandomSource always withholding the first word of each group and never
// shuffling the chips.
type firstWordRandom struct{}

func (r firstWordRandom) Intn(n int) int { return 0 }

func (r firstWordRandom) Shuffle(n int, swap func(i, j int)) {}

// RandomSource always withholding the last word of each group.
type lastWordRandom struct{}

func (r lastWordRandom) Intn(n int) int { return n - 1 }

func (r lastWordRandom) Shuffle(n int, swap func(i, j int)) {}
