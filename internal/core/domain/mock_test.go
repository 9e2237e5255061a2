package domain_test

// RandomSource returning the given indexes in order and never shuffling.
type fixedRandom struct {
	indexes []int
	next    int
}

func newFixedRandom(indexes ...int) *fixedRandom {
	return &fixedRandom{indexes: indexes}
}

func (r *fixedRandom) Intn(n int) int {
	i := r.indexes[r.next%len(r.indexes)] % n
	r.next++
	return i
}

func (r *fixedRandom) Shuffle(n int, swap func(i, j int)) {}
