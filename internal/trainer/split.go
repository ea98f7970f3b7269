package trainer

import (
	"math"
	"math/rand/v2"
)

// Split shuffles row indices with a seeded PCG source and puts
// ceil(testFraction*n) of them in the test partition.
func Split(n int, testFraction float64, seed uint64) (train, test []int) {
	perm := rand.New(rand.NewPCG(seed, seed)).Perm(n)
	nTest := int(math.Ceil(testFraction * float64(n)))
	nTest = min(max(nTest, 0), n)
	return perm[nTest:], perm[:nTest]
}
