package ensemble

import (
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"
)

// weightFloor is the smallest row weight a noise draw may produce. Draws at
// or below it are clamped so the positive-weight invariant of datasets holds.
const weightFloor = 1e-6

// WeightNoise produces the weight perturbation streams used by Wagging.
//
// Member must return a fresh draw source for the given member index, and the
// same index must always yield the same stream, so a fixed configuration
// trains the same ensemble twice.
type WeightNoise interface {
	Member(i int) distuv.Rander
}

// NormalNoise draws row weights from Normal(Mean, StdDev), the classical
// wagging scheme. Every member derives its own PCG stream from Seed and the
// member index, which keeps the draws independent across members and stable
// across runs.
type NormalNoise struct {
	Mean   float64
	StdDev float64
	Seed   uint64
}

// Member returns the Gaussian draw source for member i.
func (n NormalNoise) Member(i int) distuv.Rander {
	return distuv.Normal{
		Mu:    n.Mean,
		Sigma: n.StdDev,
		Src:   rand.NewPCG(n.Seed, uint64(i)),
	}
}
