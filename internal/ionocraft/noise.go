package ionocraft

import (
	"math/rand/v2"
	"sync"

	"gonum.org/v1/gonum/stat/distuv"
)

func seededSource(seed int64) rand.Source {
	return rand.NewPCG(uint64(seed), uint64(seed)^0x9e3779b97f4a7c15)
}

// noise draws zero-mean Gaussian perturbations from a single source.
type noise struct {
	mu  sync.Mutex
	src rand.Source
}

func newNoise(src rand.Source) *noise {
	if src == nil {
		src = rand.NewPCG(rand.Uint64(), rand.Uint64())
	}
	return &noise{src: src}
}

// perturb adds one N(0, std) sample to every element of dst. A zero std
// leaves dst untouched and consumes nothing from the source.
func (n *noise) perturb(dst []float64, std float64) {
	if std == 0 || len(dst) == 0 {
		return
	}
	n.mu.Lock()
	defer n.mu.Unlock()

	dist := distuv.Normal{Mu: 0, Sigma: std, Src: n.src}
	for i := range dst {
		dst[i] += dist.Rand()
	}
}
