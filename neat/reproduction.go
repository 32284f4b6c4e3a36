package neat

import (
	"math"
	"math/rand"
)

// selectionFloor keeps the roulette range non-empty when total fitness is tiny.
const selectionFloor = 0.1

// Reproduction handles the creation of new genomes, either from scratch or by
// cloning and mutating a parent chosen by roulette-wheel selection.
type Reproduction struct {
	Config        *GenomeConfig
	Tracker       *InnovationTracker
	NextGenomeKey int           // State for the next genome key
	Ancestors     map[int][]int // Map genome key -> parent keys (for tracking lineage)
	rng           *rand.Rand
}

// NewReproduction creates a new reproduction manager.
func NewReproduction(config *GenomeConfig, tracker *InnovationTracker, rng *rand.Rand) *Reproduction {
	return &Reproduction{
		Config:        config,
		Tracker:       tracker,
		NextGenomeKey: 1, // Start genome keys at 1
		Ancestors:     make(map[int][]int),
		rng:           rng,
	}
}

// getNextKey gets the next available genome key and increments the internal counter.
func (r *Reproduction) getNextKey() int {
	key := r.NextGenomeKey
	r.NextGenomeKey++
	return key
}

// CreateNewGenome returns a freshly seeded minimal genome with no parents.
func (r *Reproduction) CreateNewGenome() *Genome {
	key := r.getNextKey()
	g := NewGenome(key, r.Config)
	g.ConfigureNew(r.Tracker, r.rng)
	r.Ancestors[key] = []int{}
	return g
}

// CreateNewPopulation creates an initial population of structurally identical genomes.
func (r *Reproduction) CreateNewPopulation(popSize int) []*Genome {
	genomes := make([]*Genome, 0, popSize)
	for i := 0; i < popSize; i++ {
		genomes = append(genomes, r.CreateNewGenome())
	}
	return genomes
}

// maxSelectionMisses bounds the redraws for one slot when a tiny total
// fitness leaves most of the roulette range empty.
const maxSelectionMisses = 1000

// Reproduce builds the next generation of popSize genomes from the evaluated
// ones. Parents are drawn with probability proportional to fitness; each child
// is a mutated clone. When total fitness is not positive or not finite the
// distribution is degenerate and every slot is filled with a fresh minimal
// genome instead. A slot whose draws keep missing also gets a fresh genome.
func (r *Reproduction) Reproduce(genomes []*Genome, popSize int) []*Genome {
	fitnesses := make([]float64, len(genomes))
	for i, g := range genomes {
		fitnesses[i] = g.Fitness
	}
	totalFitness := Sum(fitnesses)
	degenerate := len(genomes) == 0 || !(totalFitness > 0) || math.IsInf(totalFitness, 0)

	ancestors := make(map[int][]int, popSize)
	next := make([]*Genome, 0, popSize)
	misses := 0
	for len(next) < popSize {
		if degenerate || misses >= maxSelectionMisses {
			child := r.CreateNewGenome()
			ancestors[child.Key] = []int{}
			next = append(next, child)
			misses = 0
			continue
		}

		pick := r.rng.Float64() * math.Max(totalFitness, selectionFloor)
		idx := SelectIndex(fitnesses, pick)
		if idx < 0 {
			misses++
			continue // pick fell past the total, only possible below the floor
		}
		misses = 0

		parent := genomes[idx]
		child := parent.Clone(r.getNextKey())
		child.Mutate(r.Tracker, r.rng)
		ancestors[child.Key] = []int{parent.Key}
		next = append(next, child)
	}
	r.Ancestors = ancestors
	return next
}

// SelectIndex scans fitnesses, accumulating them until the running sum exceeds
// pick, and returns that index. It returns -1 if the scan ends first.
func SelectIndex(fitnesses []float64, pick float64) int {
	current := 0.0
	for i, f := range fitnesses {
		current += f
		if current > pick {
			return i
		}
	}
	return -1
}
