package neat

import (
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"time"

	"github.com/google/uuid"
)

// FitnessFunc is the type for the function provided by the user to evaluate genome fitness.
// It takes the current generation of genomes and should set their Fitness field.
type FitnessFunc func(genomes []*Genome) error

// Population holds the state of the NEAT evolutionary process.
type Population struct {
	Config       *Config
	Genomes      []*Genome // Current generation of genomes
	Tracker      *InnovationTracker
	Reproduction *Reproduction
	Generation   int
	BestGenome   *Genome // Best genome found so far, across all generations
	RunID        string

	reporters ReporterSet
	logger    *slog.Logger
	rng       *rand.Rand
}

// PopulationOption customizes a Population at construction.
type PopulationOption func(*Population)

// WithRand sets the random source used for seeding, selection and mutation.
func WithRand(rng *rand.Rand) PopulationOption {
	return func(p *Population) { p.rng = rng }
}

// WithLogger sets the logger used by the default LogReporter.
func WithLogger(logger *slog.Logger) PopulationOption {
	return func(p *Population) { p.logger = logger }
}

// WithReporter registers an additional Reporter.
func WithReporter(r Reporter) PopulationOption {
	return func(p *Population) { p.reporters.Add(r) }
}

// NewPopulation validates the config and seeds the first generation with
// PopSize minimal genomes.
func NewPopulation(config *Config, opts ...PopulationOption) (*Population, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("failed to create population: %w", err)
	}

	p := &Population{
		Config: config,
		RunID:  uuid.NewString(),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.rng == nil {
		p.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}
	p.logger = p.logger.With("run_id", p.RunID)
	p.reporters.reporters = append([]Reporter{NewLogReporter(p.logger)}, p.reporters.reporters...)

	p.Tracker = NewInnovationTracker(config.Genome.FirstHiddenKey())
	p.Reproduction = NewReproduction(&config.Genome, p.Tracker, p.rng)
	p.Genomes = p.Reproduction.CreateNewPopulation(config.Neat.PopSize)
	return p, nil
}

// Evolve runs one full generational step: evaluate every genome, remember the
// best one seen so far, then replace the population with mutated offspring of
// roulette-selected parents.
func (p *Population) Evolve(fitnessFunc FitnessFunc) error {
	genStartTime := time.Now()
	p.reporters.StartGeneration(p.Generation)

	if err := fitnessFunc(p.Genomes); err != nil {
		return fmt.Errorf("fitness evaluation failed in generation %d: %w", p.Generation, err)
	}

	currentBest := p.findBestGenome()
	if currentBest != nil && (p.BestGenome == nil || currentBest.Fitness > p.BestGenome.Fitness) {
		best := currentBest.Clone(currentBest.Key)
		best.Fitness = currentBest.Fitness
		p.BestGenome = best
		p.reporters.FoundBest(best)
	}

	stats := computeStats(p.Genomes, currentBest)
	stats.RunID = p.RunID
	stats.Generation = p.Generation

	p.Genomes = p.Reproduction.Reproduce(p.Genomes, p.Config.Neat.PopSize)
	p.Generation++

	stats.Duration = time.Since(genStartTime)
	p.reporters.EndGeneration(stats)
	return nil
}

// Run calls Evolve up to MaxGenerations times, stopping early once the best
// genome reaches FitnessThreshold. It returns the best genome seen in any
// generation, which may be nil if the first evaluation failed.
func (p *Population) Run(fitnessFunc FitnessFunc) (*Genome, error) {
	for i := 0; i < p.Config.Neat.MaxGenerations; i++ {
		if err := p.Evolve(fitnessFunc); err != nil {
			return p.BestGenome, err
		}
		if p.BestGenome != nil && p.BestGenome.Fitness >= p.Config.Neat.FitnessThreshold {
			p.logger.Info("fitness threshold met",
				"generation", p.Generation-1,
				"fitness", p.BestGenome.Fitness,
				"threshold", p.Config.Neat.FitnessThreshold,
			)
			return p.BestGenome, nil
		}
	}
	return p.BestGenome, nil
}

// findBestGenome finds the genome with the highest fitness in the current population.
func (p *Population) findBestGenome() *Genome {
	var best *Genome
	maxFitness := math.Inf(-1)

	for _, g := range p.Genomes {
		if g.Fitness > maxFitness {
			maxFitness = g.Fitness
			best = g
		}
	}
	return best
}
