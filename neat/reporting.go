package neat

import (
	"log/slog"
	"time"

	"gonum.org/v1/gonum/stat"
)

// GenerationStats summarizes one evaluated generation.
type GenerationStats struct {
	RunID           string
	Generation      int
	PopulationSize  int
	TotalFitness    float64
	BestFitness     float64
	MeanFitness     float64
	StdevFitness    float64
	MeanNodes       float64
	MeanConnections float64       // Enabled connections only
	MeanDistance    float64       // Mean compatibility distance to the generation champion
	Duration        time.Duration // Evaluation plus reproduction
}

// Reporter receives advisory notifications from the evolution loop.
type Reporter interface {
	StartGeneration(generation int)
	EndGeneration(stats GenerationStats)
	FoundBest(genome *Genome)
}

// ReporterSet fans notifications out to every registered Reporter.
type ReporterSet struct {
	reporters []Reporter
}

// Add registers a reporter.
func (rs *ReporterSet) Add(r Reporter) {
	rs.reporters = append(rs.reporters, r)
}

// StartGeneration forwards to every registered reporter.
func (rs *ReporterSet) StartGeneration(generation int) {
	for _, r := range rs.reporters {
		r.StartGeneration(generation)
	}
}

// EndGeneration forwards to every registered reporter.
func (rs *ReporterSet) EndGeneration(stats GenerationStats) {
	for _, r := range rs.reporters {
		r.EndGeneration(stats)
	}
}

// FoundBest forwards to every registered reporter.
func (rs *ReporterSet) FoundBest(genome *Genome) {
	for _, r := range rs.reporters {
		r.FoundBest(genome)
	}
}

// LogReporter writes generation summaries to a structured logger. Attach the
// run id to the logger (logger.With) to correlate records across runs.
type LogReporter struct {
	logger *slog.Logger
}

// NewLogReporter creates a LogReporter. A nil logger means slog.Default().
func NewLogReporter(logger *slog.Logger) *LogReporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogReporter{logger: logger}
}

// StartGeneration logs the generation index at debug level.
func (lr *LogReporter) StartGeneration(generation int) {
	lr.logger.Debug("generation started", "generation", generation)
}

// EndGeneration logs the generation summary.
func (lr *LogReporter) EndGeneration(s GenerationStats) {
	lr.logger.Info("generation finished",
		"generation", s.Generation,
		"total_fitness", s.TotalFitness,
		"best_fitness", s.BestFitness,
		"mean_fitness", s.MeanFitness,
		"stdev_fitness", s.StdevFitness,
		"mean_nodes", s.MeanNodes,
		"mean_connections", s.MeanConnections,
		"mean_distance", s.MeanDistance,
		"duration", s.Duration,
	)
}

// FoundBest logs the size and fitness of a new champion.
func (lr *LogReporter) FoundBest(g *Genome) {
	lr.logger.Info("new best genome",
		"key", g.Key,
		"fitness", g.Fitness,
		"nodes", len(g.Nodes),
		"connections", g.EnabledConnections(),
	)
}

// StatisticsReporter keeps every generation summary in memory.
type StatisticsReporter struct {
	History []GenerationStats
	Bests   []*Genome
}

// StartGeneration is a no-op.
func (sr *StatisticsReporter) StartGeneration(int) {}

// EndGeneration appends the summary to History.
func (sr *StatisticsReporter) EndGeneration(s GenerationStats) {
	sr.History = append(sr.History, s)
}

// FoundBest appends the champion to Bests.
func (sr *StatisticsReporter) FoundBest(g *Genome) {
	sr.Bests = append(sr.Bests, g)
}

// BestFitnesses returns the best fitness of each recorded generation.
func (sr *StatisticsReporter) BestFitnesses() []float64 {
	out := make([]float64, len(sr.History))
	for i, s := range sr.History {
		out[i] = s.BestFitness
	}
	return out
}

// computeStats summarizes evaluated genomes. champion may be nil.
func computeStats(genomes []*Genome, champion *Genome) GenerationStats {
	s := GenerationStats{PopulationSize: len(genomes)}
	if len(genomes) == 0 {
		return s
	}

	fitnesses := make([]float64, len(genomes))
	var nodes, conns, dist float64
	for i, g := range genomes {
		fitnesses[i] = g.Fitness
		nodes += float64(len(g.Nodes))
		conns += float64(g.EnabledConnections())
		if champion != nil {
			dist += g.Distance(champion)
		}
	}
	n := float64(len(genomes))

	s.TotalFitness = Sum(fitnesses)
	s.BestFitness = MaxFloat(fitnesses)
	if len(fitnesses) > 1 {
		s.MeanFitness, s.StdevFitness = stat.MeanStdDev(fitnesses, nil)
	} else {
		s.MeanFitness = fitnesses[0]
	}
	s.MeanNodes = nodes / n
	s.MeanConnections = conns / n
	s.MeanDistance = dist / n
	return s
}
