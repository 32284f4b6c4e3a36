// Package bobbles is a small NeuroEvolution of Augmenting Topologies (NEAT) engine
// used to grow the brains of simulated creatures.
//
// Networks start minimal (every input wired to every output) and grow only through
// mutation: weight perturbation, new connections and connection splits. Structural
// changes are stamped with innovation numbers from a per-run tracker so genomes of
// different shapes stay comparable. There is no crossover.
//
// The engine lives in the neat package, the phenotype compiler in neat/nn.
//
// Basic usage:
//
//	config, err := neat.LoadConfig("path/to/xor.ini")
//	if err != nil {
//		log.Fatalf("Error loading config: %v", err)
//	}
//
//	pop, err := neat.NewPopulation(config)
//	if err != nil {
//		log.Fatalf("Error creating population: %v", err)
//	}
//
//	best, err := pop.Run(tasks.EvaluateXOR)
//	if err != nil {
//		log.Fatalf("Error running evolution: %v", err)
//	}
//	fmt.Printf("best fitness %.4f after %d generations\n", best.Fitness, pop.Generation)
package bobbles
