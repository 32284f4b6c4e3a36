// Package tasks holds fitness tasks that score genomes by running their compiled networks.
package tasks

import (
	"fmt"

	"github.com/baldhumanity/bobbles/neat"
	"github.com/baldhumanity/bobbles/neat/nn"
)

// XORCase is one row of the XOR truth table.
type XORCase struct {
	Inputs []float64
	Target float64
}

// XORCases enumerates every XOR input pair.
var XORCases = []XORCase{
	{Inputs: []float64{0, 0}, Target: 0},
	{Inputs: []float64{0, 1}, Target: 1},
	{Inputs: []float64{1, 0}, Target: 1},
	{Inputs: []float64{1, 1}, Target: 0},
}

// XORError returns the sum of squared errors of the network's first output over all cases.
func XORError(net *nn.FeedForwardNetwork) (float64, error) {
	if net.OutputCount() == 0 {
		return 0, fmt.Errorf("network has no outputs")
	}
	total := 0.0
	for _, c := range XORCases {
		outputs, err := net.Activate(c.Inputs)
		if err != nil {
			return 0, err
		}
		diff := outputs[0] - c.Target
		total += diff * diff
	}
	return total, nil
}

// XORFitness maps a squared error to (0, 1]; it is 1 only for zero error.
func XORFitness(sumSquaredError float64) float64 {
	return 1.0 / (1.0 + sumSquaredError)
}

// EvaluateXOR is a neat.FitnessFunc. It compiles a fresh network for every
// genome and sets its fitness from the XOR error. Compile and activation
// failures are internal errors and abort the evaluation.
func EvaluateXOR(genomes []*neat.Genome) error {
	for _, g := range genomes {
		net, err := nn.CreateFeedForwardNetwork(g)
		if err != nil {
			return fmt.Errorf("failed to create network for genome %d: %w", g.Key, err)
		}
		sse, err := XORError(net)
		if err != nil {
			return fmt.Errorf("failed to evaluate genome %d: %w", g.Key, err)
		}
		g.Fitness = XORFitness(sse)
	}
	return nil
}
