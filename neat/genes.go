package neat

import (
	"fmt"
	"math/rand"
)

// NodeKind defines the role a node plays in the network.
type NodeKind int

const (
	InputNode NodeKind = iota
	HiddenNode
	OutputNode
)

// String returns the lower-case name of the node kind.
func (k NodeKind) String() string {
	switch k {
	case InputNode:
		return "input"
	case HiddenNode:
		return "hidden"
	case OutputNode:
		return "output"
	default:
		return fmt.Sprintf("NodeKind(%d)", int(k))
	}
}

// --------------------------- NodeGene ---------------------------

// NodeGene represents a node (neuron) in the neural network genome.
type NodeGene struct {
	Key  int // Unique within the genome; hidden keys are unique across the run
	Kind NodeKind
}

// NewNodeGene creates a new NodeGene.
func NewNodeGene(key int, kind NodeKind) *NodeGene {
	return &NodeGene{Key: key, Kind: kind}
}

// String returns a string representation of the NodeGene.
func (ng *NodeGene) String() string {
	return fmt.Sprintf("NodeGene(Key: %d, Kind: %s)", ng.Key, ng.Kind)
}

// Copy creates a copy of the NodeGene.
func (ng *NodeGene) Copy() *NodeGene {
	return &NodeGene{Key: ng.Key, Kind: ng.Kind}
}

// --------------------------- ConnectionGene ---------------------------

// ConnectionKey identifies a connection by its endpoints.
type ConnectionKey struct {
	InNodeID  int
	OutNodeID int
}

// ConnectionGene represents a directed, weighted connection between two nodes.
// Innovation is assigned once from the InnovationTracker and survives disabling.
type ConnectionGene struct {
	Key        ConnectionKey
	Weight     float64
	Enabled    bool
	Innovation int
}

// NewConnectionGene creates an enabled ConnectionGene.
func NewConnectionGene(key ConnectionKey, weight float64, innovation int) *ConnectionGene {
	return &ConnectionGene{
		Key:        key,
		Weight:     weight,
		Enabled:    true,
		Innovation: innovation,
	}
}

// String returns a string representation of the ConnectionGene.
func (cg *ConnectionGene) String() string {
	return fmt.Sprintf("ConnGene(Innov: %d, Key: %d->%d, Weight: %.3f, Enabled: %t)",
		cg.Innovation, cg.Key.InNodeID, cg.Key.OutNodeID, cg.Weight, cg.Enabled)
}

// Copy creates a deep copy of the ConnectionGene.
func (cg *ConnectionGene) Copy() *ConnectionGene {
	return &ConnectionGene{
		Key:        cg.Key,
		Weight:     cg.Weight,
		Enabled:    cg.Enabled,
		Innovation: cg.Innovation,
	}
}

// Mutate perturbs or replaces the weight. Disabled connections are left alone.
func (cg *ConnectionGene) Mutate(config *GenomeConfig, rng *rand.Rand) {
	if !cg.Enabled {
		return
	}
	cg.Weight = mutateWeight(cg.Weight, config, rng)
}

// Distance is the weight difference between two homologous connections,
// plus one when only one of them is enabled.
func (cg *ConnectionGene) Distance(other *ConnectionGene) float64 {
	d := cg.Weight - other.Weight
	if d < 0 {
		d = -d
	}
	if cg.Enabled != other.Enabled {
		d += 1.0
	}
	return d
}

// --------------------------- Attribute Helpers ---------------------------

func initWeight(config *GenomeConfig, rng *rand.Rand) float64 {
	return uniform(rng, -config.WeightInitRange, config.WeightInitRange)
}

func mutateWeight(value float64, config *GenomeConfig, rng *rand.Rand) float64 {
	if rng.Float64() < config.WeightReplaceRate {
		return initWeight(config, rng)
	}
	return value + uniform(rng, -config.WeightMutatePower, config.WeightMutatePower)
}
