package neat

import (
	"errors"
	"fmt"
	"math/rand"
	"sort"
)

// ErrInvalidGenome is returned by Validate when a structural invariant is broken.
var ErrInvalidGenome = errors.New("invalid genome")

// Coefficients of the compatibility distance.
const (
	compatibilityDisjointCoefficient = 1.0
	compatibilityWeightCoefficient   = 0.5
)

// Genome represents an individual organism in the population.
// Nodes are an arena keyed by node id; connections refer to nodes by id only.
type Genome struct {
	Key         int               // Unique identifier for this genome.
	Nodes       map[int]*NodeGene // Map node ID -> NodeGene
	Connections []*ConnectionGene // In creation order
	Fitness     float64           // Set once per evaluation, consumed by selection.
	Config      *GenomeConfig
}

// NewGenome creates an empty Genome with the specified key and config reference.
func NewGenome(key int, config *GenomeConfig) *Genome {
	return &Genome{
		Key:    key,
		Nodes:  make(map[int]*NodeGene),
		Config: config,
	}
}

// ConfigureNew initializes a minimal genome: the configured inputs and outputs,
// every input connected to every output with a random weight.
func (g *Genome) ConfigureNew(tracker *InnovationTracker, rng *rand.Rand) {
	for _, key := range g.Config.InputKeys() {
		g.Nodes[key] = NewNodeGene(key, InputNode)
	}
	for _, key := range g.Config.OutputKeys() {
		g.Nodes[key] = NewNodeGene(key, OutputNode)
	}
	for _, ik := range g.Config.InputKeys() {
		for _, ok := range g.Config.OutputKeys() {
			g.AddConnection(tracker, ik, ok, initWeight(g.Config, rng))
		}
	}
}

// AddConnection appends an enabled connection whose innovation comes from the tracker.
// It performs no checks; mutation operators decide what is allowed.
func (g *Genome) AddConnection(tracker *InnovationTracker, from, to int, weight float64) *ConnectionGene {
	key := ConnectionKey{InNodeID: from, OutNodeID: to}
	conn := NewConnectionGene(key, weight, tracker.EdgeInnovation(from, to))
	g.Connections = append(g.Connections, conn)
	return conn
}

// Clone returns a deep copy of the genome under a new key. Fitness is reset.
func (g *Genome) Clone(key int) *Genome {
	child := NewGenome(key, g.Config)
	for k, n := range g.Nodes {
		child.Nodes[k] = n.Copy()
	}
	child.Connections = make([]*ConnectionGene, len(g.Connections))
	for i, c := range g.Connections {
		child.Connections[i] = c.Copy()
	}
	return child
}

// NodeKeys returns all node keys in genome order (ascending key).
func (g *Genome) NodeKeys() []int {
	keys := make([]int, 0, len(g.Nodes))
	for k := range g.Nodes {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}

// Connection returns the connection from -> to, or nil.
func (g *Genome) Connection(from, to int) *ConnectionGene {
	for _, c := range g.Connections {
		if c.Key.InNodeID == from && c.Key.OutNodeID == to {
			return c
		}
	}
	return nil
}

// EnabledConnections counts connections that take part in computation.
func (g *Genome) EnabledConnections() int {
	n := 0
	for _, c := range g.Connections {
		if c.Enabled {
			n++
		}
	}
	return n
}

// Validate checks that every connection names existing nodes, that no
// connection targets an input and that no (from, to) pair appears twice.
func (g *Genome) Validate() error {
	seen := make(map[ConnectionKey]bool, len(g.Connections))
	for _, c := range g.Connections {
		if _, ok := g.Nodes[c.Key.InNodeID]; !ok {
			return fmt.Errorf("%w: connection %d references missing node %d", ErrInvalidGenome, c.Innovation, c.Key.InNodeID)
		}
		to, ok := g.Nodes[c.Key.OutNodeID]
		if !ok {
			return fmt.Errorf("%w: connection %d references missing node %d", ErrInvalidGenome, c.Innovation, c.Key.OutNodeID)
		}
		if to.Kind == InputNode {
			return fmt.Errorf("%w: connection %d targets input node %d", ErrInvalidGenome, c.Innovation, to.Key)
		}
		if seen[c.Key] {
			return fmt.Errorf("%w: duplicate connection %d->%d", ErrInvalidGenome, c.Key.InNodeID, c.Key.OutNodeID)
		}
		seen[c.Key] = true
	}
	return nil
}

// Mutate applies one mutation pass in place. Each operator is gated by its own
// chance, in priority order: weights, add connection, add node. Infeasible
// operators are skipped.
func (g *Genome) Mutate(tracker *InnovationTracker, rng *rand.Rand) {
	if rng.Float64() < g.Config.MutateWeightChance {
		g.mutateWeights(rng)
	}
	if rng.Float64() < g.Config.NewConnectionChance {
		g.mutateAddConnection(tracker, rng)
	}
	if rng.Float64() < g.Config.NewNodeChance {
		g.mutateAddNode(tracker, rng)
	}
}

// mutateWeights nudges or resets the weight of every enabled connection.
func (g *Genome) mutateWeights(rng *rand.Rand) {
	for _, conn := range g.Connections {
		conn.Mutate(g.Config, rng)
	}
}

// mutateAddConnection makes a single attempt at connecting two random nodes.
// Returns true if a connection was added.
func (g *Genome) mutateAddConnection(tracker *InnovationTracker, rng *rand.Rand) bool {
	keys := g.NodeKeys()
	if len(keys) < 2 {
		return false
	}
	from := keys[rng.Intn(len(keys))]
	to := keys[rng.Intn(len(keys))]

	if from == to {
		return false
	}
	if g.Nodes[to].Kind == InputNode {
		return false // Inputs never receive connections
	}
	if g.Connection(from, to) != nil {
		return false // Includes disabled connections: the pair keeps its history
	}
	if createsCycle(g, from, to) {
		return false
	}

	g.AddConnection(tracker, from, to, initWeight(g.Config, rng))
	return true
}

// mutateAddNode splits a random enabled connection in two. The incoming half
// has weight 1.0 and the outgoing half keeps the old weight, so the split is
// neutral for the network output at insertion time. Returns the new node key,
// or -1 if nothing could be split.
func (g *Genome) mutateAddNode(tracker *InnovationTracker, rng *rand.Rand) int {
	enabled := make([]*ConnectionGene, 0, len(g.Connections))
	for _, c := range g.Connections {
		if c.Enabled {
			enabled = append(enabled, c)
		}
	}
	if len(enabled) == 0 {
		return -1
	}

	connToSplit := enabled[rng.Intn(len(enabled))]
	connToSplit.Enabled = false

	newNodeKey := tracker.AllocateNodeID()
	g.Nodes[newNodeKey] = NewNodeGene(newNodeKey, HiddenNode)

	g.AddConnection(tracker, connToSplit.Key.InNodeID, newNodeKey, 1.0)
	g.AddConnection(tracker, newNodeKey, connToSplit.Key.OutNodeID, connToSplit.Weight)
	return newNodeKey
}

// Distance calculates the compatibility distance between this genome and another,
// aligning connections by innovation number.
func (g *Genome) Distance(other *Genome) float64 {
	byInnovation := make(map[int]*ConnectionGene, len(other.Connections))
	for _, c := range other.Connections {
		byInnovation[c.Innovation] = c
	}

	disjointCount := 0
	matchingGeneCount := 0
	weightDiffSum := 0.0
	for _, c1 := range g.Connections {
		if c2, ok := byInnovation[c1.Innovation]; ok {
			weightDiffSum += c1.Distance(c2)
			matchingGeneCount++
		} else {
			disjointCount++
		}
	}
	disjointCount += len(other.Connections) - matchingGeneCount

	n := float64(max(len(g.Connections), len(other.Connections)))
	if n < 1.0 {
		n = 1.0
	}

	compatibility := compatibilityDisjointCoefficient * float64(disjointCount) / n
	if matchingGeneCount > 0 {
		compatibility += compatibilityWeightCoefficient * weightDiffSum / float64(matchingGeneCount)
	}
	return compatibility
}

// createsCycle reports whether adding inNode -> outNode would close a loop,
// i.e. whether inNode is already reachable from outNode over enabled connections.
func createsCycle(genome *Genome, inNode, outNode int) bool {
	if inNode == outNode {
		return true
	}

	visited := make(map[int]bool)
	queue := []int{outNode}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		if current == inNode {
			return true
		}
		if visited[current] {
			continue
		}
		visited[current] = true

		for _, conn := range genome.Connections {
			if conn.Enabled && conn.Key.InNodeID == current {
				queue = append(queue, conn.Key.OutNodeID)
			}
		}
	}
	return false
}
