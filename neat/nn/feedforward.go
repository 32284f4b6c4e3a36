package nn

import (
	"errors"
	"fmt"

	"github.com/baldhumanity/bobbles/neat"
)

var (
	// ErrInputMismatch is returned by Activate when the input vector has the wrong length.
	ErrInputMismatch = errors.New("input count mismatch")
	// ErrCycle means the enabled connections of a genome are not acyclic.
	ErrCycle = errors.New("cycle in feed-forward genome")
	// ErrDanglingConnection means a connection names a node the genome does not have.
	ErrDanglingConnection = errors.New("connection references unknown node")
)

// incomingEdge is a resolved enabled connection into a node.
type incomingEdge struct {
	Source int // Index into FeedForwardNetwork.Nodes
	Weight float64
}

// neuralNode is the runtime state of one node.
type neuralNode struct {
	Key      int
	Kind     neat.NodeKind
	Value    float64
	Incoming []incomingEdge
}

// FeedForwardNetwork is the compiled, directly executable form of a genome.
// It does not follow later changes to the genome; compile it again after
// the topology changes.
type FeedForwardNetwork struct {
	Nodes          []neuralNode // Dense, in genome order
	ExecutionOrder []int        // Topologically sorted indices, inputs excluded
	InputIndices   []int        // Input node indices in declaration order
	OutputIndices  []int        // Output node indices in genome order

	activation neat.ActivationType
}

// CreateFeedForwardNetwork builds a runnable feed-forward network from a genome.
func CreateFeedForwardNetwork(g *neat.Genome) (*FeedForwardNetwork, error) {
	activationName := neat.DefaultActivation
	if g.Config != nil && g.Config.Activation != "" {
		activationName = g.Config.Activation
	}
	actFn, err := neat.GetActivation(activationName)
	if err != nil {
		return nil, fmt.Errorf("genome %d: %w", g.Key, err)
	}

	// 1. Dense index per node, in genome order.
	keys := g.NodeKeys()
	nodes := make([]neuralNode, len(keys))
	index := make(map[int]int, len(keys))
	net := &FeedForwardNetwork{activation: actFn}
	for i, key := range keys {
		kind := g.Nodes[key].Kind
		nodes[i] = neuralNode{Key: key, Kind: kind}
		index[key] = i
		switch kind {
		case neat.InputNode:
			net.InputIndices = append(net.InputIndices, i)
		case neat.OutputNode:
			net.OutputIndices = append(net.OutputIndices, i)
		}
	}

	// 2. Resolve enabled connections into incoming lists.
	for _, conn := range g.Connections {
		if !conn.Enabled {
			continue
		}
		from, ok := index[conn.Key.InNodeID]
		if !ok {
			return nil, fmt.Errorf("genome %d, connection %d: %w: %d", g.Key, conn.Innovation, ErrDanglingConnection, conn.Key.InNodeID)
		}
		to, ok := index[conn.Key.OutNodeID]
		if !ok {
			return nil, fmt.Errorf("genome %d, connection %d: %w: %d", g.Key, conn.Innovation, ErrDanglingConnection, conn.Key.OutNodeID)
		}
		nodes[to].Incoming = append(nodes[to].Incoming, incomingEdge{Source: from, Weight: conn.Weight})
	}
	net.Nodes = nodes

	// 3. Topological order: outputs first, then anything left over.
	order, err := executionOrder(nodes, net.OutputIndices)
	if err != nil {
		return nil, fmt.Errorf("genome %d: %w", g.Key, err)
	}
	net.ExecutionOrder = order
	return net, nil
}

const (
	unvisited = iota
	inProgress
	done
)

// executionOrder computes a post-order over the dependency graph with an
// explicit work-stack. Roots are visited in the order given, then every
// remaining node in index order, so each non-input node is scheduled once.
func executionOrder(nodes []neuralNode, roots []int) ([]int, error) {
	type frame struct {
		node int
		next int // Next incoming edge to follow
	}

	state := make([]uint8, len(nodes))
	order := make([]int, 0, len(nodes))
	var stack []frame

	visit := func(root int) error {
		if state[root] != unvisited || nodes[root].Kind == neat.InputNode {
			return nil
		}
		state[root] = inProgress
		stack = append(stack[:0], frame{node: root})

		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			incoming := nodes[top.node].Incoming
			if top.next < len(incoming) {
				src := incoming[top.next].Source
				top.next++
				if nodes[src].Kind == neat.InputNode {
					continue // Inputs are seeded, never scheduled
				}
				switch state[src] {
				case done:
					continue
				case inProgress:
					return fmt.Errorf("%w: node %d depends on itself", ErrCycle, nodes[src].Key)
				}
				state[src] = inProgress
				stack = append(stack, frame{node: src})
				continue
			}
			state[top.node] = done
			order = append(order, top.node)
			stack = stack[:len(stack)-1]
		}
		return nil
	}

	for _, root := range roots {
		if err := visit(root); err != nil {
			return nil, err
		}
	}
	for i := range nodes {
		if err := visit(i); err != nil {
			return nil, err
		}
	}
	return order, nil
}

// InputCount is the length Activate expects.
func (net *FeedForwardNetwork) InputCount() int {
	return len(net.InputIndices)
}

// OutputCount is the length of the slice Activate returns.
func (net *FeedForwardNetwork) OutputCount() int {
	return len(net.OutputIndices)
}

// Activate computes the network's output for a given slice of input values.
// The input slice must match the number of input nodes.
func (net *FeedForwardNetwork) Activate(inputs []float64) ([]float64, error) {
	if len(inputs) != len(net.InputIndices) {
		return nil, fmt.Errorf("%w: got %d inputs, network has %d", ErrInputMismatch, len(inputs), len(net.InputIndices))
	}

	for i, idx := range net.InputIndices {
		net.Nodes[idx].Value = inputs[i]
	}

	for _, idx := range net.ExecutionOrder {
		node := &net.Nodes[idx]
		sum := 0.0
		for _, in := range node.Incoming {
			sum += net.Nodes[in.Source].Value * in.Weight
		}
		node.Value = net.activation(sum)
	}

	outputs := make([]float64, len(net.OutputIndices))
	for i, idx := range net.OutputIndices {
		outputs[i] = net.Nodes[idx].Value
	}
	return outputs, nil
}
