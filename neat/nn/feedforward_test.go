package nn

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baldhumanity/bobbles/neat"
)

type edge struct {
	from, to int
	weight   float64
}

// buildGenome creates a 2-input, 1-output genome (keys 0, 1 -> 2) with the
// given extra hidden nodes and connections.
func buildGenome(t *testing.T, activation string, hidden []int, edges []edge) *neat.Genome {
	t.Helper()
	cfg := neat.DefaultConfig().Genome
	cfg.Activation = activation

	g := neat.NewGenome(1, &cfg)
	g.Nodes[0] = neat.NewNodeGene(0, neat.InputNode)
	g.Nodes[1] = neat.NewNodeGene(1, neat.InputNode)
	g.Nodes[2] = neat.NewNodeGene(2, neat.OutputNode)
	for _, k := range hidden {
		g.Nodes[k] = neat.NewNodeGene(k, neat.HiddenNode)
	}
	tracker := neat.NewInnovationTracker(cfg.FirstHiddenKey())
	for _, e := range edges {
		g.AddConnection(tracker, e.from, e.to, e.weight)
	}
	return g
}

func activate(t *testing.T, net *FeedForwardNetwork, inputs ...float64) float64 {
	t.Helper()
	out, err := net.Activate(inputs)
	require.NoError(t, err)
	require.Len(t, out, 1)
	return out[0]
}

// requireTopological checks that every computing node runs after its non-input sources.
func requireTopological(t *testing.T, net *FeedForwardNetwork) {
	t.Helper()
	position := make(map[int]int, len(net.ExecutionOrder))
	for i, idx := range net.ExecutionOrder {
		_, dup := position[idx]
		require.False(t, dup, "node index %d scheduled twice", idx)
		position[idx] = i
	}
	for i, n := range net.Nodes {
		if n.Kind == neat.InputNode {
			require.NotContains(t, position, i)
			continue
		}
		require.Contains(t, position, i, "node %d not scheduled", n.Key)
		for _, in := range n.Incoming {
			if net.Nodes[in.Source].Kind == neat.InputNode {
				continue
			}
			require.Less(t, position[in.Source], position[i])
		}
	}
}

func TestActivateMinimalNetwork(t *testing.T) {
	g := buildGenome(t, "tanh", nil, []edge{{0, 2, 0.6}, {1, 2, -0.3}})

	net, err := CreateFeedForwardNetwork(g)
	require.NoError(t, err)

	assert.Equal(t, 2, net.InputCount())
	assert.Equal(t, 1, net.OutputCount())
	assert.InDelta(t, 0.0, activate(t, net, 0, 0), 1e-12)
	assert.InDelta(t, math.Tanh(0.6), activate(t, net, 1, 0), 1e-12)
	assert.InDelta(t, math.Tanh(-0.3), activate(t, net, 0, 1), 1e-12)
	assert.InDelta(t, math.Tanh(0.3), activate(t, net, 1, 1), 1e-12)
}

func TestActivateUsesConfiguredActivation(t *testing.T) {
	g := buildGenome(t, "sigmoid", nil, []edge{{0, 2, 0.6}, {1, 2, -0.3}})

	net, err := CreateFeedForwardNetwork(g)
	require.NoError(t, err)

	assert.InDelta(t, 0.5, activate(t, net, 0, 0), 1e-12)
	assert.InDelta(t, 1/(1+math.Exp(-0.6)), activate(t, net, 1, 0), 1e-12)
}

func TestCreateFeedForwardNetworkActivationFallback(t *testing.T) {
	g := buildGenome(t, "", nil, []edge{{0, 2, 1}})
	net, err := CreateFeedForwardNetwork(g)
	require.NoError(t, err)
	assert.InDelta(t, math.Tanh(1), activate(t, net, 1, 0), 1e-12)

	g.Config = nil
	net, err = CreateFeedForwardNetwork(g)
	require.NoError(t, err)
	assert.InDelta(t, math.Tanh(1), activate(t, net, 1, 0), 1e-12)

	g = buildGenome(t, "softsign", nil, []edge{{0, 2, 1}})
	_, err = CreateFeedForwardNetwork(g)
	assert.Error(t, err)
}

func TestActivateWithEachRegisteredActivation(t *testing.T) {
	tests := []struct {
		name string
		in   float64
		want float64
	}{
		{"tanh", 0.7, math.Tanh(0.7)},
		{"sigmoid", 0.7, 1 / (1 + math.Exp(-0.7))},
		{"relu", -0.7, 0},
		{"relu", 0.7, 0.7},
		{"identity", -2.5, -2.5},
		{"clamped", 3, 1},
		{"clamped", -3, -1},
		{"clamped", 0.4, 0.4},
		{"gaussian", 0, 1},
		{"gaussian", 2, math.Exp(-2)},
		{"sine", math.Pi / 2, 1},
	}
	covered := make(map[string]bool)
	for _, tt := range tests {
		covered[tt.name] = true
		t.Run(tt.name, func(t *testing.T) {
			g := buildGenome(t, tt.name, nil, []edge{{0, 2, 1}})
			net, err := CreateFeedForwardNetwork(g)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, activate(t, net, tt.in, 0), 1e-12)
		})
	}
	for name := range neat.ActivationFunctions {
		assert.True(t, covered[name], "activation %q has no case", name)
	}
}

func TestActivateRejectsWrongInputCount(t *testing.T) {
	g := buildGenome(t, "tanh", nil, []edge{{0, 2, 1}})
	net, err := CreateFeedForwardNetwork(g)
	require.NoError(t, err)

	for _, inputs := range [][]float64{nil, {1}, {1, 2, 3}} {
		_, err := net.Activate(inputs)
		assert.ErrorIs(t, err, ErrInputMismatch)
	}
}

func TestDisabledConnectionsAreIgnored(t *testing.T) {
	g := buildGenome(t, "tanh", nil, []edge{{0, 2, 0.6}, {1, 2, -0.3}})
	g.Connections[1].Enabled = false

	net, err := CreateFeedForwardNetwork(g)
	require.NoError(t, err)

	assert.InDelta(t, 0.0, activate(t, net, 0, 1), 1e-12)
	assert.InDelta(t, math.Tanh(0.6), activate(t, net, 1, 1), 1e-12)
}

func TestOutputWithoutIncomingIsActivatedZero(t *testing.T) {
	g := buildGenome(t, "tanh", nil, nil)

	net, err := CreateFeedForwardNetwork(g)
	require.NoError(t, err)

	assert.Equal(t, 0.0, activate(t, net, 5, -5))
}

func TestHiddenChain(t *testing.T) {
	g := buildGenome(t, "tanh", []int{3}, []edge{{0, 3, 2}, {3, 2, 0.5}, {1, 2, 1}})

	net, err := CreateFeedForwardNetwork(g)
	require.NoError(t, err)
	requireTopological(t, net)

	want := math.Tanh(0.5*math.Tanh(2) + 1)
	assert.InDelta(t, want, activate(t, net, 1, 1), 1e-12)
}

func TestDiamondSchedulesEachNodeOnce(t *testing.T) {
	g := buildGenome(t, "identity", []int{3, 4, 5}, []edge{
		{0, 3, 1}, {0, 4, 2}, {3, 5, 1}, {4, 5, 1}, {5, 2, 1}, {1, 5, 0.5},
	})

	net, err := CreateFeedForwardNetwork(g)
	require.NoError(t, err)
	requireTopological(t, net)

	assert.Len(t, net.ExecutionOrder, 4)
	assert.InDelta(t, 3.5, activate(t, net, 1, 1), 1e-12)
}

func TestUnreachableHiddenNodeIsScheduled(t *testing.T) {
	g := buildGenome(t, "tanh", []int{3}, []edge{{0, 3, 1}, {1, 2, 1}})

	net, err := CreateFeedForwardNetwork(g)
	require.NoError(t, err)
	requireTopological(t, net)

	assert.Contains(t, net.ExecutionOrder, 3)
	assert.InDelta(t, math.Tanh(1), activate(t, net, 1, 1), 1e-12)
}

func TestCreateFeedForwardNetworkRejectsCycles(t *testing.T) {
	tests := []struct {
		name   string
		hidden []int
		edges  []edge
	}{
		{"two node loop", []int{3, 4}, []edge{{0, 3, 1}, {3, 4, 1}, {4, 3, 1}, {4, 2, 1}}},
		{"self loop", []int{3}, []edge{{0, 3, 1}, {3, 3, 1}, {3, 2, 1}}},
		{"loop through output", []int{3}, []edge{{0, 2, 1}, {2, 3, 1}, {3, 2, 1}}},
		{"unreachable loop", []int{3, 4}, []edge{{0, 2, 1}, {3, 4, 1}, {4, 3, 1}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := buildGenome(t, "tanh", tt.hidden, tt.edges)
			_, err := CreateFeedForwardNetwork(g)
			assert.ErrorIs(t, err, ErrCycle)
		})
	}
}

func TestDisabledEdgeBreaksCycle(t *testing.T) {
	g := buildGenome(t, "tanh", []int{3, 4}, []edge{{0, 3, 1}, {3, 4, 1}, {4, 3, 1}, {4, 2, 1}})
	g.Connections[2].Enabled = false

	net, err := CreateFeedForwardNetwork(g)
	require.NoError(t, err)
	requireTopological(t, net)
}

func TestCreateFeedForwardNetworkRejectsDanglingConnection(t *testing.T) {
	g := buildGenome(t, "tanh", nil, []edge{{0, 2, 1}, {9, 2, 1}})
	_, err := CreateFeedForwardNetwork(g)
	assert.ErrorIs(t, err, ErrDanglingConnection)

	g = buildGenome(t, "tanh", nil, []edge{{0, 7, 1}})
	_, err = CreateFeedForwardNetwork(g)
	assert.ErrorIs(t, err, ErrDanglingConnection)
}

func TestMutatedGenomesCompileInTopologicalOrder(t *testing.T) {
	cfg := neat.DefaultConfig().Genome
	cfg.NumInputs = 3
	cfg.NumOutputs = 2
	cfg.MutateWeightChance = 1
	cfg.NewConnectionChance = 0.6
	cfg.NewNodeChance = 0.4

	for seed := int64(1); seed <= 10; seed++ {
		rng := rand.New(rand.NewSource(seed))
		tracker := neat.NewInnovationTracker(cfg.FirstHiddenKey())
		g := neat.NewGenome(int(seed), &cfg)
		g.ConfigureNew(tracker, rng)

		for step := 0; step < 60; step++ {
			g.Mutate(tracker, rng)
			require.NoError(t, g.Validate())

			net, err := CreateFeedForwardNetwork(g)
			require.NoError(t, err, "seed %d step %d", seed, step)
			requireTopological(t, net)

			inputs := []float64{rng.Float64(), rng.Float64(), rng.Float64()}
			first, err := net.Activate(inputs)
			require.NoError(t, err)
			second, err := net.Activate(inputs)
			require.NoError(t, err)
			require.Equal(t, first, second)
			require.Len(t, first, 2)
		}
	}
}
