package neat

import "sync"

// InnovationTracker is the historical registry of structural changes for one run.
// The same (from, to) edge always maps to the same innovation id, no matter which
// genome creates it, and hidden node ids are never reused.
//
// A tracker is created once per run and never reset. It is safe to share between
// goroutines, although the engine itself mutates genomes from a single goroutine.
type InnovationTracker struct {
	mu             sync.Mutex
	nextInnovation int
	nextNodeID     int
	history        map[ConnectionKey]int
}

// NewInnovationTracker creates a tracker whose node ids start at firstNodeID.
// firstNodeID must be past every node key used by seed genomes.
func NewInnovationTracker(firstNodeID int) *InnovationTracker {
	return &InnovationTracker{
		nextNodeID: firstNodeID,
		history:    make(map[ConnectionKey]int),
	}
}

// EdgeInnovation returns the innovation id of the edge (from, to), allocating
// the next id the first time the edge is seen in this run.
func (t *InnovationTracker) EdgeInnovation(from, to int) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	key := ConnectionKey{InNodeID: from, OutNodeID: to}
	if id, ok := t.history[key]; ok {
		return id
	}
	id := t.nextInnovation
	t.history[key] = id
	t.nextInnovation++
	return id
}

// AllocateNodeID returns a fresh node id and advances the node counter.
func (t *InnovationTracker) AllocateNodeID() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	id := t.nextNodeID
	t.nextNodeID++
	return id
}

// NextInnovation reports the id the next new edge will receive.
func (t *InnovationTracker) NextInnovation() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.nextInnovation
}

// NextNodeID reports the id the next split node will receive.
func (t *InnovationTracker) NextNodeID() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.nextNodeID
}
