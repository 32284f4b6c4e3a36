// Package agent drives a host simulation entity from an evolved genome.
//
// Once per tick the host hands the controller a sensor vector and applies the
// returned action vector to its entity. The controller knows nothing about the
// host beyond the vector lengths.
package agent

import (
	"errors"
	"fmt"

	"github.com/baldhumanity/bobbles/neat"
	"github.com/baldhumanity/bobbles/neat/nn"
)

// ErrSensorMismatch is returned by Think when the sensor vector has the wrong length.
var ErrSensorMismatch = errors.New("sensor count mismatch")

// Controller wraps a genome and its compiled network for per-tick evaluation.
type Controller struct {
	Genome  *neat.Genome
	network *nn.FeedForwardNetwork
}

// NewController compiles the genome into a controller.
func NewController(genome *neat.Genome) (*Controller, error) {
	c := &Controller{Genome: genome}
	if err := c.Rebuild(); err != nil {
		return nil, err
	}
	return c, nil
}

// Rebuild recompiles the network. Call it after the genome's topology changed.
func (c *Controller) Rebuild() error {
	net, err := nn.CreateFeedForwardNetwork(c.Genome)
	if err != nil {
		return fmt.Errorf("failed to build network from genome %d: %w", c.Genome.Key, err)
	}
	c.network = net
	return nil
}

// Sensors is the length of the sensor vector Think expects.
func (c *Controller) Sensors() int {
	return c.network.InputCount()
}

// Actions is the length of the action vector Think returns.
func (c *Controller) Actions() int {
	return c.network.OutputCount()
}

// Think processes one tick of sensor inputs and returns the action vector.
func (c *Controller) Think(sensors []float64) ([]float64, error) {
	if len(sensors) != c.Sensors() {
		return nil, fmt.Errorf("%w: expected %d sensors, got %d", ErrSensorMismatch, c.Sensors(), len(sensors))
	}
	actions, err := c.network.Activate(sensors)
	if err != nil {
		return nil, fmt.Errorf("activation failed: %w", err)
	}
	return actions, nil
}
