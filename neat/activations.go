package neat

import (
	"fmt"
	"math"
)

// ActivationType defines the type for activation functions.
type ActivationType func(x float64) float64

// DefaultActivation is used when a genome carries no activation name.
const DefaultActivation = "tanh"

// ActivationFunctions maps function names to the actual activation functions.
// A network applies exactly one of them to every computing node.
var ActivationFunctions = map[string]ActivationType{
	"tanh":     Tanh,
	"sigmoid":  Sigmoid,
	"relu":     ReLU,
	"identity": Identity,
	"clamped":  Clamped,
	"gaussian": Gaussian,
	"sine":     Sine,
}

// GetActivation retrieves an activation function by name.
func GetActivation(name string) (ActivationType, error) {
	if fn, ok := ActivationFunctions[name]; ok {
		return fn, nil
	}
	return nil, fmt.Errorf("unknown activation function: %s", name)
}

// Tanh activation function.
func Tanh(x float64) float64 {
	return math.Tanh(x)
}

// Sigmoid is the standard logistic function 1 / (1 + exp(-x)).
func Sigmoid(x float64) float64 {
	return 1.0 / (1.0 + math.Exp(-x))
}

// ReLU (Rectified Linear Unit) activation function.
func ReLU(x float64) float64 {
	return math.Max(0, x)
}

// Identity activation function (linear).
func Identity(x float64) float64 {
	return x
}

// Clamped activation function (clamps output between -1 and 1).
func Clamped(x float64) float64 {
	return clamp(x, -1.0, 1.0)
}

// Gaussian activation function.
func Gaussian(x float64) float64 {
	return math.Exp(-x * x / 2.0)
}

// Sine activation function.
func Sine(x float64) float64 {
	return math.Sin(x)
}
