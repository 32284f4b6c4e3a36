package neat

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/ini.v1"
	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig is wrapped by every configuration validation failure.
var ErrInvalidConfig = errors.New("config error")

// Config stores the configuration parameters for the NEAT algorithm.
type Config struct {
	Neat   NeatConfig   `yaml:"neat" toml:"neat"`
	Genome GenomeConfig `yaml:"genome" toml:"genome"`
}

// NeatConfig holds parameters of the evolutionary loop.
type NeatConfig struct {
	PopSize          int     `ini:"pop_size" yaml:"pop_size" toml:"pop_size"`
	FitnessThreshold float64 `ini:"fitness_threshold" yaml:"fitness_threshold" toml:"fitness_threshold"` // Run stops once the best genome reaches it
	MaxGenerations   int     `ini:"max_generations" yaml:"max_generations" toml:"max_generations"`
}

// GenomeConfig holds parameters specific to the structure and mutation of genomes.
type GenomeConfig struct {
	NumInputs  int    `ini:"num_inputs" yaml:"num_inputs" toml:"num_inputs"`
	NumOutputs int    `ini:"num_outputs" yaml:"num_outputs" toml:"num_outputs"`
	Activation string `ini:"activation" yaml:"activation" toml:"activation"` // One squashing function for the whole network

	// --- Mutation chances, each gated independently per Mutate call ---
	MutateWeightChance  float64 `ini:"mutate_weight_chance" yaml:"mutate_weight_chance" toml:"mutate_weight_chance"`
	NewConnectionChance float64 `ini:"new_connection_chance" yaml:"new_connection_chance" toml:"new_connection_chance"`
	NewNodeChance       float64 `ini:"new_node_chance" yaml:"new_node_chance" toml:"new_node_chance"`

	// --- Connection weight parameters ---
	WeightInitRange   float64 `ini:"weight_init_range" yaml:"weight_init_range" toml:"weight_init_range"`       // New weights are uniform in [-r, r]
	WeightMutatePower float64 `ini:"weight_mutate_power" yaml:"weight_mutate_power" toml:"weight_mutate_power"` // Nudges are uniform in [-p, p]
	WeightReplaceRate float64 `ini:"weight_replace_rate" yaml:"weight_replace_rate" toml:"weight_replace_rate"` // Chance a mutated weight is reset instead of nudged
}

// DefaultConfig returns the configuration used by the XOR experiment.
func DefaultConfig() *Config {
	return &Config{
		Neat: NeatConfig{
			PopSize:          100,
			FitnessThreshold: 0.99,
			MaxGenerations:   100,
		},
		Genome: GenomeConfig{
			NumInputs:           2,
			NumOutputs:          1,
			Activation:          DefaultActivation,
			MutateWeightChance:  0.8,
			NewConnectionChance: 0.5,
			NewNodeChance:       0.1,
			WeightInitRange:     1.0,
			WeightMutatePower:   0.5,
			WeightReplaceRate:   0.01,
		},
	}
}

// LoadConfig loads configuration parameters from a file, starting from DefaultConfig.
// The format is picked by extension: .yaml/.yml, .toml, anything else is read as INI.
func LoadConfig(filePath string) (*Config, error) {
	config := DefaultConfig()

	var err error
	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".yaml", ".yml":
		err = loadYAML(filePath, config)
	case ".toml":
		err = loadTOML(filePath, config)
	default:
		err = loadINI(filePath, config)
	}
	if err != nil {
		return nil, err
	}

	config.Genome.Activation = cleanIniString(config.Genome.Activation)
	if config.Genome.Activation == "" {
		config.Genome.Activation = DefaultActivation
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func loadINI(filePath string, config *Config) error {
	cfg, err := ini.LoadSources(ini.LoadOptions{
		IgnoreInlineComment:         true,
		UnescapeValueCommentSymbols: true,
	}, filePath)
	if err != nil {
		return fmt.Errorf("failed to load config file '%s': %w", filePath, err)
	}

	if err := cfg.Section("NEAT").MapTo(&config.Neat); err != nil {
		return fmt.Errorf("failed to map [NEAT] section: %w", err)
	}
	if err := cfg.Section("DefaultGenome").MapTo(&config.Genome); err != nil {
		return fmt.Errorf("failed to map [DefaultGenome] section: %w", err)
	}
	return nil
}

func loadYAML(filePath string, config *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return fmt.Errorf("failed to read config file '%s': %w", filePath, err)
	}
	if err := yaml.Unmarshal(data, config); err != nil {
		return fmt.Errorf("failed to parse yaml config '%s': %w", filePath, err)
	}
	return nil
}

func loadTOML(filePath string, config *Config) error {
	if _, err := toml.DecodeFile(filePath, config); err != nil {
		return fmt.Errorf("failed to parse toml config '%s': %w", filePath, err)
	}
	return nil
}

// Validate rejects out-of-range values.
func (c *Config) Validate() error {
	if c.Neat.PopSize <= 0 {
		return fmt.Errorf("%w: pop_size must be positive", ErrInvalidConfig)
	}
	if c.Neat.MaxGenerations <= 0 {
		return fmt.Errorf("%w: max_generations must be positive", ErrInvalidConfig)
	}
	return c.Genome.Validate()
}

// Validate rejects out-of-range genome parameters.
func (gc *GenomeConfig) Validate() error {
	if gc.NumInputs <= 0 {
		return fmt.Errorf("%w: num_inputs must be positive", ErrInvalidConfig)
	}
	if gc.NumOutputs <= 0 {
		return fmt.Errorf("%w: num_outputs must be positive", ErrInvalidConfig)
	}
	probs := []struct {
		name  string
		value float64
	}{
		{"mutate_weight_chance", gc.MutateWeightChance},
		{"new_connection_chance", gc.NewConnectionChance},
		{"new_node_chance", gc.NewNodeChance},
		{"weight_replace_rate", gc.WeightReplaceRate},
	}
	for _, p := range probs {
		if !(p.value >= 0 && p.value <= 1) {
			return fmt.Errorf("%w: %s must be between 0 and 1, got %v", ErrInvalidConfig, p.name, p.value)
		}
	}
	if !(gc.WeightInitRange > 0) || math.IsInf(gc.WeightInitRange, 0) {
		return fmt.Errorf("%w: weight_init_range must be a positive number", ErrInvalidConfig)
	}
	if !(gc.WeightMutatePower >= 0) || math.IsInf(gc.WeightMutatePower, 0) {
		return fmt.Errorf("%w: weight_mutate_power must be a non-negative number", ErrInvalidConfig)
	}
	if _, err := GetActivation(gc.Activation); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

// InputKeys returns the node keys of the input nodes in declaration order.
func (gc *GenomeConfig) InputKeys() []int {
	keys := make([]int, gc.NumInputs)
	for i := range keys {
		keys[i] = i
	}
	return keys
}

// OutputKeys returns the node keys of the output nodes in declaration order.
func (gc *GenomeConfig) OutputKeys() []int {
	keys := make([]int, gc.NumOutputs)
	for i := range keys {
		keys[i] = gc.NumInputs + i
	}
	return keys
}

// FirstHiddenKey is the first node key available to split mutations.
func (gc *GenomeConfig) FirstHiddenKey() int {
	return gc.NumInputs + gc.NumOutputs
}

// cleanIniString removes inline comments and trims whitespace from a string read from INI.
func cleanIniString(s string) string {
	if idx := strings.IndexAny(s, "#;"); idx != -1 {
		s = s[:idx]
	}
	return strings.TrimSpace(s)
}
