// Package nnet encloses feed-forward ReLU networks: every layer output
// is propagated as a superposition enclosure of the network inputs, so
// the output bounds are valid for all inputs in the given domains.
package nnet

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/speakeasy-api/superpose"
	"github.com/speakeasy-api/superpose/enclosure"
)

// Layer is one dense layer: Weights has one row per neuron, one column
// per input of the layer. Activation is "relu" or "linear" (default).
type Layer struct {
	Weights    [][]float64 `yaml:"weights"`
	Bias       []float64   `yaml:"bias"`
	Activation string      `yaml:"activation"`
}

// Network is a feed-forward network description, decodable from YAML.
type Network struct {
	Inputs int     `yaml:"inputs"`
	Layers []Layer `yaml:"layers"`
}

// Load decodes and validates a network from YAML.
func Load(r io.Reader) (*Network, error) {
	var n Network
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&n); err != nil {
		return nil, fmt.Errorf("decoding network: %w", err)
	}
	if err := n.Validate(); err != nil {
		return nil, err
	}
	return &n, nil
}

// Validate checks layer shape consistency.
func (n *Network) Validate() error {
	if n.Inputs < 1 {
		return fmt.Errorf("network needs at least one input, got %d", n.Inputs)
	}
	if len(n.Layers) == 0 {
		return fmt.Errorf("network needs at least one layer")
	}
	width := n.Inputs
	for li, l := range n.Layers {
		if len(l.Weights) == 0 {
			return fmt.Errorf("layer %d has no neurons", li)
		}
		if len(l.Bias) != len(l.Weights) {
			return fmt.Errorf("layer %d has %d bias entries for %d neurons", li, len(l.Bias), len(l.Weights))
		}
		for ni, row := range l.Weights {
			if len(row) != width {
				return fmt.Errorf("layer %d neuron %d has %d weights, expected %d", li, ni, len(row), width)
			}
		}
		switch l.Activation {
		case "", "linear", "relu":
		default:
			return fmt.Errorf("layer %d has unknown activation %q", li, l.Activation)
		}
		width = len(l.Weights)
	}
	return nil
}

// Outputs returns the network output width.
func (n *Network) Outputs() int {
	return len(n.Layers[len(n.Layers)-1].Weights)
}

// Enclose propagates the input domains through the network and returns
// the output enclosure variables, one per output neuron. The returned
// model can export per-variable step matrices for cut generation.
func (n *Network) Enclose(domains []superpose.Interval, opts enclosure.Options) ([]*enclosure.Var, *enclosure.Model, error) {
	if len(domains) != n.Inputs {
		return nil, nil, fmt.Errorf("got %d input domains for %d inputs", len(domains), n.Inputs)
	}
	mod, err := enclosure.New(n.Inputs, opts)
	if err != nil {
		return nil, nil, err
	}
	cur := make([]*enclosure.Var, n.Inputs)
	for i, dom := range domains {
		cur[i], err = mod.Var(i, dom)
		if err != nil {
			return nil, nil, err
		}
	}

	for li, l := range n.Layers {
		next := make([]*enclosure.Var, len(l.Weights))
		for ni, row := range l.Weights {
			v, err := enclosure.Affine(cur, row, l.Bias[ni])
			if err != nil {
				return nil, nil, fmt.Errorf("layer %d neuron %d: %w", li, ni, err)
			}
			if l.Activation == "relu" {
				v, err = enclosure.Relu(v)
				if err != nil {
					return nil, nil, fmt.Errorf("layer %d neuron %d: %w", li, ni, err)
				}
			}
			next[ni] = v
		}
		cur = next
	}
	return cur, mod, nil
}

// Bounds propagates the input domains and returns one bound interval per
// output neuron.
func (n *Network) Bounds(domains []superpose.Interval, opts enclosure.Options) ([]superpose.Interval, error) {
	outs, _, err := n.Enclose(domains, opts)
	if err != nil {
		return nil, err
	}
	bounds := make([]superpose.Interval, len(outs))
	for i, v := range outs {
		bounds[i], err = v.Bound()
		if err != nil {
			return nil, err
		}
	}
	return bounds, nil
}
