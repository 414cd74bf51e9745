package calibrate

import (
	"os"

	pkgerrors "github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// MarshalYAML writes a sample as a flow pair [height, width].
func (s Sample) MarshalYAML() (interface{}, error) {
	n := &yaml.Node{}
	if err := n.Encode([2]int{s.Height, s.Width}); err != nil {
		return nil, err
	}
	n.Style = yaml.FlowStyle
	return n, nil
}

// UnmarshalYAML reads a sample from a [height, width] pair.
func (s *Sample) UnmarshalYAML(node *yaml.Node) error {
	var hw [2]int
	if err := node.Decode(&hw); err != nil {
		return err
	}
	s.Height, s.Width = hw[0], hw[1]
	return nil
}

// FromPairs converts (height, width) pairs into samples.
func FromPairs(pairs [][2]int) []Sample {
	out := make([]Sample, len(pairs))
	for i, hw := range pairs {
		out[i] = Sample{Height: hw[0], Width: hw[1]}
	}
	return out
}

// LoadSamples reads a YAML list of [height, width] pairs from path.
func LoadSamples(path string) ([]Sample, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to read samples file %s", path)
	}
	var samples []Sample
	if err := yaml.Unmarshal(data, &samples); err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to parse samples file %s", path)
	}
	return samples, nil
}

// SaveSamples writes samples to path as a YAML list of [height, width] pairs.
func SaveSamples(path string, samples []Sample) error {
	if samples == nil {
		samples = []Sample{}
	}
	data, err := yaml.Marshal(samples)
	if err != nil {
		return pkgerrors.Wrap(err, "failed to encode samples")
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return pkgerrors.Wrapf(err, "failed to write samples file %s", path)
	}
	return nil
}
