package params

import (
	"bytes"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// ReservedPrefix marks internal extra fields that Save never writes.
const ReservedPrefix = "__"

type loadOptions struct {
	suppressWarnings bool
	logger           logrus.FieldLogger
}

// LoadOption configures Load and LoadFrom.
type LoadOption func(*loadOptions)

// WithSuppressWarnings disables the warning logged for unrecognized fields.
// The fields are still stored in Extra.
func WithSuppressWarnings() LoadOption {
	return func(o *loadOptions) { o.suppressWarnings = true }
}

// WithLogger sets the logger that receives load diagnostics. The default is
// the logrus standard logger.
func WithLogger(l logrus.FieldLogger) LoadOption {
	return func(o *loadOptions) { o.logger = l }
}

// Save writes p to path as a YAML mapping, creating or truncating the file.
func (p *ParameterSet) Save(path string) error {
	fp, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return &SaveError{Destination: path, Err: pkgerrors.Wrapf(err, "failed to open file %s", path)}
	}
	if err := p.encode(fp); err != nil {
		_ = fp.Close()
		return &SaveError{Destination: path, Err: err}
	}
	if err := fp.Close(); err != nil {
		return &SaveError{Destination: path, Err: pkgerrors.Wrapf(err, "failed to close file %s", path)}
	}
	return nil
}

// SaveTo writes p to w as a YAML mapping.
func (p *ParameterSet) SaveTo(w io.Writer) error {
	if err := p.encode(w); err != nil {
		return &SaveError{Destination: "<writer>", Err: err}
	}
	return nil
}

// encode writes a flat mapping of every recognized field, the derived
// iteration count and the non-reserved extras. Keys come out sorted.
func (p *ParameterSet) encode(w io.Writer) error {
	p.RecomputeIterationCount()

	out := make(map[string]any, len(p.Extra)+13)
	for k, v := range p.Extra {
		if strings.HasPrefix(k, ReservedPrefix) {
			continue
		}
		out[k] = extraValue(v)
	}
	for _, b := range p.bindings() {
		out[b.name] = b.target
	}
	out[FieldNumIterations] = p.numIterations

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(out); err != nil {
		return pkgerrors.Wrap(err, "failed to encode config")
	}
	return pkgerrors.Wrap(enc.Close(), "failed to flush config")
}

// extraValue prepares an extra field for encoding. yaml.v3 writes a whole
// float64 such as 1.0 as "1", which reads back as an int, so finite floats are
// emitted as explicit float scalars. Lists and mappings are walked.
func extraValue(v any) any {
	switch x := v.(type) {
	case float64:
		if math.IsInf(x, 0) || math.IsNaN(x) {
			return x
		}
		s := strconv.FormatFloat(x, 'g', -1, 64)
		if !strings.ContainsAny(s, ".e") {
			s += ".0"
		}
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!float", Value: s}
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = extraValue(e)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, e := range x {
			out[k] = extraValue(e)
		}
		return out
	case map[any]any:
		out := make(map[any]any, len(x))
		for k, e := range x {
			out[k] = extraValue(e)
		}
		return out
	default:
		return v
	}
}

// Load overlays the configuration stored at path onto p. Fields missing from
// the file keep their current values.
//
// Keys that p does not recognize are logged as warnings, unless suppressed
// with WithSuppressWarnings, and stored in Extra. On error p is unchanged.
func (p *ParameterSet) Load(path string, opts ...LoadOption) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return &LoadError{Source: path, Err: pkgerrors.Wrapf(err, "failed to read file %s", path)}
	}
	if err := p.decode(path, data, opts); err != nil {
		return &LoadError{Source: path, Err: err}
	}
	return nil
}

// LoadFrom is Load reading from r.
func (p *ParameterSet) LoadFrom(r io.Reader, opts ...LoadOption) error {
	const source = "<reader>"
	data, err := io.ReadAll(r)
	if err != nil {
		return &LoadError{Source: source, Err: pkgerrors.Wrap(err, "failed to read config")}
	}
	if err := p.decode(source, data, opts); err != nil {
		return &LoadError{Source: source, Err: err}
	}
	return nil
}

func (p *ParameterSet) decode(source string, data []byte, opts []LoadOption) error {
	o := loadOptions{logger: logrus.StandardLogger()}
	for _, opt := range opts {
		opt(&o)
	}

	var doc yaml.Node
	if err := yaml.NewDecoder(bytes.NewReader(data)).Decode(&doc); err != nil {
		if err == io.EOF {
			// Empty file: nothing to apply.
			p.RecomputeIterationCount()
			return nil
		}
		return pkgerrors.Wrap(err, "failed to parse config")
	}

	root := &doc
	if root.Kind == yaml.DocumentNode && len(root.Content) > 0 {
		root = root.Content[0]
	}
	if root.Kind == yaml.ScalarNode && root.Tag == "!!null" {
		p.RecomputeIterationCount()
		return nil
	}
	if root.Kind != yaml.MappingNode {
		return pkgerrors.Errorf("line %d: config must be a mapping of field names to values", root.Line)
	}

	// Apply to a copy so a bad value halfway through leaves p untouched.
	work := p.Clone()
	targets := make(map[string]any)
	for _, b := range work.bindings() {
		targets[b.name] = b.target
	}

	for i := 0; i+1 < len(root.Content); i += 2 {
		keyNode, valNode := root.Content[i], root.Content[i+1]
		key := keyNode.Value

		if key == FieldNumIterations {
			continue
		}
		if target, ok := targets[key]; ok {
			// yaml.v3 skips unmarshalers for null, which would keep the old
			// value without notice.
			if valNode.ShortTag() == "!!null" {
				return pkgerrors.Errorf("line %d: field %s has no value", valNode.Line, key)
			}
			if err := valNode.Decode(target); err != nil {
				return pkgerrors.Wrapf(err, "field %s", key)
			}
			continue
		}

		if _, seen := work.Extra[key]; !seen && !o.suppressWarnings {
			o.logger.WithFields(logrus.Fields{
				"field":  key,
				"source": source,
			}).Warnf("Loaded variable '%s' which was not previously present in the config", key)
		}
		var v any
		if err := valNode.Decode(&v); err != nil {
			return pkgerrors.Wrapf(err, "field %s", key)
		}
		work.Extra[key] = v
	}

	work.RecomputeIterationCount()
	*p = *work
	return nil
}
