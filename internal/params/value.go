package params

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// IntPair is an inclusive (min, max) integer range, serialized as a two-element sequence.
type IntPair [2]int

// FloatPair is a (min, max) floating point range, serialized as a two-element sequence.
type FloatPair [2]float64

// MarshalYAML writes the pair in flow style, e.g. [40, 50].
func (p IntPair) MarshalYAML() (interface{}, error) {
	return flowSequence([2]int(p))
}

// MarshalYAML writes the pair in flow style, e.g. [0.65, 0.1].
func (p FloatPair) MarshalYAML() (interface{}, error) {
	return flowSequence([2]float64(p))
}

func flowSequence(v interface{}) (*yaml.Node, error) {
	n := &yaml.Node{}
	if err := n.Encode(v); err != nil {
		return nil, err
	}
	n.Style = yaml.FlowStyle
	return n, nil
}

// KernelType selects the morphology kernel variant used by the detection pipeline.
type KernelType string

const (
	// KernelLines uses separate horizontal and vertical line kernels.
	KernelLines KernelType = "lines"

	// KernelRectangles uses a single rectangular kernel. It behaves better on
	// small boxes where line kernels erase most of the outline.
	KernelRectangles KernelType = "rectangles"
)

// Value holds a parameter that is either a single value or an ordered list of
// values to sweep over.
//
// The zero Value is a single zero T.
type Value[T comparable] struct {
	items []T
	multi bool
}

// Single returns a single-valued parameter.
func Single[T comparable](v T) Value[T] {
	return Value[T]{items: []T{v}}
}

// Multi returns a multi-valued parameter holding vs in order.
// Multi() with no arguments is a valid, empty list.
func Multi[T comparable](vs ...T) Value[T] {
	items := make([]T, len(vs))
	copy(items, vs)
	return Value[T]{items: items, multi: true}
}

// IsMulti reports whether v was given as a list.
func (v Value[T]) IsMulti() bool {
	return v.multi
}

// Len returns 1 for a single value and the number of elements for a list.
func (v Value[T]) Len() int {
	if !v.multi {
		return 1
	}
	return len(v.items)
}

// Values returns a copy of the underlying elements. A single value yields a
// one-element slice.
func (v Value[T]) Values() []T {
	if !v.multi && len(v.items) == 0 {
		var zero T
		return []T{zero}
	}
	out := make([]T, len(v.items))
	copy(out, v.items)
	return out
}

// First returns the first element. ok is false for an empty list.
func (v Value[T]) First() (first T, ok bool) {
	if !v.multi && len(v.items) == 0 {
		return first, true
	}
	if len(v.items) == 0 {
		return first, false
	}
	return v.items[0], true
}

// BroadcastTo expands v to exactly n elements.
//
// A single value is replicated n times. A list with at least n elements
// contributes its first n elements; trailing elements are ignored. A shorter
// non-empty list is replaced by n copies of its first element. An empty list
// cannot be broadcast and yields ErrEmptyParameter.
func (v Value[T]) BroadcastTo(n int) ([]T, error) {
	if n <= 0 {
		return []T{}, nil
	}
	if v.multi && len(v.items) >= n {
		out := make([]T, n)
		copy(out, v.items[:n])
		return out, nil
	}
	first, ok := v.First()
	if !ok {
		return nil, ErrEmptyParameter
	}
	out := make([]T, n)
	for i := range out {
		out[i] = first
	}
	return out, nil
}

// Equal reports whether v and o have the same shape and elements.
func (v Value[T]) Equal(o Value[T]) bool {
	if v.multi != o.multi {
		return false
	}
	a, b := v.Values(), o.Values()
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// String implements fmt.Stringer.
func (v Value[T]) String() string {
	if v.multi {
		return fmt.Sprintf("%v", v.items)
	}
	return fmt.Sprintf("%v", v.Values()[0])
}

// MarshalYAML writes a single value as itself and a list as a sequence.
func (v Value[T]) MarshalYAML() (interface{}, error) {
	if v.multi {
		return v.Values(), nil
	}
	return v.Values()[0], nil
}

// UnmarshalYAML accepts either the element form or a sequence of elements.
// The element form is tried first, so for pair types [40, 50] is a single
// range while [[40, 50]] is a one-element list.
func (v *Value[T]) UnmarshalYAML(node *yaml.Node) error {
	var single T
	if err := node.Decode(&single); err == nil {
		*v = Single(single)
		return nil
	}

	if node.Kind != yaml.SequenceNode {
		return fmt.Errorf("line %d: cannot decode %q as %T or a list of them", node.Line, node.Value, single)
	}

	var list []T
	if err := node.Decode(&list); err != nil {
		return err
	}
	*v = Multi(list...)
	return nil
}
