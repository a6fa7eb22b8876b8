// optional.go - Wrapper fuer Optional-Variant-Operationen
// Enthaelt: OptionalHasValue, OptionalGetValue
package tfdata

import (
	"slices"

	"github.com/7blacky7/tensorbind/ml"
	"github.com/7blacky7/tensorbind/op"
)

// OptionalHasValue asks whether an optional variant carries an element. The
// output is a scalar bool.
type OptionalHasValue struct {
	op.RawOp
	hasValue ml.Output
}

// NewOptionalHasValue baut einen OptionalHasValue-Knoten.
func NewOptionalHasValue(s *op.Scope, optional ml.Operand) (*OptionalHasValue, error) {
	operation, err := s.Builder("OptionalHasValue", "OptionalHasValue").
		AddInput(optional.AsOutput()).
		Build()
	if err != nil {
		return nil, err
	}

	return &OptionalHasValue{
		RawOp:    op.NewRawOp(operation),
		hasValue: ml.Output{Op: operation, Index: 0},
	}, nil
}

// HasValue gibt den Bool-Ausgang zurueck.
func (o *OptionalHasValue) HasValue() ml.Output {
	return o.hasValue
}

// AsOutput erlaubt die Verwendung des Wrappers als Operand.
func (o *OptionalHasValue) AsOutput() ml.Output {
	return o.hasValue
}

// OptionalGetValue unpacks the components of a non-empty optional variant.
// In eager environments an empty optional fails with ml.ErrInvalidArgument.
type OptionalGetValue struct {
	op.RawOp
	components []ml.Output
}

// NewOptionalGetValue baut einen OptionalGetValue-Knoten.
func NewOptionalGetValue(s *op.Scope, optional ml.Operand, outputTypes []ml.DType, outputShapes []ml.Shape) (*OptionalGetValue, error) {
	operation, err := s.Builder("OptionalGetValue", "OptionalGetValue").
		AddInput(optional.AsOutput()).
		SetAttr("output_types", slices.Clone(outputTypes)).
		SetAttr("output_shapes", ml.CloneShapes(outputShapes)).
		Build()
	if err != nil {
		return nil, err
	}

	components := make([]ml.Output, operation.NumOutputs())
	for i := range components {
		components[i] = ml.Output{Op: operation, Index: i}
	}

	return &OptionalGetValue{RawOp: op.NewRawOp(operation), components: components}, nil
}

// Components gibt die Ausgaenge des Knotens in Komponenten-Reihenfolge zurueck.
func (o *OptionalGetValue) Components() []ml.Output {
	return slices.Clone(o.components)
}
