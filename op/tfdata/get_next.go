// get_next.go - Wrapper fuer das Abholen des naechsten Dataset-Elements
// Enthaelt: IteratorGetNext (strikt), IteratorGetNextAsOptional
package tfdata

import (
	"slices"

	"github.com/7blacky7/tensorbind/ml"
	"github.com/7blacky7/tensorbind/op"
)

// IteratorGetNext requests the components of the next dataset element from an
// iterator resource. In eager environments an exhausted resource surfaces as
// ml.ErrOutOfRange from the build call; any other failure propagates
// unchanged.
type IteratorGetNext struct {
	op.RawOp
	components []ml.Output
}

// NewIteratorGetNext baut einen IteratorGetNext-Knoten.
func NewIteratorGetNext(s *op.Scope, iterator ml.Operand, outputTypes []ml.DType, outputShapes []ml.Shape) (*IteratorGetNext, error) {
	operation, err := s.Builder("IteratorGetNext", "IteratorGetNext").
		AddInput(iterator.AsOutput()).
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

	return &IteratorGetNext{RawOp: op.NewRawOp(operation), components: components}, nil
}

// Components gibt die Ausgaenge des Knotens in Komponenten-Reihenfolge zurueck.
func (g *IteratorGetNext) Components() []ml.Output {
	return slices.Clone(g.components)
}

// IteratorGetNextAsOptional requests the next element wrapped as an optional
// variant instead of signalling exhaustion as a failure.
type IteratorGetNextAsOptional struct {
	op.RawOp
	optional ml.Output
}

// NewIteratorGetNextAsOptional baut einen IteratorGetNextAsOptional-Knoten.
func NewIteratorGetNextAsOptional(s *op.Scope, iterator ml.Operand, outputTypes []ml.DType, outputShapes []ml.Shape) (*IteratorGetNextAsOptional, error) {
	operation, err := s.Builder("IteratorGetNextAsOptional", "IteratorGetNextAsOptional").
		AddInput(iterator.AsOutput()).
		SetAttr("output_types", slices.Clone(outputTypes)).
		SetAttr("output_shapes", ml.CloneShapes(outputShapes)).
		Build()
	if err != nil {
		return nil, err
	}

	return &IteratorGetNextAsOptional{
		RawOp:    op.NewRawOp(operation),
		optional: ml.Output{Op: operation, Index: 0},
	}, nil
}

// Optional gibt das Optional-Variant-Handle zurueck.
func (g *IteratorGetNextAsOptional) Optional() ml.Output {
	return g.optional
}

// AsOutput erlaubt die Verwendung des Wrappers als Operand.
func (g *IteratorGetNextAsOptional) AsOutput() ml.Output {
	return g.optional
}
