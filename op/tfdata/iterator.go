// iterator.go - Wrapper fuer Iterator-Ressourcen-Operationen
// Enthaelt: Iterator (benannte Graph-Ressource), AnonymousIterator (eager)
package tfdata

import (
	"slices"

	"github.com/7blacky7/tensorbind/ml"
	"github.com/7blacky7/tensorbind/op"
)

// Iterator creates a named, graph-scoped iterator resource with the declared
// element structure. The resource is owned by the environment; the handle is
// non-owning.
type Iterator struct {
	op.RawOp
	handle ml.Output
}

// NewIterator baut einen Iterator-Knoten mit shared_name und container.
func NewIterator(s *op.Scope, sharedName, container string, outputTypes []ml.DType, outputShapes []ml.Shape) (*Iterator, error) {
	operation, err := s.Builder("Iterator", "Iterator").
		SetAttr("shared_name", sharedName).
		SetAttr("container", container).
		SetAttr("output_types", slices.Clone(outputTypes)).
		SetAttr("output_shapes", ml.CloneShapes(outputShapes)).
		Build()
	if err != nil {
		return nil, err
	}

	return &Iterator{
		RawOp:  op.NewRawOp(operation),
		handle: ml.Output{Op: operation, Index: 0},
	}, nil
}

// Handle gibt das Ressourcen-Handle zurueck.
func (it *Iterator) Handle() ml.Output {
	return it.handle
}

// AsOutput erlaubt die Verwendung des Wrappers als Operand.
func (it *Iterator) AsOutput() ml.Output {
	return it.handle
}

// AnonymousIterator creates an unnamed iterator resource for eager-style
// environments.
type AnonymousIterator struct {
	op.RawOp
	handle ml.Output
}

// NewAnonymousIterator baut einen AnonymousIterator-Knoten.
func NewAnonymousIterator(s *op.Scope, outputTypes []ml.DType, outputShapes []ml.Shape) (*AnonymousIterator, error) {
	operation, err := s.Builder("AnonymousIterator", "AnonymousIterator").
		SetAttr("output_types", slices.Clone(outputTypes)).
		SetAttr("output_shapes", ml.CloneShapes(outputShapes)).
		Build()
	if err != nil {
		return nil, err
	}

	return &AnonymousIterator{
		RawOp:  op.NewRawOp(operation),
		handle: ml.Output{Op: operation, Index: 0},
	}, nil
}

// Handle gibt das Ressourcen-Handle zurueck.
func (it *AnonymousIterator) Handle() ml.Output {
	return it.handle
}

// AsOutput erlaubt die Verwendung des Wrappers als Operand.
func (it *AnonymousIterator) AsOutput() ml.Output {
	return it.handle
}
