// make_iterator.go - Wrapper fuer die Initialisierung eines Iterators
package tfdata

import (
	"github.com/7blacky7/tensorbind/ml"
	"github.com/7blacky7/tensorbind/op"
)

// MakeIterator builds the operation that rewinds an iterator resource to the
// first element of a dataset. In graph environments the caller executes the
// operation later; in eager environments it runs as part of Build.
type MakeIterator struct {
	op.RawOp
}

// NewMakeIterator baut einen MakeIterator-Knoten ueber Dataset und Ressource.
func NewMakeIterator(s *op.Scope, dataset, iterator ml.Operand) (*MakeIterator, error) {
	operation, err := s.Builder("MakeIterator", "MakeIterator").
		AddInput(dataset.AsOutput()).
		AddInput(iterator.AsOutput()).
		Build()
	if err != nil {
		return nil, err
	}

	return &MakeIterator{RawOp: op.NewRawOp(operation)}, nil
}
