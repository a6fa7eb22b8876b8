// iterator.go - DatasetIterator: Bindung an eine Iterator-Ressource
// Der Iterator haelt ein nicht-besitzendes Ressourcen-Handle, optional eine
// Initialisierungs-Operation und die deklarierte Element-Struktur. Alle
// Methoden delegieren an das Environment; eigene Fehlerpfade gibt es nur fuer
// die Vorbedingungen von MakeInitializer.
package data

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/7blacky7/tensorbind/ml"
	"github.com/7blacky7/tensorbind/op"
	"github.com/7blacky7/tensorbind/op/tfdata"
)

// EmptySharedName ist der shared_name fuer unbenannte Graph-Iteratoren.
const EmptySharedName = ""

// DatasetIterator represents the state of one iteration over a dataset. It is
// not a Go iterator: in graph environments its methods build nodes that the
// caller executes later; in eager environments each call advances the
// underlying resource immediately.
//
// The binding holds plain fields without synchronization; concurrent use of
// one iterator is the caller's responsibility to serialize.
type DatasetIterator struct {
	scope            *op.Scope
	iteratorResource ml.Output
	initializer      ml.Operation
	outputTypes      []ml.DType
	outputShapes     []ml.Shape
}

// NewDatasetIterator bindet eine bereits vorhandene Iterator-Ressource.
func NewDatasetIterator(scope *op.Scope, iteratorResource ml.Output, outputTypes []ml.DType, outputShapes []ml.Shape) (*DatasetIterator, error) {
	if err := validateStructure(outputTypes, outputShapes); err != nil {
		return nil, err
	}

	return &DatasetIterator{
		scope:            scope,
		iteratorResource: iteratorResource,
		outputTypes:      slices.Clone(outputTypes),
		outputShapes:     ml.CloneShapes(outputShapes),
	}, nil
}

// FromStructure creates a fresh iterator from a declared element structure.
// In graph environments this builds a named Iterator resource with an empty
// shared name; in eager environments an anonymous resource. No initializer is
// set: the iterator is unbound until MakeInitializer attaches a dataset.
func FromStructure(scope *op.Scope, outputTypes []ml.DType, outputShapes []ml.Shape) (*DatasetIterator, error) {
	if err := validateStructure(outputTypes, outputShapes); err != nil {
		return nil, err
	}

	var resource ml.Output
	if scope.Env().Mode() == ml.GraphMode {
		it, err := tfdata.NewIterator(scope, EmptySharedName, "", outputTypes, outputShapes)
		if err != nil {
			return nil, err
		}
		resource = it.Handle()
	} else {
		it, err := tfdata.NewAnonymousIterator(scope, outputTypes, outputShapes)
		if err != nil {
			return nil, err
		}
		resource = it.Handle()
	}

	return &DatasetIterator{
		scope:            scope,
		iteratorResource: resource,
		outputTypes:      slices.Clone(outputTypes),
		outputShapes:     ml.CloneShapes(outputShapes),
	}, nil
}

// GetNext returns the components of the next dataset element in structure
// order. Exhaustion surfaces as ml.ErrOutOfRange and is the expected way for
// a loop over the dataset to end; any other environment failure propagates
// unchanged.
//
// In graph environments call GetNext once and feed the components into
// further computation; successive executions then step through the dataset.
func (it *DatasetIterator) GetNext() ([]ml.Output, error) {
	next, err := tfdata.NewIteratorGetNext(it.scope, it.iteratorResource, it.outputTypes, it.outputShapes)
	if err != nil {
		return nil, err
	}
	return next.Components(), nil
}

// GetNextAsOptional returns the next element wrapped as a DatasetOptional
// instead of signalling exhaustion as a failure. It never yields
// ml.ErrOutOfRange itself.
func (it *DatasetIterator) GetNextAsOptional() (*DatasetOptional, error) {
	next, err := tfdata.NewIteratorGetNextAsOptional(it.scope, it.iteratorResource, it.outputTypes, it.outputShapes)
	if err != nil {
		return nil, err
	}

	return &DatasetOptional{
		scope:        it.scope,
		optional:     next.Optional(),
		outputTypes:  slices.Clone(it.outputTypes),
		outputShapes: ml.CloneShapes(it.outputShapes),
	}, nil
}

// MakeInitializer builds, stores and returns the operation that rewinds this
// iterator to the first element of the given dataset. The dataset must share
// this iterator's execution environment instance and its element structure;
// either violation fails with ml.ErrInvalidArgument before any node is built.
// The checks run eagerly at binding time so that schema mismatches surface at
// construction rather than deep inside the engine at run time.
func (it *DatasetIterator) MakeInitializer(dataset *Dataset) (ml.Operation, error) {
	if it.scope.Env() != dataset.scope.Env() {
		return nil, fmt.Errorf("%w: dataset must share the same execution environment as this iterator", ml.ErrInvalidArgument)
	}

	if !structuresEqual(it.outputTypes, it.outputShapes, dataset.outputTypes, dataset.outputShapes) {
		return nil, fmt.Errorf("%w: dataset structure (output types, output shapes) must match this iterator", ml.ErrInvalidArgument)
	}

	mk, err := tfdata.NewMakeIterator(it.scope, dataset.Variant(), it.iteratorResource)
	if err != nil {
		return nil, err
	}

	slog.Debug("iterator initializer created", "op", mk.Op().Name(), "components", len(it.outputTypes))
	it.initializer = mk.Op()
	return it.initializer, nil
}

// IteratorResource gibt das nicht-besitzende Ressourcen-Handle zurueck.
func (it *DatasetIterator) IteratorResource() ml.Output {
	return it.iteratorResource
}

// Initializer gibt die gespeicherte Initialisierungs-Operation zurueck,
// oder nil solange der Iterator ungebunden ist.
func (it *DatasetIterator) Initializer() ml.Operation {
	return it.initializer
}

// OutputTypes gibt die Komponententypen der Element-Struktur zurueck.
func (it *DatasetIterator) OutputTypes() []ml.DType {
	return slices.Clone(it.outputTypes)
}

// OutputShapes gibt die Komponentenformen der Element-Struktur zurueck.
func (it *DatasetIterator) OutputShapes() []ml.Shape {
	return ml.CloneShapes(it.outputShapes)
}
