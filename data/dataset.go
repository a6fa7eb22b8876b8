// dataset.go - Dataset: Variant-Handle plus Element-Struktur
// Ein Dataset buendelt das Variant-Handle der Engine mit der deklarierten
// Struktur seiner Elemente. Transformationen bauen jeweils einen neuen
// Dataset-Knoten und lassen das Original unveraendert.
package data

import (
	"fmt"
	"slices"

	"github.com/7blacky7/tensorbind/envconfig"
	"github.com/7blacky7/tensorbind/ml"
	"github.com/7blacky7/tensorbind/op"
	"github.com/7blacky7/tensorbind/op/tfdata"
)

// Dataset represents one dataset owned by the execution environment. The
// binding holds a non-owning variant handle and the element structure.
type Dataset struct {
	scope        *op.Scope
	variant      ml.Output
	outputTypes  []ml.DType
	outputShapes []ml.Shape
}

func newDataset(scope *op.Scope, variant ml.Output, outputTypes []ml.DType, outputShapes []ml.Shape) *Dataset {
	return &Dataset{
		scope:        scope,
		variant:      variant,
		outputTypes:  outputTypes,
		outputShapes: outputShapes,
	}
}

// FromTensorSlices creates a dataset whose elements are the slices of the
// given components along their first dimension. The element structure is
// derived from the components: same types, shapes without the first
// dimension. Components of rank 0 cannot be sliced.
func FromTensorSlices(scope *op.Scope, components []ml.Operand) (*Dataset, error) {
	if len(components) == 0 {
		return nil, fmt.Errorf("%w: at least one component required", ml.ErrInvalidArgument)
	}

	outputs := make([]ml.Output, len(components))
	outputTypes := make([]ml.DType, len(components))
	outputShapes := make([]ml.Shape, len(components))
	for i, c := range components {
		outputs[i] = c.AsOutput()
		shape := outputs[i].Shape()
		if shape.Rank() == 0 {
			return nil, fmt.Errorf("%w: component %d is a scalar and cannot be sliced", ml.ErrInvalidArgument, i)
		}
		outputTypes[i] = outputs[i].DType()
		outputShapes[i] = shape[1:].Clone()
	}

	ds, err := tfdata.NewTensorSliceDataset(scope, outputs, outputTypes, outputShapes)
	if err != nil {
		return nil, err
	}

	return newDataset(scope, ds.Handle(), outputTypes, outputShapes), nil
}

// Batch groups consecutive elements into batches of the given size. The
// batched dimension is unknown in the structure because the final batch may
// be smaller.
func (d *Dataset) Batch(batchSize int64) (*Dataset, error) {
	if batchSize <= 0 {
		return nil, fmt.Errorf("%w: batch size must be positive, got %d", ml.ErrInvalidArgument, batchSize)
	}

	size, err := op.Const(d.scope, batchSize, ml.DTypeI64, ml.ScalarShape())
	if err != nil {
		return nil, err
	}

	batchedShapes := make([]ml.Shape, len(d.outputShapes))
	for i, s := range d.outputShapes {
		batchedShapes[i] = append(ml.Shape{-1}, s...)
	}

	ds, err := tfdata.NewBatchDataset(d.scope, d.variant, size, d.outputTypes, batchedShapes)
	if err != nil {
		return nil, err
	}

	return newDataset(d.scope, ds.Handle(), slices.Clone(d.outputTypes), batchedShapes), nil
}

// Take keeps at most count elements. A count of -1 keeps all elements.
func (d *Dataset) Take(count int64) (*Dataset, error) {
	if count < -1 {
		return nil, fmt.Errorf("%w: take count must be -1 or non-negative, got %d", ml.ErrInvalidArgument, count)
	}

	c, err := op.Const(d.scope, count, ml.DTypeI64, ml.ScalarShape())
	if err != nil {
		return nil, err
	}

	ds, err := tfdata.NewTakeDataset(d.scope, d.variant, c, d.outputTypes, d.outputShapes)
	if err != nil {
		return nil, err
	}

	return newDataset(d.scope, ds.Handle(), slices.Clone(d.outputTypes), ml.CloneShapes(d.outputShapes)), nil
}

// Skip drops the first count elements.
func (d *Dataset) Skip(count int64) (*Dataset, error) {
	if count < 0 {
		return nil, fmt.Errorf("%w: skip count must be non-negative, got %d", ml.ErrInvalidArgument, count)
	}

	c, err := op.Const(d.scope, count, ml.DTypeI64, ml.ScalarShape())
	if err != nil {
		return nil, err
	}

	ds, err := tfdata.NewSkipDataset(d.scope, d.variant, c, d.outputTypes, d.outputShapes)
	if err != nil {
		return nil, err
	}

	return newDataset(d.scope, ds.Handle(), slices.Clone(d.outputTypes), ml.CloneShapes(d.outputShapes)), nil
}

// Prefetch produces elements ahead of consumption, up to bufferSize. A
// bufferSize of 0 uses the configured default (TENSORBIND_PREFETCH).
func (d *Dataset) Prefetch(bufferSize int64) (*Dataset, error) {
	if bufferSize < 0 {
		return nil, fmt.Errorf("%w: prefetch buffer must be non-negative, got %d", ml.ErrInvalidArgument, bufferSize)
	}
	if bufferSize == 0 {
		bufferSize = int64(envconfig.PrefetchDepth())
	}

	c, err := op.Const(d.scope, bufferSize, ml.DTypeI64, ml.ScalarShape())
	if err != nil {
		return nil, err
	}

	ds, err := tfdata.NewPrefetchDataset(d.scope, d.variant, c, d.outputTypes, d.outputShapes)
	if err != nil {
		return nil, err
	}

	return newDataset(d.scope, ds.Handle(), slices.Clone(d.outputTypes), ml.CloneShapes(d.outputShapes)), nil
}

// MakeIterator creates an iterator over this dataset and binds it. In eager
// environments the rewind runs as part of construction, so the iterator is
// immediately usable; in graph environments the caller executes the stored
// initializer first.
func (d *Dataset) MakeIterator() (*DatasetIterator, error) {
	it, err := FromStructure(d.scope, d.outputTypes, d.outputShapes)
	if err != nil {
		return nil, err
	}

	if _, err := it.MakeInitializer(d); err != nil {
		return nil, err
	}

	return it, nil
}

// MakeInitializeableIterator ist der Graph-Modus-Alias fuer MakeIterator:
// der Iterator ist erst nach Ausfuehrung des Initializers positioniert.
func (d *Dataset) MakeInitializeableIterator() (*DatasetIterator, error) {
	return d.MakeIterator()
}

// Variant gibt das nicht-besitzende Variant-Handle zurueck.
func (d *Dataset) Variant() ml.Output {
	return d.variant
}

// Env gibt das Environment dieses Datasets zurueck.
func (d *Dataset) Env() ml.Environment {
	return d.scope.Env()
}

// OutputTypes gibt die Komponententypen der Element-Struktur zurueck.
func (d *Dataset) OutputTypes() []ml.DType {
	return slices.Clone(d.outputTypes)
}

// OutputShapes gibt die Komponentenformen der Element-Struktur zurueck.
func (d *Dataset) OutputShapes() []ml.Shape {
	return ml.CloneShapes(d.outputShapes)
}
