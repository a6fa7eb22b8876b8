// datasets.go - Wrapper fuer Dataset-Quellen und -Transformationen
// Enthaelt: TensorSliceDataset, BatchDataset, TakeDataset, SkipDataset,
// PrefetchDataset. Jeder Wrapper liefert ein Variant-Handle auf das Dataset.
package tfdata

import (
	"slices"

	"github.com/7blacky7/tensorbind/ml"
	"github.com/7blacky7/tensorbind/op"
)

// DatasetVariant ist das gemeinsame Ergebnis aller Dataset-Wrapper.
type DatasetVariant struct {
	op.RawOp
	handle ml.Output
}

// Handle gibt das Variant-Handle des Datasets zurueck.
func (d *DatasetVariant) Handle() ml.Output {
	return d.handle
}

// AsOutput erlaubt die Verwendung des Wrappers als Operand.
func (d *DatasetVariant) AsOutput() ml.Output {
	return d.handle
}

func datasetVariant(operation ml.Operation) *DatasetVariant {
	return &DatasetVariant{
		RawOp:  op.NewRawOp(operation),
		handle: ml.Output{Op: operation, Index: 0},
	}
}

// NewTensorSliceDataset builds a dataset whose elements are the slices of the
// given components along their first dimension. All components must agree on
// that dimension; the environment rejects mismatches.
func NewTensorSliceDataset(s *op.Scope, components []ml.Output, outputTypes []ml.DType, outputShapes []ml.Shape) (*DatasetVariant, error) {
	operation, err := s.Builder("TensorSliceDataset", "TensorSliceDataset").
		AddInputList(components).
		SetAttr("output_types", slices.Clone(outputTypes)).
		SetAttr("output_shapes", ml.CloneShapes(outputShapes)).
		Build()
	if err != nil {
		return nil, err
	}

	return datasetVariant(operation), nil
}

// NewBatchDataset builds a dataset that groups consecutive elements of the
// input dataset into batches. The final batch may be smaller.
func NewBatchDataset(s *op.Scope, input, batchSize ml.Operand, outputTypes []ml.DType, outputShapes []ml.Shape) (*DatasetVariant, error) {
	operation, err := s.Builder("BatchDataset", "BatchDataset").
		AddInput(input.AsOutput()).
		AddInput(batchSize.AsOutput()).
		SetAttr("output_types", slices.Clone(outputTypes)).
		SetAttr("output_shapes", ml.CloneShapes(outputShapes)).
		Build()
	if err != nil {
		return nil, err
	}

	return datasetVariant(operation), nil
}

// NewTakeDataset builds a dataset with at most count elements of the input
// dataset. A count of -1 keeps all elements.
func NewTakeDataset(s *op.Scope, input, count ml.Operand, outputTypes []ml.DType, outputShapes []ml.Shape) (*DatasetVariant, error) {
	operation, err := s.Builder("TakeDataset", "TakeDataset").
		AddInput(input.AsOutput()).
		AddInput(count.AsOutput()).
		SetAttr("output_types", slices.Clone(outputTypes)).
		SetAttr("output_shapes", ml.CloneShapes(outputShapes)).
		Build()
	if err != nil {
		return nil, err
	}

	return datasetVariant(operation), nil
}

// NewSkipDataset builds a dataset without the first count elements of the
// input dataset.
func NewSkipDataset(s *op.Scope, input, count ml.Operand, outputTypes []ml.DType, outputShapes []ml.Shape) (*DatasetVariant, error) {
	operation, err := s.Builder("SkipDataset", "SkipDataset").
		AddInput(input.AsOutput()).
		AddInput(count.AsOutput()).
		SetAttr("output_types", slices.Clone(outputTypes)).
		SetAttr("output_shapes", ml.CloneShapes(outputShapes)).
		Build()
	if err != nil {
		return nil, err
	}

	return datasetVariant(operation), nil
}

// NewPrefetchDataset builds a dataset that produces elements of the input
// dataset ahead of consumption, up to bufferSize elements.
func NewPrefetchDataset(s *op.Scope, input, bufferSize ml.Operand, outputTypes []ml.DType, outputShapes []ml.Shape) (*DatasetVariant, error) {
	operation, err := s.Builder("PrefetchDataset", "PrefetchDataset").
		AddInput(input.AsOutput()).
		AddInput(bufferSize.AsOutput()).
		SetAttr("output_types", slices.Clone(outputTypes)).
		SetAttr("output_shapes", ml.CloneShapes(outputShapes)).
		Build()
	if err != nil {
		return nil, err
	}

	return datasetVariant(operation), nil
}
