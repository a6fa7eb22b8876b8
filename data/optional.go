// optional.go - DatasetOptional: getaggter Wert ueber "Element vorhanden"
package data

import (
	"slices"

	"github.com/7blacky7/tensorbind/ml"
	"github.com/7blacky7/tensorbind/op"
	"github.com/7blacky7/tensorbind/op/tfdata"
)

// DatasetOptional is a tagged wrapper over an optional variant: either it
// carries the components of one dataset element, or it marks exhaustion.
// Callers that prefer not to treat exhaustion as a failure iterate with
// DatasetIterator.GetNextAsOptional and test HasValue.
type DatasetOptional struct {
	scope        *op.Scope
	optional     ml.Output
	outputTypes  []ml.DType
	outputShapes []ml.Shape
}

// HasValue returns a scalar bool output telling whether the optional carries
// an element. In eager environments the concrete bool is available via
// Value() on the returned handle.
func (o *DatasetOptional) HasValue() (ml.Output, error) {
	hv, err := tfdata.NewOptionalHasValue(o.scope, o.optional)
	if err != nil {
		return ml.Output{}, err
	}
	return hv.HasValue(), nil
}

// Value unpacks the element components of a non-empty optional. In eager
// environments an empty optional fails with ml.ErrInvalidArgument, never
// with ml.ErrOutOfRange.
func (o *DatasetOptional) Value() ([]ml.Output, error) {
	gv, err := tfdata.NewOptionalGetValue(o.scope, o.optional, o.outputTypes, o.outputShapes)
	if err != nil {
		return nil, err
	}
	return gv.Components(), nil
}

// Optional gibt das zugrunde liegende Variant-Handle zurueck.
func (o *DatasetOptional) Optional() ml.Output {
	return o.optional
}

// OutputTypes gibt die Komponententypen der Element-Struktur zurueck.
func (o *DatasetOptional) OutputTypes() []ml.DType {
	return slices.Clone(o.outputTypes)
}

// OutputShapes gibt die Komponentenformen der Element-Struktur zurueck.
func (o *DatasetOptional) OutputShapes() []ml.Shape {
	return ml.CloneShapes(o.outputShapes)
}
