// ops.go - Operations-Tabelle der mem-Engine
// Enthält: opDef-Tabelle, Attribut-Zugriff, Typ/Form-Inferenz je Knoten-Art
package mem

import (
	"fmt"

	"github.com/7blacky7/tensorbind/ml"
)

// opDef beschreibt eine bekannte Knoten-Art: erwartete Eingangszahl
// (-1 = variadisch), Inferenz der Ausgaenge und Eager-Ausfuehrung.
type opDef struct {
	numInputs int
	infer     func(b *opBuilder) ([]outputSpec, error)
	eval      func(e *Environment, o *operation) error
}

var opDefs = map[string]opDef{
	"Const": {
		numInputs: 0,
		infer:     inferConst,
		eval:      evalConst,
	},
	"Identity": {
		numInputs: 1,
		infer:     inferIdentity,
		eval:      evalIdentity,
	},
	"Iterator": {
		numInputs: 0,
		infer:     inferResource,
		eval:      evalNewIterator,
	},
	"AnonymousIterator": {
		numInputs: 0,
		infer:     inferResource,
		eval:      evalNewIterator,
	},
	"MakeIterator": {
		numInputs: 2,
		infer:     inferNoOutputs,
		eval:      evalMakeIterator,
	},
	"IteratorGetNext": {
		numInputs: 1,
		infer:     inferStructured,
		eval:      evalIteratorGetNext,
	},
	"IteratorGetNextAsOptional": {
		numInputs: 1,
		infer:     inferVariant,
		eval:      evalIteratorGetNextAsOptional,
	},
	"OptionalHasValue": {
		numInputs: 1,
		infer:     inferBoolScalar,
		eval:      evalOptionalHasValue,
	},
	"OptionalGetValue": {
		numInputs: 1,
		infer:     inferStructured,
		eval:      evalOptionalGetValue,
	},
	"TensorSliceDataset": {
		numInputs: -1,
		infer:     inferVariant,
		eval:      evalTensorSliceDataset,
	},
	"BatchDataset": {
		numInputs: 2,
		infer:     inferVariant,
		eval:      evalBatchDataset,
	},
	"TakeDataset": {
		numInputs: 2,
		infer:     inferVariant,
		eval:      evalTakeDataset,
	},
	"SkipDataset": {
		numInputs: 2,
		infer:     inferVariant,
		eval:      evalSkipDataset,
	},
	"PrefetchDataset": {
		numInputs: 2,
		infer:     inferVariant,
		eval:      evalPrefetchDataset,
	},
}

// attr liest ein Attribut mit Typpruefung.
func attr[T any](b *opBuilder, name string) (T, error) {
	var zero T
	raw, ok := b.attrs[name]
	if !ok {
		return zero, fmt.Errorf("%w: %s is missing attribute %q", ml.ErrInvalidArgument, b.kind, name)
	}
	v, ok := raw.(T)
	if !ok {
		return zero, fmt.Errorf("%w: attribute %q of %s has type %T", ml.ErrInvalidArgument, name, b.kind, raw)
	}
	return v, nil
}

// structureAttrs liest output_types/output_shapes und prueft die Laengen.
func structureAttrs(b *opBuilder) ([]ml.DType, []ml.Shape, error) {
	types, err := attr[[]ml.DType](b, "output_types")
	if err != nil {
		return nil, nil, err
	}
	shapes, err := attr[[]ml.Shape](b, "output_shapes")
	if err != nil {
		return nil, nil, err
	}
	if len(types) != len(shapes) {
		return nil, nil, fmt.Errorf("%w: %s has %d output types but %d output shapes",
			ml.ErrInvalidArgument, b.kind, len(types), len(shapes))
	}
	return types, shapes, nil
}

func inferConst(b *opBuilder) ([]outputSpec, error) {
	dtype, err := attr[ml.DType](b, "dtype")
	if err != nil {
		return nil, err
	}
	shape, err := attr[ml.Shape](b, "shape")
	if err != nil {
		return nil, err
	}
	if shape.NumElements() < 0 {
		return nil, fmt.Errorf("%w: Const shape %s must be fully defined", ml.ErrInvalidArgument, shape)
	}
	if _, ok := b.attrs["value"]; !ok {
		return nil, fmt.Errorf("%w: Const is missing attribute \"value\"", ml.ErrInvalidArgument)
	}
	return []outputSpec{{dtype: dtype, shape: shape.Clone()}}, nil
}

func inferIdentity(b *opBuilder) ([]outputSpec, error) {
	in := b.inputs[0]
	return []outputSpec{{dtype: in.DType(), shape: in.Shape().Clone()}}, nil
}

func inferResource(b *opBuilder) ([]outputSpec, error) {
	if _, _, err := structureAttrs(b); err != nil {
		return nil, err
	}
	return []outputSpec{{dtype: ml.DTypeResource, shape: ml.ScalarShape()}}, nil
}

func inferVariant(b *opBuilder) ([]outputSpec, error) {
	if _, _, err := structureAttrs(b); err != nil {
		return nil, err
	}
	return []outputSpec{{dtype: ml.DTypeVariant, shape: ml.ScalarShape()}}, nil
}

func inferNoOutputs(b *opBuilder) ([]outputSpec, error) {
	return nil, nil
}

func inferBoolScalar(b *opBuilder) ([]outputSpec, error) {
	return []outputSpec{{dtype: ml.DTypeBool, shape: ml.ScalarShape()}}, nil
}

// inferStructured leitet die Ausgaenge aus den Struktur-Attributen ab.
func inferStructured(b *opBuilder) ([]outputSpec, error) {
	types, shapes, err := structureAttrs(b)
	if err != nil {
		return nil, err
	}
	outputs := make([]outputSpec, len(types))
	for i := range types {
		outputs[i] = outputSpec{dtype: types[i], shape: shapes[i].Clone()}
	}
	return outputs, nil
}
