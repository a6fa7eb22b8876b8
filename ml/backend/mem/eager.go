// eager.go - Eager-Ausfuehrung der mem-Engine
// Enthält: eval-Funktionen je Knoten-Art, Iterator-Zustaende, Dataset-Werte
// und deren Cursor. Ressourcen- und Variant-Werte gehoeren der Engine; die
// Binding-Schicht sieht nur Handles.
package mem

import (
	"errors"
	"fmt"
	"slices"

	"github.com/google/uuid"

	"github.com/7blacky7/tensorbind/ml"
)

// resourceHandle identifiziert eine Iterator-Ressource in der Engine.
type resourceHandle string

// iteratorState ist der Cursor-Zustand einer Iterator-Ressource.
// cur bleibt nil, bis MakeIterator die Ressource an ein Dataset bindet.
type iteratorState struct {
	types  []ml.DType
	shapes []ml.Shape
	cur    cursor
}

// datasetValue ist der Engine-Wert hinter einem Dataset-Variant-Handle.
// newCursor liefert pro Initialisierung einen frischen Cursor ab dem ersten
// Element; dadurch ist erneutes MakeIterator ein Rewind.
type datasetValue struct {
	types     []ml.DType
	shapes    []ml.Shape
	newCursor func() cursor
}

// optionalValue ist der Engine-Wert hinter einem Optional-Variant-Handle.
type optionalValue struct {
	present bool
	elems   []*Tensor
}

func evalConst(e *Environment, o *operation) error {
	t, err := tensorFromValue(o.outputs[0].dtype, o.outputs[0].shape, o.attrs["value"])
	if err != nil {
		return err
	}
	o.values = []any{t}
	return nil
}

func evalIdentity(e *Environment, o *operation) error {
	v, err := e.valueOf(o.inputs[0])
	if err != nil {
		return err
	}
	o.values = []any{v}
	return nil
}

func evalNewIterator(e *Environment, o *operation) error {
	types, shapes, _ := structureAttrs(&opBuilder{kind: o.kind, attrs: o.attrs})

	handle := resourceHandle(uuid.NewString())
	e.resources[handle] = &iteratorState{
		types:  slices.Clone(types),
		shapes: ml.CloneShapes(shapes),
	}
	o.values = []any{handle}
	return nil
}

func evalMakeIterator(e *Environment, o *operation) error {
	ds, err := datasetOf(e, o.inputs[0])
	if err != nil {
		return err
	}
	st, err := stateOf(e, o.inputs[1])
	if err != nil {
		return err
	}

	if !slices.Equal(ds.types, st.types) || !shapesEqual(ds.shapes, st.shapes) {
		return fmt.Errorf("%w: dataset structure does not match iterator resource", ml.ErrInvalidArgument)
	}

	// Ein bereits gebundener Cursor wird ersetzt; seine Ressourcen
	// (insbesondere ein Prefetch-Produzent) werden vorher freigegeben
	if st.cur != nil {
		st.cur.stop()
	}
	st.cur = ds.newCursor()
	return nil
}

func evalIteratorGetNext(e *Environment, o *operation) error {
	st, err := stateOf(e, o.inputs[0])
	if err != nil {
		return err
	}
	if st.cur == nil {
		return fmt.Errorf("%w: iterator is not initialized", ml.ErrFailedPrecondition)
	}

	elems, err := st.cur.next()
	if err != nil {
		return err
	}

	o.values = make([]any, len(elems))
	for i, t := range elems {
		o.values[i] = t
	}
	return nil
}

func evalIteratorGetNextAsOptional(e *Environment, o *operation) error {
	st, err := stateOf(e, o.inputs[0])
	if err != nil {
		return err
	}
	if st.cur == nil {
		return fmt.Errorf("%w: iterator is not initialized", ml.ErrFailedPrecondition)
	}

	elems, err := st.cur.next()
	switch {
	case errors.Is(err, ml.ErrOutOfRange):
		o.values = []any{&optionalValue{}}
	case err != nil:
		return err
	default:
		o.values = []any{&optionalValue{present: true, elems: elems}}
	}
	return nil
}

func evalOptionalHasValue(e *Environment, o *operation) error {
	opt, err := optionalOf(e, o.inputs[0])
	if err != nil {
		return err
	}
	o.values = []any{boolScalar(opt.present)}
	return nil
}

func evalOptionalGetValue(e *Environment, o *operation) error {
	opt, err := optionalOf(e, o.inputs[0])
	if err != nil {
		return err
	}
	if !opt.present {
		return fmt.Errorf("%w: optional has no value", ml.ErrInvalidArgument)
	}
	if len(opt.elems) != len(o.outputs) {
		return fmt.Errorf("%w: optional carries %d components, %d declared",
			ml.ErrInvalidArgument, len(opt.elems), len(o.outputs))
	}

	o.values = make([]any, len(opt.elems))
	for i, t := range opt.elems {
		o.values[i] = t
	}
	return nil
}

func evalTensorSliceDataset(e *Environment, o *operation) error {
	declTypes, declShapes, _ := structureAttrs(&opBuilder{kind: o.kind, attrs: o.attrs})

	components := make([]*Tensor, len(o.inputs))
	n := int64(-1)
	for i, in := range o.inputs {
		t, err := tensorOf(e, in)
		if err != nil {
			return err
		}
		if t.shape.Rank() == 0 {
			return fmt.Errorf("%w: component %d is a scalar and cannot be sliced", ml.ErrInvalidArgument, i)
		}
		if n >= 0 && t.shape[0] != n {
			return fmt.Errorf("%w: component %d has %d slices, component 0 has %d",
				ml.ErrInvalidArgument, i, t.shape[0], n)
		}
		n = t.shape[0]

		if i < len(declTypes) && (t.dtype != declTypes[i] || !t.shape[1:].Equal(declShapes[i])) {
			return fmt.Errorf("%w: component %d does not match the declared structure", ml.ErrInvalidArgument, i)
		}
		components[i] = t
	}

	// Elemente einmalig materialisieren; Cursor teilen sie unveraendert
	elems := make([][]*Tensor, n)
	for i := range elems {
		row := make([]*Tensor, len(components))
		for j, c := range components {
			row[j] = c.slice(int(i))
		}
		elems[i] = row
	}

	o.values = []any{&datasetValue{
		types:  slices.Clone(declTypes),
		shapes: ml.CloneShapes(declShapes),
		newCursor: func() cursor {
			return &sliceCursor{elems: elems}
		},
	}}
	return nil
}

func evalBatchDataset(e *Environment, o *operation) error {
	in, size, err := datasetAndCount(e, o)
	if err != nil {
		return err
	}
	if size <= 0 {
		return fmt.Errorf("%w: batch size must be positive, got %d", ml.ErrInvalidArgument, size)
	}

	declTypes, declShapes, _ := structureAttrs(&opBuilder{kind: o.kind, attrs: o.attrs})
	o.values = []any{&datasetValue{
		types:  slices.Clone(declTypes),
		shapes: ml.CloneShapes(declShapes),
		newCursor: func() cursor {
			return &batchCursor{in: in.newCursor(), size: size}
		},
	}}
	return nil
}

func evalTakeDataset(e *Environment, o *operation) error {
	in, count, err := datasetAndCount(e, o)
	if err != nil {
		return err
	}
	if count < -1 {
		return fmt.Errorf("%w: take count must be -1 or non-negative, got %d", ml.ErrInvalidArgument, count)
	}

	o.values = []any{&datasetValue{
		types:  in.types,
		shapes: in.shapes,
		newCursor: func() cursor {
			return &takeCursor{in: in.newCursor(), remaining: count}
		},
	}}
	return nil
}

func evalSkipDataset(e *Environment, o *operation) error {
	in, count, err := datasetAndCount(e, o)
	if err != nil {
		return err
	}
	if count < 0 {
		return fmt.Errorf("%w: skip count must be non-negative, got %d", ml.ErrInvalidArgument, count)
	}

	o.values = []any{&datasetValue{
		types:  in.types,
		shapes: in.shapes,
		newCursor: func() cursor {
			return &skipCursor{in: in.newCursor(), toSkip: count}
		},
	}}
	return nil
}

func evalPrefetchDataset(e *Environment, o *operation) error {
	in, depth, err := datasetAndCount(e, o)
	if err != nil {
		return err
	}
	if depth <= 0 {
		return fmt.Errorf("%w: prefetch buffer must be positive, got %d", ml.ErrInvalidArgument, depth)
	}

	o.values = []any{&datasetValue{
		types:  in.types,
		shapes: in.shapes,
		newCursor: func() cursor {
			return newPrefetchCursor(in.newCursor(), depth)
		},
	}}
	return nil
}

// datasetAndCount loest das Eingangsmuster (Dataset-Variant, i64-Skalar) auf.
func datasetAndCount(e *Environment, o *operation) (*datasetValue, int64, error) {
	ds, err := datasetOf(e, o.inputs[0])
	if err != nil {
		return nil, 0, err
	}
	t, err := tensorOf(e, o.inputs[1])
	if err != nil {
		return nil, 0, err
	}
	if t.dtype != ml.DTypeI64 || t.shape.Rank() != 0 {
		return nil, 0, fmt.Errorf("%w: %s count must be an i64 scalar", ml.ErrInvalidArgument, o.kind)
	}
	return ds, t.Int64s()[0], nil
}

func tensorOf(e *Environment, out ml.Output) (*Tensor, error) {
	v, err := e.valueOf(out)
	if err != nil {
		return nil, err
	}
	t, ok := v.(*Tensor)
	if !ok {
		return nil, fmt.Errorf("%w: operand is not a tensor", ml.ErrInvalidArgument)
	}
	return t, nil
}

func datasetOf(e *Environment, out ml.Output) (*datasetValue, error) {
	v, err := e.valueOf(out)
	if err != nil {
		return nil, err
	}
	ds, ok := v.(*datasetValue)
	if !ok {
		return nil, fmt.Errorf("%w: operand is not a dataset", ml.ErrInvalidArgument)
	}
	return ds, nil
}

func optionalOf(e *Environment, out ml.Output) (*optionalValue, error) {
	v, err := e.valueOf(out)
	if err != nil {
		return nil, err
	}
	opt, ok := v.(*optionalValue)
	if !ok {
		return nil, fmt.Errorf("%w: operand is not an optional", ml.ErrInvalidArgument)
	}
	return opt, nil
}

func stateOf(e *Environment, out ml.Output) (*iteratorState, error) {
	v, err := e.valueOf(out)
	if err != nil {
		return nil, err
	}
	handle, ok := v.(resourceHandle)
	if !ok {
		return nil, fmt.Errorf("%w: operand is not an iterator resource", ml.ErrInvalidArgument)
	}
	st, ok := e.resources[handle]
	if !ok {
		return nil, fmt.Errorf("%w: unknown iterator resource", ml.ErrInvalidArgument)
	}
	return st, nil
}

func shapesEqual(a, b []ml.Shape) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}
