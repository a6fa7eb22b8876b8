// iterator_test.go - Unit-Tests fuer DatasetIterator
//
// Die Tests verwenden die mem-Engine: Graph-Modus fuer Konstruktions- und
// Struktur-Pruefungen, Eager-Modus fuer das Durchlaufen konkreter Elemente.
package data

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/7blacky7/tensorbind/ml"
	"github.com/7blacky7/tensorbind/ml/backend/mem"
	"github.com/7blacky7/tensorbind/op"
)

// eagerScope erstellt einen Scope ueber einer frischen Eager-Engine.
func eagerScope(t *testing.T) *op.Scope {
	t.Helper()
	return op.NewScope(mem.New(ml.EagerMode))
}

// graphScope erstellt einen Scope ueber einer frischen Graph-Engine.
func graphScope(t *testing.T) *op.Scope {
	t.Helper()
	return op.NewScope(mem.New(ml.GraphMode))
}

// sliceDataset baut ein Dataset mit den Zeilen einer [n 2]-f32-Matrix.
func sliceDataset(t *testing.T, s *op.Scope, rows [][2]float32) *Dataset {
	t.Helper()

	flat := make([]float32, 0, len(rows)*2)
	for _, r := range rows {
		flat = append(flat, r[0], r[1])
	}

	c, err := op.Const(s, flat, ml.DTypeF32, ml.MakeShape(int64(len(rows)), 2))
	if err != nil {
		t.Fatalf("Const: unerwarteter Fehler: %v", err)
	}

	ds, err := FromTensorSlices(s, []ml.Operand{c})
	if err != nil {
		t.Fatalf("FromTensorSlices: unerwarteter Fehler: %v", err)
	}
	return ds
}

// TestFromStructureGraph prueft den ungebundenen Zustand im Graph-Modus.
func TestFromStructureGraph(t *testing.T) {
	s := graphScope(t)

	it, err := FromStructure(s, []ml.DType{ml.DTypeF32}, []ml.Shape{ml.MakeShape(2)})
	if err != nil {
		t.Fatalf("FromStructure: unerwarteter Fehler: %v", err)
	}

	if got := it.IteratorResource().DType(); got != ml.DTypeResource {
		t.Errorf("Ressource: erwartet dtype resource, bekommen %s", got)
	}
	if it.IteratorResource().Op.Kind() != "Iterator" {
		t.Errorf("Ressource: erwartet Iterator-Knoten, bekommen %s", it.IteratorResource().Op.Kind())
	}
	if it.Initializer() != nil {
		t.Error("Initializer: sollte vor MakeInitializer nil sein")
	}
}

// TestFromStructureEager prueft die anonyme Ressource im Eager-Modus.
func TestFromStructureEager(t *testing.T) {
	s := eagerScope(t)

	it, err := FromStructure(s, []ml.DType{ml.DTypeF32}, []ml.Shape{ml.MakeShape(2)})
	if err != nil {
		t.Fatalf("FromStructure: unerwarteter Fehler: %v", err)
	}

	if it.IteratorResource().Op.Kind() != "AnonymousIterator" {
		t.Errorf("Ressource: erwartet AnonymousIterator-Knoten, bekommen %s", it.IteratorResource().Op.Kind())
	}
}

// TestFromStructureInvalid prueft die Strukturinvarianten.
func TestFromStructureInvalid(t *testing.T) {
	tests := []struct {
		name   string
		types  []ml.DType
		shapes []ml.Shape
	}{
		{
			name:   "leere Struktur",
			types:  nil,
			shapes: nil,
		},
		{
			name:   "Laengen ungleich",
			types:  []ml.DType{ml.DTypeF32, ml.DTypeI32},
			shapes: []ml.Shape{ml.MakeShape(2)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromStructure(eagerScope(t), tt.types, tt.shapes)
			if !errors.Is(err, ml.ErrInvalidArgument) {
				t.Errorf("erwartet ErrInvalidArgument, bekommen %v", err)
			}
		})
	}
}

// TestMakeInitializerStructure prueft die elementweise Strukturpruefung.
func TestMakeInitializerStructure(t *testing.T) {
	tests := []struct {
		name   string
		types  []ml.DType
		shapes []ml.Shape
		wantOK bool
	}{
		{
			name:   "gleiche Struktur",
			types:  []ml.DType{ml.DTypeF32},
			shapes: []ml.Shape{ml.MakeShape(2)},
			wantOK: true,
		},
		{
			name:   "Typ verschieden",
			types:  []ml.DType{ml.DTypeI32},
			shapes: []ml.Shape{ml.MakeShape(2)},
		},
		{
			name:   "Form verschieden",
			types:  []ml.DType{ml.DTypeF32},
			shapes: []ml.Shape{ml.MakeShape(3)},
		},
		{
			name:   "Komponentenzahl verschieden",
			types:  []ml.DType{ml.DTypeF32, ml.DTypeF32},
			shapes: []ml.Shape{ml.MakeShape(2), ml.MakeShape(2)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := eagerScope(t)
			ds := sliceDataset(t, s, [][2]float32{{1, 2}, {3, 4}})

			it, err := FromStructure(s, tt.types, tt.shapes)
			if err != nil {
				t.Fatalf("FromStructure: unerwarteter Fehler: %v", err)
			}

			initializer, err := it.MakeInitializer(ds)
			if tt.wantOK {
				if err != nil {
					t.Fatalf("MakeInitializer: unerwarteter Fehler: %v", err)
				}
				if initializer == nil || it.Initializer() != initializer {
					t.Error("MakeInitializer: Operation sollte gespeichert und zurueckgegeben werden")
				}
				return
			}
			if !errors.Is(err, ml.ErrInvalidArgument) {
				t.Errorf("erwartet ErrInvalidArgument, bekommen %v", err)
			}
			if it.Initializer() != nil {
				t.Error("Initializer: sollte nach fehlgeschlagener Pruefung nil bleiben")
			}
		})
	}
}

// TestMakeInitializerEnvironmentMismatch prueft die Environment-Identitaet.
// Auch bei gleicher Struktur muss ein fremdes Environment abgelehnt werden.
func TestMakeInitializerEnvironmentMismatch(t *testing.T) {
	sA := eagerScope(t)
	sB := eagerScope(t)

	ds := sliceDataset(t, sB, [][2]float32{{1, 2}})

	it, err := FromStructure(sA, ds.OutputTypes(), ds.OutputShapes())
	if err != nil {
		t.Fatalf("FromStructure: unerwarteter Fehler: %v", err)
	}

	if _, err := it.MakeInitializer(ds); !errors.Is(err, ml.ErrInvalidArgument) {
		t.Errorf("erwartet ErrInvalidArgument, bekommen %v", err)
	}
}

// TestGetNextExhaustion prueft: genau N Fetches, dann ErrOutOfRange.
func TestGetNextExhaustion(t *testing.T) {
	rows := [][2]float32{{1, 2}, {3, 4}, {5, 6}, {7, 8}}

	s := eagerScope(t)
	it, err := sliceDataset(t, s, rows).MakeIterator()
	if err != nil {
		t.Fatalf("MakeIterator: unerwarteter Fehler: %v", err)
	}

	for i, want := range rows {
		components, err := it.GetNext()
		if err != nil {
			t.Fatalf("GetNext %d: unerwarteter Fehler: %v", i, err)
		}
		if len(components) != 1 {
			t.Fatalf("GetNext %d: erwartet 1 Komponente, bekommen %d", i, len(components))
		}

		value, err := components[0].Value()
		if err != nil {
			t.Fatalf("Value %d: unerwarteter Fehler: %v", i, err)
		}
		if diff := cmp.Diff(want[:], value.Floats()); diff != "" {
			t.Errorf("Element %d (-want +got):\n%s", i, diff)
		}
	}

	// N+1 und alle weiteren Fetches melden das Ende
	for i := 0; i < 2; i++ {
		if _, err := it.GetNext(); !errors.Is(err, ml.ErrOutOfRange) {
			t.Errorf("GetNext nach Ende: erwartet ErrOutOfRange, bekommen %v", err)
		}
	}
}

// TestGetNextAsOptional prueft: N Elemente mit Wert, dann ohne Wert,
// und niemals ErrOutOfRange.
func TestGetNextAsOptional(t *testing.T) {
	rows := [][2]float32{{1, 2}, {3, 4}, {5, 6}}

	s := eagerScope(t)
	it, err := sliceDataset(t, s, rows).MakeIterator()
	if err != nil {
		t.Fatalf("MakeIterator: unerwarteter Fehler: %v", err)
	}

	for i, want := range rows {
		optional, err := it.GetNextAsOptional()
		if err != nil {
			t.Fatalf("GetNextAsOptional %d: unerwarteter Fehler: %v", i, err)
		}

		if got := hasValue(t, optional); !got {
			t.Fatalf("Optional %d: erwartet Wert, bekommen leer", i)
		}

		components, err := optional.Value()
		if err != nil {
			t.Fatalf("Value %d: unerwarteter Fehler: %v", i, err)
		}
		value, err := components[0].Value()
		if err != nil {
			t.Fatalf("Tensor %d: unerwarteter Fehler: %v", i, err)
		}
		if diff := cmp.Diff(want[:], value.Floats()); diff != "" {
			t.Errorf("Element %d (-want +got):\n%s", i, diff)
		}
	}

	optional, err := it.GetNextAsOptional()
	if err != nil {
		t.Fatalf("GetNextAsOptional nach Ende: unerwarteter Fehler: %v", err)
	}
	if hasValue(t, optional) {
		t.Error("Optional nach Ende: sollte leer sein")
	}

	// Wert eines leeren Optionals ist ein Argumentfehler, kein Ende-Signal
	if _, err := optional.Value(); !errors.Is(err, ml.ErrInvalidArgument) {
		t.Errorf("Value auf leerem Optional: erwartet ErrInvalidArgument, bekommen %v", err)
	}
}

func hasValue(t *testing.T, optional *DatasetOptional) bool {
	t.Helper()

	hv, err := optional.HasValue()
	if err != nil {
		t.Fatalf("HasValue: unerwarteter Fehler: %v", err)
	}
	value, err := hv.Value()
	if err != nil {
		t.Fatalf("HasValue-Tensor: unerwarteter Fehler: %v", err)
	}
	return value.Bools()[0]
}

// TestGetNextUninitialized prueft den definierten Fehler fuer nie
// initialisierte Iteratoren.
func TestGetNextUninitialized(t *testing.T) {
	s := eagerScope(t)

	it, err := FromStructure(s, []ml.DType{ml.DTypeF32}, []ml.Shape{ml.MakeShape(2)})
	if err != nil {
		t.Fatalf("FromStructure: unerwarteter Fehler: %v", err)
	}

	if _, err := it.GetNext(); !errors.Is(err, ml.ErrFailedPrecondition) {
		t.Errorf("GetNext: erwartet ErrFailedPrecondition, bekommen %v", err)
	}
	if _, err := it.GetNextAsOptional(); !errors.Is(err, ml.ErrFailedPrecondition) {
		t.Errorf("GetNextAsOptional: erwartet ErrFailedPrecondition, bekommen %v", err)
	}
}

// TestStructureImmutable prueft, dass die Getter vor und nach
// MakeInitializer dieselbe Struktur liefern.
func TestStructureImmutable(t *testing.T) {
	s := eagerScope(t)
	ds := sliceDataset(t, s, [][2]float32{{1, 2}})

	it, err := FromStructure(s, ds.OutputTypes(), ds.OutputShapes())
	if err != nil {
		t.Fatalf("FromStructure: unerwarteter Fehler: %v", err)
	}

	typesBefore, shapesBefore := it.OutputTypes(), it.OutputShapes()
	resourceBefore := it.IteratorResource()

	if _, err := it.MakeInitializer(ds); err != nil {
		t.Fatalf("MakeInitializer: unerwarteter Fehler: %v", err)
	}

	if diff := cmp.Diff(typesBefore, it.OutputTypes()); diff != "" {
		t.Errorf("OutputTypes veraendert (-before +after):\n%s", diff)
	}
	if diff := cmp.Diff(shapesBefore, it.OutputShapes()); diff != "" {
		t.Errorf("OutputShapes veraendert (-before +after):\n%s", diff)
	}
	if it.IteratorResource() != resourceBefore {
		t.Error("IteratorResource veraendert")
	}

	// Mutation der Getter-Rueckgaben darf die Struktur nicht beruehren
	it.OutputTypes()[0] = ml.DTypeI64
	it.OutputShapes()[0][0] = 99
	if it.OutputTypes()[0] != typesBefore[0] || it.OutputShapes()[0][0] != shapesBefore[0][0] {
		t.Error("Getter geben keine Kopien zurueck")
	}
}

// TestMakeInitializerRewind prueft, dass erneutes Initialisieren den
// Cursor auf das erste Element zuruecksetzt.
func TestMakeInitializerRewind(t *testing.T) {
	rows := [][2]float32{{1, 2}, {3, 4}}

	s := eagerScope(t)
	ds := sliceDataset(t, s, rows)

	it, err := ds.MakeIterator()
	if err != nil {
		t.Fatalf("MakeIterator: unerwarteter Fehler: %v", err)
	}

	// Bis zum Ende laufen
	for range rows {
		if _, err := it.GetNext(); err != nil {
			t.Fatalf("GetNext: unerwarteter Fehler: %v", err)
		}
	}
	if _, err := it.GetNext(); !errors.Is(err, ml.ErrOutOfRange) {
		t.Fatalf("erwartet ErrOutOfRange, bekommen %v", err)
	}

	if _, err := it.MakeInitializer(ds); err != nil {
		t.Fatalf("MakeInitializer: unerwarteter Fehler: %v", err)
	}

	components, err := it.GetNext()
	if err != nil {
		t.Fatalf("GetNext nach Rewind: unerwarteter Fehler: %v", err)
	}
	value, err := components[0].Value()
	if err != nil {
		t.Fatalf("Value: unerwarteter Fehler: %v", err)
	}
	if diff := cmp.Diff(rows[0][:], value.Floats()); diff != "" {
		t.Errorf("erstes Element nach Rewind (-want +got):\n%s", diff)
	}
}

// TestGetNextGraphSymbolic prueft, dass GetNext im Graph-Modus Handles mit
// deklarierter Struktur liefert, aber keine Werte.
func TestGetNextGraphSymbolic(t *testing.T) {
	s := graphScope(t)
	ds := sliceDataset(t, s, [][2]float32{{1, 2}, {3, 4}})

	it, err := ds.MakeInitializeableIterator()
	if err != nil {
		t.Fatalf("MakeInitializeableIterator: unerwarteter Fehler: %v", err)
	}
	if it.Initializer() == nil {
		t.Fatal("Initializer: sollte im Graph-Modus gesetzt sein")
	}

	components, err := it.GetNext()
	if err != nil {
		t.Fatalf("GetNext: unerwarteter Fehler: %v", err)
	}
	if len(components) != 1 {
		t.Fatalf("erwartet 1 Komponente, bekommen %d", len(components))
	}
	if got := components[0].DType(); got != ml.DTypeF32 {
		t.Errorf("dtype: erwartet f32, bekommen %s", got)
	}
	if !components[0].Shape().Equal(ml.MakeShape(2)) {
		t.Errorf("shape: erwartet [2], bekommen %s", components[0].Shape())
	}

	if _, err := components[0].Value(); !errors.Is(err, ml.ErrFailedPrecondition) {
		t.Errorf("Value im Graph-Modus: erwartet ErrFailedPrecondition, bekommen %v", err)
	}
}
