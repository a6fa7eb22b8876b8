// backend_test.go - Unit-Tests fuer Build-Semantik der mem-Engine
package mem

import (
	"errors"
	"testing"

	"github.com/7blacky7/tensorbind/ml"
)

// buildConst baut einen Const-Knoten direkt ueber den OperationBuilder.
func buildConst(t *testing.T, e *Environment, name string, values []float32) ml.Operation {
	t.Helper()

	o, err := e.OpBuilder("Const", name).
		SetAttr("dtype", ml.DTypeF32).
		SetAttr("shape", ml.MakeShape(int64(len(values)))).
		SetAttr("value", values).
		Build()
	if err != nil {
		t.Fatalf("Const %q: unerwarteter Fehler: %v", name, err)
	}
	return o
}

// TestRegisteredEngine prueft die Registrierung unter dem Namen "mem".
func TestRegisteredEngine(t *testing.T) {
	env, err := ml.NewEnvironment("mem", ml.EnvironmentParams{Mode: ml.EagerMode})
	if err != nil {
		t.Fatalf("NewEnvironment: unerwarteter Fehler: %v", err)
	}
	if env.Mode() != ml.EagerMode {
		t.Errorf("Mode: erwartet eager, bekommen %s", env.Mode())
	}

	if _, err := ml.NewEnvironment("no-such-engine", ml.EnvironmentParams{}); !errors.Is(err, ml.ErrInvalidArgument) {
		t.Errorf("unbekannte Engine: erwartet ErrInvalidArgument, bekommen %v", err)
	}
}

// TestBuildUnknownKind prueft die Ablehnung unbekannter Knoten-Arten.
func TestBuildUnknownKind(t *testing.T) {
	e := New(ml.GraphMode)

	if _, err := e.OpBuilder("Frobnicate", "f").Build(); !errors.Is(err, ml.ErrInvalidArgument) {
		t.Errorf("erwartet ErrInvalidArgument, bekommen %v", err)
	}
	if e.NumOps() != 0 {
		t.Errorf("NumOps: erwartet 0, bekommen %d", e.NumOps())
	}
}

// TestBuildDuplicateName prueft die Eindeutigkeit der Knoten-Namen.
func TestBuildDuplicateName(t *testing.T) {
	e := New(ml.GraphMode)
	buildConst(t, e, "c", []float32{1})

	_, err := e.OpBuilder("Const", "c").
		SetAttr("dtype", ml.DTypeF32).
		SetAttr("shape", ml.MakeShape(1)).
		SetAttr("value", []float32{2}).
		Build()
	if !errors.Is(err, ml.ErrInvalidArgument) {
		t.Errorf("erwartet ErrInvalidArgument, bekommen %v", err)
	}
	if e.NumOps() != 1 {
		t.Errorf("NumOps: erwartet 1, bekommen %d", e.NumOps())
	}
}

// TestBuildArity prueft die Eingangszahl-Pruefung.
func TestBuildArity(t *testing.T) {
	e := New(ml.GraphMode)

	// Identity erwartet genau einen Eingang
	if _, err := e.OpBuilder("Identity", "id").Build(); !errors.Is(err, ml.ErrInvalidArgument) {
		t.Errorf("Identity ohne Eingang: erwartet ErrInvalidArgument, bekommen %v", err)
	}

	// TensorSliceDataset ist variadisch, braucht aber mindestens einen
	_, err := e.OpBuilder("TensorSliceDataset", "ds").
		SetAttr("output_types", []ml.DType{}).
		SetAttr("output_shapes", []ml.Shape{}).
		Build()
	if !errors.Is(err, ml.ErrInvalidArgument) {
		t.Errorf("TensorSliceDataset ohne Eingang: erwartet ErrInvalidArgument, bekommen %v", err)
	}
}

// TestBuildForeignOperand prueft die Environment-Herkunft der Eingaenge.
func TestBuildForeignOperand(t *testing.T) {
	a := New(ml.EagerMode)
	b := New(ml.EagerMode)

	foreign := buildConst(t, a, "c", []float32{1})

	_, err := b.OpBuilder("Identity", "id").
		AddInput(ml.Output{Op: foreign, Index: 0}).
		Build()
	if !errors.Is(err, ml.ErrInvalidArgument) {
		t.Errorf("erwartet ErrInvalidArgument, bekommen %v", err)
	}
}

// TestOutputValueGraphMode prueft, dass Graph-Knoten keine Werte tragen.
func TestOutputValueGraphMode(t *testing.T) {
	e := New(ml.GraphMode)
	o := buildConst(t, e, "c", []float32{1, 2})

	// Struktur ist auch im Graph-Modus bekannt
	if got := o.OutputDType(0); got != ml.DTypeF32 {
		t.Errorf("dtype: erwartet f32, bekommen %s", got)
	}
	if !o.OutputShape(0).Equal(ml.MakeShape(2)) {
		t.Errorf("shape: erwartet [2], bekommen %s", o.OutputShape(0))
	}

	if _, err := o.OutputValue(0); !errors.Is(err, ml.ErrFailedPrecondition) {
		t.Errorf("erwartet ErrFailedPrecondition, bekommen %v", err)
	}
}

// TestOutputValueEager prueft den konkreten Wert im Eager-Modus.
func TestOutputValueEager(t *testing.T) {
	e := New(ml.EagerMode)
	o := buildConst(t, e, "c", []float32{1.5, -2})

	value, err := o.OutputValue(0)
	if err != nil {
		t.Fatalf("OutputValue: unerwarteter Fehler: %v", err)
	}
	got := value.Floats()
	if len(got) != 2 || got[0] != 1.5 || got[1] != -2 {
		t.Errorf("Werte: erwartet [1.5 -2], bekommen %v", got)
	}
}

// TestOutputValueNonTensor prueft Handle-Ausgaenge ohne Tensor-Wert.
func TestOutputValueNonTensor(t *testing.T) {
	e := New(ml.EagerMode)

	o, err := e.OpBuilder("AnonymousIterator", "it").
		SetAttr("output_types", []ml.DType{ml.DTypeF32}).
		SetAttr("output_shapes", []ml.Shape{ml.MakeShape(2)}).
		Build()
	if err != nil {
		t.Fatalf("AnonymousIterator: unerwarteter Fehler: %v", err)
	}

	if got := o.OutputDType(0); got != ml.DTypeResource {
		t.Errorf("dtype: erwartet resource, bekommen %s", got)
	}
	if _, err := o.OutputValue(0); !errors.Is(err, ml.ErrInvalidArgument) {
		t.Errorf("erwartet ErrInvalidArgument, bekommen %v", err)
	}
}

// TestStructureAttrsValidation prueft die Laengenpruefung der
// Struktur-Attribute.
func TestStructureAttrsValidation(t *testing.T) {
	e := New(ml.GraphMode)

	_, err := e.OpBuilder("AnonymousIterator", "it").
		SetAttr("output_types", []ml.DType{ml.DTypeF32, ml.DTypeI32}).
		SetAttr("output_shapes", []ml.Shape{ml.MakeShape(2)}).
		Build()
	if !errors.Is(err, ml.ErrInvalidArgument) {
		t.Errorf("erwartet ErrInvalidArgument, bekommen %v", err)
	}

	// Fehlendes Attribut
	_, err = e.OpBuilder("AnonymousIterator", "it2").
		SetAttr("output_types", []ml.DType{ml.DTypeF32}).
		Build()
	if !errors.Is(err, ml.ErrInvalidArgument) {
		t.Errorf("fehlendes Attribut: erwartet ErrInvalidArgument, bekommen %v", err)
	}
}
