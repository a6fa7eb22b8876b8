// backend.go - In-Prozess-Referenz-Engine fuer die Binding-Schicht
// Enthält: Environment struct, Registrierung, OperationBuilder, Operation
//
// Die Engine ist bewusst klein: im Graph-Modus baut und haelt sie unveraenderliche
// benannte Knoten (kein Scheduling, keine Graph-Ausfuehrung), im Eager-Modus
// fuehrt sie jeden Knoten beim Build aus. Sie besitzt alle Ressourcen und Werte;
// die Binding-Schicht haelt nur Handles.
package mem

import (
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"sync"

	"github.com/7blacky7/tensorbind/ml"
)

func init() {
	ml.RegisterEnvironment("mem", func(params ml.EnvironmentParams) (ml.Environment, error) {
		return New(params.Mode), nil
	})
}

// Environment ist die mem-Implementierung eines Ausfuehrungskontexts.
type Environment struct {
	mode ml.Mode

	// mu serialisiert Build-Aufrufe; die Binding-Objekte selbst
	// synchronisieren nichts (das ist Sache der Engine).
	mu sync.Mutex

	ops       map[string]*operation
	resources map[resourceHandle]*iteratorState
}

// New erstellt ein frisches mem-Environment im angegebenen Modus.
func New(mode ml.Mode) *Environment {
	return &Environment{
		mode:      mode,
		ops:       make(map[string]*operation),
		resources: make(map[resourceHandle]*iteratorState),
	}
}

// Mode gibt den Modus des Environments zurueck.
func (e *Environment) Mode() ml.Mode {
	return e.mode
}

// OpBuilder beginnt den Bau eines Knotens der angegebenen Art.
func (e *Environment) OpBuilder(kind, name string) ml.OperationBuilder {
	return &opBuilder{env: e, kind: kind, name: name, attrs: make(map[string]any)}
}

// NumOps gibt die Anzahl der gebauten Knoten zurueck.
func (e *Environment) NumOps() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.ops)
}

// opBuilder sammelt Eingaenge, Control-Eingaenge und Attribute eines Knotens.
type opBuilder struct {
	env      *Environment
	kind     string
	name     string
	inputs   []ml.Output
	controls []ml.Operation
	attrs    map[string]any
}

func (b *opBuilder) AddInput(o ml.Output) ml.OperationBuilder {
	b.inputs = append(b.inputs, o)
	return b
}

func (b *opBuilder) AddInputList(os []ml.Output) ml.OperationBuilder {
	b.inputs = append(b.inputs, os...)
	return b
}

func (b *opBuilder) AddControlInput(o ml.Operation) ml.OperationBuilder {
	b.controls = append(b.controls, o)
	return b
}

func (b *opBuilder) SetAttr(name string, value any) ml.OperationBuilder {
	b.attrs[name] = value
	return b
}

// Build konstruiert den Knoten. Im Eager-Modus wird er sofort ausgefuehrt;
// Fehler der Ausfuehrung (z.B. ml.ErrOutOfRange) kommen unveraendert zurueck.
func (b *opBuilder) Build() (ml.Operation, error) {
	def, ok := opDefs[b.kind]
	if !ok {
		return nil, fmt.Errorf("%w: unknown operation kind %q", ml.ErrInvalidArgument, b.kind)
	}

	if def.numInputs >= 0 && len(b.inputs) != def.numInputs {
		return nil, fmt.Errorf("%w: %s expects %d inputs, got %d",
			ml.ErrInvalidArgument, b.kind, def.numInputs, len(b.inputs))
	}
	if def.numInputs < 0 && len(b.inputs) == 0 {
		return nil, fmt.Errorf("%w: %s expects at least one input", ml.ErrInvalidArgument, b.kind)
	}

	// Alle Eingaenge muessen aus diesem Environment stammen
	for i, in := range b.inputs {
		if _, err := b.env.operandOf(in); err != nil {
			return nil, fmt.Errorf("input %d of %s: %w", i, b.name, err)
		}
	}

	b.env.mu.Lock()
	defer b.env.mu.Unlock()

	if _, exists := b.env.ops[b.name]; exists {
		return nil, fmt.Errorf("%w: duplicate operation name %q", ml.ErrInvalidArgument, b.name)
	}

	outputs, err := def.infer(b)
	if err != nil {
		return nil, err
	}

	o := &operation{
		env:      b.env,
		name:     b.name,
		kind:     b.kind,
		inputs:   slices.Clone(b.inputs),
		controls: slices.Clone(b.controls),
		attrs:    maps.Clone(b.attrs),
		outputs:  outputs,
	}

	if b.env.mode == ml.EagerMode {
		if err := def.eval(b.env, o); err != nil {
			return nil, err
		}
	}

	b.env.ops[b.name] = o
	slog.Debug("op built", "kind", b.kind, "name", b.name, "mode", b.env.mode.String())
	return o, nil
}

// operandOf prueft die Herkunft eines Operanden gegen dieses Environment.
func (e *Environment) operandOf(out ml.Output) (*operation, error) {
	o, ok := out.Op.(*operation)
	if !ok || o.env != e {
		return nil, fmt.Errorf("%w: operand was built by a different environment", ml.ErrInvalidArgument)
	}
	if out.Index < 0 || out.Index >= len(o.outputs) {
		return nil, fmt.Errorf("%w: output index %d out of bounds for %q", ml.ErrInvalidArgument, out.Index, o.name)
	}
	return o, nil
}

// valueOf loest einen Operanden in seinen konkreten Eager-Wert auf.
func (e *Environment) valueOf(out ml.Output) (any, error) {
	o, err := e.operandOf(out)
	if err != nil {
		return nil, err
	}
	if out.Index >= len(o.values) {
		return nil, fmt.Errorf("%w: no concrete value for output %d of %q", ml.ErrFailedPrecondition, out.Index, o.name)
	}
	return o.values[out.Index], nil
}

// outputSpec beschreibt Typ und Form eines Knoten-Ausgangs.
type outputSpec struct {
	dtype ml.DType
	shape ml.Shape
}

// operation ist ein unveraenderlicher benannter Knoten.
type operation struct {
	env      *Environment
	name     string
	kind     string
	inputs   []ml.Output
	controls []ml.Operation
	attrs    map[string]any
	outputs  []outputSpec

	// values haelt die konkreten Ausgabewerte im Eager-Modus:
	// *Tensor, *datasetValue, *optionalValue oder resourceHandle.
	values []any
}

func (o *operation) Name() string { return o.name }
func (o *operation) Kind() string { return o.kind }

func (o *operation) NumOutputs() int { return len(o.outputs) }

func (o *operation) OutputDType(i int) ml.DType {
	return o.outputs[i].dtype
}

func (o *operation) OutputShape(i int) ml.Shape {
	return o.outputs[i].shape.Clone()
}

// OutputValue gibt den konkreten Tensor eines Ausgangs zurueck. Im
// Graph-Modus existiert kein Wert; Handle-Ausgaenge sind keine Tensoren.
func (o *operation) OutputValue(i int) (ml.Tensor, error) {
	if o.env.mode != ml.EagerMode {
		return nil, fmt.Errorf("%w: no concrete value in graph mode", ml.ErrFailedPrecondition)
	}
	if i < 0 || i >= len(o.values) {
		return nil, fmt.Errorf("%w: output index %d out of bounds for %q", ml.ErrInvalidArgument, i, o.name)
	}
	t, ok := o.values[i].(*Tensor)
	if !ok {
		return nil, fmt.Errorf("%w: output %d of %q is not a tensor", ml.ErrInvalidArgument, i, o.name)
	}
	return t, nil
}

func (o *operation) Env() ml.Environment {
	return o.env
}
