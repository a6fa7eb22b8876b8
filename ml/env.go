// env.go - Environment-Interface und Registrierung fuer Ausfuehrungskontexte
// Dieses Modul definiert die Schnittstelle zur externen Engine und die
// Environment-Factory-Funktionen.
package ml

import "fmt"

// Mode unterscheidet Graph-Aufbau von sofortiger Ausfuehrung.
type Mode int

const (
	// GraphMode builds named, immutable operation nodes without executing them.
	GraphMode Mode = iota

	// EagerMode executes each operation as soon as it is built.
	EagerMode
)

func (m Mode) String() string {
	switch m {
	case GraphMode:
		return "graph"
	case EagerMode:
		return "eager"
	default:
		return "unknown"
	}
}

// Environment is the external execution context that owns all operations,
// resources and values. The binding layer holds non-owning references into it
// and never releases anything. Comparing two Environment interface values
// identifies whether two bindings share the same environment instance.
type Environment interface {
	// OpBuilder starts construction of a new operation node of the given kind
	// under the given name. The name must be unique within the environment.
	OpBuilder(kind, name string) OperationBuilder

	Mode() Mode
}

// OperationBuilder accumulates inputs, control inputs and attributes for one
// operation node. Build constructs the node, or in eager environments builds
// and executes it. Validation of inputs against the operation kind is the
// environment's responsibility; builder methods never fail on their own.
type OperationBuilder interface {
	AddInput(Output) OperationBuilder
	AddInputList([]Output) OperationBuilder
	AddControlInput(Operation) OperationBuilder
	SetAttr(name string, value any) OperationBuilder
	Build() (Operation, error)
}

// Operation is one immutable named node owned by its environment.
type Operation interface {
	Name() string
	Kind() string
	NumOutputs() int
	OutputDType(i int) DType
	OutputShape(i int) Shape

	// OutputValue returns the concrete value of an output in eager
	// environments. In graph environments no value exists.
	OutputValue(i int) (Tensor, error)

	Env() Environment
}

// Tensor is a read-only view of one concrete value in an eager environment.
type Tensor interface {
	DType() DType
	Shape() Shape
	Bytes() []byte
	Floats() []float32
	Ints() []int32
	Int64s() []int64
	Bools() []bool
}

// EnvironmentParams steuert die Erstellung eines Environments.
type EnvironmentParams struct {
	Mode Mode
}

var environments = make(map[string]func(EnvironmentParams) (Environment, error))

// RegisterEnvironment registers an environment factory function.
func RegisterEnvironment(name string, f func(EnvironmentParams) (Environment, error)) {
	if _, ok := environments[name]; ok {
		panic("ml: environment already registered: " + name)
	}

	environments[name] = f
}

// NewEnvironment creates a new execution environment of the given kind.
func NewEnvironment(name string, params EnvironmentParams) (Environment, error) {
	if f, ok := environments[name]; ok {
		return f(params)
	}

	return nil, fmt.Errorf("%w: unsupported environment %q", ErrInvalidArgument, name)
}
