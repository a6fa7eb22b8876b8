// operand.go - Typisierte Verweise auf Operations-Ausgaenge
// Output identifiziert einen Ausgang positionsbezogen; Operand ist alles,
// was als Eingang einer weiteren Operation dienen kann.
package ml

import (
	"fmt"
	"log/slog"
)

// Output is a typed handle to one positional output of an operation. The
// zero value refers to no operation.
type Output struct {
	Op    Operation
	Index int
}

// DType gibt den deklarierten Elementtyp des Ausgangs zurueck.
func (o Output) DType() DType {
	if o.Op == nil {
		return DTypeOther
	}
	return o.Op.OutputDType(o.Index)
}

// Shape gibt die deklarierte Form des Ausgangs zurueck.
func (o Output) Shape() Shape {
	if o.Op == nil {
		return nil
	}
	return o.Op.OutputShape(o.Index)
}

// Value returns the concrete value behind this handle in eager environments.
func (o Output) Value() (Tensor, error) {
	if o.Op == nil {
		return nil, fmt.Errorf("%w: output refers to no operation", ErrInvalidArgument)
	}
	return o.Op.OutputValue(o.Index)
}

// AsOutput macht Output selbst zu einem Operand.
func (o Output) AsOutput() Output {
	return o
}

// LogValue gibt den Output als slog-Wert zurueck.
func (o Output) LogValue() slog.Value {
	if o.Op == nil {
		return slog.StringValue("<none>")
	}
	return slog.GroupValue(
		slog.String("op", o.Op.Name()),
		slog.Int("index", o.Index),
		slog.String("dtype", o.DType().String()),
		slog.String("shape", o.Shape().String()),
	)
}

// Operand is anything that can serve as an input to an operation: either an
// Output directly or an operator wrapper exposing one.
type Operand interface {
	AsOutput() Output
}
