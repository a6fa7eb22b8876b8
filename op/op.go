// op.go - Gemeinsame Basis fuer Operator-Wrapper
package op

import "github.com/7blacky7/tensorbind/ml"

// RawOp holds the built operation node behind an operator wrapper. Wrappers
// embed RawOp and expose their outputs by position.
type RawOp struct {
	operation ml.Operation
}

// NewRawOp wickelt eine bereits gebaute Operation ein.
func NewRawOp(operation ml.Operation) RawOp {
	return RawOp{operation: operation}
}

// Op gibt die zugrunde liegende Operation zurueck.
func (r RawOp) Op() ml.Operation {
	return r.operation
}
