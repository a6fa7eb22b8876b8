// identity.go - Identity-Operator (Durchreich-Operation)
package op

import "github.com/7blacky7/tensorbind/ml"

// Identity connects one input unchanged to one output. It is the simplest
// instance of the wrapper pattern: build a fixed-kind node, capture output 0,
// serve as an operand elsewhere. The wrapper validates nothing; environment
// errors propagate unchanged.
type Identity struct {
	RawOp
	output ml.Output
}

// NewIdentity baut einen Identity-Knoten ueber dem angegebenen Eingang.
func NewIdentity(s *Scope, input ml.Operand) (*Identity, error) {
	operation, err := s.Builder("Identity", "Identity").
		AddInput(input.AsOutput()).
		Build()
	if err != nil {
		return nil, err
	}

	return &Identity{
		RawOp:  NewRawOp(operation),
		output: ml.Output{Op: operation, Index: 0},
	}, nil
}

// Output gibt den Ausgang des Knotens zurueck.
func (id *Identity) Output() ml.Output {
	return id.output
}

// AsOutput erlaubt die Verwendung des Wrappers als Operand.
func (id *Identity) AsOutput() ml.Output {
	return id.output
}
