// const.go - Const-Operator fuer Host-Daten
package op

import "github.com/7blacky7/tensorbind/ml"

// Const builds a node holding a constant value and returns its output handle.
// The value travels as an attribute; accepted Go representations are the
// environment's concern (the reference engine takes scalars and flat slices
// of float32/float64/int32/int64/bool). Length and shape are validated by the
// environment at build time.
func Const(s *Scope, value any, dtype ml.DType, shape ml.Shape) (ml.Output, error) {
	operation, err := s.Builder("Const", "Const").
		SetAttr("dtype", dtype).
		SetAttr("shape", shape.Clone()).
		SetAttr("value", value).
		Build()
	if err != nil {
		return ml.Output{}, err
	}

	return ml.Output{Op: operation, Index: 0}, nil
}
