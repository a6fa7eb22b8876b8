// types.go - Datentypen und Formen fuer Graph-Elemente
// Dieses Modul definiert DType und Shape mit struktureller Gleichheit.
package ml

import (
	"fmt"
	"slices"
	"strings"
)

// DType represents the data type of the elements of a tensor component.
type DType int

const (
	DTypeOther DType = iota
	DTypeF32
	DTypeF64
	DTypeF16
	DTypeBF16
	DTypeI32
	DTypeI64
	DTypeBool

	// DTypeResource kennzeichnet opake Ressourcen-Handles (z.B. Iteratoren).
	DTypeResource

	// DTypeVariant kennzeichnet opake Engine-Werte (z.B. Datasets, Optionals).
	DTypeVariant
)

func (d DType) String() string {
	switch d {
	case DTypeF32:
		return "f32"
	case DTypeF64:
		return "f64"
	case DTypeF16:
		return "f16"
	case DTypeBF16:
		return "bf16"
	case DTypeI32:
		return "i32"
	case DTypeI64:
		return "i64"
	case DTypeBool:
		return "bool"
	case DTypeResource:
		return "resource"
	case DTypeVariant:
		return "variant"
	default:
		return "other"
	}
}

// Size gibt die Groesse eines Elements in Bytes zurueck.
// Fuer Handle-Typen ohne Speicher-Repraesentation ist die Groesse 0.
func (d DType) Size() int {
	switch d {
	case DTypeF32, DTypeI32:
		return 4
	case DTypeF64, DTypeI64:
		return 8
	case DTypeF16, DTypeBF16:
		return 2
	case DTypeBool:
		return 1
	default:
		return 0
	}
}

// Shape describes the form of one tensor component. A dimension of -1 means
// the size is unknown at graph construction time. The empty shape is a scalar.
type Shape []int64

// MakeShape erstellt eine Shape aus den angegebenen Dimensionen.
func MakeShape(dims ...int64) Shape {
	return Shape(dims)
}

// ScalarShape gibt die Form eines Skalars zurueck.
func ScalarShape() Shape {
	return Shape{}
}

// Rank gibt die Anzahl der Dimensionen zurueck.
func (s Shape) Rank() int {
	return len(s)
}

// NumElements returns the total element count, or -1 if any dimension is
// unknown.
func (s Shape) NumElements() int64 {
	n := int64(1)
	for _, dim := range s {
		if dim < 0 {
			return -1
		}
		n *= dim
	}
	return n
}

// Equal compares two shapes dimension for dimension. Unknown dimensions only
// compare equal to unknown dimensions.
func (s Shape) Equal(other Shape) bool {
	return slices.Equal(s, other)
}

// Clone gibt eine Kopie der Shape zurueck.
func (s Shape) Clone() Shape {
	return slices.Clone(s)
}

func (s Shape) String() string {
	dims := make([]string, len(s))
	for i, dim := range s {
		if dim < 0 {
			dims[i] = "?"
		} else {
			dims[i] = fmt.Sprintf("%d", dim)
		}
	}
	return "[" + strings.Join(dims, " ") + "]"
}

// CloneShapes kopiert eine Liste von Shapes.
func CloneShapes(shapes []Shape) []Shape {
	out := make([]Shape, len(shapes))
	for i, s := range shapes {
		out[i] = s.Clone()
	}
	return out
}
