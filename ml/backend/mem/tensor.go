// tensor.go - Tensor-Werte der mem-Engine
// Enthält: Tensor struct, Kodierung je DType, Zugriffs- und Slice-Methoden.
// Werte liegen als flacher Little-Endian-Byte-Puffer vor; f16/bf16 werden
// ueber die Skalar-Konvertierungen der float16/bfloat16-Pakete kodiert.
package mem

import (
	"encoding/binary"
	"fmt"
	"log/slog"
	"math"

	"github.com/d4l3k/go-bfloat16"
	"github.com/x448/float16"

	"github.com/7blacky7/tensorbind/ml"
)

// Tensor ist ein konkreter Wert im Eager-Modus. Tensoren sind nach dem Bau
// unveraenderlich; Slices teilen den Puffer ihres Ursprungs.
type Tensor struct {
	dtype ml.DType
	shape ml.Shape
	data  []byte
}

// LogValue gibt den Tensor als slog-Wert zurueck.
func (t *Tensor) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("dtype", t.dtype.String()),
		slog.String("shape", t.shape.String()),
		slog.Int("bytes", len(t.data)),
	)
}

// DType gibt den Elementtyp zurueck.
func (t *Tensor) DType() ml.DType {
	return t.dtype
}

// Shape gibt die Form des Tensors zurueck.
func (t *Tensor) Shape() ml.Shape {
	return t.shape.Clone()
}

// Bytes gibt den rohen Puffer zurueck. Der Puffer ist nur zum Lesen gedacht.
func (t *Tensor) Bytes() []byte {
	return t.data
}

// Floats dekodiert Gleitkomma-Tensoren nach float32.
func (t *Tensor) Floats() []float32 {
	switch t.dtype {
	case ml.DTypeF32:
		out := make([]float32, len(t.data)/4)
		for i := range out {
			out[i] = math.Float32frombits(binary.LittleEndian.Uint32(t.data[i*4:]))
		}
		return out
	case ml.DTypeF64:
		out := make([]float32, len(t.data)/8)
		for i := range out {
			out[i] = float32(math.Float64frombits(binary.LittleEndian.Uint64(t.data[i*8:])))
		}
		return out
	case ml.DTypeF16:
		out := make([]float32, len(t.data)/2)
		for i := range out {
			out[i] = float16.Frombits(binary.LittleEndian.Uint16(t.data[i*2:])).Float32()
		}
		return out
	case ml.DTypeBF16:
		return bfloat16.DecodeFloat32(t.data)
	default:
		return nil
	}
}

// Ints dekodiert i32-Tensoren.
func (t *Tensor) Ints() []int32 {
	if t.dtype != ml.DTypeI32 {
		return nil
	}
	out := make([]int32, len(t.data)/4)
	for i := range out {
		out[i] = int32(binary.LittleEndian.Uint32(t.data[i*4:]))
	}
	return out
}

// Int64s dekodiert i64-Tensoren.
func (t *Tensor) Int64s() []int64 {
	if t.dtype != ml.DTypeI64 {
		return nil
	}
	out := make([]int64, len(t.data)/8)
	for i := range out {
		out[i] = int64(binary.LittleEndian.Uint64(t.data[i*8:]))
	}
	return out
}

// Bools dekodiert bool-Tensoren.
func (t *Tensor) Bools() []bool {
	if t.dtype != ml.DTypeBool {
		return nil
	}
	out := make([]bool, len(t.data))
	for i := range out {
		out[i] = t.data[i] != 0
	}
	return out
}

// slice gibt das i-te Element entlang der ersten Dimension zurueck.
// Der Rueckgabe-Tensor teilt den Puffer.
func (t *Tensor) slice(i int) *Tensor {
	elemShape := t.shape[1:].Clone()
	stride := int(elemShape.NumElements()) * t.dtype.Size()
	return &Tensor{
		dtype: t.dtype,
		shape: elemShape,
		data:  t.data[i*stride : (i+1)*stride],
	}
}

// stack stapelt gleichfoermige Tensoren entlang einer neuen fuehrenden
// Dimension.
func stack(ts []*Tensor) *Tensor {
	shape := append(ml.Shape{int64(len(ts))}, ts[0].shape...)
	data := make([]byte, 0, len(ts)*len(ts[0].data))
	for _, t := range ts {
		data = append(data, t.data...)
	}
	return &Tensor{dtype: ts[0].dtype, shape: shape, data: data}
}

func boolScalar(b bool) *Tensor {
	data := []byte{0}
	if b {
		data[0] = 1
	}
	return &Tensor{dtype: ml.DTypeBool, shape: ml.ScalarShape(), data: data}
}

// tensorFromValue kodiert einen Go-Wert in einen Tensor des angegebenen
// Typs. Skalare und flache Slices von float32/float64/int32/int64/bool
// werden akzeptiert; die Elementzahl muss zur Form passen.
func tensorFromValue(dtype ml.DType, shape ml.Shape, value any) (*Tensor, error) {
	want := shape.NumElements()

	check := func(n int) error {
		if int64(n) != want {
			return fmt.Errorf("%w: value has %d elements, shape %s wants %d",
				ml.ErrInvalidArgument, n, shape, want)
		}
		return nil
	}

	mismatch := func() (*Tensor, error) {
		return nil, fmt.Errorf("%w: value type %T does not match dtype %s",
			ml.ErrInvalidArgument, value, dtype)
	}

	switch dtype {
	case ml.DTypeF32, ml.DTypeF16, ml.DTypeBF16:
		var fs []float32
		switch v := value.(type) {
		case []float32:
			fs = v
		case float32:
			fs = []float32{v}
		default:
			return mismatch()
		}
		if err := check(len(fs)); err != nil {
			return nil, err
		}
		return encodeFloats(dtype, shape, fs), nil

	case ml.DTypeF64:
		var fs []float64
		switch v := value.(type) {
		case []float64:
			fs = v
		case float64:
			fs = []float64{v}
		default:
			return mismatch()
		}
		if err := check(len(fs)); err != nil {
			return nil, err
		}
		data := make([]byte, len(fs)*8)
		for i, f := range fs {
			binary.LittleEndian.PutUint64(data[i*8:], math.Float64bits(f))
		}
		return &Tensor{dtype: dtype, shape: shape.Clone(), data: data}, nil

	case ml.DTypeI32:
		var ns []int32
		switch v := value.(type) {
		case []int32:
			ns = v
		case int32:
			ns = []int32{v}
		default:
			return mismatch()
		}
		if err := check(len(ns)); err != nil {
			return nil, err
		}
		data := make([]byte, len(ns)*4)
		for i, n := range ns {
			binary.LittleEndian.PutUint32(data[i*4:], uint32(n))
		}
		return &Tensor{dtype: dtype, shape: shape.Clone(), data: data}, nil

	case ml.DTypeI64:
		var ns []int64
		switch v := value.(type) {
		case []int64:
			ns = v
		case int64:
			ns = []int64{v}
		case int:
			ns = []int64{int64(v)}
		default:
			return mismatch()
		}
		if err := check(len(ns)); err != nil {
			return nil, err
		}
		data := make([]byte, len(ns)*8)
		for i, n := range ns {
			binary.LittleEndian.PutUint64(data[i*8:], uint64(n))
		}
		return &Tensor{dtype: dtype, shape: shape.Clone(), data: data}, nil

	case ml.DTypeBool:
		var bs []bool
		switch v := value.(type) {
		case []bool:
			bs = v
		case bool:
			bs = []bool{v}
		default:
			return mismatch()
		}
		if err := check(len(bs)); err != nil {
			return nil, err
		}
		data := make([]byte, len(bs))
		for i, b := range bs {
			if b {
				data[i] = 1
			}
		}
		return &Tensor{dtype: dtype, shape: shape.Clone(), data: data}, nil

	default:
		return nil, fmt.Errorf("%w: dtype %s has no value representation", ml.ErrInvalidArgument, dtype)
	}
}

func encodeFloats(dtype ml.DType, shape ml.Shape, fs []float32) *Tensor {
	switch dtype {
	case ml.DTypeF16:
		data := make([]byte, len(fs)*2)
		for i, f := range fs {
			binary.LittleEndian.PutUint16(data[i*2:], float16.Fromfloat32(f).Bits())
		}
		return &Tensor{dtype: dtype, shape: shape.Clone(), data: data}
	case ml.DTypeBF16:
		return &Tensor{dtype: dtype, shape: shape.Clone(), data: bfloat16.EncodeFloat32(fs)}
	default:
		data := make([]byte, len(fs)*4)
		for i, f := range fs {
			binary.LittleEndian.PutUint32(data[i*4:], math.Float32bits(f))
		}
		return &Tensor{dtype: dtype, shape: shape.Clone(), data: data}
	}
}
