package field

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Value is the arithmetic capability set shared by all value kinds. T is the
// implementing type itself.
type Value[T any] interface {
	Add(T) T
	Scale(float64) T
	Divide(float64) T
	// Mag is the Euclidean (Frobenius for tensors) magnitude.
	Mag() float64
	Kind() Kind
	// Flatten writes the components into dst, which holds at least
	// Kind().Components() elements.
	Flatten(dst []float64)
	Unflatten(src []float64) T
}

type Scalar float64

func (s Scalar) Add(o Scalar) Scalar          { return s + o }
func (s Scalar) Scale(f float64) Scalar       { return s * Scalar(f) }
func (s Scalar) Divide(d float64) Scalar      { return s / Scalar(d) }
func (s Scalar) Mag() float64                 { return math.Abs(float64(s)) }
func (Scalar) Kind() Kind                     { return KindScalar }
func (s Scalar) Flatten(dst []float64)        { dst[0] = float64(s) }
func (Scalar) Unflatten(src []float64) Scalar { return Scalar(src[0]) }

type Vector [3]float64

func (v Vector) Add(o Vector) Vector {
	floats.Add(v[:], o[:])
	return v
}

func (v Vector) Scale(f float64) Vector {
	floats.Scale(f, v[:])
	return v
}

func (v Vector) Divide(d float64) Vector {
	return v.Scale(1 / d)
}

func (v Vector) Mag() float64          { return floats.Norm(v[:], 2) }
func (Vector) Kind() Kind              { return KindVector }
func (v Vector) Flatten(dst []float64) { copy(dst, v[:]) }

func (Vector) Unflatten(src []float64) Vector {
	var v Vector
	copy(v[:], src)
	return v
}

// Tensor is a rank-2 tensor stored row major: xx xy xz yx yy yz zx zy zz.
type Tensor [9]float64

func (t Tensor) Add(o Tensor) Tensor {
	floats.Add(t[:], o[:])
	return t
}

func (t Tensor) Scale(f float64) Tensor {
	floats.Scale(f, t[:])
	return t
}

func (t Tensor) Divide(d float64) Tensor {
	return t.Scale(1 / d)
}

func (t Tensor) Mag() float64 {
	return mat.Norm(mat.NewDense(3, 3, t[:]), 2)
}

func (Tensor) Kind() Kind              { return KindTensor }
func (t Tensor) Flatten(dst []float64) { copy(dst, t[:]) }

func (Tensor) Unflatten(src []float64) Tensor {
	var t Tensor
	copy(t[:], src)
	return t
}

// SymmTensor holds the upper triangle of a symmetric tensor: xx xy xz yy yz zz.
type SymmTensor [6]float64

func (s SymmTensor) Add(o SymmTensor) SymmTensor {
	floats.Add(s[:], o[:])
	return s
}

func (s SymmTensor) Scale(f float64) SymmTensor {
	floats.Scale(f, s[:])
	return s
}

func (s SymmTensor) Divide(d float64) SymmTensor {
	return s.Scale(1 / d)
}

func (s SymmTensor) Mag() float64 {
	sym := mat.NewSymDense(3, []float64{
		s[0], s[1], s[2],
		s[1], s[3], s[4],
		s[2], s[4], s[5],
	})
	return mat.Norm(sym, 2)
}

func (SymmTensor) Kind() Kind              { return KindSymmTensor }
func (s SymmTensor) Flatten(dst []float64) { copy(dst, s[:]) }

func (SymmTensor) Unflatten(src []float64) SymmTensor {
	var s SymmTensor
	copy(s[:], src)
	return s
}

// SphTensor is an isotropic tensor II*I, stored as its single coefficient.
type SphTensor struct {
	II float64
}

func (s SphTensor) Add(o SphTensor) SphTensor       { return SphTensor{s.II + o.II} }
func (s SphTensor) Scale(f float64) SphTensor       { return SphTensor{s.II * f} }
func (s SphTensor) Divide(d float64) SphTensor      { return SphTensor{s.II / d} }
func (s SphTensor) Mag() float64                    { return math.Sqrt(3) * math.Abs(s.II) }
func (SphTensor) Kind() Kind                        { return KindSphTensor }
func (s SphTensor) Flatten(dst []float64)           { dst[0] = s.II }
func (SphTensor) Unflatten(src []float64) SphTensor { return SphTensor{src[0]} }
