package harp

// Scalar is a tagged union over harp's six element types (§3). Only the
// field matching Type is meaningful; the zero value of the others is
// ignored. This mirrors the C union's six pointer/value arms as an
// exhaustive Go sum type (Design Notes §9 "Tagged data arrays").
type Scalar struct {
	Type DataType

	i8  int8
	i16 int16
	i32 int32
	f32 float32
	f64 float64
	str string
}

func NewInt8Scalar(v int8) Scalar       { return Scalar{Type: Int8, i8: v} }
func NewInt16Scalar(v int16) Scalar     { return Scalar{Type: Int16, i16: v} }
func NewInt32Scalar(v int32) Scalar     { return Scalar{Type: Int32, i32: v} }
func NewFloat32Scalar(v float32) Scalar { return Scalar{Type: Float32, f32: v} }
func NewFloat64Scalar(v float64) Scalar { return Scalar{Type: Float64, f64: v} }
func NewStringScalar(v string) Scalar   { return Scalar{Type: String, str: v} }

// AsFloat64 widens the numeric payload to float64, the common
// representation used throughout binning and regridding (§4.D step 3).
// It panics if Type is String; callers are expected to branch on Type (or
// use DataType.IsNumeric) before calling, the way an exhaustive union
// match would in the original.
func (s Scalar) AsFloat64() float64 {
	switch s.Type {
	case Int8:
		return float64(s.i8)
	case Int16:
		return float64(s.i16)
	case Int32:
		return float64(s.i32)
	case Float32:
		return float64(s.f32)
	case Float64:
		return s.f64
	default:
		panic("harp: AsFloat64 called on a string Scalar")
	}
}

// String returns the string payload; it panics for non-string scalars.
func (s Scalar) String() string {
	if s.Type != String {
		panic("harp: String called on a non-string Scalar")
	}
	return s.str
}

// fromFloat64 builds a Scalar of the given numeric type from a float64
// value using C-truncation semantics for float-to-int conversion (§4.A).
func fromFloat64(t DataType, v float64) Scalar {
	switch t {
	case Int8:
		return NewInt8Scalar(int8(v))
	case Int16:
		return NewInt16Scalar(int16(v))
	case Int32:
		return NewInt32Scalar(int32(v))
	case Float32:
		return NewFloat32Scalar(float32(v))
	case Float64:
		return NewFloat64Scalar(v)
	default:
		panic("harp: fromFloat64 called with a non-numeric DataType")
	}
}
