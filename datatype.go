package harp

import "math"

// DataType enumerates the element types a Variable can hold (§3).
type DataType int

const (
	Int8 DataType = iota
	Int16
	Int32
	Float32
	Float64
	String
)

func (t DataType) String() string {
	switch t {
	case Int8:
		return "int8"
	case Int16:
		return "int16"
	case Int32:
		return "int32"
	case Float32:
		return "float32"
	case Float64:
		return "float64"
	case String:
		return "string"
	default:
		return "unknown"
	}
}

// IsNumeric reports whether t is one of the five numeric types.
func (t DataType) IsNumeric() bool {
	return t != String
}

// IsFloating reports whether t is float32 or float64.
func (t DataType) IsFloating() bool {
	return t == Float32 || t == Float64
}

// elementSize returns the fixed element size in bytes for numeric types;
// string elements own a variable-length payload and are not fixed-size, so
// elementSize returns 0 for DataType String (callers must special-case
// strings, as the C union did with its separate pointer arm, §3).
func (t DataType) elementSize() int {
	switch t {
	case Int8:
		return 1
	case Int16:
		return 2
	case Int32, Float32:
		return 4
	case Float64:
		return 8
	default:
		return 0
	}
}

// typeExtremes returns the representable [min, max] of t, used as the
// default valid_min/valid_max (§3) and as the clamp bounds during type
// conversion (§4.A).
func typeExtremes(t DataType) (min, max float64) {
	switch t {
	case Int8:
		return math.MinInt8, math.MaxInt8
	case Int16:
		return math.MinInt16, math.MaxInt16
	case Int32:
		return math.MinInt32, math.MaxInt32
	case Float32:
		return -math.MaxFloat32, math.MaxFloat32
	case Float64:
		return -math.MaxFloat64, math.MaxFloat64
	default:
		return 0, 0
	}
}
