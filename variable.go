package harp

import (
	"regexp"
)

var identifierRE = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Variable is a rectangular n-dimensional array (n ≤ 8), §3. Exactly one of
// the typed slice fields is populated, selected by DataType; this is the
// Go rendering of the original's tagged C union (Design Notes §9):
// traversals over the data switch exhaustively on DataType rather than
// dereferencing a union arm.
type Variable struct {
	Name string

	DataType      DataType
	DimensionType []DimensionType
	Dimension     []int

	Int8Data    []int8
	Int16Data   []int16
	Int32Data   []int32
	Float32Data []float32
	Float64Data []float64
	StringData  []string

	Unit        string
	HasUnit     bool
	Description string

	ValidMin Scalar
	ValidMax Scalar

	EnumValues []string
}

const maxDimensions = 8

// NewVariable allocates a zero-filled Variable with the given name, type
// and shape. dimensionType and dimension must have equal length not
// exceeding maxDimensions (zero gives a single-element scalar variable);
// every dimension length must be positive; at
// most one dimension may be of type Time, and if present it must be
// dimension 0 (§3).
func NewVariable(name string, dataType DataType, dimensionType []DimensionType, dimension []int) (*Variable, error) {
	if !identifierRE.MatchString(name) {
		return nil, Errorf(KindInvalidName, "%q is not a valid variable name", name)
	}
	if len(dimensionType) != len(dimension) {
		return nil, Errorf(KindArrayDimsMismatch, "dimension_type and dimension have different lengths")
	}
	if len(dimension) > maxDimensions {
		return nil, Errorf(KindInvalidArgument, "variable %q has more than %d dimensions", name, maxDimensions)
	}
	seenTime := false
	for i, dt := range dimensionType {
		if dimension[i] <= 0 {
			return nil, Errorf(KindInvalidArgument, "dimension %d of variable %q is not positive", i, name)
		}
		if dt == Time {
			if seenTime {
				return nil, Errorf(KindInvalidArgument, "variable %q has more than one time dimension", name)
			}
			if i != 0 {
				return nil, Errorf(KindInvalidArgument, "time dimension of variable %q is not outermost", name)
			}
			seenTime = true
		}
	}
	n := numElements(dimension)
	v := &Variable{
		Name:          name,
		DataType:      dataType,
		DimensionType: append([]DimensionType(nil), dimensionType...),
		Dimension:     append([]int(nil), dimension...),
	}
	min, max := typeExtremes(dataType)
	if dataType != String {
		v.ValidMin = fromFloat64(dataType, min)
		v.ValidMax = fromFloat64(dataType, max)
	}
	switch dataType {
	case Int8:
		v.Int8Data = make([]int8, n)
	case Int16:
		v.Int16Data = make([]int16, n)
	case Int32:
		v.Int32Data = make([]int32, n)
	case Float32:
		v.Float32Data = make([]float32, n)
	case Float64:
		v.Float64Data = make([]float64, n)
	case String:
		v.StringData = make([]string, n)
	default:
		return nil, Errorf(KindInvalidType, "unknown data type for variable %q", name)
	}
	return v, nil
}

func numElements(dimension []int) int {
	n := 1
	for _, d := range dimension {
		n *= d
	}
	return n
}

// NumElements returns the product of v's dimension lengths.
func (v *Variable) NumElements() int {
	return numElements(v.Dimension)
}

// NumDimensions returns len(v.Dimension).
func (v *Variable) NumDimensions() int {
	return len(v.Dimension)
}

// DimensionIndexOfType returns the index of the (unique, by Variable
// construction) dimension of type t, or -1 if v has no such dimension.
func (v *Variable) DimensionIndexOfType(t DimensionType) int {
	for i, dt := range v.DimensionType {
		if dt == t {
			return i
		}
	}
	return -1
}

// HasDimensionType reports whether v has a dimension of type t.
func (v *Variable) HasDimensionType(t DimensionType) bool {
	return v.DimensionIndexOfType(t) >= 0
}

// Rename sets v's name after validating it as an identifier.
func (v *Variable) Rename(name string) error {
	if !identifierRE.MatchString(name) {
		return Errorf(KindInvalidName, "%q is not a valid variable name", name)
	}
	v.Name = name
	return nil
}

// SetUnit sets v's unit string. An empty string is a valid, present unit
// (equal to "1", i.e. dimensionless) and is distinct from "no unit at all"
// which is represented by HasUnit=false (§3).
func (v *Variable) SetUnit(unit string) {
	v.Unit = unit
	v.HasUnit = true
}

// ClearUnit marks v as unitless (no Unit attribute at all).
func (v *Variable) ClearUnit() {
	v.Unit = ""
	v.HasUnit = false
}

// SetDescription sets v's free-text description.
func (v *Variable) SetDescription(description string) {
	v.Description = description
}

// SetEnumValues installs an ordered list of enumeration labels and updates
// the valid range to [0, len(values)-1] as required by §3. Only integer
// data types may carry enumeration labels.
func (v *Variable) SetEnumValues(values []string) error {
	if len(values) == 0 {
		v.EnumValues = nil
		return nil
	}
	if v.DataType == Float32 || v.DataType == Float64 || v.DataType == String {
		return Errorf(KindInvalidType, "variable %q: enumeration labels require an integer data type", v.Name)
	}
	v.EnumValues = append([]string(nil), values...)
	v.ValidMin = fromFloat64(v.DataType, 0)
	v.ValidMax = fromFloat64(v.DataType, float64(len(values)-1))
	return nil
}

// Verify validates v against every structural invariant in §3: positive
// element count consistent with the declared shape, strictly positive
// dimension lengths, no two same-typed-named dimensions disagreeing in
// length (within the variable itself — cross-variable agreement is a
// Product-level invariant, see Product.Verify), and enumeration/range
// coherence (§8).
func (v *Variable) Verify() error {
	if len(v.Dimension) != len(v.DimensionType) {
		return Errorf(KindInvalidVariable, "variable %q: dimension/dimension_type length mismatch", v.Name)
	}
	if len(v.Dimension) > maxDimensions {
		return Errorf(KindInvalidVariable, "variable %q: too many dimensions", v.Name)
	}
	seenTime := false
	lengthsByType := map[DimensionType]int{}
	for i, dt := range v.DimensionType {
		if v.Dimension[i] <= 0 {
			return Errorf(KindInvalidVariable, "variable %q: dimension %d is not positive", v.Name, i)
		}
		if dt.IsNamed() {
			if prev, ok := lengthsByType[dt]; ok && prev != v.Dimension[i] {
				return Errorf(KindInvalidVariable, "variable %q: dimension type %s appears with inconsistent lengths", v.Name, dt)
			}
			lengthsByType[dt] = v.Dimension[i]
		}
		if dt == Time {
			if seenTime || i != 0 {
				return Errorf(KindInvalidVariable, "variable %q: time dimension must be unique and outermost", v.Name)
			}
			seenTime = true
		}
	}
	n := v.NumElements()
	if n <= 0 {
		return Errorf(KindInvalidVariable, "variable %q: element count must be positive", v.Name)
	}
	if got := v.dataLen(); got != n {
		return Errorf(KindInvalidVariable, "variable %q: data length %d does not match shape (%d)", v.Name, got, n)
	}
	if len(v.EnumValues) > 0 {
		if v.DataType == Float32 || v.DataType == Float64 || v.DataType == String {
			return Errorf(KindInvalidVariable, "variable %q: enumeration labels on a non-integer type", v.Name)
		}
		if v.ValidMin.AsFloat64() != 0 || v.ValidMax.AsFloat64() != float64(len(v.EnumValues)-1) {
			return Errorf(KindInvalidVariable, "variable %q: valid range inconsistent with enumeration labels", v.Name)
		}
	}
	return nil
}

func (v *Variable) dataLen() int {
	switch v.DataType {
	case Int8:
		return len(v.Int8Data)
	case Int16:
		return len(v.Int16Data)
	case Int32:
		return len(v.Int32Data)
	case Float32:
		return len(v.Float32Data)
	case Float64:
		return len(v.Float64Data)
	case String:
		return len(v.StringData)
	default:
		return -1
	}
}

// At returns the element at the given flat (row-major) index as a Scalar.
func (v *Variable) At(i int) Scalar {
	switch v.DataType {
	case Int8:
		return NewInt8Scalar(v.Int8Data[i])
	case Int16:
		return NewInt16Scalar(v.Int16Data[i])
	case Int32:
		return NewInt32Scalar(v.Int32Data[i])
	case Float32:
		return NewFloat32Scalar(v.Float32Data[i])
	case Float64:
		return NewFloat64Scalar(v.Float64Data[i])
	case String:
		return NewStringScalar(v.StringData[i])
	default:
		panic("harp: Variable.At called with unknown data type")
	}
}

// SetAt assigns the element at flat index i from s, which must already be
// of v.DataType.
func (v *Variable) SetAt(i int, s Scalar) {
	switch v.DataType {
	case Int8:
		v.Int8Data[i] = s.i8
	case Int16:
		v.Int16Data[i] = s.i16
	case Int32:
		v.Int32Data[i] = s.i32
	case Float32:
		v.Float32Data[i] = s.f32
	case Float64:
		v.Float64Data[i] = s.f64
	case String:
		v.StringData[i] = s.str
	default:
		panic("harp: Variable.SetAt called with unknown data type")
	}
}

// Float64At returns element i widened to float64; it panics for String
// variables, matching Scalar.AsFloat64.
func (v *Variable) Float64At(i int) float64 {
	switch v.DataType {
	case Int8:
		return float64(v.Int8Data[i])
	case Int16:
		return float64(v.Int16Data[i])
	case Int32:
		return float64(v.Int32Data[i])
	case Float32:
		return float64(v.Float32Data[i])
	case Float64:
		return v.Float64Data[i]
	default:
		panic("harp: Float64At called on a string Variable")
	}
}
