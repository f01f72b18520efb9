package harp

import (
	"math"

	"github.com/stcorp/harp-sub000/units"
)

// clampToType clamps v to [lo,hi], used when converting valid_min/valid_max
// into a narrower target type would otherwise overflow (§4.A).
func clampToType(v float64, t DataType) float64 {
	lo, hi := typeExtremes(t)
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// ConvertType converts v's data and valid range to a new numeric data
// type, elementwise, with C-truncation semantics for float-to-int (§4.A).
// String <-> numeric conversion is rejected.
func (v *Variable) ConvertType(target DataType) error {
	if v.DataType == target {
		return nil
	}
	if v.DataType == String || target == String {
		return Errorf(KindInvalidType, "variable %q: cannot convert between string and numeric types", v.Name)
	}
	n := v.NumElements()
	converted := make([]float64, n)
	for i := 0; i < n; i++ {
		converted[i] = v.Float64At(i)
	}
	v.ValidMin = fromFloat64(target, clampToType(v.ValidMin.AsFloat64(), target))
	v.ValidMax = fromFloat64(target, clampToType(v.ValidMax.AsFloat64(), target))
	v.Int8Data, v.Int16Data, v.Int32Data, v.Float32Data, v.Float64Data, v.StringData = nil, nil, nil, nil, nil, nil
	switch target {
	case Int8:
		v.Int8Data = make([]int8, n)
		for i, x := range converted {
			v.Int8Data[i] = int8(x)
		}
	case Int16:
		v.Int16Data = make([]int16, n)
		for i, x := range converted {
			v.Int16Data[i] = int16(x)
		}
	case Int32:
		v.Int32Data = make([]int32, n)
		for i, x := range converted {
			v.Int32Data[i] = int32(x)
		}
	case Float32:
		v.Float32Data = make([]float32, n)
		for i, x := range converted {
			v.Float32Data[i] = float32(x)
		}
	case Float64:
		v.Float64Data = converted
	}
	v.DataType = target
	return nil
}

// ConvertUnit converts v's data and valid range from its current unit to
// toUnit via the unit collaborator (§4.A, §6). Integer-typed variables are
// first promoted to float64; float32 variables stay float32.
func (v *Variable) ConvertUnit(toUnit string) error {
	if !v.HasUnit {
		return Errorf(KindUnitConversion, "variable %q has no unit to convert from", v.Name)
	}
	from, err := units.Parse(v.Unit)
	if err != nil {
		return Errorf(KindUnitConversion, "variable %q: %v", v.Name, err)
	}
	to, err := units.Parse(toUnit)
	if err != nil {
		return Errorf(KindUnitConversion, "variable %q: %v", v.Name, err)
	}
	convert, err := units.Converter(from, to)
	if err != nil {
		return Errorf(KindUnitConversion, "variable %q: %v", v.Name, err)
	}
	if v.DataType != Float32 && v.DataType != Float64 {
		if err := v.ConvertType(Float64); err != nil {
			return err
		}
	}
	n := v.NumElements()
	switch v.DataType {
	case Float32:
		for i := 0; i < n; i++ {
			x := v.Float32Data[i]
			if math.IsNaN(float64(x)) {
				continue
			}
			v.Float32Data[i] = float32(convert(float64(x)))
		}
		v.ValidMin = NewFloat32Scalar(float32(convert(float64(v.ValidMin.AsFloat64()))))
		v.ValidMax = NewFloat32Scalar(float32(convert(float64(v.ValidMax.AsFloat64()))))
	case Float64:
		for i := 0; i < n; i++ {
			x := v.Float64Data[i]
			if math.IsNaN(x) {
				continue
			}
			v.Float64Data[i] = convert(x)
		}
		v.ValidMin = NewFloat64Scalar(convert(v.ValidMin.AsFloat64()))
		v.ValidMax = NewFloat64Scalar(convert(v.ValidMax.AsFloat64()))
	}
	v.Unit = toUnit
	return nil
}
