package harp

// Copy returns a deep copy of v: every owned string is duplicated so the
// copy and the original never alias a string buffer (§8 "String
// ownership").
func (v *Variable) Copy() *Variable {
	out := &Variable{
		Name:          v.Name,
		DataType:      v.DataType,
		DimensionType: append([]DimensionType(nil), v.DimensionType...),
		Dimension:     append([]int(nil), v.Dimension...),
		Unit:          v.Unit,
		HasUnit:       v.HasUnit,
		Description:   v.Description,
		ValidMin:      v.ValidMin,
		ValidMax:      v.ValidMax,
		EnumValues:    append([]string(nil), v.EnumValues...),
	}
	switch v.DataType {
	case Int8:
		out.Int8Data = append([]int8(nil), v.Int8Data...)
	case Int16:
		out.Int16Data = append([]int16(nil), v.Int16Data...)
	case Int32:
		out.Int32Data = append([]int32(nil), v.Int32Data...)
	case Float32:
		out.Float32Data = append([]float32(nil), v.Float32Data...)
	case Float64:
		out.Float64Data = append([]float64(nil), v.Float64Data...)
	case String:
		out.StringData = append([]string(nil), v.StringData...)
	}
	return out
}

// Append concatenates other onto v along dimension 0, which must be of
// type Time in both variables (§4.A). Both variables must share name, data
// type, dimension count and enumeration label count; every dimension but
// the first must agree in type and length.
func (v *Variable) Append(other *Variable) error {
	if v.Name != other.Name {
		return Errorf(KindInvalidArgument, "cannot append variable %q onto %q: names differ", other.Name, v.Name)
	}
	if v.DataType != other.DataType {
		return Errorf(KindInvalidType, "cannot append variable %q: data types differ", v.Name)
	}
	if len(v.Dimension) != len(other.Dimension) {
		return Errorf(KindArrayDimsMismatch, "cannot append variable %q: dimension counts differ", v.Name)
	}
	if len(v.EnumValues) != len(other.EnumValues) {
		return Errorf(KindInvalidArgument, "cannot append variable %q: enumeration label counts differ", v.Name)
	}
	if len(v.DimensionType) == 0 || v.DimensionType[0] != Time || other.DimensionType[0] != Time {
		return Errorf(KindInvalidArgument, "cannot append variable %q: dimension 0 must be time in both operands", v.Name)
	}
	for i := 1; i < len(v.Dimension); i++ {
		if v.DimensionType[i] != other.DimensionType[i] || v.Dimension[i] != other.Dimension[i] {
			return Errorf(KindArrayDimsMismatch, "cannot append variable %q: dimension %d mismatch", v.Name, i)
		}
	}
	switch v.DataType {
	case Int8:
		v.Int8Data = append(v.Int8Data, other.Int8Data...)
	case Int16:
		v.Int16Data = append(v.Int16Data, other.Int16Data...)
	case Int32:
		v.Int32Data = append(v.Int32Data, other.Int32Data...)
	case Float32:
		v.Float32Data = append(v.Float32Data, other.Float32Data...)
	case Float64:
		v.Float64Data = append(v.Float64Data, other.Float64Data...)
	case String:
		v.StringData = append(v.StringData, other.StringData...)
	}
	v.Dimension[0] += other.Dimension[0]
	return nil
}
