package harp

// DimensionMask is a boolean mask over one or two dimensions (§4.C). Its
// masked_dimension_length is derived: the maximum count of 1's across the
// innermost axis among all outer-axis slices (for a 1-D mask, simply the
// total count of 1's).
type DimensionMask struct {
	DimensionType []DimensionType
	Dimension     []int
	Data          []bool

	maskedDimensionLength int
}

const maxMaskDimensions = 2

// NewDimensionMask allocates an all-false mask over the given (≤2)
// dimensions.
func NewDimensionMask(dimensionType []DimensionType, dimension []int) (*DimensionMask, error) {
	if len(dimensionType) != len(dimension) {
		return nil, Errorf(KindArrayDimsMismatch, "mask dimension_type and dimension have different lengths")
	}
	if len(dimension) == 0 || len(dimension) > maxMaskDimensions {
		return nil, Errorf(KindInvalidArgument, "dimension mask must have 1 or 2 dimensions")
	}
	for _, d := range dimension {
		if d <= 0 {
			return nil, Errorf(KindInvalidArgument, "dimension mask length must be positive")
		}
	}
	m := &DimensionMask{
		DimensionType: append([]DimensionType(nil), dimensionType...),
		Dimension:     append([]int(nil), dimension...),
		Data:          make([]bool, numElements(dimension)),
	}
	return m, nil
}

// MaskedDimensionLength returns the derived quantity of §4.C.
func (m *DimensionMask) MaskedDimensionLength() int {
	return m.maskedDimensionLength
}

func (m *DimensionMask) recompute() {
	if len(m.Dimension) == 1 {
		count := 0
		for _, b := range m.Data {
			if b {
				count++
			}
		}
		m.maskedDimensionLength = count
		return
	}
	outer, inner := m.Dimension[0], m.Dimension[1]
	max := 0
	for i := 0; i < outer; i++ {
		count := 0
		for j := 0; j < inner; j++ {
			if m.Data[i*inner+j] {
				count++
			}
		}
		if count > max {
			max = count
		}
	}
	m.maskedDimensionLength = max
}

// FillTrue sets every element of m to 1.
func (m *DimensionMask) FillTrue() {
	for i := range m.Data {
		m.Data[i] = true
	}
	m.recompute()
}

// FillFalse sets every element of m to 0.
func (m *DimensionMask) FillFalse() {
	for i := range m.Data {
		m.Data[i] = false
	}
	m.maskedDimensionLength = 0
}

// IsAllTrue reports whether every element of m is 1.
func (m *DimensionMask) IsAllTrue() bool {
	for _, b := range m.Data {
		if !b {
			return false
		}
	}
	return true
}

// Copy returns a deep copy of m.
func (m *DimensionMask) Copy() *DimensionMask {
	return &DimensionMask{
		DimensionType:         append([]DimensionType(nil), m.DimensionType...),
		Dimension:             append([]int(nil), m.Dimension...),
		Data:                  append([]bool(nil), m.Data...),
		maskedDimensionLength: m.maskedDimensionLength,
	}
}

// OuterProduct builds the 2-D mask whose row i equals col when row.Data[i]
// is 1, and is all-zero otherwise (§4.C).
func OuterProduct(row, col *DimensionMask) (*DimensionMask, error) {
	if len(row.Dimension) != 1 || len(col.Dimension) != 1 {
		return nil, Errorf(KindInvalidArgument, "outer product requires two 1-D masks")
	}
	a, b := row.Dimension[0], col.Dimension[0]
	out := &DimensionMask{
		DimensionType: []DimensionType{row.DimensionType[0], col.DimensionType[0]},
		Dimension:     []int{a, b},
		Data:          make([]bool, a*b),
	}
	for i := 0; i < a; i++ {
		if !row.Data[i] {
			continue
		}
		copy(out.Data[i*b:(i+1)*b], col.Data)
	}
	out.recompute()
	return out, nil
}

// PrependDimension broadcasts a 1-D mask to 2-D by adding a new outer
// dimension of type t and length k: every one of the k outer slices is a
// copy of m.
func (m *DimensionMask) PrependDimension(t DimensionType, k int) (*DimensionMask, error) {
	if len(m.Dimension) != 1 {
		return nil, Errorf(KindInvalidArgument, "can only prepend a dimension onto a 1-D mask")
	}
	b := m.Dimension[0]
	out := &DimensionMask{
		DimensionType: []DimensionType{t, m.DimensionType[0]},
		Dimension:     []int{k, b},
		Data:          make([]bool, k*b),
	}
	for i := 0; i < k; i++ {
		copy(out.Data[i*b:(i+1)*b], m.Data)
	}
	out.recompute()
	return out, nil
}

// AppendDimension broadcasts a 1-D mask to 2-D by adding a new inner
// dimension of type t and length k: every element is replicated k times
// along the new innermost axis.
func (m *DimensionMask) AppendDimension(t DimensionType, k int) (*DimensionMask, error) {
	if len(m.Dimension) != 1 {
		return nil, Errorf(KindInvalidArgument, "can only append a dimension onto a 1-D mask")
	}
	a := m.Dimension[0]
	out := &DimensionMask{
		DimensionType: []DimensionType{m.DimensionType[0], t},
		Dimension:     []int{a, k},
		Data:          make([]bool, a*k),
	}
	for i := 0; i < a; i++ {
		if !m.Data[i] {
			continue
		}
		for j := 0; j < k; j++ {
			out.Data[i*k+j] = true
		}
	}
	out.recompute()
	return out, nil
}

// Reduce collapses every axis but d with an OR: the result is a 1-D mask
// of length dim[d] whose entry i is 1 iff any entry of m with index i on
// axis d is 1 (§4.C).
func (m *DimensionMask) Reduce(d int) (*DimensionMask, error) {
	if d < 0 || d >= len(m.Dimension) {
		return nil, Errorf(KindInvalidIndex, "mask reduce axis %d out of range", d)
	}
	if len(m.Dimension) == 1 {
		return m.Copy(), nil
	}
	out := &DimensionMask{
		DimensionType: []DimensionType{m.DimensionType[d]},
		Dimension:     []int{m.Dimension[d]},
		Data:          make([]bool, m.Dimension[d]),
	}
	outer, inner := m.Dimension[0], m.Dimension[1]
	for i := 0; i < outer; i++ {
		for j := 0; j < inner; j++ {
			if !m.Data[i*inner+j] {
				continue
			}
			if d == 0 {
				out.Data[i] = true
			} else {
				out.Data[j] = true
			}
		}
	}
	out.recompute()
	return out, nil
}

// Merge ANDs source into the target mask m, either elementwise (when
// shapes match exactly) or by broadcasting a 1-D source along the chosen
// axis of a 2-D target (§4.C). m's masked_dimension_length is recomputed
// afterward.
func (m *DimensionMask) Merge(source *DimensionMask, broadcastAxis int) error {
	if len(source.Dimension) == len(m.Dimension) {
		for i, d := range m.Dimension {
			if source.Dimension[i] != d {
				return Errorf(KindArrayDimsMismatch, "mask merge: shapes differ")
			}
		}
		for i := range m.Data {
			m.Data[i] = m.Data[i] && source.Data[i]
		}
		m.recompute()
		return nil
	}
	if len(source.Dimension) != 1 || len(m.Dimension) != 2 {
		return Errorf(KindArrayDimsMismatch, "mask merge: incompatible shapes")
	}
	if broadcastAxis < 0 || broadcastAxis > 1 {
		return Errorf(KindInvalidIndex, "mask merge: invalid broadcast axis %d", broadcastAxis)
	}
	if m.Dimension[broadcastAxis] != source.Dimension[0] {
		return Errorf(KindArrayDimsMismatch, "mask merge: broadcast axis length mismatch")
	}
	outer, inner := m.Dimension[0], m.Dimension[1]
	for i := 0; i < outer; i++ {
		for j := 0; j < inner; j++ {
			var s bool
			if broadcastAxis == 0 {
				s = source.Data[i]
			} else {
				s = source.Data[j]
			}
			idx := i*inner + j
			m.Data[idx] = m.Data[idx] && s
		}
	}
	m.recompute()
	return nil
}

// MaskSet maps each dimension type that carries an active mask to that
// mask. A dimension type absent from the set is treated as entirely
// unmasked (equivalent to an all-true mask, but not materialized).
type MaskSet map[DimensionType]*DimensionMask

// Simplify enforces cross-mask consistency (§4.C): every 2-D secondary
// mask (one whose outer axis is Time) is reduced along the time axis and
// AND-merged into the primary time mask; the (possibly newly created)
// primary mask is then AND-broadcast back into every 2-D mask; finally,
// any mask left entirely true is dropped from the set since it no longer
// constrains anything.
func (s MaskSet) Simplify() error {
	primary := s[Time]
	for dt, m := range s {
		if dt == Time || len(m.Dimension) != 2 {
			continue
		}
		if m.DimensionType[0] != Time {
			return Errorf(KindInvalidArgument, "secondary mask for %s is not time-outer", dt)
		}
		reduced, err := m.Reduce(0)
		if err != nil {
			return err
		}
		if primary == nil {
			primary = reduced.Copy()
			primary.DimensionType = []DimensionType{Time}
		} else {
			if err := primary.Merge(reduced, 0); err != nil {
				return err
			}
		}
	}
	if primary != nil {
		s[Time] = primary
		for dt, m := range s {
			if dt == Time || len(m.Dimension) != 2 {
				continue
			}
			if err := m.Merge(primary, 0); err != nil {
				return err
			}
		}
	}
	for dt, m := range s {
		if m.IsAllTrue() {
			delete(s, dt)
		}
	}
	return nil
}
