package harp

import "math"

// blockStrides decomposes v's shape around axis d into the (G, L, B)
// triple of §4.B: G groups of shape ∏_{i<d} dim[i], the axis itself of
// length L = dim[d], and B block-elements of shape ∏_{i>d} dim[i]. A
// block is B contiguous elements.
func blockStrides(v *Variable, d int) (G, L, B int) {
	G, B = 1, 1
	for i := 0; i < d; i++ {
		G *= v.Dimension[i]
	}
	L = v.Dimension[d]
	for i := d + 1; i < len(v.Dimension); i++ {
		B *= v.Dimension[i]
	}
	return
}

func isPermutation(p []int, L int) bool {
	if len(p) != L {
		return false
	}
	seen := make([]bool, L)
	for _, idx := range p {
		if idx < 0 || idx >= L || seen[idx] {
			return false
		}
		seen[idx] = true
	}
	return true
}

// permuteBlocksInPlace applies new[j] = old[p[j]] along the block axis of
// each of the G groups without allocating a second full-sized buffer: it
// decomposes p into permutation cycles and moves one block at a time
// through a single B-sized scratch buffer, tracked with a "moved" bitmap
// (Design Notes §9 "Permutation cycles").
func permuteBlocksInPlace[T any](data []T, G, L, B int, p []int) {
	moved := make([]bool, L)
	scratch := make([]T, B)
	for g := 0; g < G; g++ {
		base := g * L * B
		for i := range moved {
			moved[i] = false
		}
		for start := 0; start < L; start++ {
			if moved[start] || p[start] == start {
				moved[start] = true
				continue
			}
			copy(scratch, data[base+start*B:base+start*B+B])
			cur := start
			for {
				next := p[cur]
				if next == start {
					copy(data[base+cur*B:base+cur*B+B], scratch)
					moved[cur] = true
					break
				}
				copy(data[base+cur*B:base+cur*B+B], data[base+next*B:base+next*B+B])
				moved[cur] = true
				cur = next
			}
		}
	}
}

// rearrangeBlocksCopy builds a fresh G*M*B buffer with block j of group g
// equal to the source block p[j] of group g. Used whenever the mapping
// isn't a pure same-length permutation (duplicate or dropped blocks).
func rearrangeBlocksCopy[T any](data []T, G, L, B, M int, p []int) []T {
	out := make([]T, G*M*B)
	for g := 0; g < G; g++ {
		srcBase := g * L * B
		dstBase := g * M * B
		for j, idx := range p {
			copy(out[dstBase+j*B:dstBase+j*B+B], data[srcBase+idx*B:srcBase+idx*B+B])
		}
	}
	return out
}

// RearrangeDimension reindexes axis d of v according to p (§4.B): the
// result has dimension d of length len(p), and block j of every group is a
// copy of the block that was at position p[j]. Duplicates in p duplicate
// blocks; an empty p is rejected, as is any out-of-range index.
func (v *Variable) RearrangeDimension(d int, p []int) error {
	if d < 0 || d >= len(v.Dimension) {
		return Errorf(KindInvalidIndex, "variable %q: dimension index %d out of range", v.Name, d)
	}
	if len(p) == 0 {
		return Errorf(KindInvalidArgument, "variable %q: rearrange would produce an empty dimension", v.Name)
	}
	G, L, B := blockStrides(v, d)
	for _, idx := range p {
		if idx < 0 || idx >= L {
			return Errorf(KindInvalidIndex, "variable %q: rearrange index %d out of range [0,%d)", v.Name, idx, L)
		}
	}
	M := len(p)
	inPlace := M == L && isPermutation(p, L)
	switch v.DataType {
	case Int8:
		if inPlace {
			permuteBlocksInPlace(v.Int8Data, G, L, B, p)
		} else {
			v.Int8Data = rearrangeBlocksCopy(v.Int8Data, G, L, B, M, p)
		}
	case Int16:
		if inPlace {
			permuteBlocksInPlace(v.Int16Data, G, L, B, p)
		} else {
			v.Int16Data = rearrangeBlocksCopy(v.Int16Data, G, L, B, M, p)
		}
	case Int32:
		if inPlace {
			permuteBlocksInPlace(v.Int32Data, G, L, B, p)
		} else {
			v.Int32Data = rearrangeBlocksCopy(v.Int32Data, G, L, B, M, p)
		}
	case Float32:
		if inPlace {
			permuteBlocksInPlace(v.Float32Data, G, L, B, p)
		} else {
			v.Float32Data = rearrangeBlocksCopy(v.Float32Data, G, L, B, M, p)
		}
	case Float64:
		if inPlace {
			permuteBlocksInPlace(v.Float64Data, G, L, B, p)
		} else {
			v.Float64Data = rearrangeBlocksCopy(v.Float64Data, G, L, B, M, p)
		}
	case String:
		if inPlace {
			permuteBlocksInPlace(v.StringData, G, L, B, p)
		} else {
			v.StringData = rearrangeBlocksCopy(v.StringData, G, L, B, M, p)
		}
	}
	v.Dimension[d] = M
	return nil
}

// FilterDimension keeps only the blocks of axis d whose mask bit is 1
// (§4.B). An all-false mask is rejected: the system refuses to produce a
// zero-element variable here.
func (v *Variable) FilterDimension(d int, mask []bool) error {
	if d < 0 || d >= len(v.Dimension) {
		return Errorf(KindInvalidIndex, "variable %q: dimension index %d out of range", v.Name, d)
	}
	if len(mask) != v.Dimension[d] {
		return Errorf(KindArrayDimsMismatch, "variable %q: filter mask length %d does not match dimension length %d", v.Name, len(mask), v.Dimension[d])
	}
	p := make([]int, 0, len(mask))
	for i, keep := range mask {
		if keep {
			p = append(p, i)
		}
	}
	if len(p) == 0 {
		return Errorf(KindInvalidArgument, "variable %q: filter mask selects no elements", v.Name)
	}
	return v.RearrangeDimension(d, p)
}

func fillDimensionType[T any](data []T, G, oldL, newL, B int, fill T) []T {
	out := make([]T, G*newL*B)
	n := oldL
	if newL < n {
		n = newL
	}
	for g := 0; g < G; g++ {
		copy(out[g*newL*B:g*newL*B+n*B], data[g*oldL*B:g*oldL*B+n*B])
		if newL > oldL {
			for i := (g*newL + oldL) * B; i < (g+1)*newL*B; i++ {
				out[i] = fill
			}
		}
	}
	return out
}

// ResizeDimension grows or shrinks axis d to newLength (§4.B). Shrinking
// drops trailing blocks; growing zero-fills new integer blocks, NaN-fills
// new float blocks, and empty-string-fills new string blocks.
func (v *Variable) ResizeDimension(d, newLength int) error {
	if d < 0 || d >= len(v.Dimension) {
		return Errorf(KindInvalidIndex, "variable %q: dimension index %d out of range", v.Name, d)
	}
	if newLength <= 0 {
		return Errorf(KindInvalidArgument, "variable %q: resize target length must be positive", v.Name)
	}
	G, L, B := blockStrides(v, d)
	if newLength == L {
		return nil
	}
	switch v.DataType {
	case Int8:
		v.Int8Data = fillDimensionType(v.Int8Data, G, L, newLength, B, int8(0))
	case Int16:
		v.Int16Data = fillDimensionType(v.Int16Data, G, L, newLength, B, int16(0))
	case Int32:
		v.Int32Data = fillDimensionType(v.Int32Data, G, L, newLength, B, int32(0))
	case Float32:
		v.Float32Data = fillDimensionType(v.Float32Data, G, L, newLength, B, float32(math.NaN()))
	case Float64:
		v.Float64Data = fillDimensionType(v.Float64Data, G, L, newLength, B, math.NaN())
	case String:
		v.StringData = fillDimensionType(v.StringData, G, L, newLength, B, "")
	}
	v.Dimension[d] = newLength
	return nil
}

func replicateDimensionType[T any](data []T, G, B, k int) []T {
	out := make([]T, G*k*B)
	for g := 0; g < G; g++ {
		block := data[g*B : (g+1)*B]
		for r := 0; r < k; r++ {
			copy(out[(g*k+r)*B:(g*k+r+1)*B], block)
		}
	}
	return out
}

// AddDimension inserts a new dimension of type t and length k at position
// d, replicating the existing data k times along the new axis (§4.B). A
// time dimension can only be added at position 0, and only if v doesn't
// already have one. A named dimension whose type already exists elsewhere
// in v with a different length is rejected.
func (v *Variable) AddDimension(d int, t DimensionType, k int) error {
	if d < 0 || d > len(v.Dimension) {
		return Errorf(KindInvalidIndex, "variable %q: insertion index %d out of range", v.Name, d)
	}
	if k <= 0 {
		return Errorf(KindInvalidArgument, "variable %q: new dimension length must be positive", v.Name)
	}
	if t == Time {
		if d != 0 {
			return Errorf(KindInvalidArgument, "variable %q: a time dimension can only be added at position 0", v.Name)
		}
		if v.HasDimensionType(Time) {
			return Errorf(KindInvalidArgument, "variable %q: already has a time dimension", v.Name)
		}
	}
	if t.IsNamed() {
		if existingIdx := v.DimensionIndexOfType(t); existingIdx >= 0 && v.Dimension[existingIdx] != k {
			return Errorf(KindArrayDimsMismatch, "variable %q: dimension type %s already present with a different length", v.Name, t)
		}
	}
	// G = product of dims before d (unchanged), B = product of dims at and
	// after d in the *original* shape (this entire suffix becomes the
	// replicated block).
	G := 1
	for i := 0; i < d; i++ {
		G *= v.Dimension[i]
	}
	B := 1
	for i := d; i < len(v.Dimension); i++ {
		B *= v.Dimension[i]
	}
	switch v.DataType {
	case Int8:
		v.Int8Data = replicateDimensionType(v.Int8Data, G, B, k)
	case Int16:
		v.Int16Data = replicateDimensionType(v.Int16Data, G, B, k)
	case Int32:
		v.Int32Data = replicateDimensionType(v.Int32Data, G, B, k)
	case Float32:
		v.Float32Data = replicateDimensionType(v.Float32Data, G, B, k)
	case Float64:
		v.Float64Data = replicateDimensionType(v.Float64Data, G, B, k)
	case String:
		v.StringData = replicateDimensionType(v.StringData, G, B, k)
	}
	newType := append([]DimensionType(nil), v.DimensionType[:d]...)
	newType = append(newType, t)
	newType = append(newType, v.DimensionType[d:]...)
	newDim := append([]int(nil), v.Dimension[:d]...)
	newDim = append(newDim, k)
	newDim = append(newDim, v.Dimension[d:]...)
	v.DimensionType = newType
	v.Dimension = newDim
	return nil
}

// RemoveDimensionAt rearranges dimension d to keep only index, then drops
// the now-singleton dimension (§4.B). Because a length-1 axis contributes
// nothing to the row-major flat layout, dropping it after the rearrange
// requires no further data movement.
func (v *Variable) RemoveDimensionAt(d, index int) error {
	if d < 0 || d >= len(v.Dimension) {
		return Errorf(KindInvalidIndex, "variable %q: dimension index %d out of range", v.Name, d)
	}
	if err := v.RearrangeDimension(d, []int{index}); err != nil {
		return err
	}
	v.DimensionType = append(v.DimensionType[:d], v.DimensionType[d+1:]...)
	v.Dimension = append(v.Dimension[:d], v.Dimension[d+1:]...)
	return nil
}
