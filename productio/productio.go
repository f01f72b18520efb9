// Package productio is the narrow netCDF-3 collaborator of §6: it maps a
// harp.Product onto the classic-model netCDF file cdf.File already reads and
// writes, without taking on the rest of that format's own I/O stack
// (conventions layers, chunking, compression) which stay out of scope.
package productio

import (
	"fmt"
	"strings"

	"github.com/ctessum/cdf"

	harp "github.com/stcorp/harp-sub000"
)

// dimensionTypeNames mirrors harp.DimensionType.String() for the five named
// types; any other netCDF dimension name is treated as an independent axis
// private to the variable that declares it.
var dimensionTypeNames = map[string]harp.DimensionType{
	"time":      harp.Time,
	"latitude":  harp.Latitude,
	"longitude": harp.Longitude,
	"vertical":  harp.Vertical,
	"spectral":  harp.Spectral,
}

// independentDimName builds a per-variable dimension name for an
// independent axis, since independent dimensions carry no cross-variable
// identity in §3 but netCDF dimensions are always named and shared by name.
func independentDimName(varName string, axis int) string {
	return fmt.Sprintf("%s_independent_%d", varName, axis)
}

// Export writes p to w as a classic-model netCDF-3 file. String variables
// are rejected: the classic model has no variable-length string type, and
// widening every string to a fixed-width char array is out of scope for
// this narrow collaborator.
func Export(p *harp.Product, w cdf.ReaderWriterAt) error {
	var dimNames []string
	dimLens := map[string]int{}
	addDim := func(name string, length int) {
		if _, ok := dimLens[name]; !ok {
			dimNames = append(dimNames, name)
		}
		dimLens[name] = length
	}

	dimsOf := make(map[string][]string, len(p.Variables()))
	for _, v := range p.Variables() {
		dims := make([]string, v.NumDimensions())
		for i, dt := range v.DimensionType {
			name := dt.String()
			if !dt.IsNamed() {
				name = independentDimName(v.Name, i)
			}
			addDim(name, v.Dimension[i])
			dims[i] = name
		}
		dimsOf[v.Name] = dims
	}

	lens := make([]int, len(dimNames))
	for i, name := range dimNames {
		lens[i] = dimLens[name]
	}
	h := cdf.NewHeader(dimNames, lens)

	for _, v := range p.Variables() {
		sample, err := zeroSample(v.DataType)
		if err != nil {
			return err
		}
		h.AddVariable(v.Name, dimsOf[v.Name], sample)
		if v.HasUnit {
			h.AddAttribute(v.Name, "units", v.Unit)
		}
		if v.Description != "" {
			h.AddAttribute(v.Name, "description", v.Description)
		}
		if len(v.EnumValues) > 0 {
			h.AddAttribute(v.Name, "enum_values", strings.Join(v.EnumValues, ","))
		}
	}
	if p.SourceProduct != "" {
		h.AddAttribute("", "source_product", p.SourceProduct)
	}
	if p.History != "" {
		h.AddAttribute("", "history", p.History)
	}
	h.Define()

	f, err := cdf.Create(w, h)
	if err != nil {
		return harp.Wrap(err, "creating netcdf file")
	}

	for _, v := range p.Variables() {
		start := make([]int, v.NumDimensions())
		end := append([]int(nil), v.Dimension...)
		wtr := f.Writer(v.Name, start, end)
		if _, err := wtr.Write(rawData(v)); err != nil {
			return harp.Wrap(err, "writing variable %q", v.Name)
		}
	}
	return nil
}

// Import reads a classic-model netCDF-3 file from r into a new Product.
// Dimensions named time/latitude/longitude/vertical/spectral are mapped
// back onto the corresponding named DimensionType; every other dimension
// becomes an independent axis of the variable that declares it.
func Import(r cdf.ReaderWriterAt) (*harp.Product, error) {
	f, err := cdf.Open(r)
	if err != nil {
		return nil, harp.Wrap(err, "opening netcdf file")
	}

	p := harp.NewProduct()
	if hasAttribute(f, "", "source_product") {
		if s, ok := f.Header.GetAttribute("", "source_product").(string); ok {
			p.SourceProduct = s
		}
	}
	if hasAttribute(f, "", "history") {
		if s, ok := f.Header.GetAttribute("", "history").(string); ok {
			p.History = s
		}
	}

	for _, name := range f.Header.Variables() {
		dimNames := f.Header.Dimensions(name)
		lens := f.Header.Lengths(name)
		dimensionType := make([]harp.DimensionType, len(dimNames))
		for i, dn := range dimNames {
			if dt, ok := dimensionTypeNames[dn]; ok {
				dimensionType[i] = dt
			} else {
				dimensionType[i] = harp.Independent
			}
		}

		rr := f.Reader(name, nil, nil)
		buf := rr.Zero(-1)
		if _, err := rr.Read(buf); err != nil {
			return nil, harp.Wrap(err, "reading variable %q", name)
		}

		dataType, err := dataTypeOf(buf)
		if err != nil {
			return nil, err
		}
		v, err := harp.NewVariable(name, dataType, dimensionType, lens)
		if err != nil {
			return nil, err
		}
		if err := copyInto(v, buf); err != nil {
			return nil, err
		}

		if hasAttribute(f, name, "units") {
			if s, ok := f.Header.GetAttribute(name, "units").(string); ok {
				v.SetUnit(s)
			}
		}
		if hasAttribute(f, name, "description") {
			if s, ok := f.Header.GetAttribute(name, "description").(string); ok {
				v.SetDescription(s)
			}
		}
		if hasAttribute(f, name, "enum_values") {
			if s, ok := f.Header.GetAttribute(name, "enum_values").(string); ok && s != "" {
				if err := v.SetEnumValues(strings.Split(s, ",")); err != nil {
					return nil, err
				}
			}
		}
		if err := p.AddVariable(v); err != nil {
			return nil, err
		}
	}
	return p, nil
}

func hasAttribute(f *cdf.File, varName, attr string) bool {
	for _, a := range f.Header.Attributes(varName) {
		if a == attr {
			return true
		}
	}
	return false
}

func zeroSample(t harp.DataType) (interface{}, error) {
	switch t {
	case harp.Int8:
		return []int8{0}, nil
	case harp.Int16:
		return []int16{0}, nil
	case harp.Int32:
		return []int32{0}, nil
	case harp.Float32:
		return []float32{0}, nil
	case harp.Float64:
		return []float64{0}, nil
	default:
		return nil, harp.Errorf(harp.KindUnsupportedProduct, "netcdf export does not support string variables")
	}
}

func rawData(v *harp.Variable) interface{} {
	switch v.DataType {
	case harp.Int8:
		return v.Int8Data
	case harp.Int16:
		return v.Int16Data
	case harp.Int32:
		return v.Int32Data
	case harp.Float32:
		return v.Float32Data
	default:
		return v.Float64Data
	}
}

func dataTypeOf(buf interface{}) (harp.DataType, error) {
	switch buf.(type) {
	case []int8:
		return harp.Int8, nil
	case []int16:
		return harp.Int16, nil
	case []int32:
		return harp.Int32, nil
	case []float32:
		return harp.Float32, nil
	case []float64:
		return harp.Float64, nil
	default:
		return 0, harp.Errorf(harp.KindUnsupportedProduct, "netcdf import encountered an unsupported variable type %T", buf)
	}
}

func copyInto(v *harp.Variable, buf interface{}) error {
	switch data := buf.(type) {
	case []int8:
		copy(v.Int8Data, data)
	case []int16:
		copy(v.Int16Data, data)
	case []int32:
		copy(v.Int32Data, data)
	case []float32:
		copy(v.Float32Data, data)
	case []float64:
		copy(v.Float64Data, data)
	default:
		return harp.Errorf(harp.KindUnsupportedProduct, "netcdf import encountered an unsupported variable type %T", buf)
	}
	return nil
}
