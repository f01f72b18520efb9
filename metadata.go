package harp

// ProductMetadata is the lightweight companion of §3: filename and
// provenance plus the shape table, without any variable data. External
// importers (§6) populate this cheaply to let callers filter products
// before paying for a full read.
type ProductMetadata struct {
	Filename      string
	SourceProduct string
	History       string
	DatetimeStart float64
	DatetimeStop  float64
	Dimension     map[DimensionType]int
}
