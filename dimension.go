package harp

// DimensionType enumerates the six dimension kinds of §3. Independent
// dimensions carry no cross-variable identity; the other five are named
// and must agree in length across every variable of a product that uses
// them (Product invariant, §3/§8).
type DimensionType int

const (
	Independent DimensionType = iota
	Time
	Latitude
	Longitude
	Vertical
	Spectral
)

// namedDimensionTypes lists the five dimension types that carry
// cross-variable identity and therefore a slot in Product.dimension[].
var namedDimensionTypes = [...]DimensionType{Time, Latitude, Longitude, Vertical, Spectral}

func (t DimensionType) String() string {
	switch t {
	case Independent:
		return "independent"
	case Time:
		return "time"
	case Latitude:
		return "latitude"
	case Longitude:
		return "longitude"
	case Vertical:
		return "vertical"
	case Spectral:
		return "spectral"
	default:
		return "unknown"
	}
}

// IsNamed reports whether t carries cross-variable identity (every type
// except Independent).
func (t DimensionType) IsNamed() bool {
	return t != Independent
}
