package engine

import "github.com/zyedidia/generic/mapset"

// Compatibility is a directed road hierarchy: c[from] holds the road types
// a tile of type from may connect into. Lookups are always made from the
// acting tile's side and never assume symmetry.
type Compatibility map[RoadType]mapset.Set[RoadType]

// NewCompatibility builds a table from adjacency lists
func NewCompatibility(table map[RoadType][]RoadType) Compatibility {
	out := make(Compatibility, len(table))
	for from, targets := range table {
		set := mapset.New[RoadType]()
		for _, to := range targets {
			set.Put(to)
		}
		out[from] = set
	}
	return out
}

// DefaultCompatibility is the road hierarchy used by generated and
// hand-authored levels.
var DefaultCompatibility = NewCompatibility(map[RoadType][]RoadType{
	House:        {LocalRoad},
	LocalRoad:    {House, LocalRoad, ArterialRoad, Landmark, Turnpike},
	ArterialRoad: {LocalRoad, ArterialRoad, Highway, Landmark, Turnpike},
	Highway:      {ArterialRoad, Highway, Turnpike},
	Turnpike:     {LocalRoad, ArterialRoad, Highway, Landmark},
	Landmark:     {LocalRoad, ArterialRoad, Turnpike},
})

// Allows reports whether a tile of type from may connect into a neighbor of
// type to.
func (c Compatibility) Allows(from, to RoadType) bool {
	set, ok := c[from]
	if !ok {
		return false
	}
	return set.Has(to)
}

// Targets lists the road types from may connect into, in enum order
func (c Compatibility) Targets(from RoadType) []RoadType {
	var out []RoadType
	for _, rt := range RoadTypes {
		if c.Allows(from, rt) {
			out = append(out, rt)
		}
	}
	return out
}

// CanConnect checks the default hierarchy
func CanConnect(from, to RoadType) bool {
	return DefaultCompatibility.Allows(from, to)
}
