package sdmx

import "sort"

// Structure is the canonical description of one dataflow, independent of the
// wire shape it was parsed from.
type Structure struct {
	Code        string
	Name        string
	Description string
	Provider    string
	Names       LocalizedText
	// Dimensions are sorted by Position ascending. This sorted order is the
	// canonical dimension order used for positional key decoding; it must
	// match the order the upstream service used when emitting compact keys.
	Dimensions []DimensionMeta
}

// DimensionMeta describes one classification axis and its admissible values
// in declaration order.
type DimensionMeta struct {
	Code       string
	Label      string
	Position   int
	CodelistID string
	Values     []ValueMeta
}

type ValueMeta struct {
	Code       string
	Label      string
	ParentCode string
}

func sortDimensions(dims []DimensionMeta) {
	sort.SliceStable(dims, func(i, j int) bool {
		return dims[i].Position < dims[j].Position
	})
}
