package sdmx

type RecordKind int

const (
	// KindPositional carries a colon-separated index key resolved against
	// the canonical dimension order (SDMX-JSON observations).
	KindPositional RecordKind = iota
	// KindExplicit carries dimension/category code pairs directly (SDMX-XML
	// generic observations).
	KindExplicit
)

type KeyValue struct {
	DimensionCode string
	CategoryCode  string
}

// Record is one raw observation in either wire encoding, before decoding.
// RawValue holds the textual numeric value; empty means the value was absent.
type Record struct {
	Kind     RecordKind
	Key      string
	Pairs    []KeyValue
	RawValue string
}
