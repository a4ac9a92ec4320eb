package sdmx

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	// ErrMissingValue marks a record whose value is absent or non-numeric.
	ErrMissingValue = errors.New("observation value missing or non-numeric")
	// ErrIndexOutOfRange marks a positional key referencing a value index a
	// dimension does not have. The whole observation is discarded, never a
	// partially-tagged one.
	ErrIndexOutOfRange = errors.New("observation key index out of range")
)

// Decoder resolves raw observation records into dimension-code→category-code
// maps using the canonical dimension order and the per-dimension value-code
// lists established by the structure upsert.
type Decoder struct {
	order      []string
	valueCodes map[string][]string
}

func NewDecoder(order []string, valueCodes map[string][]string) *Decoder {
	return &Decoder{order: order, valueCodes: valueCodes}
}

// Decoded is one fully-resolved observation.
type Decoded struct {
	Dims  map[string]string
	Value float64
	// Repaired reports that the positional key length did not match the
	// dimension count and was padded or truncated.
	Repaired bool
}

// Decode turns a record of either encoding into the same canonical map.
//
// Positional keys are repaired deterministically on length mismatch
// (right-pad with index 0, right-truncate), non-integer indices fall back to
// 0, dimensions without a value list contribute nothing, and an out-of-range
// index discards the entire observation.
func (d *Decoder) Decode(rec Record) (Decoded, error) {
	var out Decoded

	raw := strings.TrimSpace(rec.RawValue)
	if raw == "" {
		return out, ErrMissingValue
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return out, fmt.Errorf("%w: %q", ErrMissingValue, raw)
	}
	out.Value = value

	if rec.Kind == KindExplicit {
		out.Dims = make(map[string]string, len(rec.Pairs))
		for _, pair := range rec.Pairs {
			if pair.DimensionCode == "" || pair.CategoryCode == "" {
				continue
			}
			out.Dims[pair.DimensionCode] = pair.CategoryCode
		}
		return out, nil
	}

	indices := strings.Split(rec.Key, ":")
	if len(indices) != len(d.order) {
		out.Repaired = true
		if len(indices) < len(d.order) {
			for len(indices) < len(d.order) {
				indices = append(indices, "0")
			}
		} else {
			indices = indices[:len(d.order)]
		}
	}

	dims := make(map[string]string, len(d.order))
	for position, indexStr := range indices {
		dimCode := d.order[position]
		index, err := strconv.Atoi(indexStr)
		if err != nil || index < 0 {
			index = 0
		}
		codes := d.valueCodes[dimCode]
		if len(codes) == 0 {
			continue
		}
		if index >= len(codes) {
			return Decoded{}, fmt.Errorf("%w: dimension %s index %d of %d", ErrIndexOutOfRange, dimCode, index, len(codes))
		}
		dims[dimCode] = codes[index]
	}
	out.Dims = dims
	return out, nil
}
