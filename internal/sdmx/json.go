package sdmx

import (
	"encoding/json"
	"fmt"
	"strings"
)

// SDMX-JSON payload. A single document carries both the structure metadata
// (data.structures[0]) and the observations (data.dataSets[0].observations,
// keyed by colon-joined value indices).

type jsonPayload struct {
	Data struct {
		Structures []jsonStructure `json:"structures"`
		DataSets   []jsonDataSet   `json:"dataSets"`
	} `json:"data"`
}

type jsonStructure struct {
	ID           string        `json:"id"`
	Name         string        `json:"name"`
	Names        LocalizedText `json:"names"`
	Description  string        `json:"description"`
	Descriptions LocalizedText `json:"descriptions"`
	Dimensions   struct {
		Observation []jsonDimension `json:"observation"`
	} `json:"dimensions"`
}

type jsonDimension struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Names       LocalizedText `json:"names"`
	KeyPosition *int          `json:"keyPosition"`
	Values      []jsonValue   `json:"values"`
}

type jsonValue struct {
	ID      string        `json:"id"`
	Name    string        `json:"name"`
	Names   LocalizedText `json:"names"`
	Parent  string        `json:"parent"`
	Parents []string      `json:"parents"`
}

type jsonDataSet struct {
	Observations map[string][]RawScalar `json:"observations"`
}

// RawScalar keeps the textual form of a JSON scalar so that numeric values
// survive untouched whether the feed encodes them as numbers or strings.
// null becomes the empty string.
type RawScalar string

func (r *RawScalar) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "" || s == "null" {
		*r = ""
		return nil
	}
	if s[0] == '"' {
		var str string
		if err := json.Unmarshal(b, &str); err != nil {
			return err
		}
		*r = RawScalar(str)
		return nil
	}
	*r = RawScalar(s)
	return nil
}

// IsJSONPayload reports whether the body looks like an SDMX-JSON document.
func IsJSONPayload(body []byte) bool {
	for _, b := range body {
		switch b {
		case ' ', '\t', '\r', '\n':
			continue
		default:
			return b == '{'
		}
	}
	return false
}

// ParseJSONPayload normalizes an SDMX-JSON document into the canonical
// structure description plus the raw positional observation records.
func ParseJSONPayload(body []byte) (Structure, []Record, error) {
	var payload jsonPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return Structure{}, nil, fmt.Errorf("parse SDMX-JSON payload: %w", err)
	}

	structures := payload.Data.Structures
	if len(structures) == 0 {
		return Structure{}, nil, fmt.Errorf("payload does not include any structure definition")
	}
	raw := structures[0]

	st := Structure{
		Code:        raw.ID,
		Name:        raw.Names.Preferred(raw.Name),
		Description: raw.Descriptions.Preferred(raw.Description),
		Names:       raw.Names,
	}

	for index, dim := range raw.Dimensions.Observation {
		if dim.ID == "" {
			continue
		}
		position := index
		if dim.KeyPosition != nil {
			position = *dim.KeyPosition
		}
		label := dim.Names.Preferred(dim.Name)
		if label == "" {
			label = dim.ID
		}

		meta := DimensionMeta{
			Code:     dim.ID,
			Label:    label,
			Position: position,
		}
		for _, value := range dim.Values {
			if value.ID == "" {
				continue
			}
			valueLabel := value.Names.Preferred(value.Name)
			if valueLabel == "" {
				valueLabel = value.ID
			}
			parentCode := value.Parent
			if parentCode == "" && len(value.Parents) > 0 {
				parentCode = value.Parents[0]
			}
			meta.Values = append(meta.Values, ValueMeta{
				Code:       value.ID,
				Label:      valueLabel,
				ParentCode: parentCode,
			})
		}
		st.Dimensions = append(st.Dimensions, meta)
	}
	sortDimensions(st.Dimensions)

	var records []Record
	if len(payload.Data.DataSets) > 0 {
		for key, row := range payload.Data.DataSets[0].Observations {
			rec := Record{Kind: KindPositional, Key: key}
			if len(row) > 0 {
				rec.RawValue = string(row[0])
			}
			records = append(records, rec)
		}
	}
	return st, records, nil
}
