package sdmx

import (
	"sort"
	"testing"
)

const censusJSON = `{
  "data": {
    "structures": [
      {
        "id": "DF_B1100",
        "name": "Population by sex and age",
        "names": {"en": "Population by sex and age", "fr": "Population par sexe et âge"},
        "descriptions": {"en": "Census table"},
        "dimensions": {
          "observation": [
            {
              "id": "TIME_PERIOD",
              "name": "Time period",
              "keyPosition": 2,
              "values": [{"id": "2021", "name": "2021"}]
            },
            {
              "id": "SEX",
              "name": "Sex",
              "keyPosition": 0,
              "values": [
                {"id": "F", "names": {"en": "Female"}},
                {"id": "M", "names": {"en": "Male"}}
              ]
            },
            {
              "id": "AGE",
              "name": "Age",
              "keyPosition": 1,
              "values": [
                {"id": "_T", "name": "Total"},
                {"id": "Y_LT15", "name": "Under 15", "parents": ["_T"]},
                {"id": "Y15T29", "name": "15 to 29", "parent": "_T"}
              ]
            }
          ]
        }
      }
    ],
    "dataSets": [
      {
        "observations": {
          "0:1:0": [123.0],
          "1:2:0": ["45"],
          "0:0:0": [null]
        }
      }
    ]
  }
}`

func TestParseJSONPayloadStructure(t *testing.T) {
	st, records, err := ParseJSONPayload([]byte(censusJSON))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if st.Code != "DF_B1100" {
		t.Fatalf("code = %q, want DF_B1100", st.Code)
	}
	if st.Name != "Population by sex and age" {
		t.Fatalf("name = %q", st.Name)
	}
	if st.Description != "Census table" {
		t.Fatalf("description = %q", st.Description)
	}

	// keyPosition, not declaration order, drives the canonical order.
	var order []string
	for _, dim := range st.Dimensions {
		order = append(order, dim.Code)
	}
	want := []string{"SEX", "AGE", "TIME_PERIOD"}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("canonical order = %v, want %v", order, want)
		}
	}

	age := st.Dimensions[1]
	if age.Values[1].ParentCode != "_T" {
		t.Fatalf("parents list not honoured: %+v", age.Values[1])
	}
	if age.Values[2].ParentCode != "_T" {
		t.Fatalf("inline parent not honoured: %+v", age.Values[2])
	}
	if st.Dimensions[0].Values[0].Label != "Female" {
		t.Fatalf("value label = %q, want Female", st.Dimensions[0].Values[0].Label)
	}

	if len(records) != 3 {
		t.Fatalf("records = %d, want 3", len(records))
	}
	byKey := make(map[string]Record, len(records))
	for _, rec := range records {
		if rec.Kind != KindPositional {
			t.Fatalf("record kind = %v, want positional", rec.Kind)
		}
		byKey[rec.Key] = rec
	}
	if byKey["0:1:0"].RawValue != "123.0" {
		t.Fatalf("numeric raw value = %q", byKey["0:1:0"].RawValue)
	}
	if byKey["1:2:0"].RawValue != "45" {
		t.Fatalf("string raw value = %q", byKey["1:2:0"].RawValue)
	}
	if byKey["0:0:0"].RawValue != "" {
		t.Fatalf("null raw value = %q, want empty", byKey["0:0:0"].RawValue)
	}
}

func TestParseJSONPayloadWithoutStructureFails(t *testing.T) {
	if _, _, err := ParseJSONPayload([]byte(`{"data":{"dataSets":[]}}`)); err == nil {
		t.Fatalf("expected error for payload without structures")
	}
	if _, _, err := ParseJSONPayload([]byte(`not json`)); err == nil {
		t.Fatalf("expected error for malformed payload")
	}
}

func TestIsJSONPayload(t *testing.T) {
	if !IsJSONPayload([]byte("  \n{\"data\":{}}")) {
		t.Fatalf("leading whitespace JSON not detected")
	}
	if IsJSONPayload([]byte("<?xml version=\"1.0\"?><Structure/>")) {
		t.Fatalf("XML detected as JSON")
	}
	if IsJSONPayload(nil) {
		t.Fatalf("empty body detected as JSON")
	}
}

func TestParseJSONPayloadDeterministicDimensionSort(t *testing.T) {
	st, _, err := ParseJSONPayload([]byte(censusJSON))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !sort.SliceIsSorted(st.Dimensions, func(i, j int) bool {
		return st.Dimensions[i].Position < st.Dimensions[j].Position
	}) {
		t.Fatalf("dimensions not sorted by position: %+v", st.Dimensions)
	}
}
