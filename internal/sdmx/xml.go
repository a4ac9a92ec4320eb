package sdmx

import (
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"
)

// SDMX-XML v2.1. The structure document and the generic data document are
// two separate retrievals. Struct tags use local names only; encoding/xml
// matches them regardless of the message/structure/common namespace
// prefixes upstream emits.

type xmlText struct {
	Lang string `xml:"http://www.w3.org/XML/1998/namespace lang,attr"`
	Text string `xml:",chardata"`
}

type xmlRef struct {
	ID string `xml:"id,attr"`
}

type xmlRefHolder struct {
	Ref xmlRef `xml:"Ref"`
}

type xmlConcept struct {
	ID    string    `xml:"id,attr"`
	Names []xmlText `xml:"Name"`
}

type xmlDataflow struct {
	ID           string    `xml:"id,attr"`
	AgencyID     string    `xml:"agencyID,attr"`
	Names        []xmlText `xml:"Name"`
	Descriptions []xmlText `xml:"Description"`
}

type xmlDimension struct {
	ID                  string        `xml:"id,attr"`
	Position            string        `xml:"position,attr"`
	Names               []xmlText     `xml:"Name"`
	ConceptIdentity     *xmlRefHolder `xml:"ConceptIdentity"`
	LocalRepresentation *xmlEnumHolder `xml:"LocalRepresentation"`
	Representation      *xmlEnumHolder `xml:"Representation"`
}

type xmlEnumHolder struct {
	Enumeration *xmlRefHolder `xml:"Enumeration"`
}

type xmlCode struct {
	ID           string        `xml:"id,attr"`
	ParentID     string        `xml:"parentID,attr"`
	Names        []xmlText     `xml:"Name"`
	Descriptions []xmlText     `xml:"Description"`
	Parent       *xmlRefHolder `xml:"Parent"`
}

type xmlCodelist struct {
	ID    string    `xml:"id,attr"`
	Codes []xmlCode `xml:"Code"`
}

type xmlStructureDoc struct {
	XMLName   xml.Name       `xml:"Structure"`
	Concepts  []xmlConcept   `xml:"Structures>Concepts>ConceptScheme>Concept"`
	Dataflows []xmlDataflow  `xml:"Structures>Dataflows>Dataflow"`
	Dimensions []xmlDimension `xml:"Structures>DataStructures>DataStructure>DataStructureComponents>DimensionList>Dimension"`
	Codelists []xmlCodelist  `xml:"Structures>Codelists>Codelist"`
}

func localizedFromXML(nodes []xmlText) LocalizedText {
	var out LocalizedText
	for _, node := range nodes {
		text := strings.TrimSpace(node.Text)
		if text == "" {
			continue
		}
		lang := strings.ToLower(node.Lang)
		if lang == "" {
			lang = "und"
		}
		out = append(out, LocalizedString{Lang: lang, Text: text})
	}
	return out
}

func enumerationID(dim xmlDimension) string {
	for _, holder := range []*xmlEnumHolder{dim.LocalRepresentation, dim.Representation} {
		if holder == nil || holder.Enumeration == nil {
			continue
		}
		if holder.Enumeration.Ref.ID != "" {
			return holder.Enumeration.Ref.ID
		}
	}
	return ""
}

// ParseXMLStructure normalizes an SDMX-XML structure document (dataflow,
// dimension list, codelists) into the canonical structure description.
// Dimension labels fall back to the referenced concept's name, then the
// dimension code.
func ParseXMLStructure(body []byte) (Structure, error) {
	var doc xmlStructureDoc
	if err := xml.Unmarshal(body, &doc); err != nil {
		return Structure{}, fmt.Errorf("parse SDMX-XML structure document: %w", err)
	}

	if len(doc.Dataflows) == 0 {
		return Structure{}, fmt.Errorf("no dataflow definition found in structure document")
	}
	dataflow := doc.Dataflows[0]

	conceptLabels := make(map[string]string, len(doc.Concepts))
	for _, concept := range doc.Concepts {
		if concept.ID == "" {
			continue
		}
		conceptLabels[concept.ID] = localizedFromXML(concept.Names).Preferred(concept.ID)
	}

	names := localizedFromXML(dataflow.Names)
	st := Structure{
		Code:        dataflow.ID,
		Name:        names.Preferred(dataflow.ID),
		Description: localizedFromXML(dataflow.Descriptions).Preferred(""),
		Provider:    dataflow.AgencyID,
		Names:       names,
	}

	codelists := make(map[string][]ValueMeta, len(doc.Codelists))
	for _, codelist := range doc.Codelists {
		if codelist.ID == "" {
			continue
		}
		var values []ValueMeta
		for _, code := range codelist.Codes {
			if code.ID == "" {
				continue
			}
			name := localizedFromXML(code.Names).Preferred(code.ID)
			label := localizedFromXML(code.Descriptions).Preferred(name)
			parentCode := code.ParentID
			if parentCode == "" && code.Parent != nil {
				parentCode = code.Parent.Ref.ID
			}
			values = append(values, ValueMeta{Code: code.ID, Label: label, ParentCode: parentCode})
		}
		codelists[codelist.ID] = values
	}

	for index, dim := range doc.Dimensions {
		if dim.ID == "" {
			continue
		}
		conceptID := ""
		if dim.ConceptIdentity != nil {
			conceptID = dim.ConceptIdentity.Ref.ID
		}
		fallback := conceptLabels[conceptID]
		if fallback == "" {
			fallback = dim.ID
		}
		label := localizedFromXML(dim.Names).Preferred(fallback)

		position := index + 1
		if parsed, err := strconv.Atoi(dim.Position); err == nil {
			position = parsed
		}

		meta := DimensionMeta{
			Code:       dim.ID,
			Label:      label,
			Position:   position,
			CodelistID: enumerationID(dim),
		}
		meta.Values = codelists[meta.CodelistID]
		st.Dimensions = append(st.Dimensions, meta)
	}
	sortDimensions(st.Dimensions)
	return st, nil
}

// Generic data document: DataSet/Obs with an ObsKey of explicit
// dimension/value pairs and an ObsValue attribute.

type xmlDataDoc struct {
	Observations []xmlObs `xml:"DataSet>Obs"`
}

type xmlObs struct {
	Key      []xmlKeyValue `xml:"ObsKey>Value"`
	ObsValue *xmlObsValue  `xml:"ObsValue"`
}

type xmlKeyValue struct {
	ID    string  `xml:"id,attr"`
	Value *string `xml:"value,attr"`
}

type xmlObsValue struct {
	Value *string `xml:"value,attr"`
}

// ParseXMLData extracts the explicit observation records from an SDMX-XML
// generic data document.
func ParseXMLData(body []byte) ([]Record, error) {
	var doc xmlDataDoc
	if err := xml.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("parse SDMX-XML data document: %w", err)
	}

	var records []Record
	for _, obs := range doc.Observations {
		rec := Record{Kind: KindExplicit}
		if obs.ObsValue != nil && obs.ObsValue.Value != nil {
			rec.RawValue = *obs.ObsValue.Value
		}
		for _, kv := range obs.Key {
			if kv.ID == "" || kv.Value == nil {
				continue
			}
			rec.Pairs = append(rec.Pairs, KeyValue{DimensionCode: kv.ID, CategoryCode: *kv.Value})
		}
		records = append(records, rec)
	}
	return records, nil
}
