package sdmx

import "testing"

const censusStructureXML = `<?xml version="1.0" encoding="UTF-8"?>
<mes:Structure xmlns:mes="http://www.sdmx.org/resources/sdmxml/schemas/v2_1/message"
               xmlns:str="http://www.sdmx.org/resources/sdmxml/schemas/v2_1/structure"
               xmlns:common="http://www.sdmx.org/resources/sdmxml/schemas/v2_1/common"
               xmlns:xml="http://www.w3.org/XML/1998/namespace">
  <mes:Structures>
    <str:Dataflows>
      <str:Dataflow id="DF_B1600" agencyID="LU1">
        <common:Name xml:lang="fr">Ménages privés</common:Name>
        <common:Name xml:lang="en">Private households</common:Name>
        <common:Description xml:lang="en">Census households table</common:Description>
      </str:Dataflow>
    </str:Dataflows>
    <str:Concepts>
      <str:ConceptScheme id="CS_CENSUS">
        <str:Concept id="SEX">
          <common:Name xml:lang="en">Sex</common:Name>
        </str:Concept>
        <str:Concept id="HHTYPE">
          <common:Name xml:lang="en">Household type</common:Name>
        </str:Concept>
      </str:ConceptScheme>
    </str:Concepts>
    <str:Codelists>
      <str:Codelist id="CL_SEX">
        <str:Code id="F">
          <common:Name xml:lang="en">Female</common:Name>
        </str:Code>
        <str:Code id="M">
          <common:Name xml:lang="en">Male</common:Name>
        </str:Code>
      </str:Codelist>
      <str:Codelist id="CL_HHTYPE">
        <str:Code id="H1" parentID="H_T">
          <common:Name xml:lang="en">One person</common:Name>
        </str:Code>
        <str:Code id="H2">
          <common:Name xml:lang="en">Couple</common:Name>
          <str:Parent>
            <Ref id="H_T"/>
          </str:Parent>
        </str:Code>
        <str:Code id="H_T">
          <common:Name xml:lang="en">Total</common:Name>
        </str:Code>
      </str:Codelist>
    </str:Codelists>
    <str:DataStructures>
      <str:DataStructure id="DSD_CENSUS">
        <str:DataStructureComponents>
          <str:DimensionList id="DimensionDescriptor">
            <str:Dimension id="HHTYPE" position="2">
              <str:ConceptIdentity>
                <Ref id="HHTYPE"/>
              </str:ConceptIdentity>
              <str:LocalRepresentation>
                <str:Enumeration>
                  <Ref id="CL_HHTYPE"/>
                </str:Enumeration>
              </str:LocalRepresentation>
            </str:Dimension>
            <str:Dimension id="SEX" position="1">
              <str:ConceptIdentity>
                <Ref id="SEX"/>
              </str:ConceptIdentity>
              <str:LocalRepresentation>
                <str:Enumeration>
                  <Ref id="CL_SEX"/>
                </str:Enumeration>
              </str:LocalRepresentation>
            </str:Dimension>
          </str:DimensionList>
        </str:DataStructureComponents>
      </str:DataStructure>
    </str:DataStructures>
  </mes:Structures>
</mes:Structure>`

const censusDataXML = `<?xml version="1.0" encoding="UTF-8"?>
<mes:GenericData xmlns:mes="http://www.sdmx.org/resources/sdmxml/schemas/v2_1/message"
                 xmlns:gen="http://www.sdmx.org/resources/sdmxml/schemas/v2_1/data/generic">
  <mes:DataSet>
    <gen:Obs>
      <gen:ObsKey>
        <gen:Value id="SEX" value="F"/>
        <gen:Value id="HHTYPE" value="H1"/>
        <gen:Value id="TIME_PERIOD" value="2021"/>
      </gen:ObsKey>
      <gen:ObsValue value="1234"/>
    </gen:Obs>
    <gen:Obs>
      <gen:ObsKey>
        <gen:Value id="SEX" value="M"/>
      </gen:ObsKey>
    </gen:Obs>
  </mes:DataSet>
</mes:GenericData>`

func TestParseXMLStructure(t *testing.T) {
	st, err := ParseXMLStructure([]byte(censusStructureXML))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if st.Code != "DF_B1600" {
		t.Fatalf("code = %q, want DF_B1600", st.Code)
	}
	if st.Name != "Private households" {
		t.Fatalf("name = %q, want the English dataflow name", st.Name)
	}
	if st.Description != "Census households table" {
		t.Fatalf("description = %q", st.Description)
	}
	if st.Provider != "LU1" {
		t.Fatalf("provider = %q, want LU1", st.Provider)
	}

	if len(st.Dimensions) != 2 {
		t.Fatalf("dimensions = %d, want 2", len(st.Dimensions))
	}
	// position attribute, not declaration order.
	if st.Dimensions[0].Code != "SEX" || st.Dimensions[1].Code != "HHTYPE" {
		t.Fatalf("canonical order = [%s %s], want [SEX HHTYPE]", st.Dimensions[0].Code, st.Dimensions[1].Code)
	}

	sex := st.Dimensions[0]
	// No inline Name on the dimension: label falls back to the concept name.
	if sex.Label != "Sex" {
		t.Fatalf("dimension label = %q, want concept fallback Sex", sex.Label)
	}
	if sex.CodelistID != "CL_SEX" {
		t.Fatalf("codelist = %q, want CL_SEX", sex.CodelistID)
	}
	if len(sex.Values) != 2 || sex.Values[0].Code != "F" {
		t.Fatalf("unexpected SEX values: %+v", sex.Values)
	}

	hhtype := st.Dimensions[1]
	byCode := make(map[string]ValueMeta, len(hhtype.Values))
	for _, value := range hhtype.Values {
		byCode[value.Code] = value
	}
	if byCode["H1"].ParentCode != "H_T" {
		t.Fatalf("parentID attribute not honoured: %+v", byCode["H1"])
	}
	if byCode["H2"].ParentCode != "H_T" {
		t.Fatalf("Parent/Ref element not honoured: %+v", byCode["H2"])
	}
	if byCode["H_T"].ParentCode != "" {
		t.Fatalf("root code should have no parent: %+v", byCode["H_T"])
	}
}

func TestParseXMLStructureWithoutDataflowFails(t *testing.T) {
	doc := `<mes:Structure xmlns:mes="http://www.sdmx.org/resources/sdmxml/schemas/v2_1/message"><mes:Structures/></mes:Structure>`
	if _, err := ParseXMLStructure([]byte(doc)); err == nil {
		t.Fatalf("expected error for structure document without dataflow")
	}
}

func TestParseXMLData(t *testing.T) {
	records, err := ParseXMLData([]byte(censusDataXML))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("records = %d, want 2", len(records))
	}

	first := records[0]
	if first.Kind != KindExplicit {
		t.Fatalf("record kind = %v, want explicit", first.Kind)
	}
	if first.RawValue != "1234" {
		t.Fatalf("raw value = %q, want 1234", first.RawValue)
	}
	if len(first.Pairs) != 3 {
		t.Fatalf("pairs = %+v, want 3 entries", first.Pairs)
	}
	if first.Pairs[0].DimensionCode != "SEX" || first.Pairs[0].CategoryCode != "F" {
		t.Fatalf("unexpected first pair: %+v", first.Pairs[0])
	}

	// Second observation has no ObsValue; the decoder discards it later.
	if records[1].RawValue != "" {
		t.Fatalf("raw value = %q, want empty", records[1].RawValue)
	}
}
