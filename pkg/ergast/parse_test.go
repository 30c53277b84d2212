package ergast

import (
	"errors"
	"strings"
	"testing"
)

const constructorFixture = `{"MRData":{"limit":"30","offset":"0","total":"2","ConstructorTable":{"season":"2017","Constructors":[
{"constructorId":"ferrari","url":"http://en.wikipedia.org/wiki/Scuderia_Ferrari","name":"Ferrari","nationality":"Italian"},
{"constructorId":"mclaren","url":"http://en.wikipedia.org/wiki/McLaren","name":"McLaren","nationality":"British"}]}}}`

func TestDecodeTableMatchesInput(t *testing.T) {
	got, err := decodeTable[Constructor]([]byte(constructorFixture), constructorTable, constructorList)
	if err != nil {
		t.Fatalf("decodeTable: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 constructors, got %d", len(got))
	}
	want := Constructor{ConstructorID: "mclaren", URL: "http://en.wikipedia.org/wiki/McLaren", Name: "McLaren", Nationality: "British"}
	if got[1] != want {
		t.Fatalf("unexpected constructor %#v", got[1])
	}
}

func TestDecodeTableWithoutEnvelope(t *testing.T) {
	body := []byte(`{"SeasonTable":{"Seasons":[{"season":"1950","url":"u1"},{"season":"1951","url":"u2"}]}}`)
	got, err := decodeTable[Season](body, seasonTable, seasonList)
	if err != nil {
		t.Fatalf("decodeTable: %v", err)
	}
	if len(got) != 2 || got[0].Season != "1950" || got[1].URL != "u2" {
		t.Fatalf("unexpected seasons %#v", got)
	}
}

func TestDecodeTableEmptyListIsNotError(t *testing.T) {
	body := []byte(`{"MRData":{"total":"0","DriverTable":{"season":"1900","Drivers":[]}}}`)
	got, err := decodeTable[Driver](body, driverTable, driverList)
	if err != nil {
		t.Fatalf("decodeTable: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", got)
	}
}

func TestDecodeTableMissingKey(t *testing.T) {
	body := []byte(`{"MRData":{"RaceTable":{"Races":[]}}}`)
	_, err := decodeTable[Driver](body, driverTable, driverList)
	if !errors.Is(err, ErrMissingKey) {
		t.Fatalf("expected ErrMissingKey, got %v", err)
	}
	if !strings.Contains(err.Error(), "DriverTable.Drivers") {
		t.Fatalf("error should name the path: %v", err)
	}
}

func TestDecodeTableRejectsInvalidJSON(t *testing.T) {
	if _, err := decodeTable[Driver]([]byte("<html>down</html>"), driverTable, driverList); !errors.Is(err, ErrInvalidJSON) {
		t.Fatalf("expected ErrInvalidJSON, got %v", err)
	}
}

func TestDecodeTableRejectsNonArray(t *testing.T) {
	body := []byte(`{"MRData":{"DriverTable":{"Drivers":{"driverId":"x"}}}}`)
	if _, err := decodeTable[Driver](body, driverTable, driverList); err == nil {
		t.Fatalf("expected error for object in place of array")
	}
}

func TestNormalizeCircuitBodyRewritesEveryOccurrence(t *testing.T) {
	body := []byte(`[{"lat":"1","long":"2"},{"lat":"3","long":"4"}]`)
	got := string(normalizeCircuitBody(body))
	if strings.Contains(got, `"long"`) {
		t.Fatalf("long survived normalization: %s", got)
	}
	if strings.Count(got, `"lng"`) != 2 {
		t.Fatalf("expected two lng keys: %s", got)
	}
}

func TestReadPageMeta(t *testing.T) {
	meta := readPageMeta([]byte(constructorFixture))
	if meta.Limit != "30" || meta.Offset != "0" || meta.Total != "2" {
		t.Fatalf("unexpected meta %#v", meta)
	}
}
