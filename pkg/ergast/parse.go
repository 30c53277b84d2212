package ergast

import (
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"
)

const envelopeKey = "MRData"

// Names of the table and list objects per resource.
const (
	driverTable      = "DriverTable"
	driverList       = "Drivers"
	circuitTable     = "CircuitTable"
	circuitList      = "Circuits"
	constructorTable = "ConstructorTable"
	constructorList  = "Constructors"
	seasonTable      = "SeasonTable"
	seasonList       = "Seasons"
)

// decodeTable locates body[MRData][tableKey][listKey], or body[tableKey][listKey]
// when the envelope is absent, and decodes the array into a slice of T.
// An empty array yields an empty non-nil slice.
func decodeTable[T any](body []byte, tableKey, listKey string) ([]T, error) {
	if !gjson.ValidBytes(body) {
		return nil, ErrInvalidJSON
	}

	list := lookupList(body, tableKey, listKey)
	if !list.Exists() {
		return nil, fmt.Errorf("%w: %s.%s", ErrMissingKey, tableKey, listKey)
	}
	if !list.IsArray() {
		return nil, fmt.Errorf("decode %s.%s: expected array, got %s", tableKey, listKey, list.Type)
	}

	out := make([]T, 0, len(list.Array()))
	if err := json.Unmarshal([]byte(list.Raw), &out); err != nil {
		return nil, fmt.Errorf("decode %s.%s: %w", tableKey, listKey, err)
	}
	return out, nil
}

func lookupList(body []byte, tableKey, listKey string) gjson.Result {
	path := gjson.Escape(tableKey) + "." + gjson.Escape(listKey)
	if env := gjson.GetBytes(body, envelopeKey); env.IsObject() {
		return env.Get(path)
	}
	return gjson.GetBytes(body, path)
}

// pageMeta is the pagination echo of the MRData envelope.
type pageMeta struct {
	Limit  string `json:"limit"`
	Offset string `json:"offset"`
	Total  string `json:"total"`
}

func readPageMeta(body []byte) pageMeta {
	res := gjson.GetManyBytes(body, envelopeKey+".limit", envelopeKey+".offset", envelopeKey+".total")
	return pageMeta{Limit: res[0].String(), Offset: res[1].String(), Total: res[2].String()}
}
