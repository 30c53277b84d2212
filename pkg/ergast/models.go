package ergast

// Season is one championship year.
type Season struct {
	Season string `json:"season"`
	URL    string `json:"url"`
}

// Driver mirrors an entry of the API's DriverTable.
type Driver struct {
	DriverID        string `json:"driverId"`
	PermanentNumber string `json:"permanentNumber,omitempty"`
	Code            string `json:"code,omitempty"`
	URL             string `json:"url"`
	GivenName       string `json:"givenName"`
	FamilyName      string `json:"familyName"`
	DateOfBirth     string `json:"dateOfBirth"`
	Nationality     string `json:"nationality"`
}

// Circuit mirrors an entry of the API's CircuitTable.
type Circuit struct {
	CircuitID   string   `json:"circuitId"`
	URL         string   `json:"url"`
	CircuitName string   `json:"circuitName"`
	Location    Location `json:"Location"`
}

// Location is where a circuit sits. The API names the longitude "long";
// circuit bodies are rewritten to "lng" before decoding.
type Location struct {
	Lat      string `json:"lat"`
	Lng      string `json:"lng"`
	Locality string `json:"locality"`
	Country  string `json:"country"`
}

// Constructor mirrors an entry of the API's ConstructorTable.
type Constructor struct {
	ConstructorID string `json:"constructorId"`
	URL           string `json:"url"`
	Name          string `json:"name"`
	Nationality   string `json:"nationality"`
}
