package domain

// Record is the resource-neutral form of a season, driver, circuit or
// constructor as it travels through the harvester.
type Record struct {
	Resource    string            `json:"resource"`
	ID          string            `json:"id"`
	Title       string            `json:"title"`
	URL         string            `json:"url"`
	Description string            `json:"description,omitempty"`
	ImageURL    string            `json:"image_url,omitempty"`
	Attributes  map[string]string `json:"attributes,omitempty"`
}

// Key identifies the record across queries.
func (r Record) Key() string {
	return r.Resource + "/" + r.ID
}
