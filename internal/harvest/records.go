package harvest

import (
	"strings"

	"github.com/olerom/formula/internal/domain"
	"github.com/olerom/formula/pkg/ergast"
)

// RecordsFromDrivers converts drivers into records keyed by driver id.
func RecordsFromDrivers(drivers []ergast.Driver) []domain.Record {
	out := make([]domain.Record, 0, len(drivers))
	for _, d := range drivers {
		out = append(out, domain.Record{
			Resource: string(ergast.ResourceDrivers),
			ID:       d.DriverID,
			Title:    strings.TrimSpace(d.GivenName + " " + d.FamilyName),
			URL:      d.URL,
			Attributes: attrs(
				"nationality", d.Nationality,
				"date_of_birth", d.DateOfBirth,
				"code", d.Code,
				"permanent_number", d.PermanentNumber,
			),
		})
	}
	return out
}

// RecordsFromCircuits converts circuits into records keyed by circuit id.
func RecordsFromCircuits(circuits []ergast.Circuit) []domain.Record {
	out := make([]domain.Record, 0, len(circuits))
	for _, c := range circuits {
		out = append(out, domain.Record{
			Resource: string(ergast.ResourceCircuits),
			ID:       c.CircuitID,
			Title:    c.CircuitName,
			URL:      c.URL,
			Attributes: attrs(
				"lat", c.Location.Lat,
				"lng", c.Location.Lng,
				"locality", c.Location.Locality,
				"country", c.Location.Country,
			),
		})
	}
	return out
}

// RecordsFromConstructors converts constructors into records keyed by constructor id.
func RecordsFromConstructors(constructors []ergast.Constructor) []domain.Record {
	out := make([]domain.Record, 0, len(constructors))
	for _, c := range constructors {
		out = append(out, domain.Record{
			Resource:   string(ergast.ResourceConstructors),
			ID:         c.ConstructorID,
			Title:      c.Name,
			URL:        c.URL,
			Attributes: attrs("nationality", c.Nationality),
		})
	}
	return out
}

// RecordsFromSeasons converts seasons into records keyed by year.
func RecordsFromSeasons(seasons []ergast.Season) []domain.Record {
	out := make([]domain.Record, 0, len(seasons))
	for _, s := range seasons {
		out = append(out, domain.Record{
			Resource: string(ergast.ResourceSeasons),
			ID:       s.Season,
			Title:    s.Season,
			URL:      s.URL,
		})
	}
	return out
}

// attrs builds a map from key/value pairs, skipping empty values.
func attrs(kv ...string) map[string]string {
	var out map[string]string
	for i := 0; i+1 < len(kv); i += 2 {
		if kv[i+1] == "" {
			continue
		}
		if out == nil {
			out = make(map[string]string, len(kv)/2)
		}
		out[kv[i]] = kv[i+1]
	}
	return out
}
