package ergast

import (
	"strconv"
	"strings"
)

// Resource names one collection of the API.
type Resource string

const (
	ResourceDrivers      Resource = "drivers"
	ResourceCircuits     Resource = "circuits"
	ResourceConstructors Resource = "constructors"
	ResourceSeasons      Resource = "seasons"
)

// Resources lists every resource the client can fetch.
var Resources = []Resource{ResourceDrivers, ResourceCircuits, ResourceConstructors, ResourceSeasons}

// ParseResource maps a name such as "Drivers" to its Resource.
func ParseResource(name string) (Resource, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, r := range Resources {
		if string(r) == name {
			return r, true
		}
	}
	return "", false
}

const (
	// Unspecified drops the season segment, or selects the default limit/offset.
	Unspecified = -1

	DefaultLimit  = 30
	DefaultOffset = 0
	DefaultSeries = "f1"

	DefaultBaseURL   = "http://ergast.com/api"
	DefaultUserAgent = "Mozilla/5.0"
)

const requestTemplate = "{BASE}/{SERIES}/{SEASON}/{RESOURCE}.json?limit={LIMIT}&offset={OFFSET}"

// BuildURL renders the request URL for resource. A season of Unspecified
// removes the season segment; Unspecified limit and offset become
// DefaultLimit and DefaultOffset. Any other value is inserted as is.
func BuildURL(baseURL, series string, resource Resource, season, limit, offset int) string {
	seasonSegment := ""
	if season != Unspecified {
		seasonSegment = strconv.Itoa(season) + "/"
	}
	if limit == Unspecified {
		limit = DefaultLimit
	}
	if offset == Unspecified {
		offset = DefaultOffset
	}

	return strings.NewReplacer(
		"{BASE}", strings.TrimRight(baseURL, "/"),
		"{SERIES}", series,
		"{SEASON}/", seasonSegment,
		"{RESOURCE}", string(resource),
		"{LIMIT}", strconv.Itoa(limit),
		"{OFFSET}", strconv.Itoa(offset),
	).Replace(requestTemplate)
}
