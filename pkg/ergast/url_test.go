package ergast

import "testing"

func TestBuildURLUnspecifiedDefaults(t *testing.T) {
	got := BuildURL(DefaultBaseURL, DefaultSeries, ResourceDrivers, Unspecified, Unspecified, Unspecified)
	want := "http://ergast.com/api/f1/drivers.json?limit=30&offset=0"
	if got != want {
		t.Fatalf("BuildURL = %q want %q", got, want)
	}
}

func TestBuildURLExplicitValues(t *testing.T) {
	cases := []struct {
		resource              Resource
		season, limit, offset int
		want                  string
	}{
		{ResourceCircuits, 2017, 10, 5, "http://ergast.com/api/f1/2017/circuits.json?limit=10&offset=5"},
		{ResourceConstructors, 1950, 1000, 0, "http://ergast.com/api/f1/1950/constructors.json?limit=1000&offset=0"},
		{ResourceSeasons, Unspecified, 100, 60, "http://ergast.com/api/f1/seasons.json?limit=100&offset=60"},
		{ResourceDrivers, 2008, Unspecified, 3, "http://ergast.com/api/f1/2008/drivers.json?limit=30&offset=3"},
		{ResourceDrivers, 0, 0, 0, "http://ergast.com/api/f1/0/drivers.json?limit=0&offset=0"},
	}
	for _, tc := range cases {
		got := BuildURL(DefaultBaseURL, DefaultSeries, tc.resource, tc.season, tc.limit, tc.offset)
		if got != tc.want {
			t.Errorf("BuildURL(%s,%d,%d,%d) = %q want %q", tc.resource, tc.season, tc.limit, tc.offset, got, tc.want)
		}
	}
}

func TestBuildURLTrimsBaseSlash(t *testing.T) {
	got := BuildURL("https://mirror.example/api/", "fe", ResourceSeasons, Unspecified, Unspecified, Unspecified)
	if got != "https://mirror.example/api/fe/seasons.json?limit=30&offset=0" {
		t.Fatalf("BuildURL = %q", got)
	}
}

func TestParseResource(t *testing.T) {
	if r, ok := ParseResource(" Drivers "); !ok || r != ResourceDrivers {
		t.Fatalf("ParseResource(Drivers) = %q, %v", r, ok)
	}
	if _, ok := ParseResource("results"); ok {
		t.Fatalf("expected results to be unknown")
	}
}
