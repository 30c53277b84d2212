package ergast

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/olerom/formula/pkg/httpclient"
	"golang.org/x/time/rate"
)

const driverFixture = `{"MRData":{"xmlns":"http://ergast.com/mrd/1.4","series":"f1","limit":"30","offset":"0","total":"2",
"DriverTable":{"season":"2017","Drivers":[
{"driverId":"alonso","permanentNumber":"14","code":"ALO","url":"http://en.wikipedia.org/wiki/Fernando_Alonso","givenName":"Fernando","familyName":"Alonso","dateOfBirth":"1981-07-29","nationality":"Spanish"},
{"driverId":"hamilton","permanentNumber":"44","code":"HAM","url":"http://en.wikipedia.org/wiki/Lewis_Hamilton","givenName":"Lewis","familyName":"Hamilton","dateOfBirth":"1985-01-07","nationality":"British"}]}}}`

const circuitFixture = `{"MRData":{"CircuitTable":{"season":"2017","Circuits":[
{"circuitId":"albert_park","url":"http://en.wikipedia.org/wiki/Melbourne_Grand_Prix_Circuit","circuitName":"Albert Park Grand Prix Circuit",
"Location":{"lat":"-37.8497","long":"144.968","locality":"Melbourne","country":"Australia"}}]}}}`

type stubResponse struct {
	body       []byte
	statusCode int
}

func (s stubResponse) Body() []byte    { return s.body }
func (s stubResponse) StatusCode() int { return s.statusCode }

// stubHTTPClient records the request and returns a canned response.
type stubHTTPClient struct {
	resp    stubResponse
	err     error
	url     string
	headers map[string]string
}

func (s *stubHTTPClient) Get(_ context.Context, url string, headers map[string]string) (httpclient.Response, error) {
	s.url = url
	s.headers = headers
	if s.err != nil {
		return nil, s.err
	}
	status := s.resp.statusCode
	if status == 0 {
		status = http.StatusOK
	}
	return stubResponse{body: s.resp.body, statusCode: status}, nil
}

func TestClientDriversFromStub(t *testing.T) {
	stub := &stubHTTPClient{resp: stubResponse{body: []byte(driverFixture)}}
	client := NewClient(stub)

	drivers, err := client.Drivers(context.Background(), 2017, Unspecified, Unspecified)
	if err != nil {
		t.Fatalf("Drivers: %v", err)
	}
	if stub.url != "http://ergast.com/api/f1/2017/drivers.json?limit=30&offset=0" {
		t.Fatalf("unexpected url %q", stub.url)
	}
	if stub.headers["User-Agent"] != DefaultUserAgent {
		t.Fatalf("unexpected User-Agent %q", stub.headers["User-Agent"])
	}
	if len(drivers) != 2 {
		t.Fatalf("expected 2 drivers, got %d", len(drivers))
	}
	want := Driver{
		DriverID:        "hamilton",
		PermanentNumber: "44",
		Code:            "HAM",
		URL:             "http://en.wikipedia.org/wiki/Lewis_Hamilton",
		GivenName:       "Lewis",
		FamilyName:      "Hamilton",
		DateOfBirth:     "1985-01-07",
		Nationality:     "British",
	}
	if drivers[1] != want {
		t.Fatalf("unexpected driver %#v", drivers[1])
	}
}

func TestClientCircuitsNormalizesLongitude(t *testing.T) {
	stub := &stubHTTPClient{resp: stubResponse{body: []byte(circuitFixture)}}
	circuits, err := NewClient(stub).Circuits(context.Background(), 2017, 1, 0)
	if err != nil {
		t.Fatalf("Circuits: %v", err)
	}
	if len(circuits) != 1 {
		t.Fatalf("expected 1 circuit, got %d", len(circuits))
	}
	loc := circuits[0].Location
	if loc.Lat != "-37.8497" || loc.Lng != "144.968" || loc.Locality != "Melbourne" || loc.Country != "Australia" {
		t.Fatalf("unexpected location %#v", loc)
	}
}

func TestClientPropagatesTransportError(t *testing.T) {
	boom := errors.New("connection reset")
	stub := &stubHTTPClient{err: boom}
	_, err := NewClient(stub).Seasons(context.Background(), Unspecified, Unspecified, Unspecified)
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped transport error, got %v", err)
	}
}

func TestClientReturnsStatusError(t *testing.T) {
	stub := &stubHTTPClient{resp: stubResponse{body: []byte("Service Unavailable"), statusCode: http.StatusServiceUnavailable}}
	_, err := NewClient(stub).Constructors(context.Background(), Unspecified, Unspecified, Unspecified)

	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("expected StatusError, got %v", err)
	}
	if statusErr.StatusCode != http.StatusServiceUnavailable || statusErr.Body != "Service Unavailable" {
		t.Fatalf("unexpected status error %#v", statusErr)
	}
}

func TestClientOptions(t *testing.T) {
	stub := &stubHTTPClient{resp: stubResponse{body: []byte(`{"MRData":{"SeasonTable":{"Seasons":[]}}}`)}}
	client := NewClient(stub,
		WithBaseURL("https://api.jolpi.ca/ergast/"),
		WithSeries("f2"),
		WithUserAgent("formula-test"),
		WithLogger(nil),
	)

	seasons, err := client.Seasons(context.Background(), Unspecified, 5, 10)
	if err != nil {
		t.Fatalf("Seasons: %v", err)
	}
	if len(seasons) != 0 {
		t.Fatalf("expected no seasons, got %d", len(seasons))
	}
	if stub.url != "https://api.jolpi.ca/ergast/f2/seasons.json?limit=5&offset=10" {
		t.Fatalf("unexpected url %q", stub.url)
	}
	if stub.headers["User-Agent"] != "formula-test" {
		t.Fatalf("unexpected User-Agent %q", stub.headers["User-Agent"])
	}
}

func TestClientRateLimiterHonoursContext(t *testing.T) {
	limiter := rate.NewLimiter(rate.Every(time.Hour), 1)
	limiter.Allow()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	stub := &stubHTTPClient{resp: stubResponse{body: []byte(driverFixture), statusCode: http.StatusOK}}
	_, err := NewClient(stub, WithRateLimiter(limiter)).Drivers(ctx, 2017, Unspecified, Unspecified)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context cancellation, got %v", err)
	}
	if stub.url != "" {
		t.Fatalf("request sent despite exhausted limiter: %s", stub.url)
	}
}

func TestClientAgainstHTTPServer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/f1/2017/drivers.json" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.URL.Query().Get("limit") != "2" || r.URL.Query().Get("offset") != "0" {
			t.Errorf("unexpected query %s", r.URL.RawQuery)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(driverFixture))
	}))
	defer srv.Close()

	client := NewClient(httpclient.NewRestyClient(2*time.Second), WithBaseURL(srv.URL))
	drivers, err := client.Drivers(context.Background(), 2017, 2, Unspecified)
	if err != nil {
		t.Fatalf("Drivers: %v", err)
	}
	if len(drivers) != 2 || drivers[0].DriverID != "alonso" {
		t.Fatalf("unexpected drivers %#v", drivers)
	}
}
