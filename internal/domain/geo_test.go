package domain_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Elyson25/clean-air-now/internal/domain"
)

func TestGeoPoint_MarshalsAsGeoJSON(t *testing.T) {
	t.Parallel()

	p := domain.GeoPoint{Lon: -73.0, Lat: 40.0}

	b, err := json.Marshal(p)
	require.NoError(t, err)

	// Coordinate order is [lon, lat], never the reverse.
	assert.JSONEq(t, `{"type":"Point","coordinates":[-73,40]}`, string(b))
}

func TestGeoPoint_UnmarshalRoundTrip(t *testing.T) {
	t.Parallel()

	var p domain.GeoPoint
	require.NoError(t, json.Unmarshal([]byte(`{"type":"Point","coordinates":[-123.055913,49.281441]}`), &p))

	assert.Equal(t, -123.055913, p.Lon)
	assert.Equal(t, 49.281441, p.Lat)
}

func TestGeoPoint_Unmarshal_RejectsNonPoint(t *testing.T) {
	t.Parallel()

	var p domain.GeoPoint
	err := json.Unmarshal([]byte(`{"type":"Polygon","coordinates":[1,2]}`), &p)
	assert.Error(t, err)
}

func TestGeoPoint_Valid(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name  string
		point domain.GeoPoint
		want  bool
	}{
		{"origin", domain.GeoPoint{}, true},
		{"bounds", domain.GeoPoint{Lon: 180, Lat: -90}, true},
		{"lon too big", domain.GeoPoint{Lon: 180.1, Lat: 0}, false},
		{"lat too small", domain.GeoPoint{Lon: 0, Lat: -90.5}, false},
		{"swapped args out of range", domain.GeoPoint{Lon: 40.0, Lat: -173.0}, false},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, tc.point.Valid())
		})
	}
}

func TestReport_Event_OmitsUserID(t *testing.T) {
	t.Parallel()

	r := domain.Report{
		Description: "smoke",
		Status:      domain.ReportSubmitted,
		AuthorName:  "Ana",
		Point:       domain.GeoPoint{Lon: 1, Lat: 2},
	}

	b, err := json.Marshal(r.Event())
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(b, &raw))
	_, hasUserID := raw["user_id"]
	assert.False(t, hasUserID)
	assert.Equal(t, "Ana", raw["author_name"])
}

func TestReportStatus_Valid(t *testing.T) {
	t.Parallel()

	assert.True(t, domain.ReportSubmitted.Valid())
	assert.True(t, domain.ReportInReview.Valid())
	assert.True(t, domain.ReportResolved.Valid())
	assert.False(t, domain.ReportStatus("Closed").Valid())
	assert.False(t, domain.ReportStatus("").Valid())
}
