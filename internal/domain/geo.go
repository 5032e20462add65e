package domain

import (
	"encoding/json"
	"fmt"
)

// GeoPoint is a WGS84 coordinate pair. Wire and storage order is always
// [longitude, latitude], matching GeoJSON.
type GeoPoint struct {
	Lon float64
	Lat float64
}

func (p GeoPoint) Valid() bool {
	return p.Lon >= -180 && p.Lon <= 180 && p.Lat >= -90 && p.Lat <= 90
}

func (p GeoPoint) String() string {
	return fmt.Sprintf("%.6f,%.6f", p.Lon, p.Lat)
}

type geoJSONPoint struct {
	Type        string     `json:"type"`
	Coordinates [2]float64 `json:"coordinates"`
}

func (p GeoPoint) MarshalJSON() ([]byte, error) {
	return json.Marshal(geoJSONPoint{
		Type:        "Point",
		Coordinates: [2]float64{p.Lon, p.Lat},
	})
}

func (p *GeoPoint) UnmarshalJSON(b []byte) error {
	var raw geoJSONPoint
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	if raw.Type != "Point" {
		return fmt.Errorf("unexpected geometry type %q", raw.Type)
	}
	p.Lon = raw.Coordinates[0]
	p.Lat = raw.Coordinates[1]
	return nil
}
