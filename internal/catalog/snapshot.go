package catalog

import (
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// Snapshot properties, matching the GeoJSON layout earlier releases wrote.
const (
	propTitle      = "title"
	propCountry    = "country"
	propLocationID = "location_id"
	propLng        = "lng"
	propLat        = "lat"
)

// Marshal encodes the catalog as a GeoJSON FeatureCollection of points.
func (c *Catalog) Marshal() ([]byte, error) {
	fc := geojson.NewFeatureCollection()
	for _, e := range c.entries {
		f := geojson.NewFeature(orb.Point{e.Lon, e.Lat})
		f.Properties[propTitle] = e.City
		f.Properties[propCountry] = e.Country
		f.Properties[propLocationID] = e.LocationID
		f.Properties[propLng] = e.Lon
		f.Properties[propLat] = e.Lat
		fc.Append(f)
	}

	data, err := fc.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("failed to encode catalog: %w", err)
	}
	return data, nil
}

// Unmarshal decodes a snapshot written by Marshal. Features without a point
// geometry, a title or a country are skipped.
func Unmarshal(data []byte) (*Catalog, error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode catalog: %w", err)
	}

	entries := make([]Entry, 0, len(fc.Features))
	for _, f := range fc.Features {
		if f == nil {
			continue
		}
		pt, ok := f.Geometry.(orb.Point)
		if !ok {
			continue
		}
		e := Entry{
			Country:    f.Properties.MustString(propCountry, ""),
			City:       f.Properties.MustString(propTitle, ""),
			LocationID: f.Properties.MustString(propLocationID, ""),
			Lon:        pt.Lon(),
			Lat:        pt.Lat(),
		}
		if e.Country == "" || e.City == "" || e.LocationID == "" {
			continue
		}
		entries = append(entries, e)
	}

	if len(entries) == 0 {
		return nil, fmt.Errorf("catalog snapshot has no usable locations")
	}
	return New(entries), nil
}
