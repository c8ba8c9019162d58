package chart

import (
	"encoding/json"
	"fmt"

	geom "github.com/peterstace/simplefeatures/geom"

	"github.com/helionav/starcharts/internal/discovery"
	"github.com/helionav/starcharts/pkg/core"
)

// GeoJSON renders the sector's discovered objects as a GeoJSON feature
// collection for chart renderers. Positions are sector-space kilometers on
// the XY plane with Z carried as the third coordinate; undiscovered
// objects are omitted, that is the fog of war.
func (e *Exporter) GeoJSON(sectorID string) ([]byte, error) {
	snap, err := e.Snapshot(sectorID)
	if err != nil {
		return nil, err
	}

	collection := geom.GeoJSONFeatureCollection{}
	for _, obj := range snap.Objects {
		if !obj.Discovered {
			continue
		}
		collection = append(collection, geom.GeoJSONFeature{
			Geometry: pointXYZ(obj.Position).AsGeometry(),
			ID:       obj.ID,
			Properties: map[string]any{
				"type":        obj.Type,
				"displayName": obj.DisplayName,
				"faction":     obj.Faction,
				"level":       string(discovery.CategoryOf(core.ObjectType(obj.Type))),
			},
		})
	}

	data, err := json.Marshal(collection)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal feature collection: %w", err)
	}
	return data, nil
}

func pointXYZ(p [3]float64) geom.Point {
	return geom.NewPoint(geom.Coordinates{
		XY:   geom.XY{X: p[0], Y: p[1]},
		Z:    p[2],
		Type: geom.DimXYZ,
	})
}
