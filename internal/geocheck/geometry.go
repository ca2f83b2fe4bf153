package geocheck

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"

	"declaration-service/internal/models"
)

const minRingCoords = 4

var ErrNoPlots = errors.New("geojson contains no plot geometry")

// GeometryValidator checks the plot geometry itself and hands the satellite
// stage to Satellite.
type GeometryValidator struct {
	Satellite SatelliteChecker
}

func (v *GeometryValidator) ValidateGeometry(ctx context.Context, data []byte) (models.CheckOutcome, error) {
	if err := ctx.Err(); err != nil {
		return models.CheckFail, err
	}

	plots, err := ParsePlots(data)
	if err != nil {
		slog.Info("geojson rejected", "error", err)
		return models.CheckFail, nil
	}

	problems := CheckPlots(plots)
	if len(problems) > 0 {
		slog.Info("geojson geometry is not compliant", "plots", len(plots), "problems", problems)
		return models.CheckFail, nil
	}
	return models.CheckPass, nil
}

func (v *GeometryValidator) ValidateSatellite(ctx context.Context, data []byte) (models.CheckOutcome, error) {
	if v.Satellite == nil {
		return models.CheckFail, errors.New("no satellite checker configured")
	}
	return v.Satellite.ValidateSatellite(ctx, data)
}

// ParsePlots decodes a GeoJSON geometry, Feature or FeatureCollection into its
// plot geometries.
func ParsePlots(data []byte) ([]geom.T, error) {
	var probe struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("failed to decode geojson: %w", err)
	}

	var plots []geom.T
	switch probe.Type {
	case "FeatureCollection":
		var fc struct {
			Features []json.RawMessage `json:"features"`
		}
		if err := json.Unmarshal(data, &fc); err != nil {
			return nil, fmt.Errorf("failed to decode feature collection: %w", err)
		}
		for i, raw := range fc.Features {
			var feature geojson.Feature
			if err := feature.UnmarshalJSON(raw); err != nil {
				return nil, fmt.Errorf("failed to decode feature %d: %w", i, err)
			}
			if feature.Geometry != nil {
				plots = append(plots, feature.Geometry)
			}
		}
	case "Feature":
		var feature geojson.Feature
		if err := feature.UnmarshalJSON(data); err != nil {
			return nil, fmt.Errorf("failed to decode feature: %w", err)
		}
		if feature.Geometry != nil {
			plots = append(plots, feature.Geometry)
		}
	default:
		var g geom.T
		if err := geojson.Unmarshal(data, &g); err != nil {
			return nil, fmt.Errorf("failed to decode geometry: %w", err)
		}
		if g != nil {
			plots = append(plots, g)
		}
	}

	if len(plots) == 0 {
		return nil, ErrNoPlots
	}
	return plots, nil
}

// CheckPlots lists every reason the plots are not acceptable. An empty result
// means the geometry passes.
func CheckPlots(plots []geom.T) []string {
	var problems []string
	for i, plot := range plots {
		switch g := plot.(type) {
		case *geom.Point:
			problems = append(problems, checkCoord(i, g.Coords())...)
		case *geom.Polygon:
			problems = append(problems, checkPolygon(i, g)...)
		case *geom.MultiPolygon:
			if g.NumPolygons() == 0 {
				problems = append(problems, fmt.Sprintf("plot %d: empty multipolygon", i))
			}
			for j := 0; j < g.NumPolygons(); j++ {
				problems = append(problems, checkPolygon(i, g.Polygon(j))...)
			}
		default:
			problems = append(problems, fmt.Sprintf("plot %d: unsupported geometry %T", i, plot))
		}
	}
	return problems
}

func checkPolygon(plot int, p *geom.Polygon) []string {
	if p.NumLinearRings() == 0 {
		return []string{fmt.Sprintf("plot %d: polygon has no rings", plot)}
	}

	var problems []string
	for r := 0; r < p.NumLinearRings(); r++ {
		ring := p.LinearRing(r)
		n := ring.NumCoords()
		if n < minRingCoords {
			problems = append(problems, fmt.Sprintf("plot %d ring %d: %d vertices, need at least %d", plot, r, n, minRingCoords))
			continue
		}
		first, last := ring.Coord(0), ring.Coord(n-1)
		if first.X() != last.X() || first.Y() != last.Y() {
			problems = append(problems, fmt.Sprintf("plot %d ring %d: ring is not closed", plot, r))
		}
		for c := 0; c < n; c++ {
			problems = append(problems, checkCoord(plot, ring.Coord(c))...)
		}
	}

	if len(problems) == 0 && math.Abs(p.Area()) == 0 {
		problems = append(problems, fmt.Sprintf("plot %d: polygon has zero area", plot))
	}
	return problems
}

func checkCoord(plot int, c geom.Coord) []string {
	if len(c) < 2 {
		return []string{fmt.Sprintf("plot %d: coordinate has fewer than two ordinates", plot)}
	}
	lon, lat := c.X(), c.Y()
	if math.IsNaN(lon) || math.IsNaN(lat) || lon < -180 || lon > 180 || lat < -90 || lat > 90 {
		return []string{fmt.Sprintf("plot %d: coordinate (%g, %g) outside WGS84 range", plot, lon, lat)}
	}
	return nil
}
