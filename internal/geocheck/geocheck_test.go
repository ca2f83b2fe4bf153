package geocheck

import (
	"context"
	"errors"
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"declaration-service/internal/models"
)

const (
	squarePlot = `{"type":"Polygon","coordinates":[[[101.0,1.0],[101.1,1.0],[101.1,1.1],[101.0,1.1],[101.0,1.0]]]}`
	plotsFC    = `{"type":"FeatureCollection","features":[
		{"type":"Feature","properties":{"name":"plot-a"},"geometry":` + squarePlot + `},
		{"type":"Feature","properties":{"name":"well"},"geometry":{"type":"Point","coordinates":[101.05,1.05]}}
	]}`
)

func TestRandomValidator_PassRates(t *testing.T) {
	v := NewRandomValidator(rand.NewPCG(42, 7))
	ctx := context.Background()

	const samples = 20000
	var geometryPass, satellitePass int
	for i := 0; i < samples; i++ {
		if out, err := v.ValidateGeometry(ctx, nil); err == nil && out == models.CheckPass {
			geometryPass++
		}
		if out, err := v.ValidateSatellite(ctx, nil); err == nil && out == models.CheckPass {
			satellitePass++
		}
	}

	assert.InDelta(t, GeometryPassRate, float64(geometryPass)/samples, 0.02)
	assert.InDelta(t, SatellitePassRate, float64(satellitePass)/samples, 0.02)
}

func TestRandomValidator_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out, err := NewRandomValidator(nil).ValidateGeometry(ctx, nil)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, models.CheckFail, out)
}

func TestGeometryValidator(t *testing.T) {
	tests := []struct {
		name string
		data string
		want models.CheckOutcome
	}{
		{"polygon", squarePlot, models.CheckPass},
		{"feature collection", plotsFC, models.CheckPass},
		{"single feature", `{"type":"Feature","properties":{},"geometry":` + squarePlot + `}`, models.CheckPass},
		{"multipolygon", `{"type":"MultiPolygon","coordinates":[[[[10,10],[11,10],[11,11],[10,10]]]]}`, models.CheckPass},
		{"open ring", `{"type":"Polygon","coordinates":[[[101.0,1.0],[101.1,1.0],[101.1,1.1],[101.0,1.1]]]}`, models.CheckFail},
		{"too few vertices", `{"type":"Polygon","coordinates":[[[101.0,1.0],[101.1,1.0],[101.0,1.0]]]}`, models.CheckFail},
		{"out of range", `{"type":"Point","coordinates":[181.0,1.0]}`, models.CheckFail},
		{"zero area", `{"type":"Polygon","coordinates":[[[1,1],[2,2],[3,3],[1,1]]]}`, models.CheckFail},
		{"line string", `{"type":"LineString","coordinates":[[1,1],[2,2]]}`, models.CheckFail},
		{"empty collection", `{"type":"FeatureCollection","features":[]}`, models.CheckFail},
		{"not json", `plots.shp`, models.CheckFail},
	}
	v := &GeometryValidator{Satellite: Static{Satellite: models.CheckPass}}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := v.ValidateGeometry(context.Background(), []byte(tt.data))
			require.NoError(t, err)
			assert.Equal(t, tt.want, out)
		})
	}
}

func TestGeometryValidator_DelegatesSatellite(t *testing.T) {
	v := &GeometryValidator{Satellite: Static{Satellite: models.CheckFail}}

	out, err := v.ValidateSatellite(context.Background(), []byte(squarePlot))

	require.NoError(t, err)
	assert.Equal(t, models.CheckFail, out)

	_, err = (&GeometryValidator{}).ValidateSatellite(context.Background(), nil)
	assert.Error(t, err)
}

func TestParsePlots(t *testing.T) {
	plots, err := ParsePlots([]byte(plotsFC))
	require.NoError(t, err)
	assert.Len(t, plots, 2)

	_, err = ParsePlots([]byte(`{"type":"FeatureCollection","features":[]}`))
	assert.ErrorIs(t, err, ErrNoPlots)
}

func TestSatelliteAIValidator(t *testing.T) {
	tests := []struct {
		name    string
		result  map[string]any
		askErr  error
		want    models.CheckOutcome
		wantErr bool
	}{
		{"no deforestation", map[string]any{"deforestation_detected": false, "confidence": 0.9}, nil, models.CheckPass, false},
		{"deforestation", map[string]any{"deforestation_detected": true}, nil, models.CheckFail, false},
		{"missing field", map[string]any{"reason": "cloud cover"}, nil, models.CheckFail, true},
		{"api error", nil, errors.New("quota exceeded"), models.CheckFail, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var prompt string
			v := &SatelliteAIValidator{ask: func(_ context.Context, p string, _ []byte) (map[string]any, error) {
				prompt = p
				return tt.result, tt.askErr
			}}

			out, err := v.ValidateSatellite(context.Background(), []byte(squarePlot))

			assert.Equal(t, tt.want, out)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.True(t, strings.Contains(prompt, "POLYGON"), "prompt should carry the plot WKT")
		})
	}
}

func TestNewValidator(t *testing.T) {
	random := NewRandomValidator(rand.NewPCG(1, 2))

	v, err := NewValidator("", random, nil)
	require.NoError(t, err)
	assert.Same(t, random, v)

	v, err = NewValidator(ModeGeometry, random, nil)
	require.NoError(t, err)
	assert.IsType(t, &GeometryValidator{}, v)

	_, err = NewValidator(ModeAI, random, nil)
	assert.Error(t, err)

	v, err = NewValidator(ModeAI, random, Static{Satellite: models.CheckPass})
	require.NoError(t, err)
	out, err := v.ValidateSatellite(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, models.CheckPass, out)

	_, err = NewValidator("lidar", random, nil)
	assert.Error(t, err)
}
