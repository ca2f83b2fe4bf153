package geocheck

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/twpayne/go-geom/encoding/wkt"

	"declaration-service/internal/ai/gemini"
	"declaration-service/internal/models"
)

type askFunc func(ctx context.Context, prompt string, geojson []byte) (map[string]any, error)

// SatelliteAIValidator asks Gemini whether the declared plots show
// deforestation after the EUDR cut-off date.
type SatelliteAIValidator struct {
	ask askFunc
}

func NewSatelliteAIValidator(selector *gemini.GeminiClientSelector) *SatelliteAIValidator {
	return &SatelliteAIValidator{
		ask: func(ctx context.Context, prompt string, geojson []byte) (map[string]any, error) {
			return gemini.SendAIWithGeoJSONAndRetry(ctx, prompt, geojson, selector)
		},
	}
}

func (v *SatelliteAIValidator) ValidateSatellite(ctx context.Context, data []byte) (models.CheckOutcome, error) {
	plots, err := ParsePlots(data)
	if err != nil {
		return models.CheckFail, fmt.Errorf("satellite check needs valid plots: %w", err)
	}

	var prompt strings.Builder
	prompt.WriteString(gemini.DeforestationPrompt)
	prompt.WriteString("\n## PLOTS (WKT)\n")
	for _, plot := range plots {
		text, err := wkt.Marshal(plot)
		if err != nil {
			return models.CheckFail, fmt.Errorf("failed to marshal plot to WKT: %w", err)
		}
		prompt.WriteString(text)
		prompt.WriteByte('\n')
	}

	result, err := v.ask(ctx, prompt.String(), data)
	if err != nil {
		return models.CheckFail, fmt.Errorf("satellite assessment failed: %w", err)
	}

	detected, ok := result["deforestation_detected"].(bool)
	if !ok {
		return models.CheckFail, fmt.Errorf("satellite assessment missing deforestation_detected: %v", result)
	}

	slog.Info("satellite assessment received",
		"deforestation_detected", detected,
		"confidence", result["confidence"],
		"reason", result["reason"])

	if detected {
		return models.CheckFail, nil
	}
	return models.CheckPass, nil
}
