package wizard

import "declaration-service/internal/models"

type CheckStatus string

const (
	CheckNotStarted CheckStatus = "not_started"
	CheckPending    CheckStatus = "pending"
	CheckPassed     CheckStatus = "pass"
	CheckFailed     CheckStatus = "fail"
	CheckSkipped    CheckStatus = "skipped"
)

type GeoPhase string

const (
	GeoNotStarted       GeoPhase = "not_started"
	GeoGeometryPending  GeoPhase = "geometry_pending"
	GeoGeometryFail     GeoPhase = "geometry_fail"
	GeoSatellitePending GeoPhase = "satellite_pending"
	GeoSatellitePass    GeoPhase = "satellite_pass"
	GeoSatelliteFail    GeoPhase = "satellite_fail"
)

// GeoValidation tracks the two-stage check of an uploaded GeoJSON artifact.
// Satellite leaves not_started only after geometry passed; a failed geometry
// marks satellite skipped for good.
type GeoValidation struct {
	Run        int         `json:"run"`
	FileName   string      `json:"fileName"`
	ObjectName string      `json:"objectName,omitempty"`
	Geometry   CheckStatus `json:"geometry"`
	Satellite  CheckStatus `json:"satellite"`
}

func (g *GeoValidation) Phase() GeoPhase {
	if g == nil {
		return GeoNotStarted
	}
	switch g.Geometry {
	case CheckPending:
		return GeoGeometryPending
	case CheckFailed:
		return GeoGeometryFail
	case CheckPassed:
		switch g.Satellite {
		case CheckPassed:
			return GeoSatellitePass
		case CheckFailed:
			return GeoSatelliteFail
		default:
			return GeoSatellitePending
		}
	default:
		return GeoNotStarted
	}
}

// InFlight reports whether a stage is still awaiting its result.
func (g *GeoValidation) InFlight() bool {
	phase := g.Phase()
	return phase == GeoGeometryPending || phase == GeoSatellitePending
}

// Failed reports whether either stage resolved to fail.
func (g *GeoValidation) Failed() bool {
	return g != nil && (g.Geometry == CheckFailed || g.Satellite == CheckFailed)
}

var (
	geometryFailedNotice = models.NewDestructiveNotification(
		"Geometry validation failed",
		"The uploaded GeoJSON contains non-compliant geometry. Review the plot boundaries and upload a corrected file.",
	)
	satelliteFailedNotice = models.NewDestructiveNotification(
		"Satellite validation failed",
		"Satellite imagery indicates potential deforestation within the declared plots. This declaration cannot be submitted as compliant.",
	)
	geometryPassedNotice = models.NewNotification(
		"Geometry validation passed",
		"Plot geometry is valid. Running satellite deforestation check.",
	)
	satellitePassedNotice = models.NewNotification(
		"Satellite validation passed",
		"No deforestation detected for the declared plots.",
	)
)

// CheckGeoUpload refuses a GeoJSON upload for a draft that is not a fresh
// declaration.
func CheckGeoUpload(s State) error {
	if s.Draft.Source != SourceFresh {
		return &BlockedError{
			Kind:    KindValidationBlocked,
			Step:    s.CurrentStep,
			Title:   "Upload failed",
			Message: "GeoJSON files can only be uploaded for fresh declarations.",
		}
	}
	return nil
}

// StartGeoUpload resets the geo check and starts a new run for the uploaded
// artifact. The returned state's Draft.Geo.Run identifies the run for the
// resolvers.
func StartGeoUpload(s State, fileName, objectName string) State {
	out := s.clone()
	out.GeoRuns++
	out.Draft.Geo = &GeoValidation{
		Run:        out.GeoRuns,
		FileName:   fileName,
		ObjectName: objectName,
		Geometry:   CheckPending,
		Satellite:  CheckNotStarted,
	}
	return out
}

// ResolveGeometry records the geometry verdict of run. Results for a
// superseded run or for a geometry that already resolved are ignored.
func ResolveGeometry(s State, run int, outcome models.CheckOutcome) (State, []models.Notification) {
	geo := s.Draft.Geo
	if geo == nil || geo.Run != run || geo.Geometry != CheckPending {
		return s, nil
	}

	out := s.clone()
	if outcome == models.CheckPass {
		out.Draft.Geo.Geometry = CheckPassed
		out.Draft.Geo.Satellite = CheckPending
		return out, []models.Notification{geometryPassedNotice}
	}
	out.Draft.Geo.Geometry = CheckFailed
	out.Draft.Geo.Satellite = CheckSkipped
	return out, []models.Notification{geometryFailedNotice}
}

// ResolveSatellite records the satellite verdict of run. It only applies while
// the satellite stage is pending, which requires a passed geometry.
func ResolveSatellite(s State, run int, outcome models.CheckOutcome) (State, []models.Notification) {
	geo := s.Draft.Geo
	if geo == nil || geo.Run != run || geo.Phase() != GeoSatellitePending {
		return s, nil
	}

	out := s.clone()
	if outcome == models.CheckPass {
		out.Draft.Geo.Satellite = CheckPassed
		return out, []models.Notification{satellitePassedNotice}
	}
	out.Draft.Geo.Satellite = CheckFailed
	return out, []models.Notification{satelliteFailedNotice}
}
