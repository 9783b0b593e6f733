package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/AleNovelli/drone-flightplans/internal/frames"
	"github.com/AleNovelli/drone-flightplans/internal/geofence"
	"github.com/AleNovelli/drone-flightplans/internal/metrics"
	"github.com/AleNovelli/drone-flightplans/internal/mission"
	"github.com/AleNovelli/drone-flightplans/internal/observe"
	"github.com/AleNovelli/drone-flightplans/internal/site"
	"github.com/AleNovelli/drone-flightplans/internal/trajectory"
)

// planRequest selects an arc variant and carries its parameters. The fixed
// fields drive the "arc" variant; the nominal_* fields drive "nominal".
type planRequest struct {
	Variant string `json:"variant"`

	POI        frames.ENU `json:"poi"`
	SlantRange float64    `json:"slant_range_m"`
	AzCenter   float64    `json:"az_center_deg"`
	ElCenter   float64    `json:"el_center_deg"`
	ElWidth    float64    `json:"el_width_deg"`
	Steps      int        `json:"steps"`

	NominalPOI   frames.ENU `json:"nominal_poi"`
	NominalAz    float64    `json:"nominal_az_deg"`
	NominalEl    float64    `json:"nominal_el_deg"`
	NominalRange float64    `json:"nominal_range_m"`
	DeltaEl      float64    `json:"delta_el_deg"`

	Telescopes       []string `json:"telescopes,omitempty"`
	IncludeBoresight bool     `json:"include_boresight"`
}

type trajectoryPayload struct {
	ENU         []frames.ENU      `json:"enu"`
	Yaw         []float64         `json:"yaw_deg"`
	Pitch       []float64         `json:"pitch_deg"`
	Geodetic    []frames.Geodetic `json:"geodetic"`
	ArcCenter   *frames.ENU       `json:"arc_center,omitempty"`
	POI         *frames.Geodetic  `json:"poi"`
	CurveRadius float64           `json:"curve_radius_m"`
}

type planResponse struct {
	Variant    string                 `json:"variant"`
	Trajectory trajectoryPayload      `json:"trajectory"`
	Pointings  []observe.Pointing     `json:"pointings,omitempty"`
	Boresight  []observe.BoresightRow `json:"boresight,omitempty"`
}

type telescopePayload struct {
	Geodetic         frames.Geodetic `json:"geodetic"`
	FocalPlaneHeight float64         `json:"focalplane_height"`
	ENU              *frames.ENU     `json:"enu,omitempty"`
}

type sitePayload struct {
	Origin      *frames.Geodetic            `json:"origin"`
	LandingSite *frames.Geodetic            `json:"landing_site"`
	Telescopes  map[string]telescopePayload `json:"telescopes"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError maps domain sentinels onto HTTP statuses.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, trajectory.ErrInvalidTrajectory),
		errors.Is(err, mission.ErrTooManyWaypoints),
		errors.Is(err, mission.ErrIncompleteTrajectory),
		errors.Is(err, geofence.ErrUnknownDirection),
		errors.Is(err, geofence.ErrConfig):
		status = http.StatusBadRequest
	case errors.Is(err, site.ErrUnknownTelescope):
		status = http.StatusNotFound
	case errors.Is(err, site.ErrOriginNotSet),
		errors.Is(err, site.ErrTelescopeNotAnchored),
		errors.Is(err, site.ErrNoTelescopes):
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeBadRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, map[string]string{"error": msg})
}

func (s *Server) handleSite(w http.ResponseWriter, r *http.Request) {
	tels := s.site.Telescopes()
	payload := sitePayload{
		Origin:      s.site.Origin(),
		LandingSite: s.site.LandingSite(),
		Telescopes:  make(map[string]telescopePayload, len(tels)),
	}
	for name, tel := range tels {
		payload.Telescopes[name] = telescopePayload{
			Geodetic:         tel.Geodetic,
			FocalPlaneHeight: tel.FocalPlaneHeight,
			ENU:              tel.ENU,
		}
	}
	writeJSON(w, http.StatusOK, payload)
}

// buildTrajectory generates the requested arc variant.
func (s *Server) buildTrajectory(req planRequest) (*trajectory.DroneTrajectory, error) {
	switch req.Variant {
	case "arc":
		return trajectory.NewArcTrajectory(s.site, trajectory.ArcParams{
			POI:        req.POI,
			SlantRange: req.SlantRange,
			AzCenter:   req.AzCenter,
			ElCenter:   req.ElCenter,
			ElWidth:    req.ElWidth,
			Steps:      req.Steps,
		})
	case "nominal":
		return trajectory.NewNominalArcTrajectory(s.site, trajectory.NominalParams{
			NominalPOI:   req.NominalPOI,
			NominalAz:    req.NominalAz,
			NominalEl:    req.NominalEl,
			NominalRange: req.NominalRange,
			POI:          req.POI,
			DeltaEl:      req.DeltaEl,
			Steps:        req.Steps,
		})
	default:
		return nil, fmt.Errorf("%w: unknown variant %q (want arc or nominal)",
			trajectory.ErrInvalidTrajectory, req.Variant)
	}
}

// summarize runs the pointing summary for a freshly generated trajectory.
func (s *Server) summarize(ctx context.Context, req planRequest, traj *trajectory.DroneTrajectory) (*observe.Summary, error) {
	if len(req.Telescopes) == 0 && !req.IncludeBoresight {
		return nil, nil
	}
	sum, err := s.pool.Summarize(ctx, s.site, observe.Request{
		Trajectories: map[string]*trajectory.DroneTrajectory{"pass": traj},
		Telescopes:   req.Telescopes,
		Boresight:    req.IncludeBoresight,
	})
	if err != nil {
		return nil, err
	}
	metrics.ObservePairs(len(sum.Pointings))
	return sum, nil
}

func (s *Server) handlePlan(w http.ResponseWriter, r *http.Request) {
	var req planRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body: "+err.Error())
		return
	}

	traj, err := s.buildTrajectory(req)
	if err != nil {
		writeError(w, err)
		return
	}
	metrics.TrajectoryGenerated(req.Variant)

	resp := planResponse{
		Variant: req.Variant,
		Trajectory: trajectoryPayload{
			ENU:         traj.ENU,
			Yaw:         traj.Yaw,
			Pitch:       traj.Pitch,
			Geodetic:    traj.Geodetic,
			ArcCenter:   traj.ArcCenter,
			POI:         traj.POI,
			CurveRadius: traj.CurveRadius,
		},
	}

	sum, err := s.summarize(r.Context(), req, traj)
	if err != nil {
		writeError(w, err)
		return
	}
	if sum != nil {
		resp.Pointings = sum.Pointings
		resp.Boresight = sum.Boresight
	}

	writeJSON(w, http.StatusOK, resp)
}

// exportRequest combines plan parameters with mission export options.
type exportRequest struct {
	planRequest

	MoveSpeed       float64 `json:"move_speed_ms"`
	ScanSpeed       float64 `json:"scan_speed_ms"`
	Repeat          int     `json:"repeat"`
	SafetyDirection string  `json:"safety_direction,omitempty"`
	Fence           bool    `json:"fence"`
	AddRTH          bool    `json:"add_rth"`
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	format := r.PathValue("format")

	var req exportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body: "+err.Error())
		return
	}

	traj, err := s.buildTrajectory(req.planRequest)
	if err != nil {
		writeError(w, err)
		return
	}
	metrics.TrajectoryGenerated(req.Variant)

	opts := mission.Options{
		MoveSpeed:       req.MoveSpeed,
		ScanSpeed:       req.ScanSpeed,
		Repeat:          req.Repeat,
		SafetyDirection: req.SafetyDirection,
		Geofence:        s.geofence,
		Fence:           req.Fence,
		AddRTH:          req.AddRTH,
	}

	var buf bytes.Buffer
	var contentType, filename string
	switch format {
	case "qgc":
		plan, err := mission.ExportQGC(traj, opts, s.logger)
		if err != nil {
			writeError(w, err)
			return
		}
		if err := mission.WriteQGC(&buf, plan); err != nil {
			writeError(w, err)
			return
		}
		contentType, filename = "application/json", "mission.plan"
	case "litchi":
		if err := mission.ExportLitchi(&buf, traj, opts, s.logger); err != nil {
			writeError(w, err)
			return
		}
		contentType, filename = "text/csv", "mission.csv"
	case "text":
		if err := mission.ExportMAVText(&buf, traj, opts, s.logger); err != nil {
			writeError(w, err)
			return
		}
		contentType, filename = "text/plain", "mission.waypoints"
	default:
		writeBadRequest(w, fmt.Sprintf("unknown export format %q (want qgc, litchi or text)", format))
		return
	}
	metrics.MissionExported(format)

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}
