package mission

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/AleNovelli/drone-flightplans/internal/geofence"
	"github.com/AleNovelli/drone-flightplans/internal/trajectory"
)

// QGCItem is one mission item of a QGroundControl plan.
// https://docs.qgroundcontrol.com/master/en/qgc-dev-guide/file_formats/plan.html
type QGCItem struct {
	DoJumpID            int       `json:"doJumpId"`
	Command             int       `json:"command"`
	Frame               int       `json:"frame"`
	Params              []float64 `json:"params"`
	AutoContinue        bool      `json:"autoContinue"`
	Type                string    `json:"type"`
	AMSLAltAboveTerrain *float64  `json:"AMSLAltAboveTerrain"`
	Altitude            *float64  `json:"Altitude,omitempty"`
	AltitudeMode        *int      `json:"AltitudeMode,omitempty"`
}

// QGCMission is the mission block of a plan file.
type QGCMission struct {
	CruiseSpeed         float64    `json:"cruiseSpeed"`
	FirmwareType        int        `json:"firmwareType"`
	Items               []QGCItem  `json:"items"`
	PlannedHomePosition [3]float64 `json:"plannedHomePosition"`
	VehicleType         int        `json:"vehicleType"`
	Version             int        `json:"version"`
}

// QGCRallyPoints is the (always empty) rally point block.
type QGCRallyPoints struct {
	Points  []any `json:"points"`
	Version int   `json:"version"`
}

// QGCPlan is a complete QGroundControl .plan document.
type QGCPlan struct {
	FileType      string         `json:"fileType"`
	GeoFence      geofence.Fence `json:"geoFence"`
	GroundStation string         `json:"groundStation"`
	Mission       QGCMission     `json:"mission"`
	RallyPoints   QGCRallyPoints `json:"rallyPoints"`
	Version       int            `json:"version"`
}

// planBuilder accumulates mission items, numbering them as QGC expects.
type planBuilder struct {
	items []QGCItem
}

func (b *planBuilder) add(item QGCItem) {
	item.DoJumpID = len(b.items) + 1
	b.items = append(b.items, item)
}

func (b *planBuilder) waypoint(lat, lon, alt float64) {
	altMode := 1
	b.add(QGCItem{
		Command:      cmdWaypoint,
		Frame:        frameGlobalRelAlt,
		Params:       []float64{0, 0, 0, 0, lat, lon, alt},
		AutoContinue: true,
		Type:         "SimpleItem",
		Altitude:     &alt,
		AltitudeMode: &altMode,
	})
}

func (b *planBuilder) roi(lat, lon, alt float64) {
	altMode := 1
	b.add(QGCItem{
		Command:      cmdROI,
		Frame:        frameGlobalRelAlt,
		Params:       []float64{0, 0, 0, 0, lat, lon, alt},
		AutoContinue: true,
		Type:         "SimpleItem",
		Altitude:     &alt,
		AltitudeMode: &altMode,
	})
}

func (b *planBuilder) speed(speed float64) {
	b.add(QGCItem{
		Command:      cmdSpeed,
		Frame:        frameMission,
		Params:       []float64{1, speed, -1, 0, 0, 0, 0},
		AutoContinue: true,
		Type:         "SimpleItem",
	})
}

func (b *planBuilder) rth() {
	b.add(QGCItem{
		Command:      cmdRTH,
		Frame:        frameMission,
		Params:       []float64{0, 0, 0, 0, 0, 0, 0},
		AutoContinue: true,
		Type:         "SimpleItem",
	})
}

// ExportQGC builds a QGroundControl plan for the trajectory: ROI on the POI,
// travel speed, the safety corridor, then the arc at scan speed, optionally
// finishing with a return to launch. Arc altitudes are relative to the
// landing site; the landing site itself becomes the planned home position.
func ExportQGC(traj *trajectory.DroneTrajectory, opts Options, logger *slog.Logger) (*QGCPlan, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := checkTrajectory(traj); err != nil {
		return nil, err
	}
	safety, err := opts.safetyPoints(logger)
	if err != nil {
		return nil, err
	}

	home := *traj.LandingSite
	var b planBuilder

	b.roi(traj.POI.Lat, traj.POI.Lon, traj.POI.Alt-home.Alt)
	b.speed(opts.MoveSpeed)
	for _, sp := range safety {
		b.waypoint(sp.Lat, sp.Lon, sp.Alt)
	}

	rows := expandArc(traj, opts.repeat())
	b.waypoint(rows[0].Geo.Lat, rows[0].Geo.Lon, rows[0].Geo.Alt-home.Alt)
	b.speed(opts.ScanSpeed)
	for _, row := range rows[1:] {
		b.waypoint(row.Geo.Lat, row.Geo.Lon, row.Geo.Alt-home.Alt)
	}
	if opts.AddRTH {
		b.rth()
	}

	fence := geofence.EmptyFence()
	if opts.Fence {
		if opts.Geofence == nil {
			return nil, fmt.Errorf("%w: fence requested without geofence data", geofence.ErrConfig)
		}
		fence = opts.Geofence.Fence()
	}

	plan := &QGCPlan{
		FileType:      "Plan",
		GeoFence:      fence,
		GroundStation: "QGroundControl",
		Mission: QGCMission{
			CruiseSpeed:         0,
			FirmwareType:        12,
			Items:               b.items,
			PlannedHomePosition: [3]float64{home.Lat, home.Lon, home.Alt},
			VehicleType:         2,
			Version:             2,
		},
		RallyPoints: QGCRallyPoints{Points: []any{}, Version: 2},
		Version:     1,
	}

	logger.Info("QGC plan built", "items", len(b.items), "repeat", opts.repeat(), "rth", opts.AddRTH)
	return plan, nil
}

// WriteQGC serializes a plan as indented JSON.
func WriteQGC(w io.Writer, plan *QGCPlan) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "    ")
	return enc.Encode(plan)
}
