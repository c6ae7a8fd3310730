package entur

import (
	"fmt"
	"time"

	"github.com/OneBusAway/go-gtfs"
)

// EstimatedCall is one scheduled or predicted departure. It is a read-only
// view over the raw response record; every accessor derives its value on
// demand so a malformed field fails only when it is read.
type EstimatedCall struct {
	raw map[string]any
}

// NewEstimatedCall wraps a raw call record.
func NewEstimatedCall(raw map[string]any) EstimatedCall {
	return EstimatedCall{raw: raw}
}

// Raw returns the record the call was built from.
func (c EstimatedCall) Raw() map[string]any {
	return c.raw
}

// IsRealtime reports whether the call is backed by realtime data.
func (c EstimatedCall) IsRealtime() (bool, error) {
	return lookupBool(c.raw, "realtime")
}

// AimedArrivalTime is the timetabled arrival.
func (c EstimatedCall) AimedArrivalTime() (time.Time, error) {
	return lookupTime(c.raw, "aimedArrivalTime")
}

// ExpectedArrivalTime is the arrival predicted by realtime reports.
func (c EstimatedCall) ExpectedArrivalTime() (time.Time, error) {
	return lookupTime(c.raw, "expectedArrivalTime")
}

// AimedDepartureTime is the timetabled departure.
func (c EstimatedCall) AimedDepartureTime() (time.Time, error) {
	return lookupTime(c.raw, "aimedDepartureTime")
}

// ExpectedDepartureTime is the departure predicted by realtime reports.
func (c EstimatedCall) ExpectedDepartureTime() (time.Time, error) {
	return lookupTime(c.raw, "expectedDepartureTime")
}

// Delay is the expected minus the aimed departure time.
func (c EstimatedCall) Delay() (time.Duration, error) {
	expected, err := c.ExpectedDepartureTime()
	if err != nil {
		return 0, err
	}
	aimed, err := c.AimedDepartureTime()
	if err != nil {
		return 0, err
	}
	return expected.Sub(aimed), nil
}

// DelayInMinutes is Delay in whole minutes, truncated toward zero.
func (c EstimatedCall) DelayInMinutes() (int, error) {
	d, err := c.Delay()
	if err != nil {
		return 0, err
	}
	return int(d / time.Minute), nil
}

// TransportMode is the line's mode of transport, e.g. "bus" or "rail".
func (c EstimatedCall) TransportMode() (string, error) {
	return lookupString(c.raw, "serviceJourney", "journeyPattern", "line", "transportMode")
}

// LineID is the id of the line serving the call.
func (c EstimatedCall) LineID() (string, error) {
	return lookupString(c.raw, "serviceJourney", "journeyPattern", "line", "id")
}

// LinePublicCode is the line number shown to passengers.
func (c EstimatedCall) LinePublicCode() (string, error) {
	return lookupString(c.raw, "serviceJourney", "journeyPattern", "line", "publicCode")
}

// DestinationFrontText is the destination shown on the vehicle.
func (c EstimatedCall) DestinationFrontText() (string, error) {
	return lookupString(c.raw, "destinationDisplay", "frontText")
}

// FrontDisplay is the text shown in front of the vehicle, e.g. "45 Voss".
func (c EstimatedCall) FrontDisplay() (string, error) {
	code, err := c.LinePublicCode()
	if err != nil {
		return "", err
	}
	front, err := c.DestinationFrontText()
	if err != nil {
		return "", err
	}
	return code + " " + front, nil
}

// GTFS route_type values. Entur modes without a GTFS base type map to the
// closest one.
var routeTypes = map[string]gtfs.RouteType{
	"tram":       gtfs.RouteType_Tram,
	"metro":      gtfs.RouteType_Subway,
	"rail":       gtfs.RouteType_Rail,
	"bus":        gtfs.RouteType_Bus,
	"coach":      gtfs.RouteType_Bus,
	"water":      gtfs.RouteType_Ferry,
	"cableway":   gtfs.RouteType_AerialLift,
	"lift":       gtfs.RouteType_AerialLift,
	"funicular":  gtfs.RouteType_Funicular,
	"trolleybus": gtfs.RouteType_TrolleyBus,
	"monorail":   gtfs.RouteType_Monorail,
}

// RouteType maps the call's transport mode to a GTFS route type.
func (c EstimatedCall) RouteType() (gtfs.RouteType, error) {
	mode, err := c.TransportMode()
	if err != nil {
		return 0, err
	}
	rt, ok := routeTypes[mode]
	if !ok {
		return 0, &FieldError{
			Field: "serviceJourney.journeyPattern.line.transportMode",
			Err:   fmt.Errorf("no GTFS route type for mode %q", mode),
		}
	}
	return rt, nil
}
