package entur

import "time"

// CallSummary condenses one departure for display.
type CallSummary struct {
	DueAt        time.Time `json:"due_at"`
	Realtime     bool      `json:"real_time"`
	Route        string    `json:"route"`
	RouteID      string    `json:"route_id"`
	DelayMinutes int       `json:"delay"`
}

// DepartureSummary is the per-place view consumed by dashboards: where the
// place is, and its next two departures.
type DepartureSummary struct {
	StopID        string       `json:"stop_id"`
	Name          string       `json:"name"`
	Latitude      *float64     `json:"latitude,omitempty"`
	Longitude     *float64     `json:"longitude,omitempty"`
	TransportMode string       `json:"transport_mode,omitempty"`
	Next          *CallSummary `json:"next,omitempty"`
	Following     *CallSummary `json:"following,omitempty"`
}

// Summary builds the departure summary for the place. Only the first two
// calls are read; an unreadable field in either is returned as an error.
func (p *Place) Summary() (DepartureSummary, error) {
	s := DepartureSummary{
		StopID: p.ID(),
		Name:   p.Name(),
	}
	if lat, ok := p.Latitude(); ok {
		s.Latitude = &lat
	}
	if lon, ok := p.Longitude(); ok {
		s.Longitude = &lon
	}
	s.TransportMode, _ = p.TransportMode()

	calls := p.EstimatedCalls()
	if len(calls) > 0 {
		next, err := summarizeCall(calls[0])
		if err != nil {
			return DepartureSummary{}, err
		}
		s.Next = &next
	}
	if len(calls) > 1 {
		following, err := summarizeCall(calls[1])
		if err != nil {
			return DepartureSummary{}, err
		}
		s.Following = &following
	}
	return s, nil
}

func summarizeCall(c EstimatedCall) (CallSummary, error) {
	var (
		cs  CallSummary
		err error
	)
	if cs.DueAt, err = c.ExpectedDepartureTime(); err != nil {
		return CallSummary{}, err
	}
	if cs.Realtime, err = c.IsRealtime(); err != nil {
		return CallSummary{}, err
	}
	if cs.Route, err = c.FrontDisplay(); err != nil {
		return CallSummary{}, err
	}
	if cs.RouteID, err = c.LineID(); err != nil {
		return CallSummary{}, err
	}
	if cs.DelayMinutes, err = c.DelayInMinutes(); err != nil {
		return CallSummary{}, err
	}
	return cs, nil
}
