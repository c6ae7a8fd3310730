package entur

import (
	"fmt"
	"strings"
)

// Place is a stop place or a platform (quay) as returned by the journey
// planner. Like EstimatedCall it keeps the raw record and derives fields on
// access.
type Place struct {
	raw        map[string]any
	id         string
	isPlatform bool
}

// NewPlace wraps a raw place record. isPlatform must reflect the response
// section the record came from. The record must carry a non-empty id.
func NewPlace(raw map[string]any, isPlatform bool) (*Place, error) {
	if raw == nil {
		return nil, &FieldError{Field: "id", Err: fmt.Errorf("%w: record is null", ErrMissingField)}
	}
	id, err := lookupString(raw, "id")
	if err != nil {
		return nil, err
	}
	if id == "" {
		return nil, &FieldError{Field: "id", Err: fmt.Errorf("%w: empty", ErrMissingField)}
	}
	return &Place{raw: raw, id: id, isPlatform: isPlatform}, nil
}

// ID is the stop place or quay id, e.g. "NSR:StopPlace:548".
func (p *Place) ID() string {
	return p.id
}

// IsPlatform reports whether the place is a quay.
func (p *Place) IsPlatform() bool {
	return p.isPlatform
}

// Name is the friendly name. Platforms are suffixed with their public code,
// or with the last segment of the id when the code is empty.
func (p *Place) Name() string {
	base, _ := p.raw["name"].(string)
	if !p.isPlatform {
		return base
	}
	if code, ok := p.PublicCode(); ok && code != "" {
		return base + " Platform " + code
	}
	return base + " Platform " + p.id[strings.LastIndex(p.id, ":")+1:]
}

// Latitude is only known for platforms.
func (p *Place) Latitude() (float64, bool) {
	if !p.isPlatform {
		return 0, false
	}
	return lookupFloat(p.raw, "latitude")
}

// Longitude is only known for platforms.
func (p *Place) Longitude() (float64, bool) {
	if !p.isPlatform {
		return 0, false
	}
	return lookupFloat(p.raw, "longitude")
}

// PublicCode is the platform number or letter shown to passengers.
func (p *Place) PublicCode() (string, bool) {
	if !p.isPlatform {
		return "", false
	}
	code, ok := p.raw["publicCode"].(string)
	return code, ok
}

// EstimatedCalls lists upcoming departures, soonest first. Entries that are
// not objects yield calls whose accessors fail.
func (p *Place) EstimatedCalls() []EstimatedCall {
	items, _ := p.raw["estimatedCalls"].([]any)
	calls := make([]EstimatedCall, 0, len(items))
	for _, item := range items {
		obj, _ := item.(map[string]any)
		calls = append(calls, NewEstimatedCall(obj))
	}
	return calls
}

// TransportMode is the mode of the next departure. It is absent when the
// place has no calls.
func (p *Place) TransportMode() (string, bool) {
	calls := p.EstimatedCalls()
	if len(calls) == 0 {
		return "", false
	}
	mode, err := calls[0].TransportMode()
	if err != nil {
		return "", false
	}
	return mode, true
}

// Raw returns the record the place was built from.
func (p *Place) Raw() map[string]any {
	return p.raw
}
