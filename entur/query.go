package entur

import "strings"

// expansionDocument probes each quay for a single call in the next 172100
// seconds (just under two days).
const expansionDocument = `query(
  $stops: [String]!,
  $whitelist: InputWhiteListed,
  $omitNonBoarding: Boolean = true) {
  stopPlaces(ids: $stops) {
    id
    quays(filterByInUse: true) {
      id
      estimatedCalls(
          timeRange: 172100,
          numberOfDepartures: 1,
          whiteListed: $whitelist,
          omitNonBoarding: $omitNonBoarding) {
        destinationDisplay {
          frontText
        }
      }
    }
  }
}
`

const stopPlacesBlock = `
  stopPlaces(ids: $stops) {
    id
    name
    estimatedCalls(
        whiteListed: $whitelist,
        omitNonBoarding: $omitNonBoarding,
        numberOfDepartures: $numberOfDepartures) {
      ...callData
    }
  }
`

const quaysBlock = `
  quays(ids: $quays) {
    id
    name
    publicCode
    latitude
    longitude
    estimatedCalls(
        whiteListed: $whitelist,
        omitNonBoarding: $omitNonBoarding,
        numberOfDepartures: $numberOfDepartures) {
      ...callData
    }
  }
`

const callDataFragment = `
fragment callData on EstimatedCall {
  realtime
  aimedArrivalTime
  aimedDepartureTime
  expectedArrivalTime
  expectedDepartureTime
  destinationDisplay {
    frontText
  }
  serviceJourney {
    journeyPattern {
      line {
        id
        transportMode
        publicCode
      }
    }
  }
}
`

// Request is one GraphQL document with its variables.
type Request struct {
	Kind      string         `json:"-"`
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

// Request kinds, used for logging and metrics labels.
const (
	KindExpansion  = "expansion"
	KindDepartures = "departures"
)

// QueryOptions are the filters shared by both request kinds.
type QueryOptions struct {
	NumberOfDepartures int
	OmitNonBoarding    bool
	LineWhitelist      []string
}

func (o QueryOptions) variables() map[string]any {
	vars := map[string]any{
		"omitNonBoarding": o.OmitNonBoarding,
	}
	if len(o.LineWhitelist) > 0 {
		vars["whitelist"] = map[string]any{"lines": o.LineWhitelist}
	}
	return vars
}

// BuildExpansionQuery builds the request that discovers the in-use quays of
// each stop. It returns ErrEmptyQuery when stops is empty.
func BuildExpansionQuery(stops []string, opts QueryOptions) (Request, error) {
	if len(stops) == 0 {
		return Request{}, ErrEmptyQuery
	}
	vars := opts.variables()
	vars["stops"] = stops
	return Request{Kind: KindExpansion, Query: expansionDocument, Variables: vars}, nil
}

// BuildDeparturesQuery builds the request for the next departures of every
// stop and quay. Blocks for an empty id list are left out of the document,
// together with their variable declaration.
func BuildDeparturesQuery(stops, quays []string, opts QueryOptions) (Request, error) {
	if len(stops) == 0 && len(quays) == 0 {
		return Request{}, ErrEmptyQuery
	}

	vars := opts.variables()
	vars["numberOfDepartures"] = opts.NumberOfDepartures

	var b strings.Builder
	b.WriteString("query(\n")
	if len(stops) > 0 {
		b.WriteString("  $stops: [String],\n")
		vars["stops"] = stops
	}
	if len(quays) > 0 {
		b.WriteString("  $quays: [String],\n")
		vars["quays"] = quays
	}
	b.WriteString("  $whitelist: InputWhiteListed,\n")
	b.WriteString("  $numberOfDepartures: Int = 2,\n")
	b.WriteString("  $omitNonBoarding: Boolean = true) {")
	if len(stops) > 0 {
		b.WriteString(stopPlacesBlock)
	}
	if len(quays) > 0 {
		b.WriteString(quaysBlock)
	}
	b.WriteString("}\n")
	b.WriteString(callDataFragment)

	return Request{Kind: KindDepartures, Query: b.String(), Variables: vars}, nil
}
