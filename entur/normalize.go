package entur

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"enturclient.dev/internal/logging"
	"github.com/davecgh/go-spew/spew"
)

const (
	sectionStopPlaces = "stopPlaces"
	sectionQuays      = "quays"
)

type departuresPayload struct {
	StopPlaces []any `json:"stopPlaces"`
	Quays      []any `json:"quays"`
}

// normalizePlaces turns the data object of a departures response into places.
// Stop places come first, then quays, each in response order. Records that
// fail normalization are skipped and reported in rejected.
func normalizePlaces(ctx context.Context, data json.RawMessage) (places []*Place, rejected []error, err error) {
	var decoded departuresPayload
	if err := json.Unmarshal(data, &decoded); err != nil {
		return nil, nil, &RequestError{Kind: FailureProtocol, Err: fmt.Errorf("decoding data: %w", err)}
	}

	logger := logging.FromContext(ctx)
	collect := func(section string, records []any, isPlatform bool) {
		for i, record := range records {
			place, err := placeFromRecord(record, isPlatform)
			if err != nil {
				rejected = append(rejected, &NormalizationError{Section: section, Index: i, Err: err})
				if logger.Enabled(ctx, slog.LevelDebug) {
					logger.Debug("skipping place record",
						slog.String("section", section),
						slog.Int("index", i),
						slog.String("record", spew.Sdump(record)))
				}
				continue
			}
			places = append(places, place)
		}
	}
	collect(sectionStopPlaces, decoded.StopPlaces, false)
	collect(sectionQuays, decoded.Quays, true)

	return places, rejected, nil
}

// placeFromRecord accepts one decoded element of a places section.
func placeFromRecord(record any, isPlatform bool) (*Place, error) {
	switch r := record.(type) {
	case nil:
		return NewPlace(nil, isPlatform)
	case map[string]any:
		return NewPlace(r, isPlatform)
	default:
		return nil, &FieldError{Field: "id", Err: fmt.Errorf("%w: record is a %T, not an object", ErrMissingField, record)}
	}
}

type expansionPayload struct {
	StopPlaces []struct {
		ID    string `json:"id"`
		Quays []struct {
			ID             string            `json:"id"`
			EstimatedCalls []json.RawMessage `json:"estimatedCalls"`
		} `json:"quays"`
	} `json:"stopPlaces"`
}

// discoveredQuays returns the quays of every stop with more than one quay
// that had at least one upcoming call.
func discoveredQuays(data json.RawMessage) ([]string, error) {
	var decoded expansionPayload
	if err := json.Unmarshal(data, &decoded); err != nil {
		return nil, &RequestError{Kind: FailureProtocol, Err: fmt.Errorf("decoding data: %w", err)}
	}

	var quays []string
	for _, stop := range decoded.StopPlaces {
		if len(stop.Quays) <= 1 {
			continue
		}
		for _, quay := range stop.Quays {
			if quay.ID != "" && len(quay.EstimatedCalls) > 0 {
				quays = append(quays, quay.ID)
			}
		}
	}
	return quays, nil
}
