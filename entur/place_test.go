package entur

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlace_StopPlace(t *testing.T) {
	raw := map[string]any{
		"id":             "NSR:StopPlace:548",
		"name":           "Bergen stasjon",
		"estimatedCalls": []any{map[string]any{}, map[string]any{}},
		"latitude":       60.39,
		"longitude":      5.33,
		"publicCode":     "1",
	}
	place, err := NewPlace(raw, false)
	require.NoError(t, err)

	assert.Equal(t, "NSR:StopPlace:548", place.ID())
	assert.False(t, place.IsPlatform())
	assert.Equal(t, "Bergen stasjon", place.Name())
	assert.Len(t, place.EstimatedCalls(), 2)

	_, ok := place.Latitude()
	assert.False(t, ok, "stop places have no latitude")
	_, ok = place.Longitude()
	assert.False(t, ok, "stop places have no longitude")
	_, ok = place.PublicCode()
	assert.False(t, ok, "stop places have no public code")

	assert.Equal(t, raw, place.Raw())
}

func kokstadPlatform(publicCode string) map[string]any {
	return map[string]any{
		"id":             "NSR:Quay:51852",
		"name":           "Kokstad",
		"estimatedCalls": []any{map[string]any{}, map[string]any{}, map[string]any{}},
		"publicCode":     publicCode,
		"latitude":       60.293217,
		"longitude":      5.267429,
	}
}

func TestPlace_Platform(t *testing.T) {
	place, err := NewPlace(kokstadPlatform(""), true)
	require.NoError(t, err)

	assert.True(t, place.IsPlatform())
	assert.Equal(t, "Kokstad Platform 51852", place.Name())
	assert.Len(t, place.EstimatedCalls(), 3)

	lat, ok := place.Latitude()
	require.True(t, ok)
	assert.Equal(t, 60.293217, lat)

	lon, ok := place.Longitude()
	require.True(t, ok)
	assert.Equal(t, 5.267429, lon)

	code, ok := place.PublicCode()
	require.True(t, ok)
	assert.Equal(t, "", code)
}

func TestPlace_PlatformWithPublicCode(t *testing.T) {
	place, err := NewPlace(kokstadPlatform("123"), true)
	require.NoError(t, err)

	assert.Equal(t, "Kokstad Platform 123", place.Name())
	code, ok := place.PublicCode()
	require.True(t, ok)
	assert.Equal(t, "123", code)
}

func TestPlace_PlatformWithoutPublicCodeField(t *testing.T) {
	raw := kokstadPlatform("")
	delete(raw, "publicCode")
	raw["id"] = "NSR:Quay:7"

	place, err := NewPlace(raw, true)
	require.NoError(t, err)
	assert.Equal(t, "Kokstad Platform 7", place.Name())
}

func TestNewPlace_RequiresID(t *testing.T) {
	tests := []struct {
		name string
		raw  map[string]any
	}{
		{"null record", nil},
		{"missing id", map[string]any{"name": "Nowhere"}},
		{"empty id", map[string]any{"id": ""}},
		{"numeric id", map[string]any{"id": 42.0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			place, err := NewPlace(tt.raw, false)
			assert.Nil(t, place)
			assert.ErrorIs(t, err, ErrMissingField)
			assert.Equal(t, FailureNormalization, KindOf(err))
		})
	}
}

func TestPlace_NoCalls(t *testing.T) {
	place, err := NewPlace(map[string]any{"id": "NSR:StopPlace:1", "name": "Empty"}, false)
	require.NoError(t, err)

	assert.Empty(t, place.EstimatedCalls())
	_, ok := place.TransportMode()
	assert.False(t, ok)
}

func TestPlace_TransportModeFromFirstCall(t *testing.T) {
	bus := vossCall()
	bus["serviceJourney"].(map[string]any)["journeyPattern"].(map[string]any)["line"].(map[string]any)["transportMode"] = "bus"
	raw := map[string]any{
		"id":             "NSR:StopPlace:548",
		"name":           "Bergen stasjon",
		"estimatedCalls": []any{vossCall(), bus},
	}
	place, err := NewPlace(raw, false)
	require.NoError(t, err)

	mode, ok := place.TransportMode()
	require.True(t, ok)
	assert.Equal(t, "rail", mode)
}

func TestPlace_CallsKeepResponseOrder(t *testing.T) {
	first := vossCall()
	second := vossCall()
	second["destinationDisplay"] = map[string]any{"frontText": "Myrdal"}
	place, err := NewPlace(map[string]any{
		"id":             "NSR:StopPlace:548",
		"estimatedCalls": []any{first, second},
	}, false)
	require.NoError(t, err)

	calls := place.EstimatedCalls()
	require.Len(t, calls, 2)
	front, err := calls[0].FrontDisplay()
	require.NoError(t, err)
	assert.Equal(t, "45 Voss", front)
	front, err = calls[1].FrontDisplay()
	require.NoError(t, err)
	assert.Equal(t, "45 Myrdal", front)
}

func TestPlace_MalformedCallIsNotFatal(t *testing.T) {
	place, err := NewPlace(map[string]any{
		"id":             "NSR:StopPlace:548",
		"estimatedCalls": []any{"garbage", vossCall()},
	}, false)
	require.NoError(t, err)

	calls := place.EstimatedCalls()
	require.Len(t, calls, 2)
	_, err = calls[0].ExpectedDepartureTime()
	assert.ErrorIs(t, err, ErrMissingField)
	_, err = calls[1].ExpectedDepartureTime()
	assert.NoError(t, err)
}
