package normalize

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wayfarer/internal/logger"
	"wayfarer/internal/types"
)

func newNormalizer(t *testing.T) *Normalizer {
	t.Helper()
	n, err := New(logger.NewTest(t))
	require.NoError(t, err)
	return n
}

func modeNames(r types.TravelOptionsResponse) []string {
	out := make([]string, 0, len(r.Modes))
	for _, m := range r.Modes {
		out = append(out, m.Mode)
	}
	return out
}

// TestNormalize_ParisLyon drops the empty bus mode and keeps train.
func TestNormalize_ParisLyon(t *testing.T) {
	n := newNormalizer(t)

	out, err := n.Normalize(`{"travel_options": {"train": [{"route_name": "TGV"}], "bus": []}}`, "Paris", "Lyon")
	require.NoError(t, err)

	assert.Equal(t, "Paris", out.OriginCity)
	assert.Equal(t, "Lyon", out.DestinationCity)
	require.Len(t, out.Modes, 1)
	assert.Equal(t, "train", out.Modes[0].Mode)
	require.Len(t, out.Modes[0].Options, 1)
	assert.Equal(t, "TGV", out.Modes[0].Options[0].RouteName)
	assert.NotNil(t, out.Modes[0].Options[0].Carriers)
	assert.NotNil(t, out.Modes[0].Options[0].Sources)
}

func TestNormalize_RoundTripWellFormed(t *testing.T) {
	n := newNormalizer(t)
	raw := `{
		"origin": "Delhi",
		"destination": "Jaipur",
		"travel_options": {
			"train": [{"route_name": "Shatabdi", "carriers": ["IR"], "duration": "4h30m", "price": "INR 800-1500",
				"airports_or_stations": ["NDLS", "JP"], "sources": [{"title": "IRCTC", "url": "https://irctc.co.in"}]}],
			"bus": [],
			"car_taxi": [{"route_name": "NH48", "duration": "5h"}],
			"car_transport": [],
			"part_load_transport": [],
			"flight": [{"route_name": "DEL-JAI", "carriers": ["6E", "AI"]}]
		}
	}`

	out, err := n.Normalize(raw, "ignored", "ignored")
	require.NoError(t, err)

	assert.Equal(t, "Delhi", out.OriginCity)
	assert.Equal(t, "Jaipur", out.DestinationCity)
	assert.Equal(t, []string{"train", "car_taxi", "flight"}, modeNames(out))
	for _, m := range out.Modes {
		assert.NotEmpty(t, m.Options)
	}
	train := out.Modes[0].Options[0]
	assert.Equal(t, []string{"IR"}, train.Carriers)
	assert.Equal(t, "INR 800-1500", train.Price)
	assert.Equal(t, []string{"NDLS", "JP"}, train.AirportsOrStations)
	require.Len(t, train.Sources, 1)
	assert.Equal(t, "https://irctc.co.in", train.Sources[0].URL)
}

// TestNormalize_FixedModeOrder ignores provider key order and unknown modes.
func TestNormalize_FixedModeOrder(t *testing.T) {
	n := newNormalizer(t)
	raw := `{"travel_options": {
		"flight": [{"route_name": "AF"}],
		"ferry": [{"route_name": "Boat"}],
		"train": [{"route_name": "TER"}]
	}}`

	out, err := n.Normalize(raw, "A", "B")
	require.NoError(t, err)
	assert.Equal(t, []string{"train", "flight"}, modeNames(out))
}

func TestNormalize_ProseWrappedJSON(t *testing.T) {
	n := newNormalizer(t)
	raw := "Here you go: {\"origin\": \"Rome\", \"travel_options\": {\"bus\": [{\"route_name\": \"FlixBus 123\"}]}} Thanks!"

	out, err := n.Normalize(raw, "Roma", "Naples")
	require.NoError(t, err)
	assert.Equal(t, "Rome", out.OriginCity)
	assert.Equal(t, "Naples", out.DestinationCity)
	assert.Equal(t, []string{"bus"}, modeNames(out))
}

func TestNormalize_MarkdownFencedJSON(t *testing.T) {
	n := newNormalizer(t)
	raw := "```json\n{\"travel_options\": {\"train\": [{\"route_name\": \"ICE\"}]}}\n```"

	out, err := n.Normalize(raw, "Berlin", "Munich")
	require.NoError(t, err)
	assert.Equal(t, []string{"train"}, modeNames(out))
}

func TestNormalize_NoJSONReturnsDefault(t *testing.T) {
	n := newNormalizer(t)

	for _, raw := range []string{"", "   ", "Sorry, I could not find anything.", "} backwards {", "[1,2,3]", "{broken"} {
		out, err := n.Normalize(raw, "Oslo", "Bergen")
		require.NoError(t, err, raw)
		assert.Equal(t, "Oslo", out.OriginCity, raw)
		assert.Equal(t, "Bergen", out.DestinationCity, raw)
		assert.NotNil(t, out.Modes, raw)
		assert.Empty(t, out.Modes, raw)
	}
}

func TestNormalize_BackfillsOnlyMissingKeys(t *testing.T) {
	n := newNormalizer(t)

	out, err := n.Normalize(`{"destination": "Provider City"}`, "Req Origin", "Req Dest")
	require.NoError(t, err)
	assert.Equal(t, "Req Origin", out.OriginCity)
	assert.Equal(t, "Provider City", out.DestinationCity)
	assert.Empty(t, out.Modes)
}

// TestNormalize_RenameOverwrites keeps origin over a pre-existing origin_city.
func TestNormalize_RenameOverwrites(t *testing.T) {
	n := newNormalizer(t)

	out, err := n.Normalize(`{"origin": "From Origin", "origin_city": "Stale"}`, "x", "y")
	require.NoError(t, err)
	assert.Equal(t, "From Origin", out.OriginCity)
}

func TestNormalize_MalformedOptionsDroppedPerItem(t *testing.T) {
	n := newNormalizer(t)
	raw := `{"travel_options": {
		"train": [
			{"route_name": "Good"},
			"just a string",
			{"carriers": ["no route name"]},
			{"route_name": ""},
			{"route_name": "Bad price", "price": 40},
			{"route_name": "Extra keys", "notes": {"a": 1}}
		],
		"bus": [{"route_name": 7}]
	}}`

	out, err := n.Normalize(raw, "A", "B")
	require.NoError(t, err)
	require.Equal(t, []string{"train"}, modeNames(out))
	opts := out.Modes[0].Options
	require.Len(t, opts, 2)
	assert.Equal(t, "Good", opts[0].RouteName)
	assert.Equal(t, "Extra keys", opts[1].RouteName)
}

func TestNormalize_NullOptionalFields(t *testing.T) {
	n := newNormalizer(t)

	out, err := n.Normalize(`{"travel_options": {"flight": [{"route_name": "LH", "price": null, "sources": [{"title": null}]}]}}`, "A", "B")
	require.NoError(t, err)
	require.Len(t, out.Modes, 1)
	assert.Empty(t, out.Modes[0].Options[0].Price)
}

func TestNormalize_StructuralMismatchIsError(t *testing.T) {
	n := newNormalizer(t)

	cases := []string{
		`{"travel_options": ["train"]}`,
		`{"travel_options": "none"}`,
		`{"travel_options": {"train": {"route_name": "x"}}}`,
		`{"origin": 42}`,
		`{"destination": null}`,
	}
	for _, raw := range cases {
		_, err := n.Normalize(raw, "A", "B")
		require.Error(t, err, raw)
		assert.True(t, errors.Is(err, ErrInvalidShape), raw)
	}
}

func TestNormalize_NullModeSkipped(t *testing.T) {
	n := newNormalizer(t)

	out, err := n.Normalize(`{"travel_options": {"train": null, "bus": [{"route_name": "X1"}]}}`, "A", "B")
	require.NoError(t, err)
	assert.Equal(t, []string{"bus"}, modeNames(out))
}

// TestNormalize_EmptyNonListModesSkipped keeps valid modes next to empty junk values.
func TestNormalize_EmptyNonListModesSkipped(t *testing.T) {
	n := newNormalizer(t)

	for _, empty := range []string{`{}`, `""`, `false`, `0`} {
		raw := `{"travel_options": {"train": [{"route_name": "TGV"}], "bus": ` + empty + `}}`
		out, err := n.Normalize(raw, "Paris", "Lyon")
		require.NoError(t, err, raw)
		require.Equal(t, []string{"train"}, modeNames(out), raw)
		assert.Equal(t, "TGV", out.Modes[0].Options[0].RouteName, raw)
	}

	for _, filled := range []string{`"daily coaches"`, `true`, `3`} {
		raw := `{"travel_options": {"train": [{"route_name": "TGV"}], "bus": ` + filled + `}}`
		_, err := n.Normalize(raw, "Paris", "Lyon")
		assert.ErrorIs(t, err, ErrInvalidShape, raw)
	}
}

func TestExtractObject(t *testing.T) {
	doc, ok := extractObject(`noise {"a": {"b": 1}} more noise`)
	require.True(t, ok)
	assert.Contains(t, doc, "a")

	_, ok = extractObject("no braces here")
	assert.False(t, ok)

	_, ok = extractObject("null")
	assert.False(t, ok)

	// Stray braces in prose defeat the heuristic.
	_, ok = extractObject(`see {note} then {"a": 1}`)
	assert.False(t, ok)
}
