// README: Travel-options normalizer; recovers JSON from search output and reshapes it into modes.
package normalize

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"wayfarer/internal/logger"
	"wayfarer/internal/types"
)

// ErrInvalidShape is returned when recovered output cannot be brought into the
// response shape by backfilling alone.
var ErrInvalidShape = errors.New("travel options: invalid response shape")

// Normalizer turns free-form provider text into a TravelOptionsResponse.
type Normalizer struct {
	option   *gojsonschema.Schema
	response *gojsonschema.Schema
	log      logger.Logger
}

// New compiles the validation schemas.
func New(log logger.Logger) (*Normalizer, error) {
	if log == nil {
		log = logger.NewNop()
	}
	option, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(optionSchema))
	if err != nil {
		return nil, fmt.Errorf("compile option schema: %w", err)
	}
	response, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(responseSchema))
	if err != nil {
		return nil, fmt.Errorf("compile response schema: %w", err)
	}
	return &Normalizer{option: option, response: response, log: log}, nil
}

// Normalize extracts, backfills, reshapes and validates raw provider text.
// Only an unrecoverable structural mismatch is returned as an error.
func (n *Normalizer) Normalize(raw, origin, destination string) (types.TravelOptionsResponse, error) {
	doc, ok := extractObject(raw)
	if !ok {
		n.log.Warn("no JSON object in travel options output; using defaults", logger.Fields{
			"origin":      origin,
			"destination": destination,
			"raw_len":     len(raw),
		})
		doc = defaultDocument(origin, destination)
	}
	backfill(doc, origin, destination)

	shaped, err := n.reshape(doc)
	if err != nil {
		return types.TravelOptionsResponse{}, err
	}
	if err := validate(n.response, shaped); err != nil {
		return types.TravelOptionsResponse{}, err
	}

	var out types.TravelOptionsResponse
	if err := convert(shaped, &out); err != nil {
		return types.TravelOptionsResponse{}, fmt.Errorf("%w: %v", ErrInvalidShape, err)
	}
	fillEmpty(&out)
	return out, nil
}

// extractObject parses raw directly, then retries on the span between the
// first '{' and the last '}'. The brace scan is a heuristic: prose containing
// stray braces outside the object defeats it.
func extractObject(raw string) (map[string]any, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, false
	}
	if doc, ok := decodeObject(raw); ok {
		return doc, true
	}
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start == -1 || end <= start {
		return nil, false
	}
	return decodeObject(raw[start : end+1])
}

func decodeObject(s string) (map[string]any, bool) {
	var doc map[string]any
	if err := json.Unmarshal([]byte(s), &doc); err != nil || doc == nil {
		return nil, false
	}
	return doc, true
}

func emptyModes() map[string]any {
	modes := make(map[string]any, len(ModeKeys))
	for _, k := range ModeKeys {
		modes[k] = []any{}
	}
	return modes
}

func defaultDocument(origin, destination string) map[string]any {
	return map[string]any{
		"origin":         origin,
		"destination":    destination,
		"travel_options": emptyModes(),
	}
}

// backfill fills only absent keys; present values, even wrong ones, are kept.
func backfill(doc map[string]any, origin, destination string) {
	if _, ok := doc["origin"]; !ok {
		doc["origin"] = origin
	}
	if _, ok := doc["destination"]; !ok {
		doc["destination"] = destination
	}
	if _, ok := doc["travel_options"]; !ok {
		doc["travel_options"] = emptyModes()
	}
}

// reshape walks ModeKeys in order, keeps options that validate individually,
// and drops modes left with nothing. origin/destination become
// origin_city/destination_city.
func (n *Normalizer) reshape(doc map[string]any) (map[string]any, error) {
	byMode, ok := doc["travel_options"].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: travel_options is %T, want object", ErrInvalidShape, doc["travel_options"])
	}

	modes := make([]any, 0, len(ModeKeys))
	for _, key := range ModeKeys {
		value, present := byMode[key]
		if !present || isEmptyValue(value) {
			continue
		}
		items, ok := value.([]any)
		if !ok {
			return nil, fmt.Errorf("%w: travel_options.%s is %T, want array", ErrInvalidShape, key, value)
		}

		kept := make([]any, 0, len(items))
		for i, item := range items {
			if err := validate(n.option, item); err != nil {
				n.log.Debug("dropping malformed travel option", logger.Fields{
					"mode":  key,
					"index": i,
					"error": err.Error(),
				})
				continue
			}
			kept = append(kept, item)
		}
		if len(kept) == 0 {
			continue
		}
		modes = append(modes, map[string]any{"mode": key, "options": kept})
	}

	return map[string]any{
		"origin_city":      doc["origin"],
		"destination_city": doc["destination"],
		"modes":            modes,
	}, nil
}

// isEmptyValue reports JSON values that carry no options: null, false, 0,
// "" and empty objects or arrays.
func isEmptyValue(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case bool:
		return !t
	case float64:
		return t == 0
	case string:
		return t == ""
	case map[string]any:
		return len(t) == 0
	case []any:
		return len(t) == 0
	}
	return false
}

func validate(schema *gojsonschema.Schema, doc any) error {
	result, err := schema.Validate(gojsonschema.NewGoLoader(doc))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidShape, err)
	}
	if result.Valid() {
		return nil
	}
	msgs := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		msgs = append(msgs, e.String())
	}
	return fmt.Errorf("%w: %s", ErrInvalidShape, strings.Join(msgs, "; "))
}

func convert(doc map[string]any, out *types.TravelOptionsResponse) error {
	b, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, out)
}

func fillEmpty(r *types.TravelOptionsResponse) {
	if r.Modes == nil {
		r.Modes = []types.TravelMode{}
	}
	for i := range r.Modes {
		for j := range r.Modes[i].Options {
			o := &r.Modes[i].Options[j]
			if o.Carriers == nil {
				o.Carriers = []string{}
			}
			if o.AirportsOrStations == nil {
				o.AirportsOrStations = []string{}
			}
			if o.Sources == nil {
				o.Sources = []types.TravelSource{}
			}
		}
	}
}
