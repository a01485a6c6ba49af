package normalize

// ModeKeys is the fixed, ordered set of travel modes read from provider output.
// Keys outside this list are ignored.
var ModeKeys = []string{"train", "bus", "car_taxi", "car_transport", "part_load_transport", "flight"}

var optionalString = map[string]any{"type": []string{"string", "null"}}

var stringList = map[string]any{
	"type":  "array",
	"items": map[string]any{"type": "string"},
}

// optionSchema describes one provider travel option. Unknown keys are allowed
// and dropped when decoding.
var optionSchema = map[string]any{
	"type":     "object",
	"required": []string{"route_name"},
	"properties": map[string]any{
		"route_name":           map[string]any{"type": "string", "minLength": 1},
		"carriers":             stringList,
		"duration":             optionalString,
		"price":                optionalString,
		"frequency":            optionalString,
		"airports_or_stations": stringList,
		"transfers":            optionalString,
		"booking_tips":         optionalString,
		"sources": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"title": optionalString,
					"url":   optionalString,
					"date":  optionalString,
				},
			},
		},
	},
}

func modeEnum() []any {
	out := make([]any, len(ModeKeys))
	for i, k := range ModeKeys {
		out[i] = k
	}
	return out
}

// responseSchema is the caller-facing TravelOptionsResponse shape.
var responseSchema = map[string]any{
	"type":     "object",
	"required": []string{"origin_city", "destination_city", "modes"},
	"properties": map[string]any{
		"origin_city":      map[string]any{"type": "string"},
		"destination_city": map[string]any{"type": "string"},
		"modes": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type":     "object",
				"required": []string{"mode", "options"},
				"properties": map[string]any{
					"mode":    map[string]any{"type": "string", "enum": modeEnum()},
					"options": map[string]any{"type": "array", "minItems": 1, "items": optionSchema},
				},
			},
		},
	},
}
