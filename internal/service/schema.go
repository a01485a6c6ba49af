package service

import "wayfarer/internal/ai"

func stringSchema() *ai.Schema { return &ai.Schema{Type: "string"} }

func arrayOf(items *ai.Schema) *ai.Schema { return &ai.Schema{Type: "array", Items: items} }

// itinerarySchema mirrors types.ItineraryResponse without image_urls, which
// are produced locally.
var itinerarySchema = &ai.Schema{
	Type:     "object",
	Required: []string{"home_city", "destination_city", "num_days", "days"},
	Properties: map[string]*ai.Schema{
		"home_city":        stringSchema(),
		"destination_city": stringSchema(),
		"num_days":         {Type: "integer"},
		"days": arrayOf(&ai.Schema{
			Type:     "object",
			Required: []string{"day", "summary", "entities"},
			Properties: map[string]*ai.Schema{
				"day":        {Type: "integer"},
				"summary":    stringSchema(),
				"route_info": stringSchema(),
				"entities": arrayOf(&ai.Schema{
					Type:     "object",
					Required: []string{"name", "speciality", "places_to_visit", "photo_prompts"},
					Properties: map[string]*ai.Schema{
						"name":       stringSchema(),
						"speciality": stringSchema(),
						"places_to_visit": arrayOf(&ai.Schema{
							Type:     "object",
							Required: []string{"name", "description"},
							Properties: map[string]*ai.Schema{
								"name":        stringSchema(),
								"description": stringSchema(),
							},
						}),
						"photo_prompts": arrayOf(stringSchema()),
					},
				}),
			},
		}),
		"overall_tips": arrayOf(stringSchema()),
	},
}
