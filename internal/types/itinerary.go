// README: Request/response shapes shared by the orchestration layer and HTTP handlers.
package types

// ItineraryRequest.NumDays is nil when the client omitted num_days.
type ItineraryRequest struct {
	HomeCity        string   `json:"home_city"`
	DestinationCity string   `json:"destination_city"`
	NumDays         *int     `json:"num_days,omitempty"`
	Interests       []string `json:"interests"`
}

// Days returns the requested day count, or 0 when unset.
func (r ItineraryRequest) Days() int {
	if r.NumDays == nil {
		return 0
	}
	return *r.NumDays
}

// DaysOf returns a pointer suitable for ItineraryRequest.NumDays.
func DaysOf(n int) *int { return &n }

type ItineraryPlace struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type ItineraryEntity struct {
	Name          string           `json:"name"`
	Speciality    string           `json:"speciality"`
	PlacesToVisit []ItineraryPlace `json:"places_to_visit"`
	PhotoPrompts  []string         `json:"photo_prompts"`
	// ImageURLs is filled after image fan-out; never longer than the consumed prompts.
	ImageURLs []string `json:"image_urls"`
}

type ItineraryDay struct {
	Day       int               `json:"day"`
	Summary   string            `json:"summary"`
	Entities  []ItineraryEntity `json:"entities"`
	RouteInfo *string           `json:"route_info,omitempty"`
}

// ItineraryResponse passes through however many days the provider produced.
type ItineraryResponse struct {
	HomeCity        string         `json:"home_city"`
	DestinationCity string         `json:"destination_city"`
	NumDays         int            `json:"num_days"`
	Days            []ItineraryDay `json:"days"`
	OverallTips     []string       `json:"overall_tips"`
}

// EnsureSlices replaces nil slices with empty ones so they encode as [].
func (r *ItineraryResponse) EnsureSlices() {
	if r.Days == nil {
		r.Days = []ItineraryDay{}
	}
	if r.OverallTips == nil {
		r.OverallTips = []string{}
	}
	for i := range r.Days {
		d := &r.Days[i]
		if d.Entities == nil {
			d.Entities = []ItineraryEntity{}
		}
		for j := range d.Entities {
			e := &d.Entities[j]
			if e.PlacesToVisit == nil {
				e.PlacesToVisit = []ItineraryPlace{}
			}
			if e.PhotoPrompts == nil {
				e.PhotoPrompts = []string{}
			}
			if e.ImageURLs == nil {
				e.ImageURLs = []string{}
			}
		}
	}
}
