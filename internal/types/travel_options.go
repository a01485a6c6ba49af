package types

type TravelOptionsRequest struct {
	OriginCity      string `json:"origin_city"`
	DestinationCity string `json:"destination_city"`
	// RecencyFilter is passed to the search provider as-is: hour, day, week, month or year.
	RecencyFilter string `json:"recency_filter,omitempty"`
}

type TravelSource struct {
	Title string `json:"title,omitempty"`
	URL   string `json:"url,omitempty"`
	Date  string `json:"date,omitempty"`
}

type TravelOption struct {
	RouteName          string         `json:"route_name"`
	Carriers           []string       `json:"carriers"`
	Duration           string         `json:"duration,omitempty"`
	Price              string         `json:"price,omitempty"`
	Frequency          string         `json:"frequency,omitempty"`
	AirportsOrStations []string       `json:"airports_or_stations"`
	Transfers          string         `json:"transfers,omitempty"`
	BookingTips        string         `json:"booking_tips,omitempty"`
	Sources            []TravelSource `json:"sources"`
}

type TravelMode struct {
	Mode    string         `json:"mode"`
	Options []TravelOption `json:"options"`
}

type TravelOptionsResponse struct {
	OriginCity      string       `json:"origin_city"`
	DestinationCity string       `json:"destination_city"`
	Modes           []TravelMode `json:"modes"`
}
