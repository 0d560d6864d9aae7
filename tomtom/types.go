package tomtom

// Coord is a WGS84 coordinate pair.
type Coord struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Route summarizes one traffic-aware route between two coordinates.
type Route struct {
	TravelTimeSec          int `json:"travel_time_sec"`
	NoTrafficTravelTimeSec int `json:"no_traffic_travel_time_sec"`
	DistanceMeters         int `json:"distance_m"`
}

// Place is a resolved free-text location.
type Place struct {
	Label string  `json:"label"`
	Lat   float64 `json:"lat"`
	Lon   float64 `json:"lon"`
}

// BBox restricts geocoding candidates to a bounding box.
type BBox struct {
	TopLeft     Coord
	BottomRight Coord
}

// GeocodeOptions tune free-text search. Bias ranks candidates near a point;
// BBox excludes candidates outside the box entirely.
type GeocodeOptions struct {
	Bias *Coord
	BBox *BBox
}

// Wire shapes. Only the fields the dashboard consumes are decoded.

type routeResponse struct {
	Routes []struct {
		Summary struct {
			TravelTimeInSeconds          int `json:"travelTimeInSeconds"`
			NoTrafficTravelTimeInSeconds int `json:"noTrafficTravelTimeInSeconds"`
			LengthInMeters               int `json:"lengthInMeters"`
		} `json:"summary"`
	} `json:"routes"`
}

type searchResponse struct {
	Results []struct {
		Address struct {
			FreeformAddress string `json:"freeformAddress"`
		} `json:"address"`
		Position struct {
			Lat float64 `json:"lat"`
			Lon float64 `json:"lon"`
		} `json:"position"`
	} `json:"results"`
}
