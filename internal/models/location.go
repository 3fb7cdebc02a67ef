package models

// LocationRecord is a single geolocation sample as it is stored in the location log.
type LocationRecord struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Timestamp string  `json:"timestamp"`
	Source    string  `json:"source,omitempty"`
	City      string  `json:"city,omitempty"`
	Region    string  `json:"region,omitempty"`
	Country   string  `json:"country,omitempty"`
}

// Record sources
const (
	SourceBrowser = "browser"
	SourceIP      = "ip"
	SourceImport  = "import"
)

// Geolocation is the result of an IP lookup. Coordinates are nil when the lookup
// service could not resolve them.
type Geolocation struct {
	IP        string   `json:"ip"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
	City      string   `json:"city,omitempty"`
	Region    string   `json:"region,omitempty"`
	Country   string   `json:"country,omitempty"`
}
