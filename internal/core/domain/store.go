package domain

// Store is a physical pickup location from the store directory. The
// inventory id links the store to its store-scoped inventory list on the
// commerce API; stores without one cannot serve pickup.
type Store struct {
	ID          string  `json:"id"`
	InventoryID string  `json:"inventory_id,omitempty"`
	Name        string  `json:"name"`
	Address1    string  `json:"address1,omitempty"`
	City        string  `json:"city,omitempty"`
	StateCode   string  `json:"state_code,omitempty"`
	PostalCode  string  `json:"postal_code,omitempty"`
	CountryCode string  `json:"country_code,omitempty"`
	Phone       string  `json:"phone,omitempty"`
	Latitude    float64 `json:"latitude,omitempty"`
	Longitude   float64 `json:"longitude,omitempty"`

	// DistanceKM is populated by proximity searches.
	DistanceKM float64 `json:"distance_km,omitempty"`
}
