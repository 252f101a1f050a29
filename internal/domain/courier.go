package domain

// Courier is a local delivery partner serving one or more cities.
// CityIDs may reference cities that were later deleted; lookups must
// tolerate orphan IDs.
type Courier struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	Phone     string `json:"phone"`
	CityIDs   []int  `json:"city_ids"`
	Active    bool   `json:"active"`
	CreatedAt string `json:"created_at"`
}
