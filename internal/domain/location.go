package domain

// Place is a searchable location (city, landmark, neighbourhood).
type Place struct {
	ID        int64   `json:"id" db:"id"`
	Name      string  `json:"name" db:"name"`
	City      string  `json:"city" db:"city"`
	Country   string  `json:"country" db:"country"`
	Latitude  float64 `json:"latitude" db:"latitude"`
	Longitude float64 `json:"longitude" db:"longitude"`
}
