package models

type Consultation struct {
	ID        string `json:"id"`
	UserID    string `json:"userId"`
	Date      string `json:"date"` // YYYY-MM-DD format
	Time      string `json:"time"` // HH:MM format
	Notes     string `json:"notes,omitempty"`
	Confirmed bool   `json:"confirmed"`
}
