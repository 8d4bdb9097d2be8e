package models

// Venue is where tournaments are held. Courts is the number of arenas
// that can run matches at the same time.
type Venue struct {
	ID      int    `json:"id" db:"id"`
	Name    string `json:"name" db:"name"`
	Address string `json:"address" db:"address"`
	Courts  int    `json:"courts" db:"courts"`
}
