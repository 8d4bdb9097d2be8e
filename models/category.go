package models

// Category is a robot weight class (e.g. beetleweight, hobbyweight).
type Category struct {
	ID             int    `json:"id" db:"id"`
	Name           string `json:"name" db:"name"`
	MaxWeightGrams int    `json:"max_weight_grams" db:"max_weight_grams"`
}
