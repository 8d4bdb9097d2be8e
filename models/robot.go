package models

import "time"

type Robot struct {
	ID         int       `json:"id" db:"id"`
	OwnerID    int       `json:"owner_id" db:"owner_id"`
	CategoryID int       `json:"category_id" db:"category_id"`
	Name       string    `json:"name" db:"name"`
	PhotoKey   *string   `json:"-" db:"photo_key"`
	PhotoURL   *string   `json:"photo_url,omitempty" db:"-"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`

	Owner *User `json:"owner,omitempty" db:"-"`
}
