package model

import "time"

// Category groups tickets under a user-defined label. Every category has
// exactly one owner and is only ever visible to that owner; repository
// queries filter on CreatedBy.
type Category struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	CreatedBy string    `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
