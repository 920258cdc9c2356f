package model

import "time"

// List is a named, owner-scoped collection of catalog items.
// Names are unique per owner (exact, case-sensitive match).
type List struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"-"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	// Items holds the member comic ids in insertion order. It is only
	// populated by ListLists.
	Items []string `json:"-"`
}

// DeleteResult is returned when a list and its items are removed.
type DeleteResult struct {
	Deleted          bool
	DeletedItemCount int
}
