package domain

import (
	"cmp"
	"time"
)

// Placeholder portrait for crew members saved without one.
const DefaultCrewImageURL = "https://placehold.co/400x400.png"

// CrewMember is a person shown on the public team page.
type CrewMember struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Role     string `json:"role"`
	Bio      string `json:"bio"`
	ImageURL string `json:"imageUrl"`
	// Display rank, ascending.
	Order     int       `json:"order"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// CompareCrew orders crew members by rank, then name.
func CompareCrew(a, b CrewMember) int {
	if c := cmp.Compare(a.Order, b.Order); c != 0 {
		return c
	}
	return cmp.Compare(a.Name, b.Name)
}
