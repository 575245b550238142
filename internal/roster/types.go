// Package roster turns a session's attendance list into the eligible roster
// the scheduler works from.
package roster

// Player is the scheduler's view of a club member.
type Player struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Rating float64 `json:"rating"`
	Active bool    `json:"active"`
}

// Attendee is a player signed up for a session.
type Attendee struct {
	Player
	Paused bool `json:"paused"`
}
