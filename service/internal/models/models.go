// Package models holds the service-level records shared between packages.
package models

import "github.com/google/uuid"

// User is the account behind a seat.
type User struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
}

// Player is a seated participant. Provider names the decision source driving
// the seat, e.g. "heuristic" or "remote:ws://host/provider".
type Player struct {
	ID        uuid.UUID `json:"id"`
	User      *User     `json:"user,omitempty"`
	Connected bool      `json:"connected"`
	Provider  string    `json:"provider"`
}

// Name returns the username, or the player id when no user is attached.
func (p *Player) Name() string {
	if p.User != nil && p.User.Username != "" {
		return p.User.Username
	}
	return p.ID.String()
}
