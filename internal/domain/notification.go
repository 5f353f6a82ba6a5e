package domain

import "time"

// Notification is an append-only side-effect record written inside ledger
// commit units. Delivery to the user is an external collaborator's job.
type Notification struct {
	ID        string     `json:"id"`
	UserID    string     `json:"user_id"`
	Type      string     `json:"type"`
	Title     string     `json:"title"`
	Message   string     `json:"message"`
	Reference string     `json:"reference,omitempty"`
	ReadAt    *time.Time `json:"read_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}
