package domain

import "time"

// Comment is an entry in a ticket's thread.
type Comment struct {
	ID        string
	Content   string
	AuthorID  string
	CreatedAt time.Time
}
