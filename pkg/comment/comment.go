package comment

import (
	"errors"
	"time"
)

type Comment struct {
	Id        int64     `json:"id"`
	Text      string    `json:"text"`
	Deleted   bool      `json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

var (
	// ErrNotFound is returned when a conditional soft delete touches no
	// row: the id is unknown or the comment is already deleted.
	ErrNotFound = errors.New("comment: not found")

	// ErrConflict is returned when an insert hits a uniqueness
	// constraint.
	ErrConflict = errors.New("comment: already exists")
)
