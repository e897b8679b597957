package model

import (
	"time"
)

type Article struct {
	ID           string    `db:"id"`
	UserID       string    `db:"user_id"`
	CategoryID   string    `db:"category_id"`
	Title        string    `db:"title"`
	Body         string    `db:"body"`
	FailureImage int       `db:"failure_image"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

// FailureImageNone means no illustration was picked for the entry.
const FailureImageNone = 0

// FailureImageMax is the highest selectable illustration index.
const FailureImageMax = 6

func ValidFailureImage(v int) bool {
	return v >= FailureImageNone && v <= FailureImageMax
}
