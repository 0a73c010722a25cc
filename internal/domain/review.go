package domain

import "time"

type Place struct {
	ID        string
	Name      string
	Category  string
	CreatedAt time.Time
}

type Review struct {
	ID         int64
	PlaceID    string
	Content    string
	Rating     int // 1..5
	Author     string
	Source     string // "app" or "google"
	IsApproved bool
	CreatedAt  time.Time
}
