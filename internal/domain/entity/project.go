package entity

import "time"

// Project belongs to exactly one user. UserID is set at creation and
// immutable afterwards; every query and mutation is scoped by (ID, UserID).
type Project struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Task belongs to exactly one project and is only reachable through an owned
// project. ProjectID is immutable.
type Task struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Completed bool      `json:"completed"`
	ProjectID string    `json:"project_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
