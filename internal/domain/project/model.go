package project

import "time"

// Project binds an identifier to a filesystem root. Every file path used by
// a session is resolved against, and confined to, its project's root.
type Project struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	RootPath  string    `json:"root_path"`
	CreatedAt time.Time `json:"created_at"`
}
