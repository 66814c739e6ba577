package models

import "time"

// Note represents a note owned by exactly one user. Owner is serialized as
// the owner's username; the numeric owner id never leaves the server.
type Note struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Owner     string    `json:"owner"`
	OwnerID   int64     `json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NoteRequest holds note fields for create and update. Pointer fields
// distinguish "absent" from "empty" on partial updates.
type NoteRequest struct {
	Title   *string `json:"title"`
	Content *string `json:"content"`
}

// NoteListResponse is a page of notes plus navigation links.
type NoteListResponse struct {
	Count    int64   `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []Note  `json:"results"`
}
