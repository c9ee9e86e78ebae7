package domain

import "time"

// Post is a document-store entity. It lives in Redis as a JSON document and
// never touches the relational schema.
type Post struct {
	ID        string    `json:"id"`
	AuthorID  uint      `json:"author_id"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
