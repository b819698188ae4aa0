package model

import (
	"errors"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

var ErrInvalidBookID = errors.New("invalid book id")

// Book is the catalogue entry returned to admins.
type Book struct {
	BookID          int64  `json:"book_id"`
	Title           string `json:"title"`
	Author          string `json:"author"`
	Genre           string `json:"genre"`
	PublishedYear   int32  `json:"published_year"`
	AvailableCopies int32  `json:"available_copies"`
}

// SearchResult adds whether a user may request the book right now.
type SearchResult struct {
	Book
	CanRequest bool `json:"can_request"`
}

// BookRequest is the body of both create and update.
// POST /admin/books, PUT /admin/books/:book_id
type BookRequest struct {
	Title           string `json:"title"`
	Author          string `json:"author"`
	Genre           string `json:"genre"`
	PublishedYear   int32  `json:"published_year"`
	AvailableCopies int32  `json:"available_copies"`
}

func (r BookRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.Required.Error("title is required"), validation.Length(1, 255)),
		validation.Field(&r.Author, validation.Required.Error("author is required"), validation.Length(1, 255)),
		validation.Field(&r.Genre, validation.Length(0, 100)),
		validation.Field(&r.PublishedYear, validation.Min(int32(0)), validation.Max(int32(9999))),
		validation.Field(&r.AvailableCopies, validation.Min(int32(0)).Error("available_copies cannot be negative")),
	)
}

// Normalize trims free-text fields.
func (r *BookRequest) Normalize() {
	r.Title = strings.TrimSpace(r.Title)
	r.Author = strings.TrimSpace(r.Author)
	r.Genre = strings.TrimSpace(r.Genre)
}

type CreateResponse struct {
	BookID  int64  `json:"book_id"`
	Message string `json:"message"`
}
