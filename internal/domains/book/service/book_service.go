package service

import (
	"context"

	"github.com/rs/zerolog/log"

	"library-gateway/internal/domains/book/model"
	"library-gateway/internal/infrastructure/backend"
)

type ServiceInterface interface {
	Search(ctx context.Context, query string) ([]model.SearchResult, error)
	List(ctx context.Context, query string) ([]model.Book, error)
	Create(ctx context.Context, req model.BookRequest) (*model.CreateResponse, error)
	Update(ctx context.Context, bookID int64, req model.BookRequest) (string, error)
	Delete(ctx context.Context, bookID int64) (string, error)
}

type BookService struct {
	backend backend.Library
}

var _ ServiceInterface = (*BookService)(nil)

func NewBookService(lib backend.Library) *BookService {
	return &BookService{backend: lib}
}

// Search lists books matching query for users, flagging which can be requested.
func (s *BookService) Search(ctx context.Context, query string) ([]model.SearchResult, error) {
	resp, err := s.backend.GetBooks(ctx, backend.GetBooksRequest{SearchQuery: query})
	if err != nil {
		return nil, err
	}

	results := make([]model.SearchResult, 0, len(resp.Books))
	for _, b := range resp.Books {
		results = append(results, model.SearchResult{
			Book:       toBook(b),
			CanRequest: b.AvailableCopies > 0,
		})
	}
	return results, nil
}

func (s *BookService) List(ctx context.Context, query string) ([]model.Book, error) {
	resp, err := s.backend.GetBooks(ctx, backend.GetBooksRequest{SearchQuery: query})
	if err != nil {
		return nil, err
	}

	books := make([]model.Book, 0, len(resp.Books))
	for _, b := range resp.Books {
		books = append(books, toBook(b))
	}
	return books, nil
}

func (s *BookService) Create(ctx context.Context, req model.BookRequest) (*model.CreateResponse, error) {
	resp, err := s.backend.CreateBook(ctx, backend.CreateBookRequest{
		Title:           req.Title,
		Author:          req.Author,
		Genre:           req.Genre,
		PublishedYear:   req.PublishedYear,
		AvailableCopies: req.AvailableCopies,
	})
	if err != nil {
		return nil, err
	}

	out := &model.CreateResponse{Message: resp.Message}
	if resp.Book != nil {
		out.BookID = resp.Book.BookID
	}
	log.Info().Int64("book_id", out.BookID).Str("title", req.Title).Msg("Book created")
	return out, nil
}

func (s *BookService) Update(ctx context.Context, bookID int64, req model.BookRequest) (string, error) {
	if bookID <= 0 {
		return "", model.ErrInvalidBookID
	}

	resp, err := s.backend.UpdateBook(ctx, backend.UpdateBookRequest{
		BookID:          bookID,
		Title:           req.Title,
		Author:          req.Author,
		Genre:           req.Genre,
		PublishedYear:   req.PublishedYear,
		AvailableCopies: req.AvailableCopies,
	})
	if err != nil {
		return "", err
	}

	log.Info().Int64("book_id", bookID).Msg("Book updated")
	return resp.Message, nil
}

func (s *BookService) Delete(ctx context.Context, bookID int64) (string, error) {
	if bookID <= 0 {
		return "", model.ErrInvalidBookID
	}

	resp, err := s.backend.DeleteBook(ctx, backend.DeleteBookRequest{BookID: bookID})
	if err != nil {
		return "", err
	}

	log.Info().Int64("book_id", bookID).Msg("Book deleted")
	return resp.Message, nil
}

func toBook(b backend.Book) model.Book {
	return model.Book{
		BookID:          b.BookID,
		Title:           b.Title,
		Author:          b.Author,
		Genre:           b.Genre,
		PublishedYear:   b.PublishedYear,
		AvailableCopies: b.AvailableCopies,
	}
}
