package service

import (
	"fmt"

	"library-gateway/internal/domains/request/model"
	"library-gateway/internal/infrastructure/backend"
	"library-gateway/internal/shared/utils"
)

// catalog holds the lookup indices a request view is joined against.
type catalog struct {
	books        map[int64]backend.Book
	users        map[int64]backend.User
	transactions map[int64]backend.Transaction
}

func newCatalog(books []backend.Book, users []backend.User, transactions []backend.Transaction) catalog {
	return catalog{
		books:        utils.IndexBy(books, func(b backend.Book) int64 { return b.BookID }),
		users:        utils.IndexBy(users, func(u backend.User) int64 { return u.UserID }),
		transactions: utils.IndexBy(transactions, func(t backend.Transaction) int64 { return t.TransactionID }),
	}
}

// bookFor resolves the book a request is about. A RETURN request with a
// transaction is resolved through that transaction and never through its own
// book_id, which the backend usually leaves at zero.
func (c catalog) bookFor(r backend.BookRequest) (backend.Book, bool) {
	if r.RequestType == model.TypeReturn && r.TransactionID > 0 {
		txn, ok := c.transactions[r.TransactionID]
		if !ok {
			return backend.Book{}, false
		}
		book, ok := c.books[txn.BookID]
		return book, ok
	}

	if r.BookID > 0 {
		book, ok := c.books[r.BookID]
		return book, ok
	}

	return backend.Book{}, false
}

func (c catalog) userName(userID int64) string {
	if u, ok := c.users[userID]; ok && u.Username != "" {
		return u.Username
	}
	return fmt.Sprintf("User %d", userID)
}

func (c catalog) adminView(r backend.BookRequest) model.AdminRequestView {
	view := model.AdminRequestView{
		RequestID:     r.RequestID,
		UserID:        r.UserID,
		UserName:      c.userName(r.UserID),
		BookID:        r.BookID,
		BookTitle:     model.Unknown,
		BookAuthor:    model.Unknown,
		RequestType:   r.RequestType,
		Status:        r.Status,
		RequestDate:   r.RequestDate,
		Notes:         r.Notes,
		TransactionID: r.TransactionID,
	}
	if book, ok := c.bookFor(r); ok {
		view.BookTitle = book.Title
		view.BookAuthor = book.Author
		view.AvailableCopies = book.AvailableCopies
	}
	return view
}

func (c catalog) userView(r backend.BookRequest) model.UserRequestView {
	view := model.UserRequestView{
		RequestID:     r.RequestID,
		UserID:        r.UserID,
		BookID:        r.BookID,
		BookTitle:     model.Unknown,
		BookAuthor:    model.Unknown,
		RequestType:   r.RequestType,
		Status:        r.Status,
		RequestDate:   r.RequestDate,
		Notes:         r.Notes,
		TransactionID: r.TransactionID,
	}
	if book, ok := c.bookFor(r); ok {
		view.BookTitle = book.Title
		view.BookAuthor = book.Author
	}
	return view
}
