package handler

import (
	"context"

	"github.com/abakhtin/library-api/internal/model"
	"github.com/abakhtin/library-api/internal/service"
)

//go:generate go run github.com/golang/mock/mockgen -source=service.go -destination=mocks/mock.go -package=mocks

type BookService interface {
	Create(ctx context.Context, book model.Book) (model.Book, error)
	GetByID(ctx context.Context, id int64) (model.Book, error)
	GetByISBN(ctx context.Context, isbn string) (model.Book, error)
	Update(ctx context.Context, book model.Book) (model.Book, error)
	Delete(ctx context.Context, book model.Book) error
	Find(ctx context.Context, filter model.BookFilter, page, size int) (model.ListBooks, error)
}

type LoanService interface {
	Create(ctx context.Context, loan model.Loan) (model.Loan, error)
	GetByID(ctx context.Context, id int64) (model.Loan, error)
	Update(ctx context.Context, loan model.Loan) (model.Loan, error)
	Find(ctx context.Context, isbn, customer string, page, size int) (model.ListLoans, error)
	FindByBook(ctx context.Context, bookID int64, page, size int) (model.ListLoans, error)
	FindOverdue(ctx context.Context, thresholdDays int) ([]model.Loan, error)
	SweepOverdue(ctx context.Context, thresholdDays int) (int, error)
}

var (
	_ BookService = (*service.BookService)(nil)
	_ LoanService = (*service.LoanService)(nil)
)
