package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/abakhtin/library-api/internal/errs"
	"github.com/abakhtin/library-api/internal/model"
	"github.com/abakhtin/library-api/internal/repository"
)

type BookService struct {
	log  *zap.Logger
	repo repository.BookRepository
}

func NewBookService(repo repository.BookRepository, log *zap.Logger) *BookService {
	return &BookService{
		log:  log,
		repo: repo,
	}
}

// Create rejects a duplicate isbn before touching the insert; the
// unique index on book(isbn) catches the race in repository.
func (s *BookService) Create(ctx context.Context, book model.Book) (model.Book, error) {
	exists, err := s.repo.ExistsByISBN(ctx, book.ISBN)
	if err != nil {
		return model.Book{}, err
	}
	if exists {
		return model.Book{}, errs.ErrISBNExists
	}
	return s.repo.CreateBook(ctx, book)
}

func (s *BookService) GetByID(ctx context.Context, id int64) (model.Book, error) {
	return s.repo.GetBook(ctx, id)
}

func (s *BookService) GetByISBN(ctx context.Context, isbn string) (model.Book, error) {
	return s.repo.GetBookByISBN(ctx, isbn)
}

func (s *BookService) Update(ctx context.Context, book model.Book) (model.Book, error) {
	if book.ID == 0 {
		return model.Book{}, errs.ErrInvalidID
	}
	return s.repo.UpdateBook(ctx, book)
}

func (s *BookService) Delete(ctx context.Context, book model.Book) error {
	if book.ID == 0 {
		return errs.ErrInvalidID
	}
	return s.repo.DeleteBook(ctx, book.ID)
}

func (s *BookService) Find(ctx context.Context, filter model.BookFilter, page, size int) (model.ListBooks, error) {
	return s.repo.ListBooks(ctx, filter, page, size)
}
