package repository

import (
	"context"
	"database/sql"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/abakhtin/library-api/internal/errs"
	"github.com/abakhtin/library-api/internal/model"
)

//go:generate go run github.com/golang/mock/mockgen -source=book.go -destination=mocks/book.go -package=mocks

type BookRepository interface {
	CreateBook(ctx context.Context, book model.Book) (model.Book, error)
	GetBook(ctx context.Context, id int64) (model.Book, error)
	GetBookByISBN(ctx context.Context, isbn string) (model.Book, error)
	ExistsByISBN(ctx context.Context, isbn string) (bool, error)
	UpdateBook(ctx context.Context, book model.Book) (model.Book, error)
	DeleteBook(ctx context.Context, id int64) error
	ListBooks(ctx context.Context, filter model.BookFilter, page, size int) (model.ListBooks, error)
}

type bookRepository struct {
	db  *sqlx.DB
	log *zap.Logger
}

func NewBookRepository(db *sqlx.DB, log *zap.Logger) (*bookRepository, error) {
	return &bookRepository{
		db:  db,
		log: log.Named("book-repo"),
	}, nil
}

func (r *bookRepository) CreateBook(ctx context.Context, book model.Book) (model.Book, error) {
	query, args, err := qb.Insert(bookTableName).
		Columns("title", "author", "isbn").
		Values(book.Title, book.Author, book.ISBN).
		Suffix("returning id").
		ToSql()
	if err != nil {
		return model.Book{}, err
	}

	if err := r.db.GetContext(ctx, &book.ID, query, args...); err != nil {
		if isUniqueViolation(err) {
			return model.Book{}, errs.ErrISBNExists
		}
		r.log.Error("CreateBook", zap.String("q", query), zap.Any("args", args))
		return model.Book{}, err
	}
	return book, nil
}

func (r *bookRepository) GetBook(ctx context.Context, id int64) (model.Book, error) {
	query, args, err := qb.Select("id", "title", "author", "isbn").
		From(bookTableName).
		Where(sq.Eq{"id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		return model.Book{}, err
	}

	var book model.Book
	if err := r.db.GetContext(ctx, &book, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Book{}, errs.ErrNotFound
		}
		return model.Book{}, err
	}
	return book, nil
}

func (r *bookRepository) GetBookByISBN(ctx context.Context, isbn string) (model.Book, error) {
	query, args, err := qb.Select("id", "title", "author", "isbn").
		From(bookTableName).
		Where(sq.Eq{"isbn": isbn}).
		Limit(1).
		ToSql()
	if err != nil {
		return model.Book{}, err
	}

	var book model.Book
	if err := r.db.GetContext(ctx, &book, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Book{}, errs.ErrNotFound
		}
		return model.Book{}, err
	}
	return book, nil
}

func (r *bookRepository) ExistsByISBN(ctx context.Context, isbn string) (bool, error) {
	q := `select exists (select 1 from book where isbn = $1)`
	var exists bool
	if err := r.db.QueryRowContext(ctx, q, isbn).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *bookRepository) UpdateBook(ctx context.Context, book model.Book) (model.Book, error) {
	query, args, err := qb.Update(bookTableName).
		Set("title", book.Title).
		Set("author", book.Author).
		Set("isbn", book.ISBN).
		Where(sq.Eq{"id": book.ID}).
		ToSql()
	if err != nil {
		return model.Book{}, err
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		if isUniqueViolation(err) {
			return model.Book{}, errs.ErrISBNExists
		}
		return model.Book{}, err
	}
	if n, err := res.RowsAffected(); err != nil {
		return model.Book{}, err
	} else if n == 0 {
		return model.Book{}, errs.ErrNotFound
	}
	return book, nil
}

// DeleteBook refuses to delete a book that still has an outstanding
// loan; the check and the delete run in one transaction.
func (r *bookRepository) DeleteBook(ctx context.Context, id int64) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback() //nolint:errcheck

	var active bool
	q := `select exists (select 1 from loan where book_id = $1 and returned is not true)`
	if err := tx.QueryRowContext(ctx, q, id).Scan(&active); err != nil {
		return err
	}
	if active {
		return errs.ErrActiveLoan
	}

	query, args, err := qb.Delete(bookTableName).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err != nil {
		return err
	} else if n == 0 {
		return errs.ErrNotFound
	}

	return tx.Commit()
}

func (r *bookRepository) ListBooks(ctx context.Context, filter model.BookFilter, page, size int) (model.ListBooks, error) {
	conds := sq.And{}
	if filter.Title != "" {
		conds = append(conds, sq.ILike{"title": "%" + filter.Title + "%"})
	}
	if filter.Author != "" {
		conds = append(conds, sq.ILike{"author": "%" + filter.Author + "%"})
	}
	if filter.ISBN != "" {
		conds = append(conds, sq.Eq{"isbn": filter.ISBN})
	}

	countQ := qb.Select("count(*)").From(bookTableName)
	q := qb.Select("id", "title", "author", "isbn").
		From(bookTableName).
		OrderBy("id")
	if len(conds) > 0 {
		countQ = countQ.Where(conds)
		q = q.Where(conds)
	}
	if page != 0 && size != 0 {
		q = q.Limit(uint64(size)).Offset(uint64((page - 1) * size))
	}

	query, args, err := countQ.ToSql()
	if err != nil {
		return model.ListBooks{}, err
	}
	var total int
	if err := r.db.GetContext(ctx, &total, query, args...); err != nil {
		return model.ListBooks{}, err
	}

	query, args, err = q.ToSql()
	if err != nil {
		return model.ListBooks{}, err
	}
	r.log.Debug("ListBooks", zap.String("query", query), zap.Any("args", args))

	var books []model.Book
	if err := r.db.SelectContext(ctx, &books, query, args...); err != nil {
		return model.ListBooks{}, err
	}

	return model.ListBooks{
		Paging: model.Paging{
			Page:          page,
			PageSize:      size,
			TotalElements: total,
		},
		Items: books,
	}, nil
}
