package repository

import (
	"context"
	"database/sql"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/abakhtin/library-api/internal/errs"
	"github.com/abakhtin/library-api/internal/model"
)

//go:generate go run github.com/golang/mock/mockgen -source=loan.go -destination=mocks/loan.go -package=mocks

type LoanRepository interface {
	CreateLoan(ctx context.Context, bookID int64, customer string) (model.Loan, error)
	GetLoan(ctx context.Context, id int64) (model.Loan, error)
	UpdateLoan(ctx context.Context, loan model.Loan) (model.Loan, error)
	ExistsActiveLoan(ctx context.Context, bookID int64) (bool, error)
	ListLoans(ctx context.Context, isbn, customer string, page, size int) (model.ListLoans, error)
	ListLoansByBook(ctx context.Context, bookID int64, page, size int) (model.ListLoans, error)
	ListOverdue(ctx context.Context, thresholdDays int) ([]model.Loan, error)
}

type loanRepository struct {
	db  *sqlx.DB
	log *zap.Logger
}

func NewLoanRepository(db *sqlx.DB, log *zap.Logger) (*loanRepository, error) {
	return &loanRepository{
		db:  db,
		log: log.Named("loan-repo"),
	}, nil
}

var loanColumns = []string{
	"l.id",
	"l.book_id",
	"l.customer",
	"l.loan_date",
	"l.returned",
	`b.id as "book.id"`,
	`b.title as "book.title"`,
	`b.author as "book.author"`,
	`b.isbn as "book.isbn"`,
}

const loanJoinBook = `book b on b.id = l.book_id`

// CreateLoan holds a per-book advisory lock across the active-loan
// check and the insert so two concurrent saves for the same book
// cannot both pass the check. The partial unique index on
// loan(book_id) where returned is not true is the backstop.
func (r *loanRepository) CreateLoan(ctx context.Context, bookID int64, customer string) (model.Loan, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return model.Loan{}, err
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, `select pg_advisory_xact_lock($1)`, bookID); err != nil {
		return model.Loan{}, err
	}

	var active bool
	q := `select exists (select 1 from loan where book_id = $1 and returned is not true)`
	if err := tx.QueryRowContext(ctx, q, bookID).Scan(&active); err != nil {
		return model.Loan{}, err
	}
	if active {
		return model.Loan{}, errs.ErrBookLoaned
	}

	query, args, err := qb.Insert(loanTableName).
		Columns("book_id", "customer", "loan_date").
		Values(bookID, customer, sq.Expr("current_date")).
		Suffix("returning id, loan_date").
		ToSql()
	if err != nil {
		return model.Loan{}, err
	}

	var (
		id       int64
		loanDate time.Time
	)
	if err := tx.QueryRowContext(ctx, query, args...).Scan(&id, &loanDate); err != nil {
		if isUniqueViolation(err) {
			return model.Loan{}, errs.ErrBookLoaned
		}
		r.log.Error("CreateLoan", zap.String("q", query), zap.Any("args", args))
		return model.Loan{}, err
	}
	if err := tx.Commit(); err != nil {
		return model.Loan{}, err
	}

	return r.GetLoan(ctx, id)
}

func (r *loanRepository) GetLoan(ctx context.Context, id int64) (model.Loan, error) {
	query, args, err := qb.Select(loanColumns...).
		From(loanTableName + " l").
		Join(loanJoinBook).
		Where(sq.Eq{"l.id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		return model.Loan{}, err
	}

	var loan model.Loan
	if err := r.db.GetContext(ctx, &loan, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Loan{}, errs.ErrNotFound
		}
		return model.Loan{}, err
	}
	return loan, nil
}

func (r *loanRepository) UpdateLoan(ctx context.Context, loan model.Loan) (model.Loan, error) {
	query, args, err := qb.Update(loanTableName).
		Set("book_id", loan.BookID).
		Set("customer", loan.Customer).
		Set("returned", loan.Returned).
		Where(sq.Eq{"id": loan.ID}).
		ToSql()
	if err != nil {
		return model.Loan{}, err
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		if isUniqueViolation(err) {
			return model.Loan{}, errs.ErrBookLoaned
		}
		return model.Loan{}, err
	}
	if n, err := res.RowsAffected(); err != nil {
		return model.Loan{}, err
	} else if n == 0 {
		return model.Loan{}, errs.ErrNotFound
	}

	return r.GetLoan(ctx, loan.ID)
}

func (r *loanRepository) ExistsActiveLoan(ctx context.Context, bookID int64) (bool, error) {
	q := `select exists (select 1 from loan where book_id = $1 and returned is not true)`
	var exists bool
	if err := r.db.QueryRowContext(ctx, q, bookID).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

// ListLoans matches loans whose book isbn equals isbn OR whose
// customer equals customer. The inclusive OR across the two fields is
// the documented contract, not an oversight.
func (r *loanRepository) ListLoans(ctx context.Context, isbn, customer string, page, size int) (model.ListLoans, error) {
	cond := sq.Or{
		sq.Eq{"b.isbn": isbn},
		sq.Eq{"l.customer": customer},
	}

	countQ := qb.Select("count(*)").
		From(loanTableName + " l").
		Join(loanJoinBook).
		Where(cond)
	q := qb.Select(loanColumns...).
		From(loanTableName + " l").
		Join(loanJoinBook).
		Where(cond).
		OrderBy("l.id")
	if page != 0 && size != 0 {
		q = q.Limit(uint64(size)).Offset(uint64((page - 1) * size))
	}

	return r.listLoans(ctx, countQ, q, page, size)
}

func (r *loanRepository) ListLoansByBook(ctx context.Context, bookID int64, page, size int) (model.ListLoans, error) {
	countQ := qb.Select("count(*)").
		From(loanTableName + " l").
		Where(sq.Eq{"l.book_id": bookID})
	q := qb.Select(loanColumns...).
		From(loanTableName + " l").
		Join(loanJoinBook).
		Where(sq.Eq{"l.book_id": bookID}).
		OrderBy("l.id")
	if page != 0 && size != 0 {
		q = q.Limit(uint64(size)).Offset(uint64((page - 1) * size))
	}

	return r.listLoans(ctx, countQ, q, page, size)
}

func (r *loanRepository) listLoans(ctx context.Context, countQ, q sq.SelectBuilder, page, size int) (model.ListLoans, error) {
	query, args, err := countQ.ToSql()
	if err != nil {
		return model.ListLoans{}, err
	}
	var total int
	if err := r.db.GetContext(ctx, &total, query, args...); err != nil {
		return model.ListLoans{}, err
	}

	query, args, err = q.ToSql()
	if err != nil {
		return model.ListLoans{}, err
	}
	r.log.Debug("listLoans", zap.String("query", query), zap.Any("args", args))

	var loans []model.Loan
	if err := r.db.SelectContext(ctx, &loans, query, args...); err != nil {
		return model.ListLoans{}, err
	}

	return model.ListLoans{
		Paging: model.Paging{
			Page:          page,
			PageSize:      size,
			TotalElements: total,
		},
		Items: loans,
	}, nil
}

func (r *loanRepository) ListOverdue(ctx context.Context, thresholdDays int) ([]model.Loan, error) {
	query, args, err := qb.Select(loanColumns...).
		From(loanTableName + " l").
		Join(loanJoinBook).
		Where(sq.Expr("l.loan_date <= current_date - ?::int", thresholdDays)).
		Where(sq.Expr("l.returned is not true")).
		OrderBy("l.id").
		ToSql()
	if err != nil {
		return nil, err
	}

	var loans []model.Loan
	if err := r.db.SelectContext(ctx, &loans, query, args...); err != nil {
		return nil, err
	}
	return loans, nil
}
