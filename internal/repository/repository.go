// Package repository is the store adapter over postgres. Business
// invariants that must hold under concurrent requests (isbn
// uniqueness, single active loan per book) are backed here by unique
// indexes and an advisory lock across check-then-insert.
package repository

import (
	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pkg/errors"
)

const (
	bookTableName = `book`
	loanTableName = `loan`
)

var qb = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}
