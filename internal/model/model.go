package model

import (
	"time"
)

type Book struct {
	ID     int64  `json:"id" db:"id"`
	Title  string `json:"title" db:"title"`
	Author string `json:"author" db:"author"`
	ISBN   string `json:"isbn" db:"isbn"`
}

// BookFilter is a partial-match filter: title and author match as
// contains, isbn matches exactly. Empty fields are skipped.
type BookFilter struct {
	Title  string
	Author string
	ISBN   string
}

type Loan struct {
	ID       int64     `json:"id" db:"id"`
	BookID   int64     `json:"-" db:"book_id"`
	Book     Book      `json:"book" db:"book"`
	Customer string    `json:"customer" db:"customer"`
	LoanDate time.Time `json:"loanDate" db:"loan_date"`
	Returned *bool     `json:"returned" db:"returned"`
}

// Active reports whether the loan is still outstanding: returned is
// unset or explicitly false.
func (l Loan) Active() bool {
	return l.Returned == nil || !*l.Returned
}

type Paging struct {
	Page          int `json:"page"`
	PageSize      int `json:"pageSize"`
	TotalElements int `json:"totalElements"`
}

type ListBooks struct {
	Paging `json:",inline"`
	Items  []Book `json:"items"`
}

type ListLoans struct {
	Paging `json:",inline"`
	Items  []Loan `json:"items"`
}

type CreateBookRequest struct {
	Title  string `json:"title" validate:"required"`
	Author string `json:"author" validate:"required"`
	ISBN   string `json:"isbn" validate:"required"`
}

type UpdateBookRequest struct {
	Title  string `json:"title" validate:"required"`
	Author string `json:"author" validate:"required"`
	ISBN   string `json:"isbn" validate:"required"`
}

type CreateLoanRequest struct {
	ISBN     string `json:"isbn" validate:"required"`
	Customer string `json:"customer" validate:"required"`
}

type ReturnLoanRequest struct {
	Returned *bool `json:"returned" validate:"required"`
}
