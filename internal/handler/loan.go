package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/abakhtin/library-api/internal/errs"
	"github.com/abakhtin/library-api/internal/model"
	"github.com/abakhtin/library-api/pkg/validate"
)

// Default threshold for the overdue sweep when the caller does not
// pass one.
const defaultOverdueDays = 3

// CreateLoan godoc
//
//	@Summary	Loan a book to a customer
//	@Tags		loans
//	@Accept		json
//	@Produce	json
//	@Param		loan	body		model.CreateLoanRequest	true	"loan"
//	@Success	201		{integer}	int64
//	@Failure	400		{object}	errs.ErrorList
//	@Router		/loans [post]
func (h *Handler) CreateLoan(c echo.Context) error {
	var req model.CreateLoanRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(req); err != nil {
		return c.JSON(http.StatusBadRequest, errs.NewErrorList(validate.Messages(err)...))
	}

	ctx := c.Request().Context()
	book, err := h.bookSvc.GetByISBN(ctx, req.ISBN)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return c.JSON(http.StatusBadRequest, errs.NewErrorList("Book not found for passed isbn"))
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	loan, err := h.loanSvc.Create(ctx, model.Loan{
		BookID:   book.ID,
		Book:     book,
		Customer: req.Customer,
	})
	if err != nil {
		if errors.Is(err, errs.ErrBookLoaned) {
			return c.JSON(http.StatusBadRequest, errs.NewErrorList(err.Error()))
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusCreated, loan.ID)
}

// GetLoan godoc
//
//	@Summary	Get a loan by id
//	@Tags		loans
//	@Produce	json
//	@Param		id	path		int	true	"loan id"
//	@Success	200	{object}	model.Loan
//	@Failure	404	{object}	echo.HTTPError
//	@Router		/loans/{id} [get]
func (h *Handler) GetLoan(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "id is invalid")
	}
	loan, err := h.loanSvc.GetByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, loan)
}

// ReturnLoan godoc
//
//	@Summary	Mark a loan returned or not returned
//	@Tags		loans
//	@Accept		json
//	@Param		id		path	int						true	"loan id"
//	@Param		body	body	model.ReturnLoanRequest	true	"returned flag"
//	@Success	200
//	@Failure	404	{object}	echo.HTTPError
//	@Router		/loans/{id} [patch]
func (h *Handler) ReturnLoan(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "id is invalid")
	}
	var req model.ReturnLoanRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(req); err != nil {
		return c.JSON(http.StatusBadRequest, errs.NewErrorList(validate.Messages(err)...))
	}

	ctx := c.Request().Context()
	loan, err := h.loanSvc.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	loan.Returned = req.Returned
	if _, err := h.loanSvc.Update(ctx, loan); err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusOK)
}

// FindLoans godoc
//
//	@Summary	Find loans by book isbn or customer
//	@Description	Matches loans whose book isbn equals isbn OR whose customer equals customer.
//	@Tags		loans
//	@Produce	json
//	@Param		isbn		query		string	false	"book isbn"
//	@Param		customer	query		string	false	"customer"
//	@Param		page		query		int		false	"page"
//	@Param		size		query		int		false	"page size"
//	@Success	200			{object}	model.ListLoans
//	@Router		/loans [get]
func (h *Handler) FindLoans(c echo.Context) error {
	page, size, err := paging(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	loans, err := h.loanSvc.Find(c.Request().Context(),
		c.QueryParam("isbn"), c.QueryParam("customer"), page, size)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, loans)
}

// FindOverdueLoans godoc
//
//	@Summary	List loans outstanding past the day threshold
//	@Tags		loans
//	@Produce	json
//	@Param		days	query		int	false	"threshold in days"	default(3)
//	@Success	200		{array}		model.Loan
//	@Router		/loans/overdue [get]
func (h *Handler) FindOverdueLoans(c echo.Context) error {
	days, err := overdueDays(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	loans, err := h.loanSvc.FindOverdue(c.Request().Context(), days)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, loans)
}

// SweepOverdueLoans godoc
//
//	@Summary	Publish an overdue event per outstanding late loan
//	@Description	Invoked by an external scheduler; the service only owns the query.
//	@Tags		loans
//	@Produce	json
//	@Param		days	query		int	false	"threshold in days"	default(3)
//	@Success	200		{object}	map[string]int
//	@Router		/loans/overdue/sweep [post]
func (h *Handler) SweepOverdueLoans(c echo.Context) error {
	days, err := overdueDays(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	count, err := h.loanSvc.SweepOverdue(c.Request().Context(), days)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]int{"count": count})
}

func overdueDays(c echo.Context) (int, error) {
	days, err := queryInt(c, "days")
	if err != nil {
		return 0, errors.New("days is invalid")
	}
	if days == 0 {
		days = defaultOverdueDays
	}
	return days, nil
}
