package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/abakhtin/library-api/internal/errs"
	"github.com/abakhtin/library-api/internal/model"
	"github.com/abakhtin/library-api/pkg/validate"
)

// CreateBook godoc
//
//	@Summary	Register a new book
//	@Tags		books
//	@Accept		json
//	@Produce	json
//	@Param		book	body		model.CreateBookRequest	true	"book"
//	@Success	201		{object}	model.Book
//	@Failure	400		{object}	errs.ErrorList
//	@Router		/books [post]
func (h *Handler) CreateBook(c echo.Context) error {
	var req model.CreateBookRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(req); err != nil {
		return c.JSON(http.StatusBadRequest, errs.NewErrorList(validate.Messages(err)...))
	}

	book, err := h.bookSvc.Create(c.Request().Context(), model.Book{
		Title:  req.Title,
		Author: req.Author,
		ISBN:   req.ISBN,
	})
	if err != nil {
		if errors.Is(err, errs.ErrISBNExists) {
			return c.JSON(http.StatusBadRequest, errs.NewErrorList(err.Error()))
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusCreated, book)
}

// GetBook godoc
//
//	@Summary	Get a book by id
//	@Tags		books
//	@Produce	json
//	@Param		id	path		int	true	"book id"
//	@Success	200	{object}	model.Book
//	@Failure	404	{object}	echo.HTTPError
//	@Router		/books/{id} [get]
func (h *Handler) GetBook(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "id is invalid")
	}
	book, err := h.bookSvc.GetByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, book)
}

// UpdateBook godoc
//
//	@Summary	Replace title, author and isbn of a book
//	@Tags		books
//	@Accept		json
//	@Produce	json
//	@Param		id		path		int						true	"book id"
//	@Param		book	body		model.UpdateBookRequest	true	"book"
//	@Success	200		{object}	model.Book
//	@Failure	404		{object}	echo.HTTPError
//	@Router		/books/{id} [put]
func (h *Handler) UpdateBook(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "id is invalid")
	}
	var req model.UpdateBookRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(req); err != nil {
		return c.JSON(http.StatusBadRequest, errs.NewErrorList(validate.Messages(err)...))
	}

	book, err := h.bookSvc.Update(c.Request().Context(), model.Book{
		ID:     id,
		Title:  req.Title,
		Author: req.Author,
		ISBN:   req.ISBN,
	})
	if err != nil {
		switch {
		case errors.Is(err, errs.ErrInvalidID):
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		case errors.Is(err, errs.ErrNotFound):
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		case errors.Is(err, errs.ErrISBNExists):
			return c.JSON(http.StatusBadRequest, errs.NewErrorList(err.Error()))
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, book)
}

// DeleteBook godoc
//
//	@Summary	Delete a book
//	@Tags		books
//	@Param		id	path	int	true	"book id"
//	@Success	204
//	@Failure	400	{object}	errs.ErrorList
//	@Failure	404	{object}	echo.HTTPError
//	@Router		/books/{id} [delete]
func (h *Handler) DeleteBook(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "id is invalid")
	}
	if err := h.bookSvc.Delete(c.Request().Context(), model.Book{ID: id}); err != nil {
		switch {
		case errors.Is(err, errs.ErrInvalidID):
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		case errors.Is(err, errs.ErrNotFound):
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		case errors.Is(err, errs.ErrActiveLoan):
			return c.JSON(http.StatusBadRequest, errs.NewErrorList(err.Error()))
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

// FindBooks godoc
//
//	@Summary	Find books by partial-match filter
//	@Tags		books
//	@Produce	json
//	@Param		title	query		string	false	"title contains"
//	@Param		author	query		string	false	"author contains"
//	@Param		isbn	query		string	false	"isbn equals"
//	@Param		page	query		int		false	"page"
//	@Param		size	query		int		false	"page size"
//	@Success	200		{object}	model.ListBooks
//	@Router		/books [get]
func (h *Handler) FindBooks(c echo.Context) error {
	page, size, err := paging(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	filter := model.BookFilter{
		Title:  c.QueryParam("title"),
		Author: c.QueryParam("author"),
		ISBN:   c.QueryParam("isbn"),
	}

	books, err := h.bookSvc.Find(c.Request().Context(), filter, page, size)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, books)
}

// GetBookLoans godoc
//
//	@Summary	List loans of a book
//	@Tags		books
//	@Produce	json
//	@Param		id		path		int	true	"book id"
//	@Param		page	query		int	false	"page"
//	@Param		size	query		int	false	"page size"
//	@Success	200		{object}	model.ListLoans
//	@Failure	404		{object}	echo.HTTPError
//	@Router		/books/{id}/loans [get]
func (h *Handler) GetBookLoans(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "id is invalid")
	}
	page, size, err := paging(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ctx := c.Request().Context()
	if _, err := h.bookSvc.GetByID(ctx, id); err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	loans, err := h.loanSvc.FindByBook(ctx, id, page, size)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, loans)
}
