package handler_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/abakhtin/library-api/internal/errs"
	"github.com/abakhtin/library-api/internal/handler"
	service_mocks "github.com/abakhtin/library-api/internal/handler/mocks"
	"github.com/abakhtin/library-api/internal/model"
	"github.com/abakhtin/library-api/pkg/validate"
)

func newTestRouter(t *testing.T) (*echo.Echo, *service_mocks.MockBookService, *service_mocks.MockLoanService) {
	t.Helper()
	c := gomock.NewController(t)
	t.Cleanup(c.Finish)
	bookSvc := service_mocks.NewMockBookService(c)
	loanSvc := service_mocks.NewMockLoanService(c)
	h := handler.New(bookSvc, loanSvc, zap.NewExample().Named("test"))

	e := echo.New()
	e.Validator = validate.NewCustomValidator()
	e.POST("/api/books", h.CreateBook)
	e.GET("/api/books", h.FindBooks)
	e.GET("/api/books/:id", h.GetBook)
	e.PUT("/api/books/:id", h.UpdateBook)
	e.DELETE("/api/books/:id", h.DeleteBook)
	e.GET("/api/books/:id/loans", h.GetBookLoans)
	e.POST("/api/loans", h.CreateLoan)
	e.GET("/api/loans", h.FindLoans)
	e.GET("/api/loans/overdue", h.FindOverdueLoans)
	e.POST("/api/loans/overdue/sweep", h.SweepOverdueLoans)
	e.GET("/api/loans/:id", h.GetLoan)
	e.PATCH("/api/loans/:id", h.ReturnLoan)
	return e, bookSvc, loanSvc
}

func doJSON(e *echo.Echo, method, target, body string) *httptest.ResponseRecorder {
	var r *http.Request
	if body == "" {
		r = httptest.NewRequest(method, target, http.NoBody)
	} else {
		r = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	r.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	w := httptest.NewRecorder()
	e.ServeHTTP(w, r)
	return w
}

func TestHandler_CreateBook(t *testing.T) {
	t.Parallel()
	type response struct {
		expectedCode int
		expectedBody string
	}
	type mockBehavior func(r *service_mocks.MockBookService)

	var tests = []struct {
		name         string
		body         string
		mockBehavior mockBehavior
		response     response
	}{
		{
			name: "ok",
			body: `{"title":"As aventuras","author":"Artur","isbn":"001"}`,
			mockBehavior: func(r *service_mocks.MockBookService) {
				r.EXPECT().
					Create(context.Background(), model.Book{Title: "As aventuras", Author: "Artur", ISBN: "001"}).
					Return(model.Book{ID: 11, Title: "As aventuras", Author: "Artur", ISBN: "001"}, nil)
			},
			response: response{
				expectedCode: http.StatusCreated,
				expectedBody: `{"id":11,"title":"As aventuras","author":"Artur","isbn":"001"}`,
			},
		},
		{
			name: "err. duplicate isbn",
			body: `{"title":"As aventuras 2","author":"Artur","isbn":"001"}`,
			mockBehavior: func(r *service_mocks.MockBookService) {
				r.EXPECT().
					Create(context.Background(), model.Book{Title: "As aventuras 2", Author: "Artur", ISBN: "001"}).
					Return(model.Book{}, errs.ErrISBNExists)
			},
			response: response{
				expectedCode: http.StatusBadRequest,
				expectedBody: `{"errors":["isbn already registered"]}`,
			},
		},
		{
			name:         "err. empty title",
			body:         `{"author":"Artur","isbn":"001"}`,
			mockBehavior: func(r *service_mocks.MockBookService) {},
			response: response{
				expectedCode: http.StatusBadRequest,
				expectedBody: `{"errors":["Key: 'CreateBookRequest.Title' Error:Field validation for 'Title' failed on the 'required' tag"]}`,
			},
		},
		{
			name: "err. internal",
			body: `{"title":"As aventuras","author":"Artur","isbn":"001"}`,
			mockBehavior: func(r *service_mocks.MockBookService) {
				r.EXPECT().
					Create(context.Background(), gomock.Any()).
					Return(model.Book{}, errors.New("db internal"))
			},
			response: response{
				expectedCode: http.StatusInternalServerError,
				expectedBody: `{"message":"db internal"}`,
			},
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			e, bookSvc, _ := newTestRouter(t)
			tt.mockBehavior(bookSvc)

			w := doJSON(e, http.MethodPost, "/api/books", tt.body)

			require.Equal(t, tt.response.expectedCode, w.Code)
			require.Equal(t, tt.response.expectedBody, strings.Trim(w.Body.String(), "\n"))
		})
	}
}

func TestHandler_GetBook(t *testing.T) {
	t.Parallel()

	t.Run("ok", func(t *testing.T) {
		t.Parallel()
		e, bookSvc, _ := newTestRouter(t)
		bookSvc.EXPECT().
			GetByID(context.Background(), int64(11)).
			Return(model.Book{ID: 11, Title: "As aventuras", Author: "Artur", ISBN: "001"}, nil)

		w := doJSON(e, http.MethodGet, "/api/books/11", "")
		require.Equal(t, http.StatusOK, w.Code)
		require.Equal(t, `{"id":11,"title":"As aventuras","author":"Artur","isbn":"001"}`, strings.Trim(w.Body.String(), "\n"))
	})

	t.Run("err. not found", func(t *testing.T) {
		t.Parallel()
		e, bookSvc, _ := newTestRouter(t)
		bookSvc.EXPECT().
			GetByID(context.Background(), int64(404)).
			Return(model.Book{}, errs.ErrNotFound)

		w := doJSON(e, http.MethodGet, "/api/books/404", "")
		require.Equal(t, http.StatusNotFound, w.Code)
		require.Equal(t, `{"message":"not found"}`, strings.Trim(w.Body.String(), "\n"))
	})

	t.Run("err. invalid id", func(t *testing.T) {
		t.Parallel()
		e, _, _ := newTestRouter(t)
		w := doJSON(e, http.MethodGet, "/api/books/abc", "")
		require.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestHandler_UpdateBook(t *testing.T) {
	t.Parallel()

	t.Run("ok", func(t *testing.T) {
		t.Parallel()
		e, bookSvc, _ := newTestRouter(t)
		book := model.Book{ID: 11, Title: "As aventuras", Author: "Artur", ISBN: "002"}
		bookSvc.EXPECT().Update(context.Background(), book).Return(book, nil)

		w := doJSON(e, http.MethodPut, "/api/books/11", `{"title":"As aventuras","author":"Artur","isbn":"002"}`)
		require.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("err. not found maps to 404", func(t *testing.T) {
		t.Parallel()
		e, bookSvc, _ := newTestRouter(t)
		bookSvc.EXPECT().Update(context.Background(), gomock.Any()).Return(model.Book{}, errs.ErrNotFound)

		w := doJSON(e, http.MethodPut, "/api/books/404", `{"title":"t","author":"a","isbn":"i"}`)
		require.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestHandler_DeleteBook(t *testing.T) {
	t.Parallel()

	t.Run("ok", func(t *testing.T) {
		t.Parallel()
		e, bookSvc, _ := newTestRouter(t)
		bookSvc.EXPECT().Delete(context.Background(), model.Book{ID: 11}).Return(nil)

		w := doJSON(e, http.MethodDelete, "/api/books/11", "")
		require.Equal(t, http.StatusNoContent, w.Code)
	})

	t.Run("err. active loan blocks delete", func(t *testing.T) {
		t.Parallel()
		e, bookSvc, _ := newTestRouter(t)
		bookSvc.EXPECT().Delete(context.Background(), model.Book{ID: 11}).Return(errs.ErrActiveLoan)

		w := doJSON(e, http.MethodDelete, "/api/books/11", "")
		require.Equal(t, http.StatusBadRequest, w.Code)
		require.Equal(t, `{"errors":["book has an active loan"]}`, strings.Trim(w.Body.String(), "\n"))
	})
}

func TestHandler_FindBooks(t *testing.T) {
	t.Parallel()
	e, bookSvc, _ := newTestRouter(t)
	bookSvc.EXPECT().
		Find(context.Background(), model.BookFilter{Author: "Artur"}, 1, 10).
		Return(model.ListBooks{
			Paging: model.Paging{Page: 1, PageSize: 10, TotalElements: 1},
			Items:  []model.Book{{ID: 11, Title: "As aventuras", Author: "Artur", ISBN: "001"}},
		}, nil)

	w := doJSON(e, http.MethodGet, "/api/books?author=Artur&page=1&size=10", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t,
		`{"page":1,"pageSize":10,"totalElements":1,"items":[{"id":11,"title":"As aventuras","author":"Artur","isbn":"001"}]}`,
		strings.Trim(w.Body.String(), "\n"))
}

func TestHandler_GetBookLoans(t *testing.T) {
	t.Parallel()

	t.Run("err. unknown book", func(t *testing.T) {
		t.Parallel()
		e, bookSvc, _ := newTestRouter(t)
		bookSvc.EXPECT().GetByID(context.Background(), int64(404)).Return(model.Book{}, errs.ErrNotFound)

		w := doJSON(e, http.MethodGet, "/api/books/404/loans", "")
		require.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("ok", func(t *testing.T) {
		t.Parallel()
		e, bookSvc, loanSvc := newTestRouter(t)
		book := model.Book{ID: 11, Title: "As aventuras", Author: "Artur", ISBN: "001"}
		bookSvc.EXPECT().GetByID(context.Background(), int64(11)).Return(book, nil)
		loanSvc.EXPECT().
			FindByBook(context.Background(), int64(11), 0, 0).
			Return(model.ListLoans{Items: []model.Loan{{ID: 1, BookID: 11, Book: book, Customer: "Fulano"}}}, nil)

		w := doJSON(e, http.MethodGet, "/api/books/11/loans", "")
		require.Equal(t, http.StatusOK, w.Code)
	})
}
