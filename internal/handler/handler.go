package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.uber.org/zap"

	_ "github.com/abakhtin/library-api/docs"
	md "github.com/abakhtin/library-api/pkg/middleware"
	"github.com/abakhtin/library-api/pkg/validate"
)

type Handler struct {
	bookSvc BookService
	loanSvc LoanService
	log     *zap.Logger
}

func New(bookSvc BookService, loanSvc LoanService, log *zap.Logger) *Handler {
	return &Handler{
		bookSvc: bookSvc,
		loanSvc: loanSvc,
		log:     log,
	}
}

func (h *Handler) NewRouter() *echo.Echo {
	e := echo.New()
	const (
		baseRPS = 10
		apiRPS  = 100
	)
	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		StackSize: 4 << 10, // 4 KB
	}))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{http.MethodGet, http.MethodOptions, http.MethodHead, http.MethodPut, http.MethodPatch, http.MethodPost, http.MethodDelete},
		AllowCredentials: true,
	}))

	base := e.Group("", md.NewRateLimiter(baseRPS))
	base.GET("/manage/health", h.Health)
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	e.Validator = validate.NewCustomValidator()
	api := e.Group("/api",
		middleware.RequestLoggerWithConfig(md.RequestLoggerConfig()),
		middleware.RequestID(),
		md.NewRateLimiter(apiRPS),
	)

	api.POST("/books", h.CreateBook)
	api.GET("/books", h.FindBooks)
	api.GET("/books/:id", h.GetBook)
	api.PUT("/books/:id", h.UpdateBook)
	api.DELETE("/books/:id", h.DeleteBook)
	api.GET("/books/:id/loans", h.GetBookLoans)

	api.POST("/loans", h.CreateLoan)
	api.GET("/loans", h.FindLoans)
	api.GET("/loans/overdue", h.FindOverdueLoans)
	api.POST("/loans/overdue/sweep", h.SweepOverdueLoans)
	api.GET("/loans/:id", h.GetLoan)
	api.PATCH("/loans/:id", h.ReturnLoan)

	return e
}

func (h *Handler) Health(c echo.Context) error {
	return c.String(http.StatusOK, "OK")
}

func pathID(c echo.Context) (int64, error) {
	return strconv.ParseInt(c.Param("id"), 10, 64)
}

func queryInt(c echo.Context, name string) (int, error) {
	param := c.QueryParam(name)
	if param == "" {
		return 0, nil
	}
	return strconv.Atoi(param)
}

func paging(c echo.Context) (page, size int, err error) {
	if page, err = queryInt(c, "page"); err != nil {
		return 0, 0, errors.New("page is invalid")
	}
	if size, err = queryInt(c, "size"); err != nil {
		return 0, 0, errors.New("size is invalid")
	}
	return page, size, nil
}
