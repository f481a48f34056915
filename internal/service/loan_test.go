package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/abakhtin/library-api/internal/errs"
	"github.com/abakhtin/library-api/internal/model"
	repo_mocks "github.com/abakhtin/library-api/internal/repository/mocks"
	"github.com/abakhtin/library-api/internal/service"
	svc_mocks "github.com/abakhtin/library-api/internal/service/mocks"
	"github.com/abakhtin/library-api/pkg/kafka"
)

func newLoanService(t *testing.T) (*service.LoanService, *repo_mocks.MockLoanRepository, *svc_mocks.MockEventPublisher) {
	t.Helper()
	c := gomock.NewController(t)
	t.Cleanup(c.Finish)
	repo := repo_mocks.NewMockLoanRepository(c)
	pub := svc_mocks.NewMockEventPublisher(c)
	return service.NewLoanService(repo, pub, zap.NewExample().Named("test")), repo, pub
}

func boolPtr(b bool) *bool { return &b }

func TestLoanService_Create(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	book := model.Book{ID: 11, Title: "As aventuras", Author: "Artur", ISBN: "001"}

	t.Run("ok", func(t *testing.T) {
		t.Parallel()
		svc, repo, pub := newLoanService(t)

		created := model.Loan{ID: 1, BookID: book.ID, Book: book, Customer: "Fulano", LoanDate: time.Now()}
		repo.EXPECT().ExistsActiveLoan(ctx, book.ID).Return(false, nil)
		repo.EXPECT().CreateLoan(ctx, book.ID, "Fulano").Return(created, nil)
		pub.EXPECT().Publish(ctx, gomock.Any()).DoAndReturn(func(_ context.Context, e kafka.EventLoan) error {
			require.Equal(t, kafka.EventLoanCreated, e.EventType)
			require.Equal(t, created.ID, e.LoanID)
			require.Equal(t, book.ISBN, e.ISBN)
			return nil
		})

		got, err := svc.Create(ctx, model.Loan{BookID: book.ID, Book: book, Customer: "Fulano"})
		require.NoError(t, err)
		require.Equal(t, created, got)
	})

	t.Run("err. book already loaned, no write", func(t *testing.T) {
		t.Parallel()
		svc, repo, _ := newLoanService(t)

		repo.EXPECT().ExistsActiveLoan(ctx, book.ID).Return(true, nil)
		_, err := svc.Create(ctx, model.Loan{BookID: book.ID, Book: book, Customer: "Ciclano"})
		require.ErrorIs(t, err, errs.ErrBookLoaned)
		require.EqualError(t, err, "Book already loaned")
	})

	t.Run("ok even when broker is down", func(t *testing.T) {
		t.Parallel()
		svc, repo, pub := newLoanService(t)

		created := model.Loan{ID: 2, BookID: book.ID, Book: book, Customer: "Fulano"}
		repo.EXPECT().ExistsActiveLoan(ctx, book.ID).Return(false, nil)
		repo.EXPECT().CreateLoan(ctx, book.ID, "Fulano").Return(created, nil)
		pub.EXPECT().Publish(ctx, gomock.Any()).Return(errs.ErrNotFound)

		got, err := svc.Create(ctx, model.Loan{BookID: book.ID, Book: book, Customer: "Fulano"})
		require.NoError(t, err)
		require.Equal(t, created, got)
	})
}

func TestLoanService_Update(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	book := model.Book{ID: 11, ISBN: "001"}

	t.Run("err. no id, repo never reached", func(t *testing.T) {
		t.Parallel()
		svc, _, _ := newLoanService(t)
		_, err := svc.Update(ctx, model.Loan{Customer: "Fulano"})
		require.ErrorIs(t, err, errs.ErrInvalidID)
	})

	t.Run("returned=true publishes event", func(t *testing.T) {
		t.Parallel()
		svc, repo, pub := newLoanService(t)

		loan := model.Loan{ID: 1, BookID: book.ID, Book: book, Customer: "Fulano", Returned: boolPtr(true)}
		repo.EXPECT().UpdateLoan(ctx, loan).Return(loan, nil)
		pub.EXPECT().Publish(ctx, gomock.Any()).DoAndReturn(func(_ context.Context, e kafka.EventLoan) error {
			require.Equal(t, kafka.EventLoanReturned, e.EventType)
			return nil
		})

		got, err := svc.Update(ctx, loan)
		require.NoError(t, err)
		require.Equal(t, loan, got)
	})

	t.Run("returned=false stays silent", func(t *testing.T) {
		t.Parallel()
		svc, repo, _ := newLoanService(t)

		loan := model.Loan{ID: 1, BookID: book.ID, Book: book, Customer: "Fulano", Returned: boolPtr(false)}
		repo.EXPECT().UpdateLoan(ctx, loan).Return(loan, nil)

		_, err := svc.Update(ctx, loan)
		require.NoError(t, err)
	})
}

func TestLoanService_SweepOverdue(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	svc, repo, pub := newLoanService(t)
	loans := []model.Loan{
		{ID: 1, BookID: 11, Book: model.Book{ID: 11, ISBN: "001"}, Customer: "Fulano"},
		{ID: 2, BookID: 12, Book: model.Book{ID: 12, ISBN: "002"}, Customer: "Ciclano"},
	}
	repo.EXPECT().ListOverdue(ctx, 3).Return(loans, nil)
	pub.EXPECT().Publish(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, e kafka.EventLoan) error {
		require.Equal(t, kafka.EventLoanOverdue, e.EventType)
		return nil
	}).Times(2)

	count, err := svc.SweepOverdue(ctx, 3)
	require.NoError(t, err)
	require.Equal(t, 2, count)
}

func TestLoanService_FindOverdue(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	svc, repo, _ := newLoanService(t)
	loans := []model.Loan{{ID: 1, BookID: 11, Customer: "Fulano"}}
	repo.EXPECT().ListOverdue(ctx, 3).Return(loans, nil)

	got, err := svc.FindOverdue(ctx, 3)
	require.NoError(t, err)
	require.Equal(t, loans, got)
}

// The full lending cycle: loan a book, reject a second loan while the
// first is outstanding, return it, loan it again.
func TestLoanService_LendingCycle(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	book := model.Book{ID: 11, Title: "As aventuras", Author: "Artur", ISBN: "001"}

	svc, repo, pub := newLoanService(t)

	first := model.Loan{ID: 1, BookID: book.ID, Book: book, Customer: "Fulano"}
	gomock.InOrder(
		repo.EXPECT().ExistsActiveLoan(ctx, book.ID).Return(false, nil),
		repo.EXPECT().CreateLoan(ctx, book.ID, "Fulano").Return(first, nil),
		repo.EXPECT().ExistsActiveLoan(ctx, book.ID).Return(true, nil),
		repo.EXPECT().UpdateLoan(ctx, gomock.Any()).DoAndReturn(func(_ context.Context, l model.Loan) (model.Loan, error) {
			require.NotNil(t, l.Returned)
			require.True(t, *l.Returned)
			return l, nil
		}),
		repo.EXPECT().ExistsActiveLoan(ctx, book.ID).Return(false, nil),
		repo.EXPECT().CreateLoan(ctx, book.ID, "Beltrano").Return(model.Loan{ID: 3, BookID: book.ID, Book: book, Customer: "Beltrano"}, nil),
	)
	pub.EXPECT().Publish(ctx, gomock.Any()).Return(nil).AnyTimes()

	_, err := svc.Create(ctx, model.Loan{BookID: book.ID, Book: book, Customer: "Fulano"})
	require.NoError(t, err)

	_, err = svc.Create(ctx, model.Loan{BookID: book.ID, Book: book, Customer: "Ciclano"})
	require.ErrorIs(t, err, errs.ErrBookLoaned)

	first.Returned = boolPtr(true)
	_, err = svc.Update(ctx, first)
	require.NoError(t, err)

	third, err := svc.Create(ctx, model.Loan{BookID: book.ID, Book: book, Customer: "Beltrano"})
	require.NoError(t, err)
	require.Equal(t, int64(3), third.ID)
}
