package service_test

import (
	"context"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/abakhtin/library-api/internal/errs"
	"github.com/abakhtin/library-api/internal/model"
	repo_mocks "github.com/abakhtin/library-api/internal/repository/mocks"
	"github.com/abakhtin/library-api/internal/service"
)

func TestBookService_Create(t *testing.T) {
	t.Parallel()
	type mockBehavior func(r *repo_mocks.MockBookRepository, book model.Book)

	book := model.Book{Title: "As aventuras", Author: "Artur", ISBN: "001"}

	var tests = []struct {
		name         string
		mockBehavior mockBehavior
		book         model.Book
		want         model.Book
		wantErr      error
	}{
		{
			name: "ok",
			mockBehavior: func(r *repo_mocks.MockBookRepository, b model.Book) {
				r.EXPECT().ExistsByISBN(context.Background(), b.ISBN).Return(false, nil)
				created := b
				created.ID = 11
				r.EXPECT().CreateBook(context.Background(), b).Return(created, nil)
			},
			book: book,
			want: model.Book{ID: 11, Title: "As aventuras", Author: "Artur", ISBN: "001"},
		},
		{
			name: "err. duplicate isbn, no write",
			mockBehavior: func(r *repo_mocks.MockBookRepository, b model.Book) {
				r.EXPECT().ExistsByISBN(context.Background(), b.ISBN).Return(true, nil)
			},
			book:    book,
			wantErr: errs.ErrISBNExists,
		},
		{
			name: "err. store failure propagated",
			mockBehavior: func(r *repo_mocks.MockBookRepository, b model.Book) {
				r.EXPECT().ExistsByISBN(context.Background(), b.ISBN).Return(false, errors.New("db down"))
			},
			book:    book,
			wantErr: errors.New("db down"),
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			c := gomock.NewController(t)
			defer c.Finish()
			repo := repo_mocks.NewMockBookRepository(c)
			tt.mockBehavior(repo, tt.book)

			svc := service.NewBookService(repo, zap.NewExample().Named("test"))
			got, err := svc.Create(context.Background(), tt.book)
			if tt.wantErr != nil {
				require.EqualError(t, err, tt.wantErr.Error())
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestBookService_GetByID(t *testing.T) {
	t.Parallel()
	c := gomock.NewController(t)
	defer c.Finish()
	repo := repo_mocks.NewMockBookRepository(c)
	svc := service.NewBookService(repo, zap.NewExample().Named("test"))

	repo.EXPECT().GetBook(context.Background(), int64(42)).Return(model.Book{}, errs.ErrNotFound)
	_, err := svc.GetByID(context.Background(), 42)
	require.ErrorIs(t, err, errs.ErrNotFound)

	// repeated lookups stay deterministic
	repo.EXPECT().GetBook(context.Background(), int64(42)).Return(model.Book{}, errs.ErrNotFound)
	_, err = svc.GetByID(context.Background(), 42)
	require.ErrorIs(t, err, errs.ErrNotFound)
}

func TestBookService_Update(t *testing.T) {
	t.Parallel()
	c := gomock.NewController(t)
	defer c.Finish()
	repo := repo_mocks.NewMockBookRepository(c)
	svc := service.NewBookService(repo, zap.NewExample().Named("test"))

	// no id: the repository must never be reached
	_, err := svc.Update(context.Background(), model.Book{Title: "t", Author: "a", ISBN: "i"})
	require.ErrorIs(t, err, errs.ErrInvalidID)

	book := model.Book{ID: 7, Title: "t", Author: "a", ISBN: "i"}
	repo.EXPECT().UpdateBook(context.Background(), book).Return(book, nil)
	got, err := svc.Update(context.Background(), book)
	require.NoError(t, err)
	require.Equal(t, book, got)
}

func TestBookService_Delete(t *testing.T) {
	t.Parallel()
	c := gomock.NewController(t)
	defer c.Finish()
	repo := repo_mocks.NewMockBookRepository(c)
	svc := service.NewBookService(repo, zap.NewExample().Named("test"))

	err := svc.Delete(context.Background(), model.Book{})
	require.ErrorIs(t, err, errs.ErrInvalidID)

	repo.EXPECT().DeleteBook(context.Background(), int64(7)).Return(errs.ErrActiveLoan)
	err = svc.Delete(context.Background(), model.Book{ID: 7})
	require.ErrorIs(t, err, errs.ErrActiveLoan)

	repo.EXPECT().DeleteBook(context.Background(), int64(8)).Return(nil)
	require.NoError(t, svc.Delete(context.Background(), model.Book{ID: 8}))
}

func TestBookService_Find(t *testing.T) {
	t.Parallel()
	c := gomock.NewController(t)
	defer c.Finish()
	repo := repo_mocks.NewMockBookRepository(c)
	svc := service.NewBookService(repo, zap.NewExample().Named("test"))

	filter := model.BookFilter{Author: "Artur"}
	list := model.ListBooks{
		Paging: model.Paging{Page: 1, PageSize: 10, TotalElements: 1},
		Items:  []model.Book{{ID: 11, Title: "As aventuras", Author: "Artur", ISBN: "001"}},
	}
	repo.EXPECT().ListBooks(context.Background(), filter, 1, 10).Return(list, nil)
	got, err := svc.Find(context.Background(), filter, 1, 10)
	require.NoError(t, err)
	require.Equal(t, list, got)
}
