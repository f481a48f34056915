package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/abakhtin/library-api/internal/errs"
	"github.com/abakhtin/library-api/internal/model"
	"github.com/abakhtin/library-api/internal/repository"
	"github.com/abakhtin/library-api/pkg/kafka"
)

const sweepPublishWorkers = 8

type LoanService struct {
	log  *zap.Logger
	repo repository.LoanRepository
	pub  EventPublisher
}

func NewLoanService(repo repository.LoanRepository, pub EventPublisher, log *zap.Logger) *LoanService {
	return &LoanService{
		log:  log,
		repo: repo,
		pub:  pub,
	}
}

// Create refuses a loan while another one for the same book is still
// outstanding. The repository repeats the check under a per-book
// advisory lock, so a concurrent save cannot slip past this one.
func (s *LoanService) Create(ctx context.Context, loan model.Loan) (model.Loan, error) {
	active, err := s.repo.ExistsActiveLoan(ctx, loan.BookID)
	if err != nil {
		return model.Loan{}, err
	}
	if active {
		return model.Loan{}, errs.ErrBookLoaned
	}

	created, err := s.repo.CreateLoan(ctx, loan.BookID, loan.Customer)
	if err != nil {
		return model.Loan{}, err
	}

	if err := s.pub.Publish(ctx, s.newEvent(kafka.EventLoanCreated, created)); err != nil {
		s.log.Warn("publish loan created", zap.Int64("loanId", created.ID), zap.Error(err))
	}
	return created, nil
}

func (s *LoanService) GetByID(ctx context.Context, id int64) (model.Loan, error) {
	return s.repo.GetLoan(ctx, id)
}

// Update persists the full loan record; callers fetch, mutate and
// save. Used to set returned.
func (s *LoanService) Update(ctx context.Context, loan model.Loan) (model.Loan, error) {
	if loan.ID == 0 {
		return model.Loan{}, errs.ErrInvalidID
	}
	updated, err := s.repo.UpdateLoan(ctx, loan)
	if err != nil {
		return model.Loan{}, err
	}

	if updated.Returned != nil && *updated.Returned {
		if err := s.pub.Publish(ctx, s.newEvent(kafka.EventLoanReturned, updated)); err != nil {
			s.log.Warn("publish loan returned", zap.Int64("loanId", updated.ID), zap.Error(err))
		}
	}
	return updated, nil
}

func (s *LoanService) Find(ctx context.Context, isbn, customer string, page, size int) (model.ListLoans, error) {
	return s.repo.ListLoans(ctx, isbn, customer, page, size)
}

func (s *LoanService) FindByBook(ctx context.Context, bookID int64, page, size int) (model.ListLoans, error) {
	return s.repo.ListLoansByBook(ctx, bookID, page, size)
}

func (s *LoanService) FindOverdue(ctx context.Context, thresholdDays int) ([]model.Loan, error) {
	return s.repo.ListOverdue(ctx, thresholdDays)
}

// SweepOverdue publishes an event for every loan outstanding past the
// threshold. Scheduling is owned by an external caller; this is the
// query plus the notification fan-out.
func (s *LoanService) SweepOverdue(ctx context.Context, thresholdDays int) (int, error) {
	loans, err := s.repo.ListOverdue(ctx, thresholdDays)
	if err != nil {
		return 0, err
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(sweepPublishWorkers)
	for _, loan := range loans {
		loan := loan
		g.Go(func() error {
			return s.pub.Publish(ctx, s.newEvent(kafka.EventLoanOverdue, loan))
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}
	return len(loans), nil
}

func (s *LoanService) newEvent(typ kafka.EventType, loan model.Loan) kafka.EventLoan {
	return kafka.EventLoan{
		EventID:   uuid.NewString(),
		EventType: typ,
		LoanID:    loan.ID,
		BookID:    loan.BookID,
		ISBN:      loan.Book.ISBN,
		Customer:  loan.Customer,
		Timestamp: time.Now().UTC(),
	}
}
